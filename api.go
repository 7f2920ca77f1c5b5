package recordcache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/recordcache/codec"
)

// BuildFunc constructs an unsaved record from attributes.
type BuildFunc[R any] func(attrs Filter) (R, error)

// Model is the cache-backed access API for one record type.
// R is the caller's record type. Serialization is handled by a pluggable Codec[R].
type Model[R any] interface {
	Type() RecordType
	Enabled() bool

	// Key derives the cache key for f.
	Key(f Filter) string
	// TTL is the resolved lifetime of entries written by this model.
	TTL() time.Duration

	// GetCached returns the records matching f, from cache when possible.
	GetCached(ctx context.Context, f Filter) (Result[R], error)

	// FindOrCreate returns the records matching args, creating one from
	// args merged with options when none exist. Existing records are never
	// updated.
	FindOrCreate(ctx context.Context, args, options Filter) (Result[R], error)

	// FindOrCreateOrUpdate is FindOrCreate that also rewrites a single
	// existing record when any attribute named in options differs.
	FindOrCreateOrUpdate(ctx context.Context, args, options Filter) (Result[R], error)

	// RecreateFrom looks up the record addressed by src's enterprise scope and
	// uid. src must implement EnterpriseScoped and Identified; otherwise the
	// call is a no-op.
	RecreateFrom(ctx context.Context, src any) (Result[R], error)
}

// Options configure a Model.
// Type, Handle and Store are required; others have sensible defaults.
type Options[R any] struct {
	// Required
	Type   RecordType
	Handle *Handle // shared by every model in the process
	Store  Store[R]

	Codec    c.Codec[R]   // nil => codec.JSON
	Build    BuildFunc[R] // nil => fill fields by attribute name
	Logger   Logger       // nil => NopLogger
	Hooks    Hooks        // nil => NopHooks
	Disabled bool         // bypass the cache entirely; store only
}

func New[R any](opts Options[R]) (Model[R], error) {
	m, err := newModel[R](opts)
	if err != nil {
		return nil, err
	}
	return m, nil
}
