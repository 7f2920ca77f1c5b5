package recordcache

import "context"

// Store is the backing source of truth for one record type.
type Store[R any] interface {
	// Query returns every record whose attributes equal f's values.
	// No match is an empty slice and a nil error.
	Query(ctx context.Context, rt RecordType, f Filter) ([]R, error)

	// Save durably inserts rec, or updates the row with the same key
	// attributes, and returns the stored record.
	Save(ctx context.Context, rt RecordType, rec R) (R, error)
}
