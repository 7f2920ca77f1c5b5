package recordcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	c "github.com/unkn0wn-root/recordcache/codec"
	"github.com/unkn0wn-root/recordcache/internal/wire"
)

type model[R any] struct {
	rt      RecordType
	handle  *Handle
	store   Store[R]
	codec   c.Codec[R]
	build   BuildFunc[R]
	log     Logger
	hooks   Hooks
	enabled bool
	ttl     time.Duration
}

func newModel[R any](opts Options[R]) (*model[R], error) {
	if err := opts.Type.Validate(); err != nil {
		return nil, err
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("recordcache: %s: store is required", opts.Type.Name)
	}
	if opts.Handle == nil && !opts.Disabled {
		return nil, fmt.Errorf("recordcache: %s: cache handle is required", opts.Type.Name)
	}

	rt := withDeclaredTTL[R](opts.Type)
	rt.Keys = append([]string(nil), rt.Keys...)

	m := &model[R]{
		rt:      rt,
		handle:  opts.Handle,
		store:   opts.Store,
		enabled: !opts.Disabled,
		ttl:     rt.TTLDuration(),
	}

	// defaults
	m.codec = coalesce[c.Codec[R]](opts.Codec, c.JSON[R]{})
	m.log = coalesce[Logger](opts.Logger, NopLogger{})
	m.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	if opts.Build != nil {
		m.build = opts.Build
	} else {
		m.build = buildByAttributes[R]
	}
	return m, nil
}

func (m *model[R]) Type() RecordType {
	rt := m.rt
	rt.Keys = append([]string(nil), m.rt.Keys...)
	return rt
}

func (m *model[R]) Enabled() bool      { return m.enabled }
func (m *model[R]) TTL() time.Duration { return m.ttl }

func (m *model[R]) Key(f Filter) string { return GenerateKey(m.rt, f) }

func (m *model[R]) GetCached(ctx context.Context, f Filter) (Result[R], error) {
	key := m.Key(f)
	if recs, ok := m.read(ctx, key); ok {
		return resultOf(recs...), nil
	}

	recs, err := m.store.Query(ctx, m.rt, f)
	if err != nil {
		return Result[R]{}, fmt.Errorf("recordcache: query %s: %w", m.rt.Name, err)
	}
	switch len(recs) {
	case 0:
		// not cached: a record created later must be visible immediately
		return Result[R]{}, nil
	case 1:
		m.populate(ctx, key, recs, false)
	default:
		m.populate(ctx, key, recs, true)
	}
	return resultOf(recs...), nil
}

// read returns the cached records for key. Every failure is a miss.
func (m *model[R]) read(ctx context.Context, key string) ([]R, bool) {
	if !m.enabled {
		return nil, false
	}
	p, ok := m.handle.Provider()
	if !ok {
		m.hooks.CacheUnavailable(key, ErrNotConfigured)
		m.log.Warn("cache read skipped (handle not configured)", Fields{"key": key})
		return nil, false
	}
	raw, hit, err := p.Get(ctx, key)
	if err != nil {
		m.hooks.CacheUnavailable(key, err)
		m.log.Warn("cache read failed; falling back to store", Fields{"key": key, "err": err})
		return nil, false
	}
	if !hit {
		m.hooks.CacheMiss(key)
		return nil, false
	}
	recs, err := m.decode(raw)
	if err != nil {
		m.hooks.DecodeFailed(key, err)
		m.log.Warn("cached entry undecodable; treating as miss", Fields{"key": key, "err": err})
		return nil, false
	}
	m.hooks.CacheHit(key)
	return recs, true
}

// populate writes recs under key. Best-effort: failures are reported, never returned.
func (m *model[R]) populate(ctx context.Context, key string, recs []R, many bool) {
	if !m.enabled {
		return
	}
	p, ok := m.handle.Provider()
	if !ok {
		m.hooks.CacheWriteFailed(key, ErrNotConfigured)
		m.log.Warn("cache write skipped (handle not configured)", Fields{"key": key})
		return
	}
	raw, err := m.encode(recs, many)
	if err != nil {
		m.hooks.CacheWriteFailed(key, err)
		m.log.Error("cache encode failed", Fields{"key": key, "type": m.rt.Name, "err": err})
		return
	}
	ok, err = p.Set(ctx, key, raw, m.ttl)
	if err != nil {
		m.hooks.CacheWriteFailed(key, err)
		m.log.Warn("cache write failed", Fields{"key": key, "err": err})
		return
	}
	if !ok {
		m.hooks.ProviderSetRejected(key)
		m.log.Debug("cache write rejected by provider (pressure)", Fields{"key": key})
	}
}

func (m *model[R]) encode(recs []R, many bool) ([]byte, error) {
	if !many {
		if len(recs) != 1 {
			return nil, fmt.Errorf("single entry needs exactly one record, got %d", len(recs))
		}
		payload, err := m.codec.Encode(recs[0])
		if err != nil {
			return nil, err
		}
		return wire.EncodeOne(payload), nil
	}
	payloads := make([][]byte, 0, len(recs))
	for _, r := range recs {
		payload, err := m.codec.Encode(r)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, payload)
	}
	return wire.EncodeMany(payloads), nil
}

var errEmptyEntry = errors.New("recordcache: empty cached result set")

func (m *model[R]) decode(raw []byte) ([]R, error) {
	payloads, _, err := wire.Decode(raw)
	if err != nil {
		return nil, err
	}
	if len(payloads) == 0 {
		return nil, errEmptyEntry
	}
	out := make([]R, 0, len(payloads))
	for _, p := range payloads {
		v, err := m.codec.Decode(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
