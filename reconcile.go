package recordcache

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/recordcache/internal/attrs"
)

func (m *model[R]) FindOrCreate(ctx context.Context, args, options Filter) (Result[R], error) {
	res, err := m.GetCached(ctx, args)
	if err != nil || res.Found() {
		return res, err
	}
	return m.create(ctx, args, options)
}

func (m *model[R]) FindOrCreateOrUpdate(ctx context.Context, args, options Filter) (Result[R], error) {
	res, err := m.GetCached(ctx, args)
	if err != nil {
		return res, err
	}
	if !res.Found() {
		return m.create(ctx, args, options)
	}

	// a result set exposes no attributes, so it is never dirty
	cur, single := res.One()
	if !single || !dirty(cur, options) {
		return res, nil
	}

	// unchanged attributes of the current record carry over to the new state
	next := Attributes(cur).Merge(args).Merge(options)
	saved, err := m.save(ctx, next)
	if err != nil {
		return Result[R]{}, err
	}
	m.populate(ctx, m.Key(args), []R{saved}, false)
	m.log.Debug("record updated", Fields{"type": m.rt.Name, "key": m.Key(args)})
	return resultOf(saved), nil
}

func (m *model[R]) RecreateFrom(ctx context.Context, src any) (Result[R], error) {
	scoped, ok := src.(EnterpriseScoped)
	if !ok {
		return Result[R]{}, nil
	}
	ident, ok := src.(Identified)
	if !ok {
		return Result[R]{}, nil
	}

	ek := m.rt.enterpriseKey()
	rest := make([]string, 0, len(m.rt.Keys))
	for _, k := range m.rt.Keys {
		if k != ek {
			rest = append(rest, k)
		}
	}
	if len(rest) != 1 || len(rest) == len(m.rt.Keys) {
		return Result[R]{}, &UnsupportedKeyShapeError{
			Type:          m.rt.Name,
			Keys:          append([]string(nil), m.rt.Keys...),
			EnterpriseKey: ek,
		}
	}
	return m.GetCached(ctx, Where(ek, scoped.EnterpriseID()).And(rest[0], ident.UID()))
}

// create builds a record from args merged with options, saves it, and caches
// it under the key for args alone.
func (m *model[R]) create(ctx context.Context, args, options Filter) (Result[R], error) {
	key := m.Key(args)
	saved, err := m.save(ctx, args.Merge(options))
	if err != nil {
		return Result[R]{}, err
	}
	m.populate(ctx, key, []R{saved}, false)
	m.log.Debug("record created", Fields{"type": m.rt.Name, "key": key})
	return resultOf(saved), nil
}

func (m *model[R]) save(ctx context.Context, attributes Filter) (R, error) {
	rec, err := m.build(attributes)
	if err != nil {
		var zero R
		return zero, fmt.Errorf("recordcache: build %s: %w", m.rt.Name, err)
	}
	saved, err := m.store.Save(ctx, m.rt, rec)
	if err != nil {
		var zero R
		return zero, fmt.Errorf("recordcache: save %s: %w", m.rt.Name, err)
	}
	return saved, nil
}

// dirty reports whether any option names an attribute rec exposes with a
// different value. Unknown attributes are ignored.
func dirty(rec any, options Filter) bool {
	for _, o := range options {
		cur, ok := AttributeOf(rec, o.Name)
		if !ok {
			continue
		}
		if !attrs.Equal(cur, o.Value) {
			return true
		}
	}
	return false
}
