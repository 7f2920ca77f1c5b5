package recordcache

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/unkn0wn-root/recordcache/internal/attrs"
)

// AttributeReader exposes record attributes by name. Records that do not
// implement it are read through their exported struct fields (tags cache,
// db, gorm column, json, then snake_case field name).
type AttributeReader interface {
	Attribute(name string) (value any, ok bool)
}

// EnterpriseScoped is implemented by objects belonging to an enterprise.
type EnterpriseScoped interface {
	EnterpriseID() any
}

// Identified is implemented by objects carrying a uid.
type Identified interface {
	UID() any
}

// Row is a schemaless record, for tables without a Go type.
type Row map[string]any

func (r Row) Attribute(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}

// AttributeOf reads attribute name from rec through AttributeReader, falling
// back to its struct fields or string-keyed map entries.
func AttributeOf(rec any, name string) (any, bool) {
	if ar, ok := rec.(AttributeReader); ok {
		return ar.Attribute(name)
	}
	return attrs.Lookup(rec, name)
}

// Attributes snapshots every attribute rec exposes. Row keys are sorted so
// the snapshot is deterministic.
func Attributes(rec any) Filter {
	if row, ok := rec.(Row); ok {
		names := make([]string, 0, len(row))
		for k := range row {
			names = append(names, k)
		}
		sort.Strings(names)
		out := make(Filter, 0, len(names))
		for _, n := range names {
			out = append(out, Attr{Name: n, Value: row[n]})
		}
		return out
	}
	names := attrs.Names(rec)
	out := make(Filter, 0, len(names))
	for _, n := range names {
		if v, ok := attrs.Lookup(rec, n); ok {
			out = append(out, Attr{Name: n, Value: v})
		}
	}
	return out
}

// buildByAttributes is the default BuildFunc. R may be a struct, a pointer to
// a struct, or a map with string keys.
func buildByAttributes[R any](f Filter) (R, error) {
	var rec R
	t := reflect.TypeOf(&rec).Elem()

	switch {
	case t.Kind() == reflect.Map && t.Key().Kind() == reflect.String:
		m := reflect.MakeMapWithSize(t, len(f))
		for _, a := range f {
			v := reflect.Zero(t.Elem())
			if a.Value != nil {
				av := reflect.ValueOf(a.Value)
				if !av.Type().AssignableTo(t.Elem()) {
					return rec, fmt.Errorf("attribute %q: cannot use %T as %s", a.Name, a.Value, t.Elem())
				}
				v = av
			}
			m.SetMapIndex(reflect.ValueOf(a.Name).Convert(t.Key()), v)
		}
		return m.Interface().(R), nil

	case t.Kind() == reflect.Struct:
		if err := assignAll(&rec, f); err != nil {
			return rec, err
		}
		return rec, nil

	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		p := reflect.New(t.Elem())
		if err := assignAll(p.Interface(), f); err != nil {
			return rec, err
		}
		return p.Interface().(R), nil
	}
	return rec, fmt.Errorf("cannot build %s from attributes; set Options.Build", t)
}

func assignAll(dst any, f Filter) error {
	for _, a := range f {
		ok, err := attrs.Assign(dst, a.Name, a.Value)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("unknown attribute %q", a.Name)
		}
	}
	return nil
}
