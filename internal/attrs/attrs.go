// Package attrs maps attribute names onto exported struct fields.
//
// Name resolution per field, first match wins: `cache:"name"`, `db:"name"`,
// gorm `column:name`, `json:"name"`, then the snake_case field name.
// A tag value of "-" hides the field.
package attrs

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
)

type field struct {
	name  string
	index []int
}

var fieldCache sync.Map // reflect.Type -> []field

// Names returns the attribute names of a struct type in declaration order.
func Names(v any) []string {
	t := structType(reflect.TypeOf(v))
	if t == nil {
		return nil
	}
	fs := fieldsOf(t)
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.name
	}
	return out
}

// Lookup returns the value of attribute name on v (struct or pointer to struct).
func Lookup(v any, name string) (any, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	for _, f := range fieldsOf(rv.Type()) {
		if f.name == name {
			fv, err := rv.FieldByIndexErr(f.index)
			if err != nil {
				return nil, false
			}
			return fv.Interface(), true
		}
	}
	return nil, false
}

// Assign sets attribute name on dst, which must be a pointer to a struct.
// value is converted to the field type when assignable or convertible
// without loss; a conversion that truncates or overflows is an error.
// Unknown names are ignored and reported with ok=false.
func Assign(dst any, name string, value any) (ok bool, err error) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return false, fmt.Errorf("attrs: assign %q: destination must be a non-nil struct pointer, got %T", name, dst)
	}
	sv := rv.Elem()
	for _, f := range fieldsOf(sv.Type()) {
		if f.name != name {
			continue
		}
		fv, err := sv.FieldByIndexErr(f.index)
		if err != nil {
			return false, fmt.Errorf("attrs: assign %q: %w", name, err)
		}
		cv, err := coerce(value, fv.Type())
		if err != nil {
			return false, fmt.Errorf("attrs: assign %q: %w", name, err)
		}
		fv.Set(cv)
		return true, nil
	}
	return false, nil
}

// Equal reports whether current and proposed hold the same value. proposed
// is converted to current's type first when the types differ; a value that
// does not survive the conversion is never equal. Types with an
// Equal(T) bool method, such as time.Time, compare through it.
func Equal(current, proposed any) bool {
	if current == nil || proposed == nil {
		return isNil(current) && isNil(proposed)
	}
	cv := reflect.ValueOf(current)
	pv, err := coerce(proposed, cv.Type())
	if err != nil {
		return false
	}
	return equalValues(cv, pv)
}

func equalValues(cv, pv reflect.Value) bool {
	if cv.Kind() == reflect.Pointer && !cv.IsNil() && !pv.IsNil() {
		return equalValues(cv.Elem(), pv.Elem())
	}
	if eq, ok := equalMethod(cv); ok {
		return eq.Call([]reflect.Value{pv})[0].Bool()
	}
	return reflect.DeepEqual(cv.Interface(), pv.Interface())
}

func equalMethod(v reflect.Value) (reflect.Value, bool) {
	m := v.MethodByName("Equal")
	if !m.IsValid() {
		return reflect.Value{}, false
	}
	mt := m.Type()
	if mt.NumIn() != 1 || mt.In(0) != v.Type() || mt.NumOut() != 1 || mt.Out(0).Kind() != reflect.Bool {
		return reflect.Value{}, false
	}
	return m, true
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func coerce(value any, to reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(to), nil
	}
	v := reflect.ValueOf(value)
	switch {
	case v.Type().AssignableTo(to):
		return v, nil
	case to.Kind() == reflect.Pointer && v.Type().AssignableTo(to.Elem()):
		p := reflect.New(to.Elem())
		p.Elem().Set(v)
		return p, nil
	case convertible(v.Type(), to):
		cv := v.Convert(to)
		if !lossless(v, cv) {
			return reflect.Value{}, fmt.Errorf("%v does not fit %s", value, to)
		}
		return cv, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", value, to)
}

// lossless reports whether a numeric conversion round-trips to the original.
func lossless(orig, conv reflect.Value) bool {
	if !isNumber(orig.Kind()) || !isNumber(conv.Kind()) {
		return true
	}
	return conv.Convert(orig.Type()).Interface() == orig.Interface()
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

// convertible excludes number<->string conversions, which reflect allows
// (int -> rune string) but never mean what the caller wants here.
func convertible(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	fs, ts := from.Kind() == reflect.String, to.Kind() == reflect.String
	return fs == ts
}

func structType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

func fieldsOf(t reflect.Type) []field {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]field)
	}
	var out []field
	collect(t, nil, &out)
	fieldCache.Store(t, out)
	return out
}

func collect(t reflect.Type, prefix []int, out *[]field) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		idx := append(append([]int(nil), prefix...), i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && sf.Tag.Get("cache") == "" {
			collect(sf.Type, idx, out)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		name := fieldName(sf)
		if name == "-" {
			continue
		}
		*out = append(*out, field{name: name, index: idx})
	}
}

func fieldName(sf reflect.StructField) string {
	for _, key := range []string{"cache", "db"} {
		if tag, ok := sf.Tag.Lookup(key); ok {
			if name := strings.Split(tag, ",")[0]; name != "" {
				return name
			}
		}
	}
	if tag, ok := sf.Tag.Lookup("gorm"); ok {
		if tag == "-" {
			return "-"
		}
		for _, part := range strings.Split(tag, ";") {
			if col, found := strings.CutPrefix(strings.TrimSpace(part), "column:"); found && col != "" {
				return col
			}
		}
	}
	if tag, ok := sf.Tag.Lookup("json"); ok {
		if name := strings.Split(tag, ",")[0]; name != "" {
			return name
		}
	}
	return SnakeCase(sf.Name)
}

// SnakeCase converts a Go identifier to snake_case ("EnterpriseID" -> "enterprise_id").
func SnakeCase(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range rs {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := rs[i-1]
				nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
