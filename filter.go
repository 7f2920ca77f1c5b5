package recordcache

// Attr is one attribute constraint or assignment.
type Attr struct {
	Name  string
	Value any
}

// Filter is an ordered set of attribute/value pairs. It addresses rows in the
// store and, in the same order, derives the cache key. A name appears at
// most once. Filters are values: every method returns a new Filter.
type Filter []Attr

// Where starts a filter with a single constraint.
func Where(name string, value any) Filter {
	return Filter{{Name: name, Value: value}}
}

// And returns f with name set to value. An existing name keeps its position.
func (f Filter) And(name string, value any) Filter {
	out := f.clone(1)
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
			return out
		}
	}
	return append(out, Attr{Name: name, Value: value})
}

// Merge overlays other onto f: names present in f are overwritten in place,
// new names are appended in other's order.
func (f Filter) Merge(other Filter) Filter {
	out := f.clone(len(other))
	for _, a := range other {
		out = out.And(a.Name, a.Value)
	}
	return out
}

// Get returns the value for name.
func (f Filter) Get(name string) (any, bool) {
	for _, a := range f {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// Names returns attribute names in order.
func (f Filter) Names() []string {
	out := make([]string, len(f))
	for i, a := range f {
		out[i] = a.Name
	}
	return out
}

// Map returns the pairs as a map; order is lost.
func (f Filter) Map() map[string]any {
	out := make(map[string]any, len(f))
	for _, a := range f {
		out[a.Name] = a.Value
	}
	return out
}

func (f Filter) clone(extra int) Filter {
	out := make(Filter, len(f), len(f)+extra)
	copy(out, f)
	return out
}
