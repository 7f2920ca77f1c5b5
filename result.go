package recordcache

// Shape is the cardinality class of a lookup.
type Shape int

const (
	Absent Shape = iota // no matching record
	One                 // exactly one record
	Many                // more than one record, in store order
)

func (s Shape) String() string {
	switch s {
	case Absent:
		return "absent"
	case One:
		return "one"
	case Many:
		return "many"
	}
	return "unknown"
}

// Result holds the records matched by a lookup. Callers branch on Shape (or
// Len); a single match and a set of matches are different answers.
type Result[R any] struct {
	records []R
}

func resultOf[R any](recs ...R) Result[R] { return Result[R]{records: recs} }

func (r Result[R]) Len() int     { return len(r.records) }
func (r Result[R]) Found() bool  { return len(r.records) > 0 }
func (r Result[R]) Shape() Shape { return shapeOf(len(r.records)) }

// One returns the record when exactly one matched.
func (r Result[R]) One() (R, bool) {
	if len(r.records) != 1 {
		var zero R
		return zero, false
	}
	return r.records[0], true
}

// First returns the first record of any non-empty result.
func (r Result[R]) First() (R, bool) {
	if len(r.records) == 0 {
		var zero R
		return zero, false
	}
	return r.records[0], true
}

// All returns a copy of the matched records.
func (r Result[R]) All() []R {
	if len(r.records) == 0 {
		return nil
	}
	out := make([]R, len(r.records))
	copy(out, r.records)
	return out
}

func shapeOf(n int) Shape {
	switch {
	case n == 0:
		return Absent
	case n == 1:
		return One
	default:
		return Many
	}
}
