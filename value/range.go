package value

import (
	"strconv"

	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/source"
)

// Range is a lazy integer sequence: a start, a nonzero stride, and an
// optional end. Unbounded ranges never materialize; they feed streams
// one element at a time.
type Range struct {
	start     int64
	step      int64
	end       int64
	bounded   bool
	inclusive bool
}

// NewBoundedRange builds a range running from start toward end by step.
// A step of zero is rejected. A step pointing away from end is legal and
// yields an empty range.
func NewBoundedRange(start, step, end int64, inclusive bool, tag source.Tag) (*Range, error) {
	if step == 0 {
		return nil, errors.Custom("range step cannot be zero", tag)
	}
	return &Range{start: start, step: step, end: end, bounded: true, inclusive: inclusive}, nil
}

// NewUnboundedRange builds an endless range from start by step.
func NewUnboundedRange(start, step int64, tag source.Tag) (*Range, error) {
	if step == 0 {
		return nil, errors.Custom("range step cannot be zero", tag)
	}
	return &Range{start: start, step: step}, nil
}

// Start returns the first element.
func (r *Range) Start() int64 { return r.start }

// Step returns the stride between elements.
func (r *Range) Step() int64 { return r.step }

// End returns the bound, when there is one.
func (r *Range) End() (int64, bool) { return r.end, r.bounded }

// Bounded reports whether the range has an end.
func (r *Range) Bounded() bool { return r.bounded }

// Inclusive reports whether a bounded range includes its end.
func (r *Range) Inclusive() bool { return r.inclusive }

// Len returns the element count of a bounded range. Unbounded ranges
// report false.
func (r *Range) Len() (int64, bool) {
	if !r.bounded {
		return 0, false
	}
	diff := r.end - r.start
	if (r.step > 0 && diff < 0) || (r.step < 0 && diff > 0) {
		return 0, true
	}
	q := diff / r.step
	if r.inclusive {
		return q + 1, true
	}
	if diff%r.step == 0 {
		return q, true
	}
	return q + 1, true
}

// Nth returns the i-th element counting from zero, reporting false when
// the index is negative or beyond a bounded range's end.
func (r *Range) Nth(i int64) (int64, bool) {
	if i < 0 {
		return 0, false
	}
	v := r.start + i*r.step
	if r.bounded && !r.inBound(v) {
		return 0, false
	}
	return v, true
}

// Contains reports whether v is one of the range's elements.
func (r *Range) Contains(v int64) bool {
	diff := v - r.start
	if (r.step > 0 && diff < 0) || (r.step < 0 && diff > 0) {
		return false
	}
	if diff%r.step != 0 {
		return false
	}
	if r.bounded {
		return r.inBound(v)
	}
	return true
}

// Iter returns a pull function yielding the elements in order. The
// iterator stops on the bound, or on int64 wraparound for unbounded
// ranges.
func (r *Range) Iter() func() (int64, bool) {
	cur := r.start
	done := false
	return func() (int64, bool) {
		if done || (r.bounded && !r.inBound(cur)) {
			done = true
			return 0, false
		}
		v := cur
		next := cur + r.step
		if (r.step > 0 && next < cur) || (r.step < 0 && next > cur) {
			done = true
		}
		cur = next
		return v, true
	}
}

func (r *Range) inBound(v int64) bool {
	if r.step > 0 {
		if r.inclusive {
			return v <= r.end
		}
		return v < r.end
	}
	if r.inclusive {
		return v >= r.end
	}
	return v > r.end
}

// String renders the range in surface syntax: "1..5", "1..<5" for an
// exclusive end, "1.." when unbounded, "1..3..9" when the stride is not
// a unit step.
func (r *Range) String() string {
	s := strconv.FormatInt(r.start, 10)
	if r.step != 1 && r.step != -1 {
		s += ".." + strconv.FormatInt(r.start+r.step, 10)
	}
	s += ".."
	if !r.bounded {
		return s
	}
	if !r.inclusive {
		s += "<"
	}
	return s + strconv.FormatInt(r.end, 10)
}
