package value

import (
	"fmt"
	"strings"

	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/source"
)

// Record is an insertion-ordered mapping from column names to values.
// Columns are unique. Lookups scan; shell records are small and scanning
// keeps clones cheap. Mutating operations on values clone the record
// first, so records may be shared freely between values.
type Record struct {
	cols []string
	vals []Value
}

// RecordFromPairs builds a record from parallel column and value slices.
func RecordFromPairs(cols []string, vals []Value) (*Record, error) {
	if len(cols) != len(vals) {
		return nil, errors.Custom(
			fmt.Sprintf("record has %d columns but %d values", len(cols), len(vals)),
			source.UnknownTag())
	}
	r := &Record{}
	for i, col := range cols {
		if err := r.Insert(col, vals[i]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Len returns the number of columns.
func (r *Record) Len() int {
	return len(r.cols)
}

// Columns returns the column names in insertion order.
func (r *Record) Columns() []string {
	out := make([]string, len(r.cols))
	copy(out, r.cols)
	return out
}

// Values returns the column values in insertion order.
func (r *Record) Values() []Value {
	out := make([]Value, len(r.vals))
	copy(out, r.vals)
	return out
}

// Get returns the value of the named column.
func (r *Record) Get(col string) (Value, bool) {
	if i := r.indexOf(col); i >= 0 {
		return r.vals[i], true
	}
	return Value{}, false
}

// GetInsensitive returns the value of the named column, matching without
// regard to case. The first insertion-order match wins.
func (r *Record) GetInsensitive(col string) (Value, bool) {
	if i := r.insensitiveIndexOf(col); i >= 0 {
		return r.vals[i], true
	}
	return Value{}, false
}

// Has reports whether the named column exists.
func (r *Record) Has(col string) bool {
	return r.indexOf(col) >= 0
}

// Insert adds a new column. Inserting an existing column is an error.
func (r *Record) Insert(col string, v Value) error {
	if r.indexOf(col) >= 0 {
		return errors.Custom(fmt.Sprintf("column '%s' already exists", col), v.Tag())
	}
	r.cols = append(r.cols, col)
	r.vals = append(r.vals, v)
	return nil
}

// Upsert replaces the named column's value, appending the column when it
// does not exist yet.
func (r *Record) Upsert(col string, v Value) {
	if i := r.indexOf(col); i >= 0 {
		r.vals[i] = v
		return
	}
	r.cols = append(r.cols, col)
	r.vals = append(r.vals, v)
}

// Remove deletes the named column, reporting whether it existed.
func (r *Record) Remove(col string) bool {
	i := r.indexOf(col)
	if i < 0 {
		return false
	}
	r.cols = append(r.cols[:i], r.cols[i+1:]...)
	r.vals = append(r.vals[:i], r.vals[i+1:]...)
	return true
}

// Clone returns a copy sharing the values but owning its own column
// layout, so the copy can be mutated without touching the original.
func (r *Record) Clone() *Record {
	out := &Record{
		cols: make([]string, len(r.cols)),
		vals: make([]Value, len(r.vals)),
	}
	copy(out.cols, r.cols)
	copy(out.vals, r.vals)
	return out
}

// Each visits the columns in insertion order until fn returns false.
func (r *Record) Each(fn func(col string, val Value) bool) {
	for i, col := range r.cols {
		if !fn(col, r.vals[i]) {
			return
		}
	}
}

func (r *Record) indexOf(col string) int {
	for i, c := range r.cols {
		if c == col {
			return i
		}
	}
	return -1
}

func (r *Record) insensitiveIndexOf(col string) int {
	for i, c := range r.cols {
		if strings.EqualFold(c, col) {
			return i
		}
	}
	return -1
}
