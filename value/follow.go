package value

import (
	"fmt"

	"github.com/shale-sh/shale/cellpath"
	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/source"
)

// FollowCellPath walks the path into the value and returns what it
// finds. Field members read record columns; on a list they broadcast,
// extracting the column from every row. Index members read list rows
// (negative counts from the end), binary bytes (as int), or range
// elements. An error value anywhere on the way is returned as-is —
// errors out-rank access. Optional members turn any miss into nothing.
// When insensitive is set, every field member matches without regard to
// case.
func (v Value) FollowCellPath(path cellpath.Path, insensitive bool) (Value, error) {
	current := v
	for _, member := range path.Members {
		next, err := followMember(current, member, insensitive)
		if err != nil {
			return Value{}, err
		}
		current = next
	}
	return current, nil
}

func followMember(v Value, m cellpath.Member, insensitive bool) (Value, error) {
	if v.Kind() == KindError {
		return v, nil
	}
	if m.Kind() == cellpath.IndexMember {
		idx, _ := m.IndexValue()
		return followIndex(v, m, idx)
	}
	name, _ := m.FieldName()
	return followField(v, m, name, insensitive || m.Insensitive)
}

func followIndex(v Value, m cellpath.Member, idx int) (Value, error) {
	switch v.kind {
	case KindList:
		vals := v.data.([]Value)
		i := idx
		if i < 0 {
			i += len(vals)
		}
		if i >= 0 && i < len(vals) {
			return vals[i], nil
		}
		if m.Optional {
			return Nothing(m.Tag), nil
		}
		if len(vals) == 0 {
			return Value{}, errors.EmptyData(fmt.Sprintf("row %d", idx), blameTag(m, v))
		}
		return Value{}, errors.IndexOutOfRange(idx, len(vals), blameTag(m, v))
	case KindBinary:
		data := v.data.([]byte)
		i := idx
		if i < 0 {
			i += len(data)
		}
		if i >= 0 && i < len(data) {
			return Int(int64(data[i]), v.tag), nil
		}
		if m.Optional {
			return Nothing(m.Tag), nil
		}
		if len(data) == 0 {
			return Value{}, errors.EmptyData(fmt.Sprintf("byte %d", idx), blameTag(m, v))
		}
		return Value{}, errors.IndexOutOfRange(idx, len(data), blameTag(m, v))
	case KindRange:
		r := v.data.(*Range)
		if n, ok := r.Nth(int64(idx)); ok {
			return Int(n, v.tag), nil
		}
		if m.Optional {
			return Nothing(m.Tag), nil
		}
		if length, bounded := r.Len(); bounded {
			return Value{}, errors.IndexOutOfRange(idx, int(length), blameTag(m, v))
		}
		return Value{}, errors.New(errors.KindIndexOutOfRange,
			fmt.Sprintf("index %d is out of range for an unbounded range", idx), blameTag(m, v))
	case KindNothing:
		if m.Optional {
			return Nothing(m.Tag), nil
		}
		return Value{}, errors.TypeMismatch("list, binary, or range", "nothing", blameTag(m, v))
	}
	return Value{}, errors.TypeMismatch("list, binary, or range", v.kind.String(), blameTag(m, v))
}

func followField(v Value, m cellpath.Member, name string, insensitive bool) (Value, error) {
	switch v.kind {
	case KindRecord:
		r := v.data.(*Record)
		var val Value
		var ok bool
		if insensitive {
			val, ok = r.GetInsensitive(name)
		} else {
			val, ok = r.Get(name)
		}
		if ok {
			return val, nil
		}
		if m.Optional {
			return Nothing(m.Tag), nil
		}
		return Value{}, errors.ColumnNotFound(name, r.Columns(), blameTag(m, v))
	case KindList:
		// Broadcast: extract the column from every row.
		vals := v.data.([]Value)
		out := make([]Value, len(vals))
		for i, row := range vals {
			got, err := followMember(row, m, insensitive)
			if err != nil {
				return Value{}, err
			}
			out[i] = got
		}
		return List(out, v.tag), nil
	case KindNothing:
		if m.Optional {
			return Nothing(m.Tag), nil
		}
		return Value{}, errors.ColumnNotFound(name, nil, blameTag(m, v))
	}
	return Value{}, errors.TypeMismatch("record", v.kind.String(), blameTag(m, v))
}

// blameTag blames the path member when its spelling is known, falling
// back to the data's own tag.
func blameTag(m cellpath.Member, v Value) source.Tag {
	if !m.Tag.IsUnknown() {
		return m.Tag
	}
	return v.tag
}

type mutateMode int

const (
	mutateUpdate mutateMode = iota
	mutateInsert
	mutateUpsert
)

// UpdateCellPath replaces the value at the path, rebuilding only the
// touched spine; untouched siblings stay shared. The path must resolve:
// a missing column or index is an error unless the member is optional,
// in which case the value comes back unchanged.
func (v Value) UpdateCellPath(path cellpath.Path, newVal Value) (Value, error) {
	return mutateCellPath(v, path.Members, newVal, mutateUpdate, false)
}

// InsertCellPath adds a value at the path. The final member must not
// already exist: inserting an existing column is an error, and a list
// index inserts before the row it names (index == length appends).
// Intermediate members must resolve.
func (v Value) InsertCellPath(path cellpath.Path, newVal Value) (Value, error) {
	return mutateCellPath(v, path.Members, newVal, mutateInsert, false)
}

// UpsertCellPath replaces the value at the path, creating the final
// member when it is missing. Upserting a column into nothing builds a
// record, so pipelines can grow structure without seeding it.
func (v Value) UpsertCellPath(path cellpath.Path, newVal Value) (Value, error) {
	return mutateCellPath(v, path.Members, newVal, mutateUpsert, false)
}

func mutateCellPath(v Value, members []cellpath.Member, newVal Value, mode mutateMode, insensitive bool) (Value, error) {
	if len(members) == 0 {
		return newVal, nil
	}
	if v.kind == KindError {
		return v, nil
	}
	m := members[0]
	rest := members[1:]
	if m.Kind() == cellpath.IndexMember {
		idx, _ := m.IndexValue()
		return mutateIndex(v, m, idx, rest, newVal, mode, insensitive)
	}
	name, _ := m.FieldName()
	return mutateField(v, m, name, members, rest, newVal, mode, insensitive)
}

func mutateIndex(v Value, m cellpath.Member, idx int, rest []cellpath.Member, newVal Value, mode mutateMode, insensitive bool) (Value, error) {
	if v.kind != KindList {
		return Value{}, errors.TypeMismatch("list", v.kind.String(), blameTag(m, v))
	}
	vals := v.data.([]Value)
	i := idx
	if i < 0 {
		i += len(vals)
	}
	if len(rest) == 0 {
		switch mode {
		case mutateInsert:
			if i < 0 || i > len(vals) {
				return Value{}, errors.IndexOutOfRange(idx, len(vals), blameTag(m, v))
			}
			out := make([]Value, 0, len(vals)+1)
			out = append(out, vals[:i]...)
			out = append(out, newVal)
			out = append(out, vals[i:]...)
			return List(out, v.tag), nil
		case mutateUpsert:
			if i == len(vals) {
				out := make([]Value, 0, len(vals)+1)
				out = append(out, vals...)
				out = append(out, newVal)
				return List(out, v.tag), nil
			}
		}
		if i >= 0 && i < len(vals) {
			out := make([]Value, len(vals))
			copy(out, vals)
			out[i] = newVal
			return List(out, v.tag), nil
		}
		if m.Optional {
			return v, nil
		}
		return Value{}, errors.IndexOutOfRange(idx, len(vals), blameTag(m, v))
	}
	if i < 0 || i >= len(vals) {
		if m.Optional {
			return v, nil
		}
		return Value{}, errors.IndexOutOfRange(idx, len(vals), blameTag(m, v))
	}
	child, err := mutateCellPath(vals[i], rest, newVal, mode, insensitive)
	if err != nil {
		return Value{}, err
	}
	out := make([]Value, len(vals))
	copy(out, vals)
	out[i] = child
	return List(out, v.tag), nil
}

func mutateField(v Value, m cellpath.Member, name string, members, rest []cellpath.Member, newVal Value, mode mutateMode, insensitive bool) (Value, error) {
	ins := insensitive || m.Insensitive
	switch v.kind {
	case KindRecord:
		r := v.data.(*Record)
		idx := r.indexOf(name)
		if ins && idx < 0 {
			idx = r.insensitiveIndexOf(name)
		}
		if len(rest) == 0 {
			switch mode {
			case mutateInsert:
				if idx >= 0 {
					return Value{}, errors.Custom(fmt.Sprintf("column '%s' already exists", name), blameTag(m, v))
				}
				nr := r.Clone()
				nr.cols = append(nr.cols, name)
				nr.vals = append(nr.vals, newVal)
				return NewRecord(nr, v.tag), nil
			case mutateUpsert:
				nr := r.Clone()
				if idx >= 0 {
					nr.vals[idx] = newVal
				} else {
					nr.cols = append(nr.cols, name)
					nr.vals = append(nr.vals, newVal)
				}
				return NewRecord(nr, v.tag), nil
			default:
				if idx < 0 {
					if m.Optional {
						return v, nil
					}
					return Value{}, errors.ColumnNotFound(name, r.Columns(), blameTag(m, v))
				}
				nr := r.Clone()
				nr.vals[idx] = newVal
				return NewRecord(nr, v.tag), nil
			}
		}
		if idx < 0 {
			if mode == mutateUpsert {
				inner, err := mutateCellPath(Nothing(m.Tag), rest, newVal, mode, insensitive)
				if err != nil {
					return Value{}, err
				}
				nr := r.Clone()
				nr.cols = append(nr.cols, name)
				nr.vals = append(nr.vals, inner)
				return NewRecord(nr, v.tag), nil
			}
			if m.Optional {
				return v, nil
			}
			return Value{}, errors.ColumnNotFound(name, r.Columns(), blameTag(m, v))
		}
		child, err := mutateCellPath(r.vals[idx], rest, newVal, mode, insensitive)
		if err != nil {
			return Value{}, err
		}
		nr := r.Clone()
		nr.vals[idx] = child
		return NewRecord(nr, v.tag), nil
	case KindList:
		// Broadcast the mutation to every row.
		vals := v.data.([]Value)
		out := make([]Value, len(vals))
		for i, row := range vals {
			got, err := mutateCellPath(row, members, newVal, mode, insensitive)
			if err != nil {
				return Value{}, err
			}
			out[i] = got
		}
		return List(out, v.tag), nil
	case KindNothing:
		if mode == mutateUpdate {
			if m.Optional {
				return v, nil
			}
			return Value{}, errors.ColumnNotFound(name, nil, blameTag(m, v))
		}
		inner := newVal
		if len(rest) > 0 {
			var err error
			inner, err = mutateCellPath(Nothing(m.Tag), rest, newVal, mode, insensitive)
			if err != nil {
				return Value{}, err
			}
		}
		nr := &Record{cols: []string{name}, vals: []Value{inner}}
		return NewRecord(nr, v.tag), nil
	}
	return Value{}, errors.TypeMismatch("record", v.kind.String(), blameTag(m, v))
}
