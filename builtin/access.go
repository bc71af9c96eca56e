package builtin

import (
	"github.com/shale-sh/shale/cellpath"
	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/pipeline"
	"github.com/shale-sh/shale/signature"
	"github.com/shale-sh/shale/value"
)

// getCommand follows a cell path into the input. Misses fail with the
// offending path member blamed; --ignore-errors turns them into
// nothing, --ignore-case matches columns without regard to case.
type getCommand struct{}

func (c *getCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("get").
			Input(value.AnyType).
			Output(value.AnyType).
			Required("path", value.CellPathType, "cell path into the input").
			Switch("ignore-errors", "i", "return nothing instead of failing on a missing cell").
			Switch("ignore-case", "s", "match column names without regard to case").
			WithCategory("filters").
			WithDesc("Extract the cell a path names."),
	}
}

func (c *getCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	pathV, _ := cc.Args.Get("path")
	path, err := pathV.AsCellPath()
	if err != nil {
		return pipeline.Empty(), err
	}

	v := cc.Input.IntoValue(cc.Head)
	if v.IsError() {
		return pipeline.FromValue(v), nil
	}
	got, followErr := v.FollowCellPath(path, cc.Args.FlagBool("ignore-case"))
	if followErr != nil {
		if cc.Args.FlagBool("ignore-errors") {
			return pipeline.FromValue(value.Nothing(cc.Head)), nil
		}
		return pipeline.Empty(), followErr
	}
	return pipeline.FromValue(got), nil
}

// selectCommand projects the named cells into a fresh record; on list
// input the projection applies to every row, lazily.
type selectCommand struct{}

func (c *selectCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("select").
			Input(value.RecordType).
			Output(value.RecordType).
			WithRest("paths", value.CellPathType, "cells to keep").
			WithCategory("filters").
			WithDesc("Keep only the named cells."),
		signature.New("select").
			Input(value.ListOf(value.AnyType)).
			Output(value.TableType).
			WithRest("paths", value.CellPathType, "columns to keep in every row").
			WithCategory("filters"),
	}
}

func (c *selectCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	paths, err := restPaths(cc)
	if err != nil {
		return pipeline.Empty(), err
	}
	if len(paths) == 0 {
		return pipeline.Empty(), errors.MissingPositional("paths", cc.Head)
	}

	if cc.Args.Sig.InputType.Equal(value.RecordType) {
		v := cc.Input.IntoValue(cc.Head)
		if v.IsError() {
			return pipeline.FromValue(v), nil
		}
		projected, projErr := projectRecord(v, paths)
		if projErr != nil {
			return pipeline.Empty(), projErr
		}
		return pipeline.FromValue(projected), nil
	}

	in := cc.Input.IntoStream(cc.Signals())
	done := false
	out := pipeline.New(cc.Signals(), cc.Head, func() (value.Value, bool) {
		if done {
			return value.Value{}, false
		}
		row, ok := in.Next()
		if !ok {
			return value.Value{}, false
		}
		if row.IsError() {
			done = true
			return row, true
		}
		projected, projErr := projectRecord(row, paths)
		if projErr != nil {
			done = true
			return closureFailure(projErr, cc), true
		}
		return projected, true
	}, derived(in)...)
	return pipeline.FromStream(out), nil
}

// projectRecord builds a record holding the cells the paths name, in
// path order. A single-field path keeps its column name; deeper paths
// key by their full spelling.
func projectRecord(v value.Value, paths []cellpath.Path) (value.Value, error) {
	out := &value.Record{}
	for _, p := range paths {
		got, err := v.FollowCellPath(p, false)
		if err != nil {
			return value.Value{}, err
		}
		if err := out.Insert(projectedColumn(p), got); err != nil {
			return value.Value{}, errors.Custom(err.Error(), p.Tag())
		}
	}
	return value.NewRecord(out, v.Tag()), nil
}

func projectedColumn(p cellpath.Path) string {
	if len(p.Members) == 1 {
		if name, ok := p.Members[0].FieldName(); ok {
			return name
		}
	}
	return p.String()
}

// rejectCommand drops the named cells, keeping everything else in its
// original order. On list input a field path drops the column from
// every row and an index path drops the row itself.
type rejectCommand struct{}

func (c *rejectCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("reject").
			Input(value.RecordType).
			Output(value.RecordType).
			WithRest("paths", value.CellPathType, "cells to drop").
			WithCategory("filters").
			WithDesc("Drop the named cells."),
		signature.New("reject").
			Input(value.ListOf(value.AnyType)).
			Output(value.TableType).
			WithRest("paths", value.CellPathType, "columns or rows to drop").
			WithCategory("filters"),
	}
}

func (c *rejectCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	paths, err := restPaths(cc)
	if err != nil {
		return pipeline.Empty(), err
	}
	if len(paths) == 0 {
		return pipeline.Empty(), errors.MissingPositional("paths", cc.Head)
	}

	v := cc.Input.IntoValue(cc.Head)
	if v.IsError() {
		return pipeline.FromValue(v), nil
	}
	for _, p := range paths {
		v, err = removePath(v, p.Members)
		if err != nil {
			return pipeline.Empty(), err
		}
	}
	return pipeline.FromValue(v), nil
}

// removePath deletes the cell the members name, rebuilding the spine
// above it. Only the final member is removed; intermediate members must
// resolve. A list broadcasts field removal across its rows.
func removePath(v value.Value, members []cellpath.Member) (value.Value, error) {
	if len(members) == 0 {
		return v, nil
	}
	if v.IsError() {
		return v, nil
	}
	m := members[0]

	if m.Kind() == cellpath.IndexMember {
		idx, _ := m.IndexValue()
		return removeIndex(v, m, idx, members[1:])
	}
	name, _ := m.FieldName()
	return removeField(v, m, name, members)
}

func removeIndex(v value.Value, m cellpath.Member, idx int, rest []cellpath.Member) (value.Value, error) {
	if v.Kind() != value.KindList {
		return value.Value{}, errors.TypeMismatch("list", v.Kind().String(), m.Tag)
	}
	rows, _ := v.AsList()
	i := idx
	if i < 0 {
		i += len(rows)
	}
	if i < 0 || i >= len(rows) {
		if m.Optional {
			return v, nil
		}
		return value.Value{}, errors.IndexOutOfRange(idx, len(rows), m.Tag)
	}
	if len(rest) == 0 {
		out := make([]value.Value, 0, len(rows)-1)
		out = append(out, rows[:i]...)
		out = append(out, rows[i+1:]...)
		return value.List(out, v.Tag()), nil
	}
	child, err := removePath(rows[i], rest)
	if err != nil {
		return value.Value{}, err
	}
	out := make([]value.Value, len(rows))
	copy(out, rows)
	out[i] = child
	return value.List(out, v.Tag()), nil
}

func removeField(v value.Value, m cellpath.Member, name string, members []cellpath.Member) (value.Value, error) {
	rest := members[1:]
	switch v.Kind() {
	case value.KindRecord:
		rec, _ := v.AsRecord()
		if len(rest) == 0 {
			out := rec.Clone()
			if !out.Remove(name) {
				if m.Optional {
					return v, nil
				}
				return value.Value{}, errors.ColumnNotFound(name, rec.Columns(), m.Tag)
			}
			return value.NewRecord(out, v.Tag()), nil
		}
		child, ok := rec.Get(name)
		if !ok {
			if m.Optional {
				return v, nil
			}
			return value.Value{}, errors.ColumnNotFound(name, rec.Columns(), m.Tag)
		}
		newChild, err := removePath(child, rest)
		if err != nil {
			return value.Value{}, err
		}
		out := rec.Clone()
		out.Upsert(name, newChild)
		return value.NewRecord(out, v.Tag()), nil
	case value.KindList:
		rows, _ := v.AsList()
		out := make([]value.Value, len(rows))
		for i, row := range rows {
			got, err := removePath(row, members)
			if err != nil {
				return value.Value{}, err
			}
			out[i] = got
		}
		return value.List(out, v.Tag()), nil
	}
	return value.Value{}, errors.TypeMismatch("record", v.Kind().String(), m.Tag)
}

// restPaths reads the rest parameter as cell paths. Binding has already
// coerced each argument, including bare strings.
func restPaths(cc *eval.CallContext) ([]cellpath.Path, error) {
	rest := cc.Args.Rest()
	paths := make([]cellpath.Path, len(rest))
	for i, v := range rest {
		p, err := v.AsCellPath()
		if err != nil {
			return nil, err
		}
		paths[i] = p
	}
	return paths, nil
}
