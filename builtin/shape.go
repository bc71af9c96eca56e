package builtin

import (
	"fmt"
	"sort"

	"github.com/shale-sh/shale/cellpath"
	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/pipeline"
	"github.com/shale-sh/shale/signature"
	"github.com/shale-sh/shale/value"
)

// zipCommand pairs each input item with the matching element of the
// argument list, stopping at the shorter side.
type zipCommand struct{}

func (c *zipCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("zip").
			Input(value.ListOf(value.AnyType)).
			Output(value.ListOf(value.AnyType)).
			Required("other", value.ListOf(value.AnyType), "list to pair with the input").
			WithCategory("filters").
			WithDesc("Pair input items with the other list's elements."),
		signature.New("zip").
			Input(value.RangeType).
			Output(value.ListOf(value.AnyType)).
			Required("other", value.ListOf(value.AnyType), "list to pair with the elements").
			WithCategory("filters"),
	}
}

func (c *zipCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	otherV, _ := cc.Args.Get("other")
	other, err := otherV.AsList()
	if err != nil {
		return pipeline.Empty(), err
	}

	in := cc.Input.IntoStream(cc.Signals())
	opts := []pipeline.Option{pipeline.WithOnClose(in.Close)}
	limit := int64(len(other))
	if known, ok := in.KnownLength(); ok && known < limit {
		limit = known
	}
	opts = append(opts, pipeline.WithKnownLength(limit))

	i := 0
	done := false
	out := pipeline.New(cc.Signals(), cc.Head, func() (value.Value, bool) {
		if done || i >= len(other) {
			return value.Value{}, false
		}
		v, ok := in.Next()
		if !ok {
			return value.Value{}, false
		}
		if v.IsError() {
			done = true
			return v, true
		}
		pair := value.List([]value.Value{v, other[i]}, v.Tag().Until(other[i].Tag()))
		i++
		return pair, true
	}, opts...)
	return pipeline.FromStream(out), nil
}

// flattenCommand splices one nesting level: items that are lists have
// their elements yielded in place, everything else passes through.
type flattenCommand struct{}

func (c *flattenCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("flatten").
			Input(value.ListOf(value.AnyType)).
			Output(value.ListOf(value.AnyType)).
			WithCategory("filters").
			WithDesc("Splice nested lists one level up."),
	}
}

func (c *flattenCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	in := cc.Input.IntoStream(cc.Signals())
	var pending []value.Value
	done := false
	out := pipeline.New(cc.Signals(), cc.Head, func() (value.Value, bool) {
		for {
			if len(pending) > 0 {
				v := pending[0]
				pending = pending[1:]
				return v, true
			}
			if done {
				return value.Value{}, false
			}
			v, ok := in.Next()
			if !ok {
				return value.Value{}, false
			}
			if v.IsError() {
				done = true
				return v, true
			}
			if v.Kind() == value.KindList {
				inner, _ := v.AsList()
				pending = append(pending, inner...)
				continue
			}
			return v, true
		}
	}, pipeline.WithOnClose(in.Close))
	return pipeline.FromStream(out), nil
}

// uniqCommand drops repeated items, keeping the first occurrence of
// each. With --count it reports a value/count table instead.
type uniqCommand struct{}

func (c *uniqCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("uniq").
			Input(value.ListOf(value.AnyType)).
			Output(value.ListOf(value.AnyType)).
			Switch("count", "c", "report each distinct value with its occurrence count").
			WithCategory("filters").
			WithDesc("Drop repeated items, keeping first occurrences."),
	}
}

func (c *uniqCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	in := cc.Input.IntoStream(cc.Signals())

	if !cc.Args.FlagBool("count") {
		var seen []value.Value
		done := false
		out := pipeline.New(cc.Signals(), cc.Head, func() (value.Value, bool) {
			for !done {
				v, ok := in.Next()
				if !ok {
					return value.Value{}, false
				}
				if v.IsError() {
					done = true
					return v, true
				}
				if containsValue(seen, v) {
					continue
				}
				seen = append(seen, v)
				return v, true
			}
			return value.Value{}, false
		}, pipeline.WithOnClose(in.Close))
		return pipeline.FromStream(out), nil
	}

	vals, errVal, ok := drain(in)
	if !ok {
		return pipeline.FromValue(errVal), nil
	}
	var distinct []value.Value
	var counts []int64
	for _, v := range vals {
		found := false
		for i, s := range distinct {
			if value.Equal(s, v) {
				counts[i]++
				found = true
				break
			}
		}
		if !found {
			distinct = append(distinct, v)
			counts = append(counts, 1)
		}
	}
	rows := make([]value.Value, len(distinct))
	for i, v := range distinct {
		rec := &value.Record{}
		_ = rec.Insert("value", v)
		_ = rec.Insert("count", value.Int(counts[i], cc.Head))
		rows[i] = value.NewRecord(rec, cc.Head)
	}
	return pipeline.FromValue(value.List(rows, cc.Head)), nil
}

func containsValue(vals []value.Value, v value.Value) bool {
	for _, s := range vals {
		if value.Equal(s, v) {
			return true
		}
	}
	return false
}

// sortByCommand orders rows by one or more cell paths. The sort is
// stable, so rows equal under every key keep their input order.
type sortByCommand struct{}

func (c *sortByCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("sort-by").
			Input(value.ListOf(value.AnyType)).
			Output(value.ListOf(value.AnyType)).
			WithRest("paths", value.CellPathType, "cells to order by, earlier paths win").
			Switch("reverse", "r", "sort descending instead of ascending").
			WithCategory("filters").
			WithDesc("Sort items by the cells the paths name."),
	}
}

func (c *sortByCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	paths, err := restPaths(cc)
	if err != nil {
		return pipeline.Empty(), err
	}
	if len(paths) == 0 {
		return pipeline.Empty(), errors.MissingPositional("paths", cc.Head)
	}

	in := cc.Input.IntoStream(cc.Signals())
	vals, errVal, ok := drain(in)
	if !ok {
		return pipeline.FromValue(errVal), nil
	}

	keys := make([][]value.Value, len(vals))
	for i, v := range vals {
		keys[i] = make([]value.Value, len(paths))
		for j, p := range paths {
			k, followErr := v.FollowCellPath(p, false)
			if followErr != nil {
				return pipeline.Empty(), followErr
			}
			keys[i][j] = k
		}
	}

	reverse := cc.Args.FlagBool("reverse")
	var sortErr error
	order := make([]int, len(vals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if sortErr != nil {
			return false
		}
		for j := range paths {
			cmp, cmpErr := value.Compare(keys[order[a]][j], keys[order[b]][j])
			if cmpErr != nil {
				sortErr = cmpErr
				return false
			}
			if cmp != 0 {
				if reverse {
					return cmp > 0
				}
				return cmp < 0
			}
		}
		return false
	})
	if sortErr != nil {
		return pipeline.Empty(), sortErr
	}

	sorted := make([]value.Value, len(vals))
	for i, idx := range order {
		sorted[i] = vals[idx]
	}
	return pipeline.FromValue(value.List(sorted, cc.Head)), nil
}

// histogramCommand tallies distinct values into a value/count/percentage
// table, ordered by first occurrence. An optional cell path tallies that
// cell of each row instead of the row itself.
type histogramCommand struct{}

func (c *histogramCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("histogram").
			Input(value.ListOf(value.AnyType)).
			Output(value.TableType).
			Optional("column", value.CellPathType, "cell to tally instead of the whole item").
			WithCategory("chart").
			WithDesc("Count occurrences of each distinct value."),
	}
}

func (c *histogramCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	var col *cellpath.Path
	if v, ok := cc.Args.Get("column"); ok {
		p, err := v.AsCellPath()
		if err != nil {
			return pipeline.Empty(), err
		}
		col = &p
	}

	in := cc.Input.IntoStream(cc.Signals())
	vals, errVal, ok := drain(in)
	if !ok {
		return pipeline.FromValue(errVal), nil
	}

	var distinct []value.Value
	var counts []int64
	for _, v := range vals {
		key := v
		if col != nil {
			got, err := v.FollowCellPath(*col, false)
			if err != nil {
				return pipeline.Empty(), err
			}
			key = got
		}
		found := false
		for i, s := range distinct {
			if value.Equal(s, key) {
				counts[i]++
				found = true
				break
			}
		}
		if !found {
			distinct = append(distinct, key)
			counts = append(counts, 1)
		}
	}

	total := int64(len(vals))
	rows := make([]value.Value, len(distinct))
	for i, v := range distinct {
		pct := 0.0
		if total > 0 {
			pct = float64(counts[i]) / float64(total) * 100
		}
		rec := &value.Record{}
		_ = rec.Insert("value", v)
		_ = rec.Insert("count", value.Int(counts[i], cc.Head))
		_ = rec.Insert("percentage", value.String(fmt.Sprintf("%.2f%%", pct), cc.Head))
		rows[i] = value.NewRecord(rec, cc.Head)
	}
	return pipeline.FromValue(value.List(rows, cc.Head)), nil
}
