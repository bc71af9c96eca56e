package builtin

import (
	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/pipeline"
	"github.com/shale-sh/shale/signature"
	"github.com/shale-sh/shale/value"
)

// firstCommand yields the leading item, or with a count the leading n
// items as a list. Pulls stop as soon as the request is satisfied.
type firstCommand struct{}

func (c *firstCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("first").
			Input(value.ListOf(value.AnyType)).
			Output(value.AnyType).
			Optional("n", value.IntType, "number of leading items to keep").
			WithCategory("filters").
			WithDesc("Keep the first item, or the first n items."),
		signature.New("first").
			Input(value.RangeType).
			Output(value.AnyType).
			Optional("n", value.IntType, "number of leading elements to keep").
			WithCategory("filters"),
	}
}

func (c *firstCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	in := cc.Input.IntoStream(cc.Signals())

	nv, hasN := cc.Args.Get("n")
	if !hasN {
		v, ok := in.Next()
		_ = in.Close()
		if !ok {
			return pipeline.Empty(), errors.EmptyData("input", cc.Head)
		}
		return pipeline.FromValue(v), nil
	}

	n, err := nv.AsInt()
	if err != nil {
		_ = in.Close()
		return pipeline.Empty(), err
	}
	if n < 0 {
		_ = in.Close()
		return pipeline.Empty(), errors.TypeMismatch("non-negative int", nv.String(), nv.Tag())
	}
	return pipeline.FromStream(in.Take(n)), nil
}

// lastCommand yields the trailing item, or with a count the trailing n
// items. The input has to drain fully before anything comes out.
type lastCommand struct{}

func (c *lastCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("last").
			Input(value.ListOf(value.AnyType)).
			Output(value.AnyType).
			Optional("n", value.IntType, "number of trailing items to keep").
			WithCategory("filters").
			WithDesc("Keep the last item, or the last n items."),
		signature.New("last").
			Input(value.RangeType).
			Output(value.AnyType).
			Optional("n", value.IntType, "number of trailing elements to keep").
			WithCategory("filters"),
	}
}

func (c *lastCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	in := cc.Input.IntoStream(cc.Signals())
	vals, errVal, ok := drain(in)
	if !ok {
		return pipeline.FromValue(errVal), nil
	}

	nv, hasN := cc.Args.Get("n")
	if !hasN {
		if len(vals) == 0 {
			return pipeline.Empty(), errors.EmptyData("input", cc.Head)
		}
		return pipeline.FromValue(vals[len(vals)-1]), nil
	}

	n, err := nv.AsInt()
	if err != nil {
		return pipeline.Empty(), err
	}
	if n < 0 {
		return pipeline.Empty(), errors.TypeMismatch("non-negative int", nv.String(), nv.Tag())
	}
	if n > int64(len(vals)) {
		n = int64(len(vals))
	}
	return pipeline.FromValue(value.List(vals[int64(len(vals))-n:], cc.Head)), nil
}

// skipCommand discards the leading n items and passes the rest through
// untouched. The discards happen on the first downstream pull, not at
// call time.
type skipCommand struct{}

func (c *skipCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("skip").
			Input(value.ListOf(value.AnyType)).
			Output(value.ListOf(value.AnyType)).
			Optional("n", value.IntType, "number of leading items to drop, one if omitted").
			WithCategory("filters").
			WithDesc("Drop the first n items."),
		signature.New("skip").
			Input(value.RangeType).
			Output(value.ListOf(value.AnyType)).
			Optional("n", value.IntType, "number of leading elements to drop, one if omitted").
			WithCategory("filters"),
	}
}

func (c *skipCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	n := int64(1)
	if nv, ok := cc.Args.Get("n"); ok {
		parsed, err := nv.AsInt()
		if err != nil {
			return pipeline.Empty(), err
		}
		if parsed < 0 {
			return pipeline.Empty(), errors.TypeMismatch("non-negative int", nv.String(), nv.Tag())
		}
		n = parsed
	}

	in := cc.Input.IntoStream(cc.Signals())
	opts := []pipeline.Option{pipeline.WithOnClose(in.Close)}
	if known, ok := in.KnownLength(); ok {
		remaining := known - n
		if remaining < 0 {
			remaining = 0
		}
		opts = append(opts, pipeline.WithKnownLength(remaining))
	}

	skipped := false
	done := false
	out := pipeline.New(cc.Signals(), cc.Head, func() (value.Value, bool) {
		if done {
			return value.Value{}, false
		}
		if !skipped {
			skipped = true
			for i := int64(0); i < n; i++ {
				v, ok := in.Next()
				if !ok {
					return value.Value{}, false
				}
				if v.IsError() {
					done = true
					return v, true
				}
			}
		}
		v, ok := in.Next()
		if ok && v.IsError() {
			done = true
		}
		return v, ok
	}, opts...)
	return pipeline.FromStream(out), nil
}

// takeCommand keeps the leading n items. The source sees exactly n
// pulls, so taking from an unbounded generator is fine.
type takeCommand struct{}

func (c *takeCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("take").
			Input(value.ListOf(value.AnyType)).
			Output(value.ListOf(value.AnyType)).
			Required("n", value.IntType, "number of leading items to keep").
			WithCategory("filters").
			WithDesc("Keep the first n items, pulling no more than n."),
		signature.New("take").
			Input(value.RangeType).
			Output(value.ListOf(value.AnyType)).
			Required("n", value.IntType, "number of leading elements to keep").
			WithCategory("filters"),
	}
}

func (c *takeCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	nv, _ := cc.Args.Get("n")
	n, err := nv.AsInt()
	if err != nil {
		return pipeline.Empty(), err
	}
	if n < 0 {
		return pipeline.Empty(), errors.TypeMismatch("non-negative int", nv.String(), nv.Tag())
	}
	in := cc.Input.IntoStream(cc.Signals())
	return pipeline.FromStream(in.Take(n)), nil
}

// lengthCommand counts the input items. A stream that already knows its
// length answers without draining.
type lengthCommand struct{}

func (c *lengthCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("length").
			Input(value.ListOf(value.AnyType)).
			Output(value.IntType).
			WithCategory("filters").
			WithDesc("Count the items in the input."),
		signature.New("length").
			Input(value.RangeType).
			Output(value.IntType).
			WithCategory("filters"),
	}
}

func (c *lengthCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	in := cc.Input.IntoStream(cc.Signals())
	if n, ok := in.KnownLength(); ok {
		_ = in.Close()
		return pipeline.FromValue(value.Int(n, cc.Head)), nil
	}

	var n int64
	for {
		v, ok := in.Next()
		if !ok {
			break
		}
		if v.IsError() {
			_ = in.Close()
			return pipeline.FromValue(v), nil
		}
		n++
	}
	_ = in.Close()
	return pipeline.FromValue(value.Int(n, cc.Head)), nil
}
