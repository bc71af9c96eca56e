package builtin

import (
	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/observability"
	"github.com/shale-sh/shale/pipeline"
	"github.com/shale-sh/shale/signature"
	"github.com/shale-sh/shale/value"
)

// eachCommand maps a closure over the input, one output item per input
// item, pulled lazily.
type eachCommand struct{}

func (c *eachCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("each").
			Input(value.ListOf(value.AnyType)).
			Output(value.ListOf(value.AnyType)).
			Required("closure", value.ClosureType, "closure to run on each item").
			WithCategory("filters").
			WithDesc("Run a closure on each item, yielding results lazily."),
		signature.New("each").
			Input(value.RangeType).
			Output(value.ListOf(value.AnyType)).
			Required("closure", value.ClosureType, "closure to run on each element").
			WithCategory("filters"),
	}
}

func (c *eachCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	cl, err := closureArg(cc, "closure")
	if err != nil {
		return pipeline.Empty(), err
	}

	in := cc.Input.IntoStream(cc.Signals())
	done := false
	out := pipeline.New(cc.Signals(), cc.Head, func() (value.Value, bool) {
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
		mapped, runErr := cc.RunClosureValue(cl, []value.Value{v}, pipeline.Empty())
		if runErr != nil {
			done = true
			return closureFailure(runErr, cc), true
		}
		if mapped.IsError() {
			done = true
		}
		return mapped, true
	}, derived(in)...)
	return pipeline.FromStream(out), nil
}

// parEachCommand fans the closure out over a bounded worker pool.
// Results arrive in completion order unless --keep-order buffers them
// back into input order; the first failing item cancels the rest.
type parEachCommand struct{}

func (c *parEachCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("par-each").
			Input(value.ListOf(value.AnyType)).
			Output(value.ListOf(value.AnyType)).
			Required("closure", value.ClosureType, "closure to run on each item").
			Named("threads", "t", value.IntType, "worker pool size; defaults to the configured parallelism").
			Switch("keep-order", "k", "yield results in input order instead of completion order").
			WithCategory("filters").
			WithDesc("Run a closure on each item in parallel."),
		signature.New("par-each").
			Input(value.RangeType).
			Output(value.ListOf(value.AnyType)).
			Required("closure", value.ClosureType, "closure to run on each element").
			Named("threads", "t", value.IntType, "worker pool size; defaults to the configured parallelism").
			Switch("keep-order", "k", "yield results in input order instead of completion order").
			WithCategory("filters"),
	}
}

func (c *parEachCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	cl, err := closureArg(cc, "closure")
	if err != nil {
		return pipeline.Empty(), err
	}

	threads := cc.Engine().Config().WorkerThreads()
	if n, ok := cc.Args.FlagInt("threads"); ok && n > 0 {
		threads = int(n)
	}
	keepOrder := cc.Args.FlagBool("keep-order")

	cc.Log.Debug("par-each", map[string]interface{}{
		"threads":    threads,
		"keep_order": keepOrder,
	})

	in := cc.Input.IntoStream(cc.Signals())
	out := pipeline.ParEach(in, threads, keepOrder, func(idx int, v value.Value) value.Value {
		if v.IsError() {
			return v
		}
		sctx, span := observability.StartSpan(cc.Context, observability.SpanParEachWorker)
		observability.SetSpanAttribute(sctx, observability.AttrItemIndex, idx)
		defer span.End()
		mapped, runErr := cc.RunClosureValue(cl, []value.Value{v}, pipeline.Empty())
		if runErr != nil {
			observability.SetSpanError(sctx, runErr)
			return closureFailure(runErr, cc)
		}
		return mapped
	})
	return pipeline.FromStream(out), nil
}

// whereCommand keeps the items for which the predicate closure returns
// true. The predicate must produce a bool; anything else fails at the
// offending item.
type whereCommand struct{}

func (c *whereCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("where").
			Input(value.ListOf(value.AnyType)).
			Output(value.ListOf(value.AnyType)).
			Required("predicate", value.ClosureType, "closure deciding which items to keep").
			WithCategory("filters").
			WithDesc("Keep the items the predicate holds for."),
		signature.New("where").
			Input(value.RangeType).
			Output(value.ListOf(value.AnyType)).
			Required("predicate", value.ClosureType, "closure deciding which elements to keep").
			WithCategory("filters"),
	}
}

func (c *whereCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	cl, err := closureArg(cc, "predicate")
	if err != nil {
		return pipeline.Empty(), err
	}

	in := cc.Input.IntoStream(cc.Signals())
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
			res, runErr := cc.RunClosureValue(cl, []value.Value{v}, pipeline.Empty())
			if runErr != nil {
				done = true
				return closureFailure(runErr, cc), true
			}
			if res.IsError() {
				done = true
				return res, true
			}
			keep, boolErr := res.AsBool()
			if boolErr != nil {
				done = true
				return closureFailure(boolErr, cc), true
			}
			if keep {
				return v, true
			}
		}
		return value.Value{}, false
	}, pipeline.WithOnClose(in.Close))
	return pipeline.FromStream(out), nil
}

// doCommand invokes a closure with the pipeline input, passing any
// extra arguments through to the closure's parameters.
type doCommand struct{}

func (c *doCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("do").
			Input(value.AnyType).
			Output(value.AnyType).
			Required("closure", value.ClosureType, "closure to run").
			WithRest("args", value.AnyType, "arguments bound to the closure's parameters").
			WithCategory("core").
			WithDesc("Run a closure with the pipeline input."),
	}
}

func (c *doCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	cl, err := closureArg(cc, "closure")
	if err != nil {
		return pipeline.Empty(), err
	}
	return cc.RunClosure(cl, cc.Args.Rest(), cc.Input)
}
