package builtin

import (
	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/pipeline"
	"github.com/shale-sh/shale/signature"
	"github.com/shale-sh/shale/value"
)

// seqCommand emits an integer sequence. Called bare it counts from one
// bound to the other; fed a range it enumerates the range, which may be
// unbounded, so downstream slicing decides how much gets produced.
type seqCommand struct{}

func (c *seqCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("seq").
			Input(value.NothingType).
			Output(value.ListOf(value.IntType)).
			Required("from", value.IntType, "first element").
			Required("to", value.IntType, "final element, inclusive").
			Optional("step", value.IntType, "stride, defaults to one toward the final element").
			WithCategory("generators").
			WithDesc("Emit integers from one bound to the other."),
		signature.New("seq").
			Input(value.RangeType).
			Output(value.ListOf(value.IntType)).
			WithCategory("generators"),
	}
}

func (c *seqCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	if cc.Args.Sig.InputType.Equal(value.RangeType) {
		return pipeline.FromStream(cc.Input.IntoStream(cc.Signals())), nil
	}

	fromV, _ := cc.Args.Get("from")
	from, err := fromV.AsInt()
	if err != nil {
		return pipeline.Empty(), err
	}
	toV, _ := cc.Args.Get("to")
	to, err := toV.AsInt()
	if err != nil {
		return pipeline.Empty(), err
	}

	step := int64(1)
	if to < from {
		step = -1
	}
	stepTag := cc.Head
	if sv, ok := cc.Args.Get("step"); ok {
		step, err = sv.AsInt()
		if err != nil {
			return pipeline.Empty(), err
		}
		stepTag = sv.Tag()
	}

	r, err := value.NewBoundedRange(from, step, to, true, stepTag)
	if err != nil {
		return pipeline.Empty(), err
	}
	return pipeline.FromStream(pipeline.FromRange(cc.Signals(), r, cc.Head)), nil
}

// generateCommand drives a stateful closure. Each turn the closure
// receives the current state and answers with a record: an "out" cell
// is emitted, a "next" cell becomes the following state, and omitting
// "next" ends the stream. The stream is lazy, so an endless generator
// composed with a slicing stage produces only what gets pulled.
type generateCommand struct{}

func (c *generateCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("generate").
			Input(value.NothingType).
			Output(value.ListOf(value.AnyType)).
			Required("initial", value.AnyType, "state handed to the first turn").
			Required("closure", value.ClosureType, "closure mapping state to {out, next}").
			WithCategory("generators").
			WithDesc("Emit values from a stateful closure until it stops."),
	}
}

func (c *generateCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	initial, _ := cc.Args.Get("initial")
	cl, err := closureArg(cc, "closure")
	if err != nil {
		return pipeline.Empty(), err
	}

	step := func(state value.Value) (out, next *value.Value) {
		res, runErr := cc.RunClosureValue(cl, []value.Value{state}, pipeline.Empty())
		if runErr != nil {
			failed := closureFailure(runErr, cc)
			return &failed, nil
		}
		if res.IsError() {
			return &res, nil
		}
		rec, recErr := res.AsRecord()
		if recErr != nil {
			bad := value.Error(errors.TypeMismatch("record", res.Kind().String(), res.Tag()))
			return &bad, nil
		}
		if o, ok := rec.Get("out"); ok {
			emitted := o
			out = &emitted
		}
		if n, ok := rec.Get("next"); ok {
			following := n
			next = &following
		}
		return out, next
	}
	return pipeline.FromStream(pipeline.Generate(cc.Signals(), initial, step, cc.Head)), nil
}
