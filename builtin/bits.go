package builtin

import (
	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/pipeline"
	"github.com/shale-sh/shale/signature"
	"github.com/shale-sh/shale/value"
)

// bitsCommand applies a binary integer operation against a fixed
// operand, broadcasting across list input. One type serves the whole
// bits family, parameterized by name and operation.
type bitsCommand struct {
	name string
	fn   func(a, b int64) int64
}

func newBitsCommand(name string, fn func(a, b int64) int64) *bitsCommand {
	return &bitsCommand{name: name, fn: fn}
}

func (c *bitsCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New(c.name).
			Input(value.IntType).
			Output(value.IntType).
			Required("operand", value.IntType, "integer combined with the input").
			WithCategory("bits").
			WithDesc("Combine the input with the operand bitwise."),
		signature.New(c.name).
			Input(value.ListOf(value.IntType)).
			Output(value.ListOf(value.IntType)).
			Required("operand", value.IntType, "integer combined with every item").
			WithCategory("bits"),
		signature.New(c.name).
			Input(value.ListOf(value.AnyType)).
			Output(value.ListOf(value.IntType)).
			Required("operand", value.IntType, "integer combined with every item").
			WithCategory("bits"),
	}
}

func (c *bitsCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	operandV, _ := cc.Args.Get("operand")
	operand, err := operandV.AsInt()
	if err != nil {
		return pipeline.Empty(), err
	}

	if cc.Args.Sig.InputType.Equal(value.IntType) {
		v := cc.Input.IntoValue(cc.Head)
		if v.IsError() {
			return pipeline.FromValue(v), nil
		}
		n, convErr := v.AsInt()
		if convErr != nil {
			return pipeline.Empty(), convErr
		}
		return pipeline.FromValue(value.Int(c.fn(n, operand), v.Tag().Until(operandV.Tag()))), nil
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
		if v.Kind() != value.KindInt {
			return value.Error(errors.TypeMismatch("int", v.Kind().String(), v.Tag())), true
		}
		n, _ := v.AsInt()
		return value.Int(c.fn(n, operand), v.Tag().Until(operandV.Tag())), true
	}, derived(in)...)
	return pipeline.FromStream(out), nil
}
