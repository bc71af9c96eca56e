package eval

import (
	"context"

	"github.com/shale-sh/shale/logger"
	"github.com/shale-sh/shale/pipeline"
	"github.com/shale-sh/shale/signature"
	"github.com/shale-sh/shale/source"
	"github.com/shale-sh/shale/value"
)

// Command is one registered command. Signatures returns the per-input-
// type overloads, all sharing one name; the driver picks an overload by
// the pipeline input's type, binds the call against it, and runs.
type Command interface {
	Signatures() []*signature.Signature
	Run(cc *CallContext) (pipeline.PipelineData, error)
}

// ErrorAcceptor marks commands that want error values delivered as
// input instead of short-circuiting past them. try implements this so
// failures upstream reach its catch block.
type ErrorAcceptor interface {
	AcceptsErrors() bool
}

func acceptsErrors(cmd Command) bool {
	ea, ok := cmd.(ErrorAcceptor)
	return ok && ea.AcceptsErrors()
}

// CallContext is everything one command invocation sees: the evaluator
// (for running closures), the caller's stack, the bound arguments, the
// pipeline input, and the span of the command name at the call site.
type CallContext struct {
	Context context.Context
	Eval    *Evaluator
	Stack   *Stack
	Args    *signature.BoundArgs
	Input   pipeline.PipelineData
	Head    source.Tag
	Log     *logger.Logger
}

// Engine returns the engine state the evaluator runs against.
func (cc *CallContext) Engine() *EngineState {
	return cc.Eval.engine
}

// Signals returns the interrupt state shared by this evaluation.
func (cc *CallContext) Signals() *pipeline.Signals {
	return cc.Eval.signals
}

// RunClosure invokes a closure value with positional arguments and
// pipeline input. Parameters bind positionally; surplus arguments are
// dropped and unbound parameters become nothing, so a zero-parameter
// closure still accepts a delivered argument. The body sees the
// closure's captures plus the caller's dynamic environment.
func (cc *CallContext) RunClosure(cl *value.Closure, args []value.Value, input pipeline.PipelineData) (pipeline.PipelineData, error) {
	block, err := cc.Engine().Block(cl.BlockID)
	if err != nil {
		return pipeline.Empty(), err
	}
	stack := cc.Stack.ClosureStack(cl)
	for i, param := range cl.Params {
		if i < len(args) {
			stack.Set(param, args[i])
			continue
		}
		stack.Set(param, value.Nothing(cc.Head))
	}
	return cc.Eval.EvalBlock(cc.Context, stack, block, input)
}

// RunClosureValue invokes a closure and collects the result into a
// single value tagged at the call head. Errors inside the body arrive
// as an error value.
func (cc *CallContext) RunClosureValue(cl *value.Closure, args []value.Value, input pipeline.PipelineData) (value.Value, error) {
	out, err := cc.RunClosure(cl, args, input)
	if err != nil {
		return value.Value{}, err
	}
	return out.IntoValue(cc.Head), nil
}
