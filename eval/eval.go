package eval

import (
	"context"
	"fmt"
	"time"

	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/logger"
	"github.com/shale-sh/shale/observability"
	"github.com/shale-sh/shale/pipeline"
	"github.com/shale-sh/shale/signature"
	"github.com/shale-sh/shale/source"
	"github.com/shale-sh/shale/value"
)

// Evaluator drives blocks, pipelines, and expressions against an
// engine. One evaluator serves one top-level evaluation and carries its
// interrupt state; the REPL makes a fresh one per submitted line so
// Ctrl-C cancels only the line it was aimed at.
type Evaluator struct {
	engine  *EngineState
	signals *pipeline.Signals
	log     *logger.Logger
}

// New returns an evaluator for the engine. A nil signals gets a fresh
// uninterruptible one.
func New(engine *EngineState, signals *pipeline.Signals) *Evaluator {
	if signals == nil {
		signals = pipeline.NewSignals(nil)
	}
	return &Evaluator{
		engine:  engine,
		signals: signals,
		log:     engine.Logger().WithComponent("eval"),
	}
}

// Engine returns the engine state this evaluator runs against.
func (ev *Evaluator) Engine() *EngineState {
	return ev.engine
}

// Signals returns the interrupt state shared by this evaluation.
func (ev *Evaluator) Signals() *pipeline.Signals {
	return ev.signals
}

// EvalBlock runs the block's pipelines in order and returns the last
// one's data. Pipeline input feeds the first pipeline only; the data of
// every non-final pipeline is drained and discarded.
func (ev *Evaluator) EvalBlock(ctx context.Context, stack *Stack, b *Block, input pipeline.PipelineData) (pipeline.PipelineData, error) {
	data := pipeline.Empty()
	for i, p := range b.Pipelines {
		in := pipeline.Empty()
		if i == 0 {
			in = input
		}
		out, err := ev.EvalPipeline(ctx, stack, p, in)
		if err != nil {
			return pipeline.Empty(), err
		}
		if i < len(b.Pipelines)-1 {
			// An error value aborts the rest of the block and becomes
			// its result; anything else is discarded.
			if _, isErr := out.FirstError(); isErr {
				return out, nil
			}
			if derr := out.Drain(); derr != nil {
				return pipeline.Empty(), derr
			}
			continue
		}
		data = out
	}
	return data, nil
}

// EvalPipeline evaluates stages left to right, each stage's data
// feeding the next. When the pipeline declares a binding, the collected
// result is assigned in the current frame and the pipeline yields empty
// data.
func (ev *Evaluator) EvalPipeline(ctx context.Context, stack *Stack, p *Pipeline, input pipeline.PipelineData) (pipeline.PipelineData, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanPipeline)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrSessionID, ev.engine.SessionID().String())

	if serr := ev.signals.Check(pipelineTag(p)); serr != nil {
		abandon(input)
		return pipeline.Empty(), serr
	}

	data := input
	for i := range p.Stages {
		out, err := ev.evalStage(ctx, stack, &p.Stages[i], data)
		if err != nil {
			observability.SetSpanError(ctx, err)
			return pipeline.Empty(), err
		}
		data = out
	}

	if p.Decl != "" {
		stack.Set(p.Decl, data.IntoValue(p.DeclTag))
		return pipeline.Empty(), nil
	}
	return data, nil
}

// evalStage produces one stage's data. Catchable failures come back as
// error-value data so they flow through the pipeline; only control
// errors (interrupts) return as Go errors and unwind.
func (ev *Evaluator) evalStage(ctx context.Context, stack *Stack, st *Stage, input pipeline.PipelineData) (pipeline.PipelineData, error) {
	if st.Expr != nil {
		// An expression stage replaces whatever flowed in.
		abandon(input)
		v, err := ev.EvalExpr(ctx, stack, st.Expr)
		if err != nil {
			return ev.errorData(ctx, err)
		}
		return pipeline.FromValue(v), nil
	}

	cmd, ok := ev.engine.Command(st.Name)
	if !ok {
		abandon(input)
		return ev.errorData(ctx, errors.CommandNotFound(st.Name, ev.engine.CommandNames(), st.NameTag))
	}

	// An error value as input skips the command entirely unless the
	// command asked for errors (try does).
	if _, isErr := input.FirstError(); isErr && !acceptsErrors(cmd) {
		return input, nil
	}

	call := signature.Call{Head: st.NameTag}
	for _, pe := range st.Positional {
		v, err := ev.EvalExpr(ctx, stack, pe)
		if err != nil {
			abandon(input)
			return ev.errorData(ctx, err)
		}
		if v.IsError() {
			abandon(input)
			return pipeline.FromValue(v), nil
		}
		call.Positional = append(call.Positional, v)
	}
	for _, na := range st.Named {
		arg := signature.NamedArg{Name: na.Name, Tag: na.NameTag}
		if na.Value != nil {
			v, err := ev.EvalExpr(ctx, stack, na.Value)
			if err != nil {
				abandon(input)
				return ev.errorData(ctx, err)
			}
			if v.IsError() {
				abandon(input)
				return pipeline.FromValue(v), nil
			}
			arg.Value = &v
		}
		call.Named = append(call.Named, arg)
	}

	inType := input.Type()
	sig, err := signature.SelectOverload(cmd.Signatures(), inType, st.NameTag)
	if err != nil {
		abandon(input)
		return ev.errorData(ctx, err)
	}
	bound, err := signature.Bind(sig, call)
	if err != nil {
		abandon(input)
		return ev.errorData(ctx, err)
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanCommand)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrCommandName, st.Name)

	ev.log.Debug("stage", map[string]interface{}{
		"command": st.Name,
		"input":   inType.String(),
	})

	cc := &CallContext{
		Context: ctx,
		Eval:    ev,
		Stack:   stack,
		Args:    bound,
		Input:   input,
		Head:    st.NameTag,
		Log:     ev.log,
	}
	start := time.Now()
	out, err := cmd.Run(cc)
	if m := ev.engine.Metrics(); m != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		m.RecordCommand(ctx, st.Name, status, time.Since(start))
	}
	if err != nil {
		observability.SetSpanError(ctx, err)
		if serr, ok := errors.As(err); ok {
			observability.SetSpanAttribute(ctx, observability.AttrErrorKind, string(serr.Kind))
		}
		return ev.errorData(ctx, err)
	}
	return out, nil
}

// EvalExpr evaluates one expression node. Error values returned by
// subexpressions propagate as values; Go errors are either catchable
// ShellErrors (the caller turns them into error values) or control
// errors.
func (ev *Evaluator) EvalExpr(ctx context.Context, stack *Stack, e Expr) (value.Value, error) {
	if serr := ev.signals.Check(e.Tag()); serr != nil {
		return value.Value{}, serr
	}

	switch n := e.(type) {
	case *Literal:
		return n.Value, nil

	case *Var:
		v, ok := stack.Lookup(n.Name)
		if !ok {
			return value.Value{}, errors.VariableNotFound(n.Name, stack.VisibleNames(), n.At)
		}
		return v, nil

	case *EnvVar:
		if n.Name == "" {
			return stack.EnvRecord(n.At), nil
		}
		s, ok := stack.LookupEnv(n.Name)
		if !ok && envCaseInsensitive {
			s, ok = stack.LookupEnvInsensitive(n.Name)
		}
		if !ok {
			return value.Value{}, errors.EnvVarNotFound(n.Name, n.At)
		}
		return value.String(s, n.At), nil

	case *ListExpr:
		items := make([]value.Value, 0, len(n.Items))
		for _, it := range n.Items {
			v, err := ev.EvalExpr(ctx, stack, it)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, v)
		}
		return value.List(items, n.At), nil

	case *RecordExpr:
		rec := &value.Record{}
		for _, entry := range n.Entries {
			v, err := ev.EvalExpr(ctx, stack, entry.Value)
			if err != nil {
				return value.Value{}, err
			}
			if rec.Has(entry.Name) {
				return value.Value{}, errors.Custom(
					fmt.Sprintf("record column '%s' is defined twice", entry.Name), entry.NameTag)
			}
			if err := rec.Insert(entry.Name, v); err != nil {
				return value.Value{}, err
			}
		}
		return value.NewRecord(rec, n.At), nil

	case *RangeExpr:
		from, err := ev.evalInt(ctx, stack, n.From)
		if err != nil {
			return value.Value{}, err
		}
		step := int64(1)
		if n.Step != nil {
			step, err = ev.evalInt(ctx, stack, n.Step)
			if err != nil {
				return value.Value{}, err
			}
		}
		if n.To == nil {
			r, err := value.NewUnboundedRange(from, step, n.At)
			if err != nil {
				return value.Value{}, err
			}
			return value.NewRange(r, n.At), nil
		}
		to, err := ev.evalInt(ctx, stack, n.To)
		if err != nil {
			return value.Value{}, err
		}
		r, err := value.NewBoundedRange(from, step, to, n.Inclusive, n.At)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewRange(r, n.At), nil

	case *CellPathExpr:
		if n.Head == nil {
			return value.CellPathValue(n.Path, n.At), nil
		}
		head, err := ev.EvalExpr(ctx, stack, n.Head)
		if err != nil {
			return value.Value{}, err
		}
		return head.FollowCellPath(n.Path, false)

	case *ClosureExpr:
		cl := &value.Closure{
			BlockID:  n.BlockID,
			Params:   n.Params,
			Captures: stack.Captures(),
		}
		return value.NewClosure(cl, n.At), nil

	case *SubExpr:
		out, err := ev.EvalPipeline(ctx, stack.Child(), n.Pipeline, pipeline.Empty())
		if err != nil {
			return value.Value{}, err
		}
		return out.IntoValue(n.At), nil

	case *BinaryExpr:
		lhs, err := ev.EvalExpr(ctx, stack, n.Lhs)
		if err != nil {
			return value.Value{}, err
		}
		if lhs.IsError() {
			return lhs, nil
		}
		if n.Op == value.OpAnd || n.Op == value.OpOr {
			if b, berr := lhs.AsBool(); berr == nil {
				if n.Op == value.OpAnd && !b {
					return value.Bool(false, n.At), nil
				}
				if n.Op == value.OpOr && b {
					return value.Bool(true, n.At), nil
				}
			}
			// Non-bool operands fall through so Apply blames them.
		}
		rhs, err := ev.EvalExpr(ctx, stack, n.Rhs)
		if err != nil {
			return value.Value{}, err
		}
		if rhs.IsError() {
			return rhs, nil
		}
		return value.Apply(n.Op, lhs, rhs)

	case *UnaryExpr:
		v, err := ev.EvalExpr(ctx, stack, n.Operand)
		if err != nil {
			return value.Value{}, err
		}
		if v.IsError() {
			return v, nil
		}
		if n.Op == UnaryNot {
			return value.Not(v)
		}
		return value.Neg(v)
	}

	return value.Value{}, fmt.Errorf("unhandled expression node %T", e)
}

func (ev *Evaluator) evalInt(ctx context.Context, stack *Stack, e Expr) (int64, error) {
	v, err := ev.EvalExpr(ctx, stack, e)
	if err != nil {
		return 0, err
	}
	if serr, ok := v.AsError(); ok {
		return 0, serr
	}
	return v.AsInt()
}

// errorData converts a failure into error-value pipeline data when it
// is catchable, and lets control errors unwind.
func (ev *Evaluator) errorData(ctx context.Context, err error) (pipeline.PipelineData, error) {
	if serr, ok := errors.As(err); ok && serr.Catchable {
		ev.log.Debug("stage failed", logger.ErrorFields("eval", serr))
		if m := ev.engine.Metrics(); m != nil {
			m.RecordError(ctx, string(serr.Kind))
		}
		return pipeline.FromValue(value.Error(serr)), nil
	}
	return pipeline.Empty(), err
}

// abandon closes a stage input that will never be consumed, so stream
// producers shut down instead of leaking.
func abandon(d pipeline.PipelineData) {
	if s, ok := d.Stream(); ok {
		_ = s.Close()
	}
}

func pipelineTag(p *Pipeline) source.Tag {
	if p.Decl != "" {
		return p.DeclTag
	}
	if len(p.Stages) > 0 {
		st := &p.Stages[0]
		if st.Expr != nil {
			return st.Expr.Tag()
		}
		return st.NameTag
	}
	return source.UnknownTag()
}
