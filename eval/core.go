package eval

import (
	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/pipeline"
	"github.com/shale-sh/shale/signature"
	"github.com/shale-sh/shale/value"
)

// AddCoreCommands registers the control-flow commands every session
// needs: def, if, try.
func AddCoreCommands(es *EngineState) error {
	for _, cmd := range []Command{
		&defCommand{},
		&ifCommand{},
		&tryCommand{},
	} {
		if err := es.RegisterCommand(cmd); err != nil {
			return err
		}
	}
	return nil
}

// defCommand registers a user command from a name, a parameter list,
// and a body closure. The closure's captures freeze the declaring
// scope, so the body sees what was visible where it was written.
type defCommand struct{}

func (c *defCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("def").
			Input(value.NothingType).
			Output(value.NothingType).
			Required("name", value.StringType, "name to register the command under").
			Required("params", value.ListOf(value.StringType), "parameter names, in binding order").
			Required("body", value.ClosureType, "command body").
			Switch("env", "", "keep environment changes made by the body").
			WithCategory("core").
			WithDesc("Define a custom command."),
	}
}

func (c *defCommand) Run(cc *CallContext) (pipeline.PipelineData, error) {
	nameV, _ := cc.Args.Get("name")
	name, err := nameV.AsString()
	if err != nil {
		return pipeline.Empty(), err
	}
	paramsV, _ := cc.Args.Get("params")
	items, err := paramsV.AsList()
	if err != nil {
		return pipeline.Empty(), err
	}
	params := make([]string, len(items))
	for i, it := range items {
		s, err := it.AsString()
		if err != nil {
			return pipeline.Empty(), err
		}
		params[i] = s
	}
	bodyV, _ := cc.Args.Get("body")
	body, err := bodyV.AsClosure()
	if err != nil {
		return pipeline.Empty(), err
	}

	cmd := &userCommand{
		name:    name,
		params:  params,
		body:    body,
		keepEnv: cc.Args.FlagBool("env"),
	}
	if err := cc.Engine().UpsertCommand(cmd); err != nil {
		return pipeline.Empty(), errors.Custom(err.Error(), cc.Head)
	}
	return pipeline.Empty(), nil
}

// userCommand is a command defined by def. It accepts any input, binds
// its declared parameters as any-typed positionals, and runs the body
// in a scope built from the definition-time captures.
type userCommand struct {
	name    string
	params  []string
	body    *value.Closure
	keepEnv bool
}

func (u *userCommand) Signatures() []*signature.Signature {
	sig := signature.New(u.name).
		Input(value.AnyType).
		Output(value.AnyType).
		WithCategory("custom").
		WithDesc("User-defined command.")
	for _, p := range u.params {
		sig = sig.Required(p, value.AnyType, "")
	}
	return []*signature.Signature{sig}
}

func (u *userCommand) Run(cc *CallContext) (pipeline.PipelineData, error) {
	block, err := cc.Engine().Block(u.body.BlockID)
	if err != nil {
		return pipeline.Empty(), err
	}

	stack := cc.Stack.ClosureStack(u.body)
	for _, p := range u.params {
		v, _ := cc.Args.Get(p)
		stack.Set(p, v)
	}

	out, runErr := cc.Eval.EvalBlock(cc.Context, stack, block, cc.Input)
	if runErr != nil {
		return pipeline.Empty(), runErr
	}
	if u.keepEnv {
		// Body's env writes survive into the caller; this is how
		// cd-style commands change the session.
		for k, v := range stack.LocalEnv() {
			cc.Stack.SetEnv(k, v)
		}
	}
	return out, nil
}

// ifCommand runs one of two closures on a strict boolean condition.
type ifCommand struct{}

func (c *ifCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("if").
			Input(value.AnyType).
			Output(value.AnyType).
			Required("cond", value.BoolType, "condition to test").
			Required("then", value.ClosureType, "block to run when true").
			Optional("else", value.ClosureType, "block to run when false").
			WithCategory("core").
			WithDesc("Run a block when a condition holds."),
	}
}

func (c *ifCommand) Run(cc *CallContext) (pipeline.PipelineData, error) {
	condV, _ := cc.Args.Get("cond")
	cond, err := condV.AsBool()
	if err != nil {
		return pipeline.Empty(), err
	}

	var branch value.Value
	if cond {
		branch, _ = cc.Args.Get("then")
	} else {
		v, ok := cc.Args.Get("else")
		if !ok {
			return pipeline.Empty(), nil
		}
		branch = v
	}
	cl, err := branch.AsClosure()
	if err != nil {
		return pipeline.Empty(), err
	}
	return cc.RunClosure(cl, nil, cc.Input)
}

// tryCommand runs its body and reroutes catchable failures to an
// optional catch closure. It accepts error input so failures from
// upstream stages reach the handler; interrupts pass through untouched.
type tryCommand struct{}

func (c *tryCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("try").
			Input(value.AnyType).
			Output(value.AnyType).
			Required("body", value.ClosureType, "block to attempt").
			Optional("catch", value.ClosureType, "handler; receives the error as its first parameter").
			WithCategory("core").
			WithDesc("Attempt a block, catching failures."),
	}
}

func (c *tryCommand) AcceptsErrors() bool { return true }

func (c *tryCommand) Run(cc *CallContext) (pipeline.PipelineData, error) {
	bodyV, _ := cc.Args.Get("body")
	body, err := bodyV.AsClosure()
	if err != nil {
		return pipeline.Empty(), err
	}

	out, runErr := cc.RunClosure(body, nil, cc.Input)
	if runErr != nil {
		serr, ok := errors.As(runErr)
		if !ok || !serr.Catchable {
			return pipeline.Empty(), runErr
		}
		return c.runCatch(cc, serr)
	}
	if serr, isErr := out.FirstError(); isErr {
		return c.runCatch(cc, serr)
	}
	return out, nil
}

func (c *tryCommand) runCatch(cc *CallContext, serr *errors.ShellError) (pipeline.PipelineData, error) {
	catchV, ok := cc.Args.Get("catch")
	if !ok {
		return pipeline.Empty(), nil
	}
	cl, err := catchV.AsClosure()
	if err != nil {
		return pipeline.Empty(), err
	}
	return cc.RunClosure(cl, []value.Value{value.Error(serr)}, pipeline.Empty())
}
