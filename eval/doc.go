// Package eval runs expression trees against an engine.
//
// Front ends parse source text into Expr trees, Pipelines, and Blocks;
// the evaluator resolves command calls through the engine's registry,
// binds arguments against per-input-type signatures, and threads
// PipelineData from stage to stage. Failures travel as error values:
// a catchable ShellError raised anywhere in a stage becomes the
// stage's data and flows downstream until a try command intercepts it
// or the driver renders it. Interrupts are the exception; they unwind
// as Go errors and no catch sees them.
//
// Scoping follows two chains. Variables are lexical: closures freeze
// the scope they were written in and a barrier stops lookups from
// reaching the caller's locals. The environment is dynamic: env
// lookups walk the runtime call chain, writes land in the current
// frame and vanish on return unless a def --env command merges them
// outward.
//
// # Usage
//
//	es := eval.NewEngineState(nil, nil)
//	eval.AddCoreCommands(es)
//
//	sig := pipeline.NewSignals(ctx)
//	ev := eval.New(es, sig)
//	out, err := ev.EvalBlock(ctx, eval.NewStack(), block, pipeline.Empty())
package eval
