package builtin

import (
	"context"
	"testing"

	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/pipeline"
	"github.com/shale-sh/shale/signature"
	"github.com/shale-sh/shale/source"
	"github.com/shale-sh/shale/value"
)

func testTag(start, end int) source.Tag {
	return source.FromSpan(source.NewSpan(start, end))
}

func lit(v value.Value) eval.Expr {
	return &eval.Literal{Value: v, At: v.Tag()}
}

func intLit(n int64) eval.Expr {
	return lit(value.Int(n, testTag(0, 0)))
}

func strLit(s string) eval.Expr {
	return lit(value.String(s, testTag(0, 0)))
}

func intListLit(ns ...int64) eval.Expr {
	vals := make([]value.Value, len(ns))
	for i, n := range ns {
		vals[i] = value.Int(n, testTag(0, 0))
	}
	return lit(value.List(vals, testTag(0, 0)))
}

func strListLit(ss ...string) eval.Expr {
	vals := make([]value.Value, len(ss))
	for i, s := range ss {
		vals[i] = value.String(s, testTag(0, 0))
	}
	return lit(value.List(vals, testTag(0, 0)))
}

// shellEngine builds an engine carrying the core and shell command
// sets plus any test-local commands.
func shellEngine(t *testing.T, extra ...eval.Command) *eval.EngineState {
	t.Helper()
	es := eval.NewEngineState(nil, nil)
	if err := eval.AddCoreCommands(es); err != nil {
		t.Fatalf("core commands: %v", err)
	}
	if err := AddShellCommands(es); err != nil {
		t.Fatalf("shell commands: %v", err)
	}
	for _, cmd := range extra {
		if err := es.RegisterCommand(cmd); err != nil {
			t.Fatalf("register %v: %v", cmd.Signatures()[0].Name, err)
		}
	}
	return es
}

func runStages(t *testing.T, es *eval.EngineState, stack *eval.Stack, stages ...eval.Stage) pipeline.PipelineData {
	t.Helper()
	p := &eval.Pipeline{Stages: stages}
	out, err := eval.New(es, nil).EvalPipeline(context.Background(), stack, p, pipeline.Empty())
	if err != nil {
		t.Fatalf("eval pipeline: %v", err)
	}
	return out
}

func collect(t *testing.T, d pipeline.PipelineData) value.Value {
	t.Helper()
	return d.IntoValue(testTag(0, 0))
}

func wantInts(t *testing.T, v value.Value, want ...int64) {
	t.Helper()
	vals, err := v.AsList()
	if err != nil {
		t.Fatalf("expected list, got %s: %v", v.Kind(), err)
	}
	if len(vals) != len(want) {
		t.Fatalf("got %d items, want %d (%s)", len(vals), len(want), v)
	}
	for i, item := range vals {
		got, convErr := item.AsInt()
		if convErr != nil {
			t.Fatalf("item %d not an int: %v", i, convErr)
		}
		if got != want[i] {
			t.Errorf("item %d = %d, want %d", i, got, want[i])
		}
	}
}

func wantStrings(t *testing.T, v value.Value, want ...string) {
	t.Helper()
	vals, err := v.AsList()
	if err != nil {
		t.Fatalf("expected list, got %s: %v", v.Kind(), err)
	}
	if len(vals) != len(want) {
		t.Fatalf("got %d items, want %d (%s)", len(vals), len(want), v)
	}
	for i, item := range vals {
		got, convErr := item.AsString()
		if convErr != nil {
			t.Fatalf("item %d not a string: %v", i, convErr)
		}
		if got != want[i] {
			t.Errorf("item %d = %q, want %q", i, got, want[i])
		}
	}
}

// wantErrKind asserts the collected value is an error of the given kind.
func wantErrKind(t *testing.T, v value.Value, kind errors.Kind) *errors.ShellError {
	t.Helper()
	serr, ok := v.AsError()
	if !ok {
		t.Fatalf("expected error value, got %s (%s)", v.Kind(), v)
	}
	if serr.Kind != kind {
		t.Errorf("kind = %s, want %s", serr.Kind, kind)
	}
	return serr
}

func exprClosure(es *eval.EngineState, e eval.Expr) eval.Expr {
	return &eval.ClosureExpr{BlockID: es.AddBlock(eval.ExprBlock(e)), At: testTag(0, 0)}
}

func paramClosure(es *eval.EngineState, params []string, e eval.Expr) eval.Expr {
	return &eval.ClosureExpr{Params: params, BlockID: es.AddBlock(eval.ExprBlock(e)), At: testTag(0, 0)}
}

// countingSource emits an endless int sequence starting at one and
// records how many pulls the downstream actually made.
type countingSource struct {
	pulls *int
}

func (c *countingSource) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("counting-source").
			Input(value.NothingType).
			Output(value.ListOf(value.IntType)),
	}
}

func (c *countingSource) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	n := int64(0)
	return pipeline.FromStream(pipeline.New(cc.Signals(), cc.Head, func() (value.Value, bool) {
		*c.pulls++
		n++
		return value.Int(n, cc.Head), true
	})), nil
}
