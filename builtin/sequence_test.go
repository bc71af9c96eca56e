package builtin

import (
	"testing"

	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/value"
)

func TestSeq_CountsUp(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.CallStage("seq", testTag(0, 3), intLit(1), intLit(5)),
	)
	wantInts(t, collect(t, out), 1, 2, 3, 4, 5)
}

func TestSeq_CountsDown(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.CallStage("seq", testTag(0, 3), intLit(3), intLit(1)),
	)
	wantInts(t, collect(t, out), 3, 2, 1)
}

func TestSeq_ExplicitStep(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.CallStage("seq", testTag(0, 3), intLit(1), intLit(9), intLit(2)),
	)
	wantInts(t, collect(t, out), 1, 3, 5, 7, 9)
}

func TestSeq_StepOvershootsEnd(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.CallStage("seq", testTag(0, 3), intLit(1), intLit(8), intLit(3)),
	)
	wantInts(t, collect(t, out), 1, 4, 7)
}

func TestSeq_ZeroStepFails(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.CallStage("seq", testTag(0, 3), intLit(1), intLit(5), intLit(0)),
	)
	wantErrKind(t, collect(t, out), errors.KindCustom)
}

func TestSeq_RangeInputPassesThrough(t *testing.T) {
	es := shellEngine(t)
	r, err := value.NewBoundedRange(2, 1, 4, true, testTag(0, 4))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(lit(value.NewRange(r, testTag(0, 4)))),
		eval.CallStage("seq", testTag(5, 8)),
	)
	wantInts(t, collect(t, out), 2, 3, 4)
}

// stateVar reads the generator state parameter.
func stateVar() eval.Expr {
	return &eval.Var{Name: "s", At: testTag(0, 0)}
}

func statePlusOne() eval.Expr {
	return &eval.BinaryExpr{Op: value.OpAdd, Lhs: stateVar(), Rhs: intLit(1), At: testTag(0, 0)}
}

func TestGenerate_StopsWhenNextAbsent(t *testing.T) {
	es := shellEngine(t)

	// {out: $s, next: $s + 1} while $s < 3, then {out: $s} to stop.
	cont := exprClosure(es, &eval.RecordExpr{Entries: []eval.RecordEntry{
		{Name: "out", NameTag: testTag(0, 0), Value: stateVar()},
		{Name: "next", NameTag: testTag(0, 0), Value: statePlusOne()},
	}, At: testTag(0, 0)})
	stop := exprClosure(es, &eval.RecordExpr{Entries: []eval.RecordEntry{
		{Name: "out", NameTag: testTag(0, 0), Value: stateVar()},
	}, At: testTag(0, 0)})

	body := &eval.Block{Pipelines: []*eval.Pipeline{
		{Stages: []eval.Stage{eval.CallStage("if", testTag(0, 2),
			&eval.BinaryExpr{Op: value.OpLt, Lhs: stateVar(), Rhs: intLit(3), At: testTag(0, 0)},
			cont,
			stop,
		)}},
	}}
	step := &eval.ClosureExpr{Params: []string{"s"}, BlockID: es.AddBlock(body), At: testTag(0, 0)}

	out := runStages(t, es, eval.NewStack(),
		eval.CallStage("generate", testTag(0, 8), intLit(1), step),
	)
	wantInts(t, collect(t, out), 1, 2, 3)
}

func TestGenerate_UnboundedSlicedByTake(t *testing.T) {
	es := shellEngine(t)
	step := paramClosure(es, []string{"s"}, &eval.RecordExpr{Entries: []eval.RecordEntry{
		{Name: "out", NameTag: testTag(0, 0), Value: stateVar()},
		{Name: "next", NameTag: testTag(0, 0), Value: statePlusOne()},
	}, At: testTag(0, 0)})

	out := runStages(t, es, eval.NewStack(),
		eval.CallStage("generate", testTag(0, 8), intLit(1), step),
		eval.CallStage("take", testTag(9, 13), intLit(4)),
	)
	wantInts(t, collect(t, out), 1, 2, 3, 4)
}

func TestGenerate_SkipsTurnsWithoutOut(t *testing.T) {
	es := shellEngine(t)

	// Even states emit, odd states only advance.
	emit := exprClosure(es, &eval.RecordExpr{Entries: []eval.RecordEntry{
		{Name: "out", NameTag: testTag(0, 0), Value: stateVar()},
		{Name: "next", NameTag: testTag(0, 0), Value: statePlusOne()},
	}, At: testTag(0, 0)})
	advance := exprClosure(es, &eval.RecordExpr{Entries: []eval.RecordEntry{
		{Name: "next", NameTag: testTag(0, 0), Value: statePlusOne()},
	}, At: testTag(0, 0)})

	body := &eval.Block{Pipelines: []*eval.Pipeline{
		{Stages: []eval.Stage{eval.CallStage("if", testTag(0, 2),
			&eval.BinaryExpr{
				Op:  value.OpEq,
				Lhs: &eval.BinaryExpr{Op: value.OpMod, Lhs: stateVar(), Rhs: intLit(2), At: testTag(0, 0)},
				Rhs: intLit(0),
				At:  testTag(0, 0),
			},
			emit,
			advance,
		)}},
	}}
	step := &eval.ClosureExpr{Params: []string{"s"}, BlockID: es.AddBlock(body), At: testTag(0, 0)}

	out := runStages(t, es, eval.NewStack(),
		eval.CallStage("generate", testTag(0, 8), intLit(1), step),
		eval.CallStage("take", testTag(9, 13), intLit(3)),
	)
	wantInts(t, collect(t, out), 2, 4, 6)
}

func TestGenerate_NonRecordResultFails(t *testing.T) {
	es := shellEngine(t)
	step := paramClosure(es, []string{"s"}, intLit(42))
	out := runStages(t, es, eval.NewStack(),
		eval.CallStage("generate", testTag(0, 8), intLit(1), step),
	)
	wantErrKind(t, collect(t, out), errors.KindTypeMismatch)
}
