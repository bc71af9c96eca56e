package builtin

import (
	"testing"

	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/value"
)

func TestRunExternal_StreamsStdoutLines(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.CallStage("run-external", testTag(0, 12), strLit("sh"), strLit("-c"), strLit(`printf 'a\nb\n'`)),
	)
	wantStrings(t, collect(t, out), "a", "b")
}

func TestRunExternal_ArgsStringify(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.CallStage("run-external", testTag(0, 12), strLit("echo"), intLit(1), intLit(2)),
	)
	wantStrings(t, collect(t, out), "1 2")
}

func TestRunExternal_NonZeroExitIsFinalItem(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.CallStage("run-external", testTag(0, 12), strLit("sh"), strLit("-c"), strLit("echo partial; exit 3")),
	)
	s, ok := out.Stream()
	if !ok {
		t.Fatal("expected stream output")
	}
	defer func() { _ = s.Close() }()

	first, ok := s.Next()
	if !ok {
		t.Fatal("expected one output line before the failure")
	}
	if got, err := first.AsString(); err != nil || got != "partial" {
		t.Errorf("first item = %s, want partial", first)
	}

	second, ok := s.Next()
	if !ok {
		t.Fatal("expected a final error item")
	}
	serr := wantErrKind(t, second, errors.KindExternalNonZeroExit)
	if code, _ := serr.Details["exit_code"].(int); code != 3 {
		t.Errorf("exit_code = %v, want 3", serr.Details["exit_code"])
	}

	if _, ok := s.Next(); ok {
		t.Error("stream must end after the error item")
	}
}

func TestRunExternal_StderrCapturedOnFailure(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.CallStage("run-external", testTag(0, 12), strLit("sh"), strLit("-c"), strLit("echo oops >&2; exit 1")),
	)
	serr := wantErrKind(t, collect(t, out), errors.KindExternalNonZeroExit)
	if got, _ := serr.Details["stderr"].(string); got != "oops" {
		t.Errorf("stderr detail = %q, want oops", got)
	}
}

func TestRunExternal_StdinFromString(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(strLit("hello\n")),
		eval.CallStage("run-external", testTag(0, 12), strLit("cat")),
	)
	wantStrings(t, collect(t, out), "hello")
}

func TestRunExternal_StdinFromList(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(strListLit("a", "b")),
		eval.CallStage("run-external", testTag(0, 12), strLit("cat")),
	)
	wantStrings(t, collect(t, out), "a", "b")
}

func TestRunExternal_SpawnFailure(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.CallStage("run-external", testTag(0, 12), strLit("shale-no-such-binary")),
	)
	serr := wantErrKind(t, collect(t, out), errors.KindExternalSpawnFailed)
	if serr.Details["command"] != "shale-no-such-binary" {
		t.Errorf("command detail = %v", serr.Details["command"])
	}
}

func TestRunExternal_SeesScopeEnvironment(t *testing.T) {
	es := shellEngine(t)
	stack := eval.NewStack()
	runStages(t, es, stack,
		eval.CallStage("load-env", testTag(0, 8),
			recordExpr(entry("SHALE_EXTERNAL_TEST", strLit("visible"))),
		),
	)
	out := runStages(t, es, stack,
		eval.CallStage("run-external", testTag(0, 12), strLit("sh"), strLit("-c"), strLit("echo $SHALE_EXTERNAL_TEST")),
	)
	wantStrings(t, collect(t, out), "visible")
}

func TestRunExternal_StructuredArgFails(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.CallStage("run-external", testTag(0, 12), strLit("echo"),
			lit(value.List([]value.Value{value.Int(1, testTag(0, 0))}, testTag(0, 0)))),
	)
	wantErrKind(t, collect(t, out), errors.KindTypeMismatch)
}
