package eval

import (
	"strings"
	"testing"

	"github.com/shale-sh/shale/config"
	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/pipeline"
	"github.com/shale-sh/shale/signature"
	"github.com/shale-sh/shale/source"
	"github.com/shale-sh/shale/value"
)

// stubCommand is a minimal any-input command for driver tests.
type stubCommand struct {
	name string
	run  func(cc *CallContext) (pipeline.PipelineData, error)
}

func (s *stubCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New(s.name).Input(value.AnyType).Output(value.AnyType),
	}
}

func (s *stubCommand) Run(cc *CallContext) (pipeline.PipelineData, error) {
	if s.run == nil {
		return pipeline.Empty(), nil
	}
	return s.run(cc)
}

// acceptingStub is a stubCommand that wants error input delivered.
type acceptingStub struct {
	stubCommand
}

func (s *acceptingStub) AcceptsErrors() bool { return true }

func TestEngineState_RegisterAndResolve(t *testing.T) {
	es := NewEngineState(nil, nil)
	if err := es.RegisterCommand(&stubCommand{name: "first"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := es.RegisterCommand(&stubCommand{name: "second"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, ok := es.Command("first"); !ok {
		t.Error("expected first to resolve")
	}
	if _, ok := es.Command("missing"); ok {
		t.Error("expected missing to not resolve")
	}

	names := es.CommandNames()
	if len(names) != 2 || names[0] != "first" || names[1] != "second" {
		t.Errorf("names = %v, want [first second] in registration order", names)
	}
}

func TestEngineState_RegisterDuplicateFails(t *testing.T) {
	es := NewEngineState(nil, nil)
	if err := es.RegisterCommand(&stubCommand{name: "dup"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := es.RegisterCommand(&stubCommand{name: "dup"}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestEngineState_UpsertReplaces(t *testing.T) {
	es := NewEngineState(nil, nil)
	ran := ""
	first := &stubCommand{name: "cmd", run: func(cc *CallContext) (pipeline.PipelineData, error) {
		ran = "first"
		return pipeline.Empty(), nil
	}}
	second := &stubCommand{name: "cmd", run: func(cc *CallContext) (pipeline.PipelineData, error) {
		ran = "second"
		return pipeline.Empty(), nil
	}}

	if err := es.UpsertCommand(first); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := es.UpsertCommand(second); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	cmd, _ := es.Command("cmd")
	if _, err := cmd.Run(nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if ran != "second" {
		t.Errorf("resolved %q, want the replacement", ran)
	}
	if len(es.CommandNames()) != 1 {
		t.Errorf("upsert must not duplicate the name list")
	}
}

func TestEngineState_RegisterRejectsMismatchedOverloads(t *testing.T) {
	bad := &mismatchedCommand{}
	es := NewEngineState(nil, nil)
	if err := es.RegisterCommand(bad); err == nil {
		t.Error("expected mismatched overload names to fail")
	}
}

type mismatchedCommand struct{}

func (m *mismatchedCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("one").Input(value.AnyType),
		signature.New("two").Input(value.AnyType),
	}
}

func (m *mismatchedCommand) Run(cc *CallContext) (pipeline.PipelineData, error) {
	return pipeline.Empty(), nil
}

func TestEngineState_Blocks(t *testing.T) {
	es := NewEngineState(nil, nil)
	b1 := &Block{}
	b2 := &Block{}

	id1 := es.AddBlock(b1)
	id2 := es.AddBlock(b2)
	if id1 != 0 || id2 != 1 {
		t.Errorf("ids = %d, %d; want 0, 1", id1, id2)
	}

	got, err := es.Block(id2)
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	if got != b2 {
		t.Error("expected the registered block back")
	}

	if _, err := es.Block(99); err == nil {
		t.Error("expected out-of-range block id to fail")
	}
}

func TestEngineState_SourceLookup(t *testing.T) {
	es := NewEngineState(nil, nil)

	anchor := source.FileAnchor("script.sh")
	text := source.NewText("let x = 1\n")
	es.AddSource(anchor, text)

	got, ok := es.LookupSource(source.FileAnchor("script.sh"))
	if !ok {
		t.Fatal("expected registered file source to resolve")
	}
	if got.String() != text.String() {
		t.Error("expected the registered text back")
	}

	// Inline anchors carry their own text
	inline := source.SourceAnchor(source.NewText("inline"))
	got, ok = es.LookupSource(inline)
	if !ok || got.String() != "inline" {
		t.Error("expected inline anchor to resolve to its own text")
	}

	if _, ok := es.LookupSource(source.FileAnchor("other.sh")); ok {
		t.Error("expected unregistered source to miss")
	}
}

func TestEngineState_RenderErrorUsesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Errors.NoColor = true
	cfg.Errors.ContextLines = 0
	es := NewEngineState(cfg, nil)

	script := "let x = $nope"
	anchor := source.FileAnchor("bad.sh")
	es.AddSource(anchor, source.NewText(script))

	tag := source.NewTag(source.NewSpan(8, 13), anchor)
	rendered := es.RenderError(errors.VariableNotFound("nope", nil, tag))

	if !strings.Contains(rendered, "VARIABLE NOT FOUND") {
		t.Errorf("missing header in %q", rendered)
	}
	if !strings.Contains(rendered, "let x = $nope") {
		t.Errorf("missing source line in %q", rendered)
	}
	if !strings.Contains(rendered, "^^^^^") {
		t.Errorf("missing caret underline in %q", rendered)
	}
	if strings.Contains(rendered, "\033[") {
		t.Errorf("NoColor output must carry no escapes: %q", rendered)
	}
}

func TestEngineState_SessionIDStable(t *testing.T) {
	es := NewEngineState(nil, nil)
	if es.SessionID() != es.SessionID() {
		t.Error("session id must not change")
	}
	other := NewEngineState(nil, nil)
	if es.SessionID() == other.SessionID() {
		t.Error("distinct engines must get distinct session ids")
	}
}
