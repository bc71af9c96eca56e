package pipeline

import (
	"context"
	"testing"

	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/source"
)

func TestSignals_CleanByDefault(t *testing.T) {
	s := NewSignals(context.Background())
	if s.Triggered() {
		t.Error("fresh handle should not be triggered")
	}
	if err := s.Check(testTag(0, 3)); err != nil {
		t.Errorf("Check on clean handle = %v, want nil", err)
	}
}

func TestSignals_Interrupt(t *testing.T) {
	s := NewSignals(context.Background())
	s.Interrupt()
	if !s.Triggered() {
		t.Fatal("Triggered() = false after Interrupt")
	}
	err := s.Check(testTag(2, 7))
	if err == nil {
		t.Fatal("Check after Interrupt = nil, want error")
	}
	if err.Kind != errors.KindInterrupted {
		t.Errorf("Kind = %v, want %v", err.Kind, errors.KindInterrupted)
	}
	if err.Catchable {
		t.Error("interrupt must not be catchable")
	}
	want := source.NewSpan(2, 7)
	if err.Tag.Span != want {
		t.Errorf("Tag.Span = %v, want %v", err.Tag.Span, want)
	}
}

func TestSignals_Reset(t *testing.T) {
	s := NewSignals(context.Background())
	s.Interrupt()
	s.Reset()
	if s.Triggered() {
		t.Error("Triggered() = true after Reset")
	}
	if err := s.Check(testTag(0, 1)); err != nil {
		t.Errorf("Check after Reset = %v, want nil", err)
	}
}

func TestSignals_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSignals(ctx)
	if s.Triggered() {
		t.Fatal("triggered before cancel")
	}
	cancel()
	if !s.Triggered() {
		t.Error("Triggered() = false after context cancel")
	}
	if err := s.Check(testTag(0, 1)); err == nil {
		t.Error("Check after context cancel = nil, want error")
	}
}

func TestSignals_NilContext(t *testing.T) {
	s := NewSignals(nil)
	if s.Context() == nil {
		t.Fatal("Context() = nil, want background default")
	}
	if s.Triggered() {
		t.Error("nil-context handle should start clean")
	}
}
