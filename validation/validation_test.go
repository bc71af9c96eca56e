package validation

import (
	"strings"
	"testing"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("output", "stderr")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("output", "")
	if !v2.HasErrors() {
		t.Error("expected error for empty required field")
	}

	v3 := New()
	v3.Required("output", "   ")
	if !v3.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorRange(t *testing.T) {
	v := New()
	v.Range("threads", 25, 0, 100)
	if v.HasErrors() {
		t.Error("expected no error for value in range")
	}

	v2 := New()
	v2.Range("threads", -5, 0, 100)
	if !v2.HasErrors() {
		t.Error("expected error for value below range")
	}

	v3 := New()
	v3.Range("threads", 101, 0, 100)
	if !v3.HasErrors() {
		t.Error("expected error for value above range")
	}
}

func TestValidatorMinMax(t *testing.T) {
	v := New()
	v.Min("context_lines", 2, 0)
	v.Max("context_lines", 2, 16)
	if v.HasErrors() {
		t.Error("expected no errors")
	}

	v2 := New()
	v2.Min("context_lines", -1, 0)
	if !v2.HasErrors() {
		t.Error("expected error for value below min")
	}

	v3 := New()
	v3.Max("context_lines", 17, 16)
	if !v3.HasErrors() {
		t.Error("expected error for value above max")
	}
}

func TestValidatorOneOf(t *testing.T) {
	v := New()
	v.OneOf("level", "debug", []string{"debug", "info", "warn", "error"})
	if v.HasErrors() {
		t.Error("expected no error for valid oneOf value")
	}

	v2 := New()
	v2.OneOf("level", "loud", []string{"debug", "info", "warn", "error"})
	if !v2.HasErrors() {
		t.Error("expected error for invalid oneOf value")
	}

	// Empty should be skipped
	v3 := New()
	v3.OneOf("level", "", []string{"debug"})
	if v3.HasErrors() {
		t.Error("expected no error for empty oneOf value")
	}
}

func TestValidatorCustom(t *testing.T) {
	v := New()
	v.Custom(true, "field", "should pass")
	if v.HasErrors() {
		t.Error("expected no error for true condition")
	}

	v2 := New()
	v2.Custom(false, "field", "custom error")
	if !v2.HasErrors() {
		t.Error("expected error for false condition")
	}
	if v2.Errors()[0].Message != "custom error" {
		t.Errorf("expected 'custom error', got %q", v2.Errors()[0].Message)
	}
}

func TestValidatorValidate(t *testing.T) {
	v := New()
	v.Required("level", "info")
	if err := v.Validate(); err != nil {
		t.Error("expected nil for valid input")
	}

	v2 := New()
	v2.Required("level", "")
	v2.Required("format", "")
	err := v2.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	agg, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if len(agg.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(agg.Fields))
	}
	msg := err.Error()
	if !strings.Contains(msg, "level") || !strings.Contains(msg, "format") {
		t.Errorf("expected both fields in message, got %q", msg)
	}
}

func TestValidatorChaining(t *testing.T) {
	v := New()
	result := v.Required("level", "info").Min("threads", 8, 0)
	if result != v {
		t.Error("expected chaining to return same validator")
	}
	if v.HasErrors() {
		t.Error("expected no errors for valid chained validation")
	}
}

func TestStructValidateValid(t *testing.T) {
	type Runtime struct {
		Threads int    `mapstructure:"threads" validate:"min=0,max=1024"`
		Level   string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	}

	err := Validate(Runtime{Threads: 8, Level: "info"})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	type Runtime struct {
		Threads int    `mapstructure:"threads" validate:"min=0,max=1024"`
		Level   string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	}

	err := Validate(Runtime{Threads: -1, Level: "loud"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "threads") {
		t.Errorf("expected error to mention 'threads', got %q", errStr)
	}
	if !strings.Contains(errStr, "level") {
		t.Errorf("expected error to mention 'level', got %q", errStr)
	}
}

func TestStructValidateMaxMin(t *testing.T) {
	type Input struct {
		Buffer string `mapstructure:"buffer" validate:"required,min=2,max=10"`
	}

	if err := Validate(Input{Buffer: "64KB"}); err != nil {
		t.Errorf("expected valid, got %v", err)
	}

	if err := Validate(Input{Buffer: "4"}); err == nil {
		t.Error("expected error for buffer too short")
	}
}
