package builtin

import (
	"strings"
	"unicode/utf8"

	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/pipeline"
	"github.com/shale-sh/shale/signature"
	"github.com/shale-sh/shale/value"
)

// stringApply runs fn over the scalar input or broadcasts it across a
// list input lazily. Items that are not strings become per-item error
// values rather than failing the stage.
func stringApply(cc *eval.CallContext, fn func(s string, v value.Value) value.Value) (pipeline.PipelineData, error) {
	if cc.Args.Sig.InputType.Equal(value.StringType) {
		v := cc.Input.IntoValue(cc.Head)
		if v.IsError() {
			return pipeline.FromValue(v), nil
		}
		s, err := v.AsString()
		if err != nil {
			return pipeline.Empty(), err
		}
		return pipeline.FromValue(fn(s, v)), nil
	}

	in := cc.Input.IntoStream(cc.Signals())
	done := false
	out := pipeline.New(cc.Signals(), cc.Head, func() (value.Value, bool) {
		if done {
			return value.Value{}, false
		}
		v, ok := in.Next()
		if !ok {
			return value.Value{}, false
		}
		if v.IsError() {
			done = true
			return v, true
		}
		if v.Kind() != value.KindString {
			return value.Error(errors.TypeMismatch("string", v.Kind().String(), v.Tag())), true
		}
		s, _ := v.AsString()
		return fn(s, v), true
	}, derived(in)...)
	return pipeline.FromStream(out), nil
}

// strLengthCommand reports the length of the input string in Unicode
// code points, broadcasting across list input.
type strLengthCommand struct{}

func (c *strLengthCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("str length").
			Input(value.StringType).
			Output(value.IntType).
			WithCategory("strings").
			WithDesc("Count the code points in the input string."),
		signature.New("str length").
			Input(value.ListOf(value.StringType)).
			Output(value.ListOf(value.IntType)).
			WithCategory("strings"),
		signature.New("str length").
			Input(value.ListOf(value.AnyType)).
			Output(value.ListOf(value.IntType)).
			WithCategory("strings"),
	}
}

func (c *strLengthCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	return stringApply(cc, func(s string, v value.Value) value.Value {
		return value.Int(int64(utf8.RuneCountInString(s)), v.Tag())
	})
}

// strReplaceCommand substitutes the first occurrence of a substring,
// or every occurrence with --all, broadcasting across list input.
type strReplaceCommand struct{}

func (c *strReplaceCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("str replace").
			Input(value.StringType).
			Output(value.StringType).
			Required("find", value.StringType, "substring to search for").
			Required("replace", value.StringType, "replacement text").
			Switch("all", "a", "replace every occurrence instead of the first").
			WithCategory("strings").
			WithDesc("Replace a substring in the input string."),
		signature.New("str replace").
			Input(value.ListOf(value.StringType)).
			Output(value.ListOf(value.StringType)).
			Required("find", value.StringType, "substring to search for").
			Required("replace", value.StringType, "replacement text").
			Switch("all", "a", "replace every occurrence instead of the first").
			WithCategory("strings"),
		signature.New("str replace").
			Input(value.ListOf(value.AnyType)).
			Output(value.ListOf(value.StringType)).
			Required("find", value.StringType, "substring to search for").
			Required("replace", value.StringType, "replacement text").
			Switch("all", "a", "replace every occurrence instead of the first").
			WithCategory("strings"),
	}
}

func (c *strReplaceCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	findV, _ := cc.Args.Get("find")
	find, err := findV.AsString()
	if err != nil {
		return pipeline.Empty(), err
	}
	replaceV, _ := cc.Args.Get("replace")
	replace, err := replaceV.AsString()
	if err != nil {
		return pipeline.Empty(), err
	}
	n := 1
	if cc.Args.FlagBool("all") {
		n = -1
	}
	return stringApply(cc, func(s string, v value.Value) value.Value {
		return value.String(strings.Replace(s, find, replace, n), v.Tag())
	})
}
