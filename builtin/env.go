package builtin

import (
	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/pipeline"
	"github.com/shale-sh/shale/signature"
	"github.com/shale-sh/shale/value"
)

// loadEnvCommand writes a record's cells into the current scope's
// environment, either from the argument or from the pipeline input.
// Scalar cells stringify; structured cells are refused, since an
// environment variable has to round-trip as text.
type loadEnvCommand struct{}

func (c *loadEnvCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("load-env").
			Input(value.AnyType).
			Output(value.NothingType).
			Optional("update", value.RecordType, "record of variables to set, read from input if omitted").
			WithCategory("env").
			WithDesc("Set environment variables from a record."),
	}
}

func (c *loadEnvCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	src, ok := cc.Args.Get("update")
	if !ok {
		src = cc.Input.IntoValue(cc.Head)
		if src.IsError() {
			return pipeline.FromValue(src), nil
		}
	}
	rec, err := src.AsRecord()
	if err != nil {
		return pipeline.Empty(), err
	}

	var setErr error
	rec.Each(func(col string, val value.Value) bool {
		s, strErr := envString(val)
		if strErr != nil {
			setErr = strErr
			return false
		}
		cc.Stack.SetEnv(col, s)
		return true
	})
	if setErr != nil {
		return pipeline.Empty(), setErr
	}
	return pipeline.Empty(), nil
}

// envString renders a cell as environment variable text.
func envString(v value.Value) (string, error) {
	switch v.Kind() {
	case value.KindString:
		return v.AsString()
	case value.KindBool, value.KindInt, value.KindFloat, value.KindFilesize, value.KindDuration, value.KindDate:
		return v.String(), nil
	}
	return "", errors.TypeMismatch("string", v.Kind().String(), v.Tag())
}
