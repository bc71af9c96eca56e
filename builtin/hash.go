package builtin

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/pipeline"
	"github.com/shale-sh/shale/signature"
	"github.com/shale-sh/shale/value"
)

// hashCommand digests the input string or binary and answers with the
// lowercase hex encoding. One type serves the whole hash family,
// parameterized by name and digest.
type hashCommand struct {
	name string
	sum  func(data []byte) string
}

func newHashCommand(name string, sum func(data []byte) string) *hashCommand {
	return &hashCommand{name: name, sum: sum}
}

func sha256Sum(data []byte) string {
	d := sha256.Sum256(data)
	return hex.EncodeToString(d[:])
}

func blake2bSum(data []byte) string {
	d := blake2b.Sum256(data)
	return hex.EncodeToString(d[:])
}

func (c *hashCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New(c.name).
			Input(value.StringType).
			Output(value.StringType).
			WithCategory("hash").
			WithDesc("Digest the input and answer with hex."),
		signature.New(c.name).
			Input(value.BinaryType).
			Output(value.StringType).
			WithCategory("hash"),
	}
}

func (c *hashCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	v := cc.Input.IntoValue(cc.Head)
	if v.IsError() {
		return pipeline.FromValue(v), nil
	}

	var data []byte
	if cc.Args.Sig.InputType.Equal(value.BinaryType) {
		b, err := v.AsBinary()
		if err != nil {
			return pipeline.Empty(), err
		}
		data = b
	} else {
		s, err := v.AsString()
		if err != nil {
			return pipeline.Empty(), err
		}
		data = []byte(s)
	}
	return pipeline.FromValue(value.String(c.sum(data), v.Tag())), nil
}
