package builtin

import (
	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/pipeline"
	"github.com/shale-sh/shale/value"
)

// AddShellCommands registers the reference command set: iteration and
// filtering, structured access, stream slicing, shaping, sequence
// generation, string and bit operations, hashing, environment loading,
// and external process execution.
func AddShellCommands(es *eval.EngineState) error {
	for _, cmd := range []eval.Command{
		&eachCommand{},
		&parEachCommand{},
		&whereCommand{},
		&doCommand{},
		&getCommand{},
		&selectCommand{},
		&rejectCommand{},
		&firstCommand{},
		&lastCommand{},
		&skipCommand{},
		&takeCommand{},
		&lengthCommand{},
		&zipCommand{},
		&flattenCommand{},
		&uniqCommand{},
		&sortByCommand{},
		&histogramCommand{},
		&seqCommand{},
		&generateCommand{},
		&strLengthCommand{},
		&strReplaceCommand{},
		newBitsCommand("bits and", func(a, b int64) int64 { return a & b }),
		newBitsCommand("bits or", func(a, b int64) int64 { return a | b }),
		newBitsCommand("bits xor", func(a, b int64) int64 { return a ^ b }),
		newHashCommand("hash sha256", sha256Sum),
		newHashCommand("hash blake2b", blake2bSum),
		&loadEnvCommand{},
		&runExternalCommand{},
		&versionCommand{},
	} {
		if err := es.RegisterCommand(cmd); err != nil {
			return err
		}
	}
	return nil
}

// closureArg reads a closure positional that binding has already
// type-checked.
func closureArg(cc *eval.CallContext, name string) (*value.Closure, error) {
	v, _ := cc.Args.Get(name)
	return v.AsClosure()
}

// derived builds the option set for a stream that maps its input one to
// one: closing the derived stream closes the source, and a known input
// length carries over.
func derived(in *pipeline.ValueStream) []pipeline.Option {
	opts := []pipeline.Option{pipeline.WithOnClose(in.Close)}
	if n, ok := in.KnownLength(); ok {
		opts = append(opts, pipeline.WithKnownLength(n))
	}
	return opts
}

// closureFailure converts a Go error from a closure invocation into an
// error value. Catchable failures inside closure bodies already arrive
// as error data; what reaches here is an interrupt or an engine fault,
// and a stream can only carry it onward as its final item.
func closureFailure(err error, cc *eval.CallContext) value.Value {
	if serr, ok := errors.As(err); ok {
		return value.Error(serr)
	}
	return value.Error(errors.Custom(err.Error(), cc.Head))
}

// drain materializes a stream, stopping at the first error item. The
// bool reports success; on failure the returned value is the error.
func drain(in *pipeline.ValueStream) ([]value.Value, value.Value, bool) {
	var vals []value.Value
	if n, ok := in.KnownLength(); ok {
		vals = make([]value.Value, 0, n)
	}
	for {
		v, ok := in.Next()
		if !ok {
			break
		}
		if v.IsError() {
			_ = in.Close()
			return nil, v, false
		}
		vals = append(vals, v)
	}
	_ = in.Close()
	return vals, value.Value{}, true
}
