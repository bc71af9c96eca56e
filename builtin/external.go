package builtin

import (
	"bufio"
	"io"
	"strings"

	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/pipeline"
	"github.com/shale-sh/shale/process"
	"github.com/shale-sh/shale/signature"
	"github.com/shale-sh/shale/value"
)

// runExternalCommand executes a subprocess, feeding pipeline input to
// its stdin and streaming its stdout back one line per item. A failed
// spawn is a catchable error at the call site; a non-zero exit arrives
// as the stream's final item so earlier output is not lost.
type runExternalCommand struct{}

func (c *runExternalCommand) Signatures() []*signature.Signature {
	return []*signature.Signature{
		signature.New("run-external").
			Input(value.AnyType).
			Output(value.ListOf(value.StringType)).
			Required("command", value.StringType, "executable name or path").
			WithRest("args", value.AnyType, "arguments passed to the executable").
			WithCategory("system").
			WithDesc("Run an external command, streaming stdout lines."),
	}
}

func (c *runExternalCommand) Run(cc *eval.CallContext) (pipeline.PipelineData, error) {
	cmdV, _ := cc.Args.Get("command")
	binary, err := cmdV.AsString()
	if err != nil {
		return pipeline.Empty(), err
	}

	args := make([]string, 0, len(cc.Args.Rest()))
	for _, av := range cc.Args.Rest() {
		s, argErr := externalArg(av)
		if argErr != nil {
			return pipeline.Empty(), argErr
		}
		args = append(args, s)
	}

	stdin, errVal, stdinErr := externalStdin(cc)
	if stdinErr != nil {
		return pipeline.Empty(), stdinErr
	}
	if errVal != nil {
		return pipeline.FromValue(*errVal), nil
	}

	cc.Log.Debug("run-external", map[string]interface{}{
		"binary": binary,
		"args":   len(args),
	})

	// Externals run in the shell's logical working directory.
	dir, _ := cc.Stack.LookupEnv("PWD")

	h, startErr := process.Start(cc.Context, process.Command{
		Binary: binary,
		Args:   args,
		Dir:    dir,
		Env:    stackEnviron(cc),
		Stdin:  stdin,
	})
	if startErr != nil {
		return pipeline.Empty(), errors.ExternalSpawnFailed(binary, startErr, cmdV.Tag())
	}

	scanner := bufio.NewScanner(h.Stdout())
	if max := cc.Engine().Config().StreamBufferBytes(); max > 0 {
		scanner.Buffer(make([]byte, 64*1024), int(max))
	}

	done := false
	out := pipeline.New(cc.Signals(), cc.Head, func() (value.Value, bool) {
		if done {
			return value.Value{}, false
		}
		if scanner.Scan() {
			return value.String(scanner.Text(), cc.Head), true
		}
		done = true
		if scanErr := scanner.Err(); scanErr != nil {
			h.Terminate()
			_, _ = h.Wait()
			return value.Error(errors.Custom(scanErr.Error(), cc.Head)), true
		}
		res, _ := h.Wait()
		if res != nil && res.ExitCode != 0 {
			serr := errors.ExternalNonZeroExit(binary, res.ExitCode, cc.Head)
			if len(res.Stderr) > 0 {
				serr = serr.WithDetail("stderr", strings.TrimRight(string(res.Stderr), "\n"))
			}
			return value.Error(serr), true
		}
		return value.Value{}, false
	}, pipeline.WithOnClose(func() error {
		h.Terminate()
		_, _ = h.Wait()
		return nil
	}))
	return pipeline.FromStream(out), nil
}

// externalArg renders an argument for the command line. Scalars take
// their display form; structured values have no external spelling.
func externalArg(v value.Value) (string, error) {
	switch v.Kind() {
	case value.KindString:
		return v.AsString()
	case value.KindBool, value.KindInt, value.KindFloat, value.KindFilesize, value.KindDuration, value.KindDate:
		return v.String(), nil
	}
	return "", errors.TypeMismatch("string", v.Kind().String(), v.Tag())
}

// externalStdin materializes the pipeline input for the subprocess.
// Nothing means no stdin; strings and binary pass through; a list
// feeds its items as lines. An error value input is handed back to
// flow onward instead of spawning at all.
func externalStdin(cc *eval.CallContext) (stdin io.Reader, errVal *value.Value, err error) {
	v := cc.Input.IntoValue(cc.Head)
	if v.IsError() {
		return nil, &v, nil
	}
	switch v.Kind() {
	case value.KindNothing:
		return nil, nil, nil
	case value.KindString:
		s, _ := v.AsString()
		return strings.NewReader(s), nil, nil
	case value.KindBinary:
		b, _ := v.AsBinary()
		return strings.NewReader(string(b)), nil, nil
	case value.KindList:
		items, _ := v.AsList()
		var sb strings.Builder
		for _, item := range items {
			if item.IsError() {
				return nil, &item, nil
			}
			line, lineErr := externalArg(item)
			if lineErr != nil {
				return nil, nil, lineErr
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		return strings.NewReader(sb.String()), nil, nil
	}
	return nil, nil, errors.TypeMismatch("string", v.Kind().String(), v.Tag())
}

// stackEnviron flattens the scope's environment for the subprocess.
func stackEnviron(cc *eval.CallContext) []string {
	rec, err := cc.Stack.EnvRecord(cc.Head).AsRecord()
	if err != nil {
		return nil
	}
	env := make([]string, 0, rec.Len())
	rec.Each(func(col string, val value.Value) bool {
		s, _ := val.AsString()
		env = append(env, col+"="+s)
		return true
	})
	return env
}
