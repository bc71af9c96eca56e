package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shale-sh/shale/builtin"
	"github.com/shale-sh/shale/config"
	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/logger"
	"github.com/shale-sh/shale/observability"
	"github.com/shale-sh/shale/pipeline"
	"github.com/shale-sh/shale/source"
	"github.com/shale-sh/shale/version"
)

// errEvalFailed signals that diagnostics were already written to
// stderr; main exits nonzero without printing the error again.
var errEvalFailed = stderrors.New("evaluation failed")

// host owns one interactive or batch session: the engine, the root
// variable frame shared across submissions, and the interrupt state.
type host struct {
	cfg     *config.RuntimeConfig
	es      *eval.EngineState
	stack   *eval.Stack
	signals *pipeline.Signals
	metrics *observability.Metrics
	log     *logger.Logger
	stdout  io.Writer
	stderr  io.Writer
}

// newHost builds a session host: engine with the core and shell command
// sets registered, a root frame seeded from the process environment,
// and, when telemetry is enabled, OTLP trace and metric export. The
// returned shutdown func flushes exporters and must run on exit.
func newHost(ctx context.Context, cfg *config.RuntimeConfig) (*host, func(), error) {
	es := eval.NewEngineState(cfg, logger.Get("eval"))
	if err := eval.AddCoreCommands(es); err != nil {
		return nil, nil, fmt.Errorf("registering core commands: %w", err)
	}
	if err := builtin.AddShellCommands(es); err != nil {
		return nil, nil, fmt.Errorf("registering shell commands: %w", err)
	}

	shutdown := func() {}
	if cfg.Telemetry.Enabled {
		tcfg := observability.DefaultTracerConfig("shale")
		tcfg.ServiceVersion = version.GetShortVersion()
		tcfg.Endpoint = cfg.Telemetry.Endpoint
		tcfg.SampleRate = cfg.Telemetry.SampleRate
		tp, err := observability.InitTracer(ctx, tcfg)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing tracer: %w", err)
		}

		mcfg := observability.DefaultMeterConfig("shale")
		mcfg.ServiceVersion = version.GetShortVersion()
		mcfg.Endpoint = cfg.Telemetry.Endpoint
		mp, err := observability.InitMeter(ctx, &mcfg)
		if err != nil {
			_ = tp.Shutdown(ctx)
			return nil, nil, fmt.Errorf("initializing meter: %w", err)
		}

		metrics, err := observability.NewMetrics(observability.Meter("shale"))
		if err != nil {
			_ = mp.Shutdown(ctx)
			_ = tp.Shutdown(ctx)
			return nil, nil, fmt.Errorf("creating metrics: %w", err)
		}
		es.SetMetrics(metrics)

		shutdown = func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mp.Shutdown(sctx); err != nil {
				logger.Get("repl").Warn("meter shutdown failed", logger.Fields("error", err.Error()))
			}
			if err := tp.Shutdown(sctx); err != nil {
				logger.Get("repl").Warn("tracer shutdown failed", logger.Fields("error", err.Error()))
			}
		}
	}

	h := &host{
		cfg:     cfg,
		es:      es,
		stack:   eval.NewStackWithEnv(environMap()),
		signals: pipeline.NewSignals(ctx),
		metrics: es.Metrics(),
		log:     logger.Get("repl"),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	return h, shutdown, nil
}

// environMap snapshots the process environment for the root frame.
func environMap() map[string]string {
	environ := os.Environ()
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// runCommandLine evaluates one -c command line and exits nonzero on
// failure.
func (h *host) runCommandLine(ctx context.Context, src string) error {
	anchor := source.NamedSourceAnchor("<command>", source.NewText(src))
	if _, err := h.evalSource(ctx, src, anchor); err != nil {
		h.renderError(err)
		return errEvalFailed
	}
	return nil
}

// runScript evaluates a script file top to bottom against a fresh
// session.
func (h *host) runScript(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	src := string(raw)
	anchor := source.FileAnchor(path)
	h.es.AddSource(anchor, source.NewText(src))

	h.log.Debug("running script", logger.Fields("path", path, "bytes", len(src)))
	if _, err := h.evalSource(ctx, src, anchor); err != nil {
		h.renderError(err)
		return errEvalFailed
	}
	return nil
}

// evalSource parses and runs one unit of input against the session
// stack, rendering its output to stdout. The returned count is the
// number of values rendered.
func (h *host) evalSource(ctx context.Context, src string, anchor *source.AnchorLocation) (int64, error) {
	block, err := parseSource(h.es, src, anchor)
	if err != nil {
		return 0, err
	}
	h.signals.Reset()
	data, err := eval.New(h.es, h.signals).EvalBlock(ctx, h.stack, block, pipeline.Empty())
	if err != nil {
		return 0, err
	}
	return h.renderData(data)
}

// renderData prints evaluation output one value per line. Streams drain
// lazily so unbounded sources print as they produce; an error value
// anywhere becomes the returned error, ending the drain.
func (h *host) renderData(data pipeline.PipelineData) (int64, error) {
	if s, ok := data.Stream(); ok {
		var n int64
		for {
			v, ok := s.Next()
			if !ok {
				break
			}
			if v.IsError() {
				_ = s.Close()
				serr, _ := v.AsError()
				return n, serr
			}
			fmt.Fprintln(h.stdout, v.String())
			n++
		}
		_ = s.Close()
		return n, nil
	}
	if v, ok := data.Value(); ok {
		if serr, isErr := v.AsError(); isErr {
			return 0, serr
		}
		if v.IsNothing() {
			return 0, nil
		}
		fmt.Fprintln(h.stdout, v.String())
		return 1, nil
	}
	return 0, nil
}

// renderError writes a diagnostic to stderr, using the span-annotated
// renderer for shell errors and a plain line for anything else.
func (h *host) renderError(err error) {
	if serr, ok := errors.As(err); ok {
		fmt.Fprintln(h.stderr, h.es.RenderError(serr))
		return
	}
	fmt.Fprintln(h.stderr, "error:", err)
}
