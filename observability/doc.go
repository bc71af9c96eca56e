// Package observability provides OpenTelemetry tracing and metrics for
// the runtime. Everything is no-op until a provider is installed, so
// the shell pays nothing when no collector is configured.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("shale"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanPipeline)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("shale"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("shale"))
//	metrics.RecordCommand(ctx, "par-each", "ok", duration)
//
// The REPL wraps each submitted line in a LineContext so the line's
// span and metrics share one session identity and start time.
package observability
