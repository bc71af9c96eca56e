package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LineContext holds observability context for one submitted line of
// input: the REPL wraps each submission in one so its span and metrics
// share the session identity and start time.
type LineContext struct {
	SessionID string
	Line      int
	StartTime time.Time
	Metrics   *Metrics
}

// NewLineContext creates a line context. If metrics is nil, metric
// recording is silently skipped.
func NewLineContext(sessionID string, line int, metrics *Metrics) *LineContext {
	return &LineContext{
		SessionID: sessionID,
		Line:      line,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
}

// lineContextKey is the context key for LineContext.
type lineContextKey struct{}

// WithLineContext stores a LineContext in the context.
func WithLineContext(ctx context.Context, lc *LineContext) context.Context {
	return context.WithValue(ctx, lineContextKey{}, lc)
}

// LineContextFromContext retrieves the LineContext from context, or nil.
func LineContextFromContext(ctx context.Context) *LineContext {
	if lc, ok := ctx.Value(lineContextKey{}).(*LineContext); ok {
		return lc
	}
	return nil
}

// StartSpanForLine starts a traced span for the submission and records
// the pipeline-start metric.
func (lc *LineContext) StartSpanForLine(ctx context.Context, spanName string) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, spanName)
	span.SetAttributes(
		attribute.String(AttrSessionID, lc.SessionID),
		attribute.Int(AttrReplLine, lc.Line),
	)

	if lc.Metrics != nil {
		lc.Metrics.RecordPipelineStart(ctx)
	}
	return ctx, span
}

// EndLine ends the span and records completion metrics. values is the
// number of values the host rendered from the line's output.
func (lc *LineContext) EndLine(ctx context.Context, span trace.Span, status string, values int64, err error) {
	duration := time.Since(lc.StartTime)

	if err != nil {
		span.RecordError(err)
	}

	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if lc.Metrics != nil {
		lc.Metrics.RecordPipelineEnd(ctx, status, duration)
		if values > 0 {
			lc.Metrics.RecordValues(ctx, values)
		}
	}
}

// Duration returns the elapsed time since the line was submitted.
func (lc *LineContext) Duration() time.Duration {
	return time.Since(lc.StartTime)
}
