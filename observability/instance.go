package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Instance status values.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusStopped = "stopped"
)

// InstanceContext tracks one running pipeline instance: its span and the
// instance-level metrics.
type InstanceContext struct {
	Graph      string
	InstanceID string
	StartTime  time.Time
	Metrics    *StreamMetrics
}

// NewInstanceContext creates an instance context. If metrics is nil, metric
// recording is skipped.
func NewInstanceContext(graph, instanceID string, metrics *StreamMetrics) *InstanceContext {
	return &InstanceContext{
		Graph:      graph,
		InstanceID: instanceID,
		StartTime:  time.Now(),
		Metrics:    metrics,
	}
}

type instanceContextKey struct{}

// WithInstanceContext stores an InstanceContext in the context.
func WithInstanceContext(ctx context.Context, ic *InstanceContext) context.Context {
	return context.WithValue(ctx, instanceContextKey{}, ic)
}

// InstanceContextFromContext retrieves the InstanceContext from context, or
// nil.
func InstanceContextFromContext(ctx context.Context) *InstanceContext {
	if ic, ok := ctx.Value(instanceContextKey{}).(*InstanceContext); ok {
		return ic
	}
	return nil
}

// Start opens the instance span and counts the instance as active. The
// returned context carries both the span and ic.
func (ic *InstanceContext) Start(ctx context.Context) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, SpanInstance, trace.WithAttributes(
		attribute.String(AttrGraph, ic.Graph),
		attribute.String(AttrInstanceID, ic.InstanceID),
	))
	ic.Metrics.InstanceStarted(ctx, ic.Graph)
	return WithInstanceContext(ctx, ic), span
}

// End closes the span and records the instance outcome.
func (ic *InstanceContext) End(ctx context.Context, span trace.Span, status string, failures int64, err error) {
	duration := time.Since(ic.StartTime)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrFailures, failures),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	ic.Metrics.InstanceFinished(ctx, ic.Graph, status, duration)
}

// Duration returns the elapsed time since the instance started.
func (ic *InstanceContext) Duration() time.Duration {
	return time.Since(ic.StartTime)
}
