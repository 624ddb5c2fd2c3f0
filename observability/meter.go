package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/ductline/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider with an OTLP HTTP
// exporter. The returned provider must be shut down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metric attribute keys.
const (
	AttrGraph  = "graph"
	AttrStage  = "stage"
	AttrCode   = "code"
	AttrStatus = "status"
)

// StreamMetrics holds the instruments recorded by pipeline instances.
type StreamMetrics struct {
	received         metric.Int64Counter
	forwarded        metric.Int64Counter
	removed          metric.Int64Counter
	failed           metric.Int64Counter
	instancesActive  metric.Int64UpDownCounter
	instanceDuration metric.Float64Histogram
}

// NewStreamMetrics creates the stream instruments on meter.
func NewStreamMetrics(meter metric.Meter) (*StreamMetrics, error) {
	received, err := meter.Int64Counter("ductline.records.received",
		metric.WithDescription("Records received by a stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating records.received counter: %w", err)
	}

	forwarded, err := meter.Int64Counter("ductline.records.forwarded",
		metric.WithDescription("Records forwarded downstream by a stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating records.forwarded counter: %w", err)
	}

	removed, err := meter.Int64Counter("ductline.records.removed",
		metric.WithDescription("Records removed by a filter stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating records.removed counter: %w", err)
	}

	failed, err := meter.Int64Counter("ductline.records.failed",
		metric.WithDescription("Records reported as failed, by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating records.failed counter: %w", err)
	}

	instancesActive, err := meter.Int64UpDownCounter("ductline.instances.active",
		metric.WithDescription("Number of running pipeline instances"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating instances.active gauge: %w", err)
	}

	instanceDuration, err := meter.Float64Histogram("ductline.instance.duration",
		metric.WithDescription("Duration of pipeline instances in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating instance.duration histogram: %w", err)
	}

	return &StreamMetrics{
		received:         received,
		forwarded:        forwarded,
		removed:          removed,
		failed:           failed,
		instancesActive:  instancesActive,
		instanceDuration: instanceDuration,
	}, nil
}

// Stage returns a recorder bound to one stage of a graph. The attribute set
// is built once so per-record recording does not allocate it again.
// A nil StreamMetrics yields a nil recorder, which records nothing.
func (m *StreamMetrics) Stage(graph, stage string) *StageRecorder {
	if m == nil {
		return nil
	}
	return &StageRecorder{
		m:     m,
		graph: graph,
		stage: stage,
		attrs: metric.WithAttributeSet(attribute.NewSet(
			attribute.String(AttrGraph, graph),
			attribute.String(AttrStage, stage),
		)),
	}
}

// InstanceStarted increments the active instance count.
func (m *StreamMetrics) InstanceStarted(ctx context.Context, graph string) {
	if m == nil {
		return
	}
	m.instancesActive.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrGraph, graph)))
}

// InstanceFinished decrements the active instance count and records the
// instance duration.
func (m *StreamMetrics) InstanceFinished(ctx context.Context, graph, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.instancesActive.Add(ctx, -1, metric.WithAttributes(attribute.String(AttrGraph, graph)))
	m.instanceDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrGraph, graph),
		attribute.String(AttrStatus, status),
	))
}

// StageRecorder records per-record counters for one stage. All methods are
// no-ops on a nil recorder.
type StageRecorder struct {
	m     *StreamMetrics
	graph string
	stage string
	attrs metric.MeasurementOption
}

// Received counts a record entering the stage.
func (r *StageRecorder) Received(ctx context.Context) {
	if r != nil {
		r.m.received.Add(ctx, 1, r.attrs)
	}
}

// Forwarded counts a record passed downstream.
func (r *StageRecorder) Forwarded(ctx context.Context) {
	if r != nil {
		r.m.forwarded.Add(ctx, 1, r.attrs)
	}
}

// Removed counts a record dropped by a filter.
func (r *StageRecorder) Removed(ctx context.Context) {
	if r != nil {
		r.m.removed.Add(ctx, 1, r.attrs)
	}
}

// Failed counts a reported failure.
func (r *StageRecorder) Failed(ctx context.Context, code string) {
	if r != nil {
		r.m.failed.Add(ctx, 1, metric.WithAttributes(
			attribute.String(AttrGraph, r.graph),
			attribute.String(AttrStage, r.stage),
			attribute.String(AttrCode, code),
		))
	}
}
