// Package observability provides OpenTelemetry tracing and metrics for
// pipeline instances.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("ingest"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &cfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewStreamMetrics(observability.Meter("ingest"))
//	rec := metrics.Stage("orders", "drop-invalid")
//	rec.Received(ctx)
//
// Every pipeline instance runs inside a span named ductline.instance; stage
// counters carry the graph and stage names as attributes.
package observability
