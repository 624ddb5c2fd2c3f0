// Package stream runs records through push-driven chains of stages.
//
// A Graph describes a chain: a source schema, filter and function stages,
// and a terminal sink or split. Building the graph yields a Chain owned by
// one pipeline instance; records are pushed through it one at a time on the
// calling goroutine, and every stage reuses its scratch entries from one
// record to the next.
//
// A filter stage forwards the record it received, untouched, when its
// filter keeps it. A function stage forwards every tuple its function
// emits. Failures never leave a stage: they are reported, once per record,
// to the instance Reporter, and the record goes no further. Which Reporter
// is used follows the error policy (log, trap or fail-fast).
//
// A Flow runs one chain per source concurrently:
//
//	flow := stream.NewFlow(graph, stream.WithParallelism(4))
//	err := flow.Run(ctx, sources...)
package stream
