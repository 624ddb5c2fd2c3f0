package stream

import (
	"context"
	stderrors "errors"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/ductline/config"
	"github.com/kbukum/ductline/logger"
	"github.com/kbukum/ductline/observability"
	"github.com/kbukum/ductline/operation"
	"github.com/kbukum/ductline/resilience"
)

// Flow runs many independent pipeline instances of one graph. Every source
// gets its own chain, process, reporter and runtime; instances share
// nothing but the graph description, the metrics and the sink functions.
type Flow struct {
	graph       *Graph
	parallelism int
	policy      string
	trap        TrapFunc
	trapRetry   resilience.RetryConfig
	metrics     *observability.StreamMetrics
	log         *logger.Logger
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithParallelism caps the number of instances running at once. Zero or
// less means unlimited.
func WithParallelism(n int) FlowOption {
	return func(f *Flow) { f.parallelism = n }
}

// WithErrorPolicy sets the failure policy: config.ErrorPolicyLog,
// config.ErrorPolicyTrap or config.ErrorPolicyFailFast.
func WithErrorPolicy(policy string) FlowOption {
	return func(f *Flow) { f.policy = policy }
}

// WithTrap sets the trap used by the trap policy.
func WithTrap(trap TrapFunc) FlowOption {
	return func(f *Flow) { f.trap = trap }
}

// WithTrapRetry retries a failing trap before the instance is stopped.
func WithTrapRetry(cfg resilience.RetryConfig) FlowOption {
	return func(f *Flow) { f.trapRetry = cfg }
}

// WithMetrics records stage and instance metrics.
func WithMetrics(m *observability.StreamMetrics) FlowOption {
	return func(f *Flow) { f.metrics = m }
}

// WithLogger sets the logger instances derive theirs from.
func WithLogger(l *logger.Logger) FlowOption {
	return func(f *Flow) { f.log = l }
}

// NewFlow creates a flow of graph.
func NewFlow(graph *Graph, opts ...FlowOption) *Flow {
	f := &Flow{graph: graph, policy: config.ErrorPolicyLog}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = logger.Get("flow")
	}
	return f
}

// NewFlowFromConfig creates a flow using the parallelism, error policy,
// trap retry and logging of cfg. Options are applied after cfg.
func NewFlowFromConfig(graph *Graph, cfg *config.StreamConfig, opts ...FlowOption) *Flow {
	base := []FlowOption{
		WithParallelism(cfg.Parallelism),
		WithErrorPolicy(cfg.ErrorPolicy),
		WithTrapRetry(cfg.RetryConfig()),
		WithLogger(cfg.NewLogger().WithComponent("flow")),
	}
	return NewFlow(graph, append(base, opts...)...)
}

// Run runs one pipeline instance per source and waits for all of them. It
// returns the first instance error; the context passed to the other
// instances is cancelled when one fails.
func (f *Flow) Run(ctx context.Context, sources ...Iterator) error {
	if _, err := ReporterFor(f.policy, f.trap, "", f.log); err != nil {
		closeAll(sources)
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if f.parallelism > 0 {
		g.SetLimit(f.parallelism)
	}
	for _, src := range sources {
		src := src
		g.Go(func() error {
			return f.RunInstance(gctx, src)
		})
	}
	return g.Wait()
}

// RunInstance runs a single pipeline instance over src on the calling
// goroutine.
func (f *Flow) RunInstance(ctx context.Context, src Iterator) error {
	process := operation.NewProcess(f.log)
	reporter, err := ReporterFor(f.policy, RetryTrap(ctx, f.trapRetry, f.trap), process.ID(), process.Logger())
	if err != nil {
		_ = src.Close()
		return err
	}
	rt := NewRuntime(f.graph.Name(), process, reporter, f.metrics)

	ic := observability.NewInstanceContext(f.graph.Name(), process.ID(), f.metrics)
	ctx, span := ic.Start(ctx)

	chain, err := f.graph.Build(rt)
	if err != nil {
		_ = src.Close()
		ic.End(ctx, span, observability.StatusFailed, 0, err)
		return err
	}
	defer chain.Cleanup()

	err = chain.Run(ctx, src)
	status := instanceStatus(err)
	ic.End(ctx, span, status, rt.Failures(), err)

	process.Logger().Info("pipeline instance finished", logger.Fields(
		"graph", f.graph.Name(),
		"status", status,
		"failures", rt.Failures(),
		"duration", ic.Duration().String(),
	))
	return err
}

func instanceStatus(err error) string {
	switch {
	case err == nil:
		return observability.StatusOK
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return observability.StatusStopped
	default:
		return observability.StatusFailed
	}
}

func closeAll(sources []Iterator) {
	for _, src := range sources {
		_ = src.Close()
	}
}
