package stream

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/ductline/config"
	"github.com/kbukum/ductline/observability"
)

// InitObservability starts the meter and tracer providers enabled in cfg
// and returns the stream metrics to pass to WithMetrics, nil when metrics
// are disabled. The returned shutdown flushes and stops every provider.
func InitObservability(ctx context.Context, cfg *config.StreamConfig) (*observability.StreamMetrics, func(context.Context) error, error) {
	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for _, fn := range shutdowns {
			errs = append(errs, fn(ctx))
		}
		return stderrors.Join(errs...)
	}

	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, cfg.TracerConfig())
		if err != nil {
			return nil, shutdown, err
		}
		shutdowns = append(shutdowns, tp.Shutdown)
	}

	var metrics *observability.StreamMetrics
	if cfg.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, cfg.MeterConfig())
		if err != nil {
			return nil, shutdown, err
		}
		shutdowns = append(shutdowns, mp.Shutdown)
		metrics, err = observability.NewStreamMetrics(mp.Meter(cfg.Name))
		if err != nil {
			return nil, shutdown, err
		}
	}
	return metrics, shutdown, nil
}
