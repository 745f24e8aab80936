// Package trigger invokes aggregation cycles on a fixed schedule.
package trigger

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jconover/hyperion-fleet-manager/pkg/models/domain"
)

// CycleRunner runs one aggregation cycle for a fleet.
type CycleRunner interface {
	RunCycle(ctx context.Context, fleet, environment string) (domain.CycleResult, error)
}

// Runner periodically runs cycles for one fleet until its context is
// cancelled. A failed cycle is logged and the schedule keeps going; the
// caller decides whether the process should stop.
type Runner struct {
	engine      CycleRunner
	fleet       string
	environment string
	interval    time.Duration
	done        chan struct{}
}

func NewRunner(engine CycleRunner, fleet, environment string, interval time.Duration) *Runner {
	return &Runner{
		engine:      engine,
		fleet:       fleet,
		environment: environment,
		interval:    interval,
		done:        make(chan struct{}),
	}
}

func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Str("fleet", r.fleet).Logger()
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", r.interval).Msg("scheduler started")
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			result, err := r.engine.RunCycle(ctx, r.fleet, r.environment)
			if err != nil {
				logger.Error().Err(err).Msg("scheduled aggregation cycle failed")
				continue
			}
			logger.Info().
				Int("instances_processed", result.InstancesProcessed).
				Int("metrics_published", result.MetricsPublished).
				Float64("health_score", result.HealthScore).
				Msg("scheduled aggregation cycle complete")
		}
	}
}
