// Package engine runs a single fleet metric aggregation cycle: fetch raw
// observations from the three sources, merge them into a snapshot, derive
// scores and publish the resulting points.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jconover/hyperion-fleet-manager/pkg/models/domain"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/aggregator"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/config"
)

// ErrSourceUnavailable marks a cycle aborted because a source the snapshot
// cannot be built without could not be reached.
var ErrSourceUnavailable = errors.New("source unavailable")

// MetricsPublisher writes a cycle's points to the metrics sink.
type MetricsPublisher interface {
	Publish(ctx context.Context, points []domain.MetricPoint) (int, error)
}

// Engine wires the source clients and the publisher into one cycle.
type Engine struct {
	inventory   InventorySource
	utilization UtilizationSource
	compliance  ComplianceSource
	publisher   MetricsPublisher
	window      time.Duration
}

// InventorySource lists the instances of a fleet.
type InventorySource interface {
	ListInstances(ctx context.Context, fleet string) ([]domain.InstanceObservation, error)
}

// UtilizationSource resolves the latest sample of a metric per instance.
type UtilizationSource interface {
	Query(
		ctx context.Context,
		ids []string,
		metricName, namespace string,
		window time.Duration,
	) (map[string]float64, error)
}

// ComplianceSource resolves per-instance policy verdicts.
type ComplianceSource interface {
	Query(ctx context.Context, ids []string) (map[string]domain.ComplianceState, error)
}

func New(
	inv InventorySource,
	util UtilizationSource,
	comp ComplianceSource,
	pub MetricsPublisher,
	window time.Duration,
) *Engine {
	return &Engine{
		inventory:   inv,
		utilization: util,
		compliance:  comp,
		publisher:   pub,
		window:      window,
	}
}

// RunCycle performs one aggregation cycle for the fleet. Inventory failure
// aborts the cycle; utilization and compliance failures degrade to missing
// data. The caller-supplied context bounds the whole cycle.
func (e *Engine) RunCycle(ctx context.Context, fleet, environment string) (domain.CycleResult, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("fleet", fleet).Msg("starting metric aggregation cycle")

	observations, err := e.inventory.ListInstances(ctx, fleet)
	if err != nil {
		return domain.CycleResult{}, fmt.Errorf("%w: inventory: %v", ErrSourceUnavailable, err)
	}
	if len(observations) == 0 {
		logger.Warn().Str("fleet", fleet).Msg("no instances found in fleet")
	}

	runningIDs := make([]string, 0, len(observations))
	for _, obs := range observations {
		if obs.State == domain.StateRunning {
			runningIDs = append(runningIDs, obs.ID)
		}
	}

	e.collectUtilization(ctx, runningIDs, observations)
	e.collectCompliance(ctx, runningIDs, observations)

	snapshot := aggregator.BuildSnapshot(observations)
	if err := aggregator.Validate(snapshot); err != nil {
		return domain.CycleResult{}, err
	}

	agg := aggregator.New(environment, fleet)
	points := agg.Aggregate(snapshot)

	published, err := e.publisher.Publish(ctx, points)
	if err != nil {
		return domain.CycleResult{}, err
	}

	result := domain.CycleResult{
		InstancesProcessed: snapshot.Total,
		RunningInstances:   snapshot.Running,
		MetricsPublished:   published,
		HealthScore:        agg.HealthScore(snapshot),
		ComplianceScore:    agg.ComplianceScore(snapshot),
	}

	logger.Info().
		Int("instances_processed", result.InstancesProcessed).
		Int("running_instances", result.RunningInstances).
		Int("metrics_published", result.MetricsPublished).
		Float64("health_score", result.HealthScore).
		Msg("metric aggregation cycle complete")
	return result, nil
}

// collectUtilization attaches the latest CPU, memory and disk samples to the
// running instances. A failed metric query leaves that metric absent.
func (e *Engine) collectUtilization(ctx context.Context, ids []string, observations []domain.InstanceObservation) {
	if len(ids) == 0 {
		return
	}

	queries := []struct {
		metricName string
		namespace  string
		assign     func(obs *domain.InstanceObservation, value float64)
	}{
		{config.MetricCPUUtilization, config.NamespaceEC2,
			func(obs *domain.InstanceObservation, value float64) { obs.CPUPct = &value }},
		{config.AgentMetricMemUsedPercent, config.NamespaceCWAgent,
			func(obs *domain.InstanceObservation, value float64) { obs.MemPct = &value }},
		{config.AgentMetricDiskUsedPercent, config.NamespaceCWAgent,
			func(obs *domain.InstanceObservation, value float64) { obs.DiskPct = &value }},
	}

	for _, query := range queries {
		values, err := e.utilization.Query(ctx, ids, query.metricName, query.namespace, e.window)
		if err != nil {
			zerolog.Ctx(ctx).Warn().
				Err(err).
				Str("metric_name", query.metricName).
				Msg("utilization query failed")
			continue
		}
		for i := range observations {
			if value, ok := values[observations[i].ID]; ok {
				query.assign(&observations[i], value)
			}
		}
	}
}

// collectCompliance attaches definite verdicts to the running instances;
// unknown verdicts leave IsCompliant unset.
func (e *Engine) collectCompliance(ctx context.Context, ids []string, observations []domain.InstanceObservation) {
	if len(ids) == 0 {
		return
	}

	verdicts, err := e.compliance.Query(ctx, ids)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("compliance query failed")
		return
	}

	for i := range observations {
		switch verdicts[observations[i].ID] {
		case domain.ComplianceCompliant:
			compliant := true
			observations[i].IsCompliant = &compliant
		case domain.ComplianceNonCompliant:
			nonCompliant := false
			observations[i].IsCompliant = &nonCompliant
		}
	}
}
