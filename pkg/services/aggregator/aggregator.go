// Package aggregator builds fleet snapshots from raw observations and turns
// them into the batch of metric points published each cycle.
package aggregator

import (
	"time"

	"github.com/jconover/hyperion-fleet-manager/pkg/models/domain"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/config"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/scoring"
)

const (
	unitCount   = "Count"
	unitPercent = "Percent"
	unitNone    = "None"
)

// Aggregator produces the per-cycle metric points for one fleet. All points
// of a cycle share the same timestamp and (Environment, FleetName)
// dimensions.
type Aggregator struct {
	dimensions []domain.Dimension
	now        func() time.Time

	health     scoring.Score
	compliance scoring.Score
	efficiency scoring.Score
	capacity   scoring.Score
}

// New returns an aggregator using the wall clock.
func New(environment, fleetName string) *Aggregator {
	return NewWithClock(environment, fleetName, time.Now)
}

// NewWithClock returns an aggregator reading cycle timestamps from now.
func NewWithClock(environment, fleetName string, now func() time.Time) *Aggregator {
	return &Aggregator{
		dimensions: []domain.Dimension{
			{Name: config.DimEnvironment, Value: environment},
			{Name: config.DimFleetName, Value: fleetName},
		},
		now:        now,
		health:     scoring.FleetHealth{},
		compliance: scoring.Compliance{},
		efficiency: scoring.CostEfficiency{},
		capacity:   scoring.CapacityUtilization{},
	}
}

// Aggregate emits exactly 13 points for the snapshot: four instance counts,
// three utilization averages, four scores and two cost metrics. It never
// fails; all scores are total over any snapshot shape, including all-zero.
func (a *Aggregator) Aggregate(s domain.FleetSnapshot) []domain.MetricPoint {
	timestamp := a.now().UTC()
	points := make([]domain.MetricPoint, 0, 13)

	add := func(name string, value float64, unit string) {
		points = append(points, domain.MetricPoint{
			Name:       name,
			Value:      value,
			Unit:       unit,
			Dimensions: a.dimensions,
			Timestamp:  timestamp,
		})
	}

	add(config.MetricInstanceCount, float64(s.Total), unitCount)
	add(config.MetricRunningInstances, float64(s.Running), unitCount)
	add(config.MetricStoppedInstances, float64(s.Stopped), unitCount)
	add(config.MetricPendingInstances, float64(s.Pending), unitCount)

	add(config.MetricCPUUtilization, s.AvgCPU, unitPercent)
	add(config.MetricMemoryUtilization, s.AvgMem, unitPercent)
	add(config.MetricDiskUtilization, s.AvgDisk, unitPercent)

	add(config.MetricFleetHealthScore, a.health.Calculate(s), unitPercent)
	add(config.MetricComplianceScore, a.compliance.Calculate(s), unitPercent)
	add(config.MetricCostEfficiencyScore, a.efficiency.Calculate(s), unitPercent)
	add(config.MetricCapacityUtilization, a.capacity.Calculate(s), unitPercent)

	costPerInstance := 0.0
	if s.Running > 0 {
		costPerInstance = s.TotalHourlyCost / float64(s.Running)
	}
	// USD per hour, no standard unit.
	add(config.MetricCostPerInstance, round4(costPerInstance), unitNone)
	add(config.MetricTotalFleetCost, round4(s.TotalHourlyCost), unitNone)

	return points
}

// HealthScore recomputes the fleet health score for status reporting.
func (a *Aggregator) HealthScore(s domain.FleetSnapshot) float64 {
	return a.health.Calculate(s)
}

// ComplianceScore recomputes the compliance score for status reporting.
func (a *Aggregator) ComplianceScore(s domain.FleetSnapshot) float64 {
	return a.compliance.Calculate(s)
}
