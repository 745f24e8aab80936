package scoring

import "github.com/jconover/hyperion-fleet-manager/pkg/models/domain"

// CostEfficiency buckets running instances by CPU utilization: idle
// (cpu < 5), underutilized (cpu < 20) and well-utilized. Instances without a
// CPU sample are left out of the denominator.
type CostEfficiency struct{}

func (CostEfficiency) Calculate(s domain.FleetSnapshot) float64 {
	if s.Running == 0 {
		return 0
	}

	var idle, underutilized, wellUtilized int
	for _, obs := range s.Observations {
		if obs.State != domain.StateRunning || obs.CPUPct == nil {
			continue
		}
		switch cpu := *obs.CPUPct; {
		case cpu < idleCPUThreshold:
			idle++
		case cpu < underutilizedCPUThreshold:
			underutilized++
		default:
			wellUtilized++
		}
	}

	classified := idle + underutilized + wellUtilized
	if classified == 0 {
		return 50 // running instances but no CPU data, assume neutral
	}

	// Well-utilized instances contribute fully, underutilized partially,
	// idle minimally.
	score := float64(wellUtilized*100+underutilized*50+idle*10) / float64(classified)
	return round2(clamp(score, 0, 100))
}

func (CostEfficiency) Status(score float64) domain.HealthStatus {
	switch {
	case score >= 70:
		return domain.StatusHealthy
	case score >= 40:
		return domain.StatusWarning
	case score > 0:
		return domain.StatusCritical
	default:
		return domain.StatusUnknown
	}
}
