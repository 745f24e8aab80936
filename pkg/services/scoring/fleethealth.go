package scoring

import "github.com/jconover/hyperion-fleet-manager/pkg/models/domain"

// FleetHealth is the weighted combination of CPU, memory and disk health
// (lower utilization is healthier) and the compliance ratio.
type FleetHealth struct{}

func (FleetHealth) Calculate(s domain.FleetSnapshot) float64 {
	if s.Total == 0 {
		return 0
	}

	health := utilizationHealth(s.AvgCPU, cpuWarning, cpuCritical)*cpuWeight +
		utilizationHealth(s.AvgMem, memWarning, memCritical)*memWeight +
		utilizationHealth(s.AvgDisk, diskWarning, diskCritical)*diskWeight +
		complianceRatio(s)*complianceWeight

	return round2(clamp(health, 0, 100))
}

func (FleetHealth) Status(score float64) domain.HealthStatus {
	switch {
	case score >= 80:
		return domain.StatusHealthy
	case score >= 60:
		return domain.StatusWarning
	case score > 0:
		return domain.StatusCritical
	default:
		return domain.StatusUnknown
	}
}
