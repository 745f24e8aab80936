package scoring

import "github.com/jconover/hyperion-fleet-manager/pkg/models/domain"

// CapacityUtilization is the mean of the snapshot's utilization averages,
// counting only metrics with a strictly positive average. An average of
// exactly 0 is treated as "no data" rather than zero utilization, which
// conflates a genuinely idle metric with a missing one; kept as is because
// downstream alarms depend on the observed behavior.
type CapacityUtilization struct{}

func (CapacityUtilization) Calculate(s domain.FleetSnapshot) float64 {
	if s.Running == 0 {
		return 0
	}

	var total float64
	var count int
	for _, avg := range []float64{s.AvgCPU, s.AvgMem, s.AvgDisk} {
		if avg > 0 {
			total += avg
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return round2(total / float64(count))
}

func (CapacityUtilization) Status(score float64) domain.HealthStatus {
	switch {
	case score >= 20 && score <= 70:
		return domain.StatusHealthy
	case (score >= 10 && score < 20) || (score > 70 && score <= 85):
		return domain.StatusWarning
	case score < 10 || score > 85:
		return domain.StatusCritical
	default:
		return domain.StatusUnknown
	}
}
