package scoring

import "github.com/jconover/hyperion-fleet-manager/pkg/models/domain"

// Compliance is the fleet-wide share of compliant instances among those with
// a definite verdict.
type Compliance struct{}

func (Compliance) Calculate(s domain.FleetSnapshot) float64 {
	return round2(complianceRatio(s))
}

func (Compliance) Status(score float64) domain.HealthStatus {
	switch {
	case score >= complianceWarning:
		return domain.StatusHealthy
	case score >= complianceCritical:
		return domain.StatusWarning
	case score > 0:
		return domain.StatusCritical
	default:
		return domain.StatusUnknown
	}
}
