// Package scoring derives the fleet's composite health and efficiency scores
// from a snapshot. Every score is a pure function returning a percentage in
// [0, 100] together with a status classifier over that percentage.
package scoring

import (
	"math"

	"github.com/jconover/hyperion-fleet-manager/pkg/models/domain"
)

// Score computes one fleet-level score and classifies it.
type Score interface {
	Calculate(snapshot domain.FleetSnapshot) float64
	Status(score float64) domain.HealthStatus
}

// Utilization thresholds (percentages).
const (
	cpuWarning   = 70.0
	cpuCritical  = 90.0
	memWarning   = 75.0
	memCritical  = 90.0
	diskWarning  = 80.0
	diskCritical = 95.0
)

// Compliance score status thresholds.
const (
	complianceWarning  = 90.0
	complianceCritical = 80.0
)

// Fleet health weights. They sum to 1.
const (
	cpuWeight        = 0.30
	memWeight        = 0.25
	diskWeight       = 0.20
	complianceWeight = 0.25
)

// CPU classification boundaries for cost efficiency.
const (
	idleCPUThreshold          = 5.0
	underutilizedCPUThreshold = 20.0
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// utilizationHealth maps a utilization percentage onto a 0-100 health value:
// linear from 100 down to 70 up to the warning threshold, from 70 down to 30
// between warning and critical, and from 30 down to 0 over the 10 points past
// critical.
func utilizationHealth(utilization, warning, critical float64) float64 {
	switch {
	case utilization <= warning:
		return 100 - (utilization/warning)*30
	case utilization <= critical:
		return 70 - (utilization-warning)/(critical-warning)*40
	default:
		return 30 - math.Min(1, (utilization-critical)/10)*30
	}
}

// complianceRatio is the share of checked instances that are compliant.
// Absent any verdict it returns 100: no compliance data is treated as
// healthy, not as a penalty.
func complianceRatio(s domain.FleetSnapshot) float64 {
	checked := s.Compliant + s.NonCompliant
	if checked == 0 {
		return 100
	}
	return float64(s.Compliant) / float64(checked) * 100
}
