package aggregator

import (
	"errors"
	"fmt"
	"math"

	"github.com/jconover/hyperion-fleet-manager/pkg/models/domain"
)

// ErrInvalidSnapshot marks a snapshot rejected at the construction boundary.
var ErrInvalidSnapshot = errors.New("invalid fleet snapshot")

// BuildSnapshot folds per-instance observations into a fleet snapshot. It is
// total: an empty input yields an all-zero snapshot. Utilization averages are
// taken over running instances that have a value for that metric.
func BuildSnapshot(observations []domain.InstanceObservation) domain.FleetSnapshot {
	snapshot := domain.FleetSnapshot{
		Total:        len(observations),
		Observations: observations,
	}

	var cpuSum, memSum, diskSum float64
	var cpuCount, memCount, diskCount int

	for _, obs := range observations {
		switch obs.State {
		case domain.StateRunning:
			snapshot.Running++
		case domain.StateStopped:
			snapshot.Stopped++
		case domain.StatePending:
			snapshot.Pending++
		}

		if obs.IsCompliant != nil {
			if *obs.IsCompliant {
				snapshot.Compliant++
			} else {
				snapshot.NonCompliant++
			}
		}

		if obs.State != domain.StateRunning {
			continue
		}
		snapshot.TotalHourlyCost += obs.HourlyCost
		if obs.CPUPct != nil {
			cpuSum += *obs.CPUPct
			cpuCount++
		}
		if obs.MemPct != nil {
			memSum += *obs.MemPct
			memCount++
		}
		if obs.DiskPct != nil {
			diskSum += *obs.DiskPct
			diskCount++
		}
	}

	if cpuCount > 0 {
		snapshot.AvgCPU = round2(cpuSum / float64(cpuCount))
	}
	if memCount > 0 {
		snapshot.AvgMem = round2(memSum / float64(memCount))
	}
	if diskCount > 0 {
		snapshot.AvgDisk = round2(diskSum / float64(diskCount))
	}

	return snapshot
}

// Validate rejects malformed snapshots before they reach scoring. Snapshots
// built by BuildSnapshot always pass; external inputs may not.
func Validate(s domain.FleetSnapshot) error {
	if s.Total < 0 || s.Running < 0 || s.Stopped < 0 || s.Pending < 0 {
		return fmt.Errorf("%w: negative instance counts", ErrInvalidSnapshot)
	}
	if s.Compliant < 0 || s.NonCompliant < 0 {
		return fmt.Errorf("%w: negative compliance counts", ErrInvalidSnapshot)
	}
	if s.Running+s.Stopped+s.Pending > s.Total {
		return fmt.Errorf("%w: state counts exceed total", ErrInvalidSnapshot)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
