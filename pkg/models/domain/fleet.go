package domain

import "time"

// LifecycleState is the coarse operational phase of an instance as reported
// by the inventory source.
type LifecycleState string

const (
	StateRunning      LifecycleState = "running"
	StateStopped      LifecycleState = "stopped"
	StatePending      LifecycleState = "pending"
	StateStopping     LifecycleState = "stopping"
	StateTerminated   LifecycleState = "terminated"
	StateShuttingDown LifecycleState = "shutting-down"
	StateUnknown      LifecycleState = "unknown"
)

// ComplianceState is the policy verdict for a single instance.
type ComplianceState string

const (
	ComplianceCompliant    ComplianceState = "COMPLIANT"
	ComplianceNonCompliant ComplianceState = "NON_COMPLIANT"
	ComplianceUnknown      ComplianceState = "UNKNOWN"
)

// HealthStatus classifies a 0-100 score.
type HealthStatus string

const (
	StatusHealthy  HealthStatus = "healthy"
	StatusWarning  HealthStatus = "warning"
	StatusCritical HealthStatus = "critical"
	StatusUnknown  HealthStatus = "unknown"
)

// InstanceObservation is one managed instance at collection time.
// The utilization pointers are nil when no time-series data exists for the
// observation window; IsCompliant is nil when the instance was not evaluated.
// HourlyCost is non-zero only for running instances.
type InstanceObservation struct {
	ID            string
	InstanceClass string
	Zone          string
	State         LifecycleState
	CPUPct        *float64
	MemPct        *float64
	DiskPct       *float64
	IsCompliant   *bool
	HourlyCost    float64
}

// FleetSnapshot aggregates all observations collected in one cycle.
// It is constructed once per cycle and never mutated afterwards.
type FleetSnapshot struct {
	Total           int
	Running         int
	Stopped         int
	Pending         int
	AvgCPU          float64
	AvgMem          float64
	AvgDisk         float64
	Compliant       int
	NonCompliant    int
	TotalHourlyCost float64
	Observations    []InstanceObservation
}

// Dimension is one (name, value) pair attached to a metric point. Duplicate
// names are permitted and preserved in order.
type Dimension struct {
	Name  string
	Value string
}

// MetricPoint is a single named, timestamped, dimensioned value ready for
// publishing to the metrics backend.
type MetricPoint struct {
	Name       string
	Value      float64
	Unit       string
	Dimensions []Dimension
	Timestamp  time.Time
}

// CycleResult summarizes one aggregation cycle for the caller.
type CycleResult struct {
	InstancesProcessed int
	RunningInstances   int
	MetricsPublished   int
	HealthScore        float64
	ComplianceScore    float64
}
