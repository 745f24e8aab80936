package config

// CloudWatch namespaces. NamespaceFleet receives the aggregated metrics;
// the other two are queried for raw utilization data.
const (
	NamespaceFleet   = "Hyperion/FleetManager"
	NamespaceEC2     = "AWS/EC2"
	NamespaceCWAgent = "CWAgent"
)

// Published metric names.
const (
	MetricInstanceCount    = "InstanceCount"
	MetricRunningInstances = "RunningInstances"
	MetricStoppedInstances = "StoppedInstances"
	MetricPendingInstances = "PendingInstances"

	MetricCPUUtilization    = "CPUUtilization"
	MetricMemoryUtilization = "MemoryUtilization"
	MetricDiskUtilization   = "DiskUtilization"

	MetricFleetHealthScore    = "FleetHealthScore"
	MetricComplianceScore     = "ComplianceScore"
	MetricCostEfficiencyScore = "CostEfficiencyScore"
	MetricCapacityUtilization = "CapacityUtilization"

	MetricCostPerInstance = "CostPerInstance"
	MetricTotalFleetCost  = "TotalFleetCost"
)

// CloudWatch Agent metric names for memory and disk utilization.
const (
	AgentMetricMemUsedPercent  = "mem_used_percent"
	AgentMetricDiskUsedPercent = "disk_used_percent"
)

// Dimension names attached to every published point.
const (
	DimEnvironment = "Environment"
	DimFleetName   = "FleetName"
)
