package api

// CycleResponse reports the outcome of a triggered aggregation cycle.
type CycleResponse struct {
	Message            string  `json:"message"`
	FleetName          string  `json:"fleet_name"`
	Environment        string  `json:"environment"`
	InstancesProcessed int     `json:"instances_processed"`
	RunningInstances   int     `json:"running_instances"`
	MetricsPublished   int     `json:"metrics_published"`
	FleetHealthScore   float64 `json:"fleet_health_score"`
	ComplianceScore    float64 `json:"compliance_score"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
