package export

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/jconover/hyperion-fleet-manager/pkg/models/domain"
)

// Reporter outputs cycle results to the console in a formatted text form
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

type cycleReport struct {
	FleetName   string
	Environment string
	Result      domain.CycleResult
}

func (c *Reporter) Handle(fleetName, environment string, result domain.CycleResult) error {
	tmpl := `
Fleet Aggregation Cycle: {{.FleetName}} ({{.Environment}})

Instances processed: {{.Result.InstancesProcessed}}
Running instances:   {{.Result.RunningInstances}}
Metrics published:   {{.Result.MetricsPublished}}
Fleet health score:  {{printf "%.2f" .Result.HealthScore}}
Compliance score:    {{printf "%.2f" .Result.ComplianceScore}}
`

	t, err := template.New("cycle").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, cycleReport{
		FleetName:   fleetName,
		Environment: environment,
		Result:      result,
	})
}
