package config

// CostTable maps instance classes to an estimated hourly rate, with a
// fallback rate for classes the table does not know about.
type CostTable struct {
	rates    map[string]float64
	fallback float64
}

// Approximate on-demand prices for us-east-1, USD per hour.
var defaultRates = map[string]float64{
	"t3.micro":   0.0104,
	"t3.small":   0.0208,
	"t3.medium":  0.0416,
	"t3.large":   0.0832,
	"t3.xlarge":  0.1664,
	"t3.2xlarge": 0.3328,
	"m5.large":   0.096,
	"m5.xlarge":  0.192,
	"m5.2xlarge": 0.384,
	"m5.4xlarge": 0.768,
	"r5.large":   0.126,
	"r5.xlarge":  0.252,
	"r5.2xlarge": 0.504,
	"c5.large":   0.085,
	"c5.xlarge":  0.17,
	"c5.2xlarge": 0.34,
}

const defaultHourlyRate = 0.10

// DefaultCostTable returns the built-in rate table.
func DefaultCostTable() CostTable {
	return CostTable{rates: defaultRates, fallback: defaultHourlyRate}
}

// NewCostTable builds a table from the given rates. A zero fallback is
// replaced with the built-in default rate.
func NewCostTable(rates map[string]float64, fallback float64) CostTable {
	if fallback == 0 {
		fallback = defaultHourlyRate
	}
	return CostTable{rates: rates, fallback: fallback}
}

// HourlyRate returns the rate for an instance class, or the fallback rate
// when the class is unknown.
func (t CostTable) HourlyRate(instanceClass string) float64 {
	if rate, ok := t.rates[instanceClass]; ok {
		return rate
	}
	return t.fallback
}
