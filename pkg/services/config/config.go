package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the runtime settings for the metric aggregation engine.
// Values come from an optional config file with environment variables taking
// precedence; every field has a working default.
type Config struct {
	Environment              string `mapstructure:"environment"`
	Region                   string `mapstructure:"region"`
	FleetName                string `mapstructure:"fleet_name"`
	MetricNamespace          string `mapstructure:"metric_namespace"`
	AggregationPeriodMinutes int    `mapstructure:"aggregation_period_minutes"`
	ServerHost               string `mapstructure:"server_host"`
	ServerPort               string `mapstructure:"server_port"`
	LogLevel                 string `mapstructure:"log_level"`
}

// Window is the time range utilization queries look back over.
func (c *Config) Window() time.Duration {
	return time.Duration(c.AggregationPeriodMinutes) * time.Minute
}

// Load reads configuration from the given file (skipped when path is empty)
// and the process environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("environment", "dev")
	v.SetDefault("region", DefaultRegion)
	v.SetDefault("fleet_name", "hyperion-fleet")
	v.SetDefault("metric_namespace", NamespaceFleet)
	v.SetDefault("aggregation_period_minutes", 5)
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", "8080")
	v.SetDefault("log_level", "info")

	bindings := map[string]string{
		"environment":                "ENVIRONMENT",
		"region":                     "AWS_REGION",
		"fleet_name":                 "FLEET_NAME",
		"metric_namespace":           "METRIC_NAMESPACE",
		"aggregation_period_minutes": "AGGREGATION_PERIOD_MINUTES",
		"server_host":                "SERVER_HOST",
		"server_port":                "SERVER_PORT",
		"log_level":                  "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &config, nil
}
