package main

import (
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jconover/hyperion-fleet-manager/pkg/server"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/config"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/engine"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/publisher"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/sources/compliance"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/sources/inventory"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/sources/utilization"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/trigger"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for the fleet metric aggregator",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to an optional config file; environment variables take precedence")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	ctx := logger.WithContext(cmd.Context())

	awsCfg, err := config.LoadAWS(ctx, "", cfg.Region)
	if err != nil {
		return err
	}

	eng := engine.New(
		inventory.NewEC2Source(*awsCfg, config.DefaultCostTable()),
		utilization.NewCloudWatchSource(*awsCfg),
		compliance.NewSSMSource(*awsCfg),
		publisher.New(*awsCfg, cfg.MetricNamespace),
		cfg.Window(),
	)

	logger.Info().
		Str("environment", cfg.Environment).
		Str("fleet_name", cfg.FleetName).
		Str("metric_namespace", cfg.MetricNamespace).
		Msg("configuration loaded")

	runner := trigger.NewRunner(eng, cfg.FleetName, cfg.Environment, cfg.Window())
	go runner.Run(ctx)

	webAPI := server.NewWebAPI(logger, server.Config{
		Addr: net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
		Dependencies: server.Dependencies{
			Engine:      eng,
			Environment: cfg.Environment,
		},
	})

	return webAPI.Start()
}
