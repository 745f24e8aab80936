package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jconover/hyperion-fleet-manager/pkg/runtime/terminal/export"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/config"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/engine"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/publisher"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/sources/compliance"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/sources/inventory"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/sources/utilization"
)

type CycleCmd struct {
	profile       string
	region        string
	fleet         string
	environment   string
	namespace     string
	windowMinutes int
	reporter      *export.Reporter
}

func NewCycleCmd(reporter *export.Reporter) *cobra.Command {
	cc := &CycleCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Run one fleet metric aggregation cycle",
		RunE:  cc.run,
	}

	cmd.Flags().StringVar(&cc.profile, "profile", "", "AWS shared config profile to use")
	cmd.Flags().StringVar(&cc.region, "region", "", "AWS region (defaults to the profile's region)")
	cmd.Flags().StringVar(&cc.fleet, "fleet", "", "Fleet name to aggregate")
	cmd.Flags().StringVar(&cc.environment, "environment", "dev", "Deployment environment dimension")
	cmd.Flags().StringVar(&cc.namespace, "namespace", config.NamespaceFleet, "CloudWatch namespace for published metrics")
	cmd.Flags().IntVar(&cc.windowMinutes, "window", 5, "Utilization query window in minutes")

	_ = cmd.MarkFlagRequired("fleet")

	return cmd
}

func (cc *CycleCmd) run(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx = logger.WithContext(ctx)

	awsCfg, err := config.LoadAWS(ctx, cc.profile, cc.region)
	if err != nil {
		return err
	}

	eng := engine.New(
		inventory.NewEC2Source(*awsCfg, config.DefaultCostTable()),
		utilization.NewCloudWatchSource(*awsCfg),
		compliance.NewSSMSource(*awsCfg),
		publisher.New(*awsCfg, cc.namespace),
		time.Duration(cc.windowMinutes)*time.Minute,
	)

	result, err := eng.RunCycle(ctx, cc.fleet, cc.environment)
	if err != nil {
		return fmt.Errorf("aggregation cycle failed: %w", err)
	}

	return cc.reporter.Handle(cc.fleet, cc.environment, result)
}
