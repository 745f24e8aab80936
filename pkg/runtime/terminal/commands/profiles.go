package commands

import (
	"fmt"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/jconover/hyperion-fleet-manager/pkg/services/config"
)

type ProfilesCmd struct {
	cfgPath string
}

func NewProfilesCmd() *cobra.Command {
	pc := &ProfilesCmd{}
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List AWS profiles from the shared config file",
		RunE:  pc.run,
	}

	usr, _ := user.Current()
	defaultPath := fmt.Sprintf("%s/.aws/config", usr.HomeDir)
	cmd.Flags().StringVarP(&pc.cfgPath, "config", "c", defaultPath,
		"Path to the AWS shared config file (default is $HOME/.aws/config)")

	return cmd
}

func (pc *ProfilesCmd) run(cmd *cobra.Command, args []string) error {
	registry, err := config.NewRegistry(pc.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load AWS config file: %w", err)
	}

	profiles, err := registry.GetProfiles(cmd.Context())
	if err != nil {
		return err
	}

	for _, profile := range profiles {
		region, _ := registry.GetRegion(cmd.Context(), profile)
		if region == "" {
			region = config.DefaultRegion
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Name: `%s`, Region: `%s`\n", profile, region)
	}
	return nil
}
