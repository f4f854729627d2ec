// Package cli wires the outreach command tree: daemon lifecycle commands and
// direct-store pipeline commands for prospects, evidence, hooks, variants,
// schedules, and campaigns.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cobaltline/outreach/internal/config"
)

func NewRootCmd(version string) *cobra.Command {
	var homeOverride string

	cmd := &cobra.Command{
		Use:          "outreach",
		Short:        "Evidence-grounded outreach escalation engine",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			home, err := config.ResolveHome(homeOverride)
			if err != nil {
				return err
			}
			cmd.SetContext(config.WithHome(cmd.Context(), home))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&homeOverride, "home", "", "Override outreach home directory (default: ~/.outreach, env: OUTREACH_HOME)")

	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newStartCmd())
	cmd.AddCommand(newStopCmd())
	cmd.AddCommand(newStatusCmd())

	cmd.AddCommand(newProspectCmd())
	cmd.AddCommand(newEvidenceCmd())
	cmd.AddCommand(newHooksCmd())
	cmd.AddCommand(newComposeCmd())
	cmd.AddCommand(newScheduleCmd())
	cmd.AddCommand(newCampaignCmd())
	cmd.AddCommand(newSweepCmd())
	cmd.AddCommand(newSuppressCmd())
	cmd.AddCommand(newConsentCmd())
	cmd.AddCommand(newApikeyCmd())

	// Hidden internal subcommand used by `outreach start` for background mode.
	cmd.AddCommand(newDaemonCmd())

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.SetVersionTemplate("{{.Version}}\n")
	if version != "" {
		cmd.Version = version
	} else {
		cmd.Version = "dev"
	}

	return cmd
}
