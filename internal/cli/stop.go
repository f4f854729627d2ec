package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cobaltline/outreach/internal/config"
	"github.com/cobaltline/outreach/internal/daemon"
)

func newStopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running outreach daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := config.MustHomeFrom(cmd.Context())
			stopped, err := daemon.Stop(cmd.Context(), home)
			if err != nil {
				return err
			}
			if !stopped {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Outreach is not running")
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Stopped")
			return nil
		},
	}
	return cmd
}
