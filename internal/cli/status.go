package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cobaltline/outreach/internal/config"
	"github.com/cobaltline/outreach/internal/daemon"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show outreach daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := config.MustHomeFrom(cmd.Context())
			st, err := daemon.Status(cmd.Context(), home)
			if err != nil {
				return err
			}
			if !st.Running {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Outreach not running")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Outreach running (pid %d, addr %s)\n", st.PID, st.Addr)
			return nil
		},
	}
	return cmd
}
