package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one send sweep over all active schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, home, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			sched, err := newSchedulerFor(home, st)
			if err != nil {
				return err
			}
			rep, err := sched.ExecuteSends(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(),
				"Sweep: %d schedules, %d due, %d sent, %d failed, %d skipped",
				rep.Schedules, rep.Due, rep.Sent, rep.Failed, rep.Skipped)
			if dryRun {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), " (dry run, %d would send)", rep.DryRun)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Evaluate gates without dispatching or mutating steps")
	return cmd
}
