package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newCampaignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Control campaigns",
	}
	cmd.AddCommand(newCampaignStartCmd())
	cmd.AddCommand(newCampaignPauseCmd())
	cmd.AddCommand(newCampaignStatsCmd())
	return cmd
}

func newCampaignStartCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Activate all pending schedules in a campaign",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return errors.New("--id is required")
			}
			st, home, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			sched, err := newSchedulerFor(home, st)
			if err != nil {
				return err
			}
			n, err := sched.StartCampaign(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Started campaign %s (%d schedules activated)\n", id, n)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Campaign ID")
	return cmd
}

func newCampaignPauseCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "pause",
		Short: "Pause all active schedules in a campaign",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return errors.New("--id is required")
			}
			st, home, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			sched, err := newSchedulerFor(home, st)
			if err != nil {
				return err
			}
			n, err := sched.PauseCampaign(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Paused campaign %s (%d schedules paused)\n", id, n)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Campaign ID")
	return cmd
}

func newCampaignStatsCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show campaign delivery outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return errors.New("--id is required")
			}
			st, home, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			sched, err := newSchedulerFor(home, st)
			if err != nil {
				return err
			}
			stats, err := sched.Stats(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Campaign %s\n", stats.CampaignID)
			_, _ = fmt.Fprintf(out, "  schedules: %d\n", stats.Schedules)
			_, _ = fmt.Fprintf(out, "  sent:      %d\n", stats.Sent)
			_, _ = fmt.Fprintf(out, "  delivered: %d\n", stats.Delivered)
			_, _ = fmt.Fprintf(out, "  opened:    %d (%.0f%%)\n", stats.Opened, stats.OpenRate*100)
			_, _ = fmt.Fprintf(out, "  replied:   %d (%.0f%%)\n", stats.Replied, stats.ReplyRate*100)
			_, _ = fmt.Fprintf(out, "  meetings:  %d\n", stats.Meetings)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Campaign ID")
	return cmd
}
