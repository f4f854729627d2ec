package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage escalation schedules",
	}
	cmd.AddCommand(newScheduleCreateCmd())
	cmd.AddCommand(newScheduleShowCmd())
	return cmd
}

func newScheduleCreateCmd() *cobra.Command {
	var (
		prospectID string
		campaignID string
		variantIDs []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Build the escalation plan for a prospect from composed variants",
		RunE: func(cmd *cobra.Command, args []string) error {
			if prospectID == "" || campaignID == "" || len(variantIDs) == 0 {
				return errors.New("--prospect, --campaign, and --variants are required")
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
			id, err := sched.CreateSchedule(cmd.Context(), prospectID, campaignID, variantIDs)
			if err != nil {
				return err
			}
			steps, err := st.ListSteps(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created schedule %s (%d steps)\n", id, len(steps))
			for _, s := range steps {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %d. day %-2d %s\n", s.StepNumber, s.DayOffset, s.Channel)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prospectID, "prospect", "", "Prospect ID")
	cmd.Flags().StringVar(&campaignID, "campaign", "", "Campaign ID")
	cmd.Flags().StringSliceVar(&variantIDs, "variants", nil, "Variant IDs (comma-separated)")
	return cmd
}

func newScheduleShowCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a schedule and its steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return errors.New("--id is required")
			}
			st, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			sc, err := st.GetSchedule(cmd.Context(), id)
			if err != nil {
				return err
			}
			steps, err := st.ListSteps(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Schedule %s  campaign=%s status=%s\n", sc.ScheduleID, sc.CampaignID, sc.Status)
			for _, s := range steps {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %d. day %-2d %-8s %-8s attempts=%d\n",
					s.StepNumber, s.DayOffset, s.Channel, s.Status, s.Attempts)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Schedule ID")
	return cmd
}
