package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Mine and inspect conversation hooks",
	}
	cmd.AddCommand(newHooksMineCmd())
	cmd.AddCommand(newHooksListCmd())
	return cmd
}

func newHooksMineCmd() *cobra.Command {
	var (
		prospectID string
		days       int
		limit      int
	)
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Score fresh evidence into ranked hooks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if prospectID == "" {
				return errors.New("--prospect is required")
			}
			st, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			hooks, err := newRankerFor(st).Mine(cmd.Context(), prospectID, days, limit)
			if err != nil {
				return err
			}
			if len(hooks) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No hooks mined.")
				return nil
			}
			for _, h := range hooks {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "- %s  [%.2f %s] %s\n", h.HookID, h.Score, h.Status, h.Headline)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prospectID, "prospect", "", "Prospect ID")
	cmd.Flags().IntVar(&days, "days", 14, "Evidence window in days")
	cmd.Flags().IntVar(&limit, "limit", 5, "Max hooks to return")
	return cmd
}

func newHooksListCmd() *cobra.Command {
	var (
		prospectID string
		limit      int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List previously mined hooks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if prospectID == "" {
				return errors.New("--prospect is required")
			}
			st, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			hooks, err := st.ListHooks(cmd.Context(), prospectID, limit)
			if err != nil {
				return err
			}
			if len(hooks) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No hooks.")
				return nil
			}
			for _, h := range hooks {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "- %s  [%.2f %s %s] %s\n",
					h.HookID, h.Score, h.Status, h.Type, h.Headline)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prospectID, "prospect", "", "Prospect ID")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max hooks (0 = all)")
	return cmd
}
