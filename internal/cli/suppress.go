package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cobaltline/outreach/pkg/models"
)

func newSuppressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suppress",
		Short: "Manage the suppression set",
	}
	cmd.AddCommand(newSuppressAddCmd())
	cmd.AddCommand(newSuppressListCmd())
	return cmd
}

func newSuppressAddCmd() *cobra.Command {
	var (
		value  string
		kind   string
		reason string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Permanently exclude a domain or address from outreach",
		RunE: func(cmd *cobra.Command, args []string) error {
			if value == "" {
				return errors.New("--value is required")
			}
			if kind != models.SuppressDomain && kind != models.SuppressAddress {
				return errors.New("--kind must be domain or address")
			}
			st, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.AddSuppression(cmd.Context(), value, kind, reason); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Suppressed %s %q\n", kind, value)
			return nil
		},
	}
	cmd.Flags().StringVar(&value, "value", "", "Domain or address to suppress")
	cmd.Flags().StringVar(&kind, "kind", "domain", "Suppression kind: domain or address")
	cmd.Flags().StringVar(&reason, "reason", "manual", "Why the value is suppressed")
	return cmd
}

func newSuppressListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List suppressed domains and addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			sups, err := st.ListSuppressions(cmd.Context())
			if err != nil {
				return err
			}
			if len(sups) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No suppressions.")
				return nil
			}
			for _, s := range sups {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "- %-8s %s (%s)\n", s.Kind, s.Value, s.Reason)
			}
			return nil
		},
	}
	return cmd
}
