package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cobaltline/outreach/internal/store"
)

func newProspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prospect",
		Short: "Manage prospects",
	}
	cmd.AddCommand(newProspectAddCmd())
	cmd.AddCommand(newProspectListCmd())
	return cmd
}

func newProspectAddCmd() *cobra.Command {
	var p store.Prospect
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a prospect",
		RunE: func(cmd *cobra.Command, args []string) error {
			if p.Name == "" {
				return errors.New("--name is required")
			}
			st, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			p.Domain = strings.ToLower(p.Domain)
			p.Language = strings.ToLower(p.Language)
			id, err := st.CreateProspect(cmd.Context(), p)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created prospect %q (%s)\n", p.Name, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Name, "name", "", "Contact name")
	cmd.Flags().StringVar(&p.Company, "company", "", "Company name")
	cmd.Flags().StringVar(&p.Domain, "domain", "", "Company web domain")
	cmd.Flags().StringVar(&p.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&p.Phone, "phone", "", "Phone number (E.164)")
	cmd.Flags().StringVar(&p.LinkedIn, "linkedin", "", "LinkedIn profile URL")
	cmd.Flags().StringVar(&p.Language, "language", "en", "Preferred language")
	cmd.Flags().StringVar(&p.Industry, "industry", "", "Industry")
	cmd.Flags().StringVar(&p.City, "city", "", "City")
	return cmd
}

func newProspectListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List prospects",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			ps, err := st.ListProspects(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(ps) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No prospects.")
				return nil
			}
			for _, p := range ps {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "- %s  %s (%s, %s)\n", p.ProspectID, p.Name, p.Company, p.Email)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Max prospects to list (0 = all)")
	return cmd
}
