package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cobaltline/outreach/internal/evidence"
	"github.com/cobaltline/outreach/internal/store"
)

func newEvidenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evidence",
		Short: "Manage prospect evidence",
	}
	cmd.AddCommand(newEvidenceAddCmd())
	cmd.AddCommand(newEvidenceListCmd())
	return cmd
}

func newEvidenceAddCmd() *cobra.Command {
	var (
		prospectID string
		published  string
		ev         store.Evidence
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record one observed signal for a prospect",
		RunE: func(cmd *cobra.Command, args []string) error {
			if prospectID == "" || ev.Source == "" || ev.Title == "" || published == "" {
				return errors.New("--prospect, --source, --title, and --published are required")
			}
			at, err := parseDate(published)
			if err != nil {
				return fmt.Errorf("invalid --published date: %w", err)
			}
			ev.ProspectID = prospectID
			ev.PublishedAt = at

			st, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			id, err := evidence.New(st, nil).StoreEvidence(cmd.Context(), ev)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored evidence %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&prospectID, "prospect", "", "Prospect ID")
	cmd.Flags().StringVar(&ev.Source, "source", "", "Evidence source (e.g. Trustpilot, press)")
	cmd.Flags().StringVar(&ev.Title, "title", "", "Headline or title")
	cmd.Flags().StringVar(&ev.Snippet, "snippet", "", "Short body excerpt")
	cmd.Flags().StringVar(&ev.Quote, "quote", "", "Verbatim quote")
	cmd.Flags().StringVar(&ev.URL, "url", "", "Source URL")
	cmd.Flags().StringVar(&published, "published", "", "Publication date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().Float64Var(&ev.Authority, "authority", 0, "Source authority in [0,1] (0 = unknown)")
	return cmd
}

func newEvidenceListCmd() *cobra.Command {
	var (
		prospectID string
		limit      int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List evidence for a prospect",
		RunE: func(cmd *cobra.Command, args []string) error {
			if prospectID == "" {
				return errors.New("--prospect is required")
			}
			st, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			evs, err := st.ListEvidence(cmd.Context(), prospectID, store.EvidenceFilter{Limit: limit})
			if err != nil {
				return err
			}
			if len(evs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No evidence.")
				return nil
			}
			for _, ev := range evs {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "- %s  [%s, %s] %s\n",
					ev.EvidenceID, ev.Source, ev.PublishedAt.UTC().Format("2006-01-02"), ev.Title)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prospectID, "prospect", "", "Prospect ID")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max items (0 = all)")
	return cmd
}
