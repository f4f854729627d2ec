package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cobaltline/outreach/pkg/models"
)

func newConsentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consent",
		Short: "Manage the explicit opt-in ledger for SMS and WhatsApp",
	}
	cmd.AddCommand(newConsentSetCmd(true))
	cmd.AddCommand(newConsentSetCmd(false))
	return cmd
}

func newConsentSetCmd(grant bool) *cobra.Command {
	use, short := "grant", "Record an explicit opt-in for a prospect and channel"
	if !grant {
		use, short = "revoke", "Revoke a previously recorded opt-in"
	}
	var (
		prospectID  string
		channelName string
		source      string
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if prospectID == "" || channelName == "" {
				return errors.New("--prospect and --channel are required")
			}
			if !models.ValidChannel(channelName) {
				return fmt.Errorf("unknown channel: %s", channelName)
			}
			st, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.SetConsent(cmd.Context(), prospectID, channelName, grant, source); err != nil {
				return err
			}
			verb := "granted"
			if !grant {
				verb = "revoked"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Consent %s for %s on %s\n", verb, prospectID, channelName)
			return nil
		},
	}
	cmd.Flags().StringVar(&prospectID, "prospect", "", "Prospect ID")
	cmd.Flags().StringVar(&channelName, "channel", "", "Channel: sms or whatsapp")
	cmd.Flags().StringVar(&source, "source", "manual", "Where the opt-in came from")
	return cmd
}
