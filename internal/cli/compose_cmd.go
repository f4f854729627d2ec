package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cobaltline/outreach/internal/compose"
)

func newComposeCmd() *cobra.Command {
	var (
		hookID         string
		channelName    string
		tone           string
		formality      string
		style          string
		language       string
		recipient      string
		companyContext string
	)
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Draft and verify a message variant for a hook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if hookID == "" || channelName == "" {
				return errors.New("--hook and --channel are required")
			}
			st, home, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			composer, err := newComposerFor(home, st)
			if err != nil {
				return err
			}
			v, err := composer.Generate(cmd.Context(), compose.Request{
				HookID:         hookID,
				Channel:        channelName,
				Voice:          compose.VoiceProfile{Tone: tone, Formality: formality, Style: style},
				Language:       language,
				RecipientName:  recipient,
				CompanyContext: companyContext,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Variant %s (%s, model=%s, confidence=%.2f)\n", v.VariantID, v.Channel, v.Model, v.Confidence)
			if v.Subject != "" {
				_, _ = fmt.Fprintf(out, "Subject: %s\n", v.Subject)
			}
			_, _ = fmt.Fprintln(out)
			_, _ = fmt.Fprintln(out, v.Body)
			if v.UnsupportedClaims != "" {
				_, _ = fmt.Fprintln(out)
				_, _ = fmt.Fprintln(out, "Stripped unsupported claims:")
				_, _ = fmt.Fprintln(out, v.UnsupportedClaims)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&hookID, "hook", "", "Hook ID")
	cmd.Flags().StringVar(&channelName, "channel", "", "Channel: email, sms, whatsapp, or linkedin")
	cmd.Flags().StringVar(&tone, "tone", "", "Voice tone (warm, direct, enthusiastic)")
	cmd.Flags().StringVar(&formality, "formality", "", "Voice formality (casual, professional)")
	cmd.Flags().StringVar(&style, "style", "", "Voice style (concise, narrative)")
	cmd.Flags().StringVar(&language, "language", "", "Message language (default en)")
	cmd.Flags().StringVar(&recipient, "recipient", "", "Recipient first name for the greeting")
	cmd.Flags().StringVar(&companyContext, "context", "", "Company context to narrow value props")
	return cmd
}
