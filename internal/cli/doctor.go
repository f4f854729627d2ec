package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cobaltline/outreach/internal/config"
	"github.com/cobaltline/outreach/internal/store"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Verify the home directory, config, and store",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := config.MustHomeFrom(cmd.Context())

			var problems []string

			if err := os.MkdirAll(home, 0o755); err != nil {
				problems = append(problems, fmt.Sprintf("home %s is not writable: %v", home, err))
			}

			if _, err := config.Load(home); err != nil {
				problems = append(problems, fmt.Sprintf("config.yaml is invalid: %v", err))
			}

			if st, err := store.Open(home); err != nil {
				problems = append(problems, fmt.Sprintf("store failed to open: %v", err))
			} else {
				_ = st.Close()
			}

			if len(problems) > 0 {
				for _, p := range problems {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), p)
				}
				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	return cmd
}
