package cli

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cobaltline/outreach/internal/config"
	"github.com/cobaltline/outreach/internal/daemon"
)

func newStartCmd() *cobra.Command {
	var (
		port        int
		foreground  bool
		intervalSec float64
		dev         bool
		pprofAddr   string
		envFile     string
		dbDriver    string
		dbURL       string
		enableOtel  bool
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the outreach daemon (HTTP API + send sweep)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("load %s: %w", envFile, err)
				}
			}
			home := config.MustHomeFrom(cmd.Context())

			opts := daemon.StartOptions{
				Home:             home,
				Port:             port,
				SweepIntervalSec: intervalSec,
				Dev:              dev,
				PprofAddr:        pprofAddr,
				DBDriver:         dbDriver,
				DBURL:            dbURL,
				EnableOtel:       enableOtel,
			}

			api := fmt.Sprintf("http://localhost:%d", port)

			if foreground {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Starting outreach in foreground on %s\n", api)
				return daemon.StartForeground(cmd.Context(), opts)
			}

			pid, err := daemon.StartBackground(cmd.Context(), opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Outreach started (pid %d)\n", pid)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "API: %s\n", api)
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 3861, "Port for the HTTP API")
	cmd.Flags().BoolVar(&foreground, "foreground", false, "Run in foreground (do not daemonize)")
	cmd.Flags().Float64Var(&intervalSec, "sweep-interval", 60, "Send sweep interval (seconds)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable dev mode (permissive CORS)")
	cmd.Flags().StringVar(&pprofAddr, "pprof", "", "Enable pprof on address (e.g. 127.0.0.1:6060)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load env vars from file (KEY=VALUE per line) before starting")
	cmd.Flags().StringVar(&dbDriver, "db-driver", "sqlite", "Store driver: sqlite or postgres")
	cmd.Flags().StringVar(&dbURL, "db-url", "", "DB connection string (for postgres; or set DATABASE_URL)")
	cmd.Flags().BoolVar(&enableOtel, "otel", true, "Enable OpenTelemetry metrics (Prometheus exporter + HTTP instrumentation)")

	return cmd
}
