package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/cobaltline/outreach/internal/channel"
	"github.com/cobaltline/outreach/internal/compose"
	"github.com/cobaltline/outreach/internal/config"
	"github.com/cobaltline/outreach/internal/evidence"
	"github.com/cobaltline/outreach/internal/hook"
	"github.com/cobaltline/outreach/internal/schedule"
	"github.com/cobaltline/outreach/internal/store"
)

// openStore opens the SQLite store for the home dir carried in the command
// context. CLI pipeline commands go straight to the store, like the daemon.
func openStore(cmd *cobra.Command) (store.Store, string, error) {
	home := config.MustHomeFrom(cmd.Context())
	st, err := store.Open(home)
	if err != nil {
		return nil, "", err
	}
	return st, home, nil
}

func newRankerFor(st store.Store) *hook.Ranker {
	return hook.NewRanker(evidence.New(st, nil), st, nil)
}

func newComposerFor(home string, st store.Store) (*compose.Composer, error) {
	cfg, err := config.Load(home)
	if err != nil {
		return nil, err
	}
	var gen compose.Generator
	if g := compose.NewOpenAIGenerator(cfg.LLM); g != nil {
		gen = g
	}
	return compose.NewComposer(st, evidence.New(st, nil), gen, nil), nil
}

func newSchedulerFor(home string, st store.Store) (*schedule.Scheduler, error) {
	cfg, err := config.Load(home)
	if err != nil {
		return nil, err
	}
	return schedule.NewScheduler(st, schedule.Options{
		Transports: channel.NewRegistry(cfg.Providers),
		Languages:  cfg.Languages,
		Caps: schedule.Caps{
			QuietStartHour: cfg.Caps.QuietStartHour,
			QuietEndHour:   cfg.Caps.QuietEndHour,
			MaxPerChannel:  cfg.Caps.MaxPerChannel,
			DomainGapDays:  cfg.Caps.DomainGapDays,
		},
	}), nil
}

// parseDate accepts RFC 3339 or plain YYYY-MM-DD.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
