// Package hook mines scored conversation-openers ("hooks") from prospect
// evidence. Hooks are immutable once scored; re-mining writes new rows.
package hook

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cobaltline/outreach/pkg/models"

	"github.com/cobaltline/outreach/internal/evidence"
	"github.com/cobaltline/outreach/internal/store"
)

// Hard ceiling on evidence age. Applies regardless of the requested window.
const maxEvidenceAgeDays = 30

// Status thresholds, applied after scoring.
const (
	approveScore     = 0.78
	approveFreshDays = 14
	reviewScore      = 0.60
)

// Ranker turns fresh evidence into persisted, scored hooks.
type Ranker struct {
	Evidence evidence.Store
	Store    store.Store
	Log      *slog.Logger
	Now      func() time.Time
}

// NewRanker wires a ranker over the evidence collaborator and the hook store.
func NewRanker(es evidence.Store, db store.Store, log *slog.Logger) *Ranker {
	if log == nil {
		log = slog.Default()
	}
	return &Ranker{Evidence: es, Store: db, Log: log, Now: time.Now}
}

// Mine fetches evidence for the prospect newer than maxDaysOld (default 14),
// classifies it, and returns up to limit hooks ordered by descending score.
// Every returned hook is persisted, including review and rejected ones; the
// caller decides what is usable.
func (r *Ranker) Mine(ctx context.Context, prospectID string, maxDaysOld, limit int) ([]store.Hook, error) {
	if maxDaysOld <= 0 {
		maxDaysOld = 14
	}
	if limit <= 0 {
		limit = 5
	}

	evs, err := r.Evidence.FindFreshEvidence(ctx, prospectID, maxDaysOld)
	if err != nil {
		return nil, fmt.Errorf("fetch evidence: %w", err)
	}
	now := r.Now().UTC()

	var hooks []store.Hook
	for _, ev := range evs {
		freshness := int(now.Sub(ev.PublishedAt.UTC()).Hours() / 24)
		if freshness > maxEvidenceAgeDays {
			continue
		}

		cls, err := r.Evidence.ClassifyEvidence(ev)
		if err != nil {
			// One unclassifiable item never aborts the batch.
			r.Log.Debug("skipping unclassifiable evidence", "evidence_id", ev.EvidenceID, "err", err)
			continue
		}
		if cls.Sentiment == "negative" {
			continue
		}

		headline := headlineFor(cls.EventType, ev)
		quote := extractQuote(ev)
		confidence := cls.Relevance * cls.Specificity

		score := scoreHook(scoreInputs{
			freshnessDays: freshness,
			confidence:    confidence,
			authority:     ev.Authority,
			headline:      headline,
			quote:         quote,
			eventType:     cls.EventType,
		})

		hooks = append(hooks, store.Hook{
			ProspectID:    prospectID,
			Type:          cls.EventType,
			Headline:      headline,
			Quote:         quote,
			EvidenceIDs:   ev.EvidenceID,
			FreshnessDays: freshness,
			Score:         score,
			Confidence:    confidence,
		})
	}

	sort.SliceStable(hooks, func(i, j int) bool { return hooks[i].Score > hooks[j].Score })
	if len(hooks) > limit {
		hooks = hooks[:limit]
	}

	for i := range hooks {
		hooks[i].Status = statusFor(hooks[i].Score, hooks[i].FreshnessDays)
		id, err := r.Store.CreateHook(ctx, hooks[i])
		if err != nil {
			return nil, fmt.Errorf("persist hook: %w", err)
		}
		hooks[i].HookID = id
	}

	r.Log.Info("mined hooks", "prospect_id", prospectID, "evidence", len(evs), "hooks", len(hooks))
	return hooks, nil
}

// TopHooksForCampaign mines each prospect independently and collects the
// non-empty results. No cross-prospect interaction.
func (r *Ranker) TopHooksForCampaign(ctx context.Context, prospectIDs []string, maxPerProspect int) (map[string][]store.Hook, error) {
	out := make(map[string][]store.Hook)
	for _, pid := range prospectIDs {
		hooks, err := r.Mine(ctx, pid, 14, maxPerProspect)
		if err != nil {
			return nil, fmt.Errorf("prospect %s: %w", pid, err)
		}
		if len(hooks) > 0 {
			out[pid] = hooks
		}
	}
	return out, nil
}

func statusFor(score float64, freshnessDays int) string {
	switch {
	case score >= approveScore && freshnessDays <= approveFreshDays:
		return models.HookApproved
	case score >= reviewScore:
		return models.HookReview
	default:
		return models.HookRejected
	}
}

// headlineFor renders the fixed per-type template over the evidence.
func headlineFor(eventType string, ev store.Evidence) string {
	date := ev.PublishedAt.UTC().Format("January 2")
	switch eventType {
	case models.HookReviewWin:
		return fmt.Sprintf("%s (%s, %s)", ev.Title, ev.Source, date)
	case models.HookAward:
		return fmt.Sprintf("Award news: %s (%s)", ev.Title, date)
	case models.HookProductLaunch:
		return fmt.Sprintf("Just launched: %s (%s)", ev.Title, date)
	case models.HookPRFeature:
		return fmt.Sprintf("In the press: %s (%s, %s)", ev.Title, ev.Source, date)
	case models.HookMilestone:
		return fmt.Sprintf("Milestone: %s (%s)", ev.Title, date)
	case models.HookCaseStudy:
		return fmt.Sprintf("New case study: %s (%s)", ev.Title, date)
	case models.HookFunding:
		return fmt.Sprintf("Funding news: %s (%s)", ev.Title, date)
	case models.HookPartnership:
		return fmt.Sprintf("New partnership: %s (%s)", ev.Title, date)
	case models.HookExpansion:
		return fmt.Sprintf("Expansion: %s (%s)", ev.Title, date)
	default:
		return fmt.Sprintf("%s (%s)", ev.Title, date)
	}
}

// extractQuote walks the preference ladder: a supplied quote, then a short
// snippet verbatim, then the first snippet sentence carrying an indicator
// keyword, then nothing.
func extractQuote(ev store.Evidence) string {
	if q := strings.TrimSpace(ev.Quote); q != "" {
		return q
	}
	snippet := strings.TrimSpace(ev.Snippet)
	if snippet == "" {
		return ""
	}
	if len(snippet) <= 150 {
		return snippet
	}
	for _, sentence := range splitSentences(snippet) {
		lower := strings.ToLower(sentence)
		for _, kw := range indicatorTerms {
			if strings.Contains(lower, kw) {
				return strings.TrimSpace(sentence)
			}
		}
	}
	return ""
}

func splitSentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
