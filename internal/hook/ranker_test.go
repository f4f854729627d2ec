package hook

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/cobaltline/outreach/pkg/models"

	"github.com/cobaltline/outreach/internal/evidence"
	"github.com/cobaltline/outreach/internal/store"
)

func newTestRanker(t *testing.T) (*Ranker, store.Store, string) {
	t.Helper()
	db, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	pid, err := db.CreateProspect(context.Background(), store.Prospect{
		Name:   "Kari Nordmann",
		Domain: "fjellheimdental.no",
	})
	if err != nil {
		t.Fatalf("create prospect: %v", err)
	}
	r := NewRanker(evidence.New(db, nil), db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return r, db, pid
}

func addEvidence(t *testing.T, db store.Store, ev store.Evidence) string {
	t.Helper()
	id, err := db.CreateEvidence(context.Background(), ev)
	if err != nil {
		t.Fatalf("create evidence: %v", err)
	}
	return id
}

func TestMineTrustpilotScenario(t *testing.T) {
	t.Parallel()
	r, db, pid := newTestRanker(t)
	ctx := context.Background()

	addEvidence(t, db, store.Evidence{
		ProspectID:  pid,
		Source:      "trustpilot",
		Title:       "New 5-star Trustpilot review",
		Snippet:     "5-star review, best service in Oslo",
		PublishedAt: time.Now().UTC().AddDate(0, 0, -3),
		Authority:   0.9,
	})

	hooks, err := r.Mine(ctx, pid, 14, 5)
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if len(hooks) != 1 {
		t.Fatalf("expected 1 hook, got %d", len(hooks))
	}
	h := hooks[0]
	if h.Type != models.HookReviewWin {
		t.Errorf("type = %s, want %s", h.Type, models.HookReviewWin)
	}
	if h.Score < approveScore || h.Score > 1 {
		t.Errorf("score = %f, want >= %f and <= 1", h.Score, approveScore)
	}
	if h.Status != models.HookApproved {
		t.Errorf("status = %s, want approved", h.Status)
	}
	if h.FreshnessDays != 3 {
		t.Errorf("freshness = %d, want 3", h.FreshnessDays)
	}
	if h.Quote != "5-star review, best service in Oslo" {
		t.Errorf("quote = %q", h.Quote)
	}
	if !strings.Contains(h.Headline, "trustpilot") {
		t.Errorf("headline should name the source: %q", h.Headline)
	}

	// Mined hooks are persisted.
	stored, err := db.ListHooks(ctx, pid, 10)
	if err != nil || len(stored) != 1 {
		t.Fatalf("stored hooks: %v (n=%d)", err, len(stored))
	}
	if stored[0].HookID != h.HookID {
		t.Errorf("returned id %s not persisted", h.HookID)
	}
}

func TestMineFiltersNegativeSentiment(t *testing.T) {
	t.Parallel()
	r, db, pid := newTestRanker(t)

	addEvidence(t, db, store.Evidence{
		ProspectID:  pid,
		Source:      "news",
		Title:       "Review site reports complaint and lawsuit",
		PublishedAt: time.Now().UTC().AddDate(0, 0, -2),
	})

	hooks, err := r.Mine(context.Background(), pid, 14, 5)
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if len(hooks) != 0 {
		t.Errorf("negative-only evidence must yield no hooks, got %d", len(hooks))
	}
}

func TestMineHardAgeCeiling(t *testing.T) {
	t.Parallel()
	r, db, pid := newTestRanker(t)

	// Requesting a 60-day window must not defeat the 30-day ceiling.
	addEvidence(t, db, store.Evidence{
		ProspectID:  pid,
		Source:      "news",
		Title:       "Clinic wins Best Workplace award",
		PublishedAt: time.Now().UTC().AddDate(0, 0, -40),
	})

	hooks, err := r.Mine(context.Background(), pid, 60, 5)
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if len(hooks) != 0 {
		t.Errorf("evidence past the 30-day ceiling produced %d hooks", len(hooks))
	}
}

func TestMineSkipsUnclassifiable(t *testing.T) {
	t.Parallel()
	r, db, pid := newTestRanker(t)
	now := time.Now().UTC()

	addEvidence(t, db, store.Evidence{
		ProspectID: pid, Source: "news",
		Title: "Quarterly weather report", PublishedAt: now.AddDate(0, 0, -1),
	})
	addEvidence(t, db, store.Evidence{
		ProspectID: pid, Source: "news",
		Title: "Clinic wins Best Workplace award 2026", PublishedAt: now.AddDate(0, 0, -1),
	})

	hooks, err := r.Mine(context.Background(), pid, 14, 5)
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if len(hooks) != 1 || hooks[0].Type != models.HookAward {
		t.Fatalf("expected one award hook past the unclassifiable item, got %+v", hooks)
	}
}

func TestMineOrdersAndLimits(t *testing.T) {
	t.Parallel()
	r, db, pid := newTestRanker(t)
	now := time.Now().UTC()

	// Fresher, higher-authority review beats an older neutral launch.
	addEvidence(t, db, store.Evidence{
		ProspectID: pid, Source: "news",
		Title:       "Company launches new whitening service",
		PublishedAt: now.AddDate(0, 0, -12),
		Authority:   0.4,
	})
	addEvidence(t, db, store.Evidence{
		ProspectID: pid, Source: "trustpilot",
		Title:       "Clinic crossed 500 Trustpilot reviews at 4.9 stars",
		PublishedAt: now.AddDate(0, 0, -1),
		Authority:   0.9,
	})

	hooks, err := r.Mine(context.Background(), pid, 14, 5)
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if len(hooks) != 2 {
		t.Fatalf("expected 2 hooks, got %d", len(hooks))
	}
	if hooks[0].Score < hooks[1].Score {
		t.Errorf("hooks not ordered by score: %f < %f", hooks[0].Score, hooks[1].Score)
	}
	for _, h := range hooks {
		if h.Score < 0 || h.Score > 1 {
			t.Errorf("score out of range: %f", h.Score)
		}
		if h.Status == models.HookApproved && (h.Score < approveScore || h.FreshnessDays > approveFreshDays) {
			t.Errorf("approved hook violates thresholds: %+v", h)
		}
		if h.Status == models.HookRejected && h.Score >= reviewScore {
			t.Errorf("rejected hook scored %f", h.Score)
		}
	}

	limited, err := r.Mine(context.Background(), pid, 14, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limit: %v (n=%d)", err, len(limited))
	}
}

func TestMineEmptyEvidence(t *testing.T) {
	t.Parallel()
	r, _, pid := newTestRanker(t)
	hooks, err := r.Mine(context.Background(), pid, 14, 5)
	if err != nil {
		t.Fatalf("mine on empty evidence: %v", err)
	}
	if len(hooks) != 0 {
		t.Errorf("expected empty hook list, got %d", len(hooks))
	}
}

func TestTopHooksForCampaign(t *testing.T) {
	t.Parallel()
	r, db, pid := newTestRanker(t)
	ctx := context.Background()

	empty, err := db.CreateProspect(ctx, store.Prospect{Name: "No Signals"})
	if err != nil {
		t.Fatalf("create prospect: %v", err)
	}
	addEvidence(t, db, store.Evidence{
		ProspectID: pid, Source: "news",
		Title: "Clinic wins Best Workplace award", PublishedAt: time.Now().UTC().AddDate(0, 0, -1),
	})

	got, err := r.TopHooksForCampaign(ctx, []string{pid, empty}, 3)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one prospect with hooks, got %d", len(got))
	}
	if len(got[pid]) == 0 {
		t.Error("prospect with evidence has no hooks")
	}
	if _, ok := got[empty]; ok {
		t.Error("prospect without evidence present in result")
	}
}

func TestRecencyBands(t *testing.T) {
	t.Parallel()
	cases := []struct {
		days int
		want float64
	}{
		{0, 1.0}, {1, 1.0}, {2, 0.8}, {7, 0.8}, {8, 0.6}, {14, 0.6}, {15, 0.4}, {30, 0.4}, {31, 0.2},
	}
	for _, tc := range cases {
		if got := recencyScore(tc.days); got != tc.want {
			t.Errorf("recencyScore(%d) = %f, want %f", tc.days, got, tc.want)
		}
	}
}

func TestExtractQuoteLadder(t *testing.T) {
	t.Parallel()

	// Supplied quote wins.
	if q := extractQuote(store.Evidence{Quote: "best clinic in town", Snippet: "short"}); q != "best clinic in town" {
		t.Errorf("quote preference: %q", q)
	}

	// Short snippet verbatim.
	if q := extractQuote(store.Evidence{Snippet: "500 reviews at 4.9 stars"}); q != "500 reviews at 4.9 stars" {
		t.Errorf("short snippet: %q", q)
	}

	// Long snippet falls back to the first indicator sentence.
	long := strings.Repeat("Unrelated filler text goes on and on. ", 5) +
		"The clinic now serves over 2000 patients in Oslo. More filler after that sentence."
	q := extractQuote(store.Evidence{Snippet: long})
	if !strings.Contains(q, "patients in Oslo") {
		t.Errorf("indicator sentence not found: %q", q)
	}

	// Nothing usable yields empty.
	longNoKw := strings.Repeat("Unrelated filler text goes on and on. ", 6)
	if q := extractQuote(store.Evidence{Snippet: longNoKw}); q != "" {
		t.Errorf("expected empty quote, got %q", q)
	}
}
