package compose

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/cobaltline/outreach/pkg/models"

	"github.com/cobaltline/outreach/internal/evidence"
	"github.com/cobaltline/outreach/internal/store"
)

type fakeGen struct {
	text string
	err  error
}

func (f fakeGen) Draft(context.Context, string, string) (string, error) { return f.text, f.err }
func (f fakeGen) Model() string                                         { return "fake-model" }

type fixture struct {
	db     store.Store
	hookID string
	date   string // published date as it must appear in the body
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()

	pid, err := db.CreateProspect(ctx, store.Prospect{Name: "Kari Nordmann"})
	if err != nil {
		t.Fatalf("create prospect: %v", err)
	}
	published := time.Now().UTC().AddDate(0, 0, -3)
	evID, err := db.CreateEvidence(ctx, store.Evidence{
		ProspectID:  pid,
		Source:      "trustpilot",
		Title:       "Fjellheim Dental crossed 500 Trustpilot reviews",
		Snippet:     "500 reviews at 4.9 stars, best service in Oslo",
		PublishedAt: published,
		Authority:   0.9,
	})
	if err != nil {
		t.Fatalf("create evidence: %v", err)
	}
	hookID, err := db.CreateHook(ctx, store.Hook{
		ProspectID:    pid,
		Type:          models.HookReviewWin,
		Headline:      "Fjellheim Dental crossed 500 Trustpilot reviews (trustpilot)",
		Quote:         "500 reviews at 4.9 stars, best service in Oslo",
		EvidenceIDs:   evID,
		FreshnessDays: 3,
		Score:         0.84,
		Confidence:    0.7,
		Status:        models.HookApproved,
	})
	if err != nil {
		t.Fatalf("create hook: %v", err)
	}
	return fixture{db: db, hookID: hookID, date: published.Format("January 2")}
}

func newComposer(t *testing.T, db store.Store, gen Generator) *Composer {
	t.Helper()
	return NewComposer(db, evidence.New(db, nil), gen, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGenerateTemplateEmail(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	c := newComposer(t, fx.db, nil)

	v, err := c.Generate(context.Background(), Request{
		HookID:        fx.hookID,
		Channel:       models.ChannelEmail,
		RecipientName: "Kari",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if v.Model != templateModel {
		t.Errorf("model = %s, want template", v.Model)
	}
	if v.Subject == "" {
		t.Error("email variant missing subject")
	}
	if !strings.Contains(v.Body, "trustpilot") {
		t.Errorf("body does not name the source: %q", v.Body)
	}
	if !strings.Contains(v.Body, fx.date) {
		t.Errorf("body does not carry the evidence date %q: %q", fx.date, v.Body)
	}
	if n := wordCount(v.Body); n > longFormMaxWords {
		t.Errorf("body over budget: %d words", n)
	}
	if v.SMSAlternate == "" || v.WhatsAppAlternate == "" {
		t.Error("email variant missing channel alternates")
	}
	if n := wordCount(v.SMSAlternate); n > shortFormMaxWords {
		t.Errorf("sms alternate over budget: %d words", n)
	}
	if v.UnsupportedClaims != "" {
		t.Errorf("template draft should verify clean: %q", v.UnsupportedClaims)
	}

	// The variant is persisted.
	got, err := fx.db.GetVariant(context.Background(), v.VariantID)
	if err != nil || got.Body != v.Body {
		t.Fatalf("variant not persisted: %v", err)
	}
}

func TestGenerateSMSVariant(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	c := newComposer(t, fx.db, nil)

	v, err := c.Generate(context.Background(), Request{HookID: fx.hookID, Channel: models.ChannelSMS})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if v.Subject != "" {
		t.Error("sms variant must not have a subject")
	}
	if v.SMSAlternate != "" || v.WhatsAppAlternate != "" {
		t.Error("alternates belong on the email variant only")
	}
	if n := wordCount(v.Body); n > shortFormMaxWords {
		t.Errorf("sms body over budget: %d words", n)
	}
}

func TestGenerateRepairsFabricatedClaims(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	gen := fakeGen{text: "Hi Kari.\n\nFjellheim Dental crossed 500 Trustpilot reviews. " +
		"You raised ninety million dollars from martian investors last month.\n\nWorth a quick call?"}
	c := newComposer(t, fx.db, gen)

	v, err := c.Generate(context.Background(), Request{HookID: fx.hookID, Channel: models.ChannelEmail})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if v.Model != "fake-model" {
		t.Errorf("model = %s, want fake-model", v.Model)
	}
	if strings.Contains(v.Body, "martian") {
		t.Errorf("fabricated claim survived: %q", v.Body)
	}
	if !strings.Contains(v.Body, "crossed 500") {
		t.Errorf("supported claim removed: %q", v.Body)
	}
	if !strings.Contains(v.UnsupportedClaims, "martian") {
		t.Errorf("audit trail missing stripped claim: %q", v.UnsupportedClaims)
	}
	if v.Confidence >= 0.7 {
		t.Errorf("confidence not reduced after repair: %f", v.Confidence)
	}
}

func TestGenerateFallsBackOnBackendError(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	c := newComposer(t, fx.db, fakeGen{err: errors.New("backend down")})

	v, err := c.Generate(context.Background(), Request{HookID: fx.hookID, Channel: models.ChannelEmail})
	if err != nil {
		t.Fatalf("backend failure must not fail the call: %v", err)
	}
	if v.Model != templateModel {
		t.Errorf("model = %s, want template fallback", v.Model)
	}
	if v.Body == "" {
		t.Error("fallback produced no body")
	}
}

func TestGenerateRejectsUnresolvableEvidence(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()

	pid, err := fx.db.CreateProspect(ctx, store.Prospect{Name: "Orphan Case"})
	if err != nil {
		t.Fatalf("create prospect: %v", err)
	}
	orphan, err := fx.db.CreateHook(ctx, store.Hook{
		ProspectID:  pid,
		Type:        models.HookAward,
		Headline:    "Some award",
		EvidenceIDs: "missing-1,missing-2",
		Status:      models.HookReview,
	})
	if err != nil {
		t.Fatalf("create hook: %v", err)
	}
	c := newComposer(t, fx.db, nil)
	if _, err := c.Generate(ctx, Request{HookID: orphan, Channel: models.ChannelEmail}); err == nil {
		t.Error("expected hard failure for unresolvable evidence")
	}
}

func TestGenerateRejectsUnknownChannel(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	c := newComposer(t, fx.db, nil)
	if _, err := c.Generate(context.Background(), Request{HookID: fx.hookID, Channel: "fax"}); err == nil {
		t.Error("expected error for unknown channel")
	}
}

func TestGenerateLocalizedGreeting(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	c := newComposer(t, fx.db, nil)

	v, err := c.Generate(context.Background(), Request{
		HookID:        fx.hookID,
		Channel:       models.ChannelEmail,
		Language:      "no",
		RecipientName: "Kari",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(v.Body, "Hei Kari") {
		t.Errorf("expected Norwegian greeting, got %q", v.Body)
	}
	if v.Language != "no" {
		t.Errorf("language = %s", v.Language)
	}
}
