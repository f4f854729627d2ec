// Package compose drafts channel-specific outreach messages from hooks,
// verifies every factual claim against the grounding evidence, and repairs
// or strips what it cannot support.
package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cobaltline/outreach/pkg/models"

	"github.com/cobaltline/outreach/internal/evidence"
	"github.com/cobaltline/outreach/internal/store"
)

// templateModel is recorded as the generation backend when the deterministic
// fallback produced the draft.
const templateModel = "template"

// VoiceProfile is tone x formality x style.
type VoiceProfile struct {
	Tone      string
	Formality string
	Style     string
}

// DefaultVoice is used when the caller leaves the profile empty.
var DefaultVoice = VoiceProfile{
	Tone:      models.ToneWarm,
	Formality: models.FormalityProfessional,
	Style:     models.StyleConcise,
}

// Request describes one variant to compose.
type Request struct {
	HookID         string
	Channel        string
	Voice          VoiceProfile
	Language       string
	RecipientName  string
	CompanyContext string
}

// Composer runs the plan -> draft -> verify -> repair pipeline.
type Composer struct {
	Store    store.Store
	Evidence evidence.Store
	Gen      Generator // nil means template-only drafting
	Log      *slog.Logger
}

// NewComposer wires a composer. gen may be nil.
func NewComposer(db store.Store, es evidence.Store, gen Generator, log *slog.Logger) *Composer {
	if log == nil {
		log = slog.Default()
	}
	return &Composer{Store: db, Evidence: es, Gen: gen, Log: log}
}

// Generate composes, verifies, and persists one variant for a hook+channel.
// The only hard failure is an unresolvable evidence set; drafting-backend
// trouble degrades to templates and verification failure routes into repair.
func (c *Composer) Generate(ctx context.Context, req Request) (*store.Variant, error) {
	if !models.ValidChannel(req.Channel) {
		return nil, fmt.Errorf("unknown channel: %s", req.Channel)
	}
	if req.Voice == (VoiceProfile{}) {
		req.Voice = DefaultVoice
	}
	if req.Language == "" {
		req.Language = "en"
	}

	h, err := c.Store.GetHook(ctx, req.HookID)
	if err != nil {
		return nil, err
	}
	evs, err := c.Evidence.GetEvidenceByIDs(ctx, splitIDs(h.EvidenceIDs))
	if err != nil {
		return nil, fmt.Errorf("resolve evidence: %w", err)
	}
	if len(evs) == 0 {
		return nil, errors.New("hook has no resolvable evidence")
	}

	plan := buildPlan(h, req.Channel, req.CompanyContext)
	evText := groundingText(h, evs)
	in := draftInput{
		hook:      h,
		evidence:  evs,
		plan:      plan,
		channel:   req.Channel,
		language:  req.Language,
		recipient: req.RecipientName,
	}

	body, model := c.draft(ctx, in, req.Voice)

	// Verify, repair, and re-verify once. Mechanical repair only removes
	// sentences, so the loop converges; the audit trail keeps what was cut.
	var stripped []string
	verdict := Verify(body, evText)
	for try := 0; !verdict.Pass && try < 2; try++ {
		stripped = append(stripped, verdict.Unsupported...)
		body = Repair(body, verdict.Unsupported)
		verdict = Verify(body, evText)
	}
	if !verdict.Pass {
		// Should not happen with sentence-level repair; degrade to the
		// template draft, which is verifiable by construction.
		c.Log.Warn("repair did not converge, using template draft", "hook_id", h.HookID)
		body = draftTemplate(in)
		model = templateModel
		stripped = append(stripped, verdict.Unsupported...)
	}

	v := store.Variant{
		HookID:            h.HookID,
		Channel:           req.Channel,
		Body:              body,
		Language:          strings.ToLower(req.Language),
		Tone:              req.Voice.Tone,
		Formality:         req.Voice.Formality,
		Style:             req.Voice.Style,
		Model:             model,
		EvidenceIDs:       h.EvidenceIDs,
		UnsupportedClaims: strings.Join(stripped, "\n"),
		Confidence:        variantConfidence(h.Confidence, len(stripped)),
	}
	if req.Channel == models.ChannelEmail {
		v.Subject = plan.Subjects[0]
		// Cheap channel alternates ride on the primary email variant.
		smsIn, waIn := in, in
		smsIn.channel = models.ChannelSMS
		waIn.channel = models.ChannelWhatsApp
		v.SMSAlternate = draftTemplate(smsIn)
		v.WhatsAppAlternate = draftTemplate(waIn)
	}

	id, err := c.Store.CreateVariant(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("persist variant: %w", err)
	}
	v.VariantID = id
	c.Log.Info("composed variant",
		"hook_id", h.HookID, "channel", req.Channel, "model", model,
		"words", wordCount(body), "stripped_claims", len(stripped))
	return &v, nil
}

// draft asks the generation backend when one is wired, falling back to the
// deterministic template on any error. The fallback is a designed degrade
// mode, not an error path.
func (c *Composer) draft(ctx context.Context, in draftInput, voice VoiceProfile) (body, model string) {
	if c.Gen == nil {
		return draftTemplate(in), templateModel
	}
	text, err := c.Gen.Draft(ctx, systemPrompt(in, voice), userPrompt(in))
	if err != nil {
		c.Log.Warn("drafting backend unavailable, using template", "err", err)
		return draftTemplate(in), templateModel
	}
	maxWords := longFormMaxWords
	if in.channel == models.ChannelSMS || in.channel == models.ChannelWhatsApp {
		maxWords = shortFormMaxWords
	}
	return trimToWords(text, maxWords), c.Gen.Model()
}

func systemPrompt(in draftInput, voice VoiceProfile) string {
	budget := fmt.Sprintf("%d-%d", longFormMinWords, longFormMaxWords)
	if in.channel == models.ChannelSMS || in.channel == models.ChannelWhatsApp {
		budget = fmt.Sprintf("%d-%d", shortFormMinWords, shortFormMaxWords)
	}
	return fmt.Sprintf(
		"You write outreach messages. Voice: %s, %s, %s. Language: %s. "+
			"Budget: %s words. Follow the outline exactly, name the evidence source and its date, "+
			"state only facts present in the evidence, and close with the given call to action.",
		voice.Tone, voice.Formality, voice.Style, in.language, budget)
}

func userPrompt(in draftInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hook: %s\n", in.hook.Headline)
	if in.recipient != "" {
		fmt.Fprintf(&b, "Recipient: %s\n", in.recipient)
	}
	fmt.Fprintf(&b, "Outline:\n")
	for _, part := range in.plan.Outline {
		fmt.Fprintf(&b, "- %s\n", part)
	}
	fmt.Fprintf(&b, "Call to action: %s\n\nEvidence:\n", in.plan.CTA)
	for _, ev := range in.evidence {
		fmt.Fprintf(&b, "- [%s, %s] %s. %s %s\n",
			ev.Source, ev.PublishedAt.UTC().Format("January 2, 2006"), ev.Title, ev.Snippet, ev.Quote)
	}
	return b.String()
}

// groundingText is the claim-checking corpus: every piece of evidence text
// plus the hook's own headline and quote.
func groundingText(h *store.Hook, evs []store.Evidence) string {
	var b strings.Builder
	b.WriteString(h.Headline)
	b.WriteString(" ")
	b.WriteString(h.Quote)
	for _, ev := range evs {
		fmt.Fprintf(&b, " %s %s %s %s %s",
			ev.Title, ev.Snippet, ev.Quote, ev.Source, ev.PublishedAt.UTC().Format("January 2"))
	}
	return b.String()
}

func variantConfidence(hookConfidence float64, strippedClaims int) float64 {
	c := hookConfidence
	if c == 0 {
		c = 0.5
	}
	for i := 0; i < strippedClaims; i++ {
		c *= 0.85
	}
	return c
}

func splitIDs(csv string) []string {
	var out []string
	for _, p := range strings.Split(csv, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
