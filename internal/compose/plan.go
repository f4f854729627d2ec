package compose

import (
	"fmt"
	"strings"

	"github.com/cobaltline/outreach/pkg/models"

	"github.com/cobaltline/outreach/internal/store"
)

// Plan is the deterministic scaffold the drafting stage must follow.
type Plan struct {
	Subjects   []string  // three candidates; the first is used
	Outline    [4]string // acknowledge, timeliness, value, call-to-action
	CTA        string
	ValueProps []string // 2-4, optionally narrowed by industry context
}

// ctaTable maps hook type to a call-to-action per channel form. Short-form
// channels get a single-line ask.
var ctaTable = map[string]struct{ long, short string }{
	models.HookReviewWin:     {"Would a 15-minute call this week make sense to talk about keeping that momentum?", "Worth a quick call this week?"},
	models.HookAward:         {"Could we grab 15 minutes to talk about building on the recognition?", "Open to a short call?"},
	models.HookProductLaunch: {"Would you be open to a short call about getting the launch in front of more people?", "Quick chat about the launch?"},
	models.HookPRFeature:     {"Happy to share a few ideas for riding the press wave - 15 minutes this week?", "15 min to talk press momentum?"},
	models.HookMilestone:     {"Would a brief call about what got you here, and what's next, be useful?", "Quick call about what's next?"},
	models.HookCaseStudy:     {"Could we compare notes on turning results like these into pipeline? 15 minutes is plenty.", "Compare notes on a call?"},
	models.HookFunding:       {"Would a short call about putting the new runway to work make sense?", "Short call about next steps?"},
	models.HookPartnership:   {"Open to a quick conversation about amplifying the partnership?", "Quick chat about the partnership?"},
	models.HookExpansion:     {"Would 15 minutes about filling the new location's calendar be worth your time?", "15 min about the new location?"},
}

// valueProps per hook type. Entries tagged with an industry keyword are kept
// only when the company context mentions it.
var valuePropTable = map[string][]valueProp{
	models.HookReviewWin: {
		{text: "turn review momentum into repeat bookings"},
		{text: "make your rating visible where new customers search"},
		{text: "convert happy patients into referrals", industry: "dental"},
		{text: "keep response rates high as volume grows"},
	},
	models.HookAward: {
		{text: "put the award in front of the customers who haven't heard yet"},
		{text: "turn recognition into a recruiting asset"},
		{text: "anchor your next campaign on the win"},
	},
	models.HookProductLaunch: {
		{text: "get the launch in front of your warmest segment first"},
		{text: "measure which launch message actually converts"},
		{text: "fill the first weeks of availability", industry: "clinic"},
	},
	models.HookPRFeature: {
		{text: "extend the press reach beyond the article's shelf life"},
		{text: "turn one feature into a steady drumbeat"},
		{text: "capture the traffic spike before it fades"},
	},
	models.HookMilestone: {
		{text: "celebrate publicly in a way that brings in the next thousand"},
		{text: "turn the milestone into social proof on every surface"},
		{text: "thank the customers who got you here, visibly"},
	},
	models.HookCaseStudy: {
		{text: "put the case study to work in outbound"},
		{text: "turn one success story into a repeatable pitch"},
		{text: "get the results in front of lookalike buyers"},
	},
	models.HookFunding: {
		{text: "spend the new budget where growth is measurable"},
		{text: "scale outreach without scaling headcount"},
		{text: "build the growth engine investors expect"},
	},
	models.HookPartnership: {
		{text: "co-market the partnership to both audiences"},
		{text: "turn the announcement into shared pipeline"},
		{text: "keep the partnership visible past week one"},
	},
	models.HookExpansion: {
		{text: "fill the new location's calendar before opening week"},
		{text: "carry your reputation into the new market"},
		{text: "localize outreach for the new city"},
	},
}

type valueProp struct {
	text     string
	industry string // empty means always applicable
}

// buildPlan derives the drafting scaffold for a hook and channel.
func buildPlan(h *store.Hook, channel, companyContext string) Plan {
	cta := ctaTable[h.Type]
	chosen := cta.long
	if channel == models.ChannelSMS || channel == models.ChannelWhatsApp {
		chosen = cta.short
	}
	if chosen == "" {
		chosen = "Would a short call this week make sense?"
	}

	props := pickValueProps(h.Type, companyContext)

	return Plan{
		Subjects: subjectsFor(h),
		Outline: [4]string{
			"acknowledge: " + h.Headline,
			"timeliness: this happened " + freshnessPhrase(h.FreshnessDays),
			"value: " + strings.Join(props, "; "),
			"call to action: " + chosen,
		},
		CTA:        chosen,
		ValueProps: props,
	}
}

func subjectsFor(h *store.Hook) []string {
	short := h.Headline
	if i := strings.Index(short, " ("); i > 0 {
		short = short[:i]
	}
	return []string{
		short,
		"Congrats - " + short,
		fmt.Sprintf("Quick note about %s", strings.ToLower(firstWords(short, 6))),
	}
}

func pickValueProps(hookType, companyContext string) []string {
	ctxLower := strings.ToLower(companyContext)
	var out []string
	for _, vp := range valuePropTable[hookType] {
		if vp.industry != "" && !strings.Contains(ctxLower, vp.industry) {
			continue
		}
		out = append(out, vp.text)
		if len(out) == 4 {
			break
		}
	}
	if len(out) == 0 {
		out = []string{"make the moment count with the audience that matters"}
	}
	if len(out) > 2 && companyContext != "" {
		// Narrowed context keeps the pitch tight.
		out = out[:2]
	}
	return out
}

func freshnessPhrase(days int) string {
	switch {
	case days <= 1:
		return "just now"
	case days <= 7:
		return "this week"
	case days <= 14:
		return "in the last two weeks"
	default:
		return "recently"
	}
}

func firstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}
