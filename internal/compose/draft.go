package compose

import (
	"fmt"
	"strings"

	"github.com/cobaltline/outreach/pkg/models"

	"github.com/cobaltline/outreach/internal/store"
)

// Word budgets per channel form.
const (
	longFormMinWords  = 90
	longFormMaxWords  = 130
	shortFormMinWords = 50
	shortFormMaxWords = 80
)

// localeStrings holds the per-language boilerplate; the evidence-derived core
// stays in the evidence's own language.
type localeStrings struct {
	greeting string
	noticed  string
	closing  string
}

var locales = map[string]localeStrings{
	"en": {"Hi", "I noticed that", "Best regards"},
	"no": {"Hei", "Jeg la merke til at", "Med vennlig hilsen"},
	"sv": {"Hej", "Jag såg att", "Med vänliga hälsningar"},
	"da": {"Hej", "Jeg lagde mærke til at", "Med venlig hilsen"},
	"de": {"Hallo", "Mir ist aufgefallen, dass", "Mit freundlichen Grüßen"},
}

func localeFor(lang string) localeStrings {
	if l, ok := locales[strings.ToLower(lang)]; ok {
		return l
	}
	return locales["en"]
}

type draftInput struct {
	hook      *store.Hook
	evidence  []store.Evidence
	plan      Plan
	channel   string
	language  string
	recipient string
}

// draftTemplate is the deterministic degrade mode: pure interpolation of hook
// and evidence text, so every claim it makes is verifiable by construction.
func draftTemplate(in draftInput) string {
	loc := localeFor(in.language)
	ev := in.evidence[0]
	source := ev.Source
	date := ev.PublishedAt.UTC().Format("January 2")
	name := in.recipient
	if name == "" {
		name = "there"
	}

	if in.channel == models.ChannelSMS || in.channel == models.ChannelWhatsApp {
		return trimToWords(shortFormBody(in, loc, name, source, date), shortFormMaxWords)
	}

	// Build with the optional color sentence, then drop it if over budget.
	// The CTA and closing always survive.
	for _, withColor := range []bool{true, false} {
		var b strings.Builder
		fmt.Fprintf(&b, "%s %s,\n\n", loc.greeting, name)
		fmt.Fprintf(&b, "%s %s.", loc.noticed, strings.TrimRight(in.hook.Headline, "."))
		if in.hook.Quote != "" {
			fmt.Fprintf(&b, " %q stood out.", in.hook.Quote)
		}
		fmt.Fprintf(&b, " News like that from %s on %s has a short shelf life, which is exactly why I am writing now rather than next quarter.\n\n", source, date)
		fmt.Fprintf(&b, "We work with teams in your position to %s.", joinProps(in.plan.ValueProps))
		if withColor {
			fmt.Fprintf(&b, " Nothing generic - the angle here is specifically the %s and what it opens up for you over the next few weeks.", typePhrase(in.hook.Type))
		}
		fmt.Fprintf(&b, "\n\n%s\n\n%s", in.plan.CTA, loc.closing)
		if wordCount(b.String()) <= longFormMaxWords {
			return b.String()
		}
	}
	// Both renderings over budget (pathological headline); hard-trim.
	return trimToWords(draftMinimal(in, loc, name, source, date), longFormMaxWords)
}

func draftMinimal(in draftInput, loc localeStrings, name, source, date string) string {
	return fmt.Sprintf("%s %s,\n\n%s %s (%s, %s).\n\n%s\n\n%s",
		loc.greeting, name, loc.noticed, strings.TrimRight(in.hook.Headline, "."), source, date,
		in.plan.CTA, loc.closing)
}

func shortFormBody(in draftInput, loc localeStrings, name, source, date string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s - %s %s (%s, %s).", loc.greeting, name, loc.noticed, strings.TrimRight(in.hook.Headline, "."), source, date)
	if in.channel == models.ChannelWhatsApp {
		b.WriteString(" 🎉")
	}
	fmt.Fprintf(&b, " We help teams in your position %s. %s", in.plan.ValueProps[0], in.plan.CTA)
	return b.String()
}

func joinProps(props []string) string {
	switch len(props) {
	case 0:
		return "make the moment count"
	case 1:
		return props[0]
	default:
		return strings.Join(props[:len(props)-1], ", ") + ", and " + props[len(props)-1]
	}
}

func typePhrase(hookType string) string {
	switch hookType {
	case models.HookReviewWin:
		return "review win"
	case models.HookAward:
		return "award"
	case models.HookProductLaunch:
		return "launch"
	case models.HookPRFeature:
		return "press feature"
	case models.HookMilestone:
		return "milestone"
	case models.HookCaseStudy:
		return "case study"
	case models.HookFunding:
		return "funding round"
	case models.HookPartnership:
		return "partnership"
	case models.HookExpansion:
		return "expansion"
	default:
		return "news"
	}
}

// trimToWords cuts text at the budget on a sentence boundary where possible.
func trimToWords(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	cut := strings.Join(words[:maxWords], " ")
	if i := strings.LastIndexAny(cut, ".!?"); i > 0 {
		return cut[:i+1]
	}
	return cut
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
