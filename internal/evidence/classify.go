package evidence

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cobaltline/outreach/pkg/models"

	"github.com/cobaltline/outreach/internal/store"
)

// Classifier maps raw evidence text to an event type, sentiment, and the
// relevance/specificity readings the ranker folds into its score. Rules are
// keyword tables, checked in order so the more specific types win.
type Classifier struct {
	typeRules []typeRule
	negative  []string
	positive  []string
}

type typeRule struct {
	eventType string
	keywords  []string
}

// NewClassifier returns the default rule set.
func NewClassifier() *Classifier {
	return &Classifier{
		typeRules: []typeRule{
			{models.HookFunding, []string{"funding", "raised", "investment", "seed round", "series a", "series b", "venture"}},
			{models.HookAward, []string{"award", "prize", "winner", "won the", "best of", "recognized as"}},
			{models.HookCaseStudy, []string{"case study", "success story", "customer story"}},
			{models.HookPartnership, []string{"partnership", "partnered", "collaboration", "joins forces", "teamed up"}},
			{models.HookExpansion, []string{"expansion", "expands", "new office", "new location", "second location", "opens in"}},
			{models.HookProductLaunch, []string{"launch", "launches", "launched", "unveils", "unveiled", "releases", "introduced", "new product", "new service"}},
			{models.HookReviewWin, []string{"review", "reviews", "stars", "star rating", "rated", "trustpilot", "google rating", "testimonial"}},
			{models.HookMilestone, []string{"milestone", "anniversary", "celebrates", "reached", "customers", "patients", "surpassed", "10 years", "crossed"}},
			{models.HookPRFeature, []string{"featured", "feature in", "interview", "press", "magazine", "podcast", "spotlight", "profiled"}},
		},
		negative: []string{
			"complaint", "lawsuit", "layoff", "layoffs", "recall", "scandal",
			"closure", "closes down", "fine", "fined", "breach", "data leak",
			"decline", "bankruptcy", "1-star", "one-star", "worst",
		},
		positive: []string{
			"award", "win", "won", "best", "record", "growth", "milestone",
			"5-star", "five-star", "top-rated", "celebrates", "success",
			"raised", "expanded", "launched",
		},
	}
}

// Classify reads one evidence item. Evidence whose text matches no type rule
// is unclassifiable and returns an error; the ranker skips such items.
func (c *Classifier) Classify(ev store.Evidence) (Classification, error) {
	text := strings.ToLower(ev.Title + " " + ev.Snippet + " " + ev.Quote)

	eventType := ""
	for _, r := range c.typeRules {
		if containsAny(text, r.keywords) {
			eventType = r.eventType
			break
		}
	}
	if eventType == "" {
		return Classification{}, fmt.Errorf("evidence %s: no event type matched", ev.EvidenceID)
	}

	sentiment := "neutral"
	switch {
	case containsAny(text, c.negative):
		sentiment = "negative"
	case containsAny(text, c.positive):
		sentiment = "positive"
	}

	return Classification{
		EventType:   eventType,
		Sentiment:   sentiment,
		Relevance:   relevanceOf(ev, sentiment),
		Specificity: specificityOf(ev),
	}, nil
}

func relevanceOf(ev store.Evidence, sentiment string) float64 {
	r := 0.6
	if ev.Quote != "" {
		r += 0.15
	}
	if sentiment == "positive" {
		r += 0.15
	}
	if ev.Authority >= 0.7 {
		r += 0.1
	}
	return clamp01(r)
}

// specificityOf is a cheap proxy for how concrete the evidence text is:
// numbers and named entities make a claim checkable, vague copy does not.
func specificityOf(ev store.Evidence) float64 {
	text := ev.Title + " " + ev.Snippet
	s := 0.5
	if strings.ContainsFunc(text, unicode.IsDigit) {
		s += 0.2
	}
	if ev.Quote != "" {
		s += 0.15
	}
	if capitalizedTokens(text) >= 3 {
		s += 0.15
	}
	return clamp01(s)
}

func capitalizedTokens(text string) int {
	n := 0
	for _, tok := range strings.Fields(text) {
		r := []rune(tok)
		if len(r) > 1 && unicode.IsUpper(r[0]) && unicode.IsLower(r[1]) {
			n++
		}
	}
	return n
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
