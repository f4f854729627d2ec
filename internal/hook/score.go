package hook

import (
	"strings"
	"unicode"

	"github.com/cobaltline/outreach/pkg/models"
)

// Scoring weights. Recency dominates: a stale hook is a worthless hook.
const (
	weightRecency     = 0.35
	weightRelevance   = 0.25
	weightAuthority   = 0.20
	weightSpecificity = 0.10
	weightSentiment   = 0.10
)

// indicatorTerms are domain-indicative words (products, places, metrics) that
// raise specificity and anchor quote extraction.
var indicatorTerms = []string{
	"clinic", "dental", "patients", "customers", "reviews", "stars", "rating",
	"oslo", "bergen", "trondheim", "stavanger", "stockholm", "copenhagen",
	"revenue", "growth", "bookings", "appointments", "service", "treatment",
	"award", "launch", "funding", "milestone",
}

type scoreInputs struct {
	freshnessDays int
	confidence    float64 // classification relevance x specificity
	authority     float64
	headline      string
	quote         string
	eventType     string
}

// scoreHook combines the five signals into a single [0,1] score.
func scoreHook(in scoreInputs) float64 {
	authority := in.authority
	if authority == 0 {
		authority = 0.5
	}
	s := weightRecency*recencyScore(in.freshnessDays) +
		weightRelevance*in.confidence +
		weightAuthority*authority +
		weightSpecificity*specificityScore(in.headline+" "+in.quote) +
		weightSentiment*sentimentScore(in.eventType)
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// recencyScore steps down with age rather than decaying smoothly; the bands
// match how quickly an outreach angle goes cold.
func recencyScore(days int) float64 {
	switch {
	case days < 2:
		return 1.0
	case days <= 7:
		return 0.8
	case days <= 14:
		return 0.6
	case days <= 30:
		return 0.4
	default:
		return 0.2
	}
}

// specificityScore starts at 0.5 and climbs with concrete signals: indicator
// terms, digits, and capitalized tokens standing in for named entities.
func specificityScore(text string) float64 {
	s := 0.5
	lower := strings.ToLower(text)
	for _, term := range indicatorTerms {
		if strings.Contains(lower, term) {
			s += 0.1
		}
	}
	if strings.ContainsFunc(text, unicode.IsDigit) {
		s += 0.1
	}
	if countCapitalized(text) >= 3 {
		s += 0.1
	}
	if s > 1 {
		return 1
	}
	return s
}

func countCapitalized(text string) int {
	n := 0
	for _, tok := range strings.Fields(text) {
		r := []rune(tok)
		if len(r) > 1 && unicode.IsUpper(r[0]) && unicode.IsLower(r[1]) {
			n++
		}
	}
	return n
}

func sentimentScore(eventType string) float64 {
	switch eventType {
	case models.HookReviewWin, models.HookAward, models.HookFunding, models.HookMilestone:
		return 1.0
	case models.HookProductLaunch, models.HookCaseStudy, models.HookPartnership, models.HookExpansion:
		return 0.7
	default:
		return 0.5
	}
}
