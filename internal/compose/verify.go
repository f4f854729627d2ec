package compose

import "strings"

// Claim sentences are detected by past-tense achievement verbs. A sentence
// with none of these makes no checkable factual assertion.
var achievementVerbs = []string{
	"won", "launched", "raised", "increased", "reached", "crossed", "opened",
	"expanded", "celebrated", "grew", "hit", "secured", "partnered",
	"published", "surpassed", "earned", "received", "announced", "featured",
}

// minOverlap is the fraction of a claim's significant words that must appear
// in the grounding evidence for the claim to count as supported.
const minOverlap = 0.4

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "with": true,
	"this": true, "from": true, "your": true, "you": true, "our": true,
	"are": true, "was": true, "has": true, "have": true, "its": true,
	"their": true, "they": true, "about": true, "which": true, "into": true,
	"over": true, "just": true, "now": true, "new": true, "like": true,
	"what": true, "who": true, "out": true, "not": true,
}

// Verdict is the outcome of verifying one draft against its evidence.
type Verdict struct {
	Pass        bool
	Unsupported []string // claim sentences below the overlap bar
}

// ExtractClaims returns the sentences of text that assert a checkable fact.
func ExtractClaims(text string) []string {
	var claims []string
	for _, sentence := range splitSentences(text) {
		lower := strings.ToLower(sentence)
		for _, verb := range achievementVerbs {
			if containsWord(lower, verb) {
				claims = append(claims, sentence)
				break
			}
		}
	}
	return claims
}

// Verify checks every claim in body against the concatenated evidence text.
func Verify(body, evidenceText string) Verdict {
	evWords := wordSet(evidenceText)
	v := Verdict{Pass: true}
	for _, claim := range ExtractClaims(body) {
		if !supported(claim, evWords) {
			v.Pass = false
			v.Unsupported = append(v.Unsupported, claim)
		}
	}
	return v
}

// Repair strips the unsupported sentences from body. It never invents
// replacement facts; it only removes and re-normalizes whitespace.
func Repair(body string, unsupported []string) string {
	out := body
	for _, claim := range unsupported {
		out = strings.ReplaceAll(out, claim, "")
	}
	return normalizeWhitespace(out)
}

func supported(claim string, evWords map[string]bool) bool {
	sig := significantWords(claim)
	if len(sig) == 0 {
		return true
	}
	matched := 0
	for _, w := range sig {
		if evWords[w] {
			matched++
		}
	}
	return float64(matched)/float64(len(sig)) >= minOverlap
}

func significantWords(text string) []string {
	var out []string
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		w := strings.Trim(tok, ".,!?;:\"'()[]-")
		if len(w) <= 2 || stopwords[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range significantWords(text) {
		set[w] = true
	}
	return set
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isLetter(text[start-1])
		afterOK := end == len(text) || !isLetter(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = end
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?', '\n':
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

func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var kept []string
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		kept = append(kept, l)
	}
	out := strings.Join(kept, "\n")
	for strings.Contains(out, "\n\n\n") {
		out = strings.ReplaceAll(out, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(out)
}
