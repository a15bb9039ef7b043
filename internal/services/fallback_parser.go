package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/foxxcyber/shopvoice/internal/models"
)

// FallbackParser is the rule-based parser used whenever the language model
// is unavailable or returns something unusable. It never fails.
type FallbackParser struct {
	actionRules   []actionRule
	quantityRules []quantityRule
	phraseRules   []rewriteRule
}

// actionRule maps trigger substrings to an action; rules are checked in order
type actionRule struct {
	action   models.Action
	keywords []string
}

// quantityRule returns a quantity and true when it applies
type quantityRule struct {
	name  string
	apply func(lower string) (int, bool)
}

// rewriteRule replaces every match of pattern with replacement
type rewriteRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Spoken number words: English, transliterated Hindi, Spanish
var numberWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"ek": 1, "do": 2, "teen": 3, "char": 4, "paanch": 5,
	"chhe": 6, "saat": 7, "aath": 8, "nau": 9, "dus": 10,
	"uno": 1, "dos": 2, "tres": 3, "cuatro": 4, "cinco": 5,
}

var (
	decimalPattern   = regexp.MustCompile(`\b(\d+(?:[.,]\d+)?)\b`)
	halfDozenPattern = regexp.MustCompile(`half\s+dozen|half\s+a\s+dozen|a\s+half\s+dozen`)
	dozenPattern     = regexp.MustCompile(`dozen`)
	halfPattern      = regexp.MustCompile(`half\b`)
	nonLetterSplit   = regexp.MustCompile(`[^\p{L}\p{M}]+`)
	hindiRemoveVerbs = regexp.MustCompile(`हटाओ|निकालो|हटाना`)
	startsWithLetter = regexp.MustCompile(`^\p{L}`)
	normalizeStrip   = regexp.MustCompile(`[^\p{L}\p{M}\s,-]`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// NewFallbackParser creates a parser with the default rule tables
func NewFallbackParser() *FallbackParser {
	return &FallbackParser{
		// Order matters: an utterance with both an add and a search keyword is an add.
		actionRules: []actionRule{
			{action: models.ActionAdd, keywords: []string{"add", "buy", "get", "need", "include", "add to", "add me"}},
			{action: models.ActionRemove, keywords: []string{"remove", "delete", "take off", "take", "remove from", "हटाओ", "निकालो", "हटाना"}},
			{action: models.ActionSearch, keywords: []string{
				"find", "search", "show", "look for", "suggest", "recommend",
				"alternative", "alternatives", "substitute", "instead of",
				"what do you suggest", "खोजो", "खोजें",
			}},
		},
		quantityRules: []quantityRule{
			{name: "numeral", apply: numeralQuantity},
			{name: "half-dozen", apply: func(lower string) (int, bool) {
				return 6, halfDozenPattern.MatchString(lower)
			}},
			{name: "dozen", apply: func(lower string) (int, bool) {
				return 12, dozenPattern.MatchString(lower)
			}},
			{name: "number-word", apply: numberWordQuantity},
			{name: "half", apply: func(lower string) (int, bool) {
				return 1, halfPattern.MatchString(lower)
			}},
		},
		phraseRules: []rewriteRule{
			{regexp.MustCompile(`(?i)^\s*(add|buy|get|need|include|remove|delete)\b\s*`), ""},
			{regexp.MustCompile(`(?i)\b(to\s+(my\s+)?(cart|list|bag))\b`), ""},
			{regexp.MustCompile(`(?i)\b(from\s+(my\s+)?(cart|list|bag))\b`), ""},
			{regexp.MustCompile(`(?i)\b(please|pls|kindly)\b`), ""},
			{regexp.MustCompile(`(?i)\b(under|less than)\b[^,\n]*`), ""},
			{regexp.MustCompile(`(?i)\bfor\b\s*\$?\d+[\d.]*\b`), ""},
			{regexp.MustCompile(`\b\d+\b`), ""},
			{regexp.MustCompile(`[.,!?]`), " "},
		},
	}
}

// Parse interprets raw into an intent. lang is informational only.
func (p *FallbackParser) Parse(raw, lang string) models.ParsedIntent {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.NoIntent()
	}

	lower := strings.ToLower(raw)
	action := p.DetectAction(lower)
	quantity := p.Quantity(lower)
	name := p.CleanItemPhrase(raw)

	if action == models.ActionNone {
		switch {
		case hindiRemoveVerbs.MatchString(lower):
			action, quantity = models.ActionRemove, 1
		case startsWithLetter.MatchString(raw):
			// A bare phrase like "milk" is taken as an implicit add
			action = models.ActionAdd
		default:
			return models.NoIntent()
		}
	}

	return models.ParsedIntent{
		Action:         action,
		DisplayItem:    capitalize(name),
		NormalizedItem: Singularize(name),
		Quantity:       quantity,
	}
}

// DetectAction returns the first action whose keyword occurs in lower, or ActionNone
func (p *FallbackParser) DetectAction(lower string) models.Action {
	for _, rule := range p.actionRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.action
			}
		}
	}
	return models.ActionNone
}

// Quantity applies the quantity rules in priority order; the result is always >= 1
func (p *FallbackParser) Quantity(lower string) int {
	for _, rule := range p.quantityRules {
		if n, ok := rule.apply(lower); ok {
			return max(1, n)
		}
	}
	return 1
}

// CleanItemPhrase strips verbs, list phrases, politeness, price clauses and digits
func (p *FallbackParser) CleanItemPhrase(raw string) string {
	name := raw
	for _, rule := range p.phraseRules {
		name = rule.pattern.ReplaceAllString(name, rule.replacement)
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(name, " "))
}

func numeralQuantity(lower string) (int, bool) {
	m := decimalPattern.FindStringSubmatch(lower)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return int(math.Ceil(n)), true
}

func numberWordQuantity(lower string) (int, bool) {
	for _, w := range nonLetterSplit.Split(lower, -1) {
		if n, ok := numberWords[w]; ok {
			return n, true
		}
	}
	return 0, false
}

// Singularize lowercases phrase, drops price filters and symbols, and naively
// singularizes the last word. Earlier words are kept as-is.
func Singularize(phrase string) string {
	p := strings.ToLower(strings.TrimSpace(phrase))
	if p == "" {
		return ""
	}
	for _, marker := range []string{" under ", " $", "$", "₹"} {
		if i := strings.Index(p, marker); i >= 0 {
			p = p[:i]
		}
	}
	p = normalizeStrip.ReplaceAllString(p, " ")
	p = strings.TrimSpace(whitespaceRun.ReplaceAllString(p, " "))
	if p == "" {
		return ""
	}

	parts := strings.Split(p, " ")
	last := parts[len(parts)-1]
	switch {
	case strings.HasSuffix(last, "ies"):
		last = strings.TrimSuffix(last, "ies") + "y"
	case strings.HasSuffix(last, "ses"), strings.HasSuffix(last, "xes"),
		strings.HasSuffix(last, "ches"), strings.HasSuffix(last, "shes"):
		last = last[:len(last)-2]
	case strings.HasSuffix(last, "s") && !strings.HasSuffix(last, "ss"):
		last = last[:len(last)-1]
	}
	parts[len(parts)-1] = last
	return strings.TrimSpace(strings.Join(parts, " "))
}

// capitalize uppercases the first rune of s
func capitalize(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
