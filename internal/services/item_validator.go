package services

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/foxxcyber/shopvoice/internal/models"
)

// ItemValidator rejects conversational noise before it reaches the list
type ItemValidator struct {
	datasets *models.Datasets
}

// Greetings carry a trailing space so "hi there" is caught but "chips" is not.
var stopPhrases = []string{
	"hello",
	"hi ",
	"hey ",
	"thanks",
	"thank you",
	"please",
	"what do you suggest",
	"what should i buy",
	"recommend",
	"any alternatives",
	"alternatives",
	"alternative",
	"instead of",
	"what are you doing",
	"are you there",
	"can you add",
	"could you add",
	"would you add",
	"how are you",
	"good morning",
	"good evening",
	"add to list",
	"remove from list",
}

var interrogatives = []string{"what", "why", "how", "when", "where", "who", "which"}

var (
	auxiliaryYouPattern = regexp.MustCompile(`\b(are|can|could|would|will|should)\s+you\b`)
	personalPronoun     = regexp.MustCompile(`\b(i|you|we)\b`)
)

// NewItemValidator creates a validator backed by the category map and substitute graph
func NewItemValidator(datasets *models.Datasets) *ItemValidator {
	return &ItemValidator{datasets: datasets}
}

// IsPlausible reports whether phrase looks like an item name. Rules run in order; the first failing rule rejects.
func (v *ItemValidator) IsPlausible(phrase string) bool {
	s := strings.ToLower(strings.TrimSpace(phrase))
	if s == "" {
		return false
	}

	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < 2 {
		return false
	}

	for _, p := range stopPhrases {
		if strings.Contains(s, p) {
			return false
		}
	}

	words := strings.Fields(s)
	if len(words) > 4 {
		return false
	}
	if len(words) == 1 && len(s) <= 2 {
		return false
	}

	if strings.Contains(s, "?") {
		return false
	}
	for _, w := range interrogatives {
		if strings.HasPrefix(s, w+" ") {
			return false
		}
	}
	if auxiliaryYouPattern.MatchString(s) {
		return false
	}
	if personalPronoun.MatchString(s) && len(words) >= 3 {
		return false
	}

	// Known items skip the short-token check below
	if v.datasets.HasCategory(s) || v.datasets.HasSubstitutes(s) {
		return true
	}

	if len(words) == 1 && len([]rune(s)) < 4 {
		return false
	}
	return true
}
