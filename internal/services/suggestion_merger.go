package services

import (
	"strings"

	"github.com/foxxcyber/shopvoice/internal/models"
)

// MaxMergedSuggestions caps a merged suggestion set
const MaxMergedSuggestions = 10

// MergeSuggestions combines two batches keyed by lowercase item name, keeping
// the higher score for duplicates. Order is first appearance; inputs are not modified.
func MergeSuggestions(current, extra []models.Suggestion) []models.Suggestion {
	merged := DedupeSuggestions(current, extra)
	if len(merged) > MaxMergedSuggestions {
		merged = merged[:MaxMergedSuggestions]
	}
	return merged
}

// DedupeSuggestions folds batches into one entry per lowercase item name.
// A later entry replaces an earlier one only with a strictly higher score.
func DedupeSuggestions(batches ...[]models.Suggestion) []models.Suggestion {
	order, best := foldBest(batches)
	out := make([]models.Suggestion, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

func foldBest(batches [][]models.Suggestion) ([]string, map[string]models.Suggestion) {
	var order []string
	best := make(map[string]models.Suggestion)
	for _, batch := range batches {
		for _, s := range batch {
			key := strings.ToLower(s.Item)
			prev, seen := best[key]
			if !seen {
				order = append(order, key)
			}
			if !seen || s.Score > prev.Score {
				best[key] = s
			}
		}
	}
	return order, best
}

// WithoutSuggestion returns suggestions minus any entry for item (case-insensitive)
func WithoutSuggestion(suggestions []models.Suggestion, item string) []models.Suggestion {
	out := make([]models.Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if !strings.EqualFold(s.Item, item) {
			out = append(out, s)
		}
	}
	return out
}
