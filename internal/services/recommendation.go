package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/foxxcyber/shopvoice/internal/models"
)

const (
	// MaxSuggestions caps the output of Generate
	MaxSuggestions = 8

	// RemovedSubstituteScore is the flat score for alternatives to a removed item
	RemovedSubstituteScore = 60

	neverDays = 999
)

// RecommendationEngine scores history, seasonal and substitute signals into
// one suggestion list. It is a pure function of its inputs.
type RecommendationEngine struct {
	datasets *models.Datasets
}

// NewRecommendationEngine creates an engine over the given reference data
func NewRecommendationEngine(datasets *models.Datasets) *RecommendationEngine {
	return &RecommendationEngine{datasets: datasets}
}

// Generate returns up to MaxSuggestions suggestions, highest score first
func (e *RecommendationEngine) Generate(items []models.ListItem, aggregates map[string]models.HistoryAggregate, now time.Time) []models.Suggestion {
	present := presentNames(items)

	pool := DedupeSuggestions(
		e.historySignals(present, aggregates, now),
		e.seasonalSignals(present, aggregates, now),
		e.substituteSignals(items, present, aggregates),
	)
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})
	if len(pool) > MaxSuggestions {
		pool = pool[:MaxSuggestions]
	}
	return pool
}

// SuggestSubstitutesFor lists alternatives to a removed item that are not already on the list
func (e *RecommendationEngine) SuggestSubstitutesFor(removed string, items []models.ListItem) []models.Suggestion {
	present := presentNames(items)
	lower := strings.ToLower(strings.TrimSpace(removed))

	out := []models.Suggestion{}
	for _, alt := range e.alternatives(removed) {
		if present.has(alt) {
			continue
		}
		out = append(out, models.Suggestion{
			Item:       alt,
			Reason:     fmt.Sprintf("Since you removed %s, try %s?", lower, strings.ToLower(alt)),
			SourceType: models.SourceSubstitute,
			Score:      RemovedSubstituteScore,
		})
	}
	return out
}

func (e *RecommendationEngine) historySignals(present nameSet, aggregates map[string]models.HistoryAggregate, now time.Time) []models.Suggestion {
	keys := make([]string, 0, len(aggregates))
	for k := range aggregates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []models.Suggestion
	for _, k := range keys {
		a := aggregates[k]
		if a.DisplayName == "" || present.has(a.DisplayName) {
			continue
		}

		freq := a.CountBought
		if freq == 0 {
			freq = a.CountAdds
		}
		daysSince := neverDays
		if last := a.LastActivity(); last != nil {
			daysSince = daysBetween(*last, now)
		}
		if freq < 2 || daysSince < 5 {
			continue
		}

		plural := "s"
		if daysSince == 1 {
			plural = ""
		}
		out = append(out, models.Suggestion{
			Item:       a.DisplayName,
			Reason:     fmt.Sprintf("You often buy %s, last time was %d day%s ago.", strings.ToLower(a.DisplayName), daysSince, plural),
			SourceType: models.SourceHistory,
			Score:      50 + min(30, freq*5) + min(20, daysSince),
		})
	}
	return out
}

func (e *RecommendationEngine) seasonalSignals(present nameSet, aggregates map[string]models.HistoryAggregate, now time.Time) []models.Suggestion {
	var out []models.Suggestion
	for _, entry := range e.datasets.SeasonalFor(int(now.Month())) {
		if entry.Item == "" || present.has(entry.Item) {
			continue
		}
		reason := entry.Reason
		if reason == "" {
			reason = entry.Item + " is in season this month."
		}
		out = append(out, models.Suggestion{
			Item:       entry.Item,
			Reason:     reason,
			SourceType: models.SourceSeasonal,
			Score:      40 + feedbackAdjustment(aggregates, entry.Item),
		})
	}
	return out
}

func (e *RecommendationEngine) substituteSignals(items []models.ListItem, present nameSet, aggregates map[string]models.HistoryAggregate) []models.Suggestion {
	var out []models.Suggestion
	for _, item := range items {
		for _, alt := range e.alternatives(item.Name) {
			if present.has(alt) {
				continue
			}
			out = append(out, models.Suggestion{
				Item:       alt,
				Reason:     fmt.Sprintf("Alternative to %s.", strings.ToLower(item.Name)),
				SourceType: models.SourceSubstitute,
				Score:      25 + feedbackAdjustment(aggregates, alt),
			})
		}
	}
	return out
}

// alternatives looks name up as given, then by its singular form
func (e *RecommendationEngine) alternatives(name string) []string {
	if alts := e.datasets.Alternatives(name); len(alts) > 0 {
		return alts
	}
	return e.datasets.Alternatives(Singularize(name))
}

// feedbackAdjustment rewards accepted and penalizes rejected suggestions, each capped at 20
func feedbackAdjustment(aggregates map[string]models.HistoryAggregate, name string) int {
	a, ok := aggregates[Canonical(name)]
	if !ok {
		return 0
	}
	return min(20, a.AcceptCount*5) - min(20, a.RejectCount*5)
}

func daysBetween(a, b time.Time) int {
	d := b.Sub(a)
	if d < 0 {
		d = -d
	}
	return int(d / (24 * time.Hour))
}

// nameSet holds lowercase and singular forms of the names on a list
type nameSet map[string]struct{}

func presentNames(items []models.ListItem) nameSet {
	set := make(nameSet, len(items)*2)
	for _, item := range items {
		set[strings.ToLower(strings.TrimSpace(item.Name))] = struct{}{}
		if s := Singularize(item.Name); s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

func (s nameSet) has(name string) bool {
	if _, ok := s[strings.ToLower(strings.TrimSpace(name))]; ok {
		return true
	}
	_, ok := s[Singularize(name)]
	return ok
}
