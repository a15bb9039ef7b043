package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/foxxcyber/shopvoice/internal/models"
)

// Outcome describes what handling an utterance did
type Outcome string

const (
	OutcomeAdded        Outcome = "added"
	OutcomeDecremented  Outcome = "decremented"
	OutcomeRemoved      Outcome = "removed"
	OutcomeNotFound     Outcome = "not_found"
	OutcomeSearched     Outcome = "searched"
	OutcomeSuggested    Outcome = "suggested"
	OutcomeAlternatives Outcome = "alternatives"
	OutcomeHeard        Outcome = "heard"
)

// SuggestionUpdate says how a result's suggestions combine with the active set
type SuggestionUpdate string

const (
	SuggestionsUnchanged SuggestionUpdate = ""
	SuggestionsReplace   SuggestionUpdate = "replace"
	SuggestionsMerge     SuggestionUpdate = "merge"
)

// Route is the branch an interpreted utterance takes
type Route string

const (
	RouteHeard        Route = "heard"
	RouteAdd          Route = "add"
	RouteRemove       Route = "remove"
	RouteCatalog      Route = "catalog"
	RouteSuggest      Route = "suggest"
	RouteAlternatives Route = "alternatives"
)

// Decision is the interpreted form of an utterance, ready to be applied
type Decision struct {
	Utterance    string
	Lang         string
	Intent       models.ParsedIntent
	UsedFallback bool
	Route        Route
}

// NeedsAggregates reports whether applying d reads history aggregates
func (d Decision) NeedsAggregates() bool {
	return d.Route == RouteSuggest
}

// CommandResult is everything the caller has to commit after an utterance
type CommandResult struct {
	Intent           models.ParsedIntent   `json:"intent"`
	Outcome          Outcome               `json:"outcome"`
	Status           string                `json:"status"`
	Items            []models.ListItem     `json:"items"`
	ListChanged      bool                  `json:"list_changed"`
	Suggestions      []models.Suggestion   `json:"suggestions,omitempty"`
	SuggestionUpdate SuggestionUpdate      `json:"suggestion_update,omitempty"`
	Search           *models.SearchResult  `json:"search,omitempty"`
	Events           []models.HistoryEvent `json:"-"`
}

// CommandRouter interprets utterances and computes their effect on a list
type CommandRouter struct {
	primary   PrimaryParser
	fallback  *FallbackParser
	validator *ItemValidator
	search    *ProductSearch
	engine    *RecommendationEngine
	datasets  *models.Datasets
}

var (
	searchIndicator      = regexp.MustCompile(`(?i)(find|search|show|look for|under|below|less than|between|brand|size|ml|\bl\b|\bg\b|\bkg\b|organic|recommend|suggest|alternative|instead of)`)
	hindiSearchIndicator = regexp.MustCompile(`खोजो|खोजें`)
	suggestionRequest    = regexp.MustCompile(`what do you suggest|what should i buy|suggest.*today|recommend`)
	substituteRequest    = regexp.MustCompile(`alternative|substitute|instead of`)
	insteadOfClause      = regexp.MustCompile(`instead of\s+([\p{L}\s-]+)$`)
	forClause            = regexp.MustCompile(`for\s+([\p{L}\s-]+)$`)
	leadingQuantifier    = regexp.MustCompile(`^(any|some)\s+`)
)

// NewCommandRouter wires the router. primary may be nil, in which case every
// utterance goes through the fallback parser.
func NewCommandRouter(primary PrimaryParser, datasets *models.Datasets, search *ProductSearch) *CommandRouter {
	return &CommandRouter{
		primary:   primary,
		fallback:  NewFallbackParser(),
		validator: NewItemValidator(datasets),
		search:    search,
		engine:    NewRecommendationEngine(datasets),
		datasets:  datasets,
	}
}

// Engine returns the recommendation engine the router uses
func (r *CommandRouter) Engine() *RecommendationEngine {
	return r.engine
}

// Search returns the product search pipeline
func (r *CommandRouter) Search() *ProductSearch {
	return r.search
}

// Handle interprets utterance and applies it to items in one call
func (r *CommandRouter) Handle(ctx context.Context, utterance, lang string, items []models.ListItem, history HistoryRepository, now time.Time) (*CommandResult, error) {
	d := r.Interpret(ctx, utterance, lang)

	var aggregates map[string]models.HistoryAggregate
	if d.NeedsAggregates() && history != nil {
		var err error
		aggregates, err = history.ListAggregates(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load history aggregates: %w", err)
		}
	}
	return r.Apply(d, items, aggregates, now), nil
}

// Interpret resolves the intent for utterance and picks a route. It never fails:
// primary parser problems fall back to the rule-based parser.
func (r *CommandRouter) Interpret(ctx context.Context, utterance, lang string) Decision {
	utterance = strings.TrimSpace(utterance)
	intent, usedFallback := r.resolveIntent(ctx, utterance, lang)

	lower := strings.ToLower(utterance)
	if intent.Action == models.ActionAdd && looksLikeSearch(lower) {
		intent.Action = models.ActionSearch
	}

	d := Decision{
		Utterance:    utterance,
		Lang:         lang,
		Intent:       intent,
		UsedFallback: usedFallback,
		Route:        RouteHeard,
	}

	// Suggestion and substitute requests are not item names, so they skip the plausibility gate
	if intent.Action == models.ActionSearch {
		switch {
		case suggestionRequest.MatchString(lower):
			d.Route = RouteSuggest
			return d
		case substituteRequest.MatchString(lower):
			d.Route = RouteAlternatives
			return d
		}
	}

	if intent.Action == models.ActionNone || !r.validator.IsPlausible(intent.NormalizedItem) {
		return d
	}

	switch intent.Action {
	case models.ActionAdd:
		d.Route = RouteAdd
	case models.ActionRemove:
		d.Route = RouteRemove
	case models.ActionSearch:
		d.Route = RouteCatalog
	}
	return d
}

// Apply computes the effect of d on items without mutating items
func (r *CommandRouter) Apply(d Decision, items []models.ListItem, aggregates map[string]models.HistoryAggregate, now time.Time) *CommandResult {
	intent := d.Intent
	key := Canonical(intent.NormalizedItem)
	qty := max(1, intent.Quantity)
	display := r.displayName(intent)

	result := &CommandResult{Intent: intent, Items: items}

	switch d.Route {
	case RouteAdd:
		next, item := AddItem(items, key, display, qty)
		result.Items = next
		result.ListChanged = true
		result.Outcome = OutcomeAdded
		result.Status = fmt.Sprintf("Added: %s%s", quantityPrefix(qty), item.Name)
		result.Events = []models.HistoryEvent{NewEvent(r.datasets, models.EventAdd, item.Name, qty, now)}

	case RouteRemove:
		idx := FindItem(items, key)
		if idx < 0 {
			result.Outcome = OutcomeNotFound
			result.Status = "Not found: " + display
			return result
		}
		existing := items[idx]
		removeQty := max(1, min(qty, existing.Quantity))
		if existing.Quantity > removeQty {
			result.Items = DecrementBy(items, idx, removeQty)
			result.Outcome = OutcomeDecremented
			result.Status = fmt.Sprintf("Removed: %s%s", quantityPrefix(removeQty), existing.Name)
			result.Events = []models.HistoryEvent{NewEvent(r.datasets, models.EventRemove, existing.Name, removeQty, now)}
		} else {
			result.Items = DeleteAt(items, idx)
			result.Outcome = OutcomeRemoved
			result.Status = "Removed: " + existing.Name
			result.Events = []models.HistoryEvent{NewEvent(r.datasets, models.EventRemove, existing.Name, existing.Quantity, now)}
			if subs := r.engine.SuggestSubstitutesFor(existing.Name, items); len(subs) > 0 {
				result.Suggestions = subs
				result.SuggestionUpdate = SuggestionsMerge
			}
		}
		result.ListChanged = true

	case RouteSuggest:
		result.Outcome = OutcomeSuggested
		result.Status = "Here are some suggestions for today."
		result.Suggestions = r.engine.Generate(items, aggregates, now)
		result.SuggestionUpdate = SuggestionsReplace

	case RouteAlternatives:
		target := r.substituteTarget(d.Utterance, key, items)
		result.Outcome = OutcomeAlternatives
		result.Status = "Here are some alternatives."
		result.Suggestions = []models.Suggestion{}
		if target != "" {
			result.Suggestions = r.engine.SuggestSubstitutesFor(capitalize(target), items)
		}
		result.SuggestionUpdate = SuggestionsReplace

	case RouteCatalog:
		if r.search != nil {
			found := r.search.Run(d.Utterance)
			result.Search = &found
		}
		result.Outcome = OutcomeSearched
		result.Status = "Search: " + capitalize(key)

	default:
		result.Outcome = OutcomeHeard
		result.Status = "Heard: " + d.Utterance
	}
	return result
}

// resolveIntent tries the primary parser and falls back at most once
func (r *CommandRouter) resolveIntent(ctx context.Context, utterance, lang string) (models.ParsedIntent, bool) {
	var cached *models.ParsedIntent
	fallback := func() models.ParsedIntent {
		if cached == nil {
			p := r.fallback.Parse(utterance, lang)
			cached = &p
		}
		return *cached
	}

	if r.primary == nil {
		log.Debug().Msg("parser: using fallback, no model configured")
		return fallback(), true
	}

	body, err := r.primary.ParseCommand(ctx, utterance, lang)
	if err != nil {
		log.Info().Err(err).Msg("parser: using fallback, primary parser failed")
		return fallback(), true
	}

	resp, err := decodePrimaryResponse(body)
	if err != nil {
		log.Info().Err(err).Msg("parser: using fallback, primary response unusable")
		return fallback(), true
	}

	intent := models.ParsedIntent{
		Action:         resp.action,
		DisplayItem:    capitalize(resp.item),
		NormalizedItem: strings.ToLower(strings.TrimSpace(resp.normalized)),
		Quantity:       1,
	}
	if intent.DisplayItem == "" {
		log.Debug().Msg("parser: using fallback, primary returned no item")
		return fallback(), true
	}

	merged := false
	if intent.NormalizedItem == "" {
		intent.NormalizedItem = fallback().NormalizedItem
		merged = true
	}
	if resp.quantity != nil {
		intent.Quantity = max(1, *resp.quantity)
	} else {
		intent.Quantity = fallback().Quantity
		merged = true
	}
	if merged {
		log.Debug().Msg("parser: parsed with primary, merged fallback normalization")
	} else {
		log.Debug().Msg("parser: parsed with primary")
	}
	return intent, false
}

type primaryResponse struct {
	action     models.Action
	item       string
	normalized string
	quantity   *int
}

// decodePrimaryResponse validates the model's JSON. action and item are required;
// normalized_item and quantity may be filled in from the fallback parser.
func decodePrimaryResponse(body []byte) (*primaryResponse, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedResponse)
	}

	rawAction, hasAction := fields["action"]
	rawItem, hasItem := fields["item"]
	if !hasAction || !hasItem {
		return nil, fmt.Errorf("%w: missing required fields", ErrMalformedResponse)
	}

	resp := &primaryResponse{action: models.ActionNone}

	var action *string
	if err := json.Unmarshal(rawAction, &action); err != nil {
		return nil, fmt.Errorf("%w: action: %v", ErrMalformedResponse, err)
	}
	if action != nil {
		a := models.Action(strings.ToLower(strings.TrimSpace(*action)))
		if a != models.ActionAdd && a != models.ActionRemove && a != models.ActionSearch {
			return nil, fmt.Errorf("%w: unknown action %q", ErrMalformedResponse, *action)
		}
		resp.action = a
	}

	var item *string
	if err := json.Unmarshal(rawItem, &item); err != nil {
		return nil, fmt.Errorf("%w: item: %v", ErrMalformedResponse, err)
	}
	if item != nil {
		resp.item = strings.TrimSpace(*item)
	}

	if raw, ok := fields["normalized_item"]; ok {
		var normalized *string
		if err := json.Unmarshal(raw, &normalized); err == nil && normalized != nil {
			resp.normalized = *normalized
		}
	}

	if raw, ok := fields["quantity"]; ok {
		var q *float64
		if err := json.Unmarshal(raw, &q); err == nil && q != nil && !math.IsNaN(*q) && !math.IsInf(*q, 0) {
			n := int(math.Round(*q))
			resp.quantity = &n
		}
	}
	return resp, nil
}

func looksLikeSearch(lower string) bool {
	return searchIndicator.MatchString(lower) || hindiSearchIndicator.MatchString(lower)
}

// displayName prefers the user's own phrasing when it agrees with the normalized key
func (r *CommandRouter) displayName(intent models.ParsedIntent) string {
	cleaned := r.fallback.CleanItemPhrase(intent.DisplayItem)
	if cleaned != "" && Singularize(cleaned) == Canonical(intent.NormalizedItem) {
		return capitalize(cleaned)
	}
	return capitalize(Canonical(intent.NormalizedItem))
}

// substituteTarget picks what an alternatives request is about: a trailing
// "instead of X" or "for X" clause, then a plausible parsed item, then the
// first list item.
func (r *CommandRouter) substituteTarget(utterance, key string, items []models.ListItem) string {
	lower := strings.TrimRight(strings.ToLower(strings.TrimSpace(utterance)), "?.! ")

	target := ""
	if m := insteadOfClause.FindStringSubmatch(lower); m != nil {
		target = m[1]
	} else if m := forClause.FindStringSubmatch(lower); m != nil {
		target = m[1]
	} else if key != "" && r.validator.IsPlausible(key) {
		target = key
	} else if len(items) > 0 {
		target = items[0].Name
	}

	target = strings.ToLower(strings.TrimSpace(target))
	return strings.TrimSpace(leadingQuantifier.ReplaceAllString(target, ""))
}

func quantityPrefix(qty int) string {
	if qty > 1 {
		return fmt.Sprintf("%d × ", qty)
	}
	return ""
}
