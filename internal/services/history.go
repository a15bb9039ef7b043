package services

import (
	"strings"
	"time"

	"github.com/foxxcyber/shopvoice/internal/models"
)

// Canonical returns the lookup key used for history aggregates
func Canonical(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewEvent builds an event stamped with the item's category
func NewEvent(datasets *models.Datasets, eventType models.EventType, item string, qty int, at time.Time) models.HistoryEvent {
	ev := models.HistoryEvent{
		Type:     eventType,
		Item:     item,
		Quantity: max(1, qty),
		At:       at,
	}
	if datasets.HasCategory(item) {
		category := datasets.Category(item)
		ev.Category = &category
	}
	return ev
}

// ApplyEvent returns the aggregate that results from folding ev into prev.
// prev may be nil for an item with no history. prev is never modified.
func ApplyEvent(prev *models.HistoryAggregate, ev models.HistoryEvent) models.HistoryAggregate {
	var agg models.HistoryAggregate
	if prev != nil {
		agg = *prev
	} else {
		agg = models.HistoryAggregate{
			DisplayName: ev.Item,
			Category:    ev.Category,
		}
	}

	at := ev.At
	switch ev.Type {
	case models.EventAdd:
		agg.CountAdds++
		agg.LastAddedAt = &at
	case models.EventBought:
		agg.CountBought++
		agg.LastBoughtAt = &at
	case models.EventAcceptSuggestion:
		agg.AcceptCount++
	case models.EventRejectSuggestion:
		agg.RejectCount++
	}
	// remove events are kept in the log but do not move any counter
	return agg
}
