package models

import (
	"time"
)

// EventType identifies a history event that feeds the aggregates
type EventType string

const (
	EventAdd              EventType = "add"
	EventRemove           EventType = "remove"
	EventBought           EventType = "bought"
	EventAcceptSuggestion EventType = "accept-suggestion"
	EventRejectSuggestion EventType = "reject-suggestion"
)

// HistoryEvent is a single list-mutation or suggestion-feedback event
type HistoryEvent struct {
	Type     EventType `json:"type"`
	Item     string    `json:"item"`
	Category *string   `json:"category,omitempty"`
	Quantity int       `json:"qty"`
	At       time.Time `json:"at"`
}

// HistoryAggregate holds per-item rolling counters derived from events
type HistoryAggregate struct {
	DisplayName  string     `json:"name"`
	Category     *string    `json:"category,omitempty"`
	CountAdds    int        `json:"countAdds"`
	CountBought  int        `json:"countBought"`
	LastAddedAt  *time.Time `json:"lastAddedAt,omitempty"`
	LastBoughtAt *time.Time `json:"lastBoughtAt,omitempty"`
	AcceptCount  int        `json:"accepts"`
	RejectCount  int        `json:"rejects"`
}

// LastActivity returns the later of the added and bought timestamps, or nil
func (a HistoryAggregate) LastActivity() *time.Time {
	switch {
	case a.LastAddedAt == nil:
		return a.LastBoughtAt
	case a.LastBoughtAt == nil:
		return a.LastAddedAt
	case a.LastBoughtAt.After(*a.LastAddedAt):
		return a.LastBoughtAt
	default:
		return a.LastAddedAt
	}
}
