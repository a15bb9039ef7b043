package services

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/foxxcyber/shopvoice/internal/models"
)

// Every function here returns a new slice and leaves its input untouched, so a
// caller can swap the whole list in one step.

// NewListItem creates an item with a fresh identifier
func NewListItem(name string, qty int) models.ListItem {
	return models.ListItem{
		ID:            uuid.NewString(),
		Name:          name,
		NormalizedKey: Canonical(name),
		Quantity:      max(1, qty),
	}
}

// FindItem returns the index of the item matching key, or -1. An item matches
// when its lowercase name or its singular form equals the lowercase key.
func FindItem(items []models.ListItem, key string) int {
	key = Canonical(key)
	if key == "" {
		return -1
	}
	return slices.IndexFunc(items, func(it models.ListItem) bool {
		return strings.EqualFold(it.NormalizedKey, key) ||
			Canonical(it.Name) == key ||
			Singularize(it.Name) == key
	})
}

// FindItemByID returns the index of the item with id, or -1
func FindItemByID(items []models.ListItem, id string) int {
	return slices.IndexFunc(items, func(it models.ListItem) bool {
		return it.ID == id
	})
}

// AddItem increments a matching item or appends a new one. It reports the
// resulting item.
func AddItem(items []models.ListItem, key, displayName string, qty int) ([]models.ListItem, models.ListItem) {
	qty = max(1, qty)
	if idx := FindItem(items, key); idx >= 0 {
		next := slices.Clone(items)
		next[idx].Quantity += qty
		return next, next[idx]
	}
	item := NewListItem(displayName, qty)
	return append(slices.Clone(items), item), item
}

// DecrementBy lowers the quantity of items[idx] by qty, never below 1
func DecrementBy(items []models.ListItem, idx, qty int) []models.ListItem {
	next := slices.Clone(items)
	next[idx].Quantity = max(1, next[idx].Quantity-qty)
	return next
}

// IncrementByID raises the quantity of the item with id by one
func IncrementByID(items []models.ListItem, id string) ([]models.ListItem, bool) {
	idx := FindItemByID(items, id)
	if idx < 0 {
		return items, false
	}
	next := slices.Clone(items)
	next[idx].Quantity++
	return next, true
}

// DecrementByID lowers the quantity of the item with id by one, never below 1
func DecrementByID(items []models.ListItem, id string) ([]models.ListItem, bool) {
	idx := FindItemByID(items, id)
	if idx < 0 {
		return items, false
	}
	return DecrementBy(items, idx, 1), true
}

// DeleteAt removes items[idx]
func DeleteAt(items []models.ListItem, idx int) []models.ListItem {
	next := make([]models.ListItem, 0, len(items)-1)
	next = append(next, items[:idx]...)
	return append(next, items[idx+1:]...)
}

// ToggleBoughtByID flips the bought flag of the item with id
func ToggleBoughtByID(items []models.ListItem, id string) ([]models.ListItem, bool) {
	idx := FindItemByID(items, id)
	if idx < 0 {
		return items, false
	}
	next := slices.Clone(items)
	next[idx].Bought = !next[idx].Bought
	return next, true
}
