package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxxcyber/shopvoice/internal/models"
)

func TestNewEvent(t *testing.T) {
	d := testDatasets()
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	ev := NewEvent(d, models.EventAdd, "milk", 0, at)
	assert.Equal(t, models.EventAdd, ev.Type)
	assert.Equal(t, 1, ev.Quantity)
	require.NotNil(t, ev.Category)
	assert.Equal(t, "Dairy", *ev.Category)
	assert.Equal(t, at, ev.At)

	ev = NewEvent(d, models.EventRemove, "caviar", 2, at)
	assert.Nil(t, ev.Category)
	assert.Equal(t, 2, ev.Quantity)
}

func TestApplyEvent(t *testing.T) {
	d := testDatasets()
	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(48 * time.Hour)

	agg := ApplyEvent(nil, NewEvent(d, models.EventAdd, "Milk", 2, t1))
	assert.Equal(t, "Milk", agg.DisplayName)
	require.NotNil(t, agg.Category)
	assert.Equal(t, "Dairy", *agg.Category)
	assert.Equal(t, 1, agg.CountAdds)
	require.NotNil(t, agg.LastAddedAt)
	assert.Equal(t, t1, *agg.LastAddedAt)

	before := agg
	agg = ApplyEvent(&before, NewEvent(d, models.EventBought, "milk", 1, t2))
	assert.Equal(t, 1, agg.CountBought)
	require.NotNil(t, agg.LastBoughtAt)
	assert.Equal(t, t2, *agg.LastBoughtAt)
	assert.Equal(t, 0, before.CountBought, "previous aggregate is left alone")

	agg = ApplyEvent(&agg, NewEvent(d, models.EventAcceptSuggestion, "milk", 1, t2))
	agg = ApplyEvent(&agg, NewEvent(d, models.EventRejectSuggestion, "milk", 1, t2))
	agg = ApplyEvent(&agg, NewEvent(d, models.EventRejectSuggestion, "milk", 1, t2))
	agg = ApplyEvent(&agg, NewEvent(d, models.EventRemove, "milk", 1, t2))

	assert.Equal(t, 1, agg.AcceptCount)
	assert.Equal(t, 2, agg.RejectCount)
	assert.Equal(t, 1, agg.CountAdds)
	assert.Equal(t, 1, agg.CountBought)
	assert.Equal(t, t2, *agg.LastActivity())
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "almond milk", Canonical("  Almond Milk "))
	assert.Equal(t, "", Canonical("   "))
}
