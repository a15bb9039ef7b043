package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxxcyber/shopvoice/internal/models"
)

var october = time.Date(2025, time.October, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := october.Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

func TestRecommendationEngine_Seasonal(t *testing.T) {
	e := NewRecommendationEngine(testDatasets())

	got := e.Generate(nil, nil, october)

	require.Len(t, got, 2)
	assert.Equal(t, models.Suggestion{
		Item:       "Pomegranates",
		Reason:     "Pomegranates is in season this month.",
		SourceType: models.SourceSeasonal,
		Score:      40,
	}, got[0])
	assert.Equal(t, "Great for winter evenings.", got[1].Reason)
}

func TestRecommendationEngine_History(t *testing.T) {
	e := NewRecommendationEngine(testDatasets())
	aggregates := map[string]models.HistoryAggregate{
		"bread":  {DisplayName: "Bread", CountBought: 3, LastBoughtAt: daysAgo(10)},
		"eggs":   {DisplayName: "Eggs", CountAdds: 4, LastAddedAt: daysAgo(30)},
		"butter": {DisplayName: "Butter", CountBought: 1, LastBoughtAt: daysAgo(40)},
		"jam":    {DisplayName: "Jam", CountBought: 5, LastBoughtAt: daysAgo(2)},
	}

	got := e.Generate(nil, aggregates, october)

	assert.Equal(t, []string{"Eggs", "Bread", "Pomegranates", "Sweet potatoes"}, suggestionItems(got))
	assert.Equal(t, 90, got[0].Score)
	assert.Equal(t, 75, got[1].Score)
	assert.Equal(t, "You often buy bread, last time was 10 days ago.", got[1].Reason)
	assert.Equal(t, models.SourceHistory, got[1].SourceType)
}

func TestRecommendationEngine_LatestActivityCounts(t *testing.T) {
	e := NewRecommendationEngine(testDatasets())
	aggregates := map[string]models.HistoryAggregate{
		// added yesterday, bought long ago: too recent to suggest
		"milk": {DisplayName: "Milk", CountBought: 3, LastBoughtAt: daysAgo(20), LastAddedAt: daysAgo(1)},
	}

	got := e.Generate(nil, aggregates, october)
	assert.NotContains(t, suggestionItems(got), "Milk")
}

func TestRecommendationEngine_ExcludesPresentItems(t *testing.T) {
	e := NewRecommendationEngine(testDatasets())
	items := []models.ListItem{
		{Name: "Bread", Quantity: 1},
		{Name: "pomegranate", Quantity: 1},
		{Name: "Milk", Quantity: 1},
		{Name: "Oat milk", Quantity: 1},
	}
	aggregates := map[string]models.HistoryAggregate{
		"bread": {DisplayName: "Bread", CountBought: 3, LastBoughtAt: daysAgo(10)},
	}

	got := e.Generate(items, aggregates, october)

	assert.Equal(t, []string{"Sweet potatoes", "Brown bread", "Almond milk"}, suggestionItems(got))
	assert.Equal(t, "Alternative to bread.", got[1].Reason)
	assert.Equal(t, 25, got[1].Score)
}

func TestRecommendationEngine_Feedback(t *testing.T) {
	e := NewRecommendationEngine(testDatasets())
	items := []models.ListItem{{Name: "Milk", Quantity: 1}}
	aggregates := map[string]models.HistoryAggregate{
		"almond milk":  {DisplayName: "Almond milk", AcceptCount: 2},
		"oat milk":     {DisplayName: "Oat milk", AcceptCount: 10},
		"pomegranates": {DisplayName: "Pomegranates", RejectCount: 10},
	}

	got := e.Generate(items, aggregates, october)
	scores := make(map[string]int)
	for _, s := range got {
		scores[s.Item] = s.Score
	}

	assert.Equal(t, 35, scores["Almond milk"])
	assert.Equal(t, 45, scores["Oat milk"])
	assert.Equal(t, 20, scores["Pomegranates"])
	assert.Equal(t, 40, scores["Sweet potatoes"])
}

func TestRecommendationEngine_CapsAtEight(t *testing.T) {
	e := NewRecommendationEngine(testDatasets())
	aggregates := make(map[string]models.HistoryAggregate)
	for i := 0; i < 12; i++ {
		name := fmt.Sprintf("Item %02d", i)
		aggregates[Canonical(name)] = models.HistoryAggregate{DisplayName: name, CountBought: 2, LastBoughtAt: daysAgo(6)}
	}

	got := e.Generate(nil, aggregates, october)

	require.Len(t, got, MaxSuggestions)
	for _, s := range got {
		assert.Equal(t, models.SourceHistory, s.SourceType)
		assert.Equal(t, 66, s.Score)
	}
	// equal scores keep key order
	assert.Equal(t, "Item 00", got[0].Item)
	assert.Equal(t, "Item 07", got[7].Item)
}

func TestRecommendationEngine_DedupeKeepsHigherScore(t *testing.T) {
	e := NewRecommendationEngine(testDatasets())
	aggregates := map[string]models.HistoryAggregate{
		"pomegranates": {DisplayName: "Pomegranates", CountBought: 2, LastBoughtAt: daysAgo(7)},
	}

	got := e.Generate(nil, aggregates, october)

	require.Len(t, got, 2)
	assert.Equal(t, "Pomegranates", got[0].Item)
	assert.Equal(t, models.SourceHistory, got[0].SourceType)
	assert.Equal(t, 67, got[0].Score)
}

func TestRecommendationEngine_SuggestSubstitutesFor(t *testing.T) {
	e := NewRecommendationEngine(testDatasets())

	t.Run("skips alternatives already on the list", func(t *testing.T) {
		got := e.SuggestSubstitutesFor("milk", []models.ListItem{{Name: "Oat milk", Quantity: 1}})
		require.Len(t, got, 1)
		assert.Equal(t, models.Suggestion{
			Item:       "Almond milk",
			Reason:     "Since you removed milk, try almond milk?",
			SourceType: models.SourceSubstitute,
			Score:      RemovedSubstituteScore,
		}, got[0])
	})

	t.Run("falls back to the singular form", func(t *testing.T) {
		got := e.SuggestSubstitutesFor("Breads", nil)
		assert.Equal(t, []string{"Brown bread"}, suggestionItems(got))
	})

	t.Run("unknown item", func(t *testing.T) {
		got := e.SuggestSubstitutesFor("caviar", nil)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestRecommendationEngine_NilDatasets(t *testing.T) {
	e := NewRecommendationEngine(nil)
	items := []models.ListItem{{Name: "Milk", Quantity: 1}}

	assert.Empty(t, e.Generate(items, nil, october))
	assert.Empty(t, e.SuggestSubstitutesFor("Milk", items))
}
