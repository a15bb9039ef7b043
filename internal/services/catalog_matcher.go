package services

import (
	"sort"
	"strings"

	"github.com/foxxcyber/shopvoice/internal/models"
)

// CatalogMatcher filters and ranks the static product catalog
type CatalogMatcher struct {
	products []models.Product
}

// NewCatalogMatcher creates a matcher over a read-only product list
func NewCatalogMatcher(products []models.Product) *CatalogMatcher {
	return &CatalogMatcher{products: products}
}

// Search returns every product matching all filters. Ranking is by price
// ascending when a maximum price is set, otherwise by name and brand.
func (m *CatalogMatcher) Search(itemPhrase *string, filters models.SearchFilters) []models.Product {
	results := []models.Product{}
	for _, p := range m.products {
		if matchKeywords(p, itemPhrase) &&
			matchBrand(p, filters.Brand) &&
			matchSize(p, filters.Size) &&
			matchPrice(p, filters.MinPrice, filters.MaxPrice) &&
			matchOrganic(p, filters.IsOrganic) {
			results = append(results, p)
		}
	}

	if filters.MaxPrice != nil {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Price < results[j].Price
		})
	} else {
		sort.SliceStable(results, func(i, j int) bool {
			return sortKey(results[i]) < sortKey(results[j])
		})
	}
	return results
}

// matchKeywords uses substring containment, so short tokens can match inside longer words
func matchKeywords(p models.Product, itemPhrase *string) bool {
	if itemPhrase == nil {
		return true
	}
	tokens := strings.Fields(strings.ToLower(*itemPhrase))
	if len(tokens) == 0 {
		return true
	}

	fields := make([]string, 0, len(p.Keywords)+2)
	fields = append(fields, p.Name, p.Brand)
	fields = append(fields, p.Keywords...)
	haystack := strings.ToLower(strings.Join(fields, " "))

	for _, token := range tokens {
		if !strings.Contains(haystack, token) {
			return false
		}
	}
	return true
}

func matchBrand(p models.Product, brand *string) bool {
	if brand == nil || *brand == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Brand), strings.ToLower(*brand))
}

func matchSize(p models.Product, size *string) bool {
	if size == nil || *size == "" {
		return true
	}
	return strings.EqualFold(p.Size, *size)
}

func matchPrice(p models.Product, minPrice, maxPrice *float64) bool {
	if minPrice != nil && p.Price < *minPrice {
		return false
	}
	if maxPrice != nil && p.Price > *maxPrice {
		return false
	}
	return true
}

// matchOrganic only filters when organic was explicitly requested
func matchOrganic(p models.Product, isOrganic *bool) bool {
	if isOrganic == nil || !*isOrganic {
		return true
	}
	return p.IsOrganic
}

func sortKey(p models.Product) string {
	return strings.ToLower(p.Name + " " + p.Brand)
}
