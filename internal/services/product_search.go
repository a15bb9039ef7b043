package services

import (
	"fmt"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/foxxcyber/shopvoice/internal/models"
)

// ProductSearch runs free text through the search parser and catalog matcher.
// The catalog is immutable, so results are cached by normalized text.
type ProductSearch struct {
	parser  *SearchParser
	matcher *CatalogMatcher
	cache   *lru.Cache[string, models.SearchResult]
}

// NewProductSearch creates a search pipeline; cacheSize <= 0 disables caching
func NewProductSearch(parser *SearchParser, matcher *CatalogMatcher, cacheSize int) (*ProductSearch, error) {
	s := &ProductSearch{parser: parser, matcher: matcher}
	if cacheSize > 0 {
		cache, err := lru.New[string, models.SearchResult](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create search cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Run parses text and returns the ranked matches
func (s *ProductSearch) Run(text string) models.SearchResult {
	key := strings.ToLower(strings.TrimSpace(text))
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			cached.Query.Text = strings.TrimSpace(text)
			cached.Products = slices.Clone(cached.Products)
			return cached
		}
	}

	query := s.parser.Parse(text)
	result := models.SearchResult{
		Query:    query,
		Products: s.matcher.Search(query.ItemPhrase, query.Filters),
	}
	log.Debug().
		Str("text", text).
		Int("matches", len(result.Products)).
		Msg("catalog search")

	if s.cache != nil {
		s.cache.Add(key, models.SearchResult{Query: query, Products: slices.Clone(result.Products)})
	}
	return result
}

// Product returns the catalog product with the given id
func (s *ProductSearch) Product(id string) (models.Product, bool) {
	for _, p := range s.matcher.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}
