package models

// Product is a read-only catalog entry
type Product struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Brand     string   `json:"brand"`
	Size      string   `json:"size"`
	Price     float64  `json:"price"`
	IsOrganic bool     `json:"isOrganic"`
	Keywords  []string `json:"keywords"`
}

// DisplayName is the label used when a product is added to a list
func (p Product) DisplayName() string {
	name := p.Name
	if p.Brand != "" {
		name = p.Brand + " " + name
	}
	if p.Size != "" {
		name = name + " " + p.Size
	}
	return name
}

// SearchFilters holds optional catalog filters; nil means "not requested"
type SearchFilters struct {
	Brand     *string  `json:"brand"`
	Size      *string  `json:"size"`
	IsOrganic *bool    `json:"isOrganic"`
	MinPrice  *float64 `json:"minPrice"`
	MaxPrice  *float64 `json:"maxPrice"`
}

// SearchQuery is the structured form of a free-text search phrase
type SearchQuery struct {
	Text       string        `json:"text"`
	ItemPhrase *string       `json:"item"`
	Filters    SearchFilters `json:"filters"`
}

// SearchResult pairs a parsed query with the ranked catalog matches
type SearchResult struct {
	Query    SearchQuery `json:"query"`
	Products []Product   `json:"products"`
}
