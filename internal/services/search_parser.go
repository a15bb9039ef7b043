package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/foxxcyber/shopvoice/internal/models"
)

// SearchParser turns a free-form search phrase into an item phrase and filters
type SearchParser struct {
	rangePattern *regexp.Regexp
	maxPattern   *regexp.Regexp
	sizePattern  *regexp.Regexp
	organic      *regexp.Regexp
	leadingVerb  *regexp.Regexp
	fillerWords  *regexp.Regexp
	punctuation  *regexp.Regexp
	brands       []string
}

// Scanned in order; the first substring hit wins.
var knownBrands = []string{
	"amul",
	"mother dairy",
	"nestle",
	"colgate",
	"pepsodent",
	"dabur",
	"coca-cola",
	"coca cola",
	"pepsi",
	"lays",
	"tata",
	"fortune",
	"india gate",
	"tata sampann",
	"aashirvaad",
	"nescafe",
	"britannia",
	"head & shoulders",
	"head and shoulders",
	"dettol",
	"quaker",
	"kellogg's",
	"kelloggs",
	"surf excel",
	"tide",
}

// maxItemPhraseWords caps the residual phrase to its trailing words
const maxItemPhraseWords = 4

// NewSearchParser creates a search parser with the default brand list
func NewSearchParser() *SearchParser {
	// Longer units come first so "2 liters" is not read as "2 l" + "iters"
	return &SearchParser{
		rangePattern: regexp.MustCompile(`(?i)(between|from)\s*(\d{1,6})\s*(?:to|and|-|–)\s*(\d{1,6})\s*(?:rs|inr|rupees|₹)?`),
		maxPattern:   regexp.MustCompile(`(?i)(?:under|below|less than|<=?|≤)\s*\$?\s*(\d{1,6})\s*(?:rs|inr|rupees|₹)?`),
		sizePattern:  regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(liters?|litres?|lits?|ml|kg|l|g|packs?|pcs?)\b`),
		organic:      regexp.MustCompile(`\borganic\b`),
		leadingVerb:  regexp.MustCompile(`^(find|show|search|look for|get|need)\b\s*`),
		fillerWords:  regexp.MustCompile(`\b(of|a|the|some|any|me|to|for|please|category|organic|brand|brands|bottle|pack|pcs|piece|pieces)\b`),
		punctuation:  regexp.MustCompile(`[?.!,]`),
		brands:       knownBrands,
	}
}

// Parse extracts filters in a fixed order, removing each matched span before
// the next step. Empty input yields a query with a nil item phrase.
func (p *SearchParser) Parse(raw string) models.SearchQuery {
	original := strings.TrimSpace(raw)
	query := models.SearchQuery{Text: original}
	q := strings.ToLower(original)
	if q == "" {
		return query
	}

	// A price range wins over a single maximum; only one is ever set
	if m := p.rangePattern.FindStringSubmatchIndex(q); m != nil {
		lo, _ := strconv.ParseFloat(q[m[4]:m[5]], 64)
		hi, _ := strconv.ParseFloat(q[m[6]:m[7]], 64)
		query.Filters.MinPrice = &lo
		query.Filters.MaxPrice = &hi
		q = cut(q, m[0], m[1])
	} else if m := p.maxPattern.FindStringSubmatchIndex(q); m != nil {
		hi, _ := strconv.ParseFloat(q[m[2]:m[3]], 64)
		query.Filters.MaxPrice = &hi
		q = cut(q, m[0], m[1])
	}

	if m := p.sizePattern.FindStringSubmatchIndex(q); m != nil {
		size := q[m[2]:m[3]] + normalizeUnit(q[m[4]:m[5]])
		query.Filters.Size = &size
		q = cut(q, m[0], m[1])
	}

	if p.organic.MatchString(q) {
		organic := true
		query.Filters.IsOrganic = &organic
		q = p.organic.ReplaceAllString(q, " ")
	}

	for _, b := range p.brands {
		if i := strings.Index(q, b); i >= 0 {
			brand := b
			query.Filters.Brand = &brand
			q = cut(q, i, i+len(b))
			break
		}
	}

	q = strings.TrimSpace(whitespaceRun.ReplaceAllString(q, " "))
	q = p.leadingVerb.ReplaceAllString(q, "")
	q = p.fillerWords.ReplaceAllString(q, " ")
	q = p.punctuation.ReplaceAllString(q, " ")

	words := strings.Fields(q)
	if len(words) > maxItemPhraseWords {
		words = words[len(words)-maxItemPhraseWords:]
	}
	if len(words) > 0 {
		item := strings.Join(words, " ")
		query.ItemPhrase = &item
	}
	return query
}

func normalizeUnit(unit string) string {
	unit = strings.ToLower(unit)
	switch unit {
	case "liter", "liters", "litre", "litres", "lit", "lits":
		return "l"
	}
	return unit
}

// cut removes s[start:end], leaving a space so neighbouring words stay apart
func cut(s string, start, end int) string {
	return s[:start] + " " + s[end:]
}
