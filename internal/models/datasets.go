package models

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultCategory is reported for items missing from the category map
const DefaultCategory = "Other"

// SeasonalEntry is one item worth suggesting in a given month
type SeasonalEntry struct {
	Item   string `json:"item"`
	Reason string `json:"reason"`
}

// Datasets bundles the static reference data shared read-only by the pipeline
type Datasets struct {
	Catalog     []Product                  `json:"products"`
	Categories  map[string]string          `json:"categories"`
	Seasonal    map[string][]SeasonalEntry `json:"seasonal"`
	Substitutes map[string][]string        `json:"substitutes"`
}

// Category returns the category for name, or DefaultCategory
func (d *Datasets) Category(name string) string {
	if d == nil {
		return DefaultCategory
	}
	if c, ok := lookup(d.Categories, name); ok {
		return c
	}
	return DefaultCategory
}

// HasCategory reports whether name has an explicit category entry
func (d *Datasets) HasCategory(name string) bool {
	if d == nil {
		return false
	}
	_, ok := lookup(d.Categories, name)
	return ok
}

// Alternatives returns the substitute list for name; never nil-errors on a miss
func (d *Datasets) Alternatives(name string) []string {
	if d == nil {
		return nil
	}
	alts, _ := lookup(d.Substitutes, name)
	return alts
}

// HasSubstitutes reports whether name is a key in the substitute graph
func (d *Datasets) HasSubstitutes(name string) bool {
	if d == nil {
		return false
	}
	_, ok := lookup(d.Substitutes, name)
	return ok
}

// SeasonalFor returns the calendar entries for month (1-12)
func (d *Datasets) SeasonalFor(month int) []SeasonalEntry {
	if d == nil {
		return nil
	}
	return d.Seasonal[strconv.Itoa(month)]
}

// lookup tries the key as given, then first-letter uppercased, then lowercased
func lookup[V any](m map[string]V, name string) (V, bool) {
	var zero V
	if m == nil {
		return zero, false
	}
	name = strings.TrimSpace(name)
	if v, ok := m[name]; ok {
		return v, true
	}
	if v, ok := m[titleCase(name)]; ok {
		return v, true
	}
	if v, ok := m[strings.ToLower(name)]; ok {
		return v, true
	}
	return zero, false
}

func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
