package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type FilterKey string

const (
	FilterCategory     FilterKey = "category"
	FilterPriceCeiling FilterKey = "priceCeiling"
	FilterMinRating    FilterKey = "minRating"
	FilterDifficulty   FilterKey = "difficulty"
	FilterDestination  FilterKey = "destination"
)

var FilterKeys = []FilterKey{FilterCategory, FilterPriceCeiling, FilterMinRating, FilterDifficulty, FilterDestination}

// FilterState is replaced as a whole on every change; a zero-ish field means "any".
type FilterState struct {
	Category     string  `json:"category"`
	PriceCeiling float64 `json:"priceCeiling"`
	MinRating    int     `json:"minRating"`
	Difficulty   string  `json:"difficulty"`
	Destination  string  `json:"destination"`
}

func DefaultFilterState() FilterState {
	return FilterState{PriceCeiling: PriceCeiling}
}

// With returns a copy of s with only key replaced. Values arrive as text from
// form controls and query strings.
func (s FilterState) With(key FilterKey, value string) (FilterState, error) {
	out := s
	value = strings.TrimSpace(value)
	switch key {
	case FilterCategory:
		out.Category = value
	case FilterPriceCeiling:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return s, fmt.Errorf("%w: priceCeiling %q is not a number", ErrInvalidFilter, value)
		}
		out.PriceCeiling = f
	case FilterMinRating:
		n, err := strconv.Atoi(value)
		if err != nil {
			return s, fmt.Errorf("%w: minRating %q is not an integer", ErrInvalidFilter, value)
		}
		out.MinRating = n
	case FilterDifficulty:
		out.Difficulty = strings.ToLower(value)
	case FilterDestination:
		if strings.EqualFold(value, DestinationAll) {
			value = ""
		}
		out.Destination = value
	default:
		return s, fmt.Errorf("%w: unknown key %q", ErrInvalidFilter, key)
	}
	return out, nil
}

// Matches reports whether item passes every filter field.
func (s FilterState) Matches(item CatalogItem) bool {
	return s.matchesCategory(item) &&
		s.matchesPrice(item) &&
		s.matchesRating(item) &&
		s.matchesDifficulty(item) &&
		s.matchesDestination(item)
}

func (s FilterState) matchesCategory(item CatalogItem) bool {
	return s.Category == "" || strings.EqualFold(item.Category, s.Category)
}

func (s FilterState) matchesPrice(item CatalogItem) bool {
	return item.PriceQuote().Amount <= s.PriceCeiling
}

func (s FilterState) matchesRating(item CatalogItem) bool {
	return item.Rating >= float64(s.MinRating)
}

func (s FilterState) matchesDifficulty(item CatalogItem) bool {
	if s.Difficulty == "" || !item.HasDifficulty() {
		return true
	}
	return strings.EqualFold(string(item.Difficulty()), s.Difficulty)
}

func (s FilterState) matchesDestination(item CatalogItem) bool {
	if s.Destination == "" {
		return true
	}
	if strings.EqualFold(item.Region, s.Destination) {
		return true
	}
	return strings.Contains(strings.ToLower(item.Location), strings.ToLower(s.Destination))
}

// MatchesQuery is the free-text search: empty matches everything.
func MatchesQuery(item CatalogItem, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	for _, f := range []string{item.Title, item.Location, item.Region, item.Category} {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Apply narrows items to those matching both the filter and the query.
// The input slice is never modified.
func Apply(items []CatalogItem, s FilterState, q string) []CatalogItem {
	out := make([]CatalogItem, 0, len(items))
	for _, it := range items {
		if s.Matches(it) && MatchesQuery(it, q) {
			out = append(out, it)
		}
	}
	return out
}
