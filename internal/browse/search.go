// Package browse holds the interactive pieces of the catalog page: the search
// bar, the filter sidebar, the tab controller and the booking form. They are
// plain single-goroutine state objects wired together with callbacks; callers
// serialise access.
package browse

import "wildtrail/internal/domain"

// SearchBar forwards a free-text query and date range to its owner.
type SearchBar struct {
	query string
	dates domain.DateRange

	OnSearch func(query string, dates domain.DateRange)
}

// SubmitSearch records the submission and emits it unchanged. An empty query
// means "show all" downstream.
func (b *SearchBar) SubmitSearch(query string, dates domain.DateRange) {
	b.query, b.dates = query, dates
	if b.OnSearch != nil {
		b.OnSearch(query, dates)
	}
}

func (b *SearchBar) Query() string { return b.query }
func (b *SearchBar) Dates() domain.DateRange { return b.dates }
