package browse

import (
	"math"

	"wildtrail/internal/domain"
)

// FilterSidebar renders the filter controls of one tab and emits a complete
// FilterState whenever a control changes.
type FilterSidebar struct {
	tab   domain.Tab
	state domain.FilterState

	OnChange func(domain.FilterState)
}

func NewFilterSidebar(tab domain.Tab, state domain.FilterState, onChange func(domain.FilterState)) *FilterSidebar {
	return &FilterSidebar{tab: tab, state: state, OnChange: onChange}
}

func (s *FilterSidebar) Tab() domain.Tab { return s.tab }
func (s *FilterSidebar) State() domain.FilterState { return s.state }
func (s *FilterSidebar) Categories() []string { return s.tab.Categories() }
func (s *FilterSidebar) ShowDifficulty() bool { return s.tab.ShowsDifficulty() }
func (s *FilterSidebar) Destinations() []string { return append([]string(nil), domain.Destinations...) }
func (s *FilterSidebar) Options() domain.TabOptions { return domain.OptionsFor(s.tab) }

// UpdateFilter replaces one field and notifies the owner with the whole state.
// Values the controls could not have produced are rejected without emitting.
func (s *FilterSidebar) UpdateFilter(key domain.FilterKey, value string) error {
	next, err := s.state.With(key, value)
	if err != nil {
		return err
	}
	if reason := s.check(key, next); reason != "" {
		return domain.NewFieldError(string(key), reason)
	}
	s.emit(next)
	return nil
}

// ClearFilters resets every field in one notification.
func (s *FilterSidebar) ClearFilters() {
	s.emit(domain.DefaultFilterState())
}

func (s *FilterSidebar) emit(next domain.FilterState) {
	s.state = next
	if s.OnChange != nil {
		s.OnChange(next)
	}
}

func (s *FilterSidebar) check(key domain.FilterKey, st domain.FilterState) string {
	switch key {
	case domain.FilterCategory:
		if st.Category != "" && !s.tab.HasCategory(st.Category) {
			return domain.ReasonInvalid
		}
	case domain.FilterPriceCeiling:
		p := st.PriceCeiling
		if p < domain.PriceFloor || p > domain.PriceCeiling || math.Mod(p, domain.PriceStep) != 0 {
			return domain.ReasonInvalid
		}
	case domain.FilterMinRating:
		if st.MinRating < 0 || st.MinRating > 5 {
			return domain.ReasonInvalid
		}
	case domain.FilterDifficulty:
		if st.Difficulty == "" {
			return ""
		}
		if !s.tab.ShowsDifficulty() || !domain.Difficulty(st.Difficulty).Valid() {
			return domain.ReasonInvalid
		}
	case domain.FilterDestination:
		if st.Destination != "" && !domain.IsDestination(st.Destination) {
			return domain.ReasonInvalid
		}
	}
	return ""
}
