package browse

import (
	"fmt"
	"time"

	"wildtrail/internal/domain"
)

// TabController owns the active tab, one item collection and one filter state
// per tab, the shared search query and date range, and at most one open
// booking form.
//
// Filter state is kept per tab, so a category picked under tours never leaks
// into events.
type TabController struct {
	active      domain.Tab
	collections map[domain.Tab][]domain.CatalogItem
	filters     map[domain.Tab]domain.FilterState
	search      *SearchBar
	query       string
	dates       domain.DateRange

	modal    *BookingModal
	modalTab domain.Tab

	// OnBooking receives every confirmed draft; the receiver submits it.
	OnBooking func(domain.BookingDraft)
}

// NewTabController starts on the tours tab with default filters everywhere.
// Collections are read-only from here on.
func NewTabController(collections map[domain.Tab][]domain.CatalogItem) *TabController {
	c := &TabController{
		active:      domain.TabTours,
		collections: make(map[domain.Tab][]domain.CatalogItem, len(domain.Tabs)),
		filters:     make(map[domain.Tab]domain.FilterState, len(domain.Tabs)),
	}
	for _, t := range domain.Tabs {
		c.collections[t] = collections[t]
		c.filters[t] = domain.DefaultFilterState()
	}
	c.search = &SearchBar{OnSearch: func(q string, d domain.DateRange) {
		c.query, c.dates = q, d
	}}
	return c
}

func (c *TabController) Active() domain.Tab { return c.active }

// SetActive switches tabs unconditionally; only unknown tabs are refused.
func (c *TabController) SetActive(t domain.Tab) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownTab, t)
	}
	c.active = t
	return nil
}

func (c *TabController) SearchBar() *SearchBar { return c.search }

// Sidebar returns the filter controls of the active tab. Changes it emits
// land in that tab's state even if the active tab changes afterwards.
func (c *TabController) Sidebar() *FilterSidebar {
	tab := c.active
	return NewFilterSidebar(tab, c.filters[tab], func(s domain.FilterState) {
		c.filters[tab] = s
	})
}

func (c *TabController) Filter(t domain.Tab) domain.FilterState { return c.filters[t] }
func (c *TabController) Query() string { return c.query }
func (c *TabController) Dates() domain.DateRange { return c.dates }

func (c *TabController) Collection(t domain.Tab) []domain.CatalogItem { return c.collections[t] }

// Visible is the active collection narrowed by the tab's filters and the query.
func (c *TabController) Visible() []domain.CatalogItem {
	return domain.Apply(c.collections[c.active], c.filters[c.active], c.query)
}

func (c *TabController) CountMessage() string {
	return domain.CountMessage(c.active, len(c.Visible()))
}

// OpenBooking opens the booking form for an item of the active tab, with the
// current date range. A form that is already open is replaced.
func (c *TabController) OpenBooking(itemID string) (*BookingModal, error) {
	item, ok := c.find(c.active, itemID)
	if !ok {
		return nil, fmt.Errorf("%w: %s item %q", domain.ErrNotFound, c.active, itemID)
	}
	c.openModal(c.active, item, c.dates)
	return c.modal, nil
}

func (c *TabController) CloseBooking() {
	c.modal = nil
	c.modalTab = ""
}

// Booking returns the open booking form, or nil.
func (c *TabController) Booking() *BookingModal { return c.modal }

// BookingTab is the tab the open booking form was started from.
func (c *TabController) BookingTab() domain.Tab { return c.modalTab }

func (c *TabController) openModal(tab domain.Tab, item domain.CatalogItem, dates domain.DateRange) {
	c.modalTab = tab
	c.modal = newBookingModal(item, dates,
		func(d domain.BookingDraft) {
			if c.OnBooking != nil {
				c.OnBooking(d)
			}
			c.CloseBooking()
		},
		c.CloseBooking,
	)
}

func (c *TabController) find(t domain.Tab, id string) (domain.CatalogItem, bool) {
	for _, it := range c.collections[t] {
		if it.ID == id {
			return it, true
		}
	}
	return domain.CatalogItem{}, false
}

// Snapshot captures everything but the collections.
func (c *TabController) Snapshot(id string) domain.SessionState {
	st := domain.SessionState{
		ID:        id,
		ActiveTab: c.active,
		Filters:   make(map[domain.Tab]domain.FilterState, len(c.filters)),
		Query:     c.query,
		Dates:     c.dates,
		UpdatedAt: time.Now().UTC(),
	}
	for t, f := range c.filters {
		st.Filters[t] = f
	}
	if c.modal != nil {
		st.Booking = &domain.BookingState{
			ItemID:   c.modal.item.ID,
			ItemType: c.modal.itemType,
			Tab:      c.modalTab,
			Dates:    c.modal.dates,
			Fields:   c.modal.fields,
		}
	}
	return st
}

// Restore rebuilds a controller from a snapshot over fresh collections.
// A booking form whose item has left the catalog is dropped.
func Restore(st domain.SessionState, collections map[domain.Tab][]domain.CatalogItem) (*TabController, error) {
	c := NewTabController(collections)
	if st.ActiveTab != "" {
		if err := c.SetActive(st.ActiveTab); err != nil {
			return nil, err
		}
	}
	for t, f := range st.Filters {
		if t.Valid() {
			c.filters[t] = f
		}
	}
	c.query, c.dates = st.Query, st.Dates
	if b := st.Booking; b != nil {
		if item, ok := c.find(b.Tab, b.ItemID); ok {
			c.openModal(b.Tab, item, b.Dates)
			c.modal.Update(b.Fields)
		}
	}
	return c, nil
}
