package browse

import (
	"strings"

	"wildtrail/internal/domain"
)

// BookingModal collects guest details for one catalog item. It performs no
// I/O: a confirmed draft goes to onConfirm and the owner submits it.
type BookingModal struct {
	item     domain.CatalogItem
	itemType domain.ItemKind
	dates    domain.DateRange
	fields   domain.BookingFields

	onConfirm func(domain.BookingDraft)
	onClose   func()
}

func newBookingModal(item domain.CatalogItem, dates domain.DateRange, onConfirm func(domain.BookingDraft), onClose func()) *BookingModal {
	return &BookingModal{
		item:      item,
		itemType:  item.Kind,
		dates:     dates,
		fields:    domain.DefaultBookingFields(),
		onConfirm: onConfirm,
		onClose:   onClose,
	}
}

func (m *BookingModal) Item() domain.CatalogItem { return m.item }
func (m *BookingModal) ItemType() domain.ItemKind { return m.itemType }
func (m *BookingModal) Dates() domain.DateRange { return m.dates }
func (m *BookingModal) Fields() domain.BookingFields { return m.fields }

// Update replaces the entered values; guest counts are clamped to the form's bounds.
func (m *BookingModal) Update(f domain.BookingFields) {
	f.GuestCounts = f.GuestCounts.Clamp()
	m.fields = f
}

// Confirm validates the entered values and emits the assembled draft.
func (m *BookingModal) Confirm() (domain.BookingDraft, error) {
	if err := m.fields.Validate(); err != nil {
		return domain.BookingDraft{}, err
	}
	d := domain.BookingDraft{
		ItemID:       m.item.ID,
		ItemType:     m.itemType,
		ContactName:  strings.TrimSpace(m.fields.ContactName),
		ContactEmail: strings.TrimSpace(m.fields.ContactEmail),
		ContactPhone: strings.TrimSpace(m.fields.ContactPhone),
		GuestCounts:  m.fields.GuestCounts,
		DateRange:    m.dates,
	}
	if m.onConfirm != nil {
		m.onConfirm(d)
	}
	return d, nil
}

// Cancel drops everything entered and asks the owner to close the form.
func (m *BookingModal) Cancel() {
	m.fields = domain.DefaultBookingFields()
	if m.onClose != nil {
		m.onClose()
	}
}
