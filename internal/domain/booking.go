package domain

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange holds YYYY-MM-DD strings; either side may be empty until picked.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Validate accepts empty sides and YYYY-MM-DD dates. The order of the two
// dates is not checked; see Hint.
func (r DateRange) Validate() error {
	ve := &ValidationError{}
	for field, v := range map[string]string{"dateRange.from": r.From, "dateRange.to": r.To} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, v); err != nil {
			ve.add(field, ReasonInvalid)
		}
	}
	return ve.orNil()
}

// Hint warns when both dates are set and the range runs backwards.
// It is advisory only; nothing rejects such a range.
func (r DateRange) Hint() string {
	from, err1 := time.Parse(dateLayout, r.From)
	to, err2 := time.Parse(dateLayout, r.To)
	if err1 == nil && err2 == nil && to.Before(from) {
		return "end date is before start date"
	}
	return ""
}

type GuestCounts struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

const (
	MinAdults   = 1
	MaxAdults   = 20
	MinChildren = 0
	MaxChildren = 20
)

// Clamp pulls counts into the bounds the booking form allows.
func (g GuestCounts) Clamp() GuestCounts {
	return GuestCounts{
		Adults:   clamp(g.Adults, MinAdults, MaxAdults),
		Children: clamp(g.Children, MinChildren, MaxChildren),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BookingFields are the values a guest types into the booking form.
type BookingFields struct {
	ContactName  string      `json:"contactName"`
	ContactEmail string      `json:"contactEmail"`
	ContactPhone string      `json:"contactPhone"`
	GuestCounts  GuestCounts `json:"guestCounts"`
}

func DefaultBookingFields() BookingFields {
	return BookingFields{GuestCounts: GuestCounts{Adults: MinAdults, Children: MinChildren}}
}

// GuestCountsPatch and BookingPatch are partial form updates: nil keeps the
// current value.
type GuestCountsPatch struct {
	Adults   *int `json:"adults"`
	Children *int `json:"children"`
}

type BookingPatch struct {
	ContactName  *string           `json:"contactName"`
	ContactEmail *string           `json:"contactEmail"`
	ContactPhone *string           `json:"contactPhone"`
	GuestCounts  *GuestCountsPatch `json:"guestCounts"`
}

// Apply merges the patch over f.
func (p BookingPatch) Apply(f BookingFields) BookingFields {
	if p.ContactName != nil {
		f.ContactName = *p.ContactName
	}
	if p.ContactEmail != nil {
		f.ContactEmail = *p.ContactEmail
	}
	if p.ContactPhone != nil {
		f.ContactPhone = *p.ContactPhone
	}
	if g := p.GuestCounts; g != nil {
		if g.Adults != nil {
			f.GuestCounts.Adults = *g.Adults
		}
		if g.Children != nil {
			f.GuestCounts.Children = *g.Children
		}
	}
	return f
}

// Validate requires a name and at least one contact channel, and checks the
// format of whichever channels were given.
func (f BookingFields) Validate() error {
	ve := &ValidationError{}
	checkText(ve, "contactName", strings.TrimSpace(f.ContactName), true, maxNameLen)
	email, phone := strings.TrimSpace(f.ContactEmail), strings.TrimSpace(f.ContactPhone)
	if email == "" && phone == "" {
		ve.add("contactEmail", ReasonRequired)
	}
	if email != "" {
		checkEmail(ve, "contactEmail", email, false)
	}
	if phone != "" {
		checkPhone(ve, "contactPhone", phone)
	}
	return ve.orNil()
}

// BookingDraft is what a confirmed booking form emits. It is never persisted
// by the browse flow itself.
type BookingDraft struct {
	ItemID       string      `json:"itemId"`
	ItemType     ItemKind    `json:"itemType"`
	ContactName  string      `json:"contactName"`
	ContactEmail string      `json:"contactEmail"`
	ContactPhone string      `json:"contactPhone"`
	GuestCounts  GuestCounts `json:"guestCounts"`
	DateRange    DateRange   `json:"dateRange"`
}

type BookingStatus string

const (
	BookingSubmitted BookingStatus = "submitted" // accepted by the remote booking API
	BookingReceived  BookingStatus = "received"  // stored locally, no remote API configured
)

// BookingRecord is a submitted draft as kept by the booking service.
type BookingRecord struct {
	Reference   string        `json:"reference"`
	Tab         Tab           `json:"tab"`
	Draft       BookingDraft  `json:"draft"`
	Status      BookingStatus `json:"status"`
	ExternalRef string        `json:"externalRef,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// BookingState is an open booking form inside a browse session.
type BookingState struct {
	ItemID   string        `json:"itemId"`
	ItemType ItemKind      `json:"itemType"`
	Tab      Tab           `json:"tab"`
	Dates    DateRange     `json:"dateRange"`
	Fields   BookingFields `json:"fields"`
}

// SessionState is everything a browse session remembers between requests.
// Item collections are not part of it; they are reloaded from the catalog.
type SessionState struct {
	ID        string              `json:"id"`
	ActiveTab Tab                 `json:"activeTab"`
	Filters   map[Tab]FilterState `json:"filters"`
	Query     string              `json:"query"`
	Dates     DateRange           `json:"dateRange"`
	Booking   *BookingState       `json:"booking,omitempty"`
	UpdatedAt time.Time           `json:"updatedAt"`
}
