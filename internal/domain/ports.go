package domain

import (
	"context"
	"time"
)

type CatalogRepository interface {
	// Write paths
	UpsertItem(ctx context.Context, it CatalogItem, raw []byte) error

	// Read paths
	GetItem(ctx context.Context, tab Tab, id string) (CatalogItem, error)
	ListByTab(ctx context.Context, tab Tab) ([]CatalogItem, error)
}

type BookingRepository interface {
	SaveBooking(ctx context.Context, b BookingRecord) error
	ListBookings(ctx context.Context, pg PageQuery) ([]BookingRecord, error)
}

type MessageRepository interface {
	SaveMessage(ctx context.Context, m ContactMessage) (int64, error)
	ListMessages(ctx context.Context, pg PageQuery) ([]ContactMessage, error)
}

// CatalogSource is the remote catalog REST API.
type CatalogSource interface {
	FetchCatalog(ctx context.Context, tab Tab) ([]map[string]any, error)
}

// BookingSubmitter hands a confirmed draft to the remote booking API and
// returns the reference it assigned.
type BookingSubmitter interface {
	SubmitBooking(ctx context.Context, reference string, d BookingDraft) (string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type SessionStore interface {
	Load(ctx context.Context, id string) (SessionState, error) // ErrSessionNotFound when absent
	Save(ctx context.Context, s SessionState, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	// Lock claims the session for one update; ErrSessionBusy when already held.
	Lock(ctx context.Context, id string, ttl time.Duration) (unlock func(), err error)
}

type PageQuery struct {
	Limit  int
	Offset int
}

// SiteSettings are the public, hot-reloadable site options.
type SiteSettings struct {
	Title        string `json:"title" mapstructure:"title"`
	Tagline      string `json:"tagline" mapstructure:"tagline"`
	ContactEmail string `json:"contactEmail" mapstructure:"contact_email"`
	BookingsOpen bool   `json:"bookingsOpen" mapstructure:"bookings_open"`
}
