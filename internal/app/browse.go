package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"wildtrail/internal/adapters/observability"
	"wildtrail/internal/browse"
	"wildtrail/internal/domain"
)

type SiteSettingsSource interface {
	Site() domain.SiteSettings
}

// BrowseService hosts one TabController per browse session. Each call locks
// and loads the session, replays the operation on a restored controller and
// saves the result; a failing operation leaves the stored session untouched.
type BrowseService struct {
	catalog  *CatalogService
	sessions domain.SessionStore
	bookings *BookingService
	settings SiteSettingsSource
	ttl      time.Duration
}

func NewBrowseService(c *CatalogService, st domain.SessionStore, b *BookingService, settings SiteSettingsSource, ttl time.Duration) *BrowseService {
	return &BrowseService{catalog: c, sessions: st, bookings: b, settings: settings, ttl: ttl}
}

// ---- read models ----

type ItemCard struct {
	ID          string            `json:"id"`
	Kind        domain.ItemKind   `json:"kind"`
	Title       string            `json:"title"`
	Location    string            `json:"location"`
	Category    string            `json:"category"`
	Difficulty  domain.Difficulty `json:"difficulty,omitempty"`
	Price       domain.Money      `json:"price"`
	Thumbnail   domain.Image      `json:"thumbnail"`
	Rating      float64           `json:"rating"`
	ReviewCount int               `json:"reviewCount"`
	EventDate   string            `json:"eventDate,omitempty"`
}

func NewItemCard(it domain.CatalogItem) ItemCard {
	c := ItemCard{
		ID:          it.ID,
		Kind:        it.Kind,
		Title:       it.Title,
		Location:    it.Location,
		Category:    it.Category,
		Difficulty:  it.Difficulty(),
		Price:       it.PriceQuote(),
		Thumbnail:   it.Thumbnail(),
		Rating:      it.Rating,
		ReviewCount: it.ReviewCount,
	}
	if it.Activity != nil {
		c.EventDate = it.Activity.EventDate
	}
	return c
}

func Cards(items []domain.CatalogItem) []ItemCard {
	out := make([]ItemCard, 0, len(items))
	for _, it := range items {
		out = append(out, NewItemCard(it))
	}
	return out
}

type BookingView struct {
	ItemID    string               `json:"itemId"`
	ItemType  domain.ItemKind      `json:"itemType"`
	Title     string               `json:"title"`
	DateRange domain.DateRange     `json:"dateRange"`
	Fields    domain.BookingFields `json:"fields"`
}

type SessionView struct {
	ID           string             `json:"id"`
	ActiveTab    domain.Tab         `json:"activeTab"`
	Query        string             `json:"query"`
	DateRange    domain.DateRange   `json:"dateRange"`
	DateHint     string             `json:"dateHint,omitempty"`
	Filter       domain.FilterState `json:"filter"`
	Options      domain.TabOptions  `json:"options"`
	Count        int                `json:"count"`
	CountMessage string             `json:"countMessage"`
	Items        []ItemCard         `json:"items"`
	Booking      *BookingView       `json:"booking,omitempty"`
}

func viewOf(id string, c *browse.TabController) SessionView {
	visible := c.Visible()
	v := SessionView{
		ID:           id,
		ActiveTab:    c.Active(),
		Query:        c.Query(),
		DateRange:    c.Dates(),
		DateHint:     c.Dates().Hint(),
		Filter:       c.Filter(c.Active()),
		Options:      domain.OptionsFor(c.Active()),
		Count:        len(visible),
		CountMessage: domain.CountMessage(c.Active(), len(visible)),
		Items:        Cards(visible),
	}
	if m := c.Booking(); m != nil {
		v.Booking = &BookingView{
			ItemID:    m.Item().ID,
			ItemType:  m.ItemType(),
			Title:     m.Item().Title,
			DateRange: m.Dates(),
			Fields:    m.Fields(),
		}
	}
	return v
}

// ---- operations ----

func (s *BrowseService) Start(ctx context.Context) (SessionView, error) {
	cols, err := s.catalog.Collections(ctx)
	if err != nil {
		return SessionView{}, err
	}
	id := uuid.NewString()
	c := browse.NewTabController(cols)
	if err := s.sessions.Save(ctx, c.Snapshot(id), s.ttl); err != nil {
		return SessionView{}, fmt.Errorf("save session: %w", err)
	}
	observability.ObserveSession("started")
	return viewOf(id, c), nil
}

func (s *BrowseService) View(ctx context.Context, id string) (SessionView, error) {
	c, err := s.restore(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	return viewOf(id, c), nil
}

func (s *BrowseService) SwitchTab(ctx context.Context, id string, tab domain.Tab) (SessionView, error) {
	return s.mutate(ctx, id, func(c *browse.TabController) error {
		return c.SetActive(tab)
	})
}

// Search records the query and date range. Dates must be empty or YYYY-MM-DD.
func (s *BrowseService) Search(ctx context.Context, id, query string, dates domain.DateRange) (SessionView, error) {
	if err := dates.Validate(); err != nil {
		return SessionView{}, err
	}
	return s.mutate(ctx, id, func(c *browse.TabController) error {
		c.SearchBar().SubmitSearch(query, dates)
		return nil
	})
}

func (s *BrowseService) UpdateFilter(ctx context.Context, id string, key domain.FilterKey, value string) (SessionView, error) {
	return s.mutate(ctx, id, func(c *browse.TabController) error {
		if err := c.Sidebar().UpdateFilter(key, value); err != nil {
			return err
		}
		observability.ObserveFilter(string(c.Active()), string(key))
		return nil
	})
}

func (s *BrowseService) ClearFilters(ctx context.Context, id string) (SessionView, error) {
	return s.mutate(ctx, id, func(c *browse.TabController) error {
		c.Sidebar().ClearFilters()
		return nil
	})
}

func (s *BrowseService) OpenBooking(ctx context.Context, id, itemID string) (SessionView, error) {
	return s.mutate(ctx, id, func(c *browse.TabController) error {
		if _, err := c.OpenBooking(itemID); err != nil {
			return err
		}
		observability.ObserveBooking("opened")
		return nil
	})
}

// UpdateBooking merges p into the open form; fields absent from p keep their values.
func (s *BrowseService) UpdateBooking(ctx context.Context, id string, p domain.BookingPatch) (SessionView, error) {
	return s.mutate(ctx, id, func(c *browse.TabController) error {
		m := c.Booking()
		if m == nil {
			return domain.ErrNoBooking
		}
		m.Update(p.Apply(m.Fields()))
		return nil
	})
}

// ConfirmBooking validates and submits the open booking form. The session
// keeps the form and its input unless submission succeeds.
func (s *BrowseService) ConfirmBooking(ctx context.Context, id string) (domain.BookingRecord, SessionView, error) {
	var rec domain.BookingRecord
	view, err := s.mutate(ctx, id, func(c *browse.TabController) error {
		m := c.Booking()
		if m == nil {
			return domain.ErrNoBooking
		}
		if !s.settings.Site().BookingsOpen {
			return domain.ErrBookingsClosed
		}
		tab := c.BookingTab()
		var draft *domain.BookingDraft
		c.OnBooking = func(d domain.BookingDraft) { draft = &d }
		if _, err := m.Confirm(); err != nil {
			observability.ObserveBooking("rejected")
			return err
		}
		r, err := s.bookings.Submit(ctx, tab, *draft)
		if err != nil {
			return err
		}
		rec = r
		return nil
	})
	return rec, view, err
}

func (s *BrowseService) CancelBooking(ctx context.Context, id string) (SessionView, error) {
	return s.mutate(ctx, id, func(c *browse.TabController) error {
		m := c.Booking()
		if m == nil {
			return domain.ErrNoBooking
		}
		m.Cancel()
		observability.ObserveBooking("cancelled")
		return nil
	})
}

func (s *BrowseService) restore(ctx context.Context, id string) (*browse.TabController, error) {
	st, err := s.sessions.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	cols, err := s.catalog.Collections(ctx)
	if err != nil {
		return nil, err
	}
	c, err := browse.Restore(st, cols)
	if err != nil {
		// a snapshot we can no longer replay is dropped
		log.Warn().Err(err).Str("session", id).Msg("discarding unrestorable browse session")
		if derr := s.sessions.Delete(ctx, id); derr != nil {
			log.Error().Err(derr).Str("session", id).Msg("delete browse session failed")
		}
		observability.ObserveSession("expired")
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return c, nil
}

// sessionLockTTL outlives the server's request timeout.
const sessionLockTTL = 20 * time.Second

func (s *BrowseService) mutate(ctx context.Context, id string, fn func(*browse.TabController) error) (SessionView, error) {
	unlock, err := s.sessions.Lock(ctx, id, sessionLockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrSessionBusy) {
			observability.ObserveSession("busy")
		}
		return SessionView{}, err
	}
	defer unlock()

	c, err := s.restore(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	if err := fn(c); err != nil {
		return SessionView{}, err
	}
	if err := s.sessions.Save(ctx, c.Snapshot(id), s.ttl); err != nil {
		return SessionView{}, fmt.Errorf("save session: %w", err)
	}
	return viewOf(id, c), nil
}
