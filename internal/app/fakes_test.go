package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"wildtrail/internal/domain"
)

// ---- fakes ----

type memCatalog struct {
	mu        sync.Mutex
	items     map[domain.Tab][]domain.CatalogItem
	listCalls int
}

func newMemCatalog(items ...domain.CatalogItem) *memCatalog {
	c := &memCatalog{items: map[domain.Tab][]domain.CatalogItem{}}
	for _, it := range items {
		c.items[it.Tab] = append(c.items[it.Tab], it)
	}
	return c
}

func (c *memCatalog) UpsertItem(ctx context.Context, it domain.CatalogItem, raw []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, x := range c.items[it.Tab] {
		if x.ID == it.ID {
			c.items[it.Tab][i] = it
			return nil
		}
	}
	c.items[it.Tab] = append(c.items[it.Tab], it)
	return nil
}

func (c *memCatalog) GetItem(ctx context.Context, tab domain.Tab, id string) (domain.CatalogItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, x := range c.items[tab] {
		if x.ID == id {
			return x, nil
		}
	}
	return domain.CatalogItem{}, fmt.Errorf("%w: %s/%s", domain.ErrNotFound, tab, id)
}

func (c *memCatalog) ListByTab(ctx context.Context, tab domain.Tab) ([]domain.CatalogItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listCalls++
	return append([]domain.CatalogItem(nil), c.items[tab]...), nil
}

// jsonCache round-trips values through JSON like the redis adapter does.
type jsonCache struct {
	mu    sync.Mutex
	store map[string][]byte
	dels  []string
}

func (c *jsonCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *jsonCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	c.store[key] = b
	return err
}

func (c *jsonCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

type memSessions struct {
	mu     sync.Mutex
	m      map[string]domain.SessionState
	locked map[string]bool
}

func (s *memSessions) Load(ctx context.Context, id string) (domain.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.m[id]
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	// decouple from the stored copy the way a serialised store would
	b, _ := json.Marshal(st)
	var out domain.SessionState
	_ = json.Unmarshal(b, &out)
	return out, nil
}

func (s *memSessions) Save(ctx context.Context, st domain.SessionState, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = map[string]domain.SessionState{}
	}
	s.m[st.ID] = st
	return nil
}

func (s *memSessions) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

func (s *memSessions) Lock(ctx context.Context, id string, ttl time.Duration) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked == nil {
		s.locked = map[string]bool{}
	}
	if s.locked[id] {
		return nil, domain.ErrSessionBusy
	}
	s.locked[id] = true
	return func() {
		s.mu.Lock()
		delete(s.locked, id)
		s.mu.Unlock()
	}, nil
}

func (s *memSessions) get(id string) (domain.SessionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.m[id]
	return st, ok
}

func mustSession(t *testing.T, s *memSessions, id string) domain.SessionState {
	t.Helper()
	st, ok := s.get(id)
	if !ok {
		t.Fatalf("session %s not stored", id)
	}
	return st
}

type memBookings struct{ recs []domain.BookingRecord }

func (b *memBookings) SaveBooking(ctx context.Context, r domain.BookingRecord) error {
	b.recs = append(b.recs, r)
	return nil
}

func (b *memBookings) ListBookings(ctx context.Context, pg domain.PageQuery) ([]domain.BookingRecord, error) {
	return b.recs, nil
}

type memMessages struct{ msgs []domain.ContactMessage }

func (m *memMessages) SaveMessage(ctx context.Context, msg domain.ContactMessage) (int64, error) {
	m.msgs = append(m.msgs, msg)
	return int64(len(m.msgs)), nil
}

func (m *memMessages) ListMessages(ctx context.Context, pg domain.PageQuery) ([]domain.ContactMessage, error) {
	return m.msgs, nil
}

type fakeSubmitter struct {
	err   error
	calls int

	// when set, SubmitBooking signals entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func (f *fakeSubmitter) SubmitBooking(ctx context.Context, ref string, d domain.BookingDraft) (string, error) {
	f.calls++
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	if f.err != nil {
		return "", f.err
	}
	return "EXT-" + d.ItemID, nil
}

type staticSite struct{ open bool }

func (s staticSite) Site() domain.SiteSettings { return domain.SiteSettings{BookingsOpen: s.open} }

type fakeSource struct {
	payloads map[domain.Tab][]map[string]any
	err      error
}

func (f *fakeSource) FetchCatalog(ctx context.Context, tab domain.Tab) ([]map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.payloads[tab], nil
}

// fill turns complete form values into a patch that sets every field.
func fill(f domain.BookingFields) domain.BookingPatch {
	adults, children := f.GuestCounts.Adults, f.GuestCounts.Children
	return domain.BookingPatch{
		ContactName:  &f.ContactName,
		ContactEmail: &f.ContactEmail,
		ContactPhone: &f.ContactPhone,
		GuestCounts:  &domain.GuestCountsPatch{Adults: &adults, Children: &children},
	}
}

func strp(s string) *string { return &s }

// ---- sample data ----

func tour(id, title string, adult, rating float64, d domain.Difficulty) domain.CatalogItem {
	return domain.CatalogItem{
		ID: id, Kind: domain.KindTour, Tab: domain.TabTours, Title: title,
		Rating: rating, Images: []domain.Image{}, Category: "trekking",
		Tour: &domain.TourDetails{Price: domain.TourPrice{Adult: adult, Currency: "USD"}, Difficulty: d},
	}
}

func event(id string, rating float64) domain.CatalogItem {
	return domain.CatalogItem{
		ID: id, Kind: domain.KindActivity, Tab: domain.TabEvents, Title: "Event " + id,
		Rating: rating, Images: []domain.Image{}, Category: "festival",
		Activity: &domain.ActivityDetails{Price: domain.Money{Amount: 100, Currency: "USD"}},
	}
}

func sampleItems() []domain.CatalogItem {
	return []domain.CatalogItem{
		tour("1", "Everest Base Camp", 1500, 4.8, domain.DifficultyChallenging),
		tour("2", "Annapurna Circuit", 1200, 4.7, domain.DifficultyModerate),
		tour("3", "Chitwan Safari", 350, 4.5, domain.DifficultyEasy),
		event("ev1", 4.8), event("ev2", 4.7), event("ev3", 4.6),
	}
}
