package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"golang.org/x/crypto/bcrypt"

	httpserver "wildtrail/internal/adapters/http_server"
	redisad "wildtrail/internal/adapters/redis"
	"wildtrail/internal/app"
	"wildtrail/internal/domain"
	"wildtrail/internal/shared"
)

// memStore backs the catalog, bookings and messages with plain slices.
type memStore struct {
	mu       sync.Mutex
	items    map[domain.Tab][]domain.CatalogItem
	bookings []domain.BookingRecord
	messages []domain.ContactMessage
}

func (m *memStore) UpsertItem(_ context.Context, it domain.CatalogItem, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[it.Tab] = append(m.items[it.Tab], it)
	return nil
}

func (m *memStore) GetItem(_ context.Context, tab domain.Tab, id string) (domain.CatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items[tab] {
		if it.ID == id {
			return it, nil
		}
	}
	return domain.CatalogItem{}, domain.ErrNotFound
}

func (m *memStore) ListByTab(_ context.Context, tab domain.Tab) ([]domain.CatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CatalogItem(nil), m.items[tab]...), nil
}

func (m *memStore) SaveBooking(_ context.Context, b domain.BookingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = append(m.bookings, b)
	return nil
}

func (m *memStore) ListBookings(context.Context, domain.PageQuery) ([]domain.BookingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.BookingRecord(nil), m.bookings...), nil
}

func (m *memStore) SaveMessage(_ context.Context, msg domain.ContactMessage) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return int64(len(m.messages)), nil
}

func (m *memStore) ListMessages(context.Context, domain.PageQuery) ([]domain.ContactMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ContactMessage(nil), m.messages...), nil
}

const adminToken = "s3cret-admin"

func newTestServer(t *testing.T, opt httpserver.RouteOptions) (http.Handler, *memStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redisad.NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rc.Close() })

	store := &memStore{items: map[domain.Tab][]domain.CatalogItem{}}
	if _, err := app.SeedCatalog(context.Background(), store, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	catalog := app.NewCatalogService(store, redisad.New(rc), time.Minute)
	bookings := app.NewBookingService(store, nil)
	settings := shared.NewSettings(domain.SiteSettings{Title: "Wild Trail", BookingsOpen: true})
	h := &httpserver.Handlers{
		Catalog:  catalog,
		Browse:   app.NewBrowseService(catalog, redisad.NewSessionStore(rc), bookings, settings, 30*time.Minute),
		Bookings: bookings,
		Contact:  app.NewContactService(store),
		Settings: settings,
	}
	s := httpserver.New([]string{"*"})
	s.MountHandlers(h, opt)
	return s.Mux(), store
}

func adminHash(t *testing.T) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(b)
}

func do(t *testing.T, h http.Handler, method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

type problemBody struct {
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func TestCatalogListing_FiltersAndETag(t *testing.T) {
	h, _ := newTestServer(t, httpserver.RouteOptions{ContactRPM: 5})

	rec := do(t, h, "GET", "/v1/catalog/tours?priceCeiling=1000", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	page := decode[struct {
		Count        int            `json:"count"`
		CountMessage string         `json:"countMessage"`
		Items        []app.ItemCard `json:"items"`
	}](t, rec)
	if page.CountMessage != "1 tour found" || page.Items[0].ID != "3" {
		t.Fatalf("page = %+v", page)
	}

	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}
	rec = do(t, h, "GET", "/v1/catalog/tours?priceCeiling=1000", "", "If-None-Match", etag)
	if rec.Code != http.StatusNotModified {
		t.Fatalf("conditional GET = %d", rec.Code)
	}
}

func TestCatalogListing_Errors(t *testing.T) {
	h, _ := newTestServer(t, httpserver.RouteOptions{ContactRPM: 5})

	rec := do(t, h, "GET", "/v1/catalog/tours?priceCeiling=1025", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("off-step price = %d", rec.Code)
	}
	if p := decode[problemBody](t, rec); p.Errors["priceCeiling"] != domain.ReasonInvalid {
		t.Fatalf("problem = %+v", p)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type %q", ct)
	}

	if rec := do(t, h, "GET", "/v1/catalog/blog", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown tab = %d", rec.Code)
	}
	if rec := do(t, h, "GET", "/v1/catalog/tours?minRating=high", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed rating = %d", rec.Code)
	}
	if rec := do(t, h, "GET", "/v1/catalog/tours/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing item = %d", rec.Code)
	}
	if rec := do(t, h, "GET", "/v1/catalog/events/options", ""); rec.Code != http.StatusOK {
		t.Fatalf("options = %d", rec.Code)
	}
}

func TestSessionFlow(t *testing.T) {
	h, store := newTestServer(t, httpserver.RouteOptions{ContactRPM: 5})

	rec := do(t, h, "POST", "/v1/sessions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("start = %d: %s", rec.Code, rec.Body)
	}
	v := decode[app.SessionView](t, rec)
	if rec.Header().Get("Location") != "/v1/sessions/"+v.ID || v.CountMessage != "3 tours found" {
		t.Fatalf("start view = %+v", v)
	}
	base := "/v1/sessions/" + v.ID

	rec = do(t, h, "PATCH", base+"/filters", `{"key":"priceCeiling","value":"1000"}`)
	if v = decode[app.SessionView](t, rec); rec.Code != 200 || v.CountMessage != "1 tour found" {
		t.Fatalf("filter = %d %+v", rec.Code, v)
	}

	rec = do(t, h, "PATCH", base+"/filters", `{"key":"priceCeiling","value":"1025"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad filter = %d", rec.Code)
	}
	if v = decode[app.SessionView](t, do(t, h, "GET", base, "")); v.Filter.PriceCeiling != 1000 {
		t.Fatalf("rejected filter changed the session: %+v", v.Filter)
	}

	rec = do(t, h, "PUT", base+"/tab", `{"tab":"events"}`)
	if v = decode[app.SessionView](t, rec); v.ActiveTab != domain.TabEvents || v.Filter != domain.DefaultFilterState() {
		t.Fatalf("events view = %+v", v)
	}
	if rec := do(t, h, "PUT", base+"/tab", `{"tab":"blog"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown tab = %d", rec.Code)
	}
	do(t, h, "PUT", base+"/tab", `{"tab":"tours"}`)

	if rec := do(t, h, "PATCH", base+"/booking", `{"contactName":"A"}`); rec.Code != http.StatusConflict {
		t.Fatalf("update without form = %d", rec.Code)
	}
	rec = do(t, h, "POST", base+"/booking", `{"itemId":"3"}`)
	if v = decode[app.SessionView](t, rec); v.Booking == nil || v.Booking.ItemType != domain.KindTour {
		t.Fatalf("open = %d %+v", rec.Code, v.Booking)
	}

	rec = do(t, h, "POST", base+"/booking/confirm", "")
	if p := decode[problemBody](t, rec); rec.Code != 422 || p.Errors["contactName"] != domain.ReasonRequired {
		t.Fatalf("empty confirm = %d %+v", rec.Code, p)
	}

	do(t, h, "PATCH", base+"/booking", `{"contactName":"A","contactEmail":"a@b.com","guestCounts":{"adults":1,"children":0}}`)
	rec = do(t, h, "POST", base+"/booking/confirm", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("confirm = %d: %s", rec.Code, rec.Body)
	}
	out := decode[struct {
		Reference string               `json:"reference"`
		Status    domain.BookingStatus `json:"status"`
		Draft     domain.BookingDraft  `json:"draft"`
		Session   app.SessionView      `json:"session"`
	}](t, rec)
	if out.Status != domain.BookingReceived || out.Draft.ItemID != "3" || out.Session.Booking != nil {
		t.Fatalf("confirm body = %+v", out)
	}
	if len(store.bookings) != 1 || store.bookings[0].Reference != out.Reference {
		t.Fatalf("stored bookings = %+v", store.bookings)
	}

	if rec := do(t, h, "GET", "/v1/sessions/does-not-exist", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown session = %d", rec.Code)
	}
	if rec := do(t, h, "POST", base+"/search", `not json`); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body = %d", rec.Code)
	}
}

func TestContact_ValidationAndRateLimit(t *testing.T) {
	h, store := newTestServer(t, httpserver.RouteOptions{ContactRPM: 2})

	if rec := do(t, h, "POST", "/v1/contact", `{"name":"","email":"nope"}`); rec.Code != 422 {
		t.Fatalf("invalid contact = %d", rec.Code)
	} else if p := decode[problemBody](t, rec); p.Errors["email"] != domain.ReasonInvalidEmail || p.Errors["name"] != domain.ReasonRequired {
		t.Fatalf("problem = %+v", p)
	}
	if rec := do(t, h, "POST", "/v1/contact", `{"name":"Sita","email":"sita@example.com","message":"Namaste"}`); rec.Code != http.StatusCreated {
		t.Fatalf("contact = %d: %s", rec.Code, rec.Body)
	}
	rec := do(t, h, "POST", "/v1/contact", `{"name":"Sita","email":"sita@example.com","message":"again"}`)
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Fatalf("third request = %d", rec.Code)
	}
	if len(store.messages) != 1 {
		t.Fatalf("stored %d messages", len(store.messages))
	}
}

func TestAdminRoutes(t *testing.T) {
	h, _ := newTestServer(t, httpserver.RouteOptions{ContactRPM: 5, AdminTokenHash: adminHash(t)})

	if rec := do(t, h, "GET", "/v1/admin/messages", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous = %d", rec.Code)
	}
	if rec := do(t, h, "GET", "/v1/admin/bookings", "", "Authorization", "Bearer wrong"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token = %d", rec.Code)
	}
	if rec := do(t, h, "GET", "/v1/admin/bookings?limit=10", "", "Authorization", "Bearer "+adminToken); rec.Code != http.StatusOK {
		t.Fatalf("admin = %d: %s", rec.Code, rec.Body)
	}
	if rec := do(t, h, "GET", "/v1/admin/bookings?limit=500", "", "Authorization", "Bearer "+adminToken); rec.Code != http.StatusBadRequest {
		t.Fatalf("limit out of range = %d", rec.Code)
	}

	off, _ := newTestServer(t, httpserver.RouteOptions{ContactRPM: 5})
	if rec := do(t, off, "GET", "/v1/admin/messages", "", "Authorization", "Bearer "+adminToken); rec.Code != http.StatusNotFound {
		t.Fatalf("admin disabled = %d", rec.Code)
	}
}

func TestHealthAndSettings(t *testing.T) {
	h, _ := newTestServer(t, httpserver.RouteOptions{ContactRPM: 5})
	if rec := do(t, h, "GET", "/healthz", ""); rec.Code != 200 {
		t.Fatalf("healthz = %d", rec.Code)
	}
	if rec := do(t, h, "GET", "/readyz", ""); rec.Code != 200 {
		t.Fatalf("readyz = %d", rec.Code)
	}
	s := decode[domain.SiteSettings](t, do(t, h, "GET", "/v1/settings", ""))
	if s.Title != "Wild Trail" || !s.BookingsOpen {
		t.Fatalf("settings = %+v", s)
	}
}

func TestSessionBooking_PatchMergesAndDatesAreChecked(t *testing.T) {
	h, _ := newTestServer(t, httpserver.RouteOptions{ContactRPM: 5})
	v := decode[app.SessionView](t, do(t, h, "POST", "/v1/sessions", ""))
	base := "/v1/sessions/" + v.ID

	rec := do(t, h, "POST", base+"/search", `{"query":"","dateRange":{"from":"next tuesday afternoon","to":"2026-12-01T10:00:00Z"}}`)
	if p := decode[problemBody](t, rec); rec.Code != 422 || p.Errors["dateRange.from"] != domain.ReasonInvalid || p.Errors["dateRange.to"] != domain.ReasonInvalid {
		t.Fatalf("non-ISO dates = %d %+v", rec.Code, p)
	}
	do(t, h, "POST", base+"/search", `{"query":"","dateRange":{"from":"2026-11-01","to":"2026-11-04"}}`)

	do(t, h, "POST", base+"/booking", `{"itemId":"3"}`)
	do(t, h, "PATCH", base+"/booking", `{"contactName":"A","guestCounts":{"adults":3,"children":2}}`)
	rec = do(t, h, "PATCH", base+"/booking", `{"contactEmail":"a@b.com"}`)
	v = decode[app.SessionView](t, rec)
	want := domain.BookingFields{ContactName: "A", ContactEmail: "a@b.com", GuestCounts: domain.GuestCounts{Adults: 3, Children: 2}}
	if rec.Code != 200 || v.Booking == nil || v.Booking.Fields != want {
		t.Fatalf("patched fields = %d %+v", rec.Code, v.Booking)
	}
}
