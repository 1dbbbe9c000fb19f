package catalogapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"wildtrail/internal/adapters/catalogapi"
	"wildtrail/internal/domain"
)

func TestClient_FetchCatalog_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalog/events" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Errorf("missing api key header")
		}
		switch atomic.AddInt32(&hits, 1) {
		case 1:
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusBadGateway)
		default:
			_ = json.NewEncoder(w).Encode([]map[string]any{{"id": "ev1"}, {"id": "ev2"}})
		}
	}))
	defer ts.Close()

	cl, err := catalogapi.New(ts.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	got, err := cl.FetchCatalog(ctx, domain.TabEvents)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 || got[0]["id"] != "ev1" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected 3 calls due to retries, got %d", hits)
	}
}

func TestClient_FetchCatalog_Envelope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"id":"h1","name":"Ghandruk"}]}`))
	}))
	defer ts.Close()

	cl, _ := catalogapi.New(ts.URL, "k", 100)
	got, err := cl.FetchCatalog(context.Background(), domain.TabHomestay)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0]["name"] != "Ghandruk" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestClient_FetchCatalog_404FallsBackThenNotFound(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.NotFound(w, r)
	}))
	defer ts.Close()

	cl, _ := catalogapi.New(ts.URL, "k", 100)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := cl.FetchCatalog(ctx, domain.TabTours)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if hits != 2 {
		t.Fatalf("expected both candidate URLs to be tried, got %d calls", hits)
	}
}

func TestClient_SubmitBooking(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/bookings" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Idempotency-Key") != "ref-1" {
			t.Errorf("idempotency key = %q", r.Header.Get("Idempotency-Key"))
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["reference"] != "ref-1" || body["itemId"] != "3" || body["itemType"] != "tour" {
			t.Errorf("unexpected body: %+v", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"BK-900"}`))
	}))
	defer ts.Close()

	cl, _ := catalogapi.New(ts.URL, "k", 100)
	d := domain.BookingDraft{ItemID: "3", ItemType: domain.KindTour, ContactName: "A", GuestCounts: domain.GuestCounts{Adults: 1}}
	id, err := cl.SubmitBooking(context.Background(), "ref-1", d)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if id != "BK-900" {
		t.Fatalf("remote id = %q", id)
	}
}

func TestClient_SubmitBooking_RejectedIsNotRetried(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"item sold out"}`))
	}))
	defer ts.Close()

	cl, _ := catalogapi.New(ts.URL, "k", 100)
	_, err := cl.SubmitBooking(context.Background(), "ref-2", domain.BookingDraft{ItemID: "ev1"})
	if !errors.Is(err, catalogapi.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected a single call, got %d", hits)
	}
}

func TestNew_RequiresBaseAndKey(t *testing.T) {
	if _, err := catalogapi.New("", "k", 1); err == nil {
		t.Fatalf("expected error for empty base")
	}
	if _, err := catalogapi.New("http://x", "", 1); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
