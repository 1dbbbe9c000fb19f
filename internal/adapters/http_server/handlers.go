package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"wildtrail/internal/app"
	"wildtrail/internal/browse"
	"wildtrail/internal/domain"
)

type Handlers struct {
	Catalog  *app.CatalogService
	Browse   *app.BrowseService
	Bookings *app.BookingService
	Contact  *app.ContactService
	Settings app.SiteSettingsSource

	// Ready reports whether backing stores answer; nil means always ready.
	Ready func(ctx context.Context) error
}

type RouteOptions struct {
	AdminTokenHash string
	ContactRPM     int
}

type problem struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers, opt RouteOptions) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/readyz", h.ready)

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/settings", h.getSettings)

		r.Get("/catalog/{tab}", h.listCatalog)
		r.Get("/catalog/{tab}/options", h.catalogOptions)
		r.Get("/catalog/{tab}/{id}", h.getItem)

		r.Post("/sessions", h.startSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", h.viewSession)
			r.Put("/tab", h.switchTab)
			r.Post("/search", h.search)
			r.Patch("/filters", h.updateFilter)
			r.Delete("/filters", h.clearFilters)
			r.Post("/booking", h.openBooking)
			r.Patch("/booking", h.updateBooking)
			r.Delete("/booking", h.cancelBooking)
			r.Post("/booking/confirm", h.confirmBooking)
		})

		r.With(NewIPLimiter(opt.ContactRPM).Middleware).Post("/contact", h.submitContact)

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminOnly(opt.AdminTokenHash))
			r.Get("/messages", h.listMessages)
			r.Get("/bookings", h.listBookings)
		})
	})
}

/********** response helpers **********/

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeProblemBody(w, problem{
			Type: "about:blank", Title: "Validation Failed", Status: http.StatusUnprocessableEntity,
			Detail: "one or more fields are invalid", Errors: ve.Fields,
		})
	case errors.Is(err, domain.ErrSessionNotFound):
		writeProblem(w, http.StatusNotFound, "Session Not Found", "start a new browse session")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrUnknownTab), errors.Is(err, domain.ErrInvalidFilter):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, domain.ErrSessionBusy):
		w.Header().Set("Retry-After", "1")
		writeProblem(w, http.StatusConflict, "Session Busy", "another update of this session is in progress")
	case errors.Is(err, domain.ErrNoBooking):
		writeProblem(w, http.StatusConflict, "No Booking In Progress", "open a booking form first")
	case errors.Is(err, domain.ErrBookingsClosed):
		writeProblem(w, http.StatusServiceUnavailable, "Bookings Closed", err.Error())
	case errors.Is(err, domain.ErrUpstream):
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("upstream failure")
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", "the booking service did not accept the request, try again")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeProblem(w, http.StatusServiceUnavailable, "Unavailable", "request timed out")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write cached body")
	}
}

// decodeBody reads a small JSON body into dst; malformed input is a 400.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, 64<<10))
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "request body must be a JSON object")
		return false
	}
	return true
}

func tabParam(w http.ResponseWriter, r *http.Request) (domain.Tab, bool) {
	t, err := domain.ParseTab(chi.URLParam(r, "tab"))
	if err != nil {
		writeError(w, r, err)
		return "", false
	}
	return t, true
}

func pageParams(w http.ResponseWriter, r *http.Request) (domain.PageQuery, bool) {
	pg := domain.PageQuery{Limit: 50}
	q := r.URL.Query()
	if ls := q.Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return pg, false
		}
		pg.Limit = l
	}
	if offs := q.Get("offset"); offs != "" {
		o, err := strconv.Atoi(offs)
		if err != nil || o < 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid offset", "offset must be a non-negative integer")
			return pg, false
		}
		pg.Offset = o
	}
	return pg, true
}

/********** public catalog **********/

func (h *Handlers) ready(w http.ResponseWriter, r *http.Request) {
	if h.Ready != nil {
		if err := h.Ready(r.Context()); err != nil {
			log.Warn().Err(err).Msg("readiness check failed")
			writeProblem(w, http.StatusServiceUnavailable, "Not Ready", "")
			return
		}
	}
	w.WriteHeader(200)
	_, _ = w.Write([]byte("ready"))
}

func (h *Handlers) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Settings.Site())
}

type catalogPage struct {
	Tab          domain.Tab         `json:"tab"`
	Filter       domain.FilterState `json:"filter"`
	Query        string             `json:"query"`
	Count        int                `json:"count"`
	CountMessage string             `json:"countMessage"`
	Items        []app.ItemCard     `json:"items"`
}

// listCatalog is the stateless listing: filter keys and q come from the query string.
func (h *Handlers) listCatalog(w http.ResponseWriter, r *http.Request) {
	tab, ok := tabParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	sb := browse.NewFilterSidebar(tab, domain.DefaultFilterState(), nil)
	for _, k := range domain.FilterKeys {
		if !q.Has(string(k)) {
			continue
		}
		if err := sb.UpdateFilter(k, q.Get(string(k))); err != nil {
			writeError(w, r, err)
			return
		}
	}
	items, err := h.Catalog.List(r.Context(), tab, sb.State(), q.Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, catalogPage{
		Tab:          tab,
		Filter:       sb.State(),
		Query:        q.Get("q"),
		Count:        len(items),
		CountMessage: domain.CountMessage(tab, len(items)),
		Items:        app.Cards(items),
	})
}

func (h *Handlers) catalogOptions(w http.ResponseWriter, r *http.Request) {
	tab, ok := tabParam(w, r)
	if !ok {
		return
	}
	writeCached(w, r, domain.OptionsFor(tab))
}

func (h *Handlers) getItem(w http.ResponseWriter, r *http.Request) {
	tab, ok := tabParam(w, r)
	if !ok {
		return
	}
	it, err := h.Catalog.Item(r.Context(), tab, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, it)
}

/********** contact + admin **********/

func (h *Handlers) submitContact(w http.ResponseWriter, r *http.Request) {
	var m domain.ContactMessage
	if !decodeBody(w, r, &m) {
		return
	}
	m.ID = 0
	saved, err := h.Contact.Submit(r.Context(), m)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":        saved.ID,
		"kind":      saved.Kind,
		"createdAt": saved.CreatedAt,
	})
}

func (h *Handlers) listMessages(w http.ResponseWriter, r *http.Request) {
	pg, ok := pageParams(w, r)
	if !ok {
		return
	}
	out, err := h.Contact.List(r.Context(), pg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	pg, ok := pageParams(w, r)
	if !ok {
		return
	}
	out, err := h.Bookings.List(r.Context(), pg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}
