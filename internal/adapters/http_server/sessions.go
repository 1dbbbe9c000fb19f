package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"wildtrail/internal/app"
	"wildtrail/internal/domain"
)

// Browse session endpoints. Every mutation answers with the full session view.

func (h *Handlers) respondView(w http.ResponseWriter, r *http.Request, v app.SessionView, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handlers) startSession(w http.ResponseWriter, r *http.Request) {
	v, err := h.Browse.Start(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/sessions/"+v.ID)
	writeJSON(w, http.StatusCreated, v)
}

func (h *Handlers) viewSession(w http.ResponseWriter, r *http.Request) {
	v, err := h.Browse.View(r.Context(), chi.URLParam(r, "id"))
	h.respondView(w, r, v, err)
}

func (h *Handlers) switchTab(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tab string `json:"tab"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	tab, err := domain.ParseTab(body.Tab)
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.Browse.SwitchTab(r.Context(), chi.URLParam(r, "id"), tab)
	h.respondView(w, r, v, err)
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query     string           `json:"query"`
		DateRange domain.DateRange `json:"dateRange"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	v, err := h.Browse.Search(r.Context(), chi.URLParam(r, "id"), body.Query, body.DateRange)
	h.respondView(w, r, v, err)
}

func (h *Handlers) updateFilter(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key   domain.FilterKey `json:"key"`
		Value string           `json:"value"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	v, err := h.Browse.UpdateFilter(r.Context(), chi.URLParam(r, "id"), body.Key, body.Value)
	h.respondView(w, r, v, err)
}

func (h *Handlers) clearFilters(w http.ResponseWriter, r *http.Request) {
	v, err := h.Browse.ClearFilters(r.Context(), chi.URLParam(r, "id"))
	h.respondView(w, r, v, err)
}

func (h *Handlers) openBooking(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ItemID string `json:"itemId"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.ItemID == "" {
		writeError(w, r, domain.NewFieldError("itemId", domain.ReasonRequired))
		return
	}
	v, err := h.Browse.OpenBooking(r.Context(), chi.URLParam(r, "id"), body.ItemID)
	h.respondView(w, r, v, err)
}

// updateBooking is a merge patch: fields left out of the body keep their values.
func (h *Handlers) updateBooking(w http.ResponseWriter, r *http.Request) {
	var p domain.BookingPatch
	if !decodeBody(w, r, &p) {
		return
	}
	v, err := h.Browse.UpdateBooking(r.Context(), chi.URLParam(r, "id"), p)
	h.respondView(w, r, v, err)
}

func (h *Handlers) cancelBooking(w http.ResponseWriter, r *http.Request) {
	v, err := h.Browse.CancelBooking(r.Context(), chi.URLParam(r, "id"))
	h.respondView(w, r, v, err)
}

type confirmResponse struct {
	Reference string               `json:"reference"`
	Status    domain.BookingStatus `json:"status"`
	Draft     domain.BookingDraft  `json:"draft"`
	Session   app.SessionView      `json:"session"`
}

func (h *Handlers) confirmBooking(w http.ResponseWriter, r *http.Request) {
	rec, v, err := h.Browse.ConfirmBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, confirmResponse{
		Reference: rec.Reference,
		Status:    rec.Status,
		Draft:     rec.Draft,
		Session:   v,
	})
}
