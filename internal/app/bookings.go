package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"wildtrail/internal/adapters/observability"
	"wildtrail/internal/domain"
)

// BookingService takes confirmed drafts off the browse flow: it forwards them
// to the remote booking API when one is configured and keeps a local record.
type BookingService struct {
	repo      domain.BookingRepository
	submitter domain.BookingSubmitter // nil when no remote booking API is configured
	now       func() time.Time
}

func NewBookingService(r domain.BookingRepository, sub domain.BookingSubmitter) *BookingService {
	return &BookingService{repo: r, submitter: sub, now: time.Now}
}

// Submit rejects drafts whose dates are not YYYY-MM-DD before anything leaves
// the process.
func (s *BookingService) Submit(ctx context.Context, tab domain.Tab, d domain.BookingDraft) (domain.BookingRecord, error) {
	if err := d.DateRange.Validate(); err != nil {
		return domain.BookingRecord{}, err
	}
	rec := domain.BookingRecord{
		Reference: uuid.NewString(),
		Tab:       tab,
		Draft:     d,
		Status:    domain.BookingReceived,
		CreatedAt: s.now().UTC(),
	}
	if s.submitter != nil {
		ext, err := s.submitter.SubmitBooking(ctx, rec.Reference, d)
		if err != nil {
			observability.ObserveBooking("failed")
			return domain.BookingRecord{}, fmt.Errorf("%w: submit booking %s: %w", domain.ErrUpstream, rec.Reference, err)
		}
		rec.Status, rec.ExternalRef = domain.BookingSubmitted, ext
	}
	if err := s.repo.SaveBooking(ctx, rec); err != nil {
		// already accepted remotely: log and carry on
		if rec.Status == domain.BookingSubmitted {
			log.Error().Err(err).Str("reference", rec.Reference).Msg("save submitted booking failed")
		} else {
			return domain.BookingRecord{}, fmt.Errorf("save booking %s: %w", rec.Reference, err)
		}
	}
	observability.ObserveBooking(string(rec.Status))
	log.Info().
		Str("reference", rec.Reference).
		Str("item", d.ItemID).
		Str("type", string(d.ItemType)).
		Str("status", string(rec.Status)).
		Msg("booking draft accepted")
	return rec, nil
}

func (s *BookingService) List(ctx context.Context, pg domain.PageQuery) ([]domain.BookingRecord, error) {
	return s.repo.ListBookings(ctx, pg)
}
