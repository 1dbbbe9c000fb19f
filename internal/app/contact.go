package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"wildtrail/internal/domain"
)

type ContactService struct {
	repo domain.MessageRepository
	now  func() time.Time
}

func NewContactService(r domain.MessageRepository) *ContactService {
	return &ContactService{repo: r, now: time.Now}
}

// Submit validates a contact or join form and stores it. Validation failures
// come back as *domain.ValidationError with one reason per field.
func (s *ContactService) Submit(ctx context.Context, m domain.ContactMessage) (domain.ContactMessage, error) {
	m.Normalize()
	if err := m.Validate(); err != nil {
		return domain.ContactMessage{}, err
	}
	m.CreatedAt = s.now().UTC()
	id, err := s.repo.SaveMessage(ctx, m)
	if err != nil {
		return domain.ContactMessage{}, err
	}
	m.ID = id
	log.Info().Int64("id", id).Str("kind", string(m.Kind)).Msg("message received")
	return m, nil
}

func (s *ContactService) List(ctx context.Context, pg domain.PageQuery) ([]domain.ContactMessage, error) {
	return s.repo.ListMessages(ctx, pg)
}
