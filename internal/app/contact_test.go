package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"wildtrail/internal/app"
	"wildtrail/internal/domain"
)

func TestContactSubmit(t *testing.T) {
	repo := &memMessages{}
	s := app.NewContactService(repo)

	m, err := s.Submit(context.Background(), domain.ContactMessage{
		Name: "  Maya ", Email: "maya@example.org", Message: "Do you run tours in the monsoon?",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if m.ID != 1 || m.Kind != domain.MessageContact || m.Name != "Maya" || m.CreatedAt.IsZero() {
		t.Fatalf("saved = %+v", m)
	}

	_, err = s.Submit(context.Background(), domain.ContactMessage{
		Name: strings.Repeat("x", 101), Email: "not-an-email",
	})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	want := map[string]string{"name": "too_long", "email": "invalid_email", "message": "required"}
	for k, v := range want {
		if ve.Fields[k] != v {
			t.Fatalf("field %s = %q, want %q (all: %v)", k, ve.Fields[k], v, ve.Fields)
		}
	}
	if len(repo.msgs) != 1 {
		t.Fatalf("invalid message was stored")
	}

	// join requests need no message body
	if _, err := s.Submit(context.Background(), domain.ContactMessage{Kind: domain.MessageJoin, Name: "Ravi", Email: "ravi@example.org"}); err != nil {
		t.Fatalf("join: %v", err)
	}
}
