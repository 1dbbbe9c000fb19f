package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrSessionNotFound = errors.New("browse session not found or expired")
	ErrUnknownTab      = errors.New("unknown tab")
	ErrInvalidFilter   = errors.New("invalid filter")
	ErrNoBooking       = errors.New("no booking in progress")
	ErrSessionBusy     = errors.New("browse session is being updated")
	ErrBookingsClosed  = errors.New("bookings are currently closed")
	ErrUpstream        = errors.New("upstream service failed")
)

// Field failure reasons, shared by the contact form and the booking draft.
const (
	ReasonRequired     = "required"
	ReasonTooLong      = "too_long"
	ReasonInvalidEmail = "invalid_email"
	ReasonInvalidPhone = "invalid_phone"
	ReasonInvalid      = "invalid"
)

// ValidationError carries one reason per failing field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) add(field, reason string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, dup := e.Fields[field]; !dup {
		e.Fields[field] = reason
	}
}

// NewFieldError builds a single-field ValidationError.
func NewFieldError(field, reason string) *ValidationError {
	ve := &ValidationError{}
	ve.add(field, reason)
	return ve
}

// orNil keeps a typed nil from escaping as a non-nil error.
func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
