package domain

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

type MessageKind string

const (
	MessageContact MessageKind = "contact"
	MessageJoin    MessageKind = "join"
)

// ContactMessage is a submission of the public contact or join form.
type ContactMessage struct {
	ID        int64       `json:"id,omitempty"`
	Kind      MessageKind `json:"kind"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone,omitempty"`
	Subject   string      `json:"subject,omitempty"`
	Message   string      `json:"message"`
	CreatedAt time.Time   `json:"createdAt,omitempty"`
}

const (
	maxNameLen    = 100
	maxEmailLen   = 254
	maxPhoneLen   = 30
	maxSubjectLen = 150
	maxMessageLen = 2000
)

var phoneRe = regexp.MustCompile(`^\+?[0-9 ()\-]+$`)

func (m *ContactMessage) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Phone = strings.TrimSpace(m.Phone)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)
	if m.Kind == "" {
		m.Kind = MessageContact
	}
}

// Validate reports every failing field: missing required field, field too long,
// or invalid email format.
func (m ContactMessage) Validate() error {
	ve := &ValidationError{}
	if m.Kind != MessageContact && m.Kind != MessageJoin {
		ve.add("kind", ReasonInvalid)
	}
	checkText(ve, "name", m.Name, true, maxNameLen)
	checkEmail(ve, "email", m.Email, true)
	checkText(ve, "subject", m.Subject, false, maxSubjectLen)
	checkText(ve, "message", m.Message, m.Kind == MessageContact, maxMessageLen)
	if m.Phone != "" {
		checkPhone(ve, "phone", m.Phone)
	}
	return ve.orNil()
}

func checkText(ve *ValidationError, field, v string, required bool, max int) {
	if v == "" {
		if required {
			ve.add(field, ReasonRequired)
		}
		return
	}
	if utf8.RuneCountInString(v) > max {
		ve.add(field, ReasonTooLong)
	}
}

func checkEmail(ve *ValidationError, field, v string, required bool) {
	if v == "" {
		if required {
			ve.add(field, ReasonRequired)
		}
		return
	}
	if len(v) > maxEmailLen {
		ve.add(field, ReasonTooLong)
		return
	}
	if !ValidEmail(v) {
		ve.add(field, ReasonInvalidEmail)
	}
}

func checkPhone(ve *ValidationError, field, v string) {
	if len(v) > maxPhoneLen {
		ve.add(field, ReasonTooLong)
		return
	}
	digits := 0
	for _, r := range v {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if !phoneRe.MatchString(v) || digits < 6 || digits > 20 {
		ve.add(field, ReasonInvalidPhone)
	}
}

// ValidEmail accepts a bare addr-spec with a dotted domain ("a@b.com", not "Name <a@b.com>").
func ValidEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	if err != nil || a.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && strings.Contains(s[at+1:], ".")
}
