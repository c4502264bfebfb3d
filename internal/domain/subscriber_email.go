package domain

import (
	"errors"
	"net/mail"
	"strings"
)

// ErrEmailInvalid is returned for any string that does not satisfy the
// email grammar checks below.
var ErrEmailInvalid = errors.New("invalid email address")

// SubscriberEmail is a validated email address.
type SubscriberEmail struct {
	value string
}

// ParseSubscriberEmail validates a raw email string against RFC-5322
// addr-spec syntax plus the structural rules transactional providers
// enforce: a dotted domain, no consecutive dots, and the usual length
// caps. The stored value is the raw input so it round-trips exactly.
func ParseSubscriberEmail(raw string) (SubscriberEmail, error) {
	if raw == "" || len(raw) > 254 {
		return SubscriberEmail{}, ErrEmailInvalid
	}

	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		// A display name or surrounding angle brackets means the input
		// was not a bare address.
		return SubscriberEmail{}, ErrEmailInvalid
	}

	local, dom, ok := strings.Cut(raw, "@")
	if !ok || len(local) == 0 || len(local) > 64 || len(dom) == 0 || len(dom) > 253 {
		return SubscriberEmail{}, ErrEmailInvalid
	}
	if !strings.Contains(dom, ".") {
		return SubscriberEmail{}, ErrEmailInvalid
	}
	if strings.Contains(raw, "..") {
		return SubscriberEmail{}, ErrEmailInvalid
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") ||
		strings.HasPrefix(dom, ".") || strings.HasSuffix(dom, ".") {
		return SubscriberEmail{}, ErrEmailInvalid
	}

	return SubscriberEmail{value: raw}, nil
}

// String returns the validated address.
func (e SubscriberEmail) String() string { return e.value }
