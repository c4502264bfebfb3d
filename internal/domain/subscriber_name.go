package domain

import (
	"errors"
	"strings"

	"github.com/rivo/uniseg"
)

// MaxNameGraphemes caps subscriber names at 256 user-perceived characters.
// Grapheme clusters, not bytes: "ё" repeated 256 times is a valid name.
const MaxNameGraphemes = 256

var (
	ErrNameEmpty         = errors.New("subscriber name is empty")
	ErrNameTooLong       = errors.New("subscriber name exceeds 256 characters")
	ErrNameForbiddenChar = errors.New("subscriber name contains a forbidden character")
)

const forbiddenNameChars = `/()"<>\{}`

// SubscriberName is a validated subscriber display name.
type SubscriberName struct {
	value string
}

// ParseSubscriberName validates a raw name string. It fails when the
// trimmed string is empty, the name exceeds MaxNameGraphemes grapheme
// clusters, or any forbidden character is present. The stored value is
// the raw input, not the trimmed one.
func ParseSubscriberName(raw string) (SubscriberName, error) {
	if strings.TrimSpace(raw) == "" {
		return SubscriberName{}, ErrNameEmpty
	}
	if uniseg.GraphemeClusterCount(raw) > MaxNameGraphemes {
		return SubscriberName{}, ErrNameTooLong
	}
	if strings.ContainsAny(raw, forbiddenNameChars) {
		return SubscriberName{}, ErrNameForbiddenChar
	}
	return SubscriberName{value: raw}, nil
}

// String returns the validated name.
func (n SubscriberName) String() string { return n.value }
