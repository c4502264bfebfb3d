package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriberStatus enumerates the states a subscriber can be in.
// The only legal transition is pending_confirmation → confirmed.
type SubscriberStatus string

const (
	StatusPendingConfirmation SubscriberStatus = "pending_confirmation"
	StatusConfirmed           SubscriberStatus = "confirmed"
)

// NewSubscriber is a validated (name, email) pair produced from raw form
// input. It has no identity of its own; the store assigns one at insert.
type NewSubscriber struct {
	Name  SubscriberName
	Email SubscriberEmail
}

// Subscriber is the persisted record. ID, SubscribedAt and Email are
// immutable after insertion; Status only ever moves forward.
type Subscriber struct {
	ID           uuid.UUID        `json:"id"`
	Email        string           `json:"email"`
	Name         string           `json:"name"`
	SubscribedAt time.Time        `json:"subscribed_at"`
	Status       SubscriberStatus `json:"status"`
}
