package subscription

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignite/newsletter/internal/domain"
)

// Repository is the persistence boundary for subscribers and their
// confirmation tokens. Implementations report failures through the
// sentinel errors in this package.
type Repository interface {
	// Begin opens an atomic unit of work. The returned Tx is owned
	// exclusively by the saga that opened it.
	Begin(ctx context.Context) (Tx, error)

	// FindSubscriberByToken resolves a token to its owning subscriber.
	// ok is false when the token was never issued.
	FindSubscriberByToken(ctx context.Context, token string) (id uuid.UUID, ok bool, err error)

	// MarkConfirmed transitions a subscriber to confirmed. Confirming an
	// already-confirmed subscriber is a no-op success.
	MarkConfirmed(ctx context.Context, id uuid.UUID) error
}

// Tx groups the writes of a single intake attempt. Either Commit makes
// them all visible or Rollback discards them; Rollback after Commit is a
// harmless no-op so it can run in a defer.
type Tx interface {
	// InsertSubscriber creates a pending subscriber and returns its
	// freshly generated id. ErrConflict when the email already exists.
	InsertSubscriber(ctx context.Context, sub domain.NewSubscriber) (uuid.UUID, error)

	// StoreToken links a confirmation token to a subscriber.
	// ErrConflict on token collision.
	StoreToken(ctx context.Context, subscriberID uuid.UUID, token string) error

	Commit() error
	Rollback() error
}
