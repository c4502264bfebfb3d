// Package postgres implements the subscription store against PostgreSQL
// using database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/subscription"
)

// pq error class 23505 is unique_violation.
const uniqueViolation = "23505"

// SubscriptionStore implements subscription.Repository.
type SubscriptionStore struct{ db *sql.DB }

// NewSubscriptionStore creates a Postgres-backed subscription store.
func NewSubscriptionStore(db *sql.DB) *SubscriptionStore { return &SubscriptionStore{db: db} }

func (s *SubscriptionStore) Begin(ctx context.Context) (subscription.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w: %v", subscription.ErrUnavailable, err)
	}
	return &subscriptionTx{tx: tx}, nil
}

func (s *SubscriptionStore) FindSubscriberByToken(ctx context.Context, token string) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		SELECT subscriber_id FROM subscription_tokens
		WHERE subscription_token = $1
	`, token).Scan(&id)
	if err == sql.ErrNoRows {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("find subscriber by token: %w: %v", subscription.ErrUnavailable, err)
	}
	return id, true, nil
}

func (s *SubscriptionStore) MarkConfirmed(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions SET status = $1 WHERE id = $2
	`, domain.StatusConfirmed, id)
	if err != nil {
		return fmt.Errorf("mark confirmed: %w: %v", subscription.ErrUnavailable, err)
	}
	return nil
}

// subscriptionTx implements subscription.Tx over a sql.Tx.
type subscriptionTx struct{ tx *sql.Tx }

func (t *subscriptionTx) InsertSubscriber(ctx context.Context, sub domain.NewSubscriber) (uuid.UUID, error) {
	id := uuid.New()
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO subscriptions (id, email, name, subscribed_at, status)
		VALUES ($1, $2, $3, $4, $5)
	`, id, sub.Email.String(), sub.Name.String(), time.Now().UTC(), domain.StatusPendingConfirmation)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert subscriber: %w: %v", classify(err), err)
	}
	return id, nil
}

func (t *subscriptionTx) StoreToken(ctx context.Context, subscriberID uuid.UUID, token string) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO subscription_tokens (subscription_token, subscriber_id)
		VALUES ($1, $2)
	`, token, subscriberID)
	if err != nil {
		return fmt.Errorf("store token: %w: %v", classify(err), err)
	}
	return nil
}

func (t *subscriptionTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w: %v", subscription.ErrUnavailable, err)
	}
	return nil
}

// Rollback after Commit is a no-op so it can sit in a defer.
func (t *subscriptionTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback: %w: %v", subscription.ErrUnavailable, err)
	}
	return nil
}

// classify maps driver errors onto the repository sentinels.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return subscription.ErrConflict
	}
	return subscription.ErrUnavailable
}
