package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/subscription"
)

func setupTestDB(t *testing.T) (*SubscriptionStore, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return NewSubscriptionStore(db), mock, func() { db.Close() }
}

func mustNewSubscriber(t *testing.T, name, email string) domain.NewSubscriber {
	t.Helper()
	n, err := domain.ParseSubscriberName(name)
	if err != nil {
		t.Fatalf("parse name: %v", err)
	}
	e, err := domain.ParseSubscriberEmail(email)
	if err != nil {
		t.Fatalf("parse email: %v", err)
	}
	return domain.NewSubscriber{Name: n, Email: e}
}

func TestInsertSubscriberAndStoreToken(t *testing.T) {
	store, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO subscriptions`).
		WithArgs(sqlmock.AnyArg(), "fast@byte.bit", "fastbyte bit", sqlmock.AnyArg(), "pending_confirmation").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO subscription_tokens`).
		WithArgs("abcdefghijklmnopqrstuvwxy", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()

	id, err := tx.InsertSubscriber(ctx, mustNewSubscriber(t, "fastbyte bit", "fast@byte.bit"))
	if err != nil {
		t.Fatalf("insert subscriber: %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("insert subscriber returned a nil id")
	}
	if err := tx.StoreToken(ctx, id, "abcdefghijklmnopqrstuvwxy"); err != nil {
		t.Fatalf("store token: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestInsertSubscriberDuplicateEmail(t *testing.T) {
	store, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO subscriptions`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "subscriptions_email_key"})
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()

	_, err = tx.InsertSubscriber(ctx, mustNewSubscriber(t, "fastbyte bit", "fast@byte.bit"))
	if !errors.Is(err, subscription.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestInsertSubscriberInfrastructureFailure(t *testing.T) {
	store, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO subscriptions`).
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()

	_, err = tx.InsertSubscriber(ctx, mustNewSubscriber(t, "fastbyte bit", "fast@byte.bit"))
	if !errors.Is(err, subscription.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestStoreTokenCollision(t *testing.T) {
	store, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO subscription_tokens`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "subscription_tokens_pkey"})
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()

	err = tx.StoreToken(ctx, uuid.New(), "abcdefghijklmnopqrstuvwxy")
	if !errors.Is(err, subscription.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestFindSubscriberByToken(t *testing.T) {
	store, mock, cleanup := setupTestDB(t)
	defer cleanup()

	want := uuid.New()
	mock.ExpectQuery(`SELECT subscriber_id FROM subscription_tokens`).
		WithArgs("abcdefghijklmnopqrstuvwxy").
		WillReturnRows(sqlmock.NewRows([]string{"subscriber_id"}).AddRow(want.String()))

	id, ok, err := store.FindSubscriberByToken(context.Background(), "abcdefghijklmnopqrstuvwxy")
	if err != nil {
		t.Fatalf("find subscriber by token: %v", err)
	}
	if !ok {
		t.Fatal("ok = false, want true")
	}
	if id != want {
		t.Errorf("id = %s, want %s", id, want)
	}
}

func TestFindSubscriberByTokenUnknown(t *testing.T) {
	store, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT subscriber_id FROM subscription_tokens`).
		WithArgs("neverissuedtokenvalue1234").
		WillReturnRows(sqlmock.NewRows([]string{"subscriber_id"}))

	_, ok, err := store.FindSubscriberByToken(context.Background(), "neverissuedtokenvalue1234")
	if err != nil {
		t.Fatalf("find subscriber by token: %v", err)
	}
	if ok {
		t.Fatal("ok = true for a token that was never issued")
	}
}

func TestMarkConfirmed(t *testing.T) {
	store, mock, cleanup := setupTestDB(t)
	defer cleanup()

	id := uuid.New()
	mock.ExpectExec(`UPDATE subscriptions SET status`).
		WithArgs("confirmed", id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.MarkConfirmed(context.Background(), id); err != nil {
		t.Fatalf("mark confirmed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRollbackAfterCommitIsNoOp(t *testing.T) {
	store, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := store.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Errorf("rollback after commit: %v", err)
	}
}
