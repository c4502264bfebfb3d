// Package subscription implements the newsletter intake saga and the
// confirmation step that completes it.
package subscription

import (
	"context"
	"fmt"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/token"
)

// Outcome classifies a submission for the transport layer, which maps it
// to a status code. This package knows nothing about HTTP.
type Outcome string

const (
	OutcomeAccepted          Outcome = "accepted"
	OutcomeInvalidInput      Outcome = "invalid_input"
	OutcomePersistenceFailed Outcome = "persistence_failed"
	OutcomeDispatchFailed    Outcome = "dispatch_failed"
)

// ConfirmOutcome classifies a confirmation attempt.
type ConfirmOutcome string

const (
	Confirmed     ConfirmOutcome = "confirmed"
	TokenNotFound ConfirmOutcome = "token_not_found"
)

// SubmissionResult carries the outcome plus a client-safe reason for
// invalid input.
type SubmissionResult struct {
	Outcome Outcome
	Reason  string
}

const confirmationSubject = "Welcome! Please confirm your subscription"

// Dispatcher sends a single confirmation message. A returned error means
// the message is not known to have been delivered.
type Dispatcher interface {
	Send(ctx context.Context, to domain.SubscriberEmail, subject, htmlBody, textBody string) error
}

// Renderer produces the confirmation email bodies.
type Renderer interface {
	RenderConfirmation(name, confirmationLink string) (htmlBody, textBody string, err error)
}

// Service owns the intake saga: ordering, atomicity, and failure policy.
type Service struct {
	repo       Repository
	dispatcher Dispatcher
	renderer   Renderer
	baseURL    string
	newToken   func() string
}

// NewService wires the saga's collaborators. baseURL is the public
// origin confirmation links point at.
func NewService(repo Repository, dispatcher Dispatcher, renderer Renderer, baseURL string) *Service {
	return &Service{
		repo:       repo,
		dispatcher: dispatcher,
		renderer:   renderer,
		baseURL:    baseURL,
		newToken:   token.Generate,
	}
}

// HandleSubmission runs the intake saga for one raw (name, email) pair:
//
//	VALIDATE → BEGIN → INSERT_SUBSCRIBER → GENERATE_TOKEN
//	        → STORE_TOKEN → SEND_EMAIL → COMMIT
//
// The first failing step terminates the saga and rolls back any open
// transaction. The email send happens inside the transaction window on
// purpose: the send cannot be undone, so local state must not commit
// unless the send is known to have succeeded. A provider outage costs
// the user a resubmission instead of leaving a pending subscriber who
// never received a confirmation link.
func (s *Service) HandleSubmission(ctx context.Context, log *logger.Logger, rawName, rawEmail string) SubmissionResult {
	name, err := domain.ParseSubscriberName(rawName)
	if err != nil {
		log.Info("submission rejected", "reason", err.Error())
		return SubmissionResult{Outcome: OutcomeInvalidInput, Reason: err.Error()}
	}
	email, err := domain.ParseSubscriberEmail(rawEmail)
	if err != nil {
		log.Info("submission rejected", "reason", err.Error(), "email", rawEmail)
		return SubmissionResult{Outcome: OutcomeInvalidInput, Reason: err.Error()}
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		log.Error("begin transaction failed", "err", err.Error())
		return SubmissionResult{Outcome: OutcomePersistenceFailed}
	}
	defer tx.Rollback()

	id, err := tx.InsertSubscriber(ctx, domain.NewSubscriber{Name: name, Email: email})
	if err != nil {
		log.Error("insert subscriber failed", "err", err.Error(), "email", email.String())
		return SubmissionResult{Outcome: OutcomePersistenceFailed}
	}
	log = log.With("subscriber_id", id.String())

	confirmationToken := s.newToken()
	if err := tx.StoreToken(ctx, id, confirmationToken); err != nil {
		// Token collisions are treated as a hard failure for this
		// attempt; no regenerate-and-retry loop.
		log.Error("store token failed", "err", err.Error())
		return SubmissionResult{Outcome: OutcomePersistenceFailed}
	}

	link := fmt.Sprintf("%s/subscriptions/confirm?subscription_token=%s", s.baseURL, confirmationToken)
	htmlBody, textBody, err := s.renderer.RenderConfirmation(name.String(), link)
	if err != nil {
		log.Error("render confirmation email failed", "err", err.Error())
		return SubmissionResult{Outcome: OutcomeDispatchFailed}
	}
	if err := s.dispatcher.Send(ctx, email, confirmationSubject, htmlBody, textBody); err != nil {
		log.Error("send confirmation email failed", "err", err.Error())
		return SubmissionResult{Outcome: OutcomeDispatchFailed}
	}

	if err := tx.Commit(); err != nil {
		// The email is already out; this is the accepted inconsistency
		// window. The caller sees a plain failure.
		log.Error("commit failed after email dispatch", "err", err.Error())
		return SubmissionResult{Outcome: OutcomePersistenceFailed}
	}

	log.Info("subscriber pending confirmation", "email", email.String())
	return SubmissionResult{Outcome: OutcomeAccepted}
}

// Confirm resolves a confirmation token and transitions its subscriber
// to confirmed. Re-confirming is idempotent. A non-nil error means the
// store failed; the outcome is only meaningful when err is nil.
func (s *Service) Confirm(ctx context.Context, log *logger.Logger, confirmationToken string) (ConfirmOutcome, error) {
	id, ok, err := s.repo.FindSubscriberByToken(ctx, confirmationToken)
	if err != nil {
		log.Error("token lookup failed", "err", err.Error())
		return "", err
	}
	if !ok {
		log.Info("confirmation with unknown token")
		return TokenNotFound, nil
	}

	if err := s.repo.MarkConfirmed(ctx, id); err != nil {
		log.Error("mark confirmed failed", "err", err.Error(), "subscriber_id", id.String())
		return "", err
	}

	log.Info("subscriber confirmed", "subscriber_id", id.String())
	return Confirmed, nil
}
