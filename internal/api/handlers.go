package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ignite/newsletter/internal/pkg/httputil"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/subscription"
)

// Handlers holds the HTTP handlers for the newsletter endpoints.
type Handlers struct {
	svc *subscription.Service
	log *logger.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(svc *subscription.Service, log *logger.Logger) *Handlers {
	return &Handlers{svc: svc, log: log}
}

// requestLog derives a logger tagged with the request id.
func (h *Handlers) requestLog(r *http.Request) *logger.Logger {
	return h.log.With("request_id", middleware.GetReqID(r.Context()))
}

// Subscribe accepts a form-encoded (name, email) pair and runs the
// intake flow: persist a pending subscriber and send the confirmation
// email, or nothing at all.
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	log := h.requestLog(r)

	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "malformed form body")
		return
	}

	result := h.svc.HandleSubmission(r.Context(), log, r.PostFormValue("name"), r.PostFormValue("email"))
	switch result.Outcome {
	case subscription.OutcomeAccepted:
		httputil.OK(w, map[string]string{"status": "pending confirmation"})
	case subscription.OutcomeInvalidInput:
		httputil.BadRequest(w, result.Reason)
	default:
		// Persistence and dispatch failures both read as a server-side
		// problem to the client; details stay in the logs.
		httputil.InternalError(w)
	}
}

// Confirm resolves the token from a confirmation link and activates the
// subscriber.
func (h *Handlers) Confirm(w http.ResponseWriter, r *http.Request) {
	log := h.requestLog(r)

	token := r.URL.Query().Get("subscription_token")
	if token == "" {
		httputil.BadRequest(w, "missing subscription_token")
		return
	}

	outcome, err := h.svc.Confirm(r.Context(), log, token)
	if err != nil {
		httputil.InternalError(w)
		return
	}
	switch outcome {
	case subscription.Confirmed:
		httputil.OK(w, map[string]string{"status": "confirmed"})
	case subscription.TokenNotFound:
		httputil.NotFound(w, "unknown subscription token")
	default:
		httputil.InternalError(w)
	}
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}
