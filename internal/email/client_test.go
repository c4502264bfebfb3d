package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/secret"
)

func testClient(t *testing.T, baseURL string, timeout time.Duration) *Client {
	t.Helper()
	sender, err := domain.ParseSubscriberEmail("hello@example.com")
	require.NoError(t, err)

	cfg := config.EmailConfig{
		BaseURL:        baseURL,
		SenderEmail:    sender.String(),
		SenderName:     "The Newsletter",
		APIKey:         secret.New("test-key"),
		TimeoutSeconds: 30,
	}
	c := NewClient(cfg, sender)
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
	return c
}

func mustEmail(t *testing.T, raw string) domain.SubscriberEmail {
	t.Helper()
	e, err := domain.ParseSubscriberEmail(raw)
	require.NoError(t, err)
	return e
}

func TestSendPostsExpectedPayload(t *testing.T) {
	var got sendRequest
	var auth, contentType string
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 0)
	err := c.Send(context.Background(), mustEmail(t, "fast@byte.bit"),
		"Welcome!", "<p>hi</p>", "hi")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "Basic test-key", auth)
	assert.Equal(t, "application/json", contentType)

	require.Len(t, got.Messages, 1)
	msg := got.Messages[0]
	assert.Equal(t, "hello@example.com", msg.From.Email)
	assert.Equal(t, "The Newsletter", msg.From.Name)
	require.Len(t, msg.To, 1)
	assert.Equal(t, "fast@byte.bit", msg.To[0].Email)
	assert.Equal(t, "Welcome!", msg.Subject)
	assert.Equal(t, "<p>hi</p>", msg.HTMLPart)
	assert.Equal(t, "hi", msg.TextPart)
}

func TestSendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "provider exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 0)
	err := c.Send(context.Background(), mustEmail(t, "fast@byte.bit"), "s", "h", "t")
	require.Error(t, err)

	var de *DispatchError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, http.StatusInternalServerError, de.StatusCode)
	assert.Contains(t, de.Body, "provider exploded")
}

func TestSendTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 20*time.Millisecond)
	err := c.Send(context.Background(), mustEmail(t, "fast@byte.bit"), "s", "h", "t")
	require.Error(t, err)

	var de *DispatchError
	require.True(t, errors.As(err, &de))
	assert.NotNil(t, de.Cause)
}

func TestSendDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 0)
	_ = c.Send(context.Background(), mustEmail(t, "fast@byte.bit"), "s", "h", "t")
	assert.Equal(t, 1, calls)
}
