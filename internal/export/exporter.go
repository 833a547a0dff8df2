// Package export dispatches completed hearing transcripts to the external
// logging endpoint. The call is one-shot and fire-and-forget: failures are
// logged, never retried and never surfaced to the user.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/daisukegoma-max/gsc-hearing-app/internal/domain"
)

// AuthHeaderName is the custom header carrying the static export credential.
const AuthHeaderName = "X-Auth-Token"

// Payload is the serialized form of a finished hearing.
type Payload struct {
	Timestamp      string            `json:"timestamp"`
	SessionID      string            `json:"sessionId"`
	Messages       []domain.Message  `json:"messages"`
	EvaluationData domain.Evaluation `json:"evaluationData"`
	MessageCount   int               `json:"messageCount"`
}

// Client posts transcripts to the logging endpoint.
type Client struct {
	url        string
	authToken  string
	httpClient *http.Client
}

// NewClient creates an export client for the given endpoint and credential.
func NewClient(url, authToken string) *Client {
	return &Client{
		url:       url,
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Export sends the payload and returns true only on a 2xx response. It never
// panics: every failure mode (marshal, network, non-2xx status) is logged and
// reported as false.
func (c *Client) Export(ctx context.Context, payload Payload) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Export payload marshal failed", "session_id", payload.SessionID, "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		slog.Error("Export request build failed", "session_id", payload.SessionID, "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(AuthHeaderName, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Export request failed", "session_id", payload.SessionID, "error", err)
		return false
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Debug("failed to close export response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		slog.Error("Export rejected by logging endpoint",
			"session_id", payload.SessionID,
			"status", resp.StatusCode,
			"body", string(snippet),
		)
		return false
	}

	slog.Info("Transcript exported",
		"session_id", payload.SessionID,
		"message_count", payload.MessageCount,
	)
	return true
}

// Disabled is an export sink used when no endpoint is configured. It drops
// the payload with a warning so development setups still complete sessions.
type Disabled struct{}

// Export logs the dropped payload and reports failure.
func (Disabled) Export(_ context.Context, payload Payload) bool {
	slog.Warn("Export endpoint not configured, dropping transcript",
		"session_id", payload.SessionID,
		"message_count", payload.MessageCount,
	)
	return false
}
