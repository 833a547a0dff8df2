package hearing

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/daisukegoma-max/gsc-hearing-app/internal/domain"
	"github.com/daisukegoma-max/gsc-hearing-app/internal/identity"
	"github.com/go-chi/chi/v5"
)

// maxMessageBodySize caps the turn submission body (64KB).
const maxMessageBodySize = 64 << 10

// Handler exposes the conversation controller to the browser: a read-only
// state view plus a single submit operation.
type Handler struct {
	manager     *Manager
	processor   *Processor
	rateLimiter *RateLimiter
}

// NewHandler creates the hearing HTTP handler.
func NewHandler(manager *Manager, processor *Processor, rateLimit int, rateWindow time.Duration) *Handler {
	return &Handler{
		manager:     manager,
		processor:   processor,
		rateLimiter: NewRateLimiter(rateLimit, rateWindow),
	}
}

// RegisterRoutes registers the hearing API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/hearing", func(r chi.Router) {
		r.Get("/session", h.HandleSession)
		r.Post("/messages", h.HandleMessage)
	})
}

type stateResponse struct {
	SessionID    string           `json:"sessionId"`
	Messages     []domain.Message `json:"messages"`
	Stage        domain.Stage     `json:"stage"`
	Ended        bool             `json:"ended"`
	Busy         bool             `json:"busy"`
	MessageCount int              `json:"messageCount"`
}

type messageRequest struct {
	Message string `json:"message"`
}

// HandleSession handles GET /api/hearing/session: create-or-get the caller's
// session and return its state, seeded greeting included.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	if sessionID == "" {
		writeError(w, http.StatusUnauthorized, "no session identity")
		return
	}
	s := h.manager.GetOrCreate(sessionID)
	writeJSON(w, http.StatusOK, stateOf(s))
}

// HandleMessage handles POST /api/hearing/messages: one user turn. Busy
// sessions return 409 (the turn is dropped, not queued); ended sessions 410.
// A completion-boundary failure still returns 200 — the apology message is
// already part of the transcript.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	if sessionID == "" {
		writeError(w, http.StatusUnauthorized, "no session identity")
		return
	}

	if !h.rateLimiter.Allow(sessionID) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxMessageBodySize)
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s := h.manager.GetOrCreate(sessionID)

	slog.Info("Hearing turn received",
		"session_id", sessionID,
		"message_length", len(req.Message),
		"stage", s.Stage(),
	)

	err := h.processor.ProcessTurn(r.Context(), s, req.Message)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, stateOf(s))
	case errors.Is(err, ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "message is required")
	case errors.Is(err, ErrTurnInFlight):
		writeError(w, http.StatusConflict, "turn already in flight")
	case errors.Is(err, ErrSessionEnded):
		writeError(w, http.StatusGone, "session has ended")
	default:
		// Completion boundary failure: the apology is in the transcript and
		// the conversation remains usable, so the client gets normal state.
		writeJSON(w, http.StatusOK, stateOf(s))
	}
}

func stateOf(s *Session) stateResponse {
	return stateResponse{
		SessionID:    s.ID(),
		Messages:     s.Messages(),
		Stage:        s.Stage(),
		Ended:        s.Ended(),
		Busy:         s.Busy(),
		MessageCount: s.MessageCount(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
