// Package hearing implements the turn-taking conversation controller for the
// GSC hearing: transcript state, stage transitions, keyword evaluation,
// end-of-conversation detection and the one-shot transcript export.
package hearing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/daisukegoma-max/gsc-hearing-app/internal/domain"
)

// Greeting is the fixed assistant message every session starts with.
const Greeting = "こんにちは。本日はお時間をいただきありがとうございます。私は内閣官房が推進するグローバルスタートアップキャンパス構想について研究者の皆さまとお話しするAIアシスタントです。GSC構想は日本の研究力と起業家精神を融合させ世界に通用するスタートアップを生み出すための新しい取り組みです。まずあなたの研究活動について少しお聞かせいただけますか。現在の研究活動においてどのような課題や将来への展望をお持ちですか"

// Session holds the conversation state for one hearing. All mutation goes
// through the Processor; the transcript is append-only and never reordered.
type Session struct {
	id        string
	createdAt time.Time

	mu              sync.Mutex
	messages        []domain.Message
	stage           domain.Stage
	eval            domain.Evaluation
	ended           bool
	busy            bool
	exportScheduled bool
	exportTimer     *time.Timer
	exportDone      chan struct{}
	lastActivity    time.Time
}

// NewSession creates a session seeded with the fixed greeting.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		id:           id,
		createdAt:    now,
		messages:     []domain.Message{domain.NewAssistantMessage(Greeting)},
		stage:        domain.StageOpening,
		eval:         domain.NewEvaluation(),
		exportDone:   make(chan struct{}),
		lastActivity: now,
	}
}

// ID returns the opaque session identity used as the export correlation key.
func (s *Session) ID() string { return s.id }

// Messages returns a copy of the transcript in chronological order.
func (s *Session) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// MessageCount returns the transcript length including the seeded greeting.
func (s *Session) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Stage returns the current conversation stage.
func (s *Session) Stage() domain.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Ended reports whether the conversation has terminated.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Busy reports whether a turn is currently in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Evaluation returns a copy of the accumulated evaluation snapshot.
func (s *Session) Evaluation() domain.Evaluation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eval.Clone()
}

// beginTurn claims the session for a single turn. Re-entrant submissions are
// dropped, not queued.
func (s *Session) beginTurn() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return ErrSessionEnded
	}
	if s.busy {
		return ErrTurnInFlight
	}
	s.busy = true
	s.lastActivity = time.Now()
	return nil
}

func (s *Session) endTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.lastActivity = time.Now()
}

func (s *Session) append(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

func (s *Session) mergeEvaluation(delta domain.Evaluation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eval.Merge(delta)
}

// markEnded sets the terminal state. Idempotent: a second call changes
// nothing and never re-triggers export scheduling.
func (s *Session) markEnded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
	s.stage = domain.StageEnded
}

// advanceStage applies the message-count stage rule. No-op once ended.
func (s *Session) advanceStage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.stage = s.stage.Advance(len(s.messages))
}

// scheduleExportOnce arms the delayed export timer. The one-shot guard is set
// synchronously before the timer is created so two rapid terminal detections
// cannot race into two exports. Returns false if an export was already
// scheduled for this session.
func (s *Session) scheduleExportOnce(delay time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exportScheduled {
		return false
	}
	s.exportScheduled = true
	s.exportTimer = time.AfterFunc(delay, func() {
		defer close(s.exportDone)
		fn()
	})
	return true
}

// ExportDone returns a channel closed once the export attempt has completed
// (or was cancelled). Lets the presentation layer await the export on
// teardown instead of racing a fire-and-forget timer.
func (s *Session) ExportDone() <-chan struct{} {
	return s.exportDone
}

// CancelExport stops a scheduled export that has not fired yet. Returns true
// if the export was cancelled before running.
func (s *Session) CancelExport() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exportTimer == nil {
		return false
	}
	if s.exportTimer.Stop() {
		close(s.exportDone)
		s.exportTimer = nil
		return true
	}
	return false
}

// exportPending reports whether an export is scheduled but has not completed.
func (s *Session) exportPending() bool {
	s.mu.Lock()
	scheduled := s.exportScheduled
	s.mu.Unlock()
	if !scheduled {
		return false
	}
	select {
	case <-s.exportDone:
		return false
	default:
		return true
	}
}

// idleSince reports whether the session has seen no activity since the cutoff.
func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity.Before(cutoff)
}

// Manager is the in-memory session registry keyed by session identity.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session registry.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for id, creating and seeding it on first use.
func (m *Manager) GetOrCreate(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := NewSession(id)
	m.sessions[id] = s
	slog.Info("Hearing session created", "session_id", id)
	return s
}

// Get returns the session for id, or nil if none exists.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// evictIdle drops sessions idle longer than ttl. Sessions with a pending
// export are skipped so the scheduled export always gets to fire.
func (m *Manager) evictIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for id, s := range m.sessions {
		if !s.idleSince(cutoff) || s.exportPending() {
			continue
		}
		delete(m.sessions, id)
		evicted++
	}
	return evicted
}

// StartEviction runs the idle-session janitor until ctx is cancelled.
func (m *Manager) StartEviction(ctx context.Context, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(ttl / 4)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.evictIdle(ttl); n > 0 {
					slog.Info("Idle hearing sessions evicted", "count", n, "remaining", m.Len())
				}
			}
		}
	}()
}
