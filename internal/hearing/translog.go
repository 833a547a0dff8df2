package hearing

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event types recorded in the diagnostic transcript log.
const (
	EventUserMessage      = "user_message"
	EventAssistantMessage = "assistant_message"
	EventExportAttempt    = "export_attempt"
)

// TranscriptEvent is one NDJSON line in the diagnostic transcript log.
type TranscriptEvent struct {
	Timestamp string         `json:"ts"`
	SessionID string         `json:"session_id"`
	EventType string         `json:"event_type"`
	Content   string         `json:"content,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// Recorder receives transcript events. Implementations must never block the
// turn processor.
type Recorder interface {
	Record(event TranscriptEvent)
	Close() error
}

type noopRecorder struct{}

func (noopRecorder) Record(TranscriptEvent) {}
func (noopRecorder) Close() error           { return nil }

// NoopRecorder returns a recorder that discards everything.
func NoopRecorder() Recorder { return noopRecorder{} }

// TranscriptLogConfig controls the diagnostic NDJSON transcript log.
type TranscriptLogConfig struct {
	Enabled       bool
	Dir           string
	GlobalEnabled bool
	GlobalPath    string
	QueueSize     int
}

// TranscriptLogger writes events asynchronously, one NDJSON file per session
// plus an optional global stream. Events are dropped with a warning when the
// queue is full; conversation processing never waits on disk.
type TranscriptLogger struct {
	dir           string
	globalEnabled bool
	globalPath    string

	queue     chan TranscriptEvent
	done      chan struct{}
	closeOnce sync.Once

	files      map[string]*os.File
	globalFile *os.File
}

// NewTranscriptLogger creates the logger and starts its writer goroutine.
// Returns a no-op recorder when disabled.
func NewTranscriptLogger(cfg TranscriptLogConfig) (Recorder, error) {
	if !cfg.Enabled {
		return noopRecorder{}, nil
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("transcript log dir is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript log dir: %w", err)
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1000
	}

	l := &TranscriptLogger{
		dir:           cfg.Dir,
		globalEnabled: cfg.GlobalEnabled,
		globalPath:    cfg.GlobalPath,
		queue:         make(chan TranscriptEvent, queueSize),
		done:          make(chan struct{}),
		files:         make(map[string]*os.File),
	}
	go l.run()
	return l, nil
}

// Record enqueues an event, stamping it if the caller did not. Non-blocking:
// a full queue drops the event.
func (l *TranscriptLogger) Record(event TranscriptEvent) {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	select {
	case l.queue <- event:
	default:
		slog.Warn("Transcript log queue full, dropping event",
			"session_id", event.SessionID,
			"event_type", event.EventType,
		)
	}
}

// Close drains the queue and closes all files.
func (l *TranscriptLogger) Close() error {
	l.closeOnce.Do(func() {
		close(l.queue)
		<-l.done
	})
	return nil
}

func (l *TranscriptLogger) run() {
	defer close(l.done)
	for event := range l.queue {
		l.write(event)
	}
	for _, f := range l.files {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close transcript log file", "error", err)
		}
	}
	if l.globalFile != nil {
		if err := l.globalFile.Close(); err != nil {
			slog.Warn("failed to close global transcript log", "error", err)
		}
	}
}

func (l *TranscriptLogger) write(event TranscriptEvent) {
	line, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal transcript event", "error", err)
		return
	}
	line = append(line, '\n')

	if f := l.sessionFile(event.SessionID); f != nil {
		if _, err := f.Write(line); err != nil {
			slog.Warn("failed to write transcript event", "session_id", event.SessionID, "error", err)
		}
	}
	if l.globalEnabled {
		if f := l.global(); f != nil {
			if _, err := f.Write(line); err != nil {
				slog.Warn("failed to write global transcript event", "error", err)
			}
		}
	}
}

func (l *TranscriptLogger) sessionFile(sessionID string) *os.File {
	if sessionID == "" {
		return nil
	}
	if f, ok := l.files[sessionID]; ok {
		return f
	}
	path := filepath.Join(l.dir, sessionID+".ndjson")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Warn("failed to open transcript log file", "path", path, "error", err)
		return nil
	}
	l.files[sessionID] = f
	return f
}

func (l *TranscriptLogger) global() *os.File {
	if l.globalFile != nil {
		return l.globalFile
	}
	if err := os.MkdirAll(filepath.Dir(l.globalPath), 0o755); err != nil {
		slog.Warn("failed to create global transcript log dir", "error", err)
		return nil
	}
	f, err := os.OpenFile(l.globalPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Warn("failed to open global transcript log", "path", l.globalPath, "error", err)
		return nil
	}
	l.globalFile = f
	return f
}
