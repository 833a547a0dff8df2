package hearing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/daisukegoma-max/gsc-hearing-app/internal/domain"
	"github.com/daisukegoma-max/gsc-hearing-app/internal/export"
)

// ApologyMessage is the fixed fallback reply shown when the completion
// boundary fails. Stage and evaluation state stay untouched on that path.
const ApologyMessage = "申し訳ございません。一時的な問題が発生しました。もう一度お試しください。"

// DefaultExportDelay is how long after terminal detection the export fires.
const DefaultExportDelay = 3 * time.Second

var (
	// ErrEmptyMessage rejects blank user input before any state changes.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrSessionEnded rejects turns submitted after the conversation ended.
	ErrSessionEnded = errors.New("session has ended")
	// ErrTurnInFlight rejects re-entrant turns while one is unresolved.
	ErrTurnInFlight = errors.New("turn already in flight")
)

// Completer is the LLM completion boundary. Implementations receive the
// system prompt and the full transcript including the newest user turn.
type Completer interface {
	Complete(ctx context.Context, system string, transcript []domain.Message) (string, error)
}

// Exporter is the transcript logging boundary.
type Exporter interface {
	Export(ctx context.Context, payload export.Payload) bool
}

// Processor orchestrates one user turn end to end.
type Processor struct {
	completer   Completer
	exporter    Exporter
	exportDelay time.Duration
	recorder    Recorder
}

// NewProcessor wires the turn processor. A nil recorder disables diagnostic
// transcript logging; exportDelay <= 0 falls back to DefaultExportDelay.
func NewProcessor(completer Completer, exporter Exporter, exportDelay time.Duration, recorder Recorder) *Processor {
	if exportDelay <= 0 {
		exportDelay = DefaultExportDelay
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Processor{
		completer:   completer,
		exporter:    exporter,
		exportDelay: exportDelay,
		recorder:    recorder,
	}
}

// ProcessTurn appends the user message, asks the completion boundary for a
// reply, strips the termination sentinel, merges keyword tags and advances
// the stage. On terminal detection it marks the session ended and schedules
// the export exactly once.
//
// Re-entrant calls while a turn is in flight return ErrTurnInFlight and
// mutate nothing. A completion failure leaves the user message in place and
// appends only the fixed apology.
func (p *Processor) ProcessTurn(ctx context.Context, s *Session, userText string) error {
	if strings.TrimSpace(userText) == "" {
		return ErrEmptyMessage
	}
	if err := s.beginTurn(); err != nil {
		return err
	}
	defer s.endTurn()

	s.append(domain.NewUserMessage(userText))
	p.recorder.Record(TranscriptEvent{
		SessionID: s.ID(),
		EventType: EventUserMessage,
		Content:   userText,
	})

	system := BuildSystemPrompt(s.Stage(), s.MessageCount(), s.Evaluation())
	reply, err := p.completer.Complete(ctx, system, s.Messages())
	if err != nil {
		slog.Error("Completion boundary failed", "session_id", s.ID(), "error", err)
		s.append(domain.NewAssistantMessage(ApologyMessage))
		p.recorder.Record(TranscriptEvent{
			SessionID: s.ID(),
			EventType: EventAssistantMessage,
			Content:   ApologyMessage,
			Meta:      map[string]any{"fallback": true, "error": err.Error()},
		})
		return fmt.Errorf("completion boundary: %w", err)
	}

	ending := strings.Contains(reply, TerminationSentinel)
	cleaned := strings.TrimSpace(strings.ReplaceAll(reply, TerminationSentinel, ""))
	s.append(domain.NewAssistantMessage(cleaned))
	p.recorder.Record(TranscriptEvent{
		SessionID: s.ID(),
		EventType: EventAssistantMessage,
		Content:   cleaned,
		Meta:      map[string]any{"ending": ending},
	})

	s.mergeEvaluation(ExtractTags(userText))

	if ending {
		p.finish(s)
	}
	s.advanceStage()
	return nil
}

// finish marks the session terminal and arms the one-shot delayed export.
// markEnded is idempotent and scheduleExportOnce sets its guard before the
// timer exists, so repeated terminal detections cannot double-fire.
func (p *Processor) finish(s *Session) {
	s.markEnded()
	scheduled := s.scheduleExportOnce(p.exportDelay, func() {
		p.runExport(s)
	})
	if !scheduled {
		return
	}
	slog.Info("Conversation end detected, export scheduled",
		"session_id", s.ID(),
		"delay", p.exportDelay,
	)
}

func (p *Processor) runExport(s *Session) {
	payload := export.Payload{
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		SessionID:      s.ID(),
		Messages:       s.Messages(),
		EvaluationData: s.Evaluation(),
		MessageCount:   s.MessageCount(),
	}
	ok := p.exporter.Export(context.Background(), payload)
	p.recorder.Record(TranscriptEvent{
		SessionID: s.ID(),
		EventType: EventExportAttempt,
		Meta:      map[string]any{"ok": ok, "message_count": payload.MessageCount},
	})
	if !ok {
		// Terminal for this session's export: no retry path exists.
		slog.Error("Transcript export failed", "session_id", s.ID())
	}
}
