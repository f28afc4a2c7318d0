// Package notify delivers scanner status changes and scan outcomes to the
// presentation layer.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"idscan/internal/document"
	"idscan/internal/result"
)

// StatusEvent reports the device session. Advisory is set once when repeated
// timeouts stopped the automatic loop.
type StatusEvent struct {
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
	Advisory  bool   `json:"advisory,omitempty"`
}

// OutcomeEvent carries one recognized and persisted document.
type OutcomeEvent struct {
	Result document.Result `json:"result"`
	Record result.Record   `json:"record"`
}

type Kind string

const (
	KindStatus  Kind = "status"
	KindOutcome Kind = "outcome"
)

// Event is the envelope sinks serialize or retain.
type Event struct {
	Kind    Kind          `json:"kind"`
	At      time.Time     `json:"at"`
	Status  *StatusEvent  `json:"status,omitempty"`
	Outcome *OutcomeEvent `json:"outcome,omitempty"`
}

// Sink receives notifications. Implementations must not block for long; the
// orchestrator calls them from its control goroutine.
type Sink interface {
	PublishStatus(ctx context.Context, ev StatusEvent) error
	PublishOutcome(ctx context.Context, ev OutcomeEvent) error
}

// LogSink writes every notification to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) PublishStatus(ctx context.Context, ev StatusEvent) error {
	level := slog.LevelInfo
	if ev.Advisory || ev.Error != "" {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "scanner status",
		"connected", ev.Connected,
		"error", ev.Error,
		"advisory", ev.Advisory,
	)
	return nil
}

func (s *LogSink) PublishOutcome(ctx context.Context, ev OutcomeEvent) error {
	s.logger.InfoContext(ctx, "document recognized",
		"stamp", ev.Result.Stamp,
		"document_id", ev.Result.DocumentID,
		"document_type", ev.Result.Type,
		"name", ev.Record.Name,
	)
	return nil
}

// Fanout publishes to every sink and joins their errors.
type Fanout []Sink

func (f Fanout) PublishStatus(ctx context.Context, ev StatusEvent) error {
	var errs []error
	for _, s := range f {
		if err := s.PublishStatus(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) PublishOutcome(ctx context.Context, ev OutcomeEvent) error {
	var errs []error
	for _, s := range f {
		if err := s.PublishOutcome(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
