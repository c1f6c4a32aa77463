package session

import (
	"context"
	"errors"
	"time"

	"github.com/loqalabs/loqa-speak/internal/achievement"
)

type EventType string

const (
	EventStarted   EventType = "session.started"
	EventTurn      EventType = "turn.result"
	EventFinished  EventType = "session.finished"
	EventAbandoned EventType = "session.abandoned"
)

// Event is emitted to sinks after every transition.
type Event struct {
	Type       EventType         `json:"type"`
	Snapshot   Snapshot          `json:"snapshot"`
	Turn       *Turn             `json:"turn,omitempty"`
	Unlocked   []achievement.Def `json:"unlocked,omitempty"`
	BestScore  int               `json:"best_score"`
	PersistErr string            `json:"persist_error,omitempty"`
	At         time.Time         `json:"at"`
}

// Sink receives engine events. Publish runs while the engine holds its lock,
// so a sink must not call back into the engine. Errors are logged and never
// interrupt a session.
type Sink interface {
	Publish(ctx context.Context, evt Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, evt Event) error

func (f SinkFunc) Publish(ctx context.Context, evt Event) error { return f(ctx, evt) }

// MultiSink fans an event out to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
