package eventstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/loqalabs/loqa-speak/internal/session"
)

// Recorder is a session.Sink that journals every engine event.
type Recorder struct {
	store *Store
}

func NewRecorder(store *Store) *Recorder {
	return &Recorder{store: store}
}

func (r *Recorder) Publish(ctx context.Context, evt session.Event) error {
	snap := evt.Snapshot
	if snap.SessionID == "" {
		return nil
	}
	if evt.Type == session.EventStarted {
		err := r.store.AppendSession(ctx, Session{
			ID:        snap.SessionID,
			Category:  snap.Config.Category,
			Level:     snap.Config.Level,
			Mode:      string(snap.Config.Mode),
			Status:    string(snap.Status),
			CreatedAt: evt.At,
		})
		if err != nil {
			return fmt.Errorf("journal session: %w", err)
		}
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := r.store.AppendEvent(ctx, Event{SessionID: snap.SessionID, Type: string(evt.Type), Payload: payload, CreatedAt: evt.At}); err != nil {
		return fmt.Errorf("journal event: %w", err)
	}

	switch evt.Type {
	case session.EventFinished:
		return r.store.FinishSession(ctx, snap.SessionID, string(snap.Status), snap.Score)
	case session.EventAbandoned:
		return r.store.FinishSession(ctx, snap.SessionID, "abandoned", snap.Score)
	}
	return nil
}
