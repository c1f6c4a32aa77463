// Package relay mirrors session events onto the message bus.
package relay

import (
	"context"
	"errors"
	"log/slog"

	"github.com/loqalabs/loqa-speak/internal/protocol"
	"github.com/loqalabs/loqa-speak/internal/session"
)

// Publisher is the subset of bus.Client the relay needs.
type Publisher interface {
	PublishJSON(subject string, v any) error
}

// Relay is a session.Sink that publishes protocol messages.
type Relay struct {
	pub Publisher
	log *slog.Logger
}

func New(pub Publisher, log *slog.Logger) *Relay {
	return &Relay{pub: pub, log: log.With(slog.String("component", "relay"))}
}

func (r *Relay) Publish(_ context.Context, evt session.Event) error {
	snap := evt.Snapshot
	switch evt.Type {
	case session.EventStarted:
		return r.pub.PublishJSON(protocol.SubjectSessionStarted, protocol.SessionStarted{
			SessionID: snap.SessionID,
			Category:  snap.Config.Category,
			Level:     snap.Config.Level,
			Mode:      string(snap.Config.Mode),
			Words:     snap.Total(),
			Lives:     snap.Lives,
			Timestamp: evt.At,
		})
	case session.EventTurn:
		var errs []error
		if evt.Turn != nil {
			errs = append(errs, r.pub.PublishJSON(protocol.SubjectTurnResult, protocol.TurnResult{
				SessionID:  snap.SessionID,
				Index:      evt.Turn.Index,
				Word:       evt.Turn.Word,
				Expected:   evt.Turn.Expected,
				Recognized: evt.Turn.Recognized,
				Outcome:    string(evt.Turn.Outcome),
				Points:     evt.Turn.Points,
				Score:      snap.Score,
				Streak:     snap.Streak,
				Lives:      snap.Lives,
				Timestamp:  evt.At,
			}))
		}
		for _, def := range evt.Unlocked {
			errs = append(errs, r.pub.PublishJSON(protocol.SubjectAchievementUnlocked, protocol.AchievementUnlocked{
				SessionID:   snap.SessionID,
				ID:          def.ID,
				Name:        def.Name,
				Description: def.Description,
				Timestamp:   evt.At,
			}))
		}
		return errors.Join(errs...)
	case session.EventFinished, session.EventAbandoned:
		status := string(snap.Status)
		if evt.Type == session.EventAbandoned {
			status = "abandoned"
		}
		return r.pub.PublishJSON(protocol.SubjectSessionFinished, protocol.SessionFinished{
			SessionID:    snap.SessionID,
			Status:       status,
			Score:        snap.Score,
			MaxStreak:    snap.MaxStreak,
			Correct:      snap.Correct,
			Attempts:     snap.Attempts,
			BestScore:    evt.BestScore,
			PersistError: evt.PersistErr,
			Timestamp:    evt.At,
		})
	default:
		r.log.Debug("ignoring event", slog.String("event", string(evt.Type)))
		return nil
	}
}
