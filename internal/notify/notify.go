// Package notify raises desktop notifications for unlocked achievements.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gen2brain/beeep"

	"github.com/loqalabs/loqa-speak/internal/session"
)

const appName = "Loqa Speak"

// Notifier is a session.Sink that pops a desktop notification per unlock and
// one when a session finishes.
type Notifier struct {
	enabled bool
	icon    string
	log     *slog.Logger
	send    func(title, message, icon string) error
}

func New(enabled bool, icon string, log *slog.Logger) *Notifier {
	return &Notifier{
		enabled: enabled,
		icon:    icon,
		log:     log.With(slog.String("component", "notify")),
		send:    desktop,
	}
}

// SetEnabled toggles notifications at runtime.
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

func (n *Notifier) Publish(_ context.Context, evt session.Event) error {
	if !n.enabled {
		return nil
	}
	for _, def := range evt.Unlocked {
		n.notify("Достижение: "+def.Name, def.Description)
	}
	if evt.Type == session.EventFinished {
		snap := evt.Snapshot
		switch snap.Status {
		case session.Completed:
			n.notify("Уровень пройден", fmt.Sprintf("Счёт: %d, лучший: %d", snap.Score, evt.BestScore))
		case session.Failed:
			n.notify("Игра окончена", fmt.Sprintf("Счёт: %d", snap.Score))
		}
	}
	return nil
}

func desktop(title, message, icon string) error {
	return beeep.Notify(title, message, icon)
}

func (n *Notifier) notify(title, message string) {
	// notification failures never affect play
	if err := n.send(appName+": "+title, message, n.icon); err != nil {
		n.log.Debug("notification failed", slog.String("error", err.Error()))
	}
}
