package session

import (
	"context"
	"fmt"
	"time"

	"github.com/loqalabs/loqa-speak/internal/stt"
)

// Listener produces one spoken answer within a time limit.
type Listener interface {
	Listen(ctx context.Context, timeLimit time.Duration) stt.Result
}

// FromListen converts a listener result into an engine answer.
func FromListen(r stt.Result) Answer {
	if r.NoMatch {
		return NoMatch(r.Reason)
	}
	return Text(r.Text)
}

// Run plays the in-progress session to its end, one listen per turn. If ctx is
// cancelled mid-session the session is abandoned and ctx.Err() returned.
func Run(ctx context.Context, e *Engine, l Listener) (Result, error) {
	var last Result
	for {
		prompt, err := e.StartTurn()
		if err != nil {
			return last, err
		}
		heard := l.Listen(ctx, prompt.TimeLimit)
		if ctx.Err() != nil {
			if _, abandonErr := e.Abandon(context.WithoutCancel(ctx)); abandonErr != nil {
				return last, fmt.Errorf("abandon after cancel: %w", abandonErr)
			}
			return last, ctx.Err()
		}
		last, err = e.SubmitTurn(ctx, FromListen(heard))
		if err != nil {
			return last, err
		}
		if last.Finished() {
			return last, nil
		}
	}
}
