package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loqalabs/loqa-speak/internal/audio"
	"github.com/loqalabs/loqa-speak/internal/session"
	"github.com/loqalabs/loqa-speak/internal/stats"
	"github.com/loqalabs/loqa-speak/internal/stt"
)

// oracle answers each prompt correctly by peeking at the prompt's word.
type oracle struct {
	e       *session.Engine
	answers map[string]string
	limits  []time.Duration
}

func (o *oracle) Listen(_ context.Context, timeLimit time.Duration) stt.Result {
	o.limits = append(o.limits, timeLimit)
	word := o.e.Snapshot().Words[o.e.Snapshot().Index]
	return stt.Result{Text: o.answers[word]}
}

func TestRunPlaysToCompletion(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, twoWords(), stats.NewMemoryStore(), nil)
	_, err := e.Start(ctx, session.Config{Category: "pets", Level: "easy", Mode: session.Classic})
	require.NoError(t, err)

	l := &oracle{e: e, answers: map[string]string{"кот": "cat", "дом": "house"}}
	res, err := session.Run(ctx, e, l)
	require.NoError(t, err)
	assert.Equal(t, session.Completed, res.Snapshot.Status)
	assert.Equal(t, 87, res.Snapshot.Score)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, l.limits)
}

func TestRunWithScriptedListener(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, twoWords(), stats.NewMemoryStore(), nil)
	_, err := e.Start(ctx, session.Config{Category: "pets", Level: "easy", Mode: session.Classic})
	require.NoError(t, err)

	// nothing recognizable: both turns are unanswered, one life remains
	l := stt.NewListener(audio.NewSilence(16000, 1), stt.NewMockRecognizer([]string{"unrecognized"}), "en", newLogger())
	res, err := session.Run(ctx, e, l)
	require.NoError(t, err)
	assert.Equal(t, session.Completed, res.Snapshot.Status)
	assert.Equal(t, session.Unanswered, res.Turn.Outcome)
	assert.Equal(t, 1, *res.Snapshot.Lives)
	assert.Equal(t, 5, res.Snapshot.Score, "lives bonus only")
}

type cancellingListener struct{ cancel context.CancelFunc }

func (c cancellingListener) Listen(context.Context, time.Duration) stt.Result {
	c.cancel()
	return stt.Result{NoMatch: true, Reason: stt.ReasonCancelled}
}

func TestRunAbandonsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	e := newEngine(t, twoWords(), stats.NewMemoryStore(), nil)
	_, err := e.Start(ctx, session.Config{Category: "pets", Level: "easy", Mode: session.Classic})
	require.NoError(t, err)

	_, err = session.Run(ctx, e, cancellingListener{cancel: cancel})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, session.NotStarted, e.Snapshot().Status)
}

func TestFromListen(t *testing.T) {
	assert.Equal(t, session.Text("cat"), session.FromListen(stt.Result{Text: "cat"}))
	assert.Equal(t, session.NoMatch("timeout"), session.FromListen(stt.Result{NoMatch: true, Reason: "timeout"}))
}
