package tui

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loqalabs/loqa-speak/internal/audio"
	"github.com/loqalabs/loqa-speak/internal/catalog"
	"github.com/loqalabs/loqa-speak/internal/session"
	"github.com/loqalabs/loqa-speak/internal/stats"
	"github.com/loqalabs/loqa-speak/internal/stt"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCatalog() *catalog.Catalog {
	return catalog.New(
		[]catalog.Category{{ID: "pets", Name: "Pets", Words: map[string]string{"кот": "cat", "дом": "house"}}},
		[]catalog.Level{
			{ID: "easy", Name: "Easy", Ordinal: 1, WordCount: 2, TimeLimit: 5, Multiplier: 1},
			{ID: "huge", Name: "Huge", Ordinal: 2, WordCount: 3, TimeLimit: 5, Multiplier: 2},
		},
	)
}

func newEngine(t *testing.T) *session.Engine {
	t.Helper()
	e, err := session.New(context.Background(), session.Options{
		Catalog: testCatalog(),
		Store:   stats.NewMemoryStore(),
		Logger:  discard(),
		Rand:    rand.New(rand.NewSource(7)),
	})
	require.NoError(t, err)
	return e
}

// oracle answers the current word correctly unless miss is set.
type oracle struct {
	engine *session.Engine
	miss   bool
}

func (o *oracle) Listen(context.Context, time.Duration) stt.Result {
	if o.miss {
		return stt.Result{NoMatch: true, Reason: stt.ReasonTimeout}
	}
	return stt.Result{Text: expected(o.engine)}
}

func expected(e *session.Engine) string {
	snap := e.Snapshot()
	cat, _ := e.Catalog().Category(snap.Config.Category)
	tr, _ := cat.Translation(snap.Words[snap.Index])
	return tr
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// heard runs cmd and returns the listener message it produced, if any.
func heard(cmd tea.Cmd) (heardMsg, bool) {
	if cmd == nil {
		return heardMsg{}, false
	}
	switch msg := cmd().(type) {
	case heardMsg:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if h, ok := heard(c); ok {
				return h, true
			}
		}
	}
	return heardMsg{}, false
}

func send(m *Model, msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

// startSession walks the menu: first category, first level, first mode.
func startSession(t *testing.T, m *Model) tea.Cmd {
	t.Helper()
	send(m, key(tea.KeyEnter))
	require.NotNil(t, m.pending)
	send(m, key(tea.KeyEnter))
	require.Equal(t, "easy", m.pending.level)
	cmd := send(m, key(tea.KeyEnter))
	require.Equal(t, screenPlaying, m.screen)
	return cmd
}

func TestPlayThroughToCompletion(t *testing.T) {
	e := newEngine(t)
	m := New(context.Background(), Options{Engine: e, Listener: &oracle{engine: e}, Logger: discard()})

	cmd := startSession(t, m)
	assert.Nil(t, m.pending)

	for turn := 0; turn < 2; turn++ {
		msg, ok := heard(cmd)
		require.True(t, ok)
		send(m, msg)
		require.Equal(t, screenTurnResult, m.screen)
		assert.Contains(t, m.View(), "Правильно")
		cmd = send(m, key(tea.KeyEnter))
	}

	require.Equal(t, screenFinished, m.screen)
	view := m.View()
	assert.Contains(t, view, "Уровень пройден")
	assert.Contains(t, view, "Счёт: 87")
	assert.Equal(t, 87, e.Lifetime().BestScore)
}

func TestMissRevealsAnswer(t *testing.T) {
	e := newEngine(t)
	m := New(context.Background(), Options{Engine: e, Listener: &oracle{engine: e, miss: true}, Logger: discard()})

	cmd := startSession(t, m)
	want := expected(e)
	msg, ok := heard(cmd)
	require.True(t, ok)
	send(m, msg)

	view := m.View()
	assert.Contains(t, view, "Время вышло")
	assert.Contains(t, view, want)
	assert.Equal(t, 2, *e.Snapshot().Lives)
}

func TestHintShowsFirstLetter(t *testing.T) {
	e := newEngine(t)
	m := New(context.Background(), Options{Engine: e, Listener: &oracle{engine: e}, Logger: discard()})

	startSession(t, m)
	assert.NotContains(t, m.View(), "Подсказка:")
	send(m, runes("h"))
	assert.Contains(t, m.View(), "Подсказка: "+m.prompt.Hint)
}

func TestEscAbandonsAndIgnoresLateAnswer(t *testing.T) {
	e := newEngine(t)
	m := New(context.Background(), Options{Engine: e, Listener: &oracle{engine: e}, Logger: discard()})

	cmd := startSession(t, m)
	msg, ok := heard(cmd)
	require.True(t, ok)

	send(m, key(tea.KeyEsc))
	assert.Equal(t, screenMenu, m.screen)
	assert.Equal(t, session.NotStarted, e.Snapshot().Status)

	send(m, msg)
	assert.Equal(t, screenMenu, m.screen)
	assert.Equal(t, 1, e.Lifetime().GamesPlayed)
}

func TestMenuStepsBack(t *testing.T) {
	e := newEngine(t)
	m := New(context.Background(), Options{Engine: e, Listener: &oracle{engine: e}, Logger: discard()})

	send(m, key(tea.KeyEnter))
	send(m, key(tea.KeyEnter))
	require.Equal(t, "easy", m.pending.level)

	send(m, key(tea.KeyEsc))
	require.NotNil(t, m.pending)
	assert.Empty(t, m.pending.level)

	send(m, key(tea.KeyEsc))
	assert.Nil(t, m.pending)
}

func TestOversizedLevelShowsNotice(t *testing.T) {
	e := newEngine(t)
	m := New(context.Background(), Options{Engine: e, Listener: &oracle{engine: e}, Logger: discard()})

	send(m, key(tea.KeyEnter))
	send(m, key(tea.KeyDown))
	send(m, key(tea.KeyEnter))
	require.Equal(t, "huge", m.pending.level)
	send(m, key(tea.KeyEnter))

	assert.Equal(t, screenMenu, m.screen)
	assert.Contains(t, m.notice, "insufficient words")
	assert.Nil(t, m.pending)
}

func TestTypedAnswer(t *testing.T) {
	e := newEngine(t)
	typed := stt.NewTypedRecognizer()
	listener := stt.NewListener(audio.NewSilence(16000, 1), typed, "en", discard())
	m := New(context.Background(), Options{Engine: e, Listener: listener, Typed: typed, Logger: discard()})

	cmd := startSession(t, m)
	send(m, runes(expected(e)))
	send(m, key(tea.KeyEnter))

	msg, ok := heard(cmd)
	require.True(t, ok)
	send(m, msg)
	require.Equal(t, screenTurnResult, m.screen)
	assert.Equal(t, session.Correct, m.last.Turn.Outcome)
}

func TestAchievementsScreen(t *testing.T) {
	e := newEngine(t)
	m := New(context.Background(), Options{Engine: e, Listener: &oracle{engine: e}, Logger: discard()})

	send(m, runes("a"))
	require.Equal(t, screenAchievements, m.screen)
	assert.Contains(t, m.View(), "Первая кровь")
	send(m, key(tea.KeyEsc))
	assert.Equal(t, screenMenu, m.screen)
}
