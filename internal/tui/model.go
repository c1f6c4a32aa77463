// Package tui is the console front-end: a menu, the practice loop and the
// achievements screen, rendered with bubbletea.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/loqalabs/loqa-speak/internal/catalog"
	"github.com/loqalabs/loqa-speak/internal/session"
	"github.com/loqalabs/loqa-speak/internal/stt"
)

type screen int

const (
	screenMenu screen = iota
	screenPlaying
	screenTurnResult
	screenFinished
	screenAchievements
)

// menuSelection is the choice being built up in the menu. A nil pointer means
// no category has been picked yet.
type menuSelection struct {
	category string
	level    string
}

// heardMsg carries a listener result back to the update loop. seq ties it to
// the turn that asked for it.
type heardMsg struct {
	seq    int
	result stt.Result
}

type tickMsg struct{ seq int }

// Options configures the console front-end.
type Options struct {
	Engine   *session.Engine
	Listener session.Listener
	// Typed is set when answers are typed instead of spoken.
	Typed     *stt.TypedRecognizer
	Countdown bool
	Logger    *slog.Logger
}

// Model is the bubbletea model for the game.
type Model struct {
	ctx      context.Context
	engine   *session.Engine
	listener session.Listener
	typed    *stt.TypedRecognizer
	tick     bool
	log      *slog.Logger

	screen  screen
	cursor  int
	pending *menuSelection
	notice  string
	err     error

	input     textinput.Model
	seq       int
	cancel    context.CancelFunc
	prompt    session.Prompt
	remaining time.Duration
	showHint  bool
	heard     stt.Result
	last      *session.Result
}

func New(ctx context.Context, opts Options) *Model {
	ti := textinput.New()
	ti.Placeholder = "перевод на английском"
	ti.CharLimit = 64
	ti.Width = 32

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Model{
		ctx:      ctx,
		engine:   opts.Engine,
		listener: opts.Listener,
		typed:    opts.Typed,
		tick:     opts.Countdown,
		log:      log.With(slog.String("component", "tui")),
		input:    ti,
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyCtrlC {
		m.leaveSession()
		return m, tea.Quit
	}
	switch msg := msg.(type) {
	case heardMsg:
		return m, m.onHeard(msg)
	case tickMsg:
		return m, m.onTick(msg)
	case error:
		m.err = msg
		return m, nil
	}

	switch m.screen {
	case screenMenu:
		return m.updateMenu(msg)
	case screenPlaying:
		return m.updatePlaying(msg)
	case screenTurnResult:
		return m.updateTurnResult(msg)
	case screenFinished:
		return m.updateFinished(msg)
	case screenAchievements:
		return m.updateAchievements(msg)
	}
	return m, nil
}

// menu rows for the current step: categories, then levels, then modes.
func (m *Model) menuOptions() []string {
	cat := m.engine.Catalog()
	var out []string
	switch {
	case m.pending == nil:
		for _, c := range cat.Categories() {
			out = append(out, c.ID)
		}
	case m.pending.level == "":
		for _, l := range cat.Levels() {
			out = append(out, l.ID)
		}
	default:
		out = []string{string(session.Classic), string(session.Training)}
	}
	return out
}

func (m *Model) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	options := m.menuOptions()
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(options)-1 {
			m.cursor++
		}
	case "a":
		m.screen = screenAchievements
	case "esc", "backspace":
		switch {
		case m.pending == nil:
			return m, tea.Quit
		case m.pending.level == "":
			m.pending = nil
		default:
			m.pending.level = ""
		}
		m.cursor = 0
	case "q":
		if m.pending == nil {
			return m, tea.Quit
		}
	case "enter":
		if len(options) == 0 {
			return m, nil
		}
		choice := options[m.cursor]
		m.cursor = 0
		switch {
		case m.pending == nil:
			m.pending = &menuSelection{category: choice}
		case m.pending.level == "":
			m.pending.level = choice
		default:
			cfg := session.Config{Category: m.pending.category, Level: m.pending.level, Mode: session.Mode(choice)}
			return m, m.start(cfg)
		}
	}
	return m, nil
}

func (m *Model) start(cfg session.Config) tea.Cmd {
	if _, err := m.engine.Start(m.ctx, cfg); err != nil {
		m.notice = err.Error()
		m.pending = nil
		return nil
	}
	m.notice = ""
	m.pending = nil
	return m.startTurn()
}

func (m *Model) startTurn() tea.Cmd {
	prompt, err := m.engine.StartTurn()
	if err != nil {
		m.err = err
		return nil
	}
	m.seq++
	m.screen = screenPlaying
	m.prompt = prompt
	m.remaining = prompt.TimeLimit
	m.showHint = false
	m.heard = stt.Result{}
	m.input.SetValue("")

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	cmds := []tea.Cmd{listen(ctx, m.seq, m.listener, prompt.TimeLimit)}
	if m.typed != nil {
		m.typed.Discard()
		cmds = append(cmds, m.input.Focus())
	}
	if m.tick {
		cmds = append(cmds, countdown(m.seq))
	}
	return tea.Batch(cmds...)
}

func listen(ctx context.Context, seq int, l session.Listener, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return heardMsg{seq: seq, result: l.Listen(ctx, d)}
	}
}

func countdown(seq int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{seq: seq} })
}

func (m *Model) onTick(msg tickMsg) tea.Cmd {
	if msg.seq != m.seq || m.screen != screenPlaying {
		return nil
	}
	m.remaining -= time.Second
	if m.remaining <= 0 {
		m.remaining = 0
		return nil
	}
	return countdown(m.seq)
}

func (m *Model) updatePlaying(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Type == tea.KeyEsc:
			m.leaveSession()
			m.screen = screenMenu
			return m, nil
		case key.Type == tea.KeyTab, m.typed == nil && key.String() == "h":
			m.showHint = true
			return m, nil
		case key.Type == tea.KeyEnter && m.typed != nil:
			m.typed.Submit(m.input.Value())
			m.input.Blur()
			return m, nil
		}
	}
	if m.typed == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) onHeard(msg heardMsg) tea.Cmd {
	if msg.seq != m.seq || m.screen != screenPlaying {
		return nil
	}
	m.stopListening()
	m.heard = msg.result
	res, err := m.engine.SubmitTurn(m.ctx, session.FromListen(msg.result))
	if err != nil {
		m.err = err
		return nil
	}
	m.last = &res
	m.screen = screenTurnResult
	return nil
}

func (m *Model) updateTurnResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyEnter:
		if m.last != nil && m.last.Finished() {
			m.screen = screenFinished
			return m, nil
		}
		return m, m.startTurn()
	case tea.KeyEsc:
		m.leaveSession()
		m.screen = screenMenu
	}
	return m, nil
}

func (m *Model) updateFinished(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "r":
		if _, err := m.engine.Restart(m.ctx); err != nil {
			m.err = err
			return m, nil
		}
		return m, m.startTurn()
	case "a":
		m.screen = screenAchievements
	case "enter", "esc", "m":
		m.screen = screenMenu
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateAchievements(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "enter", "q", "a":
			m.screen = screenMenu
		}
	}
	return m, nil
}

// leaveSession abandons whatever is in progress. Abandon outside a session is
// an illegal transition and is ignored here.
func (m *Model) leaveSession() {
	m.stopListening()
	if m.engine.Snapshot().Status != session.InProgress {
		return
	}
	if _, err := m.engine.Abandon(m.ctx); err != nil {
		m.log.Warn("abandon failed", slog.String("error", err.Error()))
	}
	m.seq++
}

func (m *Model) stopListening() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// catalog is shorthand for views.
func (m *Model) catalog() *catalog.Catalog { return m.engine.Catalog() }
