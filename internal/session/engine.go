// Package session runs practice sessions: turn sequencing, answer checks,
// scoring, lives and streaks, and achievement unlocks.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/loqalabs/loqa-speak/internal/achievement"
	"github.com/loqalabs/loqa-speak/internal/catalog"
	"github.com/loqalabs/loqa-speak/internal/scoring"
	"github.com/loqalabs/loqa-speak/internal/selector"
	"github.com/loqalabs/loqa-speak/internal/stats"
)

const (
	DefaultLives    = 3
	DefaultLanguage = "en"
	instrumentation = "github.com/loqalabs/loqa-speak/session"
)

// Options wires an Engine. Catalog and Store are required.
type Options struct {
	Catalog  *catalog.Catalog
	Store    stats.Store
	Tracker  *achievement.Tracker
	Sink     Sink
	Logger   *slog.Logger
	Rand     *rand.Rand
	Lives    int
	Language string
	Clock    func() time.Time
	NewID    func() string
}

// state is the per-session aggregate, rebuilt on every Start.
type state struct {
	id           string
	cfg          Config
	category     catalog.Category
	level        catalog.Level
	status       Status
	words        []string
	index        int
	score        int
	lives        int
	streak       int
	maxStreak    int
	perfectSoFar bool
	correct      int
	attempts     int
	bonus        *scoring.Completion
	turnOpen     bool
	// learned words and achievement ids not yet committed to lifetime stats
	staged       []string
	earned       []string
}

// Engine is safe for concurrent use; only one turn is ever open.
type Engine struct {
	mu       sync.Mutex
	catalog  *catalog.Catalog
	store    stats.Store
	tracker  *achievement.Tracker
	sink     Sink
	log      *slog.Logger
	rng      *rand.Rand
	lives    int
	language string
	clock    func() time.Time
	newID    func() string
	lifetime *stats.Lifetime
	st       *state
	lastCfg  *Config

	tracer   trace.Tracer
	turns    metric.Int64Counter
	sessions metric.Int64Counter
	scores   metric.Int64Histogram
}

// New builds an engine and loads lifetime stats from the store. A store that
// cannot be read is logged and treated as empty.
func New(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Catalog == nil {
		return nil, errors.New("session: catalog is required")
	}
	if opts.Store == nil {
		return nil, errors.New("session: stats store is required")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{
		catalog:  opts.Catalog,
		store:    opts.Store,
		tracker:  opts.Tracker,
		sink:     opts.Sink,
		log:      log.With(slog.String("component", "session")),
		rng:      opts.Rand,
		lives:    opts.Lives,
		language: opts.Language,
		clock:    opts.Clock,
		newID:    opts.NewID,
		st:       &state{status: NotStarted},
		tracer:   otel.Tracer(instrumentation),
	}
	if e.tracker == nil {
		e.tracker = achievement.NewTracker()
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.lives <= 0 {
		e.lives = DefaultLives
	}
	if e.language == "" {
		e.language = DefaultLanguage
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.newID == nil {
		e.newID = func() string { return uuid.New().String() }
	}
	e.initMetrics()

	lifetime, err := e.store.Load(ctx)
	if err != nil {
		e.log.Warn("failed to load lifetime stats, starting fresh", slogError(err))
		lifetime = stats.NewLifetime()
	}
	e.lifetime = lifetime
	return e, nil
}

func (e *Engine) initMetrics() {
	meter := otel.Meter(instrumentation)
	var err error
	if e.turns, err = meter.Int64Counter("speak.turns", metric.WithDescription("Finalized turns by outcome")); err != nil {
		e.log.Warn("failed to create turn counter", slogError(err))
	}
	if e.sessions, err = meter.Int64Counter("speak.sessions", metric.WithDescription("Sessions by final status")); err != nil {
		e.log.Warn("failed to create session counter", slogError(err))
	}
	if e.scores, err = meter.Int64Histogram("speak.session.score", metric.WithDescription("Final session score")); err != nil {
		e.log.Warn("failed to create score histogram", slogError(err))
	}
}

// Catalog exposes the content the engine plays from.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Tracker exposes the achievement definitions.
func (e *Engine) Tracker() *achievement.Tracker { return e.tracker }

// Lifetime returns a copy of the lifetime stats.
func (e *Engine) Lifetime() *stats.Lifetime {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lifetime.Clone()
}

// Snapshot returns the current session view.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Start validates cfg, draws the words and begins a fresh session. Nothing is
// mutated when validation fails.
func (e *Engine) Start(ctx context.Context, cfg Config) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.st.status == InProgress {
		return e.snapshotLocked(), fmt.Errorf("%w: session already in progress", ErrIllegalTransition)
	}
	return e.startLocked(ctx, cfg)
}

// Restart replays the previous configuration with a fresh draw. Only valid
// once the session has completed or failed.
func (e *Engine) Restart(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.st.status.Terminal() || e.lastCfg == nil {
		return e.snapshotLocked(), fmt.Errorf("%w: restart from %s", ErrIllegalTransition, e.st.status)
	}
	return e.startLocked(ctx, *e.lastCfg)
}

func (e *Engine) startLocked(ctx context.Context, cfg Config) (Snapshot, error) {
	ctx, span := e.tracer.Start(ctx, "session.start", trace.WithAttributes(
		attribute.String("category", cfg.Category),
		attribute.String("level", cfg.Level),
		attribute.String("mode", string(cfg.Mode)),
	))
	defer span.End()

	mode, err := ParseMode(string(cfg.Mode))
	if err != nil {
		return e.invalid(span, err)
	}
	cfg.Mode = mode
	cat, err := e.catalog.Category(cfg.Category)
	if err != nil {
		return e.invalid(span, err)
	}
	lvl, err := e.catalog.Level(cfg.Level)
	if err != nil {
		return e.invalid(span, err)
	}
	words, err := selector.Select(e.rng, cat, lvl)
	if err != nil {
		return e.invalid(span, err)
	}

	e.st = &state{
		id:           e.newID(),
		cfg:          cfg,
		category:     cat,
		level:        lvl,
		status:       InProgress,
		words:        words,
		lives:        e.lives,
		perfectSoFar: true,
	}
	stored := cfg
	e.lastCfg = &stored
	e.lifetime.GamesPlayed++

	span.SetAttributes(attribute.String("session.id", e.st.id))
	e.log.Info("session started",
		slog.String("session_id", e.st.id),
		slog.String("category", cat.ID),
		slog.String("level", lvl.ID),
		slog.String("mode", string(mode)),
		slog.Int("words", len(words)))

	snap := e.snapshotLocked()
	e.emit(ctx, Event{Type: EventStarted, Snapshot: snap})
	return snap, nil
}

func (e *Engine) invalid(span trace.Span, err error) (Snapshot, error) {
	err = fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	span.RecordError(err)
	span.SetStatus(codes.Error, "invalid configuration")
	return e.snapshotLocked(), err
}

// StartTurn opens the turn for the current word.
func (e *Engine) StartTurn() (Prompt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.st.status != InProgress {
		return Prompt{}, fmt.Errorf("%w: start turn while %s", ErrIllegalTransition, e.st.status)
	}
	if e.st.turnOpen {
		return Prompt{}, fmt.Errorf("%w: turn already open", ErrIllegalTransition)
	}
	e.st.turnOpen = true
	return e.promptLocked(), nil
}

func (e *Engine) promptLocked() Prompt {
	word := e.st.words[e.st.index]
	expected, _ := e.st.category.Translation(word)
	var hint string
	for _, r := range expected {
		hint = string(r)
		break
	}
	return Prompt{
		SessionID: e.st.id,
		Word:      word,
		Position:  e.st.index + 1,
		Total:     len(e.st.words),
		TimeLimit: time.Duration(e.st.level.TimeLimit) * time.Second,
		Language:  e.language,
		Hint:      hint,
	}
}

// SubmitTurn finalizes the open turn (opening it first if needed). No-match
// answers count as wrong; they never produce an error.
func (e *Engine) SubmitTurn(ctx context.Context, answer Answer) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.st
	if st.status != InProgress {
		return Result{Snapshot: e.snapshotLocked()}, fmt.Errorf("%w: submit while %s", ErrIllegalTransition, st.status)
	}

	ctx, span := e.tracer.Start(ctx, "session.submit_turn", trace.WithAttributes(
		attribute.String("session.id", st.id),
		attribute.Int("index", st.index),
	))
	defer span.End()

	word := st.words[st.index]
	expected, _ := st.category.Translation(word)
	turn := Turn{Index: st.index, Word: word, Expected: expected}

	text, ok := answer.recognized()
	if ok {
		turn.Recognized = &text
	}
	st.turnOpen = false
	st.attempts++

	if ok && text == normalize(expected) {
		turn.Outcome = Correct
		turn.Points = scoring.Award(st.streak, st.level)
		st.score += turn.Points
		st.streak++
		st.maxStreak = max(st.maxStreak, st.streak)
		st.correct++
		if e.lifetime.Learn(word) {
			st.staged = append(st.staged, word)
		}
	} else {
		turn.Outcome = Incorrect
		if !ok {
			turn.Outcome = Unanswered
		}
		st.streak = 0
		if st.cfg.Mode == Classic {
			st.perfectSoFar = false
			st.lives--
			if st.lives <= 0 {
				st.lives = 0
				st.status = Failed
			}
		}
	}

	if st.status == InProgress {
		st.index++
		if st.index == len(st.words) {
			if st.cfg.Mode == Classic {
				bonus := scoring.CompletionBonus(st.perfectSoFar, st.lives, st.level)
				st.bonus = &bonus
				st.score += bonus.Total()
			}
			st.status = Completed
		}
	}

	if e.turns != nil {
		e.turns.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(turn.Outcome))))
	}
	span.SetAttributes(attribute.String("outcome", string(turn.Outcome)), attribute.Int("points", turn.Points))
	e.log.Debug("turn finalized",
		slog.String("session_id", st.id),
		slog.String("word", word),
		slog.String("outcome", string(turn.Outcome)),
		slog.Int("points", turn.Points),
		slog.Int("score", st.score))

	unlocked := e.tracker.Evaluate(e.factsLocked(), e.lifetime)

	res := Result{Turn: turn}
	if st.status.Terminal() {
		e.lifetime.RecordScore(st.score)
		unlocked = append(unlocked, e.tracker.Evaluate(e.factsLocked(), e.lifetime)...)
		res.PersistErr = e.persistLocked(ctx)
		if res.PersistErr != nil {
			span.RecordError(res.PersistErr)
		}
		e.recordFinish(ctx)
	}
	for _, d := range unlocked {
		st.earned = append(st.earned, d.ID)
	}
	res.Unlocked = unlocked
	res.Snapshot = e.snapshotLocked()

	turnCopy := turn
	e.emit(ctx, Event{Type: EventTurn, Snapshot: res.Snapshot, Turn: &turnCopy, Unlocked: unlocked})
	if st.status.Terminal() {
		evt := Event{Type: EventFinished, Snapshot: res.Snapshot}
		if res.PersistErr != nil {
			evt.PersistErr = res.PersistErr.Error()
		}
		e.emit(ctx, evt)
	}
	return res, nil
}

// Abandon leaves an in-progress session. Words learned and achievements earned
// during it are forgotten and nothing is saved; the games-played increment stays.
func (e *Engine) Abandon(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.st
	if st.status != InProgress {
		return e.snapshotLocked(), fmt.Errorf("%w: abandon while %s", ErrIllegalTransition, st.status)
	}
	for _, w := range st.staged {
		e.lifetime.Forget(w)
	}
	for _, id := range st.earned {
		e.lifetime.Revoke(id)
	}
	e.log.Info("session abandoned", slog.String("session_id", st.id), slog.Int("index", st.index))
	if e.sessions != nil {
		e.sessions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "abandoned")))
	}
	e.emit(ctx, Event{Type: EventAbandoned, Snapshot: e.snapshotLocked()})

	e.st = &state{status: NotStarted}
	return e.snapshotLocked(), nil
}

// Save persists lifetime stats outside the terminal transitions, e.g. on exit.
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persistLocked(ctx)
}

// persistLocked saves lifetime stats. Words and achievements from a session
// that is still in progress are left out until it finishes.
func (e *Engine) persistLocked(ctx context.Context) error {
	snapshot := e.lifetime.Clone()
	if e.st.status == InProgress {
		for _, w := range e.st.staged {
			snapshot.Forget(w)
		}
		for _, id := range e.st.earned {
			snapshot.Revoke(id)
		}
	}
	if err := e.store.Save(ctx, snapshot); err != nil {
		err = fmt.Errorf("%w: %w", ErrPersistence, err)
		e.log.Error("failed to save lifetime stats", slogError(err))
		return err
	}
	return nil
}

func (e *Engine) recordFinish(ctx context.Context) {
	st := e.st
	e.log.Info("session finished",
		slog.String("session_id", st.id),
		slog.String("status", string(st.status)),
		slog.Int("score", st.score),
		slog.Int("max_streak", st.maxStreak))
	if e.sessions != nil {
		e.sessions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(st.status))))
	}
	if e.scores != nil {
		e.scores.Record(ctx, int64(st.score), metric.WithAttributes(attribute.String("level", st.level.ID)))
	}
}

func (e *Engine) factsLocked() achievement.Facts {
	st := e.st
	hardest, ok := e.catalog.Hardest()
	return achievement.Facts{
		GamesPlayed:  e.lifetime.GamesPlayed,
		LearnedWords: len(e.lifetime.LearnedWords),
		Streak:       st.streak,
		Completed:    st.status == Completed,
		Classic:      st.cfg.Mode == Classic,
		Perfect:      st.perfectSoFar,
		HardestLevel: ok && st.level.ID == hardest.ID,
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	st := e.st
	snap := Snapshot{
		SessionID:    st.id,
		Config:       st.cfg,
		CategoryName: st.category.Name,
		LevelName:    st.level.Name,
		Status:       st.status,
		Words:        append([]string(nil), st.words...),
		Index:        st.index,
		Score:        st.score,
		Streak:       st.streak,
		MaxStreak:    st.maxStreak,
		PerfectSoFar: st.perfectSoFar,
		Correct:      st.correct,
		Attempts:     st.attempts,
	}
	if st.cfg.Mode == Classic {
		lives := st.lives
		snap.Lives = &lives
	}
	if st.bonus != nil {
		bonus := *st.bonus
		snap.Bonus = &bonus
	}
	return snap
}

func (e *Engine) emit(ctx context.Context, evt Event) {
	if e.sink == nil {
		return
	}
	evt.At = e.clock().UTC()
	evt.BestScore = e.lifetime.BestScore
	if err := e.sink.Publish(ctx, evt); err != nil {
		e.log.Warn("event sink failed", slog.String("event", string(evt.Type)), slogError(err))
	}
}

func slogError(err error) slog.Attr {
	return slog.String("error", err.Error())
}
