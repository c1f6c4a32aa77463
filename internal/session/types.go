package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/loqalabs/loqa-speak/internal/achievement"
	"github.com/loqalabs/loqa-speak/internal/catalog"
	"github.com/loqalabs/loqa-speak/internal/scoring"
)

var (
	// ErrInvalidConfiguration means the category, level or mode cannot be played.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrIllegalTransition means the call is not allowed in the current state.
	ErrIllegalTransition = errors.New("illegal transition")
	// ErrPersistence means lifetime stats could not be saved. The session result stands.
	ErrPersistence = errors.New("persistence failure")
)

type Mode string

const (
	Classic  Mode = "classic"
	Training Mode = "training"
)

// ParseMode accepts the mode ids used in config and menus.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Classic:
		return Classic, nil
	case Training:
		return Training, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

type Status string

const (
	NotStarted Status = "not_started"
	InProgress Status = "in_progress"
	Completed  Status = "completed"
	Failed     Status = "failed"
)

// Terminal reports whether no further turns can be played.
func (s Status) Terminal() bool { return s == Completed || s == Failed }

type Outcome string

const (
	Correct    Outcome = "correct"
	Incorrect  Outcome = "incorrect"
	Unanswered Outcome = "unanswered"
)

// Config selects what a session plays.
type Config struct {
	Category string `json:"category"`
	Level    string `json:"level"`
	Mode     Mode   `json:"mode"`
}

// Answer is what the recognizer produced for a turn.
type Answer struct {
	Text    string
	NoMatch bool
	Reason  string
}

// Text wraps recognized text as an answer.
func Text(s string) Answer { return Answer{Text: s} }

// NoMatch is an answer with nothing usable in it.
func NoMatch(reason string) Answer { return Answer{NoMatch: true, Reason: reason} }

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// recognized returns the normalized text, or false when the answer is a no-match.
func (a Answer) recognized() (string, bool) {
	if a.NoMatch {
		return "", false
	}
	text := normalize(a.Text)
	if text == "" {
		return "", false
	}
	if catalog.Reserved(text) {
		return "", false
	}
	return text, true
}

// Prompt is what a front-end shows when a turn opens.
type Prompt struct {
	SessionID string        `json:"session_id"`
	Word      string        `json:"word"`
	Position  int           `json:"position"`
	Total     int           `json:"total"`
	TimeLimit time.Duration `json:"time_limit"`
	Language  string        `json:"language"`
	Hint      string        `json:"hint"`
}

// Turn is one finalized word.
type Turn struct {
	Index      int     `json:"index"`
	Word       string  `json:"word"`
	Expected   string  `json:"expected"`
	Recognized *string `json:"recognized"`
	Outcome    Outcome `json:"outcome"`
	Points     int     `json:"points"`
}

// Snapshot is a read-only copy of session state for renderers.
type Snapshot struct {
	SessionID    string              `json:"session_id"`
	Config       Config              `json:"config"`
	CategoryName string              `json:"category_name"`
	LevelName    string              `json:"level_name"`
	Status       Status              `json:"status"`
	Words        []string            `json:"words"`
	Index        int                 `json:"index"`
	Score        int                 `json:"score"`
	Lives        *int                `json:"lives"`
	Streak       int                 `json:"streak"`
	MaxStreak    int                 `json:"max_streak"`
	PerfectSoFar bool                `json:"perfect_so_far"`
	Correct      int                 `json:"correct"`
	Attempts     int                 `json:"attempts"`
	Bonus        *scoring.Completion `json:"bonus,omitempty"`
}

// LivesTracked is false in training mode.
func (s Snapshot) LivesTracked() bool { return s.Lives != nil }

// Total is the number of words in the session.
func (s Snapshot) Total() int { return len(s.Words) }

// Accuracy is the share of correct answers, 0 before any attempt.
func (s Snapshot) Accuracy() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Attempts)
}

// Result is returned from SubmitTurn.
type Result struct {
	Turn       Turn
	Snapshot   Snapshot
	Unlocked   []achievement.Def
	PersistErr error
}

// Finished reports whether this turn ended the session.
func (r Result) Finished() bool { return r.Snapshot.Status.Terminal() }
