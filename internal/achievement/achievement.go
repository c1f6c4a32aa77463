// Package achievement evaluates one-time unlocks against session and lifetime counters.
package achievement

const (
	FirstSession  = "first-session"
	StreakMaster  = "streak-master"
	Vocabulary    = "vocabulary"
	Perfectionist = "perfectionist"
	SpeedRunner   = "speed-runner"
)

const (
	streakTarget     = 5
	vocabularyTarget = 20
)

// Facts is the read-only view a predicate is evaluated against.
type Facts struct {
	GamesPlayed  int
	LearnedWords int
	Streak       int
	Completed    bool
	Classic      bool
	Perfect      bool
	HardestLevel bool
}

// Def describes an achievement. Whether it is earned lives in the Ledger.
type Def struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	unlocked func(Facts) bool
}

// NewDef builds a definition with a custom predicate.
func NewDef(id, name, description string, unlocked func(Facts) bool) Def {
	return Def{ID: id, Name: name, Description: description, unlocked: unlocked}
}

// Ledger records which achievements have been earned.
type Ledger interface {
	Earned(id string) bool
	Earn(id string)
}

// Defaults returns the stock achievement set.
func Defaults() []Def {
	return []Def{
		NewDef(FirstSession, "Первая кровь", "Завершите первую игру", func(f Facts) bool {
			return f.GamesPlayed > 0
		}),
		NewDef(StreakMaster, "Мастер серии", "Достигните серии из 5 правильных ответов", func(f Facts) bool {
			return f.Streak >= streakTarget
		}),
		NewDef(Vocabulary, "Словарный запас", "Выучите 20 слов", func(f Facts) bool {
			return f.LearnedWords >= vocabularyTarget
		}),
		NewDef(Perfectionist, "Перфекционист", "Пройдите уровень без ошибок", func(f Facts) bool {
			return f.Completed && f.Classic && f.Perfect
		}),
		NewDef(SpeedRunner, "Скоростной демон", "Пройдите самый сложный уровень", func(f Facts) bool {
			return f.Completed && f.HardestLevel
		}),
	}
}

// Tracker evaluates a fixed set of definitions.
type Tracker struct {
	defs []Def
}

// NewTracker returns a tracker over defs, or over Defaults when none are given.
func NewTracker(defs ...Def) *Tracker {
	if len(defs) == 0 {
		defs = Defaults()
	}
	return &Tracker{defs: defs}
}

// Defs lists the tracked definitions in evaluation order.
func (t *Tracker) Defs() []Def {
	out := make([]Def, len(t.defs))
	copy(out, t.defs)
	return out
}

// Lookup finds a definition by id.
func (t *Tracker) Lookup(id string) (Def, bool) {
	for _, d := range t.defs {
		if d.ID == id {
			return d, true
		}
	}
	return Def{}, false
}

// Evaluate marks and returns the definitions newly earned under f. A definition
// already present in the ledger is never returned again.
func (t *Tracker) Evaluate(f Facts, ledger Ledger) []Def {
	var earned []Def
	for _, d := range t.defs {
		if ledger.Earned(d.ID) || d.unlocked == nil || !d.unlocked(f) {
			continue
		}
		ledger.Earn(d.ID)
		earned = append(earned, d)
	}
	return earned
}
