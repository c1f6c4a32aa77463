package achievement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loqalabs/loqa-speak/internal/achievement"
)

type memLedger map[string]bool

func (m memLedger) Earned(id string) bool { return m[id] }
func (m memLedger) Earn(id string)        { m[id] = true }

func ids(defs []achievement.Def) []string {
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.ID)
	}
	return out
}

func TestEvaluate_Predicates(t *testing.T) {
	tests := []struct {
		name  string
		facts achievement.Facts
		want  []string
	}{
		{"nothing yet", achievement.Facts{}, nil},
		{"first session", achievement.Facts{GamesPlayed: 1}, []string{achievement.FirstSession}},
		{"streak of five", achievement.Facts{Streak: 5}, []string{achievement.StreakMaster}},
		{"streak of four", achievement.Facts{Streak: 4}, nil},
		{"nineteen words", achievement.Facts{LearnedWords: 19}, nil},
		{"twenty words", achievement.Facts{LearnedWords: 20}, []string{achievement.Vocabulary}},
		{"perfect classic", achievement.Facts{Completed: true, Classic: true, Perfect: true}, []string{achievement.Perfectionist}},
		{"perfect training", achievement.Facts{Completed: true, Perfect: true}, nil},
		{"perfect but unfinished", achievement.Facts{Classic: true, Perfect: true}, nil},
		{"hardest level done", achievement.Facts{Completed: true, HardestLevel: true}, []string{achievement.SpeedRunner}},
		{"hardest level failed", achievement.Facts{HardestLevel: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := achievement.NewTracker().Evaluate(tt.facts, memLedger{})
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestEvaluate_FiresOnce(t *testing.T) {
	tracker := achievement.NewTracker()
	ledger := memLedger{}

	first := tracker.Evaluate(achievement.Facts{LearnedWords: 20}, ledger)
	require.Equal(t, []string{achievement.Vocabulary}, ids(first))

	again := tracker.Evaluate(achievement.Facts{LearnedWords: 25}, ledger)
	assert.Empty(t, again)

	// counters regressing does not revoke or re-award
	regressed := tracker.Evaluate(achievement.Facts{LearnedWords: 0}, ledger)
	assert.Empty(t, regressed)
	assert.True(t, ledger.Earned(achievement.Vocabulary))
}

func TestCustomDefs(t *testing.T) {
	tracker := achievement.NewTracker(achievement.NewDef("ten", "Ten", "Play ten games", func(f achievement.Facts) bool {
		return f.GamesPlayed >= 10
	}))
	assert.Len(t, tracker.Defs(), 1)
	assert.Empty(t, tracker.Evaluate(achievement.Facts{GamesPlayed: 9}, memLedger{}))
	assert.Len(t, tracker.Evaluate(achievement.Facts{GamesPlayed: 10}, memLedger{}), 1)

	_, ok := tracker.Lookup("ten")
	assert.True(t, ok)
}
