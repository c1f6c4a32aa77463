// Package stats persists lifetime counters across practice sessions.
package stats

import (
	"encoding/json"
	"sort"
)

// Lifetime holds the counters that outlive a single session. The earned
// achievement ids are part of the persisted record.
type Lifetime struct {
	GamesPlayed  int
	BestScore    int
	LearnedWords map[string]struct{}
	Achievements map[string]struct{}
}

// NewLifetime returns zero-value stats with initialised sets.
func NewLifetime() *Lifetime {
	return &Lifetime{
		LearnedWords: make(map[string]struct{}),
		Achievements: make(map[string]struct{}),
	}
}

func (l *Lifetime) ensure() {
	if l.LearnedWords == nil {
		l.LearnedWords = make(map[string]struct{})
	}
	if l.Achievements == nil {
		l.Achievements = make(map[string]struct{})
	}
}

// Learn adds word to the learned set and reports whether it was new.
func (l *Lifetime) Learn(word string) bool {
	l.ensure()
	if _, ok := l.LearnedWords[word]; ok {
		return false
	}
	l.LearnedWords[word] = struct{}{}
	return true
}

// Forget removes word from the learned set.
func (l *Lifetime) Forget(word string) {
	delete(l.LearnedWords, word)
}

// Knows reports whether word has ever been answered correctly.
func (l *Lifetime) Knows(word string) bool {
	_, ok := l.LearnedWords[word]
	return ok
}

// Earned reports whether the achievement id has been unlocked.
func (l *Lifetime) Earned(id string) bool {
	_, ok := l.Achievements[id]
	return ok
}

// Earn records the achievement id as unlocked.
func (l *Lifetime) Earn(id string) {
	l.ensure()
	l.Achievements[id] = struct{}{}
}

// Revoke removes the achievement id.
func (l *Lifetime) Revoke(id string) {
	delete(l.Achievements, id)
}

// RecordScore raises BestScore if score beats it.
func (l *Lifetime) RecordScore(score int) {
	if score > l.BestScore {
		l.BestScore = score
	}
}

// Words returns the learned words in sorted order.
func (l *Lifetime) Words() []string { return sortedKeys(l.LearnedWords) }

// EarnedIDs returns the earned achievement ids in sorted order.
func (l *Lifetime) EarnedIDs() []string { return sortedKeys(l.Achievements) }

// Clone returns a deep copy.
func (l *Lifetime) Clone() *Lifetime {
	out := NewLifetime()
	out.GamesPlayed = l.GamesPlayed
	out.BestScore = l.BestScore
	for w := range l.LearnedWords {
		out.LearnedWords[w] = struct{}{}
	}
	for id := range l.Achievements {
		out.Achievements[id] = struct{}{}
	}
	return out
}

type lifetimeJSON struct {
	GamesPlayed  int      `json:"gamesPlayed"`
	BestScore    int      `json:"bestScore"`
	LearnedWords []string `json:"learnedWords"`
	Achievements []string `json:"achievements"`
}

// MarshalJSON writes the sets as sorted arrays.
func (l *Lifetime) MarshalJSON() ([]byte, error) {
	return json.Marshal(lifetimeJSON{
		GamesPlayed:  l.GamesPlayed,
		BestScore:    l.BestScore,
		LearnedWords: l.Words(),
		Achievements: l.EarnedIDs(),
	})
}

// UnmarshalJSON reads arrays into sets, dropping duplicates.
func (l *Lifetime) UnmarshalJSON(data []byte) error {
	var raw lifetimeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = *NewLifetime()
	l.GamesPlayed = raw.GamesPlayed
	l.BestScore = raw.BestScore
	for _, w := range raw.LearnedWords {
		l.LearnedWords[w] = struct{}{}
	}
	for _, id := range raw.Achievements {
		l.Achievements[id] = struct{}{}
	}
	return nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
