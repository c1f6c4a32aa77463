// Package selector draws the word sequence for a session.
package selector

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/loqalabs/loqa-speak/internal/catalog"
)

// ErrInsufficientWords is returned when a level asks for more words than a category holds.
var ErrInsufficientWords = errors.New("insufficient words")

// Fits reports whether the level can be played against the category.
func Fits(cat catalog.Category, lvl catalog.Level) error {
	if lvl.WordCount <= 0 {
		return fmt.Errorf("level %q word count %d: %w", lvl.ID, lvl.WordCount, ErrInsufficientWords)
	}
	if lvl.WordCount > cat.Size() {
		return fmt.Errorf("level %q needs %d words, category %q has %d: %w",
			lvl.ID, lvl.WordCount, cat.ID, cat.Size(), ErrInsufficientWords)
	}
	return nil
}

// Select returns lvl.WordCount distinct source words from cat, sampled uniformly
// without replacement. Keys are sorted first so a seeded rng is reproducible.
func Select(rng *rand.Rand, cat catalog.Category, lvl catalog.Level) ([]string, error) {
	if err := Fits(cat, lvl); err != nil {
		return nil, err
	}
	keys := make([]string, 0, cat.Size())
	for word := range cat.Words {
		keys = append(keys, word)
	}
	sort.Strings(keys)

	// partial Fisher-Yates
	for i := 0; i < lvl.WordCount; i++ {
		j := i + rng.Intn(len(keys)-i)
		keys[i], keys[j] = keys[j], keys[i]
	}
	out := make([]string, lvl.WordCount)
	copy(out, keys[:lvl.WordCount])
	return out, nil
}
