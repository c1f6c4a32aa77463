package selector_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loqalabs/loqa-speak/internal/catalog"
	"github.com/loqalabs/loqa-speak/internal/selector"
)

func TestSelect_SizeAndDistinct(t *testing.T) {
	c := catalog.Default()
	rng := rand.New(rand.NewSource(7))

	for _, cat := range c.Categories() {
		for _, lvl := range c.Levels() {
			if lvl.WordCount > cat.Size() {
				continue
			}
			words, err := selector.Select(rng, cat, lvl)
			require.NoError(t, err)
			assert.Len(t, words, lvl.WordCount)

			seen := make(map[string]bool)
			for _, w := range words {
				_, ok := cat.Words[w]
				assert.True(t, ok, "word %q not in category %s", w, cat.ID)
				assert.False(t, seen[w], "word %q selected twice", w)
				seen[w] = true
			}
		}
	}
}

func TestSelect_InsufficientWords(t *testing.T) {
	c := catalog.Default()
	food, err := c.Category("2")
	require.NoError(t, err)
	expert, err := c.Level("3")
	require.NoError(t, err)

	words, err := selector.Select(rand.New(rand.NewSource(1)), food, expert)
	assert.ErrorIs(t, err, selector.ErrInsufficientWords)
	assert.Nil(t, words)
}

func TestSelect_WholeCategory(t *testing.T) {
	cat := catalog.Category{ID: "x", Words: map[string]string{"кот": "cat", "дом": "house"}}
	lvl := catalog.Level{ID: "l", WordCount: 2, Multiplier: 1}

	words, err := selector.Select(rand.New(rand.NewSource(3)), cat, lvl)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"кот", "дом"}, words)
}

func TestSelect_DeterministicWithSeed(t *testing.T) {
	c := catalog.Default()
	cat, _ := c.Category("1")
	lvl, _ := c.Level("2")

	a, err := selector.Select(rand.New(rand.NewSource(42)), cat, lvl)
	require.NoError(t, err)
	b, err := selector.Select(rand.New(rand.NewSource(42)), cat, lvl)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
