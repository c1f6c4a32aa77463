// Package catalog holds the static practice content: word categories and difficulty levels.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when a category or level id is unknown.
var ErrNotFound = errors.New("not found")

// recognizer outputs that mean nothing was heard
var reservedAnswers = map[string]struct{}{
	"timeout":      {},
	"unrecognized": {},
}

// Reserved reports whether s, trimmed and lower-cased, is a no-match marker.
// No translation may be a reserved word.
func Reserved(s string) bool {
	_, ok := reservedAnswers[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Category is a named set of source word -> translation pairs.
type Category struct {
	ID    string            `json:"id" yaml:"id"`
	Name  string            `json:"name" yaml:"name"`
	Words map[string]string `json:"words" yaml:"words"`
}

// Translation returns the expected translation of a source word.
func (c Category) Translation(word string) (string, bool) {
	t, ok := c.Words[word]
	return t, ok
}

// Size reports how many words the category holds.
func (c Category) Size() int { return len(c.Words) }

// Level describes session length, answer time and score multiplier.
type Level struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Ordinal    int     `json:"ordinal" yaml:"ordinal"`
	WordCount  int     `json:"word_count" yaml:"word_count"`
	TimeLimit  int     `json:"time_limit_seconds" yaml:"time_limit_seconds"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// Catalog is an immutable lookup over categories and levels.
type Catalog struct {
	categories map[string]Category
	levels     map[string]Level
}

// New builds a catalog from explicit tables. Later entries with a duplicate id win.
func New(categories []Category, levels []Level) *Catalog {
	c := &Catalog{
		categories: make(map[string]Category, len(categories)),
		levels:     make(map[string]Level, len(levels)),
	}
	for _, cat := range categories {
		words := make(map[string]string, len(cat.Words))
		for k, v := range cat.Words {
			words[k] = v
		}
		cat.Words = words
		c.categories[cat.ID] = cat
	}
	for _, lvl := range levels {
		c.levels[lvl.ID] = lvl
	}
	return c
}

// Default returns the built-in content tables.
func Default() *Catalog {
	return New(builtinCategories(), builtinLevels())
}

// Category looks up a category by id.
func (c *Catalog) Category(id string) (Category, error) {
	cat, ok := c.categories[id]
	if !ok {
		return Category{}, fmt.Errorf("category %q: %w", id, ErrNotFound)
	}
	return cat, nil
}

// Level looks up a level by id.
func (c *Catalog) Level(id string) (Level, error) {
	lvl, ok := c.levels[id]
	if !ok {
		return Level{}, fmt.Errorf("level %q: %w", id, ErrNotFound)
	}
	return lvl, nil
}

// Categories returns all categories ordered by id.
func (c *Catalog) Categories() []Category {
	out := make([]Category, 0, len(c.categories))
	for _, cat := range c.categories {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Levels returns all levels ordered by ordinal.
func (c *Catalog) Levels() []Level {
	out := make([]Level, 0, len(c.levels))
	for _, lvl := range c.levels {
		out = append(out, lvl)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ordinal == out[j].Ordinal {
			return out[i].ID < out[j].ID
		}
		return out[i].Ordinal < out[j].Ordinal
	})
	return out
}

// Hardest returns the level with the highest ordinal.
func (c *Catalog) Hardest() (Level, bool) {
	levels := c.Levels()
	if len(levels) == 0 {
		return Level{}, false
	}
	return levels[len(levels)-1], true
}

// Merge returns a new catalog with the pack's entries layered over c.
func (c *Catalog) Merge(p Pack) *Catalog {
	categories := c.Categories()
	levels := c.Levels()
	categories = append(categories, p.Categories...)
	levels = append(levels, p.Levels...)
	return New(categories, levels)
}
