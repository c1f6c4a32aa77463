package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pack is a content bundle that extends or overrides the built-in tables.
type Pack struct {
	Metadata   PackMetadata `yaml:"metadata"`
	Categories []Category   `yaml:"categories"`
	Levels     []Level      `yaml:"levels,omitempty"`
}

type PackMetadata struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
	Author      string `yaml:"author"`
}

// LoadPack reads a pack from disk.
func LoadPack(path string) (Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pack{}, err
	}
	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Pack{}, fmt.Errorf("parse pack: %w", err)
	}
	return p, nil
}

// ValidatePack ensures a pack contains usable content.
func ValidatePack(p Pack) error {
	if p.Metadata.Name == "" {
		return fmt.Errorf("metadata.name is required")
	}
	if p.Metadata.Version == "" {
		return fmt.Errorf("metadata.version is required")
	}
	if len(p.Categories) == 0 && len(p.Levels) == 0 {
		return fmt.Errorf("pack must declare categories or levels")
	}
	seen := make(map[string]struct{})
	for i, cat := range p.Categories {
		if cat.ID == "" {
			return fmt.Errorf("categories[%d].id is required", i)
		}
		if _, dup := seen[cat.ID]; dup {
			return fmt.Errorf("category %q declared twice", cat.ID)
		}
		seen[cat.ID] = struct{}{}
		if len(cat.Words) == 0 {
			return fmt.Errorf("category %q has no words", cat.ID)
		}
		for word, translation := range cat.Words {
			if strings.TrimSpace(word) == "" || strings.TrimSpace(translation) == "" {
				return fmt.Errorf("category %q contains an empty word or translation", cat.ID)
			}
			if Reserved(translation) {
				return fmt.Errorf("category %q: translation %q of %q is reserved", cat.ID, translation, word)
			}
		}
	}
	seen = make(map[string]struct{})
	for i, lvl := range p.Levels {
		if lvl.ID == "" {
			return fmt.Errorf("levels[%d].id is required", i)
		}
		if _, dup := seen[lvl.ID]; dup {
			return fmt.Errorf("level %q declared twice", lvl.ID)
		}
		seen[lvl.ID] = struct{}{}
		if lvl.Ordinal <= 0 {
			return fmt.Errorf("level %q ordinal must be positive", lvl.ID)
		}
		if lvl.WordCount <= 0 {
			return fmt.Errorf("level %q word_count must be positive", lvl.ID)
		}
		if lvl.TimeLimit <= 0 {
			return fmt.Errorf("level %q time_limit_seconds must be positive", lvl.ID)
		}
		if lvl.Multiplier < 1 {
			return fmt.Errorf("level %q multiplier must be >= 1", lvl.ID)
		}
	}
	return nil
}
