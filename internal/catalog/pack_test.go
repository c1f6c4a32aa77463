package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

const validPack = `metadata:
  name: kitchen
  version: 0.1.0
  description: Kitchen vocabulary
  author: Loqa Labs
categories:
  - id: kitchen
    name: Кухня
    words:
      ложка: spoon
      вилка: fork
      нож: knife
levels:
  - id: "4"
    name: Мастер
    ordinal: 4
    word_count: 3
    time_limit_seconds: 4
    multiplier: 2.5
`

func TestLoadAndValidatePack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.yaml")
	if err := os.WriteFile(path, []byte(validPack), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPack(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := ValidatePack(p); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(p.Categories) != 1 || p.Categories[0].Words["нож"] != "knife" {
		t.Fatalf("unexpected categories: %+v", p.Categories)
	}
}

func TestValidatePackMissingFields(t *testing.T) {
	if err := ValidatePack(Pack{}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidatePackRejectsBadLevel(t *testing.T) {
	p := Pack{
		Metadata: PackMetadata{Name: "x", Version: "1"},
		Levels:   []Level{{ID: "fast", Ordinal: 1, WordCount: 2, TimeLimit: 3, Multiplier: 0.5}},
	}
	if err := ValidatePack(p); err == nil {
		t.Fatalf("expected error for multiplier below 1")
	}
}

func TestValidatePackRejectsReservedTranslation(t *testing.T) {
	p := Pack{
		Metadata:   PackMetadata{Name: "x", Version: "1"},
		Categories: []Category{{ID: "time", Name: "Time", Words: map[string]string{"тайм-аут": " Timeout"}}},
	}
	if err := ValidatePack(p); err == nil {
		t.Fatalf("expected error for a reserved translation")
	}

	p.Categories[0].Words = map[string]string{"ошибка": "error"}
	if err := ValidatePack(p); err != nil {
		t.Fatalf("error is an ordinary word: %v", err)
	}
}

func TestMergePackMakesNewHardest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.yaml")
	if err := os.WriteFile(path, []byte(validPack), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadPack(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	merged := Default().Merge(p)
	if _, err := merged.Category("kitchen"); err != nil {
		t.Fatalf("expected merged category: %v", err)
	}
	if _, err := merged.Category("1"); err != nil {
		t.Fatalf("expected built-in category to survive merge: %v", err)
	}
	hardest, ok := merged.Hardest()
	if !ok || hardest.ID != "4" {
		t.Fatalf("expected level 4 to be hardest, got %+v", hardest)
	}
}
