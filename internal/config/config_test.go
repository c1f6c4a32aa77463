package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Game.Mode != "classic" || cfg.Game.Lives != 3 {
		t.Fatalf("unexpected game defaults: %+v", cfg.Game)
	}
	if cfg.Game.Stats.Backend != "json" {
		t.Fatalf("expected json stats backend, got %q", cfg.Game.Stats.Backend)
	}
	if cfg.Bus.Servers[0] != "nats://localhost:4222" {
		t.Fatalf("expected default server, got %v", cfg.Bus.Servers)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speak.yaml")
	yml := `
runtime_name: speak-test
game:
  category: "3"
  level: "2"
  mode: training
  stats:
    backend: sqlite
    path: ./stats.db
stt:
  mode: mock
  script: ["cat", "house"]
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RuntimeName != "speak-test" || cfg.Game.Mode != "training" || cfg.Game.Level != "2" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Game.Lives != 3 {
		t.Fatalf("expected default lives to survive partial file, got %d", cfg.Game.Lives)
	}
	if len(cfg.STT.Script) != 2 {
		t.Fatalf("expected script of 2, got %v", cfg.STT.Script)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LOQA_SPEAK_MODE", "training")
	t.Setenv("LOQA_SPEAK_LIVES", "5")
	t.Setenv("LOQA_SPEAK_SEED", "42")
	t.Setenv("LOQA_SPEAK_STT_SCRIPT", "cat, house")
	t.Setenv("LOQA_SPEAK_BUS_ENABLED", "true")
	t.Setenv("LOQA_SPEAK_BUS_SERVERS", "nats://one:4222, nats://two:4222")
	t.Setenv("LOQA_SPEAK_BUS_USERNAME", "alice")
	t.Setenv("LOQA_SPEAK_EVENT_STORE_RETENTION_MODE", "persistent")
	t.Setenv("LOQA_SPEAK_EVENT_STORE_RETENTION_DAYS", "7")
	t.Setenv("LOQA_SPEAK_NOTIFY_ENABLED", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Game.Mode != "training" || cfg.Game.Lives != 5 || cfg.Game.Seed != 42 {
		t.Fatalf("expected game overrides, got %+v", cfg.Game)
	}
	if len(cfg.STT.Script) != 2 || cfg.STT.Script[1] != "house" {
		t.Fatalf("expected script override, got %v", cfg.STT.Script)
	}
	if !cfg.Bus.Enabled || len(cfg.Bus.Servers) != 2 || cfg.Bus.Username != "alice" {
		t.Fatalf("expected bus overrides, got %+v", cfg.Bus)
	}
	if cfg.EventStore.RetentionMode != "persistent" || cfg.EventStore.RetentionDays != 7 {
		t.Fatalf("expected event store overrides")
	}
	if !cfg.Notify.Enabled {
		t.Fatalf("expected notify override")
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"mode":       func(c *Config) { c.Game.Mode = "arcade" },
		"lives":      func(c *Config) { c.Game.Lives = 0 },
		"backend":    func(c *Config) { c.Game.Stats.Backend = "redis" },
		"audio file": func(c *Config) { c.Audio.Mode = "file" },
		"stt exec":   func(c *Config) { c.STT.Mode = "exec" },
		"retention":  func(c *Config) { c.EventStore.RetentionMode = "forever" },
		"stt bus":    func(c *Config) { c.STT.Mode = "bus" },
		"stt serve":  func(c *Config) { c.STT.Serve = true },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := validate(cfg); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
