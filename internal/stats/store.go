package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/loqalabs/loqa-speak/internal/config"
)

// Store loads and saves lifetime stats. A missing source loads as zero stats.
type Store interface {
	Load(ctx context.Context) (*Lifetime, error)
	Save(ctx context.Context, l *Lifetime) error
}

// Open returns the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StatsConfig, log *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case "", "json":
		return NewFileStore(cfg.Path), nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.Path, log)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported stats backend %q", cfg.Backend)
	}
}

// FileStore keeps stats in a JSON document.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) (*Lifetime, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return NewLifetime(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read stats: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return NewLifetime(), nil
	}
	l := NewLifetime()
	if err := json.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("decode stats %s: %w", s.path, err)
	}
	return l, nil
}

func (s *FileStore) Save(ctx context.Context, l *Lifetime) error {
	data, err := Encode(l)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create stats dir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(dir, ".stats-*.json")
	if err != nil {
		return fmt.Errorf("create temp stats: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write stats: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close stats: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace stats: %w", err)
	}
	return nil
}

// Encode renders stats in their canonical on-disk form.
func Encode(l *Lifetime) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return nil, fmt.Errorf("encode stats: %w", err)
	}
	return buf.Bytes(), nil
}

// MemoryStore keeps stats in process; used when persistence is disabled.
type MemoryStore struct {
	mu   sync.Mutex
	data *Lifetime
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(context.Context) (*Lifetime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return NewLifetime(), nil
	}
	return s.data.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, l *Lifetime) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = l.Clone()
	return nil
}
