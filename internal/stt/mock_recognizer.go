package stt

import (
	"context"
	"sync"

	"github.com/loqalabs/loqa-speak/internal/audio"
)

// mockRecognizer replays a fixed script of answers, one per call. Once the
// script is exhausted it reports an empty transcript.
type mockRecognizer struct {
	mu     sync.Mutex
	script []string
	next   int
}

func NewMockRecognizer(script []string) Recognizer {
	return &mockRecognizer{script: append([]string(nil), script...)}
}

func (m *mockRecognizer) Transcribe(ctx context.Context, _ audio.Clip, _ string) (TranscriptResult, error) {
	if err := ctx.Err(); err != nil {
		return TranscriptResult{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.next >= len(m.script) {
		return TranscriptResult{}, nil
	}
	text := m.script[m.next]
	m.next++
	return TranscriptResult{Text: text, Confidence: 1}, nil
}
