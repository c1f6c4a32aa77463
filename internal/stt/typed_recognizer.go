package stt

import (
	"context"

	"github.com/loqalabs/loqa-speak/internal/audio"
)

// TypedRecognizer stands in for speech when answers are typed. The front-end
// calls Submit; Transcribe waits for the next submitted line.
type TypedRecognizer struct {
	lines chan string
}

func NewTypedRecognizer() *TypedRecognizer {
	return &TypedRecognizer{lines: make(chan string, 1)}
}

// Submit hands a typed answer to a pending or future Transcribe call.
func (t *TypedRecognizer) Submit(text string) {
	select {
	case t.lines <- text:
	default:
		// drop the stale answer so the latest wins
		select {
		case <-t.lines:
		default:
		}
		t.lines <- text
	}
}

// Discard drops an answer nobody has collected yet.
func (t *TypedRecognizer) Discard() {
	select {
	case <-t.lines:
	default:
	}
}

func (t *TypedRecognizer) Transcribe(ctx context.Context, _ audio.Clip, _ string) (TranscriptResult, error) {
	select {
	case text := <-t.lines:
		return TranscriptResult{Text: text, Confidence: 1}, nil
	case <-ctx.Done():
		return TranscriptResult{}, ctx.Err()
	}
}
