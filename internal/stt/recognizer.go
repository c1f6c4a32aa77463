package stt

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/loqalabs/loqa-speak/internal/audio"
	"github.com/loqalabs/loqa-speak/internal/config"
)

// TranscriptResult captures recognizer output.
type TranscriptResult struct {
	Text       string
	Confidence float64
}

// Recognizer abstracts STT backends.
type Recognizer interface {
	Transcribe(ctx context.Context, clip audio.Clip, language string) (TranscriptResult, error)
}

// Transcriber is the subset of the bus client a remote recognizer needs.
type Transcriber interface {
	RequestJSON(ctx context.Context, subject string, req, resp any) error
}

// New returns the recognizer selected by cfg.Mode. remote is only used for mode=bus.
func New(cfg config.STTConfig, remote Transcriber, log *slog.Logger) (Recognizer, error) {
	switch cfg.Mode {
	case "mock":
		return NewMockRecognizer(cfg.Script), nil
	case "typed":
		return NewTypedRecognizer(), nil
	case "exec":
		return NewExecRecognizer(cfg)
	case "bus":
		if remote == nil {
			return nil, fmt.Errorf("stt mode bus requires a bus connection")
		}
		return NewRemoteRecognizer(remote), nil
	default:
		return nil, fmt.Errorf("unsupported stt mode %q", cfg.Mode)
	}
}

func slogError(err error) slog.Attr {
	return slog.String("error", err.Error())
}
