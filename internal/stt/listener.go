package stt

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/loqalabs/loqa-speak/internal/audio"
)

// Reasons a Listen call produced no usable text.
const (
	ReasonTimeout      = "timeout"
	ReasonUnrecognized = "unrecognized"
	ReasonError        = "error"
	ReasonCancelled    = "cancelled"
)

// Result is either recognized text or a no-match with a reason.
type Result struct {
	Text       string
	NoMatch    bool
	Reason     string
	Confidence float64
	Feedback   *audio.Feedback
}

// Listener captures one answer and transcribes it within the turn's time limit.
type Listener struct {
	capturer   audio.Capturer
	recognizer Recognizer
	language   string
	grace      time.Duration
	analyze    bool
	log        *slog.Logger
}

type ListenerOption func(*Listener)

// WithGrace extends the transcription deadline past the capture window.
func WithGrace(d time.Duration) ListenerOption {
	return func(l *Listener) { l.grace = d }
}

// WithFeedback attaches delivery feedback for non-empty recordings.
func WithFeedback() ListenerOption {
	return func(l *Listener) { l.analyze = true }
}

func NewListener(capturer audio.Capturer, recognizer Recognizer, language string, log *slog.Logger, opts ...ListenerOption) *Listener {
	l := &Listener{
		capturer:   capturer,
		recognizer: recognizer,
		language:   language,
		log:        log.With(slog.String("component", "listener")),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Listen never returns an error: capture and transcription failures and the
// deadline all surface as a no-match result.
func (l *Listener) Listen(ctx context.Context, timeLimit time.Duration) Result {
	deadline := timeLimit + l.grace
	if deadline <= 0 {
		deadline = l.grace
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	clip, err := l.capturer.Capture(ctx, timeLimit)
	if err != nil {
		return l.noMatch(ctx, err)
	}

	var feedback *audio.Feedback
	if l.analyze && len(clip.Samples) > 0 {
		fb := audio.Analyze(clip)
		feedback = &fb
	}

	transcript, err := l.recognizer.Transcribe(ctx, clip, l.language)
	if err != nil {
		res := l.noMatch(ctx, err)
		res.Feedback = feedback
		return res
	}
	text := strings.TrimSpace(transcript.Text)
	if text == "" {
		return Result{NoMatch: true, Reason: ReasonUnrecognized, Feedback: feedback}
	}
	return Result{Text: text, Confidence: transcript.Confidence, Feedback: feedback}
}

func (l *Listener) noMatch(ctx context.Context, err error) Result {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return Result{NoMatch: true, Reason: ReasonTimeout}
	case errors.Is(err, context.Canceled):
		return Result{NoMatch: true, Reason: ReasonCancelled}
	default:
		l.log.Warn("listen failed", slogError(err))
		return Result{NoMatch: true, Reason: ReasonError}
	}
}
