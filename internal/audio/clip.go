// Package audio captures answer recordings and exchanges them as 16-bit PCM.
package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/loqalabs/loqa-speak/internal/config"
)

// ErrUnavailable is returned when a capture backend is not compiled in or has no device.
var ErrUnavailable = errors.New("audio capture unavailable")

// Clip is a mono or interleaved multi-channel 16-bit recording.
type Clip struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Frames is the number of sample frames in the clip.
func (c Clip) Frames() int {
	if c.Channels <= 0 {
		return len(c.Samples)
	}
	return len(c.Samples) / c.Channels
}

// Duration is the playback length of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// PCM returns the samples as little-endian bytes.
func (c Clip) PCM() []byte {
	out := make([]byte, len(c.Samples)*2)
	for i, s := range c.Samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// Capturer records up to d of audio.
type Capturer interface {
	Capture(ctx context.Context, d time.Duration) (Clip, error)
}

// New returns the capturer selected by cfg.Mode.
func New(cfg config.AudioConfig) (Capturer, error) {
	switch cfg.Mode {
	case "", "silence":
		return NewSilence(cfg.SampleRate, cfg.Channels), nil
	case "file":
		return NewFileCapturer(cfg.FilePath), nil
	case "microphone":
		return NewMicrophone(cfg.SampleRate, cfg.Channels)
	default:
		return nil, fmt.Errorf("unsupported audio mode %q", cfg.Mode)
	}
}

func frameCount(d time.Duration, sampleRate int) int {
	if d <= 0 || sampleRate <= 0 {
		return 0
	}
	return int(d.Seconds() * float64(sampleRate))
}
