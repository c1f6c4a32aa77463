//go:build portaudio

package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

// Microphone records from the default input device.
type Microphone struct {
	mu         sync.Mutex
	sampleRate int
	channels   int
}

// NewMicrophone initialises portaudio. Call Close to release it.
func NewMicrophone(sampleRate, channels int) (Capturer, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("init portaudio: %w", err)
	}
	return &Microphone{sampleRate: sampleRate, channels: channels}, nil
}

// Capture blocks until d has been recorded or ctx is done, returning what was captured.
func (m *Microphone) Capture(ctx context.Context, d time.Duration) (Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf := make([]int16, framesPerBuffer*m.channels)
	stream, err := portaudio.OpenDefaultStream(m.channels, 0, float64(m.sampleRate), framesPerBuffer, buf)
	if err != nil {
		return Clip{}, fmt.Errorf("open input stream: %w", err)
	}
	defer stream.Close()
	if err := stream.Start(); err != nil {
		return Clip{}, fmt.Errorf("start input stream: %w", err)
	}
	defer stream.Stop()

	want := frameCount(d, m.sampleRate) * m.channels
	clip := Clip{SampleRate: m.sampleRate, Channels: m.channels, Samples: make([]int16, 0, want)}
	for len(clip.Samples) < want {
		if ctx.Err() != nil {
			break
		}
		if err := stream.Read(); err != nil {
			return clip, fmt.Errorf("read input stream: %w", err)
		}
		clip.Samples = append(clip.Samples, buf...)
	}
	if len(clip.Samples) > want {
		clip.Samples = clip.Samples[:want]
	}
	return clip, nil
}

// Close releases portaudio.
func (m *Microphone) Close() error {
	return portaudio.Terminate()
}
