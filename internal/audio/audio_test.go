package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loqalabs/loqa-speak/internal/config"
)

func tone(seconds float64, amplitude int16, rate int) Clip {
	n := int(seconds * float64(rate))
	samples := make([]int16, n)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = amplitude
		} else {
			samples[i] = -amplitude
		}
	}
	return Clip{Samples: samples, SampleRate: rate, Channels: 1}
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name   string
		clip   Clip
		length Verdict
		volume Verdict
	}{
		{"short and quiet", tone(0.2, 100, 16000), VerdictTooShort, VerdictTooQuiet},
		{"good", tone(1.5, 4000, 16000), VerdictGood, VerdictGood},
		{"long and loud", tone(4, 20000, 8000), VerdictTooLong, VerdictTooLoud},
		{"empty", Clip{SampleRate: 16000, Channels: 1}, VerdictTooShort, VerdictTooQuiet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := Analyze(tt.clip)
			assert.Equal(t, tt.length, fb.Length)
			assert.Equal(t, tt.volume, fb.Volume)
			assert.Len(t, fb.Lines(), 2)
		})
	}
}

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.wav")
	clip := tone(0.5, 3000, 16000)

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteWAV(f, clip))
	require.NoError(t, f.Close())

	got, err := ReadWAV(path)
	require.NoError(t, err)
	assert.Equal(t, 16000, got.SampleRate)
	assert.Equal(t, 1, got.Channels)
	assert.Equal(t, clip.Samples, got.Samples)
	assert.Equal(t, 500*time.Millisecond, got.Duration())
}

func TestFileCapturerTrimsToWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteWAV(f, tone(2, 3000, 8000)))
	require.NoError(t, f.Close())

	capturer, err := New(config.AudioConfig{Mode: "file", FilePath: path})
	require.NoError(t, err)
	clip, err := capturer.Capture(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, clip.Duration())
}

func TestSilenceHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSilence(16000, 1).Capture(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPCMLittleEndian(t *testing.T) {
	clip := Clip{Samples: []int16{1, -1}}
	assert.Equal(t, []byte{0x01, 0x00, 0xff, 0xff}, clip.PCM())
}

func TestUnknownMode(t *testing.T) {
	_, err := New(config.AudioConfig{Mode: "tape"})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable))
}
