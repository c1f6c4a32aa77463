package audio

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// Silence produces an empty recording. It is used with typed or scripted
// recognizers that ignore the audio.
type Silence struct {
	sampleRate int
	channels   int
}

func NewSilence(sampleRate, channels int) *Silence {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	if channels <= 0 {
		channels = 1
	}
	return &Silence{sampleRate: sampleRate, channels: channels}
}

func (s *Silence) Capture(ctx context.Context, _ time.Duration) (Clip, error) {
	if err := ctx.Err(); err != nil {
		return Clip{}, err
	}
	return Clip{SampleRate: s.sampleRate, Channels: s.channels}, nil
}

// FileCapturer replays a WAV file as the recording, trimmed to the capture window.
type FileCapturer struct {
	path string
}

func NewFileCapturer(path string) *FileCapturer {
	return &FileCapturer{path: path}
}

func (f *FileCapturer) Capture(ctx context.Context, d time.Duration) (Clip, error) {
	if err := ctx.Err(); err != nil {
		return Clip{}, err
	}
	clip, err := ReadWAV(f.path)
	if err != nil {
		return Clip{}, err
	}
	if limit := frameCount(d, clip.SampleRate) * max(clip.Channels, 1); limit > 0 && len(clip.Samples) > limit {
		clip.Samples = clip.Samples[:limit]
	}
	return clip, nil
}

// ReadWAV decodes a PCM WAV file.
func ReadWAV(path string) (Clip, error) {
	file, err := os.Open(path)
	if err != nil {
		return Clip{}, fmt.Errorf("open wav: %w", err)
	}
	defer file.Close()

	dec := wav.NewDecoder(file)
	if !dec.IsValidFile() {
		return Clip{}, fmt.Errorf("%s is not a valid wav file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("decode wav: %w", err)
	}
	clip := Clip{
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		Samples:    make([]int16, len(buf.Data)),
	}
	shift := 0
	if dec.BitDepth > 16 {
		shift = int(dec.BitDepth) - 16
	}
	for i, v := range buf.Data {
		clip.Samples[i] = int16(v >> shift)
	}
	return clip, nil
}
