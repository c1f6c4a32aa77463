package audio

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV encodes the clip as 16-bit PCM WAV.
func WriteWAV(w io.WriteSeeker, clip Clip) error {
	channels := max(clip.Channels, 1)
	buffer := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: clip.SampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(clip.Samples)),
	}
	for i, s := range clip.Samples {
		buffer.Data[i] = int(s)
	}

	enc := wav.NewEncoder(w, clip.SampleRate, 16, channels, 1)
	if err := enc.Write(buffer); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav encoder: %w", err)
	}
	return nil
}
