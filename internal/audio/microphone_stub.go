//go:build !portaudio

package audio

import "fmt"

// NewMicrophone requires building with the portaudio tag.
func NewMicrophone(sampleRate, channels int) (Capturer, error) {
	return nil, fmt.Errorf("microphone capture: %w (build with -tags portaudio)", ErrUnavailable)
}
