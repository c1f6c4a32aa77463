package stt

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loqalabs/loqa-speak/internal/audio"
	"github.com/loqalabs/loqa-speak/internal/config"
)

func TestExecRecognizer(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	script := filepath.Join(t.TempDir(), "fake-stt.sh")
	body := "#!/bin/sh\n" +
		"# echoes the language flag back as the transcript\n" +
		"while [ $# -gt 0 ]; do\n" +
		"  if [ \"$1\" = \"--language\" ]; then lang=$2; fi\n" +
		"  shift\n" +
		"done\n" +
		"printf '{\"text\":\"%s\",\"confidence\":0.5}' \"$lang\"\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))

	rec, err := NewExecRecognizer(config.STTConfig{Command: sh + " " + script, Language: "en"})
	require.NoError(t, err)

	res, err := rec.Transcribe(context.Background(), audio.Clip{Samples: []int16{1, 2, 3}, SampleRate: 16000, Channels: 1}, "ru")
	require.NoError(t, err)
	assert.Equal(t, "ru", res.Text)
	assert.Equal(t, 0.5, res.Confidence)
}

func TestExecRecognizerEmptyCommand(t *testing.T) {
	_, err := NewExecRecognizer(config.STTConfig{Command: "   "})
	assert.Error(t, err)
}

func TestNewSelectsMode(t *testing.T) {
	rec, err := New(config.STTConfig{Mode: "typed"}, nil, newLogger())
	require.NoError(t, err)
	assert.IsType(t, &TypedRecognizer{}, rec)

	_, err = New(config.STTConfig{Mode: "bus"}, nil, newLogger())
	assert.Error(t, err)

	_, err = New(config.STTConfig{Mode: "whisper"}, nil, newLogger())
	assert.Error(t, err)
}
