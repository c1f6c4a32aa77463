package stt

import (
	"context"
	"errors"

	"github.com/loqalabs/loqa-speak/internal/audio"
	"github.com/loqalabs/loqa-speak/internal/protocol"
)

// remoteRecognizer forwards clips to a Service on another process over the bus.
type remoteRecognizer struct {
	client Transcriber
}

func NewRemoteRecognizer(client Transcriber) Recognizer {
	return &remoteRecognizer{client: client}
}

func (r *remoteRecognizer) Transcribe(ctx context.Context, clip audio.Clip, language string) (TranscriptResult, error) {
	req := protocol.TranscribeRequest{
		Language:   language,
		SampleRate: clip.SampleRate,
		Channels:   clip.Channels,
		PCM:        clip.PCM(),
	}
	var reply protocol.TranscribeReply
	if err := r.client.RequestJSON(ctx, protocol.SubjectTranscribe, req, &reply); err != nil {
		return TranscriptResult{}, err
	}
	if reply.Error != "" {
		return TranscriptResult{}, errors.New(reply.Error)
	}
	return TranscriptResult{Text: reply.Text, Confidence: reply.Confidence}, nil
}
