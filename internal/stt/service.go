package stt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/loqalabs/loqa-speak/internal/audio"
	"github.com/loqalabs/loqa-speak/internal/bus"
	"github.com/loqalabs/loqa-speak/internal/protocol"
	"github.com/nats-io/nats.go"
)

// Service answers transcription requests from other processes using a local recognizer.
type Service struct {
	bus        *bus.Client
	recognizer Recognizer
	log        *slog.Logger
	timeout    time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
	sub        *nats.Subscription
	wg         sync.WaitGroup
	mu         sync.Mutex
	ready      bool
}

func NewService(parent context.Context, busClient *bus.Client, recognizer Recognizer, log *slog.Logger) *Service {
	ctx, cancel := context.WithCancel(parent)
	return &Service{
		bus:        busClient,
		recognizer: recognizer,
		log:        log.With(slog.String("component", "stt-service")),
		timeout:    45 * time.Second,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (s *Service) Start() error {
	sub, err := s.bus.Conn().Subscribe(protocol.SubjectTranscribe, s.handleRequest)
	if err != nil {
		return fmt.Errorf("subscribe transcribe: %w", err)
	}
	s.mu.Lock()
	s.sub = sub
	s.ready = true
	s.mu.Unlock()
	return nil
}

func (s *Service) Close() {
	s.cancel()
	s.mu.Lock()
	sub := s.sub
	s.ready = false
	s.mu.Unlock()
	if sub != nil {
		_ = sub.Drain()
	}
	s.wg.Wait()
}

func (s *Service) Healthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *Service) handleRequest(msg *nats.Msg) {
	var req protocol.TranscribeRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.log.Warn("failed to decode transcribe request", slogError(err))
		s.reply(msg, protocol.TranscribeReply{Error: "invalid request"})
		return
	}
	if len(req.PCM)%2 != 0 {
		s.reply(msg, protocol.TranscribeReply{Error: "pcm payload not aligned"})
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()

		clip := audio.Clip{SampleRate: req.SampleRate, Channels: req.Channels, Samples: make([]int16, len(req.PCM)/2)}
		for i := range clip.Samples {
			clip.Samples[i] = int16(binary.LittleEndian.Uint16(req.PCM[i*2:]))
		}

		result, err := s.recognizer.Transcribe(ctx, clip, req.Language)
		if err != nil {
			s.log.Warn("stt transcription failed", slogError(err))
			s.reply(msg, protocol.TranscribeReply{Error: err.Error()})
			return
		}
		s.reply(msg, protocol.TranscribeReply{Text: result.Text, Confidence: result.Confidence})
	}()
}

func (s *Service) reply(msg *nats.Msg, reply protocol.TranscribeReply) {
	data, err := json.Marshal(reply)
	if err != nil {
		s.log.Warn("failed to marshal transcribe reply", slogError(err))
		return
	}
	if err := msg.Respond(data); err != nil {
		s.log.Warn("failed to respond to transcribe request", slogError(err))
	}
}
