// Package runtime wires configuration into a running game: storage, the
// event journal and bus, speech recognition, the session engine and the
// optional HTTP surface.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/loqalabs/loqa-speak/internal/audio"
	"github.com/loqalabs/loqa-speak/internal/bus"
	"github.com/loqalabs/loqa-speak/internal/catalog"
	"github.com/loqalabs/loqa-speak/internal/config"
	"github.com/loqalabs/loqa-speak/internal/eventstore"
	"github.com/loqalabs/loqa-speak/internal/natsserver"
	"github.com/loqalabs/loqa-speak/internal/notify"
	"github.com/loqalabs/loqa-speak/internal/relay"
	"github.com/loqalabs/loqa-speak/internal/session"
	"github.com/loqalabs/loqa-speak/internal/stats"
	"github.com/loqalabs/loqa-speak/internal/stt"
	"github.com/loqalabs/loqa-speak/internal/tui"
)

type Runtime struct {
	cfg      config.Config
	logger   *slog.Logger
	traceOut io.Writer

	telemetryClose func(context.Context) error
	metrics        http.Handler
	httpServer     *http.Server
	listenAddr     string
	ready          atomic.Bool
	wg             sync.WaitGroup

	store      stats.Store
	events     *eventstore.Store
	nats       *natsserver.EmbeddedServer
	bus        *bus.Client
	sttService *stt.Service
	capturer   audio.Capturer
	typed      *stt.TypedRecognizer
	listener   *stt.Listener
	engine     *session.Engine
}

// New prepares a runtime. traceOut receives spans when traces are enabled
// without an OTLP endpoint; nil discards them.
func New(cfg config.Config, logger *slog.Logger, traceOut io.Writer) *Runtime {
	return &Runtime{
		cfg:      cfg,
		logger:   logger,
		traceOut: traceOut,
	}
}

// Setup builds every component and starts the HTTP server when enabled.
// Close must be called even when Setup fails.
func (r *Runtime) Setup(ctx context.Context) error {
	shutdownTelemetry, metrics, err := setupTelemetry(r.cfg, r.traceOut, r.logger)
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	r.telemetryClose = shutdownTelemetry
	r.metrics = metrics

	cat, err := r.loadCatalog()
	if err != nil {
		return err
	}

	r.store, err = stats.Open(ctx, r.cfg.Game.Stats, r.logger)
	if err != nil {
		return fmt.Errorf("open stats store: %w", err)
	}

	r.events, err = eventstore.Open(ctx, r.cfg.EventStore, r.logger)
	if err != nil {
		return fmt.Errorf("open event store: %w", err)
	}

	if err := r.connectBus(ctx); err != nil {
		return err
	}

	if err := r.setupSpeech(ctx); err != nil {
		return err
	}

	sinks := session.MultiSink{eventstore.NewRecorder(r.events)}
	if r.bus != nil {
		sinks = append(sinks, relay.New(r.bus, r.logger))
	}
	if r.cfg.Notify.Enabled {
		sinks = append(sinks, notify.New(true, r.cfg.Notify.Icon, r.logger))
	}

	opts := session.Options{
		Catalog:  cat,
		Store:    r.store,
		Sink:     sinks,
		Logger:   r.logger,
		Lives:    r.cfg.Game.Lives,
		Language: r.cfg.STT.Language,
	}
	if r.cfg.Game.Seed != 0 {
		opts.Rand = rand.New(rand.NewSource(r.cfg.Game.Seed))
	}
	r.engine, err = session.New(ctx, opts)
	if err != nil {
		return fmt.Errorf("create session engine: %w", err)
	}

	if r.cfg.HTTP.Enabled {
		if err := r.startHTTP(); err != nil {
			return err
		}
	}

	r.ready.Store(true)
	r.logger.Info("runtime started",
		slog.Int("categories", len(cat.Categories())),
		slog.Int("levels", len(cat.Levels())),
		slog.String("stt_mode", r.cfg.STT.Mode))
	return nil
}

func (r *Runtime) loadCatalog() (*catalog.Catalog, error) {
	cat := catalog.Default()
	path := r.cfg.Game.CatalogPack
	if path == "" {
		return cat, nil
	}
	pack, err := catalog.LoadPack(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog pack: %w", err)
	}
	if err := catalog.ValidatePack(pack); err != nil {
		return nil, fmt.Errorf("invalid catalog pack %s: %w", path, err)
	}
	r.logger.Info("catalog pack loaded",
		slog.String("pack", pack.Metadata.Name),
		slog.String("version", pack.Metadata.Version))
	return cat.Merge(pack), nil
}

func (r *Runtime) connectBus(ctx context.Context) error {
	if !r.cfg.Bus.Enabled {
		return nil
	}
	busCfg := r.cfg.Bus
	ns, err := natsserver.Start(busCfg, r.logger)
	if err != nil {
		return fmt.Errorf("failed to start embedded NATS: %w", err)
	}
	r.nats = ns
	if ns != nil {
		busCfg.Servers = []string{ns.ClientURL()}
	}
	r.bus, err = bus.Connect(ctx, busCfg, r.cfg.RuntimeName, r.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to bus: %w", err)
	}
	return nil
}

func (r *Runtime) setupSpeech(ctx context.Context) error {
	var err error
	r.capturer, err = audio.New(r.cfg.Audio)
	if err != nil {
		return fmt.Errorf("open audio capture: %w", err)
	}

	var remote stt.Transcriber
	if r.bus != nil {
		remote = r.bus
	}
	recognizer, err := stt.New(r.cfg.STT, remote, r.logger)
	if err != nil {
		return fmt.Errorf("create recognizer: %w", err)
	}
	if typed, ok := recognizer.(*stt.TypedRecognizer); ok {
		r.typed = typed
	}

	if r.cfg.STT.Serve && r.bus != nil {
		r.sttService = stt.NewService(ctx, r.bus, recognizer, r.logger)
		if err := r.sttService.Start(); err != nil {
			return fmt.Errorf("start stt service: %w", err)
		}
	}

	grace := time.Duration(r.cfg.STT.TimeoutGraceMS) * time.Millisecond
	r.listener = stt.NewListener(r.capturer, recognizer, r.cfg.STT.Language, r.logger,
		stt.WithGrace(grace), stt.WithFeedback())
	return nil
}

func (r *Runtime) startHTTP() error {
	addr := fmt.Sprintf("%s:%d", r.cfg.HTTP.Bind, r.cfg.HTTP.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	r.listenAddr = ln.Addr().String()
	r.httpServer = &http.Server{
		Handler:           r.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.Error("http server failed", slogError(err))
		}
	}()
	r.logger.Info("http server listening", slog.String("addr", r.listenAddr))
	return nil
}

// Engine exposes the session engine for front-ends.
func (r *Runtime) Engine() *session.Engine { return r.engine }

// Addr is the bound HTTP address, empty when HTTP is disabled.
func (r *Runtime) Addr() string { return r.listenAddr }

// DefaultSession is the session configured under game.*.
func (r *Runtime) DefaultSession() session.Config {
	return session.Config{
		Category: r.cfg.Game.Category,
		Level:    r.cfg.Game.Level,
		Mode:     session.Mode(r.cfg.Game.Mode),
	}
}

// RunHeadless plays one session with the configured defaults.
func (r *Runtime) RunHeadless(ctx context.Context) (session.Result, error) {
	if _, err := r.engine.Start(ctx, r.DefaultSession()); err != nil {
		return session.Result{}, err
	}
	return session.Run(ctx, r.engine, r.listener)
}

// RunConsole runs the interactive game until the player quits or ctx ends.
func (r *Runtime) RunConsole(ctx context.Context) error {
	model := tui.New(ctx, tui.Options{
		Engine:    r.engine,
		Listener:  r.listener,
		Typed:     r.typed,
		Countdown: true,
		Logger:    r.logger,
	})
	_, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Close saves lifetime stats and releases everything Setup opened.
func (r *Runtime) Close(ctx context.Context) error {
	r.ready.Store(false)
	var errs []error

	if r.engine != nil {
		if snap := r.engine.Snapshot(); snap.Status == session.InProgress {
			if _, err := r.engine.Abandon(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		if err := r.engine.Save(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if r.httpServer != nil {
		if err := r.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		r.wg.Wait()
	}
	if r.sttService != nil {
		r.sttService.Close()
	}
	if r.bus != nil {
		r.bus.Close()
	}
	if r.nats != nil {
		r.nats.Shutdown()
	}
	if closer, ok := r.capturer.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close audio: %w", err))
		}
	}
	if r.events != nil {
		if err := r.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close event store: %w", err))
		}
	}
	if closer, ok := r.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close stats store: %w", err))
		}
	}
	if r.telemetryClose != nil {
		if err := r.telemetryClose(ctx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func slogError(err error) slog.Attr {
	return slog.String("error", err.Error())
}
