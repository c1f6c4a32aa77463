package runtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/loqalabs/loqa-speak/internal/catalog"
)

// Routes builds the HTTP surface: probes, metrics and a read-only JSON API.
func (r *Runtime) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(r.recoveryMiddleware)
	router.Use(r.loggingMiddleware)

	router.Get("/healthz", r.handleHealth)
	router.Get("/readyz", r.handleReady)
	if r.metrics != nil {
		router.Handle("/metrics", r.metrics)
	}
	router.Route("/api", func(api chi.Router) {
		api.Get("/stats", r.handleStats)
		api.Get("/catalog", r.handleCatalog)
		api.Get("/session", r.handleSession)
		api.Get("/sessions", r.handleSessions)
		api.Get("/sessions/{id}/events", r.handleSessionEvents)
	})
	return router
}

func (r *Runtime) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (r *Runtime) handleReady(w http.ResponseWriter, _ *http.Request) {
	if r.ready.Load() && (r.bus == nil || r.bus.Healthy()) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready"))
}

type statsResponse struct {
	GamesPlayed  int      `json:"games_played"`
	BestScore    int      `json:"best_score"`
	LearnedWords []string `json:"learned_words"`
	Achievements []string `json:"achievements"`
}

func (r *Runtime) handleStats(w http.ResponseWriter, _ *http.Request) {
	life := r.engine.Lifetime()
	writeJSON(w, http.StatusOK, statsResponse{
		GamesPlayed:  life.GamesPlayed,
		BestScore:    life.BestScore,
		LearnedWords: life.Words(),
		Achievements: life.EarnedIDs(),
	})
}

type catalogResponse struct {
	Categories []catalog.Category `json:"categories"`
	Levels     []catalog.Level    `json:"levels"`
}

func (r *Runtime) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	cat := r.engine.Catalog()
	writeJSON(w, http.StatusOK, catalogResponse{Categories: cat.Categories(), Levels: cat.Levels()})
}

func (r *Runtime) handleSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, r.engine.Snapshot())
}

func (r *Runtime) handleSessions(w http.ResponseWriter, req *http.Request) {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	sessions, err := r.events.ListSessions(req.Context(), req.URL.Query().Get("status"), limit)
	if err != nil {
		r.logger.Error("failed to list sessions", slogError(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (r *Runtime) handleSessionEvents(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	events, err := r.events.ListSessionEvents(req.Context(), id, limit)
	if err != nil {
		r.logger.Error("failed to list session events", slog.String("session_id", id), slogError(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(events) == 0 {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	out := make([]json.RawMessage, 0, len(events))
	for _, e := range events {
		out = append(out, e.Payload)
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (r *Runtime) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		r.logger.Debug("http request",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)))
	})
}

func (r *Runtime) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("panic in http handler", slog.Any("panic", rec), slog.String("path", req.URL.Path))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, req)
	})
}
