package runtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loqalabs/loqa-speak/internal/config"
	"github.com/loqalabs/loqa-speak/internal/protocol"
	"github.com/loqalabs/loqa-speak/internal/session"
)

// every word in the pack translates to "yes" so a scripted recognizer can
// answer without knowing the draw order
const soloPack = `metadata:
  name: solo
  version: 1.0.0
categories:
  - id: solo
    name: Solo
    words:
      да: "yes"
      ага: "yes"
      угу: "yes"
      конечно: "yes"
      точно: "yes"
`

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	pack := filepath.Join(dir, "solo.yaml")
	require.NoError(t, os.WriteFile(pack, []byte(soloPack), 0o644))

	cfg := config.Default()
	cfg.Game.Category = "solo"
	cfg.Game.CatalogPack = pack
	cfg.Game.Seed = 42
	cfg.Game.Stats = config.StatsConfig{Backend: "memory"}
	cfg.EventStore.Path = filepath.Join(dir, "events.db")
	cfg.STT.Mode = "mock"
	cfg.STT.Script = []string{"yes", "yes", "yes", "yes", "yes"}
	cfg.STT.TimeoutGraceMS = 0
	return cfg
}

func setup(t *testing.T, cfg config.Config) *Runtime {
	t.Helper()
	rt := New(cfg, newLogger(), nil)
	t.Cleanup(func() { _ = rt.Close(context.Background()) })
	require.NoError(t, rt.Setup(context.Background()))
	return rt
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHeadlessSessionAndAPI(t *testing.T) {
	rt := setup(t, testConfig(t))

	res, err := rt.RunHeadless(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session.Completed, res.Snapshot.Status)
	// 10+12+14+16+18, perfect bonus 50, three lives 15
	assert.Equal(t, 135, res.Snapshot.Score)

	h := rt.Routes()
	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/readyz").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/metrics").Code)

	var st statsResponse
	rec := get(t, h, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 1, st.GamesPlayed)
	assert.Equal(t, 135, st.BestScore)
	assert.Len(t, st.LearnedWords, 5)
	assert.Contains(t, st.Achievements, "first-session")

	var cat catalogResponse
	rec = get(t, h, "/api/catalog")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))
	assert.Len(t, cat.Categories, 5)

	var events []session.Event
	rec = get(t, h, "/api/sessions/"+res.Snapshot.SessionID+"/events")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 7)
	assert.Equal(t, session.EventStarted, events[0].Type)
	assert.Equal(t, session.EventFinished, events[6].Type)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/sessions/missing/events").Code)
}

func TestBadPackFailsSetup(t *testing.T) {
	cfg := testConfig(t)
	cfg.Game.CatalogPack = filepath.Join(t.TempDir(), "missing.yaml")
	rt := New(cfg, newLogger(), nil)
	defer rt.Close(context.Background())
	assert.Error(t, rt.Setup(context.Background()))
}

func TestSessionRelayedOverEmbeddedBus(t *testing.T) {
	cfg := testConfig(t)
	cfg.Bus.Enabled = true
	cfg.Bus.Embedded = true
	cfg.Bus.Port = -1
	rt := setup(t, cfg)

	conn, err := nats.Connect(rt.nats.ClientURL())
	require.NoError(t, err)
	t.Cleanup(conn.Close)
	finished := make(chan *nats.Msg, 1)
	_, err = conn.ChanSubscribe(protocol.SubjectSessionFinished, finished)
	require.NoError(t, err)
	require.NoError(t, conn.Flush())

	_, err = rt.RunHeadless(context.Background())
	require.NoError(t, err)

	select {
	case msg := <-finished:
		var fin protocol.SessionFinished
		require.NoError(t, json.Unmarshal(msg.Data, &fin))
		assert.Equal(t, "completed", fin.Status)
		assert.Equal(t, 135, fin.Score)
		assert.Equal(t, 5, fin.Correct)
	case <-time.After(2 * time.Second):
		t.Fatal("no session.finished on the bus")
	}
}

func TestHTTPServerServesProbes(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTP.Enabled = true
	cfg.HTTP.Port = 0
	rt := setup(t, cfg)
	require.NotEmpty(t, rt.Addr())

	resp, err := http.Get("http://" + rt.Addr() + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
