package relay_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loqalabs/loqa-speak/internal/achievement"
	"github.com/loqalabs/loqa-speak/internal/bus"
	"github.com/loqalabs/loqa-speak/internal/config"
	"github.com/loqalabs/loqa-speak/internal/natsserver"
	"github.com/loqalabs/loqa-speak/internal/protocol"
	"github.com/loqalabs/loqa-speak/internal/relay"
	"github.com/loqalabs/loqa-speak/internal/session"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type captured struct {
	subject string
	body    any
}

type fakePublisher struct {
	msgs []captured
}

func (f *fakePublisher) PublishJSON(subject string, v any) error {
	f.msgs = append(f.msgs, captured{subject: subject, body: v})
	return nil
}

func snapshot() session.Snapshot {
	lives := 2
	return session.Snapshot{
		SessionID: "s-1",
		Config:    session.Config{Category: "1", Level: "1", Mode: session.Classic},
		Status:    session.InProgress,
		Words:     []string{"кот", "дом"},
		Score:     12,
		Streak:    2,
		Lives:     &lives,
	}
}

func TestTurnEventPublishesResultAndUnlocks(t *testing.T) {
	pub := &fakePublisher{}
	r := relay.New(pub, discard())

	recognized := "house"
	turn := session.Turn{Index: 1, Word: "дом", Expected: "house", Recognized: &recognized, Outcome: session.Correct, Points: 12}
	unlocked := []achievement.Def{achievement.NewDef("streak-master", "Мастер серии", "", nil)}

	err := r.Publish(context.Background(), session.Event{Type: session.EventTurn, Snapshot: snapshot(), Turn: &turn, Unlocked: unlocked})
	require.NoError(t, err)
	require.Len(t, pub.msgs, 2)

	assert.Equal(t, protocol.SubjectTurnResult, pub.msgs[0].subject)
	tr := pub.msgs[0].body.(protocol.TurnResult)
	assert.Equal(t, "s-1", tr.SessionID)
	assert.Equal(t, 12, tr.Points)
	assert.Equal(t, 2, *tr.Lives)

	assert.Equal(t, protocol.SubjectAchievementUnlocked, pub.msgs[1].subject)
	assert.Equal(t, "streak-master", pub.msgs[1].body.(protocol.AchievementUnlocked).ID)
}

func TestAbandonPublishesFinishedWithAbandonedStatus(t *testing.T) {
	pub := &fakePublisher{}
	r := relay.New(pub, discard())

	require.NoError(t, r.Publish(context.Background(), session.Event{Type: session.EventAbandoned, Snapshot: snapshot(), BestScore: 40}))
	require.Len(t, pub.msgs, 1)
	fin := pub.msgs[0].body.(protocol.SessionFinished)
	assert.Equal(t, "abandoned", fin.Status)
	assert.Equal(t, 40, fin.BestScore)
}

func TestRelayOverEmbeddedNATS(t *testing.T) {
	srv, err := natsserver.Start(config.BusConfig{Enabled: true, Embedded: true, Port: -1}, discard())
	require.NoError(t, err)
	t.Cleanup(srv.Shutdown)

	conn, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	client := bus.NewClient(conn, discard())
	t.Cleanup(client.Close)

	received := make(chan *nats.Msg, 1)
	sub, err := conn.ChanSubscribe(protocol.SubjectSessionStarted, received)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Unsubscribe() })
	require.NoError(t, conn.Flush())

	r := relay.New(client, discard())
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Publish(context.Background(), session.Event{Type: session.EventStarted, Snapshot: snapshot(), At: at}))

	select {
	case msg := <-received:
		var started protocol.SessionStarted
		require.NoError(t, json.Unmarshal(msg.Data, &started))
		assert.Equal(t, "s-1", started.SessionID)
		assert.Equal(t, 2, started.Words)
		assert.True(t, at.Equal(started.Timestamp))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session.started")
	}
}
