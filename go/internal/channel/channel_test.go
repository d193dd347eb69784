package channel

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitacoin/vitacoin-go/go/internal/events"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxReconnectAttempts = 3
	cfg.ReconnectBaseWait = 10 * time.Millisecond
	cfg.ReconnectMaxWait = 50 * time.Millisecond
	return cfg
}

func TestPushURL(t *testing.T) {
	u, err := PushURL("http://localhost:8080", "u1")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws/u1", u)

	u, err = PushURL("https://rewards.example.com/", "u2")
	require.NoError(t, err)
	assert.Equal(t, "wss://rewards.example.com/ws/u2", u)
}

func TestChannelDeliversEventsInOrder(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ws/u1", r.URL.Path)
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"balance_update","data":{"coins":50,"delta":10,"source":"Daily Reward"}}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"leaderboard_update","data":[{"id":"u1","name":"Ada","coins":50,"rank":1}]}`))

		// hold the connection open until the client walks away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ch, err := Dial(server.URL, "u1", testConfig(), nil)
	require.NoError(t, err)
	defer ch.Close()

	first := <-ch.Events()
	assert.Equal(t, events.EventTypeBalanceUpdate, first.Type)

	second := <-ch.Events()
	assert.Equal(t, events.EventTypeLeaderboardUpdate, second.Type)
}

func TestChannelSkipsMalformedMessages(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"task_completed","data":{"task_id":"t1","task_title":"First Login","coins_earned":5}}`))

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ch, err := Dial(server.URL, "u1", testConfig(), nil)
	require.NoError(t, err)
	defer ch.Close()

	event := <-ch.Events()
	assert.Equal(t, events.EventTypeTaskCompleted, event.Type)
}

func TestCloseEndsEventSequence(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ch, err := Dial(server.URL, "u1", testConfig(), nil)
	require.NoError(t, err)

	ch.Close()
	ch.Close() // idempotent

	select {
	case _, open := <-ch.Events():
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("event sequence did not end after Close")
	}
}

func TestChannelReconnectsAfterTransportDrop(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var connects atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		n := connects.Add(1)
		if n == 1 {
			// first connection drops immediately
			conn.Close()
			return
		}

		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"balance_update","data":{"coins":70,"delta":20,"source":"Task: Coin Collector"}}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ch, err := Dial(server.URL, "u1", testConfig(), nil)
	require.NoError(t, err)
	defer ch.Close()

	select {
	case event := <-ch.Events():
		require.NotNil(t, event)
		assert.Equal(t, events.EventTypeBalanceUpdate, event.Type)
		assert.GreaterOrEqual(t, connects.Load(), int32(2))
	case <-time.After(5 * time.Second):
		t.Fatal("did not receive event after reconnect")
	}
}

func TestChannelGivesUpAfterBoundedAttempts(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		conn.Close()
	}))

	cfg := testConfig()
	ch, err := Dial(server.URL, "u1", cfg, nil)
	require.NoError(t, err)
	defer ch.Close()

	// kill the server so every reconnect attempt fails
	server.Close()

	select {
	case _, open := <-ch.Events():
		assert.False(t, open)
	case <-time.After(5 * time.Second):
		t.Fatal("channel did not give up after bounded reconnect attempts")
	}
}
