package reconcile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitacoin/vitacoin-go/go/clients/vitacoin_client"
	"github.com/vitacoin/vitacoin-go/go/internal/events"
	"github.com/vitacoin/vitacoin-go/go/internal/models"
	"github.com/vitacoin/vitacoin-go/go/internal/notify"
	"github.com/vitacoin/vitacoin-go/go/internal/session"
	"github.com/vitacoin/vitacoin-go/go/internal/tokenstore"
)

// newAuthenticatedSession logs a test user in against the given mux, which
// must not already define the login route.
func newAuthenticatedSession(t *testing.T, mux *http.ServeMux, startCoins int) *session.Store {
	t.Helper()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-test",
			"token_type":   "bearer",
			"user": map[string]interface{}{
				"id": "u1", "name": "Ada", "email": "ada@example.com",
				"role": "user", "coins": startCoins,
			},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	tokens, err := tokenstore.NewStore(t.TempDir())
	require.NoError(t, err)

	sess := session.NewStore(vitacoin_client.NewVitacoinClient(server.URL), tokens)
	_, err = sess.Authenticate("ada@example.com", "secret")
	require.NoError(t, err)

	return sess
}

func mustEvent(t *testing.T, eventType events.EventType, payload interface{}) *events.PushEvent {
	t.Helper()
	event, err := events.NewPushEvent(eventType, payload)
	require.NoError(t, err)
	return event
}

func TestApplyBalanceUpdate(t *testing.T) {
	sess := newAuthenticatedSession(t, http.NewServeMux(), 40)
	state := NewViewState()
	feed := notify.NewFeed(10)
	rec := New(sess, state, feed)

	rec.Apply(mustEvent(t, events.EventTypeBalanceUpdate, events.BalanceUpdatePayload{
		Coins: 50, Delta: 10, Source: "Daily Reward",
	}))

	assert.Equal(t, 50, state.Balance())
	assert.Equal(t, 50, sess.CurrentIdentity().Coins)

	recent := feed.Recent()
	require.Len(t, recent, 1)
	assert.Contains(t, recent[0].Message, "+10")
	assert.Contains(t, recent[0].Message, "Daily Reward")
}

func TestApplyLeaderboardSnapshotIsIdempotent(t *testing.T) {
	sess := newAuthenticatedSession(t, http.NewServeMux(), 0)
	state := NewViewState()
	rec := New(sess, state, notify.NewFeed(10))

	snapshot := events.LeaderboardUpdatePayload{
		{ID: "u1", Name: "Ada", Coins: 500, Rank: 1},
		{ID: "u2", Name: "Bob", Coins: 200, Rank: 2},
	}

	rec.Apply(mustEvent(t, events.EventTypeLeaderboardUpdate, snapshot))
	first := state.Leaderboard()

	rec.Apply(mustEvent(t, events.EventTypeLeaderboardUpdate, snapshot))
	second := state.Leaderboard()

	assert.Equal(t, first, second)
	require.Len(t, second, 2)
	assert.Equal(t, "Ada", second[0].Name)
}

func TestApplyTaskCompletedDoesNotTouchTaskCache(t *testing.T) {
	sess := newAuthenticatedSession(t, http.NewServeMux(), 0)
	state := NewViewState()
	state.SetTasks([]models.Task{{ID: "t1", Title: "First Login"}})
	feed := notify.NewFeed(10)
	rec := New(sess, state, feed)

	rec.Apply(mustEvent(t, events.EventTypeTaskCompleted, events.TaskCompletedPayload{
		TaskID: "t1", TaskTitle: "First Login", CoinsEarned: 5,
	}))

	tasks := state.Tasks()
	require.Len(t, tasks, 1)
	assert.False(t, tasks[0].Completed)

	recent := feed.Recent()
	require.Len(t, recent, 1)
	assert.Contains(t, recent[0].Message, "First Login")
	assert.Contains(t, recent[0].Message, "5 coins")
}

func TestApplyMalformedPayloadIsDiscarded(t *testing.T) {
	sess := newAuthenticatedSession(t, http.NewServeMux(), 40)
	state := NewViewState()
	state.SetBalance(40)
	rec := New(sess, state, notify.NewFeed(10))

	rec.Apply(&events.PushEvent{Type: events.EventTypeBalanceUpdate, Data: json.RawMessage(`"bad"`)})

	assert.Equal(t, 40, state.Balance())
}

func TestBalanceConvergesRegardlessOfEventOrder(t *testing.T) {
	// The push event may arrive before or after the claim response that
	// caused it. Both orders must leave the server-asserted value displayed.
	for name, pushFirst := range map[string]bool{"push then response": true, "response then push": false} {
		t.Run(name, func(t *testing.T) {
			sess := newAuthenticatedSession(t, http.NewServeMux(), 40)
			state := NewViewState()
			rec := New(sess, state, notify.NewFeed(10))

			push := mustEvent(t, events.EventTypeBalanceUpdate, events.BalanceUpdatePayload{
				Coins: 50, Delta: 10, Source: "Daily Reward",
			})
			applyResponse := func() {
				state.SetBalance(50)
				sess.SetBalance(50)
			}

			if pushFirst {
				rec.Apply(push)
				applyResponse()
			} else {
				applyResponse()
				rec.Apply(push)
			}

			assert.Equal(t, 50, state.Balance())
			assert.Equal(t, 50, sess.CurrentIdentity().Coins)
		})
	}
}

func TestRunConsumesUntilSequenceEnds(t *testing.T) {
	sess := newAuthenticatedSession(t, http.NewServeMux(), 0)
	state := NewViewState()
	rec := New(sess, state, notify.NewFeed(10))

	eventCh := make(chan *events.PushEvent, 2)
	eventCh <- mustEvent(t, events.EventTypeBalanceUpdate, events.BalanceUpdatePayload{Coins: 10, Delta: 10, Source: "Daily Reward"})
	eventCh <- mustEvent(t, events.EventTypeBalanceUpdate, events.BalanceUpdatePayload{Coins: 25, Delta: 15, Source: "Task: Social Butterfly"})
	close(eventCh)

	done := make(chan struct{})
	go func() {
		rec.Run(context.Background(), eventCh)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reconciler did not stop when sequence ended")
	}
	assert.Equal(t, 25, state.Balance())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	sess := newAuthenticatedSession(t, http.NewServeMux(), 0)
	rec := New(sess, NewViewState(), notify.NewFeed(10))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rec.Run(ctx, make(chan *events.PushEvent))
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reconciler did not stop on context cancel")
	}
}
