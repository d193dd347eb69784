package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePushPayloadBalanceUpdate(t *testing.T) {
	event := &PushEvent{
		Type: EventTypeBalanceUpdate,
		Data: json.RawMessage(`{"coins": 110, "delta": 10, "source": "Daily Reward"}`),
	}

	payload, err := ParsePushPayload(event)
	require.NoError(t, err)

	balance, ok := payload.(BalanceUpdatePayload)
	require.True(t, ok)
	assert.Equal(t, 110, balance.Coins)
	assert.Equal(t, 10, balance.Delta)
	assert.Equal(t, "Daily Reward", balance.Source)
}

func TestParsePushPayloadLeaderboardUpdate(t *testing.T) {
	event := &PushEvent{
		Type: EventTypeLeaderboardUpdate,
		Data: json.RawMessage(`[{"id":"u1","name":"Ada","coins":500,"rank":1},{"id":"u2","name":"Bob","coins":200,"rank":2}]`),
	}

	payload, err := ParsePushPayload(event)
	require.NoError(t, err)

	board, ok := payload.(LeaderboardUpdatePayload)
	require.True(t, ok)
	require.Len(t, board, 2)
	assert.Equal(t, "Ada", board[0].Name)
	assert.Equal(t, 2, board[1].Rank)
}

func TestParsePushPayloadTaskCompleted(t *testing.T) {
	event := &PushEvent{
		Type: EventTypeTaskCompleted,
		Data: json.RawMessage(`{"task_id":"t1","task_title":"First Login","coins_earned":5}`),
	}

	payload, err := ParsePushPayload(event)
	require.NoError(t, err)

	done, ok := payload.(TaskCompletedPayload)
	require.True(t, ok)
	assert.Equal(t, "First Login", done.TaskTitle)
	assert.Equal(t, 5, done.CoinsEarned)
}

func TestParsePushPayloadUnknownType(t *testing.T) {
	event := &PushEvent{Type: "season_reset", Data: json.RawMessage(`{}`)}

	payload, err := ParsePushPayload(event)
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestParsePushPayloadMalformedData(t *testing.T) {
	event := &PushEvent{Type: EventTypeBalanceUpdate, Data: json.RawMessage(`"nope"`)}

	_, err := ParsePushPayload(event)
	assert.Error(t, err)
}

func TestNewPushEventRoundTrip(t *testing.T) {
	event, err := NewPushEvent(EventTypeBalanceUpdate, BalanceUpdatePayload{Coins: 42, Delta: 2, Source: "Task: Profile Explorer"})
	require.NoError(t, err)

	payload, err := ParsePushPayload(event)
	require.NoError(t, err)
	assert.Equal(t, BalanceUpdatePayload{Coins: 42, Delta: 2, Source: "Task: Profile Explorer"}, payload)
}
