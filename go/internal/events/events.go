package events

import (
	"encoding/json"

	"github.com/vitacoin/vitacoin-go/go/internal/models"
)

// PushEvent is the envelope for all server-initiated messages on the user's
// event channel. Data holds the type-specific payload.
type PushEvent struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EventType discriminates push event payloads.
type EventType string

const (
	EventTypeBalanceUpdate     EventType = "balance_update"
	EventTypeLeaderboardUpdate EventType = "leaderboard_update"
	EventTypeTaskCompleted     EventType = "task_completed"
)

// BalanceUpdatePayload carries the server-asserted balance after a ledger
// change, along with the delta and a human-readable source label.
type BalanceUpdatePayload struct {
	Coins  int    `json:"coins"`
	Delta  int    `json:"delta"`
	Source string `json:"source"`
}

// LeaderboardUpdatePayload is a wholesale leaderboard snapshot. It replaces
// the cached snapshot entirely; there is no incremental merge.
type LeaderboardUpdatePayload []models.LeaderboardEntry

// TaskCompletedPayload announces a task completion credited to the user.
type TaskCompletedPayload struct {
	TaskID      string `json:"task_id"`
	TaskTitle   string `json:"task_title"`
	CoinsEarned int    `json:"coins_earned"`
}

// ParsePushPayload parses an event's data into the appropriate payload struct.
// Unknown event types return (nil, nil) so newer server versions don't break
// older clients.
func ParsePushPayload(event *PushEvent) (interface{}, error) {
	switch event.Type {
	case EventTypeBalanceUpdate:
		var payload BalanceUpdatePayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeLeaderboardUpdate:
		var payload LeaderboardUpdatePayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeTaskCompleted:
		var payload TaskCompletedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, nil // Unknown event type
	}
}

// NewPushEvent marshals payload into an envelope of the given type. Used by
// the stub server and by tests that synthesize events.
func NewPushEvent(eventType EventType, payload interface{}) (*PushEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &PushEvent{Type: eventType, Data: data}, nil
}
