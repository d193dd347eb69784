package reconcile

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/vitacoin/vitacoin-go/go/clients"
	"github.com/vitacoin/vitacoin-go/go/clients/vitacoin_client"
	"github.com/vitacoin/vitacoin-go/go/internal/models"
	"github.com/vitacoin/vitacoin-go/go/internal/notify"
	"github.com/vitacoin/vitacoin-go/go/internal/session"
)

// Actions are the client's mutating operations. Every action follows the
// same contract: call the server, and on a reported success show the server
// message and re-fetch the dependent read state. A logical rejection shows
// the server message and applies any auxiliary state without re-fetching. A
// transport failure shows a generic message and leaves state untouched.
// Nothing is ever applied optimistically before server confirmation.
type Actions struct {
	session *session.Store
	state   *ViewState
	sink    notify.Sink
}

func NewActions(sess *session.Store, state *ViewState, sink notify.Sink) *Actions {
	return &Actions{
		session: sess,
		state:   state,
		sink:    sink,
	}
}

// ClaimDaily claims the periodic reward. On success the identity is
// re-fetched so the displayed balance is the server's. On rejection the
// server-reported cooldown hours are cached so the UI can disable the claim.
func (a *Actions) ClaimDaily() (*vitacoin_client.DailyRewardResponse, error) {
	resp, err := a.session.Client().ClaimDailyReward()
	if err != nil {
		a.notifyFailure(err)
		return nil, fmt.Errorf("claim daily reward: %w", err)
	}

	if !resp.Success {
		a.sink.Notify(notify.Notification{Kind: notify.KindInfo, Message: resp.Message})
		if resp.NextRewardIn != nil {
			a.state.SetNextRewardIn(*resp.NextRewardIn)
		}
		return resp, nil
	}

	a.sink.Notify(notify.Notification{Kind: notify.KindSuccess, Message: resp.Message})
	a.state.ClearNextRewardIn()

	if identity, err := a.session.RefreshIdentity(); err == nil {
		a.state.SetBalance(identity.Coins)
	}

	return resp, nil
}

// ClaimTask claims a task reward and refreshes the task list on success.
func (a *Actions) ClaimTask(taskID string) (*vitacoin_client.TaskCompletionResponse, error) {
	resp, err := a.session.Client().CompleteTask(taskID)
	if err != nil {
		a.notifyFailure(err)
		return nil, fmt.Errorf("claim task: %w", err)
	}

	if !resp.Success {
		a.sink.Notify(notify.Notification{Kind: notify.KindInfo, Message: resp.Message})
		return resp, nil
	}

	a.sink.Notify(notify.Notification{Kind: notify.KindSuccess, Message: resp.Message})
	a.refreshTasks()

	return resp, nil
}

// RecordActivity reports an activity toward task progress and refreshes the
// task list.
func (a *Actions) RecordActivity(activityType string) error {
	if _, err := a.session.Client().RecordActivity(activityType); err != nil {
		a.notifyFailure(err)
		return fmt.Errorf("record activity: %w", err)
	}

	a.refreshTasks()
	return nil
}

// RefreshTasks re-fetches the task list into the view state.
func (a *Actions) RefreshTasks() ([]models.Task, error) {
	tasks, err := a.session.Client().ListTasks(vitacoin_client.TaskFilters{})
	if err != nil {
		return nil, fmt.Errorf("refresh tasks: %w", err)
	}
	a.state.SetTasks(tasks)
	return tasks, nil
}

// RefreshLeaderboard re-fetches the leaderboard snapshot into the view
// state. The push channel keeps it current afterwards.
func (a *Actions) RefreshLeaderboard(limit int) ([]models.LeaderboardEntry, error) {
	entries, err := a.session.Client().Leaderboard(limit)
	if err != nil {
		return nil, fmt.Errorf("refresh leaderboard: %w", err)
	}
	a.state.ReplaceLeaderboard(entries)
	return entries, nil
}

func (a *Actions) refreshTasks() {
	if _, err := a.RefreshTasks(); err != nil {
		log.Warn().Err(err).Msg("task list refresh after mutation failed")
	}
}

// notifyFailure surfaces a failed call: the server's detail for logical
// rejections, a generic message for transport errors.
func (a *Actions) notifyFailure(err error) {
	a.sink.Notify(notify.Notification{
		Kind:    notify.KindError,
		Message: clients.UserMessageFor(err),
	})
}
