// Package reconcile applies server-asserted state to the client's cached
// view. One reconciler loop consumes the push event sequence; the mutating
// actions share the same view state and the last write wins, whichever order
// a push event and a concurrent call response arrive in.
package reconcile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/vitacoin/vitacoin-go/go/internal/events"
	"github.com/vitacoin/vitacoin-go/go/internal/notify"
	"github.com/vitacoin/vitacoin-go/go/internal/session"
)

// Reconciler applies incoming push events to the cached view state. It never
// computes new values; it only records what the server asserted and emits
// the matching transient notification.
type Reconciler struct {
	session *session.Store
	state   *ViewState
	sink    notify.Sink
}

func New(sess *session.Store, state *ViewState, sink notify.Sink) *Reconciler {
	return &Reconciler{
		session: sess,
		state:   state,
		sink:    sink,
	}
}

// Run consumes the event sequence until it ends or ctx is cancelled. It is
// the only consumer of the sequence; restarting it with a fresh channel
// after a reconnect is safe.
func (r *Reconciler) Run(ctx context.Context, eventCh <-chan *events.PushEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventCh:
			if !ok {
				log.Info().Msg("push event sequence ended")
				return
			}
			r.Apply(event)
		}
	}
}

// Apply processes a single push event.
func (r *Reconciler) Apply(event *events.PushEvent) {
	payload, err := events.ParsePushPayload(event)
	if err != nil {
		log.Warn().
			Err(err).
			Str("type", string(event.Type)).
			Msg("discarding push event with malformed payload")
		return
	}

	switch p := payload.(type) {
	case events.BalanceUpdatePayload:
		r.state.SetBalance(p.Coins)
		r.session.SetBalance(p.Coins)
		r.sink.Notify(notify.Notification{
			Kind:    notify.KindSuccess,
			Message: fmt.Sprintf("%+d coins from %s", p.Delta, p.Source),
		})

	case events.LeaderboardUpdatePayload:
		r.state.ReplaceLeaderboard(p)
		log.Debug().Int("entries", len(p)).Msg("leaderboard snapshot replaced")

	case events.TaskCompletedPayload:
		// The cached task list is not touched here; it refreshes through
		// the mutating-action path.
		r.sink.Notify(notify.Notification{
			Kind:    notify.KindSuccess,
			Message: fmt.Sprintf("Task '%s' completed! +%d coins", p.TaskTitle, p.CoinsEarned),
		})

	default:
		log.Debug().Str("type", string(event.Type)).Msg("ignoring unknown push event type")
	}
}
