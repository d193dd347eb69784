package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Kind classifies a notification for presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindError   Kind = "error"
)

// Notification is a transient user-facing message. Notifications are never
// persisted; they exist to be rendered once and discarded.
type Notification struct {
	Kind    Kind
	Message string
	At      time.Time
}

// Sink receives notifications. Implementations must not block.
type Sink interface {
	Notify(n Notification)
}

// FuncSink adapts a function to the Sink interface.
type FuncSink func(n Notification)

func (f FuncSink) Notify(n Notification) {
	f(n)
}

// LogSink writes notifications to the global zerolog logger.
type LogSink struct{}

func (LogSink) Notify(n Notification) {
	log.Info().
		Str("kind", string(n.Kind)).
		Str("message", n.Message).
		Msg("notification")
}

// Feed is a bounded in-memory notification sink. It keeps the most recent
// notifications for display and fans them out on a channel for live
// consumers; slow consumers lose messages rather than blocking the
// reconciler.
type Feed struct {
	mu    sync.Mutex
	max   int
	items []Notification
	ch    chan Notification
}

// NewFeed creates a feed retaining at most max notifications.
func NewFeed(max int) *Feed {
	if max <= 0 {
		max = 50
	}
	return &Feed{
		max: max,
		ch:  make(chan Notification, max),
	}
}

func (f *Feed) Notify(n Notification) {
	if n.At.IsZero() {
		n.At = time.Now()
	}

	f.mu.Lock()
	f.items = append(f.items, n)
	if len(f.items) > f.max {
		f.items = f.items[len(f.items)-f.max:]
	}
	f.mu.Unlock()

	select {
	case f.ch <- n:
	default:
	}
}

// Recent returns a copy of the retained notifications, oldest first.
func (f *Feed) Recent() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Notification, len(f.items))
	copy(out, f.items)
	return out
}

// C is the live notification stream.
func (f *Feed) C() <-chan Notification {
	return f.ch
}

// Multi fans a notification out to several sinks.
type Multi []Sink

func (m Multi) Notify(n Notification) {
	for _, s := range m {
		s.Notify(n)
	}
}
