// Package channel maintains the per-identity WebSocket push connection and
// exposes inbound events as a plain receive channel consumed by a single
// reconciler loop. UI code never registers callbacks on the socket.
package channel

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/vitacoin/vitacoin-go/go/internal/events"
)

// Channel is one live push connection scoped to a single identity id. It
// lives for the duration of an authenticated session: Close it on logout,
// and it closes itself once the transport drops and reconnection is
// exhausted.
type Channel struct {
	pushURL string
	userID  string
	config  Config
	clock   clockwork.Clock
	dialer  *websocket.Dialer

	events chan *events.PushEvent
	done   chan struct{}

	mu        sync.Mutex
	conn      *websocket.Conn
	closeOnce sync.Once
}

// Dial opens the push connection for userID against the given API base URL
// and starts the read loop. A nil clock uses the real clock.
func Dial(apiBaseURL, userID string, config Config, clock clockwork.Clock) (*Channel, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	pushURL, err := PushURL(apiBaseURL, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build push URL: %w", err)
	}

	c := &Channel{
		pushURL: pushURL,
		userID:  userID,
		config:  config,
		clock:   clock,
		dialer: &websocket.Dialer{
			HandshakeTimeout: config.HandshakeTimeout,
		},
		events: make(chan *events.PushEvent, config.EventBuffer),
		done:   make(chan struct{}),
	}

	if err := c.connect(); err != nil {
		return nil, err
	}

	go c.readLoop()
	go c.pingLoop()

	return c, nil
}

// Events is the inbound push event sequence. It is closed when the channel
// shuts down, whether by Close or by exhausted reconnection.
func (c *Channel) Events() <-chan *events.PushEvent {
	return c.events
}

// Close tears the connection down and ends the event sequence. Safe to call
// more than once.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.mu.Unlock()
		log.Info().Str("user_id", c.userID).Msg("push channel closed")
	})
}

func (c *Channel) connect() error {
	conn, _, err := c.dialer.Dial(c.pushURL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial push channel: %w", err)
	}
	conn.SetReadLimit(c.config.MaxMessageSize)

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	log.Info().
		Str("user_id", c.userID).
		Str("url", c.pushURL).
		Msg("push channel connected")

	return nil
}

func (c *Channel) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// readLoop reads envelopes off the socket and delivers them in order. On a
// transport drop it attempts a bounded reconnect with exponential backoff;
// attempts reset after every successful connect.
func (c *Channel) readLoop() {
	defer close(c.events)

	for {
		_, message, err := c.current().ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}

			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("user_id", c.userID).Msg("push channel dropped")
			}

			if !c.reconnect() {
				return
			}
			continue
		}

		var event events.PushEvent
		if err := json.Unmarshal(message, &event); err != nil {
			log.Warn().
				Err(err).
				Str("user_id", c.userID).
				Msg("discarding malformed push message")
			continue
		}

		select {
		case c.events <- &event:
		case <-c.done:
			return
		}
	}
}

// reconnect retries the dial with exponential backoff, up to the configured
// attempt limit. Returns false when the channel should shut down.
func (c *Channel) reconnect() bool {
	wait := c.config.ReconnectBaseWait

	for attempt := 1; attempt <= c.config.MaxReconnectAttempts; attempt++ {
		select {
		case <-c.done:
			return false
		case <-c.clock.After(wait):
		}

		if err := c.connect(); err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt).
				Dur("next_wait", wait).
				Msg("push channel reconnect failed")

			wait *= 2
			if wait > c.config.ReconnectMaxWait {
				wait = c.config.ReconnectMaxWait
			}
			continue
		}

		return true
	}

	log.Error().
		Str("user_id", c.userID).
		Int("attempts", c.config.MaxReconnectAttempts).
		Msg("push channel reconnect attempts exhausted")
	return false
}

// pingLoop keeps the connection alive from the client side.
func (c *Channel) pingLoop() {
	ticker := c.clock.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.Chan():
			conn := c.current()
			if conn == nil {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(c.config.HandshakeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("user_id", c.userID).Msg("failed to send ping")
			}
		}
	}
}
