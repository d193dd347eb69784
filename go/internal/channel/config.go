package channel

import (
	"net/url"
	"strings"
	"time"
)

// Config holds configuration for the push event channel.
type Config struct {
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	MaxMessageSize   int64

	// Reconnect policy for transport drops while the session is still
	// authenticated. Attempts reset after every successful connect.
	MaxReconnectAttempts int
	ReconnectBaseWait    time.Duration
	ReconnectMaxWait     time.Duration

	// EventBuffer is the capacity of the delivered-event channel.
	EventBuffer int
}

// DefaultConfig returns the default channel configuration.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout:     10 * time.Second,
		PingInterval:         30 * time.Second,
		MaxMessageSize:       64 * 1024,
		MaxReconnectAttempts: 5,
		ReconnectBaseWait:    time.Second,
		ReconnectMaxWait:     30 * time.Second,
		EventBuffer:          64,
	}
}

// PushURL converts an API base URL into the websocket URL for a user's push
// channel: http(s)://host -> ws(s)://host/ws/{userID}.
func PushURL(apiBaseURL, userID string) (string, error) {
	u, err := url.Parse(apiBaseURL)
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/" + userID

	return u.String(), nil
}
