// Package session owns the authenticated identity and its credential token.
// It is passed explicitly to everything that needs it; there is no ambient
// global session.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vitacoin/vitacoin-go/go/clients/vitacoin_client"
	"github.com/vitacoin/vitacoin-go/go/internal/models"
	"github.com/vitacoin/vitacoin-go/go/internal/tokenstore"
)

// ErrNotAuthenticated is returned when an operation requires an identity and
// none is present.
var ErrNotAuthenticated = errors.New("not authenticated")

// Store holds the current identity and token. On successful authentication
// the token is written to durable storage and attached as the default
// credential for all subsequent API calls; Terminate clears both.
type Store struct {
	client *vitacoin_client.VitacoinClient
	tokens *tokenstore.Store

	mu       sync.RWMutex
	identity *models.Identity
	token    string
}

func NewStore(client *vitacoin_client.VitacoinClient, tokens *tokenstore.Store) *Store {
	return &Store{
		client: client,
		tokens: tokens,
	}
}

// Client returns the API client the session attaches credentials to.
func (s *Store) Client() *vitacoin_client.VitacoinClient {
	return s.client
}

// Authenticate exchanges credentials for a token and identity. On success
// the token is persisted and attached to the client.
func (s *Store) Authenticate(email, password string) (*models.Identity, error) {
	resp, err := s.client.Login(email, password)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	s.adopt(resp.AccessToken, &resp.User)

	log.Info().
		Str("user_id", resp.User.ID).
		Str("email", resp.User.Email).
		Msg("session authenticated")

	return s.CurrentIdentity(), nil
}

// Register creates an account and immediately authenticates with the same
// credentials. Registration only counts as successful once the follow-up
// authenticate succeeds.
func (s *Store) Register(name, email, password string) (*models.Identity, error) {
	if _, err := s.client.Register(name, email, password); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return s.Authenticate(email, password)
}

// Resume rebuilds the session from a previously persisted token. If the
// token is absent or the identity fetch fails, the session ends up
// unauthenticated.
func (s *Store) Resume() (*models.Identity, error) {
	token, err := s.tokens.Load()
	if err != nil {
		if errors.Is(err, tokenstore.ErrNoToken) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("resume: %w", err)
	}

	s.client.SetBearerToken(token)
	identity, err := s.client.Me()
	if err != nil {
		s.Terminate()
		return nil, fmt.Errorf("resume: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.identity = identity
	s.mu.Unlock()

	log.Info().Str("user_id", identity.ID).Msg("session resumed from stored token")
	return s.CurrentIdentity(), nil
}

// RefreshIdentity re-fetches the identity from the server. A failed refresh
// forces the session back to the unauthenticated state.
func (s *Store) RefreshIdentity() (*models.Identity, error) {
	s.mu.RLock()
	authenticated := s.identity != nil
	s.mu.RUnlock()
	if !authenticated {
		return nil, ErrNotAuthenticated
	}

	identity, err := s.client.Me()
	if err != nil {
		log.Warn().Err(err).Msg("identity refresh failed, terminating session")
		s.Terminate()
		return nil, fmt.Errorf("refresh identity: %w", err)
	}

	s.mu.Lock()
	s.identity = identity
	s.mu.Unlock()

	return s.CurrentIdentity(), nil
}

// Terminate clears the identity and token unconditionally. It never fails;
// a token file that cannot be removed is logged and forgotten.
func (s *Store) Terminate() {
	s.mu.Lock()
	s.identity = nil
	s.token = ""
	s.mu.Unlock()

	s.client.ClearBearerToken()
	if err := s.tokens.Clear(); err != nil {
		log.Warn().Err(err).Msg("failed to clear stored token on logout")
	}

	log.Info().Msg("session terminated")
}

// CurrentIdentity returns a copy of the identity, or nil when absent.
func (s *Store) CurrentIdentity() *models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.identity == nil {
		return nil
	}
	identity := *s.identity
	return &identity
}

// Token returns the current credential token, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetBalance overwrites the cached balance with a server-asserted value.
// Push events and mutating responses are the only callers; the client never
// computes a balance itself.
func (s *Store) SetBalance(coins int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity != nil {
		s.identity.Coins = coins
	}
}

func (s *Store) adopt(token string, identity *models.Identity) {
	s.mu.Lock()
	s.token = token
	s.identity = identity
	s.mu.Unlock()

	s.client.SetBearerToken(token)
	if err := s.tokens.Save(token); err != nil {
		log.Warn().Err(err).Msg("failed to persist token, session will not survive restart")
	}
}
