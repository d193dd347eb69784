package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitacoin/vitacoin-go/go/clients"
	"github.com/vitacoin/vitacoin-go/go/clients/vitacoin_client"
	"github.com/vitacoin/vitacoin-go/go/internal/tokenstore"
)

func newTestStore(t *testing.T, handler http.Handler) (*Store, *tokenstore.Store) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tokens, err := tokenstore.NewStore(t.TempDir())
	require.NoError(t, err)

	client := vitacoin_client.NewVitacoinClient(server.URL)
	return NewStore(client, tokens), tokens
}

func authHandler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req vitacoin_client.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-123",
			"token_type":   "bearer",
			"user":         map[string]interface{}{"id": "u1", "name": "Ada", "email": req.Email, "role": "user", "coins": 40},
		})
	})
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "u1", "name": "Ada", "role": "user", "coins": 0})
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid token"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "u1", "name": "Ada", "role": "user", "coins": 55})
	})
	return mux
}

func TestAuthenticatePersistsTokenAndIdentity(t *testing.T) {
	store, tokens := newTestStore(t, authHandler(t))

	identity, err := store.Authenticate("ada@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Ada", identity.Name)
	assert.Equal(t, 40, identity.Coins)

	token, err := tokens.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
	assert.True(t, store.Client().HasBearerToken())
}

func TestAuthenticateFailureLeavesSessionEmpty(t *testing.T) {
	store, tokens := newTestStore(t, authHandler(t))

	_, err := store.Authenticate("ada@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", clients.UserMessageFor(err))

	assert.Nil(t, store.CurrentIdentity())
	_, err = tokens.Load()
	assert.ErrorIs(t, err, tokenstore.ErrNoToken)
}

func TestRegisterAuthenticatesWithSameCredentials(t *testing.T) {
	store, _ := newTestStore(t, authHandler(t))

	identity, err := store.Register("Ada", "ada@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.ID)
	assert.Equal(t, "tok-123", store.Token())
}

func TestTerminateClearsEverything(t *testing.T) {
	store, tokens := newTestStore(t, authHandler(t))

	_, err := store.Authenticate("ada@example.com", "secret")
	require.NoError(t, err)

	store.Terminate()

	assert.Nil(t, store.CurrentIdentity())
	assert.Empty(t, store.Token())
	assert.False(t, store.Client().HasBearerToken())
	_, err = tokens.Load()
	assert.ErrorIs(t, err, tokenstore.ErrNoToken)

	// terminate on an already-empty session is fine
	store.Terminate()
}

func TestResumeRestoresSessionFromStoredToken(t *testing.T) {
	store, tokens := newTestStore(t, authHandler(t))
	require.NoError(t, tokens.Save("tok-123"))

	identity, err := store.Resume()
	require.NoError(t, err)
	assert.Equal(t, 55, identity.Coins)
}

func TestResumeWithBadTokenTerminates(t *testing.T) {
	store, tokens := newTestStore(t, authHandler(t))
	require.NoError(t, tokens.Save("tok-stale"))

	_, err := store.Resume()
	require.Error(t, err)

	assert.Nil(t, store.CurrentIdentity())
	_, err = tokens.Load()
	assert.ErrorIs(t, err, tokenstore.ErrNoToken)
}

func TestRefreshIdentityFailureForcesLogout(t *testing.T) {
	mux := http.NewServeMux()
	calls := 0
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-123",
			"user":         map[string]interface{}{"id": "u1", "name": "Ada", "role": "user", "coins": 40},
		})
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid token"})
	})

	store, _ := newTestStore(t, mux)
	_, err := store.Authenticate("ada@example.com", "secret")
	require.NoError(t, err)

	_, err = store.RefreshIdentity()
	require.Error(t, err)
	assert.Nil(t, store.CurrentIdentity())
	assert.Equal(t, 1, calls)
}

func TestSetBalanceOverwritesCachedCoins(t *testing.T) {
	store, _ := newTestStore(t, authHandler(t))

	_, err := store.Authenticate("ada@example.com", "secret")
	require.NoError(t, err)

	store.SetBalance(117)
	assert.Equal(t, 117, store.CurrentIdentity().Coins)
}
