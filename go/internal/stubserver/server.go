// Package stubserver is an in-memory stand-in for the Vitacoin rewards
// backend. It mirrors the upstream REST and push surface closely enough to
// develop and test the client against, and holds no state outside process
// memory. It is tooling, not the production backend.
package stubserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/vitacoin/vitacoin-go/go/internal/events"
	"github.com/vitacoin/vitacoin-go/go/internal/models"
)

// Server is the stub backend. Obtain an http.Handler via Handler and mount
// it wherever needed (httptest in tests, a real listener in the dev binary).
type Server struct {
	store *memoryStore
	hub   *Hub
}

// New creates a seeded stub server. A nil clock uses the real clock; tests
// pass a fake clock to step through reward windows.
func New(clock clockwork.Clock) *Server {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	store := newMemoryStore(clock)
	store.seed()

	return &Server{
		store: store,
		hub:   NewHub(DefaultHubConfig()),
	}
}

// Handler returns the full HTTP surface, CORS-wrapped like the upstream
// backend.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/auth/me", s.authed(s.handleMe))
	mux.HandleFunc("POST /api/rewards/daily", s.authed(s.handleClaimDaily))
	mux.HandleFunc("GET /api/tasks", s.authed(s.handleListTasks))
	mux.HandleFunc("GET /api/tasks/completed", s.authed(s.handleCompletedTasks))
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.authed(s.handleCompleteTask))
	mux.HandleFunc("POST /api/activities", s.authed(s.handleRecordActivity))
	mux.HandleFunc("GET /api/transactions", s.authed(s.handleTransactions))
	mux.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)

	mux.HandleFunc("GET /api/admin/users", s.admin(s.handleAdminUsers))
	mux.HandleFunc("GET /api/admin/rules", s.admin(s.handleAdminRules))
	mux.HandleFunc("POST /api/admin/rules", s.admin(s.handleAdminCreateRule))
	mux.HandleFunc("GET /api/admin/tasks", s.admin(s.handleAdminTasks))
	mux.HandleFunc("POST /api/admin/tasks", s.admin(s.handleAdminCreateTask))
	mux.HandleFunc("PUT /api/admin/tasks/{id}", s.admin(s.handleAdminUpdateTask))
	mux.HandleFunc("DELETE /api/admin/tasks/{id}", s.admin(s.handleAdminDeleteTask))
	mux.HandleFunc("GET /api/admin/task-completions", s.admin(s.handleAdminCompletions))
	mux.HandleFunc("POST /api/admin/init-db", s.handleInitDB)

	mux.HandleFunc("GET /ws/{user_id}", s.handlePushChannel)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodHead, http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(mux)
}

type authedHandler func(w http.ResponseWriter, r *http.Request, identity *models.Identity)

// authed resolves the bearer token to an identity before calling next.
func (s *Server) authed(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeDetail(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		identity, err := s.store.identityForToken(token)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, err.Error())
			return
		}
		next(w, r, identity)
	}
}

// admin additionally requires the admin role.
func (s *Server) admin(next authedHandler) http.HandlerFunc {
	return s.authed(func(w http.ResponseWriter, r *http.Request, identity *models.Identity) {
		if !identity.IsAdmin() {
			writeDetail(w, http.StatusForbidden, errAdminRequired.Error())
			return
		}
		next(w, r, identity)
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	identity, err := s.store.register(req.Name, req.Email, req.Password, models.RoleUser, 0)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, identity, err := s.store.login(req.Email, req.Password)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "bearer",
		"user":         identity,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, identity *models.Identity) {
	writeJSON(w, http.StatusOK, identity)
}

func (s *Server) handleClaimDaily(w http.ResponseWriter, r *http.Request, identity *models.Identity) {
	credited, balance, retryInHours, err := s.store.claimDaily(identity.ID)
	if err != nil {
		writeDetail(w, http.StatusNotFound, err.Error())
		return
	}

	if retryInHours > 0 {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":        false,
			"message":        fmt.Sprintf("Daily reward already claimed. Next reward in %d hours.", retryInHours),
			"next_reward_in": retryInHours,
		})
		return
	}

	s.hub.SendToUser(identity.ID, events.EventTypeBalanceUpdate, events.BalanceUpdatePayload{
		Coins:  balance,
		Delta:  credited,
		Source: "Daily Reward",
	})
	s.broadcastLeaderboard()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"message":      fmt.Sprintf("Daily reward claimed! +%d coins", credited),
		"coins_earned": credited,
		"new_balance":  balance,
	})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request, identity *models.Identity) {
	tasks := s.store.listTasks(identity.ID,
		models.TaskCategory(r.URL.Query().Get("category")),
		models.TaskDifficulty(r.URL.Query().Get("difficulty")))
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request, identity *models.Identity) {
	taskID := r.PathValue("id")

	task, balance, err := s.store.completeTask(identity.ID, taskID)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errTaskNotFound) {
			status = http.StatusNotFound
		}
		writeDetail(w, status, err.Error())
		return
	}

	s.hub.SendToUser(identity.ID, events.EventTypeBalanceUpdate, events.BalanceUpdatePayload{
		Coins:  balance,
		Delta:  task.CoinsReward,
		Source: fmt.Sprintf("Task: %s", task.Title),
	})
	s.hub.SendToUser(identity.ID, events.EventTypeTaskCompleted, events.TaskCompletedPayload{
		TaskID:      task.ID,
		TaskTitle:   task.Title,
		CoinsEarned: task.CoinsReward,
	})
	s.broadcastLeaderboard()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"message":      fmt.Sprintf("Task '%s' completed! +%d coins", task.Title, task.CoinsReward),
		"coins_earned": task.CoinsReward,
		"new_balance":  balance,
	})
}

func (s *Server) handleCompletedTasks(w http.ResponseWriter, r *http.Request, identity *models.Identity) {
	completions := s.store.completionsForUser(identity.ID)
	if completions == nil {
		completions = []models.TaskCompletion{}
	}
	writeJSON(w, http.StatusOK, completions)
}

func (s *Server) handleRecordActivity(w http.ResponseWriter, r *http.Request, identity *models.Identity) {
	var req struct {
		ActivityType string `json:"activity_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ActivityType == "" {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.store.recordActivity(identity.ID, req.ActivityType)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request, identity *models.Identity) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	transactions := s.store.transactionsForUser(identity.ID, limit, offset)
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.leaderboard(queryInt(r, "limit", 10)))
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request, _ *models.Identity) {
	writeJSON(w, http.StatusOK, s.store.allUsers())
}

func (s *Server) handleAdminRules(w http.ResponseWriter, r *http.Request, _ *models.Identity) {
	writeJSON(w, http.StatusOK, s.store.allRules())
}

func (s *Server) handleAdminCreateRule(w http.ResponseWriter, r *http.Request, _ *models.Identity) {
	var rule models.RewardRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := s.store.createRule(rule)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleAdminTasks(w http.ResponseWriter, r *http.Request, _ *models.Identity) {
	writeJSON(w, http.StatusOK, s.store.allTasks())
}

func (s *Server) handleAdminCreateTask(w http.ResponseWriter, r *http.Request, _ *models.Identity) {
	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, s.store.createTask(task))
}

func (s *Server) handleAdminUpdateTask(w http.ResponseWriter, r *http.Request, _ *models.Identity) {
	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := s.store.updateTask(r.PathValue("id"), task)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleAdminDeleteTask(w http.ResponseWriter, r *http.Request, _ *models.Identity) {
	if err := s.store.deleteTask(r.PathValue("id")); err != nil {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

func (s *Server) handleAdminCompletions(w http.ResponseWriter, r *http.Request, _ *models.Identity) {
	writeJSON(w, http.StatusOK, s.store.allCompletions(100))
}

func (s *Server) handleInitDB(w http.ResponseWriter, r *http.Request) {
	s.store.seed()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Database initialized successfully with default tasks"})
}

func (s *Server) handlePushChannel(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	if err := s.hub.Upgrade(w, r, userID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to upgrade push connection")
	}
}

func (s *Server) broadcastLeaderboard() {
	s.hub.Broadcast(events.EventTypeLeaderboardUpdate,
		events.LeaderboardUpdatePayload(s.store.leaderboard(10)))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if value := r.URL.Query().Get(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
