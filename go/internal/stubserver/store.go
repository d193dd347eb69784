package stubserver

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/vitacoin/vitacoin-go/go/internal/models"
)

const dailyRewardWindow = 24 * time.Hour

var (
	errEmailTaken         = errors.New("Email already registered")
	errInvalidCredentials = errors.New("Invalid credentials")
	errInvalidToken       = errors.New("Invalid token")
	errUserNotFound       = errors.New("User not found")
	errTaskNotFound       = errors.New("Task not found or inactive")
	errTaskExpired        = errors.New("Task has expired")
	errTaskDone           = errors.New("Task already completed")
	errTaskLimitReached   = errors.New("Task completion limit reached")
	errRuleKeyTaken       = errors.New("Rule key already exists")
	errNoDailyRule        = errors.New("Daily reward rule not found")
	errAdminRequired      = errors.New("Admin access required")
)

type account struct {
	identity models.Identity
	password string
}

// memoryStore is the stub backend's entire world: accounts, tasks, rules,
// ledger and issued tokens, all in memory and guarded by one mutex.
type memoryStore struct {
	mu          sync.Mutex
	clock       clockwork.Clock
	accounts    map[string]*account // by user id
	byEmail     map[string]string   // email -> user id
	tokens      map[string]string   // token -> user id
	tasks       map[string]*models.Task
	rules       map[string]*models.RewardRule // by key
	completions []models.TaskCompletion
	ledger      []models.Transaction
	activities  map[string]map[string]int // user id -> activity type -> count
}

func newMemoryStore(clock clockwork.Clock) *memoryStore {
	return &memoryStore{
		clock:      clock,
		accounts:   make(map[string]*account),
		byEmail:    make(map[string]string),
		tokens:     make(map[string]string),
		tasks:      make(map[string]*models.Task),
		rules:      make(map[string]*models.RewardRule),
		activities: make(map[string]map[string]int),
	}
}

func (s *memoryStore) register(name, email, password string, role models.Role, coins int) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(email)
	if _, taken := s.byEmail[email]; taken {
		return nil, errEmailTaken
	}

	acct := &account{
		identity: models.Identity{
			ID:             uuid.New().String(),
			Name:           name,
			Email:          email,
			Role:           role,
			Coins:          coins,
			Badges:         []string{},
			CompletedTasks: []string{},
			CreatedAt:      s.clock.Now().UTC(),
		},
		password: password,
	}
	s.accounts[acct.identity.ID] = acct
	s.byEmail[email] = acct.identity.ID

	identity := acct.identity
	return &identity, nil
}

func (s *memoryStore) login(email, password string) (string, *models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return "", nil, errInvalidCredentials
	}
	acct := s.accounts[id]
	if acct.password != password {
		return "", nil, errInvalidCredentials
	}

	token := uuid.New().String()
	s.tokens[token] = id

	identity := acct.identity
	return token, &identity, nil
}

func (s *memoryStore) identityForToken(token string) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.tokens[token]
	if !ok {
		return nil, errInvalidToken
	}
	acct, ok := s.accounts[id]
	if !ok {
		return nil, errUserNotFound
	}

	identity := acct.identity
	return &identity, nil
}

// claimDaily applies the periodic-reward rules: one claim per rolling 24h
// window, paying out the daily_login rule.
func (s *memoryStore) claimDaily(userID string) (credited int, balance int, retryInHours int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[userID]
	if !ok {
		return 0, 0, 0, errUserNotFound
	}

	now := s.clock.Now().UTC()
	if last := acct.identity.LastDailyReward; last != nil {
		since := now.Sub(*last)
		if since < dailyRewardWindow {
			remaining := 24 - int(since.Hours())
			return 0, acct.identity.Coins, remaining, nil
		}
	}

	rule, ok := s.rules["daily_login"]
	if !ok || !rule.Active {
		return 0, 0, 0, errNoDailyRule
	}

	acct.identity.Coins += rule.Points
	acct.identity.LastDailyReward = &now
	s.appendTransaction(userID, rule.Points, models.TransactionCredit, rule.Key, rule.Description, nil)

	return rule.Points, acct.identity.Coins, 0, nil
}

// completeTask validates and applies a task completion for a user.
func (s *memoryStore) completeTask(userID, taskID string) (*models.Task, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[userID]
	if !ok {
		return nil, 0, errUserNotFound
	}
	task, ok := s.tasks[taskID]
	if !ok || !task.Active {
		return nil, 0, errTaskNotFound
	}

	now := s.clock.Now().UTC()
	if task.ExpiresAt != nil && task.ExpiresAt.Before(now) {
		return nil, 0, errTaskExpired
	}
	for _, done := range acct.identity.CompletedTasks {
		if done == taskID {
			return nil, 0, errTaskDone
		}
	}
	if task.MaxCompletions != nil && task.CompletionCount >= *task.MaxCompletions {
		return nil, 0, errTaskLimitReached
	}

	acct.identity.Coins += task.CoinsReward
	acct.identity.CompletedTasks = append(acct.identity.CompletedTasks, taskID)
	task.CompletionCount++

	s.completions = append(s.completions, models.TaskCompletion{
		ID:          uuid.New().String(),
		UserID:      userID,
		TaskID:      taskID,
		CoinsEarned: task.CoinsReward,
		CompletedAt: now,
	})
	s.appendTransaction(userID, task.CoinsReward, models.TransactionCredit,
		fmt.Sprintf("task_%s", task.Category),
		fmt.Sprintf("Task completed: %s", task.Title),
		&taskID)

	copied := *task
	return &copied, acct.identity.Coins, nil
}

func (s *memoryStore) recordActivity(userID, activityType string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activities[userID] == nil {
		s.activities[userID] = make(map[string]int)
	}
	s.activities[userID][activityType]++
}

// listTasks returns active, unexpired tasks decorated with the per-user
// completed/claimable/progress fields.
func (s *memoryStore) listTasks(userID string, category models.TaskCategory, difficulty models.TaskDifficulty) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.accounts[userID]
	now := s.clock.Now().UTC()

	var out []models.Task
	for _, task := range s.tasks {
		if !task.Active {
			continue
		}
		if task.ExpiresAt != nil && task.ExpiresAt.Before(now) {
			continue
		}
		if category != "" && task.Category != category {
			continue
		}
		if difficulty != "" && task.Difficulty != difficulty {
			continue
		}
		out = append(out, s.decorate(*task, acct))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// decorate fills in the server-derived per-user task fields.
func (s *memoryStore) decorate(task models.Task, acct *account) models.Task {
	if acct != nil {
		for _, done := range acct.identity.CompletedTasks {
			if done == task.ID {
				task.Completed = true
				break
			}
		}
	}

	limitReached := task.MaxCompletions != nil && task.CompletionCount >= *task.MaxCompletions
	task.Claimable = !task.Completed && !limitReached

	if task.Completed {
		task.Progress = "1/1"
	} else {
		task.Progress = "0/1"
	}
	return task
}

func (s *memoryStore) completionsForUser(userID string) []models.TaskCompletion {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.TaskCompletion
	for _, c := range s.completions {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out
}

func (s *memoryStore) transactionsForUser(userID string, limit, offset int) []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []models.Transaction
	for _, tx := range s.ledger {
		if tx.UserID == userID {
			all = append(all, tx)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

func (s *memoryStore) leaderboard(limit int) []models.LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leaderboardLocked(limit)
}

func (s *memoryStore) leaderboardLocked(limit int) []models.LeaderboardEntry {
	var all []*account
	for _, acct := range s.accounts {
		all = append(all, acct)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].identity.Coins > all[j].identity.Coins })

	if limit <= 0 {
		limit = 10
	}
	if limit < len(all) {
		all = all[:limit]
	}

	entries := make([]models.LeaderboardEntry, 0, len(all))
	for i, acct := range all {
		entries = append(entries, models.LeaderboardEntry{
			ID:    acct.identity.ID,
			Name:  acct.identity.Name,
			Coins: acct.identity.Coins,
			Rank:  i + 1,
		})
	}
	return entries
}

// appendTransaction must be called with the mutex held.
func (s *memoryStore) appendTransaction(userID string, amount int, txType models.TransactionType, ruleKey, description string, taskID *string) {
	s.ledger = append(s.ledger, models.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Amount:      amount,
		Type:        txType,
		RuleKey:     ruleKey,
		Description: description,
		TaskID:      taskID,
		CreatedAt:   s.clock.Now().UTC(),
	})
}

func (s *memoryStore) allUsers() []models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Identity
	for _, acct := range s.accounts {
		out = append(out, acct.identity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *memoryStore) allRules() []models.RewardRule {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.RewardRule
	for _, rule := range s.rules {
		out = append(out, *rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (s *memoryStore) createRule(rule models.RewardRule) (*models.RewardRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.rules[rule.Key]; taken {
		return nil, errRuleKeyTaken
	}
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	rule.CreatedAt = s.clock.Now().UTC()
	s.rules[rule.Key] = &rule

	created := rule
	return &created, nil
}

func (s *memoryStore) allTasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Task
	for _, task := range s.tasks {
		out = append(out, *task)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *memoryStore) createTask(task models.Task) *models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	task.Active = true
	task.CreatedAt = s.clock.Now().UTC()
	s.tasks[task.ID] = &task

	created := task
	return &created
}

func (s *memoryStore) updateTask(taskID string, update models.Task) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return nil, errTaskNotFound
	}

	task.Title = update.Title
	task.Description = update.Description
	task.Category = update.Category
	task.Difficulty = update.Difficulty
	task.CoinsReward = update.CoinsReward
	task.MaxCompletions = update.MaxCompletions
	task.ExpiresAt = update.ExpiresAt

	copied := *task
	return &copied, nil
}

func (s *memoryStore) deleteTask(taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[taskID]; !ok {
		return errTaskNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

func (s *memoryStore) allCompletions(limit int) []models.TaskCompletion {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.TaskCompletion, len(s.completions))
	copy(out, s.completions)
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })

	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}
