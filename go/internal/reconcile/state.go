package reconcile

import (
	"sync"

	"github.com/vitacoin/vitacoin-go/go/internal/models"
)

// ViewState is the client's cached copy of server-owned read state. Every
// value in here was asserted by the server at some point; writers are the
// reconciler loop and the mutating actions, and whichever wrote last wins.
type ViewState struct {
	mu           sync.RWMutex
	balance      int
	leaderboard  []models.LeaderboardEntry
	tasks        []models.Task
	nextRewardIn *int
}

func NewViewState() *ViewState {
	return &ViewState{}
}

// Balance returns the last server-asserted balance.
func (v *ViewState) Balance() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.balance
}

// SetBalance overwrites the balance with a server-asserted value.
func (v *ViewState) SetBalance(coins int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.balance = coins
}

// Leaderboard returns a copy of the cached snapshot.
func (v *ViewState) Leaderboard() []models.LeaderboardEntry {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]models.LeaderboardEntry, len(v.leaderboard))
	copy(out, v.leaderboard)
	return out
}

// ReplaceLeaderboard swaps the snapshot wholesale. There is no incremental
// merge; applying the same snapshot twice is a no-op.
func (v *ViewState) ReplaceLeaderboard(entries []models.LeaderboardEntry) {
	snapshot := make([]models.LeaderboardEntry, len(entries))
	copy(snapshot, entries)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.leaderboard = snapshot
}

// Tasks returns a copy of the cached task list.
func (v *ViewState) Tasks() []models.Task {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]models.Task, len(v.tasks))
	copy(out, v.tasks)
	return out
}

// SetTasks replaces the cached task list.
func (v *ViewState) SetTasks(tasks []models.Task) {
	snapshot := make([]models.Task, len(tasks))
	copy(snapshot, tasks)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.tasks = snapshot
}

// NextRewardIn returns the hours until the next eligible daily claim, or nil
// when the server has not reported a cooldown.
func (v *ViewState) NextRewardIn() *int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.nextRewardIn == nil {
		return nil
	}
	hours := *v.nextRewardIn
	return &hours
}

// SetNextRewardIn records the server-reported cooldown hours.
func (v *ViewState) SetNextRewardIn(hours int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextRewardIn = &hours
}

// ClearNextRewardIn removes the cooldown after a successful claim.
func (v *ViewState) ClearNextRewardIn() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextRewardIn = nil
}

// DailyClaimBlocked reports whether the UI should disable further daily
// claims.
func (v *ViewState) DailyClaimBlocked() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.nextRewardIn != nil
}
