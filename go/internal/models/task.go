package models

import "time"

// TaskCategory groups tasks by cadence.
type TaskCategory string

const (
	TaskCategoryDaily       TaskCategory = "daily"
	TaskCategoryWeekly      TaskCategory = "weekly"
	TaskCategoryAchievement TaskCategory = "achievement"
	TaskCategorySpecial     TaskCategory = "special"
)

// TaskDifficulty is a server-assigned difficulty label.
type TaskDifficulty string

const (
	TaskDifficultyEasy   TaskDifficulty = "easy"
	TaskDifficultyMedium TaskDifficulty = "medium"
	TaskDifficultyHard   TaskDifficulty = "hard"
)

// Task is a server-defined unit of work yielding a coin reward. The per-user
// fields Completed, Claimable and Progress are derived by the server for the
// requesting identity; the client renders them as-is and never computes
// claimability on its own.
type Task struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Category        TaskCategory   `json:"category"`
	Difficulty      TaskDifficulty `json:"difficulty"`
	CoinsReward     int            `json:"coins_reward"`
	Active          bool           `json:"active"`
	MaxCompletions  *int           `json:"max_completions,omitempty"`
	CompletionCount int            `json:"completion_count"`
	ExpiresAt       *time.Time     `json:"expires_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`

	Completed bool   `json:"completed"`
	Claimable bool   `json:"claimable"`
	Progress  string `json:"progress,omitempty"`
}

// TaskCompletion records a single completion of a task by a user.
type TaskCompletion struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	TaskID      string    `json:"task_id"`
	CoinsEarned int       `json:"coins_earned"`
	CompletedAt time.Time `json:"completed_at"`
}
