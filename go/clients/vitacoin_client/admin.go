package vitacoin_client

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vitacoin/vitacoin-go/go/internal/models"
)

// CreateTaskRequest is the admin payload for creating or updating a task.
type CreateTaskRequest struct {
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Category       models.TaskCategory   `json:"category"`
	CoinsReward    int                   `json:"coins_reward"`
	Difficulty     models.TaskDifficulty `json:"difficulty"`
	MaxCompletions *int                  `json:"max_completions,omitempty"`
	ExpiresAt      *time.Time            `json:"expires_at,omitempty"`
}

// AdminUsers lists every registered identity. Requires the admin role.
func (c *VitacoinClient) AdminUsers() ([]models.Identity, error) {
	body, err := c.Get(AdminUsersEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var users []models.Identity
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}
	return users, nil
}

// AdminRules lists all reward rules.
func (c *VitacoinClient) AdminRules() ([]models.RewardRule, error) {
	body, err := c.Get(AdminRulesEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to list reward rules: %w", err)
	}

	var rules []models.RewardRule
	if err := json.Unmarshal(body, &rules); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}
	return rules, nil
}

// AdminCreateRule creates a reward rule. The rule key must be unique.
func (c *VitacoinClient) AdminCreateRule(rule models.RewardRule) (*models.RewardRule, error) {
	body, err := c.PostJSON(AdminRulesEndpoint, rule)
	if err != nil {
		return nil, fmt.Errorf("failed to create reward rule: %w", err)
	}

	var created models.RewardRule
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}
	return &created, nil
}

// AdminTasks lists all tasks, active or not.
func (c *VitacoinClient) AdminTasks() ([]models.Task, error) {
	body, err := c.Get(AdminTasksEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	var tasks []models.Task
	if err := json.Unmarshal(body, &tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}
	return tasks, nil
}

// AdminCreateTask creates a task.
func (c *VitacoinClient) AdminCreateTask(req CreateTaskRequest) (*models.Task, error) {
	body, err := c.PostJSON(AdminTasksEndpoint, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	var task models.Task
	if err := json.Unmarshal(body, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}
	return &task, nil
}

// AdminUpdateTask replaces a task's definition.
func (c *VitacoinClient) AdminUpdateTask(taskID string, req CreateTaskRequest) (*models.Task, error) {
	body, err := c.PutJSON(fmt.Sprintf("%s/%s", AdminTasksEndpoint, taskID), req)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	var task models.Task
	if err := json.Unmarshal(body, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}
	return &task, nil
}

// AdminDeleteTask removes a task.
func (c *VitacoinClient) AdminDeleteTask(taskID string) error {
	if _, err := c.Delete(fmt.Sprintf("%s/%s", AdminTasksEndpoint, taskID)); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// AdminTaskCompletions lists recent completions across all users.
func (c *VitacoinClient) AdminTaskCompletions() ([]models.TaskCompletion, error) {
	body, err := c.Get(AdminTaskCompletionsEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to list task completions: %w", err)
	}

	var completions []models.TaskCompletion
	if err := json.Unmarshal(body, &completions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}
	return completions, nil
}

// AdminInitDB seeds the backend with the default admin user, reward rules
// and task catalog.
func (c *VitacoinClient) AdminInitDB() error {
	if _, err := c.Post(AdminInitDBEndpoint, nil); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	return nil
}
