package vitacoin_client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/vitacoin/vitacoin-go/go/internal/models"
)

// TaskFilters narrows the task list by category and difficulty. Zero values
// mean no filter.
type TaskFilters struct {
	Category   models.TaskCategory
	Difficulty models.TaskDifficulty
}

// TaskCompletionResponse is the outcome of a task-reward claim.
type TaskCompletionResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	CoinsEarned *int   `json:"coins_earned,omitempty"`
	NewBalance  *int   `json:"new_balance,omitempty"`
}

type ActivityRequest struct {
	ActivityType string `json:"activity_type"`
}

// ActivityResponse is an opaque acknowledgement; the fresh task state comes
// from a follow-up task list fetch, not from this response.
type ActivityResponse struct {
	Success bool `json:"success"`
}

// ListTasks fetches the tasks available to the current identity, including
// the server-derived completed/claimable/progress fields.
func (c *VitacoinClient) ListTasks(filters TaskFilters) ([]models.Task, error) {
	endpoint := TasksEndpoint
	query := url.Values{}
	if filters.Category != "" {
		query.Set("category", string(filters.Category))
	}
	if filters.Difficulty != "" {
		query.Set("difficulty", string(filters.Difficulty))
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	body, err := c.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	var tasks []models.Task
	if err := json.Unmarshal(body, &tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	return tasks, nil
}

// CompleteTask claims the reward for a task.
func (c *VitacoinClient) CompleteTask(taskID string) (*TaskCompletionResponse, error) {
	body, err := c.Post(fmt.Sprintf("%s/%s/complete", TasksEndpoint, taskID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	var response TaskCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	return &response, nil
}

// CompletedTasks fetches the user's completion history, most recent first.
func (c *VitacoinClient) CompletedTasks() ([]models.TaskCompletion, error) {
	body, err := c.Get(CompletedTasksEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed tasks: %w", err)
	}

	var completions []models.TaskCompletion
	if err := json.Unmarshal(body, &completions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	return completions, nil
}

// RecordActivity reports an activity toward task progress.
func (c *VitacoinClient) RecordActivity(activityType string) (*ActivityResponse, error) {
	body, err := c.PostJSON(ActivitiesEndpoint, ActivityRequest{ActivityType: activityType})
	if err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	var response ActivityResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	return &response, nil
}
