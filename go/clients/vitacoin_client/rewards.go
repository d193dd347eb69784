package vitacoin_client

import (
	"encoding/json"
	"fmt"
)

// DailyRewardResponse is the outcome of a periodic-reward claim. Success
// false means the claim reached the server but was refused (already claimed
// within the window); NextRewardIn then carries the hours until the next
// eligible claim.
type DailyRewardResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	CoinsEarned  *int   `json:"coins_earned,omitempty"`
	NewBalance   *int   `json:"new_balance,omitempty"`
	NextRewardIn *int   `json:"next_reward_in,omitempty"`
}

// ClaimDailyReward attempts to claim the periodic reward.
func (c *VitacoinClient) ClaimDailyReward() (*DailyRewardResponse, error) {
	body, err := c.Post(DailyRewardEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to claim daily reward: %w", err)
	}

	var response DailyRewardResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	return &response, nil
}
