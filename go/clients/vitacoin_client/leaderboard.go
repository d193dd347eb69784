package vitacoin_client

import (
	"encoding/json"
	"fmt"

	"github.com/vitacoin/vitacoin-go/go/internal/models"
)

// Leaderboard fetches the top limit entries ranked by coins. A limit of 0
// uses the server default.
func (c *VitacoinClient) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	endpoint := LeaderboardEndpoint
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", LeaderboardEndpoint, limit)
	}

	body, err := c.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	var entries []models.LeaderboardEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	return entries, nil
}
