package models

// LeaderboardEntry is one ranked row of the coin leaderboard.
type LeaderboardEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Coins int    `json:"coins"`
	Rank  int    `json:"rank"`
}
