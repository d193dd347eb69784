package clientconfig

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds client connection settings.
type Config struct {
	// APIBaseURL is the backend root, e.g. http://localhost:8080. The push
	// channel URL is derived from it.
	APIBaseURL string `yaml:"api_base_url"`
	// TokenDir overrides where the credential token is persisted. Empty
	// uses the user config directory.
	TokenDir string `yaml:"token_dir"`
	// LeaderboardLimit is the number of rows fetched for leaderboard views.
	LeaderboardLimit int `yaml:"leaderboard_limit"`
	// TransactionsPageSize is the ledger page size.
	TransactionsPageSize int `yaml:"transactions_page_size"`
}

// NewConfigFromEnv reads VITACOIN_* environment variables (with defaults).
func NewConfigFromEnv() Config {
	return Config{
		APIBaseURL:           getEnv("VITACOIN_API_URL", "http://localhost:8080"),
		TokenDir:             getEnv("VITACOIN_TOKEN_DIR", ""),
		LeaderboardLimit:     getEnvAsInt("VITACOIN_LEADERBOARD_LIMIT", 10),
		TransactionsPageSize: getEnvAsInt("VITACOIN_TX_PAGE_SIZE", 20),
	}
}

// LoadFile reads a YAML config file and overlays it on the env config.
// Unset file fields keep their env/default values.
func LoadFile(path string) (Config, error) {
	config := NewConfigFromEnv()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return config, fmt.Errorf("failed to parse config: %w", err)
	}

	if file.APIBaseURL != "" {
		config.APIBaseURL = file.APIBaseURL
	}
	if file.TokenDir != "" {
		config.TokenDir = file.TokenDir
	}
	if file.LeaderboardLimit > 0 {
		config.LeaderboardLimit = file.LeaderboardLimit
	}
	if file.TransactionsPageSize > 0 {
		config.TransactionsPageSize = file.TransactionsPageSize
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
