package stubserver

import (
	"github.com/vitacoin/vitacoin-go/go/internal/models"
)

func intPtr(v int) *int { return &v }

// seed loads the default admin account, reward rules and task catalog.
// Existing entries are kept, so seeding twice is harmless.
func (s *memoryStore) seed() {
	if _, exists := s.byEmail["admin@vitacoin.com"]; !exists {
		s.register("Admin", "admin@vitacoin.com", "admin123", models.RoleAdmin, 1000)
	}

	defaultRules := []models.RewardRule{
		{Key: "daily_login", Description: "Daily login reward", Points: 10, Active: true, CooldownHours: intPtr(24)},
		{Key: "task_daily", Description: "Daily task completion", Points: 5, Active: true},
		{Key: "task_weekly", Description: "Weekly task completion", Points: 25, Active: true},
		{Key: "task_achievement", Description: "Achievement task completion", Points: 50, Active: true},
	}
	for _, rule := range defaultRules {
		s.createRule(rule)
	}

	defaultTasks := []models.Task{
		{Title: "First Login", Description: "Complete your first login to the platform", Category: models.TaskCategoryDaily, CoinsReward: 5, Difficulty: models.TaskDifficultyEasy},
		{Title: "Profile Explorer", Description: "View your profile and transaction history", Category: models.TaskCategoryDaily, CoinsReward: 10, Difficulty: models.TaskDifficultyEasy},
		{Title: "Social Butterfly", Description: "Check the leaderboard and see other players", Category: models.TaskCategoryDaily, CoinsReward: 15, Difficulty: models.TaskDifficultyEasy},
		{Title: "Task Master", Description: "Complete 3 different tasks in one day", Category: models.TaskCategoryWeekly, CoinsReward: 50, Difficulty: models.TaskDifficultyMedium},
		{Title: "Coin Collector", Description: "Accumulate 100 total coins", Category: models.TaskCategoryAchievement, CoinsReward: 25, Difficulty: models.TaskDifficultyMedium},
		{Title: "Leaderboard Climber", Description: "Reach top 3 on the leaderboard", Category: models.TaskCategoryAchievement, CoinsReward: 100, Difficulty: models.TaskDifficultyHard},
		{Title: "Weekly Warrior", Description: "Complete daily login for 7 consecutive days", Category: models.TaskCategoryWeekly, CoinsReward: 75, Difficulty: models.TaskDifficultyMedium},
		{Title: "Community Member", Description: "Welcome to the Vitacoin community! Claim this bonus.", Category: models.TaskCategorySpecial, CoinsReward: 20, Difficulty: models.TaskDifficultyEasy},
	}

	existing := make(map[string]bool)
	for _, task := range s.tasks {
		existing[task.Title] = true
	}
	for _, task := range defaultTasks {
		if !existing[task.Title] {
			task.Active = true
			s.createTask(task)
		}
	}
}
