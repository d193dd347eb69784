package vitacoin_client

const (
	// API prefix
	APIPrefix = "/api"

	// Auth endpoints
	RegisterEndpoint = APIPrefix + "/auth/register"
	LoginEndpoint    = APIPrefix + "/auth/login"
	MeEndpoint       = APIPrefix + "/auth/me"

	// Reward endpoints
	DailyRewardEndpoint = APIPrefix + "/rewards/daily"

	// Task endpoints
	TasksEndpoint          = APIPrefix + "/tasks"
	CompletedTasksEndpoint = APIPrefix + "/tasks/completed"
	ActivitiesEndpoint     = APIPrefix + "/activities"

	// Read-state endpoints
	TransactionsEndpoint = APIPrefix + "/transactions"
	LeaderboardEndpoint  = APIPrefix + "/leaderboard"

	// Admin endpoints
	AdminUsersEndpoint           = APIPrefix + "/admin/users"
	AdminRulesEndpoint           = APIPrefix + "/admin/rules"
	AdminTasksEndpoint           = APIPrefix + "/admin/tasks"
	AdminTaskCompletionsEndpoint = APIPrefix + "/admin/task-completions"
	AdminInitDBEndpoint          = APIPrefix + "/admin/init-db"

	// Push channel path; the identity id is appended as a path segment.
	PushChannelPathPrefix = "/ws/"
)
