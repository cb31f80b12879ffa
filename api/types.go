package api

// User represents the authenticated account's profile.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenPair is the response of the password token exchange.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Project types: "activity" projects collect event logs, "llm" projects
// collect LLM interaction logs.
const (
	ProjectTypeActivity = "activity"
	ProjectTypeLLM      = "llm"
)

// Project is a named grouping of logs.
type Project struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	ProjectType   string `json:"project_type"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
	LogCount      int64  `json:"log_count,omitempty"`
	EventLogCount int64  `json:"event_log_count,omitempty"`
	LlmLogCount   int64  `json:"llm_log_count,omitempty"`
}

// APIKey is an opaque secret issued to external log producers. The key
// value is shown in plaintext exactly once, on creation.
type APIKey struct {
	ID        int64  `json:"id"`
	Key       string `json:"key"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	IsActive  bool   `json:"is_active"`
}

// Event log severity levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
	LevelDebug   = "debug"
)

// EventLog is a single activity log record.
type EventLog struct {
	ID        int64                  `json:"id"`
	Project   int64                  `json:"project"`
	UserID    string                 `json:"user_id"`
	Message   string                 `json:"message"`
	Level     string                 `json:"level"`
	Timestamp string                 `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// LlmLog is a single recorded LLM interaction.
type LlmLog struct {
	ID        int64                  `json:"id"`
	Project   int64                  `json:"project"`
	UserID    string                 `json:"user_id"`
	Source    string                 `json:"source"`
	Query     string                 `json:"query,omitempty"`
	Response  string                 `json:"response,omitempty"`
	Timestamp string                 `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// MonthlyLogCount is one bucket of the monthly aggregate chart.
type MonthlyLogCount struct {
	Month      string `json:"month"`
	EventCount int64  `json:"eventCount"`
	LlmCount   int64  `json:"llmCount"`
}

// NamedCount is a generic name/value aggregate bucket.
type NamedCount struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// LevelCount is the per-severity aggregate bucket.
type LevelCount struct {
	Level string `json:"level"`
	Count int64  `json:"count"`
}

// AnalyticsSnapshot is the per-project analytics aggregate. It is derived
// server-side and only ever re-fetched, never mutated from the client.
type AnalyticsSnapshot struct {
	MonthlyLogs []MonthlyLogCount `json:"monthly_logs"`
	LlmSources  []NamedCount      `json:"llm_sources"`
	LogLevels   []LevelCount      `json:"log_levels"`
}

// UserStats is the account-wide dashboard summary.
type UserStats struct {
	ProjectCount  int64 `json:"project_count"`
	EventLogCount int64 `json:"event_log_count"`
	LlmLogCount   int64 `json:"llm_log_count"`
	APIKeyCount   int64 `json:"api_key_count"`
}

// NotificationPreferences is the per-user email notification settings
// singleton, fetched then replaced in full.
type NotificationPreferences struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	Enabled         bool   `json:"enabled"`
	NotifyOnError   bool   `json:"notify_on_error"`
	NotifyOnWarning bool   `json:"notify_on_warning"`
}
