package internal

// HistoryTurn is one prior chat message sent with a prompt for context
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AskRequest is the body of POST /ask
type AskRequest struct {
	Prompt        string        `json:"prompt"`
	History       []HistoryTurn `json:"history"`
	SafeMode      bool          `json:"safe_mode"`
	UserEmail     string        `json:"user_email,omitempty"`
	ConnectionURI string        `json:"connection_uri,omitempty"`
}

// AskResponse is the agent's answer. Older backends return a single result
// in Data/ChartType instead of Datasets.
type AskResponse struct {
	Status               string    `json:"status"`
	Thought              string    `json:"thought"`
	SQL                  string    `json:"sql"`
	Data                 []Row     `json:"data"`
	Datasets             []Dataset `json:"datasets"`
	ChartType            string    `json:"chart_type"`
	RequiresConfirmation bool      `json:"requires_confirmation"`
	ErrorMessage         string    `json:"error_message"`
}

// ExecuteRequest is the body of POST /execute
type ExecuteRequest struct {
	SQL           string `json:"sql"`
	UserEmail     string `json:"user_email,omitempty"`
	ConnectionURI string `json:"connection_uri,omitempty"`
}

// ExecuteResponse is the result of POST /execute
type ExecuteResponse struct {
	Status       string    `json:"status"`
	Datasets     []Dataset `json:"datasets"`
	ErrorMessage string    `json:"error_message"`
}

// SchemaRequest is the body of POST /schema. With TableName set the backend
// answers with columns, otherwise with table names.
type SchemaRequest struct {
	UserEmail     string `json:"user_email,omitempty"`
	ConnectionURI string `json:"connection_uri,omitempty"`
	TableName     string `json:"table_name,omitempty"`
}

// Column describes one table column
type Column struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	PrimaryKey bool   `json:"pk" yaml:"pk"`
}

// SchemaResponse is the result of POST /schema
type SchemaResponse struct {
	Tables  []string `json:"tables"`
	Columns []Column `json:"columns"`
	Error   string   `json:"error"`
}

// HealthResponse is the result of GET /health
type HealthResponse struct {
	Status      string   `json:"status"`
	Message     string   `json:"message"`
	DBURLMasked string   `json:"db_url_masked"`
	DBSizeBytes int64    `json:"db_size_bytes"`
	SystemDB    string   `json:"system_db"`
	TableCount  int      `json:"table_count"`
	Tables      []string `json:"tables"`
	Timestamp   float64  `json:"timestamp"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by both auth endpoints. Register carries no token.
type AuthResponse struct {
	Status  string   `json:"status"`
	Token   string   `json:"token"`
	User    UserInfo `json:"user"`
	Message string   `json:"message"`
}
