package internal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Canned replies shown in the chat when something goes wrong
const (
	defaultThought          = "Here is the result:"
	unknownAgentError       = "Unknown error occurred"
	askNetworkError         = "Network Error: Could not reach the backend."
	executeNetworkError     = "Network Error during execution."
	editorNetworkError      = "Network Error: Could not reach backend."
	executionConfirmed      = "Execution confirmed. Here are the results:"
	defaultExecutionFailure = "Execution failed"
	noSQL                   = "N/A"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*(\.[A-Za-z_][A-Za-z0-9_$]*)?$`)

// Workbench ties local state to the backend. Each method is one user action.
type Workbench struct {
	Store       *Store
	Client      *Client
	Sessions    *Sessions
	History     *History
	Dashboard   *Dashboard
	Saved       *SavedQueries
	Connections *Connections
	Preferences *Preferences
	Schema      *CacheManager
}

// Reply is the assistant message produced by a chat action
type Reply struct {
	SessionID string
	Index     int
	Message   Message
	// Failed is set when the backend reported an error or was unreachable
	Failed bool
}

// EditorResult is the outcome of running SQL from the editor
type EditorResult struct {
	SQL      string
	Datasets []Dataset
}

// HealthReport is a health response plus client-side timing
type HealthReport struct {
	HealthResponse
	Latency   time.Duration
	CheckedAt time.Time
}

// Online reports whether the backend considers itself healthy
func (h *HealthReport) Online() bool {
	return h.Status != StatusError
}

// OpenWorkbench opens the store and cache under cfg.Home and builds a client
func OpenWorkbench(cfg *Config) (*Workbench, error) {
	store, err := OpenStore(cfg.StorePath())
	if err != nil {
		return nil, err
	}
	client := NewClient(cfg.APIURL, cfg.Timeout)
	cache := NewCacheManager(cfg.Home, cfg.SchemaTTL)
	return NewWorkbench(store, client, cache), nil
}

// NewWorkbench assembles a workbench from its parts
func NewWorkbench(store *Store, client *Client, cache *CacheManager) *Workbench {
	wb := &Workbench{
		Store:       store,
		Client:      client,
		Sessions:    NewSessions(store),
		History:     NewHistory(store),
		Dashboard:   NewDashboard(store),
		Saved:       NewSavedQueries(store),
		Connections: NewConnections(store),
		Preferences: NewPreferences(store),
		Schema:      cache,
	}
	if token := store.GetString(KeyUserToken, ""); token != "" {
		client.SetToken(token)
	}
	return wb
}

// Close releases the store
func (w *Workbench) Close() error {
	return w.Store.Close()
}

// User returns the logged-in profile, if any
func (w *Workbench) User() (*UserInfo, bool) {
	if w.Store.GetString(KeyUserToken, "") == "" {
		return nil, false
	}
	var user UserInfo
	if err := w.Store.GetJSON(KeyUserInfo, &user); err != nil {
		return &UserInfo{Name: "Guest"}, true
	}
	return &user, true
}

// RequireUser returns the logged-in profile or ErrNotLoggedIn
func (w *Workbench) RequireUser() (*UserInfo, error) {
	user, ok := w.User()
	if !ok {
		return nil, ErrNotLoggedIn
	}
	return user, nil
}

func (w *Workbench) userEmail() string {
	if user, ok := w.User(); ok {
		return user.Email
	}
	return ""
}

// Login authenticates and stores the token and profile
func (w *Workbench) Login(ctx context.Context, email, password string) (*UserInfo, error) {
	res, err := w.Client.Login(ctx, LoginRequest{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		return nil, err
	}
	if err := w.Store.Set(KeyUserToken, res.Token); err != nil {
		return nil, err
	}
	if err := w.Store.SetJSON(KeyUserInfo, res.User); err != nil {
		return nil, err
	}
	w.Client.SetToken(res.Token)
	LogInfo("Logged in as %s", res.User.Email)
	return &res.User, nil
}

// Register creates an account and returns the backend's message
func (w *Workbench) Register(ctx context.Context, name, email, password string) (string, error) {
	res, err := w.Client.Register(ctx, RegisterRequest{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
	})
	if err != nil {
		return "", err
	}
	return firstNonEmpty(res.Message, "User registered successfully"), nil
}

// Logout forgets the token and profile
func (w *Workbench) Logout() error {
	w.Client.SetToken("")
	return w.Store.Delete(KeyUserToken, KeyUserInfo)
}

// SendMessage forwards a prompt to the agent within the current session and
// stores both sides of the exchange.
func (w *Workbench) SendMessage(ctx context.Context, prompt string) (*Reply, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}

	session, err := w.Sessions.Current()
	if err != nil {
		return nil, err
	}
	prior, err := w.Sessions.Messages(session.ID)
	if err != nil {
		return nil, err
	}

	history := make([]HistoryTurn, 0, len(prior))
	for _, m := range prior {
		history = append(history, HistoryTurn{Role: m.Role, Content: m.Content})
	}

	if err := w.Sessions.AppendMessages(session.ID, Message{Role: RoleUser, Content: prompt}); err != nil {
		return nil, err
	}
	if err := w.Sessions.AutoName(session.ID, prompt); err != nil {
		LogWarn("Failed to name session: %v", err)
	}

	res, askErr := w.Client.Ask(ctx, AskRequest{
		Prompt:        prompt,
		History:       history,
		SafeMode:      w.Preferences.Load().SafeMode,
		UserEmail:     w.userEmail(),
		ConnectionURI: w.Connections.ActiveURI(),
	})

	reply := Message{Role: RoleAssistant}
	failed := false
	switch {
	case askErr != nil:
		failed = true
		var apiErr *APIError
		if errors.As(askErr, &apiErr) {
			reply.Content = "Error: " + apiErr.Message
		} else {
			reply.Content = askNetworkError
		}
		LogDebug("ask failed: %v", askErr)

	case res.Status == StatusSuccess:
		datasets := res.Datasets
		if datasets == nil && res.Data != nil {
			datasets = []Dataset{{
				Type: firstNonEmpty(res.ChartType, DatasetTable),
				Data: res.Data,
				SQL:  res.SQL,
			}}
		}
		reply.Content = firstNonEmpty(res.Thought, defaultThought)
		reply.Datasets = datasets
		reply.SQL = res.SQL
		reply.RequiresConfirmation = res.RequiresConfirmation

		if !res.RequiresConfirmation {
			w.recordAgentHistory(res)
		}

	default:
		failed = true
		reply.Content = "Error: " + firstNonEmpty(res.ErrorMessage, unknownAgentError)
		reply.SQL = res.SQL
		if hasSQL(res.SQL) {
			w.recordHistory(res.SQL, StatusError, res.ErrorMessage)
		}
	}

	if err := w.Sessions.AppendMessages(session.ID, reply); err != nil {
		return nil, err
	}
	if TouchesSchema(prompt) {
		w.invalidateSchema()
	}

	messages, err := w.Sessions.Messages(session.ID)
	if err != nil {
		return nil, err
	}
	return &Reply{
		SessionID: session.ID,
		Index:     len(messages) - 1,
		Message:   messages[len(messages)-1],
		Failed:    failed,
	}, nil
}

func (w *Workbench) recordAgentHistory(res *AskResponse) {
	if len(res.Datasets) > 0 {
		for _, ds := range res.Datasets {
			if ds.SQL == "" {
				continue
			}
			if ds.Type == DatasetError {
				w.recordHistory(ds.SQL, StatusError, ds.ErrorText())
			} else {
				w.recordHistory(ds.SQL, StatusSuccess, "")
			}
		}
		return
	}
	if hasSQL(res.SQL) {
		w.recordHistory(res.SQL, StatusSuccess, "")
	}
}

func (w *Workbench) recordHistory(sql, status, errMsg string) {
	if _, err := w.History.Record(sql, status, errMsg); err != nil {
		LogWarn("Failed to record query history: %v", err)
	}
}

func hasSQL(sql string) bool {
	sql = strings.TrimSpace(sql)
	return sql != "" && sql != noSQL
}

// PendingConfirmation returns the index of the newest message of the current
// session still waiting for confirmation, or -1.
func (w *Workbench) PendingConfirmation() (int, *Message, error) {
	session, err := w.Sessions.Current()
	if err != nil {
		return -1, nil, err
	}
	messages, err := w.Sessions.Messages(session.ID)
	if err != nil {
		return -1, nil, err
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].AwaitingConfirmation() {
			return i, &messages[i], nil
		}
	}
	return -1, nil, nil
}

// ConfirmSQL settles the confirmation of message idx in the current session.
// Approving runs its SQL; cancelling only marks the message. A negative idx
// picks the newest pending message.
func (w *Workbench) ConfirmSQL(ctx context.Context, idx int, approve bool) (*Reply, error) {
	session, err := w.Sessions.Current()
	if err != nil {
		return nil, err
	}
	messages, err := w.Sessions.Messages(session.ID)
	if err != nil {
		return nil, err
	}

	if idx < 0 {
		for i := len(messages) - 1; i >= 0; i-- {
			if messages[i].AwaitingConfirmation() {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("no statement is waiting for confirmation")
		}
	}
	if idx >= len(messages) {
		return nil, fmt.Errorf("message %d: %w", idx, ErrNotFound)
	}
	target := messages[idx]
	if !target.AwaitingConfirmation() {
		return nil, fmt.Errorf("message %d is not waiting for confirmation", idx)
	}

	state := ConfirmationCancelled
	if approve {
		state = ConfirmationConfirmed
	}
	if err := w.Sessions.UpdateMessage(session.ID, idx, func(m *Message) { m.Confirmation = state }); err != nil {
		return nil, err
	}
	if !approve {
		return nil, nil
	}

	res, execErr := w.Client.Execute(ctx, ExecuteRequest{
		SQL:           target.SQL,
		UserEmail:     w.userEmail(),
		ConnectionURI: w.Connections.ActiveURI(),
	})

	reply := Message{Role: RoleAssistant, SQL: target.SQL}
	failed := false
	switch {
	case execErr != nil:
		failed = true
		var apiErr *APIError
		if errors.As(execErr, &apiErr) {
			reply.Content = "Execution Failed: " + apiErr.Message
		} else {
			reply.Content = executeNetworkError
		}
	case res.Status == StatusSuccess:
		reply.Content = executionConfirmed
		reply.Datasets = res.Datasets
		w.recordHistory(target.SQL, StatusSuccess, "")
		w.invalidateSchema()
	default:
		failed = true
		reply.Content = "Execution Failed: " + res.ErrorMessage
		w.recordHistory(target.SQL, StatusError, res.ErrorMessage)
	}

	if err := w.Sessions.AppendMessages(session.ID, reply); err != nil {
		return nil, err
	}
	return &Reply{
		SessionID: session.ID,
		Index:     len(messages),
		Message:   reply,
		Failed:    failed,
	}, nil
}

// ConfirmFunc is asked before a destructive statement runs in safe mode
type ConfirmFunc func(sql string) bool

// RunEditor executes SQL typed into the editor. In safe mode destructive
// statements run only if confirm approves them.
func (w *Workbench) RunEditor(ctx context.Context, sql string, confirm ConfirmFunc) (*EditorResult, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, fmt.Errorf("nothing to execute")
	}
	if err := w.Store.Set(KeyEditorSQL, sql); err != nil {
		return nil, err
	}

	if w.Preferences.Load().SafeMode && IsDestructive(sql) {
		if confirm == nil || !confirm(sql) {
			return nil, ErrConfirmationDeclined
		}
	}

	res, err := w.Client.Execute(ctx, ExecuteRequest{
		SQL:           sql,
		UserEmail:     w.userEmail(),
		ConnectionURI: w.Connections.ActiveURI(),
	})
	if err != nil {
		if IsNetworkError(err) {
			return nil, fmt.Errorf("%s: %w", editorNetworkError, err)
		}
		return nil, err
	}
	if res.Status != StatusSuccess {
		msg := firstNonEmpty(res.ErrorMessage, defaultExecutionFailure)
		w.recordHistory(sql, StatusError, msg)
		return nil, &APIError{Endpoint: EndpointExecute, Message: msg}
	}

	datasets := res.Datasets
	if datasets == nil {
		datasets = []Dataset{}
	}
	if err := w.Store.SetJSON(KeyEditorDatasets, datasets); err != nil {
		return nil, err
	}
	for _, ds := range datasets {
		stmt := firstNonEmpty(ds.SQL, sql)
		if ds.Type == DatasetError {
			w.recordHistory(stmt, StatusError, ds.ErrorText())
		} else {
			w.recordHistory(stmt, StatusSuccess, "")
		}
	}
	return &EditorResult{SQL: sql, Datasets: datasets}, nil
}

// EditorState returns the last editor SQL and result sets
func (w *Workbench) EditorState() (string, []Dataset) {
	sql := w.Store.GetString(KeyEditorSQL, "")
	datasets, err := loadList[Dataset](w.Store, KeyEditorDatasets)
	if err != nil {
		LogWarn("Failed to load editor results: %v", err)
	}
	return sql, datasets
}

// PreviewTable fetches the first rows of a table, capped by the row limit
func (w *Workbench) PreviewTable(ctx context.Context, table string) (*Dataset, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	sql := fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, w.Preferences.Load().RowLimit)
	res, err := w.Client.Execute(ctx, ExecuteRequest{
		SQL:           sql,
		UserEmail:     w.userEmail(),
		ConnectionURI: w.Connections.ActiveURI(),
	})
	if err != nil {
		return nil, err
	}
	if res.Status != StatusSuccess {
		return nil, &APIError{Endpoint: EndpointExecute, Message: firstNonEmpty(res.ErrorMessage, defaultExecutionFailure)}
	}
	if len(res.Datasets) == 0 {
		return &Dataset{Type: DatasetTable, SQL: sql}, nil
	}
	ds := res.Datasets[0]
	if ds.Type == DatasetError {
		return nil, &APIError{Endpoint: EndpointExecute, Message: ds.ErrorText()}
	}
	return &ds, nil
}

// schemaKey identifies whose schema a listing belongs to. Connection URIs
// carry credentials, so only their digest reaches the cache file.
func (w *Workbench) schemaKey() string {
	if uri := w.Connections.ActiveURI(); uri != "" {
		sum := sha256.Sum256([]byte(uri))
		return "uri:" + hex.EncodeToString(sum[:])
	}
	return "sandbox:" + w.userEmail()
}

func (w *Workbench) invalidateSchema() {
	if w.Schema == nil {
		return
	}
	if err := w.Schema.Invalidate(w.schemaKey()); err != nil {
		LogWarn("Failed to invalidate schema cache: %v", err)
	}
}

// Tables lists the tables of the active database
func (w *Workbench) Tables(ctx context.Context, refresh bool) ([]string, error) {
	key := w.schemaKey()
	if !refresh && w.Schema != nil {
		if tables, ok := w.Schema.Tables(key); ok {
			LogDebug("schema: %d table(s) from cache", len(tables))
			return tables, nil
		}
	}

	res, err := w.Client.Schema(ctx, SchemaRequest{
		UserEmail:     w.userEmail(),
		ConnectionURI: w.Connections.ActiveURI(),
	})
	if err != nil {
		return nil, err
	}
	if res.Error != "" {
		return nil, &APIError{Endpoint: EndpointSchema, Message: res.Error}
	}
	tables := res.Tables
	if tables == nil {
		tables = []string{}
	}
	if w.Schema != nil {
		if err := w.Schema.SaveTables(key, tables); err != nil {
			LogWarn("Failed to cache schema: %v", err)
		}
	}
	return tables, nil
}

// Columns describes one table of the active database
func (w *Workbench) Columns(ctx context.Context, table string, refresh bool) ([]Column, error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("table name is required")
	}
	key := w.schemaKey()
	if !refresh && w.Schema != nil {
		if cols, ok := w.Schema.Columns(key, table); ok {
			return cols, nil
		}
	}

	res, err := w.Client.Schema(ctx, SchemaRequest{
		UserEmail:     w.userEmail(),
		ConnectionURI: w.Connections.ActiveURI(),
		TableName:     table,
	})
	if err != nil {
		return nil, err
	}
	if res.Error != "" {
		return nil, &APIError{Endpoint: EndpointSchema, Message: res.Error}
	}
	if w.Schema != nil {
		if err := w.Schema.SaveColumns(key, table, res.Columns); err != nil {
			LogWarn("Failed to cache columns: %v", err)
		}
	}
	return res.Columns, nil
}

// TestConnection asks the backend to list tables through cfg without
// making it the active connection.
func (w *Workbench) TestConnection(ctx context.Context, cfg ConnectionConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	res, err := w.Client.Schema(ctx, SchemaRequest{ConnectionURI: cfg.URI()})
	if err != nil {
		return err
	}
	if res.Error != "" {
		return &APIError{Endpoint: EndpointSchema, Message: res.Error}
	}
	return nil
}

// Connect makes cfg the active connection and drops stale schema listings
func (w *Workbench) Connect(cfg ConnectionConfig) (string, error) {
	uri, err := w.Connections.Connect(cfg)
	if err != nil {
		return "", err
	}
	w.invalidateSchema()
	return uri, nil
}

// Disconnect returns to the personal sandbox
func (w *Workbench) Disconnect() error {
	return w.Connections.Disconnect()
}

// Health checks the backend and database, timing the round trip
func (w *Workbench) Health(ctx context.Context) (*HealthReport, error) {
	start := time.Now()
	res, err := w.Client.Health(ctx, w.userEmail(), w.Connections.ActiveURI())
	if err != nil {
		return nil, err
	}
	return &HealthReport{
		HealthResponse: *res,
		Latency:        time.Since(start),
		CheckedAt:      time.Now(),
	}, nil
}

// PinLatest pins the newest dataset with SQL from the current chat session
func (w *Workbench) PinLatest(chartType string) (*Widget, error) {
	session, err := w.Sessions.Current()
	if err != nil {
		return nil, err
	}
	messages, err := w.Sessions.Messages(session.ID)
	if err != nil {
		return nil, err
	}
	for i := len(messages) - 1; i >= 0; i-- {
		datasets := messages[i].Datasets
		for j := len(datasets) - 1; j >= 0; j-- {
			ds := datasets[j]
			if ds.SQL == "" || ds.Type == DatasetError {
				continue
			}
			return w.PinDataset(ds, chartType)
		}
	}
	return nil, fmt.Errorf("no result in the current chat to pin")
}

// PinDataset pins ds to the dashboard of the active connection. An empty
// chartType keeps the dataset's own rendering hint.
func (w *Workbench) PinDataset(ds Dataset, chartType string) (*Widget, error) {
	mode := ResolveViewMode(firstNonEmpty(chartType, ds.Type), ds.Data)
	return w.Dashboard.Pin(ds.SQL, mode, InferChartConfig(ds.Data), w.Connections.ActiveURI(), ds.Data)
}

// PinSQL pins a statement without results; the dashboard fills it on refresh
func (w *Workbench) PinSQL(sql, chartType string) (*Widget, error) {
	return w.Dashboard.Pin(sql, firstNonEmpty(chartType, DatasetTable), ChartConfig{}, w.Connections.ActiveURI(), nil)
}

// RefreshWidget re-runs a widget's SQL against the connection it was pinned on
func (w *Workbench) RefreshWidget(ctx context.Context, idOrPrefix string) (*Widget, error) {
	widget, err := w.Dashboard.Get(idOrPrefix)
	if err != nil {
		return nil, err
	}
	res, err := w.Client.Execute(ctx, ExecuteRequest{
		SQL:           widget.SQL,
		UserEmail:     w.userEmail(),
		ConnectionURI: widget.ConnectionURI,
	})
	if err != nil {
		return nil, err
	}
	if res.Status != StatusSuccess {
		return nil, &APIError{Endpoint: EndpointExecute, Message: firstNonEmpty(res.ErrorMessage, defaultExecutionFailure)}
	}
	if len(res.Datasets) == 0 {
		return widget, nil
	}
	ds := res.Datasets[0]
	if ds.Type == DatasetError {
		return nil, &APIError{Endpoint: EndpointExecute, Message: ds.ErrorText()}
	}
	if err := w.Dashboard.UpdateData(widget.ID, ds.Data); err != nil {
		return nil, err
	}
	return w.Dashboard.Get(widget.ID)
}

// RefreshDashboard refreshes every widget of the active connection. Failures
// are reported through onDone and do not stop the remaining widgets.
func (w *Workbench) RefreshDashboard(ctx context.Context, onDone func(Widget, error)) ([]Widget, error) {
	widgets, err := w.Dashboard.ForConnection(w.Connections.ActiveURI())
	if err != nil {
		return nil, err
	}
	for _, widget := range widgets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, refreshErr := w.RefreshWidget(ctx, widget.ID)
		if refreshErr != nil {
			LogWarn("Failed to refresh widget %s: %v", widget.ID, refreshErr)
		}
		if onDone != nil {
			onDone(widget, refreshErr)
		}
	}
	return w.Dashboard.ForConnection(w.Connections.ActiveURI())
}
