package internal

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Backend endpoints
const (
	EndpointAsk      = "/ask"
	EndpointExecute  = "/execute"
	EndpointSchema   = "/schema"
	EndpointHealth   = "/health"
	EndpointLogin    = "/auth/login"
	EndpointRegister = "/auth/register"
)

// Client talks to the NL→SQL backend
type Client struct {
	http *resty.Client
}

// NewClient creates a backend client for baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	http := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	return &Client{http: http}
}

// BaseURL returns the backend address
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// SetToken attaches the login token to every request
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

// errorBody covers FastAPI's {"detail": ...} and the backend's own error fields
type errorBody struct {
	Detail       json.RawMessage `json:"detail"`
	Error        string          `json:"error"`
	ErrorMessage string          `json:"error_message"`
}

func (b *errorBody) message() string {
	if len(b.Detail) > 0 {
		var s string
		if err := json.Unmarshal(b.Detail, &s); err == nil {
			return s
		}
		return string(b.Detail)
	}
	if b.ErrorMessage != "" {
		return b.ErrorMessage
	}
	return b.Error
}

// do runs a request and maps transport failures and HTTP errors onto
// NetworkError and APIError.
func (c *Client) do(ctx context.Context, method, endpoint string, body, result interface{}, query map[string]string) error {
	var errBody errorBody
	req := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(&errBody)
	if body != nil {
		req.SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	start := time.Now()
	res, err := req.Execute(method, endpoint)
	if err != nil {
		LogDebug("%s %s failed after %s: %v", method, endpoint, time.Since(start), err)
		if res != nil && res.RawResponse != nil {
			return &ParseError{Source: "backend", Key: endpoint, Err: err}
		}
		return &NetworkError{Endpoint: endpoint, Err: err}
	}
	LogDebug("%s %s -> %d in %s", method, endpoint, res.StatusCode(), time.Since(start))

	if res.IsError() {
		msg := errBody.message()
		if msg == "" {
			msg = strings.TrimSpace(res.String())
		}
		if msg == "" {
			msg = res.Status()
		}
		return &APIError{Endpoint: endpoint, StatusCode: res.StatusCode(), Message: msg}
	}
	return nil
}

// Ask sends a natural-language prompt to the agent
func (c *Client) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	if req.History == nil {
		req.History = []HistoryTurn{}
	}
	var out AskResponse
	if err := c.do(ctx, resty.MethodPost, EndpointAsk, req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Execute runs SQL directly
func (c *Client) Execute(ctx context.Context, req ExecuteRequest) (*ExecuteResponse, error) {
	var out ExecuteResponse
	if err := c.do(ctx, resty.MethodPost, EndpointExecute, req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Schema lists tables, or the columns of req.TableName
func (c *Client) Schema(ctx context.Context, req SchemaRequest) (*SchemaResponse, error) {
	var out SchemaResponse
	if err := c.do(ctx, resty.MethodPost, EndpointSchema, req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health reports backend and database status. Empty arguments are omitted.
func (c *Client) Health(ctx context.Context, userEmail, connectionURI string) (*HealthResponse, error) {
	query := map[string]string{}
	if userEmail != "" {
		query["user_email"] = userEmail
	}
	if connectionURI != "" {
		query["connection_uri"] = connectionURI
	}
	var out HealthResponse
	if err := c.do(ctx, resty.MethodGet, EndpointHealth, nil, &out, query); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a token and profile
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, resty.MethodPost, EndpointLogin, req, &out, nil); err != nil {
		return nil, err
	}
	if out.Status != StatusSuccess {
		return nil, &APIError{Endpoint: EndpointLogin, Message: firstNonEmpty(out.Message, "Login failed")}
	}
	return &out, nil
}

// Register creates an account
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, resty.MethodPost, EndpointRegister, req, &out, nil); err != nil {
		return nil, err
	}
	if out.Status != StatusSuccess {
		return nil, &APIError{Endpoint: EndpointRegister, Message: firstNonEmpty(out.Message, "Registration failed")}
	}
	return &out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
