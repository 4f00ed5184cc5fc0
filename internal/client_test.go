package internal

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/datalk/testutil"
)

func newTestClient(t *testing.T) (*Client, *testutil.FakeBackend) {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	return NewClient(fb.URL()+"/", 5*time.Second), fb
}

func TestClient_Ask(t *testing.T) {
	client, fb := newTestClient(t)
	fb.RespondOK(EndpointAsk, `{"status":"success","thought":"Counting.","sql":"SELECT count(*) AS n FROM users","datasets":[{"type":"table","sql":"SELECT count(*) AS n FROM users","data":[{"n":3}]}]}`)

	res, err := client.Ask(context.Background(), AskRequest{Prompt: "how many users?", SafeMode: true, UserEmail: "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "Counting.", res.Thought)
	require.Len(t, res.Datasets, 1)
	n, _ := res.Datasets[0].Data[0].Get("n")
	assert.Equal(t, "3", Stringify(n))

	req := fb.LastRequest(t, EndpointAsk)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "how many users?", req.Body["prompt"])
	assert.Equal(t, true, req.Body["safe_mode"])
	assert.Equal(t, []interface{}{}, req.Body["history"], "history must be sent as an empty list")
	assert.NotContains(t, req.Body, "connection_uri")
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        interface{}
		wantMessage string
	}{
		{name: "fastapi detail", status: http.StatusUnauthorized, body: `{"detail":"Invalid credentials"}`, wantMessage: "Invalid credentials"},
		{name: "validation detail list", status: http.StatusUnprocessableEntity, body: `{"detail":[{"msg":"field required"}]}`, wantMessage: `[{"msg":"field required"}]`},
		{name: "error field", status: http.StatusInternalServerError, body: `{"error":"boom"}`, wantMessage: "boom"},
		{name: "unknown body", status: http.StatusBadGateway, body: `{"unexpected":true}`, wantMessage: `{"unexpected":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, fb := newTestClient(t)
			fb.Respond(EndpointExecute, tt.status, tt.body)

			_, err := client.Execute(context.Background(), ExecuteRequest{SQL: "SELECT 1"})
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "got %T: %v", err, err)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.False(t, IsNetworkError(err))
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	url := fb.URL()
	fb.Server.Close()

	client := NewClient(url, time.Second)
	_, err := client.Schema(context.Background(), SchemaRequest{})
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
}

func TestClient_MalformedReply(t *testing.T) {
	client, fb := newTestClient(t)
	fb.RespondOK(EndpointExecute, `{"status":`)

	_, err := client.Execute(context.Background(), ExecuteRequest{SQL: "SELECT 1"})
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr), "got %T: %v", err, err)
	assert.False(t, IsNetworkError(err))
}

func TestClient_Schema(t *testing.T) {
	client, fb := newTestClient(t)
	fb.RespondOK(EndpointSchema, `{"columns":[{"name":"id","type":"INTEGER","pk":true},{"name":"name","type":"TEXT","pk":false}]}`)

	res, err := client.Schema(context.Background(), SchemaRequest{TableName: "users", ConnectionURI: "postgresql://u:p@h:5432/d"})
	require.NoError(t, err)
	require.Len(t, res.Columns, 2)
	assert.True(t, res.Columns[0].PrimaryKey)

	req := fb.LastRequest(t, EndpointSchema)
	assert.Equal(t, "users", req.Body["table_name"])
	assert.Equal(t, "postgresql://u:p@h:5432/d", req.Body["connection_uri"])
}

func TestClient_Health(t *testing.T) {
	client, fb := newTestClient(t)
	fb.RespondOK(EndpointHealth, `{"status":"online","system_db":"PostgreSQL","db_size_bytes":1048576,"table_count":2,"tables":["a","b"],"db_url_masked":"postgresql://u:****@h/d","timestamp":1700000000.5}`)

	res, err := client.Health(context.Background(), "a@b.c", "")
	require.NoError(t, err)
	assert.Equal(t, "online", res.Status)
	assert.Equal(t, int64(1048576), res.DBSizeBytes)
	assert.Equal(t, 2, res.TableCount)

	req := fb.LastRequest(t, EndpointHealth)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "a@b.c", req.Query.Get("user_email"))
	assert.False(t, req.Query.Has("connection_uri"))
}

func TestClient_Auth(t *testing.T) {
	client, fb := newTestClient(t)
	fb.RespondOK(EndpointLogin, `{"status":"success","token":"tok-1","user":{"id":"u-1","name":"Ada","email":"ada@example.com"}}`)
	fb.RespondOK(EndpointRegister, `{"status":"error","message":"Email already exists"}`)

	res, err := client.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", res.Token)
	assert.Equal(t, "Ada", res.User.Name)

	_, err = client.Register(context.Background(), RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Email already exists", apiErr.Message)

	client.SetToken("tok-1")
	fb.RespondOK(EndpointExecute, `{"status":"success","datasets":[]}`)
	_, err = client.Execute(context.Background(), ExecuteRequest{SQL: "SELECT 1"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", fb.LastRequest(t, EndpointExecute).Header.Get("Authorization"))
}

func TestClient_BaseURL(t *testing.T) {
	client := NewClient("http://localhost:8000/", time.Second)
	assert.Equal(t, "http://localhost:8000", client.BaseURL())
}
