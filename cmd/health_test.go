package cmd

import (
	"context"
	"testing"
	"time"
)

const healthReply = `{"status":"ok","message":"Connected","system_db":"SQLite","table_count":2,"tables":["students","orders"],"db_size_bytes":2048,"timestamp":1700000000}`

func TestHealthCommand(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	env.fb.RespondOK("/health", healthReply)

	out := env.mustRun("health")
	assertContains(t, out, "Online", "Connected", "SQLite", "students, orders", "2.0 kB", "Latency")

	query := env.fb.LastRequest(t, "/health").Query
	if query.Get("user_email") != "ada@example.com" {
		t.Errorf("user_email = %q", query.Get("user_email"))
	}
	if query.Has("connection_uri") {
		t.Error("connection_uri should be omitted in the sandbox")
	}
}

func TestHealthCommand_Error(t *testing.T) {
	env := newCLIEnv(t)
	env.fb.RespondOK("/health", `{"status":"error","message":"database is locked"}`)

	out, err := env.run("", "health")
	if err == nil {
		t.Fatal("an unhealthy backend should fail the command")
	}
	assertContains(t, out, "Error", "database is locked")
}

func TestHealthCommand_Offline(t *testing.T) {
	env := newCLIEnv(t)
	env.fb.Server.Close()

	out, err := env.run("", "health")
	if err == nil {
		t.Fatal("an unreachable backend should fail the command")
	}
	assertContains(t, out, "Backend offline")
}

func TestHealthCommand_Watch(t *testing.T) {
	env := newCLIEnv(t)
	env.fb.RespondOK("/health", healthReply)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	out, err := env.runContext(ctx, "", "health", "--watch", "--interval", "20ms")
	if err != nil {
		t.Fatalf("watch should stop cleanly when cancelled: %v", err)
	}
	assertContains(t, out, "Watching", "● online", "SQLite")
	if n := len(env.fb.Requests("/health")); n < 2 {
		t.Errorf("health requests = %d, want repeated checks", n)
	}
}
