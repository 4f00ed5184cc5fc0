package cmd

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const selectReply = `{"status":"success","datasets":[{"type":"table","data":[{"name":"Alice","marks":91},{"name":"Bob","marks":null}],"sql":"SELECT name, marks FROM students"}]}`

func TestExecCommand(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	env.fb.RespondOK("/execute", selectReply)

	out := env.mustRun("exec", "SELECT name, marks FROM students")
	assertContains(t, out, "Alice", "Bob", "NULL", "2 row(s)")

	req := env.fb.LastRequest(t, "/execute")
	if req.Body["sql"] != "SELECT name, marks FROM students" {
		t.Errorf("sql = %v", req.Body["sql"])
	}
	if req.Header.Get("Authorization") != "Bearer tok-1" {
		t.Errorf("Authorization = %q", req.Header.Get("Authorization"))
	}

	out = env.mustRun("exec", "--last")
	assertContains(t, out, "SELECT name, marks FROM students", "Alice")
}

func TestExecCommand_Sources(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	env.fb.RespondOK("/execute", selectReply)

	path := filepath.Join(env.home, "query.sql")
	if err := os.WriteFile(path, []byte("SELECT 1"), 0644); err != nil {
		t.Fatal(err)
	}
	env.mustRun("exec", "--file", path)
	if sql := env.fb.LastRequest(t, "/execute").Body["sql"]; sql != "SELECT 1" {
		t.Errorf("file sql = %v", sql)
	}

	if _, err := env.run("SELECT 2\n", "exec"); err != nil {
		t.Fatalf("stdin exec failed: %v", err)
	}
	if sql := env.fb.LastRequest(t, "/execute").Body["sql"]; sql != "SELECT 2\n" {
		t.Errorf("stdin sql = %q", sql)
	}

	if _, err := env.run("", "exec"); err == nil {
		t.Error("exec without SQL should fail")
	}
}

func TestExecCommand_CSV(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	env.fb.RespondOK("/execute", selectReply)

	path := filepath.Join(env.home, "out.csv")
	out := env.mustRun("exec", "--csv", path, "SELECT name, marks FROM students")
	assertContains(t, out, "Wrote 2 row(s)")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "name,marks\nAlice,91\nBob,\n"
	if string(data) != want {
		t.Errorf("csv = %q, want %q", data, want)
	}
}

func TestExecCommand_SafeMode(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	env.mustRun("settings", "set", "safe-mode", "true")
	env.fb.RespondOK("/execute", `{"status":"success","datasets":[{"type":"message","data":[{"message":"Dropped"}],"sql":"DROP TABLE t"}]}`)

	out, err := env.run("n\n", "exec", "DROP TABLE t")
	if err != nil {
		t.Fatalf("declined exec should not fail: %v", err)
	}
	assertContains(t, out, "Execution cancelled")
	if len(env.fb.Requests("/execute")) != 0 {
		t.Fatal("declined statement was sent")
	}

	out, err = env.run("y\n", "exec", "DROP TABLE t")
	if err != nil {
		t.Fatalf("approved exec failed: %v", err)
	}
	assertContains(t, out, "Dropped")

	env.mustRun("exec", "--yes", "DROP TABLE t")
	if n := len(env.fb.Requests("/execute")); n != 2 {
		t.Errorf("execute requests = %d, want 2", n)
	}
}

func TestExecCommand_Failure(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	env.fb.RespondOK("/execute", `{"status":"error","error_message":"no such table: nope"}`)

	_, err := env.run("", "exec", "SELECT * FROM nope")
	if err == nil || !strings.Contains(err.Error(), "no such table: nope") {
		t.Fatalf("error = %v", err)
	}
	assertContains(t, env.mustRun("history", "list"), "no such table")
}

func TestExecCommand_Unreachable(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	env.fb.Server.Close()

	_, err := env.run("", "exec", "SELECT 1")
	if err == nil || !strings.Contains(err.Error(), "Network Error") {
		t.Fatalf("error = %v, want a network error", err)
	}
}

func TestExecCommand_ErrorDataset(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	env.fb.Respond("/execute", http.StatusOK, `{"status":"success","datasets":[{"type":"error","data":[{"error":"syntax error"}],"sql":"SELEC 1"}]}`)

	out := env.mustRun("exec", "SELEC 1")
	assertContains(t, out, "syntax error")
}
