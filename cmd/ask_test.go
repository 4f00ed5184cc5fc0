package cmd

import (
	"errors"
	"net/http"
	"testing"
)

const (
	studentsReply = `{"status":"success","thought":"Top students:","sql":"SELECT name, marks FROM students","datasets":[{"type":"bar","data":[{"name":"Alice","marks":91},{"name":"Bob","marks":78}],"sql":"SELECT name, marks FROM students"}]}`
	deleteReply   = `{"status":"success","thought":"This removes failing students.","sql":"DELETE FROM students WHERE marks < 50","requires_confirmation":true}`
	deletedReply  = `{"status":"success","datasets":[{"type":"message","data":[{"message":"Deleted","rows_affected":3}],"sql":"DELETE FROM students WHERE marks < 50"}]}`
)

func TestAskCommand(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	env.fb.RespondOK("/ask", studentsReply)

	out := env.mustRun("ask", "top", "students")
	assertContains(t, out, "Top students:", "Alice", "91", "bar chart (x: name, y: marks)", "2 row(s)")

	body := env.fb.LastRequest(t, "/ask").Body
	if body["prompt"] != "top students" {
		t.Errorf("prompt = %v", body["prompt"])
	}
	if body["user_email"] != "ada@example.com" {
		t.Errorf("user_email = %v", body["user_email"])
	}

	assertContains(t, env.mustRun("history", "list"), "SELECT name, marks FROM students")
}

func TestAskCommand_SendsHistory(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	env.fb.RespondOK("/ask", studentsReply)

	env.mustRun("ask", "top students")
	env.mustRun("ask", "only the first")

	history, ok := env.fb.LastRequest(t, "/ask").Body["history"].([]interface{})
	if !ok || len(history) != 2 {
		t.Fatalf("history = %v, want the previous exchange", env.fb.LastRequest(t, "/ask").Body["history"])
	}
}

func TestAskCommand_NewSession(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	env.fb.RespondOK("/ask", studentsReply)

	env.mustRun("ask", "top students")
	env.mustRun("ask", "--new", "average marks")

	assertContains(t, env.mustRun("chat", "list"), "2 session(s)", "top students", "average marks")
	if _, ok := env.fb.LastRequest(t, "/ask").Body["history"].([]interface{}); !ok {
		t.Fatal("history should be sent as a list")
	}
	if n := len(env.fb.LastRequest(t, "/ask").Body["history"].([]interface{})); n != 0 {
		t.Errorf("new session sent %d history turn(s), want 0", n)
	}
}

func TestAskCommand_BackendError(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	env.fb.Respond("/ask", http.StatusInternalServerError, `{"detail":"LLM quota exceeded"}`)

	out, err := env.run("", "ask", "top students")
	if !errors.Is(err, errReplyFailed) {
		t.Fatalf("error = %v, want errReplyFailed", err)
	}
	assertContains(t, out, "Error: LLM quota exceeded")
}

func TestAskCommand_ConfirmLater(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	env.fb.RespondOK("/ask", deleteReply)

	out := env.mustRun("ask", "delete failing students")
	assertContains(t, out, "DELETE FROM students WHERE marks < 50", "Awaiting confirmation")
	if len(env.fb.Requests("/execute")) != 0 {
		t.Fatal("nothing should run before confirmation")
	}

	env.fb.RespondOK("/execute", deletedReply)
	out = env.mustRun("confirm")
	assertContains(t, out, "Execution confirmed", "Deleted (3 rows affected)")
	if sql := env.fb.LastRequest(t, "/execute").Body["sql"]; sql != "DELETE FROM students WHERE marks < 50" {
		t.Errorf("executed %v", sql)
	}

	assertContains(t, env.mustRun("confirm"), "Nothing is waiting for confirmation")
	assertContains(t, env.mustRun("chat", "show"), "(execution confirmed)")
}

func TestAskCommand_Yes(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	env.fb.RespondOK("/ask", deleteReply)
	env.fb.RespondOK("/execute", deletedReply)

	out := env.mustRun("ask", "--yes", "delete failing students")
	assertContains(t, out, "Execution confirmed")
	if len(env.fb.Requests("/execute")) != 1 {
		t.Error("--yes should execute right away")
	}
}

func TestConfirmCommand_Cancel(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	env.fb.RespondOK("/ask", deleteReply)
	env.mustRun("ask", "delete failing students")

	out := env.mustRun("confirm", "--cancel")
	assertContains(t, out, "Execution cancelled")
	if len(env.fb.Requests("/execute")) != 0 {
		t.Error("cancel must not execute")
	}
	assertContains(t, env.mustRun("chat", "show"), "(execution cancelled)")
}

func TestConfirmCommand_BadIndex(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	env.fb.RespondOK("/ask", studentsReply)
	env.mustRun("ask", "top students")

	if _, err := env.run("", "confirm", "abc"); err == nil {
		t.Error("non-numeric index should fail")
	}
	if _, err := env.run("", "confirm", "1"); err == nil {
		t.Error("message without pending SQL should fail")
	}
}
