package cmd

import (
	"regexp"
	"strings"
	"testing"
)

var savedIDRe = regexp.MustCompile(`Saved "[^"]+" \(([0-9a-f]{8})\)`)

func TestHistoryCommands(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	assertContains(t, env.mustRun("history", "list"), "No queries yet")

	env.fb.RespondOK("/execute", `{"status":"success","datasets":[{"type":"table","data":[]}]}`)
	for _, sql := range []string{"SELECT 1", "SELECT 2", "SELECT 3"} {
		env.mustRun("exec", sql)
	}
	out := env.mustRun("history", "list")
	assertContains(t, out, "3 quer(ies)", "SELECT 1", "SELECT 3")
	out = env.mustRun("history", "list", "--limit", "1")
	assertContains(t, out, "SELECT 3", "2 older")
	if strings.Contains(out, "SELECT 1") {
		t.Error("--limit should show the newest entries only")
	}

	assertContains(t, env.mustRun("history", "trim", "2"), "Deleted 2")
	out = env.mustRun("history", "list")
	assertContains(t, out, "1 quer(ies)", "SELECT 3")

	if _, err := env.run("", "history", "trim", "0"); err == nil {
		t.Error("trim 0 should fail")
	}
	if _, err := env.run("", "history", "trim", "x"); err == nil {
		t.Error("non-numeric trim should fail")
	}

	assertContains(t, mustRunStdin(t, env, "n\n", "history", "clear"), "Nothing deleted")
	assertContains(t, env.mustRun("history", "clear", "--yes"), "History cleared")
	assertContains(t, env.mustRun("history", "list"), "No queries yet")
}

func mustRunStdin(t *testing.T, env *cliEnv, stdin string, args ...string) string {
	t.Helper()
	out, err := env.run(stdin, args...)
	if err != nil {
		t.Fatalf("%v failed: %v", args, err)
	}
	return out
}

func TestSavedCommands(t *testing.T) {
	env := newCLIEnv(t)
	env.login()

	assertContains(t, env.mustRun("saved", "list"), "No saved queries")
	assertContains(t, env.mustRun("saved", "add", "top students", "SELECT * FROM students ORDER BY marks DESC"), `Saved "top students"`)
	env.mustRun("saved", "add", "orders", "SELECT * FROM orders")

	out := env.mustRun("saved", "list")
	assertContains(t, out, "2 saved quer(ies)", "top students", "orders")

	out = env.mustRun("saved", "list", "--search", "MARKS")
	assertContains(t, out, "1 saved quer(ies)", "top students")

	env.fb.RespondOK("/execute", selectReply)
	out = env.mustRun("saved", "run", "top students")
	assertContains(t, out, "Alice")
	if sql := env.fb.LastRequest(t, "/execute").Body["sql"]; sql != "SELECT * FROM students ORDER BY marks DESC" {
		t.Errorf("ran %v", sql)
	}

	if _, err := env.run("", "saved", "add", "empty", "   "); err == nil {
		t.Error("saving blank SQL should fail")
	}
	if _, err := env.run("", "saved", "run", "nope"); err == nil {
		t.Error("running an unknown query should fail")
	}
}

func TestSavedCommands_FromEditorAndDelete(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	env.fb.RespondOK("/execute", selectReply)
	env.mustRun("exec", "SELECT name FROM students")

	out := env.mustRun("saved", "add", "names")
	id := savedIDRe.FindStringSubmatch(out)
	if id == nil {
		t.Fatalf("no id in %q", out)
	}
	assertContains(t, env.mustRun("saved", "list"), "SELECT name FROM students")

	assertContains(t, env.mustRun("saved", "delete", id[1]), "Saved query deleted")
	assertContains(t, env.mustRun("saved", "list"), "No saved queries")
}
