package cmd

import (
	"net/http"
	"strings"
	"testing"
)

func TestLoginCommand_Flags(t *testing.T) {
	env := newCLIEnv(t)
	env.fb.RespondOK("/auth/login", loginReply)

	out, err := env.run("", "login", "--email", "ada@example.com", "--password", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	assertContains(t, out, "Logged in as Ada (ada@example.com)")

	body := env.fb.LastRequest(t, "/auth/login").Body
	if body["email"] != "ada@example.com" || body["password"] != "secret" {
		t.Errorf("login body = %v", body)
	}

	out = env.mustRun("whoami")
	assertContains(t, out, "Ada", "ada@example.com", "personal sandbox")
}

func TestLoginCommand_Prompt(t *testing.T) {
	env := newCLIEnv(t)
	env.fb.RespondOK("/auth/login", loginReply)

	if _, err := env.run("ada@example.com\nsecret\n", "login"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	body := env.fb.LastRequest(t, "/auth/login").Body
	if body["email"] != "ada@example.com" || body["password"] != "secret" {
		t.Errorf("login body = %v", body)
	}
}

func TestLoginCommand_Rejected(t *testing.T) {
	env := newCLIEnv(t)
	env.fb.Respond("/auth/login", http.StatusUnauthorized, `{"detail":"Invalid credentials"}`)

	_, err := env.run("", "login", "--email", "ada@example.com", "--password", "nope")
	if err == nil || !strings.Contains(err.Error(), "Invalid credentials") {
		t.Fatalf("error = %v, want Invalid credentials", err)
	}
	out := env.mustRun("whoami")
	assertContains(t, out, "Not logged in")
}

func TestLoginCommand_MissingCredentials(t *testing.T) {
	env := newCLIEnv(t)
	if _, err := env.run("", "login"); err == nil {
		t.Error("login without input should fail")
	}
	if len(env.fb.Requests("/auth/login")) != 0 {
		t.Error("no request should be sent without credentials")
	}
}

func TestRegisterCommand(t *testing.T) {
	env := newCLIEnv(t)
	env.fb.RespondOK("/auth/register", `{"status":"success","message":"User registered successfully"}`)

	out, err := env.run("Ada\n", "register", "--email", "ada@example.com", "--password", "secret")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	assertContains(t, out, "User registered successfully", "datalk login")

	body := env.fb.LastRequest(t, "/auth/register").Body
	if body["name"] != "Ada" || body["email"] != "ada@example.com" {
		t.Errorf("register body = %v", body)
	}
}

func TestLogoutCommand(t *testing.T) {
	env := newCLIEnv(t)
	env.login()

	out := env.mustRun("logout")
	assertContains(t, out, "Logged out")
	assertContains(t, env.mustRun("whoami"), "Not logged in")
}
