package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/iksnae/datalk/testutil"
)

const loginReply = `{"status":"success","token":"tok-1","user":{"id":"u-1","name":"Ada","email":"ada@example.com"}}`

// cliEnv runs commands against a fake backend with a private home directory
type cliEnv struct {
	t    *testing.T
	fb   *testutil.FakeBackend
	home string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	return &cliEnv{t: t, fb: testutil.NewFakeBackend(t), home: testutil.CreateTempDir(t)}
}

// run executes args with stdin and returns what was written to stdout
func (e *cliEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	return e.runContext(context.Background(), stdin, args...)
}

func (e *cliEnv) runContext(ctx context.Context, stdin string, args ...string) (string, error) {
	e.t.Helper()
	resetFlags(rootCmd)
	rootCmd.SetArgs(append([]string{"--home", e.home, "--api-url", e.fb.URL()}, args...))
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	err := rootCmd.ExecuteContext(ctx)
	closeWorkbench()
	return stdout.String(), err
}

// mustRun fails the test when the command errors
func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run("", args...)
	if err != nil {
		e.t.Fatalf("%v failed: %v\noutput:\n%s", args, err, out)
	}
	return out
}

func (e *cliEnv) login() {
	e.t.Helper()
	e.fb.RespondOK("/auth/login", loginReply)
	e.mustRun("login", "--email", "ada@example.com", "--password", "secret")
}

// resetFlags puts every flag back to its default; cobra keeps values between runs
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func assertContains(t *testing.T, output string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(output, w) {
			t.Errorf("output missing %q:\n%s", w, output)
		}
	}
}
