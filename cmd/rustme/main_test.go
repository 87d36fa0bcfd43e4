package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorewood/rustme/internal/config"
	"github.com/gorewood/rustme/internal/output"
)

// runInDir runs testFunc with dir as the working directory.
func runInDir(t *testing.T, dir string, testFunc func()) {
	t.Helper()
	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working dir: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir to %s: %v", dir, err)
	}
	defer func() {
		if err := os.Chdir(oldDir); err != nil {
			t.Errorf("failed to restore dir: %v", err)
		}
	}()
	testFunc()
}

// execute runs the root command in dir and returns stdout and stderr.
func execute(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	var err error
	runInDir(t, dir, func() {
		cmd := newRootCmd()
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)
		cmd.SetArgs(args)
		err = cmd.Execute()
	})
	return stdout.String(), stderr.String(), err
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// makeProject writes a small project with one configuration.
func makeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "header.md"), "# $name$\n\nDocs live at $docs$.\n")
	writeTestFile(t, filepath.Join(dir, "src", "lib.rs"),
		"fn demo() {\n    // begin rustme snippet: demo\n    demo();\n    // end rustme snippet\n}\n")
	writeTestFile(t, filepath.Join(dir, ".rustme.yaml"), `
files:
  README.md: [header.md]
glossaries:
  - name: demo
    docs:
      release: https://docs.rs/demo
      default: ./target/doc/demo
`)
	return dir
}

func TestRootCommand_Version(t *testing.T) {
	version = "1.2.3"

	stdout, _, err := execute(t, t.TempDir(), "--version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(stdout, "1.2.3") {
		t.Errorf("--version output should contain version: %q", stdout)
	}
	if !strings.Contains(stdout, "rustme") {
		t.Errorf("--version output should contain 'rustme': %q", stdout)
	}
}

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := execute(t, t.TempDir(), "--help")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	for _, expected := range []string{"rustme", "Usage:", "--json", "--color", "generate", "check"} {
		if !strings.Contains(stdout, expected) {
			t.Errorf("--help output should contain %q: %q", expected, stdout)
		}
	}
}

func TestRootCommand_JSONFlag_NoSubcommand(t *testing.T) {
	stdout, _, err := execute(t, t.TempDir(), "--json")
	if err == nil {
		t.Fatal("Expected error when running with --json but no subcommand")
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if _, ok := result["error"]; !ok {
		t.Errorf("JSON output should contain 'error': %v", result)
	}
}

func TestRootCommand_InvalidColor(t *testing.T) {
	dir := makeProject(t)
	_, stderr, err := execute(t, dir, "check", "--color", "sometimes")
	if output.GetExitCode(err) != output.ExitUserError {
		t.Errorf("exit code = %d, want %d", output.GetExitCode(err), output.ExitUserError)
	}
	if !strings.Contains(stderr, "sometimes") {
		t.Errorf("stderr should name the bad value: %q", stderr)
	}
}

func TestBuildVersion(t *testing.T) {
	oldVersion, oldCommit, oldDate := version, commit, date
	defer func() { version, commit, date = oldVersion, oldCommit, oldDate }()

	version, commit, date = "1.0.0", "none", "unknown"
	if got := buildVersion(); got != "1.0.0" {
		t.Errorf("buildVersion() = %q", got)
	}

	commit, date = "abcdef1234567", "2024-01-01"
	if got := buildVersion(); got != "1.0.0 (abcdef1, 2024-01-01)" {
		t.Errorf("buildVersion() = %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	t.Setenv(envUserAgent, "")
	if got := userAgent(); !strings.HasPrefix(got, "rustme/") {
		t.Errorf("userAgent() = %q", got)
	}
	t.Setenv(envUserAgent, "custom/1.0")
	if got := userAgent(); got != "custom/1.0" {
		t.Errorf("userAgent() = %q", got)
	}
}

func TestRootCommand_MalformedEnvFileIsLoggedAndSkipped(t *testing.T) {
	dir := makeProject(t)
	writeTestFile(t, filepath.Join(dir, ".env.local"), "RUSTME_USER_AGENT=\"unterminated\n")
	userEnv := filepath.Join(t.TempDir(), "env")
	writeTestFile(t, userEnv, "RUSTME_TEST_USER_ENV=loaded\n")
	t.Setenv(config.EnvFileVar, userEnv)
	t.Setenv("RUSTME_TEST_USER_ENV", "")
	_ = os.Unsetenv("RUSTME_TEST_USER_ENV")

	_, stderr, err := execute(t, dir, "generate")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.Contains(stderr, "ignoring unreadable env file") {
		t.Errorf("stderr missing env file warning:\n%s", stderr)
	}
	if !strings.Contains(stderr, ".env.local") {
		t.Errorf("warning does not name the file:\n%s", stderr)
	}
	if got := os.Getenv("RUSTME_TEST_USER_ENV"); got != "loaded" {
		t.Errorf("RUSTME_TEST_USER_ENV = %q, want files after the bad one to load", got)
	}
}
