package envfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeEnv(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoad_NonexistentFile(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("expected nil for nonexistent file, got %v", err)
	}
}

func TestLoad_SetsUnsetVars(t *testing.T) {
	path := writeEnv(t, t.TempDir(), ".env.local",
		"# rustme settings\nRUSTME_TEST_AGENT=\"rustme-ci/1.0\"\nexport RUSTME_TEST_TIMEOUT=30s\n")
	unset(t, "RUSTME_TEST_AGENT", "RUSTME_TEST_TIMEOUT")

	if err := Load(path); err != nil {
		t.Fatal(err)
	}

	if got := os.Getenv("RUSTME_TEST_AGENT"); got != "rustme-ci/1.0" {
		t.Errorf("RUSTME_TEST_AGENT = %q, want %q", got, "rustme-ci/1.0")
	}
	if got := os.Getenv("RUSTME_TEST_TIMEOUT"); got != "30s" {
		t.Errorf("RUSTME_TEST_TIMEOUT = %q, want %q", got, "30s")
	}
}

func TestLoad_DoesNotOverrideExisting(t *testing.T) {
	path := writeEnv(t, t.TempDir(), ".env", "RUSTME_TEST_AGENT=from_file\n")
	t.Setenv("RUSTME_TEST_AGENT", "from_env")

	if err := Load(path); err != nil {
		t.Fatal(err)
	}

	if got := os.Getenv("RUSTME_TEST_AGENT"); got != "from_env" {
		t.Errorf("RUSTME_TEST_AGENT = %q, want %q (env should take precedence)", got, "from_env")
	}
}

func TestLoadAll_EarlierFilesWin(t *testing.T) {
	dir := t.TempDir()
	local := writeEnv(t, dir, ".env.local", "RUSTME_TEST_AGENT=local\n")
	shared := writeEnv(t, dir, ".env", "RUSTME_TEST_AGENT=shared\nRUSTME_TEST_TIMEOUT=5s\n")
	unset(t, "RUSTME_TEST_AGENT", "RUSTME_TEST_TIMEOUT")

	if err := LoadAll(local, shared, filepath.Join(dir, "missing")); err != nil {
		t.Fatal(err)
	}

	if got := os.Getenv("RUSTME_TEST_AGENT"); got != "local" {
		t.Errorf("RUSTME_TEST_AGENT = %q, want %q", got, "local")
	}
	if got := os.Getenv("RUSTME_TEST_TIMEOUT"); got != "5s" {
		t.Errorf("RUSTME_TEST_TIMEOUT = %q, want %q", got, "5s")
	}
}

func TestLoadAll_ContinuesPastMalformedFile(t *testing.T) {
	dir := t.TempDir()
	broken := writeEnv(t, dir, ".env.local", "RUSTME_TEST_AGENT=\"unterminated\n")
	good := writeEnv(t, dir, ".env", "RUSTME_TEST_TIMEOUT=5s\n")
	unset(t, "RUSTME_TEST_AGENT", "RUSTME_TEST_TIMEOUT")

	err := LoadAll(broken, good)
	if err == nil {
		t.Fatal("expected an error for the malformed file")
	}
	if !strings.Contains(err.Error(), broken) {
		t.Errorf("error %q does not name %s", err, broken)
	}
	if got := os.Getenv("RUSTME_TEST_TIMEOUT"); got != "5s" {
		t.Errorf("RUSTME_TEST_TIMEOUT = %q, want %q", got, "5s")
	}
}
