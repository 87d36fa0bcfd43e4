package config

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestDir_Default(t *testing.T) {
	t.Setenv("RUSTME_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "")

	dir := Dir()
	if dir == "" {
		t.Fatal("Dir() returned empty string")
	}

	if runtime.GOOS != "windows" && filepath.Base(dir) != "rustme" {
		t.Errorf("Dir() = %q, want path ending in 'rustme'", dir)
	}
}

func TestDir_ExplicitOverride(t *testing.T) {
	t.Setenv("RUSTME_CONFIG_HOME", "/custom/path")
	if got := Dir(); got != "/custom/path" {
		t.Errorf("Dir() = %q, want %q", got, "/custom/path")
	}
}

func TestDir_XDGOverride(t *testing.T) {
	t.Setenv("RUSTME_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	want := filepath.Join("/xdg/config", "rustme")
	if got := Dir(); got != want {
		t.Errorf("Dir() = %q, want %q", got, want)
	}
}

func TestEnvFile_InConfigDir(t *testing.T) {
	t.Setenv(EnvFileVar, "")
	t.Setenv("RUSTME_CONFIG_HOME", "/custom/path")

	want := filepath.Join("/custom/path", "env")
	if got := EnvFile(); got != want {
		t.Errorf("EnvFile() = %q, want %q", got, want)
	}
}

func TestEnvFile_ExplicitOverride(t *testing.T) {
	t.Setenv("RUSTME_CONFIG_HOME", "/custom/path")
	t.Setenv(EnvFileVar, "/etc/rustme.env")

	if got := EnvFile(); got != "/etc/rustme.env" {
		t.Errorf("EnvFile() = %q, want %q", got, "/etc/rustme.env")
	}
}
