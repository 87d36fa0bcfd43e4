package setup

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatal(err)
	}
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestGeneratePreCommitHook(t *testing.T) {
	t.Run("without chain", func(t *testing.T) {
		got := GeneratePreCommitHook(false)
		if !strings.HasPrefix(got, "#!/bin/sh") {
			t.Error("expected shebang")
		}
		if !strings.Contains(got, "rustme check --quiet") {
			t.Error("expected rustme check command")
		}
		if strings.Contains(got, ".backup") {
			t.Error("should not contain backup chain")
		}
	})

	t.Run("with chain", func(t *testing.T) {
		got := GeneratePreCommitHook(true)
		if !strings.Contains(got, "rustme check --quiet") {
			t.Error("expected rustme check command")
		}
		if !strings.Contains(got, "pre-commit.backup") {
			t.Error("expected backup chain section")
		}
	})
}

func TestDescribeInstallAction(t *testing.T) {
	tests := []struct {
		name   string
		status HookStatus
		opts   InstallOptions
		want   string
	}{
		{"no existing hook", HookStatus{}, InstallOptions{}, "would install"},
		{"rustme hook", HookStatus{Exists: true, Installed: true}, InstallOptions{}, "would update"},
		{"existing with force", HookStatus{Exists: true}, InstallOptions{Force: true}, "would overwrite"},
		{"existing with chain", HookStatus{Exists: true}, InstallOptions{Chain: true}, "would backup and chain"},
		{"existing no flags", HookStatus{Exists: true}, InstallOptions{}, "would fail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DescribeInstallAction(tt.status, tt.opts)
			if !strings.Contains(got, tt.want) {
				t.Errorf("DescribeInstallAction(%+v, %+v) = %q, want to contain %q", tt.status, tt.opts, got, tt.want)
			}
		})
	}
}

func TestDescribeUninstallAction(t *testing.T) {
	tests := []struct {
		name   string
		status HookStatus
		want   string
	}{
		{"not installed", HookStatus{Exists: true}, "no rustme hook"},
		{"installed", HookStatus{Exists: true, Installed: true}, "would remove"},
		{"with backup", HookStatus{Exists: true, Installed: true, HasBackup: true}, "restore backup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DescribeUninstallAction(tt.status); !strings.Contains(got, tt.want) {
				t.Errorf("DescribeUninstallAction() = %q, want to contain %q", got, tt.want)
			}
		})
	}
}

func TestHookExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, PreCommit)
	if HookExists(path) {
		t.Error("HookExists() = true before the hook was written")
	}
	writeTestFile(t, path, "#!/bin/sh\n")
	if !HookExists(path) {
		t.Error("HookExists() = false after the hook was written")
	}
}

func TestCheckHookStatus(t *testing.T) {
	dir := t.TempDir()

	status := CheckHookStatus(dir)
	if status.Exists || status.Installed {
		t.Errorf("empty dir status = %+v", status)
	}

	writeTestFile(t, filepath.Join(dir, PreCommit), "#!/bin/sh\necho other\n")
	status = CheckHookStatus(dir)
	if !status.Exists || status.Installed {
		t.Errorf("foreign hook status = %+v", status)
	}

	writeTestFile(t, filepath.Join(dir, PreCommit), GeneratePreCommitHook(true))
	writeTestFile(t, filepath.Join(dir, PreCommit+".backup"), "#!/bin/sh\n")
	status = CheckHookStatus(dir)
	if !status.Installed || !status.Chained || !status.HasBackup {
		t.Errorf("chained hook status = %+v", status)
	}
}

func TestBackupExistingHook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, PreCommit)
	writeTestFile(t, path, "original")

	if err := BackupExistingHook(path); err != nil {
		t.Fatalf("BackupExistingHook() error = %v", err)
	}
	if HookExists(path) {
		t.Error("hook still present after backup")
	}
	if got := readTestFile(t, path+".backup"); got != "original" {
		t.Errorf("backup contents = %q", got)
	}
}

func TestInstallHook_Fresh(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hooks")

	result, err := InstallHook(dir, InstallOptions{})
	if err != nil {
		t.Fatalf("InstallHook() error = %v", err)
	}
	if result.Chained || result.Replaced {
		t.Errorf("result = %+v", result)
	}
	info, err := os.Stat(result.Path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Error("hook is not executable")
	}
}

func TestInstallHook_ExistingHook(t *testing.T) {
	t.Run("conflict", func(t *testing.T) {
		dir := t.TempDir()
		writeTestFile(t, filepath.Join(dir, PreCommit), "#!/bin/sh\necho mine\n")

		_, err := InstallHook(dir, InstallOptions{})
		if !errors.Is(err, ErrHookExists) {
			t.Fatalf("InstallHook() error = %v, want ErrHookExists", err)
		}
		if got := readTestFile(t, filepath.Join(dir, PreCommit)); !strings.Contains(got, "echo mine") {
			t.Error("existing hook was modified")
		}
	})

	t.Run("chain", func(t *testing.T) {
		dir := t.TempDir()
		writeTestFile(t, filepath.Join(dir, PreCommit), "#!/bin/sh\necho mine\n")

		result, err := InstallHook(dir, InstallOptions{Chain: true})
		if err != nil {
			t.Fatalf("InstallHook() error = %v", err)
		}
		if !result.Chained {
			t.Error("expected chained install")
		}
		if got := readTestFile(t, filepath.Join(dir, PreCommit+".backup")); !strings.Contains(got, "echo mine") {
			t.Errorf("backup = %q", got)
		}

		// Reinstalling keeps the chain without touching the backup.
		result, err = InstallHook(dir, InstallOptions{})
		if err != nil {
			t.Fatalf("reinstall error = %v", err)
		}
		if !result.Replaced || !result.Chained {
			t.Errorf("reinstall result = %+v", result)
		}
	})

	t.Run("force", func(t *testing.T) {
		dir := t.TempDir()
		writeTestFile(t, filepath.Join(dir, PreCommit), "#!/bin/sh\necho mine\n")

		if _, err := InstallHook(dir, InstallOptions{Force: true}); err != nil {
			t.Fatalf("InstallHook() error = %v", err)
		}
		if HookExists(filepath.Join(dir, PreCommit+".backup")) {
			t.Error("force should not create a backup")
		}
		if got := readTestFile(t, filepath.Join(dir, PreCommit)); strings.Contains(got, "echo mine") {
			t.Error("hook was not overwritten")
		}
	})
}

func TestUninstallHook(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, PreCommit), "#!/bin/sh\necho mine\n")
	if _, err := InstallHook(dir, InstallOptions{Chain: true}); err != nil {
		t.Fatal(err)
	}

	result, err := UninstallHook(dir)
	if err != nil {
		t.Fatalf("UninstallHook() error = %v", err)
	}
	if !result.Removed || !result.Restored {
		t.Errorf("result = %+v", result)
	}
	if got := readTestFile(t, filepath.Join(dir, PreCommit)); !strings.Contains(got, "echo mine") {
		t.Errorf("original hook not restored: %q", got)
	}

	result, err = UninstallHook(dir)
	if err != nil {
		t.Fatalf("second UninstallHook() error = %v", err)
	}
	if result.Removed {
		t.Error("foreign hook should be left alone")
	}
}

func TestScaffold(t *testing.T) {
	dir := t.TempDir()

	written, err := Scaffold(dir, false)
	if err != nil {
		t.Fatalf("Scaffold() error = %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("written = %v", written)
	}
	cfg := readTestFile(t, filepath.Join(dir, ".rustme.yaml"))
	if !strings.Contains(cfg, ".rustme/header.md") || !strings.Contains(cfg, filepath.Base(dir)) {
		t.Errorf("config = %q", cfg)
	}

	if _, err := Scaffold(dir, false); !errors.Is(err, ErrAlreadyConfigured) {
		t.Errorf("second Scaffold() error = %v, want ErrAlreadyConfigured", err)
	}
	if _, err := Scaffold(dir, true); err != nil {
		t.Errorf("forced Scaffold() error = %v", err)
	}
}
