package setup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PreCommit is the name of the hook rustme installs.
const PreCommit = "pre-commit"

const (
	hookMarker   = "rustme check"
	backupSuffix = ".backup"
)

// ErrHookExists is returned by InstallHook when a foreign hook is present
// and neither chaining nor overwriting was requested.
var ErrHookExists = errors.New("hook already exists; use --chain to preserve it or --force to overwrite it")

// HookStatus describes the pre-commit hook in a hooks directory.
type HookStatus struct {
	Path      string `json:"path"`
	Exists    bool   `json:"exists"`
	Installed bool   `json:"installed"`
	Chained   bool   `json:"chained"`
	HasBackup bool   `json:"has_backup"`
}

// HookExists checks if a hook file exists at the given path.
func HookExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CheckHookStatus inspects the pre-commit hook in hooksDir.
func CheckHookStatus(hooksDir string) HookStatus {
	path := filepath.Join(hooksDir, PreCommit)
	status := HookStatus{
		Path:      path,
		Exists:    HookExists(path),
		HasBackup: HookExists(path + backupSuffix),
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return status
	}
	if strings.Contains(string(content), hookMarker) {
		status.Installed = true
		status.Chained = strings.Contains(string(content), backupSuffix)
	}
	return status
}

// GeneratePreCommitHook returns the hook script. The hook fails the commit
// when `rustme check` reports stale documents. With withChain set it then
// runs the backed-up original hook.
func GeneratePreCommitHook(withChain bool) string {
	script := `#!/bin/sh
# rustme pre-commit hook
# Blocks the commit while generated documents are out of date.

if command -v rustme >/dev/null 2>&1; then
  rustme check --quiet
  status=$?
  if [ "$status" -eq 3 ]; then
    echo "rustme: generated documents are stale; run 'rustme generate' and stage the result" >&2
  fi
  if [ "$status" -ne 0 ]; then
    exit "$status"
  fi
fi
`

	if withChain {
		script += `
# Chain to the original hook
hook_dir=$(dirname "$0")
if [ -x "$hook_dir/pre-commit.backup" ]; then
  exec "$hook_dir/pre-commit.backup" "$@"
fi
`
	}

	return script
}

// InstallOptions controls InstallHook when a hook already exists.
type InstallOptions struct {
	// Chain moves the existing hook aside and runs it after rustme.
	Chain bool
	// Force overwrites the existing hook.
	Force bool
}

// InstallResult reports what InstallHook did.
type InstallResult struct {
	Path    string `json:"path"`
	Chained bool   `json:"chained"`
	// Replaced is set when a previous rustme hook was rewritten in place.
	Replaced bool `json:"replaced"`
}

// InstallHook writes the pre-commit hook into hooksDir.
func InstallHook(hooksDir string, opts InstallOptions) (InstallResult, error) {
	status := CheckHookStatus(hooksDir)
	result := InstallResult{Path: status.Path}

	chain := false
	switch {
	case !status.Exists:
	case status.Installed:
		result.Replaced = true
		chain = status.Chained
	case opts.Force:
	case opts.Chain:
		if err := BackupExistingHook(status.Path); err != nil {
			return result, err
		}
		chain = true
	default:
		return result, ErrHookExists
	}

	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return result, fmt.Errorf("creating hooks directory: %w", err)
	}
	// #nosec G306 -- hook needs execute permission
	if err := os.WriteFile(status.Path, []byte(GeneratePreCommitHook(chain)), 0o755); err != nil {
		return result, fmt.Errorf("writing hook: %w", err)
	}
	result.Chained = chain
	return result, nil
}

// UninstallResult reports what UninstallHook did.
type UninstallResult struct {
	Removed  bool `json:"removed"`
	Restored bool `json:"restored"`
}

// UninstallHook removes the rustme pre-commit hook from hooksDir and
// restores a backed-up original. A foreign hook is left alone.
func UninstallHook(hooksDir string) (UninstallResult, error) {
	status := CheckHookStatus(hooksDir)
	var result UninstallResult
	if !status.Installed {
		return result, nil
	}

	if err := os.Remove(status.Path); err != nil {
		return result, fmt.Errorf("removing hook: %w", err)
	}
	result.Removed = true

	if status.HasBackup {
		if err := os.Rename(status.Path+backupSuffix, status.Path); err != nil {
			return result, fmt.Errorf("restoring backup: %w", err)
		}
		result.Restored = true
	}
	return result, nil
}

// BackupExistingHook moves an existing hook to a .backup location.
func BackupExistingHook(hookPath string) error {
	if err := os.Rename(hookPath, hookPath+backupSuffix); err != nil {
		return fmt.Errorf("backing up existing hook: %w", err)
	}
	return nil
}

// DescribeInstallAction says what InstallHook would do given status.
func DescribeInstallAction(status HookStatus, opts InstallOptions) string {
	switch {
	case !status.Exists:
		return "would install"
	case status.Installed:
		return "would update the existing rustme hook"
	case opts.Force:
		return "would overwrite existing hook"
	case opts.Chain:
		return "would backup and chain existing hook"
	default:
		return "would fail (hook exists, use --chain or --force)"
	}
}

// DescribeUninstallAction says what UninstallHook would do given status.
func DescribeUninstallAction(status HookStatus) string {
	switch {
	case !status.Installed:
		return "no rustme hook installed"
	case status.HasBackup:
		return "would remove and restore backup"
	default:
		return "would remove"
	}
}
