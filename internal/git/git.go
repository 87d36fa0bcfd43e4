package git

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gorewood/rustme/internal/output"
)

// RunContext executes git in dir (the current directory when empty) and
// returns its trimmed stdout. Failures are *output.ExitError system errors.
func RunContext(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", output.NewSystemError("git not found: ensure git is installed and in PATH")
		}

		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = err.Error()
		}
		return "", output.NewSystemErrorWithCause("git command failed: "+errMsg, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// IsRepo reports whether dir is inside a git work tree.
func IsRepo(ctx context.Context, dir string) bool {
	out, err := RunContext(ctx, dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// RepoRoot returns the top-level directory of the work tree containing dir.
func RepoRoot(ctx context.Context, dir string) (string, error) {
	root, err := RunContext(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", output.NewUserErrorWithCause("not in a git repository", err)
	}
	return root, nil
}

// HooksDir returns the absolute hooks directory for the repository
// containing dir, honoring core.hooksPath and linked worktrees.
func HooksDir(ctx context.Context, dir string) (string, error) {
	hooks, err := RunContext(ctx, dir, "rev-parse", "--git-path", "hooks")
	if err != nil {
		return "", output.NewUserErrorWithCause("not in a git repository", err)
	}
	if filepath.IsAbs(hooks) {
		return hooks, nil
	}
	base := dir
	if base == "" {
		base = "."
	}
	return filepath.Abs(filepath.Join(base, hooks))
}

// Add stages paths in the repository containing dir.
func Add(ctx context.Context, dir string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, paths...)
	_, err := RunContext(ctx, dir, args...)
	return err
}
