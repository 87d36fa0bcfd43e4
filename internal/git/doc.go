// Package git runs the git executable on behalf of rustme.
//
// rustme only needs a handful of operations: locating the repository and its
// hooks directory for "rustme hooks", and staging regenerated documents for
// "rustme generate --stage".
//
//	root, err := git.RepoRoot(ctx, dir)
//	hooks, err := git.HooksDir(ctx, dir)
//	err := git.Add(ctx, root, "README.md")
//
// Errors are returned as *output.ExitError: a missing git binary or failed
// command is a system error, running outside a repository is a user error.
package git
