package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/gorewood/rustme/internal/git"
	"github.com/gorewood/rustme/internal/output"
	"github.com/gorewood/rustme/internal/setup"
)

// newHooksCmd creates the hooks parent command with subcommands.
func newHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Manage the rustme git pre-commit hook",
		Long: `Manage the git pre-commit hook that runs 'rustme check'.

While the hook is installed, a commit fails if any generated document is
out of date.

Subcommands:
  install    Install the pre-commit hook
  uninstall  Remove the hook, restoring any backup
  list       Show hook status

Examples:
  rustme hooks list              # Show hook status
  rustme hooks install           # Install pre-commit hook
  rustme hooks install --chain   # Install and keep running the existing hook
  rustme hooks uninstall         # Remove hook, restore backup`,
	}

	cmd.AddCommand(newHooksListCmd())
	cmd.AddCommand(newHooksInstallCmd())
	cmd.AddCommand(newHooksUninstallCmd())
	return cmd
}

// hooksDir resolves the hooks directory of the repository containing the
// working directory.
func hooksDir(cmd *cobra.Command) (string, error) {
	if !git.IsRepo(cmd.Context(), "") {
		return "", output.NewUserError("not in a git repository")
	}
	return git.HooksDir(cmd.Context(), "")
}

// newHooksListCmd creates the hooks list subcommand.
func newHooksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show status of the pre-commit hook",
		Args:  cobra.NoArgs,
		RunE:  runHooksList,
	}
}

// runHooksList executes the hooks list command.
func runHooksList(cmd *cobra.Command, _ []string) error {
	printer := newPrinter(cmd)

	dir, err := hooksDir(cmd)
	if err != nil {
		return fail(printer, err)
	}
	status := setup.CheckHookStatus(dir)

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{"pre_commit": status})
	}

	printer.Section("Git Hooks")
	statusStr := "not installed"
	switch {
	case status.Installed && status.Chained:
		statusStr = "installed (chained)"
	case status.Installed:
		statusStr = "installed"
	case status.Exists:
		statusStr = "not installed (another hook is present)"
	}
	printer.KeyValue(setup.PreCommit, statusStr)
	return nil
}

// newHooksInstallCmd creates the hooks install subcommand.
func newHooksInstallCmd() *cobra.Command {
	var opts setup.InstallOptions
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the pre-commit hook",
		Long: `Install the rustme pre-commit hook into the repository's hooks directory.

Use --chain to keep an existing hook (it runs after rustme check).
Use --force to overwrite an existing hook without backup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHooksInstall(cmd, opts, dryRun)
		},
	}

	cmd.Flags().BoolVar(&opts.Chain, "chain", false, "Preserve the existing hook and run it after rustme")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite the existing hook without backup")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without doing it")
	cmd.MarkFlagsMutuallyExclusive("chain", "force")

	return cmd
}

// runHooksInstall executes the hooks install command.
func runHooksInstall(cmd *cobra.Command, opts setup.InstallOptions, dryRun bool) error {
	printer := newPrinter(cmd)

	dir, err := hooksDir(cmd)
	if err != nil {
		return fail(printer, err)
	}

	if dryRun {
		status := setup.CheckHookStatus(dir)
		if printer.IsJSON() {
			return printer.Success(map[string]any{
				"status": "dry_run",
				"hook":   setup.PreCommit,
				"path":   status.Path,
				"action": setup.DescribeInstallAction(status, opts),
			})
		}
		printer.Section("Dry Run")
		printer.KeyValue("Hook", setup.PreCommit)
		printer.KeyValue("Path", status.Path)
		printer.KeyValue("Action", setup.DescribeInstallAction(status, opts))
		return nil
	}

	result, err := setup.InstallHook(dir, opts)
	if err != nil {
		if errors.Is(err, setup.ErrHookExists) {
			return fail(printer, output.NewUserErrorWithCause(err.Error(), err))
		}
		return fail(printer, output.NewSystemErrorWithCause(err.Error(), err))
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status":   "ok",
			"hook":     setup.PreCommit,
			"chained":  result.Chained,
			"replaced": result.Replaced,
		})
	}

	msg := "Installed pre-commit hook"
	switch {
	case result.Replaced:
		msg = "Updated pre-commit hook"
	case result.Chained:
		msg += " (existing hook backed up and chained)"
	}
	return printer.Success(map[string]any{"message": msg})
}

// newHooksUninstallCmd creates the hooks uninstall subcommand.
func newHooksUninstallCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the pre-commit hook",
		Long:  `Remove the rustme pre-commit hook and restore any backed-up hook.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHooksUninstall(cmd, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without doing it")

	return cmd
}

// runHooksUninstall executes the hooks uninstall command.
func runHooksUninstall(cmd *cobra.Command, dryRun bool) error {
	printer := newPrinter(cmd)

	dir, err := hooksDir(cmd)
	if err != nil {
		return fail(printer, err)
	}

	if dryRun {
		status := setup.CheckHookStatus(dir)
		if printer.IsJSON() {
			return printer.Success(map[string]any{
				"status":        "dry_run",
				"hook":          setup.PreCommit,
				"installed":     status.Installed,
				"would_restore": status.Installed && status.HasBackup,
			})
		}
		printer.Section("Dry Run")
		printer.KeyValue("Hook", setup.PreCommit)
		printer.KeyValue("Path", status.Path)
		printer.KeyValue("Action", setup.DescribeUninstallAction(status))
		return nil
	}

	result, err := setup.UninstallHook(dir)
	if err != nil {
		return fail(printer, output.NewSystemErrorWithCause(err.Error(), err))
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status":   "ok",
			"hook":     setup.PreCommit,
			"removed":  result.Removed,
			"restored": result.Restored,
		})
	}

	msg := "No rustme hook installed"
	if result.Removed {
		msg = "Removed pre-commit hook"
		if result.Restored {
			msg += " and restored original"
		}
	}
	return printer.Success(map[string]any{"message": msg})
}
