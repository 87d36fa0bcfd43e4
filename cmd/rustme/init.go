package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/gorewood/rustme/internal/output"
	"github.com/gorewood/rustme/internal/setup"
)

// newInitCmd creates the init command.
func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Scaffold a rustme configuration",
		Long: `Create a starting .rustme.yaml and .rustme/header.md in a directory
(default: the current one). Existing files are left alone unless --force
is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, dirArg(args), force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}

// runInit executes the init command.
func runInit(cmd *cobra.Command, dir string, force bool) error {
	printer := newPrinter(cmd)

	written, err := setup.Scaffold(dir, force)
	if err != nil {
		if errors.Is(err, setup.ErrAlreadyConfigured) {
			return fail(printer, output.NewUserErrorWithCause(err.Error(), err))
		}
		return fail(printer, err)
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{"status": "ok", "written": written})
	}

	printer.Section("Initialized rustme")
	for _, path := range written {
		printer.Bullet(displayPath(path))
	}
	printer.Println()
	return printer.Success(map[string]any{"message": "Run 'rustme generate' to build README.md"})
}
