// Package main provides the entry point for the rustme CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gorewood/rustme/internal/config"
	"github.com/gorewood/rustme/internal/envfile"
	"github.com/gorewood/rustme/internal/logfields"
	"github.com/gorewood/rustme/internal/output"
)

// Build info set via ldflags at build time by goreleaser.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// isJSONMode reads the --json persistent flag from the command hierarchy.
func isJSONMode(cmd *cobra.Command) bool {
	return boolFlag(cmd, "json")
}

func boolFlag(cmd *cobra.Command, name string) bool {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup(name)
	}
	return flag != nil && flag.Value.String() == "true"
}

// useColor resolves --color against the output writer. Invalid modes were
// already rejected in PersistentPreRunE.
func useColor(cmd *cobra.Command) bool {
	mode := ""
	if flag := cmd.Root().PersistentFlags().Lookup("color"); flag != nil {
		mode = flag.Value.String()
	}
	color, err := output.ResolveColorMode(mode, output.IsTTY(cmd.OutOrStdout()))
	return err == nil && color
}

// newPrinter returns the printer for cmd, honoring --json and --color.
func newPrinter(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).WithStderr(cmd.ErrOrStderr())
}

// fail classifies err, prints it and returns it for the exit code.
func fail(printer *output.Printer, err error) error {
	classified := output.Classify(err)
	printer.Error(classified)
	return classified
}

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	code := run()
	os.Exit(code)
}

func run() int {
	cmd := newRootCmd()
	err := fang.Execute(context.Background(), cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}

// newRootCmd creates the root command for the rustme CLI.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rustme",
		Short: "Generate README files from sections, snippets and glossaries",
		Long: `rustme - Generate README files and crate docs from reusable sections.

A .rustme.yaml configuration lists output documents and the sections they
are built from. Sections can reference:
  - glossary terms as $name$, with release and for_docs variants
  - snippets tagged in source files as $src/lib.rs:example$
  - sections fetched over HTTP

All commands support --json for structured output.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isJSONMode(cmd) {
				printer := output.NewPrinter(cmd.OutOrStdout(), true, false)
				err := output.NewUserError("no command specified. Run 'rustme --help' for usage")
				printer.Error(err)
				return err
			}
			return cmd.Help()
		},
	}

	// Env files are loaded before the logger is built so RUSTME_* values in
	// them apply to this run. Variables already set always win.
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		envErr := loadEnvFiles()
		color, _ := cmd.Root().PersistentFlags().GetString("color")
		if _, err := output.ResolveColorMode(color, false); err != nil {
			output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), false).WithStderr(cmd.ErrOrStderr()).Error(err)
			return err
		}
		setupLogging(cmd)
		if envErr != nil {
			slog.Warn("ignoring unreadable env file", logfields.Error(envErr))
		}
		return nil
	}

	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug details")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Only log warnings and errors; hide up-to-date files")
	cmd.PersistentFlags().String("color", output.ColorAuto, "Colorize output: auto, always or never")

	lipgloss.SetHasDarkBackground(true)

	addCommandGroups(cmd)
	addCommands(cmd)

	return cmd
}

// loadEnvFiles loads env files in priority order. First match for each
// variable wins; environment variables already set always take precedence.
//
// Resolution order:
//  1. $CWD/.env.local   (per-repo override, gitignored)
//  2. $CWD/.env         (per-repo)
//  3. $RUSTME_ENV_FILE, or env in the user config dir (global fallback)
//
// Files that fail to parse are skipped and reported in the returned error.
func loadEnvFiles() error {
	paths := []string{".env.local", ".env"}
	if path := config.EnvFile(); path != "" {
		paths = append(paths, path)
	}
	return envfile.LoadAll(paths...)
}

// addCommandGroups defines the command groups for help output.
func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "query", Title: "Query Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "agent", Title: "Agent Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "admin", Title: "Admin Commands:"})
}

// addCommands adds all subcommands with their group assignments.
func addCommands(cmd *cobra.Command) {
	addGroupedCommand(cmd, newGenerateCmd(), "core")
	addGroupedCommand(cmd, newCheckCmd(), "core")
	addGroupedCommand(cmd, newWatchCmd(), "core")

	addGroupedCommand(cmd, newSnippetCmd(), "query")
	addGroupedCommand(cmd, newGlossaryCmd(), "query")

	addGroupedCommand(cmd, newServeCmd(), "agent")

	addGroupedCommand(cmd, newInitCmd(), "admin")
	addGroupedCommand(cmd, newHooksCmd(), "admin")
}

// addGroupedCommand adds a subcommand with a group assignment.
func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}
