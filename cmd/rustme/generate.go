package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gorewood/rustme/internal/generate"
	"github.com/gorewood/rustme/internal/git"
	"github.com/gorewood/rustme/internal/output"
)

// newGenerateCmd creates the generate command.
func newGenerateCmd() *cobra.Command {
	var release bool
	var stage bool

	cmd := &cobra.Command{
		Use:   "generate [dir]",
		Short: "Regenerate every configured document",
		Long: `Regenerate every document configured below a directory.

rustme walks the directory (default: the current one) and processes each
.rustme.yaml, .rustme.yml and .rustme/config.yaml it finds, in walk order.
Remote sections and glossaries are fetched once per run.

Examples:
  rustme generate                 # Regenerate from the current directory
  rustme generate --release       # Use release links for conditional terms
  rustme generate --stage         # Also git add documents that changed`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, dirArg(args), release, stage)
		},
	}

	cmd.Flags().BoolVar(&release, "release", false, "Render the release facet of conditional terms")
	cmd.Flags().BoolVar(&stage, "stage", false, "Stage changed documents with git add")

	return cmd
}

// newCheckCmd creates the check command.
func newCheckCmd() *cobra.Command {
	var release bool

	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Report documents that are out of date",
		Long: `Render every configured document without writing anything and report
the ones whose content on disk differs, with the headings that changed.

Exits with status 3 when any document is stale, which makes it suitable
for CI and for the pre-commit hook installed by 'rustme hooks install'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, dirArg(args), release)
		},
	}

	cmd.Flags().BoolVar(&release, "release", false, "Render the release facet of conditional terms")

	return cmd
}

func dirArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

// runGenerate executes the generate command.
func runGenerate(cmd *cobra.Command, dir string, release, stage bool) error {
	printer := newPrinter(cmd)

	g := newGenerator(generate.WithRelease(release))
	report, err := g.GenerateInDirectory(cmd.Context(), dir)
	if report != nil && !printer.IsJSON() {
		printHumanReport(printer, report, boolFlag(cmd, "quiet"))
	}
	if err != nil {
		return fail(printer, err)
	}

	staged := 0
	if stage {
		changed := changedPaths(report)
		if err := git.Add(cmd.Context(), dir, changed...); err != nil {
			return fail(printer, err)
		}
		staged = len(changed)
	}

	if printer.IsJSON() {
		return printer.WriteJSON(report)
	}

	msg := fmt.Sprintf("Generated %d document(s), %d changed", report.FileCount(), len(report.Drifted()))
	if stage {
		msg += fmt.Sprintf(", %d staged", staged)
	}
	return printer.Success(map[string]any{"message": msg})
}

// runCheck executes the check command.
func runCheck(cmd *cobra.Command, dir string, release bool) error {
	printer := newPrinter(cmd)

	g := newGenerator(generate.WithCheck(true), generate.WithRelease(release))
	report, err := g.GenerateInDirectory(cmd.Context(), dir)
	if err != nil {
		return fail(printer, err)
	}

	drifted := report.Drifted()
	if printer.IsJSON() {
		if err := printer.WriteJSON(report); err != nil {
			return err
		}
		if len(drifted) > 0 {
			return output.NewDriftError(staleMessage(len(drifted), report.FileCount()))
		}
		return nil
	}

	printHumanReport(printer, report, boolFlag(cmd, "quiet"))
	if len(drifted) > 0 {
		driftErr := output.NewDriftError(staleMessage(len(drifted), report.FileCount()))
		printer.Error(driftErr)
		return driftErr
	}
	return printer.Success(map[string]any{
		"message": fmt.Sprintf("All %d document(s) are up to date", report.FileCount()),
	})
}

func staleMessage(stale, total int) string {
	return fmt.Sprintf("%d of %d document(s) are out of date; run 'rustme generate'", stale, total)
}

// changedPaths returns the output paths of documents that changed.
func changedPaths(report *generate.Report) []string {
	var paths []string
	for _, f := range report.Drifted() {
		paths = append(paths, f.Path)
	}
	return paths
}

// printHumanReport lists each configuration and its documents. Changed
// documents are marked with "~" and list their changed headings; with quiet
// set, unchanged documents are omitted.
func printHumanReport(printer *output.Printer, report *generate.Report, quiet bool) {
	for _, c := range report.Configs {
		if quiet && !hasChanges(c) {
			continue
		}
		printer.Section(displayPath(c.Path))
		for _, f := range c.Files {
			if quiet && !f.Changed {
				continue
			}
			printer.Status(f.Name, f.Changed, fmt.Sprintf("(%d bytes, %d sections)", f.Bytes, f.Sections))
			for _, heading := range f.ChangedHeadings {
				printer.Bullet(heading)
			}
		}
	}
	if !quiet {
		printer.Println()
	}
}

func hasChanges(c generate.ConfigReport) bool {
	for _, f := range c.Files {
		if f.Changed {
			return true
		}
	}
	return false
}

// displayPath shortens path relative to the working directory when it lies
// below it.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
