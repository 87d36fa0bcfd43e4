package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/rustme/internal/generate"
	"github.com/gorewood/rustme/internal/watch"
)

// newWatchCmd creates the watch command.
func newWatchCmd() *cobra.Command {
	var release bool
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Regenerate documents whenever their sources change",
		Long: `Generate once, then watch the directory tree and regenerate after each
burst of file changes. Every regeneration is a fresh run, so remote
sections are fetched again. Stop with Ctrl-C.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, dirArg(args), release, debounce)
		},
	}

	cmd.Flags().BoolVar(&release, "release", false, "Render the release facet of conditional terms")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before regenerating")

	return cmd
}

// runWatch executes the watch command until interrupted.
func runWatch(cmd *cobra.Command, dir string, release bool, debounce time.Duration) error {
	printer := newPrinter(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watch.New(dir, watchRun(dir, release),
		watch.WithDebounce(debounce),
		watch.WithLogger(slog.Default()))
	if err := w.Run(ctx); err != nil {
		return fail(printer, err)
	}
	return nil
}

// watchRun returns the regeneration callback: one fresh Generator per run,
// reporting every document it wrote.
func watchRun(dir string, release bool) watch.RunFunc {
	return func(ctx context.Context) ([]string, error) {
		report, err := newGenerator(generate.WithRelease(release)).GenerateInDirectory(ctx, dir)
		var written []string
		if report != nil {
			for _, c := range report.Configs {
				for _, f := range c.Files {
					written = append(written, f.Path)
				}
			}
		}
		return written, err
	}
}
