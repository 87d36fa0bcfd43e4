package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestWatcher_RerunsAfterChange(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "README.md")
	source := filepath.Join(dir, "header.md")
	require.NoError(t, os.WriteFile(source, []byte("v1"), 0o600))

	runs := make(chan struct{}, 10)
	run := func(context.Context) ([]string, error) {
		runs <- struct{}{}
		return []string{output}, os.WriteFile(output, []byte("generated"), 0o600)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	w := New(dir, run, WithDebounce(20*time.Millisecond), WithLogger(quietLogger))
	go func() { done <- w.Run(ctx) }()

	waitForRun(t, runs)

	require.NoError(t, os.WriteFile(source, []byte("v2"), 0o600))
	waitForRun(t, runs)

	// Our own output does not retrigger.
	select {
	case <-runs:
		t.Fatal("write of generated output triggered a run")
	case <-time.After(150 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_Relevant(t *testing.T) {
	root := t.TempDir()
	w := New(root, nil)
	w.written[filepath.Join(root, "README.md")] = true

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{name: "source write", event: fsnotify.Event{Name: filepath.Join(root, "src", "lib.rs"), Op: fsnotify.Write}, want: true},
		{name: "chmod only", event: fsnotify.Event{Name: filepath.Join(root, "a.md"), Op: fsnotify.Chmod}, want: false},
		{name: "temp file", event: fsnotify.Event{Name: filepath.Join(root, ".rustme-123.tmp"), Op: fsnotify.Create}, want: false},
		{name: "own output", event: fsnotify.Event{Name: filepath.Join(root, "README.md"), Op: fsnotify.Create}, want: false},
		{name: "git internals", event: fsnotify.Event{Name: filepath.Join(root, ".git", "index"), Op: fsnotify.Write}, want: false},
		{name: "build output", event: fsnotify.Event{Name: filepath.Join(root, "target", "debug", "x"), Op: fsnotify.Write}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.event))
		})
	}
}

func waitForRun(t *testing.T, runs <-chan struct{}) {
	t.Helper()
	select {
	case <-runs:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a run")
	}
}
