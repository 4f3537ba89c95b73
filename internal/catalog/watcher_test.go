package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/skyroute/internal/testutil"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	rows := testutil.Records()
	path := testutil.WriteCSV(t, dir, rows[:3])

	c := New(FileSource(path, "csv", testutil.MSK, quietLogger()), 0, quietLogger())
	if err := c.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx, path) }()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)
	testutil.WriteCSV(t, dir, rows)

	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		s, err := c.Snapshot()
		return err == nil && len(s.Flights) == len(rows)
	}, "catalog was not reloaded after the dataset changed")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("watcher did not stop after cancel")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteCSV(t, dir, testutil.Records())

	c := New(FileSource(path, "csv", testutil.MSK, quietLogger()), 0, quietLogger())
	if err := c.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Watch(ctx, path)
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("unrelated"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(500 * time.Millisecond)

	s, _ := c.Snapshot()
	if s.Version != 1 {
		t.Errorf("version = %d, want 1 (unrelated write must not reload)", s.Version)
	}
}

func TestWatch_SkipsUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	rows := testutil.Records()
	path := testutil.WriteCSV(t, dir, rows)

	c := New(FileSource(path, "csv", testutil.MSK, quietLogger()), 0, quietLogger())
	if err := c.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Watch(ctx, path)
	time.Sleep(100 * time.Millisecond)

	testutil.WriteCSV(t, dir, rows)
	time.Sleep(500 * time.Millisecond)

	s, _ := c.Snapshot()
	if s.Version != 1 {
		t.Errorf("version = %d, want 1 (identical rewrite must not reload)", s.Version)
	}
}
