package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSourceEvent(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"yml write", fsnotify.Event{Name: "/data/compose.yml", Op: fsnotify.Write}, true},
		{"yaml create", fsnotify.Event{Name: "/data/teams.yaml", Op: fsnotify.Create}, true},
		{"yaml remove", fsnotify.Event{Name: "/data/teams.yaml", Op: fsnotify.Remove}, true},
		{"other extension", fsnotify.Event{Name: "/data/README.md", Op: fsnotify.Write}, false},
		{"chmod only", fsnotify.Event{Name: "/data/compose.yml", Op: fsnotify.Chmod}, false},
		{"backup suffix", fsnotify.Event{Name: "/data/compose.yml.bak", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isSourceEvent(tt.event))
		})
	}
}

func TestWatcherInitialAndChangeTriggered(t *testing.T) {
	dir := t.TempDir()

	var runs atomic.Int32
	w := New(dir, func(context.Context) error {
		runs.Add(1)
		return nil
	}, WithCooldown(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer stopCancel()
		_ = w.Stop(stopCtx)
	}()

	// First-run reconciliation happens synchronously in Start.
	assert.Equal(t, int32(1), runs.Load())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "compose.yml"), []byte("services: {}\n"), 0644))

	require.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, 3*time.Second, 10*time.Millisecond)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()

	var runs atomic.Int32
	w := New(dir, func(context.Context) error {
		runs.Add(1)
		return nil
	}, WithCooldown(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer stopCancel()
		_ = w.Stop(stopCtx)
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load(), "only the initial ingestion should have run")
}

// An onChange failure must not kill the watch loop.
func TestWatcherSurvivesCallbackError(t *testing.T) {
	dir := t.TempDir()

	var runs atomic.Int32
	w := New(dir, func(context.Context) error {
		runs.Add(1)
		return assert.AnError
	}, WithCooldown(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer stopCancel()
		_ = w.Stop(stopCtx)
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("x: 1\n"), 0644))
	require.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("x: 2\n"), 0644))
	require.Eventually(t, func() bool {
		return runs.Load() >= 3
	}, 3*time.Second, 10*time.Millisecond)
}

func TestWatcherStartTwice(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, func(context.Context) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer stopCancel()
		_ = w.Stop(stopCtx)
	}()

	assert.Error(t, w.Start(ctx))
}
