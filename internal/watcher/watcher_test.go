package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func start(t *testing.T, cfg Config, h Handler) (context.CancelFunc, <-chan error) {
	t.Helper()
	w, err := New(cfg, h, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	return cancel, done
}

func testConfig(path string) Config {
	cfg := DefaultConfig(path)
	cfg.Debounce = 20 * time.Millisecond
	cfg.RetryDelay = 5 * time.Millisecond
	return cfg
}

func TestWatcherCallsHandlerOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "relations.yaml")
	require.NoError(t, os.WriteFile(path, []byte("people: []\n"), 0644))

	calls := make(chan struct{}, 10)
	cancel, done := start(t, testConfig(path), func(ctx context.Context) error {
		calls <- struct{}{}
		return nil
	})

	// Burst of writes collapses into one call.
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("people: []\n"), 0644))
	}

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("handler not called")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "relations.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	var calls atomic.Int32
	cancel, done := start(t, testConfig(path), func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "family_tree.svg"), []byte("<svg/>"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherRetriesHandler(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "relations.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	var attempts atomic.Int32
	var once sync.Once
	succeeded := make(chan struct{})
	cancel, done := start(t, testConfig(path), func(ctx context.Context) error {
		if attempts.Add(1) < 3 {
			return errors.New("half written")
		}
		once.Do(func() { close(succeeded) })
		return nil
	})

	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	select {
	case <-succeeded:
	case <-time.After(5 * time.Second):
		t.Fatal("handler never succeeded")
	}
	assert.GreaterOrEqual(t, attempts.Load(), int32(3))

	cancel()
	require.NoError(t, <-done)
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New(DefaultConfig(filepath.Join(t.TempDir(), "nope", "relations.yaml")), nil, nil)
	assert.Error(t, err)
}
