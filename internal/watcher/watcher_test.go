package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T) (*Watcher, string, <-chan struct{}) {
	t.Helper()

	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, "ledger.db")
	require.NoError(t, os.WriteFile(ledgerPath, []byte("seed"), 0o600))

	w, err := New(Config{LedgerPath: ledgerPath, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	changes, err := w.Start()
	require.NoError(t, err)

	return w, ledgerPath, changes
}

func waitForChange(t *testing.T, changes <-chan struct{}) {
	t.Helper()

	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestWatcher_NotifiesOnLedgerWrite(t *testing.T) {
	_, ledgerPath, changes := newTestWatcher(t)

	require.NoError(t, os.WriteFile(ledgerPath, []byte("update"), 0o600))

	waitForChange(t, changes)
}

func TestWatcher_NotifiesOnWALWrite(t *testing.T) {
	_, ledgerPath, changes := newTestWatcher(t)

	require.NoError(t, os.WriteFile(ledgerPath+"-wal", []byte("wal"), 0o600))

	waitForChange(t, changes)
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	_, ledgerPath, changes := newTestWatcher(t)

	other := filepath.Join(filepath.Dir(ledgerPath), "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("hello"), 0o600))

	select {
	case <-changes:
		t.Fatal("unrelated file should not trigger a notification")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	_, ledgerPath, changes := newTestWatcher(t)

	// A burst of writes inside the debounce window collapses to one signal.
	for range 5 {
		require.NoError(t, os.WriteFile(ledgerPath, []byte("burst"), 0o600))
		time.Sleep(5 * time.Millisecond)
	}

	waitForChange(t, changes)

	select {
	case <-changes:
		t.Fatal("burst should collapse into a single notification")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_IsRelevantEvent(t *testing.T) {
	w := &Watcher{ledgerPath: "/data/ledger.db"}

	assert.True(t, w.isRelevantEvent(fsnotify.Event{Name: "/data/ledger.db", Op: fsnotify.Write}))
	assert.True(t, w.isRelevantEvent(fsnotify.Event{Name: "/data/ledger.db-wal", Op: fsnotify.Create}))
	assert.False(t, w.isRelevantEvent(fsnotify.Event{Name: "/data/ledger.db", Op: fsnotify.Chmod}))
	assert.False(t, w.isRelevantEvent(fsnotify.Event{Name: "/data/other.db", Op: fsnotify.Write}))
}

func TestWatcher_StopClosesCleanly(t *testing.T) {
	dir := t.TempDir()
	w, err := New(DefaultConfig(filepath.Join(dir, "ledger.db")))
	require.NoError(t, err)

	_, err = w.Start()
	require.NoError(t, err)
	require.NoError(t, w.Stop())
}
