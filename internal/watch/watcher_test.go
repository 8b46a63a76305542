// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRebuilder records rebuild calls.
type countingRebuilder struct {
	calls atomic.Int32
}

func (c *countingRebuilder) RebuildIndex() error {
	c.calls.Add(1)
	return nil
}

func TestWatcher_RebuildsOnRecordChange(t *testing.T) {
	dir := t.TempDir()
	rebuilder := &countingRebuilder{}

	w, err := New(dir, rebuilder, 50*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Start())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "some-chat.json"), []byte(`{}`), 0644))

	require.Eventually(t, func() bool {
		return rebuilder.calls.Load() >= 1
	}, 3*time.Second, 20*time.Millisecond, "watcher never triggered a rebuild")
	assert.GreaterOrEqual(t, w.Rebuilds(), 1)
}

func TestWatcher_CoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	rebuilder := &countingRebuilder{}

	w, err := New(dir, rebuilder, 150*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Start())

	// A burst of writes inside one debounce window.
	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, "chat.json")
		require.NoError(t, os.WriteFile(name, []byte(`{}`), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return rebuilder.calls.Load() >= 1
	}, 3*time.Second, 20*time.Millisecond)

	// Give the watcher a chance to (incorrectly) fire again.
	time.Sleep(400 * time.Millisecond)
	assert.EqualValues(t, 1, rebuilder.calls.Load(), "burst should coalesce into one rebuild")
}

func TestWatcher_IgnoresIndexAndTempFiles(t *testing.T) {
	dir := t.TempDir()
	rebuilder := &countingRebuilder{}

	w, err := New(dir, rebuilder, 50*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Start())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.json"), []byte(`{}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tmp-12345"), []byte(`x`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`x`), 0644))

	time.Sleep(300 * time.Millisecond)
	assert.EqualValues(t, 0, rebuilder.calls.Load(), "index, temp, and non-json files must not trigger rebuilds")
}

func TestWatcher_CloseStops(t *testing.T) {
	dir := t.TempDir()
	rebuilder := &countingRebuilder{}

	w, err := New(dir, rebuilder, 50*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	require.NoError(t, w.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "after-close.json"), []byte(`{}`), 0644))
	time.Sleep(300 * time.Millisecond)
	assert.EqualValues(t, 0, rebuilder.calls.Load(), "no rebuilds after Close")
}
