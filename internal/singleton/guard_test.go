package singleton

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfwatch/pdfwatch/internal/common"
	"github.com/pdfwatch/pdfwatch/internal/testutil"
)

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()

	guard, err := Acquire(dir, testutil.DiscardLogger())
	require.NoError(t, err)

	lockPath := filepath.Join(dir, lockFileName)
	data, err := os.ReadFile(lockPath)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d\n", os.Getpid()), string(data))

	guard.Release()
	assert.NoFileExists(t, lockPath)

	// Release twice is harmless.
	guard.Release()
}

func TestSecondAcquireConflicts(t *testing.T) {
	dir := t.TempDir()

	first, err := Acquire(dir, testutil.DiscardLogger())
	require.NoError(t, err)
	defer first.Release()

	var activated atomic.Int32
	go first.Serve(func() { activated.Add(1) })

	_, err = Acquire(dir, testutil.DiscardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSingletonConflict)

	// The losing launch pokes the running instance before giving up.
	assert.Eventually(t, func() bool { return activated.Load() >= 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestPortHeldBlocksAcquire(t *testing.T) {
	dir := t.TempDir()

	// Another process owns the port but left no lock file; the bind
	// layer must still refuse and clean up the lock we just claimed.
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", Port))
	require.NoError(t, err)
	defer ln.Close()

	_, err = Acquire(dir, testutil.DiscardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSingletonConflict)
	assert.NoFileExists(t, filepath.Join(dir, lockFileName))
}

func TestStaleLockReclaimed(t *testing.T) {
	dir := t.TempDir()

	// A crashed process leaves the lock file but no listener.
	lockPath := filepath.Join(dir, lockFileName)
	require.NoError(t, os.WriteFile(lockPath, []byte("99999\n"), 0o644))

	guard, err := Acquire(dir, testutil.DiscardLogger())
	require.NoError(t, err, "stale lock must not block startup")
	defer guard.Release()

	data, err := os.ReadFile(lockPath)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d\n", os.Getpid()), string(data))
}

func TestSignalExisting(t *testing.T) {
	t.Run("no instance running", func(t *testing.T) {
		assert.False(t, SignalExisting())
	})

	t.Run("running instance receives SHOW", func(t *testing.T) {
		guard, err := Acquire(t.TempDir(), testutil.DiscardLogger())
		require.NoError(t, err)
		defer guard.Release()

		var activated atomic.Int32
		go guard.Serve(func() { activated.Add(1) })

		assert.True(t, SignalExisting())
		assert.Eventually(t, func() bool { return activated.Load() == 1 },
			2*time.Second, 10*time.Millisecond)
	})
}
