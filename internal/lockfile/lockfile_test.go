package lockfile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkg.lock")

	l, err := Acquire(path, time.Second)
	require.NoError(t, err)
	require.NoError(t, l.Release())

	// Releasing twice is a no-op.
	require.NoError(t, l.Release())

	// Reacquirable after release.
	l2, err := Acquire(path, time.Second)
	require.NoError(t, err)
	require.NoError(t, l2.Release())
}

func TestAcquireContendedTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkg.lock")

	held, err := Acquire(path, time.Second)
	require.NoError(t, err)
	defer held.Release()

	start := time.Now()
	_, err = Acquire(path, 150*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestAcquireDistinctPathsDoNotContend(t *testing.T) {
	dir := t.TempDir()

	a, err := Acquire(filepath.Join(dir, "a.lock"), time.Second)
	require.NoError(t, err)
	defer a.Release()

	b, err := Acquire(filepath.Join(dir, "b.lock"), time.Second)
	require.NoError(t, err)
	defer b.Release()
}

func TestAcquireCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "se", "rd", "serde.lock")
	l, err := Acquire(path, time.Second)
	require.NoError(t, err)
	require.NoError(t, l.Release())
}
