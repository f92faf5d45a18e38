package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRunLock(t *testing.T) {
	dir := t.TempDir()

	release, err := AcquireRunLock(dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, lockName))
	require.NoError(t, err)

	release()
	_, err = os.Stat(filepath.Join(dir, lockName))
	assert.True(t, os.IsNotExist(err))
}

func TestAcquireRunLock_ConflictFailsFast(t *testing.T) {
	dir := t.TempDir()

	release, err := AcquireRunLock(dir)
	require.NoError(t, err)
	defer release()

	_, err = AcquireRunLock(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in progress")
}

func TestAcquireRunLock_ReleaseAllowsReacquire(t *testing.T) {
	dir := t.TempDir()

	release, err := AcquireRunLock(dir)
	require.NoError(t, err)
	release()

	release2, err := AcquireRunLock(dir)
	require.NoError(t, err)
	release2()
}

func TestAcquireRunLock_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "not", "yet", "there")

	release, err := AcquireRunLock(dir)
	require.NoError(t, err)
	defer release()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
