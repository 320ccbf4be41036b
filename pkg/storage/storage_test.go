package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mughalk/csc301-a2/pkg/storage"
)

func TestLocalDisk_RoundTrip(t *testing.T) {
	disk, err := storage.Open(storage.Options{Driver: "local", Root: t.TempDir()})
	require.NoError(t, err)

	assert.False(t, disk.Exists("run-1/results.txt"))

	require.NoError(t, disk.Put("run-1/results.txt", []byte("== summary ==")))
	assert.True(t, disk.Exists("run-1/results.txt"))

	got, err := disk.Get("run-1/results.txt")
	require.NoError(t, err)
	assert.Equal(t, "== summary ==", string(got))

	assert.Contains(t, disk.URL("run-1/results.txt"), "file://")
}

func TestLocalDisk_GetMissing(t *testing.T) {
	disk, err := storage.Open(storage.Options{Root: t.TempDir()})
	require.NoError(t, err)

	_, err = disk.Get("never/written.txt")
	assert.Error(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := storage.Open(storage.Options{Driver: "ftp"})
	assert.ErrorContains(t, err, "unknown driver")
}
