package instance

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")

	lock, err := Acquire(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), lock.Path())

	if runtime.GOOS != "windows" {
		pid, ok := ReadPID(lock.Path())
		assert.True(t, ok)
		assert.Equal(t, os.Getpid(), pid)
	}

	require.NoError(t, lock.Release())
	assert.NoError(t, lock.Release(), "second release is a no-op")

	again, err := Acquire(dir)
	require.NoError(t, err, "lock must be reusable after release")
	require.NoError(t, again.Release())
}

func TestAcquireHeld(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" && runtime.GOOS != "windows" {
		t.Skip("no advisory locks on this platform")
	}
	dir := t.TempDir()

	first, err := Acquire(dir)
	require.NoError(t, err)
	defer first.Release()

	second, err := Acquire(dir)
	assert.Nil(t, second)
	assert.True(t, errors.Is(err, ErrAlreadyRunning), "got %v", err)
}

func TestAcquireBadDir(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(parent, nil, 0o644))

	_, err := Acquire(filepath.Join(parent, "state"))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrAlreadyRunning))
}

func TestReleaseNil(t *testing.T) {
	var l *Lock
	assert.NoError(t, l.Release())
}

func TestReadPID(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    int
		ok      bool
	}{
		{name: "pid", content: "4242\n", want: 4242, ok: true},
		{name: "garbage", content: "nebula", ok: false},
		{name: "empty", content: "", ok: false},
		{name: "negative", content: "-1", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			pid, ok := ReadPID(path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, pid)
		})
	}

	_, ok := ReadPID(filepath.Join(dir, "missing"))
	assert.False(t, ok)
}
