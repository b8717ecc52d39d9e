package services

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClipboardService_NotInitialized(t *testing.T) {
	err := NewClipboardService().Copy("Get-Item")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestClipboardService_EmptyText(t *testing.T) {
	service := NewClipboardService()
	require.NoError(t, service.Initialize())
	assert.ErrorContains(t, service.Copy(""), "nothing to copy")
}

func TestClipboardService_WriteFailure(t *testing.T) {
	if runtime.GOOS == "linux" {
		t.Skip("clipboard backend unavailable on linux")
	}
	service := NewClipboardService()
	require.NoError(t, service.Initialize())
	service.once.Do(func() {})
	service.write = func(string) error { return errors.New("locked") }

	assert.ErrorContains(t, service.Copy("Get-Item"), "failed to write clipboard: locked")
}

func TestClipboardService_LinuxUnavailable(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux only")
	}
	service := NewClipboardService()
	require.NoError(t, service.Initialize())

	assert.False(t, service.Available())
	assert.ErrorIs(t, service.Copy("Get-Item"), ErrClipboardUnavailable)
}
