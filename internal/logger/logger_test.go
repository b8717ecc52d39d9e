package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"DEBUG":   log.DebugLevel,
		"info":    log.InfoLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"fatal":   log.FatalLevel,
		"":        log.InfoLevel,
		"chatty":  log.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestConfigure_FlagBeatsEnvironment(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")

	require.NoError(t, Configure("debug", "", false))
	assert.Equal(t, log.DebugLevel, Logger.GetLevel())

	require.NoError(t, Configure("", "", false))
	assert.Equal(t, log.ErrorLevel, Logger.GetLevel())
}

func TestConfigure_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "psbrowse.log")

	require.NoError(t, Configure("debug", path, false))
	HostOperation("ListCommands", "pwsh")
	CommandExecution("show", []string{"Get-Item"})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Host operation")
	assert.Contains(t, string(data), "ListCommands")
	assert.Contains(t, string(data), "Executing command")

	require.NoError(t, Configure("info", "", false))
}

func TestConfigure_BadLogFile(t *testing.T) {
	err := Configure("info", filepath.Join(t.TempDir(), "missing", "dir", "x.log"), false)
	assert.Error(t, err)
	require.NoError(t, Configure("info", "", false))
}

func TestNewStyledLogger_InheritsLevelAndOutput(t *testing.T) {
	require.NoError(t, Configure("warn", "", false))
	var buf bytes.Buffer
	SetOutput(&buf)
	defer func() { require.NoError(t, Configure("info", "", false)) }()

	component := NewStyledLogger("Host")
	assert.Equal(t, log.WarnLevel, component.GetLevel())

	component.Info("hidden")
	component.Warn("shown", "command", "Get-Item")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "Host")
}
