package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"list", "modules", "syntax", "params", "examples", "export", "copy", "online", "diff", "shell", "version", "config"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config", "log-level", "log-file", "host", "timeout", "min-version", "style", "width", "plain", "functions", "aliases", "test-mode", "json"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestHelpCommandShowsCommandHelp(t *testing.T) {
	rootCmd.InitDefaultHelpCmd()
	helpCmd, _, err := rootCmd.Find([]string{"help", "Get-Item"})
	require.NoError(t, err)
	assert.Equal(t, "help NAME", helpCmd.Use)
	assert.NotNil(t, helpCmd.Flags().Lookup("raw"))
}

func TestListAndExportFilterFlags(t *testing.T) {
	for _, name := range []string{"list", "export"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		for _, flag := range []string{"module", "search", "where"} {
			assert.NotNil(t, cmd.Flags().Lookup(flag), "%s --%s", name, flag)
		}
	}
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("render:\n  style: light\nhost:\n  timeout: 7s\n"), 0600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", path, "--width", "72", "config"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "style: light")
	assert.Contains(t, out.String(), "timeout: 7s")
	assert.Contains(t, out.String(), "width: 72")
}
