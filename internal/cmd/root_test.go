package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannvm/agentboot/internal/config"
)

func TestCommandTree(t *testing.T) {
	for _, name := range []string{"agents", "sort", "probe", "launch", "status", "reset", "init", "ui", "mcp", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	list, _, err := rootCmd.Find([]string{"agents", "list"})
	require.NoError(t, err)
	assert.Equal(t, "list", list.Name())
}

func TestInitWritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	configPath = path
	quiet = true
	t.Cleanup(func() {
		configPath = ""
		quiet = false
		initForce = false
	})

	require.NoError(t, initCommand(initCmd, nil))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	reg, err := cfg.Registry()
	require.NoError(t, err)
	assert.Len(t, reg.IDs(), 5)

	assert.Error(t, initCommand(initCmd, nil), "existing config must not be overwritten")

	initForce = true
	assert.NoError(t, initCommand(initCmd, nil))
}

func TestResetClearsRecords(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AGENTBOOT_STATE_DIR", dir)
	t.Chdir(t.TempDir())
	quiet = true
	t.Cleanup(func() { quiet = false })

	assert.NoError(t, resetCommand(resetCmd, nil))
}
