package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand_HasMergeSubcommand(t *testing.T) {
	cmd := NewRootCommand()

	sub, _, err := cmd.Find([]string{"merge"})
	require.NoError(t, err)
	assert.Equal(t, "merge", sub.Name())
}

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	err := execute(t, "--log-level", "loud", "merge", "-g", "whatever.mae")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestRootCommand_ConfigFileFlag(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFixture(t, dir, "chemscreen.yaml", "log:\n  level: warn\n")
	cores := writeFixture(t, dir, "cores.mae", coreFile)
	out := dir + "/out.mae"

	err := execute(t, "-c", cfg, "merge", "-g", cores, "-o", out)
	assert.NoError(t, err)
}

func TestRootCommand_BadConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFixture(t, dir, "chemscreen.yaml", "log:\n  level: loud\n")

	err := execute(t, "-c", cfg, "merge", "-g", "whatever.mae")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestGetCLIContext_MissingContext(t *testing.T) {
	cmd := &cobra.Command{Use: "bare"}
	_, err := GetCLIContext(cmd)
	require.Error(t, err)
}
