package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCommand(t *testing.T) {
	setupProject(t)

	out := captureOutput(func() {
		require.NoError(t, runConfig(configCmd, nil))
	})

	assert.Contains(t, out, "stamp_dir: .cobble/stamps")
	assert.Contains(t, out, "jobs: 1")
	assert.NotContains(t, out, "# environment overrides")
}

func TestConfigCommand_EnvOverrides(t *testing.T) {
	setupProject(t)
	t.Setenv("COBBLE_JOBS", "4")

	out := captureOutput(func() {
		require.NoError(t, runConfig(configCmd, nil))
	})

	assert.Contains(t, out, "jobs: 4")
	assert.Contains(t, out, "# environment overrides")
	assert.Contains(t, out, "COBBLE_JOBS=4")
}
