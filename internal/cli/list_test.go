package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/cobble/internal/testutil"
)

func TestListCommand(t *testing.T) {
	setupProject(t)

	out := captureOutput(func() {
		require.NoError(t, runList(listCmd, nil))
	})

	assert.Contains(t, out, "TASK")
	assert.Contains(t, out, "build *")
	assert.Contains(t, out, "test")
	assert.Contains(t, out, "compile the project")
	assert.Contains(t, out, "missing")
}

func TestListCommand_FreshAfterRun(t *testing.T) {
	setupProject(t)

	require.NoError(t, runRun(runCmd, []string{"build"}))

	out := captureOutput(func() {
		require.NoError(t, runList(listCmd, nil))
	})

	assert.Contains(t, out, "fresh")
}

func TestListCommand_NoTasks(t *testing.T) {
	dir, _ := setupProject(t)
	testutil.WriteManifest(t, dir, "")

	out := captureOutput(func() {
		require.NoError(t, runList(listCmd, nil))
	})

	assert.Contains(t, out, "No tasks declared.")
}
