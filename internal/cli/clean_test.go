package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/cobble/internal/shell"
	"github.com/thruflo/cobble/internal/testutil"
)

func TestCleanCommand_RemovesStamp(t *testing.T) {
	dir, _ := setupProject(t)

	require.NoError(t, runRun(runCmd, []string{"build"}))
	stampPath := filepath.Join(dir, ".cobble", "stamps", "build")
	require.FileExists(t, stampPath)

	out := captureOutput(func() {
		require.NoError(t, runClean(cleanCmd, []string{"build"}))
	})

	assert.Contains(t, out, "Cleaned build")
	assert.NoFileExists(t, stampPath)
}

func TestCleanCommand_All(t *testing.T) {
	dir, _ := setupProject(t)

	require.NoError(t, runRun(runCmd, []string{"test"}))
	require.FileExists(t, filepath.Join(dir, ".cobble", "stamps", "build"))
	require.FileExists(t, filepath.Join(dir, ".cobble", "stamps", "test"))

	cleanAllFlag = true
	defer func() { cleanAllFlag = false }()

	out := captureOutput(func() {
		require.NoError(t, runClean(cleanCmd, nil))
	})

	assert.Contains(t, out, "Removed stamps for 2 tasks")
	assert.NoFileExists(t, filepath.Join(dir, ".cobble", "stamps", "build"))
	assert.NoFileExists(t, filepath.Join(dir, ".cobble", "stamps", "test"))
}

func TestCleanCommand_NoArgs(t *testing.T) {
	setupProject(t)

	err := runClean(cleanCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no task specified")
}

func TestCleanCommand_UnknownTask(t *testing.T) {
	setupProject(t)

	err := runClean(cleanCmd, []string{"deploy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target")
}

func TestCleanCommand_CustomClean(t *testing.T) {
	dir, mock := setupProject(t)
	testutil.WriteManifest(t, dir, `task "build" {
  command = "echo building"
  clean   = "echo scrubbing"
}
`)

	require.NoError(t, runRun(runCmd, []string{"build"}))
	stampPath := filepath.Join(dir, ".cobble", "stamps", "build")
	require.FileExists(t, stampPath)

	require.NoError(t, runClean(cleanCmd, []string{"build"}))

	// The clean command ran and the stamp is gone as well.
	require.Len(t, mock.Calls, 2)
	assert.Equal(t, shell.Command("echo scrubbing"), mock.Calls[1])
	assert.NoFileExists(t, stampPath)
}
