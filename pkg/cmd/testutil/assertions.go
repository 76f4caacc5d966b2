package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/roadwork/pkg/consts"
	"github.com/pseudomuto/roadwork/pkg/migrator"
	"github.com/stretchr/testify/require"
)

// RequireFileExists asserts that a file exists and optionally checks its content
func RequireFileExists(t *testing.T, path string, checks ...func(content string)) {
	t.Helper()

	require.FileExists(t, path, "File should exist: %s", path)

	if len(checks) > 0 {
		content, err := os.ReadFile(path)
		require.NoError(t, err, "Failed to read file: %s", path)

		for _, check := range checks {
			check(string(content))
		}
	}
}

// RequireFileContains returns a check function that verifies file contains text
func RequireFileContains(t *testing.T, expected string) func(string) {
	return func(content string) {
		require.Contains(t, content, expected, "File should contain: %s", expected)
	}
}

// RequireFileNotContains returns a check function that verifies file doesn't contain text
func RequireFileNotContains(t *testing.T, unexpected string) func(string) {
	return func(content string) {
		require.NotContains(t, content, unexpected, "File should not contain: %s", unexpected)
	}
}

// RequireMigration asserts that mig is a complete migration directory and
// returns its loaded SQL.
func RequireMigration(t *testing.T, mig *migrator.Migration) (up, down string) {
	t.Helper()

	require.DirExists(t, mig.Dir)
	require.FileExists(t, filepath.Join(mig.Dir, consts.UpFile))
	require.FileExists(t, filepath.Join(mig.Dir, consts.DownFile))
	require.Regexp(t, `^\d{14}$`, mig.Timestamp)
	require.NoError(t, mig.Load())

	return mig.UpSQL, mig.DownSQL
}

// RequireNoFile asserts that a file or directory does not exist
func RequireNoFile(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "Path should not exist: %s", path)
}
