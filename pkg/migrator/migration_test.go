package migrator_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/pseudomuto/roadwork/pkg/migrator"
	"github.com/stretchr/testify/require"
)

func TestDirection(t *testing.T) {
	require.Equal(t, "up", Up.String())
	require.Equal(t, "down", Down.String())
	require.Equal(t, "up.sql", Up.File())
	require.Equal(t, "down.sql", Down.File())
	require.Equal(t, Down, Up.Reverse())
	require.Equal(t, Up, Down.Reverse())

	for input, expected := range map[string]Direction{"up": Up, "UP": Up, " Down ": Down} {
		d, err := ParseDirection(input)
		require.NoError(t, err)
		require.Equal(t, expected, d)
	}

	_, err := ParseDirection("sideways")
	require.Error(t, err)
}

func TestParseDirName(t *testing.T) {
	tests := []struct {
		input string
		ts    string
		name  string
		ok    bool
	}{
		{input: "20240102150405-create_users", ts: "20240102150405", name: "create_users", ok: true},
		{input: "20240102150405-create-users", ts: "20240102150405", name: "create-users", ok: true},
		{input: "create_users", ok: false},
		{input: "-create_users", ok: false},
		{input: "20240102150405-", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ts, name, ok := ParseDirName(tt.input)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.ts, ts)
			require.Equal(t, tt.name, name)
		})
	}
}

func TestMigration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "up.sql"), []byte("CREATE TABLE a (id INT);"), 0o644))

	mig := &Migration{Name: "create_a", Timestamp: "20240102150405", Dir: dir}
	require.Equal(t, "20240102150405-create_a", mig.DirName())
	require.Equal(t, filepath.Join(dir, "down.sql"), mig.Path(Down))

	ts, err := mig.Time()
	require.NoError(t, err)
	require.True(t, time.Date(2024, 1, 2, 15, 4, 5, 0, time.Local).Equal(ts))

	require.NoError(t, mig.Load())
	require.Equal(t, "CREATE TABLE a (id INT);", mig.SQL(Up))
	require.Empty(t, mig.SQL(Down))

	missing := &Migration{Name: "x", Timestamp: "1", Dir: filepath.Join(dir, "missing")}
	require.Error(t, missing.Load())
	_, err = missing.Time()
	require.Error(t, err)
}
