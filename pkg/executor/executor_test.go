package executor_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/pseudomuto/roadwork/pkg/consts"
	"github.com/pseudomuto/roadwork/pkg/database"
	. "github.com/pseudomuto/roadwork/pkg/executor"
	"github.com/pseudomuto/roadwork/pkg/migrator"
	"github.com/pseudomuto/roadwork/pkg/utils"
	"github.com/stretchr/testify/require"
)

type recordingConn struct {
	execs  []string
	failOn string
}

func (c *recordingConn) Exec(_ context.Context, query string, _ ...any) (int64, error) {
	if c.failOn != "" && query == c.failOn {
		return 0, errors.New("syntax error")
	}

	c.execs = append(c.execs, query)
	return 0, nil
}

func openSQLite(t *testing.T) *database.Connection {
	t.Helper()

	conn, err := database.Connect(context.Background(), database.Config{
		Type: "sqlite",
		Name: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), consts.ModeFile))
	}

	return dir
}

func tableExists(t *testing.T, conn *database.Connection, table string) bool {
	t.Helper()

	rows, err := conn.Query(context.Background(), "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table)
	require.NoError(t, err)
	defer rows.Close()

	return rows.Next()
}

func TestSelect(t *testing.T) {
	files := []string{"up.sql", "down.sql", "README.md", "b_seed.sql", "a_extra.sql", "down.txt"}

	tests := []struct {
		name      string
		direction migrator.Direction
		expected  []string
	}{
		{name: "up", direction: migrator.Up, expected: []string{"a_extra.sql", "b_seed.sql", "up.sql"}},
		{name: "down", direction: migrator.Down, expected: []string{"down.sql"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Select(files, tt.direction))
		})
	}

	require.Empty(t, Select(nil, migrator.Up))
}

func TestIsDownFile(t *testing.T) {
	require.True(t, IsDownFile("down.sql"))
	require.True(t, IsDownFile("/tmp/x/down.sql"))
	require.False(t, IsDownFile("up.sql"))
	require.False(t, IsDownFile("drop_down.sql"))
}

func TestExecutor_Execute(t *testing.T) {
	ctx := context.Background()
	dir := writeFiles(t, map[string]string{
		"up.sql":   "CREATE TABLE users (id INT);\n-- seed\nINSERT INTO users VALUES (1);",
		"down.sql": "DROP TABLE IF EXISTS users;",
		"notes.md": "not sql",
	})

	conn := &recordingConn{}
	res, err := New(conn).Execute(ctx, dir, []string{"down.sql", "up.sql", "notes.md"}, migrator.Up)
	require.NoError(t, err)

	require.Equal(t, []string{"CREATE TABLE users (id INT)", "INSERT INTO users VALUES (1)"}, conn.execs)
	require.Equal(t, []string{"up.sql"}, res.Files)
	require.Equal(t, 2, res.Statements)
	require.Equal(t, migrator.Up, res.Direction)
	require.Equal(t, utils.Hash("CREATE TABLE users (id INT);\n-- seed\nINSERT INTO users VALUES (1);"), res.Hash)
}

func TestExecutor_ExecuteStopsOnFailure(t *testing.T) {
	ctx := context.Background()
	dir := writeFiles(t, map[string]string{
		"up.sql": "CREATE TABLE a (id INT); BROKEN; CREATE TABLE b (id INT);",
	})

	conn := &recordingConn{failOn: "BROKEN"}
	_, err := New(conn).ExecuteDir(ctx, dir, migrator.Up)
	require.Error(t, err)

	var stmtErr *StatementError
	require.ErrorAs(t, err, &stmtErr)
	require.Equal(t, dir, stmtErr.Dir)
	require.Equal(t, "up.sql", stmtErr.File)
	require.Equal(t, 1, stmtErr.Index)
	require.Equal(t, "BROKEN", stmtErr.Statement)
	require.ErrorContains(t, err, "statement 2 failed: syntax error")

	require.Equal(t, []string{"CREATE TABLE a (id INT)"}, conn.execs)
}

func TestExecutor_ExecuteDirMissing(t *testing.T) {
	_, err := New(&recordingConn{}).ExecuteDir(context.Background(), filepath.Join(t.TempDir(), "nope"), migrator.Up)
	require.ErrorContains(t, err, "failed to read migration directory")
}

func TestExecutor_SQLite(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)
	dir := writeFiles(t, map[string]string{
		"up.sql":   "CREATE TABLE users (id INTEGER PRIMARY KEY, bio TEXT DEFAULT 'a;b');",
		"down.sql": "DROP TABLE IF EXISTS users;",
	})

	exec := New(conn)

	_, err := exec.ExecuteDir(ctx, dir, migrator.Up)
	require.NoError(t, err)
	require.True(t, tableExists(t, conn, "users"))

	_, err = exec.ExecuteDir(ctx, dir, migrator.Down)
	require.NoError(t, err)
	require.False(t, tableExists(t, conn, "users"))
}

func TestExecutor_Transactions(t *testing.T) {
	ctx := context.Background()
	up := "CREATE TABLE users (id INTEGER PRIMARY KEY);\nNOT VALID SQL;"

	t.Run("rolled back when enabled", func(t *testing.T) {
		conn := openSQLite(t)
		dir := writeFiles(t, map[string]string{"up.sql": up})

		_, err := New(conn, WithTransactions(true)).ExecuteDir(ctx, dir, migrator.Up)
		require.Error(t, err)
		require.False(t, tableExists(t, conn, "users"))
	})

	t.Run("partially applied by default", func(t *testing.T) {
		conn := openSQLite(t)
		dir := writeFiles(t, map[string]string{"up.sql": up})

		_, err := New(conn).ExecuteDir(ctx, dir, migrator.Up)
		require.Error(t, err)
		require.True(t, tableExists(t, conn, "users"))
	})
}
