package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	. "github.com/pseudomuto/roadwork/pkg/database"
	"github.com/pseudomuto/roadwork/pkg/docker"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *Connection {
	t.Helper()

	conn, err := Connect(context.Background(), Config{
		Type: "sqlite",
		Name: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func countUsers(t *testing.T, conn *Connection) int {
	t.Helper()

	rows, err := conn.Query(context.Background(), "SELECT COUNT(*) FROM users")
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())

	var n int
	require.NoError(t, rows.Scan(&n))
	require.NoError(t, rows.Err())
	return n
}

func TestConnect(t *testing.T) {
	_, err := Connect(context.Background(), Config{Type: "sqlite"})
	require.ErrorContains(t, err, "requires a database file name")

	_, err = Connect(context.Background(), Config{Type: "db2"})
	require.ErrorContains(t, err, "unsupported database type")
}

func TestConnection_SQLite(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)

	require.Equal(t, SQLite, conn.Backend())
	require.True(t, conn.SupportsTransactionalDDL())
	require.Equal(t, "?", conn.Placeholder(1))
	require.NoError(t, conn.Ping(ctx))

	_, err := conn.Exec(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL)")
	require.NoError(t, err)

	n, err := conn.Exec(ctx, "INSERT INTO users (name) VALUES (?), (?)", "alice", "bob")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	rows, err := conn.Query(ctx, "SELECT name FROM users WHERE name = "+conn.Placeholder(1), "bob")
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var name string
	require.NoError(t, rows.Scan(&name))
	require.Equal(t, "bob", name)
	require.False(t, rows.Next())
}

func TestConnection_InTx(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)

	_, err := conn.Exec(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL)")
	require.NoError(t, err)

	t.Run("commits on success", func(t *testing.T) {
		err := conn.InTx(ctx, func(tx Execer) error {
			_, err := tx.Exec(ctx, "INSERT INTO users (name) VALUES ('alice')")
			return err
		})
		require.NoError(t, err)
		require.Equal(t, 1, countUsers(t, conn))
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := conn.InTx(ctx, func(tx Execer) error {
			if _, err := tx.Exec(ctx, "INSERT INTO users (name) VALUES ('bob')"); err != nil {
				return err
			}

			return boom
		})
		require.ErrorIs(t, err, boom)
		require.Equal(t, 1, countUsers(t, conn))
	})

	t.Run("rolls back DDL", func(t *testing.T) {
		err := conn.InTx(ctx, func(tx Execer) error {
			if _, err := tx.Exec(ctx, "CREATE TABLE posts (id INTEGER PRIMARY KEY)"); err != nil {
				return err
			}

			_, err := tx.Exec(ctx, "NOT VALID SQL")
			return err
		})
		require.Error(t, err)

		_, err = conn.Exec(ctx, "SELECT * FROM posts")
		require.ErrorContains(t, err, "no such table")
	})
}

func TestConnection_Closed(t *testing.T) {
	conn := &Connection{}
	require.ErrorContains(t, conn.Ping(context.Background()), "not open")
	require.NoError(t, conn.Close())
}

func TestConnection_ClickHouse(t *testing.T) {
	docker.SkipIfNoDocker(t)

	ctx := context.Background()
	ch := docker.New(docker.Options{Version: "25.7"})
	require.NoError(t, ch.Start(ctx))
	defer func() { _ = ch.Stop(ctx) }()

	cfg, err := ch.Config(ctx)
	require.NoError(t, err)

	conn, err := Connect(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.Equal(t, ClickHouse, conn.Backend())
	require.False(t, conn.SupportsTransactionalDDL())

	_, err = conn.Exec(ctx, "CREATE TABLE events (id UInt64, name String) ENGINE = MergeTree ORDER BY id")
	require.NoError(t, err)

	err = conn.InTx(ctx, func(tx Execer) error {
		_, err := tx.Exec(ctx, "INSERT INTO events VALUES (1, 'signup')")
		return err
	})
	require.NoError(t, err)

	rows, err := conn.Query(ctx, "SELECT name FROM events WHERE id = ?", uint64(1))
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var name string
	require.NoError(t, rows.Scan(&name))
	require.Equal(t, "signup", name)
}

// startServer starts server for the duration of the test and connects to it.
func startServer(t *testing.T, server docker.Server) *Connection {
	t.Helper()
	docker.SkipIfNoDocker(t)

	ctx := context.Background()
	require.NoError(t, server.Start(ctx))
	t.Cleanup(func() { _ = server.Stop(context.Background()) })

	cfg, err := server.Config(ctx)
	require.NoError(t, err)

	conn, err := Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func queryName(t *testing.T, conn *Connection, id int) string {
	t.Helper()

	rows, err := conn.Query(context.Background(), "SELECT name FROM widgets WHERE id = "+conn.Placeholder(1), id)
	require.NoError(t, err)
	defer rows.Close()

	if !rows.Next() {
		return ""
	}

	var name string
	require.NoError(t, rows.Scan(&name))
	return name
}

func TestConnection_Postgres(t *testing.T) {
	ctx := context.Background()
	conn := startServer(t, docker.NewPostgres(docker.Options{}))

	require.Equal(t, Postgres, conn.Backend())
	require.True(t, conn.SupportsTransactionalDDL())
	require.Equal(t, "$1", conn.Placeholder(1))

	_, err := conn.Exec(ctx, "CREATE TABLE widgets (id INT PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	n, err := conn.Exec(ctx, "INSERT INTO widgets VALUES ($1, $2), ($3, $4)", 1, "sprocket", 2, "gear")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	require.Equal(t, "sprocket", queryName(t, conn, 1))

	t.Run("commit", func(t *testing.T) {
		err := conn.InTx(ctx, func(tx Execer) error {
			_, err := tx.Exec(ctx, "INSERT INTO widgets VALUES ($1, $2)", 3, "cog")
			return err
		})
		require.NoError(t, err)
		require.Equal(t, "cog", queryName(t, conn, 3))
	})

	t.Run("rollback includes DDL", func(t *testing.T) {
		err := conn.InTx(ctx, func(tx Execer) error {
			if _, err := tx.Exec(ctx, "ALTER TABLE widgets ADD COLUMN color TEXT"); err != nil {
				return err
			}

			if _, err := tx.Exec(ctx, "INSERT INTO widgets VALUES ($1, $2)", 4, "bolt"); err != nil {
				return err
			}

			return errors.New("boom")
		})
		require.ErrorContains(t, err, "boom")
		require.Empty(t, queryName(t, conn, 4))

		_, err = conn.Exec(ctx, "SELECT color FROM widgets")
		require.Error(t, err)
	})
}

func TestConnection_MySQL(t *testing.T) {
	ctx := context.Background()
	conn := startServer(t, docker.NewMySQL(docker.Options{}))

	require.Equal(t, MySQL, conn.Backend())
	require.False(t, conn.SupportsTransactionalDDL())
	require.Equal(t, "?", conn.Placeholder(1))

	_, err := conn.Exec(ctx, "CREATE TABLE widgets (id INT PRIMARY KEY, name VARCHAR(64)) ENGINE=InnoDB")
	require.NoError(t, err)

	n, err := conn.Exec(ctx, "INSERT INTO widgets VALUES (?, ?), (?, ?)", 1, "sprocket", 2, "gear")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	require.Equal(t, "gear", queryName(t, conn, 2))

	err = conn.InTx(ctx, func(tx Execer) error {
		if _, err := tx.Exec(ctx, "INSERT INTO widgets VALUES (?, ?)", 3, "cog"); err != nil {
			return err
		}

		return errors.New("boom")
	})
	require.ErrorContains(t, err, "boom")
	require.Empty(t, queryName(t, conn, 3))
}
