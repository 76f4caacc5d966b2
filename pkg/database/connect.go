package database

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Connect opens a connection pool for cfg and verifies it with a ping.
//
//   - postgres uses a pgx connection pool
//   - mysql uses database/sql with go-sql-driver/mysql
//   - sqlite uses database/sql with modernc.org/sqlite (Name is the file path)
//   - clickhouse uses the native clickhouse-go connection
//
// Example:
//
//	conn, err := database.Connect(ctx, database.Config{Type: "sqlite", Name: "app.db"})
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
func Connect(ctx context.Context, cfg Config) (*Connection, error) {
	backend, err := cfg.Backend()
	if err != nil {
		return nil, err
	}

	var conn *Connection
	switch backend {
	case Postgres:
		conn, err = connectPostgres(ctx, cfg)
	case MySQL:
		conn, err = connectSQL(MySQL, "mysql", cfg.MySQLDSN())
	case SQLite:
		if cfg.Name == "" {
			return nil, errors.New("sqlite requires a database file name")
		}
		conn, err = connectSQL(SQLite, "sqlite", cfg.SQLiteDSN())
	case ClickHouse:
		conn, err = connectClickHouse(cfg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", cfg)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(err, "failed to ping %s", cfg)
	}

	slog.Debug("Connected to database", "target", cfg.String())
	return conn, nil
}

func connectPostgres(ctx context.Context, cfg Config) (*Connection, error) {
	pool, err := pgxpool.New(ctx, cfg.PostgresURL())
	if err != nil {
		return nil, err
	}

	return NewPostgresConnection(pool), nil
}

func connectSQL(backend Backend, driverName, dsn string) (*Connection, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	if backend == SQLite {
		// SQLite allows a single writer; one connection keeps transactions and
		// plain statements from contending for the file lock.
		db.SetMaxOpenConns(1)
	}

	return NewSQLConnection(backend, db), nil
}

func connectClickHouse(cfg Config) (*Connection, error) {
	settings := clickhouse.Settings{}
	for k, v := range cfg.Params {
		settings[k] = v
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Address()},
		Auth: clickhouse.Auth{
			Database: cfg.Name,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings: settings,
	})
	if err != nil {
		return nil, err
	}

	return NewClickHouseConnection(conn), nil
}
