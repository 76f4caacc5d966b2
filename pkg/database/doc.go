// Package database opens connections to the databases migrations run against.
//
// A Connection is a small tagged union over the supported backends:
//
//   - Postgres via github.com/jackc/pgx/v5 (pgxpool)
//   - MySQL via database/sql and github.com/go-sql-driver/mysql
//   - SQLite via database/sql and modernc.org/sqlite
//   - ClickHouse via github.com/ClickHouse/clickhouse-go/v2
//
// Callers only see backend-agnostic Exec and Query methods, plus the few
// places where dialects differ: Placeholder for bind parameters and
// SupportsTransactionalDDL/InTx for wrapping a migration in a transaction.
//
//	conn, err := database.Connect(ctx, cfg.Database)
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	_, err = conn.Exec(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY)")
package database
