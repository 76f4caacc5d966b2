package database

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type (
	// Execer runs a single statement and reports the rows affected (0 when the
	// backend doesn't report it).
	Execer interface {
		Exec(ctx context.Context, query string, args ...any) (int64, error)
	}

	// Rows is the subset of a result set used by callers, satisfied by
	// *sql.Rows and ClickHouse's driver.Rows.
	Rows interface {
		Next() bool
		Scan(dest ...any) error
		Err() error
		Close() error
	}

	// Connection is an open connection pool to one of the supported backends.
	// Exactly one of the underlying handles is set, selected by the backend.
	Connection struct {
		backend Backend
		pool    *pgxpool.Pool
		db      *sql.DB
		ch      driver.Conn
	}

	// pgxRows adapts pgx.Rows, whose Close doesn't return an error.
	pgxRows struct {
		pgx.Rows
	}

	// execFunc adapts a function to the Execer interface.
	execFunc func(ctx context.Context, query string, args ...any) (int64, error)
)

// NewSQLConnection wraps an existing database/sql pool for the MySQL or SQLite
// backend.
func NewSQLConnection(backend Backend, db *sql.DB) *Connection {
	return &Connection{backend: backend, db: db}
}

// NewPostgresConnection wraps an existing pgx pool.
func NewPostgresConnection(pool *pgxpool.Pool) *Connection {
	return &Connection{backend: Postgres, pool: pool}
}

// NewClickHouseConnection wraps an existing ClickHouse native connection.
func NewClickHouseConnection(conn driver.Conn) *Connection {
	return &Connection{backend: ClickHouse, ch: conn}
}

// Backend returns the backend this connection talks to.
func (c *Connection) Backend() Backend {
	return c.backend
}

// SupportsTransactionalDDL reports whether InTx can roll back schema changes.
func (c *Connection) SupportsTransactionalDDL() bool {
	return c.backend.SupportsTransactionalDDL()
}

// Placeholder returns the bind parameter marker for the n-th (1-based)
// argument: "$n" for Postgres and "?" otherwise.
func (c *Connection) Placeholder(n int) string {
	if c.backend == Postgres {
		return "$" + strconv.Itoa(n)
	}

	return "?"
}

// Ping verifies the connection is alive.
func (c *Connection) Ping(ctx context.Context) error {
	switch {
	case c.pool != nil:
		return c.pool.Ping(ctx)
	case c.db != nil:
		return c.db.PingContext(ctx)
	case c.ch != nil:
		return c.ch.Ping(ctx)
	default:
		return errors.New("connection is not open")
	}
}

// Exec runs a single statement.
func (c *Connection) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	switch {
	case c.pool != nil:
		tag, err := c.pool.Exec(ctx, query, args...)
		if err != nil {
			return 0, err
		}

		return tag.RowsAffected(), nil
	case c.db != nil:
		return sqlExec(ctx, c.db, query, args...)
	case c.ch != nil:
		return 0, c.ch.Exec(ctx, query, args...)
	default:
		return 0, errors.New("connection is not open")
	}
}

// Query runs a statement that returns rows. The caller must close the Rows.
func (c *Connection) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	switch {
	case c.pool != nil:
		rows, err := c.pool.Query(ctx, query, args...)
		if err != nil {
			return nil, err
		}

		return &pgxRows{Rows: rows}, nil
	case c.db != nil:
		rows, err := c.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}

		return rows, nil
	case c.ch != nil:
		return c.ch.Query(ctx, query, args...)
	default:
		return nil, errors.New("connection is not open")
	}
}

// InTx runs fn inside a transaction, committing when fn returns nil and rolling
// back otherwise.
//
// ClickHouse has no transactions, so fn runs directly against the connection.
// On MySQL the transaction is real but DDL statements commit implicitly.
func (c *Connection) InTx(ctx context.Context, fn func(Execer) error) error {
	switch {
	case c.pool != nil:
		tx, err := c.pool.Begin(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to begin transaction")
		}

		err = fn(execFunc(func(ctx context.Context, query string, args ...any) (int64, error) {
			tag, err := tx.Exec(ctx, query, args...)
			if err != nil {
				return 0, err
			}

			return tag.RowsAffected(), nil
		}))
		if err != nil {
			_ = tx.Rollback(ctx)
			return err
		}

		return errors.Wrap(tx.Commit(ctx), "failed to commit transaction")
	case c.db != nil:
		tx, err := c.db.BeginTx(ctx, nil)
		if err != nil {
			return errors.Wrap(err, "failed to begin transaction")
		}

		err = fn(execFunc(func(ctx context.Context, query string, args ...any) (int64, error) {
			return sqlExec(ctx, tx, query, args...)
		}))
		if err != nil {
			_ = tx.Rollback()
			return err
		}

		return errors.Wrap(tx.Commit(), "failed to commit transaction")
	default:
		return fn(c)
	}
}

// Close releases the underlying pool.
func (c *Connection) Close() error {
	switch {
	case c.pool != nil:
		c.pool.Close()
		return nil
	case c.db != nil:
		return c.db.Close()
	case c.ch != nil:
		return c.ch.Close()
	default:
		return nil
	}
}

func (r *pgxRows) Close() error {
	r.Rows.Close()
	return nil
}

func (f execFunc) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return f(ctx, query, args...)
}

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func sqlExec(ctx context.Context, db sqlExecer, query string, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	// Not every driver can report affected rows for DDL.
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}

	return n, nil
}
