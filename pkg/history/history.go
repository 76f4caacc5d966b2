package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/roadwork/pkg/consts"
	"github.com/pseudomuto/roadwork/pkg/database"
	"github.com/pseudomuto/roadwork/pkg/migrator"
	"github.com/pseudomuto/roadwork/pkg/utils"
)

// timeFormat sorts lexically in chronological order, which lets every backend
// store applied_at as plain text.
const timeFormat = "2006-01-02 15:04:05.000000"

type (
	// Conn is the database capability needed to read and write the history
	// table. It is satisfied by *database.Connection.
	Conn interface {
		Backend() database.Backend
		Placeholder(n int) string
		Exec(ctx context.Context, query string, args ...any) (int64, error)
		Query(ctx context.Context, query string, args ...any) (database.Rows, error)
	}

	// Entry is a single row of the history table: one execution of one
	// migration in one direction.
	Entry struct {
		// Name is the migration directory name ("{timestamp}-{name}"), which is
		// unique even when several migrations share a name.
		Name string

		Direction migrator.Direction

		// AppliedAt is when the execution finished, in UTC.
		AppliedAt time.Time

		// Hash is the h1 hash of the SQL file that was executed.
		Hash string
	}

	// Recorder reads and writes the migration history table.
	Recorder struct {
		conn    Conn
		table   string
		now     func() time.Time
		ensured bool
	}

	// Option configures a Recorder.
	Option func(*Recorder)
)

// WithTable overrides the history table name (default _roadwork_migrations).
func WithTable(table string) Option {
	return func(r *Recorder) { r.table = table }
}

// WithClock sets the clock used for applied_at.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// New creates a Recorder. The table is created lazily on first use, or
// explicitly with Ensure.
//
// Example:
//
//	rec := history.New(conn)
//	if err := rec.Record(ctx, mig.DirName(), migrator.Up, utils.Hash(mig.UpSQL)); err != nil {
//		slog.Warn("Failed to record migration", "error", err)
//	}
//
//	entries, err := rec.Load(ctx)
func New(conn Conn, opts ...Option) *Recorder {
	r := &Recorder{
		conn:  conn,
		table: consts.HistoryTable,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Table returns the name of the history table.
func (r *Recorder) Table() string {
	return r.table
}

// Ensure creates the history table if it doesn't exist.
func (r *Recorder) Ensure(ctx context.Context) error {
	if r.ensured {
		return nil
	}

	ddl, err := createTableSQL(r.conn.Backend(), r.quotedTable())
	if err != nil {
		return err
	}

	if _, err := r.conn.Exec(ctx, ddl); err != nil {
		return errors.Wrapf(err, "failed to create history table %s", r.table)
	}

	r.ensured = true
	return nil
}

// Record appends an entry for the migration directory name executed in the
// given direction. The hash must be produced by utils.Hash.
func (r *Recorder) Record(ctx context.Context, name string, direction migrator.Direction, hash string) error {
	if !utils.IsHash(hash) {
		return errors.Errorf("invalid hash %q for %s", hash, name)
	}

	if err := r.Ensure(ctx); err != nil {
		return err
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (name, direction, applied_at, hash) VALUES (%s, %s, %s, %s)",
		r.quotedTable(),
		r.conn.Placeholder(1),
		r.conn.Placeholder(2),
		r.conn.Placeholder(3),
		r.conn.Placeholder(4),
	)

	appliedAt := r.now().UTC().Format(timeFormat)
	if _, err := r.conn.Exec(ctx, query, name, direction.String(), appliedAt, hash); err != nil {
		return errors.Wrapf(err, "failed to record %s %s", direction, name)
	}

	slog.Debug("Recorded migration", "migration", name, "direction", direction.String())
	return nil
}

// Load returns every entry ordered by applied_at, oldest first. It doesn't
// create the table; a missing table has no entries.
func (r *Recorder) Load(ctx context.Context) ([]*Entry, error) {
	exists, err := r.Exists(ctx)
	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, nil
	}

	order := "applied_at, id"
	if r.conn.Backend() == database.ClickHouse {
		order = "applied_at"
	}

	rows, err := r.conn.Query(ctx, fmt.Sprintf(
		"SELECT name, direction, applied_at, hash FROM %s ORDER BY %s", r.quotedTable(), order,
	))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", r.table)
	}
	defer func() { _ = rows.Close() }()

	var entries []*Entry
	for rows.Next() {
		var (
			entry     Entry
			direction string
			appliedAt string
		)

		if err := rows.Scan(&entry.Name, &direction, &appliedAt, &entry.Hash); err != nil {
			return nil, errors.Wrap(err, "failed to scan history row")
		}

		if entry.Direction, err = migrator.ParseDirection(direction); err != nil {
			return nil, errors.Wrapf(err, "invalid history row for %s", entry.Name)
		}

		if entry.AppliedAt, err = time.ParseInLocation(timeFormat, appliedAt, time.UTC); err != nil {
			return nil, errors.Wrapf(err, "invalid applied_at for %s", entry.Name)
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate history rows")
	}

	return entries, nil
}

// Exists reports whether the history table has been created.
func (r *Recorder) Exists(ctx context.Context) (bool, error) {
	if r.ensured {
		return true, nil
	}

	var query string
	switch r.conn.Backend() {
	case database.Postgres:
		query = "SELECT 1 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = %s"
	case database.MySQL:
		query = "SELECT 1 FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = %s"
	case database.SQLite:
		query = "SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = %s"
	case database.ClickHouse:
		query = "SELECT 1 FROM system.tables WHERE database = currentDatabase() AND name = %s"
	default:
		return false, errors.Errorf("unsupported database backend: %q", r.conn.Backend())
	}

	rows, err := r.conn.Query(ctx, fmt.Sprintf(query, r.conn.Placeholder(1)), r.table)
	if err != nil {
		return false, errors.Wrapf(err, "failed to look up %s", r.table)
	}
	defer func() { _ = rows.Close() }()

	found := rows.Next()
	if err := rows.Err(); err != nil {
		return false, errors.Wrapf(err, "failed to look up %s", r.table)
	}

	return found, nil
}

func (r *Recorder) quotedTable() string {
	return r.conn.Backend().QuoteIdentifier(r.table)
}

func createTableSQL(backend database.Backend, table string) (string, error) {
	switch backend {
	case database.Postgres:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    direction VARCHAR(10) NOT NULL,
    applied_at VARCHAR(32) NOT NULL,
    hash VARCHAR(64) NOT NULL DEFAULT ''
)`, table), nil
	case database.MySQL:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id INT AUTO_INCREMENT PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    direction VARCHAR(10) NOT NULL,
    applied_at VARCHAR(32) NOT NULL,
    hash VARCHAR(64) NOT NULL DEFAULT ''
)`, table), nil
	case database.SQLite:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    direction TEXT NOT NULL,
    applied_at TEXT NOT NULL,
    hash TEXT NOT NULL DEFAULT ''
)`, table), nil
	case database.ClickHouse:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    name String,
    direction LowCardinality(String),
    applied_at String,
    hash String
)
ENGINE = MergeTree()
ORDER BY (applied_at, name)`, table), nil
	default:
		return "", errors.Errorf("unsupported database backend: %q", backend)
	}
}
