package executor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/roadwork/pkg/database"
	"github.com/pseudomuto/roadwork/pkg/migrator"
	"github.com/pseudomuto/roadwork/pkg/parser"
	"github.com/pseudomuto/roadwork/pkg/utils"
)

type (
	// Conn executes a single SQL statement. It is satisfied by
	// *database.Connection.
	Conn interface {
		Exec(ctx context.Context, query string, args ...any) (int64, error)
	}

	// Transactor is implemented by connections that can wrap statements in a
	// transaction. The Executor only uses it when transactions are enabled and
	// SupportsTransactionalDDL returns true.
	Transactor interface {
		SupportsTransactionalDDL() bool
		InTx(ctx context.Context, fn func(database.Execer) error) error
	}

	// Executor runs the SQL files of a migration directory in one direction.
	//
	// Each file is split into statements with parser.Split and the statements
	// are executed in order. Execution stops at the first failing statement.
	// Unless transactions are enabled (and supported), statements that ran
	// before the failure stay applied.
	Executor struct {
		conn          Conn
		transactional bool
	}

	// Option configures an Executor.
	Option func(*Executor)

	// Result summarizes a successful execution.
	Result struct {
		// Dir is the directory the files were read from.
		Dir string

		// Direction is the direction that was executed.
		Direction migrator.Direction

		// Files are the names of the files that were executed, in order.
		Files []string

		// Statements is the number of statements executed.
		Statements int

		// Hash is the h1 hash of the executed files' contents, concatenated in
		// execution order.
		Hash string

		// Duration is how long the execution took.
		Duration time.Duration
	}

	// StatementError reports the statement that stopped an execution.
	StatementError struct {
		Dir       string
		File      string
		Index     int
		Statement string
		Err       error
	}
)

// WithTransactions runs each file's statements inside a single transaction
// when the connection supports transactional DDL. It has no effect on MySQL
// or ClickHouse.
func WithTransactions(enabled bool) Option {
	return func(e *Executor) { e.transactional = enabled }
}

// New creates an Executor for conn.
//
// Example:
//
//	exec := executor.New(conn, executor.WithTransactions(true))
//	res, err := exec.ExecuteDir(ctx, mig.Dir, migrator.Up)
//	if err != nil {
//		var stmtErr *executor.StatementError
//		if errors.As(err, &stmtErr) {
//			fmt.Printf("%s statement %d failed: %s\n", stmtErr.File, stmtErr.Index, stmtErr.Statement)
//		}
//		return err
//	}
//
//	fmt.Printf("ran %d statements in %s\n", res.Statements, res.Duration)
func New(conn Conn, opts ...Option) *Executor {
	e := &Executor{conn: conn}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Error formats the failure with its location in the migration.
func (e *StatementError) Error() string {
	return fmt.Sprintf("%s: statement %d failed: %v\n%s", filepath.Join(e.Dir, e.File), e.Index+1, e.Err, e.Statement)
}

// Unwrap returns the database error.
func (e *StatementError) Unwrap() error {
	return e.Err
}

// Cause returns the database error for github.com/pkg/errors.Cause.
func (e *StatementError) Cause() error {
	return e.Err
}

// IsDownFile reports whether file is applied when migrating down: a .sql file
// whose name without the extension is "down". Every other .sql file is an up
// file.
func IsDownFile(file string) bool {
	return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)) == "down"
}

// Select returns the .sql files that apply to direction, sorted by name.
func Select(files []string, direction migrator.Direction) []string {
	selected := make([]string, 0, len(files))
	for _, file := range files {
		if filepath.Ext(file) != ".sql" {
			continue
		}

		if IsDownFile(file) != (direction == migrator.Down) {
			continue
		}

		selected = append(selected, file)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i] < selected[j]
	})

	return selected
}

// Execute runs the files (names relative to dir) that apply to direction.
//
// Files that aren't .sql or belong to the other direction are skipped. The
// remaining files are run in name order. A *StatementError is returned for
// the first statement that fails.
func (e *Executor) Execute(ctx context.Context, dir string, files []string, direction migrator.Direction) (*Result, error) {
	start := time.Now()
	res := &Result{Dir: dir, Direction: direction}

	var content strings.Builder
	for _, file := range Select(files, direction) {
		data, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", filepath.Join(dir, file))
		}

		content.Write(data)
		statements := parser.Split(string(data))
		slog.Info("Executing migration file", "dir", dir, "file", file, "direction", direction.String(), "statements", len(statements))

		if err := e.executeFile(ctx, dir, file, statements); err != nil {
			return nil, err
		}

		res.Files = append(res.Files, file)
		res.Statements += len(statements)
	}

	if len(res.Files) == 0 {
		slog.Warn("No migration files to execute", "dir", dir, "direction", direction.String())
	}

	res.Hash = utils.Hash(content.String())
	res.Duration = time.Since(start)

	slog.Info("Executed migration", "dir", dir, "direction", direction.String(), "statements", res.Statements, "duration", res.Duration)
	return res, nil
}

// ExecuteDir runs the files in dir that apply to direction. Subdirectories are
// ignored.
func (e *Executor) ExecuteDir(ctx context.Context, dir string, direction migrator.Direction) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read migration directory %s", dir)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}

	return e.Execute(ctx, dir, files, direction)
}

func (e *Executor) executeFile(ctx context.Context, dir, file string, statements []string) error {
	if len(statements) == 0 {
		return nil
	}

	if tx, ok := e.conn.(Transactor); ok && e.transactional {
		if tx.SupportsTransactionalDDL() {
			return tx.InTx(ctx, func(conn database.Execer) error {
				return run(ctx, conn, dir, file, statements)
			})
		}

		slog.Warn("Transactional DDL isn't supported by this database, statements will auto-commit", "file", file)
	}

	return run(ctx, e.conn, dir, file, statements)
}

func run(ctx context.Context, conn Conn, dir, file string, statements []string) error {
	for i, stmt := range statements {
		start := time.Now()
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return &StatementError{Dir: dir, File: file, Index: i, Statement: stmt, Err: err}
		}

		slog.Debug("Executed statement", "file", file, "index", i+1, "sql", stmt, "duration", time.Since(start))
	}

	return nil
}
