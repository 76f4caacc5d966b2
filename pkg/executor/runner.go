package executor

import (
	"context"
	"log/slog"
	"slices"

	"github.com/pkg/errors"
	"github.com/pseudomuto/roadwork/pkg/history"
	"github.com/pseudomuto/roadwork/pkg/migrator"
)

// ErrNoMigrationsRoot is returned by RunAll when the migrations root doesn't
// exist.
var ErrNoMigrationsRoot = errors.New("migrations directory not found; create one with `roadwork migration generate <name>` or `roadwork init`")

type (
	// Recorder stores the outcome of each migration run. It is satisfied by
	// *history.Recorder.
	Recorder interface {
		Record(ctx context.Context, name string, direction migrator.Direction, hash string) error
	}

	// RunnerParams are the dependencies of a Runner.
	RunnerParams struct {
		Store      *migrator.Store
		Connection Conn

		// History is optional. When set, every successful run is recorded.
		History Recorder

		// Transactional runs each file inside a transaction where supported.
		Transactional bool
	}

	// Runner resolves migrations in a Store and executes them.
	Runner struct {
		store    *migrator.Store
		executor *Executor
		history  Recorder
	}
)

var _ Recorder = (*history.Recorder)(nil)

// NewRunner creates a Runner.
//
// Example:
//
//	runner := executor.NewRunner(executor.RunnerParams{
//		Store:      migrator.NewStore(cfg.Migrations.Dir),
//		Connection: conn,
//		History:    history.New(conn),
//	})
//
//	if _, err := runner.RunAll(ctx, migrator.Up); err != nil {
//		return err
//	}
func NewRunner(p RunnerParams) *Runner {
	return &Runner{
		store:    p.Store,
		executor: New(p.Connection, WithTransactions(p.Transactional)),
		history:  p.History,
	}
}

// Run finds the migration called name and executes it in direction.
func (r *Runner) Run(ctx context.Context, name string, direction migrator.Direction) (*Result, error) {
	mig, err := r.store.Find(name)
	if err != nil {
		return nil, err
	}

	return r.run(ctx, mig, direction)
}

// RunAll executes every migration in the store: oldest first for Up, newest
// first for Down. It stops at the first failure, returning the results of the
// migrations that succeeded and an error naming the one that failed.
func (r *Runner) RunAll(ctx context.Context, direction migrator.Direction) ([]*Result, error) {
	if !r.store.Exists() {
		return nil, errors.Wrapf(ErrNoMigrationsRoot, "%s", r.store.Root())
	}

	migrations, err := r.store.List()
	if err != nil {
		return nil, err
	}

	if len(migrations) == 0 {
		slog.Info("No migrations found", "dir", r.store.Root())
		return nil, nil
	}

	if direction == migrator.Down {
		slices.Reverse(migrations)
	}

	results := make([]*Result, 0, len(migrations))
	for _, mig := range migrations {
		res, err := r.run(ctx, mig, direction)
		if err != nil {
			return results, err
		}

		results = append(results, res)
	}

	slog.Info("Finished running migrations", "direction", direction.String(), "count", len(results))
	return results, nil
}

// Redo rolls the migration called name back and then applies it again,
// returning the results of both halves. The two halves aren't atomic: if the
// up half fails, the migration stays rolled back.
func (r *Runner) Redo(ctx context.Context, name string) ([]*Result, error) {
	mig, err := r.store.Find(name)
	if err != nil {
		return nil, err
	}

	down, err := r.run(ctx, mig, migrator.Down)
	if err != nil {
		return nil, err
	}

	up, err := r.run(ctx, mig, migrator.Up)
	if err != nil {
		return []*Result{down}, err
	}

	return []*Result{down, up}, nil
}

func (r *Runner) run(ctx context.Context, mig *migrator.Migration, direction migrator.Direction) (*Result, error) {
	slog.Info("Running migration", "migration", mig.DirName(), "direction", direction.String())

	res, err := r.executor.ExecuteDir(ctx, mig.Dir, direction)
	if err != nil {
		return nil, errors.Wrapf(err, "migration %s (%s) failed", mig.DirName(), direction)
	}

	if r.history != nil {
		if err := r.history.Record(ctx, mig.DirName(), direction, res.Hash); err != nil {
			slog.Warn("Failed to record migration history", "migration", mig.DirName(), "error", err)
		}
	}

	return res, nil
}
