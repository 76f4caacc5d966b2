package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/pseudomuto/roadwork/pkg/config"
	"github.com/pseudomuto/roadwork/pkg/executor"
	"github.com/pseudomuto/roadwork/pkg/history"
	"github.com/pseudomuto/roadwork/pkg/migrator"
	"github.com/pseudomuto/roadwork/pkg/project"
	"github.com/pseudomuto/roadwork/pkg/rogue"
	"github.com/urfave/cli/v3"
)

var doneMarker = color.New(color.FgGreen).Sprint("[OK]")

func removeSourceFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "remove-source",
		Usage: "delete rogue migration sources after converting them",
	}
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "auto-convert",
			Usage: "convert rogue migrations into the migrations directory before running",
		},
		removeSourceFlag(),
		&cli.BoolFlag{
			Name:  "transactional",
			Usage: "run each migration file in a transaction (Postgres and SQLite)",
		},
	}
}

func allCmd(env config.Env) *cli.Command {
	return &cli.Command{
		Name:   "all",
		Usage:  "Apply every migration, oldest first",
		Flags:  runFlags(),
		Before: requireProject(env),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withRunner(ctx, cmd, env, func(r *executor.Runner) ([]*executor.Result, error) {
				return r.RunAll(ctx, migrator.Up)
			})
		},
	}
}

func resetCmd(env config.Env) *cli.Command {
	return &cli.Command{
		Name:   "reset",
		Usage:  "Roll back every migration, newest first",
		Flags:  runFlags(),
		Before: requireProject(env),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withRunner(ctx, cmd, env, func(r *executor.Runner) ([]*executor.Result, error) {
				return r.RunAll(ctx, migrator.Down)
			})
		},
	}
}

func runCmd(env config.Env) *cli.Command {
	return namedRunCmd(env, "run", "Apply a single migration", migrator.Up)
}

func rollbackCmd(env config.Env) *cli.Command {
	return namedRunCmd(env, "rollback", "Roll back a single migration", migrator.Down)
}

func namedRunCmd(env config.Env, name, usage string, direction migrator.Direction) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<name>",
		Flags:     runFlags(),
		Before:    requireProject(env),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			migName, err := migrationName(cmd)
			if err != nil {
				return err
			}

			return withRunner(ctx, cmd, env, func(r *executor.Runner) ([]*executor.Result, error) {
				res, err := r.Run(ctx, migName, direction)
				if err != nil {
					return nil, err
				}

				return []*executor.Result{res}, nil
			})
		},
	}
}

func redoCmd(env config.Env) *cli.Command {
	return &cli.Command{
		Name:      "redo",
		Usage:     "Roll back a migration and apply it again",
		ArgsUsage: "<name>",
		Flags:     runFlags(),
		Before:    requireProject(env),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			migName, err := migrationName(cmd)
			if err != nil {
				return err
			}

			return withRunner(ctx, cmd, env, func(r *executor.Runner) ([]*executor.Result, error) {
				return r.Redo(ctx, migName)
			})
		},
	}
}

func migrationName(cmd *cli.Command) (string, error) {
	name := strings.TrimSpace(cmd.Args().First())
	if name == "" {
		return "", errors.New("a migration name is required")
	}

	return name, nil
}

// withRunner handles rogue migrations, connects to the project database and
// calls fn with a Runner, then prints the results.
func withRunner(
	ctx context.Context,
	cmd *cli.Command,
	env config.Env,
	fn func(*executor.Runner) ([]*executor.Result, error),
) error {
	proj, err := openProject(cmd, env)
	if err != nil {
		return err
	}

	cfg, err := proj.Config()
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	store, err := proj.Store(migrator.WithChooser(&migrator.PromptChooser{In: cmd.Root().Reader, Out: w}))
	if err != nil {
		return err
	}

	if err := handleRogue(cmd, proj, store); err != nil {
		return err
	}

	conn, err := proj.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	runner := executor.NewRunner(executor.RunnerParams{
		Store:         store,
		Connection:    conn,
		History:       history.New(conn),
		Transactional: cfg.Migrations.Transactional || cmd.Bool("transactional"),
	})

	results, err := fn(runner)
	for _, res := range results {
		fmt.Fprintf(w, "%s %s %s (%d statements in %s)\n",
			doneMarker, res.Direction, filepath.Base(res.Dir), res.Statements, res.Duration.Round(time.Microsecond),
		)
	}

	return err
}

// handleRogue converts rogue migrations when --auto-convert is set and warns
// about them otherwise.
func handleRogue(cmd *cli.Command, proj *project.Project, store *migrator.Store) error {
	detector, err := proj.Detector()
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	if !cmd.Bool("auto-convert") {
		_, err := detector.Warn(w)
		return err
	}

	converter := &rogue.Converter{Store: store, Detector: detector}
	if _, err := converter.DetectAndConvert(w, true, cmd.Bool("remove-source")); err != nil {
		return err
	}

	if cmd.Bool("remove-source") {
		detector.CleanupEmpty()
	}

	return nil
}
