package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pseudomuto/roadwork/pkg/config"
	"github.com/pseudomuto/roadwork/pkg/project"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	// Params are the dependencies of Run.
	Params struct {
		fx.In

		Args       []string
		Commands   []*cli.Command `group:"commands"`
		Ctx        context.Context
		Lifecycle  fx.Lifecycle
		Shutdowner fx.Shutdowner
		Version    *Version
	}

	// Version is the build information shown by --version.
	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}
)

// dirFlag is the global project directory flag. Subcommands read it through
// the command lineage with cmd.String("dir").
func dirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "dir",
		Aliases:     []string{"d"},
		Usage:       "the project directory",
		Value:       ".",
		DefaultText: "Current directory",
		Config: cli.StringConfig{
			TrimSpace: true,
		},
	}
}

// Run creates and executes the roadwork CLI application with the injected
// commands and arguments. The fx app is shut down with exit code 1 when the
// command fails and 0 otherwise.
//
// Global Flags:
//   - --dir, -d: Project directory (defaults to current directory)
//
// Example usage:
//
//	roadwork init --database postgres
//	roadwork --dir /path/to/app migration generate create_users name:string:not_null
//	roadwork migration all --auto-convert
func Run(p Params) {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Writer, "Version:", p.Version.Version)
		fmt.Fprintln(cmd.Writer, "Commit:", p.Version.Commit)
		fmt.Fprintln(cmd.Writer, "Date:", p.Version.Timestamp)
	}

	app := &cli.Command{
		Name:  "roadwork",
		Usage: "A tool for managing SQL database migrations",
		Description: `roadwork manages timestamped SQL migrations for Postgres, MySQL, SQLite
and ClickHouse databases. Each migration is a directory with an up.sql and a
down.sql file under config/database/migrations.`,
		Version:  p.Version.Version,
		Flags:    []cli.Flag{dirFlag()},
		Commands: p.Commands,
	}

	// Migrations can outlast fx's start timeout, so the app runs outside the
	// start hook. The stop hook waits for it and returns its error, which makes
	// fx exit non-zero even when a signal started the shutdown.
	done := make(chan error, 1)
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				err := app.Run(p.Ctx, p.Args)
				done <- err

				if err != nil {
					slog.Error("Error running command", "err", err)
					_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
					return
				}

				_ = p.Shutdowner.Shutdown(fx.ExitCode(0))
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), "command did not finish")
			}
		},
	})
}

// openProject returns the project in the --dir directory for env.
func openProject(cmd *cli.Command, env config.Env) (*project.Project, error) {
	dir := cmd.String("dir")
	if dir == "" {
		dir = "."
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve project directory %s", dir)
	}

	return project.New(project.ProjectParams{Dir: abs, Env: string(env)}), nil
}

// requireProject fails commands that need a configuration file when the
// project hasn't been initialized.
func requireProject(env config.Env) func(context.Context, *cli.Command) (context.Context, error) {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		proj, err := openProject(cmd, env)
		if err != nil {
			return ctx, err
		}

		if !proj.IsInitialized() {
			return ctx, errors.Errorf("%s not found; run `roadwork init` first", config.FileName(string(env)))
		}

		return ctx, nil
	}
}
