package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/pseudomuto/roadwork/pkg/config"
	"github.com/pseudomuto/roadwork/pkg/history"
	"github.com/pseudomuto/roadwork/pkg/migrator"
	"github.com/pseudomuto/roadwork/pkg/rogue"
	"github.com/urfave/cli/v3"
)

var stateColors = map[history.State]*color.Color{
	history.Applied:    color.New(color.FgGreen),
	history.RolledBack: color.New(color.FgYellow),
	history.Pending:    color.New(color.FgCyan),
}

// migration creates the migration command and its subcommands.
//
// Example usage:
//
//	roadwork migration generate create_users name:string:not_null email:string:unique
//	roadwork migration generate add_user_id_to_posts
//	roadwork migration list --status
//	roadwork migration all --auto-convert
//	roadwork migration rollback create_users
//	roadwork migration convert --remove-source
func migration(env config.Env) *cli.Command {
	return &cli.Command{
		Name:    "migration",
		Aliases: []string{"migrations", "m"},
		Usage:   "Generate, run and inspect migrations",
		Commands: []*cli.Command{
			generateCmd(env),
			listCmd(env),
			detectCmd(env),
			convertCmd(env),
			allCmd(env),
			runCmd(env),
			rollbackCmd(env),
			redoCmd(env),
			resetCmd(env),
		},
	}
}

func generateCmd(env config.Env) *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"new", "g"},
		Usage:     "Create a new migration",
		ArgsUsage: "<name> [column:type[:constraints]...]",
		Description: `Create config/database/migrations/<timestamp>-<name>/ with up.sql and down.sql.

Names of the form add_<columns>_to_<table> generate an ALTER TABLE that adds
the columns (with a foreign key for *_id columns). Any other name generates a
CREATE TABLE for a table of that name. Columns are written as
name:type[:constraints], where constraints are comma separated from
primary_key, not_null, unique and default=<value>.

Use --empty to create blank files instead.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "empty",
				Usage: "create empty up.sql and down.sql files",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := strings.TrimSpace(cmd.Args().First())
			if name == "" {
				return errors.New("a migration name is required")
			}

			proj, err := openProject(cmd, env)
			if err != nil {
				return err
			}

			store, err := proj.Store()
			if err != nil {
				return err
			}

			var mig *migrator.Migration
			if cmd.Bool("empty") {
				mig, err = store.Create(name)
			} else {
				var gen migrator.GeneratedSQL
				if gen, err = migrator.Generate(name, cmd.Args().Tail()); err != nil {
					return err
				}

				mig, err = store.CreateWith(name, gen.Up, gen.Down)
			}
			if err != nil {
				return err
			}

			w := cmd.Root().Writer
			fmt.Fprintf(w, "Created migration %s\n", mig.DirName())
			fmt.Fprintf(w, "  %s\n", mig.Path(migrator.Up))
			fmt.Fprintf(w, "  %s\n", mig.Path(migrator.Down))
			return nil
		},
	}
}

func listCmd(env config.Env) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "status",
				Usage: "show whether each migration is applied, rolled back or pending",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			proj, err := openProject(cmd, env)
			if err != nil {
				return err
			}

			store, err := proj.Store()
			if err != nil {
				return err
			}

			migrations, err := store.List()
			if err != nil {
				return err
			}

			w := cmd.Root().Writer
			if len(migrations) == 0 {
				fmt.Fprintf(w, "No migrations found in %s\n", store.Root())
				return nil
			}

			names := make([]string, len(migrations))
			for i, mig := range migrations {
				names[i] = mig.DirName()
			}

			if !cmd.Bool("status") {
				for _, name := range names {
					fmt.Fprintln(w, name)
				}

				return nil
			}

			conn, err := proj.Connect(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			entries, err := history.New(conn).Load(ctx)
			if err != nil {
				return err
			}

			writeStatus(w, history.Status(entries, names))
			return nil
		},
	}
}

func writeStatus(w io.Writer, statuses []*history.MigrationStatus) {
	width := len("MIGRATION")
	for _, st := range statuses {
		width = max(width, len(st.Name))
	}

	fmt.Fprintf(w, "%-*s  %-11s  %s\n", width, "MIGRATION", "STATUS", "LAST RUN")
	for _, st := range statuses {
		lastRun := "-"
		if !st.AppliedAt.IsZero() {
			lastRun = st.AppliedAt.Local().Format("2006-01-02 15:04:05")
		}

		state := stateColors[st.State].Sprintf("%-11s", st.State)
		fmt.Fprintf(w, "%-*s  %s  %s\n", width, st.Name, state, lastRun)
	}
}

func detectCmd(env config.Env) *cli.Command {
	return &cli.Command{
		Name:  "detect",
		Usage: "Report SQL migrations outside the migrations directory",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			proj, err := openProject(cmd, env)
			if err != nil {
				return err
			}

			detector, err := proj.Detector()
			if err != nil {
				return err
			}

			detected, err := detector.Detect()
			if err != nil {
				return err
			}

			w := cmd.Root().Writer
			if len(detected) == 0 {
				fmt.Fprintln(w, "No rogue migrations found.")
				return nil
			}

			rogue.Report(w, detected)
			fmt.Fprintln(w, "Run 'roadwork migration convert' to move them into place.")
			return nil
		},
	}
}

func convertCmd(env config.Env) *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Move SQL migrations from non-standard locations into the migrations directory",
		Description: `Detect SQL migrations in directories such as migrations/, db/migrate/ and
sql/, and recreate each one as <timestamp>-<name>/up.sql with a generated
down.sql. Operations that can't be reversed automatically are written as
WARNING comments in down.sql and should be reviewed.`,
		Flags: []cli.Flag{removeSourceFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			proj, err := openProject(cmd, env)
			if err != nil {
				return err
			}

			detector, err := proj.Detector()
			if err != nil {
				return err
			}

			detected, err := detector.Detect()
			if err != nil {
				return err
			}

			w := cmd.Root().Writer
			if len(detected) == 0 {
				fmt.Fprintln(w, "No rogue migrations found.")
				return nil
			}

			store, err := proj.Store()
			if err != nil {
				return err
			}

			rogue.Report(w, detected)

			removeSource := cmd.Bool("remove-source")
			converter := &rogue.Converter{Store: store, Detector: detector}
			results := converter.Convert(detected, removeSource)
			converted := rogue.ReportResults(w, results)

			if removeSource {
				for _, dir := range detector.CleanupEmpty() {
					fmt.Fprintf(w, "Removed empty directory %s\n", dir)
				}
			}

			if converted < len(results) {
				return errors.Errorf("%d of %d migrations failed to convert", len(results)-converted, len(results))
			}

			return nil
		},
	}
}
