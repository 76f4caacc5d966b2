package cmd

import (
	"context"
	"fmt"

	"github.com/pseudomuto/roadwork/pkg/config"
	"github.com/pseudomuto/roadwork/pkg/project"
	"github.com/urfave/cli/v3"
)

// initCmd creates the init command, which writes the configuration file for
// the current environment and creates the migrations root.
//
// Example usage:
//
//	roadwork init
//	roadwork init --database postgres --name blog_dev
//	ENVIRONMENT=test roadwork init --database sqlite --name db/test.db
func initCmd(env config.Env) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a roadwork project",
		Description: `Create roadwork.yaml (or roadwork.<env>.yaml when ENVIRONMENT is set) and
the config/database/migrations directory. Existing files are never
overwritten, so init is safe to run on an existing project.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "database",
				Usage: "database type: postgres, mysql, sqlite or clickhouse",
				Value: project.DefaultDatabaseType,
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "database name (file path for sqlite)",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			proj, err := openProject(cmd, env)
			if err != nil {
				return err
			}

			if err := proj.Initialize(project.InitOptions{
				Database: cmd.String("database"),
				Name:     cmd.String("name"),
			}); err != nil {
				return err
			}

			dir, err := proj.MigrationsDir()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.Root().Writer, "Initialized roadwork project in %s\n", proj.Root())
			fmt.Fprintf(cmd.Root().Writer, "  config:     %s\n", proj.ConfigPath())
			fmt.Fprintf(cmd.Root().Writer, "  migrations: %s\n", dir)
			return nil
		},
	}
}
