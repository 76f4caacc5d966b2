// Package cmd provides the CLI commands for roadwork.
//
// Commands are built as *cli.Command values (urfave/cli/v3) and provided to
// the fx "commands" group by Module. Run assembles them into the root
// application and runs it from an fx start hook.
//
// # Available Commands
//
//   - init: Write roadwork.yaml and create the migrations directory
//   - migration generate: Create a timestamped migration, optionally with generated SQL
//   - migration list: List migrations, with --status showing the history table
//   - migration detect: Report SQL migrations outside the migrations directory
//   - migration convert: Move those migrations into place with a generated down.sql
//   - migration all / reset: Apply or roll back every migration
//   - migration run / rollback / redo: Work with a single migration by name
//
// # Global Options
//
//   - --dir, -d: Project directory (defaults to current directory)
//   - --help, -h: Display command help
//   - --version: Display version information
//
// The environment is selected with the ENVIRONMENT variable. The default
// environment reads roadwork.yaml and any other reads roadwork.<env>.yaml.
//
// # Example Usage
//
//	roadwork init --database postgres --name blog_dev
//	roadwork migration generate create_users name:string:not_null email:string:unique
//	roadwork migration all --auto-convert --remove-source
//	roadwork migration list --status
//	roadwork migration rollback create_users
//	ENVIRONMENT=test roadwork migration reset
package cmd
