package consts

import "os"

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)

	// ConfigFile is the name of the default project configuration file
	ConfigFile = "roadwork.yaml"

	// DefaultEnvironment is the environment that maps to ConfigFile
	DefaultEnvironment = "dev"

	// DefaultMigrationsDir is the canonical migrations root, relative to the project
	DefaultMigrationsDir = "config/database/migrations"

	// UpFile is the name of the file applied when migrating up
	UpFile = "up.sql"

	// DownFile is the name of the file applied when migrating down
	DownFile = "down.sql"

	// TimestampFormat is the layout of the migration directory prefix (YYYYMMDDHHMMSS)
	TimestampFormat = "20060102150405"

	// HistoryTable is the table used to track executed migrations
	HistoryTable = "_roadwork_migrations"
)
