package migrator

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/roadwork/pkg/consts"
)

// Supported migration directions.
const (
	Up Direction = iota
	Down
)

type (
	// Direction selects which half of a migration is applied.
	Direction int

	// Migration is a single migration directory in the canonical layout:
	//
	//	<root>/<YYYYMMDDHHMMSS>-<name>/
	//	    up.sql
	//	    down.sql
	//
	// UpSQL and DownSQL are empty until Load is called.
	Migration struct {
		// Name is the part of the directory name after the first "-".
		Name string

		// Timestamp is the part of the directory name before the first "-".
		Timestamp string

		// Dir is the path to the migration directory.
		Dir string

		UpSQL   string
		DownSQL string
	}
)

// ParseDirection parses "up" or "down" (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	default:
		return Up, errors.Errorf("invalid direction: %q", s)
	}
}

func (d Direction) String() string {
	if d == Down {
		return "down"
	}

	return "up"
}

// File returns the name of the SQL file applied in this direction.
func (d Direction) File() string {
	if d == Down {
		return consts.DownFile
	}

	return consts.UpFile
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Down {
		return Up
	}

	return Down
}

// DirName returns the directory name of the migration, "{Timestamp}-{Name}".
func (m *Migration) DirName() string {
	return m.Timestamp + "-" + m.Name
}

// Path returns the path to the SQL file for the given direction.
func (m *Migration) Path(d Direction) string {
	return filepath.Join(m.Dir, d.File())
}

// SQL returns the loaded SQL for the given direction.
func (m *Migration) SQL(d Direction) string {
	if d == Down {
		return m.DownSQL
	}

	return m.UpSQL
}

// Time parses the migration timestamp in local time.
func (m *Migration) Time() (time.Time, error) {
	ts, err := time.ParseInLocation(consts.TimestampFormat, m.Timestamp, time.Local)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid migration timestamp %q", m.Timestamp)
	}

	return ts, nil
}

// Load reads up.sql and down.sql from the migration directory. A missing
// down.sql is treated as empty; a missing up.sql is an error.
func (m *Migration) Load() error {
	up, err := os.ReadFile(m.Path(Up))
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", m.Path(Up))
	}

	down, err := os.ReadFile(m.Path(Down))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to read %s", m.Path(Down))
	}

	m.UpSQL = string(up)
	m.DownSQL = string(down)
	return nil
}

// ParseDirName splits a migration directory name on its first "-" into a
// timestamp and a name. ok is false when there is no "-" or either part is
// empty.
//
// Example:
//
//	ts, name, ok := migrator.ParseDirName("20240102150405-create_users")
//	// ts == "20240102150405", name == "create_users", ok == true
func ParseDirName(dirName string) (timestamp, name string, ok bool) {
	timestamp, name, ok = strings.Cut(dirName, "-")
	if !ok || timestamp == "" || name == "" {
		return "", "", false
	}

	return timestamp, name, true
}
