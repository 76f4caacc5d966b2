package rogue

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/roadwork/pkg/consts"
	"github.com/pseudomuto/roadwork/pkg/parser"
)

// DefaultLocations are the project-relative directories scanned for migrations
// that were written outside the canonical root.
var DefaultLocations = []string{
	"migrations",
	"migration",
	"db/migrations",
	"db/migrate",
	"database/migrations",
	"sql/migrations",
	"sql",
}

type (
	// DetectedMigration is a migration found outside the canonical root.
	DetectedMigration struct {
		// SourcePath is the .sql file or, for pre-structured migrations, the
		// directory containing up.sql.
		SourcePath string

		// Name is the migration name derived from the file or directory name.
		Name string

		// SQL is the up SQL of the migration.
		SQL string

		// DownSQL is the contents of a sibling down.sql for pre-structured
		// migrations, if any.
		DownSQL string

		// Operations are the parsed statements of SQL.
		Operations []parser.Operation
	}

	// Detector scans a project for rogue migrations.
	Detector struct {
		projectDir string
		root       string
		locations  []string
	}

	// DetectorOption configures a Detector.
	DetectorOption func(*Detector)
)

// WithLocations replaces the project-relative directories that are scanned.
func WithLocations(locations []string) DetectorOption {
	return func(d *Detector) { d.locations = locations }
}

// WithCanonicalRoot sets the migrations root, relative to the project dir
// unless absolute. It is never scanned, even if it is one of the locations.
func WithCanonicalRoot(root string) DetectorOption {
	return func(d *Detector) { d.root = root }
}

// NewDetector creates a Detector for the project at projectDir.
//
// Example:
//
//	detector := rogue.NewDetector(".")
//	detected, err := detector.Detect()
//	if err != nil {
//		return err
//	}
//
//	for _, mig := range detected {
//		fmt.Printf("%s (from %s)\n", mig.Name, mig.SourcePath)
//	}
func NewDetector(projectDir string, opts ...DetectorOption) *Detector {
	d := &Detector{
		projectDir: projectDir,
		root:       consts.DefaultMigrationsDir,
		locations:  DefaultLocations,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// CanonicalRoot returns the path of the canonical migrations root.
func (d *Detector) CanonicalRoot() string {
	return d.path(d.root)
}

// Detect scans the configured locations and loose .sql files in the project
// directory.
//
// In a scanned location, a directory containing up.sql is a pre-structured
// migration named after the directory, any other directory is scanned
// recursively, and every .sql file is a candidate. Loose .sql files in the
// project directory are only candidates when LooksLikeMigration accepts their
// name. Each source is reported once even when locations overlap.
func (d *Detector) Detect() ([]*DetectedMigration, error) {
	var (
		detected []*DetectedMigration
		seen     = make(map[string]bool)
	)

	add := func(mig *DetectedMigration) {
		if !seen[mig.SourcePath] {
			seen[mig.SourcePath] = true
			detected = append(detected, mig)
		}
	}

	for _, loc := range d.locations {
		dir := d.path(loc)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}

		if d.isCanonical(dir) {
			continue
		}

		slog.Info("Scanning rogue migration directory", "dir", loc)
		d.scan(dir, add)
	}

	entries, err := os.ReadDir(d.projectDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read project directory %s", d.projectDir)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}

		stem := strings.TrimSuffix(entry.Name(), ".sql")
		if !LooksLikeMigration(stem) {
			continue
		}

		mig, err := parseFile(filepath.Join(d.projectDir, entry.Name()))
		if err != nil {
			slog.Warn("Skipping unreadable SQL file", "file", entry.Name(), "error", err)
			continue
		}

		add(mig)
	}

	return detected, nil
}

func (d *Detector) scan(dir string, add func(*DetectedMigration)) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Warn("Skipping unreadable directory", "dir", dir, "error", err)
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		switch {
		case entry.IsDir():
			if d.isCanonical(path) {
				continue
			}

			if isFile(filepath.Join(path, consts.UpFile)) {
				mig, err := parseDir(path)
				if err != nil {
					slog.Warn("Skipping unreadable migration directory", "dir", path, "error", err)
					continue
				}

				add(mig)
				continue
			}

			d.scan(path, add)
		case entry.Type().IsRegular() && filepath.Ext(entry.Name()) == ".sql":
			mig, err := parseFile(path)
			if err != nil {
				slog.Warn("Skipping unreadable SQL file", "file", path, "error", err)
				continue
			}

			add(mig)
		}
	}
}

// CleanupEmpty removes scanned locations that are empty directories and
// returns the ones removed. Failures are logged and skipped.
func (d *Detector) CleanupEmpty() []string {
	var removed []string
	for _, loc := range d.locations {
		dir := d.path(loc)
		if d.isCanonical(dir) {
			continue
		}

		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}

		if err := os.Remove(dir); err != nil {
			slog.Warn("Could not remove empty directory", "dir", dir, "error", err)
			continue
		}

		slog.Info("Removed empty directory", "dir", loc)
		removed = append(removed, loc)
	}

	return removed
}

func (d *Detector) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(d.projectDir, p)
}

// isCanonical reports whether path is the canonical root or inside it.
func (d *Detector) isCanonical(path string) bool {
	root, err := filepath.Abs(d.CanonicalRoot())
	if err != nil {
		return false
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func parseFile(path string) (*DetectedMigration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	sql := string(data)
	return &DetectedMigration{
		SourcePath: path,
		Name:       ExtractName(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))),
		SQL:        sql,
		Operations: parser.Parse(sql),
	}, nil
}

func parseDir(dir string) (*DetectedMigration, error) {
	up, err := os.ReadFile(filepath.Join(dir, consts.UpFile))
	if err != nil {
		return nil, err
	}

	down, err := os.ReadFile(filepath.Join(dir, consts.DownFile))
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	sql := string(up)
	return &DetectedMigration{
		SourcePath: dir,
		Name:       ExtractName(filepath.Base(dir)),
		SQL:        sql,
		DownSQL:    string(down),
		Operations: parser.Parse(sql),
	}, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
