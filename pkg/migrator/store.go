package migrator

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/roadwork/pkg/consts"
)

type (
	// Store owns the migrations root directory and the
	// <timestamp>-<name>/{up.sql,down.sql} layout beneath it.
	Store struct {
		root    string
		now     func() time.Time
		chooser Chooser
	}

	// StoreOption configures a Store.
	StoreOption func(*Store)
)

// WithClock sets the clock used to timestamp new migrations.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithChooser sets the Chooser used by Find when several migrations share a
// name. The default is NonInteractive.
func WithChooser(c Chooser) StoreOption {
	return func(s *Store) { s.chooser = c }
}

// NewStore creates a Store rooted at root. The directory doesn't need to exist
// yet; it is created on the first Create.
//
// Example:
//
//	store := migrator.NewStore("config/database/migrations",
//		migrator.WithChooser(&migrator.PromptChooser{In: os.Stdin, Out: os.Stdout}),
//	)
//
//	mig, err := store.Create("create_users")
//	if err != nil {
//		return err
//	}
//
//	fmt.Println(mig.Dir) // config/database/migrations/20240102150405-create_users
func NewStore(root string, opts ...StoreOption) *Store {
	s := &Store{
		root:    root,
		now:     time.Now,
		chooser: NonInteractive,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Root returns the migrations root directory.
func (s *Store) Root() string {
	return s.root
}

// Now returns the current time according to the Store's clock.
func (s *Store) Now() time.Time {
	return s.now()
}

// Exists reports whether the migrations root exists and is a directory.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.root)
	return err == nil && info.IsDir()
}

// Create creates a new, empty migration named name.
//
// The directory is "{root}/{now:YYYYMMDDHHMMSS}-{name}" and contains empty
// up.sql and down.sql files. The root is created if needed. ErrAlreadyExists
// is returned when the directory is already present.
func (s *Store) Create(name string) (*Migration, error) {
	return s.CreateWith(name, "", "")
}

// CreateWith creates a new migration like Create and writes up and down as the
// contents of up.sql and down.sql. If writing down.sql fails the directory is
// left with only up.sql and the error is returned.
func (s *Store) CreateWith(name, up, down string) (*Migration, error) {
	return s.CreateAt(s.now(), name, up, down)
}

// CreateAt is CreateWith with an explicit timestamp. It is used when several
// migrations are created at once and must keep their relative order.
func (s *Store) CreateAt(ts time.Time, name, up, down string) (*Migration, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.root, consts.ModeDir); err != nil {
		return nil, errors.Wrapf(err, "failed to create migrations root %s", s.root)
	}

	mig := &Migration{
		Name:      name,
		Timestamp: ts.Format(consts.TimestampFormat),
	}
	mig.Dir = filepath.Join(s.root, mig.DirName())

	if err := os.Mkdir(mig.Dir, consts.ModeDir); err != nil {
		if os.IsExist(err) {
			return nil, errors.Wrapf(ErrAlreadyExists, "%s", mig.Dir)
		}

		return nil, errors.Wrapf(err, "failed to create migration directory %s", mig.Dir)
	}

	if err := os.WriteFile(mig.Path(Up), []byte(up), consts.ModeFile); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", mig.Path(Up))
	}

	if err := os.WriteFile(mig.Path(Down), []byte(down), consts.ModeFile); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", mig.Path(Down))
	}

	mig.UpSQL = up
	mig.DownSQL = down

	slog.Debug("Created migration", "dir", mig.Dir)
	return mig, nil
}

// List returns all migrations under the root sorted ascending by directory
// name, which is chronological for timestamp prefixes. A missing root yields an
// empty list. Directories without a "-" are skipped.
func (s *Store) List() ([]*Migration, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, errors.Wrapf(err, "failed to read migrations root %s", s.root)
	}

	var migrations []*Migration
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		ts, name, ok := ParseDirName(entry.Name())
		if !ok {
			slog.Debug("Skipping directory without a timestamp prefix", "dir", entry.Name())
			continue
		}

		migrations = append(migrations, &Migration{
			Name:      name,
			Timestamp: ts,
			Dir:       filepath.Join(s.root, entry.Name()),
		})
	}

	sort.SliceStable(migrations, func(i, j int) bool {
		return migrations[i].DirName() < migrations[j].DirName()
	})

	return migrations, nil
}

// Find returns the migration whose name (the part after the first "-") equals
// name exactly.
//
// When more than one directory matches, the Store's Chooser picks one. The
// default NonInteractive chooser returns ErrAmbiguousMatch. ErrNotFound is
// returned when nothing matches.
func (s *Store) Find(name string) (*Migration, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	var candidates []*Migration
	for _, mig := range all {
		if mig.Name == name {
			candidates = append(candidates, mig)
		}
	}

	switch len(candidates) {
	case 0:
		return nil, errors.Wrapf(ErrNotFound, "%q in %s", name, s.root)
	case 1:
		return candidates[0], nil
	default:
		slog.Debug("Multiple migrations match", "name", name, "count", len(candidates))
		return s.chooser.Choose(name, candidates)
	}
}

// ValidateName checks that name can be used as a migration directory suffix.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.Wrap(ErrInvalidName, "name is empty")
	case strings.ContainsAny(name, `/\`):
		return errors.Wrapf(ErrInvalidName, "%q contains a path separator", name)
	case strings.HasPrefix(name, "-"), strings.HasPrefix(name, "."):
		return errors.Wrapf(ErrInvalidName, "%q must start with a letter, digit or underscore", name)
	}

	return nil
}
