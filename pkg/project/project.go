package project

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing/fstest"

	"github.com/pkg/errors"
	"github.com/pseudomuto/roadwork/pkg/config"
	"github.com/pseudomuto/roadwork/pkg/consts"
	"github.com/pseudomuto/roadwork/pkg/database"
	"github.com/pseudomuto/roadwork/pkg/migrator"
	"github.com/pseudomuto/roadwork/pkg/rogue"
)

// Defaults used by Initialize.
const (
	DefaultDatabaseType = "sqlite"
	DefaultDatabaseName = "db/development.db"
)

type (
	// InitOptions contains options for project initialization.
	InitOptions struct {
		// Database is the database type written to roadwork.yaml
		// (default: sqlite)
		Database string

		// Name is the database name, or the file path for SQLite
		// (default: db/development.db)
		Name string
	}

	// ProjectParams are the inputs to New.
	ProjectParams struct {
		// Dir is the project root
		Dir string

		// Env selects the configuration file (see config.FileName)
		Env string
	}

	// Project is a directory managed by roadwork: a configuration file per
	// environment and a canonical migrations root.
	Project struct {
		root   string
		env    string
		config *config.Config
	}
)

// New creates a Project rooted at p.Dir. Nothing is read until it's needed.
//
// Example:
//
//	proj := project.New(project.ProjectParams{Dir: ".", Env: config.Environment()})
//
//	store, err := proj.Store()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	mig, err := store.Create("create_users")
func New(p ProjectParams) *Project {
	env := p.Env
	if env == "" {
		env = consts.DefaultEnvironment
	}

	return &Project{root: p.Dir, env: env}
}

// Root returns the project directory.
func (p *Project) Root() string {
	return p.root
}

// Env returns the selected environment.
func (p *Project) Env() string {
	return p.env
}

// ConfigPath returns the path of the configuration file for the environment.
func (p *Project) ConfigPath() string {
	return filepath.Join(p.root, config.FileName(p.env))
}

// IsInitialized reports whether the configuration file for the environment
// exists.
func (p *Project) IsInitialized() bool {
	_, err := os.Stat(p.ConfigPath())
	return err == nil
}

// Initialize creates the configuration file and the migrations root. It is
// idempotent: existing files and directories are left untouched.
//
// Example:
//
//	proj := project.New(project.ProjectParams{Dir: "/path/to/app"})
//	if err := proj.Initialize(project.InitOptions{Database: "postgres", Name: "app"}); err != nil {
//		log.Fatal("Failed to initialize project:", err)
//	}
func (p *Project) Initialize(options InitOptions) error {
	if err := p.ensureDirectory(); err != nil {
		return err
	}

	image, err := p.image(options)
	if err != nil {
		return err
	}

	for path, entry := range image {
		fullPath := filepath.Join(p.root, path)

		if _, err := os.Stat(fullPath); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return errors.Wrapf(err, "failed to stat %s", fullPath)
		}

		if entry.Mode.IsDir() {
			if err := os.MkdirAll(fullPath, consts.ModeDir); err != nil {
				return errors.Wrapf(err, "failed to create directory %s", fullPath)
			}

			continue
		}

		if err := os.MkdirAll(filepath.Dir(fullPath), consts.ModeDir); err != nil {
			return errors.Wrapf(err, "failed to create parent directory %s", filepath.Dir(fullPath))
		}

		if err := os.WriteFile(fullPath, entry.Data, consts.ModeFile); err != nil {
			return errors.Wrapf(err, "failed to write file %s", fullPath)
		}
	}

	p.config = nil
	dir, err := p.MigrationsDir()
	if err != nil {
		return err
	}

	return errors.Wrapf(os.MkdirAll(dir, consts.ModeDir), "failed to create migrations directory %s", dir)
}

// Config loads the configuration for the environment. The result is cached.
func (p *Project) Config() (*config.Config, error) {
	if p.config != nil {
		return p.config, nil
	}

	cfg, err := config.Load(p.root, p.env)
	if err != nil {
		return nil, err
	}

	p.config = cfg
	return cfg, nil
}

// MigrationsDir returns the canonical migrations root. Without a
// configuration file the default config/database/migrations is used.
func (p *Project) MigrationsDir() (string, error) {
	dir := consts.DefaultMigrationsDir
	if p.IsInitialized() {
		cfg, err := p.Config()
		if err != nil {
			return "", err
		}

		dir = cfg.Migrations.Dir
	}

	return p.path(dir), nil
}

// Store returns a migrator.Store for the migrations root.
func (p *Project) Store(opts ...migrator.StoreOption) (*migrator.Store, error) {
	dir, err := p.MigrationsDir()
	if err != nil {
		return nil, err
	}

	return migrator.NewStore(dir, opts...), nil
}

// Detector returns a rogue.Detector for the project that never scans the
// migrations root.
func (p *Project) Detector(opts ...rogue.DetectorOption) (*rogue.Detector, error) {
	dir, err := p.MigrationsDir()
	if err != nil {
		return nil, err
	}

	return rogue.NewDetector(p.root, append([]rogue.DetectorOption{rogue.WithCanonicalRoot(dir)}, opts...)...), nil
}

// Connect opens the configured database. Relative SQLite paths are resolved
// against the project directory.
func (p *Project) Connect(ctx context.Context) (*database.Connection, error) {
	cfg, err := p.Config()
	if err != nil {
		return nil, err
	}

	db := cfg.Database
	if db.Type == "" {
		return nil, errors.Errorf("no database configured in %s", p.ConfigPath())
	}

	if backend, _ := db.Backend(); backend == database.SQLite {
		db.Name = p.path(db.Name)
	}

	return database.Connect(ctx, db)
}

func (p *Project) image(options InitOptions) (fstest.MapFS, error) {
	cfg := &config.Config{
		Database: database.Config{
			Type: options.Database,
			Name: options.Name,
		},
		Migrations: config.Migrations{Dir: consts.DefaultMigrationsDir},
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = DefaultDatabaseType
	}

	backend, err := cfg.Database.Backend()
	if err != nil {
		return nil, err
	}

	cfg.Database.Type = string(backend)
	if backend != database.SQLite {
		cfg.Database.Host = "localhost"
		cfg.Database.Port = backend.DefaultPort()
	}

	if cfg.Database.Name == "" {
		cfg.Database.Name = DefaultDatabaseName
		if backend != database.SQLite {
			cfg.Database.Name = filepath.Base(p.absRoot()) + "_" + p.env
		}
	}

	var buf bytes.Buffer
	if err := config.Write(&buf, cfg); err != nil {
		return nil, err
	}

	image := fstest.MapFS{
		config.FileName(p.env): {Data: buf.Bytes()},
	}

	if backend == database.SQLite && !filepath.IsAbs(cfg.Database.Name) {
		image[filepath.Dir(cfg.Database.Name)] = &fstest.MapFile{Mode: os.ModeDir | consts.ModeDir}
	}

	return image, nil
}

func (p *Project) ensureDirectory() error {
	dir, err := os.Stat(p.root)
	if err != nil {
		return errors.Wrapf(err, "failed to stat dir: %s", p.root)
	}

	if !dir.IsDir() {
		return errors.Errorf("%s is not a directory", p.root)
	}

	return nil
}

func (p *Project) absRoot() string {
	abs, err := filepath.Abs(p.root)
	if err != nil {
		return p.root
	}

	return abs
}

func (p *Project) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}

	return filepath.Join(p.root, rel)
}
