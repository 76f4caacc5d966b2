package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/roadwork/pkg/config"
	"github.com/pseudomuto/roadwork/pkg/consts"
	"github.com/pseudomuto/roadwork/pkg/migrator"
	"github.com/pseudomuto/roadwork/pkg/project"
	"github.com/stretchr/testify/require"
)

type (
	// ProjectFixture is an initialized project in a temp directory backed by
	// a SQLite database.
	ProjectFixture struct {
		Dir     string
		Config  *config.Config
		Project *project.Project
		t       *testing.T
	}

	// MigrationFile is a canonical migration to add to a fixture.
	MigrationFile struct {
		// Timestamp is the 14 digit directory prefix
		Timestamp string
		Name      string
		Up        string
		Down      string
	}
)

// TestProject creates an isolated temp directory with an initialized roadwork
// project using the default SQLite configuration.
func TestProject(t *testing.T) *ProjectFixture {
	t.Helper()

	tmpDir := t.TempDir()
	proj := project.New(project.ProjectParams{Dir: tmpDir})
	require.NoError(t, proj.Initialize(project.InitOptions{}), "Failed to initialize test project")

	cfg, err := proj.Config()
	require.NoError(t, err, "Failed to load config file")

	return &ProjectFixture{
		Dir:     tmpDir,
		Config:  cfg,
		Project: proj,
		t:       t,
	}
}

// WithMigrations adds canonical migration directories to the project.
func (p *ProjectFixture) WithMigrations(migrations ...MigrationFile) *ProjectFixture {
	p.t.Helper()

	for _, mig := range migrations {
		dir := filepath.Join(p.MigrationsDir(), mig.Timestamp+"-"+mig.Name)
		require.NoError(p.t, os.MkdirAll(dir, consts.ModeDir), "Failed to create migration directory")
		require.NoError(p.t, os.WriteFile(filepath.Join(dir, consts.UpFile), []byte(mig.Up), consts.ModeFile))
		require.NoError(p.t, os.WriteFile(filepath.Join(dir, consts.DownFile), []byte(mig.Down), consts.ModeFile))
	}

	return p
}

// WithFiles writes files relative to the project root, creating parent
// directories as needed. It is mostly used to plant rogue migrations.
func (p *ProjectFixture) WithFiles(files map[string]string) *ProjectFixture {
	p.t.Helper()

	for path, content := range files {
		fullPath := filepath.Join(p.Dir, path)
		require.NoError(p.t, os.MkdirAll(filepath.Dir(fullPath), consts.ModeDir), "Failed to create directory")
		require.NoError(p.t, os.WriteFile(fullPath, []byte(content), consts.ModeFile), "Failed to write %s", path)
	}

	return p
}

// MigrationsDir returns the absolute path to the migrations root.
func (p *ProjectFixture) MigrationsDir() string {
	return filepath.Join(p.Dir, p.Config.Migrations.Dir)
}

// Migrations lists the canonical migrations in the project.
func (p *ProjectFixture) Migrations() []*migrator.Migration {
	p.t.Helper()

	migrations, err := migrator.NewStore(p.MigrationsDir()).List()
	require.NoError(p.t, err)
	return migrations
}

// ConfigPath returns the path to roadwork.yaml.
func (p *ProjectFixture) ConfigPath() string {
	return filepath.Join(p.Dir, consts.ConfigFile)
}
