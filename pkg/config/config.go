package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/roadwork/pkg/consts"
	"github.com/pseudomuto/roadwork/pkg/database"
	"gopkg.in/yaml.v3"
)

const (
	// EnvironmentVar selects the configuration file to load.
	EnvironmentVar = "ENVIRONMENT"

	// PasswordVar overrides database.password from the configuration file.
	PasswordVar = "ROADWORK_DATABASE_PASSWORD"
)

type (
	// Migrations configures where migrations live and how they run.
	Migrations struct {
		// Dir is the canonical migrations root, relative to the project directory
		Dir string `yaml:"dir"`

		// Transactional runs each migration file in a transaction on databases
		// that support transactional DDL
		Transactional bool `yaml:"transactional,omitempty"`
	}

	// Config is the project configuration read from roadwork.yaml.
	Config struct {
		// Database is the connection the migrations run against
		Database database.Config `yaml:"database"`

		// Migrations configures the migrations root
		Migrations Migrations `yaml:"migrations"`
	}
)

// LoadConfig parses a project configuration from the provided io.Reader and
// fills in defaults: the migrations dir, and the database port for networked
// backends.
//
// Example:
//
//	yamlData := `
//	database:
//	  type: postgres
//	  name: app
//	migrations:
//	  dir: config/database/migrations
//	`
//
//	cfg, err := config.LoadConfig(strings.NewReader(yamlData))
//	if err != nil {
//		panic(err)
//	}
//
//	fmt.Println(cfg.Database.Address()) // localhost:5432
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal project config")
	}

	if cfg.Migrations.Dir == "" {
		cfg.Migrations.Dir = consts.DefaultMigrationsDir
	}

	if cfg.Database.Type != "" {
		backend, err := cfg.Database.Backend()
		if err != nil {
			return nil, err
		}

		cfg.Database.Type = string(backend)
		if cfg.Database.Port == 0 {
			cfg.Database.Port = backend.DefaultPort()
		}
	}

	return &cfg, nil
}

// LoadConfigFile loads a project configuration from the specified file path.
// This is a convenience function that opens the file and calls LoadConfig.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}

// FileName returns the configuration file for an environment: roadwork.yaml
// for "dev" (or no environment) and roadwork.<env>.yaml otherwise.
func FileName(env string) string {
	env = strings.TrimSpace(env)
	if env == "" || env == consts.DefaultEnvironment {
		return consts.ConfigFile
	}

	return "roadwork." + env + ".yaml"
}

// Load reads the configuration for env from the project directory and applies
// environment overrides (see PasswordVar).
//
// Example:
//
//	cfg, err := config.Load(".", config.Environment())
//	if err != nil {
//		log.Fatal(err)
//	}
func Load(projectDir, env string) (*Config, error) {
	cfg, err := LoadConfigFile(filepath.Join(projectDir, FileName(env)))
	if err != nil {
		return nil, err
	}

	if password, ok := os.LookupEnv(PasswordVar); ok {
		cfg.Database.Password = password
	}

	return cfg, nil
}

// Environment returns the value of ENVIRONMENT, or "dev" when unset.
func Environment() string {
	if env := strings.TrimSpace(os.Getenv(EnvironmentVar)); env != "" {
		return env
	}

	return consts.DefaultEnvironment
}

// Write encodes cfg as YAML.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(cfg); err != nil {
		return errors.Wrap(err, "failed to write project config")
	}

	return errors.Wrap(enc.Close(), "failed to write project config")
}
