package docker

import (
	"context"

	"github.com/docker/go-connections/nat"
	"github.com/pkg/errors"
	"github.com/pseudomuto/roadwork/pkg/database"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	postgresPort     = nat.Port("5432/tcp")
	postgresUser     = "postgres"
	postgresPassword = "postgres"
)

// Postgres is a disposable Postgres server for integration tests.
type Postgres struct {
	options   Options
	container *postgres.PostgresContainer
}

var _ Server = (*Postgres)(nil)

// NewPostgres creates a Postgres container (default image tag 16-alpine).
// Nothing is started until Start.
func NewPostgres(opts Options) *Postgres {
	if opts.Version == "" {
		opts.Version = "16-alpine"
	}

	if opts.Database == "" {
		opts.Database = "roadwork"
	}

	return &Postgres{options: opts}
}

// Start runs the container and waits until the server accepts connections.
func (p *Postgres) Start(ctx context.Context) error {
	if p.container != nil {
		return errors.New("container is already running")
	}

	container, err := postgres.Run(ctx,
		"postgres:"+p.options.Version,
		postgres.WithDatabase(p.options.Database),
		postgres.WithUsername(postgresUser),
		postgres.WithPassword(postgresPassword),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to start Postgres container")
	}

	p.container = container
	return nil
}

// Stop terminates and removes the container.
func (p *Postgres) Stop(ctx context.Context) error {
	if p.container == nil {
		return nil
	}

	err := p.container.Terminate(ctx)
	p.container = nil

	return errors.Wrap(err, "failed to stop Postgres container")
}

// Config returns the database configuration for the running container.
func (p *Postgres) Config(ctx context.Context) (database.Config, error) {
	if p.container == nil {
		return database.Config{}, errors.New("container is not running")
	}

	host, port, err := endpoint(ctx, p.container, postgresPort)
	if err != nil {
		return database.Config{}, err
	}

	return database.Config{
		Type:     string(database.Postgres),
		Name:     p.options.Database,
		Username: postgresUser,
		Password: postgresPassword,
		Host:     host,
		Port:     port,
		Params:   map[string]string{"sslmode": "disable"},
	}, nil
}

// IsRunning reports whether the container has been started and not stopped.
func (p *Postgres) IsRunning() bool {
	return p.container != nil
}
