package docker

import (
	"context"

	"github.com/docker/go-connections/nat"
	"github.com/pkg/errors"
	"github.com/pseudomuto/roadwork/pkg/database"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
)

const (
	mysqlPort     = nat.Port("3306/tcp")
	mysqlUser     = "root"
	mysqlPassword = "roadwork"
)

// MySQL is a disposable MySQL server for integration tests.
type MySQL struct {
	options   Options
	container *mysql.MySQLContainer
}

var _ Server = (*MySQL)(nil)

// NewMySQL creates a MySQL container (default image tag 8.4). Nothing is
// started until Start.
func NewMySQL(opts Options) *MySQL {
	if opts.Version == "" {
		opts.Version = "8.4"
	}

	if opts.Database == "" {
		opts.Database = "roadwork"
	}

	return &MySQL{options: opts}
}

// Start runs the container and waits for the server's ready log line.
func (m *MySQL) Start(ctx context.Context) error {
	if m.container != nil {
		return errors.New("container is already running")
	}

	container, err := mysql.Run(ctx,
		"mysql:"+m.options.Version,
		mysql.WithDatabase(m.options.Database),
		mysql.WithUsername(mysqlUser),
		mysql.WithPassword(mysqlPassword),
	)
	if err != nil {
		return errors.Wrap(err, "failed to start MySQL container")
	}

	m.container = container
	return nil
}

// Stop terminates and removes the container.
func (m *MySQL) Stop(ctx context.Context) error {
	if m.container == nil {
		return nil
	}

	err := m.container.Terminate(ctx)
	m.container = nil

	return errors.Wrap(err, "failed to stop MySQL container")
}

// Config returns the database configuration for the running container.
func (m *MySQL) Config(ctx context.Context) (database.Config, error) {
	if m.container == nil {
		return database.Config{}, errors.New("container is not running")
	}

	host, port, err := endpoint(ctx, m.container, mysqlPort)
	if err != nil {
		return database.Config{}, err
	}

	return database.Config{
		Type:     string(database.MySQL),
		Name:     m.options.Database,
		Username: mysqlUser,
		Password: mysqlPassword,
		Host:     host,
		Port:     port,
	}, nil
}

// IsRunning reports whether the container has been started and not stopped.
func (m *MySQL) IsRunning() bool {
	return m.container != nil
}
