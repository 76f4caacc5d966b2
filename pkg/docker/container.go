package docker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/pkg/errors"
	"github.com/pseudomuto/roadwork/pkg/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	nativePort = nat.Port("9000/tcp")
	httpPort   = nat.Port("8123/tcp")
)

type (
	// Server is a disposable database server. Config describes how to reach it
	// once Start has returned.
	Server interface {
		Start(ctx context.Context) error
		Stop(ctx context.Context) error
		Config(ctx context.Context) (database.Config, error)
		IsRunning() bool
	}

	// Options configures a container.
	Options struct {
		// Version is the image tag. Each server picks its own default.
		Version string

		// Database is created on startup and used in Config (default: roadwork).
		Database string
	}

	// ClickHouse is a disposable ClickHouse server for integration tests.
	ClickHouse struct {
		options   Options
		container *clickhouse.ClickHouseContainer
	}
)

var _ Server = (*ClickHouse)(nil)

// New creates a ClickHouse container. Nothing is started until Start.
//
// Example:
//
//	ch := docker.New(docker.Options{Version: "25.7"})
//	if err := ch.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer ch.Stop(ctx)
//
//	cfg, err := ch.Config(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	conn, err := database.Connect(ctx, cfg)
func New(opts Options) *ClickHouse {
	if opts.Version == "" {
		opts.Version = "latest"
	}

	if opts.Database == "" {
		opts.Database = "roadwork"
	}

	return &ClickHouse{options: opts}
}

// Start runs the container and waits for the HTTP interface to respond.
func (c *ClickHouse) Start(ctx context.Context) error {
	if c.container != nil {
		return errors.New("container is already running")
	}

	container, err := clickhouse.Run(ctx,
		fmt.Sprintf("clickhouse/clickhouse-server:%s-alpine", c.options.Version),
		clickhouse.WithUsername("default"),
		clickhouse.WithPassword(""),
		clickhouse.WithDatabase(c.options.Database),
		testcontainers.WithEnv(map[string]string{"CLICKHOUSE_DEFAULT_ACCESS_MANAGEMENT": "1"}),
		testcontainers.WithWaitStrategyAndDeadline(
			5*time.Minute,
			wait.
				NewHTTPStrategy("/").
				WithPort(httpPort).
				WithStatusCodeMatcher(func(status int) bool {
					return status == 200
				}),
		),
	)
	if err != nil {
		return errors.Wrap(err, "failed to start ClickHouse container")
	}

	c.container = container
	return nil
}

// Stop terminates and removes the container. Stopping a container that isn't
// running is a no-op.
func (c *ClickHouse) Stop(ctx context.Context) error {
	if c.container == nil {
		return nil
	}

	err := c.container.Terminate(ctx)
	c.container = nil

	return errors.Wrap(err, "failed to stop ClickHouse container")
}

// Config returns the database configuration for the running container's
// native protocol port.
func (c *ClickHouse) Config(ctx context.Context) (database.Config, error) {
	if c.container == nil {
		return database.Config{}, errors.New("container is not running")
	}

	host, port, err := endpoint(ctx, c.container, nativePort)
	if err != nil {
		return database.Config{}, err
	}

	return database.Config{
		Type:     string(database.ClickHouse),
		Name:     c.options.Database,
		Username: "default",
		Host:     host,
		Port:     port,
	}, nil
}

// IsRunning reports whether the container has been started and not stopped.
func (c *ClickHouse) IsRunning() bool {
	return c.container != nil
}

// endpoint returns the host and mapped port for a container port.
func endpoint(ctx context.Context, container testcontainers.Container, p nat.Port) (string, int, error) {
	host, err := container.Host(ctx)
	if err != nil {
		return "", 0, errors.Wrap(err, "failed to get container host")
	}

	port, err := container.MappedPort(ctx, p)
	if err != nil {
		return "", 0, errors.Wrap(err, "failed to get container port")
	}

	portNum, err := strconv.Atoi(port.Port())
	if err != nil {
		return "", 0, errors.Wrapf(err, "invalid mapped port %q", port.Port())
	}

	return host, portNum, nil
}
