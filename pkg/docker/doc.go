// Package docker runs throwaway ClickHouse, Postgres and MySQL servers for
// integration tests.
//
// Containers are managed with testcontainers-go and expose a database.Config
// pointing at the mapped server port, so tests connect the same way the CLI
// does:
//
//	ch := docker.New(docker.Options{})
//	if err := ch.Start(ctx); err != nil {
//		t.Fatal(err)
//	}
//	defer ch.Stop(ctx)
//
//	cfg, _ := ch.Config(ctx)
//	conn, err := database.Connect(ctx, cfg)
//
// Tests using this package should skip in short mode or when Docker is not
// available (see SkipIfNoDocker).
package docker
