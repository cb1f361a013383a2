// Package testutil starts the throwaway Postgres and S3 containers used by the
// integration and e2e suites. Containers are removed when the test ends.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/noterag/noterag/internal/database"
)

const (
	postgresImage = "pgvector/pgvector:0.8.1-pg18"
	postgresPort  = "5432/tcp"
	postgresCreds = "noterag"

	rustFSImage = "rustfs/rustfs:latest"
	rustFSPort  = "9000/tcp"

	// RustFS credentials accepted by the container from NewRustFSContainer.
	RustFSAccessKey = "rustfsadmin"
	RustFSSecretKey = "rustfsadmin"
)

// startContainer runs req and returns the container with the host:port of its exposed port.
func startContainer(ctx context.Context, t *testing.T, req testcontainers.ContainerRequest) (testcontainers.Container, string) {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("failed to start %s: %v", req.Image, err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to resolve endpoint of %s: %v", req.Image, err)
	}
	return container, endpoint
}

// PostgresContainer is a pgvector-enabled Postgres
type PostgresContainer struct {
	Container testcontainers.Container
	Addr      string
}

// NewPostgresContainer starts Postgres with the pgvector extension available
func NewPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	t.Helper()

	container, addr := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{postgresPort},
		Env: map[string]string{
			"POSTGRES_USER":     postgresCreds,
			"POSTGRES_PASSWORD": postgresCreds,
			"POSTGRES_DB":       postgresCreds,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(postgresPort),
		).WithStartupTimeout(60 * time.Second),
	})

	return &PostgresContainer{Container: container, Addr: addr}
}

// ConnectionString returns the database URL of the container
func (pc *PostgresContainer) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", postgresCreds, postgresCreds, pc.Addr, postgresCreds)
}

// RustFSContainer is an S3-compatible object store for backup tests
type RustFSContainer struct {
	Container testcontainers.Container
	Addr      string
}

// NewRustFSContainer starts RustFS with RustFSAccessKey/RustFSSecretKey
func NewRustFSContainer(ctx context.Context, t *testing.T) *RustFSContainer {
	t.Helper()

	container, addr := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        rustFSImage,
		ExposedPorts: []string{rustFSPort},
		Env: map[string]string{
			"RUSTFS_ACCESS_KEY": RustFSAccessKey,
			"RUSTFS_SECRET_KEY": RustFSSecretKey,
		},
		WaitingFor: wait.ForListeningPort(rustFSPort).WithStartupTimeout(30 * time.Second),
	})

	return &RustFSContainer{Container: container, Addr: addr}
}

// Endpoint returns the S3 endpoint URL
func (rc *RustFSContainer) Endpoint() string {
	return "http://" + rc.Addr
}

// NewTestPool migrates the database with the files in migrationsDir and returns a
// pool closed at test end. Connecting is retried while Postgres finishes booting.
func NewTestPool(ctx context.Context, t *testing.T, pc *PostgresContainer, migrationsDir string) *pgxpool.Pool {
	t.Helper()

	dir, err := filepath.Abs(migrationsDir)
	if err != nil {
		t.Fatalf("failed to resolve migrations dir: %v", err)
	}

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = database.NewPool(ctx, database.Config{URL: pc.ConnectionString(), MaxConns: 5})
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := database.Migrate(pc.ConnectionString(), "file://"+filepath.ToSlash(dir)); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return pool
}
