// Package pgtest locates a PostgreSQL database for integration tests.
package pgtest

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const image = "postgres:16-alpine"

var (
	containerDSN  string
	containerErr  error
	containerOnce sync.Once
)

// DSN returns a connection string for an empty-or-migrated test database.
// TEST_DB_DSN wins; otherwise TEST_DB_HOST/PORT/USER/PASSWORD/NAME are
// combined; otherwise a throwaway container is started once per test binary.
// The test is skipped in -short mode or when no Docker provider is available.
func DSN(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if dsn := fromEnv(); dsn != "" {
		return dsn
	}

	testcontainers.SkipIfProviderIsNotHealthy(t)

	containerOnce.Do(func() {
		containerDSN, containerErr = startContainer()
	})
	if containerErr != nil {
		t.Fatalf("Failed to start test database: %v", containerErr)
	}
	return containerDSN
}

func fromEnv() string {
	if dsn := os.Getenv("TEST_DB_DSN"); dsn != "" {
		return dsn
	}

	host := os.Getenv("TEST_DB_HOST")
	port := os.Getenv("TEST_DB_PORT")
	user := os.Getenv("TEST_DB_USER")
	name := os.Getenv("TEST_DB_NAME")
	if host == "" || port == "" || user == "" || name == "" {
		return ""
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, os.Getenv("TEST_DB_PASSWORD"), name)
}

// The container outlives individual tests; ryuk reaps it when the binary exits.
func startContainer() (string, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "project_manager_test",
			"POSTGRES_USER":     "pm",
			"POSTGRES_PASSWORD": "pm_test_password",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("container port: %w", err)
	}

	return fmt.Sprintf("postgres://pm:pm_test_password@%s:%s/project_manager_test?sslmode=disable", host, port.Port()), nil
}
