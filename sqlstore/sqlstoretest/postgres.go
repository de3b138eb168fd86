//go:build integration

// Package sqlstoretest starts throwaway databases for integration tests.
package sqlstoretest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/carcatalog/catalog/sqlstore"
	testcontainers "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

const (
	postgresImage    = "postgres:16-alpine"
	postgresUser     = "catalog"
	postgresPassword = "catalog"
	postgresDB       = "catalog"
)

// NewPostgresStore starts a postgres container and returns a migrated store
// connected to it. The container is terminated when the test finishes.
func NewPostgresStore(t testing.TB) *sqlstore.SqlStore {
	t.Helper()

	ctx := context.Background()
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     postgresUser,
				"POSTGRES_PASSWORD": postgresPassword,
				"POSTGRES_DB":       postgresDB,
			},
			// the server restarts once after the init scripts run.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to initialize postgres testcontainer: %v", err)
	}
	t.Cleanup(func() {
		if err := pgC.Terminate(ctx); err != nil {
			t.Logf("terminating postgres testcontainer: %v", err)
		}
	})

	host, err := pgC.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatal(err)
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, host, port.Port(), postgresDB)
	store, err := sqlstore.NewSqlStore(sqlstore.DriverPostgres, dsn, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	sqlstore.MustMigrate(t, store)
	return store
}
