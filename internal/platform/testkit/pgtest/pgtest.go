//go:build integration_pg

// Package pgtest starts a disposable postgres with the schema applied, for repository tests
package pgtest

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"triggerbot/internal/platform/store"
	"triggerbot/internal/platform/store/migrations"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Start launches postgres, applies the migrations and returns the store seam
// The container and pool are torn down with t
func Start(t *testing.T) store.TxRunner {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "triggerbot",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}

	st, err := store.Open(ctx, store.Config{
		AppName: "triggerbot-test",
		PG: store.PGConfig{
			Enabled:  true,
			URL:      fmt.Sprintf("postgres://postgres:postgres@%s:%s/triggerbot?sslmode=disable", host, port.Port()),
			MaxConns: 16,
		},
	}, store.WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	if _, err := migrations.ApplyPG(ctx, st.PG); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return st.PG
}

// Campaign inserts an active campaign and returns its id
func Campaign(t *testing.T, db store.TxRunner, name string) int64 {
	t.Helper()
	id, err := store.Scalar[int64](context.Background(), db,
		`INSERT INTO campaigns (name, priority, keyword_rules) VALUES ($1, 1, '{}') RETURNING id`, name)
	if err != nil {
		t.Fatalf("insert campaign: %v", err)
	}
	return id
}
