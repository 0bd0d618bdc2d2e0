// Package migrations applies the embedded schema to postgres and clickhouse
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"triggerbot/internal/platform/store"
)

//go:embed pg/*.sql
var pgFS embed.FS

//go:embed ch/*.sql
var chFS embed.FS

// Execer is the clickhouse DDL surface
type Execer interface {
	Exec(ctx context.Context, query string) error
}

// ApplyPG runs every pg migration not yet recorded in schema_migrations, each in its own transaction
// It returns the versions applied by this call
func ApplyPG(ctx context.Context, db store.TxRunner) ([]string, error) {
	if _, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    text PRIMARY KEY,
		applied_at timestamptz NOT NULL DEFAULT now()
	)`); err != nil {
		return nil, fmt.Errorf("migrations: bootstrap: %w", err)
	}

	files, err := list(pgFS, "pg")
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, name := range files {
		version := strings.TrimSuffix(name, ".sql")
		body, err := fs.ReadFile(pgFS, "pg/"+name)
		if err != nil {
			return applied, err
		}
		ran := false
		err = db.Tx(ctx, func(q store.RowQuerier) error {
			tag, err := q.Exec(ctx,
				`INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT (version) DO NOTHING`, version)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return nil
			}
			if _, err := q.Exec(ctx, string(body)); err != nil {
				return err
			}
			ran = true
			return nil
		})
		if err != nil {
			return applied, fmt.Errorf("migrations: %s: %w", version, err)
		}
		if ran {
			applied = append(applied, version)
		}
	}
	return applied, nil
}

// ApplyCH runs the clickhouse DDL; every statement is idempotent
func ApplyCH(ctx context.Context, ch Execer) error {
	files, err := list(chFS, "ch")
	if err != nil {
		return err
	}
	for _, name := range files {
		body, err := fs.ReadFile(chFS, "ch/"+name)
		if err != nil {
			return err
		}
		if err := ch.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("migrations: ch %s: %w", name, err)
		}
	}
	return nil
}

func list(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
