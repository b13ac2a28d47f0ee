package repositories

import (
	"context"
	_ "embed"
	"fmt"

	log "github.com/sirupsen/logrus"

	"account-core/internal/interfaces"
	"account-core/internal/schemas"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the tables and indexes when they do not exist yet.
func EnsureSchema(ctx context.Context, pool interfaces.PgxPoolIface) error {
	log.Info("Ensuring database schema")
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SeedAuthorities inserts the ADMIN and USER authorities. Running it again is a no-op.
func SeedAuthorities(ctx context.Context, pool interfaces.PgxPoolIface) error {
	queryString := "INSERT INTO authorities (name) VALUES ($1) ON CONFLICT (name) DO NOTHING"
	for _, name := range []string{schemas.AuthorityAdmin, schemas.AuthorityUser} {
		if _, err := pool.Exec(ctx, queryString, name); err != nil {
			return fmt.Errorf("seed authority %s: %w", name, err)
		}
	}
	log.Info("Seeded authorities")
	return nil
}
