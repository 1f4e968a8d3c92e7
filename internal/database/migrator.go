package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"

	"github.com/deppfellow/go-kv-crud/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

// VersionTable records the applied migration version.
const VersionTable = "schema_version"

// loadMigrator connects and prepares a tern migrator with the embedded
// migrations loaded. The caller closes the connection.
func loadMigrator(ctx context.Context, cfg *config.Config) (*pgx.Conn, *tern.Migrator, error) {
	conn, err := pgx.Connect(ctx, DSN(&cfg.Database))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting for migrations: %w", err)
	}

	m, err := tern.NewMigrator(ctx, conn, VersionTable)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, nil, fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		_ = conn.Close(ctx)
		return nil, nil, fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		_ = conn.Close(ctx)
		return nil, nil, fmt.Errorf("loading database migrations: %w", err)
	}

	return conn, m, nil
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	return MigrateTo(ctx, logger, cfg, -1)
}

// MigrateTo moves the schema to target. A negative target means latest;
// zero rolls everything back.
func MigrateTo(ctx context.Context, logger *zerolog.Logger, cfg *config.Config, target int32) error {
	conn, m, err := loadMigrator(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	latest := int32(len(m.Migrations))
	if target < 0 || target > latest {
		target = latest
	}

	if from == target {
		logger.Info().Msgf("database schema up to date, version %d", from)
		return nil
	}

	if err := m.MigrateTo(ctx, target); err != nil {
		return fmt.Errorf("migrating database schema: %w", err)
	}

	logger.Info().Msgf("migrated database schema, from %d to %d", from, target)
	return nil
}
