package infra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/Alturino/shopping-cart/internal/config"
	"github.com/Alturino/shopping-cart/internal/log"
)

const migrationsTable = "schema_migrations"

// MigrateUp applies pending migrations over a connection borrowed from pool.
func MigrateUp(c context.Context, pool *pgxpool.Pool, migrationPath string) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main MigrateUp").
		Str(log.KeyMigrationPath, migrationPath).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing migration").Logger()
	logger.Info().Msg("initializing migration")
	migration, err := newMigration(stdlib.OpenDBFromPool(pool), migrationPath)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer migration.Close()
	logger.Info().Msg("initialized migration")

	logger = logger.With().Str(log.KeyProcess, "migration up").Logger()
	logger.Info().Msg("migration up")
	if err = migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		err = fmt.Errorf("failed migration up with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("successed migration up")

	return nil
}

// NewMigration opens a dedicated lib/pq connection for the migrate command. Callers own the
// returned instance and must Close it.
func NewMigration(c context.Context, dbConfig config.Database) (*migrate.Migrate, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main NewMigration").
		Str(log.KeyMigrationPath, dbConfig.MigrationPath).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "opening database").Logger()
	logger.Info().Msg("opening database")
	db, err := sql.Open("postgres", dbConfig.URL())
	if err != nil {
		err = fmt.Errorf("failed opening database with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if err = db.PingContext(c); err != nil {
		db.Close()
		err = fmt.Errorf("failed ping db with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("opened database")

	migration, err := newMigration(db, dbConfig.MigrationPath)
	if err != nil {
		db.Close()
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	return migration, nil
}

func newMigration(db *sql.DB, migrationPath string) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return nil, fmt.Errorf("failed creating postgres driver to do migration with error=%w", err)
	}
	migration, err := migrate.NewWithDatabaseInstance(migrationPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed initializing migration with error=%w", err)
	}
	return migration, nil
}
