package cmd

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Alturino/shopping-cart/internal/infra"
	"github.com/Alturino/shopping-cart/internal/log"
)

func newMigrateCommand(opts *options) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert database migrations",
	}

	run := func(direction string, apply func(*migrate.Migrate) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			c := cmd.Context()
			logger := zerolog.Ctx(c).
				With().
				Str(log.KeyTag, "main migrate").
				Str(log.KeyProcess, "migration "+direction).
				Str(log.KeyMigrationPath, opts.cfg.Database.MigrationPath).
				Logger()

			migration, err := infra.NewMigration(logger.WithContext(c), opts.cfg.Database)
			if err != nil {
				return err
			}
			defer migration.Close()

			logger.Info().Msg("migration " + direction)
			if err := apply(migration); err != nil {
				if errors.Is(err, migrate.ErrNoChange) {
					logger.Info().Msg("no migration to apply")
					return nil
				}
				err = fmt.Errorf("failed migration %s with error=%w", direction, err)
				logger.Error().Err(err).Msg(err.Error())
				return err
			}
			logger.Info().Msg("migration " + direction + " done")
			return nil
		}
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			RunE:  run("up", (*migrate.Migrate).Up),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert every applied migration",
			RunE:  run("down", (*migrate.Migrate).Down),
		},
	)
	return migrateCmd
}
