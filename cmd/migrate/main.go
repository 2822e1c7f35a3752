package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/teresa-solution/firm-management-service/internal/logger"
	"github.com/teresa-solution/firm-management-service/internal/store"
)

func main() {
	if err := logger.Setup(logger.DefaultConfig()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}

func newRootCmd() *cobra.Command {
	var dsn, source string

	withMigrator := func(fn func(m *store.Migrator) error) error {
		if dsn == "" {
			return fmt.Errorf("a database URL is required (--database-url or DATABASE_URL)")
		}
		m, err := store.NewMigrator(dsn, source)
		if err != nil {
			return err
		}
		defer m.Close()
		return fn(m)
	}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the firm management database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dsn, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection URL")
	root.PersistentFlags().StringVar(&source, "path", store.DefaultMigrationsURL, "Migration source URL")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *store.Migrator) error {
				log.Info().Msg("Applying migrations...")
				if err := m.Up(); err != nil {
					return err
				}
				log.Info().Msg("Migrations applied successfully")
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *store.Migrator) error {
				log.Info().Msg("Reverting migrations...")
				if err := m.Down(); err != nil {
					return err
				}
				log.Info().Msg("Migrations reverted successfully")
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Set the schema version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("version must be an integer: %w", err)
			}
			return withMigrator(func(m *store.Migrator) error {
				if err := m.Force(version); err != nil {
					return err
				}
				log.Info().Int("version", version).Msg("Migration version forced successfully")
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *store.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current schema version")
				return nil
			})
		},
	})

	return root
}
