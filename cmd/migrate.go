/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/schedulr/apiserver/config"
	"github.com/schedulr/apiserver/internal/db"
	"github.com/spf13/cobra"
)

const migrationsDir = "internal/db/migrations"

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run database migrations for the configured DB_DRIVER. Postgres
migrations create the tables; MongoDB migrations create the indexes,
including the unique index on usernames.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigration(func(m *migrate.Migrate) error { return m.Up() })
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigration(func(m *migrate.Migrate) error { return m.Steps(-1) })
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}

func runMigration(apply func(*migrate.Migrate) error) error {
	cfg := config.LoadConfig()
	sourceURL, databaseURL, err := migrationTarget(cfg)
	if err != nil {
		return err
	}

	migrator, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return fmt.Errorf("init migrator failed: %w", err)
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := apply(migrator); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migrate failed: %w", err)
	}
	return nil
}

func migrationTarget(cfg config.Config) (string, string, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		databaseURL, err := db.MongoMigrateURL(cfg)
		if err != nil {
			return "", "", err
		}
		return "file://" + migrationsDir + "/mongodb", databaseURL, nil
	case config.DriverPostgres:
		return "file://" + migrationsDir + "/postgres", db.PostgresURL(cfg), nil
	default:
		return "", "", fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
}
