package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/agentes/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase creates the config file when missing, then initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	if config.Database.Path != ":memory:" {
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	}

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	statuses, err := shared.Migrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	for _, m := range statuses {
		r.writePlain("%s\n", r.palette.Status(m.Applied, fmt.Sprintf("%04d %s", m.Version, m.Name), ""))
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// RollbackDatabase reverts the most recent migration of the SQLite database.
func (r *Runner) RollbackDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RollbackMigration(ctx, db); err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}

	statuses, err := shared.Migrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	for _, m := range statuses {
		r.writePlain("%s\n", r.palette.Status(m.Applied, fmt.Sprintf("%04d %s", m.Version, m.Name), ""))
	}
	return nil
}
