package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/ytlinks/internal/repositories"
	"github.com/desertthunder/ytlinks/internal/shared"
	"github.com/urfave/cli/v3"
)

// commandConfig returns the config named by --config when given, else the one loaded at startup.
func (r *Runner) commandConfig(cmd *cli.Command) (*shared.Config, error) {
	if !cmd.IsSet("config") {
		return r.config, nil
	}
	return shared.ResolveConfig(cmd.String("config"))
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := r.commandConfig(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("initializing database", "driver", config.Database.Driver, "path", config.Database.Path)

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.SetMigrationLogger(r.logger)
	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(ctx, db.DB, config.Database.Driver); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := shared.MigrationVersion(ctx, db.DB, config.Database.Driver)
	if err != nil {
		return err
	}
	users, err := repositories.NewUserRepository(db).Count(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("setup complete", "version", version, "users", users)
	return r.writePlain("✓ Database ready (schema version %d, %d users)\n", version, users)
}

// SetupRollback rolls back the most recent migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	config, err := r.commandConfig(cmd)
	if err != nil {
		return err
	}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	shared.SetMigrationLogger(r.logger)
	if err := shared.RollbackMigration(ctx, db.DB, config.Database.Driver); err != nil {
		return err
	}

	version, err := shared.MigrationVersion(ctx, db.DB, config.Database.Driver)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Rolled back to schema version %d\n", version)
}

// SetupConfig writes config.toml from the embedded defaults, or prints the effective configuration.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if !cmd.IsSet("config") && r.configPath != "" {
		path = r.configPath
	}

	if cmd.Bool("show") {
		config, err := r.commandConfig(cmd)
		if err != nil {
			return err
		}
		redacted := *config
		if redacted.Auth.Secret != "" {
			redacted.Auth.Secret = "********"
		}
		if redacted.Database.Password != "" {
			redacted.Database.Password = "********"
		}
		if redacted.Redis.Password != "" {
			redacted.Redis.Password = "********"
		}
		if err := toml.NewEncoder(r.output).Encode(redacted); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return nil
	}

	if err := shared.CreateConfigFile(path); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			r.logger.Warn("config file already exists, leaving it untouched", "path", path)
			return nil
		}
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Wrote %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set auth.secret (or JWT_SECRET) and the n8n webhook URLs\n")
	r.writePlain("2. Run 'ytlinks setup database' to create the tables\n")
	return nil
}
