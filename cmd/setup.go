package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/desertthunder/roastify/internal/services"
	"github.com/desertthunder/roastify/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file from the embedded template if needed and initializes the database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}

		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return err
		}
		shared.ApplyEnv(config)
		r.config = config
		r.writePlain("✓ Created %s\n", configPath)
	} else {
		r.logger.Info("using existing config", "path", configPath)
	}

	if err := r.config.Validate(); err != nil {
		r.logger.Warn("config needs attention", "error", err)
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)

	if r.config.Credentials.Spotify.ClientID == "" {
		r.writePlainln("Next steps:")
		r.writePlain("%s\n", services.MissingClientIDMessage)
	}

	return nil
}
