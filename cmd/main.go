package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/ytlinks/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	if p := os.Getenv("YTLINKS_CONFIG"); p != "" {
		configPath = p
	}

	config, err := shared.ResolveConfig(configPath)
	if err != nil {
		logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		config = shared.DefaultConfig()
		config.ApplyEnv(os.LookupEnv)
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "ytlinks",
		Usage:    "Save YouTube links and hand them to n8n for transcripts and chat",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
