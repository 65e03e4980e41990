package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"

	"bedep/internal/app"
	"bedep/internal/config"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "YAML config file (optional)")
		dataset    = fs.String("dataset", "", "assessment workbook, overrides dataset.path")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix(config.EnvPrefix)); err != nil {
		slog.Error("Failed to parse flags", slog.String("error", err.Error()))
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *dataset != "" {
		cfg.Dataset.Path = *dataset
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
