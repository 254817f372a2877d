package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/fmuoria/ezekia-report-agent/internal/config"
	"github.com/fmuoria/ezekia-report-agent/internal/gui"
	"github.com/fmuoria/ezekia-report-agent/internal/logger"
)

func main() {
	logger.Setup(os.Stderr)
	if dir, err := config.Dir(); err == nil {
		if _, closer, err := logger.SetupFile(dir); err == nil {
			defer closer.Close()
		} else {
			slog.Warn("logging to stderr only", "error", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	store, err := config.OpenCredentialStore()
	if err != nil {
		log.Fatalf("Failed to open credential store: %v", err)
	}
	if err := config.SeedFromEnv(store, ".env"); err != nil {
		slog.Warn("failed to seed credentials from environment", "error", err)
	}

	slog.Info("starting Ezekia Report Agent", "ezekia_url", cfg.EzekiaBaseURL, "provider", cfg.CompletionProvider)
	gui.NewApp(cfg, store).Run()
}
