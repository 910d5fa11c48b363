// Command api runs the Ideas Hub HTTP API server.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ideahub/hub/internal/config"
	"github.com/ideahub/hub/internal/observability"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.SetupLogging(cfg.LogLevel)

	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
