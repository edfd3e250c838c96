package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/config"
	"github.com/bowutt26/dsci510-fall2025-final-project/internal/infrastructure"
	httptransport "github.com/bowutt26/dsci510-fall2025-final-project/internal/transport/http"
)

func main() {
	port := flag.Int("port", 0, "listen port (default from config)")
	resultsDir := flag.String("results", "", "results directory to serve (defaults to ./results)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *resultsDir != "" {
		cfg.Paths.ResultsDir = *resultsDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	paths := config.NewPaths(cfg.Paths)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := httptransport.NewServer(cfg.Server, paths, logger)
	if err := server.Start(ctx); err != nil {
		logger.Error("report server failed", "error", err)
		os.Exit(1)
	}
}
