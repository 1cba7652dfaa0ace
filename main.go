package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"dashgen/internal/config"
	"dashgen/internal/logger"
	"dashgen/internal/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat)

	logger.Info("Starting dashboard service", logger.Fields{
		"port":        cfg.Port,
		"environment": cfg.Environment,
		"version":     config.GetVersion(),
		"dashboards":  cfg.DashboardsDir,
	})

	// Wait for interrupt signal
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		cancel()
	}()

	if err := server.Run(ctx, cfg); err != nil {
		logger.Fatal("Server failed", err)
	}
}
