package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dashgen/internal/config"
	"dashgen/internal/logger"
	"dashgen/internal/watch"
)

// Run serves until ctx is cancelled, then shuts down gracefully. Descriptors
// in the dashboards directory are applied at startup and, when watching is
// enabled, re-applied on change.
func Run(ctx context.Context, cfg *config.Config) error {
	log := logger.Component("server")

	s, err := NewServer(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.LoadDir(ctx); err != nil {
		return err
	}

	if cfg.Watch {
		w, err := watch.New(cfg.DashboardsDir, s.Reload)
		if err != nil {
			log.Warn("file watching disabled", logger.Fields{"dir": cfg.DashboardsDir, "error": err.Error()})
		} else {
			go w.Run(ctx)
		}
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.SetupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", logger.Fields{"port": cfg.Port})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// websocket connections are hijacked and not closed by Shutdown
	s.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	log.Info("server stopped")
	return nil
}
