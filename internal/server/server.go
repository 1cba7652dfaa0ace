package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"dashgen/internal/config"
	"dashgen/internal/logger"
	"dashgen/internal/models"
	"dashgen/internal/site"
)

// Server serves the dashboard page and accepts dashboard updates
type Server struct {
	Config *config.Config
	Page   *site.Page
	Hub    *Hub
	log    *logger.Logger
}

// NewServer creates a server with an empty page
func NewServer(cfg *config.Config) (*Server, error) {
	opts := site.OptionsFromConfig(cfg)
	opts.ExtraScript = LiveReloadScript

	page, err := site.NewPage(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &Server{
		Config: cfg,
		Page:   page,
		Hub:    NewHub(),
		log:    logger.Component("server"),
	}, nil
}

// SetupRoutes configures HTTP routes for the server
func (s *Server) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/dashboards", s.HandleDashboards)
	mux.Handle("/ws", s.Hub)

	// Handle root path last (catch-all)
	mux.HandleFunc("/", s.HandleRoot)

	return mux
}

// Apply renders d and tells connected browsers to reload
func (s *Server) Apply(d *models.Dashboard) error {
	if err := s.Page.Apply(d); err != nil {
		return err
	}
	s.Hub.Broadcast("reload", map[string]interface{}{"dashboard": d.ID})
	return nil
}

// ApplyFile loads a descriptor from disk and applies it
func (s *Server) ApplyFile(path string) error {
	d, err := models.LoadDashboardFile(path)
	if err != nil {
		return err
	}
	return s.Apply(d)
}

// LoadDir applies every descriptor in the dashboards directory in name
// order. A missing directory is not an error.
func (s *Server) LoadDir(ctx context.Context) error {
	dir := s.Config.DashboardsDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Warn("dashboards directory not found", logger.Fields{"dir": dir})
			return nil
		}
		return fmt.Errorf("failed to read dashboards directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && models.IsDescriptorFile(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	loaded := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.ApplyFile(path); err != nil {
			s.log.Error("failed to load dashboard", err, logger.Fields{"path": path})
			continue
		}
		loaded++
	}
	s.log.Info("dashboards loaded", logger.Fields{"dir": dir, "loaded": loaded, "found": len(paths)})
	return nil
}

// Reload applies changed descriptor files, logging failures. It is the
// watcher callback.
func (s *Server) Reload(paths []string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			s.log.Debug("skipping removed descriptor", logger.Fields{"path": path})
			continue
		}
		if err := s.ApplyFile(path); err != nil {
			s.log.Error("failed to reload dashboard", err, logger.Fields{"path": path})
		}
	}
}

// Close disconnects live-reload clients
func (s *Server) Close() error {
	s.Hub.Close()
	return nil
}
