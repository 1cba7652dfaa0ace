package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"dashgen/internal/config"
	"dashgen/internal/logger"
	"dashgen/internal/models"
)

const maxDescriptorBytes = 10 << 20

// HandleRoot serves the dashboard page
func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := s.Page.HTML()
	if err != nil {
		s.log.Error("failed to render page", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}

// HandleHealth provides health check endpoint
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]interface{}{
		"status":     "healthy",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"version":    config.GetVersion(),
		"dashboards": len(s.Page.Dashboards()),
		"clients":    s.Hub.Count(),
	}

	writeJSON(w, http.StatusOK, health)
}

// HandleDashboards lists applied dashboards (GET) or applies a submitted
// descriptor (POST)
func (s *Server) HandleDashboards(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"dashboards": s.Page.Dashboards(),
		})
	case http.MethodPost:
		s.handleSubmit(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDescriptorBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body", err)
		return
	}

	var d *models.Dashboard
	if strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "yaml") {
		d, err = models.DecodeDashboardYAML(data)
	} else {
		d, err = models.DecodeDashboard(data)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dashboard descriptor", err)
		return
	}

	if err := s.Apply(d); err != nil {
		s.log.Warn("dashboard rejected", logger.Fields{"dashboard": d.ID, "error": err.Error()})
		writeError(w, http.StatusUnprocessableEntity, "failed to render dashboard", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":     d.ID,
		"charts": len(d.Charts),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	writeJSON(w, status, map[string]interface{}{
		"error":   message,
		"message": err.Error(),
		"status":  http.StatusText(status),
	})
}
