package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/amaumene/sonarr-mcp/internal/mcpserver"
	"github.com/sirupsen/logrus"
)

// StatusHandler handles status requests
type StatusHandler struct {
	info   func() mcpserver.Info
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(info func() mcpserver.Info, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		info:   info,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	Name              string   `json:"name"`
	Version           string   `json:"version"`
	Tools             []string `json:"tools"`
	ResourceTemplates []string `json:"resource_templates"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	info := h.info()
	response := StatusResponse{
		Name:              info.Name,
		Version:           info.Version,
		Tools:             info.Tools,
		ResourceTemplates: info.ResourceTemplates,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("Failed to write status response")
	}
}
