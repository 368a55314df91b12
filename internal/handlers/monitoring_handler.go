package handlers

import (
	"net/http"

	"garage-backend/internal/cache"
	"garage-backend/internal/monitoring"
	"garage-backend/internal/services"
)

// MonitoringHandler exposes system health for the admin dashboard
type MonitoringHandler struct {
	collector *monitoring.Collector
	archive   *services.ArchiveService
}

func NewMonitoringHandler(collector *monitoring.Collector, archive *services.ArchiveService) *MonitoringHandler {
	return &MonitoringHandler{collector: collector, archive: archive}
}

// GetSystemStats returns host, pool and database statistics
// GET /api/monitoring/system
func (h *MonitoringHandler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	stats := h.collector.Snapshot(r.Context())

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"system":        stats,
		"cache_healthy": cache.IsHealthy(),
	})
}

// GetArchiveStatus lists archived invoice PDFs for a month
// GET /api/monitoring/archive?month=2025/04
func (h *MonitoringHandler) GetArchiveStatus(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"enabled": false,
			"keys":    []string{},
		})
		return
	}

	keys, err := h.archive.ListArchivedPDFs(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"enabled": true,
		"keys":    keys,
		"count":   len(keys),
	})
}
