package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/tmsentinel/market-sentinel/internal/models"
	"github.com/tmsentinel/market-sentinel/internal/monitor"
	"github.com/tmsentinel/market-sentinel/internal/tracker"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	tracker *tracker.Tracker
	monitor *monitor.Monitor
	started time.Time
}

// NewHandler creates a new Handler.
func NewHandler(tr *tracker.Tracker, mon *monitor.Monitor) *Handler {
	return &Handler{
		tracker: tr,
		monitor: mon,
		started: time.Now(),
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"uptime_seconds": int(time.Since(h.started).Seconds()),
	})
}

// GetPositions handles GET /api/v1/positions
// ?status=open (default) returns open positions; ?status=all includes history.
func (h *Handler) GetPositions(w http.ResponseWriter, r *http.Request) {
	var positions []*models.Position
	switch r.URL.Query().Get("status") {
	case "", "open":
		positions = h.tracker.OpenPositions()
	case "all":
		positions = h.tracker.History(r.URL.Query().Get("ticker"), 0)
	default:
		http.Error(w, "status must be open or all", http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(positions),
		"positions": positions,
	})
}

// GetPerformance handles GET /api/v1/performance?days=30&ticker=GC=F
func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "days must be a positive integer", http.StatusBadRequest)
			return
		}
		days = n
	}

	metrics := h.tracker.Metrics(days, r.URL.Query().Get("ticker"))
	respondJSON(w, http.StatusOK, metrics)
}

// GetStatus handles GET /api/v1/status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	state := h.monitor.StateSnapshot()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stats":          state.Stats,
		"last_signals":   state.LastSignals,
		"state_saved_at": state.SavedAt,
		"open_positions": len(h.tracker.OpenPositions()),
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
