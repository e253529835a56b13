package models

import "time"

// CycleSummary describes the outcome of one completed monitoring cycle.
type CycleSummary struct {
	CompletedAt      time.Time `json:"completed_at"`
	SignalsEvaluated int       `json:"signals_evaluated"`
	StrongSignals    int       `json:"strong_signals"`
	NewAlerts        int       `json:"new_alerts"`
	PositionsClosed  int       `json:"positions_closed"`
	OpenPositions    int       `json:"open_positions"`
}
