package models

import "time"

// TradeSummary identifies a single best/worst trade inside a metrics window.
type TradeSummary struct {
	Ticker     string     `json:"ticker"`
	Action     Action     `json:"action"`
	PnlPercent float64    `json:"pnl_percent"`
	ExitReason ExitReason `json:"exit_reason,omitempty"`
}

// ActionStats aggregates outcomes for a single action type.
type ActionStats struct {
	Count   int     `json:"count"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	AvgPnl  float64 `json:"avg_pnl"`
	WinRate float64 `json:"win_rate"`
}

// PerformanceMetrics aggregates ledger outcomes over a time window.
// It is derived on demand and never persisted; it must always be
// recomputable from the position ledger alone.
type PerformanceMetrics struct {
	TotalSignals          int                    `json:"total_signals"`
	WinCount              int                    `json:"win_count"`
	LossCount             int                    `json:"loss_count"`
	NeutralCount          int                    `json:"neutral_count"`
	OpenCount             int                    `json:"open_count"`
	WinRate               float64                `json:"win_rate"`
	AvgReturnPercent      float64                `json:"avg_return_percent"`
	AvgHoldingTimeMinutes int                    `json:"avg_holding_time_minutes"`
	BestTrade             *TradeSummary          `json:"best_trade,omitempty"`
	WorstTrade            *TradeSummary          `json:"worst_trade,omitempty"`
	ByAction              map[Action]ActionStats `json:"by_action,omitempty"`
	LastUpdated           time.Time              `json:"last_updated"`
}
