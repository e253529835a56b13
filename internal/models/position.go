package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a tracked position.
// A position moves from OPEN to exactly one terminal status, never back.
type Status string

const (
	StatusOpen          Status = "OPEN"
	StatusClosedWin     Status = "CLOSED_WIN"
	StatusClosedLoss    Status = "CLOSED_LOSS"
	StatusClosedNeutral Status = "CLOSED_NEUTRAL"
)

// Closed reports whether the status is terminal.
func (s Status) Closed() bool {
	return s == StatusClosedWin || s == StatusClosedLoss || s == StatusClosedNeutral
}

// ExitReason explains why a position was closed.
type ExitReason string

const (
	ExitTakeProfit ExitReason = "TP"
	ExitStopLoss   ExitReason = "SL"
	ExitTimeout    ExitReason = "TIMEOUT"
	ExitManual     ExitReason = "MANUAL"
)

// Position is the persisted unit of the signal ledger.
type Position struct {
	SignalID          string           `json:"signal_id"`
	Ticker            string           `json:"ticker"`
	Action            Action           `json:"action"`
	EntryPrice        decimal.Decimal  `json:"entry_price"`
	ExitPrice         *decimal.Decimal `json:"exit_price"`
	StopLoss          *decimal.Decimal `json:"stop_loss"`
	TakeProfit        *decimal.Decimal `json:"take_profit"`
	OpenedAt          time.Time        `json:"opened_at"`
	ClosedAt          *time.Time       `json:"closed_at"`
	Status            Status           `json:"status"`
	PnlPercent        *decimal.Decimal `json:"pnl_percent"`
	HoldingMinutes    *int             `json:"holding_minutes"`
	ConfidenceAtEntry float64          `json:"confidence_at_entry"`
	ExitReason        ExitReason       `json:"exit_reason,omitempty"`
}

// PnlAt computes the direction-aware P&L percentage against a price.
// Buy-family positions profit when price rises above entry, sell-family
// when it falls below. Neutral positions always carry zero P&L.
func (p *Position) PnlAt(price decimal.Decimal) decimal.Decimal {
	if p.EntryPrice.IsZero() {
		return decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	switch {
	case p.Action.IsBuy():
		return price.Sub(p.EntryPrice).Div(p.EntryPrice).Mul(hundred)
	case p.Action.IsSell():
		return p.EntryPrice.Sub(price).Div(p.EntryPrice).Mul(hundred)
	default:
		return decimal.Zero
	}
}
