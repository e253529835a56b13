package monitor

import "github.com/tmsentinel/market-sentinel/internal/models"

// Dedup tracks the last alerted action per ticker so a signal that has not
// changed does not alert again on every polling cycle.
type Dedup struct {
	last map[string]models.Action
}

// NewDedup seeds the controller, typically from persisted monitor state.
func NewDedup(last map[string]models.Action) *Dedup {
	if last == nil {
		last = make(map[string]models.Action)
	}
	return &Dedup{last: last}
}

// IsNewOrChanged reports whether the ticker has no known action yet or its
// action differs from the last one seen.
func (d *Dedup) IsNewOrChanged(ticker string, action models.Action) bool {
	previous, ok := d.last[ticker]
	return !ok || previous != action
}

// Update resets the map to the tickers present in the current cycle's signal
// set, dropping stale tickers, then records the current actions.
func (d *Dedup) Update(signals []models.TradingSignal) {
	current := make(map[string]models.Action, len(signals))
	for _, sig := range signals {
		current[sig.Ticker] = sig.Action
	}
	d.last = current
}

// Snapshot returns a copy of the tracked actions for persistence.
func (d *Dedup) Snapshot() map[string]models.Action {
	out := make(map[string]models.Action, len(d.last))
	for k, v := range d.last {
		out[k] = v
	}
	return out
}
