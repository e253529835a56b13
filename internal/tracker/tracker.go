package tracker

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tmsentinel/market-sentinel/internal/ledger"
	"github.com/tmsentinel/market-sentinel/internal/models"
)

// winBand is the P&L band (in percent) that absorbs noise and fees: closes
// inside ±0.5% classify as CLOSED_NEUTRAL.
var winBand = decimal.NewFromFloat(0.5)

// Tracker owns the position ledger and its state machine. All mutation goes
// through the tracker under a single mutex; the backing store never sees
// concurrent writers.
type Tracker struct {
	mu         sync.Mutex
	store      ledger.Store
	positions  []*models.Position
	maxHolding time.Duration
}

// New builds a tracker on top of a ledger store. A corrupt or unreadable
// persisted ledger is treated as empty with a logged warning, never as a
// fatal error.
func New(store ledger.Store, maxHoldingMinutes int) *Tracker {
	positions, err := store.Load()
	if err != nil {
		log.Printf("Warning: could not load position ledger: %v (starting empty)", err)
		positions = nil
	} else if len(positions) > 0 {
		log.Printf("Position ledger loaded: %d positions", len(positions))
	}
	return &Tracker{
		store:      store,
		positions:  positions,
		maxHolding: time.Duration(maxHoldingMinutes) * time.Minute,
	}
}

// Record opens a new position for a signal and persists the ledger before
// returning. On persistence failure the in-memory position is retained and
// the error surfaced; the next successful save carries it forward.
func (t *Tracker) Record(sig models.TradingSignal) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := uuid.NewString()[:8]
	p := &models.Position{
		SignalID:          id,
		Ticker:            sig.Ticker,
		Action:            sig.Action,
		EntryPrice:        decimal.NewFromFloat(sig.EntryPrice),
		StopLoss:          toDecimal(sig.StopLoss),
		TakeProfit:        toDecimal(sig.TakeProfit),
		OpenedAt:          time.Now(),
		Status:            models.StatusOpen,
		ConfidenceAtEntry: sig.Confidence,
	}
	t.positions = append(t.positions, p)

	if err := t.persistLocked(); err != nil {
		return id, fmt.Errorf("position %s recorded but not persisted: %w", id, err)
	}
	return id, nil
}

// UpdateUnrealized refreshes P&L and holding time for an open position
// without touching its status. Unknown or already-closed ids are a no-op.
func (t *Tracker) UpdateUnrealized(signalID string, currentPrice float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.findOpenLocked(signalID)
	if p == nil {
		return nil
	}
	t.updateUnrealizedLocked(p, decimal.NewFromFloat(currentPrice))
	return t.persistLocked()
}

// Close moves an open position to its terminal status. Closing a position
// that is not open (or unknown) returns ErrNotFound and changes nothing.
func (t *Tracker) Close(signalID string, exitPrice float64, reason models.ExitReason) (*models.Position, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.findOpenLocked(signalID)
	if p == nil {
		return nil, ledger.ErrNotFound
	}
	t.closeLocked(p, decimal.NewFromFloat(exitPrice), reason)

	if err := t.persistLocked(); err != nil {
		return p, fmt.Errorf("position %s closed but not persisted: %w", signalID, err)
	}
	return p, nil
}

// CheckAndCloseAll evaluates every open position against the latest prices.
// Exit conditions are checked in order: take-profit first, then stop-loss,
// then age timeout; the first match wins, so on a gapped price that satisfies
// both levels the position closes as a take-profit. Tickers with no current
// price are skipped.
func (t *Tracker) CheckAndCloseAll(latestPrices map[string]float64) ([]*models.Position, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var closed []*models.Position
	dirty := false
	now := time.Now()

	for _, p := range t.positions {
		if p.Status != models.StatusOpen {
			continue
		}
		raw, ok := latestPrices[p.Ticker]
		if !ok {
			continue
		}
		price := decimal.NewFromFloat(raw)
		t.updateUnrealizedLocked(p, price)
		dirty = true

		reason, hit := t.exitReasonLocked(p, price, now)
		if !hit {
			continue
		}
		t.closeLocked(p, price, reason)
		closed = append(closed, p)
	}

	if !dirty {
		return closed, nil
	}
	if err := t.persistLocked(); err != nil {
		return closed, fmt.Errorf("ledger updated but not persisted: %w", err)
	}
	return closed, nil
}

// OpenPositions returns a snapshot of all currently open positions.
func (t *Tracker) OpenPositions() []*models.Position {
	t.mu.Lock()
	defer t.mu.Unlock()

	var open []*models.Position
	for _, p := range t.positions {
		if p.Status == models.StatusOpen {
			cp := *p
			open = append(open, &cp)
		}
	}
	return open
}

// History returns positions newest first, optionally filtered by ticker.
func (t *Tracker) History(ticker string, limit int) []*models.Position {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []*models.Position
	for _, p := range t.positions {
		if ticker != "" && p.Ticker != ticker {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OpenedAt.After(out[j].OpenedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Shutdown releases the backing store.
func (t *Tracker) Shutdown() error {
	return t.store.Close()
}

func (t *Tracker) findOpenLocked(signalID string) *models.Position {
	for _, p := range t.positions {
		if p.SignalID == signalID && p.Status == models.StatusOpen {
			return p
		}
	}
	return nil
}

func (t *Tracker) updateUnrealizedLocked(p *models.Position, price decimal.Decimal) {
	pnl := p.PnlAt(price)
	p.PnlPercent = &pnl
	minutes := int(time.Since(p.OpenedAt).Minutes())
	p.HoldingMinutes = &minutes
}

// exitReasonLocked evaluates the exit conditions for an open position in
// contract order (TP, SL, timeout).
func (t *Tracker) exitReasonLocked(p *models.Position, price decimal.Decimal, now time.Time) (models.ExitReason, bool) {
	switch {
	case p.Action.IsBuy():
		if p.TakeProfit != nil && price.GreaterThanOrEqual(*p.TakeProfit) {
			return models.ExitTakeProfit, true
		}
		if p.StopLoss != nil && price.LessThanOrEqual(*p.StopLoss) {
			return models.ExitStopLoss, true
		}
	case p.Action.IsSell():
		if p.TakeProfit != nil && price.LessThanOrEqual(*p.TakeProfit) {
			return models.ExitTakeProfit, true
		}
		if p.StopLoss != nil && price.GreaterThanOrEqual(*p.StopLoss) {
			return models.ExitStopLoss, true
		}
	}
	if t.maxHolding > 0 && now.Sub(p.OpenedAt) >= t.maxHolding {
		return models.ExitTimeout, true
	}
	return "", false
}

// closeLocked stamps the terminal state. Exit price, close time, status and
// reason are set together so a position is never observed half-closed.
func (t *Tracker) closeLocked(p *models.Position, price decimal.Decimal, reason models.ExitReason) {
	now := time.Now()
	pnl := p.PnlAt(price)

	p.ExitPrice = &price
	p.ClosedAt = &now
	p.ExitReason = reason
	p.PnlPercent = &pnl
	minutes := int(now.Sub(p.OpenedAt).Minutes())
	p.HoldingMinutes = &minutes

	switch {
	case pnl.GreaterThan(winBand):
		p.Status = models.StatusClosedWin
	case pnl.LessThan(winBand.Neg()):
		p.Status = models.StatusClosedLoss
	default:
		p.Status = models.StatusClosedNeutral
	}
}

func (t *Tracker) persistLocked() error {
	return t.store.Save(t.positions)
}

func toDecimal(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}
