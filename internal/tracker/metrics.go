package tracker

import (
	"time"

	"github.com/tmsentinel/market-sentinel/internal/models"
)

// Metrics aggregates performance over positions opened in the last windowDays
// days, optionally filtered by ticker. An empty window yields a zero-valued
// metrics object, never an error. Win rate counts wins against wins plus
// losses; neutral closes and still-open positions stay out of the denominator.
func (t *Tracker) Metrics(windowDays int, ticker string) models.PerformanceMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -windowDays)
	m := models.PerformanceMetrics{LastUpdated: time.Now()}

	var filtered []*models.Position
	for _, p := range t.positions {
		if p.OpenedAt.Before(cutoff) {
			continue
		}
		if ticker != "" && p.Ticker != ticker {
			continue
		}
		filtered = append(filtered, p)
	}

	m.TotalSignals = len(filtered)
	if m.TotalSignals == 0 {
		return m
	}

	for _, p := range filtered {
		switch p.Status {
		case models.StatusOpen:
			m.OpenCount++
		case models.StatusClosedWin:
			m.WinCount++
		case models.StatusClosedLoss:
			m.LossCount++
		default:
			m.NeutralCount++
		}
	}
	if decided := m.WinCount + m.LossCount; decided > 0 {
		m.WinRate = float64(m.WinCount) / float64(decided)
	}

	var pnlSum float64
	var pnlCount int
	var best, worst *models.Position
	for _, p := range filtered {
		if p.PnlPercent == nil {
			continue
		}
		pnl := p.PnlPercent.InexactFloat64()
		pnlSum += pnl
		pnlCount++
		if best == nil || pnl > best.PnlPercent.InexactFloat64() {
			best = p
		}
		if worst == nil || pnl < worst.PnlPercent.InexactFloat64() {
			worst = p
		}
	}
	if pnlCount > 0 {
		m.AvgReturnPercent = pnlSum / float64(pnlCount)
		m.BestTrade = summarize(best)
		m.WorstTrade = summarize(worst)
	}

	var holdSum, holdCount int
	for _, p := range filtered {
		if p.HoldingMinutes != nil {
			holdSum += *p.HoldingMinutes
			holdCount++
		}
	}
	if holdCount > 0 {
		m.AvgHoldingTimeMinutes = holdSum / holdCount
	}

	m.ByAction = byAction(filtered)
	return m
}

func summarize(p *models.Position) *models.TradeSummary {
	if p == nil {
		return nil
	}
	return &models.TradeSummary{
		Ticker:     p.Ticker,
		Action:     p.Action,
		PnlPercent: p.PnlPercent.InexactFloat64(),
		ExitReason: p.ExitReason,
	}
}

func byAction(positions []*models.Position) map[models.Action]models.ActionStats {
	stats := make(map[models.Action]models.ActionStats)
	for _, p := range positions {
		s := stats[p.Action]
		s.Count++
		switch p.Status {
		case models.StatusClosedWin:
			s.Wins++
		case models.StatusClosedLoss:
			s.Losses++
		}
		if p.PnlPercent != nil {
			s.AvgPnl += p.PnlPercent.InexactFloat64()
		}
		stats[p.Action] = s
	}
	for action, s := range stats {
		if s.Count > 0 {
			s.AvgPnl /= float64(s.Count)
		}
		if decided := s.Wins + s.Losses; decided > 0 {
			s.WinRate = float64(s.Wins) / float64(decided)
		}
		stats[action] = s
	}
	return stats
}
