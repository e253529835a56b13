package monitor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tmsentinel/market-sentinel/internal/config"
	"github.com/tmsentinel/market-sentinel/internal/metrics"
	"github.com/tmsentinel/market-sentinel/internal/models"
	"github.com/tmsentinel/market-sentinel/internal/signal"
	"github.com/tmsentinel/market-sentinel/internal/tracker"
)

// errorBackoff is how long the loop waits after a failed cycle before the
// next attempt.
const errorBackoff = time.Minute

// MarketData supplies indicator snapshots and macro context per cycle.
type MarketData interface {
	Snapshot(ctx context.Context, ticker string) (*models.IndicatorSnapshot, error)
	Macro(ctx context.Context) (*models.MacroSnapshot, error)
}

// SentimentProvider supplies a per-ticker news sentiment score in [0,1].
type SentimentProvider interface {
	Score(ctx context.Context, ticker string) (float64, string, error)
}

// Notifier delivers outbound alerts. Delivery errors are logged per
// recipient and never block ledger updates.
type Notifier interface {
	SendSignalAlert(ctx context.Context, sig models.TradingSignal) error
	SendCycleSummary(ctx context.Context, summary models.CycleSummary) error
}

// EventPublisher mirrors signal and closure events onto a message bus.
type EventPublisher interface {
	PublishSignalAlert(ctx context.Context, sig models.TradingSignal) error
	PublishPositionClosed(ctx context.Context, pos *models.Position) error
}

// Monitor is the sequential polling scheduler. One cycle fully completes,
// including all persistence and notification fan-out, before the inter-cycle
// sleep begins; nothing else mutates the ledger or the state file.
type Monitor struct {
	cfg       *config.Config
	market    MarketData
	sentiment SentimentProvider
	tracker   *tracker.Tracker
	notifier  Notifier
	events    EventPublisher
	metrics   *metrics.Metrics

	mu    sync.Mutex
	state *State
	dedup *Dedup
}

// New assembles a monitor around its collaborators. notifier and events may
// be nil when the corresponding sink is not configured.
func New(cfg *config.Config, market MarketData, sentiment SentimentProvider, tr *tracker.Tracker, notifier Notifier, events EventPublisher, m *metrics.Metrics) *Monitor {
	state := LoadState(cfg.Storage.StateFile)
	return &Monitor{
		cfg:       cfg,
		market:    market,
		sentiment: sentiment,
		tracker:   tr,
		notifier:  notifier,
		events:    events,
		metrics:   m,
		state:     state,
		dedup:     NewDedup(state.LastSignals),
	}
}

// Run enters the polling loop until the context is cancelled. A failed or
// panicking cycle is logged and followed by a fixed backoff; no internal
// error terminates the loop.
func (m *Monitor) Run(ctx context.Context) error {
	log.Printf("Monitor starting: interval=%dm hours=%d-%d days=%d-%d tickers=%v",
		m.cfg.Alerts.IntervalMinutes, m.cfg.Alerts.HoursStart, m.cfg.Alerts.HoursEnd,
		m.cfg.Alerts.DaysStart, m.cfg.Alerts.DaysEnd, m.cfg.Trading.Tickers)
	if m.cfg.Notify.WebhookURL == "" {
		log.Println("Warning: no webhook configured, alerts will only be logged")
	}

	m.mu.Lock()
	if m.state.Stats.StartedAt == nil {
		now := time.Now()
		m.state.Stats.StartedAt = &now
	}
	m.mu.Unlock()

	interval := time.Duration(m.cfg.Alerts.IntervalMinutes) * time.Minute
	for ctx.Err() == nil {
		if err := m.tick(ctx); err != nil {
			log.Printf("Cycle failed: %v (retrying in %s)", err, errorBackoff)
			m.metrics.CycleErrorsTotal.Inc()
			m.sleep(ctx, errorBackoff)
			continue
		}
		m.sleep(ctx, interval)
	}

	if err := m.saveState(); err != nil {
		log.Printf("Warning: could not persist monitor state on shutdown: %v", err)
	}
	log.Println("Monitor stopped")
	return nil
}

// tick runs one scheduled slot, recovering panics so a transient fault in
// any collaborator cannot kill the loop.
func (m *Monitor) tick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panicked: %v", r)
		}
	}()

	now := time.Now()
	if !m.InWindow(now) {
		log.Printf("[%s] Outside monitoring window, skipping cycle", now.Format("15:04"))
		return nil
	}
	_, err = m.RunCycle(ctx)
	return err
}

// InWindow reports whether t falls inside the configured active days
// (ISO weekday 1..7) and hours (inclusive start, exclusive end).
func (m *Monitor) InWindow(t time.Time) bool {
	day := int(t.Weekday())
	if day == 0 {
		day = 7 // Sunday
	}
	if day < m.cfg.Alerts.DaysStart || day > m.cfg.Alerts.DaysEnd {
		return false
	}
	hour := t.Hour()
	return hour >= m.cfg.Alerts.HoursStart && hour < m.cfg.Alerts.HoursEnd
}

// RunCycle executes the full pipeline once: snapshot and score every ticker,
// settle open positions, dedup, record and notify genuinely new strong
// signals. Returns whether any alerts were sent.
func (m *Monitor) RunCycle(ctx context.Context) (bool, error) {
	log.Printf("[%s] Running analysis cycle", time.Now().Format("2006-01-02 15:04:05"))

	macro, err := m.market.Macro(ctx)
	if err != nil {
		// Macro context is additive; scoring continues without it.
		log.Printf("Warning: macro data unavailable: %v", err)
		macro = nil
	}

	thresholds := signal.Thresholds{
		RSIOverbought: m.cfg.Trading.RSIOverbought,
		RSIOversold:   m.cfg.Trading.RSIOversold,
		VIXFear:       m.cfg.Trading.VIXFearThreshold,
		YieldHigh:     m.cfg.Trading.YieldHighThreshold,
	}

	signals := make([]models.TradingSignal, 0, len(m.cfg.Trading.Tickers))
	prices := make(map[string]float64)
	for _, ticker := range m.cfg.Trading.Tickers {
		snap, err := m.market.Snapshot(ctx, ticker)
		if err != nil {
			log.Printf("Warning: no market data for %s: %v", ticker, err)
			signals = append(signals, signal.Degraded(ticker, err.Error()))
			continue
		}
		prices[ticker] = snap.Price

		score, label, err := m.sentiment.Score(ctx, ticker)
		if err != nil {
			log.Printf("Warning: sentiment unavailable for %s: %v", ticker, err)
			score, label = 0.5, "NEUTRAL"
		}
		signals = append(signals, signal.Evaluate(snap, score, label, macro, thresholds))
	}

	closed, err := m.tracker.CheckAndCloseAll(prices)
	if err != nil {
		log.Printf("Warning: %v", err)
	}
	for _, p := range closed {
		log.Printf("Position closed: %s %s %+.2f%% (%s)",
			p.Ticker, p.Action, p.PnlPercent.InexactFloat64(), p.ExitReason)
		m.metrics.ClosuresTotal.WithLabelValues(string(p.ExitReason)).Inc()
		m.publishClosure(ctx, p)
	}

	var strong []models.TradingSignal
	for _, sig := range signals {
		if sig.Action.IsStrong() && sig.Confidence > m.cfg.Trading.ConfidenceThreshold {
			strong = append(strong, sig)
		}
	}

	newSignals := strong
	if m.cfg.Alerts.OnlyNewSignals {
		newSignals = nil
		for _, sig := range strong {
			if m.dedup.IsNewOrChanged(sig.Ticker, sig.Action) {
				newSignals = append(newSignals, sig)
			}
		}
	}

	if len(newSignals) > 0 {
		log.Printf("%d new strong signal(s) detected", len(newSignals))
		m.dedup.Update(signals)

		for _, sig := range newSignals {
			id, err := m.tracker.Record(sig)
			if err != nil {
				log.Printf("Warning: %v", err)
			}
			log.Printf("Signal recorded: %s %s %s @ %.2f (confidence %.0f%%)",
				id, sig.Ticker, sig.Action, sig.EntryPrice, sig.Confidence*100)
			m.publishAlert(ctx, sig)
		}
		m.notifyAll(ctx, newSignals)
		m.metrics.AlertsSentTotal.Add(float64(len(newSignals)))
	} else if len(strong) > 0 {
		log.Printf("%d strong signal(s) already alerted", len(strong))
	}

	open := m.tracker.OpenPositions()
	m.metrics.CyclesTotal.Inc()
	m.metrics.OpenPositions.Set(float64(len(open)))

	m.mu.Lock()
	m.state.Stats.ChecksCount++
	now := time.Now()
	m.state.Stats.LastCheck = &now
	m.state.Stats.AlertsSent += len(newSignals)
	m.state.LastSignals = m.dedup.Snapshot()
	m.mu.Unlock()

	decision := len(newSignals) > 0 || len(closed) > 0
	if decision {
		m.sendSummary(ctx, models.CycleSummary{
			CompletedAt:      now,
			SignalsEvaluated: len(signals),
			StrongSignals:    len(strong),
			NewAlerts:        len(newSignals),
			PositionsClosed:  len(closed),
			OpenPositions:    len(open),
		})
		if err := m.saveState(); err != nil {
			log.Printf("Warning: could not persist monitor state: %v", err)
		}
	}

	return len(newSignals) > 0, nil
}

// StateSnapshot returns a copy of the current monitor state for status
// reporting.
func (m *Monitor) StateSnapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := State{
		LastSignals: make(map[string]models.Action, len(m.state.LastSignals)),
		Stats:       m.state.Stats,
		SavedAt:     m.state.SavedAt,
	}
	for k, v := range m.state.LastSignals {
		cp.LastSignals[k] = v
	}
	return cp
}

// notifyAll dispatches one alert per signal with bounded fan-out and waits
// for every attempt to resolve before the cycle proceeds.
func (m *Monitor) notifyAll(ctx context.Context, signals []models.TradingSignal) {
	if m.notifier == nil {
		return
	}
	sem := make(chan struct{}, 4)
	var wg sync.WaitGroup
	for _, sig := range signals {
		wg.Add(1)
		sem <- struct{}{}
		go func(s models.TradingSignal) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := m.notifier.SendSignalAlert(ctx, s); err != nil {
				log.Printf("Warning: alert delivery failed for %s: %v", s.Ticker, err)
			}
		}(sig)
	}
	wg.Wait()
}

func (m *Monitor) sendSummary(ctx context.Context, summary models.CycleSummary) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.SendCycleSummary(ctx, summary); err != nil {
		log.Printf("Warning: cycle summary delivery failed: %v", err)
	}
}

func (m *Monitor) publishAlert(ctx context.Context, sig models.TradingSignal) {
	if m.events == nil {
		return
	}
	if err := m.events.PublishSignalAlert(ctx, sig); err != nil {
		log.Printf("Warning: could not publish signal event for %s: %v", sig.Ticker, err)
	}
}

func (m *Monitor) publishClosure(ctx context.Context, p *models.Position) {
	if m.events == nil {
		return
	}
	if err := m.events.PublishPositionClosed(ctx, p); err != nil {
		log.Printf("Warning: could not publish closure event for %s: %v", p.Ticker, err)
	}
}

func (m *Monitor) saveState() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Save(m.cfg.Storage.StateFile)
}

// sleep waits for d, checking for cancellation at one-second granularity so
// shutdown stays responsive.
func (m *Monitor) sleep(ctx context.Context, d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}
