package marketdata

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"

	"github.com/tmsentinel/market-sentinel/internal/models"
)

const (
	vixSymbol   = "^VIX"
	yieldSymbol = "^TNX"

	// lookbackDays covers the SMA200 window plus weekends/holidays slack.
	lookbackDays = 320
)

// YahooProvider fetches quotes and daily history from Yahoo Finance and
// derives the indicator snapshot consumed by the scorer. An optional cache
// short-circuits refetches inside the snapshot TTL.
type YahooProvider struct {
	cache *Cache
}

// NewYahooProvider returns a provider. cache may be nil.
func NewYahooProvider(cache *Cache) *YahooProvider {
	return &YahooProvider{cache: cache}
}

// Snapshot builds the full indicator bundle for one ticker.
func (p *YahooProvider) Snapshot(ctx context.Context, ticker string) (*models.IndicatorSnapshot, error) {
	if p.cache != nil {
		if snap, err := p.cache.GetSnapshot(ctx, ticker); err == nil && snap != nil {
			return snap, nil
		}
	}

	bars, err := fetchDaily(ticker, lookbackDays)
	if err != nil {
		return nil, err
	}
	snap, err := buildSnapshot(ticker, bars)
	if err != nil {
		return nil, err
	}

	if q, err := quote.Get(ticker); err == nil && q != nil && q.RegularMarketPrice > 0 {
		snap.Price = q.RegularMarketPrice
		snap.High = q.RegularMarketDayHigh
		snap.Low = q.RegularMarketDayLow
	}

	if p.cache != nil {
		if err := p.cache.SetSnapshot(ctx, snap); err != nil {
			log.Printf("Warning: could not cache snapshot for %s: %v", ticker, err)
		}
	}
	return snap, nil
}

// Macro fetches the VIX level and the US 10-year yield.
func (p *YahooProvider) Macro(ctx context.Context) (*models.MacroSnapshot, error) {
	vix, err := quote.Get(vixSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch VIX: %w", err)
	}
	tnx, err := quote.Get(yieldSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch US 10Y yield: %w", err)
	}
	if vix == nil || tnx == nil {
		return nil, fmt.Errorf("empty macro quote response")
	}
	return &models.MacroSnapshot{
		VIX:       vix.RegularMarketPrice,
		US10Y:     tnx.RegularMarketPrice / 10, // ^TNX quotes tenths of a percent
		FetchedAt: time.Now(),
	}, nil
}

// bars holds aligned daily OHLC series, oldest first.
type bars struct {
	highs  []float64
	lows   []float64
	closes []float64
}

func fetchDaily(symbol string, days int) (*bars, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	b := &bars{}
	for iter.Next() {
		bar := iter.Bar()
		c := bar.Close.InexactFloat64()
		if c <= 0 {
			continue
		}
		b.highs = append(b.highs, bar.High.InexactFloat64())
		b.lows = append(b.lows, bar.Low.InexactFloat64())
		b.closes = append(b.closes, c)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", symbol, err)
	}
	if len(b.closes) == 0 {
		return nil, fmt.Errorf("no history returned for %s", symbol)
	}
	return b, nil
}

// buildSnapshot derives every indicator from a daily series. Pivots use the
// last completed session so they stay stable intraday.
func buildSnapshot(ticker string, b *bars) (*models.IndicatorSnapshot, error) {
	n := len(b.closes)

	rsi, err := RSI(b.closes, 14)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}
	sma50, err := SMA(b.closes, 50)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}
	sma200, err := SMA(b.closes, 200)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}
	macdLine, macdSignal, err := MACD(b.closes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}
	bbUpper, bbLower, err := Bollinger(b.closes, 20, 2)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}
	atr, err := ATR(b.highs, b.lows, b.closes, 14)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}

	prev := n - 1
	if n >= 2 {
		prev = n - 2
	}
	pivots := PivotPoints(b.highs[prev], b.lows[prev], b.closes[prev])

	return &models.IndicatorSnapshot{
		Ticker:     ticker,
		Price:      b.closes[n-1],
		High:       b.highs[n-1],
		Low:        b.lows[n-1],
		Pivot:      pivots.Pivot,
		R1:         pivots.R1,
		S1:         pivots.S1,
		RSI:        rsi,
		SMA50:      sma50,
		SMA200:     sma200,
		MACD:       macdLine,
		MACDSignal: macdSignal,
		BBUpper:    bbUpper,
		BBLower:    bbLower,
		ATR:        atr,
		FetchedAt:  time.Now(),
	}, nil
}
