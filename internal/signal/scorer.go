package signal

import (
	"fmt"

	"github.com/tmsentinel/market-sentinel/internal/models"
)

// Thresholds holds the tunable cutoffs consumed by the scorer.
type Thresholds struct {
	RSIOverbought float64
	RSIOversold   float64
	VIXFear       float64
	YieldHigh     float64
}

// DefaultThresholds mirror the standard configuration defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RSIOverbought: 70.0,
		RSIOversold:   30.0,
		VIXFear:       20.0,
		YieldHigh:     4.0,
	}
}

// ScoreResult is the weighted point total produced by Score.
type ScoreResult struct {
	Bullish   float64
	Bearish   float64
	Rationale []string
}

// Score converts an indicator snapshot plus sentiment and macro context into
// additive bullish/bearish point totals. It is deterministic and has no side
// effects; the rationale records each contributing factor in evaluation order.
func Score(snap *models.IndicatorSnapshot, sentimentScore float64, sentimentLabel string, macro *models.MacroSnapshot, th Thresholds) ScoreResult {
	var res ScoreResult

	if snap.RSI < th.RSIOversold {
		res.Bullish += 2
		res.add("RSI oversold (%.2f)", snap.RSI)
	} else if snap.RSI > th.RSIOverbought {
		res.Bearish += 2
		res.add("RSI overbought (%.2f)", snap.RSI)
	}

	if snap.Price > snap.SMA200 {
		res.Bullish++
		res.add("price above SMA200 (uptrend)")
	} else {
		res.Bearish++
		res.add("price below SMA200 (downtrend)")
	}

	if snap.SMA50 > snap.SMA200 {
		res.Bullish++
		res.add("golden cross SMA50/200")
	} else {
		res.Bearish++
		res.add("death cross SMA50/200")
	}

	if snap.MACD > snap.MACDSignal {
		res.Bullish++
		res.add("MACD above signal line")
	} else {
		res.Bearish++
		res.add("MACD below signal line")
	}

	if dist, ok := supportDistance(snap); ok && dist < 2 {
		res.Bullish += 2
		res.add("near S1 support (%.2f%%)", dist)
	}

	if sentimentScore > 0.7 {
		res.Bullish++
		res.add("positive news sentiment (%s)", sentimentLabel)
	} else if sentimentScore < 0.3 {
		res.Bearish++
		res.add("negative news sentiment (%s)", sentimentLabel)
	}

	if macro != nil {
		if macro.VIX > th.VIXFear {
			res.Bullish++
			res.add("elevated VIX (%.2f) favors safe havens", macro.VIX)
		}
		if macro.US10Y > th.YieldHigh {
			res.Bearish += 1.5
			res.add("high US yields (%.2f%%)", macro.US10Y)
		} else if macro.US10Y < 3.0 {
			res.Bullish += 0.5
			res.add("low US yields (%.2f%%)", macro.US10Y)
		}
	}

	return res
}

// Confidence normalizes bullish points against the total. Zero points on both
// sides means a fully neutral 0.5, not a division fault.
func Confidence(bullish, bearish float64) float64 {
	total := bullish + bearish
	if total == 0 {
		return 0.5
	}
	return bullish / total
}

func (r *ScoreResult) add(format string, args ...interface{}) {
	r.Rationale = append(r.Rationale, fmt.Sprintf(format, args...))
}

// supportDistance returns the absolute distance from price to S1 in percent.
func supportDistance(snap *models.IndicatorSnapshot) (float64, bool) {
	if snap.Price <= 0 {
		return 0, false
	}
	dist := (snap.S1 - snap.Price) / snap.Price * 100
	if dist < 0 {
		dist = -dist
	}
	return dist, true
}
