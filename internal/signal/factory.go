package signal

import (
	"math"

	"github.com/tmsentinel/market-sentinel/internal/models"
)

// Decide derives the discrete action and price levels from the scorer output.
// Thresholds are evaluated in strict priority order; the first match wins.
func Decide(bullish, bearish, confidence float64, snap *models.IndicatorSnapshot, rationale []string) models.TradingSignal {
	sig := models.TradingSignal{
		Ticker:     snap.Ticker,
		EntryPrice: round2(snap.Price),
		Confidence: round2(confidence),
		Rationale:  rationale,
	}

	switch {
	case bullish >= 5 && confidence > 0.7:
		sig.Action = models.ActionStrongBuy
		sig.StopLoss = price(snap.S1 - snap.ATR*0.5)
		sig.TakeProfit = price(snap.R1)
	case bullish >= 3 && confidence > 0.6:
		sig.Action = models.ActionBuy
		sig.StopLoss = price(snap.S1)
		sig.TakeProfit = price(snap.R1)
	case bearish >= 5 && confidence < 0.3:
		sig.Action = models.ActionStrongSell
		sig.StopLoss = price(snap.R1 + snap.ATR*0.5)
		sig.TakeProfit = price(snap.S1)
	case bearish >= 3 && confidence < 0.4:
		sig.Action = models.ActionSell
		sig.StopLoss = price(snap.R1)
		sig.TakeProfit = price(snap.S1)
	default:
		sig.Action = models.ActionNeutral
	}

	return sig
}

// Evaluate runs the full scorer/factory pipeline for one ticker. A missing or
// unusable snapshot degrades to a neutral zero-confidence signal instead of
// failing the cycle.
func Evaluate(snap *models.IndicatorSnapshot, sentimentScore float64, sentimentLabel string, macro *models.MacroSnapshot, th Thresholds) models.TradingSignal {
	if snap == nil || snap.Price <= 0 {
		ticker := ""
		if snap != nil {
			ticker = snap.Ticker
		}
		return Degraded(ticker, "missing market data")
	}

	res := Score(snap, sentimentScore, sentimentLabel, macro, th)
	conf := Confidence(res.Bullish, res.Bearish)
	return Decide(res.Bullish, res.Bearish, conf, snap, res.Rationale)
}

// Degraded builds the neutral signal emitted when a ticker's input data is
// missing or invalid. The cycle keeps going for the other tickers.
func Degraded(ticker, reason string) models.TradingSignal {
	return models.TradingSignal{
		Ticker:     ticker,
		Action:     models.ActionNeutral,
		Confidence: 0,
		Rationale:  []string{"data error: " + reason},
	}
}

func price(v float64) *float64 {
	r := round2(v)
	return &r
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
