package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmsentinel/market-sentinel/internal/models"
)

func bullishSnapshot() *models.IndicatorSnapshot {
	return &models.IndicatorSnapshot{
		Ticker:     "GC=F",
		Price:      2050.0,
		High:       2060.0,
		Low:        2030.0,
		Pivot:      2046.67,
		R1:         2063.33,
		S1:         2033.33,
		RSI:        25.0,   // oversold
		SMA50:      2010.0, // golden cross
		SMA200:     1980.0, // price above
		MACD:       1.2,
		MACDSignal: 0.8, // MACD bullish
		BBUpper:    2070.0,
		BBLower:    2010.0,
		ATR:        18.0,
	}
}

func bearishSnapshot() *models.IndicatorSnapshot {
	return &models.IndicatorSnapshot{
		Ticker:     "SI=F",
		Price:      22.0,
		RSI:        78.0, // overbought
		SMA50:      23.5,
		SMA200:     24.0, // price below, death cross
		MACD:       -0.3,
		MACDSignal: -0.1, // MACD bearish
		R1:         23.0,
		S1:         20.0, // far from support (>2%)
		ATR:        0.4,
	}
}

func TestScore_BullishFactors(t *testing.T) {
	snap := bullishSnapshot()
	macro := &models.MacroSnapshot{VIX: 25.0, US10Y: 2.5}

	res := Score(snap, 0.8, "POSITIVE", macro, DefaultThresholds())

	// RSI +2, trend +1, golden cross +1, MACD +1, near S1 (0.81%) +2,
	// sentiment +1, VIX +1, low yield +0.5
	assert.InDelta(t, 9.5, res.Bullish, 1e-9)
	assert.Zero(t, res.Bearish)
	assert.Contains(t, res.Rationale[0], "RSI oversold")
	assert.Len(t, res.Rationale, 8)
}

func TestScore_BearishFactors(t *testing.T) {
	snap := bearishSnapshot()
	macro := &models.MacroSnapshot{VIX: 14.0, US10Y: 4.6}

	res := Score(snap, 0.2, "NEGATIVE", macro, DefaultThresholds())

	// RSI +2, trend +1, death cross +1, MACD +1, sentiment +1, yields +1.5
	assert.InDelta(t, 7.5, res.Bearish, 1e-9)
	assert.Zero(t, res.Bullish)
}

func TestScore_NeutralSentimentAddsNothing(t *testing.T) {
	snap := bearishSnapshot()

	res := Score(snap, 0.5, "NEUTRAL", nil, DefaultThresholds())

	// RSI +2, trend +1, death cross +1, MACD +1; no sentiment contribution
	assert.InDelta(t, 5.0, res.Bearish, 1e-9)
	for _, r := range res.Rationale {
		assert.NotContains(t, r, "sentiment")
	}
}

func TestScore_NilMacroSkipsMacroRules(t *testing.T) {
	snap := bullishSnapshot()

	res := Score(snap, 0.5, "NEUTRAL", nil, DefaultThresholds())

	for _, r := range res.Rationale {
		assert.NotContains(t, r, "VIX")
		assert.NotContains(t, r, "yields")
	}
}

func TestConfidence_Bounds(t *testing.T) {
	cases := []struct {
		bullish, bearish float64
	}{
		{0, 0}, {6, 1}, {1, 6}, {0, 9.5}, {9.5, 0}, {3.5, 3.5},
	}
	for _, c := range cases {
		conf := Confidence(c.bullish, c.bearish)
		assert.GreaterOrEqual(t, conf, 0.0)
		assert.LessOrEqual(t, conf, 1.0)
	}
}

func TestConfidence_ZeroPointsIsNeutralHalf(t *testing.T) {
	assert.Equal(t, 0.5, Confidence(0, 0))
}

func TestConfidence_SixToOne(t *testing.T) {
	require.InDelta(t, 6.0/7.0, Confidence(6, 1), 1e-9)
}
