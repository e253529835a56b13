package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmsentinel/market-sentinel/internal/models"
)

func TestDecide_StrongBuy(t *testing.T) {
	snap := bullishSnapshot()

	sig := Decide(6, 1, 6.0/7.0, snap, []string{"RSI oversold"})

	assert.Equal(t, models.ActionStrongBuy, sig.Action)
	assert.Equal(t, 2050.0, sig.EntryPrice)
	require.NotNil(t, sig.StopLoss)
	require.NotNil(t, sig.TakeProfit)
	// stop = S1 - 0.5*ATR = 2033.33 - 9 = 2024.33, target = R1
	assert.Equal(t, 2024.33, *sig.StopLoss)
	assert.Equal(t, 2063.33, *sig.TakeProfit)
	assert.Equal(t, 0.86, sig.Confidence)
}

func TestDecide_Buy(t *testing.T) {
	snap := bullishSnapshot()

	sig := Decide(4, 2, 4.0/6.0, snap, nil)

	assert.Equal(t, models.ActionBuy, sig.Action)
	require.NotNil(t, sig.StopLoss)
	assert.Equal(t, 2033.33, *sig.StopLoss)
	assert.Equal(t, 2063.33, *sig.TakeProfit)
}

func TestDecide_StrongSell(t *testing.T) {
	snap := bearishSnapshot()

	sig := Decide(1, 6, 1.0/7.0, snap, nil)

	assert.Equal(t, models.ActionStrongSell, sig.Action)
	require.NotNil(t, sig.StopLoss)
	// stop = R1 + 0.5*ATR = 23 + 0.2 = 23.2, target = S1
	assert.Equal(t, 23.2, *sig.StopLoss)
	assert.Equal(t, 20.0, *sig.TakeProfit)
}

func TestDecide_Sell(t *testing.T) {
	snap := bearishSnapshot()

	sig := Decide(2, 4, 2.0/6.0, snap, nil)

	assert.Equal(t, models.ActionSell, sig.Action)
	assert.Equal(t, 23.0, *sig.StopLoss)
	assert.Equal(t, 20.0, *sig.TakeProfit)
}

func TestDecide_NeutralHasNoLevels(t *testing.T) {
	snap := bullishSnapshot()

	sig := Decide(0, 0, 0.5, snap, nil)

	assert.Equal(t, models.ActionNeutral, sig.Action)
	assert.Nil(t, sig.StopLoss)
	assert.Nil(t, sig.TakeProfit)
	assert.Equal(t, 0.5, sig.Confidence)
}

func TestDecide_PriorityOrder_BullishBeforeBearish(t *testing.T) {
	// A contradictory input cannot normally occur, but the contract says the
	// bullish branches are checked first.
	snap := bullishSnapshot()

	sig := Decide(5, 5, 0.75, snap, nil)

	assert.Equal(t, models.ActionStrongBuy, sig.Action)
}

func TestDecide_HighBearishLowConfidenceRequired(t *testing.T) {
	snap := bearishSnapshot()

	// bearish >= 5 but confidence not < 0.3: falls through to SELL check,
	// which matches at confidence < 0.4.
	sig := Decide(2, 5, 0.35, snap, nil)
	assert.Equal(t, models.ActionSell, sig.Action)

	// confidence too high for any sell branch.
	sig = Decide(2, 5, 0.45, snap, nil)
	assert.Equal(t, models.ActionNeutral, sig.Action)
}

func TestEvaluate_EndToEndStrongBuy(t *testing.T) {
	snap := bullishSnapshot()
	macro := &models.MacroSnapshot{VIX: 25.0, US10Y: 2.5}

	sig := Evaluate(snap, 0.8, "POSITIVE", macro, DefaultThresholds())

	assert.Equal(t, models.ActionStrongBuy, sig.Action)
	assert.Equal(t, 1.0, sig.Confidence)
	assert.NotEmpty(t, sig.Rationale)
}

func TestEvaluate_MissingSnapshotDegradesToNeutral(t *testing.T) {
	sig := Evaluate(nil, 0.5, "NEUTRAL", nil, DefaultThresholds())

	assert.Equal(t, models.ActionNeutral, sig.Action)
	assert.Zero(t, sig.Confidence)
	require.Len(t, sig.Rationale, 1)
	assert.Contains(t, sig.Rationale[0], "data error")
}

func TestEvaluate_ZeroPriceDegradesToNeutral(t *testing.T) {
	snap := &models.IndicatorSnapshot{Ticker: "PL=F"}

	sig := Evaluate(snap, 0.5, "NEUTRAL", nil, DefaultThresholds())

	assert.Equal(t, models.ActionNeutral, sig.Action)
	assert.Equal(t, "PL=F", sig.Ticker)
	assert.Zero(t, sig.Confidence)
	assert.Nil(t, sig.StopLoss)
	assert.Nil(t, sig.TakeProfit)
}
