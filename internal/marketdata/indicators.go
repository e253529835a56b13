package marketdata

import (
	"errors"
	"math"
)

// ErrInsufficientData is returned when a series is too short for the
// requested indicator window.
var ErrInsufficientData = errors.New("insufficient history for indicator")

// PivotLevels are classic floor-trader pivot points derived from the
// previous session's range.
type PivotLevels struct {
	Pivot float64
	R1    float64
	S1    float64
	R2    float64
	S2    float64
}

// PivotPoints computes classic pivot levels from the prior session's
// high, low, and close.
func PivotPoints(high, low, close float64) PivotLevels {
	pivot := (high + low + close) / 3
	return PivotLevels{
		Pivot: pivot,
		R1:    2*pivot - low,
		S1:    2*pivot - high,
		R2:    pivot + (high - low),
		S2:    pivot - (high - low),
	}
}

// SMA returns the simple moving average of the last period closes.
func SMA(closes []float64, period int) (float64, error) {
	if len(closes) < period || period <= 0 {
		return 0, ErrInsufficientData
	}
	var sum float64
	for _, v := range closes[len(closes)-period:] {
		sum += v
	}
	return sum / float64(period), nil
}

// RSI returns the latest relative strength index using Wilder smoothing.
func RSI(closes []float64, period int) (float64, error) {
	if len(closes) < period+1 {
		return 0, ErrInsufficientData
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	alpha := float64(period - 1)
	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*alpha + gain) / float64(period)
		avgLoss = (avgLoss*alpha + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100, nil
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}

// EMASeries returns the exponential moving average series for the closes.
// The first period values seed with an SMA, matching the conventional
// definition.
func EMASeries(closes []float64, period int) ([]float64, error) {
	if len(closes) < period || period <= 0 {
		return nil, ErrInsufficientData
	}

	out := make([]float64, len(closes))
	var seed float64
	for _, v := range closes[:period] {
		seed += v
	}
	seed /= float64(period)

	k := 2.0 / float64(period+1)
	out[period-1] = seed
	for i := period; i < len(closes); i++ {
		out[i] = closes[i]*k + out[i-1]*(1-k)
	}
	for i := 0; i < period-1; i++ {
		out[i] = math.NaN()
	}
	return out, nil
}

// MACD returns the latest MACD line and signal line using the standard
// 12/26/9 exponential windows.
func MACD(closes []float64) (line, signal float64, err error) {
	const fast, slow, sig = 12, 26, 9
	if len(closes) < slow+sig {
		return 0, 0, ErrInsufficientData
	}

	fastEMA, err := EMASeries(closes, fast)
	if err != nil {
		return 0, 0, err
	}
	slowEMA, err := EMASeries(closes, slow)
	if err != nil {
		return 0, 0, err
	}

	macd := make([]float64, 0, len(closes)-slow+1)
	for i := slow - 1; i < len(closes); i++ {
		macd = append(macd, fastEMA[i]-slowEMA[i])
	}
	signalEMA, err := EMASeries(macd, sig)
	if err != nil {
		return 0, 0, err
	}
	return macd[len(macd)-1], signalEMA[len(signalEMA)-1], nil
}

// Bollinger returns the latest upper and lower Bollinger bands
// (period-window SMA ± mult standard deviations).
func Bollinger(closes []float64, period int, mult float64) (upper, lower float64, err error) {
	mid, err := SMA(closes, period)
	if err != nil {
		return 0, 0, err
	}
	window := closes[len(closes)-period:]
	var variance float64
	for _, v := range window {
		d := v - mid
		variance += d * d
	}
	std := math.Sqrt(variance / float64(period))
	return mid + mult*std, mid - mult*std, nil
}

// ATR returns the latest average true range with Wilder smoothing.
func ATR(highs, lows, closes []float64, period int) (float64, error) {
	n := len(closes)
	if n != len(highs) || n != len(lows) {
		return 0, errors.New("mismatched OHLC series lengths")
	}
	if n < period+1 {
		return 0, ErrInsufficientData
	}

	trueRange := func(i int) float64 {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		return math.Max(hl, math.Max(hc, lc))
	}

	var atr float64
	for i := 1; i <= period; i++ {
		atr += trueRange(i)
	}
	atr /= float64(period)

	for i := period + 1; i < n; i++ {
		atr = (atr*float64(period-1) + trueRange(i)) / float64(period)
	}
	return atr, nil
}
