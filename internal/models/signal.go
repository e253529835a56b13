package models

import "time"

// Action is a closed set of trading recommendations.
type Action string

const (
	ActionStrongBuy  Action = "STRONG_BUY"
	ActionBuy        Action = "BUY"
	ActionNeutral    Action = "NEUTRAL"
	ActionSell       Action = "SELL"
	ActionStrongSell Action = "STRONG_SELL"
)

// IsBuy reports whether the action is in the buy family.
func (a Action) IsBuy() bool {
	return a == ActionBuy || a == ActionStrongBuy
}

// IsSell reports whether the action is in the sell family.
func (a Action) IsSell() bool {
	return a == ActionSell || a == ActionStrongSell
}

// IsStrong reports whether the action is a strong (alert-worthy) signal.
func (a Action) IsStrong() bool {
	return a == ActionStrongBuy || a == ActionStrongSell
}

// IndicatorSnapshot is an immutable per-ticker bundle of price data and
// technical indicators, refreshed once per evaluation cycle.
type IndicatorSnapshot struct {
	Ticker     string    `json:"ticker"`
	Price      float64   `json:"current_price"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Pivot      float64   `json:"pivot"`
	R1         float64   `json:"r1"`
	S1         float64   `json:"s1"`
	RSI        float64   `json:"rsi"`
	SMA50      float64   `json:"sma50"`
	SMA200     float64   `json:"sma200"`
	MACD       float64   `json:"macd"`
	MACDSignal float64   `json:"macd_signal"`
	BBUpper    float64   `json:"bb_upper"`
	BBLower    float64   `json:"bb_lower"`
	ATR        float64   `json:"atr"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// MacroSnapshot holds the macro context used by the scorer.
type MacroSnapshot struct {
	VIX       float64   `json:"vix"`
	US10Y     float64   `json:"us_10y_yield"`
	FetchedAt time.Time `json:"fetched_at"`
}

// TradingSignal is the per-cycle output of the scorer/factory pipeline.
// It is never persisted directly; it feeds the position tracker.
type TradingSignal struct {
	Ticker     string   `json:"ticker"`
	Action     Action   `json:"action"`
	EntryPrice float64  `json:"entry_price"`
	StopLoss   *float64 `json:"stop_loss"`
	TakeProfit *float64 `json:"take_profit"`
	Confidence float64  `json:"confidence"`
	Rationale  []string `json:"rationale"`
}
