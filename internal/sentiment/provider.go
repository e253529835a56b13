package sentiment

import "context"

// Sentiment labels, ordered negative to positive.
const (
	LabelVeryNegative = "VERY_NEGATIVE"
	LabelNegative     = "NEGATIVE"
	LabelNeutral      = "NEUTRAL"
	LabelPositive     = "POSITIVE"
	LabelVeryPositive = "VERY_POSITIVE"
)

// Provider scores news sentiment for a ticker. Score is in [0,1] where 0 is
// very negative and 1 very positive; 0.5 is neutral.
type Provider interface {
	Score(ctx context.Context, ticker string) (float64, string, error)
}

// Static always returns a fixed score. The zero value is unusable; use
// Neutral for the no-news-source configuration.
type Static struct {
	Value float64
	Label string
}

// Neutral is the provider used when no news source is configured.
func Neutral() *Static {
	return &Static{Value: 0.5, Label: LabelNeutral}
}

func (s *Static) Score(_ context.Context, _ string) (float64, string, error) {
	return s.Value, s.Label, nil
}
