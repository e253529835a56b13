package sentiment

import "strings"

// KeywordScorer rates headlines by counting directional vocabulary. It is
// the deterministic fallback model: no external calls, no state.
type KeywordScorer struct {
	bullish []string
	bearish []string
}

// NewKeywordScorer returns a scorer with the built-in vocabulary.
func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{
		bullish: []string{
			"rally", "rallies", "surge", "soar", "record high", "all-time high",
			"safe haven", "gains", "climbs", "jumps", "rebound", "bullish",
			"demand rises", "buying",
		},
		bearish: []string{
			"plunge", "slump", "selloff", "sell-off", "tumble", "sinks",
			"drops", "falls", "bearish", "record low", "pressure", "weak demand",
			"losses", "decline",
		},
	}
}

// Score rates a headline set. No headlines means neutral. The score moves
// away from 0.5 in proportion to how lopsided the keyword hits are, capped
// at 0.9/0.1 so headlines alone never dominate the technical picture.
func (k *KeywordScorer) Score(headlines []Headline) (float64, string) {
	if len(headlines) == 0 {
		return 0.5, LabelNeutral
	}

	var bullishHits, bearishHits int
	for _, h := range headlines {
		title := strings.ToLower(h.Title)
		for _, kw := range k.bullish {
			if strings.Contains(title, kw) {
				bullishHits++
				break
			}
		}
		for _, kw := range k.bearish {
			if strings.Contains(title, kw) {
				bearishHits++
				break
			}
		}
	}

	total := bullishHits + bearishHits
	if total == 0 {
		return 0.5, LabelNeutral
	}

	var score float64
	switch {
	case bullishHits > bearishHits:
		score = 0.6 + float64(bullishHits-bearishHits)/float64(total)*0.3
	case bearishHits > bullishHits:
		score = 0.4 - float64(bearishHits-bullishHits)/float64(total)*0.3
	default:
		return 0.5, LabelNeutral
	}

	return clamp(score), labelFor(score)
}

func labelFor(score float64) string {
	switch {
	case score >= 0.85:
		return LabelVeryPositive
	case score > 0.55:
		return LabelPositive
	case score <= 0.15:
		return LabelVeryNegative
	case score < 0.45:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

func clamp(v float64) float64 {
	if v < 0.1 {
		return 0.1
	}
	if v > 0.9 {
		return 0.9
	}
	return v
}
