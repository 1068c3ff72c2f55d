package mood

import (
	"fmt"
	"strings"
)

// sentimentResult carries the sentiment factor plus intermediates the combiner
// needs (evidence count drives the ambiguity guard and confidence shaping).
type sentimentResult struct {
	factor        MoodFactor
	evidenceCount int
	posAvg        float64
	negAvg        float64
}

// vaderBlendWeight — how much of the sentiment sub-score comes from VADER's
// compound score. The domain lexicon stays dominant so the boost table keeps
// its meaning.
const vaderBlendWeight = 0.2

// analyzeSentiment scores the sentiment dimension. Per message: sum positive
// and negative lexicon intensities; messages with at least one hit contribute
// to the running averages. The positive-minus-negative delta is pushed through
// the non-linear boost table, then blended with VADER's compound score.
// Near-zero delta with at most one evidence item floors at the ambiguity
// floor: noise must not read as low mood.
func (a *Analyzer) analyzeSentiment(conv ConversationData, p ScoringParameters) sentimentResult {
	var posSum, negSum float64
	var contributing int
	var evidence []string

	for _, msg := range conv.Messages {
		pos := a.lexicon.PositiveHits(msg.Content)
		neg := a.lexicon.NegativeHits(msg.Content)
		if len(pos) == 0 && len(neg) == 0 {
			continue
		}
		contributing++
		var msgPos, msgNeg float64
		for w, v := range pos {
			msgPos += v
			evidence = append(evidence, fmt.Sprintf("positive: %q", w))
		}
		for w, v := range neg {
			msgNeg += v
			evidence = append(evidence, fmt.Sprintf("negative: %q", w))
		}
		posSum += msgPos
		negSum += msgNeg
	}

	evidenceCount := len(evidence)
	var posAvg, negAvg float64
	if contributing > 0 {
		posAvg = posSum / float64(contributing)
		negAvg = negSum / float64(contributing)
	}

	delta := posAvg - negAvg
	boost := boostFor(p.SentimentBoosts, maxFloat(posAvg, negAvg))
	score := 5.0 + delta*boost

	// Blend in VADER over the whole conversation, remapped from [-1,1] to [0,10].
	if a.vader != nil && len(conv.Messages) > 0 {
		var b strings.Builder
		for _, msg := range conv.Messages {
			b.WriteString(msg.Content)
			b.WriteString(" ")
		}
		compound := a.vader.PolarityScores(b.String()).Compound
		score = (1-vaderBlendWeight)*score + vaderBlendWeight*(5+compound*5)
	}

	// Ambiguity guard: almost no evidence and a flat delta is "unknown", not "low".
	if evidenceCount <= 1 && delta > -0.2 && delta < 0.2 && score < p.AmbiguityFloor {
		score = p.AmbiguityFloor
	}

	return sentimentResult{
		factor: MoodFactor{
			Type:        FactorSentiment,
			Weight:      p.Weights.Sentiment,
			Score:       clampScore(score),
			Description: sentimentDescription(posAvg, negAvg, contributing),
			Evidence:    capStrings(evidence, MaxFactorEvidence),
		},
		evidenceCount: evidenceCount,
		posAvg:        posAvg,
		negAvg:        negAvg,
	}
}

// boostFor picks the multiplier for the largest average magnitude. Bands are
// ordered highest threshold first.
func boostFor(bands []BoostBand, magnitude float64) float64 {
	for _, b := range bands {
		if magnitude >= b.Threshold {
			return b.Multiplier
		}
	}
	return 1.0
}

func sentimentDescription(posAvg, negAvg float64, contributing int) string {
	switch {
	case contributing == 0:
		return "no sentiment-bearing content"
	case posAvg > negAvg*1.5:
		return "predominantly positive sentiment"
	case negAvg > posAvg*1.5:
		return "predominantly negative sentiment"
	default:
		return "mixed or mild sentiment"
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
