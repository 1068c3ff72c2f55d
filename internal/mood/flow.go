package mood

import (
	"strings"
	"time"
)

// Pacing boundaries for message gaps.
const (
	rapidExchangeGap  = 30 * time.Second
	reflectivePaceGap = 5 * time.Minute
)

// analyzeFlow scores the conversational-flow dimension: message pacing,
// question frequency, and the first-half versus second-half sentiment trend.
func (a *Analyzer) analyzeFlow(conv ConversationData, p ScoringParameters) MoodFactor {
	score := 5.0
	var evidence []string

	if len(conv.Messages) >= 2 {
		var rapid, reflective, gaps int
		for i := 1; i < len(conv.Messages); i++ {
			gap := conv.Messages[i].Timestamp.Sub(conv.Messages[i-1].Timestamp)
			if gap < 0 {
				continue
			}
			gaps++
			if gap <= rapidExchangeGap {
				rapid++
			} else if gap >= reflectivePaceGap {
				reflective++
			}
		}
		if gaps > 0 {
			if float64(rapid)/float64(gaps) > 0.5 {
				score += 0.6
				evidence = append(evidence, "rapid engaged exchange")
			} else if float64(reflective)/float64(gaps) > 0.5 {
				score += 0.3
				evidence = append(evidence, "reflective pacing")
			}
		}
	}

	// Questions signal engagement.
	var questions int
	for _, msg := range conv.Messages {
		if strings.Contains(msg.Content, "?") {
			questions++
		}
	}
	if len(conv.Messages) > 0 {
		ratio := float64(questions) / float64(len(conv.Messages))
		if ratio >= 0.3 {
			score += 0.5
			evidence = append(evidence, "frequent questions (mutual engagement)")
		}
	}

	// First half vs second half sentiment trend.
	if len(conv.Messages) >= 4 {
		mid := len(conv.Messages) / 2
		first := a.halfSentiment(conv.Messages[:mid])
		second := a.halfSentiment(conv.Messages[mid:])
		switch {
		case second-first > 0.5:
			score += 0.7
			evidence = append(evidence, "sentiment improved over the conversation")
		case first-second > 0.5:
			score -= 0.8
			evidence = append(evidence, "sentiment declined over the conversation")
		}
	}

	return MoodFactor{
		Type:        FactorFlow,
		Weight:      p.Weights.Flow,
		Score:       clampScore(score),
		Description: "conversational flow assessment",
		Evidence:    capStrings(evidence, MaxFactorEvidence),
	}
}

// halfSentiment returns the net lexicon intensity per message over a slice.
func (a *Analyzer) halfSentiment(msgs []ConversationMessage) float64 {
	if len(msgs) == 0 {
		return 0
	}
	var net float64
	for _, msg := range msgs {
		for _, v := range a.lexicon.PositiveHits(msg.Content) {
			net += v
		}
		for _, v := range a.lexicon.NegativeHits(msg.Content) {
			net -= v
		}
	}
	return net / float64(len(msgs))
}

// analyzeHistorical scores the historical-baseline dimension from explicit
// temporal-comparison language and extreme-affect messages. Low weight by
// design: real history lives in the baseline manager, this dimension only
// reads what the conversation itself claims about the past.
func (a *Analyzer) analyzeHistorical(conv ConversationData, p ScoringParameters) MoodFactor {
	text := joinedContent(conv)
	score := 5.0
	var evidence []string

	if m := ContainsAny(text, a.lexicon.TemporalImprovement); len(m) > 0 {
		score += 1.2
		evidence = append(evidence, "improvement vs past: "+m[0])
	}
	if m := ContainsAny(text, a.lexicon.TemporalDecline); len(m) > 0 {
		score -= 1.2
		evidence = append(evidence, "decline vs past: "+m[0])
	}
	if m := ContainsAny(text, a.lexicon.ExtremeIntensity); len(m) > 0 {
		// Extreme affect is a deviation from any plausible baseline.
		if len(a.lexicon.PositiveHits(text)) >= len(a.lexicon.NegativeHits(text)) {
			score += 0.8
		} else {
			score -= 0.8
		}
		evidence = append(evidence, "extreme affect: "+m[0])
	}

	return MoodFactor{
		Type:        FactorHistorical,
		Weight:      p.Weights.Historical,
		Score:       clampScore(score),
		Description: "temporal self-comparison assessment",
		Evidence:    capStrings(evidence, MaxFactorEvidence),
	}
}
