package mood

import "strings"

// Increments applied per indicator category found in the conversation text.
// The dimension starts neutral and moves by fixed steps so a single phrase
// never dominates.
const (
	copingBonus     = 0.8
	resilienceBonus = 1.0
	supportBonus    = 0.8
	growthBonus     = 1.0
	stressPenalty   = 1.2
)

// analyzePsychological scores the psychological-indicators dimension over the
// concatenated conversation text: coping, resilience, support and growth push
// up from neutral 5.0, stress markers push down, and contradiction markers
// take a fixed penalty (applied here once, inside the factor; the
// conversation-wide penalty in combine() is separate and smaller).
func (a *Analyzer) analyzePsychological(conv ConversationData, p ScoringParameters) MoodFactor {
	text := joinedContent(conv)
	score := 5.0
	var evidence []string

	if m := ContainsAny(text, a.lexicon.Coping); len(m) > 0 {
		score += copingBonus
		evidence = append(evidence, "coping: "+m[0])
	}
	if m := ContainsAny(text, a.lexicon.Resilience); len(m) > 0 {
		score += resilienceBonus
		evidence = append(evidence, "resilience: "+m[0])
	}
	if m := ContainsAny(text, a.lexicon.Support); len(m) > 0 {
		score += supportBonus
		evidence = append(evidence, "support: "+m[0])
	}
	if m := ContainsAny(text, a.lexicon.Growth); len(m) > 0 {
		score += growthBonus
		evidence = append(evidence, "growth: "+m[0])
	}
	if m := ContainsAny(text, a.lexicon.Stress); len(m) > 0 {
		score -= stressPenalty
		evidence = append(evidence, "stress: "+m[0])
	}
	if a.lexicon.HasContradiction(text) {
		score -= p.ContradictionFactorPenalty
		evidence = append(evidence, "contradictory framing present")
	}

	return MoodFactor{
		Type:        FactorPsychological,
		Weight:      p.Weights.Psychological,
		Score:       clampScore(score),
		Description: psychologicalDescription(len(evidence)),
		Evidence:    capStrings(evidence, MaxFactorEvidence),
	}
}

func psychologicalDescription(indicators int) string {
	if indicators == 0 {
		return "no psychological indicators detected"
	}
	return "psychological indicators detected"
}

func joinedContent(conv ConversationData) string {
	var b strings.Builder
	for i, msg := range conv.Messages {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(msg.Content)
	}
	return b.String()
}
