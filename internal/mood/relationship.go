package mood

// analyzeRelationship scores the relationship-context dimension from
// participant roles, conversation type and message balance. Starts neutral and
// collects bonuses for supportive roles, vulnerability disclosure, positive
// content and balanced participation.
func (a *Analyzer) analyzeRelationship(conv ConversationData, p ScoringParameters) MoodFactor {
	score := 5.0
	var evidence []string

	var supporters, vulnerable int
	for _, part := range conv.Participants {
		switch part.Role {
		case RoleSupporter, RoleListener, RoleEmotionalLeader:
			supporters++
		case RoleVulnerableSharer:
			vulnerable++
		}
	}
	if supporters > 0 {
		score += 0.8
		evidence = append(evidence, "supportive role present")
	}
	if vulnerable > 0 {
		score += 0.6
		evidence = append(evidence, "vulnerability disclosed")
	}

	if conv.Context != nil && conv.Context.ConversationType == ConversationDirect {
		score += 0.3
		evidence = append(evidence, "direct conversation")
	}

	// Participation balance across authors.
	balance := participationBalance(conv)
	if balance >= 0.6 && len(conv.Messages) >= 4 {
		score += 0.5
		evidence = append(evidence, "balanced participation")
	}

	// Positive content lifts the relational read too, weaker than in sentiment.
	pos := a.lexicon.PositiveHits(joinedContent(conv))
	if len(pos) >= 2 {
		score += 0.5
		evidence = append(evidence, "positive exchange content")
	}

	return MoodFactor{
		Type:        FactorRelationship,
		Weight:      p.Weights.Relationship,
		Score:       clampScore(score),
		Description: "relationship context assessment",
		Evidence:    capStrings(evidence, MaxFactorEvidence),
	}
}

// participationBalance returns 0..1: the message-count share of the least
// active author divided by that of the most active. 1 means perfectly even,
// 0 means a monologue (or no messages).
func participationBalance(conv ConversationData) float64 {
	counts := make(map[string]int)
	for _, msg := range conv.Messages {
		counts[msg.AuthorID]++
	}
	if len(counts) < 2 {
		return 0
	}
	minC, maxC := -1, 0
	for _, c := range counts {
		if minC == -1 || c < minC {
			minC = c
		}
		if c > maxC {
			maxC = c
		}
	}
	if maxC == 0 {
		return 0
	}
	return float64(minC) / float64(maxC)
}
