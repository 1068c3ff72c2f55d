package mood

import (
	"log"
	"math"
	"sort"
	"time"

	"github.com/jonreiter/govader"
)

// Analyzer turns a conversation into a MoodAnalysisResult. It is pure with
// respect to its inputs: the only state it holds is the injected lexicon, the
// parameter store it snapshots per call, and the VADER engine (read-only after
// construction). Safe for concurrent use.
type Analyzer struct {
	params  *ParameterStore
	lexicon *Lexicon
	vader   *govader.SentimentIntensityAnalyzer
}

// NewAnalyzer builds an analyzer. The domain lexicon's valences are injected
// into VADER's table (scaled to its ±4 range) so both signals agree on the
// domain vocabulary. nil lexicon gets the default tables.
func NewAnalyzer(store *ParameterStore, lex *Lexicon) *Analyzer {
	if store == nil {
		store = NewParameterStore(DefaultScoringParameters())
	}
	if lex == nil {
		lex = DefaultLexicon()
	}
	sia := govader.NewSentimentIntensityAnalyzer()
	for w, v := range lex.Positive {
		if _, exists := sia.Lexicon[w]; !exists {
			sia.Lexicon[w] = v * 1.3
		}
	}
	for w, v := range lex.Negative {
		if _, exists := sia.Lexicon[w]; !exists {
			sia.Lexicon[w] = -v * 1.3
		}
	}
	return &Analyzer{params: store, lexicon: lex, vader: sia}
}

// Params returns the live parameter store (shared with the calibration manager).
func (a *Analyzer) Params() *ParameterStore { return a.params }

// Analyze runs the five weighted sub-analyses and combines them. Never fails:
// malformed or empty conversations yield a neutral score with low confidence.
func (a *Analyzer) Analyze(conv ConversationData) MoodAnalysisResult {
	p := a.params.Snapshot()

	if len(conv.Messages) == 0 {
		log.Printf("[MOOD] conv=%s empty conversation, neutral result", conv.ID)
		return MoodAnalysisResult{
			ConversationID: conv.ID,
			Score:          5.0,
			Confidence:     0.1,
			Descriptors:    []string{"neutral"},
			Factors:        a.neutralFactors(p),
			AnalyzedAt:     time.Now().UTC(),
		}
	}

	sent := a.analyzeSentiment(conv, p)
	factors := []MoodFactor{
		sent.factor,
		a.analyzePsychological(conv, p),
		a.analyzeRelationship(conv, p),
		a.analyzeFlow(conv, p),
		a.analyzeHistorical(conv, p),
	}

	score := combineFactors(factors)

	// Ambiguous-content guard on the combined score too: a conversation whose
	// sentiment dimension found nothing must not read as low mood.
	if sent.evidenceCount == 0 && score < p.AmbiguityFloor {
		score = p.AmbiguityFloor
	}

	// The context dimensions idle at neutral on short conversations, which
	// would dilute a maximally one-sided exchange back toward 5. When
	// sentiment is extreme and nothing opposes it, follow the sentiment.
	score = amplifyExtremeSentiment(score, factors, p)

	confidence := a.computeConfidence(factors, sent.evidenceCount, p)

	// Conversation-wide contradiction penalty, applied once (the factor-level
	// penalty in the psychological dimension covers the local effect).
	if a.lexicon.HasContradiction(joinedContent(conv)) {
		score *= 1 - p.ContradictionScorePenalty
		confidence *= 1 - p.ContradictionConfidencePenalty
	}

	result := MoodAnalysisResult{
		ConversationID: conv.ID,
		Score:          clampScore(score),
		Confidence:     clamp01(confidence),
		Descriptors:    a.deriveDescriptors(conv, score),
		Factors:        factors,
		AnalyzedAt:     time.Now().UTC(),
	}
	log.Printf("[MOOD] conv=%s score=%.2f confidence=%.2f evidence=%d", conv.ID, result.Score, result.Confidence, sent.evidenceCount)
	return result
}

// combineFactors produces the weighted average of sub-scores.
func combineFactors(factors []MoodFactor) float64 {
	var sum, weights float64
	for _, f := range factors {
		sum += f.Score * f.Weight
		weights += f.Weight
	}
	if weights == 0 {
		return 5.0
	}
	return sum / weights
}

// amplifyExtremeSentiment pulls the weighted average toward the sentiment
// sub-score when that sub-score sits far from neutral and no other dimension
// leans the opposite way. Without this, the low-evidence dimensions sitting at
// 5.0 cap a purely positive conversation well below its evident mood.
func amplifyExtremeSentiment(score float64, factors []MoodFactor, p ScoringParameters) float64 {
	var sentiment float64
	found := false
	for _, f := range factors {
		if f.Type == FactorSentiment {
			sentiment = f.Score
			found = true
			break
		}
	}
	if !found || p.ExtremeConsensusPull <= 0 {
		return score
	}

	high := sentiment >= 5.0+p.ExtremeSentimentThreshold
	low := sentiment <= 5.0-p.ExtremeSentimentThreshold
	if !high && !low {
		return score
	}
	for _, f := range factors {
		if f.Type == FactorSentiment {
			continue
		}
		if (high && f.Score < 4.5) || (low && f.Score > 5.5) {
			return score
		}
	}
	return score + (sentiment-score)*p.ExtremeConsensusPull
}

// computeConfidence derives 0..1 from evidence volume, inter-factor agreement
// and extremity. Factor sub-scores live in [0,10], so the maximum possible
// variance among them is 25; agreement is the inverse of variance against
// that bound. Near-zero evidence collapses confidence almost entirely.
func (a *Analyzer) computeConfidence(factors []MoodFactor, evidenceCount int, p ScoringParameters) float64 {
	evidenceRatio := float64(evidenceCount) / float64(p.EvidenceCeiling)
	if evidenceRatio > 1 {
		evidenceRatio = 1
	}

	scores := make([]float64, len(factors))
	for i, f := range factors {
		scores[i] = f.Score
	}
	agreement := 1 - populationVariance(scores)/25.0
	if agreement < 0 {
		agreement = 0
	}

	confidence := 0.5*evidenceRatio + 0.5*agreement

	// Extremes are easier calls: all dimensions pulling the same direction.
	mean := meanOf(scores)
	if mean >= 8.0 || mean <= 2.0 {
		confidence += 0.1
	}

	// Aggressive penalties when there is almost nothing to go on.
	switch {
	case evidenceCount == 0:
		confidence *= 0.005
	case evidenceCount == 1:
		confidence *= 0.3
	case evidenceCount == 2:
		confidence *= 0.6
	}

	return clamp01(confidence)
}

// deriveDescriptors builds the capped, deduplicated descriptor list from the
// combined score band and the strongest lexicon hits.
func (a *Analyzer) deriveDescriptors(conv ConversationData, score float64) []string {
	var out []string
	switch {
	case score >= 8.5:
		out = append(out, "elated")
	case score >= 7.0:
		out = append(out, "positive", "upbeat")
	case score >= 5.5:
		out = append(out, "content")
	case score >= 4.5:
		out = append(out, "neutral")
	case score >= 3.0:
		out = append(out, "low", "subdued")
	default:
		out = append(out, "distressed")
	}

	text := joinedContent(conv)
	out = append(out, topHits(a.lexicon.PositiveHits(text))...)
	out = append(out, topHits(a.lexicon.NegativeHits(text))...)
	return capStrings(out, MaxDescriptors)
}

// topHits returns hit words ordered by intensity, strongest first.
func topHits(hits map[string]float64) []string {
	words := make([]string, 0, len(hits))
	for w := range hits {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if hits[words[i]] != hits[words[j]] {
			return hits[words[i]] > hits[words[j]]
		}
		return words[i] < words[j]
	})
	return words
}

func (a *Analyzer) neutralFactors(p ScoringParameters) []MoodFactor {
	mk := func(t FactorType, w float64) MoodFactor {
		return MoodFactor{Type: t, Weight: w, Score: 5.0, Description: "no content"}
	}
	return []MoodFactor{
		mk(FactorSentiment, p.Weights.Sentiment),
		mk(FactorPsychological, p.Weights.Psychological),
		mk(FactorRelationship, p.Weights.Relationship),
		mk(FactorFlow, p.Weights.Flow),
		mk(FactorHistorical, p.Weights.Historical),
	}
}

// Enrich returns a new result carrying relationship dynamics, contextual
// factors and the subject's baseline. base is never mutated.
func (a *Analyzer) Enrich(base MoodAnalysisResult, conv ConversationData, baseline *EmotionalBaseline) MoodAnalysisResult {
	out := base

	dyn := RelationshipDynamics{ParticipationBalance: participationBalance(conv)}
	text := joinedContent(conv)
	dyn.SupportDetected = len(ContainsAny(text, a.lexicon.Support)) > 0
	for _, part := range conv.Participants {
		if part.Role == RoleVulnerableSharer {
			dyn.VulnerabilityShared = true
		}
		if part.Role == RoleEmotionalLeader && dyn.DominantRole == "" {
			dyn.DominantRole = part.Role
		}
	}
	out.RelationshipDynamics = &dyn

	var ctx []string
	if conv.Context != nil {
		if conv.Context.ConversationType != "" {
			ctx = append(ctx, "type:"+string(conv.Context.ConversationType))
		}
		if conv.Context.RelationshipType != "" {
			ctx = append(ctx, "relationship:"+conv.Context.RelationshipType)
		}
		if conv.Context.Platform != "" {
			ctx = append(ctx, "platform:"+conv.Context.Platform)
		}
	}
	out.ContextualFactors = ctx

	if baseline != nil {
		b := *baseline
		out.EmotionalBaseline = &b
	}
	return out
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func populationVariance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := meanOf(xs)
	var sum float64
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return sum / float64(len(xs))
}

func stddevOf(xs []float64) float64 {
	return math.Sqrt(populationVariance(xs))
}
