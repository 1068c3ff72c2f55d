package mood

import (
	"strings"
)

// EdgeSignal — one detector's finding: how severe, how sure, and why.
type EdgeSignal struct {
	Detected   bool     `json:"detected"`
	Severity   float64  `json:"severity"`   // 0..1
	Confidence float64  `json:"confidence"` // 0..1
	Evidence   []string `json:"evidence,omitempty"`
}

// HandlingApproach — how the caller should treat the raw score.
type HandlingApproach string

const (
	HandleStandard            HandlingApproach = "standard"
	HandleMultiInterpretation HandlingApproach = "multi_interpretation"
	HandleUncertaintyFlagging HandlingApproach = "uncertainty_flagging"
	HandleHumanReview         HandlingApproach = "human_review"
)

// EmotionalComplexityAssessment aggregates every edge signal into one
// complexity score and a recommended handling approach.
type EmotionalComplexityAssessment struct {
	MixedEmotions        EdgeSignal       `json:"mixed_emotions"`
	ContradictorySignals EdgeSignal       `json:"contradictory_signals"`
	TemporalInconsistency EdgeSignal      `json:"temporal_inconsistency"`
	CulturalComplexity   EdgeSignal       `json:"cultural_complexity"`
	ContextualAmbiguity  EdgeSignal       `json:"contextual_ambiguity"`
	ExtremeAffect        EdgeSignal       `json:"extreme_affect"`
	Sarcasm              EdgeSignal       `json:"sarcasm"`
	ComplexityScore      float64          `json:"complexity_score"` // 0..1
	RecommendedApproach  HandlingApproach `json:"recommended_approach"`
	// Set only when sarcasm is detected; the caller decides whether to apply.
	AdjustmentRecommendation string `json:"adjustment_recommendation,omitempty"`
}

// UncertaintyReport quantifies how much the raw score should be trusted.
type UncertaintyReport struct {
	Sources     map[string]float64 `json:"sources"`     // impact per uncertainty source
	Uncertainty float64            `json:"uncertainty"` // 0..1 summed impact
	Reliability float64            `json:"reliability"` // 1 - uncertainty
	IntervalLow float64            `json:"interval_low"`
	IntervalHigh float64           `json:"interval_high"`
}

// EdgeCaseHandler detects situations a face-value score would get wrong.
type EdgeCaseHandler struct {
	lexicon *Lexicon
}

func NewEdgeCaseHandler(lex *Lexicon) *EdgeCaseHandler {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &EdgeCaseHandler{lexicon: lex}
}

// Assess runs every detector and bands the summed complexity into a handling
// approach.
func (h *EdgeCaseHandler) Assess(conv ConversationData) EmotionalComplexityAssessment {
	text := joinedContent(conv)
	a := EmotionalComplexityAssessment{
		MixedEmotions:         h.detectMixedEmotions(text),
		ContradictorySignals:  h.detectContradictorySignals(conv, text),
		TemporalInconsistency: h.detectTemporalInconsistency(conv),
		CulturalComplexity:    h.detectCulturalComplexity(text),
		ContextualAmbiguity:   h.detectContextualAmbiguity(text),
		ExtremeAffect:         h.detectExtremeAffect(conv, text),
		Sarcasm:               h.DetectSarcasm(text),
	}

	// Fixed contribution per detected type; the sum is capped at 1.
	score := 0.0
	add := func(sig EdgeSignal, weight float64) {
		if sig.Detected {
			score += weight * sig.Severity
		}
	}
	add(a.MixedEmotions, 0.25)
	add(a.ContradictorySignals, 0.25)
	add(a.TemporalInconsistency, 0.15)
	add(a.CulturalComplexity, 0.2)
	add(a.ContextualAmbiguity, 0.15)
	add(a.ExtremeAffect, 0.2)
	add(a.Sarcasm, 0.3)
	a.ComplexityScore = clamp01(score)

	switch {
	case a.ComplexityScore < 0.3:
		a.RecommendedApproach = HandleStandard
	case a.ComplexityScore < 0.6:
		a.RecommendedApproach = HandleMultiInterpretation
	case a.ComplexityScore < 0.8:
		a.RecommendedApproach = HandleUncertaintyFlagging
	default:
		a.RecommendedApproach = HandleHumanReview
	}

	if a.Sarcasm.Detected {
		// Recommend, never silently alter: the caller owns the decision.
		a.AdjustmentRecommendation = "reverse_sentiment_polarity"
	}
	return a
}

func (h *EdgeCaseHandler) detectMixedEmotions(text string) EdgeSignal {
	pos := h.lexicon.PositiveHits(text)
	neg := h.lexicon.NegativeHits(text)
	if len(pos) == 0 || len(neg) == 0 {
		return EdgeSignal{}
	}
	sig := EdgeSignal{Detected: true}
	smaller := len(pos)
	if len(neg) < smaller {
		smaller = len(neg)
	}
	sig.Severity = clamp01(0.4 + 0.15*float64(smaller))
	sig.Confidence = clamp01(0.5 + 0.1*float64(len(pos)+len(neg)))
	for w := range pos {
		sig.Evidence = append(sig.Evidence, "positive: "+w)
	}
	for w := range neg {
		sig.Evidence = append(sig.Evidence, "negative: "+w)
	}
	sig.Evidence = capStrings(sig.Evidence, MaxFactorEvidence)
	return sig
}

func (h *EdgeCaseHandler) detectContradictorySignals(conv ConversationData, text string) EdgeSignal {
	var sig EdgeSignal
	if h.lexicon.HasContradiction(text) {
		sig.Detected = true
		sig.Severity = 0.5
		sig.Confidence = 0.7
		sig.Evidence = append(sig.Evidence, "contradiction marker present")
	}

	// Emoji valence against text valence.
	textNet := float64(len(h.lexicon.PositiveHits(text))) - float64(len(h.lexicon.NegativeHits(text)))
	var emojiNet float64
	var emojiSeen bool
	for emoji, v := range h.lexicon.EmojiValence {
		if strings.Contains(text, emoji) {
			emojiNet += v
			emojiSeen = true
		}
	}
	if emojiSeen && ((textNet > 0 && emojiNet < 0) || (textNet < 0 && emojiNet > 0)) {
		sig.Detected = true
		if sig.Severity < 0.6 {
			sig.Severity = 0.6
		}
		sig.Confidence = clamp01(sig.Confidence + 0.2)
		sig.Evidence = append(sig.Evidence, "emoji sentiment contradicts text sentiment")
	}
	return sig
}

// temporalShiftPairs — phrase pairs whose ordered co-occurrence across
// messages marks an in-conversation reversal.
var temporalShiftPairs = [][2]string{
	{"so happy", "actually no"},
	{"great news", "never mind"},
	{"i'm fine", "i'm not fine"},
	{"excited", "dreading"},
	{"can't wait", "don't want to"},
}

func (h *EdgeCaseHandler) detectTemporalInconsistency(conv ConversationData) EdgeSignal {
	var sig EdgeSignal
	for i := 1; i < len(conv.Messages); i++ {
		prev := strings.ToLower(conv.Messages[i-1].Content)
		cur := strings.ToLower(conv.Messages[i].Content)
		for _, pair := range temporalShiftPairs {
			if strings.Contains(prev, pair[0]) && strings.Contains(cur, pair[1]) {
				sig.Detected = true
				sig.Severity = 0.6
				sig.Confidence = 0.65
				sig.Evidence = append(sig.Evidence, pair[0]+" -> "+pair[1])
			}
		}
		// Generic positive-to-negative flip between consecutive messages.
		if len(h.lexicon.PositiveHits(prev)) > 0 && len(h.lexicon.NegativeHits(prev)) == 0 &&
			len(h.lexicon.NegativeHits(cur)) > 0 && len(h.lexicon.PositiveHits(cur)) == 0 {
			sig.Detected = true
			if sig.Severity < 0.4 {
				sig.Severity = 0.4
			}
			sig.Confidence = clamp01(sig.Confidence + 0.15)
			sig.Evidence = append(sig.Evidence, "positive-to-negative shift between messages")
		}
	}
	sig.Evidence = capStrings(sig.Evidence, MaxFactorEvidence)
	return sig
}

func (h *EdgeCaseHandler) detectCulturalComplexity(text string) EdgeSignal {
	var sig EdgeSignal
	for name, set := range map[string][]string{
		"british_understatement": h.lexicon.BritishUnderstatement,
		"japanese_indirect":      h.lexicon.JapaneseIndirect,
		"high_context":           h.lexicon.HighContext,
	} {
		if m := ContainsAny(text, set); len(m) > 0 {
			sig.Detected = true
			sig.Severity = clamp01(sig.Severity + 0.3)
			sig.Confidence = clamp01(sig.Confidence + 0.3)
			sig.Evidence = append(sig.Evidence, name+": "+m[0])
		}
	}
	return sig
}

const (
	ambiguousTermThreshold = 2
	vaguePhraseThreshold   = 1
)

func (h *EdgeCaseHandler) detectContextualAmbiguity(text string) EdgeSignal {
	terms := ContainsAny(text, h.lexicon.AmbiguousTerms)
	vague := ContainsAny(text, h.lexicon.VaguePhrases)
	if len(terms) < ambiguousTermThreshold && len(vague) < vaguePhraseThreshold {
		return EdgeSignal{}
	}
	sig := EdgeSignal{Detected: true}
	sig.Severity = clamp01(0.3 + 0.1*float64(len(terms)) + 0.2*float64(len(vague)))
	sig.Confidence = 0.6
	sig.Evidence = capStrings(append(terms, vague...), MaxFactorEvidence)
	return sig
}

func (h *EdgeCaseHandler) detectExtremeAffect(conv ConversationData, text string) EdgeSignal {
	var sig EdgeSignal
	if m := ContainsAny(text, h.lexicon.ExtremeIntensity); len(m) > 0 {
		sig.Detected = true
		sig.Severity = clamp01(0.5 + 0.15*float64(len(m)))
		sig.Confidence = 0.7
		for _, w := range m {
			sig.Evidence = append(sig.Evidence, "extreme term: "+w)
		}
	}

	// Caps-lock ratio and exclamation density across the conversation.
	var upper, letters, exclaims, runes int
	for _, msg := range conv.Messages {
		for _, r := range msg.Content {
			runes++
			if r >= 'A' && r <= 'Z' {
				upper++
				letters++
			} else if r >= 'a' && r <= 'z' {
				letters++
			}
			if r == '!' {
				exclaims++
			}
		}
	}
	if letters > 20 && float64(upper)/float64(letters) > 0.5 {
		sig.Detected = true
		sig.Severity = clamp01(sig.Severity + 0.2)
		sig.Confidence = clamp01(sig.Confidence + 0.1)
		sig.Evidence = append(sig.Evidence, "sustained caps lock")
	}
	if runes > 0 && float64(exclaims)/float64(runes) > 0.05 {
		sig.Detected = true
		sig.Severity = clamp01(sig.Severity + 0.15)
		sig.Confidence = clamp01(sig.Confidence + 0.1)
		sig.Evidence = append(sig.Evidence, "dense exclamation marks")
	}
	sig.Evidence = capStrings(sig.Evidence, MaxFactorEvidence)
	return sig
}

// DetectSarcasm looks for positive-sentiment words co-occurring with negative
// context words or time-pressure phrases. The result is advisory only.
func (h *EdgeCaseHandler) DetectSarcasm(text string) EdgeSignal {
	lower := strings.ToLower(text)
	positives := ContainsAny(lower, h.lexicon.SarcasmPositives)
	if len(positives) == 0 {
		return EdgeSignal{}
	}
	negCtx := ContainsAny(lower, h.lexicon.SarcasmNegativeCtx)
	pressure := ContainsAny(lower, h.lexicon.SarcasmTimePressure)
	if len(negCtx) == 0 && len(pressure) == 0 {
		return EdgeSignal{}
	}

	sig := EdgeSignal{Detected: true}
	sig.Severity = clamp01(0.4 + 0.15*float64(len(negCtx)) + 0.25*float64(len(pressure)))
	sig.Confidence = clamp01(0.5 + 0.1*float64(len(positives)+len(negCtx)+len(pressure)))
	sig.Evidence = append(sig.Evidence, "positive wording: "+positives[0])
	if len(negCtx) > 0 {
		sig.Evidence = append(sig.Evidence, "negative context: "+negCtx[0])
	}
	if len(pressure) > 0 {
		sig.Evidence = append(sig.Evidence, "time pressure: "+pressure[0])
	}
	return sig
}

// QuantifyUncertainty sums per-source impacts into a reliability score and a
// symmetric confidence interval around the raw mood score. Half-width is
// uncertainty x 3, clamped to the valid score range.
func (h *EdgeCaseHandler) QuantifyUncertainty(conv ConversationData, analysis MoodAnalysisResult, assessment EmotionalComplexityAssessment) UncertaintyReport {
	sources := make(map[string]float64)

	if len(conv.Messages) < 3 {
		sources["insufficient_context"] = 0.25
	}
	if assessment.MixedEmotions.Detected || assessment.ContradictorySignals.Detected {
		sources["conflicting_signals"] = 0.2
	}
	if assessment.CulturalComplexity.Detected {
		sources["cultural_ambiguity"] = 0.15
	}
	if assessment.TemporalInconsistency.Detected {
		sources["temporal_inconsistency"] = 0.15
	}
	if assessment.ExtremeAffect.Detected {
		sources["extreme_state"] = 0.1
	}

	var total float64
	for _, v := range sources {
		total += v
	}
	total = clamp01(total)

	half := total * 3
	return UncertaintyReport{
		Sources:      sources,
		Uncertainty:  total,
		Reliability:  clamp01(1 - total),
		IntervalLow:  clampScore(analysis.Score - half),
		IntervalHigh: clampScore(analysis.Score + half),
	}
}

// Interpretation — one candidate reading of an ambiguous conversation.
type Interpretation struct {
	Score       float64 `json:"score"`
	Probability float64 `json:"probability"`
	Rationale   string  `json:"rationale"`
}

// CandidateInterpretations produces alternative readings when the assessment
// recommends multi-interpretation handling; otherwise just the face value.
func (h *EdgeCaseHandler) CandidateInterpretations(analysis MoodAnalysisResult, assessment EmotionalComplexityAssessment) []Interpretation {
	face := Interpretation{Score: analysis.Score, Probability: 0.6, Rationale: "face-value reading"}
	if assessment.RecommendedApproach == HandleStandard {
		face.Probability = 1.0
		return []Interpretation{face}
	}

	out := []Interpretation{face}
	if assessment.Sarcasm.Detected {
		out = append(out, Interpretation{
			Score:       clampScore(10 - analysis.Score),
			Probability: 0.3,
			Rationale:   "sentiment polarity reversed (sarcasm reading)",
		})
	}
	if assessment.MixedEmotions.Detected {
		out = append(out, Interpretation{
			Score:       5.0,
			Probability: 0.25,
			Rationale:   "mixed emotions read as net neutral",
		})
	}

	// Renormalize probabilities.
	var sum float64
	for _, it := range out {
		sum += it.Probability
	}
	if sum > 0 {
		for i := range out {
			out[i].Probability /= sum
		}
	}
	return out
}
