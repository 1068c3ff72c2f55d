package mood

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// BiasType names a known failure mode of the scoring algorithm.
type BiasType string

const (
	BiasEmotionalMinimization       BiasType = "emotional_minimization"
	BiasSarcasmDetectionFailure     BiasType = "sarcasm_detection_failure"
	BiasRepetitivePatternBlindness  BiasType = "repetitive_pattern_blindness"
	BiasMixedEmotionOversimplification BiasType = "mixed_emotion_oversimplification"
	BiasDefensiveLanguageBlindness  BiasType = "defensive_language_blindness"
	BiasEmotionalComplexity         BiasType = "emotional_complexity"
)

// DetectedBias — one attributed bias with its blast radius.
type DetectedBias struct {
	Type            BiasType `json:"type"`
	Severity        string   `json:"severity"` // low | medium | high
	AffectedSamples int      `json:"affected_samples"`
	Description     string   `json:"description"`
}

// BiasAnalysis — whether and how the algorithm systematically disagrees with
// human raters.
type BiasAnalysis struct {
	BiasDetected   bool           `json:"bias_detected"`
	SystematicBias string         `json:"systematic_bias,omitempty"` // algorithmic_over_estimation | algorithmic_under_estimation
	MeanError      float64        `json:"mean_error"`
	BiasTypes      []DetectedBias `json:"bias_types,omitempty"`
}

// biasRule — conjunctive attribution: a bias type is claimed only when the
// algorithmic text detector AND a corroborating human-factor tag fire on the
// same pair. New bias types are new rows, not new branching.
type biasRule struct {
	Type        BiasType
	Description string
	Detector    func(v *ValidationFramework, sc ScoredConversation) bool
	HumanTags   []string
}

var biasRules = []biasRule{
	{
		Type:        BiasEmotionalMinimization,
		Description: "subject downplays distress and the algorithm takes it at face value",
		Detector: func(v *ValidationFramework, sc ScoredConversation) bool {
			text := strings.ToLower(joinedContent(sc.Conversation))
			minimizers := ContainsAny(text, []string{"it's fine", "i'm fine", "not a big deal", "i'm okay", "don't worry about me"})
			return len(minimizers) > 0 && len(v.lexicon.NegativeHits(text)) > 0
		},
		HumanTags: []string{"minimization", "downplaying", "masking"},
	},
	{
		Type:        BiasSarcasmDetectionFailure,
		Description: "sarcastic positivity scored as genuine positivity",
		Detector: func(v *ValidationFramework, sc ScoredConversation) bool {
			h := EdgeCaseHandler{lexicon: v.lexicon}
			return h.DetectSarcasm(joinedContent(sc.Conversation)).Detected
		},
		HumanTags: []string{"sarcasm", "irony"},
	},
	{
		Type:        BiasRepetitivePatternBlindness,
		Description: "rumination loops read as ordinary repetition",
		Detector: func(_ *ValidationFramework, sc ScoredConversation) bool {
			return hasRepetition(sc.Conversation)
		},
		HumanTags: []string{"rumination", "repetitive", "looping"},
	},
	{
		Type:        BiasMixedEmotionOversimplification,
		Description: "co-occurring opposite emotions averaged into a misleading middle",
		Detector: func(v *ValidationFramework, sc ScoredConversation) bool {
			text := joinedContent(sc.Conversation)
			return len(v.lexicon.PositiveHits(text)) > 0 && len(v.lexicon.NegativeHits(text)) > 0
		},
		HumanTags: []string{"mixed", "ambivalence", "conflicted"},
	},
	{
		Type:        BiasDefensiveLanguageBlindness,
		Description: "defensive deflection scored as neutrality",
		Detector: func(_ *ValidationFramework, sc ScoredConversation) bool {
			text := strings.ToLower(joinedContent(sc.Conversation))
			return len(ContainsAny(text, []string{"whatever", "i don't care", "doesn't matter", "forget it", "never mind"})) > 0
		},
		HumanTags: []string{"defensive", "avoidance", "deflection"},
	},
}

// hasRepetition: any normalized message content appearing 3+ times.
func hasRepetition(conv ConversationData) bool {
	counts := make(map[string]int)
	for _, msg := range conv.Messages {
		key := strings.ToLower(strings.TrimSpace(msg.Content))
		if key == "" {
			continue
		}
		counts[key]++
		if counts[key] >= 3 {
			return true
		}
	}
	return false
}

func humanTagged(rec HumanValidationRecord, tags []string) bool {
	for _, factor := range rec.EmotionalFactors {
		f := strings.ToLower(factor)
		for _, tag := range tags {
			if strings.Contains(f, tag) {
				return true
			}
		}
	}
	return false
}

// discrepancyFactors pattern-matches one pair against the known failure modes.
// A factor is claimed only when the detector and the human's tags agree.
func (v *ValidationFramework) discrepancyFactors(sc ScoredConversation, rec HumanValidationRecord, signed float64) []string {
	if math.Abs(signed) <= 0.5 {
		return nil
	}
	var out []string
	for _, rule := range biasRules {
		if rule.Detector(v, sc) && humanTagged(rec, rule.HumanTags) {
			out = append(out, string(rule.Type))
		}
	}
	return out
}

// PerformBiasAnalysis decides whether systematic bias exists (|mean error|
// above the configured sensitivity) and attributes specific types via the
// conjunctive rules. When nothing specific corroborates, the generic
// emotional_complexity bias is reported.
func (v *ValidationFramework) PerformBiasAnalysis(pairs []PairAnalysis) BiasAnalysis {
	if len(pairs) == 0 {
		return BiasAnalysis{}
	}
	errs := make([]float64, len(pairs))
	for i, p := range pairs {
		errs[i] = p.SignedError
	}
	mean := meanOf(errs)

	ba := BiasAnalysis{MeanError: mean}
	if math.Abs(mean) <= v.params.Snapshot().BiasSensitivity {
		return ba
	}
	ba.BiasDetected = true
	if mean > 0 {
		ba.SystematicBias = "algorithmic_over_estimation"
	} else {
		ba.SystematicBias = "algorithmic_under_estimation"
	}

	// Count per-type attributions collected during pair analysis.
	counts := make(map[BiasType]int)
	for _, p := range pairs {
		for _, f := range p.DiscrepancyFactors {
			counts[BiasType(f)]++
		}
	}

	types := make([]BiasType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return counts[types[i]] > counts[types[j]] })

	for _, t := range types {
		n := counts[t]
		severity := "low"
		switch {
		case n >= 5:
			severity = "high"
		case n >= 3:
			severity = "medium"
		}
		ba.BiasTypes = append(ba.BiasTypes, DetectedBias{
			Type:            t,
			Severity:        severity,
			AffectedSamples: n,
			Description:     biasDescription(t),
		})
	}

	if len(ba.BiasTypes) == 0 {
		ba.BiasTypes = append(ba.BiasTypes, DetectedBias{
			Type:            BiasEmotionalComplexity,
			Severity:        "medium",
			AffectedSamples: len(pairs),
			Description:     "systematic error without a corroborated specific cause",
		})
	}
	return ba
}

func biasDescription(t BiasType) string {
	for _, rule := range biasRules {
		if rule.Type == t {
			return rule.Description
		}
	}
	return "uncorroborated systematic error"
}

// biasRecommendations renders prioritized remediation advice from the
// detected bias types and the discrepancy shape.
func biasRecommendations(ba BiasAnalysis, d DiscrepancyAnalysis) []string {
	var out []string
	if !ba.BiasDetected {
		if d.Consistency < 0.5 {
			out = append(out, "errors are inconsistent rather than biased: review confidence weighting before touching factor weights")
		}
		return out
	}

	switch ba.SystematicBias {
	case "algorithmic_over_estimation":
		out = append(out, fmt.Sprintf("algorithm reads %.2f points high on average: consider lowering the sentiment weight", ba.MeanError))
	case "algorithmic_under_estimation":
		out = append(out, fmt.Sprintf("algorithm reads %.2f points low on average: consider raising the sentiment weight", math.Abs(ba.MeanError)))
	}

	for _, bt := range ba.BiasTypes {
		switch bt.Type {
		case BiasEmotionalMinimization:
			out = append(out, "expand minimization phrase tables; weight negative lexicon hits higher when minimizers co-occur")
		case BiasSarcasmDetectionFailure:
			out = append(out, "tighten sarcasm context tables; route sarcasm-flagged conversations to multi-interpretation handling")
		case BiasRepetitivePatternBlindness:
			out = append(out, "add repetition-aware scoring: repeated distress phrasing should compound, not dedupe")
		case BiasMixedEmotionOversimplification:
			out = append(out, "emit candidate interpretations for mixed-emotion conversations instead of a single averaged score")
		case BiasDefensiveLanguageBlindness:
			out = append(out, "treat defensive deflection phrases as negative-leaning rather than neutral")
		case BiasEmotionalComplexity:
			out = append(out, "collect more multi-rated samples to localize the bias before adjusting parameters")
		}
	}
	return out
}
