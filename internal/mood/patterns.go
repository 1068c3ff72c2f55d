package mood

import (
	"fmt"
	"strings"
)

// patternTemplate — one named emotional shape the recognizer looks for.
type patternTemplate struct {
	Type        PatternType
	Description string
	Keywords    []string
	Descriptors []string // typical result descriptors this pattern overlaps
	MoodMin     float64  // score gate; active when MoodMax > 0
	MoodMax     float64
	Behavioral  []behavioralCheck
}

type behavioralCheck struct {
	Name  string
	Check func(conv ConversationData, lex *Lexicon) bool
}

// PatternRecognizer matches conversations and trajectories against the
// template library.
type PatternRecognizer struct {
	params    *ParameterStore
	lexicon   *Lexicon
	templates []patternTemplate
}

func NewPatternRecognizer(params *ParameterStore, lex *Lexicon) *PatternRecognizer {
	if params == nil {
		params = NewParameterStore(DefaultScoringParameters())
	}
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &PatternRecognizer{params: params, lexicon: lex, templates: builtinTemplates()}
}

func builtinTemplates() []patternTemplate {
	extendedConversation := behavioralCheck{
		Name:  "extended conversation",
		Check: func(conv ConversationData, _ *Lexicon) bool { return len(conv.Messages) >= 8 },
	}
	emotionalDisclosure := behavioralCheck{
		Name: "emotional disclosure",
		Check: func(conv ConversationData, lex *Lexicon) bool {
			text := joinedContent(conv)
			return len(lex.NegativeHits(text))+len(lex.PositiveHits(text)) >= 3
		},
	}
	supportExchange := behavioralCheck{
		Name: "support exchange",
		Check: func(conv ConversationData, lex *Lexicon) bool {
			return len(ContainsAny(joinedContent(conv), lex.Support)) > 0
		},
	}
	celebrationLanguage := behavioralCheck{
		Name: "celebration language",
		Check: func(conv ConversationData, _ *Lexicon) bool {
			text := strings.ToLower(joinedContent(conv))
			for _, w := range []string{"congrat", "celebrate", "cheers", "so proud", "we did it"} {
				if strings.Contains(text, w) {
					return true
				}
			}
			return false
		},
	}

	return []patternTemplate{
		{
			Type:        PatternSupportSeeking,
			Description: "reaching out for help or comfort",
			Keywords:    []string{"need help", "can i talk", "advice", "don't know what to do", "need someone", "listen"},
			Descriptors: []string{"low", "subdued", "distressed", "anxious", "worried"},
			MoodMin:     0, MoodMax: 5.5,
			Behavioral: []behavioralCheck{extendedConversation, emotionalDisclosure},
		},
		{
			Type:        PatternMoodRepair,
			Description: "recovery from a low emotional state within the conversation",
			Keywords:    []string{"feeling better", "that helps", "thank you", "needed that", "i feel heard"},
			Descriptors: []string{"content", "positive", "relieved"},
			MoodMin:     4.5, MoodMax: 10,
			Behavioral: []behavioralCheck{supportExchange, emotionalDisclosure},
		},
		{
			Type:        PatternCelebration,
			Description: "sharing and amplifying good news",
			Keywords:    []string{"got the job", "passed", "we won", "promoted", "accepted", "finally did it"},
			Descriptors: []string{"elated", "positive", "upbeat", "excited", "proud"},
			MoodMin:     6.5, MoodMax: 10,
			Behavioral: []behavioralCheck{celebrationLanguage},
		},
		{
			Type:        PatternVulnerability,
			Description: "disclosure of something difficult or private",
			Keywords:    []string{"never told anyone", "hard to admit", "honestly", "i'm struggling", "embarrassed", "scared to say"},
			Descriptors: []string{"low", "subdued", "distressed"},
			MoodMin:     0, MoodMax: 6.0,
			Behavioral: []behavioralCheck{emotionalDisclosure, extendedConversation},
		},
		{
			Type:        PatternGrowth,
			Description: "reflection and perspective change",
			Keywords:    []string{"i learned", "i realized", "looking back", "new perspective", "i've grown", "changed how i think"},
			Descriptors: []string{"content", "positive", "hopeful"},
			MoodMin:     4.0, MoodMax: 10,
			Behavioral: []behavioralCheck{extendedConversation},
		},
	}
}

// RecognizePatterns matches a scored conversation against every template.
// Confidence accumulates additively: mood gate +0.3, keywords +0.1 each
// (capped +0.3), behavioral indicators +0.15 each (capped +0.4), descriptor
// overlap ratio x 0.2. A pattern is emitted only with enough evidence and
// confidence at or above the configured minimums.
func (r *PatternRecognizer) RecognizePatterns(conv ConversationData, analysis MoodAnalysisResult) []EmotionalPattern {
	p := r.params.Snapshot()
	text := strings.ToLower(joinedContent(conv))
	var out []EmotionalPattern

	for _, tmpl := range r.templates {
		var confidence, significance float64
		var evidence []string

		if tmpl.MoodMax > 0 && analysis.Score >= tmpl.MoodMin && analysis.Score <= tmpl.MoodMax {
			confidence += 0.3
			evidence = append(evidence, fmt.Sprintf("mood score %.1f in expected range", analysis.Score))
		}

		var kwBoost float64
		for _, kw := range tmpl.Keywords {
			if strings.Contains(text, kw) {
				kwBoost += 0.1
				evidence = append(evidence, "keyword: "+kw)
			}
		}
		if kwBoost > 0.3 {
			kwBoost = 0.3
		}
		confidence += kwBoost

		var behavBoost float64
		for _, check := range tmpl.Behavioral {
			if check.Check(conv, r.lexicon) {
				behavBoost += 0.15
				evidence = append(evidence, "behavior: "+check.Name)
			}
		}
		if behavBoost > 0.4 {
			behavBoost = 0.4
		}
		confidence += behavBoost

		if overlap := descriptorOverlap(analysis.Descriptors, tmpl.Descriptors); overlap > 0 {
			confidence += overlap * 0.2
			evidence = append(evidence, "descriptor overlap")
		}

		significance = clamp01(confidence * 0.9)
		if len(evidence) >= p.PatternMinimumEvidence && confidence >= p.PatternMinimumConfidence {
			out = append(out, EmotionalPattern{
				Type:         tmpl.Type,
				Confidence:   clamp01(confidence),
				Description:  tmpl.Description,
				Evidence:     capStrings(evidence, MaxFactorEvidence),
				Significance: significance,
			})
		}
	}
	return out
}

func descriptorOverlap(have, want []string) float64 {
	if len(want) == 0 || len(have) == 0 {
		return 0
	}
	set := make(map[string]bool, len(want))
	for _, w := range want {
		set[w] = true
	}
	var shared int
	for _, h := range have {
		if set[h] {
			shared++
		}
	}
	return float64(shared) / float64(len(want))
}

// RecognizeTrajectoryPatterns matches a trajectory against the growth,
// vulnerability and mood-repair shapes using direction, turning-point types
// and the share of low/high mood points instead of keyword search.
func (r *PatternRecognizer) RecognizeTrajectoryPatterns(traj EmotionalTrajectory) []EmotionalPattern {
	p := r.params.Snapshot()
	if len(traj.Points) < 3 {
		return nil
	}

	var low, high int
	for _, pt := range traj.Points {
		if pt.MoodScore < 4 {
			low++
		}
		if pt.MoodScore > 7 {
			high++
		}
	}
	total := float64(len(traj.Points))
	lowRatio := float64(low) / total
	highRatio := float64(high) / total

	breakthroughs, setbacks := 0, 0
	for _, tp := range traj.TurningPoints {
		switch tp.Type {
		case TurningBreakthrough, TurningSupportReceived:
			breakthroughs++
		case TurningSetback:
			setbacks++
		}
	}

	var out []EmotionalPattern

	// Mood repair: started low, broke upward.
	if lowRatio >= 0.3 && breakthroughs > 0 && traj.Direction == TrajectoryImproving {
		conf := clamp01(0.5 + 0.2*lowRatio + 0.15*float64(breakthroughs))
		out = append(out, EmotionalPattern{
			Type:        PatternMoodRepair,
			Confidence:  conf,
			Description: "trajectory recovered from a low stretch",
			Evidence: []string{
				fmt.Sprintf("%.0f%% of points below 4.0", lowRatio*100),
				fmt.Sprintf("%d breakthrough turning point(s)", breakthroughs),
			},
			Significance: traj.Significance,
		})
	}

	// Growth: sustained improvement without heavy setbacks.
	if traj.Direction == TrajectoryImproving && setbacks == 0 && highRatio > 0 {
		conf := clamp01(0.55 + 0.3*highRatio)
		out = append(out, EmotionalPattern{
			Type:        PatternGrowth,
			Confidence:  conf,
			Description: "steady improvement across the trajectory",
			Evidence: []string{
				"improving direction with no setbacks",
				fmt.Sprintf("%.0f%% of points above 7.0", highRatio*100),
			},
			Significance: traj.Significance,
		})
	}

	// Vulnerability: volatile with a meaningful low share.
	if traj.Direction == TrajectoryVolatile && lowRatio >= 0.25 {
		conf := clamp01(0.5 + 0.3*lowRatio)
		out = append(out, EmotionalPattern{
			Type:        PatternVulnerability,
			Confidence:  conf,
			Description: "volatile trajectory with repeated low points",
			Evidence: []string{
				"volatile direction",
				fmt.Sprintf("%.0f%% of points below 4.0", lowRatio*100),
			},
			Significance: traj.Significance,
		})
	}

	// Same gates as conversation-level matching.
	filtered := out[:0]
	for _, pat := range out {
		if len(pat.Evidence) >= p.PatternMinimumEvidence && pat.Confidence >= p.PatternMinimumConfidence {
			filtered = append(filtered, pat)
		}
	}
	return filtered
}

// complementaryPatterns — types that describe two sides of the same episode.
var complementaryPatterns = map[PatternType]PatternType{
	PatternVulnerability:  PatternSupportSeeking,
	PatternSupportSeeking: PatternVulnerability,
	PatternMoodRepair:     PatternSupportSeeking,
}

// MergeRelatedPatterns coalesces patterns that share evidence strings or are
// complementary types: confidence averaged, significance kept at the max,
// evidence unioned. The surviving type is the higher-confidence one.
func MergeRelatedPatterns(patterns []EmotionalPattern) []EmotionalPattern {
	var out []EmotionalPattern
	used := make([]bool, len(patterns))

	for i := range patterns {
		if used[i] {
			continue
		}
		merged := patterns[i]
		for j := i + 1; j < len(patterns); j++ {
			if used[j] {
				continue
			}
			if !patternsRelated(merged, patterns[j]) {
				continue
			}
			other := patterns[j]
			if other.Confidence > merged.Confidence {
				merged.Type = other.Type
				merged.Description = other.Description
			}
			merged.Confidence = (merged.Confidence + other.Confidence) / 2
			if other.Significance > merged.Significance {
				merged.Significance = other.Significance
			}
			merged.Evidence = capStrings(append(merged.Evidence, other.Evidence...), MaxFactorEvidence)
			used[j] = true
		}
		out = append(out, merged)
	}
	return out
}

func patternsRelated(a, b EmotionalPattern) bool {
	if complementaryPatterns[a.Type] == b.Type {
		return true
	}
	for _, ea := range a.Evidence {
		for _, eb := range b.Evidence {
			if ea == eb {
				return true
			}
		}
	}
	return false
}
