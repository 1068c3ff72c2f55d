package mood

import (
	"fmt"
	"log"
	"math"
)

// DeltaDetector classifies mood changes between analyses and decides whether
// a change is significant enough to trigger downstream extraction.
type DeltaDetector struct {
	params  *ParameterStore
	lexicon *Lexicon
}

func NewDeltaDetector(params *ParameterStore, lex *Lexicon) *DeltaDetector {
	if params == nil {
		params = NewParameterStore(DefaultScoringParameters())
	}
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &DeltaDetector{params: params, lexicon: lex}
}

// DetectMoodDelta compares two analyses for the same subject. Returns nil when
// the change is below the minimum magnitude. Swapping current/previous negates
// the direction but leaves the magnitude unchanged.
func (d *DeltaDetector) DetectMoodDelta(current, previous MoodAnalysisResult) *MoodDelta {
	p := d.params.Snapshot()
	diff := current.Score - previous.Score
	magnitude := math.Abs(diff)
	if magnitude < p.MinDeltaMagnitude {
		return nil
	}

	direction := DirectionNeutral
	if diff > p.DirectionDeadZone {
		direction = DirectionPositive
	} else if diff < -p.DirectionDeadZone {
		direction = DirectionNegative
	}

	delta := &MoodDelta{
		Magnitude: magnitude,
		Direction: direction,
		Type:      d.classifyDelta(current, previous, direction, magnitude),
	}
	delta.Factors = d.deltaFactors(current, previous, delta.Type)
	delta.Confidence = deltaConfidence(current, previous, magnitude, len(delta.Factors))

	log.Printf("[MOOD] delta conv=%s magnitude=%.2f direction=%s type=%s", current.ConversationID, magnitude, direction, delta.Type)
	return delta
}

// classifyDelta applies typing in priority order: mood_repair, celebration,
// decline, plateau.
func (d *DeltaDetector) classifyDelta(current, previous MoodAnalysisResult, direction DeltaDirection, magnitude float64) DeltaType {
	if direction == DirectionPositive {
		// Strict repair: clearly low to clearly positive.
		if previous.Score < 4.0 && current.Score > 6.0 {
			return DeltaMoodRepair
		}
		// Permissive variant: large move out of a low band.
		if magnitude >= 2.5 && previous.Score < 4.5 && current.Score > 5.5 {
			return DeltaMoodRepair
		}
		// Recovery descriptors climbing out of a low base.
		if previous.Score < 4.5 && hasRecoveryDescriptor(current.Descriptors, d.lexicon) {
			return DeltaMoodRepair
		}
		if previous.Score > 6.0 && current.Score > 7.0 {
			return DeltaCelebration
		}
	}
	if direction == DirectionNegative && magnitude >= 2.0 {
		return DeltaDecline
	}
	return DeltaPlateau
}

func hasRecoveryDescriptor(descriptors []string, lex *Lexicon) bool {
	for _, desc := range descriptors {
		for _, r := range lex.RecoveryDescriptors {
			if desc == r {
				return true
			}
		}
	}
	return false
}

func (d *DeltaDetector) deltaFactors(current, previous MoodAnalysisResult, t DeltaType) []string {
	factors := []string{
		fmt.Sprintf("score moved %.1f -> %.1f", previous.Score, current.Score),
	}
	switch t {
	case DeltaMoodRepair:
		factors = append(factors, "recovery from low emotional state")
	case DeltaCelebration:
		factors = append(factors, "elevated state rose further")
	case DeltaDecline:
		factors = append(factors, "notable downward movement")
	}
	if current.Confidence > 0.7 && previous.Confidence > 0.7 {
		factors = append(factors, "both analyses high confidence")
	}
	return factors
}

// deltaConfidence starts at 0.8 and picks up small additive boosts.
func deltaConfidence(current, previous MoodAnalysisResult, magnitude float64, factorCount int) float64 {
	c := 0.8
	if magnitude >= 3.0 {
		c += 0.08
	}
	if current.Confidence > 0.7 && previous.Confidence > 0.7 {
		c += 0.07
	}
	if factorCount >= 3 {
		c += 0.05
	}
	return clamp01(c)
}

// ShouldTriggerExtraction decides whether a delta warrants persisting a memory:
// every mood repair, celebrations at or above the celebration threshold,
// declines at or above the decline threshold.
func (d *DeltaDetector) ShouldTriggerExtraction(delta *MoodDelta) bool {
	if delta == nil {
		return false
	}
	p := d.params.Snapshot()
	switch delta.Type {
	case DeltaMoodRepair:
		return true
	case DeltaCelebration:
		return delta.Magnitude >= p.CelebrationThreshold
	case DeltaDecline:
		return delta.Magnitude >= p.DeclineThreshold
	default:
		return false
	}
}
