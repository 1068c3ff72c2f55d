package mood

import (
	"fmt"
	"sync"
)

// FactorWeights — relative weight of each analysis dimension. The five values
// must sum to 1.0; SumsToOne checks within a small epsilon.
type FactorWeights struct {
	Sentiment     float64 `json:"sentiment"`
	Psychological float64 `json:"psychological"`
	Relationship  float64 `json:"relationship"`
	Flow          float64 `json:"flow"`
	Historical    float64 `json:"historical"`
}

// SumsToOne reports whether the weights form a valid distribution.
func (w FactorWeights) SumsToOne() bool {
	sum := w.Sentiment + w.Psychological + w.Relationship + w.Flow + w.Historical
	return sum > 0.999 && sum < 1.001
}

// BoostBand — one row of the non-linear sentiment boost table: average
// intensities at or above Threshold get Multiplier applied to the delta.
type BoostBand struct {
	Threshold  float64 `json:"threshold"`
	Multiplier float64 `json:"multiplier"`
}

// ScoringParameters centralizes every tunable constant of the engine so the
// calibration manager can adjust them as one versioned value. Treat as a value:
// copy, modify, store back via ParameterStore.
type ScoringParameters struct {
	Version int `json:"version"`

	Weights FactorWeights `json:"weights"`

	// Sentiment dimension.
	SentimentBoosts   []BoostBand `json:"sentiment_boosts"`
	AmbiguityFloor    float64     `json:"ambiguity_floor"`     // floor for near-zero-evidence content
	EvidenceCeiling   int         `json:"evidence_ceiling"`    // evidence count treated as "plenty"
	ContradictionScorePenalty      float64 `json:"contradiction_score_penalty"`      // fraction removed from combined score
	ContradictionConfidencePenalty float64 `json:"contradiction_confidence_penalty"` // fraction removed from confidence
	ContradictionFactorPenalty     float64 `json:"contradiction_factor_penalty"`     // absolute, inside psychological factor

	// Combined-score shaping. Sentiment sub-scores at least
	// ExtremeSentimentThreshold away from neutral pull the weighted average
	// toward themselves by ExtremeConsensusPull, unless another dimension
	// leans the opposite way.
	ExtremeSentimentThreshold float64 `json:"extreme_sentiment_threshold"`
	ExtremeConsensusPull      float64 `json:"extreme_consensus_pull"`

	// Confidence shaping.
	ConfidenceThreshold float64 `json:"confidence_threshold"` // calibration target for the high-confidence gate

	// Delta detection.
	MinDeltaMagnitude    float64 `json:"min_delta_magnitude"`
	DirectionDeadZone    float64 `json:"direction_dead_zone"`
	CelebrationThreshold float64 `json:"celebration_threshold"`
	DeclineThreshold     float64 `json:"decline_threshold"`

	// Trajectory analysis.
	PlateauVarianceThreshold float64 `json:"plateau_variance_threshold"`
	SuddenVelocityThreshold  float64 `json:"sudden_velocity_threshold"` // score points per hour
	TurningPointMergeWindowMinutes int `json:"turning_point_merge_window_minutes"`

	// Pattern recognition.
	PatternMinimumEvidence   int     `json:"pattern_minimum_evidence"`
	PatternMinimumConfidence float64 `json:"pattern_minimum_confidence"`

	// Baseline management.
	MinimumDataPoints       int     `json:"minimum_data_points"`
	BaselineUpdateThreshold float64 `json:"baseline_update_threshold"`

	// Validation / calibration.
	MinValidationSampleSize  int     `json:"min_validation_sample_size"`
	MaxCalibrationsPerSession int    `json:"max_calibrations_per_session"`
	MinImprovementThreshold  float64 `json:"min_improvement_threshold"`
	BiasSensitivity          float64 `json:"bias_sensitivity"`
	SentimentWeightMin       float64 `json:"sentiment_weight_min"`
	SentimentWeightMax       float64 `json:"sentiment_weight_max"`

	// Bias correction multipliers keyed by bias type, written by calibration.
	BiasCorrections map[string]float64 `json:"bias_corrections,omitempty"`
}

// DefaultScoringParameters returns the shipped tuning. Weights 0.35/0.25/0.20/0.15/0.05.
func DefaultScoringParameters() ScoringParameters {
	return ScoringParameters{
		Version: 1,
		Weights: FactorWeights{
			Sentiment:     0.35,
			Psychological: 0.25,
			Relationship:  0.20,
			Flow:          0.15,
			Historical:    0.05,
		},
		SentimentBoosts: []BoostBand{
			{Threshold: 2.5, Multiplier: 2.2},
			{Threshold: 1.8, Multiplier: 1.8},
			{Threshold: 1.2, Multiplier: 1.4},
			{Threshold: 0.6, Multiplier: 1.15},
			{Threshold: 0, Multiplier: 1.0},
		},
		AmbiguityFloor:                 4.1,
		EvidenceCeiling:                12,
		ContradictionScorePenalty:      0.05,
		ContradictionConfidencePenalty: 0.25,
		ContradictionFactorPenalty:     1.5,

		ExtremeSentimentThreshold: 3.0,
		ExtremeConsensusPull:      0.5,

		ConfidenceThreshold: 0.8,

		MinDeltaMagnitude:    1.5,
		DirectionDeadZone:    0.5,
		CelebrationThreshold: 3.0,
		DeclineThreshold:     2.5,

		PlateauVarianceThreshold:       0.5,
		SuddenVelocityThreshold:        20,
		TurningPointMergeWindowMinutes: 30,

		PatternMinimumEvidence:   2,
		PatternMinimumConfidence: 0.6,

		MinimumDataPoints:       5,
		BaselineUpdateThreshold: 0.3,

		MinValidationSampleSize:   5,
		MaxCalibrationsPerSession: 3,
		MinImprovementThreshold:   0.05,
		BiasSensitivity:           0.15,
		SentimentWeightMin:        0.1,
		SentimentWeightMax:        0.6,
	}
}

// ParameterStore holds the live ScoringParameters. Scoring snapshots a copy per
// analysis; calibration writes go through Update under the lock. Each write
// bumps Version.
type ParameterStore struct {
	mu     sync.RWMutex
	params ScoringParameters
}

// NewParameterStore creates a store seeded with p (Version forced to at least 1).
func NewParameterStore(p ScoringParameters) *ParameterStore {
	if p.Version < 1 {
		p.Version = 1
	}
	return &ParameterStore{params: p}
}

// Snapshot returns a copy of the current parameters.
func (s *ParameterStore) Snapshot() ScoringParameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.params
	if s.params.BiasCorrections != nil {
		p.BiasCorrections = make(map[string]float64, len(s.params.BiasCorrections))
		for k, v := range s.params.BiasCorrections {
			p.BiasCorrections[k] = v
		}
	}
	return p
}

// Update applies fn to a copy of the current parameters and stores the result
// with a bumped version. fn returning an error leaves the store untouched.
func (s *ParameterStore) Update(fn func(*ScoringParameters) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.params
	if s.params.BiasCorrections != nil {
		next.BiasCorrections = make(map[string]float64, len(s.params.BiasCorrections))
		for k, v := range s.params.BiasCorrections {
			next.BiasCorrections[k] = v
		}
	}
	if err := fn(&next); err != nil {
		return err
	}
	if !next.Weights.SumsToOne() {
		return fmt.Errorf("rejected parameter update: factor weights sum to %.4f",
			next.Weights.Sentiment+next.Weights.Psychological+next.Weights.Relationship+next.Weights.Flow+next.Weights.Historical)
	}
	next.Version = s.params.Version + 1
	s.params = next
	return nil
}

// SetSentimentWeight moves the sentiment weight to w (bounded by the
// configured min/max) and renormalizes the remaining four weights so the
// distribution still sums to 1.0.
func (s *ParameterStore) SetSentimentWeight(w float64) error {
	return s.Update(func(p *ScoringParameters) error {
		if w < p.SentimentWeightMin || w > p.SentimentWeightMax {
			return fmt.Errorf("sentiment weight %.3f outside bounds [%.2f, %.2f]", w, p.SentimentWeightMin, p.SentimentWeightMax)
		}
		rest := p.Weights.Psychological + p.Weights.Relationship + p.Weights.Flow + p.Weights.Historical
		if rest <= 0 {
			return fmt.Errorf("cannot renormalize: remaining weights sum to %.4f", rest)
		}
		scale := (1 - w) / rest
		p.Weights.Sentiment = w
		p.Weights.Psychological *= scale
		p.Weights.Relationship *= scale
		p.Weights.Flow *= scale
		p.Weights.Historical *= scale
		return nil
	})
}
