package mood

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AdjustmentType — what kind of parameter a calibration touches.
type AdjustmentType string

const (
	AdjustWeight         AdjustmentType = "weight"
	AdjustThreshold      AdjustmentType = "threshold"
	AdjustBiasCorrection AdjustmentType = "bias_correction"
)

// CalibrationStatus — adjustment lifecycle. pending -> applied|rejected;
// applied -> validated|rejected (reverted).
type CalibrationStatus string

const (
	CalibrationPending   CalibrationStatus = "pending"
	CalibrationApplied   CalibrationStatus = "applied"
	CalibrationValidated CalibrationStatus = "validated"
	CalibrationRejected  CalibrationStatus = "rejected"
)

// ParameterAdjustment — one parameter move with its justification.
type ParameterAdjustment struct {
	ParameterName    string  `json:"parameter_name"`
	CurrentValue     float64 `json:"current_value"`
	RecommendedValue float64 `json:"recommended_value"`
	Reason           string  `json:"reason"`
}

// CalibrationMetrics — the before/after comparison basis.
type CalibrationMetrics struct {
	Correlation       float64 `json:"correlation"`
	MeanAbsoluteError float64 `json:"mean_absolute_error"`
}

// CalibrationAdjustment — a proposed (then applied/validated/reverted)
// parameter change. Every adjustment ends up in permanent history.
type CalibrationAdjustment struct {
	CalibrationID         string                `json:"calibration_id"`
	SessionID             string                `json:"session_id"`
	AdjustmentType        AdjustmentType        `json:"adjustment_type"`
	TargetComponent       string                `json:"target_component"`
	ParameterAdjustments  []ParameterAdjustment `json:"parameter_adjustments"`
	PredictedImprovements []string              `json:"predicted_improvements,omitempty"`
	Status                CalibrationStatus     `json:"status"`
	BeforeMetrics         CalibrationMetrics    `json:"before_metrics"`
	AfterMetrics          *CalibrationMetrics   `json:"after_metrics,omitempty"`
	CreatedAt             time.Time             `json:"created_at"`
	ResolvedAt            *time.Time            `json:"resolved_at,omitempty"`
}

// CalibrationManager closes the feedback loop: validation results in,
// bounded parameter adjustments out, with automatic revert when a change
// does not hold up. All mutation goes through the shared ParameterStore, so
// application is deterministic: it fails only on bound violations.
type CalibrationManager struct {
	params *ParameterStore

	mu      sync.Mutex
	active  []*CalibrationAdjustment
	history []*CalibrationAdjustment
	trend   []CalibrationMetrics
}

func NewCalibrationManager(params *ParameterStore) *CalibrationManager {
	if params == nil {
		params = NewParameterStore(DefaultScoringParameters())
	}
	return &CalibrationManager{params: params}
}

// GenerateAdjustments proposes up to MaxCalibrationsPerSession changes from a
// validation result. Below the minimum sample size it proposes nothing:
// tuning on noise is worse than not tuning.
func (m *CalibrationManager) GenerateAdjustments(vr *ValidationResult, sessionID string) []*CalibrationAdjustment {
	if vr == nil {
		return nil
	}
	p := m.params.Snapshot()
	if vr.SampleSize < p.MinValidationSampleSize {
		log.Printf("[CALIB] session=%s sample=%d below minimum %d, no adjustments", sessionID, vr.SampleSize, p.MinValidationSampleSize)
		return nil
	}

	before := CalibrationMetrics{Correlation: vr.PearsonCorrelation, MeanAbsoluteError: vr.MeanAbsoluteError}
	var out []*CalibrationAdjustment

	// (a) Weight adjustment when the systematic bias is large.
	if math.Abs(vr.Bias.MeanError) > 1.0 {
		step := -0.05
		reason := "counteract algorithmic over-estimation"
		if vr.Bias.MeanError < 0 {
			step = 0.05
			reason = "counteract algorithmic under-estimation"
		}
		target := p.Weights.Sentiment + step
		if target < p.SentimentWeightMin {
			target = p.SentimentWeightMin
		}
		if target > p.SentimentWeightMax {
			target = p.SentimentWeightMax
		}
		if target != p.Weights.Sentiment {
			out = append(out, &CalibrationAdjustment{
				CalibrationID:   uuid.NewString(),
				SessionID:       sessionID,
				AdjustmentType:  AdjustWeight,
				TargetComponent: "analyzer",
				ParameterAdjustments: []ParameterAdjustment{{
					ParameterName:    "weights.sentiment",
					CurrentValue:     p.Weights.Sentiment,
					RecommendedValue: target,
					Reason:           reason,
				}},
				PredictedImprovements: []string{fmt.Sprintf("mean error expected to move toward zero from %.2f", vr.Bias.MeanError)},
				Status:                CalibrationPending,
				BeforeMetrics:         before,
				CreatedAt:             time.Now().UTC(),
			})
		}
	}

	// (b) Threshold adjustment when high-confidence predictions miss badly.
	var highConf, highConfHighErr int
	for _, pair := range vr.Pairs {
		if pair.AlgorithmConfidence > 0.8 {
			highConf++
			if math.Abs(pair.SignedError) > 1.5 {
				highConfHighErr++
			}
		}
	}
	if highConf > 0 && float64(highConfHighErr)/float64(highConf) > 0.3 {
		target := p.ConfidenceThreshold + 0.05
		if target > 0.95 {
			target = 0.95
		}
		out = append(out, &CalibrationAdjustment{
			CalibrationID:   uuid.NewString(),
			SessionID:       sessionID,
			AdjustmentType:  AdjustThreshold,
			TargetComponent: "analyzer",
			ParameterAdjustments: []ParameterAdjustment{{
				ParameterName:    "confidence_threshold",
				CurrentValue:     p.ConfidenceThreshold,
				RecommendedValue: target,
				Reason:           fmt.Sprintf("%d of %d high-confidence predictions had error above 1.5", highConfHighErr, highConf),
			}},
			PredictedImprovements: []string{"fewer overconfident misses surfacing downstream"},
			Status:                CalibrationPending,
			BeforeMetrics:         before,
			CreatedAt:             time.Now().UTC(),
		})
	}

	// (c) Per-bias correction factors for well-supported high-severity types.
	for _, bt := range vr.Bias.BiasTypes {
		if bt.Severity != "high" || bt.AffectedSamples < 3 {
			continue
		}
		factor := 1.0 + 0.02*float64(bt.AffectedSamples)
		if factor > 1.2 {
			factor = 1.2
		}
		if vr.Bias.MeanError > 0 {
			factor = 1.0 / factor
		}
		current := 1.0
		if v, ok := p.BiasCorrections[string(bt.Type)]; ok {
			current = v
		}
		out = append(out, &CalibrationAdjustment{
			CalibrationID:   uuid.NewString(),
			SessionID:       sessionID,
			AdjustmentType:  AdjustBiasCorrection,
			TargetComponent: "analyzer",
			ParameterAdjustments: []ParameterAdjustment{{
				ParameterName:    "bias_corrections." + string(bt.Type),
				CurrentValue:     current,
				RecommendedValue: factor,
				Reason:           fmt.Sprintf("%s affected %d samples at high severity", bt.Type, bt.AffectedSamples),
			}},
			PredictedImprovements: []string{"reduced error on " + string(bt.Type) + " conversations"},
			Status:                CalibrationPending,
			BeforeMetrics:         before,
			CreatedAt:             time.Now().UTC(),
		})
	}

	if len(out) > p.MaxCalibrationsPerSession {
		out = out[:p.MaxCalibrationsPerSession]
	}
	log.Printf("[CALIB] session=%s generated %d adjustment(s)", sessionID, len(out))
	return out
}

// ApplyAdjustments attempts each adjustment in isolation against the live
// parameter store. Application is deterministic: the only failure mode is a
// bound violation. Applied adjustments join the active list; failed ones go
// straight to history as rejected.
func (m *CalibrationManager) ApplyAdjustments(adjustments []*CalibrationAdjustment) (applied, rejected []*CalibrationAdjustment) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, adj := range adjustments {
		if err := m.applyOne(adj); err != nil {
			adj.Status = CalibrationRejected
			now := time.Now().UTC()
			adj.ResolvedAt = &now
			m.history = append(m.history, adj)
			rejected = append(rejected, adj)
			log.Printf("[CALIB] id=%s rejected on apply: %v", adj.CalibrationID, err)
			continue
		}
		adj.Status = CalibrationApplied
		m.active = append(m.active, adj)
		applied = append(applied, adj)
		log.Printf("[CALIB] id=%s applied (%s)", adj.CalibrationID, adj.AdjustmentType)
	}
	return applied, rejected
}

func (m *CalibrationManager) applyOne(adj *CalibrationAdjustment) error {
	for _, pa := range adj.ParameterAdjustments {
		if err := m.setParameter(pa.ParameterName, pa.RecommendedValue); err != nil {
			return err
		}
	}
	return nil
}

func (m *CalibrationManager) revertOne(adj *CalibrationAdjustment) {
	for _, pa := range adj.ParameterAdjustments {
		if err := m.setParameter(pa.ParameterName, pa.CurrentValue); err != nil {
			log.Printf("[CALIB] id=%s revert of %s failed: %v", adj.CalibrationID, pa.ParameterName, err)
		}
	}
}

func (m *CalibrationManager) setParameter(name string, value float64) error {
	switch {
	case name == "weights.sentiment":
		return m.params.SetSentimentWeight(value)
	case name == "confidence_threshold":
		return m.params.Update(func(p *ScoringParameters) error {
			if value <= 0 || value >= 1 {
				return fmt.Errorf("confidence threshold %.3f out of (0,1)", value)
			}
			p.ConfidenceThreshold = value
			return nil
		})
	case len(name) > len("bias_corrections.") && name[:len("bias_corrections.")] == "bias_corrections.":
		key := name[len("bias_corrections."):]
		return m.params.Update(func(p *ScoringParameters) error {
			if value < 0.5 || value > 2.0 {
				return fmt.Errorf("bias correction %.3f out of [0.5, 2.0]", value)
			}
			if p.BiasCorrections == nil {
				p.BiasCorrections = make(map[string]float64)
			}
			p.BiasCorrections[key] = value
			return nil
		})
	default:
		return fmt.Errorf("unknown calibration parameter %q", name)
	}
}

// ValidateEffectiveness settles an applied adjustment against a follow-up
// validation run. Accepted iff correlation did not drop by more than the
// improvement threshold AND accuracy improved by at least that threshold.
// Otherwise the parameter change is reverted. Either way the adjustment
// leaves the active list and enters permanent history.
func (m *CalibrationManager) ValidateEffectiveness(adj *CalibrationAdjustment, after *ValidationResult) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics := CalibrationMetrics{Correlation: after.PearsonCorrelation, MeanAbsoluteError: after.MeanAbsoluteError}
	adj.AfterMetrics = &metrics
	now := time.Now().UTC()
	adj.ResolvedAt = &now

	threshold := m.params.Snapshot().MinImprovementThreshold
	correlationHeld := metrics.Correlation >= adj.BeforeMetrics.Correlation-threshold
	accuracyImproved := adj.BeforeMetrics.MeanAbsoluteError-metrics.MeanAbsoluteError >= threshold

	accepted := correlationHeld && accuracyImproved
	if accepted {
		adj.Status = CalibrationValidated
		m.trend = append(m.trend, metrics)
	} else {
		adj.Status = CalibrationRejected
		m.revertOne(adj)
	}

	m.removeActive(adj.CalibrationID)
	m.history = append(m.history, adj)
	log.Printf("[CALIB] id=%s %s (correlation %.3f->%.3f mae %.3f->%.3f)",
		adj.CalibrationID, adj.Status, adj.BeforeMetrics.Correlation, metrics.Correlation,
		adj.BeforeMetrics.MeanAbsoluteError, metrics.MeanAbsoluteError)
	return accepted
}

func (m *CalibrationManager) removeActive(id string) {
	for i, a := range m.active {
		if a.CalibrationID == id {
			m.active = append(m.active[:i], m.active[i+1:]...)
			return
		}
	}
}

// ActiveCalibrations returns copies of the currently applied, not yet
// validated adjustments.
func (m *CalibrationManager) ActiveCalibrations() []CalibrationAdjustment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CalibrationAdjustment, len(m.active))
	for i, a := range m.active {
		out[i] = *a
	}
	return out
}

// History returns copies of every settled adjustment, accepted or not.
func (m *CalibrationManager) History() []CalibrationAdjustment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CalibrationAdjustment, len(m.history))
	for i, a := range m.history {
		out[i] = *a
	}
	return out
}

// ImprovementTrend returns the accepted after-metrics in order.
func (m *CalibrationManager) ImprovementTrend() []CalibrationMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CalibrationMetrics, len(m.trend))
	copy(out, m.trend)
	return out
}
