package mood

import (
	"log"
	"math"
	"sync"
	"time"
)

// MoodRange — min/max/spread of observed scores.
type MoodRange struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Spread float64 `json:"spread"`
}

// VariationPattern — how much and how cyclically a subject's mood moves.
type VariationPattern struct {
	Volatility       float64 `json:"volatility"` // population standard deviation
	CyclicalTendency string  `json:"cyclical_tendency"` // low | moderate | high
}

// BucketStat — average and sample count for one bucket, kept so merges can be
// count-weighted.
type BucketStat struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// EmotionalBaseline — a subject's statistical mood profile. Mutated only by
// Establish/Update, which produce a new version; readers treat a version as
// immutable.
type EmotionalBaseline struct {
	SubjectID            string                `json:"subject_id"`
	AverageMood          float64               `json:"average_mood"`
	MoodRange            MoodRange             `json:"mood_range"`
	DataPoints           int                   `json:"data_points"`
	Confidence           float64               `json:"confidence"`
	VariationPattern     VariationPattern      `json:"variation_pattern"`
	TemporalPatterns     map[string]BucketStat `json:"temporal_patterns,omitempty"`     // morning/afternoon/evening/night + weekday names
	RelationshipPatterns map[string]BucketStat `json:"relationship_patterns,omitempty"` // by relationship type
	Version              int                   `json:"version"`
	LastUpdated          time.Time             `json:"last_updated"`
	UpdateReason         string                `json:"update_reason,omitempty"` // routine | significant_shift | major_shift
}

// BaselineStore abstracts baseline persistence so the manager never owns a
// process-wide map. Implementations must be safe for concurrent use.
type BaselineStore interface {
	GetBaseline(subjectID string) (*EmotionalBaseline, bool, error)
	PutBaseline(subjectID string, b *EmotionalBaseline) error
}

// MemoryBaselineStore — in-memory BaselineStore for tests and single runs.
type MemoryBaselineStore struct {
	mu        sync.RWMutex
	baselines map[string]*EmotionalBaseline
}

func NewMemoryBaselineStore() *MemoryBaselineStore {
	return &MemoryBaselineStore{baselines: make(map[string]*EmotionalBaseline)}
}

func (s *MemoryBaselineStore) GetBaseline(subjectID string) (*EmotionalBaseline, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.baselines[subjectID]
	if !ok {
		return nil, false, nil
	}
	cp := *b
	return &cp, true, nil
}

func (s *MemoryBaselineStore) PutBaseline(subjectID string, b *EmotionalBaseline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.baselines[subjectID] = &cp
	return nil
}

// BaselineManager contextualizes new scores against a subject's history.
// Writes for the same subject are serialized per subject; reads of a stable
// version need no lock beyond the store's own.
type BaselineManager struct {
	store  BaselineStore
	params *ParameterStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewBaselineManager(store BaselineStore, params *ParameterStore) *BaselineManager {
	if store == nil {
		store = NewMemoryBaselineStore()
	}
	if params == nil {
		params = NewParameterStore(DefaultScoringParameters())
	}
	return &BaselineManager{store: store, params: params, locks: make(map[string]*sync.Mutex)}
}

func (m *BaselineManager) subjectLock(subjectID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.locks[subjectID]
	if l == nil {
		l = &sync.Mutex{}
		m.locks[subjectID] = l
	}
	return l
}

// Establish computes a fresh baseline from scored history. Requires at least
// MinimumDataPoints conversations or fails with InsufficientDataError.
func (m *BaselineManager) Establish(subjectID string, history []ScoredConversation) (*EmotionalBaseline, error) {
	p := m.params.Snapshot()
	if len(history) < p.MinimumDataPoints {
		return nil, &InsufficientDataError{SubjectID: subjectID, Got: len(history), Need: p.MinimumDataPoints}
	}

	lock := m.subjectLock(subjectID)
	lock.Lock()
	defer lock.Unlock()

	scores := make([]float64, len(history))
	for i, sc := range history {
		scores[i] = sc.Analysis.Score
	}

	b := &EmotionalBaseline{
		SubjectID:            subjectID,
		AverageMood:          meanOf(scores),
		MoodRange:            rangeOf(scores),
		DataPoints:           len(scores),
		VariationPattern:     variationOf(scores, bucketScores(history)),
		TemporalPatterns:     bucketScores(history),
		RelationshipPatterns: relationshipBuckets(history),
		Version:              1,
		LastUpdated:          time.Now().UTC(),
		UpdateReason:         "established",
	}
	b.Confidence = baselineConfidence(b.DataPoints, b.VariationPattern.Volatility)

	if err := m.store.PutBaseline(subjectID, b); err != nil {
		return nil, err
	}
	log.Printf("[BASELINE] subject=%s established avg=%.2f volatility=%.2f points=%d", subjectID, b.AverageMood, b.VariationPattern.Volatility, b.DataPoints)
	cp := *b
	return &cp, nil
}

// baselineConfidence: more data raises it, volatility erodes it.
func baselineConfidence(points int, volatility float64) float64 {
	c := 0.5 + float64(points)/20.0
	if c > 0.95 {
		c = 0.95
	}
	stability := 1 - volatility/5.0
	if stability < 0.3 {
		stability = 0.3
	}
	return c * stability
}

func rangeOf(scores []float64) MoodRange {
	if len(scores) == 0 {
		return MoodRange{}
	}
	min, max := scores[0], scores[0]
	for _, s := range scores {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	return MoodRange{Min: min, Max: max, Spread: max - min}
}

func variationOf(scores []float64, temporal map[string]BucketStat) VariationPattern {
	vp := VariationPattern{Volatility: stddevOf(scores)}

	// Cyclical tendency from the spread between temporal bucket averages.
	var bMin, bMax float64
	first := true
	for _, stat := range temporal {
		if stat.Count == 0 {
			continue
		}
		if first {
			bMin, bMax = stat.Average, stat.Average
			first = false
			continue
		}
		if stat.Average < bMin {
			bMin = stat.Average
		}
		if stat.Average > bMax {
			bMax = stat.Average
		}
	}
	switch spread := bMax - bMin; {
	case spread > 1.5:
		vp.CyclicalTendency = "high"
	case spread > 0.7:
		vp.CyclicalTendency = "moderate"
	default:
		vp.CyclicalTendency = "low"
	}
	return vp
}

// timeOfDayBucket uses UTC hour boundaries 6/12/18/22.
func timeOfDayBucket(t time.Time) string {
	switch h := t.UTC().Hour(); {
	case h >= 6 && h < 12:
		return "morning"
	case h >= 12 && h < 18:
		return "afternoon"
	case h >= 18 && h < 22:
		return "evening"
	default:
		return "night"
	}
}

func bucketScores(history []ScoredConversation) map[string]BucketStat {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, sc := range history {
		ts := sc.Conversation.Timestamp
		for _, key := range []string{timeOfDayBucket(ts), ts.UTC().Weekday().String()} {
			sums[key] += sc.Analysis.Score
			counts[key]++
		}
	}
	out := make(map[string]BucketStat, len(sums))
	for k, sum := range sums {
		out[k] = BucketStat{Average: sum / float64(counts[k]), Count: counts[k]}
	}
	return out
}

func relationshipBuckets(history []ScoredConversation) map[string]BucketStat {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, sc := range history {
		if sc.Conversation.Context == nil || sc.Conversation.Context.RelationshipType == "" {
			continue
		}
		k := sc.Conversation.Context.RelationshipType
		sums[k] += sc.Analysis.Score
		counts[k]++
	}
	if len(sums) == 0 {
		return nil
	}
	out := make(map[string]BucketStat, len(sums))
	for k, sum := range sums {
		out[k] = BucketStat{Average: sum / float64(counts[k]), Count: counts[k]}
	}
	return out
}

// DeviationAnalysis — how a new score relates to the subject's normal range.
type DeviationAnalysis struct {
	SubjectID          string   `json:"subject_id"`
	BaselineVersion    int      `json:"baseline_version"`
	ReferenceAverage   float64  `json:"reference_average"`
	ReferenceKind      string   `json:"reference_kind"` // global | relationship
	Deviation          float64  `json:"deviation"`      // signed, score points
	ZScore             float64  `json:"z_score"`
	PercentileRank     float64  `json:"percentile_rank"` // 0..100
	DeviationType      string   `json:"deviation_type"`  // normal_variation | significant_elevation | significant_decline
	Significance       string   `json:"significance"`    // low | medium | high
	Sustainable        bool     `json:"sustainable"`     // elevations only
	RecommendedActions []string `json:"recommended_actions,omitempty"`
}

// AnalyzeDeviation compares a new scored conversation against the stored
// baseline. Prefers the relationship-specific sub-average when the
// conversation carries a relationship type the baseline knows. Fails with
// ErrNoBaseline before establishment. Idempotent for a fixed baseline version.
func (m *BaselineManager) AnalyzeDeviation(subjectID string, scored ScoredConversation) (*DeviationAnalysis, error) {
	b, ok, err := m.store.GetBaseline(subjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoBaseline
	}

	refAvg := b.AverageMood
	refKind := "global"
	if scored.Conversation.Context != nil && scored.Conversation.Context.RelationshipType != "" {
		if stat, found := b.RelationshipPatterns[scored.Conversation.Context.RelationshipType]; found && stat.Count > 0 {
			refAvg = stat.Average
			refKind = "relationship"
		}
	}

	deviation := scored.Analysis.Score - refAvg
	magnitude := math.Abs(deviation)

	// z-like: scale by volatility, floored so flat baselines don't explode.
	scale := b.VariationPattern.Volatility
	if scale < 0.5 {
		scale = 0.5
	}
	z := deviation / scale

	d := &DeviationAnalysis{
		SubjectID:        subjectID,
		BaselineVersion:  b.Version,
		ReferenceAverage: refAvg,
		ReferenceKind:    refKind,
		Deviation:        deviation,
		ZScore:           z,
		PercentileRank:   normalPercentile(z),
	}

	switch {
	case magnitude < 2.0:
		d.DeviationType = "normal_variation"
	case deviation > 0:
		d.DeviationType = "significant_elevation"
	default:
		d.DeviationType = "significant_decline"
	}

	switch {
	case magnitude < 1.0:
		d.Significance = "low"
	case magnitude < 2.0:
		d.Significance = "medium"
	default:
		d.Significance = "high"
	}

	switch d.DeviationType {
	case "significant_elevation":
		d.Sustainable = magnitude < 3.0
		if d.Sustainable {
			d.RecommendedActions = append(d.RecommendedActions, "capture as positive memory candidate")
		} else {
			d.RecommendedActions = append(d.RecommendedActions, "verify elevation before acting (possible transient spike)")
		}
	case "significant_decline":
		d.RecommendedActions = append(d.RecommendedActions, "flag for supportive follow-up", "capture as significant moment")
	default:
		d.RecommendedActions = append(d.RecommendedActions, "no action: within normal variation")
	}

	return d, nil
}

// normalPercentile approximates the percentile rank of z under a standard
// normal. The baseline keeps aggregates rather than raw history, so a CDF
// approximation stands in for an empirical rank.
func normalPercentile(z float64) float64 {
	return 50 * (1 + math.Erf(z/math.Sqrt2))
}

// ShouldUpdate reports whether a new batch shifts the average enough to
// justify a baseline update.
func (m *BaselineManager) ShouldUpdate(subjectID string, batch []ScoredConversation) (bool, error) {
	if len(batch) == 0 {
		return false, nil
	}
	b, ok, err := m.store.GetBaseline(subjectID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrNoBaseline
	}
	var sum float64
	for _, sc := range batch {
		sum += sc.Analysis.Score
	}
	shift := math.Abs(sum/float64(len(batch)) - b.AverageMood)
	return shift >= m.params.Snapshot().BaselineUpdateThreshold, nil
}

// Update merges a new batch into the existing baseline, weighting old and new
// by their sample counts, and bumps the version. An empty batch is an error,
// never a silent no-op.
func (m *BaselineManager) Update(subjectID string, batch []ScoredConversation) (*EmotionalBaseline, error) {
	if len(batch) == 0 {
		return nil, &InsufficientDataError{SubjectID: subjectID, Got: 0, Need: 1}
	}

	lock := m.subjectLock(subjectID)
	lock.Lock()
	defer lock.Unlock()

	b, ok, err := m.store.GetBaseline(subjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoBaseline
	}

	scores := make([]float64, len(batch))
	for i, sc := range batch {
		scores[i] = sc.Analysis.Score
	}
	newAvg := meanOf(scores)
	oldN := float64(b.DataPoints)
	newN := float64(len(scores))

	next := *b
	next.AverageMood = (b.AverageMood*oldN + newAvg*newN) / (oldN + newN)
	next.DataPoints = b.DataPoints + len(scores)

	nr := rangeOf(scores)
	if nr.Min < next.MoodRange.Min {
		next.MoodRange.Min = nr.Min
	}
	if nr.Max > next.MoodRange.Max {
		next.MoodRange.Max = nr.Max
	}
	next.MoodRange.Spread = next.MoodRange.Max - next.MoodRange.Min

	// Volatility merged by count-weighted combination of variances.
	oldVar := b.VariationPattern.Volatility * b.VariationPattern.Volatility
	newVar := populationVariance(scores)
	next.VariationPattern.Volatility = math.Sqrt((oldVar*oldN + newVar*newN) / (oldN + newN))

	next.TemporalPatterns = mergeBuckets(b.TemporalPatterns, bucketScores(batch))
	next.RelationshipPatterns = mergeBuckets(b.RelationshipPatterns, relationshipBuckets(batch))

	shift := math.Abs(newAvg - b.AverageMood)
	switch {
	case shift >= 2.0:
		next.UpdateReason = "major_shift"
	case shift >= 1.0:
		next.UpdateReason = "significant_shift"
	default:
		next.UpdateReason = "routine"
	}

	next.Confidence = b.Confidence + 0.05
	if next.Confidence > 0.95 {
		next.Confidence = 0.95
	}
	next.Version = b.Version + 1
	next.LastUpdated = time.Now().UTC()

	if err := m.store.PutBaseline(subjectID, &next); err != nil {
		return nil, err
	}
	log.Printf("[BASELINE] subject=%s updated v%d reason=%s avg=%.2f", subjectID, next.Version, next.UpdateReason, next.AverageMood)
	cp := next
	return &cp, nil
}

func mergeBuckets(old, add map[string]BucketStat) map[string]BucketStat {
	if len(old) == 0 {
		return add
	}
	out := make(map[string]BucketStat, len(old)+len(add))
	for k, v := range old {
		out[k] = v
	}
	for k, n := range add {
		if o, ok := out[k]; ok {
			total := o.Count + n.Count
			out[k] = BucketStat{
				Average: (o.Average*float64(o.Count) + n.Average*float64(n.Count)) / float64(total),
				Count:   total,
			}
		} else {
			out[k] = n
		}
	}
	return out
}

// Baseline returns the current stored baseline for a subject, if any.
func (m *BaselineManager) Baseline(subjectID string) (*EmotionalBaseline, bool, error) {
	return m.store.GetBaseline(subjectID)
}
