package mood

import (
	"log"
	"math"
	"time"

	"github.com/google/uuid"
)

// Minimum credentials a human rater must carry for their records to count.
const (
	minValidatorExperienceYears = 2
)

// ConcordanceLevel — band of algorithm/human agreement.
type ConcordanceLevel string

const (
	ConcordanceHigh     ConcordanceLevel = "high"
	ConcordanceModerate ConcordanceLevel = "moderate"
	ConcordanceLow      ConcordanceLevel = "low"
)

// PairAgreement labels one matched pair.
type PairAgreement string

const (
	PairCloseAgreement  PairAgreement = "close_agreement"
	PairOverEstimation  PairAgreement = "algorithmic_over_estimation"
	PairUnderEstimation PairAgreement = "algorithmic_under_estimation"
)

// PairAnalysis — one matched (algorithm, human) pair with its error breakdown.
type PairAnalysis struct {
	ConversationID      string       `json:"conversation_id"`
	AlgorithmScore      float64      `json:"algorithm_score"`
	AlgorithmConfidence float64      `json:"algorithm_confidence"`
	HumanScore          float64      `json:"human_score"`
	SignedError        float64       `json:"signed_error"` // algorithm - human
	Agreement          PairAgreement `json:"agreement"`
	DiscrepancyFactors []string      `json:"discrepancy_factors,omitempty"`
}

// DiscrepancyDistribution buckets pairs by absolute error.
type DiscrepancyDistribution struct {
	Small  int `json:"small"`  // <= 0.5
	Medium int `json:"medium"` // <= 1.5
	Large  int `json:"large"`
}

// DiscrepancyAnalysis — systematic error shape across all pairs.
type DiscrepancyAnalysis struct {
	MeanSignedError float64                 `json:"mean_signed_error"`
	SystematicBias  string                  `json:"systematic_bias"` // none | algorithmic_over_estimation | algorithmic_under_estimation
	Consistency     float64                 `json:"consistency"`     // 0..1
	Distribution    DiscrepancyDistribution `json:"distribution"`
}

// ValidatorOutlier — one rating far from its conversation's mean.
type ValidatorOutlier struct {
	ConversationID string  `json:"conversation_id"`
	ValidatorID    string  `json:"validator_id"`
	Score          float64 `json:"score"`
	GroupMean      float64 `json:"group_mean"`
}

// ValidatorConsistency — inter-rater agreement over multiply-rated conversations.
type ValidatorConsistency struct {
	MultiRatedConversations int                `json:"multi_rated_conversations"`
	AverageVariance         float64            `json:"average_variance"`
	Reliability             float64            `json:"reliability"` // 0..1
	Outliers                []ValidatorOutlier `json:"outliers,omitempty"`
}

// ValidationResult — the full agreement report. A report object, not state.
type ValidationResult struct {
	ID                   string               `json:"id"`
	SampleSize           int                  `json:"sample_size"`
	PearsonCorrelation   float64              `json:"pearson_correlation"`
	SpearmanCorrelation  float64              `json:"spearman_correlation"`
	MeanAbsoluteError    float64              `json:"mean_absolute_error"`
	RootMeanSquareError  float64              `json:"root_mean_square_error"`
	AgreementPercentage  float64              `json:"agreement_percentage"` // |error| <= 1.0
	Concordance          ConcordanceLevel     `json:"concordance"`
	Discrepancy          DiscrepancyAnalysis  `json:"discrepancy"`
	Pairs                []PairAnalysis       `json:"pairs"`
	ValidatorConsistency ValidatorConsistency `json:"validator_consistency"`
	Bias                 BiasAnalysis         `json:"bias"`
	Recommendations      []string             `json:"recommendations,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
}

// ValidationFramework measures algorithm-vs-human agreement.
type ValidationFramework struct {
	params  *ParameterStore
	lexicon *Lexicon
}

func NewValidationFramework(params *ParameterStore, lex *Lexicon) *ValidationFramework {
	if params == nil {
		params = NewParameterStore(DefaultScoringParameters())
	}
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &ValidationFramework{params: params, lexicon: lex}
}

// CheckCredentials gates a human rater. Records from rejected validators must
// not enter the statistics.
func CheckCredentials(rec HumanValidationRecord) error {
	if rec.ValidatorCredentials.YearsExperience < minValidatorExperienceYears {
		return &InvalidCredentialsError{
			ValidatorID: rec.ValidatorID,
			Reason:      "insufficient experience",
		}
	}
	if len(rec.ValidatorCredentials.Specializations) == 0 {
		return &InvalidCredentialsError{
			ValidatorID: rec.ValidatorID,
			Reason:      "no listed specialization",
		}
	}
	return nil
}

// Validate matches human records to scored conversations by conversation id
// (unmatched on either side are dropped; records failing the credential gate
// are dropped with a log line) and computes the full agreement report. Zero
// matched pairs is ErrNoMatchedPairs: proceeding would produce misleading
// statistics.
func (v *ValidationFramework) Validate(scored []ScoredConversation, humanRecords []HumanValidationRecord) (*ValidationResult, error) {
	byConv := make(map[string]ScoredConversation, len(scored))
	for _, sc := range scored {
		byConv[sc.Analysis.ConversationID] = sc
	}

	// All accepted ratings per conversation, for inter-rater consistency.
	ratings := make(map[string][]HumanValidationRecord)
	var accepted []HumanValidationRecord
	for _, rec := range humanRecords {
		if err := CheckCredentials(rec); err != nil {
			log.Printf("[VALIDATE] dropped record conv=%s: %v", rec.ConversationID, err)
			continue
		}
		if _, ok := byConv[rec.ConversationID]; !ok {
			continue
		}
		ratings[rec.ConversationID] = append(ratings[rec.ConversationID], rec)
		accepted = append(accepted, rec)
	}
	if len(accepted) == 0 {
		return nil, ErrNoMatchedPairs
	}

	var pairs []PairAnalysis
	var algo, human, errs []float64
	for _, rec := range accepted {
		sc := byConv[rec.ConversationID]
		signed := sc.Analysis.Score - rec.HumanMoodScore
		pair := PairAnalysis{
			ConversationID:      rec.ConversationID,
			AlgorithmScore:      sc.Analysis.Score,
			AlgorithmConfidence: sc.Analysis.Confidence,
			HumanScore:          rec.HumanMoodScore,
			SignedError:         signed,
			Agreement:           labelPair(signed),
		}
		pair.DiscrepancyFactors = v.discrepancyFactors(sc, rec, signed)
		pairs = append(pairs, pair)
		algo = append(algo, sc.Analysis.Score)
		human = append(human, rec.HumanMoodScore)
		errs = append(errs, signed)
	}

	res := &ValidationResult{
		ID:                  uuid.NewString(),
		SampleSize:          len(pairs),
		PearsonCorrelation:  pearson(algo, human),
		SpearmanCorrelation: spearman(algo, human),
		MeanAbsoluteError:   meanAbsoluteError(errs),
		RootMeanSquareError: rootMeanSquareError(errs),
		Pairs:               pairs,
		CreatedAt:           time.Now().UTC(),
	}

	var within int
	for _, e := range errs {
		if math.Abs(e) <= 1.0 {
			within++
		}
	}
	res.AgreementPercentage = float64(within) / float64(len(errs))

	switch {
	case res.PearsonCorrelation >= 0.8 && res.MeanAbsoluteError <= 0.8:
		res.Concordance = ConcordanceHigh
	case res.PearsonCorrelation >= 0.6 && res.MeanAbsoluteError <= 1.2:
		res.Concordance = ConcordanceModerate
	default:
		res.Concordance = ConcordanceLow
	}

	res.Discrepancy = analyzeDiscrepancy(errs)
	res.ValidatorConsistency = analyzeValidatorConsistency(ratings)
	res.Bias = v.PerformBiasAnalysis(pairs)
	res.Recommendations = biasRecommendations(res.Bias, res.Discrepancy)

	log.Printf("[VALIDATE] id=%s pairs=%d pearson=%.3f mae=%.3f concordance=%s",
		res.ID, res.SampleSize, res.PearsonCorrelation, res.MeanAbsoluteError, res.Concordance)
	return res, nil
}

func labelPair(signed float64) PairAgreement {
	switch {
	case math.Abs(signed) <= 0.5:
		return PairCloseAgreement
	case signed > 0:
		return PairOverEstimation
	default:
		return PairUnderEstimation
	}
}

func analyzeDiscrepancy(errs []float64) DiscrepancyAnalysis {
	mean := meanOf(errs)
	d := DiscrepancyAnalysis{MeanSignedError: mean}

	switch {
	case math.Abs(mean) < 0.5:
		d.SystematicBias = "none"
	case mean > 0:
		d.SystematicBias = "algorithmic_over_estimation"
	default:
		d.SystematicBias = "algorithmic_under_estimation"
	}

	d.Consistency = 1 - stddevOf(errs)/3.0
	if d.Consistency < 0 {
		d.Consistency = 0
	}

	for _, e := range errs {
		switch a := math.Abs(e); {
		case a <= 0.5:
			d.Distribution.Small++
		case a <= 1.5:
			d.Distribution.Medium++
		default:
			d.Distribution.Large++
		}
	}
	return d
}

func analyzeValidatorConsistency(ratings map[string][]HumanValidationRecord) ValidatorConsistency {
	var vc ValidatorConsistency
	var varianceSum float64

	for convID, recs := range ratings {
		if len(recs) < 2 {
			continue
		}
		vc.MultiRatedConversations++
		scores := make([]float64, len(recs))
		for i, r := range recs {
			scores[i] = r.HumanMoodScore
		}
		mean := meanOf(scores)
		varianceSum += populationVariance(scores)

		for _, r := range recs {
			if math.Abs(r.HumanMoodScore-mean) > 2.0 {
				vc.Outliers = append(vc.Outliers, ValidatorOutlier{
					ConversationID: convID,
					ValidatorID:    r.ValidatorID,
					Score:          r.HumanMoodScore,
					GroupMean:      mean,
				})
			}
		}
	}

	if vc.MultiRatedConversations > 0 {
		vc.AverageVariance = varianceSum / float64(vc.MultiRatedConversations)
	}
	vc.Reliability = clamp01(1 - vc.AverageVariance/4.0)
	return vc
}
