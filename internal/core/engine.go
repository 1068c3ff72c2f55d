package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"moodscope/internal/config"
	"moodscope/internal/mood"
	"moodscope/internal/storage"
	"moodscope/pkg/util"
)

// SubjectReport is the per-subject output of one batch run.
type SubjectReport struct {
	SubjectID   string                               `json:"subject_id"`
	Scored      []mood.ScoredConversation            `json:"scored"`
	Baseline    *mood.EmotionalBaseline              `json:"baseline,omitempty"`
	Deviation   *mood.DeviationAnalysis              `json:"deviation,omitempty"`
	Deltas      []mood.MoodDelta                     `json:"deltas,omitempty"`
	Trajectory  *mood.EmotionalTrajectory            `json:"trajectory,omitempty"`
	Patterns    []mood.EmotionalPattern              `json:"patterns,omitempty"`
	Assessments []mood.EmotionalComplexityAssessment `json:"assessments,omitempty"`
}

// BatchReport is the output of one full batch run.
type BatchReport struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Subjects   []SubjectReport `json:"subjects"`
}

type scoreTask struct {
	subjectID string
	conv      mood.ConversationData
}

type scoredTask struct {
	subjectID  string
	scored     mood.ScoredConversation
	assessment mood.EmotionalComplexityAssessment
}

// Engine wires the analysis pipeline to persistence. One Engine serves the
// whole process; its parameter store is shared by the analyzer and the
// calibration manager so accepted adjustments take effect immediately.
type Engine struct {
	cfg       *config.Config
	store     *storage.Storage
	params    *mood.ParameterStore
	analyzer  *mood.Analyzer
	baselines *mood.BaselineManager
	deltas    *mood.DeltaDetector
	patterns  *mood.PatternRecognizer
	edges     *mood.EdgeCaseHandler
	validator *mood.ValidationFramework
	calib     *mood.CalibrationManager
	limiter   *rate.Limiter
}

func New(cfg *config.Config, store *storage.Storage) (*Engine, error) {
	persisted, err := store.FetchParameters()
	if err != nil {
		return nil, fmt.Errorf("failed to load parameters: %w", err)
	}

	params := mood.NewParameterStore(persisted)
	lex := mood.DefaultLexicon()

	perSecond := cfg.ScoreRatePerSecond
	if perSecond <= 0 {
		perSecond = 50
	}

	return &Engine{
		cfg:       cfg,
		store:     store,
		params:    params,
		analyzer:  mood.NewAnalyzer(params, lex),
		baselines: mood.NewBaselineManager(store, params),
		deltas:    mood.NewDeltaDetector(params, lex),
		patterns:  mood.NewPatternRecognizer(params, lex),
		edges:     mood.NewEdgeCaseHandler(lex),
		validator: mood.NewValidationFramework(params, lex),
		calib:     mood.NewCalibrationManager(params),
		limiter:   rate.NewLimiter(rate.Limit(perSecond), 1),
	}, nil
}

// Params exposes the shared parameter store.
func (e *Engine) Params() *mood.ParameterStore { return e.params }

// ScoreBatch scores every conversation in the input, updates baselines,
// detects deltas and patterns, and persists the results. Scoring runs in
// parallel under the configured worker limit and rate.
func (e *Engine) ScoreBatch(ctx context.Context, in *Input) (*BatchReport, error) {
	report := &BatchReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	var tasks []scoreTask
	for _, b := range in.Batches {
		for _, conv := range b.Conversations {
			tasks = append(tasks, scoreTask{subjectID: b.SubjectID, conv: conv})
		}
	}

	results, err := util.ParallelMap(ctx, tasks, e.cfg.Workers, func(ctx context.Context, t scoreTask) (scoredTask, error) {
		if err := e.limiter.Wait(ctx); err != nil {
			return scoredTask{}, err
		}
		analysis := e.analyzer.Analyze(t.conv)
		return scoredTask{
			subjectID:  t.subjectID,
			scored:     mood.ScoredConversation{Conversation: t.conv, Analysis: analysis},
			assessment: e.edges.Assess(t.conv),
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch scoring failed: %w", err)
	}

	bySubject := make(map[string][]scoredTask)
	var order []string
	for _, st := range results {
		if _, seen := bySubject[st.subjectID]; !seen {
			order = append(order, st.subjectID)
		}
		bySubject[st.subjectID] = append(bySubject[st.subjectID], st)
	}

	for _, subjectID := range order {
		sr, err := e.processSubject(subjectID, bySubject[subjectID])
		if err != nil {
			return nil, fmt.Errorf("subject %s: %w", subjectID, err)
		}
		report.Subjects = append(report.Subjects, *sr)
	}

	report.FinishedAt = time.Now().UTC()
	log.Printf("[ENGINE] run=%s subjects=%d conversations=%d", report.RunID, len(report.Subjects), len(tasks))
	return report, nil
}

// processSubject persists a subject's freshly scored conversations and runs
// the longitudinal analyses over the accumulated history.
func (e *Engine) processSubject(subjectID string, batch []scoredTask) (*SubjectReport, error) {
	sr := &SubjectReport{SubjectID: subjectID}

	previous, err := e.store.FetchScoredHistory(subjectID)
	if err != nil {
		return nil, err
	}

	// Deltas against the running last result, starting from stored history.
	var last *mood.MoodAnalysisResult
	if len(previous) > 0 {
		a := previous[len(previous)-1].Analysis
		last = &a
	}

	var newScored []mood.ScoredConversation
	for _, st := range batch {
		if err := e.store.AppendScoredConversation(subjectID, st.scored); err != nil {
			return nil, err
		}
		newScored = append(newScored, st.scored)
		sr.Assessments = append(sr.Assessments, st.assessment)

		if last != nil {
			if delta := e.deltas.DetectMoodDelta(st.scored.Analysis, *last); delta != nil {
				sr.Deltas = append(sr.Deltas, *delta)
				if err := e.store.AppendDelta(subjectID, *delta); err != nil {
					return nil, err
				}
				if e.deltas.ShouldTriggerExtraction(delta) {
					log.Printf("[ENGINE] subject=%s %s delta magnitude=%.2f flagged for extraction",
						subjectID, delta.Type, delta.Magnitude)
				}
			}
		}
		a := st.scored.Analysis
		last = &a
	}
	sr.Scored = newScored

	// Baseline: establish when absent, otherwise update when the batch shifts it.
	baseline, exists, err := e.baselines.Baseline(subjectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		history := append(append([]mood.ScoredConversation{}, previous...), newScored...)
		baseline, err = e.baselines.Establish(subjectID, history)
		if err != nil {
			var insufficient *mood.InsufficientDataError
			if !errors.As(err, &insufficient) {
				return nil, err
			}
			log.Printf("[ENGINE] subject=%s baseline deferred: %v", subjectID, err)
			baseline = nil
		}
	} else {
		should, err := e.baselines.ShouldUpdate(subjectID, newScored)
		if err != nil {
			return nil, err
		}
		if should {
			baseline, err = e.baselines.Update(subjectID, newScored)
			if err != nil {
				return nil, err
			}
		}
	}
	sr.Baseline = baseline

	if baseline != nil && len(newScored) > 0 {
		dev, err := e.baselines.AnalyzeDeviation(subjectID, newScored[len(newScored)-1])
		if err == nil {
			sr.Deviation = dev
		} else if !errors.Is(err, mood.ErrNoBaseline) {
			return nil, err
		}
	}

	// Trajectory over the full history, enriched with this batch.
	history, err := e.store.FetchScoredHistory(subjectID)
	if err != nil {
		return nil, err
	}
	points := make([]mood.TrajectoryPoint, 0, len(history))
	for _, sc := range history {
		points = append(points, mood.TrajectoryPoint{
			Timestamp: sc.Conversation.Timestamp,
			MoodScore: sc.Analysis.Score,
			Emotions:  sc.Analysis.Descriptors,
		})
	}
	if len(points) >= 2 {
		traj := e.deltas.BuildTrajectory(points)
		traj.TurningPoints = e.deltas.IdentifyTurningPoints(points)
		sr.Trajectory = &traj
		sr.Patterns = append(sr.Patterns, e.patterns.RecognizeTrajectoryPatterns(traj)...)
	}

	for _, st := range batch {
		sr.Patterns = append(sr.Patterns, e.patterns.RecognizePatterns(st.scored.Conversation, st.scored.Analysis)...)
	}
	sr.Patterns = mood.MergeRelatedPatterns(sr.Patterns)

	return sr, nil
}

// RunValidation compares stored algorithm scores with human ratings,
// persists the report, and proposes and applies calibration adjustments.
func (e *Engine) RunValidation(humanRecords []mood.HumanValidationRecord) (*mood.ValidationResult, []*mood.CalibrationAdjustment, error) {
	var scored []mood.ScoredConversation
	for _, subjectID := range e.store.ListSubjects() {
		history, err := e.store.FetchScoredHistory(subjectID)
		if err != nil {
			return nil, nil, err
		}
		scored = append(scored, history...)
	}

	vr, err := e.validator.Validate(scored, humanRecords)
	if err != nil {
		return nil, nil, err
	}
	if err := e.store.PutValidationResult(vr); err != nil {
		return nil, nil, err
	}

	sessionID := uuid.NewString()
	proposed := e.calib.GenerateAdjustments(vr, sessionID)
	applied, rejected := e.calib.ApplyAdjustments(proposed)

	if len(rejected) > 0 {
		settled := make([]mood.CalibrationAdjustment, 0, len(rejected))
		for _, adj := range rejected {
			settled = append(settled, *adj)
		}
		if err := e.store.AppendCalibrationHistory(settled); err != nil {
			return nil, nil, err
		}
	}

	e.store.PutParameters(e.params.Snapshot())
	return vr, applied, nil
}

// RevalidateStored re-analyzes every stored conversation under the current
// parameters and validates the fresh scores against the human records.
// Nothing is persisted; the result is the follow-up measurement for
// SettleCalibrations.
func (e *Engine) RevalidateStored(ctx context.Context, humanRecords []mood.HumanValidationRecord) (*mood.ValidationResult, error) {
	var tasks []mood.ConversationData
	for _, subjectID := range e.store.ListSubjects() {
		history, err := e.store.FetchScoredHistory(subjectID)
		if err != nil {
			return nil, err
		}
		for _, sc := range history {
			tasks = append(tasks, sc.Conversation)
		}
	}

	rescored, err := util.ParallelMap(ctx, tasks, e.cfg.Workers, func(ctx context.Context, conv mood.ConversationData) (mood.ScoredConversation, error) {
		if err := e.limiter.Wait(ctx); err != nil {
			return mood.ScoredConversation{}, err
		}
		return mood.ScoredConversation{Conversation: conv, Analysis: e.analyzer.Analyze(conv)}, nil
	})
	if err != nil {
		return nil, err
	}

	return e.validator.Validate(rescored, humanRecords)
}

// SettleCalibrations resolves every active adjustment against a follow-up
// validation run, reverting those that did not improve agreement.
func (e *Engine) SettleCalibrations(after *mood.ValidationResult) error {
	active := e.calib.ActiveCalibrations()
	if len(active) == 0 {
		return nil
	}

	settled := make([]mood.CalibrationAdjustment, 0, len(active))
	for i := range active {
		adj := active[i]
		e.calib.ValidateEffectiveness(&adj, after)
		settled = append(settled, adj)
	}

	if err := e.store.AppendCalibrationHistory(settled); err != nil {
		return err
	}
	e.store.PutParameters(e.params.Snapshot())
	return nil
}
