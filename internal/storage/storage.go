package storage

import (
	"fmt"

	"moodscope/datastore"
	"moodscope/internal/mood"
)

const (
	scoredHistoryLimit int = 50
	deltaHistoryLimit  int = 30
)

// Storage wraps the datastore with typed accessors for each persisted
// concern: per-subject records, validation reports, human ratings and the
// calibration trail.
type Storage struct {
	ds *datastore.DataStore
}

// SubjectRecord is everything persisted for one subject.
type SubjectRecord struct {
	Baseline      *mood.EmotionalBaseline   `json:"baseline,omitempty"`
	ScoredHistory []mood.ScoredConversation `json:"scored_history"`
	Deltas        []mood.MoodDelta          `json:"deltas"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func NewWithConfig(config *datastore.Config) (*Storage, error) {
	ds, err := datastore.NewWithConfig(config)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

func (s *Storage) Save() error {
	return s.ds.SaveToFile()
}

func subjectKey(subjectID string) string {
	return "subject:" + subjectID
}

// Helper to get or create the record for a subject
func (s *Storage) getOrCreateSubjectRecord(subjectID string) (*SubjectRecord, error) {
	var record SubjectRecord
	found, err := s.ds.GetInto(subjectKey(subjectID), &record)
	if err != nil {
		return nil, fmt.Errorf("subject %s: %w", subjectID, err)
	}
	if !found {
		record = SubjectRecord{
			ScoredHistory: []mood.ScoredConversation{},
			Deltas:        []mood.MoodDelta{},
		}
		s.ds.Add(subjectKey(subjectID), &record)
		return &record, nil
	}

	if len(record.ScoredHistory) > scoredHistoryLimit {
		record.ScoredHistory = record.ScoredHistory[len(record.ScoredHistory)-scoredHistoryLimit:]
	}
	if len(record.Deltas) > deltaHistoryLimit {
		record.Deltas = record.Deltas[len(record.Deltas)-deltaHistoryLimit:]
	}

	return &record, nil
}

// AppendScoredConversation appends a scored conversation to a subject's history.
func (s *Storage) AppendScoredConversation(subjectID string, sc mood.ScoredConversation) error {
	record, err := s.getOrCreateSubjectRecord(subjectID)
	if err != nil {
		return err
	}

	record.ScoredHistory = append(record.ScoredHistory, sc)
	if len(record.ScoredHistory) > scoredHistoryLimit {
		record.ScoredHistory = record.ScoredHistory[len(record.ScoredHistory)-scoredHistoryLimit:]
	}
	s.ds.Add(subjectKey(subjectID), record)
	return nil
}

// FetchScoredHistory returns a subject's scored conversations, oldest first.
func (s *Storage) FetchScoredHistory(subjectID string) ([]mood.ScoredConversation, error) {
	record, err := s.getOrCreateSubjectRecord(subjectID)
	if err != nil {
		return nil, err
	}
	return record.ScoredHistory, nil
}

// AppendDelta records a detected mood delta for a subject.
func (s *Storage) AppendDelta(subjectID string, delta mood.MoodDelta) error {
	record, err := s.getOrCreateSubjectRecord(subjectID)
	if err != nil {
		return err
	}

	record.Deltas = append(record.Deltas, delta)
	if len(record.Deltas) > deltaHistoryLimit {
		record.Deltas = record.Deltas[len(record.Deltas)-deltaHistoryLimit:]
	}
	s.ds.Add(subjectKey(subjectID), record)
	return nil
}

// FetchDeltas returns a subject's recorded deltas, oldest first.
func (s *Storage) FetchDeltas(subjectID string) ([]mood.MoodDelta, error) {
	record, err := s.getOrCreateSubjectRecord(subjectID)
	if err != nil {
		return nil, err
	}
	return record.Deltas, nil
}

// GetBaseline implements mood.BaselineStore.
func (s *Storage) GetBaseline(subjectID string) (*mood.EmotionalBaseline, bool, error) {
	record, err := s.getOrCreateSubjectRecord(subjectID)
	if err != nil {
		return nil, false, err
	}
	if record.Baseline == nil {
		return nil, false, nil
	}
	b := *record.Baseline
	return &b, true, nil
}

// PutBaseline implements mood.BaselineStore.
func (s *Storage) PutBaseline(subjectID string, baseline *mood.EmotionalBaseline) error {
	record, err := s.getOrCreateSubjectRecord(subjectID)
	if err != nil {
		return err
	}

	b := *baseline
	record.Baseline = &b
	s.ds.Add(subjectKey(subjectID), record)
	return nil
}

// ListSubjects returns every subject id with a persisted record.
func (s *Storage) ListSubjects() []string {
	keys := s.ds.Keys("subject:")
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k[len("subject:"):])
	}
	return out
}

// AppendHumanRecords stores a batch of human validation ratings.
func (s *Storage) AppendHumanRecords(records []mood.HumanValidationRecord) error {
	var existing []mood.HumanValidationRecord
	if _, err := s.ds.GetInto("human_records", &existing); err != nil {
		return err
	}
	existing = append(existing, records...)
	s.ds.Add("human_records", existing)
	return nil
}

// FetchHumanRecords returns all stored human validation ratings.
func (s *Storage) FetchHumanRecords() ([]mood.HumanValidationRecord, error) {
	var records []mood.HumanValidationRecord
	if _, err := s.ds.GetInto("human_records", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// PutValidationResult stores a validation report under its id.
func (s *Storage) PutValidationResult(vr *mood.ValidationResult) error {
	if vr == nil || vr.ID == "" {
		return fmt.Errorf("validation result must have an id")
	}
	s.ds.Add("validation:"+vr.ID, vr)
	return nil
}

// FetchValidationResult retrieves a validation report by id.
func (s *Storage) FetchValidationResult(id string) (*mood.ValidationResult, error) {
	var vr mood.ValidationResult
	found, err := s.ds.GetInto("validation:"+id, &vr)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("validation result %s not found", id)
	}
	return &vr, nil
}

// ListValidationResults returns the ids of every stored validation report.
func (s *Storage) ListValidationResults() []string {
	keys := s.ds.Keys("validation:")
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k[len("validation:"):])
	}
	return out
}

// AppendCalibrationHistory adds settled adjustments to the permanent trail.
func (s *Storage) AppendCalibrationHistory(adjustments []mood.CalibrationAdjustment) error {
	var existing []mood.CalibrationAdjustment
	if _, err := s.ds.GetInto("calibration_history", &existing); err != nil {
		return err
	}
	existing = append(existing, adjustments...)
	s.ds.Add("calibration_history", existing)
	return nil
}

// FetchCalibrationHistory returns the full calibration trail, oldest first.
func (s *Storage) FetchCalibrationHistory() ([]mood.CalibrationAdjustment, error) {
	var history []mood.CalibrationAdjustment
	if _, err := s.ds.GetInto("calibration_history", &history); err != nil {
		return nil, err
	}
	return history, nil
}

// PutParameters persists the current scoring parameter set.
func (s *Storage) PutParameters(p mood.ScoringParameters) {
	s.ds.Add("parameters", p)
}

// FetchParameters loads the persisted parameter set, or defaults when absent.
func (s *Storage) FetchParameters() (mood.ScoringParameters, error) {
	var p mood.ScoringParameters
	found, err := s.ds.GetInto("parameters", &p)
	if err != nil {
		return mood.ScoringParameters{}, err
	}
	if !found {
		return mood.DefaultScoringParameters(), nil
	}
	return p, nil
}
