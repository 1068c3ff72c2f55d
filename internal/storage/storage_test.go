package storage

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"moodscope/internal/mood"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "datastore.json"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func scoredConv(id string, score float64) mood.ScoredConversation {
	return mood.ScoredConversation{
		Conversation: mood.ConversationData{
			ID:        id,
			Timestamp: time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
		},
		Analysis: mood.MoodAnalysisResult{ConversationID: id, Score: score, Confidence: 0.8},
	}
}

func TestScoredHistoryRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	for i := 0; i < 3; i++ {
		sc := scoredConv(fmt.Sprintf("conv-%d", i), 5.0+float64(i))
		if err := s.AppendScoredConversation("subj", sc); err != nil {
			t.Fatal(err)
		}
	}

	history, err := s.FetchScoredHistory("subj")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 {
		t.Fatalf("history = %d entries, want 3", len(history))
	}
	if history[0].Conversation.ID != "conv-0" || history[2].Conversation.ID != "conv-2" {
		t.Errorf("history order wrong: %s .. %s", history[0].Conversation.ID, history[2].Conversation.ID)
	}
	if history[2].Analysis.Score != 7.0 {
		t.Errorf("score = %v, want 7.0", history[2].Analysis.Score)
	}
}

func TestScoredHistoryLimit(t *testing.T) {
	s := newTestStorage(t)

	for i := 0; i < scoredHistoryLimit+10; i++ {
		if err := s.AppendScoredConversation("subj", scoredConv(fmt.Sprintf("conv-%d", i), 5)); err != nil {
			t.Fatal(err)
		}
	}

	history, err := s.FetchScoredHistory("subj")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != scoredHistoryLimit {
		t.Fatalf("history = %d entries, want trimmed to %d", len(history), scoredHistoryLimit)
	}
	if history[0].Conversation.ID != "conv-10" {
		t.Errorf("oldest kept = %s, want conv-10", history[0].Conversation.ID)
	}
}

func TestDeltaHistoryLimit(t *testing.T) {
	s := newTestStorage(t)

	for i := 0; i < deltaHistoryLimit+5; i++ {
		delta := mood.MoodDelta{Magnitude: float64(i), Direction: mood.DirectionPositive, Type: mood.DeltaPlateau}
		if err := s.AppendDelta("subj", delta); err != nil {
			t.Fatal(err)
		}
	}

	deltas, err := s.FetchDeltas("subj")
	if err != nil {
		t.Fatal(err)
	}
	if len(deltas) != deltaHistoryLimit {
		t.Fatalf("deltas = %d, want trimmed to %d", len(deltas), deltaHistoryLimit)
	}
	if deltas[0].Magnitude != 5 {
		t.Errorf("oldest kept magnitude = %v, want 5", deltas[0].Magnitude)
	}
}

func TestBaselineStoreCopies(t *testing.T) {
	s := newTestStorage(t)

	if _, ok, err := s.GetBaseline("subj"); err != nil || ok {
		t.Fatalf("baseline before put = (%v, %v), want absent", ok, err)
	}

	b := &mood.EmotionalBaseline{SubjectID: "subj", AverageMood: 5.5, Version: 1}
	if err := s.PutBaseline("subj", b); err != nil {
		t.Fatal(err)
	}
	b.AverageMood = 9.0

	got, ok, err := s.GetBaseline("subj")
	if err != nil || !ok {
		t.Fatalf("get = (%v, %v)", ok, err)
	}
	if got.AverageMood != 5.5 {
		t.Errorf("stored average = %v, caller mutation leaked in", got.AverageMood)
	}
}

func TestListSubjects(t *testing.T) {
	s := newTestStorage(t)

	if err := s.AppendScoredConversation("alice", scoredConv("c1", 5)); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendScoredConversation("bob", scoredConv("c2", 6)); err != nil {
		t.Fatal(err)
	}

	subjects := s.ListSubjects()
	if len(subjects) != 2 || subjects[0] != "alice" || subjects[1] != "bob" {
		t.Errorf("subjects = %v, want [alice bob]", subjects)
	}
}

func TestHumanRecordsAppend(t *testing.T) {
	s := newTestStorage(t)

	first := []mood.HumanValidationRecord{{ConversationID: "c1", ValidatorID: "v1", HumanMoodScore: 6}}
	second := []mood.HumanValidationRecord{{ConversationID: "c2", ValidatorID: "v2", HumanMoodScore: 4}}
	if err := s.AppendHumanRecords(first); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendHumanRecords(second); err != nil {
		t.Fatal(err)
	}

	records, err := s.FetchHumanRecords()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[1].ConversationID != "c2" {
		t.Errorf("records = %+v, want both batches in order", records)
	}
}

func TestValidationResultRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	if err := s.PutValidationResult(&mood.ValidationResult{}); err == nil {
		t.Error("result without id accepted")
	}

	vr := &mood.ValidationResult{ID: "vr-1", SampleSize: 5, PearsonCorrelation: 0.9}
	if err := s.PutValidationResult(vr); err != nil {
		t.Fatal(err)
	}

	got, err := s.FetchValidationResult("vr-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.SampleSize != 5 || got.PearsonCorrelation != 0.9 {
		t.Errorf("got %+v, want stored values back", got)
	}

	if _, err := s.FetchValidationResult("missing"); err == nil {
		t.Error("missing id returned no error")
	}
	if ids := s.ListValidationResults(); len(ids) != 1 || ids[0] != "vr-1" {
		t.Errorf("ids = %v, want [vr-1]", ids)
	}
}

func TestCalibrationHistoryAppend(t *testing.T) {
	s := newTestStorage(t)

	batch := []mood.CalibrationAdjustment{
		{CalibrationID: "a", Status: mood.CalibrationValidated},
		{CalibrationID: "b", Status: mood.CalibrationRejected},
	}
	if err := s.AppendCalibrationHistory(batch); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendCalibrationHistory([]mood.CalibrationAdjustment{{CalibrationID: "c"}}); err != nil {
		t.Fatal(err)
	}

	history, err := s.FetchCalibrationHistory()
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 || history[2].CalibrationID != "c" {
		t.Errorf("history = %+v, want 3 entries oldest first", history)
	}
}

func TestParametersDefaultWhenAbsent(t *testing.T) {
	s := newTestStorage(t)

	p, err := s.FetchParameters()
	if err != nil {
		t.Fatal(err)
	}
	defaults := mood.DefaultScoringParameters()
	if p.Weights != defaults.Weights || p.MinimumDataPoints != defaults.MinimumDataPoints {
		t.Errorf("absent parameters = %+v, want defaults", p)
	}

	p.MinimumDataPoints = 9
	s.PutParameters(p)
	got, err := s.FetchParameters()
	if err != nil {
		t.Fatal(err)
	}
	if got.MinimumDataPoints != 9 {
		t.Errorf("round trip lost the change: %+v", got)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datastore.json")

	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AppendScoredConversation("subj", scoredConv("c1", 6.5)); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	history, err := reopened.FetchScoredHistory("subj")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Analysis.Score != 6.5 {
		t.Errorf("history after reopen = %+v, want the persisted conversation", history)
	}
}
