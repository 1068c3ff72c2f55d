package mood

import (
	"fmt"
	"testing"
)

func TestDefaultWeightsSumToOne(t *testing.T) {
	p := DefaultScoringParameters()
	if !p.Weights.SumsToOne() {
		t.Fatalf("default weights do not sum to 1: %+v", p.Weights)
	}
}

func TestSetSentimentWeightRenormalizes(t *testing.T) {
	s := NewParameterStore(DefaultScoringParameters())
	if err := s.SetSentimentWeight(0.5); err != nil {
		t.Fatalf("SetSentimentWeight: %v", err)
	}
	p := s.Snapshot()
	if !almostEqual(p.Weights.Sentiment, 0.5, 1e-9) {
		t.Errorf("sentiment weight = %v, want 0.5", p.Weights.Sentiment)
	}
	if !p.Weights.SumsToOne() {
		t.Errorf("weights no longer sum to 1: %+v", p.Weights)
	}
	if p.Version != 2 {
		t.Errorf("version = %d, want 2", p.Version)
	}
}

func TestSetSentimentWeightBounds(t *testing.T) {
	s := NewParameterStore(DefaultScoringParameters())
	before := s.Snapshot()

	for _, w := range []float64{0.05, 0.7} {
		if err := s.SetSentimentWeight(w); err == nil {
			t.Errorf("SetSentimentWeight(%v) accepted, want bound error", w)
		}
	}

	after := s.Snapshot()
	if after.Version != before.Version {
		t.Errorf("version changed on rejected update: %d -> %d", before.Version, after.Version)
	}
	if after.Weights != before.Weights {
		t.Errorf("weights changed on rejected update")
	}
}

func TestUpdateRejectsBrokenWeights(t *testing.T) {
	s := NewParameterStore(DefaultScoringParameters())
	err := s.Update(func(p *ScoringParameters) error {
		p.Weights.Sentiment = 0.9
		return nil
	})
	if err == nil {
		t.Fatal("update with non-normalized weights accepted")
	}
	if got := s.Snapshot().Weights.Sentiment; !almostEqual(got, 0.35, 1e-9) {
		t.Errorf("sentiment weight = %v after rejected update, want 0.35", got)
	}
}

func TestUpdatePropagatesError(t *testing.T) {
	s := NewParameterStore(DefaultScoringParameters())
	wantErr := fmt.Errorf("no")
	if err := s.Update(func(*ScoringParameters) error { return wantErr }); err != wantErr {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if v := s.Snapshot().Version; v != 1 {
		t.Errorf("version = %d after failed update, want 1", v)
	}
}

func TestSnapshotIsolatesBiasCorrections(t *testing.T) {
	s := NewParameterStore(DefaultScoringParameters())
	if err := s.Update(func(p *ScoringParameters) error {
		if p.BiasCorrections == nil {
			p.BiasCorrections = make(map[string]float64)
		}
		p.BiasCorrections["sarcasm_detection_failure"] = 1.1
		return nil
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	snap := s.Snapshot()
	snap.BiasCorrections["sarcasm_detection_failure"] = 99

	if got := s.Snapshot().BiasCorrections["sarcasm_detection_failure"]; got != 1.1 {
		t.Errorf("store bias correction = %v, want 1.1 (snapshot mutation leaked)", got)
	}
}
