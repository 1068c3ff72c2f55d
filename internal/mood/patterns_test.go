package mood

import (
	"testing"
	"time"
)

func TestRecognizePatternsCelebration(t *testing.T) {
	r := NewPatternRecognizer(nil, nil)
	conv := testConv("conv-celebration",
		"We won! So proud of the whole team",
		"Congratulations everyone, this is huge",
	)
	analysis := MoodAnalysisResult{
		ConversationID: conv.ID,
		Score:          8.0,
		Confidence:     0.8,
		Descriptors:    []string{"elated", "positive"},
	}

	patterns := r.RecognizePatterns(conv, analysis)
	var found *EmotionalPattern
	for i := range patterns {
		if patterns[i].Type == PatternCelebration {
			found = &patterns[i]
		}
	}
	if found == nil {
		t.Fatalf("no celebration pattern in %+v", patterns)
	}
	if found.Confidence < 0.6 {
		t.Errorf("confidence = %v, want at least the minimum 0.6", found.Confidence)
	}
	if len(found.Evidence) < 2 {
		t.Errorf("evidence = %v, want at least 2 entries", found.Evidence)
	}
}

func TestRecognizePatternsSupportSeeking(t *testing.T) {
	r := NewPatternRecognizer(nil, nil)
	conv := testConv("conv-support",
		"I really need help with something",
		"I'm so worried and stressed about work",
		"I feel anxious all the time lately",
		"I don't know what to do anymore",
		"It's been overwhelming for weeks",
		"Could you give me some advice",
		"I just need someone to listen",
		"Sorry for unloading all of this",
	)
	analysis := MoodAnalysisResult{
		ConversationID: conv.ID,
		Score:          3.5,
		Confidence:     0.7,
		Descriptors:    []string{"low", "distressed"},
	}

	patterns := r.RecognizePatterns(conv, analysis)
	var found bool
	for _, pat := range patterns {
		if pat.Type == PatternSupportSeeking {
			found = true
			if pat.Significance <= 0 {
				t.Errorf("significance = %v, want positive", pat.Significance)
			}
		}
	}
	if !found {
		t.Fatalf("no support_seeking pattern in %+v", patterns)
	}
}

func TestRecognizePatternsEvidenceGate(t *testing.T) {
	r := NewPatternRecognizer(nil, nil)
	conv := testConv("conv-neutral", "The meeting moved to Thursday")
	analysis := MoodAnalysisResult{
		ConversationID: conv.ID,
		Score:          5.0,
		Confidence:     0.1,
		Descriptors:    []string{"neutral"},
	}

	// A mood gate hit alone is a single piece of evidence, below the minimum.
	if patterns := r.RecognizePatterns(conv, analysis); len(patterns) != 0 {
		t.Errorf("got %+v, want no patterns", patterns)
	}
}

func TestRecognizeTrajectoryPatterns(t *testing.T) {
	d := NewDeltaDetector(nil, nil)
	r := NewPatternRecognizer(nil, nil)

	wantOne := func(t *testing.T, patterns []EmotionalPattern, typ PatternType) EmotionalPattern {
		t.Helper()
		for _, pat := range patterns {
			if pat.Type == typ {
				return pat
			}
		}
		t.Fatalf("no %s pattern in %+v", typ, patterns)
		return EmotionalPattern{}
	}

	t.Run("growth", func(t *testing.T) {
		traj := d.BuildTrajectory(makePoints(time.Hour, 5, 6, 7.5, 8))
		pat := wantOne(t, r.RecognizeTrajectoryPatterns(traj), PatternGrowth)
		if !almostEqual(pat.Confidence, 0.7, 1e-9) {
			t.Errorf("confidence = %v, want 0.70", pat.Confidence)
		}
	})

	t.Run("mood repair", func(t *testing.T) {
		traj := d.BuildTrajectory(makePoints(time.Hour, 3, 2.5, 6, 7))
		pat := wantOne(t, r.RecognizeTrajectoryPatterns(traj), PatternMoodRepair)
		if pat.Confidence < 0.6 {
			t.Errorf("confidence = %v, want at least 0.6", pat.Confidence)
		}
	})

	t.Run("vulnerability", func(t *testing.T) {
		traj := d.BuildTrajectory(makePoints(time.Hour, 2, 8, 2, 8))
		wantOne(t, r.RecognizeTrajectoryPatterns(traj), PatternVulnerability)
	})

	t.Run("too few points", func(t *testing.T) {
		traj := d.BuildTrajectory(makePoints(time.Hour, 3, 7))
		if got := r.RecognizeTrajectoryPatterns(traj); got != nil {
			t.Errorf("got %+v, want nil", got)
		}
	})
}

func TestMergeRelatedPatterns(t *testing.T) {
	patterns := []EmotionalPattern{
		{Type: PatternVulnerability, Confidence: 0.7, Significance: 0.5, Evidence: []string{"volatile direction"}},
		{Type: PatternSupportSeeking, Confidence: 0.8, Significance: 0.6, Evidence: []string{"keyword: need help"}},
		{Type: PatternCelebration, Confidence: 0.9, Significance: 0.7, Evidence: []string{"keyword: we won"}},
	}

	merged := MergeRelatedPatterns(patterns)
	if len(merged) != 2 {
		t.Fatalf("merged = %d patterns, want 2", len(merged))
	}
	first := merged[0]
	if first.Type != PatternSupportSeeking {
		t.Errorf("surviving type = %s, want the higher-confidence %s", first.Type, PatternSupportSeeking)
	}
	if !almostEqual(first.Confidence, 0.75, 1e-9) {
		t.Errorf("confidence = %v, want the 0.75 average", first.Confidence)
	}
	if first.Significance != 0.6 {
		t.Errorf("significance = %v, want the max 0.6", first.Significance)
	}
	if len(first.Evidence) != 2 {
		t.Errorf("evidence = %v, want the union of both", first.Evidence)
	}
	if merged[1].Type != PatternCelebration {
		t.Errorf("unrelated pattern = %s, want untouched %s", merged[1].Type, PatternCelebration)
	}
}
