package mood

import (
	"testing"
	"time"
)

func testConv(id string, contents ...string) ConversationData {
	base := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	msgs := make([]ConversationMessage, len(contents))
	for i, c := range contents {
		msgs[i] = ConversationMessage{
			ID:        id + "-m" + string(rune('a'+i)),
			AuthorID:  "user-1",
			Content:   c,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return ConversationData{
		ID:           id,
		Messages:     msgs,
		Participants: []Participant{{ID: "user-1"}},
		Timestamp:    base,
	}
}

func TestAnalyzeEmptyConversation(t *testing.T) {
	a := NewAnalyzer(nil, nil)
	res := a.Analyze(ConversationData{ID: "empty"})

	if res.Score != 5.0 {
		t.Errorf("score = %v, want 5.0", res.Score)
	}
	if res.Confidence != 0.1 {
		t.Errorf("confidence = %v, want 0.1", res.Confidence)
	}
	if len(res.Factors) != 5 {
		t.Errorf("factors = %d, want 5", len(res.Factors))
	}
	if len(res.Descriptors) != 1 || res.Descriptors[0] != "neutral" {
		t.Errorf("descriptors = %v, want [neutral]", res.Descriptors)
	}
}

func TestAnalyzeOrdersPositiveAboveNegative(t *testing.T) {
	a := NewAnalyzer(nil, nil)

	pos := a.Analyze(testConv("pos",
		"I'm so happy today, this is amazing news!",
		"We won and I am thrilled, truly grateful",
		"Everything feels wonderful and exciting",
	))
	neg := a.Analyze(testConv("neg",
		"I'm so sad and exhausted today",
		"Everything feels hopeless and I keep crying",
		"I am miserable and so alone",
	))

	if pos.Score <= neg.Score {
		t.Errorf("positive score %v should exceed negative score %v", pos.Score, neg.Score)
	}
	for _, res := range []MoodAnalysisResult{pos, neg} {
		if res.Score < 0 || res.Score > 10 {
			t.Errorf("score %v outside [0,10]", res.Score)
		}
		if res.Confidence < 0 || res.Confidence > 1 {
			t.Errorf("confidence %v outside [0,1]", res.Confidence)
		}
	}
}

func TestAnalyzePurePositiveScoresHigh(t *testing.T) {
	a := NewAnalyzer(nil, nil)
	res := a.Analyze(testConv("pure-pos",
		"I feel so happy today",
		"I am grateful for everything",
		"I love how this turned out",
	))

	if res.Score < 7.0 {
		t.Errorf("score = %v, want >= 7.0 for purely positive content", res.Score)
	}
	if res.Confidence < 0.4 {
		t.Errorf("confidence = %v, want moderate or better", res.Confidence)
	}
	var positive bool
	for _, d := range res.Descriptors {
		if d == "positive" || d == "upbeat" || d == "elated" {
			positive = true
		}
	}
	if !positive {
		t.Errorf("descriptors = %v, want a positive term", res.Descriptors)
	}
}

func TestAmplifyExtremeSentiment(t *testing.T) {
	p := DefaultScoringParameters()
	aligned := []MoodFactor{
		{Type: FactorSentiment, Score: 9.0, Weight: 0.35},
		{Type: FactorPsychological, Score: 5.0, Weight: 0.25},
		{Type: FactorRelationship, Score: 5.5, Weight: 0.20},
		{Type: FactorFlow, Score: 5.0, Weight: 0.15},
		{Type: FactorHistorical, Score: 5.0, Weight: 0.05},
	}
	base := combineFactors(aligned)

	got := amplifyExtremeSentiment(base, aligned, p)
	want := base + (9.0-base)*p.ExtremeConsensusPull
	if !almostEqual(got, want, 1e-9) {
		t.Errorf("aligned extreme sentiment: got %v, want %v", got, want)
	}

	opposed := make([]MoodFactor, len(aligned))
	copy(opposed, aligned)
	opposed[1].Score = 3.0
	if got := amplifyExtremeSentiment(base, opposed, p); got != base {
		t.Errorf("opposing dimension: got %v, want unchanged %v", got, base)
	}

	mild := make([]MoodFactor, len(aligned))
	copy(mild, aligned)
	mild[0].Score = 7.0
	if got := amplifyExtremeSentiment(base, mild, p); got != base {
		t.Errorf("non-extreme sentiment: got %v, want unchanged %v", got, base)
	}
}

func TestAnalyzeAmbiguousContentFloored(t *testing.T) {
	a := NewAnalyzer(nil, nil)
	res := a.Analyze(testConv("ambig",
		"The meeting moved to 3pm",
		"See you in the usual room",
	))

	floor := a.Params().Snapshot().AmbiguityFloor
	if res.Score < floor-1e-9 {
		t.Errorf("score %v below ambiguity floor %v", res.Score, floor)
	}
	if res.Confidence >= 0.1 {
		t.Errorf("confidence %v for zero-evidence content, want near zero", res.Confidence)
	}
}

func TestAnalyzeContradictionPenalty(t *testing.T) {
	a := NewAnalyzer(nil, nil)

	plain := a.Analyze(testConv("plain",
		"I got the promotion. I am so happy and proud.",
	))
	contradicted := a.Analyze(testConv("contra",
		"I got the promotion but I am so happy and proud.",
	))

	if contradicted.Score >= plain.Score {
		t.Errorf("contradicted score %v should sit below plain score %v", contradicted.Score, plain.Score)
	}
	if contradicted.Confidence >= plain.Confidence {
		t.Errorf("contradicted confidence %v should sit below plain confidence %v", contradicted.Confidence, plain.Confidence)
	}
}

func TestCombineFactorsZeroWeights(t *testing.T) {
	got := combineFactors([]MoodFactor{{Score: 9, Weight: 0}})
	if got != 5.0 {
		t.Errorf("combineFactors = %v, want neutral 5.0", got)
	}
}

func TestComputeConfidenceEvidencePenalties(t *testing.T) {
	a := NewAnalyzer(nil, nil)
	p := a.Params().Snapshot()
	factors := []MoodFactor{
		{Score: 5}, {Score: 5}, {Score: 5}, {Score: 5}, {Score: 5},
	}

	full := a.computeConfidence(factors, p.EvidenceCeiling, p)
	if !almostEqual(full, 1.0, 1e-9) {
		t.Errorf("confidence at full evidence/agreement = %v, want 1.0", full)
	}

	none := a.computeConfidence(factors, 0, p)
	if none >= 0.01 {
		t.Errorf("confidence at zero evidence = %v, want near zero", none)
	}

	one := a.computeConfidence(factors, 1, p)
	two := a.computeConfidence(factors, 2, p)
	if !(none < one && one < two && two < full) {
		t.Errorf("confidence not monotone in evidence: %v %v %v %v", none, one, two, full)
	}
}

func TestDeriveDescriptorBands(t *testing.T) {
	a := NewAnalyzer(nil, nil)
	conv := testConv("bands", "nothing notable here")

	cases := []struct {
		score float64
		want  string
	}{
		{9.0, "elated"},
		{7.5, "positive"},
		{6.0, "content"},
		{5.0, "neutral"},
		{3.5, "low"},
		{1.0, "distressed"},
	}
	for _, tc := range cases {
		got := a.deriveDescriptors(conv, tc.score)
		if len(got) == 0 || got[0] != tc.want {
			t.Errorf("descriptors at %.1f = %v, want leading %q", tc.score, got, tc.want)
		}
	}
}

func TestEnrichDoesNotMutateBase(t *testing.T) {
	a := NewAnalyzer(nil, nil)
	conv := testConv("enrich", "I'm here for you, you're not alone")
	conv.Participants = []Participant{
		{ID: "user-1", Role: RoleVulnerableSharer},
		{ID: "user-2", Role: RoleEmotionalLeader},
	}
	conv.Context = &ConversationContext{
		ConversationType: ConversationDirect,
		RelationshipType: "close_friend",
		Platform:         "chat",
	}

	base := a.Analyze(conv)
	baseline := &EmotionalBaseline{SubjectID: "user-1", AverageMood: 5.5, Version: 2}
	enriched := a.Enrich(base, conv, baseline)

	if base.RelationshipDynamics != nil || base.EmotionalBaseline != nil {
		t.Fatal("Enrich mutated its input")
	}
	if enriched.RelationshipDynamics == nil {
		t.Fatal("enriched result missing relationship dynamics")
	}
	if !enriched.RelationshipDynamics.SupportDetected {
		t.Error("support language not detected")
	}
	if !enriched.RelationshipDynamics.VulnerabilityShared {
		t.Error("vulnerable sharer role not reflected")
	}
	if enriched.EmotionalBaseline == nil || enriched.EmotionalBaseline.Version != 2 {
		t.Error("baseline not carried")
	}
	if len(enriched.ContextualFactors) != 3 {
		t.Errorf("contextual factors = %v, want 3 entries", enriched.ContextualFactors)
	}

	// Carried baseline is a copy, not an alias.
	baseline.AverageMood = 9.9
	if enriched.EmotionalBaseline.AverageMood == 9.9 {
		t.Error("enriched baseline aliases the caller's baseline")
	}
}
