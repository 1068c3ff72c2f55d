package mood

import "time"

// ConversationMessage — one message in a conversation. Immutable once created.
type ConversationMessage struct {
	ID        string    `json:"id,omitempty"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ParticipantRole classifies what a participant does in the conversation.
type ParticipantRole string

const (
	RoleSupporter       ParticipantRole = "supporter"
	RoleListener        ParticipantRole = "listener"
	RoleEmotionalLeader ParticipantRole = "emotional_leader"
	RoleVulnerableSharer ParticipantRole = "vulnerable_sharer"
	RoleAuthor          ParticipantRole = "author"
)

// Participant — a conversation member with an optional role annotation.
type Participant struct {
	ID                   string          `json:"id"`
	Role                 ParticipantRole `json:"role,omitempty"`
	Name                 string          `json:"name,omitempty"`
	EmotionalExpressions []string        `json:"emotional_expressions,omitempty"`
}

// ConversationType — direct (1:1) or group.
type ConversationType string

const (
	ConversationDirect ConversationType = "direct"
	ConversationGroup  ConversationType = "group"
)

// ConversationContext — optional metadata about where/between whom the conversation happened.
type ConversationContext struct {
	ConversationType ConversationType `json:"conversation_type,omitempty"`
	Platform         string           `json:"platform,omitempty"`
	RelationshipType string           `json:"relationship_type,omitempty"`
}

// ConversationData — one ingested conversation. Messages are chronological; read-only to the engine.
type ConversationData struct {
	ID           string                `json:"id"`
	Messages     []ConversationMessage `json:"messages"`
	Participants []Participant         `json:"participants"`
	Context      *ConversationContext  `json:"context,omitempty"`
	Timestamp    time.Time             `json:"timestamp"`
}

// FactorType identifies one of the weighted analysis dimensions.
type FactorType string

const (
	FactorSentiment    FactorType = "sentiment_analysis"
	FactorPsychological FactorType = "psychological_indicators"
	FactorRelationship FactorType = "relationship_context"
	FactorFlow         FactorType = "conversational_flow"
	FactorHistorical   FactorType = "historical_baseline"

	// Legacy aliases kept for records scored by earlier revisions.
	FactorSentimentLegacy    FactorType = "sentiment"
	FactorPsychologicalLegacy FactorType = "psychological"
)

// MaxFactorEvidence caps the evidence list carried per factor.
const MaxFactorEvidence = 5

// MoodFactor — one dimension's contribution to a mood analysis. Never mutated after construction.
type MoodFactor struct {
	Type        FactorType `json:"type"`
	Weight      float64    `json:"weight"`
	Score       float64    `json:"score"` // 0..10 sub-score
	Description string     `json:"description"`
	Evidence    []string   `json:"evidence,omitempty"`
}

// MaxDescriptors caps the descriptor list on a result.
const MaxDescriptors = 5

// MoodAnalysisResult — the unit every downstream component consumes. Immutable;
// enrichment produces a new composite value (see Enrich).
type MoodAnalysisResult struct {
	ConversationID string       `json:"conversation_id,omitempty"`
	Score          float64      `json:"score"`      // 0..10, not rounded
	Confidence     float64      `json:"confidence"` // 0..1
	Descriptors    []string     `json:"descriptors,omitempty"`
	Factors        []MoodFactor `json:"factors"`
	AnalyzedAt     time.Time    `json:"analyzed_at"`

	// Optional enrichment, set only by Enrich.
	RelationshipDynamics *RelationshipDynamics `json:"relationship_dynamics,omitempty"`
	ContextualFactors    []string              `json:"contextual_factors,omitempty"`
	EmotionalBaseline    *EmotionalBaseline    `json:"emotional_baseline,omitempty"`
}

// RelationshipDynamics — enrichment describing how participants related during the conversation.
type RelationshipDynamics struct {
	SupportDetected     bool    `json:"support_detected"`
	VulnerabilityShared bool    `json:"vulnerability_shared"`
	ParticipationBalance float64 `json:"participation_balance"` // 0..1, 1 = perfectly balanced
	DominantRole        ParticipantRole `json:"dominant_role,omitempty"`
}

// ScoredConversation pairs a conversation with its analysis, as stored per subject.
type ScoredConversation struct {
	Conversation ConversationData   `json:"conversation"`
	Analysis     MoodAnalysisResult `json:"analysis"`
}

// DeltaDirection — sign of a mood change.
type DeltaDirection string

const (
	DirectionPositive DeltaDirection = "positive"
	DirectionNegative DeltaDirection = "negative"
	DirectionNeutral  DeltaDirection = "neutral"
)

// DeltaType — shape classification of a mood change.
type DeltaType string

const (
	DeltaPlateau     DeltaType = "plateau"
	DeltaCelebration DeltaType = "celebration"
	DeltaDecline     DeltaType = "decline"
	DeltaMoodRepair  DeltaType = "mood_repair"
)

// MoodDelta — the change between two analyses. Derived, never persisted.
type MoodDelta struct {
	Magnitude  float64        `json:"magnitude"`
	Direction  DeltaDirection `json:"direction"`
	Type       DeltaType      `json:"type"`
	Confidence float64        `json:"confidence"`
	Factors    []string       `json:"factors,omitempty"`
}

// TrajectoryPoint — one sample on an intra- or inter-conversation mood line.
type TrajectoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	MoodScore float64   `json:"mood_score"`
	MessageID string    `json:"message_id,omitempty"`
	Emotions  []string  `json:"emotions,omitempty"`
	Context   string    `json:"context,omitempty"`
}

// TrajectoryDirection — overall tendency of a trajectory.
type TrajectoryDirection string

const (
	TrajectoryStable    TrajectoryDirection = "stable"
	TrajectoryImproving TrajectoryDirection = "improving"
	TrajectoryDeclining TrajectoryDirection = "declining"
	TrajectoryVolatile  TrajectoryDirection = "volatile"
)

// TurningPointType classifies a detected turning point.
type TurningPointType string

const (
	TurningBreakthrough    TurningPointType = "breakthrough"
	TurningSetback         TurningPointType = "setback"
	TurningRealization     TurningPointType = "realization"
	TurningSupportReceived TurningPointType = "support_received"
)

// TurningPoint — a local extremum or sharp-acceleration point in a trajectory.
type TurningPoint struct {
	Timestamp   time.Time        `json:"timestamp"`
	Type        TurningPointType `json:"type"`
	Magnitude   float64          `json:"magnitude"`
	Description string           `json:"description"`
	Factors     []string         `json:"factors,omitempty"`
}

// EmotionalTrajectory — ordered points with derived shape metadata.
type EmotionalTrajectory struct {
	Points        []TrajectoryPoint   `json:"points"`
	Direction     TrajectoryDirection `json:"direction"`
	Significance  float64             `json:"significance"` // 0..1
	TurningPoints []TurningPoint      `json:"turning_points,omitempty"`
}

// PatternType names a recognized emotional pattern template.
type PatternType string

const (
	PatternSupportSeeking PatternType = "support_seeking"
	PatternMoodRepair     PatternType = "mood_repair"
	PatternCelebration    PatternType = "celebration"
	PatternVulnerability  PatternType = "vulnerability"
	PatternGrowth         PatternType = "growth"
)

// EmotionalPattern — a confidence-scored, evidence-backed template match.
type EmotionalPattern struct {
	Type         PatternType `json:"type"`
	Confidence   float64     `json:"confidence"`
	Description  string      `json:"description"`
	Evidence     []string    `json:"evidence,omitempty"`
	Significance float64     `json:"significance"`
}

// ValidatorCredentials — experience gates for human raters.
type ValidatorCredentials struct {
	YearsExperience int      `json:"years_experience"`
	Specializations []string `json:"specializations,omitempty"`
}

// HumanValidationRecord — one expert rating of a conversation. External input, immutable.
type HumanValidationRecord struct {
	ConversationID       string               `json:"conversation_id"`
	ValidatorID          string               `json:"validator_id"`
	ValidatorCredentials ValidatorCredentials `json:"validator_credentials"`
	HumanMoodScore       float64              `json:"human_mood_score"`
	Confidence           float64              `json:"confidence"`
	Rationale            string               `json:"rationale,omitempty"`
	EmotionalFactors     []string             `json:"emotional_factors,omitempty"`
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func clampScore(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 10 {
		return 10
	}
	return x
}

// capStrings returns at most n items, deduplicated, preserving order.
func capStrings(in []string, n int) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, n)
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) >= n {
			break
		}
	}
	return out
}
