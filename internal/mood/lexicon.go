package mood

import "strings"

// Lexicon bundles every fixed keyword table the engine consults. It is a value
// object injected into the analyzer and edge-case handler so tests can
// substitute fixtures and tables never become package-level mutable state.
type Lexicon struct {
	// Word -> intensity (1..3). Valence is implied by which map a word is in.
	Positive map[string]float64
	Negative map[string]float64

	// Psychological indicator phrase lists.
	Coping     []string
	Resilience []string
	Stress     []string
	Support    []string
	Growth     []string

	// Contradiction markers ("but", "however", ...).
	Contradictions []string

	// Descriptors that signal recovery from a low state.
	RecoveryDescriptors []string

	// Explicit temporal-comparison language.
	TemporalImprovement []string
	TemporalDecline     []string

	// Cultural register cue sets.
	BritishUnderstatement []string
	JapaneseIndirect      []string
	HighContext           []string

	// Sarcasm cues: positive-sentiment words that flip under negative context.
	SarcasmPositives    []string
	SarcasmNegativeCtx  []string
	SarcasmTimePressure []string

	// Extreme affect markers.
	ExtremeIntensity []string

	// Ambiguity markers.
	AmbiguousTerms []string
	VaguePhrases   []string

	// Emoji -> valence (-1, 0, +1) for emoji/text mismatch detection.
	EmojiValence map[string]float64
}

// DefaultLexicon returns the shipped tables.
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		Positive: map[string]float64{
			"happy": 2.0, "joy": 2.2, "joyful": 2.2, "glad": 1.6, "great": 1.8,
			"grateful": 2.2, "thankful": 2.0, "love": 2.5, "loved": 2.3,
			"excited": 2.2, "thrilled": 2.6, "amazing": 2.4, "wonderful": 2.3,
			"fantastic": 2.4, "excellent": 2.2, "awesome": 2.2, "proud": 2.0,
			"hopeful": 1.8, "hope": 1.5, "relieved": 1.8, "calm": 1.3,
			"peaceful": 1.5, "content": 1.4, "better": 1.3, "good": 1.2,
			"fun": 1.5, "laugh": 1.6, "laughing": 1.6, "smile": 1.5,
			"celebrate": 2.2, "celebration": 2.2, "congrats": 2.0,
			"congratulations": 2.0, "win": 1.8, "won": 1.8, "success": 1.9,
			"achieved": 1.9, "accomplished": 2.0, "blessed": 2.0,
			"delighted": 2.3, "optimistic": 1.8, "energized": 1.8,
		},
		Negative: map[string]float64{
			"sad": 2.0, "unhappy": 1.9, "depressed": 2.6, "miserable": 2.5,
			"angry": 2.2, "furious": 2.7, "mad": 1.9, "upset": 1.8,
			"anxious": 2.0, "anxiety": 2.0, "worried": 1.7, "scared": 2.0,
			"afraid": 2.0, "terrified": 2.7, "stressed": 2.0, "stress": 1.8,
			"overwhelmed": 2.2, "exhausted": 2.0, "tired": 1.3, "drained": 1.9,
			"lonely": 2.1, "alone": 1.5, "hopeless": 2.6, "worthless": 2.7,
			"awful": 2.3, "terrible": 2.3, "horrible": 2.4, "bad": 1.3,
			"worse": 1.6, "worst": 2.0, "hate": 2.4, "hurt": 1.9,
			"pain": 1.9, "crying": 2.2, "cried": 2.1, "failed": 1.9,
			"failure": 2.1, "lost": 1.6, "grief": 2.5, "devastated": 2.8,
			"frustrated": 1.9, "disappointed": 1.8, "guilty": 1.9,
			"ashamed": 2.1, "panic": 2.4, "dread": 2.2,
		},
		Coping: []string{
			"taking deep breaths", "one day at a time", "trying to cope",
			"working through it", "taking a break", "journaling",
			"talking it out", "going for a walk", "self care", "therapy",
			"meditating", "focusing on what i can control",
		},
		Resilience: []string{
			"i can handle", "we got through", "bounce back", "keep going",
			"not giving up", "i'll manage", "stronger than", "pushed through",
			"made it through", "survived",
		},
		Stress: []string{
			"deadline", "too much", "can't keep up", "no time", "burned out",
			"burnout", "under pressure", "breaking point", "falling apart",
			"can't sleep", "losing sleep", "swamped",
		},
		Support: []string{
			"i'm here for you", "here for you", "you're not alone",
			"let me help", "how can i help", "thinking of you", "that sounds hard",
			"i understand", "you've got this", "proud of you", "lean on me",
		},
		Growth: []string{
			"i learned", "i've learned", "i realized", "i realize",
			"looking back", "i've grown", "new perspective", "i understand now",
			"turning point for me", "changed how i think",
		},
		Contradictions: []string{"but", "however", "although", "yet"},
		RecoveryDescriptors: []string{
			"recovering", "bouncing back", "feeling better", "on the mend",
			"turned a corner", "picking myself up",
		},
		TemporalImprovement: []string{
			"better than", "improving", "getting better", "so much better",
			"looking up", "on the upswing", "better lately", "progress",
		},
		TemporalDecline: []string{
			"worse than", "getting worse", "declining", "downhill",
			"not like before", "used to be better",
		},
		BritishUnderstatement: []string{
			"a bit of a bother", "not ideal", "could be better", "mustn't grumble",
			"a tad difficult", "bit rough", "not brilliant", "slightly annoying",
		},
		JapaneseIndirect: []string{
			"it can't be helped", "shouganai", "it is what it is",
			"perhaps it is difficult", "i will think about it", "maybe someday",
		},
		HighContext: []string{
			"you know how it is", "as expected", "reading between the lines",
			"if you know what i mean", "no need to say more",
		},
		SarcasmPositives: []string{
			"great", "wonderful", "fantastic", "perfect", "lovely", "brilliant",
			"awesome", "just what i needed", "exactly what i wanted",
		},
		SarcasmNegativeCtx: []string{
			"another", "again", "of course", "as usual", "naturally",
			"broke", "broken", "failed", "stuck", "late", "monday",
		},
		SarcasmTimePressure: []string{
			"right before the deadline", "at the last minute", "5 minutes before",
			"the night before", "just in time to ruin",
		},
		ExtremeIntensity: []string{
			"devastated", "ecstatic", "destroyed", "shattered", "euphoric",
			"suicidal", "unbearable", "overjoyed", "catastrophic", "heartbroken",
		},
		AmbiguousTerms: []string{
			"fine", "okay", "ok", "whatever", "sure", "i guess", "maybe",
			"sort of", "kind of", "meh",
		},
		VaguePhrases: []string{
			"it's complicated", "hard to explain", "i don't know how i feel",
			"mixed feelings", "can't put it into words", "it's a lot",
		},
		EmojiValence: map[string]float64{
			"🙂": 1, "😀": 1, "😄": 1, "😊": 1, "🎉": 1, "❤️": 1, "👍": 1, "😍": 1,
			"🙃": -0.5, "😢": -1, "😭": -1, "😡": -1, "😞": -1, "💔": -1, "😩": -1,
			"😐": 0, "🤷": 0,
		},
	}
}

// tokenize lowercases and splits text into words, trimming punctuation.
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:()\"'…")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// PositiveHits returns the positive words found in text with their intensities.
func (l *Lexicon) PositiveHits(text string) map[string]float64 {
	return hits(l.Positive, text)
}

// NegativeHits returns the negative words found in text with their intensities.
func (l *Lexicon) NegativeHits(text string) map[string]float64 {
	return hits(l.Negative, text)
}

func hits(table map[string]float64, text string) map[string]float64 {
	found := make(map[string]float64)
	for _, w := range tokenize(text) {
		if v, ok := table[w]; ok {
			found[w] = v
		}
	}
	return found
}

// ContainsAny reports which phrases occur in text (case-insensitive substring match).
func ContainsAny(text string, phrases []string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			matched = append(matched, p)
		}
	}
	return matched
}

// HasContradiction reports whether any contradiction marker is present as a
// standalone word, or the specific grateful+overwhelmed co-occurrence.
func (l *Lexicon) HasContradiction(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range tokenize(lower) {
		for _, m := range l.Contradictions {
			if w == m {
				return true
			}
		}
	}
	return strings.Contains(lower, "grateful") && strings.Contains(lower, "overwhelmed")
}
