// Package classify derives memory kind, emotional tag, and an importance
// score from raw text using lexical cues only. No ML inference, no
// randomness: identical input always yields identical output.
package classify

import (
	"strings"
	"unicode"

	"github.com/personakit/memory/internal/model"
)

// Result is the classification of one candidate text.
type Result struct {
	Kind       model.MemoryKind
	Emotion    model.Emotion
	Importance float64
}

// Cue tables. Kind precedence when several match: preference, emotion,
// project, event, knowledge, fact.
var (
	preferenceCues = []string{
		"i love", "i like", "i enjoy", "i prefer", "i hate", "i dislike",
		"my favorite", "my favourite", "i always", "i never", "i can't stand",
	}
	emotionSadCues      = []string{"sad", "depressed", "miserable", "heartbroken", "crying", "grief"}
	emotionAngerCues    = []string{"angry", "furious", "annoyed", "frustrated", "mad at"}
	emotionFearCues     = []string{"afraid", "scared", "worried", "anxious", "nervous", "terrified"}
	emotionJoyCues      = []string{"happy", "excited", "thrilled", "delighted", "glad", "love", "wonderful", "amazing"}
	emotionSurpriseCues = []string{"surprised", "shocked", "can't believe", "unexpected", "astonished"}
	feelingCues         = []string{"i feel", "i felt", "i'm feeling", "feeling", "makes me"}

	projectCues = []string{
		"working on", "my project", "deadline", "building", "launching",
		"shipping", "prototype", "milestone", "sprint",
	}
	eventCues = []string{
		"yesterday", "today", "tomorrow", "last week", "last night",
		"this morning", "went to", "visited", "met with", "happened",
		"arrived", "attended",
	}
	knowledgeCues = []string{
		"did you know", "fun fact", "according to", "research shows",
		"studies show", "is defined as", "means that", "is known as",
	}
	factCues = []string{
		"my name is", "i live", "i work", "i am a", "i'm a", "i was born",
		"my wife", "my husband", "my partner", "my job", "years old",
		"i have a", "my birthday",
	}

	commitmentCues = []string{
		"i will", "i'll", "i promise", "i must", "i need to", "i have to",
		"remember", "don't forget", "important", "always", "never",
	}
	sentimentCues = []string{
		"love", "hate", "amazing", "terrible", "awful", "wonderful",
		"favorite", "favourite", "best", "worst",
	}

	monthNames = map[string]bool{
		"january": true, "february": true, "march": true, "april": true,
		"may": true, "june": true, "july": true, "august": true,
		"september": true, "october": true, "november": true, "december": true,
		"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
		"friday": true, "saturday": true, "sunday": true,
	}
)

// Classify is pure: it maps text to (kind, emotion, importance) without
// external calls. Unmatched text falls back to KindOther/EmotionNeutral.
func Classify(text string) Result {
	lower := strings.ToLower(text)

	return Result{
		Kind:       classifyKind(lower),
		Emotion:    classifyEmotion(lower),
		Importance: scoreImportance(text, lower),
	}
}

func classifyKind(lower string) model.MemoryKind {
	switch {
	case containsAny(lower, preferenceCues):
		return model.KindPreference
	case containsAny(lower, feelingCues) && emotionOf(lower) != model.EmotionNeutral:
		return model.KindEmotion
	case containsAny(lower, projectCues):
		return model.KindProject
	case containsAny(lower, eventCues):
		return model.KindEvent
	case containsAny(lower, knowledgeCues):
		return model.KindKnowledge
	case containsAny(lower, factCues):
		return model.KindFact
	default:
		return model.KindOther
	}
}

func classifyEmotion(lower string) model.Emotion {
	return emotionOf(lower)
}

func emotionOf(lower string) model.Emotion {
	switch {
	case containsAny(lower, emotionSadCues):
		return model.EmotionSadness
	case containsAny(lower, emotionAngerCues):
		return model.EmotionAnger
	case containsAny(lower, emotionFearCues):
		return model.EmotionFear
	case containsAny(lower, emotionSurpriseCues):
		return model.EmotionSurprise
	case containsAny(lower, emotionJoyCues):
		return model.EmotionJoy
	default:
		return model.EmotionNeutral
	}
}

// scoreImportance is a monotonic function of signal count: length bucket +
// entity-like tokens + commitment/sentiment cues, clipped to [0,1]. Any
// non-empty text scores at least a small baseline.
func scoreImportance(text, lower string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	score := 0.1 // baseline for non-empty text

	switch {
	case len(words) >= 12:
		score += 0.3
	case len(words) >= 6:
		score += 0.2
	case len(words) >= 3:
		score += 0.1
	}

	entities := countEntityTokens(words)
	if entities > 3 {
		entities = 3
	}
	score += 0.1 * float64(entities)

	if containsAny(lower, commitmentCues) {
		score += 0.2
	}
	if containsAny(lower, sentimentCues) {
		score += 0.1
	}

	if score > 1 {
		score = 1
	}
	return score
}

// countEntityTokens counts capitalized words past the sentence start,
// numbers, and month/weekday names.
func countEntityTokens(words []string) int {
	n := 0
	for i, w := range words {
		trimmed := strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if trimmed == "" {
			continue
		}
		runes := []rune(trimmed)
		switch {
		case unicode.IsNumber(runes[0]):
			n++
		case monthNames[strings.ToLower(trimmed)]:
			n++
		case i > 0 && trimmed != "I" && unicode.IsUpper(runes[0]):
			n++
		}
	}
	return n
}

func containsAny(s string, cues []string) bool {
	for _, c := range cues {
		if strings.Contains(s, c) {
			return true
		}
	}
	return false
}
