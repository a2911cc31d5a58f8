// Package extract splits conversation turns into memory candidates and
// provides the text normalization and near-duplicate similarity used by
// ingestion.
package extract

import (
	"strings"
	"unicode"

	"github.com/personakit/memory/internal/model"
)

// Role marks which side of the turn a candidate came from.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Candidate is one extracted span of text worth considering as a memory.
type Candidate struct {
	Text string
	Role Role
}

// Options tunes candidate extraction.
type Options struct {
	// MinUserWords is the minimum word count for user-side sentences.
	MinUserWords int
	// MinAssistantWords is the minimum word count for assistant-side
	// sentences; assistant text is mostly filler so the bar is higher.
	MinAssistantWords int
}

// DefaultOptions returns the extraction defaults.
func DefaultOptions() Options {
	return Options{MinUserWords: 4, MinAssistantWords: 7}
}

// Leading words that mark throwaway acknowledgements rather than durable
// content.
var ackPrefixes = []string{
	"that's", "thats", "that is", "great", "sure", "okay", "ok", "yes",
	"no", "thanks", "thank you", "i see", "got it", "sounds", "glad",
	"nice", "cool", "of course", "no problem", "you're welcome",
}

// Extract pulls candidate spans out of both sides of a turn. Sentences are
// kept when they are long enough, are not questions, do not open with an
// acknowledgement, and carry either a first-person marker or an entity-like
// token.
func Extract(turn model.ChatTurn, opts Options) []Candidate {
	if opts.MinUserWords == 0 {
		opts = DefaultOptions()
	}

	var out []Candidate
	for _, s := range SplitSentences(turn.UserMessage) {
		if keep(s, opts.MinUserWords) {
			out = append(out, Candidate{Text: s, Role: RoleUser})
		}
	}
	for _, s := range SplitSentences(turn.AssistantMessage) {
		if keep(s, opts.MinAssistantWords) {
			out = append(out, Candidate{Text: s, Role: RoleAssistant})
		}
	}
	return out
}

// SplitSentences splits text on sentence terminators and newlines.
func SplitSentences(text string) []string {
	var out []string
	var b strings.Builder
	flush := func() {
		s := strings.TrimSpace(b.String())
		if s != "" {
			out = append(out, s)
		}
		b.Reset()
	}
	for _, r := range text {
		switch r {
		case '.', '!', '\n':
			flush()
		case '?':
			b.WriteRune(r) // keep the mark so questions stay recognizable
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return out
}

func keep(sentence string, minWords int) bool {
	if strings.HasSuffix(sentence, "?") {
		return false
	}
	words := strings.Fields(sentence)
	if len(words) < minWords {
		return false
	}
	lower := strings.ToLower(sentence)
	for _, p := range ackPrefixes {
		if strings.HasPrefix(lower, p+" ") || lower == p {
			return false
		}
	}
	return hasFirstPerson(lower) || hasEntityToken(words)
}

var firstPersonMarkers = []string{"i ", "i'm ", "i'll ", "i've ", "my ", "me ", "we ", "our "}

func hasFirstPerson(lower string) bool {
	for _, m := range firstPersonMarkers {
		if strings.HasPrefix(lower, m) || strings.Contains(lower, " "+m) {
			return true
		}
	}
	return false
}

func hasEntityToken(words []string) bool {
	for i, w := range words {
		trimmed := strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if trimmed == "" || trimmed == "I" {
			continue
		}
		runes := []rune(trimmed)
		if unicode.IsNumber(runes[0]) {
			return true
		}
		if i > 0 && unicode.IsUpper(runes[0]) {
			return true
		}
	}
	return false
}

// Normalize cleans extracted text: control characters stripped, whitespace
// collapsed, truncated to maxLen runes. It never fails; worst case it
// returns an empty string.
func Normalize(raw string, maxLen int) string {
	var b strings.Builder
	space := false
	for _, r := range raw {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	s := b.String()
	if maxLen > 0 {
		runes := []rune(s)
		if len(runes) > maxLen {
			s = strings.TrimSpace(string(runes[:maxLen]))
		}
	}
	return s
}

// TokenSet lowercases text and collects words of length >= 3.
func TokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if len(w) < 3 {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// Similarity is token-set Jaccard overlap between two texts, in [0,1].
// Two empty token sets count as identical.
func Similarity(a, b string) float64 {
	sa, sb := TokenSet(a), TokenSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 1
	}
	intersection := 0
	for w := range sa {
		if _, ok := sb[w]; ok {
			intersection++
		}
	}
	union := len(sa) + len(sb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
