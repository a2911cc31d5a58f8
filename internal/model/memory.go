// Package model defines the core memory data types.
package model

import "time"

// MemoryKind categorizes what a memory is about.
type MemoryKind string

const (
	KindFact       MemoryKind = "fact"
	KindEvent      MemoryKind = "event"
	KindPreference MemoryKind = "preference"
	KindProject    MemoryKind = "project"
	KindKnowledge  MemoryKind = "knowledge"
	KindEmotion    MemoryKind = "emotion"
	KindOther      MemoryKind = "other"
)

// ValidKinds are the allowed memory kinds.
var ValidKinds = map[MemoryKind]bool{
	KindFact:       true,
	KindEvent:      true,
	KindPreference: true,
	KindProject:    true,
	KindKnowledge:  true,
	KindEmotion:    true,
	KindOther:      true,
}

// Emotion is the emotional tag attached to a memory.
type Emotion string

const (
	EmotionNeutral  Emotion = "neutral"
	EmotionJoy      Emotion = "joy"
	EmotionSadness  Emotion = "sadness"
	EmotionAnger    Emotion = "anger"
	EmotionFear     Emotion = "fear"
	EmotionSurprise Emotion = "surprise"
)

// ValidEmotions are the allowed emotional tags.
var ValidEmotions = map[Emotion]bool{
	EmotionNeutral:  true,
	EmotionJoy:      true,
	EmotionSadness:  true,
	EmotionAnger:    true,
	EmotionFear:     true,
	EmotionSurprise: true,
}

// Memory is a durable unit of extracted knowledge, scoped to one persona.
type Memory struct {
	ID              string     `json:"id"`
	PersonaID       string     `json:"persona_id"`
	Text            string     `json:"text"`
	Kind            MemoryKind `json:"kind"`
	Emotion         Emotion    `json:"emotion"`
	Importance      float64    `json:"importance"`
	CreatedAt       time.Time  `json:"created_at"`
	SourceChatID    string     `json:"source_chat_id,omitempty"`
	SourceMessageID string     `json:"source_message_id,omitempty"`
}

// ChatTurn is one user+assistant exchange. Turns are consumed during
// ingestion and never persisted as-is.
type ChatTurn struct {
	ID               string    `json:"id"`
	ChatID           string    `json:"chat_id"`
	UserID           string    `json:"user_id"`
	UserMessage      string    `json:"user_message"`
	AssistantMessage string    `json:"assistant_message"`
	Timestamp        time.Time `json:"timestamp"`
}

// Empty reports whether the turn carries no message content at all.
func (t ChatTurn) Empty() bool {
	return t.UserMessage == "" && t.AssistantMessage == ""
}

// MemoryHit pairs a retrieved memory with its blended relevance score.
type MemoryHit struct {
	Memory Memory  `json:"memory"`
	Score  float64 `json:"score"`
}

// ContextBundle is the payload handed to a prompt builder: verbatim recent
// turns plus ranked relevant memories.
type ContextBundle struct {
	ShortTerm []ChatTurn  `json:"short_term"`
	LongTerm  []MemoryHit `json:"long_term"`
}

// IngestStatus describes the outcome of one ingestion call.
type IngestStatus string

const (
	// StatusSaved means at least one memory row was created or merged.
	StatusSaved IngestStatus = "saved"
	// StatusNoCandidates means the turn yielded nothing worth remembering.
	StatusNoCandidates IngestStatus = "no_candidates"
	// StatusSkippedIncognito means persistence was suppressed by the caller.
	StatusSkippedIncognito IngestStatus = "skipped_incognito"
	// StatusSkippedDisabled means memory is disabled for the persona.
	StatusSkippedDisabled IngestStatus = "skipped_disabled"
)

// IngestResult summarizes what one ingestion call did.
type IngestResult struct {
	Status    IngestStatus `json:"status"`
	Created   int          `json:"created"`
	Merged    int          `json:"merged"`
	Dropped   int          `json:"dropped"`
	MemoryIDs []string     `json:"memory_ids,omitempty"`
}
