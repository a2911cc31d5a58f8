package classify

import (
	"testing"

	"github.com/personakit/memory/internal/model"
)

func TestClassifyKinds(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind model.MemoryKind
	}{
		{"preference", "I love hiking in the mountains", model.KindPreference},
		{"preference negative", "I hate waiting in long lines", model.KindPreference},
		{"fact", "My name is Dana and I live in Lisbon", model.KindFact},
		{"event", "Yesterday I went to the dentist downtown", model.KindEvent},
		{"project", "I'm working on the billing service migration", model.KindProject},
		{"knowledge", "Did you know octopuses have three hearts", model.KindKnowledge},
		{"emotion", "I feel really anxious about the interview", model.KindEmotion},
		{"fallback", "the quick brown fox jumps over", model.KindOther},
		{"empty", "", model.KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			if got.Kind != tt.kind {
				t.Errorf("Classify(%q).Kind = %q, want %q", tt.text, got.Kind, tt.kind)
			}
		})
	}
}

func TestClassifyEmotions(t *testing.T) {
	tests := []struct {
		text    string
		emotion model.Emotion
	}{
		{"I am so happy about the news", model.EmotionJoy},
		{"I feel sad about leaving", model.EmotionSadness},
		{"I'm furious about the delay", model.EmotionAnger},
		{"I'm worried about the deadline", model.EmotionFear},
		{"I was shocked by the announcement", model.EmotionSurprise},
		{"The meeting is at noon", model.EmotionNeutral},
	}

	for _, tt := range tests {
		got := Classify(tt.text)
		if got.Emotion != tt.emotion {
			t.Errorf("Classify(%q).Emotion = %q, want %q", tt.text, got.Emotion, tt.emotion)
		}
	}
}

func TestImportanceBounds(t *testing.T) {
	texts := []string{
		"",
		"ok",
		"I love hiking in the mountains",
		"I will meet Sarah at the Berlin office on March 3 to finalize the contract, this is important",
	}
	for _, text := range texts {
		got := Classify(text)
		if got.Importance < 0 || got.Importance > 1 {
			t.Errorf("Classify(%q).Importance = %g, out of [0,1]", text, got.Importance)
		}
	}

	if got := Classify(""); got.Importance != 0 {
		t.Errorf("empty text importance = %g, want 0", got.Importance)
	}
	if got := Classify("I love hiking in the mountains"); got.Importance <= 0 {
		t.Errorf("preference importance = %g, want > 0", got.Importance)
	}
}

func TestImportanceMonotoneWithSignals(t *testing.T) {
	plain := Classify("went shopping for groceries this afternoon")
	loaded := Classify("I promise to meet Sarah in Berlin on March 3, this is important")
	if loaded.Importance <= plain.Importance {
		t.Errorf("expected more signals to score higher: %g <= %g",
			loaded.Importance, plain.Importance)
	}
}

// Classification is pure: repeated calls agree exactly.
func TestClassifyDeterministic(t *testing.T) {
	texts := []string{
		"I love hiking in the mountains",
		"Yesterday I met Maria at the conference",
		"random words without cues",
	}
	for _, text := range texts {
		first := Classify(text)
		for i := 0; i < 5; i++ {
			if got := Classify(text); got != first {
				t.Fatalf("Classify(%q) not deterministic: %+v vs %+v", text, got, first)
			}
		}
	}
}
