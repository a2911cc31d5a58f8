// Package config holds the static engine configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "48h" parse naturally.
type Duration time.Duration

// UnmarshalYAML accepts Go duration strings ("30m", "48h", "168h").
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration back as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full set of recognized engine options.
type Config struct {
	// EmbeddingDim is the fixed dimension D of embedding vectors.
	EmbeddingDim int `yaml:"embedding_dim"`

	// MaxHits is k, the maximum number of retrieval hits returned.
	MaxHits int `yaml:"max_hits"`

	// CandidateMultiplier scales how many candidates each retrieval path
	// fetches before merging (multiplier * k).
	CandidateMultiplier int `yaml:"candidate_multiplier"`

	// Blended ranking weights (w1..w4).
	LexicalWeight    float64 `yaml:"lexical_weight"`
	VectorWeight     float64 `yaml:"vector_weight"`
	RecencyWeight    float64 `yaml:"recency_weight"`
	ImportanceWeight float64 `yaml:"importance_weight"`

	// RecencyHalfLife controls the exponential age decay in ranking.
	RecencyHalfLife Duration `yaml:"recency_half_life"`

	// DedupThreshold is the token-set similarity at or above which a
	// candidate merges into an existing memory instead of inserting.
	DedupThreshold float64 `yaml:"dedup_threshold"`

	// DedupWindow is how many recent memories are compared for dedup.
	DedupWindow int `yaml:"dedup_window"`

	// MaxTextLen truncates candidate text, in runes.
	MaxTextLen int `yaml:"max_text_len"`

	// Candidate extraction minimum word counts.
	MinUserWords      int `yaml:"min_user_words"`
	MinAssistantWords int `yaml:"min_assistant_words"`

	// ShortTermWindow is how many recent turns per chat feed the context
	// bundle.
	ShortTermWindow int `yaml:"short_term_window"`

	// MaxContextTokens caps the long-term section of a context bundle.
	// Zero disables the token cap (MaxHits still applies).
	MaxContextTokens int `yaml:"max_context_tokens"`
}

// Default returns the engine defaults.
func Default() Config {
	return Config{
		EmbeddingDim:        64,
		MaxHits:             8,
		CandidateMultiplier: 3,
		LexicalWeight:       0.3,
		VectorWeight:        0.4,
		RecencyWeight:       0.15,
		ImportanceWeight:    0.15,
		RecencyHalfLife:     Duration(7 * 24 * time.Hour),
		DedupThreshold:      0.85,
		DedupWindow:         50,
		MaxTextLen:          500,
		MinUserWords:        4,
		MinAssistantWords:   7,
		ShortTermWindow:     6,
		MaxContextTokens:    1000,
	}
}

// Load reads a YAML config file and fills unset fields with defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("embedding_dim must be positive, got %d", c.EmbeddingDim)
	}
	if c.MaxHits <= 0 {
		return fmt.Errorf("max_hits must be positive, got %d", c.MaxHits)
	}
	if c.CandidateMultiplier <= 0 {
		return fmt.Errorf("candidate_multiplier must be positive, got %d", c.CandidateMultiplier)
	}
	for name, w := range map[string]float64{
		"lexical_weight":    c.LexicalWeight,
		"vector_weight":     c.VectorWeight,
		"recency_weight":    c.RecencyWeight,
		"importance_weight": c.ImportanceWeight,
	} {
		if w < 0 {
			return fmt.Errorf("%s must not be negative, got %g", name, w)
		}
	}
	if c.RecencyHalfLife <= 0 {
		return fmt.Errorf("recency_half_life must be positive, got %s", c.RecencyHalfLife.Std())
	}
	if c.DedupThreshold <= 0 || c.DedupThreshold > 1 {
		return fmt.Errorf("dedup_threshold must be in (0, 1], got %g", c.DedupThreshold)
	}
	if c.MaxTextLen <= 0 {
		return fmt.Errorf("max_text_len must be positive, got %d", c.MaxTextLen)
	}
	if c.ShortTermWindow < 0 {
		return fmt.Errorf("short_term_window must not be negative, got %d", c.ShortTermWindow)
	}
	return nil
}
