// Package tokens estimates token counts for context budgeting.
package tokens

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates how many tokens a text occupies in a prompt.
type Counter interface {
	Count(text string) int
}

// Heuristic approximates tokens as len(text)/4, the usual rough ratio for
// English prose. It needs no encoding data, so it works offline and in
// tests.
type Heuristic struct{}

func (Heuristic) Count(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}

// Tiktoken counts exactly with a tiktoken encoding. The encoding is
// initialized lazily because the library may fetch encoding data on first
// use.
type Tiktoken struct {
	encoding string
	enc      *tiktoken.Tiktoken
	once     sync.Once
	initErr  error
}

// NewTiktoken creates a counter for the given encoding name (e.g.
// "cl100k_base").
func NewTiktoken(encoding string) *Tiktoken {
	if encoding == "" {
		encoding = "cl100k_base"
	}
	return &Tiktoken{encoding: encoding}
}

func (t *Tiktoken) init() error {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			t.initErr = fmt.Errorf("init tiktoken encoding %s: %w", t.encoding, err)
			return
		}
		t.enc = enc
	})
	return t.initErr
}

// Count falls back to the heuristic when the encoding cannot be loaded.
func (t *Tiktoken) Count(text string) int {
	if err := t.init(); err != nil {
		return Heuristic{}.Count(text)
	}
	return len(t.enc.Encode(text, nil, nil))
}
