package embed

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	e := NewHashEmbedder(64)
	ctx := context.Background()

	a, err := e.Embed(ctx, "I love hiking in the mountains")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	b, _ := e.Embed(ctx, "I love hiking in the mountains")

	if len(a) != 64 {
		t.Fatalf("expected 64 dims, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding not deterministic at component %d", i)
		}
	}
}

func TestHashEmbedderNormalized(t *testing.T) {
	e := NewHashEmbedder(32)
	v, _ := e.Embed(context.Background(), "some text to embed here")

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm < 0.99 || norm > 1.01 {
		t.Errorf("expected unit norm, got %g", norm)
	}
}

func TestHashEmbedderOverlapScoresHigher(t *testing.T) {
	e := NewHashEmbedder(128)
	ctx := context.Background()

	base, _ := e.Embed(ctx, "hiking mountains outdoors trail")
	near, _ := e.Embed(ctx, "hiking mountains outdoors camping")
	far, _ := e.Embed(ctx, "quarterly invoice spreadsheet totals")

	if cos(base, near) <= cos(base, far) {
		t.Errorf("expected overlapping text to score higher: near=%g far=%g",
			cos(base, near), cos(base, far))
	}
}

func cos(a, b Vector) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot // both unit-norm
}

type countingEmbedder struct {
	calls int
	fail  bool
}

func (c *countingEmbedder) Embed(_ context.Context, text string) (Vector, error) {
	c.calls++
	if c.fail {
		return nil, errors.New("provider down")
	}
	return Vector{1, 0}, nil
}

func (c *countingEmbedder) Dims() int { return 2 }

func TestCachedEmbedderHitsOnce(t *testing.T) {
	inner := &countingEmbedder{}
	c := NewCachedEmbedder(inner, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.Embed(ctx, "same text"); err != nil {
			t.Fatalf("embed: %v", err)
		}
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", inner.calls)
	}
}

func TestCachedEmbedderDoesNotCacheErrors(t *testing.T) {
	inner := &countingEmbedder{fail: true}
	c := NewCachedEmbedder(inner, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := c.Embed(ctx, "text"); err == nil {
			t.Fatal("expected error")
		}
	}
	if inner.calls != 2 {
		t.Errorf("expected errors to pass through uncached, got %d calls", inner.calls)
	}
}
