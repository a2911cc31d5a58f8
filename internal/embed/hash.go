package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// HashEmbedder is a deterministic, dependency-free embedder: each token is
// hashed into a handful of dimensions and the result is L2-normalized. It is
// no substitute for a real embedding model, but it gives stable vectors with
// meaningful token overlap, which is what tests and offline use need.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder creates a hash-based embedder with the given dimension.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = 64
	}
	return &HashEmbedder{dims: dims}
}

func (e *HashEmbedder) Embed(_ context.Context, text string) (Vector, error) {
	v := make(Vector, e.dims)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()
		// Spread each token over three buckets with alternating sign.
		for j := 0; j < 3; j++ {
			idx := int((sum >> (j * 16)) % uint64(e.dims))
			sign := float32(1)
			if (sum>>(j*16+15))&1 == 1 {
				sign = -1
			}
			v[idx] += sign
		}
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range v {
			v[i] *= inv
		}
	}
	return v, nil
}

func (e *HashEmbedder) Dims() int { return e.dims }
