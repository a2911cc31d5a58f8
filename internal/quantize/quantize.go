// Package quantize compresses float32 embedding vectors into int8 codes and
// computes cosine similarity directly in the compressed domain.
package quantize

import (
	"errors"
	"math"
)

// Vector is a quantized embedding: one int8 code per component (stored as
// bytes) plus a per-vector scale sufficient to dequantize.
type Vector struct {
	Data  []byte  `json:"data"`
	Scale float32 `json:"scale"`
}

// ErrEmptyVector is returned when quantizing a zero-length vector.
var ErrEmptyVector = errors.New("quantize: empty vector")

// Dim returns the number of components.
func (v Vector) Dim() int { return len(v.Data) }

// Quantize maps each component to an int8 code using a per-vector scale
// derived from the maximum absolute component: scale = maxAbs/127. The
// per-component round-trip error is bounded by scale/2.
func Quantize(v []float32) (Vector, error) {
	if len(v) == 0 {
		return Vector{}, ErrEmptyVector
	}

	var maxAbs float32
	for _, x := range v {
		a := float32(math.Abs(float64(x)))
		if a > maxAbs {
			maxAbs = a
		}
	}

	q := Vector{Data: make([]byte, len(v))}
	if maxAbs == 0 {
		// All-zero vector: codes stay zero, scale stays zero.
		return q, nil
	}

	q.Scale = maxAbs / 127
	for i, x := range v {
		c := math.Round(float64(x) / float64(q.Scale))
		if c > 127 {
			c = 127
		} else if c < -127 {
			c = -127
		}
		q.Data[i] = byte(int8(c))
	}
	return q, nil
}

// Dequantize reconstructs an approximate float vector.
func Dequantize(q Vector) []float32 {
	out := make([]float32, len(q.Data))
	for i, b := range q.Data {
		out[i] = float32(int8(b)) * q.Scale
	}
	return out
}

// Cosine computes cosine similarity between two quantized vectors without
// reconstructing floats. The per-vector scales cancel out of the ratio, so
// only integer dot products are accumulated. Result is in [-1, 1]; zero
// vectors or mismatched dimensions score 0.
func Cosine(a, b Vector) float64 {
	if len(a.Data) != len(b.Data) || len(a.Data) == 0 {
		return 0
	}
	var dot, aa, bb int64
	for i := range a.Data {
		x := int64(int8(a.Data[i]))
		y := int64(int8(b.Data[i]))
		dot += x * y
		aa += x * x
		bb += y * y
	}
	if aa == 0 || bb == 0 {
		return 0
	}
	s := float64(dot) / (math.Sqrt(float64(aa)) * math.Sqrt(float64(bb)))
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return s
}
