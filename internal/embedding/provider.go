// Package embedding turns text into vectors for semantic similarity.
//
// A Provider returns ErrUnavailable (possibly wrapped) whenever it cannot
// produce a vector. Callers treat that as "no signal" rather than a failure.
package embedding

import (
	"context"
	"errors"
	"math"
)

var ErrUnavailable = errors.New("embedding unavailable")

type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Cosine returns the cosine similarity of a and b. ok is false when the
// vectors are empty, differ in length, or either has zero magnitude.
func Cosine(a, b []float32) (sim float64, ok bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	sim = dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(-1, math.Min(1, sim)), true
}
