package retrieval

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/ctxdex/internal/domain"
)

// epsilon keeps the similarity finite for zero vectors.
const epsilon = 1e-10

// Cosine returns dot(a,b) / (|a|*|b| + epsilon).
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrVectorDimMismatch, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	return dot / (math.Sqrt(na)*math.Sqrt(nb) + epsilon), nil
}
