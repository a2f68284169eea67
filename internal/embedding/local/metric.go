package local

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type distanceFunc func(a, b []float64) float64

var metrics = map[string]distanceFunc{
	"euclidean":   func(a, b []float64) float64 { return floats.Distance(a, b, 2) },
	"manhattan":   func(a, b []float64) float64 { return floats.Distance(a, b, 1) },
	"chebyshev":   func(a, b []float64) float64 { return floats.Distance(a, b, math.Inf(1)) },
	"cosine":      cosine,
	"correlation": correlation,
	"hamming":     hamming,
	"jaccard":     jaccard,
	"canberra":    canberra,
}

// Metrics lists the supported distance names, sorted.
func Metrics() []string {
	return []string{"canberra", "chebyshev", "correlation", "cosine", "euclidean", "hamming", "jaccard", "manhattan"}
}

func lookupMetric(name string) (distanceFunc, bool) {
	fn, ok := metrics[strings.ToLower(strings.TrimSpace(name))]
	return fn, ok
}

// degenerate handles zero-norm and zero-variance inputs: identical vectors are
// at distance 0, anything else at 1.
func degenerate(a, b []float64) float64 {
	if floats.Equal(a, b) {
		return 0
	}
	return 1
}

func cosine(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return degenerate(a, b)
	}
	return clampDistance(1 - floats.Dot(a, b)/(na*nb))
}

func correlation(a, b []float64) float64 {
	r := stat.Correlation(a, b, nil)
	if math.IsNaN(r) {
		return degenerate(a, b)
	}
	return clampDistance(1 - r)
}

func hamming(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	diff := 0
	for i := range a {
		if a[i] != b[i] {
			diff++
		}
	}
	return float64(diff) / float64(len(a))
}

// jaccard treats non-zero entries as set membership.
func jaccard(a, b []float64) float64 {
	union, xor := 0, 0
	for i := range a {
		x, y := a[i] != 0, b[i] != 0
		if x || y {
			union++
		}
		if x != y {
			xor++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(xor) / float64(union)
}

func canberra(a, b []float64) float64 {
	var sum float64
	for i := range a {
		den := math.Abs(a[i]) + math.Abs(b[i])
		if den == 0 {
			continue
		}
		sum += math.Abs(a[i]-b[i]) / den
	}
	return sum
}

func clampDistance(d float64) float64 {
	if d < 0 {
		return 0
	}
	return d
}
