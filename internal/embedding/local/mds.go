package local

import (
	"errors"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

const eigenFloor = 1e-9

// pickLandmarks returns every index when n <= max, otherwise a seeded sample.
func pickLandmarks(n, max int, rng *rand.Rand) []int {
	if n <= max {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := rng.Perm(n)[:max]
	sort.Ints(out)
	return out
}

// landmarkMDS embeds all n points in 2D from landmark-to-point distances.
// Classical MDS runs on the landmark block; remaining points are placed by
// distance-based triangulation. With every point a landmark this is plain
// classical MDS.
func landmarkMDS(geo [][]float64, landmarks []int, n int) ([][2]float64, error) {
	l := len(landmarks)
	sq := make([][]float64, l)
	for a := range geo {
		sq[a] = make([]float64, n)
		for j, d := range geo[a] {
			sq[a][j] = d * d
		}
	}

	// Double-centered landmark block B = -1/2 J D² J.
	block := mat.NewSymDense(l, nil)
	rowMean := make([]float64, l)
	total := 0.0
	for a := 0; a < l; a++ {
		for b := 0; b < l; b++ {
			rowMean[a] += sq[a][landmarks[b]]
		}
		total += rowMean[a]
		rowMean[a] /= float64(l)
	}
	total /= float64(l * l)
	for a := 0; a < l; a++ {
		for b := a; b < l; b++ {
			v := -0.5 * (sq[a][landmarks[b]] - rowMean[a] - rowMean[b] + total)
			block.SetSym(a, b, v)
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(block, true); !ok {
		return nil, errors.New("local reducer: eigendecomposition did not converge")
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	// Values are ascending; take the two largest.
	var axes [2][]float64
	var scale [2]float64
	for k := 0; k < 2; k++ {
		col := l - 1 - k
		axes[k] = make([]float64, l)
		if col < 0 || vals[col] <= eigenFloor {
			continue
		}
		mat.Col(axes[k], col, &vecs)
		orient(axes[k])
		scale[k] = 1 / math.Sqrt(vals[col])
	}

	// Triangulation: x_i = -1/2 * L# (d_i - mean), where mean is the column
	// mean of the landmark block and d_i the squared distances from point i.
	out := make([][2]float64, n)
	for i := 0; i < n; i++ {
		for k := 0; k < 2; k++ {
			if scale[k] == 0 {
				continue
			}
			var acc float64
			for a := 0; a < l; a++ {
				acc += axes[k][a] * (sq[a][i] - rowMean[a])
			}
			out[i][k] = -0.5 * scale[k] * acc
		}
	}
	return out, nil
}

// orient flips v so its largest-magnitude entry is positive, making the
// eigenvector sign stable.
func orient(v []float64) {
	best, idx := 0.0, -1
	for i, x := range v {
		if math.Abs(x) > best {
			best, idx = math.Abs(x), i
		}
	}
	if idx >= 0 && v[idx] < 0 {
		for i := range v {
			v[i] = -v[i]
		}
	}
}
