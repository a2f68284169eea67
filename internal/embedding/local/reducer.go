// Package local is the in-process reducer. It builds a k-nearest-neighbor
// graph, takes geodesic distances over it and lays the points out with
// landmark multidimensional scaling. Output depends only on the input and
// Params.Seed.
package local

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/yungbote/stoplight-backend/internal/embedding"
)

const (
	Name = "local"

	// maxLandmarks bounds the eigenproblem; datasets up to this size are
	// embedded exactly.
	maxLandmarks = 300
	// spreadRadius is the half-width of the box the layout is scaled into.
	spreadRadius = 10.0
	spreadPasses = 12
	bridgeFactor = 1.5
)

type Reducer struct{}

func New() *Reducer { return &Reducer{} }

func (r *Reducer) Name() string { return Name }

func (r *Reducer) Reduce(ctx context.Context, m embedding.Matrix, p embedding.Params) ([]embedding.Point, error) {
	p = p.Normalize()
	dist, err := validate(m, p)
	if err != nil {
		return nil, err
	}
	n := m.Len()
	data := make([][]float64, n)
	for i, row := range m.Rows {
		data[i] = row.Values
	}

	rng := rand.New(rand.NewSource(p.Seed))

	g, err := knnGraph(ctx, data, p.NNeighbors, dist)
	if err != nil {
		return nil, err
	}
	landmarks := pickLandmarks(n, maxLandmarks, rng)
	geo, err := geodesics(ctx, g, landmarks, n)
	if err != nil {
		return nil, err
	}
	coords, err := landmarkMDS(geo, landmarks, n)
	if err != nil {
		return nil, err
	}
	normalizeSpread(coords, spreadRadius)
	spread(coords, p.MinDist, spreadPasses, rng)

	out := make([]embedding.Point, n)
	for i, row := range m.Rows {
		out[i] = embedding.Point{Index: row.Index, X: coords[i][0], Y: coords[i][1]}
	}
	return out, nil
}

func validate(m embedding.Matrix, p embedding.Params) (distanceFunc, error) {
	n := m.Len()
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 rows, got %d", embedding.ErrInvalidParams, n)
	}
	if len(m.Columns) == 0 {
		return nil, fmt.Errorf("%w: no feature columns", embedding.ErrInvalidParams)
	}
	if p.NNeighbors < 2 {
		return nil, fmt.Errorf("%w: n_neighbors must be at least 2, got %d", embedding.ErrInvalidParams, p.NNeighbors)
	}
	if p.NNeighbors >= n {
		return nil, fmt.Errorf("%w: n_neighbors %d must be smaller than the row count %d", embedding.ErrInvalidParams, p.NNeighbors, n)
	}
	if p.MinDist < 0 || math.IsNaN(p.MinDist) || math.IsInf(p.MinDist, 0) {
		return nil, fmt.Errorf("%w: min_dist must be a non-negative number, got %v", embedding.ErrInvalidParams, p.MinDist)
	}
	dist, ok := lookupMetric(p.Metric)
	if !ok {
		return nil, fmt.Errorf("%w: unknown metric %q", embedding.ErrInvalidParams, p.Metric)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return dist, nil
}
