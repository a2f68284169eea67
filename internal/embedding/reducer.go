// Package embedding runs dimensionality reductions one at a time.
package embedding

import (
	"context"
	"fmt"
	"strings"
)

const (
	DefaultNNeighbors = 15
	DefaultMinDist    = 0.1
	DefaultMetric     = "euclidean"
	DefaultSeed       = 42
)

// Vector is one matrix row. Index and Key identify the source record and
// travel with the values through the reduction.
type Vector struct {
	Index  int
	Key    string
	Values []float64
}

type Matrix struct {
	Columns []string
	Rows    []Vector
}

func (m Matrix) Len() int { return len(m.Rows) }

// Validate checks that every row is as wide as Columns and indexes are unique.
func (m Matrix) Validate() error {
	seen := make(map[int]struct{}, len(m.Rows))
	for i, r := range m.Rows {
		if len(r.Values) != len(m.Columns) {
			return fmt.Errorf("%w: row %d has %d values for %d columns", ErrInvalidParams, i, len(r.Values), len(m.Columns))
		}
		if _, dup := seen[r.Index]; dup {
			return fmt.Errorf("%w: duplicate row index %d", ErrInvalidParams, r.Index)
		}
		seen[r.Index] = struct{}{}
	}
	return nil
}

// Point is a 2D coordinate for the row with the same Index.
type Point struct {
	Index int
	X     float64
	Y     float64
}

func (p Point) Pair() [2]float64 { return [2]float64{p.X, p.Y} }

type Params struct {
	NNeighbors int     `json:"n_neighbors"`
	MinDist    float64 `json:"min_dist"`
	Metric     string  `json:"metric"`
	Seed       int64   `json:"random_state"`
}

func DefaultParams(seed int64) Params {
	return Params{
		NNeighbors: DefaultNNeighbors,
		MinDist:    DefaultMinDist,
		Metric:     DefaultMetric,
		Seed:       seed,
	}
}

// Normalize fills an unset metric and lowercases the metric name. Numeric
// fields are kept as given; an absent value is filled by DefaultParams, so a
// zero here came from the caller and is left for the reducer to reject.
func (p Params) Normalize() Params {
	p.Metric = strings.ToLower(strings.TrimSpace(p.Metric))
	if p.Metric == "" {
		p.Metric = DefaultMetric
	}
	return p
}

// Reducer maps a matrix to one point per row. Implementations return points
// carrying the Index of the row they belong to. Range checks on Params are the
// reducer's job and fail with ErrInvalidParams.
type Reducer interface {
	Name() string
	Reduce(ctx context.Context, m Matrix, p Params) ([]Point, error)
}
