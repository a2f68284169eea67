package local

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

type neighbor struct {
	j int
	d float64
}

// knnGraph links every row to its k nearest rows. Edges are undirected, so a
// node may end up with more than k neighbors.
func knnGraph(ctx context.Context, data [][]float64, k int, dist distanceFunc) (*simple.WeightedUndirectedGraph, error) {
	n := len(data)
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	buf := make([]neighbor, 0, n-1)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		buf = buf[:0]
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			buf = append(buf, neighbor{j: j, d: dist(data[i], data[j])})
		}
		sort.SliceStable(buf, func(a, b int) bool { return buf[a].d < buf[b].d })
		for _, nb := range buf[:k] {
			if g.HasEdgeBetween(int64(i), int64(nb.j)) {
				continue
			}
			g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(i), simple.Node(nb.j), nb.d))
		}
	}
	return g, nil
}

// geodesics returns shortest-path distances from each landmark to every node.
// Unreachable pairs (disconnected graph) get the largest finite distance
// scaled by bridgeFactor.
func geodesics(ctx context.Context, g *simple.WeightedUndirectedGraph, landmarks []int, n int) ([][]float64, error) {
	out := make([][]float64, len(landmarks))
	maxFinite := 0.0
	unreachable := false
	for li, l := range landmarks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sh := path.DijkstraFrom(simple.Node(l), g)
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			w := sh.WeightTo(int64(j))
			row[j] = w
			if math.IsInf(w, 1) {
				unreachable = true
			} else if w > maxFinite {
				maxFinite = w
			}
		}
		out[li] = row
	}
	if unreachable {
		bridge := maxFinite * bridgeFactor
		if bridge == 0 {
			bridge = 1
		}
		for _, row := range out {
			for j, w := range row {
				if math.IsInf(w, 1) {
					row[j] = bridge
				}
			}
		}
	}
	return out, nil
}
