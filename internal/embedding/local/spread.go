package local

import (
	"math"
	"math/rand"
)

// normalizeSpread centers the layout and scales it so the largest absolute
// coordinate equals radius. A collapsed layout is left at the origin.
func normalizeSpread(pts [][2]float64, radius float64) {
	if len(pts) == 0 {
		return
	}
	var cx, cy float64
	for _, p := range pts {
		cx += p[0]
		cy += p[1]
	}
	cx /= float64(len(pts))
	cy /= float64(len(pts))
	maxAbs := 0.0
	for i := range pts {
		pts[i][0] -= cx
		pts[i][1] -= cy
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(pts[i][0]), math.Abs(pts[i][1])))
	}
	if maxAbs == 0 {
		return
	}
	f := radius / maxAbs
	for i := range pts {
		pts[i][0] *= f
		pts[i][1] *= f
	}
}

type cell struct{ x, y int }

// spread pushes apart pairs closer than minDist. Each pass computes all
// displacements from the previous positions before applying them, and
// coincident points separate along a seeded random direction, so the result
// is deterministic for a given seed.
func spread(pts [][2]float64, minDist float64, passes int, rng *rand.Rand) {
	if minDist <= 0 || len(pts) < 2 {
		return
	}
	angles := make([]float64, len(pts))
	for i := range angles {
		angles[i] = rng.Float64() * 2 * math.Pi
	}
	delta := make([][2]float64, len(pts))
	for pass := 0; pass < passes; pass++ {
		grid := make(map[cell][]int, len(pts))
		for i, p := range pts {
			c := cell{int(math.Floor(p[0] / minDist)), int(math.Floor(p[1] / minDist))}
			grid[c] = append(grid[c], i)
		}
		moved := false
		for i := range delta {
			delta[i] = [2]float64{}
		}
		for i, p := range pts {
			c := cell{int(math.Floor(p[0] / minDist)), int(math.Floor(p[1] / minDist))}
			for dx := -1; dx <= 1; dx++ {
				for dy := -1; dy <= 1; dy++ {
					for _, j := range grid[cell{c.x + dx, c.y + dy}] {
						if j == i {
							continue
						}
						vx, vy := p[0]-pts[j][0], p[1]-pts[j][1]
						d := math.Hypot(vx, vy)
						if d >= minDist {
							continue
						}
						if d == 0 {
							a := angles[min(i, j)]
							if i > j {
								a += math.Pi
							}
							vx, vy, d = math.Cos(a), math.Sin(a), 1
						}
						push := (minDist - math.Hypot(p[0]-pts[j][0], p[1]-pts[j][1])) / 2
						delta[i][0] += vx / d * push
						delta[i][1] += vy / d * push
						moved = true
					}
				}
			}
		}
		if !moved {
			return
		}
		for i := range pts {
			pts[i][0] += delta[i][0]
			pts[i][1] += delta[i][1]
		}
	}
}
