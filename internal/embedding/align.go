package embedding

import "fmt"

// Align orders pts to match m.Rows by Index. It fails when the counts differ
// or any row is missing or duplicated.
func Align(m Matrix, pts []Point) ([]Point, error) {
	if len(pts) != len(m.Rows) {
		return nil, fmt.Errorf("%w: got %d points for %d rows", ErrMisaligned, len(pts), len(m.Rows))
	}
	byIndex := make(map[int]Point, len(pts))
	for _, p := range pts {
		if _, dup := byIndex[p.Index]; dup {
			return nil, fmt.Errorf("%w: duplicate point for row %d", ErrMisaligned, p.Index)
		}
		byIndex[p.Index] = p
	}
	out := make([]Point, len(m.Rows))
	for i, r := range m.Rows {
		p, ok := byIndex[r.Index]
		if !ok {
			return nil, fmt.Errorf("%w: no point for row %d", ErrMisaligned, r.Index)
		}
		out[i] = p
	}
	return out, nil
}
