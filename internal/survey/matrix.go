package survey

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yungbote/stoplight-backend/internal/embedding"
)

// FeatureValue coerces a feature cell to an integer. Empty cells are 0
// ("not recorded"); decimals truncate toward zero.
func FeatureValue(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNonNumeric, raw)
	}
	return int(math.Trunc(f)), nil
}

// BuildMatrix lays rows out over features. Each vector carries its row's
// Index and Key so the result can be checked against the rows it came from.
func BuildMatrix(rows []IndicatorRow, features []string) embedding.Matrix {
	m := embedding.Matrix{
		Columns: append([]string(nil), features...),
		Rows:    make([]embedding.Vector, len(rows)),
	}
	for i, r := range rows {
		vals := make([]float64, len(features))
		for j, f := range features {
			vals[j] = float64(r.Values[f])
		}
		m.Rows[i] = embedding.Vector{Index: r.Index, Key: r.Key.String(), Values: vals}
	}
	return m
}

// FeatureMap copies the row's values for features into a fresh map.
func FeatureMap(r IndicatorRow, features []string) map[string]int {
	out := make(map[string]int, len(features))
	for _, f := range features {
		out[f] = r.Values[f]
	}
	return out
}
