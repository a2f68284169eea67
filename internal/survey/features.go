package survey

var excludedColumns = map[string]struct{}{
	"organization": {},
	"project":      {},
	"familyCode":   {},
	"createdAt":    {},
	"surveyNumber": {},
	"reds":         {},
	"yellows":      {},
	"greens":       {},
}

// IsExcluded reports whether col is an administrative column never used as a feature.
func IsExcluded(col string) bool {
	_, ok := excludedColumns[col]
	return ok
}

// BaseFeatures is every column minus the administrative ones, in column order.
func BaseFeatures(columns []string) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if !IsExcluded(c) {
			out = append(out, c)
		}
	}
	return out
}

// SelectFeatures intersects requested with base, keeping base order. Unknown
// names are dropped. With no request, or an empty intersection, the full base
// set is returned; fellBack reports the latter.
func SelectFeatures(base, requested []string) (selected []string, fellBack bool) {
	if len(requested) == 0 {
		return append([]string(nil), base...), false
	}
	want := make(map[string]struct{}, len(requested))
	for _, r := range requested {
		want[r] = struct{}{}
	}
	for _, b := range base {
		if _, ok := want[b]; ok {
			selected = append(selected, b)
		}
	}
	if len(selected) == 0 {
		return append([]string(nil), base...), true
	}
	return selected, false
}

// ExcludeFeature drops name from features if present.
func ExcludeFeature(features []string, name string) []string {
	out := make([]string, 0, len(features))
	for _, f := range features {
		if f != name {
			out = append(out, f)
		}
	}
	return out
}
