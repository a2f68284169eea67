package survey

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	tooltipJoin = " >> "
	actionArrow = " → "
	tokenDelim  = " $$ "
)

// BuildTooltips groups priorities by key and renders one string per group.
// Keys with no priorities get no entry.
func BuildTooltips(rows []PriorityRow) map[Key]string {
	groups := make(map[Key][]PriorityRow)
	var order []Key
	for _, r := range rows {
		if _, ok := groups[r.Key]; !ok {
			order = append(order, r.Key)
		}
		groups[r.Key] = append(groups[r.Key], r)
	}
	out := make(map[Key]string, len(groups))
	for _, k := range order {
		out[k] = Tooltip(groups[k])
	}
	return out
}

// Tooltip renders one group, sorted by level ascending with numeric levels
// ahead of non-numeric ones. Equal levels keep their input order.
func Tooltip(group []PriorityRow) string {
	sorted := append([]PriorityRow(nil), group...)
	sort.SliceStable(sorted, func(i, j int) bool { return levelLess(sorted[i].Level, sorted[j].Level) })

	lines := make([]string, len(sorted))
	for i, p := range sorted {
		lines[i] = FormatPriority(p)
	}
	return strings.Join(lines, tooltipJoin)
}

// FormatPriority renders "{level} | {indicator}: {reasonWhy} → {actionWhat} $$ {token}".
func FormatPriority(p PriorityRow) string {
	var b strings.Builder
	b.WriteString(p.Level)
	b.WriteString(" | ")
	b.WriteString(p.Indicator)
	b.WriteString(": ")
	b.WriteString(p.ReasonWhy)
	b.WriteString(actionArrow)
	b.WriteString(p.ActionWhat)
	b.WriteString(tokenDelim)
	b.WriteString(CamelToken(p.Indicator))
	return b.String()
}

// CamelToken lowercases the whitespace-separated words of s and capitalizes
// every word after the first: "Housing Stability" -> "housingStability".
func CamelToken(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	lower := cases.Lower(language.Und)
	title := cases.Title(language.Und)
	var b strings.Builder
	b.WriteString(lower.String(words[0]))
	for _, w := range words[1:] {
		b.WriteString(title.String(lower.String(w)))
	}
	return b.String()
}

// levelLess orders numeric levels first, by value, then the rest lexically.
func levelLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	switch {
	case errA == nil && errB == nil:
		return fa < fb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}
