// Package survey assembles the per-record embedding payload from a survey
// workbook: it loads and normalizes the three sheets, selects features, runs
// the reduction and joins everything back together by family and survey.
package survey

import (
	"strings"
)

const (
	SheetIndicators = "Indicators"
	SheetPriorities = "Priorities"
	SheetFamilies   = "Families"
)

const (
	ColFamilyCode   = "familyCode"
	ColSurveyNumber = "surveyNumber"
	ColCreatedAt    = "createdAt"
	ColLevel        = "level"
	ColIndicator    = "indicator"
	ColReasonWhy    = "reasonWhy"
	ColActionWhat   = "actionWhat"
)

// Key joins rows across the three sheets.
type Key struct {
	FamilyCode   string
	SurveyNumber string
}

func (k Key) String() string { return k.FamilyCode + "|" + k.SurveyNumber }

// NormalizeSurveyNumber strips the ordinal indicator some exports append ("1º").
func NormalizeSurveyNumber(v string) string {
	return strings.TrimSpace(strings.ReplaceAll(v, "º", ""))
}

// IndicatorRow is one survey response. Index is the row's position in the
// Indicators sheet and survives filtering. Values holds every base feature.
type IndicatorRow struct {
	Index  int
	Key    Key
	Values map[string]int
}

type Indicators struct {
	Columns  []string
	Features []string
	Rows     []IndicatorRow
}

// FilterSurvey keeps rows whose survey number matches n. An empty n keeps all.
func (t *Indicators) FilterSurvey(n string) *Indicators {
	n = NormalizeSurveyNumber(n)
	if n == "" || strings.EqualFold(n, "all") {
		return t
	}
	out := &Indicators{Columns: t.Columns, Features: t.Features}
	for _, r := range t.Rows {
		if r.Key.SurveyNumber == n {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

type PriorityRow struct {
	Key        Key
	Level      string
	Indicator  string
	ReasonWhy  string
	ActionWhat string
}

// FamilyRow holds the Families sheet cells for one key.
type FamilyRow struct {
	Key    Key
	Fields map[string]string
}

// Field returns a non-empty cell.
func (f FamilyRow) Field(name string) (string, bool) {
	v, ok := f.Fields[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

type Dataset struct {
	File       string
	Indicators *Indicators
	Priorities []PriorityRow
	Families   map[Key]FamilyRow
}
