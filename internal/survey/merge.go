package survey

import (
	"encoding/json"
	"fmt"

	"github.com/araddon/dateparse"

	"github.com/yungbote/stoplight-backend/internal/embedding"
)

const surveyDateLayout = "January 2006"

// attribute is one household field copied into every merged record. value
// derives it from the family row; nil means "the column of the same name".
type attribute struct {
	name  string
	value func(FamilyRow) (string, bool)
}

var familyAttributes = []attribute{
	{name: "surveyDate", value: surveyDate},
	{name: ColCreatedAt},
	{name: "latitude"},
	{name: "longitude"},
	{name: "houseHold"},
	{name: "race"},
	{name: "housing"},
	{name: "lgbtq"},
	{name: "automobile"},
	{name: "education"},
	{name: "income"},
	{name: "ece"},
	{name: "employment"},
	{name: "assistance"},
}

// AttributeNames lists the household attributes every record carries.
func AttributeNames() []string {
	out := make([]string, len(familyAttributes))
	for i, a := range familyAttributes {
		out[i] = a.name
	}
	return out
}

// fieldOrDefault is the single null-defaulting accessor: a missing family row,
// missing column or empty cell all yield "".
func fieldOrDefault(fam *FamilyRow, a attribute) string {
	if fam == nil {
		return ""
	}
	var (
		v  string
		ok bool
	)
	if a.value != nil {
		v, ok = a.value(*fam)
	} else {
		v, ok = fam.Field(a.name)
	}
	if !ok {
		return ""
	}
	return v
}

// surveyDate renders createdAt as "January 2006". Unparseable values pass
// through unchanged.
func surveyDate(f FamilyRow) (string, bool) {
	raw, ok := f.Field(ColCreatedAt)
	if !ok {
		return "", false
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return raw, true
	}
	return t.Format(surveyDateLayout), true
}

// MergedRecord is one output row. Attributes are flattened into the top
// level of its JSON form.
type MergedRecord struct {
	FamilyCode   string
	SurveyNumber string
	Features     map[string]int
	Embedding    [2]float64
	Tooltip      string
	Attributes   map[string]string
}

func (r MergedRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Attributes)+5)
	for k, v := range r.Attributes {
		out[k] = v
	}
	out["familyCode"] = r.FamilyCode
	out["surveyNumber"] = r.SurveyNumber
	out["features"] = r.Features
	out["embedding"] = r.Embedding
	out["tooltip"] = r.Tooltip
	return json.Marshal(out)
}

type MergeInput struct {
	Rows     []IndicatorRow
	Features []string
	Points   []embedding.Point
	Tooltips map[Key]string
	Families map[Key]FamilyRow
}

// Merge emits one record per indicator row, in row order. Row i takes point
// i; a point whose Index does not match its row is an error. Missing tooltips
// and family data default to "" and never drop a row.
func Merge(in MergeInput) ([]MergedRecord, error) {
	if len(in.Points) != len(in.Rows) {
		return nil, fmt.Errorf("%w: %d points for %d rows", embedding.ErrMisaligned, len(in.Points), len(in.Rows))
	}
	out := make([]MergedRecord, len(in.Rows))
	for i, row := range in.Rows {
		pt := in.Points[i]
		if pt.Index != row.Index {
			return nil, fmt.Errorf("%w: row %d got point for row %d", embedding.ErrMisaligned, row.Index, pt.Index)
		}
		var fam *FamilyRow
		if f, ok := in.Families[row.Key]; ok {
			fam = &f
		}
		attrs := make(map[string]string, len(familyAttributes))
		for _, a := range familyAttributes {
			attrs[a.name] = fieldOrDefault(fam, a)
		}
		out[i] = MergedRecord{
			FamilyCode:   row.Key.FamilyCode,
			SurveyNumber: row.Key.SurveyNumber,
			Features:     FeatureMap(row, in.Features),
			Embedding:    pt.Pair(),
			Tooltip:      in.Tooltips[row.Key],
			Attributes:   attrs,
		}
	}
	return out, nil
}
