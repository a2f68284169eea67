package survey

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/stoplight-backend/internal/sheets"
	"github.com/yungbote/stoplight-backend/internal/sheets/sheetstest"
)

func TestLoadNormalizesSurveyNumbersAcrossSheets(t *testing.T) {
	l := newTestLoader(t, "nc.xlsx", workbookSheets()...)
	ds, err := l.Load(context.Background(), "nc.xlsx")
	require.NoError(t, err)

	require.Len(t, ds.Indicators.Rows, 4)
	assert.Equal(t, Key{FamilyCode: "F1", SurveyNumber: "1"}, ds.Indicators.Rows[0].Key)
	assert.Equal(t, []string{"feat1", "feat2"}, ds.Indicators.Features)
	assert.Equal(t, 0, ds.Indicators.Rows[2].Values["feat2"], "empty cell reads as 0")

	for _, p := range ds.Priorities {
		assert.Equal(t, "1", p.Key.SurveyNumber)
	}
	_, ok := ds.Families[Key{FamilyCode: "F2", SurveyNumber: "1"}]
	assert.True(t, ok, "families keyed by normalized survey number")

	tips := BuildTooltips(ds.Priorities)
	assert.Contains(t, tips[Key{FamilyCode: "F1", SurveyNumber: "1"}], "1 | Income")
}

func TestLoadMissingFile(t *testing.T) {
	l := newTestLoader(t, "nc.xlsx", workbookSheets()...)
	_, err := l.Load(context.Background(), "other.xlsx")
	var dse *DataSourceError
	require.True(t, errors.As(err, &dse), "err=%v", err)
	assert.True(t, dse.NotFound())
	assert.Equal(t, "other.xlsx", dse.File)
}

func TestLoadMissingSheet(t *testing.T) {
	l := newTestLoader(t, "nc.xlsx", workbookSheets()[:2]...)
	_, err := l.Load(context.Background(), "nc.xlsx")
	var dse *DataSourceError
	require.True(t, errors.As(err, &dse), "err=%v", err)
	assert.Equal(t, SheetFamilies, dse.Sheet)
	assert.True(t, dse.NotFound())
}

func TestLoadMissingJoinColumn(t *testing.T) {
	s := workbookSheets()
	s[2] = sheetstest.Sheet{Name: SheetFamilies, Rows: [][]any{{"familyCode", "latitude"}, {"F1", "1"}}}
	l := newTestLoader(t, "nc.xlsx", s...)
	_, err := l.Load(context.Background(), "nc.xlsx")
	var dse *DataSourceError
	require.True(t, errors.As(err, &dse), "err=%v", err)
	assert.False(t, dse.NotFound())
	assert.ErrorIs(t, err, sheets.ErrMalformed)
}

func TestLoadRejectsNonNumericFeature(t *testing.T) {
	s := workbookSheets()
	s[0].Rows[1][5] = "high"
	l := newTestLoader(t, "nc.xlsx", s...)
	_, err := l.LoadIndicators(context.Background(), "nc.xlsx")
	assert.ErrorIs(t, err, ErrNonNumeric)
	var dse *DataSourceError
	assert.True(t, errors.As(err, &dse))
}

func TestFilterSurveyKeepsRowIndexes(t *testing.T) {
	l := newTestLoader(t, "nc.xlsx", workbookSheets()...)
	ind, err := l.LoadIndicators(context.Background(), "nc.xlsx")
	require.NoError(t, err)

	two := ind.FilterSurvey("2º")
	require.Len(t, two.Rows, 2)
	assert.Equal(t, 2, two.Rows[0].Index)
	assert.Equal(t, 3, two.Rows[1].Index)
	assert.Same(t, ind, ind.FilterSurvey("All"))
}

func TestLoadIndicatorsReadsOnlyIndicatorSheet(t *testing.T) {
	l := newTestLoader(t, "nc.xlsx", workbookSheets()[0])
	ind, err := l.LoadIndicators(context.Background(), "nc.xlsx")
	require.NoError(t, err)
	assert.NotEmpty(t, ind.Rows)
	assert.Equal(t, "2", ind.Rows[2].Key.SurveyNumber)

	_, err = l.LoadIndicators(context.Background(), "missing.xlsx")
	var dse *DataSourceError
	require.True(t, errors.As(err, &dse), "err=%v", err)
	assert.True(t, dse.NotFound())
	assert.Equal(t, SheetIndicators, dse.Sheet)
}
