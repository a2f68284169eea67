package survey

import (
	"context"
	"testing"

	"github.com/yungbote/stoplight-backend/internal/blob/memory"
	"github.com/yungbote/stoplight-backend/internal/embedding"
	"github.com/yungbote/stoplight-backend/internal/runlog"
	"github.com/yungbote/stoplight-backend/internal/sheets"
	"github.com/yungbote/stoplight-backend/internal/sheets/sheetstest"
)

func workbookSheets() []sheetstest.Sheet {
	return []sheetstest.Sheet{
		{Name: SheetIndicators, Rows: [][]any{
			{"organization", "project", "familyCode", "createdAt", "surveyNumber", "feat1", "feat2", "reds", "yellows", "greens"},
			{"Org", "P", "F1", "2023-03-15", "1º", 3, 5, 1, 0, 1},
			{"Org", "P", "F2", "2023-04-01", "1º", 1, 2, 0, 2, 0},
			{"Org", "P", "F1", "2024-03-15", "2º", 2, "", 1, 1, 0},
			{"Org", "P", "F3", "2024-05-20", "2", 3, 3, 0, 0, 2},
		}},
		{Name: SheetPriorities, Rows: [][]any{
			{"familyCode", "surveyNumber", "level", "indicator", "reasonWhy", "actionWhat"},
			{"F1", "1º", 2, "Housing Stability", "unstable", "find housing"},
			{"F1", "1", 1, "Income", "low", "job search"},
		}},
		{Name: SheetFamilies, Rows: [][]any{
			{"familyCode", "surveyNumber", "createdAt", "latitude", "longitude", "houseHold", "race"},
			{"F1", "1", "2023-03-15 10:00:00", "35.9", "-79.0", "4", "Black"},
			{"F2", "1º", "2023-04-01", "", "", "2", ""},
		}},
	}
}

func newTestLoader(t *testing.T, file string, s ...sheetstest.Sheet) *Loader {
	t.Helper()
	store := memory.New()
	if _, err := store.Put(file, sheetstest.XLSX(t, s...)); err != nil {
		t.Fatalf("put workbook: %v", err)
	}
	return NewLoader(sheets.NewReader(store, ""), nil, nil)
}

// fakeSubmitter returns one point per row: X is the first value, Y the row index.
type fakeSubmitter struct {
	last embedding.Matrix
	err  error
}

func (f *fakeSubmitter) Engine() string { return "fake" }

func (f *fakeSubmitter) Submit(_ context.Context, m embedding.Matrix, _ embedding.Params) ([]embedding.Point, error) {
	f.last = m
	if f.err != nil {
		return nil, f.err
	}
	out := make([]embedding.Point, len(m.Rows))
	for i, r := range m.Rows {
		x := 0.0
		if len(r.Values) > 0 {
			x = r.Values[0]
		}
		out[i] = embedding.Point{Index: r.Index, X: x, Y: float64(r.Index)}
	}
	return out, nil
}

type memRecorder struct {
	runs []*runlog.Run
	err  error
}

func (m *memRecorder) Record(_ context.Context, r *runlog.Run) error {
	m.runs = append(m.runs, r)
	return m.err
}
