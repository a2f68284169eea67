package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/stoplight-backend/internal/blob"
	"github.com/yungbote/stoplight-backend/internal/blob/memory"
	"github.com/yungbote/stoplight-backend/internal/sheets/sheetstest"
)

func TestReadSheetXLSX(t *testing.T) {
	store := memory.New()
	data := sheetstest.XLSX(t,
		sheetstest.Sheet{Name: "Indicators", Rows: [][]any{
			{"familyCode", "surveyNumber", "income", "housing"},
			{"F1", "1º", 3, 2},
		}},
		sheetstest.Sheet{Name: "Families", Rows: [][]any{{"familyCode", "surveyNumber"}}},
	)
	_, err := store.Put("surveys/nc.xlsx", data)
	require.NoError(t, err)

	r := NewReader(store, "surveys")
	tbl, err := r.ReadSheet(context.Background(), "nc.xlsx", "Indicators")
	require.NoError(t, err)
	assert.Equal(t, []string{"familyCode", "surveyNumber", "income", "housing"}, tbl.Columns())
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "3", tbl.Records()[0].Value("income"))

	_, err = r.ReadSheet(context.Background(), "nc.xlsx", "Priorities")
	assert.ErrorIs(t, err, ErrSheetNotFound)

	_, err = r.ReadSheet(context.Background(), "other.xlsx", "Indicators")
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func TestReadSheetCSVBundle(t *testing.T) {
	store := memory.New()
	_, err := store.Put("rwanda/Indicators.csv", []byte("\ufefffamilyCode,surveyNumber,water\nF9,2º,1\n"))
	require.NoError(t, err)

	r := NewReader(store, "")
	wb, err := r.Open(context.Background(), "rwanda.csv")
	require.NoError(t, err)
	defer wb.Close()

	tbl, err := wb.Sheet(context.Background(), "Indicators")
	require.NoError(t, err)
	assert.True(t, tbl.HasColumn("familyCode"))
	assert.Equal(t, "2º", tbl.Records()[0].Value("surveyNumber"))

	_, err = wb.Sheet(context.Background(), "Families")
	assert.True(t, errors.Is(err, ErrSheetNotFound))
}

func TestOpenRejectsUnknownFormat(t *testing.T) {
	r := NewReader(memory.New(), "")
	_, err := r.Open(context.Background(), "notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestOpenRejectsCorruptWorkbook(t *testing.T) {
	store := memory.New()
	_, err := store.Put("bad.xlsx", []byte("not a zip"))
	require.NoError(t, err)
	_, err = NewReader(store, "").Open(context.Background(), "bad.xlsx")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestListGroupsCSVBundles(t *testing.T) {
	store := memory.New()
	for _, k := range []string{"nc_aspire.xlsx", "rwanda/Indicators.csv", "rwanda/Families.csv", "readme.md"} {
		_, err := store.Put(k, []byte("x"))
		require.NoError(t, err)
	}
	infos, err := NewReader(store, "").List(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "nc_aspire.xlsx", infos[0].Key)
	assert.Equal(t, "rwanda.csv", infos[1].Key)
	assert.Equal(t, int64(2), infos[1].Size)
}
