// Package sheetstest builds in-memory workbooks for tests.
package sheetstest

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

type Sheet struct {
	Name string
	Rows [][]any
}

// XLSX renders sheets into an .xlsx byte slice. The first sheet replaces the
// default "Sheet1".
func XLSX(tb testing.TB, sheets ...Sheet) []byte {
	tb.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				tb.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			tb.Fatalf("new sheet %s: %v", s.Name, err)
		}
		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				tb.Fatalf("cell name: %v", err)
			}
			vals := row
			if err := f.SetSheetRow(s.Name, cell, &vals); err != nil {
				tb.Fatalf("set row: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		tb.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}
