package sheets

import (
	"errors"
	"testing"
)

func TestNewTablePadsAndDropsBlankRows(t *testing.T) {
	tbl, err := NewTable("Indicators", []string{"familyCode", " surveyNumber ", "income", ""}, [][]string{
		{"F1", "1º", "3"},
		{"", "  ", ""},
		{"F2", "2", "1", ""},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if got := tbl.Columns(); len(got) != 3 || got[1] != "surveyNumber" {
		t.Fatalf("columns=%v", got)
	}
	if tbl.Len() != 2 {
		t.Fatalf("len=%d", tbl.Len())
	}
	rec := tbl.Records()[0]
	if v, ok := rec.Get("surveyNumber"); !ok || v != "1º" {
		t.Fatalf("surveyNumber=%q ok=%v", v, ok)
	}
	if _, ok := rec.Get("missing"); ok {
		t.Fatal("missing column reported present")
	}
	if !rec.Set("surveyNumber", "1") || tbl.Records()[0].Value("surveyNumber") != "1" {
		t.Fatal("Set did not write through")
	}
}

func TestNewTableRejectsMalformedHeaders(t *testing.T) {
	cases := map[string][]string{
		"empty":     {"", ""},
		"gap":       {"a", "", "b"},
		"duplicate": {"a", "b", "a"},
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewTable("S", header, nil); !errors.Is(err, ErrMalformed) {
				t.Fatalf("err=%v want ErrMalformed", err)
			}
		})
	}
}

func TestNewTableRejectsDataBeyondHeader(t *testing.T) {
	_, err := NewTable("S", []string{"a"}, [][]string{{"1", "extra"}})
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err=%v want ErrMalformed", err)
	}
}

func TestRequire(t *testing.T) {
	tbl, err := NewTable("Families", []string{"familyCode"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := tbl.Require("familyCode", "surveyNumber"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err=%v want ErrMalformed", err)
	}
}
