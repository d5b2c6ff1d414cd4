package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"salesdash/internal/dashboard"
	"salesdash/internal/source/memory"
)

func mrsSummary(t *testing.T) dashboard.Summary {
	t.Helper()
	s, err := dashboard.Build(memory.Builtin()[0])
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return s
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, mrsSummary(t)); err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	want := []string{SheetSales, SheetRepeat, SheetConversion, SheetRenewal}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("sheets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sheet %d = %q, want %q", i, got[i], want[i])
		}
	}

	raw := excelize.Options{RawCellValue: true}
	cells := []struct {
		sheet, cell, want string
	}{
		{SheetSales, "A1", "Company"},
		{SheetSales, "A2", "PT Nan"},
		{SheetSales, "B2", "253511"},
		{SheetSales, "A7", "Total"},
		{SheetSales, "B7", "850646"},
		{SheetSales, "E7", "2874275"},
		{SheetSales, "F1", "Share %"},
		{SheetSales, "H2", "up"},
		{SheetRepeat, "A6", "PT Baiyok RS3"},
		{SheetRepeat, "B6", "0"},
		{SheetConversion, "B1", "May received"},
		{SheetConversion, "B7", "82"},
		{SheetConversion, "C7", "33"},
		{SheetRenewal, "A5", "PT Baiyok RS3"},
		{SheetRenewal, "L5", "fair"},
	}
	for _, c := range cells {
		v, err := f.GetCellValue(c.sheet, c.cell, raw)
		if err != nil {
			t.Fatalf("GetCellValue %s!%s: %v", c.sheet, c.cell, err)
		}
		if v != c.want {
			t.Errorf("%s!%s = %q, want %q", c.sheet, c.cell, v, c.want)
		}
	}
}

func TestBuildEmptySummary(t *testing.T) {
	f, err := Build(dashboard.Summary{Label: "Empty"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer f.Close()
	v, err := f.GetCellValue(SheetSales, "A2")
	if err != nil || v != "Total" {
		t.Fatalf("A2 = %q, %v; want Total row directly under header", v, err)
	}

	for _, sheet := range []string{SheetSales, SheetRepeat, SheetConversion, SheetRenewal} {
		for _, cell := range []string{"B1", "E1", "F1"} {
			id, err := f.GetCellStyle(sheet, cell)
			if err != nil {
				t.Fatalf("GetCellStyle %s!%s: %v", sheet, cell, err)
			}
			style, err := f.GetStyle(id)
			if err != nil {
				t.Fatalf("GetStyle %d: %v", id, err)
			}
			if style.Font == nil || !style.Font.Bold {
				t.Errorf("%s!%s lost the header style", sheet, cell)
			}
		}
	}

	props, err := f.GetDocProps()
	if err != nil || props.Title != "Empty sales summary" {
		t.Fatalf("doc props = %+v, %v", props, err)
	}
}
