// Package export writes branch summaries as XLSX workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"salesdash/internal/core"
	"salesdash/internal/dashboard"
	"salesdash/internal/format"
)

const (
	SheetSales      = "Sales"
	SheetRepeat     = "Repeat"
	SheetConversion = "Conversion"
	SheetRenewal    = "Renewal"
)

const totalLabel = "Total"

type styles struct {
	header int
	money  int
	rate   int
	total  int
}

// WriteWorkbook writes one sheet per table of s to w.
func WriteWorkbook(w io.Writer, s dashboard.Summary) error {
	f, err := Build(s)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Build lays out the workbook in memory.
func Build(s dashboard.Summary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSales); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetRepeat, SheetConversion, SheetRenewal} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}
	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	steps := []func() error{
		func() error { return writeSales(f, st, s) },
		func() error { return writeRepeat(f, st, s) },
		func() error { return writeLeads(f, st, SheetConversion, s.ConversionRows, s.Conversion) },
		func() error { return writeLeads(f, st, SheetRenewal, s.RenewalRows, s.Renewal) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	if err := f.SetDocProps(&excelize.DocProperties{Title: s.Label + " sales summary", Creator: "salesdash"}); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	moneyFmt := "#,##0.00"
	rateFmt := "0.0"

	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return st, err
	}
	if st.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt}); err != nil {
		return st, err
	}
	if st.rate, err = f.NewStyle(&excelize.Style{CustomNumFmt: &rateFmt}); err != nil {
		return st, err
	}
	if st.total, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &moneyFmt}); err != nil {
		return st, err
	}
	return st, nil
}

func baht(m core.Money) float64 {
	v, _ := format.Decimal(m).Float64()
	return v
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func styleRange(f *excelize.File, sheet string, fromCol, toCol, fromRow, toRow, style int) error {
	from, err := excelize.CoordinatesToCellName(fromCol, fromRow)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(toCol, toRow)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, from, to, style)
}

// styleBody styles the data rows below the header; a table without rows has
// none, so nothing is styled.
func styleBody(f *excelize.File, sheet string, fromCol, toCol, rows, style int) error {
	if rows == 0 {
		return nil
	}
	return styleRange(f, sheet, fromCol, toCol, 2, rows+1, style)
}

func header(f *excelize.File, st styles, sheet string, cols []any) error {
	if err := writeRow(f, sheet, 1, cols); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, st.header); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "A", 28)
}

func writeSales(f *excelize.File, st styles, s dashboard.Summary) error {
	if err := header(f, st, SheetSales, []any{"Company", "May", "June", "July", "Total", "Share %", "Growth %", "Trend"}); err != nil {
		return err
	}
	for i, r := range s.SalesRows {
		if err := writeRow(f, SheetSales, i+2, []any{
			r.Company, baht(r.May), baht(r.June), baht(r.July), baht(r.Total), r.Share, r.Growth, r.Trend.String(),
		}); err != nil {
			return err
		}
	}
	last := len(s.SalesRows) + 2
	totals := []any{totalLabel}
	for _, m := range s.Sales.Months {
		totals = append(totals, baht(m.Total))
	}
	totals = append(totals, baht(s.Sales.GrandTotal))
	if err := writeRow(f, SheetSales, last, totals); err != nil {
		return err
	}
	if err := styleBody(f, SheetSales, 2, 5, len(s.SalesRows), st.money); err != nil {
		return err
	}
	if err := styleBody(f, SheetSales, 6, 7, len(s.SalesRows), st.rate); err != nil {
		return err
	}
	return styleRange(f, SheetSales, 1, 5, last, last, st.total)
}

func writeRepeat(f *excelize.File, st styles, s dashboard.Summary) error {
	if err := header(f, st, SheetRepeat, []any{"Company", "May", "June", "July", "Total", "Share %", "Tier"}); err != nil {
		return err
	}
	for i, r := range s.RepeatRows {
		if err := writeRow(f, SheetRepeat, i+2, []any{
			r.Company, baht(r.May), baht(r.June), baht(r.July), baht(r.Total), r.Share, r.Tier.String(),
		}); err != nil {
			return err
		}
	}
	last := len(s.RepeatRows) + 2
	totals := []any{totalLabel}
	for _, m := range s.Repeat.Months {
		totals = append(totals, baht(m.Total))
	}
	totals = append(totals, baht(s.Repeat.GrandTotal), s.Repeat.Share)
	if err := writeRow(f, SheetRepeat, last, totals); err != nil {
		return err
	}
	if err := styleBody(f, SheetRepeat, 2, 5, len(s.RepeatRows), st.money); err != nil {
		return err
	}
	if err := styleRange(f, SheetRepeat, 6, 6, 2, last, st.rate); err != nil {
		return err
	}
	return styleRange(f, SheetRepeat, 1, 5, last, last, st.total)
}

func writeLeads(f *excelize.File, st styles, sheet string, rows []dashboard.LeadRow, sum dashboard.LeadSummary) error {
	cols := []any{"Company"}
	for _, m := range core.Months() {
		cols = append(cols, m.Label()+" received", m.Label()+" closed", m.Label()+" rate %")
	}
	cols = append(cols, "Average %", "Tier")
	if err := header(f, st, sheet, cols); err != nil {
		return err
	}

	for i, r := range rows {
		values := []any{r.Company}
		rates := []float64{r.Rates.May, r.Rates.June, r.Rates.July}
		for j, c := range []core.LeadCounts{r.May, r.June, r.July} {
			values = append(values, c.Received, c.Closed, rates[j])
		}
		values = append(values, r.Rates.Average, r.Tier.String())
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}

	last := len(rows) + 2
	totals := []any{totalLabel}
	for _, m := range sum.Months {
		totals = append(totals, m.Received, m.Closed, m.Rate)
	}
	totals = append(totals, sum.MeanRate)
	if err := writeRow(f, sheet, last, totals); err != nil {
		return err
	}
	for _, col := range []int{4, 7, 10, 11} {
		if err := styleRange(f, sheet, col, col, 2, last, st.rate); err != nil {
			return err
		}
	}
	return nil
}
