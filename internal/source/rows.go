package source

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"salesdash/internal/core"
)

// Family names one of the four record families of a dataset.
type Family string

const (
	FamilySales      Family = "sales"
	FamilyRepeat     Family = "repeat"
	FamilyConversion Family = "conversion"
	FamilyRenewal    Family = "renewal"
)

var ErrMissingColumn = errors.New("missing required column")

// Families returns every family in dataset order.
func Families() []Family {
	return []Family{FamilySales, FamilyRepeat, FamilyConversion, FamilyRenewal}
}

func ParseFamily(s string) (Family, error) {
	switch normalizeHeader(s) {
	case "sales":
		return FamilySales, nil
	case "repeat", "repeatpurchase":
		return FamilyRepeat, nil
	case "conversion", "new", "newleads":
		return FamilyConversion, nil
	case "renewal", "renewals":
		return FamilyRenewal, nil
	}
	return "", fmt.Errorf("unknown record family %q", s)
}

// Table is a header row plus data rows, as read from a CSV file or a sheet range.
type Table struct {
	Header []string
	Rows   [][]string
}

// DatasetFromTables assembles a dataset from one table per family.
// Families without a table are left empty.
func DatasetFromTables(branch core.BranchID, tables map[Family]Table) (core.Dataset, error) {
	d := core.Dataset{Branch: branch}
	var err error
	if t, ok := tables[FamilySales]; ok {
		if d.Sales, err = ParseAmountRows(t, func(c string, m [3]core.Money) core.SalesRecord {
			return core.SalesRecord{Company: c, May: m[0], June: m[1], July: m[2]}
		}); err != nil {
			return core.Dataset{}, fmt.Errorf("%s: %w", FamilySales, err)
		}
	}
	if t, ok := tables[FamilyRepeat]; ok {
		if d.RepeatPurchase, err = ParseAmountRows(t, func(c string, m [3]core.Money) core.RepeatPurchaseRecord {
			return core.RepeatPurchaseRecord{Company: c, May: m[0], June: m[1], July: m[2]}
		}); err != nil {
			return core.Dataset{}, fmt.Errorf("%s: %w", FamilyRepeat, err)
		}
	}
	if t, ok := tables[FamilyConversion]; ok {
		if d.Conversion, err = ParseLeadRows(t, "new", func(c string, l [3]core.LeadCounts) core.ConversionRecord {
			return core.ConversionRecord{Company: c, May: l[0], June: l[1], July: l[2]}
		}); err != nil {
			return core.Dataset{}, fmt.Errorf("%s: %w", FamilyConversion, err)
		}
	}
	if t, ok := tables[FamilyRenewal]; ok {
		if d.Renewal, err = ParseLeadRows(t, "renew", func(c string, l [3]core.LeadCounts) core.RenewalRecord {
			return core.RenewalRecord{Company: c, May: l[0], June: l[1], July: l[2]}
		}); err != nil {
			return core.Dataset{}, fmt.Errorf("%s: %w", FamilyRenewal, err)
		}
	}
	return d, nil
}

// ParseAmountRows reads rows with columns company, may, june, july.
// Blank rows and rows without a company are skipped.
func ParseAmountRows[R any](t Table, build func(company string, amounts [3]core.Money) R) ([]R, error) {
	idx := indexHeader(t.Header)
	companyCol, ok := idx["company"]
	if !ok {
		return nil, fmt.Errorf("%w: company", ErrMissingColumn)
	}
	var monthCols [3]int
	for i, m := range core.Months() {
		col, ok := idx[m.String()]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, m)
		}
		monthCols[i] = col
	}

	var out []R
	for line, row := range t.Rows {
		company := cell(row, companyCol)
		if company == "" {
			continue
		}
		var amounts [3]core.Money
		for i, col := range monthCols {
			raw := cell(row, col)
			if raw == "" {
				continue
			}
			v, err := core.ParseAmount(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d (%s): %w", line+2, company, err)
			}
			amounts[i] = v
		}
		out = append(out, build(company, amounts))
	}
	return out, nil
}

// ParseLeadRows reads rows with a received and closed column per month,
// e.g. may_received or may_new_received. prefix is the optional word between
// month and field ("new" or "renew").
func ParseLeadRows[R any](t Table, prefix string, build func(company string, leads [3]core.LeadCounts) R) ([]R, error) {
	idx := indexHeader(t.Header)
	companyCol, ok := idx["company"]
	if !ok {
		return nil, fmt.Errorf("%w: company", ErrMissingColumn)
	}
	type pair struct{ received, closed int }
	var cols [3]pair
	for i, m := range core.Months() {
		r, err := findColumn(idx, m.String(), prefix, "received")
		if err != nil {
			return nil, err
		}
		c, err := findColumn(idx, m.String(), prefix, "closed")
		if err != nil {
			return nil, err
		}
		cols[i] = pair{r, c}
	}

	var out []R
	for line, row := range t.Rows {
		company := cell(row, companyCol)
		if company == "" {
			continue
		}
		var leads [3]core.LeadCounts
		for i, p := range cols {
			rec, err := parseCount(cell(row, p.received))
			if err != nil {
				return nil, fmt.Errorf("row %d (%s): %w", line+2, company, err)
			}
			cl, err := parseCount(cell(row, p.closed))
			if err != nil {
				return nil, fmt.Errorf("row %d (%s): %w", line+2, company, err)
			}
			leads[i] = core.LeadCounts{Received: rec, Closed: cl}
		}
		out = append(out, build(company, leads))
	}
	return out, nil
}

// TablesFromDataset is the inverse of DatasetFromTables, used by exporters.
func TablesFromDataset(d core.Dataset) map[Family]Table {
	amountHeader := []string{"company", "may", "june", "july"}
	leadHeader := func(prefix string) []string {
		h := []string{"company"}
		for _, m := range core.Months() {
			h = append(h, m.String()+"_"+prefix+"_received", m.String()+"_"+prefix+"_closed")
		}
		return h
	}

	sales := Table{Header: amountHeader}
	for _, r := range d.Sales {
		sales.Rows = append(sales.Rows, []string{r.Company, r.May.String(), r.June.String(), r.July.String()})
	}
	repeat := Table{Header: amountHeader}
	for _, r := range d.RepeatPurchase {
		repeat.Rows = append(repeat.Rows, []string{r.Company, r.May.String(), r.June.String(), r.July.String()})
	}
	conversion := Table{Header: leadHeader("new")}
	for _, r := range d.Conversion {
		conversion.Rows = append(conversion.Rows, leadRow(r))
	}
	renewal := Table{Header: leadHeader("renew")}
	for _, r := range d.Renewal {
		renewal.Rows = append(renewal.Rows, leadRow(r))
	}
	return map[Family]Table{
		FamilySales:      sales,
		FamilyRepeat:     repeat,
		FamilyConversion: conversion,
		FamilyRenewal:    renewal,
	}
}

func leadRow(r core.LeadRecord) []string {
	row := []string{r.Name()}
	for _, m := range core.Months() {
		c := r.Leads(m)
		row = append(row, strconv.Itoa(c.Received), strconv.Itoa(c.Closed))
	}
	return row
}

func findColumn(idx map[string]int, month, prefix, field string) (int, error) {
	for _, name := range []string{month + field, month + prefix + field} {
		if col, ok := idx[name]; ok {
			return col, nil
		}
	}
	return 0, fmt.Errorf("%w: %s_%s", ErrMissingColumn, month, field)
}

func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// normalizeHeader lowercases and drops spaces, underscores and hyphens.
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidCount, s)
	}
	return n, nil
}
