package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"salesdash/internal/table"
)

// TableName identifies one of the four per-company tables.
type TableName string

const (
	SalesTable      TableName = "sales"
	RepeatTable     TableName = "repeat"
	ConversionTable TableName = "conversion"
	RenewalTable    TableName = "renewal"
)

var (
	// ErrUnknownTable is returned for a table name outside TableNames.
	ErrUnknownTable = errors.New("unknown table")
	// ErrUnknownColumn is returned when a sort names a column the table lacks.
	ErrUnknownColumn = errors.New("unknown sort column")
)

func TableNames() []TableName {
	return []TableName{SalesTable, RepeatTable, ConversionTable, RenewalTable}
}

func ParseTableName(s string) (TableName, error) {
	name := TableName(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range TableNames() {
		if t == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTable, s)
}

var salesColumns = []table.Column[SalesRow]{
	{Key: "company", Text: func(r SalesRow) string { return r.Company }},
	{Key: "may", Number: func(r SalesRow) float64 { return float64(r.May.Cents) }},
	{Key: "june", Number: func(r SalesRow) float64 { return float64(r.June.Cents) }},
	{Key: "july", Number: func(r SalesRow) float64 { return float64(r.July.Cents) }},
	{Key: "total", Number: func(r SalesRow) float64 { return float64(r.Total.Cents) }},
	{Key: "share", Number: func(r SalesRow) float64 { return r.Share }},
	{Key: "growth", Number: func(r SalesRow) float64 { return r.Growth }},
}

var repeatColumns = []table.Column[RepeatRow]{
	{Key: "company", Text: func(r RepeatRow) string { return r.Company }},
	{Key: "may", Number: func(r RepeatRow) float64 { return float64(r.May.Cents) }},
	{Key: "june", Number: func(r RepeatRow) float64 { return float64(r.June.Cents) }},
	{Key: "july", Number: func(r RepeatRow) float64 { return float64(r.July.Cents) }},
	{Key: "total", Number: func(r RepeatRow) float64 { return float64(r.Total.Cents) }},
	{Key: "share", Number: func(r RepeatRow) float64 { return r.Share }},
}

var leadColumns = []table.Column[LeadRow]{
	{Key: "company", Text: func(r LeadRow) string { return r.Company }},
	{Key: "may", Number: func(r LeadRow) float64 { return r.Rates.May }},
	{Key: "june", Number: func(r LeadRow) float64 { return r.Rates.June }},
	{Key: "july", Number: func(r LeadRow) float64 { return r.Rates.July }},
	{Key: "average", Number: func(r LeadRow) float64 { return r.Rates.Average }},
	{Key: "received", Number: func(r LeadRow) float64 { return float64(r.Received) }},
	{Key: "closed", Number: func(r LeadRow) float64 { return float64(r.Closed) }},
}

// SortKeys lists the sortable columns of a table.
func SortKeys(name TableName) []string {
	switch name {
	case SalesTable:
		return table.Keys(salesColumns)
	case RepeatTable:
		return table.Keys(repeatColumns)
	case ConversionTable, RenewalTable:
		return table.Keys(leadColumns)
	}
	return nil
}

// ValidateSort rejects a sort field the table does not have.
func ValidateSort(name TableName, state table.State) error {
	if state.Field == "" {
		return nil
	}
	for _, k := range SortKeys(name) {
		if k == state.Field {
			return nil
		}
	}
	return fmt.Errorf("%w: table %s has no column %q", ErrUnknownColumn, name, state.Field)
}

func sortSales(rows []SalesRow, state table.State) []SalesRow {
	return table.Sort(rows, salesColumns, state)
}

func sortRepeat(rows []RepeatRow, state table.State) []RepeatRow {
	return table.Sort(rows, repeatColumns, state)
}

func sortLeads(rows []LeadRow, state table.State) []LeadRow {
	return table.Sort(rows, leadColumns, state)
}
