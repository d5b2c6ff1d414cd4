package google

import (
	"fmt"
	"strconv"
	"strings"

	"salesdash/internal/core"
	"salesdash/internal/source"
)

// parseDataset converts the value matrices of the four family tabs into a
// dataset. The first row of every tab is its header.
func parseDataset(branch core.BranchID, values map[source.Family][][]interface{}) (core.Dataset, error) {
	tables := make(map[source.Family]source.Table, len(values))
	for fam, matrix := range values {
		if len(matrix) == 0 {
			return core.Dataset{}, fmt.Errorf("tab %q is empty: %w", TabName(branch, fam), source.ErrMissingColumn)
		}
		t := source.Table{Header: toStrings(matrix[0])}
		for _, row := range matrix[1:] {
			t.Rows = append(t.Rows, toStrings(row))
		}
		tables[fam] = t
	}
	return source.DatasetFromTables(branch, tables)
}

func tableValues(t source.Table) [][]interface{} {
	out := make([][]interface{}, 0, len(t.Rows)+1)
	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	out = append(out, header)
	for _, row := range t.Rows {
		r := make([]interface{}, len(row))
		for i, v := range row {
			if n, err := strconv.ParseFloat(v, 64); err == nil && i > 0 {
				r[i] = n
				continue
			}
			r[i] = v
		}
		out = append(out, r)
	}
	return out
}

// toStrings renders cells as plain strings. Numbers come back from the API
// as float64 and are printed without exponent.
func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch n := v.(type) {
		case float64:
			out[i] = strconv.FormatFloat(n, 'f', -1, 64)
		case nil:
			out[i] = ""
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return out
}
