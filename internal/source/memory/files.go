package memory

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"salesdash/internal/core"
	"salesdash/internal/source"
)

// JSON layout of a branch file. Field names follow the dashboard's
// original data files.
type (
	datasetFile struct {
		Branch         core.BranchID `json:"branch"`
		Sales          []amountRow   `json:"sales"`
		RepeatPurchase []amountRow   `json:"repeatPurchase"`
		Conversion     []newLeadRow  `json:"conversion"`
		Renewal        []renewalRow  `json:"renewal"`
	}

	amountRow struct {
		Company string     `json:"company"`
		May     core.Money `json:"may"`
		June    core.Money `json:"june"`
		July    core.Money `json:"july"`
	}

	newCounts struct {
		Received int `json:"newReceived"`
		Closed   int `json:"newClosed"`
	}

	newLeadRow struct {
		Company string    `json:"company"`
		May     newCounts `json:"may"`
		June    newCounts `json:"june"`
		July    newCounts `json:"july"`
	}

	renewCounts struct {
		Received int `json:"renewReceived"`
		Closed   int `json:"renewClosed"`
	}

	renewalRow struct {
		Company string      `json:"company"`
		May     renewCounts `json:"may"`
		June    renewCounts `json:"june"`
		July    renewCounts `json:"july"`
	}
)

// DecodeDataset reads one branch in the JSON layout and validates it.
func DecodeDataset(r io.Reader) (core.Dataset, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var f datasetFile
	if err := dec.Decode(&f); err != nil {
		return core.Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}

	d := core.Dataset{Branch: f.Branch}
	for _, r := range f.Sales {
		d.Sales = append(d.Sales, core.SalesRecord{Company: r.Company, May: r.May, June: r.June, July: r.July})
	}
	for _, r := range f.RepeatPurchase {
		d.RepeatPurchase = append(d.RepeatPurchase, core.RepeatPurchaseRecord{Company: r.Company, May: r.May, June: r.June, July: r.July})
	}
	for _, r := range f.Conversion {
		d.Conversion = append(d.Conversion, core.ConversionRecord{
			Company: r.Company,
			May:     core.LeadCounts(r.May),
			June:    core.LeadCounts(r.June),
			July:    core.LeadCounts(r.July),
		})
	}
	for _, r := range f.Renewal {
		d.Renewal = append(d.Renewal, core.RenewalRecord{
			Company: r.Company,
			May:     core.LeadCounts(r.May),
			June:    core.LeadCounts(r.June),
			July:    core.LeadCounts(r.July),
		})
	}
	if err := d.Validate(); err != nil {
		return core.Dataset{}, fmt.Errorf("validate %s: %w", d.Branch, err)
	}
	return d, nil
}

// EncodeDataset writes d in the JSON layout read by DecodeDataset.
func EncodeDataset(w io.Writer, d core.Dataset) error {
	f := datasetFile{Branch: d.Branch}
	for _, r := range d.Sales {
		f.Sales = append(f.Sales, amountRow{r.Company, r.May, r.June, r.July})
	}
	for _, r := range d.RepeatPurchase {
		f.RepeatPurchase = append(f.RepeatPurchase, amountRow{r.Company, r.May, r.June, r.July})
	}
	for _, r := range d.Conversion {
		f.Conversion = append(f.Conversion, newLeadRow{r.Company, newCounts(r.May), newCounts(r.June), newCounts(r.July)})
	}
	for _, r := range d.Renewal {
		f.Renewal = append(f.Renewal, renewalRow{r.Company, renewCounts(r.May), renewCounts(r.June), renewCounts(r.July)})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

func LoadJSONFile(path string) (core.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Dataset{}, err
	}
	defer f.Close()
	d, err := DecodeDataset(f)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// LoadCSVDir reads sales.csv, repeat.csv, conversion.csv and renewal.csv
// from dir. Every file must be present.
func LoadCSVDir(branch core.BranchID, dir string) (core.Dataset, error) {
	tables := make(map[source.Family]source.Table, 4)
	for _, fam := range source.Families() {
		path := filepath.Join(dir, string(fam)+".csv")
		t, err := readCSVFile(path)
		if err != nil {
			return core.Dataset{}, err
		}
		tables[fam] = t
	}
	d, err := source.DatasetFromTables(branch, tables)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("%s: %w", dir, err)
	}
	if err := d.Validate(); err != nil {
		return core.Dataset{}, fmt.Errorf("validate %s: %w", branch, err)
	}
	return d, nil
}

// ReadCSVTable reads a header row followed by data rows.
func ReadCSVTable(r io.Reader) (source.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return source.Table{}, err
	}
	if len(records) == 0 {
		return source.Table{}, fmt.Errorf("empty csv: %w", source.ErrMissingColumn)
	}
	return source.Table{Header: records[0], Rows: records[1:]}, nil
}

// WriteCSVTable is the inverse of ReadCSVTable.
func WriteCSVTable(w io.Writer, t source.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func readCSVFile(path string) (source.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return source.Table{}, err
	}
	defer f.Close()
	t, err := ReadCSVTable(f)
	if err != nil {
		return source.Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
