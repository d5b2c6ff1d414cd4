package source

import (
	"errors"
	"testing"

	"salesdash/internal/core"
)

func TestDatasetFromTables(t *testing.T) {
	tables := map[Family]Table{
		FamilySales: {
			Header: []string{"Company", "May", "June", "July"},
			Rows: [][]string{
				{"PT Nan", "253,511", "250151", "349899.50"},
				{"", "", "", ""},
				{"BT Gate", "52696", "", "178314"},
			},
		},
		FamilyRepeat: {
			Header: []string{"company", "may", "june", "july"},
			Rows:   [][]string{{"BT Gate", "10600", "13900", "19350"}, {"PT Nan", "82250", "92124", "65100"}},
		},
		FamilyConversion: {
			Header: []string{"company", "may_new_received", "may_new_closed", "june received", "june closed", "july-received", "july-closed"},
			Rows:   [][]string{{"PT Nan", "19", "9", "13", "9", "14", "10"}},
		},
		FamilyRenewal: {
			Header: []string{"company", "may_renew_received", "may_renew_closed", "june_renew_received", "june_renew_closed", "july_renew_received", "july_renew_closed"},
			Rows:   [][]string{{"PT Nan", "10", "4", "17", "6"}},
		},
	}

	d, err := DatasetFromTables(core.MRSBranch, tables)
	if err != nil {
		t.Fatalf("DatasetFromTables: %v", err)
	}
	if len(d.Sales) != 2 {
		t.Fatalf("expected blank row to be skipped, got %d sales rows", len(d.Sales))
	}
	if d.Sales[0].May.Cents != 25351100 || d.Sales[0].July.Cents != 34989950 {
		t.Errorf("unexpected PT Nan amounts %+v", d.Sales[0])
	}
	if !d.Sales[1].June.IsZero() {
		t.Errorf("empty cell should read as zero, got %s", d.Sales[1].June)
	}
	if d.Conversion[0].July != (core.LeadCounts{Received: 14, Closed: 10}) {
		t.Errorf("unexpected conversion July %+v", d.Conversion[0].July)
	}
	if d.Renewal[0].July != (core.LeadCounts{}) {
		t.Errorf("short row should read as zero counts, got %+v", d.Renewal[0].July)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("parsed dataset should validate: %v", err)
	}
}

func TestDatasetFromTablesErrors(t *testing.T) {
	tests := []struct {
		name    string
		tables  map[Family]Table
		wantErr error
	}{
		{
			name:    "missing month column",
			tables:  map[Family]Table{FamilySales: {Header: []string{"company", "may", "june"}}},
			wantErr: ErrMissingColumn,
		},
		{
			name:    "missing company column",
			tables:  map[Family]Table{FamilyRenewal: {Header: []string{"may_received"}}},
			wantErr: ErrMissingColumn,
		},
		{
			name: "bad amount",
			tables: map[Family]Table{FamilyRepeat: {
				Header: []string{"company", "may", "june", "july"},
				Rows:   [][]string{{"A", "1", "-2", "3"}},
			}},
			wantErr: core.ErrInvalidAmount,
		},
		{
			name: "bad count",
			tables: map[Family]Table{FamilyConversion: {
				Header: []string{"company", "may_received", "may_closed", "june_received", "june_closed", "july_received", "july_closed"},
				Rows:   [][]string{{"A", "x", "1", "1", "1", "1", "1"}},
			}},
			wantErr: core.ErrInvalidCount,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DatasetFromTables(core.RS3Branch, tt.tables)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTablesRoundTrip(t *testing.T) {
	in := core.Dataset{
		Branch:         core.RPKBranch,
		Sales:          []core.SalesRecord{{Company: "PT Zin", May: core.Money{Cents: 23878000}, June: core.Money{Cents: 1}}},
		RepeatPurchase: []core.RepeatPurchaseRecord{{Company: "PT Zin", July: core.Money{Cents: 6301500}}},
		Conversion:     []core.ConversionRecord{{Company: "PT Zin", May: core.LeadCounts{Received: 14, Closed: 9}}},
		Renewal:        []core.RenewalRecord{{Company: "PT Zin", June: core.LeadCounts{Received: 5, Closed: 5}}},
	}
	out, err := DatasetFromTables(in.Branch, TablesFromDataset(in))
	if err != nil {
		t.Fatalf("DatasetFromTables: %v", err)
	}
	if out.Sales[0] != in.Sales[0] || out.RepeatPurchase[0] != in.RepeatPurchase[0] ||
		out.Conversion[0] != in.Conversion[0] || out.Renewal[0] != in.Renewal[0] {
		t.Fatalf("round trip mismatch:\n in=%+v\nout=%+v", in, out)
	}
}

func TestParseFamily(t *testing.T) {
	for in, want := range map[string]Family{"Sales": FamilySales, "repeat_purchase": FamilyRepeat, "new": FamilyConversion, "Renewal": FamilyRenewal} {
		if got, err := ParseFamily(in); err != nil || got != want {
			t.Errorf("ParseFamily(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFamily("refunds"); err == nil {
		t.Errorf("expected error for unknown family")
	}
}
