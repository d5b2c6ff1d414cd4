package google

import (
	"errors"
	"testing"

	"salesdash/internal/core"
	"salesdash/internal/source"
)

func branchValues() map[source.Family][][]interface{} {
	return map[source.Family][][]interface{}{
		source.FamilySales: {
			{"Company", "May", "June", "July"},
			{"PT Fiat", 0.0, 184976.0, 264300.0},
			{"BT Aom", 0.0, 17396.0, 16197.5},
			{},
		},
		source.FamilyRepeat: {
			{"Company", "May", "June", "July"},
			{"BT Aom", 0.0, 0.0, 3200.0},
			{"PT Fiat", 0.0, 16200.0, 17510.0},
		},
		source.FamilyConversion: {
			{"Company", "May Received", "May Closed", "June Received", "June Closed", "July Received", "July Closed"},
			{"PT Fiat", 0.0, 0.0, 12.0, 6.0, 20.0, 11.0},
			{"BT Aom", nil, nil, 11.0, 2.0, 10.0, 2.0},
		},
		source.FamilyRenewal: {
			{"Company", "May Received", "May Closed", "June Received", "June Closed", "July Received", "July Closed"},
			{"PT Fiat", 0.0, 0.0, 2.0, 2.0, 5.0, 3.0},
			{"BT Aom", 0.0, 0.0, 1.0, 0.0, 2.0, 2.0},
		},
	}
}

func TestParseDataset(t *testing.T) {
	d, err := parseDataset(core.RS3Branch, branchValues())
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(d.Sales) != 2 {
		t.Fatalf("expected 2 sales rows, got %d", len(d.Sales))
	}
	if d.Sales[1].July.Cents != 1619750 {
		t.Fatalf("BT Aom July cents got %d", d.Sales[1].July.Cents)
	}
	if d.Conversion[1].May != (core.LeadCounts{}) {
		t.Fatalf("blank cells should parse as zero, got %+v", d.Conversion[1].May)
	}
	if d.Renewal[0].July != (core.LeadCounts{Received: 5, Closed: 3}) {
		t.Fatalf("PT Fiat renewal July got %+v", d.Renewal[0].July)
	}
}

func TestParseDatasetEmptyTab(t *testing.T) {
	values := branchValues()
	values[source.FamilyRenewal] = nil
	if _, err := parseDataset(core.RS3Branch, values); !errors.Is(err, source.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestToStrings(t *testing.T) {
	got := toStrings([]interface{}{" PT Nan ", 253511.0, 1e7, nil, true})
	want := []string{"PT Nan", "253511", "10000000", "", "true"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cell %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTabName(t *testing.T) {
	if got := TabName(core.MRSBranch, source.FamilySales); got != "MRS_BRANCH Sales" {
		t.Fatalf("TabName = %q", got)
	}
	if got := TabName(core.RPKBranch, source.FamilyRenewal); got != "RPK_BRANCH Renewal" {
		t.Fatalf("TabName = %q", got)
	}
}

func TestTableValuesKeepsCompanyAsText(t *testing.T) {
	vals := tableValues(source.Table{Header: []string{"company", "may"}, Rows: [][]string{{"123", "45.50"}}})
	if _, ok := vals[1][0].(string); !ok {
		t.Fatalf("company cell should stay a string, got %T", vals[1][0])
	}
	if n, ok := vals[1][1].(float64); !ok || n != 45.5 {
		t.Fatalf("amount cell should be numeric, got %v", vals[1][1])
	}
}
