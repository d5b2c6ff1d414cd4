package core

import (
	"errors"
	"testing"
)

func TestParseBranchID(t *testing.T) {
	tests := []struct {
		in      string
		want    BranchID
		wantErr bool
	}{
		{"MRS_BRANCH", MRSBranch, false},
		{"rs3_branch", RS3Branch, false},
		{" RPK_BRANCH ", RPKBranch, false},
		{"XYZ_BRANCH", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBranchID(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownBranch) {
					t.Errorf("expected ErrUnknownBranch, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseBranchID(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestBranchesOrderAndLabels(t *testing.T) {
	want := []struct {
		id    string
		label string
	}{
		{"MRS_BRANCH", "MRS Branch"},
		{"RS3_BRANCH", "RS3 Branch"},
		{"RPK_BRANCH", "RPK Branch"},
	}
	got := Branches()
	if len(got) != len(want) {
		t.Fatalf("expected %d branches, got %d", len(want), len(got))
	}
	for i, b := range got {
		if b.String() != want[i].id || b.Label() != want[i].label {
			t.Errorf("branch %d = %s/%s, want %s/%s", i, b, b.Label(), want[i].id, want[i].label)
		}
	}
}

func TestMonthHelpers(t *testing.T) {
	if m, err := ParseMonth("June"); err != nil || m != June {
		t.Fatalf("ParseMonth(June) = %v, %v", m, err)
	}
	if _, err := ParseMonth("august"); !errors.Is(err, ErrUnknownMonth) {
		t.Fatalf("expected ErrUnknownMonth, got %v", err)
	}
	if p, ok := July.Previous(); !ok || p != June {
		t.Fatalf("July.Previous() = %v, %v", p, ok)
	}
	if _, ok := May.Previous(); ok {
		t.Fatalf("May has no previous month in the window")
	}
}

func TestRecordAccessors(t *testing.T) {
	s := SalesRecord{Company: "A", May: Money{100}, June: Money{200}, July: Money{300}}
	if s.Amount(June).Cents != 200 {
		t.Errorf("June amount = %d", s.Amount(June).Cents)
	}
	if s.Amount(Month(9)).Cents != 0 {
		t.Errorf("out-of-window month should read as zero")
	}
	r := RenewalRecord{Company: "B", July: LeadCounts{Received: 5, Closed: 3}}
	if r.Leads(July) != (LeadCounts{5, 3}) || r.Kind() != Renewal {
		t.Errorf("unexpected renewal accessors: %+v %v", r.Leads(July), r.Kind())
	}
}

func TestDatasetValidate(t *testing.T) {
	base := func() Dataset {
		return Dataset{
			Branch: MRSBranch,
			Sales: []SalesRecord{
				{Company: "A", May: Money{100}},
				{Company: "B", May: Money{50}},
			},
			RepeatPurchase: []RepeatPurchaseRecord{
				{Company: "B", May: Money{10}},
				{Company: "A", May: Money{20}},
			},
			Conversion: []ConversionRecord{{Company: "A", May: LeadCounts{19, 9}}},
			Renewal:    []RenewalRecord{{Company: "A"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Dataset)
		wantErr error
	}{
		{"valid with reordered repeat data", func(*Dataset) {}, nil},
		{"missing repeat record", func(d *Dataset) { d.RepeatPurchase = d.RepeatPurchase[:1] }, ErrMissingCompany},
		{"extra repeat record", func(d *Dataset) {
			d.RepeatPurchase = append(d.RepeatPurchase, RepeatPurchaseRecord{Company: "C"})
		}, ErrMissingCompany},
		{"duplicate sales company", func(d *Dataset) {
			d.Sales = append(d.Sales, SalesRecord{Company: "A"})
		}, ErrDuplicateCompany},
		{"negative count", func(d *Dataset) { d.Conversion[0].June.Closed = -1 }, ErrInvalidCount},
		{"negative amount", func(d *Dataset) { d.Sales[0].July = Money{-1} }, ErrInvalidAmount},
		{"empty company", func(d *Dataset) { d.Renewal[0].Company = "" }, ErrEmptyCompany},
		{"unknown branch", func(d *Dataset) { d.Branch = 0 }, ErrUnknownBranch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base()
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDatasetRepeatByCompanyAndLeads(t *testing.T) {
	d := Dataset{
		RepeatPurchase: []RepeatPurchaseRecord{{Company: "B", May: Money{10}}, {Company: "A", May: Money{20}}},
		Conversion:     []ConversionRecord{{Company: "X"}},
		Renewal:        []RenewalRecord{{Company: "Y"}, {Company: "Z"}},
	}
	if got := d.RepeatByCompany()["A"].May.Cents; got != 20 {
		t.Fatalf("expected A to map to 20, got %d", got)
	}
	if n := len(d.LeadRecords(NewLead)); n != 1 {
		t.Fatalf("expected 1 conversion record, got %d", n)
	}
	leads := d.LeadRecords(Renewal)
	if len(leads) != 2 || leads[1].Name() != "Z" || leads[1].Kind() != Renewal {
		t.Fatalf("unexpected renewal records %+v", leads)
	}
}

func TestDatasetClone(t *testing.T) {
	d := Dataset{Sales: []SalesRecord{{Company: "A", May: Money{1}}}}
	c := d.Clone()
	c.Sales[0].May = Money{99}
	if d.Sales[0].May.Cents != 1 {
		t.Fatalf("clone shares backing array with original")
	}
}
