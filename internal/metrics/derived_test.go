package metrics

import (
	"errors"
	"testing"

	"salesdash/internal/core"
)

func TestRatesFor(t *testing.T) {
	tests := []struct {
		name        string
		record      core.LeadRecord
		wantAverage float64
		wantHasData bool
		wantTier    Tier
	}{
		{
			name: "new leads average over three months",
			record: core.ConversionRecord{Company: "A",
				May: core.LeadCounts{Received: 10, Closed: 5}, June: core.LeadCounts{Received: 10}},
			wantAverage: 50.0 / 3,
			wantHasData: true,
			wantTier:    TierPoor,
		},
		{
			name: "renewal average skips months without leads",
			record: core.RenewalRecord{Company: "B",
				June: core.LeadCounts{Received: 2, Closed: 1}, July: core.LeadCounts{Received: 4, Closed: 1}},
			wantAverage: 37.5,
			wantHasData: true,
			wantTier:    TierFair,
		},
		{
			name:        "renewal without leads has no tier",
			record:      core.RenewalRecord{Company: "C"},
			wantAverage: 0,
			wantHasData: false,
			wantTier:    TierNone,
		},
		{
			name:        "renewal with leads but no closes has no tier",
			record:      core.RenewalRecord{Company: "F", May: core.LeadCounts{Received: 5}},
			wantAverage: 0,
			wantHasData: true,
			wantTier:    TierNone,
		},
		{
			name:        "new leads without data are poor",
			record:      core.ConversionRecord{Company: "D"},
			wantAverage: 0,
			wantHasData: false,
			wantTier:    TierPoor,
		},
		{
			name: "perfect renewal",
			record: core.RenewalRecord{Company: "E",
				May: core.LeadCounts{Received: 3, Closed: 3}, June: core.LeadCounts{Received: 5, Closed: 5}, July: core.LeadCounts{Received: 4, Closed: 4}},
			wantAverage: 100,
			wantHasData: true,
			wantTier:    TierGood,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RatesFor(tt.record)
			if got.Average != tt.wantAverage {
				t.Errorf("Average = %v, want %v", got.Average, tt.wantAverage)
			}
			if got.HasData != tt.wantHasData {
				t.Errorf("HasData = %v, want %v", got.HasData, tt.wantHasData)
			}
			if tier := LeadTier(tt.record.Kind(), got); tier != tt.wantTier {
				t.Errorf("LeadTier = %s, want %s", tier, tt.wantTier)
			}
		})
	}
}

func TestThresholdsClassify(t *testing.T) {
	tests := []struct {
		th   Thresholds
		rate float64
		want Tier
	}{
		{ConversionThresholds, 60, TierGood},
		{ConversionThresholds, 59.9, TierFair},
		{ConversionThresholds, 40, TierFair},
		{ConversionThresholds, 39.9, TierPoor},
		{RenewalThresholds, 50, TierGood},
		{RenewalThresholds, 30, TierFair},
		{RenewalThresholds, 29, TierPoor},
		{RepeatShareThresholds, 30, TierGood},
		{RepeatShareThresholds, 20, TierFair},
		{RepeatShareThresholds, 0, TierPoor},
	}
	for _, tt := range tests {
		if got := tt.th.Classify(tt.rate); got != tt.want {
			t.Errorf("%+v.Classify(%v) = %s, want %s", tt.th, tt.rate, got, tt.want)
		}
	}
}

func TestRenewalEfficiency(t *testing.T) {
	tests := []struct {
		rate float64
		want Efficiency
	}{
		{100, EfficiencyExcellent},
		{50, EfficiencyExcellent},
		{49.9, EfficiencyGood},
		{30, EfficiencyGood},
		{29.7, EfficiencyFair},
		{20, EfficiencyFair},
		{19.9, EfficiencyNeedsWork},
		{0, EfficiencyNeedsWork},
	}
	for _, tt := range tests {
		if got := RenewalEfficiency(tt.rate); got != tt.want {
			t.Errorf("RenewalEfficiency(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}

	var e Efficiency
	if err := e.UnmarshalText([]byte("excellent")); err != nil || e != EfficiencyExcellent {
		t.Errorf("UnmarshalText(excellent) = %s, %v", e, err)
	}
	if err := e.UnmarshalText([]byte("superb")); err == nil {
		t.Error("expected error for unknown efficiency")
	}
}

func TestSalesShare(t *testing.T) {
	if got := SalesShare(baht(25), baht(100)); got != 25 {
		t.Errorf("SalesShare = %v, want 25", got)
	}
	if got := SalesShare(baht(25), core.Money{}); got != 0 {
		t.Errorf("SalesShare of an empty branch = %v, want 0", got)
	}
}

func TestMeanOverallRateAndTotals(t *testing.T) {
	records := []core.ConversionRecord{
		{Company: "A", May: core.LeadCounts{Received: 10, Closed: 5}, June: core.LeadCounts{Received: 4, Closed: 4}},
		{Company: "B", May: core.LeadCounts{Received: 10, Closed: 5}, July: core.LeadCounts{Received: 2, Closed: 1}},
	}
	// may 50, june 100, july 50
	if got := MeanOverallRate(records); got != 200.0/3 {
		t.Errorf("MeanOverallRate = %v, want %v", got, 200.0/3)
	}
	if got := TotalReceivedAll(records); got != 26 {
		t.Errorf("TotalReceivedAll = %d, want 26", got)
	}
	if got := TotalClosedAll(records); got != 15 {
		t.Errorf("TotalClosedAll = %d, want 15", got)
	}
}

func TestSalesTrend(t *testing.T) {
	up := core.SalesRecord{June: baht(100), July: baht(101)}
	flat := core.SalesRecord{June: baht(100), July: baht(100)}
	fromZero := core.SalesRecord{June: core.Money{}, July: baht(100)}
	if SalesTrend(up) != TrendUp {
		t.Errorf("expected up trend")
	}
	if SalesTrend(flat) != TrendDown {
		t.Errorf("flat sales should not trend up")
	}
	if SalesTrend(fromZero) != TrendDown {
		t.Errorf("growth from zero is reported as 0 and so not up")
	}
}

func TestRepeatSharesJoinByName(t *testing.T) {
	d := core.Dataset{
		Sales: []core.SalesRecord{
			{Company: "A", May: baht(100), June: baht(200), July: baht(100)},
			{Company: "B", May: baht(0), June: baht(50), July: baht(50)},
		},
		RepeatPurchase: []core.RepeatPurchaseRecord{
			{Company: "B", June: baht(10), July: baht(40)},
			{Company: "A", May: baht(25), June: baht(50), July: baht(25)},
		},
	}
	shares, err := RepeatShares(d)
	if err != nil {
		t.Fatalf("RepeatShares: %v", err)
	}
	if len(shares) != 2 || shares[0].Company != "A" || shares[1].Company != "B" {
		t.Fatalf("shares not in sales order: %+v", shares)
	}
	if shares[0].May != 25 || shares[0].Total != 25 {
		t.Errorf("A shares = %+v", shares[0])
	}
	if shares[1].May != 0 || shares[1].June != 20 || shares[1].July != 80 || shares[1].Total != 50 {
		t.Errorf("B shares = %+v", shares[1])
	}

	d.RepeatPurchase = d.RepeatPurchase[:1]
	if _, err := RepeatShares(d); !errors.Is(err, core.ErrMissingCompany) {
		t.Fatalf("expected ErrMissingCompany, got %v", err)
	}
}

func TestTierTrendText(t *testing.T) {
	for _, tier := range []Tier{TierNone, TierPoor, TierFair, TierGood} {
		b, _ := tier.MarshalText()
		var got Tier
		if err := got.UnmarshalText(b); err != nil || got != tier {
			t.Errorf("tier %s round trip = %v, %v", tier, got, err)
		}
	}
	for _, trend := range []Trend{TrendDown, TrendUp} {
		b, _ := trend.MarshalText()
		var got Trend
		if err := got.UnmarshalText(b); err != nil || got != trend {
			t.Errorf("trend %s round trip = %v, %v", trend, got, err)
		}
	}
	var tier Tier
	if err := tier.UnmarshalText([]byte("excellent")); err == nil {
		t.Error("expected error for unknown tier")
	}
}
