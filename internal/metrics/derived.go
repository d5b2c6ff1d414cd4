package metrics

import (
	"fmt"

	"salesdash/internal/core"
)

type (
	Tier       int
	Trend      int
	Efficiency int

	// Thresholds are inclusive lower bounds for the Good and Fair tiers.
	Thresholds struct {
		Good float64
		Fair float64
	}

	// CompanyRates holds one company's monthly rates and their average.
	CompanyRates struct {
		Company string
		May     float64
		June    float64
		July    float64
		Average float64
		HasData bool
	}

	// RepeatShare is a company's repeat-purchase amount as a share of its sales.
	RepeatShare struct {
		Company string
		May     float64
		June    float64
		July    float64
		Total   float64
	}
)

const (
	TierNone Tier = iota
	TierPoor
	TierFair
	TierGood
)

const (
	TrendDown Trend = iota
	TrendUp
)

// Monthly renewal efficiency, from worst to best.
const (
	EfficiencyNeedsWork Efficiency = iota
	EfficiencyFair
	EfficiencyGood
	EfficiencyExcellent
)

var (
	ConversionThresholds  = Thresholds{Good: 60, Fair: 40}
	RenewalThresholds     = Thresholds{Good: 50, Fair: 30}
	RepeatShareThresholds = Thresholds{Good: 30, Fair: 20}

	// RenewalEfficiencyBounds are the inclusive lower bounds for excellent,
	// good and fair monthly renewal rates.
	RenewalEfficiencyBounds = [3]float64{50, 30, 20}
)

func (t Tier) String() string {
	switch t {
	case TierGood:
		return "good"
	case TierFair:
		return "fair"
	case TierPoor:
		return "poor"
	}
	return "none"
}

func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Tier) UnmarshalText(text []byte) error {
	for _, c := range []Tier{TierNone, TierPoor, TierFair, TierGood} {
		if c.String() == string(text) {
			*t = c
			return nil
		}
	}
	return fmt.Errorf("unknown tier %q", text)
}

func (e Efficiency) String() string {
	switch e {
	case EfficiencyExcellent:
		return "excellent"
	case EfficiencyGood:
		return "good"
	case EfficiencyFair:
		return "fair"
	}
	return "needs-work"
}

func (e Efficiency) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e *Efficiency) UnmarshalText(text []byte) error {
	for _, c := range []Efficiency{EfficiencyNeedsWork, EfficiencyFair, EfficiencyGood, EfficiencyExcellent} {
		if c.String() == string(text) {
			*e = c
			return nil
		}
	}
	return fmt.Errorf("unknown efficiency %q", text)
}

// RenewalEfficiency rates one month's overall renewal rate.
func RenewalEfficiency(rate float64) Efficiency {
	b := RenewalEfficiencyBounds
	switch {
	case rate >= b[0]:
		return EfficiencyExcellent
	case rate >= b[1]:
		return EfficiencyGood
	case rate >= b[2]:
		return EfficiencyFair
	}
	return EfficiencyNeedsWork
}

// SalesShare is a company's part of the branch total as a percentage, 0 when
// the branch sold nothing.
func SalesShare(company, branch core.Money) float64 {
	return RepeatPurchaseRate(company, branch)
}

func (t Trend) String() string {
	if t == TrendUp {
		return "up"
	}
	return "down"
}

func (t Trend) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Trend) UnmarshalText(text []byte) error {
	switch string(text) {
	case "up":
		*t = TrendUp
	case "down":
		*t = TrendDown
	default:
		return fmt.Errorf("unknown trend %q", text)
	}
	return nil
}

func (t Thresholds) Classify(rate float64) Tier {
	switch {
	case rate >= t.Good:
		return TierGood
	case rate >= t.Fair:
		return TierFair
	}
	return TierPoor
}

// ThresholdsFor returns the tier bounds used for a lead kind.
func ThresholdsFor(kind core.LeadKind) Thresholds {
	if kind == core.Renewal {
		return RenewalThresholds
	}
	return ConversionThresholds
}

// MeanOverallRate is the unweighted mean of the three monthly overall rates.
func MeanOverallRate[R core.LeadRecord](records []R) float64 {
	var sum float64
	months := core.Months()
	for _, m := range months {
		sum += OverallRate(records, m)
	}
	return sum / float64(len(months))
}

// TotalReceivedAll sums received leads over the whole window.
func TotalReceivedAll[R core.LeadRecord](records []R) int {
	total := 0
	for _, m := range core.Months() {
		total += TotalReceived(records, m)
	}
	return total
}

// TotalClosedAll sums closed leads over the whole window.
func TotalClosedAll[R core.LeadRecord](records []R) int {
	total := 0
	for _, m := range core.Months() {
		total += TotalClosed(records, m)
	}
	return total
}

// RatesFor computes a company's monthly rates.
//
// New-lead averages divide by all three months. Renewal averages only count
// months that received leads and are 0 when none did.
func RatesFor(r core.LeadRecord) CompanyRates {
	out := CompanyRates{Company: r.Name()}
	rates := [3]*float64{&out.May, &out.June, &out.July}
	active := 0
	var sum float64
	for i, m := range core.Months() {
		c := r.Leads(m)
		*rates[i] = ConversionRate(c.Closed, c.Received)
		sum += *rates[i]
		if c.Received > 0 {
			active++
		}
	}
	out.HasData = active > 0

	if r.Kind() == core.Renewal {
		if active > 0 {
			out.Average = sum / float64(active)
		}
		return out
	}
	out.Average = sum / 3
	return out
}

// LeadTier classifies a company's average rate. Renewal rows averaging 0
// have no tier, whether or not any leads arrived.
func LeadTier(kind core.LeadKind, rates CompanyRates) Tier {
	if kind == core.Renewal && rates.Average == 0 {
		return TierNone
	}
	return ThresholdsFor(kind).Classify(rates.Average)
}

// SalesTrend is up when July grew over June.
func SalesTrend(r core.AmountRecord) Trend {
	if MonthlyGrowth(r.Amount(core.July), r.Amount(core.June)) > 0 {
		return TrendUp
	}
	return TrendDown
}

// RepeatShares pairs each sales record with its repeat-purchase record by
// company name and returns the shares in sales order.
func RepeatShares(d core.Dataset) ([]RepeatShare, error) {
	repeat := d.RepeatByCompany()
	out := make([]RepeatShare, 0, len(d.Sales))
	for _, s := range d.Sales {
		r, ok := repeat[s.Company]
		if !ok {
			return nil, fmt.Errorf("%w: %q", core.ErrMissingCompany, s.Company)
		}
		out = append(out, RepeatShare{
			Company: s.Company,
			May:     RepeatPurchaseRate(r.May, s.May),
			June:    RepeatPurchaseRate(r.June, s.June),
			July:    RepeatPurchaseRate(r.July, s.July),
			Total:   RepeatPurchaseRate(TotalByCompany(r), TotalByCompany(s)),
		})
	}
	return out, nil
}
