package dashboard

import (
	"salesdash/internal/core"
	"salesdash/internal/metrics"
)

// Summary is everything the dashboard shows for one branch.
type Summary struct {
	Branch core.BranchID `json:"branch"`
	Label  string        `json:"label"`

	Sales      SalesSummary  `json:"sales"`
	Repeat     RepeatSummary `json:"repeat"`
	Conversion LeadSummary   `json:"conversion"`
	Renewal    LeadSummary   `json:"renewal"`

	SalesRows      []SalesRow  `json:"salesRows"`
	RepeatRows     []RepeatRow `json:"repeatRows"`
	ConversionRows []LeadRow   `json:"conversionRows"`
	RenewalRows    []LeadRow   `json:"renewalRows"`
}

type MonthTotal struct {
	Month core.Month `json:"month"`
	Total core.Money `json:"total"`
	// Growth over the previous month; absent for the first month.
	Growth *float64 `json:"growth,omitempty"`
}

type SalesSummary struct {
	Months     []MonthTotal `json:"months"`
	GrandTotal core.Money   `json:"grandTotal"`
}

type MonthRepeat struct {
	Month core.Month `json:"month"`
	Total core.Money `json:"total"`
	Share float64    `json:"share"`
}

type RepeatSummary struct {
	Months     []MonthRepeat `json:"months"`
	GrandTotal core.Money    `json:"grandTotal"`
	Share      float64       `json:"share"`
}

type MonthLeads struct {
	Month    core.Month `json:"month"`
	Received int        `json:"received"`
	Closed   int        `json:"closed"`
	Rate     float64    `json:"rate"`
	Lost     int        `json:"lost"`
	// Efficiency is set for renewals only.
	Efficiency *metrics.Efficiency `json:"efficiency,omitempty"`
}

type LeadSummary struct {
	Kind     core.LeadKind `json:"kind"`
	Months   []MonthLeads  `json:"months"`
	Received int           `json:"received"`
	Closed   int           `json:"closed"`
	MeanRate float64       `json:"meanRate"`
}

type SalesRow struct {
	Company string        `json:"company"`
	May     core.Money    `json:"may"`
	June    core.Money    `json:"june"`
	July    core.Money    `json:"july"`
	Total   core.Money    `json:"total"`
	Share   float64       `json:"share"`
	Growth  float64       `json:"growth"`
	Trend   metrics.Trend `json:"trend"`
}

type RepeatRow struct {
	Company string       `json:"company"`
	May     core.Money   `json:"may"`
	June    core.Money   `json:"june"`
	July    core.Money   `json:"july"`
	Total   core.Money   `json:"total"`
	Share   float64      `json:"share"`
	Tier    metrics.Tier `json:"tier"`
}

type LeadRow struct {
	Company  string          `json:"company"`
	May      core.LeadCounts `json:"may"`
	June     core.LeadCounts `json:"june"`
	July     core.LeadCounts `json:"july"`
	Received int             `json:"received"`
	Closed   int             `json:"closed"`
	Rates    Rates           `json:"rates"`
	Tier     metrics.Tier    `json:"tier"`
}

type Rates struct {
	May     float64 `json:"may"`
	June    float64 `json:"june"`
	July    float64 `json:"july"`
	Average float64 `json:"average"`
}

// Build computes the summary of a validated dataset.
func Build(d core.Dataset) (Summary, error) {
	shares, err := metrics.RepeatShares(d)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Branch:     d.Branch,
		Label:      d.Branch.Label(),
		Sales:      salesSummary(d.Sales),
		Repeat:     repeatSummary(d.Sales, d.RepeatPurchase),
		Conversion: leadSummary(core.NewLead, d.Conversion),
		Renewal:    leadSummary(core.Renewal, d.Renewal),
	}

	for _, r := range d.Sales {
		total := metrics.TotalByCompany(r)
		s.SalesRows = append(s.SalesRows, SalesRow{
			Company: r.Company,
			May:     r.May,
			June:    r.June,
			July:    r.July,
			Total:   total,
			Share:   metrics.SalesShare(total, s.Sales.GrandTotal),
			Growth:  metrics.MonthlyGrowth(r.July, r.June),
			Trend:   metrics.SalesTrend(r),
		})
	}

	repeat := d.RepeatByCompany()
	for _, sh := range shares {
		r := repeat[sh.Company]
		s.RepeatRows = append(s.RepeatRows, RepeatRow{
			Company: r.Company,
			May:     r.May,
			June:    r.June,
			July:    r.July,
			Total:   metrics.TotalByCompany(r),
			Share:   sh.Total,
			Tier:    metrics.RepeatShareThresholds.Classify(sh.Total),
		})
	}

	s.ConversionRows = leadRows(d.Conversion)
	s.RenewalRows = leadRows(d.Renewal)
	return s, nil
}

func salesSummary(records []core.SalesRecord) SalesSummary {
	out := SalesSummary{GrandTotal: metrics.GrandTotal(records)}
	for _, m := range core.Months() {
		mt := MonthTotal{Month: m, Total: metrics.TotalByMonth(records, m)}
		if prev, ok := m.Previous(); ok {
			g := metrics.MonthlyGrowth(mt.Total, metrics.TotalByMonth(records, prev))
			mt.Growth = &g
		}
		out.Months = append(out.Months, mt)
	}
	return out
}

func repeatSummary(sales []core.SalesRecord, repeat []core.RepeatPurchaseRecord) RepeatSummary {
	out := RepeatSummary{GrandTotal: metrics.GrandTotal(repeat)}
	for _, m := range core.Months() {
		total := metrics.TotalByMonth(repeat, m)
		out.Months = append(out.Months, MonthRepeat{
			Month: m,
			Total: total,
			Share: metrics.RepeatPurchaseRate(total, metrics.TotalByMonth(sales, m)),
		})
	}
	out.Share = metrics.RepeatPurchaseRate(out.GrandTotal, metrics.GrandTotal(sales))
	return out
}

func leadSummary[R core.LeadRecord](kind core.LeadKind, records []R) LeadSummary {
	out := LeadSummary{
		Kind:     kind,
		Received: metrics.TotalReceivedAll(records),
		Closed:   metrics.TotalClosedAll(records),
		MeanRate: metrics.MeanOverallRate(records),
	}
	for _, m := range core.Months() {
		ml := MonthLeads{
			Month:    m,
			Received: metrics.TotalReceived(records, m),
			Closed:   metrics.TotalClosed(records, m),
			Rate:     metrics.OverallRate(records, m),
		}
		ml.Lost = ml.Received - ml.Closed
		if kind == core.Renewal {
			e := metrics.RenewalEfficiency(ml.Rate)
			ml.Efficiency = &e
		}
		out.Months = append(out.Months, ml)
	}
	return out
}

func leadRows[R core.LeadRecord](records []R) []LeadRow {
	rows := make([]LeadRow, 0, len(records))
	for _, r := range records {
		rates := metrics.RatesFor(r)
		row := LeadRow{
			Company: r.Name(),
			May:     r.Leads(core.May),
			June:    r.Leads(core.June),
			July:    r.Leads(core.July),
			Rates:   Rates{May: rates.May, June: rates.June, July: rates.July, Average: rates.Average},
			Tier:    metrics.LeadTier(r.Kind(), rates),
		}
		for _, m := range core.Months() {
			row.Received += r.Leads(m).Received
			row.Closed += r.Leads(m).Closed
		}
		rows = append(rows, row)
	}
	return rows
}
