// Package metrics rolls per-company monthly records up into totals, growth
// and conversion figures.
//
// Every function is pure and total: divisions by zero yield 0 instead of
// Inf or NaN, so results can be rendered without further checks. Amount
// sums are exact in satang; rates are float64 percentages.
package metrics

import "salesdash/internal/core"

// TotalByMonth sums month m across records.
func TotalByMonth[R core.AmountRecord](records []R, m core.Month) core.Money {
	var total core.Money
	for _, r := range records {
		total = total.Add(r.Amount(m))
	}
	return total
}

// TotalByCompany sums the three months of a single record.
func TotalByCompany(r core.AmountRecord) core.Money {
	var total core.Money
	for _, m := range core.Months() {
		total = total.Add(r.Amount(m))
	}
	return total
}

// GrandTotal sums TotalByCompany over all records.
func GrandTotal[R core.AmountRecord](records []R) core.Money {
	var total core.Money
	for _, r := range records {
		total = total.Add(TotalByCompany(r))
	}
	return total
}

// MonthlyGrowth is the percentage change from previous to current.
// A zero previous amount yields 0, which hides growth from an empty month.
func MonthlyGrowth(current, previous core.Money) float64 {
	if previous.Cents == 0 {
		return 0
	}
	return float64(current.Cents-previous.Cents) / float64(previous.Cents) * 100
}

// RepeatPurchaseRate is repeat as a percentage of total, 0 when total is zero.
func RepeatPurchaseRate(repeat, total core.Money) float64 {
	if total.Cents == 0 {
		return 0
	}
	return float64(repeat.Cents) / float64(total.Cents) * 100
}

// ConversionRate is closed as a percentage of received, 0 when nothing was received.
func ConversionRate(closed, received int) float64 {
	if received == 0 {
		return 0
	}
	return float64(closed) / float64(received) * 100
}

// TotalReceived sums received leads for month m. The lead kind follows the
// record family: conversion records count new leads, renewal records count
// renewal leads.
func TotalReceived[R core.LeadRecord](records []R, m core.Month) int {
	total := 0
	for _, r := range records {
		total += r.Leads(m).Received
	}
	return total
}

// TotalClosed sums closed leads for month m.
func TotalClosed[R core.LeadRecord](records []R, m core.Month) int {
	total := 0
	for _, r := range records {
		total += r.Leads(m).Closed
	}
	return total
}

// OverallRate is the volume-weighted rate for month m: counts are summed
// first and the ratio is taken once. It is not the mean of per-company rates.
func OverallRate[R core.LeadRecord](records []R, m core.Month) float64 {
	return ConversionRate(TotalClosed(records, m), TotalReceived(records, m))
}
