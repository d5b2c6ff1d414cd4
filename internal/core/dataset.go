package core

import (
	"errors"
	"fmt"
)

// Dataset is everything the dashboard knows about one branch.
type Dataset struct {
	Branch         BranchID
	Sales          []SalesRecord
	RepeatPurchase []RepeatPurchaseRecord
	Conversion     []ConversionRecord
	Renewal        []RenewalRecord
}

// Validate checks the shapes the aggregation code relies on.
//
// Sales and repeat-purchase records are paired by company name, so each
// company must appear exactly once in both. The soft invariants
// (repeat <= sales, closed <= received) are left to the data owner.
func (d Dataset) Validate() error {
	var errs []error
	if !d.Branch.Valid() {
		errs = append(errs, fmt.Errorf("%w: %d", ErrUnknownBranch, int(d.Branch)))
	}

	salesNames, err := uniqueNames("sales", d.Sales)
	if err != nil {
		errs = append(errs, err)
	}
	repeatNames, err := uniqueNames("repeat purchase", d.RepeatPurchase)
	if err != nil {
		errs = append(errs, err)
	}
	if _, err := uniqueNames("conversion", d.Conversion); err != nil {
		errs = append(errs, err)
	}
	if _, err := uniqueNames("renewal", d.Renewal); err != nil {
		errs = append(errs, err)
	}

	for _, r := range d.Sales {
		if _, ok := repeatNames[r.Company]; !ok {
			errs = append(errs, fmt.Errorf("%w: %q has sales but no repeat purchase record", ErrMissingCompany, r.Company))
		}
	}
	for _, r := range d.RepeatPurchase {
		if _, ok := salesNames[r.Company]; !ok {
			errs = append(errs, fmt.Errorf("%w: %q has repeat purchases but no sales record", ErrMissingCompany, r.Company))
		}
	}

	for _, r := range d.Conversion {
		for _, m := range Months() {
			if err := r.Leads(m).Validate(); err != nil {
				errs = append(errs, fmt.Errorf("conversion %q %s: %w", r.Company, m, err))
			}
		}
	}
	for _, r := range d.Renewal {
		for _, m := range Months() {
			if err := r.Leads(m).Validate(); err != nil {
				errs = append(errs, fmt.Errorf("renewal %q %s: %w", r.Company, m, err))
			}
		}
	}
	for _, r := range d.Sales {
		if err := validateAmounts(r.Company, r.May, r.June, r.July); err != nil {
			errs = append(errs, err)
		}
	}
	for _, r := range d.RepeatPurchase {
		if err := validateAmounts(r.Company, r.May, r.June, r.July); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RepeatByCompany indexes repeat-purchase records by company name.
func (d Dataset) RepeatByCompany() map[string]RepeatPurchaseRecord {
	out := make(map[string]RepeatPurchaseRecord, len(d.RepeatPurchase))
	for _, r := range d.RepeatPurchase {
		out[r.Company] = r
	}
	return out
}

// LeadRecords returns the conversion or renewal family as one sequence.
func (d Dataset) LeadRecords(kind LeadKind) []LeadRecord {
	switch kind {
	case NewLead:
		out := make([]LeadRecord, len(d.Conversion))
		for i, r := range d.Conversion {
			out[i] = r
		}
		return out
	case Renewal:
		out := make([]LeadRecord, len(d.Renewal))
		for i, r := range d.Renewal {
			out[i] = r
		}
		return out
	}
	return nil
}

// Clone returns a deep copy so callers cannot alter shared data.
func (d Dataset) Clone() Dataset {
	return Dataset{
		Branch:         d.Branch,
		Sales:          append([]SalesRecord(nil), d.Sales...),
		RepeatPurchase: append([]RepeatPurchaseRecord(nil), d.RepeatPurchase...),
		Conversion:     append([]ConversionRecord(nil), d.Conversion...),
		Renewal:        append([]RenewalRecord(nil), d.Renewal...),
	}
}

// AmountRecord is implemented by the monetary record families.
type AmountRecord interface {
	Name() string
	Amount(Month) Money
}

// LeadRecord is implemented by the conversion and renewal families.
type LeadRecord interface {
	Name() string
	Kind() LeadKind
	Leads(Month) LeadCounts
}

type named interface {
	Name() string
}

func uniqueNames[R named](family string, records []R) (map[string]struct{}, error) {
	seen := make(map[string]struct{}, len(records))
	var errs []error
	for _, r := range records {
		name := r.Name()
		if name == "" {
			errs = append(errs, fmt.Errorf("%s: %w", family, ErrEmptyCompany))
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("%s: %w: %q", family, ErrDuplicateCompany, name))
			continue
		}
		seen[name] = struct{}{}
	}
	return seen, errors.Join(errs...)
}

func validateAmounts(company string, amounts ...Money) error {
	for _, a := range amounts {
		if a.Cents < 0 {
			return fmt.Errorf("%w: %q has negative amount %s", ErrInvalidAmount, company, a)
		}
	}
	return nil
}
