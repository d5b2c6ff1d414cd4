package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	May Month = iota + 1
	June
	July
)

const (
	NewLead LeadKind = iota + 1
	Renewal
)

const (
	MRSBranch BranchID = iota + 1
	RS3Branch
	RPKBranch
)

// DefaultBranch is served when a lookup is allowed to fall back.
const DefaultBranch = MRSBranch

type (
	Month    int
	LeadKind int
	BranchID int

	Money struct {
		Cents int64
	}

	SalesRecord struct {
		Company string
		May     Money
		June    Money
		July    Money
	}

	// RepeatPurchaseRecord is the part of a company's sales coming from returning customers.
	RepeatPurchaseRecord struct {
		Company string
		May     Money
		June    Money
		July    Money
	}

	LeadCounts struct {
		Received int `json:"received"`
		Closed   int `json:"closed"`
	}

	ConversionRecord struct {
		Company string
		May     LeadCounts
		June    LeadCounts
		July    LeadCounts
	}

	RenewalRecord struct {
		Company string
		May     LeadCounts
		June    LeadCounts
		July    LeadCounts
	}
)

var (
	ErrUnknownMonth     = errors.New("unknown month")
	ErrUnknownLeadKind  = errors.New("unknown lead kind")
	ErrUnknownBranch    = errors.New("unknown branch")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCount     = errors.New("invalid lead count")
	ErrEmptyCompany     = errors.New("empty company name")
	ErrDuplicateCompany = errors.New("duplicate company")
	ErrMissingCompany   = errors.New("company missing from paired dataset")
)

// Months returns the reporting window in calendar order.
func Months() []Month {
	return []Month{May, June, July}
}

func (m Month) String() string {
	switch m {
	case May:
		return "may"
	case June:
		return "june"
	case July:
		return "july"
	}
	return fmt.Sprintf("Month(%d)", int(m))
}

// Label is the English display name.
func (m Month) Label() string {
	switch m {
	case May:
		return "May"
	case June:
		return "June"
	case July:
		return "July"
	}
	return m.String()
}

// Previous returns the month before m and false for the first month of the window.
func (m Month) Previous() (Month, bool) {
	if m <= May || m > July {
		return 0, false
	}
	return m - 1, true
}

func ParseMonth(s string) (Month, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "may":
		return May, nil
	case "june", "jun":
		return June, nil
	case "july", "jul":
		return July, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMonth, s)
}

func (k LeadKind) String() string {
	switch k {
	case NewLead:
		return "new"
	case Renewal:
		return "renewal"
	}
	return fmt.Sprintf("LeadKind(%d)", int(k))
}

func ParseLeadKind(s string) (LeadKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new", "conversion":
		return NewLead, nil
	case "renewal", "renew":
		return Renewal, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLeadKind, s)
}

// Branches returns every known branch in display order.
func Branches() []BranchID {
	return []BranchID{MRSBranch, RS3Branch, RPKBranch}
}

// String returns the wire identifier, e.g. MRS_BRANCH.
func (b BranchID) String() string {
	switch b {
	case MRSBranch:
		return "MRS_BRANCH"
	case RS3Branch:
		return "RS3_BRANCH"
	case RPKBranch:
		return "RPK_BRANCH"
	}
	return fmt.Sprintf("BranchID(%d)", int(b))
}

func (b BranchID) Label() string {
	switch b {
	case MRSBranch:
		return "MRS Branch"
	case RS3Branch:
		return "RS3 Branch"
	case RPKBranch:
		return "RPK Branch"
	}
	return b.String()
}

func (b BranchID) Valid() bool {
	return b >= MRSBranch && b <= RPKBranch
}

// ParseBranchID accepts the wire identifier in any case.
func ParseBranchID(s string) (BranchID, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MRS_BRANCH":
		return MRSBranch, nil
	case "RS3_BRANCH":
		return RS3Branch, nil
	case "RPK_BRANCH":
		return RPKBranch, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBranch, s)
}

func (b BranchID) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBranch, int(b))
	}
	return []byte(b.String()), nil
}

func (b *BranchID) UnmarshalText(text []byte) error {
	id, err := ParseBranchID(string(text))
	if err != nil {
		return err
	}
	*b = id
	return nil
}

func (k LeadKind) MarshalText() ([]byte, error) {
	if k != NewLead && k != Renewal {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLeadKind, int(k))
	}
	return []byte(k.String()), nil
}

func (k *LeadKind) UnmarshalText(text []byte) error {
	kind, err := ParseLeadKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

func (m Month) MarshalText() ([]byte, error) {
	if m < May || m > July {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMonth, int(m))
	}
	return []byte(m.String()), nil
}

func (m *Month) UnmarshalText(text []byte) error {
	month, err := ParseMonth(string(text))
	if err != nil {
		return err
	}
	*m = month
	return nil
}

// Amount returns the sales amount booked in month m.
func (r SalesRecord) Amount(m Month) Money {
	return pickMonth(m, r.May, r.June, r.July)
}

func (r SalesRecord) Name() string { return r.Company }

// Amount returns the repeat-purchase amount booked in month m.
func (r RepeatPurchaseRecord) Amount(m Month) Money {
	return pickMonth(m, r.May, r.June, r.July)
}

func (r RepeatPurchaseRecord) Name() string { return r.Company }

func (r ConversionRecord) Leads(m Month) LeadCounts {
	return pickMonth(m, r.May, r.June, r.July)
}

func (r ConversionRecord) Name() string { return r.Company }

func (r ConversionRecord) Kind() LeadKind { return NewLead }

func (r RenewalRecord) Leads(m Month) LeadCounts {
	return pickMonth(m, r.May, r.June, r.July)
}

func (r RenewalRecord) Name() string { return r.Company }

func (r RenewalRecord) Kind() LeadKind { return Renewal }

func pickMonth[T any](m Month, may, june, july T) T {
	switch m {
	case May:
		return may
	case June:
		return june
	case July:
		return july
	}
	var zero T
	return zero
}

func (c LeadCounts) Validate() error {
	if c.Received < 0 || c.Closed < 0 {
		return fmt.Errorf("%w: received=%d closed=%d", ErrInvalidCount, c.Received, c.Closed)
	}
	return nil
}
