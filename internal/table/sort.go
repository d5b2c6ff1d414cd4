// Package table sorts dashboard rows by a named column.
package table

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Direction int

const (
	Unsorted Direction = iota
	Ascending
	Descending
)

// State is the current sort of one table. The zero value is unsorted.
type State struct {
	Field     string
	Direction Direction
}

// Column exposes one sortable field of T. Exactly one of Text or Number is set.
type Column[T any] struct {
	Key    string
	Text   func(T) string
	Number func(T) float64
}

// Collation is the locale used for text columns.
var Collation = language.Thai

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	}
	return "none"
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return Unsorted, nil
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return Unsorted, fmt.Errorf("invalid sort direction %q", s)
}

// Toggle advances the sort for a click on field. A new field starts
// ascending; the same field cycles ascending, descending, unsorted.
func (s State) Toggle(field string) State {
	if s.Field != field || s.Direction == Unsorted {
		return State{Field: field, Direction: Ascending}
	}
	if s.Direction == Ascending {
		return State{Field: field, Direction: Descending}
	}
	return State{}
}

// Active reports whether s reorders rows.
func (s State) Active() bool {
	return s.Field != "" && s.Direction != Unsorted
}

// Sort returns rows ordered by state. The input is never modified and rows
// with equal keys keep their relative order. An inactive state or an
// unknown field returns the rows in their original order.
func Sort[T any](rows []T, columns []Column[T], state State) []T {
	out := slices.Clone(rows)
	if !state.Active() {
		return out
	}
	idx := slices.IndexFunc(columns, func(c Column[T]) bool { return c.Key == state.Field })
	if idx < 0 {
		return out
	}
	col := columns[idx]

	var compare func(a, b T) int
	switch {
	case col.Text != nil:
		coll := collate.New(Collation)
		compare = func(a, b T) int { return coll.CompareString(col.Text(a), col.Text(b)) }
	case col.Number != nil:
		compare = func(a, b T) int { return cmp.Compare(col.Number(a), col.Number(b)) }
	default:
		return out
	}

	if state.Direction == Descending {
		slices.SortStableFunc(out, func(a, b T) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(out, compare)
	}
	return out
}

// Keys lists the sortable column keys in declaration order.
func Keys[T any](columns []Column[T]) []string {
	keys := make([]string, len(columns))
	for i, c := range columns {
		keys[i] = c.Key
	}
	return keys
}
