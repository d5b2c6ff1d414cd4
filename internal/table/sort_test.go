package table

import (
	"slices"
	"testing"
)

type row struct {
	name  string
	total float64
}

var columns = []Column[row]{
	{Key: "company", Text: func(r row) string { return r.name }},
	{Key: "total", Number: func(r row) float64 { return r.total }},
}

func names(rows []row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.name
	}
	return out
}

func TestToggleCycle(t *testing.T) {
	var s State
	s = s.Toggle("total")
	if s != (State{"total", Ascending}) {
		t.Fatalf("first click = %+v", s)
	}
	s = s.Toggle("total")
	if s != (State{"total", Descending}) {
		t.Fatalf("second click = %+v", s)
	}
	s = s.Toggle("total")
	if s.Active() {
		t.Fatalf("third click should clear sort, got %+v", s)
	}
	s = State{"total", Descending}.Toggle("company")
	if s != (State{"company", Ascending}) {
		t.Fatalf("switching field = %+v", s)
	}
}

func TestSortStableThroughCycle(t *testing.T) {
	rows := []row{
		{"d", 10}, {"a", 5}, {"c", 10}, {"b", 5}, {"e", 1},
	}
	original := names(rows)

	var s State
	s = s.Toggle("total")
	if got := names(Sort(rows, columns, s)); !slices.Equal(got, []string{"e", "a", "b", "d", "c"}) {
		t.Fatalf("ascending = %v", got)
	}
	s = s.Toggle("total")
	if got := names(Sort(rows, columns, s)); !slices.Equal(got, []string{"d", "c", "a", "b", "e"}) {
		t.Fatalf("descending = %v", got)
	}
	s = s.Toggle("total")
	if got := names(Sort(rows, columns, s)); !slices.Equal(got, original) {
		t.Fatalf("unsorted = %v, want %v", got, original)
	}
	if !slices.Equal(names(rows), original) {
		t.Fatalf("input mutated: %v", names(rows))
	}
}

func TestSortText(t *testing.T) {
	rows := []row{{"PT Ploy", 0}, {"BT Gate", 0}, {"PT Nan", 0}, {"ข", 0}, {"ก", 0}}
	got := names(Sort(rows, columns, State{"company", Ascending}))
	want := []string{"BT Gate", "PT Nan", "PT Ploy", "ก", "ข"}
	if !slices.Equal(got, want) {
		t.Fatalf("ascending text = %v, want %v", got, want)
	}
	got = names(Sort(rows, columns, State{"company", Descending}))
	slices.Reverse(want)
	if !slices.Equal(got, want) {
		t.Fatalf("descending text = %v, want %v", got, want)
	}
}

func TestSortUnknownField(t *testing.T) {
	rows := []row{{"b", 2}, {"a", 1}}
	got := names(Sort(rows, columns, State{"missing", Ascending}))
	if !slices.Equal(got, []string{"b", "a"}) {
		t.Fatalf("unknown field should keep order, got %v", got)
	}
}

func TestParseDirection(t *testing.T) {
	tests := map[string]Direction{"": Unsorted, "asc": Ascending, "DESC": Descending, "none": Unsorted}
	for in, want := range tests {
		got, err := ParseDirection(in)
		if err != nil || got != want {
			t.Errorf("ParseDirection(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Errorf("expected error for invalid direction")
	}
}
