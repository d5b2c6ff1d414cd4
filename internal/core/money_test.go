package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"253511", 25351100, true},
		{"0", 0, true},
		{"1.23", 123, true},
		{"1,234.5", 123450, true},
		{"฿12.345", 1235, true}, // half-up rounding
		{"12.344", 1234, true},
		{" 2.50 ", 250, true},
		{".5", 50, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"๑๒", 0, false},
		{".", 0, false},
		{"฿.", 0, false},
		{"5.", 500, true},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
			}
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	var rec struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":253511,"b":"1,234.56","c":1.5e2}`), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.A.Cents != 25351100 || rec.B.Cents != 123456 || rec.C.Cents != 15000 {
		t.Fatalf("unexpected amounts %+v", rec)
	}
	out, err := json.Marshal(rec.B)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "1234.56" {
		t.Fatalf("expected 1234.56, got %s", out)
	}
	if err := json.Unmarshal([]byte(`-5`), &rec.A); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}

func TestMoneyBaht(t *testing.T) {
	if got := (Money{Cents: 12345}).Baht(); got != 123.45 {
		t.Fatalf("expected 123.45, got %v", got)
	}
	if got := (Money{Cents: 5}).Add(Money{Cents: 7}); got.Cents != 12 {
		t.Fatalf("expected 12, got %d", got.Cents)
	}
}
