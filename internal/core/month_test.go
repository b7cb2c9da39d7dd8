package core

import "testing"

func TestParseMonth(t *testing.T) {
	cases := []struct {
		in   string
		want Month
		ok   bool
	}{
		{"2024-01", "2024-01", true},
		{"2024-01-31", "2024-01", true},
		{" 2024-12 ", "2024-12", true},
		{"2024-13", "", false},
		{"2024-1", "", false},
		{"01/05/2024", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMonth(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMonthOf(t *testing.T) {
	if m, ok := MonthOf("2024-03-17"); !ok || m != "2024-03" {
		t.Fatalf("got %s %v", m, ok)
	}
	if m, ok := MonthOf("2024-03"); !ok || m != "2024-03" {
		t.Fatalf("got %s %v", m, ok)
	}
	if _, ok := MonthOf("2024"); ok {
		t.Fatal("short dates have no month")
	}
	if _, ok := MonthOf("03/17/2024"); ok {
		t.Fatal("US dates have no month key")
	}
}

func TestMonthArithmetic(t *testing.T) {
	if got := Month("2024-12").Next(); got != "2025-01" {
		t.Fatalf("Next across year = %s", got)
	}
	if got := Month("2024-01").AddMonths(14); got != "2025-03" {
		t.Fatalf("AddMonths = %s", got)
	}
	if got := Month("2025-03").Label(); got != "Mar 2025" {
		t.Fatalf("Label = %s", got)
	}

	between := []struct {
		a, b Month
		want int
	}{
		{"2025-01", "2025-12", 11},
		{"2025-01", "2025-01", 0},
		{"2024-11", "2025-02", 3},
		{"2025-02", "2025-01", -1},
	}
	for _, tc := range between {
		if got := MonthsBetween(tc.a, tc.b); got != tc.want {
			t.Fatalf("MonthsBetween(%s, %s) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
