package core

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"5000", "5000", true},
		{"-2000", "-2000", true},
		{"12,5", "12.5", true},
		{"12.50", "12.5", true},
		{"1.500,25", "1500.25", true},
		{" Rp 3000 ", "3000", true},
		{"0", "0", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
		{"5.000", "5000", true},
		{"Rp 1.500.000", "1500000", true},
		{"+750", "750", true},
		{"999999999999999999", "999999999999999999", true},
		{"1e5000000", "", false},
		{"1E3", "", false},
		{"2.5e3", "", false},
		{"1000000000000000000", "", false},
		{"12.345", "12345", true},
		{"1,255", "", false},
		{"0.001", "", false},
		{"12.", "", false},
		{"-", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseCell(t *testing.T) {
	if _, ok := ParseCell(""); ok {
		t.Fatalf("blank cell must not parse")
	}
	if _, ok := ParseCell("n/a"); ok {
		t.Fatalf("garbage cell must not parse")
	}
	for _, bad := range []string{"1e5000000", "1E3", "10000000000000000000"} {
		if _, ok := ParseCell(bad); ok {
			t.Fatalf("cell %q must not parse", bad)
		}
	}
	if d, ok := ParseCell("12.5"); !ok || !d.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected fractional cell %s ok=%v", d, ok)
	}
	d, ok := ParseCell("-2000")
	if !ok || !d.Equal(decimal.NewFromInt(-2000)) {
		t.Fatalf("unexpected %s ok=%v", d, ok)
	}
	if FormatCell(d) != "-2000" {
		t.Fatalf("unexpected cell text %q", FormatCell(d))
	}
}

func TestFormatRupiah(t *testing.T) {
	if got := FormatRupiah(decimal.Zero); got != "Rp 0" {
		t.Fatalf("unexpected zero format %q", got)
	}
	got := FormatRupiah(decimal.NewFromInt(1234567))
	if !strings.HasPrefix(got, "Rp 1") || !strings.HasSuffix(got, "567") {
		t.Fatalf("unexpected format %q", got)
	}
	if neg := FormatRupiah(decimal.NewFromInt(-6000)); !strings.HasPrefix(neg, "-Rp 6") {
		t.Fatalf("unexpected negative format %q", neg)
	}
}
