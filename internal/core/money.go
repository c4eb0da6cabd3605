// Package core provides money parsing and handling utilities.
//
// Amounts are decimal Rupiah values. Input accepts dot or comma decimal
// separators and an optional sign; output groups thousands the Indonesian way.
package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rupiahPrinter = message.NewPrinter(language.Indonesian)

// Amount bounds. Exponent notation is never accepted, so a stored cell can
// not expand into an arbitrarily long number.
const (
	MaxAmountIntDigits  = 18
	MaxAmountFracDigits = 2

	maxCellFracDigits = 8
)

var (
	plainAmount   = regexp.MustCompile(`^[+-]?(\d+)(?:[.,](\d+))?$`)
	groupedAmount = regexp.MustCompile(`^[+-]?([1-9]\d{0,2}(?:\.\d{3})+)(?:,(\d+))?$`)
	cellAmount    = regexp.MustCompile(`^[+-]?(\d+)(?:\.(\d+))?$`)
)

// ParseAmount converts a user-entered amount to a decimal.
//
// Examples:
//
//	ParseAmount("5000")      -> 5000
//	ParseAmount("-2000")     -> -2000
//	ParseAmount("12,5")      -> 12.5
//	ParseAmount("5.000")     -> 5000 (Indonesian grouping)
//	ParseAmount("1.500,25")  -> 1500.25
//	ParseAmount("1e5")       -> ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Rp")
	s = strings.TrimSpace(s)

	if m := groupedAmount.FindStringSubmatch(s); m != nil {
		// "1.500.000,25": dots group thousands, the comma is the decimal mark
		s = strings.ReplaceAll(s, ".", "")
		return boundedAmount(strings.Replace(s, ",", ".", 1), strings.ReplaceAll(m[1], ".", ""), m[2])
	}
	if m := plainAmount.FindStringSubmatch(s); m != nil {
		return boundedAmount(strings.Replace(s, ",", ".", 1), m[1], m[2])
	}
	return decimal.Zero, ErrInvalidAmount
}

func boundedAmount(s, intDigits, fracDigits string) (decimal.Decimal, error) {
	if len(strings.TrimLeft(intDigits, "0")) > MaxAmountIntDigits || len(fracDigits) > MaxAmountFracDigits {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseCell reads an amount stored in a table cell. It is lenient: blank,
// malformed or out-of-range cells report ok=false and the caller treats
// them as zero.
func ParseCell(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	m := cellAmount.FindStringSubmatch(s)
	if m == nil || len(strings.TrimLeft(m[1], "0")) > MaxAmountIntDigits || len(m[2]) > maxCellFracDigits {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FormatCell is the stable textual form written to a table cell.
func FormatCell(d decimal.Decimal) string {
	return d.String()
}

// FormatRupiah formats an amount for display, e.g. "Rp 1.234.567".
// Fractions are rounded to whole Rupiah.
func FormatRupiah(d decimal.Decimal) string {
	whole := d.Round(0).IntPart()
	if whole < 0 {
		return "-Rp " + rupiahPrinter.Sprintf("%d", -whole)
	}
	return "Rp " + rupiahPrinter.Sprintf("%d", whole)
}
