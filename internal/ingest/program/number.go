package program

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// leadingIntRe matches the integer prefix of cells like "5", "3-4" or "4 sets".
	leadingIntRe = regexp.MustCompile(`^[+-]?\d+`)

	// leadingDecimalRe matches the decimal prefix of cells like "7-8",
	// "100kg" or "8.5@". Exponents and hex forms are not part of it.
	leadingDecimalRe = regexp.MustCompile(`^[+-]?(?:\d+(?:[.,]\d*)?|[.,]\d+)`)

	// decimalRe matches the first unsigned decimal number inside free text,
	// e.g. "145" in "145-147.5" or "102,5" in "~102,5kg".
	decimalRe = regexp.MustCompile(`\d+(?:[.,]\d+)?|[.,]\d+`)
)

// parseOptionalInt returns the leading integer of s, or nil when s has none.
func parseOptionalInt(s string) *int {
	m := leadingIntRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

// parseOptionalFloat returns the leading decimal of s, or nil when s does
// not start with one. Comma decimals ("102,5") are accepted. A parsed zero
// is returned as zero, not nil.
func parseOptionalFloat(s string) *float64 {
	m := leadingDecimalRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return nil
	}
	m = strings.TrimRight(strings.Replace(m, ",", ".", 1), ".")
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// firstNumber returns the first decimal number found anywhere in s.
func firstNumber(s string) *float64 {
	m := decimalRe.FindString(s)
	if m == "" {
		return nil
	}
	return parseOptionalFloat(m)
}

// optionalText returns the trimmed cell, or nil when it is blank.
func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// positive drops zero and negative counts.
func positive(n *int) *int {
	if n == nil || *n <= 0 {
		return nil
	}
	return n
}

// nonNegative drops negative loads.
func nonNegative(f *float64) *float64 {
	if f == nil || *f < 0 {
		return nil
	}
	return f
}
