package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCommaDecimal parses a money string in the fixed Brazilian ledger
// convention: comma as decimal separator, optional dots as thousands
// separators ("1.234,56").
func ParseCommaDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty money value")
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid money value %q: %w", s, err)
	}
	return v, nil
}

// ParseMoneyAuto parses a money string without a declared locale. It
// inspects the relative position of the last comma and the last dot to
// decide which character is the decimal separator, so "1.234,56" and
// "1,234.56" both yield 1234.56.
func ParseMoneyAuto(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty money value")
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma > lastDot:
		// comma is the decimal separator, dots are thousands
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case lastDot > lastComma:
		// dot is the decimal separator, commas are thousands
		s = strings.ReplaceAll(s, ",", "")
	}
	// neither present: plain integer string, parse as-is

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid money value %q: %w", s, err)
	}
	return v, nil
}

// ParsePercent parses a percentage string in either convention and
// returns it as a fraction ("6,54%" -> 0.0654).
func ParsePercent(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	v, err := ParseMoneyAuto(s)
	if err != nil {
		return 0, err
	}
	return v / 100, nil
}
