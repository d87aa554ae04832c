package utils

import (
	"fmt"
	"time"
)

// LedgerDateFormat is the ddmmyyyy format used by ledger header records.
const LedgerDateFormat = "02012006"

// PeriodFormat is the MM/YYYY reporting-period format.
const PeriodFormat = "01/2006"

// ParseLedgerDate parses a ddmmyyyy ledger date.
func ParseLedgerDate(s string) (time.Time, error) {
	t, err := time.Parse(LedgerDateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ledger date %q: %w", s, err)
	}
	return t, nil
}

// ParsePeriod parses a MM/YYYY reporting period.
func ParsePeriod(s string) (time.Time, error) {
	t, err := time.Parse(PeriodFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	return t, nil
}

// FormatPeriod renders a date as its MM/YYYY reporting period.
func FormatPeriod(t time.Time) string {
	return t.Format(PeriodFormat)
}
