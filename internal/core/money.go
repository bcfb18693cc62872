// Package core holds the pure domain layer: money handling, the
// reconciliation merge, financial aggregation, and fiscal-month bucketing.
// Nothing in this package performs I/O.
package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// Baht returns the baht value as a float64 for display and JSON purposes.
// Calculations stay in satang to avoid floating-point drift.
func (m Money) Baht() float64 {
	return float64(m.Satang) / 100.0
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Satang: m.Satang + other.Satang}
}

// MarshalJSON emits the amount as a plain baht number, matching the rows
// the spreadsheet stores.
func (m Money) MarshalJSON() ([]byte, error) {
	if m.Satang%100 == 0 {
		return []byte(strconv.FormatInt(m.Satang/100, 10)), nil
	}
	return []byte(strconv.FormatFloat(m.Baht(), 'f', 2, 64)), nil
}

// UnmarshalJSON accepts a number, a quoted number, or null. Anything else
// coerces to zero; remote rows are not trusted to be well-formed.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		m.Satang = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(data, &unquoted); err != nil {
			m.Satang = 0
			return nil
		}
		s = unquoted
	}
	m.Satang = CoerceSatang(s)
	return nil
}

// ParseBahtToSatang converts a decimal baht string to satang with half-up
// rounding on the third decimal. Accepts both dot and comma separators.
// Returns an error for non-positive or malformed amounts; user input paths
// want the rejection, while display paths use CoerceSatang instead.
func ParseBahtToSatang(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
	}
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	satang := iv*100 + frac
	if satang <= 0 {
		return 0, ErrInvalidAmount
	}
	return satang, nil
}

// CoerceSatang converts an arbitrary cell value to satang, falling back to
// zero on anything unparseable. Thousands separators are tolerated when a
// dot decimal is present.
func CoerceSatang(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", "")
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int64(f*100.0 + 0.5)
}
