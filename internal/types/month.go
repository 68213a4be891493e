package types

import (
	"fmt"
	"strings"
	"time"

	ierr "github.com/feesync/feesync/internal/errors"
)

// MonthLayout is the wire format of a calendar month, e.g. 2024-05
const MonthLayout = "2006-01"

// DateLayout is the provider's date format, e.g. 2024-05-31
const DateLayout = "2006-01-02"

// Month identifies one calendar month in UTC.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return Month{}, ierr.WithError(err).
			WithHintf("Invalid month %q, expected format YYYY-MM", s).
			WithReportableDetails(map[string]any{
				"month": s,
			}).
			Mark(ierr.ErrValidation)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month containing t, evaluated in UTC.
func MonthOf(t time.Time) Month {
	t = t.UTC()
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label is the human readable form used in reminder messages, e.g. May 2024
func (m Month) Label() string {
	return m.Start().Format("January 2006")
}

// Start is the first instant of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the first instant of the following month (exclusive bound).
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, 0)
}

// LastDay is midnight of the last calendar day of the month.
func (m Month) LastDay() time.Time {
	return m.End().AddDate(0, 0, -1)
}

func (m Month) Previous() Month {
	return MonthOf(m.Start().AddDate(0, -1, 0))
}

func (m Month) Contains(t time.Time) bool {
	return MonthOf(t) == m
}

// IsZero reports whether the month was never set.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// TrailingMonths returns n months ending with the month of now, newest first.
func TrailingMonths(now time.Time, n int) []Month {
	months := make([]Month, 0, n)
	current := MonthOf(now)
	for i := 0; i < n; i++ {
		months = append(months, current)
		current = current.Previous()
	}
	return months
}

// ParseDate parses a provider date (YYYY-MM-DD). Empty input yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHintf("Invalid date %q, expected format YYYY-MM-DD", s).
			Mark(ierr.ErrValidation)
	}
	return t, nil
}
