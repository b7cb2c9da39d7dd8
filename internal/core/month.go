package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"
	labelLayout = "Jan 2006"
)

// Month is a zero-padded calendar month key ("YYYY-MM"). Keys sort
// lexicographically in chronological order.
type Month string

// ParseMonth accepts "YYYY-MM" or a full "YYYY-MM-DD" date and returns the
// month it falls in.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if len(s) == len(dayLayout) {
		t, err := time.Parse(dayLayout, s)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		return MonthFromTime(t), nil
	}
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return MonthFromTime(t), nil
}

// ParseDay parses a "YYYY-MM-DD" date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(dayLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// MonthOf returns the month key of an ISO date: its first seven
// characters. ok is false when those do not form a valid month.
func MonthOf(date string) (Month, bool) {
	if len(date) < len(monthLayout) {
		return "", false
	}
	m := Month(date[:len(monthLayout)])
	return m, m.Valid()
}

func MonthFromTime(t time.Time) Month {
	return Month(t.Format(monthLayout))
}

func (m Month) Valid() bool {
	_, err := time.Parse(monthLayout, string(m))
	return err == nil
}

// Time returns midnight UTC on the first day of the month.
func (m Month) Time() time.Time {
	t, _ := time.Parse(monthLayout, string(m))
	return t
}

func (m Month) AddMonths(n int) Month {
	return MonthFromTime(m.Time().AddDate(0, n, 0))
}

func (m Month) Next() Month {
	return m.AddMonths(1)
}

// Label formats the month for display, e.g. "Mar 2025".
func (m Month) Label() string {
	return m.Time().Format(labelLayout)
}

func (m Month) String() string {
	return string(m)
}

// MonthsBetween returns the number of whole months from a to b. It is
// negative when b is before a.
func MonthsBetween(a, b Month) int {
	ta, tb := a.Time(), b.Time()
	return (tb.Year()-ta.Year())*12 + int(tb.Month()) - int(ta.Month())
}
