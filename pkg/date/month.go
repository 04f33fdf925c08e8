package date

import (
	"fmt"
	"time"
)

// MonthFormat is the YYYY-MM representation of a Month.
const MonthFormat = "2006-01"

// Month is a calendar year-month.
type Month struct {
	y int
	m time.Month
}

// NewMonth returns the normalized Month for year and month.
func NewMonth(year int, month time.Month) Month {
	first := New(year, month, 1)
	return Month{first.y, first.m}
}

// MonthOf returns the month containing d.
func MonthOf(d Date) Month { return Month{d.y, d.m} }

// ParseMonth parses a YYYY-MM string.
func ParseMonth(str string) (Month, error) {
	t, err := time.Parse(MonthFormat, str)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q want format %q: %w", str, MonthFormat, err)
	}
	return NewMonth(t.Year(), t.Month()), nil
}

// First returns the first day of the month.
func (m Month) First() Date { return New(m.y, m.m, 1) }

// Next returns the following month.
func (m Month) Next() Month { return NewMonth(m.y, m.m+1) }

// Last returns the last day of the month.
func (m Month) Last() Date { return m.Next().First().Add(-1) }

// IsZero reports whether m is the zero Month.
func (m Month) IsZero() bool { return m == Month{} }

// String formats the month as YYYY-MM.
func (m Month) String() string { return fmt.Sprintf("%04d-%02d", m.y, int(m.m)) }
