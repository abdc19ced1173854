package calendar

import (
	"fmt"
	"time"
)

// Date is a single calendar day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// CalendarMonth returns the month the date belongs to.
func (d Date) CalendarMonth() Month {
	return Month{Year: d.Year, Month: d.Month}
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return sign(d.Year - o.Year)
	case d.Month != o.Month:
		return sign(int(d.Month) - int(o.Month))
	default:
		return sign(d.Day - o.Day)
	}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// Deadline is the latest acceptable appointment date. Its day never exceeds
// the length of its month.
type Deadline struct {
	date Date
}

// NewDeadline builds a deadline, clamping day to the last day of the month.
// Out-of-range months, non-positive days and non-positive years are errors.
func NewDeadline(year, month, day int) (Deadline, error) {
	if year < 1 || year > 9999 {
		return Deadline{}, fmt.Errorf("deadline year %d out of range", year)
	}
	if month < 1 || month > 12 {
		return Deadline{}, fmt.Errorf("deadline month %d out of range 1..12", month)
	}
	if day < 1 {
		return Deadline{}, fmt.Errorf("deadline day %d must be at least 1", day)
	}
	if last := DaysIn(year, time.Month(month)); day > last {
		day = last
	}
	return Deadline{date: Date{Year: year, Month: time.Month(month), Day: day}}, nil
}

// Date returns the deadline as a date.
func (d Deadline) Date() Date { return d.date }

// Month returns the month the deadline falls in.
func (d Deadline) Month() Month { return d.date.CalendarMonth() }

// Admits reports whether candidate is on or before the deadline.
func (d Deadline) Admits(candidate Date) bool {
	return candidate.Compare(d.date) <= 0
}

func (d Deadline) String() string { return d.date.String() }
