// Package calendar holds the date logic of the watcher: parsing date-picker
// panel headers, the configured deadline, scanning panel day cells and the
// walker that pages through the two-panel picker looking for an earlier slot.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Month is a calendar month as shown in a date-picker panel header.
type Month struct {
	Year  int
	Month time.Month
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return DaysIn(m.Year, m.Month)
}

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// After reports whether m is strictly later than o.
func (m Month) After(o Month) bool {
	return o.Before(m)
}

func (m Month) String() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// DaysIn returns the length of the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// monthNames covers the English and Spanish spellings the AIS portals render,
// keyed by their accent-free lowercase form.
var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,

	"enero": time.January, "ene": time.January,
	"febrero": time.February,
	"marzo": time.March,
	"abril": time.April, "abr": time.April,
	"mayo": time.May,
	"junio": time.June,
	"julio": time.July,
	"agosto": time.August, "ago": time.August,
	"septiembre": time.September, "setiembre": time.September, "set": time.September,
	"octubre": time.October,
	"noviembre": time.November,
	"diciembre": time.December, "dic": time.December,
}

// fillers are words that may sit between the month name and the year,
// as in "mayo de 2025".
var fillers = map[string]bool{"de": true, "del": true, "of": true}

// ParseMonth parses a panel header such as "May 2025" or "Setiembre 2025".
// The second result is false when the header cannot be parsed; callers skip
// such panels.
func ParseMonth(text string) (Month, bool) {
	fields := strings.FieldsFunc(fold(text), func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '.'
	})

	words := fields[:0]
	for _, f := range fields {
		if !fillers[f] {
			words = append(words, f)
		}
	}
	if len(words) != 2 {
		return Month{}, false
	}

	month, ok := monthNames[words[0]]
	if !ok {
		return Month{}, false
	}
	year, err := strconv.Atoi(words[1])
	if err != nil || year < 1 || year > 9999 {
		return Month{}, false
	}
	return Month{Year: year, Month: month}, true
}

// fold lowercases s and strips diacritics.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
