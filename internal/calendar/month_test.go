package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Month
		ok    bool
	}{
		{name: "english", input: "May 2025", want: Month{2025, time.May}, ok: true},
		{name: "english lowercase", input: "december 2026", want: Month{2026, time.December}, ok: true},
		{name: "english abbreviated", input: "Sept 2025", want: Month{2025, time.September}, ok: true},
		{name: "spanish", input: "Mayo 2025", want: Month{2025, time.May}, ok: true},
		{name: "spanish setiembre", input: "Setiembre 2025", want: Month{2025, time.September}, ok: true},
		{name: "spanish with de", input: "septiembre de 2025", want: Month{2025, time.September}, ok: true},
		{name: "surrounding whitespace", input: "  Abril 2025\n", want: Month{2025, time.April}, ok: true},
		{name: "comma", input: "June, 2027", want: Month{2027, time.June}, ok: true},
		{name: "empty", input: "", ok: false},
		{name: "not a month", input: "Not A Month", ok: false},
		{name: "missing year", input: "May", ok: false},
		{name: "bad year", input: "May twenty", ok: false},
		{name: "zero year", input: "May 0", ok: false},
		{name: "extra words", input: "May 2025 extra", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseMonth(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestParseMonth_Accents(t *testing.T) {
	// Some portals spell the month in upper case with a stray accent.
	got, ok := ParseMonth("ENÉRO 2026")
	assert.True(t, ok)
	assert.Equal(t, Month{2026, time.January}, got)
}

func TestMonthOrdering(t *testing.T) {
	may := Month{2025, time.May}
	june := Month{2025, time.June}
	jan := Month{2026, time.January}

	assert.True(t, may.Before(june))
	assert.True(t, june.After(may))
	assert.True(t, jan.After(june))
	assert.False(t, may.After(may))
	assert.False(t, may.Before(may))
	assert.Equal(t, "May 2025", may.String())
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 28, DaysIn(2025, time.February))
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 30, DaysIn(2025, time.April))
	assert.Equal(t, 31, DaysIn(2025, time.December))
}
