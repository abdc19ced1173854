package calendar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// selectableDaySelector matches the day cells a user can pick. Disabled days
// render as a span and overflow cells are empty, so only anchors count.
const selectableDaySelector = "td a"

// ScanPanel turns the rendered day cells of one panel into dates, keeping
// the visual order. Cells that are blank, non-numeric or outside the month
// are dropped. A nil month yields no dates.
func ScanPanel(month *Month, cells []string) []Date {
	if month == nil {
		return nil
	}
	days := month.Days()

	var dates []Date
	for _, cell := range cells {
		day, err := strconv.Atoi(strings.TrimSpace(cell))
		if err != nil || day < 1 || day > days {
			continue
		}
		dates = append(dates, Date{Year: month.Year, Month: month.Month, Day: day})
	}
	return dates
}

// CellsFromHTML extracts the text of the selectable day cells from the markup
// of a single panel.
func CellsFromHTML(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse panel html: %w", err)
	}

	var cells []string
	doc.Find(selectableDaySelector).Each(func(_ int, s *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(s.Text()))
	})
	return cells, nil
}
