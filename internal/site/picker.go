package site

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"visawatch/internal/browser"
	"visawatch/internal/calendar"

	"go.uber.org/zap"
)

const (
	dateFieldSelector = "#appointments_consulate_appointment_date"
	titleSelector     = ".ui-datepicker-title"
	groupSelector     = ".ui-datepicker-group"
	nextSelector      = ".ui-datepicker-next"
	disabledClass     = "ui-state-disabled"
)

// errNoNext means the picker cannot be paged any further.
var errNoNext = errors.New("next control unavailable")

var _ calendar.Picker = (*Portal)(nil)

// Open clicks the appointment date field and waits for the picker titles.
func (p *Portal) Open(ctx context.Context) error {
	p.logger.Info("Opening calendar")
	if err := p.page.Click(ctx, dateFieldSelector, p.cfg.ElementTimeout); err != nil {
		return fmt.Errorf("%w: %w", calendar.ErrCalendarUnavailable, err)
	}
	if _, err := p.page.Element(ctx, titleSelector, p.cfg.ElementTimeout); err != nil {
		return fmt.Errorf("%w: %w", calendar.ErrCalendarUnavailable, err)
	}
	return nil
}

// Refresh reloads the calendar page.
func (p *Portal) Refresh(ctx context.Context) error {
	return p.page.Reload(ctx)
}

// Panels reads every month group of the picker, left to right.
func (p *Portal) Panels(ctx context.Context) ([]calendar.Panel, error) {
	if _, err := p.page.Element(ctx, titleSelector, p.cfg.ElementTimeout); err != nil {
		return nil, err
	}

	groups, err := p.page.Elements(ctx, groupSelector)
	if err != nil {
		return nil, err
	}

	panels := make([]calendar.Panel, 0, len(groups))
	for _, g := range groups {
		g = g.Context(ctx)

		var title string
		if has, el, err := g.Has(titleSelector); err != nil {
			return nil, fmt.Errorf("panel title: %w", err)
		} else if has {
			if title, err = el.Text(); err != nil {
				return nil, fmt.Errorf("panel title: %w", err)
			}
		}

		html, err := g.HTML()
		if err != nil {
			return nil, fmt.Errorf("panel html: %w", err)
		}
		cells, err := calendar.CellsFromHTML(html)
		if err != nil {
			return nil, err
		}

		panels = append(panels, calendar.Panel{Title: normalizeTitle(title), Cells: cells})
	}

	p.logger.Debug("Read calendar panels", zap.Int("panels", len(panels)))
	return panels, nil
}

// Next pages the picker forward. A missing or disabled control is an error.
func (p *Portal) Next(ctx context.Context) error {
	el, found, err := p.page.Find(ctx, nextSelector)
	if err != nil {
		return err
	}
	if !found {
		return errNoNext
	}
	disabled, err := browser.HasClass(ctx, el, disabledClass)
	if err != nil {
		return err
	}
	if disabled {
		return errNoNext
	}
	return browser.ClickElement(ctx, el, p.cfg.ElementTimeout)
}

// normalizeTitle collapses the whitespace, non-breaking spaces included,
// that jQuery UI puts between month and year.
func normalizeTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
