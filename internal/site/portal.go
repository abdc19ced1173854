// Package site knows the AIS visa-appointment portal: how to sign in, how to
// reach the reschedule calendar and how to read its jQuery UI date picker.
// Selectors here follow the live DOM and break when the portal changes.
package site

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"visawatch/internal/browser"

	"github.com/go-rod/rod"
	"go.uber.org/zap"
)

// Page is the subset of browser.Page the portal workflow drives.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	URL() (string, error)
	WaitURLChange(ctx context.Context, from string, timeout time.Duration) (string, error)
	Element(ctx context.Context, selector string, timeout time.Duration) (*rod.Element, error)
	ElementX(ctx context.Context, xpath string, timeout time.Duration) (*rod.Element, error)
	ElementByText(ctx context.Context, selector, pattern string, timeout time.Duration) (*rod.Element, error)
	Elements(ctx context.Context, selector string) (rod.Elements, error)
	Find(ctx context.Context, selector string) (*rod.Element, bool, error)
	Click(ctx context.Context, selector string, timeout time.Duration) error
	Input(ctx context.Context, selector, text string, timeout time.Duration) error
}

var _ Page = (*browser.Page)(nil)

const (
	emailSelector    = "#user_email"
	passwordSelector = "#user_password"
	consentSelector  = "div.icheckbox"
	commitSelector   = "[name=commit]"
	noticeSelector   = "label[for='confirmed_limit_message']"
	activeItemClass  = "is-active"
)

// Config describes one portal and the account used on it.
type Config struct {
	BaseURL         string
	Locale          string
	ContinueLabel   string
	RescheduleLabel string
	Email           string
	Password        string
	LoginTimeout    time.Duration
	ElementTimeout  time.Duration
}

// Portal runs the sign-in and navigation workflow and exposes the
// appointment date picker.
type Portal struct {
	page   Page
	cfg    Config
	logger *zap.Logger
}

// NewPortal binds the workflow to a browser page.
func NewPortal(page Page, cfg Config, logger *zap.Logger) *Portal {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LoginTimeout <= 0 {
		cfg.LoginTimeout = 20 * time.Second
	}
	if cfg.ElementTimeout <= 0 {
		cfg.ElementTimeout = 10 * time.Second
	}
	return &Portal{page: page, cfg: cfg, logger: logger}
}

// SignInURL is the portal's login page.
func (p *Portal) SignInURL() string {
	return fmt.Sprintf("%s/%s/niv/users/sign_in", strings.TrimRight(p.cfg.BaseURL, "/"), p.cfg.Locale)
}

// Login signs in and waits for the portal to redirect away from the form.
func (p *Portal) Login(ctx context.Context) error {
	signIn := p.SignInURL()
	p.logger.Info("Opening login page", zap.String("url", signIn))
	if err := p.page.Navigate(ctx, signIn); err != nil {
		return err
	}

	p.logger.Info("Filling in credentials")
	if err := p.page.Input(ctx, emailSelector, p.cfg.Email, p.cfg.LoginTimeout); err != nil {
		return fmt.Errorf("email field: %w", err)
	}
	if err := p.page.Input(ctx, passwordSelector, p.cfg.Password, p.cfg.ElementTimeout); err != nil {
		return fmt.Errorf("password field: %w", err)
	}

	p.logger.Info("Accepting terms and conditions")
	if err := p.page.Click(ctx, consentSelector, p.cfg.ElementTimeout); err != nil {
		return fmt.Errorf("terms checkbox: %w", err)
	}

	before, err := p.page.URL()
	if err != nil {
		return err
	}

	p.logger.Info("Submitting sign-in form")
	if err := p.page.Click(ctx, commitSelector, p.cfg.ElementTimeout); err != nil {
		return fmt.Errorf("sign in button: %w", err)
	}

	after, err := p.page.WaitURLChange(ctx, before, p.cfg.LoginTimeout)
	if err != nil {
		return fmt.Errorf("login did not redirect: %w", err)
	}
	p.logger.Info("Logged in", zap.String("url", after))
	return nil
}

// GoToAppointments walks from the post-login page to the reschedule calendar.
func (p *Portal) GoToAppointments(ctx context.Context) error {
	p.logger.Info("Clicking continue after login")
	cont, err := p.page.ElementByText(ctx, "a", exactText(p.cfg.ContinueLabel), p.cfg.LoginTimeout)
	if err != nil {
		return fmt.Errorf("continue link: %w", err)
	}
	if err := browser.ClickElement(ctx, cont, p.cfg.ElementTimeout); err != nil {
		return fmt.Errorf("continue link: %w", err)
	}

	p.logger.Info("Locating reschedule accordion item")
	label := xpathLiteral(p.cfg.RescheduleLabel)
	title, err := p.page.ElementX(ctx, "//h5[contains(., "+label+")]/ancestor::a", p.cfg.LoginTimeout)
	if err != nil {
		return fmt.Errorf("reschedule accordion: %w", err)
	}
	item, err := browser.ChildX(ctx, title, "./ancestor::li", p.cfg.ElementTimeout)
	if err != nil {
		return fmt.Errorf("reschedule accordion item: %w", err)
	}
	expanded, err := browser.HasClass(ctx, item, activeItemClass)
	if err != nil {
		return err
	}
	if !expanded {
		p.logger.Info("Expanding accordion section")
		if err := browser.JSClick(ctx, title); err != nil {
			return fmt.Errorf("expand accordion: %w", err)
		}
	}

	p.logger.Info("Opening reschedule flow")
	btn, err := p.page.ElementX(ctx, "//a[contains(@class, 'button') and contains(., "+label+")]", p.cfg.ElementTimeout)
	if err != nil {
		return fmt.Errorf("reschedule button: %w", err)
	}
	if err := browser.ClickElement(ctx, btn, p.cfg.ElementTimeout); err != nil {
		return fmt.Errorf("reschedule button: %w", err)
	}

	p.logger.Info("Accepting limit notice")
	notice, err := p.page.Element(ctx, noticeSelector, p.cfg.ElementTimeout)
	if err != nil {
		return fmt.Errorf("limit notice: %w", err)
	}
	if err := browser.JSClick(ctx, notice); err != nil {
		return fmt.Errorf("limit notice: %w", err)
	}

	p.logger.Info("Continuing to calendar")
	commit, err := p.page.Element(ctx, commitSelector, p.cfg.ElementTimeout)
	if err != nil {
		return fmt.Errorf("continue button: %w", err)
	}
	if err := browser.JSClick(ctx, commit); err != nil {
		return fmt.Errorf("continue button: %w", err)
	}

	p.logger.Info("Reached appointment calendar page")
	return nil
}

// exactText builds a JS regexp matching label as the whole text.
func exactText(label string) string {
	return `^\s*` + regexp.QuoteMeta(label) + `\s*$`
}

// xpathLiteral quotes s for use inside an XPath expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}
