package config

import (
	"fmt"
	"net/url"

	"visawatch/internal/site"
)

// SiteConfig points at one AIS portal. Labels are the link texts the portal
// renders in its locale.
type SiteConfig struct {
	BaseURL         string `yaml:"base_url"`
	Locale          string `yaml:"locale"`
	ContinueLabel   string `yaml:"continue_label"`
	RescheduleLabel string `yaml:"reschedule_label"`
}

// DefaultSite targets the Costa Rica portal.
func DefaultSite() SiteConfig {
	return SiteConfig{
		BaseURL:         "https://ais.usvisa-info.com",
		Locale:          "es-cr",
		ContinueLabel:   "Continuar",
		RescheduleLabel: "Reprogramar cita",
	}
}

// PortalConfig combines site, credentials and browser timeouts for the
// portal workflow.
func (c *Config) PortalConfig() site.Config {
	return site.Config{
		BaseURL:         c.Site.BaseURL,
		Locale:          c.Site.Locale,
		ContinueLabel:   c.Site.ContinueLabel,
		RescheduleLabel: c.Site.RescheduleLabel,
		Email:           c.Credentials.Email,
		Password:        c.Credentials.Password,
		LoginTimeout:    c.Browser.GetLoginTimeout(),
		ElementTimeout:  c.Browser.GetElementTimeout(),
	}
}

func (s SiteConfig) validate() []error {
	var errs []error
	if u, err := url.Parse(s.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("site.base_url %q is not an absolute URL", s.BaseURL))
	}
	if s.Locale == "" {
		errs = append(errs, fmt.Errorf("site.locale not configured"))
	}
	if s.ContinueLabel == "" || s.RescheduleLabel == "" {
		errs = append(errs, fmt.Errorf("site.continue_label and site.reschedule_label are required"))
	}
	return errs
}
