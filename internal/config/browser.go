package config

import (
	"time"

	"visawatch/internal/browser"
)

// BrowserConfig configures the Chrome instance driven by rod.
type BrowserConfig struct {
	Bin               string   `yaml:"bin"`          // empty = rod's managed browser
	DebuggerURL       string   `yaml:"debugger_url"` // attach instead of launching
	Headless          bool     `yaml:"headless"`
	Stealth           bool     `yaml:"stealth"`
	Flags             []string `yaml:"flags"`
	ElementTimeout    string   `yaml:"element_timeout"`
	LoginTimeout      string   `yaml:"login_timeout"`
	NavigationTimeout string   `yaml:"navigation_timeout"`
}

// DefaultBrowser returns a visible, stealthy browser.
func DefaultBrowser() BrowserConfig {
	return BrowserConfig{
		Stealth:           true,
		Flags:             []string{"start-maximized"},
		ElementTimeout:    "10s",
		LoginTimeout:      "20s",
		NavigationTimeout: "30s",
	}
}

// GetElementTimeout returns the default wait for a page element.
func (b BrowserConfig) GetElementTimeout() time.Duration {
	return durationOr(b.ElementTimeout, 10*time.Second)
}

// GetLoginTimeout returns the wait used around the sign-in form.
func (b BrowserConfig) GetLoginTimeout() time.Duration {
	return durationOr(b.LoginTimeout, 20*time.Second)
}

// GetNavigationTimeout returns the page navigation timeout.
func (b BrowserConfig) GetNavigationTimeout() time.Duration {
	return durationOr(b.NavigationTimeout, 30*time.Second)
}

// SessionConfig converts the settings for the browser session manager.
func (b BrowserConfig) SessionConfig() browser.Config {
	cfg := browser.DefaultConfig()
	cfg.Bin = b.Bin
	cfg.DebuggerURL = b.DebuggerURL
	cfg.Headless = b.Headless
	cfg.Stealth = b.Stealth
	cfg.Flags = b.Flags
	cfg.ElementTimeout = b.GetElementTimeout()
	cfg.NavigationTimeout = b.GetNavigationTimeout()
	return cfg
}

func (b BrowserConfig) validate() []error {
	var errs []error
	errs = appendDurationErr(errs, "browser.element_timeout", b.ElementTimeout)
	errs = appendDurationErr(errs, "browser.login_timeout", b.LoginTimeout)
	errs = appendDurationErr(errs, "browser.navigation_timeout", b.NavigationTimeout)
	return errs
}
