package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"visawatch/internal/calendar"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "visawatch.yaml"

// Config holds all visawatch configuration.
type Config struct {
	Credentials CredentialsConfig `yaml:"credentials"`
	Deadline    DeadlineConfig    `yaml:"deadline"`
	Settings    SettingsConfig    `yaml:"settings"`
	Site        SiteConfig        `yaml:"site"`
	Browser     BrowserConfig     `yaml:"browser"`
	Alert       AlertConfig       `yaml:"alert"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// CredentialsConfig is the portal account.
type CredentialsConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// DeadlineConfig is the latest acceptable appointment date. The day is
// clamped to the month's length when the deadline is built.
type DeadlineConfig struct {
	Year  int `yaml:"year"`
	Month int `yaml:"month"`
	Day   int `yaml:"day"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Settings: DefaultSettings(),
		Site:     DefaultSite(),
		Browser:  DefaultBrowser(),
		Alert:    DefaultAlert(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file and applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("VISAWATCH_EMAIL"); v != "" {
		c.Credentials.Email = v
	}
	if v := os.Getenv("VISAWATCH_PASSWORD"); v != "" {
		c.Credentials.Password = v
	}
	if v := os.Getenv("VISAWATCH_SMTP_PASSWORD"); v != "" {
		c.Alert.Email.Password = v
	}
	if v := os.Getenv("VISAWATCH_CHROME_BIN"); v != "" {
		c.Browser.Bin = v
	}
}

// BuildDeadline returns the configured deadline.
func (c *Config) BuildDeadline() (calendar.Deadline, error) {
	return calendar.NewDeadline(c.Deadline.Year, c.Deadline.Month, c.Deadline.Day)
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Credentials.Email) == "" {
		errs = append(errs, errors.New("credentials.email not configured (or set VISAWATCH_EMAIL)"))
	}
	if c.Credentials.Password == "" {
		errs = append(errs, errors.New("credentials.password not configured (or set VISAWATCH_PASSWORD)"))
	}
	if _, err := c.BuildDeadline(); err != nil {
		errs = append(errs, err)
	}

	errs = append(errs, c.Settings.validate()...)
	errs = append(errs, c.Site.validate()...)
	errs = append(errs, c.Browser.validate()...)
	errs = append(errs, c.Alert.validate()...)

	return errors.Join(errs...)
}
