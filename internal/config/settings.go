package config

import (
	"fmt"
	"time"

	"visawatch/internal/calendar"
	"visawatch/internal/watcher"
)

// SettingsConfig tunes polling and recovery.
type SettingsConfig struct {
	MaxCalendarAttempts int    `yaml:"max_calendar_attempts"`
	CalendarRetryDelay  string `yaml:"calendar_retry_delay"`
	SettleDelay         string `yaml:"settle_delay"`
	PollInterval        string `yaml:"poll_interval"`
	MaxPages            int    `yaml:"max_pages"`
	RestartDelay        string `yaml:"restart_delay"`
	MaxRestartDelay     string `yaml:"max_restart_delay"`
	MaxRestarts         int    `yaml:"max_restarts"` // 0 = unlimited
}

// DefaultSettings returns the polling defaults.
func DefaultSettings() SettingsConfig {
	return SettingsConfig{
		MaxCalendarAttempts: 3,
		CalendarRetryDelay:  "5s",
		SettleDelay:         "1s",
		PollInterval:        "5s",
		MaxPages:            24,
		RestartDelay:        "5s",
		MaxRestartDelay:     "2m",
	}
}

// GetCalendarRetryDelay returns the pause between calendar open attempts.
func (s SettingsConfig) GetCalendarRetryDelay() time.Duration {
	return durationOr(s.CalendarRetryDelay, 5*time.Second)
}

// GetSettleDelay returns the pause before reading the picker panels.
func (s SettingsConfig) GetSettleDelay() time.Duration {
	return durationOr(s.SettleDelay, time.Second)
}

// GetPollInterval returns the pause between calendar walks.
func (s SettingsConfig) GetPollInterval() time.Duration {
	return durationOr(s.PollInterval, 5*time.Second)
}

// GetRestartDelay returns the first backoff step after a failed session.
func (s SettingsConfig) GetRestartDelay() time.Duration {
	return durationOr(s.RestartDelay, 5*time.Second)
}

// GetMaxRestartDelay caps the restart backoff.
func (s SettingsConfig) GetMaxRestartDelay() time.Duration {
	return durationOr(s.MaxRestartDelay, 2*time.Minute)
}

// WalkerConfig converts the settings for the calendar walker.
func (s SettingsConfig) WalkerConfig() calendar.WalkerConfig {
	return calendar.WalkerConfig{
		MaxAttempts: s.MaxCalendarAttempts,
		RetryDelay:  s.GetCalendarRetryDelay(),
		SettleDelay: s.GetSettleDelay(),
		MaxPages:    s.MaxPages,
	}
}

// WatcherConfig converts the settings for the session supervisor.
func (s SettingsConfig) WatcherConfig() watcher.Config {
	return watcher.Config{
		PollInterval:    s.GetPollInterval(),
		RestartDelay:    s.GetRestartDelay(),
		MaxRestartDelay: s.GetMaxRestartDelay(),
		MaxRestarts:     s.MaxRestarts,
	}
}

func (s SettingsConfig) validate() []error {
	var errs []error
	if s.MaxCalendarAttempts < 1 {
		errs = append(errs, fmt.Errorf("settings.max_calendar_attempts must be at least 1, got %d", s.MaxCalendarAttempts))
	}
	if s.MaxPages < 0 {
		errs = append(errs, fmt.Errorf("settings.max_pages must not be negative, got %d", s.MaxPages))
	}
	if s.MaxRestarts < 0 {
		errs = append(errs, fmt.Errorf("settings.max_restarts must not be negative, got %d", s.MaxRestarts))
	}
	errs = appendDurationErr(errs, "settings.calendar_retry_delay", s.CalendarRetryDelay)
	errs = appendDurationErr(errs, "settings.settle_delay", s.SettleDelay)
	errs = appendDurationErr(errs, "settings.restart_delay", s.RestartDelay)
	errs = appendDurationErr(errs, "settings.max_restart_delay", s.MaxRestartDelay)
	if d, err := time.ParseDuration(s.PollInterval); err != nil {
		errs = append(errs, fmt.Errorf("settings.poll_interval: %w", err))
	} else if d <= 0 {
		errs = append(errs, fmt.Errorf("settings.poll_interval must be positive, got %s", d))
	}
	return errs
}

// durationOr parses s, falling back to def when s is empty or invalid.
func durationOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func appendDurationErr(errs []error, field, value string) []error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", field, err))
	}
	if d < 0 {
		return append(errs, fmt.Errorf("%s must not be negative, got %s", field, d))
	}
	return errs
}
