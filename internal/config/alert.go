package config

import (
	"errors"
	"time"

	"visawatch/internal/alert"
)

// AlertConfig configures the alarm raised on a match.
type AlertConfig struct {
	SoundFile   string      `yaml:"sound_file"`
	Players     []string    `yaml:"players"`
	Message     string      `yaml:"message"`
	RepeatDelay string      `yaml:"repeat_delay"`
	Email       EmailConfig `yaml:"email"`
}

// EmailConfig configures the optional SMTP alert.
type EmailConfig struct {
	Enabled   bool     `yaml:"enabled"`
	SMTPHost  string   `yaml:"smtp_host"`
	SMTPPort  string   `yaml:"smtp_port"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	Sender    string   `yaml:"sender"`
	Receivers []string `yaml:"receivers"`
}

// DefaultAlert returns the alarm defaults.
func DefaultAlert() AlertConfig {
	return AlertConfig{
		SoundFile:   "beep.wav",
		Players:     []string{"paplay", "aplay", "afplay"},
		Message:     "Visa appointment available!",
		RepeatDelay: "1s",
		Email: EmailConfig{
			SMTPPort: "587",
		},
	}
}

// GetRepeatDelay returns the pause between alarm rings.
func (a AlertConfig) GetRepeatDelay() time.Duration {
	return durationOr(a.RepeatDelay, time.Second)
}

func (a AlertConfig) validate() []error {
	errs := appendDurationErr(nil, "alert.repeat_delay", a.RepeatDelay)
	if a.Email.Enabled {
		if a.Email.SMTPHost == "" || a.Email.Sender == "" {
			errs = append(errs, errors.New("alert.email requires smtp_host and sender when enabled"))
		}
		if len(a.Email.Receivers) == 0 {
			errs = append(errs, errors.New("alert.email requires at least one receiver when enabled"))
		}
	}
	return errs
}

// AlarmOptions converts the alert settings for alert.NewAlarm.
func (a AlertConfig) AlarmOptions() alert.Options {
	return alert.Options{
		Title:       "visawatch",
		Message:     a.Message,
		RepeatDelay: a.GetRepeatDelay(),
	}
}

// MailConfig converts the SMTP settings for alert.NewMailNotifier.
func (e EmailConfig) MailConfig() alert.MailConfig {
	return alert.MailConfig{
		Host:      e.SMTPHost,
		Port:      e.SMTPPort,
		Username:  e.Username,
		Password:  e.Password,
		Sender:    e.Sender,
		Receivers: e.Receivers,
	}
}
