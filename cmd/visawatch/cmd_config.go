package main

import (
	"fmt"
	"strings"
	"time"

	"visawatch/internal/calendar"
	"visawatch/internal/logging"
	"visawatch/internal/site"

	"github.com/spf13/cobra"
)

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate the configuration and print the effective deadline",
	Args:  cobra.NoArgs,
	RunE:  checkConfig,
}

var alarmTestCmd = &cobra.Command{
	Use:   "alarm-test",
	Short: "Ring the alarm until acknowledged, without opening a browser",
	Args:  cobra.NoArgs,
	RunE:  alarmTest,
}

func checkConfig(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration in %s:\n%w", configPath, err)
	}
	deadline, err := cfg.BuildDeadline()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	portal := site.NewPortal(nil, cfg.PortalConfig(), nil)
	fmt.Fprintf(out, "Configuration OK (%s)\n", configPath)
	fmt.Fprintf(out, "  Deadline:  %s\n", deadline)
	fmt.Fprintf(out, "  Account:   %s\n", maskEmail(cfg.Credentials.Email))
	fmt.Fprintf(out, "  Sign-in:   %s\n", portal.SignInURL())
	fmt.Fprintf(out, "  Poll:      every %s\n", cfg.Settings.GetPollInterval())
	if cfg.Alert.Email.Enabled {
		fmt.Fprintf(out, "  Email:     %s\n", strings.Join(cfg.Alert.Email.Receivers, ", "))
	}
	return nil
}

func alarmTest(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	deadline, err := cfg.BuildDeadline()
	if err != nil {
		now := time.Now()
		deadline, err = calendar.NewDeadline(now.Year(), int(now.Month()), now.Day())
		if err != nil {
			return err
		}
	}
	match := calendar.Match{
		Date:     deadline.Date(),
		Deadline: deadline,
		Panel:    deadline.Month(),
	}

	logger.Get(logging.CategoryAlert).Info("Testing alarm")
	return buildAlarm(cmd.InOrStdin(), cmd.OutOrStdout()).Ring(ctx, match)
}

// maskEmail keeps the first character of the local part and the domain.
func maskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + strings.Repeat("*", at-1) + email[at:]
}
