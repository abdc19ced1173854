package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"visawatch/internal/alert"
	"visawatch/internal/browser"
	"visawatch/internal/calendar"
	"visawatch/internal/logging"
	"visawatch/internal/site"
	"visawatch/internal/watcher"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the calendar until an early enough date appears",
	Long: `Launches Chrome, signs in and polls the reschedule calendar.

Failed sessions are restarted with exponential backoff. On a match the alarm
rings and the browser stays open so the appointment can be booked by hand;
pressing Enter stops the alarm, closes the browser and exits with status 0.`,
	RunE: runWatch,
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration in %s:\n%w", configPath, err)
	}
	deadline, err := cfg.BuildDeadline()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	boot := logger.Get(logging.CategoryBoot)
	boot.Info("Starting visawatch", zap.Stringer("deadline", deadline), zap.String("portal", cfg.Site.BaseURL))

	mgr := browser.NewSessionManager(cfg.Browser.SessionConfig(), logger.Get(logging.CategoryBrowser))
	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("%w: launch browser: %w", watcher.ErrFatal, err)
	}
	defer func() {
		if err := mgr.Shutdown(); err != nil {
			boot.Warn("Browser shutdown failed", zap.Error(err))
		}
	}()

	page, err := mgr.Page(ctx)
	if err != nil {
		return fmt.Errorf("%w: open page: %w", watcher.ErrFatal, err)
	}

	portal := site.NewPortal(page, cfg.PortalConfig(), logger.Get(logging.CategorySession))
	walker := calendar.NewWalker(portal, deadline, cfg.Settings.WalkerConfig(), logger.Get(logging.CategoryCalendar))
	w := watcher.New(portal, walker, cfg.Settings.WatcherConfig(), logger.Get(logging.CategoryWatcher))

	match, err := w.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			boot.Info("Interrupted, shutting down")
		}
		return err
	}

	if err := buildAlarm(cmd.InOrStdin(), cmd.OutOrStdout()).Ring(ctx, match); err != nil {
		return err
	}
	boot.Info("Done", zap.Stringer("date", match.Date))
	return nil
}

// buildAlarm assembles the sound, notifications and acknowledgement prompt
// from the alert configuration.
func buildAlarm(in io.Reader, out io.Writer) *alert.Alarm {
	ac := cfg.Alert

	notifiers := alert.Multi{alert.NewDBusNotifier("visawatch")}
	if ac.Email.Enabled {
		notifiers = append(notifiers, alert.Once(alert.NewMailNotifier(ac.Email.MailConfig())))
	}

	return alert.NewAlarm(
		ac.AlarmOptions(),
		alert.NewExecPlayer(ac.SoundFile, ac.Players),
		notifiers,
		alert.NewPromptAcknowledger(in, out, ac.Message),
		logger.Get(logging.CategoryAlert),
	)
}
