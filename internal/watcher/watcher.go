// Package watcher supervises portal sessions: sign in, reach the calendar
// and poll it until a date on or before the deadline shows up.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"visawatch/internal/calendar"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrFatal marks failures that restarting cannot fix.
	ErrFatal = errors.New("fatal watcher error")
	// ErrRestartSession asks for a fresh login; it is expected, not a fault.
	ErrRestartSession = errors.New("session restart requested")
)

// Site is the portal as seen by the watcher.
type Site interface {
	calendar.Picker
	Login(ctx context.Context) error
	GoToAppointments(ctx context.Context) error
}

// Walker runs one pass over the calendar.
type Walker interface {
	Walk(ctx context.Context) (calendar.Result, error)
}

// Config tunes polling and restarts.
type Config struct {
	PollInterval    time.Duration
	RestartDelay    time.Duration
	MaxRestartDelay time.Duration
	// MaxRestarts bounds session restarts; zero means unlimited.
	MaxRestarts int
}

// DefaultConfig returns the stock polling and restart timings.
func DefaultConfig() Config {
	return Config{
		PollInterval:    5 * time.Second,
		RestartDelay:    5 * time.Second,
		MaxRestartDelay: 2 * time.Minute,
	}
}

// Watcher restarts sessions until a match is found or a fatal error occurs.
type Watcher struct {
	site   Site
	walker Walker
	cfg    Config
	logger *zap.Logger
}

// New creates a watcher. walker must read the calendar through site.
func New(site Site, walker Walker, cfg Config, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{site: site, walker: walker, cfg: cfg, logger: logger}
}

// Run blocks until a match, a fatal error, restart exhaustion or ctx is done.
func (w *Watcher) Run(ctx context.Context) (calendar.Match, error) {
	attempts := uint(0)
	if w.cfg.MaxRestarts > 0 {
		attempts = uint(w.cfg.MaxRestarts) + 1
	}

	sessions := 0
	match, err := retry.DoWithData(
		func() (calendar.Match, error) {
			sessions++
			return w.session(ctx)
		},
		retry.Attempts(attempts),
		retry.Delay(w.cfg.RestartDelay),
		retry.MaxDelay(w.cfg.MaxRestartDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, ErrFatal) && ctx.Err() == nil
		}),
		retry.OnRetry(func(_ uint, err error) {
			if attempts > 0 && uint(sessions) >= attempts {
				return
			}
			if errors.Is(err, ErrRestartSession) {
				w.logger.Warn("Restarting session", zap.Int("sessions", sessions), zap.Error(err))
				return
			}
			w.logger.Error("Session failed, restarting workflow", zap.Int("sessions", sessions), zap.Error(err))
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return calendar.Match{}, ctxErr
		}
		return calendar.Match{}, err
	}
	return match, nil
}

// session signs in once and polls until a match or a failure.
func (w *Watcher) session(ctx context.Context) (calendar.Match, error) {
	log := w.logger.With(zap.String("session", uuid.NewString()))
	log.Info("Starting session")

	if err := w.site.Login(ctx); err != nil {
		return calendar.Match{}, fmt.Errorf("login: %w", err)
	}
	if err := w.site.GoToAppointments(ctx); err != nil {
		return calendar.Match{}, fmt.Errorf("navigate to appointments: %w", err)
	}

	log.Info("Monitoring appointments", zap.Duration("interval", w.cfg.PollInterval))
	for polls := 1; ; polls++ {
		if err := calendar.Sleep(ctx, w.cfg.PollInterval); err != nil {
			return calendar.Match{}, err
		}
		if err := w.site.Refresh(ctx); err != nil {
			return calendar.Match{}, fmt.Errorf("refresh: %w", err)
		}
		log.Debug("Page refreshed", zap.Int("poll", polls))

		res, err := w.walker.Walk(ctx)
		if err != nil {
			return calendar.Match{}, fmt.Errorf("walk calendar: %w", err)
		}

		switch res.Outcome {
		case calendar.OutcomeMatch:
			log.Info("Match found",
				zap.Stringer("date", res.Match.Date),
				zap.Int("polls", polls))
			return *res.Match, nil
		case calendar.OutcomeFailed:
			return calendar.Match{}, fmt.Errorf("%w: calendar unusable after %d polls", ErrRestartSession, polls)
		default:
			log.Info("No date before deadline yet", zap.Int("poll", polls), zap.Int("pages", res.Pages))
		}
	}
}
