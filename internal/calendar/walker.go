package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

// ErrCalendarUnavailable is returned by Picker implementations when the date
// picker did not show up in time.
var ErrCalendarUnavailable = errors.New("calendar unavailable")

// Panel is one month display of the date picker as read from the page.
type Panel struct {
	Title string
	Cells []string
}

// Picker is the date-picker widget on the appointment page.
type Picker interface {
	// Open triggers the picker and waits for its panel titles.
	Open(ctx context.Context) error
	// Refresh reloads the page hosting the picker.
	Refresh(ctx context.Context) error
	// Panels returns the visible panels, left to right.
	Panels(ctx context.Context) ([]Panel, error)
	// Next pages the picker forward by one month.
	Next(ctx context.Context) error
}

// Outcome is how a walk ended.
type Outcome int

const (
	// OutcomeDone means the range up to the deadline was covered without a match.
	OutcomeDone Outcome = iota
	// OutcomeFailed means the calendar could not be used; the session should restart.
	OutcomeFailed
	// OutcomeMatch means a date on or before the deadline was found.
	OutcomeMatch
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeFailed:
		return "failed"
	case OutcomeMatch:
		return "match"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Match is an available date on or before the deadline.
type Match struct {
	Date     Date
	Deadline Deadline
	Panel    Month
}

// Result describes a finished walk.
type Result struct {
	Outcome Outcome
	Match   *Match
	// Pages is the number of times the picker was advanced.
	Pages int
}

// WalkerConfig tunes a Walker.
type WalkerConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
	SettleDelay time.Duration
	MaxPages    int
}

// DefaultWalkerConfig mirrors the timings the portal tolerates.
func DefaultWalkerConfig() WalkerConfig {
	return WalkerConfig{
		MaxAttempts: 3,
		RetryDelay:  5 * time.Second,
		SettleDelay: time.Second,
		MaxPages:    24,
	}
}

// Walker pages through the two-panel picker until the deadline's month is
// covered or an early enough date turns up.
type Walker struct {
	picker   Picker
	deadline Deadline
	cfg      WalkerConfig
	logger   *zap.Logger
}

// NewWalker creates a walker over picker.
func NewWalker(picker Picker, deadline Deadline, cfg WalkerConfig, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Walker{picker: picker, deadline: deadline, cfg: cfg, logger: logger}
}

// Walk runs one pass over the calendar. A non-nil error means something
// unexpected happened (including cancellation); Result is then meaningless.
func (w *Walker) Walk(ctx context.Context) (Result, error) {
	if err := w.open(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		w.logger.Error("All calendar attempts failed, restarting session",
			zap.Int("attempts", w.cfg.MaxAttempts), zap.Error(err))
		return Result{Outcome: OutcomeFailed}, nil
	}

	for pages := 0; ; pages++ {
		if err := Sleep(ctx, w.cfg.SettleDelay); err != nil {
			return Result{}, err
		}

		panels, err := w.picker.Panels(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("read calendar panels: %w", err)
		}
		if len(panels) < 2 {
			w.logger.Error("Could not detect both calendar panels", zap.Int("panels", len(panels)))
			return Result{Outcome: OutcomeFailed, Pages: pages}, nil
		}

		w.logger.Info("Scanning calendar",
			zap.String("left", panels[0].Title), zap.String("right", panels[1].Title))

		for _, panel := range panels[:2] {
			if m := w.scan(panel); m != nil {
				return Result{Outcome: OutcomeMatch, Match: m, Pages: pages}, nil
			}
		}

		right, ok := ParseMonth(panels[1].Title)
		if ok && right.After(w.deadline.Month()) {
			w.logger.Info("Reached end of deadline range", zap.Stringer("month", right))
			return Result{Outcome: OutcomeDone, Pages: pages}, nil
		}

		if w.cfg.MaxPages > 0 && pages >= w.cfg.MaxPages {
			w.logger.Warn("Page limit reached before deadline range ended", zap.Int("pages", pages))
			return Result{Outcome: OutcomeDone, Pages: pages}, nil
		}

		if err := w.picker.Next(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, ctxErr
			}
			w.logger.Warn("Could not click next, treating range as exhausted", zap.Error(err))
			return Result{Outcome: OutcomeDone, Pages: pages}, nil
		}
	}
}

func (w *Walker) open(ctx context.Context) error {
	return retry.Do(
		func() error {
			return w.picker.Open(ctx)
		},
		retry.Attempts(uint(w.cfg.MaxAttempts)),
		retry.Delay(w.cfg.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			w.logger.Warn("Failed to load calendar, reloading page",
				zap.Uint("attempt", n+1), zap.Error(err))
			if rerr := w.picker.Refresh(ctx); rerr != nil {
				w.logger.Warn("Reload failed", zap.Error(rerr))
			}
		}),
	)
}

// scan checks a single panel and returns the first admissible date.
func (w *Walker) scan(panel Panel) *Match {
	month, ok := ParseMonth(panel.Title)
	if !ok {
		w.logger.Warn("Skipping panel with unparseable header", zap.String("title", panel.Title))
		return nil
	}

	dates := ScanPanel(&month, panel.Cells)
	w.logger.Info("Checking dates",
		zap.Stringer("month", month),
		zap.Int("available", len(dates)))
	if dropped := len(panel.Cells) - len(dates); dropped > 0 {
		w.logger.Debug("Dropped non-day cells", zap.Stringer("month", month), zap.Int("dropped", dropped))
	}

	for _, d := range dates {
		w.logger.Debug("Found date", zap.Stringer("date", d))
		if w.deadline.Admits(d) {
			w.logger.Info("Appointment available",
				zap.Stringer("date", d), zap.Stringer("deadline", w.deadline))
			return &Match{Date: d, Deadline: w.deadline, Panel: month}
		}
	}
	return nil
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
