// Package alert raises the alarm when an appointment turns up: a repeating
// sound, desktop and email notifications, and a prompt that stops it all.
package alert

import (
	"context"
	"errors"
	"time"

	"visawatch/internal/calendar"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options tunes an Alarm.
type Options struct {
	Title       string
	Message     string
	RepeatDelay time.Duration
}

// Alarm rings until acknowledged.
type Alarm struct {
	player   Player
	notifier Notifier
	ack      Acknowledger
	opts     Options
	logger   *zap.Logger
}

// NewAlarm wires the alarm parts together. player and notifier may be nil.
func NewAlarm(opts Options, player Player, notifier Notifier, ack Acknowledger, logger *zap.Logger) *Alarm {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Title == "" {
		opts.Title = "visawatch"
	}
	if opts.RepeatDelay <= 0 {
		opts.RepeatDelay = time.Second
	}
	return &Alarm{player: player, notifier: notifier, ack: ack, opts: opts, logger: logger}
}

// Ring repeats notification and sound until the acknowledger returns. The
// returned error is the acknowledger's.
func (a *Alarm) Ring(ctx context.Context, m calendar.Match) error {
	a.logger.Info("Raising alarm", zap.Stringer("date", m.Date), zap.Stringer("deadline", m.Deadline))

	g, gctx := errgroup.WithContext(ctx)
	ringCtx, stop := context.WithCancel(gctx)
	defer stop()

	g.Go(func() error {
		defer stop()
		return a.ack.Wait(gctx, m)
	})
	g.Go(func() error {
		a.loop(ringCtx, m)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("Alarm acknowledged")
	return nil
}

func (a *Alarm) loop(ctx context.Context, m calendar.Match) {
	body := a.opts.Message + " " + m.Date.String()
	var notifyWarned, playWarned bool

	for rings := 1; ; rings++ {
		if a.notifier != nil {
			if err := a.notifier.Notify(ctx, a.opts.Title, body); err != nil && ctx.Err() == nil && !notifyWarned {
				a.logger.Warn("Notification failed", zap.Error(err))
				notifyWarned = true
			}
		}

		if a.player != nil {
			if err := a.player.Play(ctx); err != nil && ctx.Err() == nil && !playWarned {
				if errors.Is(err, ErrNoPlayer) {
					a.logger.Error("Cannot play alarm sound, continuing silently", zap.Error(err))
				} else {
					a.logger.Warn("Alarm sound failed", zap.Error(err))
				}
				playWarned = true
			}
		}

		a.logger.Debug("Alarm rang", zap.Int("rings", rings))
		if calendar.Sleep(ctx, a.opts.RepeatDelay) != nil {
			return
		}
	}
}
