package alert

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"visawatch/internal/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingPlayer struct {
	plays atomic.Int32
	err   error
}

func (p *countingPlayer) Play(ctx context.Context) error {
	p.plays.Add(1)
	return p.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	bodies []string
	err    error
}

func (n *recordingNotifier) Notify(ctx context.Context, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bodies = append(n.bodies, body)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.bodies)
}

func testMatch(t *testing.T) calendar.Match {
	t.Helper()
	dl, err := calendar.NewDeadline(2025, 5, 20)
	require.NoError(t, err)
	return calendar.Match{
		Date:     calendar.Date{Year: 2025, Month: time.May, Day: 15},
		Deadline: dl,
		Panel:    calendar.Month{Year: 2025, Month: time.May},
	}
}

// ackAfter acknowledges once the player has rung n times.
func ackAfter(p *countingPlayer, n int32) Acknowledger {
	return AckFunc(func(ctx context.Context, m calendar.Match) error {
		for p.plays.Load() < n {
			if err := calendar.Sleep(ctx, time.Millisecond); err != nil {
				return err
			}
		}
		return nil
	})
}

func TestAlarm_RingsUntilAcknowledged(t *testing.T) {
	player := &countingPlayer{}
	notifier := &recordingNotifier{}
	alarm := NewAlarm(Options{Message: "Slot!", RepeatDelay: time.Millisecond},
		player, notifier, ackAfter(player, 3), nil)

	require.NoError(t, alarm.Ring(context.Background(), testMatch(t)))

	assert.GreaterOrEqual(t, player.plays.Load(), int32(3))
	require.GreaterOrEqual(t, notifier.count(), 3)
	assert.Equal(t, "Slot! 2025-05-15", notifier.bodies[0])
}

func TestAlarm_MissingPlayerDegrades(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	player := &countingPlayer{err: ErrNoPlayer}
	alarm := NewAlarm(Options{RepeatDelay: time.Millisecond},
		player, nil, ackAfter(player, 5), zap.New(core))

	require.NoError(t, alarm.Ring(context.Background(), testMatch(t)))
	assert.Equal(t, 1, logs.FilterMessage("Cannot play alarm sound, continuing silently").Len(),
		"missing player is reported once")
}

func TestAlarm_NotifierErrorsDoNotStopRinging(t *testing.T) {
	player := &countingPlayer{}
	notifier := &recordingNotifier{err: errors.New("no bus")}
	alarm := NewAlarm(Options{RepeatDelay: time.Millisecond},
		player, notifier, ackAfter(player, 3), nil)

	require.NoError(t, alarm.Ring(context.Background(), testMatch(t)))
	assert.GreaterOrEqual(t, notifier.count(), 3)
}

func TestAlarm_CancelledBeforeAck(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	player := &countingPlayer{}
	never := AckFunc(func(ctx context.Context, m calendar.Match) error {
		<-ctx.Done()
		return ctx.Err()
	})
	alarm := NewAlarm(Options{RepeatDelay: time.Millisecond}, player, nil, never, nil)

	go func() {
		for player.plays.Load() < 2 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	err := alarm.Ring(ctx, testMatch(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPromptAcknowledger_Enter(t *testing.T) {
	var out bytes.Buffer
	ack := NewPromptAcknowledger(strings.NewReader("\n"), &out, "Visa appointment available!")

	require.NoError(t, ack.Wait(context.Background(), testMatch(t)))
	assert.Contains(t, out.String(), "Visa appointment available!")
	assert.Contains(t, out.String(), "2025-05-15")
	assert.Contains(t, out.String(), "Press Enter")
}

func TestPromptAcknowledger_ClosedInputWaitsForContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ack := NewPromptAcknowledger(strings.NewReader(""), io.Discard, "alarm")
	err := ack.Wait(ctx, testMatch(t))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPromptAcknowledger_Cancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ack := NewPromptAcknowledger(r, io.Discard, "alarm")
	assert.ErrorIs(t, ack.Wait(ctx, testMatch(t)), context.Canceled)
}
