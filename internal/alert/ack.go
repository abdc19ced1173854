package alert

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"visawatch/internal/calendar"

	"github.com/charmbracelet/lipgloss"
)

// Acknowledger blocks until a human confirms the alarm.
type Acknowledger interface {
	Wait(ctx context.Context, m calendar.Match) error
}

// AckFunc adapts a function to Acknowledger.
type AckFunc func(ctx context.Context, m calendar.Match) error

// Wait calls f.
func (f AckFunc) Wait(ctx context.Context, m calendar.Match) error {
	return f(ctx, m)
}

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#D7263D")).
			Padding(1, 4)
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0"))
)

// Banner renders the terminal announcement for m.
func Banner(message string, m calendar.Match) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		bannerStyle.Render(message),
		detailStyle.Render(fmt.Sprintf("Available: %s (deadline %s)", m.Date, m.Deadline)),
	)
}

// PromptAcknowledger prints a banner and waits for Enter.
type PromptAcknowledger struct {
	in      io.Reader
	out     io.Writer
	message string
}

// NewPromptAcknowledger reads confirmations from in and prints to out.
func NewPromptAcknowledger(in io.Reader, out io.Writer, message string) *PromptAcknowledger {
	return &PromptAcknowledger{in: in, out: out, message: message}
}

// Wait returns once a line is read. When the input is closed nobody can
// confirm, so it keeps waiting until ctx is done.
func (a *PromptAcknowledger) Wait(ctx context.Context, m calendar.Match) error {
	fmt.Fprintln(a.out, Banner(a.message, m))
	fmt.Fprint(a.out, "Press Enter to stop the alarm and exit... ")

	line := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(a.in).ReadString('\n')
		line <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-line:
		if err == nil {
			return nil
		}
		if !errors.Is(err, io.EOF) {
			return fmt.Errorf("read acknowledgement: %w", err)
		}
	}

	<-ctx.Done()
	return ctx.Err()
}
