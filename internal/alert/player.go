package alert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ErrNoPlayer means no sound can be played: the file or every player binary
// is missing.
var ErrNoPlayer = errors.New("no audio player available")

// Player plays the alarm sound once, blocking until it finishes.
type Player interface {
	Play(ctx context.Context) error
}

// ExecPlayer plays a sound file with the first available command line player.
type ExecPlayer struct {
	file       string
	candidates []string

	lookPath func(string) (string, error)
	run      func(ctx context.Context, bin string, args ...string) error
}

// NewExecPlayer creates a player for file trying candidates in order.
func NewExecPlayer(file string, candidates []string) *ExecPlayer {
	return &ExecPlayer{
		file:       file,
		candidates: candidates,
		lookPath:   exec.LookPath,
		run: func(ctx context.Context, bin string, args ...string) error {
			return exec.CommandContext(ctx, bin, args...).Run()
		},
	}
}

// Resolve returns the player binary and absolute sound path that Play uses.
func (p *ExecPlayer) Resolve() (bin, file string, err error) {
	file, err = filepath.Abs(p.file)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrNoPlayer, err)
	}
	if _, err := os.Stat(file); err != nil {
		return "", "", fmt.Errorf("%w: sound file %s: %v", ErrNoPlayer, file, err)
	}
	for _, c := range p.candidates {
		if bin, err := p.lookPath(c); err == nil {
			return bin, file, nil
		}
	}
	return "", "", fmt.Errorf("%w: none of %v found", ErrNoPlayer, p.candidates)
}

// Play runs the player once.
func (p *ExecPlayer) Play(ctx context.Context) error {
	bin, file, err := p.Resolve()
	if err != nil {
		return err
	}
	if err := p.run(ctx, bin, file); err != nil {
		return fmt.Errorf("%s %s: %w", filepath.Base(bin), file, err)
	}
	return nil
}
