package alert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nikoksr/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnce(t *testing.T) {
	rec := &recordingNotifier{}
	n := Once(rec)

	require.NoError(t, n.Notify(context.Background(), "t", "first"))
	require.NoError(t, n.Notify(context.Background(), "t", "second"))
	assert.Equal(t, []string{"first"}, rec.bodies)
}

func TestMulti_JoinsErrors(t *testing.T) {
	boom := errors.New("smtp down")
	ok := &recordingNotifier{}
	bad := &recordingNotifier{err: boom}

	err := Multi{bad, ok}.Notify(context.Background(), "t", "b")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, ok.count(), "later notifiers still run")
}

type fakeService struct {
	subject, message string
}

func (s *fakeService) Send(ctx context.Context, subject, message string) error {
	s.subject, s.message = subject, message
	return nil
}

func TestMailNotifier_SendsThroughServices(t *testing.T) {
	svc := &fakeService{}
	ntf := notify.New()
	ntf.UseServices(svc)
	m := &MailNotifier{ntf: ntf}

	require.NoError(t, m.Notify(context.Background(), "visawatch", "Slot 2025-05-15"))
	assert.Equal(t, "visawatch", svc.subject)
	assert.Equal(t, "Slot 2025-05-15", svc.message)
}

func TestNewMailNotifier(t *testing.T) {
	m := NewMailNotifier(MailConfig{
		Host:      "smtp.example.com",
		Port:      "587",
		Username:  "me",
		Password:  "secret",
		Sender:    "me@example.com",
		Receivers: []string{"you@example.com"},
	})
	assert.NotNil(t, m.ntf)
}

func TestExecPlayer(t *testing.T) {
	dir := t.TempDir()
	sound := filepath.Join(dir, "beep.wav")
	require.NoError(t, os.WriteFile(sound, []byte("RIFF"), 0o644))

	t.Run("missing file", func(t *testing.T) {
		p := NewExecPlayer(filepath.Join(dir, "nope.wav"), []string{"paplay"})
		assert.ErrorIs(t, p.Play(context.Background()), ErrNoPlayer)
	})

	t.Run("no player binary", func(t *testing.T) {
		p := NewExecPlayer(sound, []string{"paplay", "aplay"})
		p.lookPath = func(string) (string, error) { return "", errors.New("not found") }
		assert.ErrorIs(t, p.Play(context.Background()), ErrNoPlayer)
	})

	t.Run("first available player wins", func(t *testing.T) {
		var ran []string
		p := NewExecPlayer(sound, []string{"paplay", "aplay"})
		p.lookPath = func(name string) (string, error) {
			if name == "aplay" {
				return "/usr/bin/aplay", nil
			}
			return "", errors.New("not found")
		}
		p.run = func(ctx context.Context, bin string, args ...string) error {
			ran = append([]string{bin}, args...)
			return nil
		}

		require.NoError(t, p.Play(context.Background()))
		assert.Equal(t, []string{"/usr/bin/aplay", sound}, ran)
	})

	t.Run("player failure", func(t *testing.T) {
		p := NewExecPlayer(sound, []string{"paplay"})
		p.lookPath = func(string) (string, error) { return "/usr/bin/paplay", nil }
		p.run = func(context.Context, string, ...string) error { return errors.New("exit status 1") }

		err := p.Play(context.Background())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoPlayer)
	})
}
