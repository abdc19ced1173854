package alert

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/nikoksr/notify"
	"github.com/nikoksr/notify/service/mail"
)

// Notifier delivers an alert message.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

const (
	notificationsBus   = "org.freedesktop.Notifications"
	notificationsPath  = dbus.ObjectPath("/org/freedesktop/Notifications")
	notificationsIface = "org.freedesktop.Notifications"
)

// DBusNotifier shows a desktop notification through the freedesktop
// notification service, replacing its own previous bubble on every ring.
// Without a session bus it falls back to notify-send.
type DBusNotifier struct {
	appName string

	mu        sync.Mutex
	replaceID uint32
}

// NewDBusNotifier creates a desktop notifier.
func NewDBusNotifier(appName string) *DBusNotifier {
	return &DBusNotifier{appName: appName}
}

// Notify shows title and body as a critical notification.
func (n *DBusNotifier) Notify(ctx context.Context, title, body string) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return notifySend(ctx, title, body)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	obj := conn.Object(notificationsBus, notificationsPath)
	call := obj.CallWithContext(ctx, notificationsIface+".Notify", 0,
		n.appName,
		n.replaceID,
		"dialog-warning",
		title,
		body,
		[]string{},
		map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(2))},
		int32(-1),
	)
	if call.Err != nil {
		if fallbackErr := notifySend(ctx, title, body); fallbackErr != nil {
			return fmt.Errorf("dbus notify: %w (notify-send: %v)", call.Err, fallbackErr)
		}
		return nil
	}
	if err := call.Store(&n.replaceID); err != nil {
		return fmt.Errorf("dbus notify reply: %w", err)
	}
	return nil
}

func notifySend(ctx context.Context, title, body string) error {
	bin, err := exec.LookPath("notify-send")
	if err != nil {
		return fmt.Errorf("no session bus and notify-send not found: %w", err)
	}
	return exec.CommandContext(ctx, bin, "--urgency=critical", title, body).Run()
}

// MailConfig configures the SMTP alert.
type MailConfig struct {
	Host      string
	Port      string
	Username  string
	Password  string
	Sender    string
	Receivers []string
}

// MailNotifier sends the alert by email through nikoksr/notify.
type MailNotifier struct {
	ntf *notify.Notify
}

// NewMailNotifier builds an SMTP notifier.
func NewMailNotifier(cfg MailConfig) *MailNotifier {
	svc := mail.New(cfg.Sender, cfg.Host+":"+cfg.Port)
	if cfg.Username != "" {
		svc.AuthenticateSMTP("", cfg.Username, cfg.Password, cfg.Host)
	}
	svc.AddReceivers(cfg.Receivers...)

	ntf := notify.New()
	ntf.UseServices(svc)
	return &MailNotifier{ntf: ntf}
}

// Notify sends one email.
func (m *MailNotifier) Notify(ctx context.Context, title, body string) error {
	if err := m.ntf.Send(ctx, title, body); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}
	return nil
}

// Once delivers through n only on the first call; later calls are no-ops.
func Once(n Notifier) Notifier {
	return &onceNotifier{next: n}
}

type onceNotifier struct {
	next Notifier
	once sync.Once
	err  error
}

func (o *onceNotifier) Notify(ctx context.Context, title, body string) error {
	o.once.Do(func() { o.err = o.next.Notify(ctx, title, body) })
	return o.err
}

// Multi delivers through every notifier and joins their errors.
type Multi []Notifier

// Notify calls each notifier in turn.
func (m Multi) Notify(ctx context.Context, title, body string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, title, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
