// Package browser drives a single Chrome page through go-rod. It owns the
// browser process for the lifetime of the watcher and exposes the handful of
// page operations the portal workflow needs, each bounded by a timeout.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"
)

// ErrNotStarted is returned when the page is requested before Start.
var ErrNotStarted = errors.New("browser not started")

// Config holds browser configuration.
type Config struct {
	Bin               string
	DebuggerURL       string
	Headless          bool
	Stealth           bool
	Flags             []string
	ViewportWidth     int
	ViewportHeight    int
	ElementTimeout    time.Duration
	NavigationTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Stealth:           true,
		ViewportWidth:     1920,
		ViewportHeight:    1080,
		ElementTimeout:    10 * time.Second,
		NavigationTimeout: 30 * time.Second,
	}
}

func (c Config) elementTimeout() time.Duration {
	if c.ElementTimeout <= 0 {
		return 10 * time.Second
	}
	return c.ElementTimeout
}

func (c Config) navigationTimeout() time.Duration {
	if c.NavigationTimeout <= 0 {
		return 30 * time.Second
	}
	return c.NavigationTimeout
}

// SessionManager owns the Chrome instance and the one page the watcher uses.
type SessionManager struct {
	cfg        Config
	logger     *zap.Logger
	mu         sync.Mutex
	browser    *rod.Browser
	page       *Page
	controlURL string
}

// NewSessionManager creates a new session manager.
func NewSessionManager(cfg Config, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{cfg: cfg, logger: logger}
}

// Start connects to an existing Chrome or launches a new one. Calling it on a
// healthy session is a no-op.
func (m *SessionManager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return nil
		}
		m.logger.Warn("Stale browser connection detected, reconnecting")
		_ = m.browser.Close()
		m.browser = nil
		m.page = nil
		m.controlURL = ""
	}

	controlURL := m.cfg.DebuggerURL
	if controlURL == "" {
		l := launcher.New().Context(ctx).Headless(m.cfg.Headless)
		if m.cfg.Bin != "" {
			l = l.Bin(m.cfg.Bin)
		}
		for _, raw := range m.cfg.Flags {
			name, val, hasVal := splitFlag(raw)
			if name == "" {
				continue
			}
			if hasVal {
				l = l.Set(name, val)
			} else {
				l = l.Set(name)
			}
		}
		m.logger.Info("Launching Chrome browser", zap.Bool("headless", m.cfg.Headless), zap.String("bin", m.cfg.Bin))
		url, err := l.Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = url
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	m.browser = b
	m.controlURL = controlURL
	m.logger.Debug("Browser connected", zap.String("control_url", controlURL))
	return nil
}

// ControlURL returns the WebSocket debugger URL.
func (m *SessionManager) ControlURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.controlURL
}

// Page returns the session page, opening it on first use.
func (m *SessionManager) Page(ctx context.Context) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser == nil {
		return nil, ErrNotStarted
	}
	if m.page != nil {
		return m.page, nil
	}

	var (
		rp  *rod.Page
		err error
	)
	if m.cfg.Stealth {
		rp, err = stealth.Page(m.browser)
	} else {
		rp, err = m.browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	if m.cfg.Headless {
		if err := (proto.EmulationSetDeviceMetricsOverride{
			Width:             m.cfg.ViewportWidth,
			Height:            m.cfg.ViewportHeight,
			DeviceScaleFactor: 1.0,
		}).Call(rp); err != nil {
			m.logger.Warn("Failed to set viewport", zap.Error(err))
		}
	}

	m.page = &Page{page: rp, cfg: m.cfg, logger: m.logger}
	return m.page, nil
}

// Shutdown closes the page and the browser.
func (m *SessionManager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.page != nil {
		_ = m.page.page.Close()
		m.page = nil
	}

	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	m.controlURL = ""
	m.logger.Info("Browser closed")
	return err
}

// splitFlag turns "--name=value" into its parts.
func splitFlag(raw string) (flags.Flag, string, bool) {
	name, val, hasVal := strings.Cut(strings.TrimLeft(strings.TrimSpace(raw), "-"), "=")
	return flags.Flag(name), val, hasVal
}
