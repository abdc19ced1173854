package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Page is the watcher's view of the browser tab. Every wait is bounded; a
// zero timeout means the configured element timeout.
type Page struct {
	page   *rod.Page
	cfg    Config
	logger *zap.Logger
}

// Navigate loads url and waits for the load event.
func (p *Page) Navigate(ctx context.Context, url string) error {
	pg := p.page.Context(ctx).Timeout(p.cfg.navigationTimeout())
	defer pg.CancelTimeout()
	if err := pg.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := pg.WaitLoad(); err != nil {
		return fmt.Errorf("wait for %s to load: %w", url, err)
	}
	return nil
}

// Reload refreshes the current page.
func (p *Page) Reload(ctx context.Context) error {
	pg := p.page.Context(ctx).Timeout(p.cfg.navigationTimeout())
	defer pg.CancelTimeout()
	if err := pg.Reload(); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if err := pg.WaitLoad(); err != nil {
		return fmt.Errorf("wait for reload: %w", err)
	}
	return nil
}

// URL returns the address of the current document.
func (p *Page) URL() (string, error) {
	info, err := p.page.Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

// WaitURLChange polls until the page address differs from from.
func (p *Page) WaitURLChange(ctx context.Context, from string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout(timeout))
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if url, err := p.URL(); err == nil && url != from {
			return url, nil
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("url still %s: %w", from, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Element waits for the first element matching a CSS selector.
func (p *Page) Element(ctx context.Context, selector string, timeout time.Duration) (*rod.Element, error) {
	pg := p.page.Context(ctx).Timeout(p.timeout(timeout))
	defer pg.CancelTimeout()
	el, err := pg.Element(selector)
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", selector, err)
	}
	return el.CancelTimeout(), nil
}

// ElementX waits for the first element matching an XPath expression.
func (p *Page) ElementX(ctx context.Context, xpath string, timeout time.Duration) (*rod.Element, error) {
	pg := p.page.Context(ctx).Timeout(p.timeout(timeout))
	defer pg.CancelTimeout()
	el, err := pg.ElementX(xpath)
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", xpath, err)
	}
	return el.CancelTimeout(), nil
}

// ElementByText waits for an element matching selector whose text matches
// the JavaScript regular expression pattern.
func (p *Page) ElementByText(ctx context.Context, selector, pattern string, timeout time.Duration) (*rod.Element, error) {
	pg := p.page.Context(ctx).Timeout(p.timeout(timeout))
	defer pg.CancelTimeout()
	el, err := pg.ElementR(selector, pattern)
	if err != nil {
		return nil, fmt.Errorf("wait for %s matching %q: %w", selector, pattern, err)
	}
	return el.CancelTimeout(), nil
}

// Elements returns all elements currently matching selector without waiting.
func (p *Page) Elements(ctx context.Context, selector string) (rod.Elements, error) {
	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	return els, nil
}

// Find returns the first element matching selector if it is present right now.
func (p *Page) Find(ctx context.Context, selector string) (*rod.Element, bool, error) {
	has, el, err := p.page.Context(ctx).Has(selector)
	if err != nil {
		return nil, false, fmt.Errorf("query %s: %w", selector, err)
	}
	return el, has, nil
}

// Click waits for selector to become interactable and clicks it.
func (p *Page) Click(ctx context.Context, selector string, timeout time.Duration) error {
	el, err := p.Element(ctx, selector, timeout)
	if err != nil {
		return err
	}
	return ClickElement(ctx, el, p.timeout(timeout))
}

// Input waits for selector and types text into it.
func (p *Page) Input(ctx context.Context, selector, text string, timeout time.Duration) error {
	el, err := p.Element(ctx, selector, timeout)
	if err != nil {
		return err
	}
	bounded := el.Context(ctx).Timeout(p.timeout(timeout))
	defer bounded.CancelTimeout()
	if err := bounded.Input(text); err != nil {
		return fmt.Errorf("type into %s: %w", selector, err)
	}
	return nil
}

// ChildX waits for a node matching xpath relative to el.
func ChildX(ctx context.Context, el *rod.Element, xpath string, timeout time.Duration) (*rod.Element, error) {
	bounded := el.Context(ctx).Timeout(timeout)
	defer bounded.CancelTimeout()
	child, err := bounded.ElementX(xpath)
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", xpath, err)
	}
	return child.CancelTimeout(), nil
}

// ClickElement performs a real mouse click on el once it is interactable.
func ClickElement(ctx context.Context, el *rod.Element, timeout time.Duration) error {
	bounded := el.Context(ctx).Timeout(timeout)
	defer bounded.CancelTimeout()
	if err := bounded.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

// JSClick clicks el from script, for controls covered by overlays.
func JSClick(ctx context.Context, el *rod.Element) error {
	if _, err := el.Context(ctx).Eval(`() => this.click()`); err != nil {
		return fmt.Errorf("script click: %w", err)
	}
	return nil
}

// HasClass reports whether el carries the CSS class name.
func HasClass(ctx context.Context, el *rod.Element, name string) (bool, error) {
	res, err := el.Context(ctx).Eval(`(name) => this.classList.contains(name)`, name)
	if err != nil {
		return false, fmt.Errorf("read class list: %w", err)
	}
	return res.Value.Bool(), nil
}

func (p *Page) timeout(d time.Duration) time.Duration {
	if d <= 0 {
		return p.cfg.elementTimeout()
	}
	return d
}
