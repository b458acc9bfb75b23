package winsys

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"gemini-desktop/pkg/logger"
)

// CDPConfig configures the Chromium-backed driver.
type CDPConfig struct {
	// RemoteURL is the WebSocket URL of an already-running browser.
	// Empty = launch a local one.
	RemoteURL string
	Logger    *logger.Logger
}

// CDPDriver drives real windows through the Chrome DevTools Protocol. Each
// managed window is a dedicated browser window whose document is the
// embedded web application.
type CDPDriver struct {
	cfg     CDPConfig
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	log     *logger.Logger
}

// NewCDPDriver launches (or attaches to) the browser backend.
func NewCDPDriver(cfg CDPConfig) (*CDPDriver, error) {
	log := cfg.Logger

	wsURL := cfg.RemoteURL
	var lnch *launcher.Launcher
	if wsURL == "" {
		lnch = launcher.New().Headless(false)
		u, err := lnch.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser backend: %w", err)
		}
		wsURL = u
		log.Info("Launched browser backend", "url", wsURL)
	} else {
		log.Info("Attaching to browser backend", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser backend: %w", err)
	}

	return &CDPDriver{cfg: cfg, browser: b, lnch: lnch, log: log}, nil
}

// CreateWindow opens a new browser window loading opts.URL.
func (d *CDPDriver) CreateWindow(opts CreateOptions) (Window, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	page, err := d.browser.Page(proto.TargetCreateTarget{
		URL:       opts.URL,
		NewWindow: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	w := &cdpWindow{page: page, log: d.log}

	if opts.Bounds != (Rect{}) {
		if err := w.SetBounds(opts.Bounds); err != nil {
			d.log.Warn("Failed to apply initial bounds", "error", err)
		}
	}

	if opts.Frameless {
		// The shell draws its own titlebar, so push the document content
		// below it.
		inset := ContentBounds(opts.Bounds.Width, opts.Bounds.Height, 1.0, TitlebarHeight)
		if err := w.Eval(fmt.Sprintf(
			`() => { document.documentElement.style.paddingTop = '%dpx' }`, inset.Y)); err != nil {
			d.log.Warn("Failed to inset content below titlebar", "error", err)
		}
	}

	if opts.AlwaysOnTop {
		if err := w.SetAlwaysOnTop(true); err != nil && err != ErrUnsupported {
			d.log.Warn("Failed to apply always-on-top", "error", err)
		}
	}

	d.log.Debug("Window created", "title", opts.Title, "url", opts.URL)
	return w, nil
}

// ActiveDisplay reports the bounds of the display under the most recently
// focused window. CDP exposes no multi-display query, so this falls back to
// the screen dimensions seen by the main document.
func (d *CDPDriver) ActiveDisplay() (Rect, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	pages, err := d.browser.Pages()
	if err != nil || len(pages) == 0 {
		return Rect{}, fmt.Errorf("no window available to query display: %w", err)
	}

	res, err := pages[0].Eval(`() => [window.screen.availWidth, window.screen.availHeight]`)
	if err != nil {
		return Rect{}, fmt.Errorf("failed to query display bounds: %w", err)
	}
	arr := res.Value.Arr()
	if len(arr) != 2 {
		return Rect{}, fmt.Errorf("unexpected display bounds payload: %v", res.Value)
	}
	return Rect{Width: int(arr[0].Num()), Height: int(arr[1].Num())}, nil
}

// Close shuts down the browser backend.
func (d *CDPDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.browser.Close()
	if d.lnch != nil {
		d.lnch.Cleanup()
	}
	return err
}

// cdpWindow implements Window on top of a rod page.
type cdpWindow struct {
	page    *rod.Page
	log     *logger.Logger
	visible bool
	mu      sync.Mutex
}

func (w *cdpWindow) Show() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.page.SetWindow(&proto.BrowserBounds{
		WindowState: proto.BrowserWindowStateNormal,
	}); err != nil {
		return fmt.Errorf("failed to restore window: %w", err)
	}
	if _, err := w.page.Activate(); err != nil {
		return fmt.Errorf("failed to activate window: %w", err)
	}
	w.visible = true
	return nil
}

func (w *cdpWindow) Hide() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.visible {
		return nil
	}
	if err := w.page.SetWindow(&proto.BrowserBounds{
		WindowState: proto.BrowserWindowStateMinimized,
	}); err != nil {
		return fmt.Errorf("failed to minimize window: %w", err)
	}
	w.visible = false
	return nil
}

func (w *cdpWindow) Focus() error {
	if _, err := w.page.Activate(); err != nil {
		return fmt.Errorf("failed to focus window: %w", err)
	}
	return nil
}

func (w *cdpWindow) IsVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

/// SetAlwaysOnTop is not expressible over CDP: the protocol has no window
// layering flag. Callers treat ErrUnsupported as a documented no-op.
func (w *cdpWindow) SetAlwaysOnTop(on bool) error {
	return ErrUnsupported
}

func (w *cdpWindow) Bounds() (Rect, error) {
	b, err := w.page.GetWindow()
	if err != nil {
		return Rect{}, fmt.Errorf("failed to read window bounds: %w", err)
	}
	// The protocol reports bounds as optional fields.
	return Rect{
		X:      intValue(b.Left),
		Y:      intValue(b.Top),
		Width:  intValue(b.Width),
		Height: intValue(b.Height),
	}, nil
}

func (w *cdpWindow) SetBounds(r Rect) error {
	left, top, width, height := r.X, r.Y, r.Width, r.Height
	if err := w.page.SetWindow(&proto.BrowserBounds{
		Left:        &left,
		Top:         &top,
		Width:       &width,
		Height:      &height,
		WindowState: proto.BrowserWindowStateNormal,
	}); err != nil {
		return fmt.Errorf("failed to set window bounds: %w", err)
	}
	return nil
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func (w *cdpWindow) SetZoom(percent int) error {
	_, err := w.page.Eval(`(pct) => { document.documentElement.style.zoom = pct + '%' }`, percent)
	if err != nil {
		return fmt.Errorf("failed to set zoom: %w", err)
	}
	return nil
}

func (w *cdpWindow) ScrollTop() (float64, error) {
	res, err := w.page.Eval(`() => window.scrollY`)
	if err != nil {
		return 0, fmt.Errorf("failed to read scroll position: %w", err)
	}
	return res.Value.Num(), nil
}

func (w *cdpWindow) SetScrollTop(y float64) error {
	if _, err := w.page.Eval(`(y) => window.scrollTo(0, y)`, y); err != nil {
		return fmt.Errorf("failed to set scroll position: %w", err)
	}
	return nil
}

func (w *cdpWindow) ViewportHeight() (float64, error) {
	res, err := w.page.Eval(`() => window.innerHeight`)
	if err != nil {
		return 0, fmt.Errorf("failed to read viewport height: %w", err)
	}
	return res.Value.Num(), nil
}

func (w *cdpWindow) ContentHeight() (float64, error) {
	res, err := w.page.Eval(`() => document.documentElement.scrollHeight`)
	if err != nil {
		return 0, fmt.Errorf("failed to read content height: %w", err)
	}
	return res.Value.Num(), nil
}

func (w *cdpWindow) CaptureImage(ctx context.Context) ([]byte, error) {
	data, err := w.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to capture viewport: %w", err)
	}
	return data, nil
}

func (w *cdpWindow) Eval(js string) error {
	if _, err := w.page.Eval(js); err != nil {
		return fmt.Errorf("script evaluation failed: %w", err)
	}
	return nil
}

func (w *cdpWindow) OnBlur(fn func()) (func(), error) {
	stop, err := w.page.Expose("__geminiShellBlur", func(gson.JSON) (interface{}, error) {
		fn()
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to expose blur hook: %w", err)
	}

	if _, err := w.page.Eval(
		`() => window.addEventListener('blur', () => window.__geminiShellBlur())`); err != nil {
		_ = stop()
		return nil, fmt.Errorf("failed to install blur listener: %w", err)
	}

	return func() {
		if err := stop(); err != nil {
			w.log.Debug("Failed to remove blur hook", "error", err)
		}
	}, nil
}

func (w *cdpWindow) Close() error {
	if err := w.page.Close(); err != nil {
		return fmt.Errorf("failed to close window: %w", err)
	}
	return nil
}
