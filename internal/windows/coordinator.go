// Package windows owns the lifecycle of the shell's named windows: the main
// window, the quick-chat floating overlay, and the options window.
package windows

import (
	"errors"
	"fmt"

	"gemini-desktop/internal/settings"
	"gemini-desktop/internal/winsys"
	"gemini-desktop/pkg/logger"
)

// Name identifies a managed window.
type Name string

const (
	Main      Name = "main"
	QuickChat Name = "quickChat"
	Options   Name = "options"
)

// State is the lifecycle state of a managed window.
type State int

const (
	Uncreated State = iota
	Created
	Visible
	Hidden
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uncreated:
		return "uncreated"
	case Created:
		return "created"
	case Visible:
		return "visible"
	case Hidden:
		return "hidden"
	case Destroyed:
		return "destroyed"
	}
	return "unknown"
}

// ErrUnknownWindow is returned for names outside the managed set.
var ErrUnknownWindow = errors.New("unknown window name")

// ErrContentLocked is returned for zoom and bounds changes while a capture
// job owns the window's content.
var ErrContentLocked = errors.New("window content is locked by an active capture")

// Zoom and size limits.
const (
	MinZoomPercent = 50
	MaxZoomPercent = 200
	ZoomStep       = 10

	MinWidth  = 300
	MinHeight = 500
)

// Default window sizes.
var (
	mainSize      = winsys.Rect{Width: 1024, Height: 700}
	quickChatSize = winsys.Rect{Width: 420, Height: 600}
	optionsSize   = winsys.Rect{Width: 640, Height: 560}
)

// Config tells the coordinator what each window loads.
type Config struct {
	AppURL       string // main window document
	QuickChatURL string // quick-chat overlay document
	OptionsURL   string // options screen document
}

// managed is one registry entry. Its mutex serializes show/hide/toggle per
// window so rapid repeated toggles cannot interleave.
type managed struct {
	mu         chan struct{} // 1-buffered; acquired for every transition
	win        winsys.Window
	state      State
	removeBlur func()

	// Desired flags, applied on creation and re-applied on show.
	alwaysOnTop bool
	zoom        int

	// Set while a capture job owns the content; zoom and bounds
	// changes are refused until it clears.
	contentLocked bool
}

func (m *managed) lock()   { m.mu <- struct{}{} }
func (m *managed) unlock() { <-m.mu }

// Coordinator is the explicit window registry. All lookups go through it;
// there is no ambient global window table.
type Coordinator struct {
	driver winsys.Driver
	store  *settings.Store
	cfg    Config
	log    *logger.Logger

	entries map[Name]*managed
}

// NewCoordinator builds the registry and seeds per-window state from the
// settings store.
func NewCoordinator(driver winsys.Driver, store *settings.Store, cfg Config, log *logger.Logger) *Coordinator {
	c := &Coordinator{
		driver:  driver,
		store:   store,
		cfg:     cfg,
		log:     log,
		entries: make(map[Name]*managed),
	}
	for _, name := range []Name{Main, QuickChat, Options} {
		c.entries[name] = &managed{
			mu:   make(chan struct{}, 1),
			zoom: 100,
		}
	}

	// Persisted preferences apply to the main window.
	main := c.entries[Main]
	main.alwaysOnTop = store.GetBool(settings.KeyAlwaysOnTop, false)
	main.zoom = clampZoom(store.GetInt(settings.KeyZoomLevel, 100))

	return c
}

// Show makes the named window visible and focused, creating it on first
// demand. A quick-chat window is re-centered on the active display on every
// show, even when it already exists.
func (c *Coordinator) Show(name Name) error {
	m, ok := c.entries[name]
	if !ok {
		return ErrUnknownWindow
	}
	m.lock()
	defer m.unlock()
	return c.showLocked(name, m)
}

// Hide makes the named window invisible. Main and options windows are kept
// alive hidden; the quick-chat overlay is destroyed to free it. Hiding an
// already-hidden window is a no-op.
func (c *Coordinator) Hide(name Name) error {
	m, ok := c.entries[name]
	if !ok {
		return ErrUnknownWindow
	}
	m.lock()
	defer m.unlock()
	return c.hideLocked(name, m)
}

// Toggle shows a hidden (or uncreated) window and hides a visible one. The
// per-window lock makes consecutive toggles strictly sequential.
func (c *Coordinator) Toggle(name Name) error {
	m, ok := c.entries[name]
	if !ok {
		return ErrUnknownWindow
	}
	m.lock()
	defer m.unlock()

	if m.state == Visible && m.win != nil && m.win.IsVisible() {
		return c.hideLocked(name, m)
	}
	return c.showLocked(name, m)
}

func (c *Coordinator) showLocked(name Name, m *managed) error {
	fresh := false
	if m.win == nil || m.state == Uncreated || m.state == Destroyed {
		if err := c.createLocked(name, m); err != nil {
			return err
		}
		fresh = true
	}

	// The quick-chat overlay follows the user: recompute its centered
	// placement on the active display on every show.
	if name == QuickChat && !fresh {
		if err := c.centerQuickChat(m); err != nil {
			c.log.Warn("Failed to re-center quick chat", "error", err)
		}
	}

	if err := m.win.Show(); err != nil {
		return fmt.Errorf("failed to show %s window: %w", name, err)
	}
	if err := m.win.Focus(); err != nil {
		c.log.Warn("Failed to focus window", "window", name, "error", err)
	}
	m.state = Visible

	if fresh && name == QuickChat {
		remove, err := m.win.OnBlur(func() {
			if err := c.Hide(QuickChat); err != nil {
				c.log.Warn("Failed to hide quick chat on blur", "error", err)
			}
		})
		if err != nil {
			c.log.Warn("Failed to install quick chat blur listener", "error", err)
		} else {
			m.removeBlur = remove
		}
	}

	c.log.Debug("Window shown", "window", name, "fresh", fresh)
	return nil
}

func (c *Coordinator) hideLocked(name Name, m *managed) error {
	if m.win == nil || m.state == Uncreated || m.state == Destroyed {
		return nil // idempotent
	}

	if name == QuickChat {
		return c.destroyLocked(name, m)
	}

	if m.state == Hidden {
		return nil
	}
	if err := m.win.Hide(); err != nil {
		return fmt.Errorf("failed to hide %s window: %w", name, err)
	}
	m.state = Hidden
	c.log.Debug("Window hidden", "window", name)
	return nil
}

func (c *Coordinator) destroyLocked(name Name, m *managed) error {
	if name == Main {
		// The main window is never destroyed while the process lives;
		// background hotkeys and the tray depend on it.
		return c.hideLocked(name, m)
	}
	if m.removeBlur != nil {
		m.removeBlur()
		m.removeBlur = nil
	}
	if err := m.win.Close(); err != nil {
		c.log.Warn("Failed to destroy window", "window", name, "error", err)
	}
	m.win = nil
	m.state = Uncreated // next show performs full recreation
	c.log.Debug("Window destroyed", "window", name)
	return nil
}

func (c *Coordinator) createLocked(name Name, m *managed) error {
	opts := winsys.CreateOptions{AlwaysOnTop: m.alwaysOnTop}

	switch name {
	case Main:
		opts.Title = "Gemini"
		opts.URL = c.cfg.AppURL
		opts.Bounds = mainSize
		opts.Frameless = true
	case QuickChat:
		opts.Title = "Quick Chat"
		opts.URL = c.cfg.QuickChatURL
		display, err := c.driver.ActiveDisplay()
		if err != nil {
			c.log.Warn("Failed to query active display, using default placement", "error", err)
			opts.Bounds = quickChatSize
		} else {
			opts.Bounds = winsys.CenterOn(display, quickChatSize.Width, quickChatSize.Height)
		}
	case Options:
		opts.Title = "Options"
		opts.URL = c.cfg.OptionsURL
		opts.Bounds = optionsSize
	default:
		return ErrUnknownWindow
	}

	win, err := c.driver.CreateWindow(opts)
	if err != nil {
		return fmt.Errorf("failed to create %s window: %w", name, err)
	}
	m.win = win
	m.state = Created

	if m.zoom != 100 {
		if err := win.SetZoom(m.zoom); err != nil {
			c.log.Warn("Failed to apply persisted zoom", "window", name, "error", err)
		}
	}
	if m.alwaysOnTop {
		c.applyAlwaysOnTop(name, win, true)
	}

	c.log.Info("Window created", "window", name, "bounds", opts.Bounds)
	return nil
}

func (c *Coordinator) centerQuickChat(m *managed) error {
	display, err := c.driver.ActiveDisplay()
	if err != nil {
		return err
	}
	return m.win.SetBounds(winsys.CenterOn(display, quickChatSize.Width, quickChatSize.Height))
}

// SetAlwaysOnTop updates the OS-level flag and persists it. A backend that
// cannot express the flag (ErrUnsupported) is a documented limitation and
// is logged, not failed.
func (c *Coordinator) SetAlwaysOnTop(name Name, on bool) error {
	m, ok := c.entries[name]
	if !ok {
		return ErrUnknownWindow
	}
	m.lock()
	defer m.unlock()

	m.alwaysOnTop = on
	if m.win != nil && m.state != Destroyed {
		c.applyAlwaysOnTop(name, m.win, on)
	}

	if name == Main {
		if err := c.store.SetBool(settings.KeyAlwaysOnTop, on); err != nil {
			return fmt.Errorf("failed to persist always-on-top: %w", err)
		}
	}
	c.log.Info("Always-on-top changed", "window", name, "enabled", on)
	return nil
}

func (c *Coordinator) applyAlwaysOnTop(name Name, win winsys.Window, on bool) {
	if err := win.SetAlwaysOnTop(on); err != nil {
		if errors.Is(err, winsys.ErrUnsupported) {
			c.log.Debug("Always-on-top not supported by backend", "window", name)
			return
		}
		c.log.Warn("Failed to set always-on-top", "window", name, "error", err)
	}
}

// AlwaysOnTop reports the desired flag for the named window.
func (c *Coordinator) AlwaysOnTop(name Name) bool {
	m, ok := c.entries[name]
	if !ok {
		return false
	}
	m.lock()
	defer m.unlock()
	return m.alwaysOnTop
}

// SetZoom clamps percent to the supported range in discrete steps, applies
// it to the window content, and persists the main window's level.
func (c *Coordinator) SetZoom(name Name, percent int) error {
	m, ok := c.entries[name]
	if !ok {
		return ErrUnknownWindow
	}
	m.lock()
	defer m.unlock()
	if m.contentLocked {
		return ErrContentLocked
	}

	percent = clampZoom(percent)
	m.zoom = percent
	if m.win != nil && m.state != Destroyed {
		if err := m.win.SetZoom(percent); err != nil {
			return fmt.Errorf("failed to apply zoom: %w", err)
		}
	}
	if name == Main {
		if err := c.store.SetInt(settings.KeyZoomLevel, percent); err != nil {
			return fmt.Errorf("failed to persist zoom: %w", err)
		}
	}
	c.log.Debug("Zoom changed", "window", name, "percent", percent)
	return nil
}

// Zoom reports the current zoom percent for the named window.
func (c *Coordinator) Zoom(name Name) int {
	m, ok := c.entries[name]
	if !ok {
		return 100
	}
	m.lock()
	defer m.unlock()
	return m.zoom
}

// Bounds returns the window's current position and size.
func (c *Coordinator) Bounds(name Name) (winsys.Rect, error) {
	m, ok := c.entries[name]
	if !ok {
		return winsys.Rect{}, ErrUnknownWindow
	}
	m.lock()
	defer m.unlock()
	if m.win == nil {
		return winsys.Rect{}, fmt.Errorf("%s window not created", name)
	}
	return m.win.Bounds()
}

// SetBounds moves/resizes the window, clamping to the minimum size.
func (c *Coordinator) SetBounds(name Name, r winsys.Rect) error {
	m, ok := c.entries[name]
	if !ok {
		return ErrUnknownWindow
	}
	m.lock()
	defer m.unlock()
	if m.contentLocked {
		return ErrContentLocked
	}
	if m.win == nil {
		return fmt.Errorf("%s window not created", name)
	}
	if r.Width < MinWidth {
		r.Width = MinWidth
	}
	if r.Height < MinHeight {
		r.Height = MinHeight
	}
	return m.win.SetBounds(r)
}

// WindowState reports the lifecycle state for the named window.
func (c *Coordinator) WindowState(name Name) State {
	m, ok := c.entries[name]
	if !ok {
		return Uncreated
	}
	m.lock()
	defer m.unlock()
	return m.state
}

// Window exposes the underlying handle, creating the window on demand. The
// print coordinator uses it to reach the main document.
func (c *Coordinator) Window(name Name) (winsys.Window, error) {
	m, ok := c.entries[name]
	if !ok {
		return nil, ErrUnknownWindow
	}
	m.lock()
	defer m.unlock()
	if m.win == nil || m.state == Uncreated || m.state == Destroyed {
		if err := c.createLocked(name, m); err != nil {
			return nil, err
		}
	}
	return m.win, nil
}

/// ContentGuard marks a window's content as owned by a capture job.
// While held, SetZoom and SetBounds on that window fail with
// ErrContentLocked; show, hide, and toggle stay available.
type ContentGuard struct {
	m *managed
}

func (g ContentGuard) Lock() {
	g.m.lock()
	g.m.contentLocked = true
	g.m.unlock()
}

func (g ContentGuard) Unlock() {
	g.m.lock()
	g.m.contentLocked = false
	g.m.unlock()
}

// ContentGuard returns the guard for the named window.
func (c *Coordinator) ContentGuard(name Name) (ContentGuard, error) {
	m, ok := c.entries[name]
	if !ok {
		return ContentGuard{}, ErrUnknownWindow
	}
	return ContentGuard{m: m}, nil
}

// HandleAlwaysOnTop is the hotkey handler: it flips the main window's flag.
func (c *Coordinator) HandleAlwaysOnTop() {
	on := !c.AlwaysOnTop(Main)
	if err := c.SetAlwaysOnTop(Main, on); err != nil {
		c.log.Error("Always-on-top toggle failed", err)
	}
}

// HandleBossKey is the hotkey handler: it hides every visible window at once.
func (c *Coordinator) HandleBossKey() {
	for _, name := range []Name{QuickChat, Options, Main} {
		if err := c.Hide(name); err != nil {
			c.log.Error("Boss key hide failed", err, "window", name)
		}
	}
}

// HandleQuickChat is the hotkey handler: it toggles the quick-chat overlay.
func (c *Coordinator) HandleQuickChat() {
	if err := c.Toggle(QuickChat); err != nil {
		c.log.Error("Quick chat toggle failed", err)
	}
}

func clampZoom(percent int) int {
	if percent < MinZoomPercent {
		return MinZoomPercent
	}
	if percent > MaxZoomPercent {
		return MaxZoomPercent
	}
	// Snap to the nearest discrete step.
	return (percent + ZoomStep/2) / ZoomStep * ZoomStep
}
