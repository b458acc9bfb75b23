package winsys

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
)

// FakeDriver is an in-memory Driver for tests and dry runs. It tracks every
// window it creates and lets tests script display geometry and document
// behavior.
type FakeDriver struct {
	mu      sync.Mutex
	Display Rect // returned by ActiveDisplay
	Windows []*FakeWindow
	closed  bool
}

// NewFakeDriver returns a fake driver with a 1920×1080 display.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{Display: Rect{Width: 1920, Height: 1080}}
}

func (d *FakeDriver) CreateWindow(opts CreateOptions) (Window, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, errors.New("driver closed")
	}
	w := &FakeWindow{
		Title:         opts.Title,
		URL:           opts.URL,
		bounds:        opts.Bounds,
		alwaysOnTop:   opts.AlwaysOnTop,
		zoom:          100,
		viewportH:     float64(opts.Bounds.Height),
		contentH:      float64(opts.Bounds.Height),
		SupportsOnTop: true,
		blurHandlers:  map[int]func(){},
	}
	if w.viewportH == 0 {
		w.viewportH = 600
		w.contentH = 600
	}
	d.Windows = append(d.Windows, w)
	return w, nil
}

func (d *FakeDriver) ActiveDisplay() (Rect, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Display, nil
}

func (d *FakeDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Created returns how many windows the driver has created so far.
func (d *FakeDriver) Created() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Windows)
}

// Last returns the most recently created window.
func (d *FakeDriver) Last() *FakeWindow {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Windows) == 0 {
		return nil
	}
	return d.Windows[len(d.Windows)-1]
}

// FakeWindow records window state transitions in memory.
type FakeWindow struct {
	mu sync.Mutex

	Title string
	URL   string

	visible     bool
	minimized   bool
	destroyed   bool
	focused     bool
	alwaysOnTop bool
	zoom        int
	bounds      Rect

	scrollTop float64
	viewportH float64
	contentH  float64

	// SupportsOnTop=false makes SetAlwaysOnTop return ErrUnsupported,
	// mimicking backends with the documented platform limitation.
	SupportsOnTop bool

	// CaptureErr, when set, fails the next CaptureImage call.
	CaptureErr error
	// CaptureDelay, when set, is invoked before each capture so tests can
	// block or cancel mid-iteration.
	CaptureDelay func(ctx context.Context) error

	Captures  int
	EvalCalls []string

	blurHandlers map[int]func()
	blurSeq      int
}

func (w *FakeWindow) Show() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.destroyed {
		return errors.New("window destroyed")
	}
	w.visible = true
	w.minimized = false
	w.focused = true
	return nil
}

func (w *FakeWindow) Hide() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.destroyed {
		return errors.New("window destroyed")
	}
	w.visible = false
	w.focused = false
	return nil
}

func (w *FakeWindow) Focus() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.destroyed {
		return errors.New("window destroyed")
	}
	w.focused = true
	return nil
}

func (w *FakeWindow) IsVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible && !w.minimized
}

// Minimize simulates the user minimizing the window from the OS.
func (w *FakeWindow) Minimize() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.minimized = true
}

// Restore simulates the user restoring a minimized window.
func (w *FakeWindow) Restore() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.minimized = false
}

func (w *FakeWindow) SetAlwaysOnTop(on bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.SupportsOnTop {
		return ErrUnsupported
	}
	w.alwaysOnTop = on
	return nil
}

// AlwaysOnTop reports the OS-level flag, surviving minimize/restore.
func (w *FakeWindow) AlwaysOnTop() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.alwaysOnTop
}

func (w *FakeWindow) Bounds() (Rect, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bounds, nil
}

func (w *FakeWindow) SetBounds(r Rect) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.bounds = r
	return nil
}

func (w *FakeWindow) SetZoom(percent int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.zoom = percent
	return nil
}

// Zoom returns the applied zoom percent.
func (w *FakeWindow) Zoom() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.zoom
}

func (w *FakeWindow) ScrollTop() (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scrollTop, nil
}

func (w *FakeWindow) SetScrollTop(y float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if y < 0 {
		y = 0
	}
	if max := w.contentH - w.viewportH; max >= 0 && y > max {
		y = max
	}
	w.scrollTop = y
	return nil
}

func (w *FakeWindow) ViewportHeight() (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewportH, nil
}

func (w *FakeWindow) ContentHeight() (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.contentH, nil
}

// SetDocument scripts the document geometry: viewport height and total
// scrollable height.
func (w *FakeWindow) SetDocument(viewportH, contentH float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.viewportH = viewportH
	w.contentH = contentH
}

func (w *FakeWindow) CaptureImage(ctx context.Context) ([]byte, error) {
	w.mu.Lock()
	delay := w.CaptureDelay
	captureErr := w.CaptureErr
	w.mu.Unlock()

	if delay != nil {
		if err := delay(ctx); err != nil {
			return nil, err
		}
	}
	if captureErr != nil {
		return nil, captureErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.Captures++
	n := w.Captures
	w.mu.Unlock()

	return fakePNG(n)
}

func (w *FakeWindow) Eval(js string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.destroyed {
		return errors.New("window destroyed")
	}
	w.EvalCalls = append(w.EvalCalls, js)
	return nil
}

func (w *FakeWindow) OnBlur(fn func()) (func(), error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.blurSeq++
	id := w.blurSeq
	w.blurHandlers[id] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.blurHandlers, id)
	}, nil
}

// Blur simulates the window losing focus, firing registered handlers.
func (w *FakeWindow) Blur() {
	w.mu.Lock()
	w.focused = false
	handlers := make([]func(), 0, len(w.blurHandlers))
	for _, fn := range w.blurHandlers {
		handlers = append(handlers, fn)
	}
	w.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}

// BlurHandlerCount reports how many blur subscriptions are installed.
func (w *FakeWindow) BlurHandlerCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.blurHandlers)
}

func (w *FakeWindow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.destroyed {
		return errors.New("window already destroyed")
	}
	w.destroyed = true
	w.visible = false
	return nil
}

// Destroyed reports whether Close was called.
func (w *FakeWindow) Destroyed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.destroyed
}

// fakePNG renders a small valid PNG so downstream consumers (the PDF
// composer in particular) receive decodable image data.
func fakePNG(seq int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	shade := uint8(seq * 16 % 256)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: shade, G: 128, B: 255 - shade, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode fake capture: %w", err)
	}
	return buf.Bytes(), nil
}
