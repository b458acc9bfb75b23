// Package winsys abstracts the windowing system behind narrow interfaces so
// the coordinators can be exercised without a real display server.
package winsys

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by window operations the current backend cannot
// perform (for example always-on-top over CDP). Callers treat it as a no-op,
// not a failure.
var ErrUnsupported = errors.New("operation not supported by window backend")

// CreateOptions describes a window to create.
type CreateOptions struct {
	Title       string
	URL         string
	Bounds      Rect
	AlwaysOnTop bool
	Frameless   bool // custom titlebar: content starts TitlebarHeight below the top
}

// Driver creates windows and answers display queries.
type Driver interface {
	// CreateWindow creates a window and loads opts.URL into it. The window
	// starts hidden; callers Show it explicitly.
	CreateWindow(opts CreateOptions) (Window, error)
	// ActiveDisplay returns the bounds of the display the user is working
	// on, used to place floating windows.
	ActiveDisplay() (Rect, error)
	// Close tears down the backend and every window it created.
	Close() error
}

// Window is one managed window plus the document loaded inside it.
type Window interface {
	Show() error
	Hide() error
	Focus() error
	IsVisible() bool

	// SetAlwaysOnTop pins the window above others. Backends without the
	// capability return ErrUnsupported.
	SetAlwaysOnTop(on bool) error

	Bounds() (Rect, error)
	SetBounds(r Rect) error

	// SetZoom scales the document content. percent is 100 for natural size.
	SetZoom(percent int) error

	// Scroll position of the document, in CSS pixels from the top.
	ScrollTop() (float64, error)
	SetScrollTop(y float64) error
	// ViewportHeight is the visible document height; ContentHeight is the
	// full scrollable height.
	ViewportHeight() (float64, error)
	ContentHeight() (float64, error)

	// CaptureImage returns a PNG of the currently visible viewport.
	CaptureImage(ctx context.Context) ([]byte, error)

	// Eval runs a script in the document. Used for content-side effects
	// such as the print progress overlay.
	Eval(js string) error

	// OnBlur registers fn to run when the window loses focus. The returned
	// function removes the subscription.
	OnBlur(fn func()) (remove func(), err error)

	// Close destroys the window. Further calls on the handle fail.
	Close() error
}
