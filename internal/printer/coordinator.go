// Package printer runs the capture-to-PDF workflow: screenshot the document
// viewport by viewport, stitch the segments into a multi-page PDF, and put
// the window back the way it was found.
package printer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"gemini-desktop/internal/winsys"
	"gemini-desktop/pkg/logger"
)

// Status is the print job state machine:
// idle → capturing → composing → saving → {done | cancelled | failed},
// returning to idle on every terminal state.
type Status int

const (
	Idle Status = iota
	Capturing
	Composing
	Saving
	Done
	Cancelled
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	case Composing:
		return "composing"
	case Saving:
		return "saving"
	case Done:
		return "done"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	}
	return "unknown"
}

var (
	// ErrBusy means a job is already running. Only one print job may be
	// non-idle at a time, system-wide.
	ErrBusy = errors.New("a print job is already in progress")
	// ErrCancelled is the non-error terminal state: the user backed out.
	ErrCancelled = errors.New("print job cancelled")
	// ErrCaptureBound means the document kept growing past the iteration
	// limit (live-updating content) and the job was abandoned.
	ErrCaptureBound = errors.New("capture iteration bound exceeded")
)

const (
	// maxCaptureIterations bounds the scroll loop so content that never
	// stops growing cannot hang the job.
	maxCaptureIterations = 50
	// captureTimeout bounds a single screenshot call.
	captureTimeout = 10 * time.Second
)

// SaveDialog prompts the user for a destination. ok=false means the user
// cancelled, which is a terminal state distinct from failure.
type SaveDialog interface {
	SavePDF(suggestedName, defaultDir string) (path string, ok bool, err error)
}

// Progress is the user-visible busy indicator shown while a job runs. It is
// dropped for the instant of each screenshot so it never lands in the
// output, and it must disappear on every exit path.
type Progress interface {
	Show()
	Hide()
}

// NopProgress is a Progress that does nothing.
type NopProgress struct{}

func (NopProgress) Show() {}
func (NopProgress) Hide() {}

// Recorder is notified about completed exports (the history store).
type Recorder interface {
	Record(path string, pages int) error
}

// Result describes a finished job.
type Result struct {
	Status Status
	Path   string
	Pages  int
}

// Coordinator serializes print jobs and owns the workflow.
type Coordinator struct {
	mu     sync.Mutex
	status Status
	cancel bool

	dialog   SaveDialog
	progress Progress
	recorder Recorder
	log      *logger.Logger

	// Guard, when set, is held for the duration of a job so nothing else
	// mutates the captured window's zoom or bounds mid-capture.
	Guard sync.Locker

	// Notify surfaces failed jobs to the user. Nil means log-only.
	Notify func(message string)
}

// NewCoordinator wires the workflow's collaborators. recorder may be nil.
func NewCoordinator(dialog SaveDialog, progress Progress, recorder Recorder, log *logger.Logger) *Coordinator {
	if progress == nil {
		progress = NopProgress{}
	}
	return &Coordinator{
		status:   Idle,
		dialog:   dialog,
		progress: progress,
		recorder: recorder,
		log:      log,
	}
}

// Status returns the current job status.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Cancel requests cooperative cancellation of a running capture. It takes
// effect within one capture iteration.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == Capturing {
		c.cancel = true
	}
}

// Start runs one print job against the document in win. It returns ErrBusy
// immediately when a job is already active, so rapid hotkey presses or a
// simultaneous menu+hotkey activation cannot start a second job.
func (c *Coordinator) Start(ctx context.Context, win winsys.Window) (Result, error) {
	c.mu.Lock()
	if c.status != Idle {
		current := c.status
		c.mu.Unlock()
		c.log.Debug("Print trigger ignored, job already active", "status", current)
		return Result{Status: current}, ErrBusy
	}
	c.status = Capturing
	c.cancel = false
	c.mu.Unlock()

	if c.Guard != nil {
		c.Guard.Lock()
	}
	result, err := c.run(ctx, win)
	if c.Guard != nil {
		c.Guard.Unlock()
	}

	c.mu.Lock()
	c.status = Idle // every terminal state returns to idle
	c.cancel = false
	c.mu.Unlock()

	return result, err
}

func (c *Coordinator) run(ctx context.Context, win winsys.Window) (Result, error) {
	origScroll, err := win.ScrollTop()
	if err != nil {
		return c.fail(fmt.Errorf("failed to read scroll position: %w", err))
	}

	c.progress.Show()

	// Restoration runs on every exit path: success, cancel, and failure.
	// Zoom is left alone; the capture runs at whatever zoom the user has.
	defer func() {
		c.progress.Hide()
		if err := win.SetScrollTop(origScroll); err != nil {
			c.log.Warn("Failed to restore scroll position", "error", err)
		}
	}()

	segments, err := c.capture(ctx, win)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			c.setStatus(Cancelled)
			c.log.Info("Print job cancelled during capture")
			return Result{Status: Cancelled}, ErrCancelled
		}
		return c.fail(err)
	}

	c.setStatus(Composing)
	pdf, err := composePDF(segments)
	if err != nil {
		return c.fail(fmt.Errorf("failed to compose document: %w", err))
	}

	c.setStatus(Saving)
	suggested := fmt.Sprintf("gemini-%s.pdf", time.Now().Format("2006-01-02-150405"))
	path, ok, err := c.dialog.SavePDF(suggested, DownloadsDir())
	if err != nil {
		return c.fail(fmt.Errorf("save dialog failed: %w", err))
	}
	if !ok {
		c.setStatus(Cancelled)
		c.log.Info("Print job cancelled at save dialog")
		return Result{Status: Cancelled}, ErrCancelled
	}

	if err := os.WriteFile(path, pdf, 0644); err != nil {
		// Disk errors are retryable: the job resets to idle and the user
		// can trigger again.
		return c.fail(fmt.Errorf("failed to write %s: %w", path, err))
	}

	c.setStatus(Done)
	c.log.Info("Print job complete", "path", path, "pages", len(segments))

	if c.recorder != nil {
		if err := c.recorder.Record(path, len(segments)); err != nil {
			c.log.Warn("Failed to record export history", "error", err)
		}
	}

	return Result{Status: Done, Path: path, Pages: len(segments)}, nil
}

// capture walks the document top to bottom, one viewport per iteration.
func (c *Coordinator) capture(ctx context.Context, win winsys.Window) ([][]byte, error) {
	if err := win.SetScrollTop(0); err != nil {
		return nil, fmt.Errorf("failed to scroll to top: %w", err)
	}

	var segments [][]byte
	for i := 0; i < maxCaptureIterations; i++ {
		if c.cancelled() {
			return nil, ErrCancelled
		}
		if err := ctx.Err(); err != nil {
			return nil, ErrCancelled
		}

		// The busy indicator lives in the page, so it would be
		// photographed into every segment. Drop it for the shot.
		c.progress.Hide()
		capCtx, cancel := context.WithTimeout(ctx, captureTimeout)
		img, err := win.CaptureImage(capCtx)
		cancel()
		c.progress.Show()
		if err != nil {
			return nil, fmt.Errorf("capture failed at segment %d: %w", len(segments)+1, err)
		}
		segments = append(segments, img)

		viewport, err := win.ViewportHeight()
		if err != nil {
			return nil, fmt.Errorf("failed to read viewport height: %w", err)
		}
		content, err := win.ContentHeight()
		if err != nil {
			return nil, fmt.Errorf("failed to read content height: %w", err)
		}
		top, err := win.ScrollTop()
		if err != nil {
			return nil, fmt.Errorf("failed to read scroll position: %w", err)
		}

		if top+viewport >= content-1 { // bottom reached (allow sub-pixel slack)
			c.log.Debug("Capture complete", "segments", len(segments))
			return segments, nil
		}
		if err := win.SetScrollTop(top + viewport); err != nil {
			return nil, fmt.Errorf("failed to scroll: %w", err)
		}
	}

	return nil, ErrCaptureBound
}

func (c *Coordinator) cancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel
}

func (c *Coordinator) setStatus(s Status) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

func (c *Coordinator) fail(err error) (Result, error) {
	c.setStatus(Failed)
	c.log.Error("Print job failed", err)
	if c.Notify != nil {
		c.Notify(fmt.Sprintf("PDF export failed: %v", err))
	}
	return Result{Status: Failed}, err
}

// HandlePrint adapts Start to a hotkey handler firing against the window
// supplied by source. Busy triggers are dropped silently: that is the
// mutual-exclusion contract, not an error worth surfacing.
func (c *Coordinator) HandlePrint(source func() (winsys.Window, error)) func() {
	return func() {
		win, err := source()
		if err != nil {
			c.log.Error("Print trigger could not resolve window", err)
			return
		}
		if _, err := c.Start(context.Background(), win); err != nil && !errors.Is(err, ErrBusy) && !errors.Is(err, ErrCancelled) {
			c.log.Error("Print job failed", err)
		}
	}
}
