package printer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"gemini-desktop/internal/winsys"
	"gemini-desktop/pkg/logger"
)

type fakeDialog struct {
	mu      sync.Mutex
	path    string
	ok      bool
	err     error
	prompts int
}

func (d *fakeDialog) SavePDF(suggestedName, defaultDir string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prompts++
	return d.path, d.ok, d.err
}

func (d *fakeDialog) Prompts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.prompts
}

type fakeProgress struct {
	mu    sync.Mutex
	shows int
	hides int
}

func (p *fakeProgress) Show() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shows++
}

func (p *fakeProgress) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hides++
}

func (p *fakeProgress) visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shows > p.hides
}

func (p *fakeProgress) balanced(t *testing.T) {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shows != p.hides {
		t.Errorf("progress shown %d times but hidden %d times", p.shows, p.hides)
	}
}

type fakeGuard struct {
	mu     sync.Mutex
	locked bool
	cycles int
}

func (g *fakeGuard) Lock() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.locked = true
	g.cycles++
}

func (g *fakeGuard) Unlock() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.locked = false
}

func (g *fakeGuard) isLocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.locked
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []Result
}

func (r *fakeRecorder) Record(path string, pages int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Result{Path: path, Pages: pages})
	return nil
}

func newTestWindow(t *testing.T) *winsys.FakeWindow {
	t.Helper()
	driver := winsys.NewFakeDriver()
	win, err := driver.CreateWindow(winsys.CreateOptions{
		Title:  "Gemini",
		Bounds: winsys.Rect{Width: 800, Height: 600},
	})
	if err != nil {
		t.Fatalf("create window: %v", err)
	}
	return win.(*winsys.FakeWindow)
}

func newTestCoordinator(t *testing.T, dialog SaveDialog) (*Coordinator, *fakeProgress, *fakeRecorder) {
	t.Helper()
	log, err := logger.NewLogger(logger.WithWriter(os.Stderr))
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	progress := &fakeProgress{}
	recorder := &fakeRecorder{}
	return NewCoordinator(dialog, progress, recorder, log), progress, recorder
}

func TestPrintCapturesEveryViewport(t *testing.T) {
	win := newTestWindow(t)
	win.SetDocument(600, 1800) // three viewports tall
	if err := win.SetScrollTop(500); err != nil {
		t.Fatalf("seed scroll: %v", err)
	}

	out := filepath.Join(t.TempDir(), "chat.pdf")
	dialog := &fakeDialog{path: out, ok: true}
	c, progress, recorder := newTestCoordinator(t, dialog)

	res, err := c.Start(context.Background(), win)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.Status != Done {
		t.Fatalf("status = %v, want done", res.Status)
	}
	if res.Pages != 3 {
		t.Errorf("pages = %d, want 3", res.Pages)
	}
	if win.Captures != 3 {
		t.Errorf("captured %d segments, want 3", win.Captures)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("output file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("output file is empty")
	}

	if top, _ := win.ScrollTop(); top != 500 {
		t.Errorf("scroll position = %v after job, want 500 restored", top)
	}
	if c.Status() != Idle {
		t.Errorf("status after job = %v, want idle", c.Status())
	}
	progress.balanced(t)

	if len(recorder.entries) != 1 || recorder.entries[0].Path != out || recorder.entries[0].Pages != 3 {
		t.Errorf("recorded entries = %+v, want one entry for %s with 3 pages", recorder.entries, out)
	}
}

func TestPrintShortDocumentSinglePage(t *testing.T) {
	win := newTestWindow(t)
	win.SetDocument(600, 400) // fits in one viewport

	dialog := &fakeDialog{path: filepath.Join(t.TempDir(), "short.pdf"), ok: true}
	c, progress, _ := newTestCoordinator(t, dialog)

	res, err := c.Start(context.Background(), win)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.Pages != 1 {
		t.Errorf("pages = %d, want 1", res.Pages)
	}
	progress.balanced(t)
}

func TestOverlayHiddenDuringCapture(t *testing.T) {
	win := newTestWindow(t)
	win.SetDocument(600, 1800)

	dialog := &fakeDialog{path: filepath.Join(t.TempDir(), "clean.pdf"), ok: true}
	c, progress, _ := newTestCoordinator(t, dialog)

	// The indicator lives in the page, so a visible overlay at shot time
	// would end up inside the PDF.
	visibleAtShot := 0
	win.CaptureDelay = func(ctx context.Context) error {
		if progress.visible() {
			visibleAtShot++
		}
		return nil
	}

	if _, err := c.Start(context.Background(), win); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if visibleAtShot != 0 {
		t.Errorf("busy indicator visible during %d of %d captures, want 0", visibleAtShot, win.Captures)
	}
	progress.balanced(t)
}

func TestGuardHeldForJobDuration(t *testing.T) {
	win := newTestWindow(t)
	win.SetDocument(600, 1200)

	dialog := &fakeDialog{path: filepath.Join(t.TempDir(), "guarded.pdf"), ok: true}
	c, progress, _ := newTestCoordinator(t, dialog)
	guard := &fakeGuard{}
	c.Guard = guard

	heldAtShot := true
	win.CaptureDelay = func(ctx context.Context) error {
		if !guard.isLocked() {
			heldAtShot = false
		}
		return nil
	}

	if _, err := c.Start(context.Background(), win); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !heldAtShot {
		t.Error("window guard not held while capturing")
	}
	if guard.isLocked() {
		t.Error("window guard still held after the job finished")
	}
	if guard.cycles != 1 {
		t.Errorf("guard acquired %d times, want 1", guard.cycles)
	}
	progress.balanced(t)
}

func TestCancelDuringCapture(t *testing.T) {
	win := newTestWindow(t)
	win.SetDocument(100, 10000)
	if err := win.SetScrollTop(250); err != nil {
		t.Fatalf("seed scroll: %v", err)
	}

	dialog := &fakeDialog{path: filepath.Join(t.TempDir(), "never.pdf"), ok: true}
	c, progress, recorder := newTestCoordinator(t, dialog)

	// Cancel as soon as the first segment is captured.
	win.CaptureDelay = func(ctx context.Context) error {
		c.Cancel()
		return nil
	}

	_, err := c.Start(context.Background(), win)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("Start returned %v, want ErrCancelled", err)
	}
	if dialog.Prompts() != 0 {
		t.Errorf("save dialog shown %d times on cancel, want 0", dialog.Prompts())
	}
	if _, statErr := os.Stat(dialog.path); !os.IsNotExist(statErr) {
		t.Error("cancelled job wrote an output file")
	}
	if top, _ := win.ScrollTop(); top != 250 {
		t.Errorf("scroll position = %v after cancel, want 250 restored", top)
	}
	if c.Status() != Idle {
		t.Errorf("status after cancel = %v, want idle", c.Status())
	}
	if len(recorder.entries) != 0 {
		t.Error("cancelled job recorded history")
	}
	progress.balanced(t)
}

func TestSecondTriggerWhileBusy(t *testing.T) {
	win := newTestWindow(t)
	win.SetDocument(600, 600)

	dialog := &fakeDialog{path: filepath.Join(t.TempDir(), "busy.pdf"), ok: true}
	c, progress, _ := newTestCoordinator(t, dialog)

	started := make(chan struct{})
	release := make(chan struct{})
	win.CaptureDelay = func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = c.Start(context.Background(), win)
	}()

	<-started
	if _, err := c.Start(context.Background(), win); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent Start returned %v, want ErrBusy", err)
	}
	close(release)
	wg.Wait()

	if firstErr != nil {
		t.Fatalf("first job failed: %v", firstErr)
	}
	if dialog.Prompts() != 1 {
		t.Errorf("save dialog shown %d times, want 1", dialog.Prompts())
	}
	progress.balanced(t)
}

func TestCaptureIterationBound(t *testing.T) {
	win := newTestWindow(t)
	win.SetDocument(10, 1_000_000) // far more viewports than the bound allows

	dialog := &fakeDialog{path: filepath.Join(t.TempDir(), "endless.pdf"), ok: true}
	c, progress, _ := newTestCoordinator(t, dialog)

	res, err := c.Start(context.Background(), win)
	if !errors.Is(err, ErrCaptureBound) {
		t.Fatalf("Start returned %v, want ErrCaptureBound", err)
	}
	if res.Status != Failed {
		t.Errorf("status = %v, want failed", res.Status)
	}
	if win.Captures != maxCaptureIterations {
		t.Errorf("captured %d segments, want exactly %d", win.Captures, maxCaptureIterations)
	}
	if c.Status() != Idle {
		t.Errorf("status after bound = %v, want idle", c.Status())
	}
	progress.balanced(t)
}

func TestDialogCancelIsNotFailure(t *testing.T) {
	win := newTestWindow(t)
	win.SetDocument(600, 600)

	dialog := &fakeDialog{ok: false} // user backs out of the chooser
	c, progress, recorder := newTestCoordinator(t, dialog)

	var alerts []string
	c.Notify = func(msg string) { alerts = append(alerts, msg) }

	res, err := c.Start(context.Background(), win)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("Start returned %v, want ErrCancelled", err)
	}
	if res.Status != Cancelled {
		t.Errorf("status = %v, want cancelled", res.Status)
	}
	if len(recorder.entries) != 0 {
		t.Error("cancelled job recorded history")
	}
	if len(alerts) != 0 {
		t.Errorf("cancel raised %d notifications, want 0", len(alerts))
	}
	progress.balanced(t)
}

func TestWriteFailure(t *testing.T) {
	win := newTestWindow(t)
	win.SetDocument(600, 600)

	// Destination directory does not exist, so the write must fail.
	dialog := &fakeDialog{path: filepath.Join(t.TempDir(), "missing", "out.pdf"), ok: true}
	c, progress, _ := newTestCoordinator(t, dialog)

	var alerts []string
	c.Notify = func(msg string) { alerts = append(alerts, msg) }

	res, err := c.Start(context.Background(), win)
	if err == nil {
		t.Fatal("Start succeeded despite unwritable destination")
	}
	if res.Status != Failed {
		t.Errorf("status = %v, want failed", res.Status)
	}
	// Failed jobs reset to idle so the user can retry.
	if c.Status() != Idle {
		t.Errorf("status after failure = %v, want idle", c.Status())
	}
	if len(alerts) != 1 {
		t.Errorf("failure raised %d notifications, want 1", len(alerts))
	}
	progress.balanced(t)
}

func TestCaptureFailure(t *testing.T) {
	win := newTestWindow(t)
	win.SetDocument(600, 600)
	win.CaptureErr = errors.New("target crashed")

	dialog := &fakeDialog{path: filepath.Join(t.TempDir(), "crash.pdf"), ok: true}
	c, progress, _ := newTestCoordinator(t, dialog)

	res, err := c.Start(context.Background(), win)
	if err == nil {
		t.Fatal("Start succeeded despite capture failure")
	}
	if res.Status != Failed {
		t.Errorf("status = %v, want failed", res.Status)
	}
	if dialog.Prompts() != 0 {
		t.Errorf("save dialog shown %d times after capture failure, want 0", dialog.Prompts())
	}
	progress.balanced(t)
}
