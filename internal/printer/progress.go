package printer

import (
	"gemini-desktop/internal/winsys"
	"gemini-desktop/pkg/logger"
)

const (
	showOverlayJS = `() => {
		if (document.getElementById('__export_overlay')) return;
		const el = document.createElement('div');
		el.id = '__export_overlay';
		el.textContent = 'Exporting to PDF…';
		el.style.cssText = 'position:fixed;top:12px;right:12px;z-index:2147483647;' +
			'padding:8px 14px;border-radius:6px;background:rgba(32,33,36,.92);' +
			'color:#e8eaed;font:13px system-ui;pointer-events:none;';
		document.body.appendChild(el);
	}`
	hideOverlayJS = `() => {
		const el = document.getElementById('__export_overlay');
		if (el) el.remove();
	}`
)

// OverlayProgress shows a busy badge inside the page via injected DOM. The
// badge is fixed-position and removed before scroll/zoom restoration. The
// window is resolved per call because it may not exist yet at wiring time.
type OverlayProgress struct {
	source func() (winsys.Window, error)
	log    *logger.Logger
}

// NewOverlayProgress renders progress in the window returned by source.
func NewOverlayProgress(source func() (winsys.Window, error), log *logger.Logger) *OverlayProgress {
	return &OverlayProgress{source: source, log: log}
}

func (p *OverlayProgress) Show() { p.eval(showOverlayJS) }

func (p *OverlayProgress) Hide() { p.eval(hideOverlayJS) }

func (p *OverlayProgress) eval(js string) {
	win, err := p.source()
	if err != nil {
		p.log.Debug("Export overlay has no window", "error", err)
		return
	}
	if err := win.Eval(js); err != nil {
		p.log.Debug("Failed to update export overlay", "error", err)
	}
}
