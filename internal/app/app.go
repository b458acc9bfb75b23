// Package app is the composition root: it wires the settings store, the
// embed proxy, the window/hotkey/print coordinators and the command socket
// into one running shell.
package app

import (
	"context"
	"fmt"

	"gemini-desktop/internal/history"
	"gemini-desktop/internal/hotkeys"
	"gemini-desktop/internal/hotkeys/oshook"
	"gemini-desktop/internal/ipc"
	"gemini-desktop/internal/printer"
	"gemini-desktop/internal/proxy"
	"gemini-desktop/internal/settings"
	"gemini-desktop/internal/windows"
	"gemini-desktop/internal/winsys"
	"gemini-desktop/pkg/logger"
	"gemini-desktop/pkg/notify"
)

// Shell is the assembled application.
type Shell struct {
	cfg    *Config
	log    *logger.Logger
	store  *settings.Store
	driver winsys.Driver

	Windows *windows.Coordinator
	Hotkeys *hotkeys.Coordinator
	Printer *printer.Coordinator

	proxy   *proxy.Server
	exports *history.DB
	socket  *ipc.Server
	notify  *notify.NotifyService
}

// New wires the full shell. The browser backend is launched here; windows
// themselves are created lazily on first show.
func New(cfg *Config, log *logger.Logger) (*Shell, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	settingsPath := cfg.SettingsPath
	if settingsPath == "" {
		p, err := settings.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve settings path: %w", err)
		}
		settingsPath = p
	}
	store, err := settings.Open(settingsPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}

	prox, err := proxy.NewServer(cfg.Upstream, log)
	if err != nil {
		return nil, err
	}
	if err := prox.Start(cfg.ProxyAddr); err != nil {
		return nil, err
	}

	driver, err := winsys.NewCDPDriver(winsys.CDPConfig{
		RemoteURL: cfg.RemoteBrowserURL,
		Logger:    log,
	})
	if err != nil {
		prox.Stop(context.Background())
		return nil, err
	}

	s := &Shell{
		cfg:    cfg,
		log:    log,
		store:  store,
		driver: driver,
		proxy:  prox,
		notify: notify.NewNotifyService("Gemini Desktop", log),
	}

	s.Windows = windows.NewCoordinator(driver, store, windows.Config{
		AppURL:       prox.URL() + "/app",
		QuickChatURL: prox.URL() + "/app?mode=quick",
		OptionsURL:   prox.URL() + "/app/settings",
	}, log)

	// Export history is best-effort: a broken database disables the record,
	// not printing itself.
	var recorder printer.Recorder
	if db, err := history.New(log); err != nil {
		log.Warn("Export history unavailable", "error", err)
	} else {
		s.exports = db
		recorder = db
	}

	mainWindow := func() (winsys.Window, error) { return s.Windows.Window(windows.Main) }
	progress := printer.NewOverlayProgress(mainWindow, log)
	s.Printer = printer.NewCoordinator(printer.NativeDialog{}, progress, recorder, log)
	s.Printer.Notify = s.notify.Alert
	guard, err := s.Windows.ContentGuard(windows.Main)
	if err != nil {
		s.Cleanup()
		return nil, err
	}
	s.Printer.Guard = guard

	s.Hotkeys = hotkeys.NewCoordinator(oshook.New(log), store, log)
	s.Hotkeys.Notify = s.notify.Alert

	bindings := map[hotkeys.ActionID]hotkeys.Handler{
		hotkeys.ActionAlwaysOnTop: s.Windows.HandleAlwaysOnTop,
		hotkeys.ActionBossKey:     s.Windows.HandleBossKey,
		hotkeys.ActionQuickChat:   s.Windows.HandleQuickChat,
		hotkeys.ActionPrintToPDF:  s.Printer.HandlePrint(mainWindow),
	}
	for id, h := range bindings {
		if err := s.Hotkeys.Bind(id, h); err != nil {
			s.Cleanup()
			return nil, fmt.Errorf("failed to bind %s handler: %w", id, err)
		}
	}

	s.socket = ipc.NewServer(cfg.SocketPath, s, log)

	return s, nil
}

// Run brings the shell up and blocks until ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	s.Hotkeys.RegisterAll()

	if err := s.socket.Start(); err != nil {
		return err
	}

	if err := s.Windows.Show(windows.Main); err != nil {
		return fmt.Errorf("failed to show main window: %w", err)
	}

	s.log.Info("Shell running")
	<-ctx.Done()
	return nil
}

// Cleanup releases everything Run acquired. Safe to call after a partial New.
func (s *Shell) Cleanup() {
	if s.Hotkeys != nil {
		s.Hotkeys.UnregisterAll()
	}
	if s.socket != nil {
		if err := s.socket.Stop(); err != nil {
			s.log.Warn("Failed to stop command socket", "error", err)
		}
	}
	if s.exports != nil {
		if err := s.exports.Close(); err != nil {
			s.log.Warn("Failed to close export history", "error", err)
		}
	}
	if s.proxy != nil {
		if err := s.proxy.Stop(context.Background()); err != nil {
			s.log.Warn("Failed to stop embed proxy", "error", err)
		}
	}
	if s.driver != nil {
		if err := s.driver.Close(); err != nil {
			s.log.Warn("Failed to close window backend", "error", err)
		}
	}
	s.log.Info("Shell stopped")
}

// ShowMain implements the command socket: a second invocation of the binary
// raises the existing instance instead of starting another.
func (s *Shell) ShowMain() error {
	return s.Windows.Show(windows.Main)
}

// ToggleQuickChat implements the command socket.
func (s *Shell) ToggleQuickChat() error {
	return s.Windows.Toggle(windows.QuickChat)
}

// Print implements the command socket. It goes through hotkey dispatch so a
// disabled printToPdf action also disables the socket command.
func (s *Shell) Print() error {
	s.Hotkeys.Dispatch(hotkeys.ActionPrintToPDF)
	return nil
}
