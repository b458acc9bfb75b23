package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog"

	"gemini-desktop/internal/app"
	"gemini-desktop/internal/ipc"
	"gemini-desktop/pkg/logger"
)

func main() {
	settingsPath := flag.String("settings", "", "path to settings file")
	debug := flag.Bool("debug", false, "enable debug logging")
	upstream := flag.String("upstream", "", "web app origin to embed")
	proxyAddr := flag.String("proxy-addr", "", "local address for the embed proxy")
	socketPath := flag.String("socket", "", "path to the command socket")
	remoteBrowser := flag.String("remote-browser", "", "attach to a running browser (websocket URL)")
	showMain := flag.Bool("show-main", false, "raise the main window of a running instance")
	toggleQuickChat := flag.Bool("toggle-quick-chat", false, "toggle quick chat in a running instance")
	printCmd := flag.Bool("print", false, "start a PDF export in a running instance")
	flag.Parse()

	logLevel := zerolog.InfoLevel
	if *debug {
		logLevel = zerolog.DebugLevel
	}

	log, err := logger.NewLogger(
		logger.WithConsole(),
		logger.WithLevel(logLevel),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	// Command flags talk to an already-running instance over the socket.
	if command := pickCommand(*showMain, *toggleQuickChat, *printCmd); command != "" {
		resp, err := ipc.SendCommand(*socketPath, command, log)
		if err != nil {
			log.Fatal("Failed to reach running instance", err)
		}
		if resp.Status != "success" {
			log.Fatal("Command failed", fmt.Errorf("%s", resp.Message))
		}
		fmt.Println(resp.Message)
		return
	}

	log.Info("Starting Gemini Desktop",
		"pid", os.Getpid(),
		"os", runtime.GOOS,
		"arch", runtime.GOARCH,
		"debug", *debug)

	cfg := app.DefaultConfig()
	cfg.SettingsPath = *settingsPath
	cfg.RemoteBrowserURL = *remoteBrowser
	if *upstream != "" {
		cfg.Upstream = *upstream
	}
	if *proxyAddr != "" {
		cfg.ProxyAddr = *proxyAddr
	}
	if *socketPath != "" {
		cfg.SocketPath = *socketPath
	}

	shell, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("Failed to create shell", err)
	}
	defer shell.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := shell.Run(ctx); err != nil {
		log.Fatal("Application error", err)
	}
}

func pickCommand(showMain, toggleQuickChat, printCmd bool) string {
	switch {
	case showMain:
		return ipc.CmdShowMain
	case toggleQuickChat:
		return ipc.CmdToggleQuickChat
	case printCmd:
		return ipc.CmdPrint
	}
	return ""
}
