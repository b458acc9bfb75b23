package app

import (
	"gemini-desktop/internal/ipc"
	"gemini-desktop/internal/proxy"
)

// Config carries the process-level knobs set from flags.
type Config struct {
	// SettingsPath overrides the settings file location. Empty = default.
	SettingsPath string
	// Upstream is the web app origin the embed proxy forwards to.
	Upstream string
	// ProxyAddr is the local address the embed proxy binds. The default
	// picks a free port on loopback.
	ProxyAddr string
	// SocketPath overrides the command socket location. Empty = default.
	SocketPath string
	// RemoteBrowserURL attaches to a running browser instead of launching
	// one. Used in development.
	RemoteBrowserURL string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Upstream:   proxy.DefaultUpstream,
		ProxyAddr:  "127.0.0.1:0",
		SocketPath: ipc.SocketPath,
	}
}
