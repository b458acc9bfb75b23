package hotkeys

// Backend is the OS-global shortcut hook. Keeping it this narrow lets the
// coordinator's conflict handling, enable/disable and reset logic run in
// tests without a real OS hook.
type Backend interface {
	// Register binds the accelerator system-wide. It fails when another
	// process already owns the combination.
	Register(a Accelerator, handler func()) error
	// Unregister releases the accelerator. Unregistering an unknown
	// accelerator is a no-op.
	Unregister(a Accelerator) error
	// IsRegistered reports whether this process currently owns the
	// accelerator.
	IsRegistered(a Accelerator) bool
	// Close releases every registration.
	Close() error
}
