// Package oshook is the OS-global shortcut backend, built on
// golang.design/x/hotkey. It lives apart from the coordinator so that
// packages which only need the platform-neutral types never link the
// platform hook (which reaches into X11/Carbon/Win32 at init).
package oshook

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"

	"gemini-desktop/internal/hotkeys"
	"gemini-desktop/pkg/logger"
)

type backend struct {
	mu    sync.Mutex
	log   *logger.Logger
	hooks map[string]*registration
}

type registration struct {
	hk   *hotkey.Hotkey
	done chan struct{}
}

// New returns the real OS-global shortcut backend.
func New(log *logger.Logger) hotkeys.Backend {
	return &backend{
		log:   log,
		hooks: make(map[string]*registration),
	}
}

func (b *backend) Register(a hotkeys.Accelerator, handler func()) error {
	mods, key, err := translate(a)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := a.String()
	if _, ok := b.hooks[id]; ok {
		return fmt.Errorf("accelerator %s already registered by this process", a.Display())
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("os rejected accelerator %s: %w", a.Display(), err)
	}

	reg := &registration{hk: hk, done: make(chan struct{})}
	b.hooks[id] = reg

	go func() {
		for {
			select {
			case <-hk.Keydown():
				handler()
			case <-reg.done:
				return
			}
		}
	}()

	b.log.Debug("Global shortcut registered", "accelerator", a.Display())
	return nil
}

func (b *backend) Unregister(a hotkeys.Accelerator) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	reg, ok := b.hooks[a.String()]
	if !ok {
		return nil
	}
	delete(b.hooks, a.String())
	close(reg.done)

	if err := reg.hk.Unregister(); err != nil {
		return fmt.Errorf("failed to unregister %s: %w", a.Display(), err)
	}
	b.log.Debug("Global shortcut unregistered", "accelerator", a.Display())
	return nil
}

func (b *backend) IsRegistered(a hotkeys.Accelerator) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.hooks[a.String()]
	return ok
}

func (b *backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var firstErr error
	for id, reg := range b.hooks {
		close(reg.done)
		if err := reg.hk.Unregister(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(b.hooks, id)
	}
	return firstErr
}

// translate converts a platform-neutral accelerator into the OS hook's
// modifier and key codes.
func translate(a hotkeys.Accelerator) ([]hotkey.Modifier, hotkey.Key, error) {
	var mods []hotkey.Modifier
	for _, m := range a.Modifiers() {
		mod, ok := osModifier(m)
		if !ok {
			return nil, 0, fmt.Errorf("modifier %s has no mapping on this platform", m)
		}
		mods = append(mods, mod)
	}

	key, ok := osKey(a.Key())
	if !ok {
		return nil, 0, fmt.Errorf("key %s has no mapping on this platform", a.Key())
	}
	return mods, key, nil
}

// osKey maps the canonical key name to the hook's key code. The constant
// names are shared across the hook's platform implementations.
func osKey(name string) (hotkey.Key, bool) {
	k, ok := keyCodes[name]
	return k, ok
}

var keyCodes = map[string]hotkey.Key{
	"A": hotkey.KeyA, "B": hotkey.KeyB, "C": hotkey.KeyC, "D": hotkey.KeyD,
	"E": hotkey.KeyE, "F": hotkey.KeyF, "G": hotkey.KeyG, "H": hotkey.KeyH,
	"I": hotkey.KeyI, "J": hotkey.KeyJ, "K": hotkey.KeyK, "L": hotkey.KeyL,
	"M": hotkey.KeyM, "N": hotkey.KeyN, "O": hotkey.KeyO, "P": hotkey.KeyP,
	"Q": hotkey.KeyQ, "R": hotkey.KeyR, "S": hotkey.KeyS, "T": hotkey.KeyT,
	"U": hotkey.KeyU, "V": hotkey.KeyV, "W": hotkey.KeyW, "X": hotkey.KeyX,
	"Y": hotkey.KeyY, "Z": hotkey.KeyZ,

	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,

	"Space":  hotkey.KeySpace,
	"Enter":  hotkey.KeyReturn,
	"Escape": hotkey.KeyEscape,
	"Tab":    hotkey.KeyTab,
	"Delete": hotkey.KeyDelete,
	"Up":     hotkey.KeyUp,
	"Down":   hotkey.KeyDown,
	"Left":   hotkey.KeyLeft,
	"Right":  hotkey.KeyRight,

	"F1": hotkey.KeyF1, "F2": hotkey.KeyF2, "F3": hotkey.KeyF3,
	"F4": hotkey.KeyF4, "F5": hotkey.KeyF5, "F6": hotkey.KeyF6,
	"F7": hotkey.KeyF7, "F8": hotkey.KeyF8, "F9": hotkey.KeyF9,
	"F10": hotkey.KeyF10, "F11": hotkey.KeyF11, "F12": hotkey.KeyF12,
}
