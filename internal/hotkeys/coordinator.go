// Package hotkeys maintains the catalog of remappable actions and keeps the
// OS-global shortcut registrations in sync with it.
package hotkeys

import (
	"errors"
	"fmt"
	"sync"

	"gemini-desktop/internal/settings"
	"gemini-desktop/pkg/logger"
)

// ErrConflict is returned when a requested accelerator is already used by
// another enabled global action in the catalog.
var ErrConflict = errors.New("accelerator already assigned to another action")

// ErrUnknownAction is returned for ids outside the built-in catalog.
var ErrUnknownAction = errors.New("unknown hotkey action")

// Handler runs when an action fires.
type Handler func()

// Coordinator owns the action catalog: defaults merged with persisted
// overrides, OS registrations for the global scope, and dispatch to the
// handlers the window and print coordinators install.
type Coordinator struct {
	mu       sync.Mutex
	backend  Backend
	store    *settings.Store
	log      *logger.Logger
	actions  map[ActionID]*Action
	handlers map[ActionID]Handler
	inFlight map[ActionID]bool

	// Notify surfaces registration problems to the user immediately.
	// Optional; nil means log-only.
	Notify func(message string)
}

// NewCoordinator builds the catalog from defaults merged with persisted
// per-action overrides. Invalid persisted accelerators fall back to the
// default and are logged.
func NewCoordinator(backend Backend, store *settings.Store, log *logger.Logger) *Coordinator {
	c := &Coordinator{
		backend:  backend,
		store:    store,
		log:      log,
		actions:  defaultCatalog(),
		handlers: make(map[ActionID]Handler),
		inFlight: make(map[ActionID]bool),
	}

	for id, action := range c.actions {
		action.Enabled = store.GetBool(enabledKey(id), true)

		if s := store.GetString(acceleratorKey(id), ""); s != "" {
			a, err := ParseAccelerator(s)
			if err != nil {
				log.Warn("Ignoring invalid persisted accelerator",
					"action", id, "value", s, "error", err)
				continue
			}
			action.Current = a
		}
	}
	return c
}

// Bind installs the handler invoked when the action fires. Called once per
// action at startup by the owning coordinator.
func (c *Coordinator) Bind(id ActionID, h Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.actions[id]; !ok {
		return ErrUnknownAction
	}
	c.handlers[id] = h
	return nil
}

// RegisterAll registers every enabled global-scope action with the OS.
// A combination taken by another process is logged and surfaced but never
// fatal: the remaining actions still register.
func (c *Coordinator) RegisterAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range catalogOrder {
		action := c.actions[id]
		if action.Scope != ScopeGlobal || !action.Enabled {
			continue
		}
		if err := c.registerLocked(action); err != nil {
			c.log.Error("Global shortcut registration failed", err,
				"action", id, "accelerator", action.Current.Display())
			c.surface(fmt.Sprintf("Shortcut %s for %s is unavailable: %v",
				action.Current.Display(), id, err))
		}
	}
}

// UnregisterAll releases every OS registration. Called at process exit.
func (c *Coordinator) UnregisterAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, action := range c.actions {
		if action.Scope == ScopeGlobal && c.backend.IsRegistered(action.Current) {
			if err := c.backend.Unregister(action.Current); err != nil {
				c.log.Warn("Failed to unregister shortcut",
					"action", action.ID, "error", err)
			}
		}
	}
}

// SetAccelerator rebinds an action to a new combination. The combination
// must carry at least one modifier (ErrNoModifier otherwise) and must not
// collide with another enabled global action (ErrConflict). The in-memory
// accelerator always updates on a valid combination; a failed OS
// re-registration is returned to the caller for surfacing.
func (c *Coordinator) SetAccelerator(id ActionID, combo string) error {
	next, err := ParseAccelerator(combo)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	action, ok := c.actions[id]
	if !ok {
		return ErrUnknownAction
	}

	// The no-double-fire invariant covers the global scope only.
	if action.Scope == ScopeGlobal {
		if other := c.conflictLocked(id, next); other != "" {
			return fmt.Errorf("%s is bound to %s: %w", next.Display(), other, ErrConflict)
		}
	}

	prev := action.Current
	wasRegistered := action.Scope == ScopeGlobal && c.backend.IsRegistered(prev)
	if wasRegistered {
		if err := c.backend.Unregister(prev); err != nil {
			c.log.Warn("Failed to release previous shortcut",
				"action", id, "accelerator", prev.Display(), "error", err)
		}
	}

	action.Current = next
	if err := c.store.SetString(acceleratorKey(id), next.String()); err != nil {
		c.log.Error("Failed to persist accelerator", err, "action", id)
	}

	if action.Scope == ScopeGlobal && action.Enabled {
		if err := c.registerLocked(action); err != nil {
			// The application-scope dispatch path still honors the new
			// value; only the system-wide hook is missing.
			return fmt.Errorf("accelerator updated but global registration failed: %w", err)
		}
	}

	c.log.Info("Accelerator changed", "action", id,
		"from", prev.Display(), "to", next.Display())
	return nil
}

// SetEnabled toggles an action. Disabling unregisters the OS hook and stops
// dispatch but keeps the stored accelerator, so re-enabling restores the
// prior behavior exactly.
func (c *Coordinator) SetEnabled(id ActionID, enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	action, ok := c.actions[id]
	if !ok {
		return ErrUnknownAction
	}

	if action.Enabled == enabled {
		return nil
	}
	action.Enabled = enabled
	if err := c.store.SetBool(enabledKey(id), enabled); err != nil {
		c.log.Error("Failed to persist hotkey toggle", err, "action", id)
	}

	if action.Scope != ScopeGlobal {
		return nil
	}

	if !enabled {
		if c.backend.IsRegistered(action.Current) {
			if err := c.backend.Unregister(action.Current); err != nil {
				return fmt.Errorf("failed to release shortcut: %w", err)
			}
		}
		return nil
	}
	if err := c.registerLocked(action); err != nil {
		return fmt.Errorf("re-enabled but global registration failed: %w", err)
	}
	return nil
}

// ResetToDefault restores the built-in combination and re-registers when
// the action is enabled.
func (c *Coordinator) ResetToDefault(id ActionID) error {
	c.mu.Lock()
	def, ok := c.actions[id]
	if !ok {
		c.mu.Unlock()
		return ErrUnknownAction
	}
	combo := def.Default.String()
	c.mu.Unlock()

	return c.SetAccelerator(id, combo)
}

// Dispatch runs the handler bound to id. It is a no-op when the action is
// disabled or unbound, and a trigger landing while the previous dispatch of
// the same action is still running is dropped rather than run concurrently.
func (c *Coordinator) Dispatch(id ActionID) {
	c.mu.Lock()
	action, ok := c.actions[id]
	if !ok || !action.Enabled {
		c.mu.Unlock()
		return
	}
	handler, ok := c.handlers[id]
	if !ok {
		c.mu.Unlock()
		c.log.Debug("No handler bound for action", "action", id)
		return
	}
	if c.inFlight[id] {
		c.mu.Unlock()
		c.log.Debug("Dropping re-entrant trigger", "action", id)
		return
	}
	c.inFlight[id] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight[id] = false
		c.mu.Unlock()
	}()
	handler()
}

// Current returns the action's active accelerator.
func (c *Coordinator) Current(id ActionID) (Accelerator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	action, ok := c.actions[id]
	if !ok {
		return Accelerator{}, ErrUnknownAction
	}
	return action.Current, nil
}

// Enabled reports whether the action is enabled.
func (c *Coordinator) Enabled(id ActionID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	action, ok := c.actions[id]
	return ok && action.Enabled
}

// Actions returns a snapshot of the catalog in stable order, for the
// settings UI.
func (c *Coordinator) Actions() []Action {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Action, 0, len(catalogOrder))
	for _, id := range catalogOrder {
		out = append(out, *c.actions[id])
	}
	return out
}

// registerLocked wires the backend registration for a global action.
// Caller holds c.mu.
func (c *Coordinator) registerLocked(action *Action) error {
	id := action.ID
	return c.backend.Register(action.Current, func() { c.Dispatch(id) })
}

// conflictLocked returns the id of another enabled global action holding
// the accelerator, or "". Caller holds c.mu.
func (c *Coordinator) conflictLocked(id ActionID, a Accelerator) ActionID {
	for otherID, other := range c.actions {
		if otherID == id || !other.Enabled || other.Scope != ScopeGlobal {
			continue
		}
		if other.Current.Equal(a) {
			return otherID
		}
	}
	return ""
}

func (c *Coordinator) surface(message string) {
	if c.Notify != nil {
		c.Notify(message)
	}
}
