package hotkeys

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrNoModifier is returned when a combination has no modifier key. A bare
// letter cannot be a shortcut; the settings UI keeps recording until the
// user presses a valid combination.
var ErrNoModifier = errors.New("accelerator requires at least one modifier key")

// Modifier tokens in canonical spelling and canonical order.
const (
	ModCmdOrCtrl = "CmdOrCtrl"
	ModCmd       = "Cmd"
	ModCtrl      = "Ctrl"
	ModAlt       = "Alt"
	ModShift     = "Shift"
	ModSuper     = "Super"
)

var modOrder = []string{ModCmdOrCtrl, ModCmd, ModCtrl, ModAlt, ModShift, ModSuper}

// modAliases maps accepted spellings to the canonical token.
var modAliases = map[string]string{
	"cmdorctrl":        ModCmdOrCtrl,
	"commandorcontrol": ModCmdOrCtrl,
	"cmd":              ModCmd,
	"command":          ModCmd,
	"ctrl":             ModCtrl,
	"control":          ModCtrl,
	"alt":              ModAlt,
	"option":           ModAlt,
	"shift":            ModShift,
	"super":            ModSuper,
	"meta":             ModSuper,
	"win":              ModSuper,
}

// namedKeys are the accepted non-character keys, canonical spelling.
var namedKeys = map[string]string{
	"space":  "Space",
	"enter":  "Enter",
	"return": "Enter",
	"tab":    "Tab",
	"escape": "Escape",
	"esc":    "Escape",
	"up":     "Up",
	"down":   "Down",
	"left":   "Left",
	"right":  "Right",
	"delete": "Delete",
}

// Accelerator is a normalized key combination: one or more modifiers plus
// exactly one key, e.g. "CmdOrCtrl+Alt+G". The CmdOrCtrl token resolves to
// the primary modifier of the host OS.
type Accelerator struct {
	mods []string
	key  string
}

// ParseAccelerator validates and normalizes a combination string. Tokens
// are separated by '+', case-insensitive, in any order.
func ParseAccelerator(s string) (Accelerator, error) {
	if strings.TrimSpace(s) == "" {
		return Accelerator{}, fmt.Errorf("empty accelerator")
	}

	seen := make(map[string]bool)
	var key string

	for _, tok := range strings.Split(s, "+") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return Accelerator{}, fmt.Errorf("malformed accelerator %q", s)
		}
		lower := strings.ToLower(tok)

		if mod, ok := modAliases[lower]; ok {
			seen[mod] = true
			continue
		}

		k, err := normalizeKey(lower)
		if err != nil {
			return Accelerator{}, fmt.Errorf("invalid accelerator %q: %w", s, err)
		}
		if key != "" {
			return Accelerator{}, fmt.Errorf("accelerator %q has more than one key", s)
		}
		key = k
	}

	if key == "" {
		return Accelerator{}, fmt.Errorf("accelerator %q has no key", s)
	}
	if len(seen) == 0 {
		return Accelerator{}, fmt.Errorf("%q: %w", s, ErrNoModifier)
	}

	// CmdOrCtrl subsumes an explicit Cmd or Ctrl given alongside it.
	mods := make([]string, 0, len(seen))
	for _, m := range modOrder {
		if seen[m] {
			mods = append(mods, m)
		}
	}

	return Accelerator{mods: mods, key: key}, nil
}

func normalizeKey(lower string) (string, error) {
	if k, ok := namedKeys[lower]; ok {
		return k, nil
	}
	// F1..F24
	if len(lower) >= 2 && lower[0] == 'f' {
		rest := lower[1:]
		if n := parseFKeyNumber(rest); n >= 1 && n <= 24 {
			return "F" + rest, nil
		}
	}
	if len(lower) == 1 {
		ch := lower[0]
		if ch >= 'a' && ch <= 'z' {
			return strings.ToUpper(lower), nil
		}
		if ch >= '0' && ch <= '9' {
			return lower, nil
		}
	}
	return "", fmt.Errorf("unknown key %q", lower)
}

func parseFKeyNumber(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// IsZero reports whether the accelerator is unset.
func (a Accelerator) IsZero() bool {
	return a.key == ""
}

// Key returns the non-modifier key.
func (a Accelerator) Key() string {
	return a.key
}

// Modifiers returns the canonical modifier tokens.
func (a Accelerator) Modifiers() []string {
	return append([]string(nil), a.mods...)
}

// String returns the canonical platform-neutral form, suitable for
// persistence and equality checks.
func (a Accelerator) String() string {
	if a.IsZero() {
		return ""
	}
	return strings.Join(append(append([]string(nil), a.mods...), a.key), "+")
}

// Display returns the user-facing form with CmdOrCtrl resolved to the host
// OS primary modifier. The settings UI must show exactly what the OS will
// react to.
func (a Accelerator) Display() string {
	return a.displayFor(runtime.GOOS)
}

func (a Accelerator) displayFor(goos string) string {
	if a.IsZero() {
		return ""
	}
	primary := ModCtrl
	if goos == "darwin" {
		primary = ModCmd
	}
	parts := make([]string, 0, len(a.mods)+1)
	for _, m := range a.mods {
		if m == ModCmdOrCtrl {
			m = primary
		}
		parts = append(parts, m)
	}
	return strings.Join(append(parts, a.key), "+")
}

// Equal reports whether two accelerators denote the same combination.
func (a Accelerator) Equal(b Accelerator) bool {
	return a.String() == b.String()
}
