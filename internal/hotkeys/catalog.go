package hotkeys

// ActionID names one remappable capability. The catalog is fixed: there are
// no plugin actions, only these four with user-remappable combinations.
type ActionID string

const (
	ActionAlwaysOnTop ActionID = "alwaysOnTop"
	ActionBossKey     ActionID = "bossKey"
	ActionQuickChat   ActionID = "quickChat"
	ActionPrintToPDF  ActionID = "printToPdf"
)

// Scope says where an accelerator is live.
type Scope int

const (
	// ScopeGlobal fires system-wide, regardless of which application has
	// focus. Requires OS-level registration.
	ScopeGlobal Scope = iota
	// ScopeApplication fires only while one of the shell's windows has
	// focus. No OS registration involved.
	ScopeApplication
)

func (s Scope) String() string {
	if s == ScopeGlobal {
		return "global"
	}
	return "application"
}

// Action is one catalog entry with its current user configuration.
type Action struct {
	ID      ActionID
	Scope   Scope
	Default Accelerator
	Current Accelerator
	Enabled bool
}

// settingsSuffix maps an action to the <ActionName> part of its settings
// keys (hotkey<ActionName>, accelerator<ActionName>).
var settingsSuffix = map[ActionID]string{
	ActionAlwaysOnTop: "AlwaysOnTop",
	ActionBossKey:     "BossKey",
	ActionQuickChat:   "QuickChat",
	ActionPrintToPDF:  "PrintToPdf",
}

func enabledKey(id ActionID) string {
	return "hotkey" + settingsSuffix[id]
}

func acceleratorKey(id ActionID) string {
	return "accelerator" + settingsSuffix[id]
}

// catalogOrder fixes iteration order for registration and listings.
var catalogOrder = []ActionID{ActionAlwaysOnTop, ActionBossKey, ActionQuickChat, ActionPrintToPDF}

// defaultCatalog builds the built-in action set. Defaults use the
// platform-neutral CmdOrCtrl token.
func defaultCatalog() map[ActionID]*Action {
	mustParse := func(s string) Accelerator {
		a, err := ParseAccelerator(s)
		if err != nil {
			panic("invalid built-in accelerator " + s + ": " + err.Error())
		}
		return a
	}

	defs := []struct {
		id    ActionID
		scope Scope
		accel string
	}{
		{ActionAlwaysOnTop, ScopeGlobal, "CmdOrCtrl+Alt+T"},
		{ActionBossKey, ScopeGlobal, "CmdOrCtrl+Alt+H"},
		{ActionQuickChat, ScopeGlobal, "CmdOrCtrl+Alt+G"},
		{ActionPrintToPDF, ScopeApplication, "CmdOrCtrl+P"},
	}

	catalog := make(map[ActionID]*Action, len(defs))
	for _, d := range defs {
		a := mustParse(d.accel)
		catalog[d.id] = &Action{
			ID:      d.id,
			Scope:   d.scope,
			Default: a,
			Current: a,
			Enabled: true,
		}
	}
	return catalog
}
