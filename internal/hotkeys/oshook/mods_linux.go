package oshook

import (
	"golang.design/x/hotkey"

	"gemini-desktop/internal/hotkeys"
)

// osModifier maps canonical modifier tokens to X11 modifier masks. Alt is
// Mod1 and the Super/Cmd keys sit on Mod4 in stock keymaps; CmdOrCtrl
// resolves to Ctrl here.
func osModifier(token string) (hotkey.Modifier, bool) {
	switch token {
	case hotkeys.ModCmdOrCtrl, hotkeys.ModCtrl:
		return hotkey.ModCtrl, true
	case hotkeys.ModShift:
		return hotkey.ModShift, true
	case hotkeys.ModAlt:
		return hotkey.Mod1, true
	case hotkeys.ModCmd, hotkeys.ModSuper:
		return hotkey.Mod4, true
	}
	return 0, false
}
