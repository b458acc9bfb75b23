package oshook

import (
	"golang.design/x/hotkey"

	"gemini-desktop/internal/hotkeys"
)

// osModifier maps canonical modifier tokens to Win32 hotkey modifiers.
// CmdOrCtrl resolves to Ctrl here.
func osModifier(token string) (hotkey.Modifier, bool) {
	switch token {
	case hotkeys.ModCmdOrCtrl, hotkeys.ModCtrl:
		return hotkey.ModCtrl, true
	case hotkeys.ModShift:
		return hotkey.ModShift, true
	case hotkeys.ModAlt:
		return hotkey.ModAlt, true
	case hotkeys.ModCmd, hotkeys.ModSuper:
		return hotkey.ModWin, true
	}
	return 0, false
}
