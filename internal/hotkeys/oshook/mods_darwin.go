package oshook

import (
	"golang.design/x/hotkey"

	"gemini-desktop/internal/hotkeys"
)

// osModifier maps canonical modifier tokens to Carbon modifier masks.
// CmdOrCtrl resolves to Cmd here.
func osModifier(token string) (hotkey.Modifier, bool) {
	switch token {
	case hotkeys.ModCmdOrCtrl, hotkeys.ModCmd, hotkeys.ModSuper:
		return hotkey.ModCmd, true
	case hotkeys.ModCtrl:
		return hotkey.ModCtrl, true
	case hotkeys.ModShift:
		return hotkey.ModShift, true
	case hotkeys.ModAlt:
		return hotkey.ModOption, true
	}
	return 0, false
}
