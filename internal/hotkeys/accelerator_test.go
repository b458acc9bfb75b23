package hotkeys

import (
	"errors"
	"testing"
)

func TestParseAccelerator(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CmdOrCtrl+Alt+G", "CmdOrCtrl+Alt+G"},
		{"alt+cmdorctrl+g", "CmdOrCtrl+Alt+G"},
		{"ctrl+shift+p", "Ctrl+Shift+P"},
		{"CommandOrControl+P", "CmdOrCtrl+P"},
		{"Option+Shift+Space", "Alt+Shift+Space"},
		{"meta+f5", "Super+F5"},
		{"control+1", "Ctrl+1"},
		{"shift + enter", "Shift+Enter"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a, err := ParseAccelerator(tt.in)
			if err != nil {
				t.Fatalf("ParseAccelerator(%q): %v", tt.in, err)
			}
			if got := a.String(); got != tt.want {
				t.Errorf("ParseAccelerator(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseAcceleratorRejectsBareKeys(t *testing.T) {
	for _, in := range []string{"G", "g", "5", "F11", "Space"} {
		_, err := ParseAccelerator(in)
		if !errors.Is(err, ErrNoModifier) {
			t.Errorf("ParseAccelerator(%q) err = %v, want ErrNoModifier", in, err)
		}
	}
}

func TestParseAcceleratorRejectsMalformed(t *testing.T) {
	tests := []string{
		"",
		"Ctrl+",
		"Ctrl",         // modifier only, no key
		"Ctrl+G+H",     // two keys
		"Ctrl+Bananas", // unknown key
		"Ctrl+Shift",   // modifiers only
		"Hyper+G",      // unknown modifier
	}
	for _, in := range tests {
		if _, err := ParseAccelerator(in); err == nil {
			t.Errorf("ParseAccelerator(%q) succeeded, want error", in)
		}
	}
}

func TestDisplayResolvesPrimaryModifier(t *testing.T) {
	a, err := ParseAccelerator("CmdOrCtrl+Alt+G")
	if err != nil {
		t.Fatal(err)
	}

	if got := a.displayFor("darwin"); got != "Cmd+Alt+G" {
		t.Errorf("darwin display = %q, want Cmd+Alt+G", got)
	}
	for _, goos := range []string{"linux", "windows"} {
		if got := a.displayFor(goos); got != "Ctrl+Alt+G" {
			t.Errorf("%s display = %q, want Ctrl+Alt+G", goos, got)
		}
	}

	// Explicit modifiers are displayed verbatim everywhere.
	b, err := ParseAccelerator("Ctrl+Shift+X")
	if err != nil {
		t.Fatal(err)
	}
	if got := b.displayFor("darwin"); got != "Ctrl+Shift+X" {
		t.Errorf("explicit Ctrl displayed as %q", got)
	}
}

func TestAcceleratorEqualIgnoresSpelling(t *testing.T) {
	a, _ := ParseAccelerator("cmdorctrl+alt+g")
	b, _ := ParseAccelerator("Alt+CmdOrCtrl+G")
	if !a.Equal(b) {
		t.Errorf("%q != %q, want equal", a, b)
	}
}
