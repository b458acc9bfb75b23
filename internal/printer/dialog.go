package printer

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/sqweek/dialog"
)

// NativeDialog asks through the OS file chooser.
type NativeDialog struct{}

// SavePDF prompts for a destination. A user cancel is reported through ok,
// not err.
func (NativeDialog) SavePDF(suggestedName, defaultDir string) (string, bool, error) {
	builder := dialog.File().Title("Save PDF").Filter("PDF document", "pdf")
	if defaultDir != "" {
		builder = builder.SetStartDir(defaultDir)
	}
	if suggestedName != "" {
		builder = builder.SetStartFile(suggestedName)
	}
	path, err := builder.Save()
	if err != nil {
		if errors.Is(err, dialog.ErrCancelled) {
			return "", false, nil
		}
		return "", false, err
	}
	if filepath.Ext(path) != ".pdf" {
		path += ".pdf"
	}
	return path, true, nil
}

// DownloadsDir returns the user's Downloads directory, falling back to the
// home directory and finally the working directory.
func DownloadsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	dl := filepath.Join(home, "Downloads")
	if info, err := os.Stat(dl); err == nil && info.IsDir() {
		return dl
	}
	return home
}
