package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

func (n *NotifyService) printToTerminal(title string, message string, nType NotificationType) error {
	var colorCode string
	var prefix string

	switch nType {
	case Error:
		colorCode = "\x1b[31m" // Red
		prefix = fmt.Sprintf("%s - Error", title)
	case Info:
		colorCode = "\x1b[32m" // Green
		prefix = fmt.Sprintf("%s - Info", title)
	}

	fmt.Fprintf(os.Stderr, "%s%s: %s\x1b[0m\n", colorCode, prefix, message)
	return nil
}

func (n *NotifyService) writeToLogFile(title string, message string, nType NotificationType) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	typeStr := "INFO"
	if nType == Error {
		typeStr = "ERROR"
	}

	logPath := filepath.Join(homeDir, ".gemini-desktop-notifications.log")
	logMessage := fmt.Sprintf("[%s] %s - %s: %s\n",
		time.Now().Format("2006-01-02 15:04:05"),
		title,
		typeStr,
		message)

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open notification log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(logMessage); err != nil {
		return fmt.Errorf("failed to write to log file: %w", err)
	}

	n.log.Debug("Notification written to log file",
		"path", logPath,
		"type", nType)
	return nil
}

func isRunningInTerminal() bool {
	fileInfo, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
