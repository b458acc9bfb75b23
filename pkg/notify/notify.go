// Package notify surfaces user-visible messages (hotkey conflicts, export
// results) through whatever notification channel the system offers.
package notify

import (
	"gemini-desktop/pkg/logger"
)

// NotificationType represents the type of notification
type NotificationType int

const (
	Error NotificationType = iota
	Info
)

// NotifyService handles system notifications
type NotifyService struct {
	title string
	log   *logger.Logger
}

// NewNotifyService creates a notification service. title is the application
// name shown in notification popups.
func NewNotifyService(title string, log *logger.Logger) *NotifyService {
	return &NotifyService{title: title, log: log}
}

// Show displays a notification of the specified type. It walks the fallback
// chain: system notification tool, terminal, notification log file.
func (n *NotifyService) Show(message string, nType NotificationType) error {
	if err := n.trySystemNotification(n.title, message, nType); err == nil {
		return nil
	}

	if isRunningInTerminal() {
		return n.printToTerminal(n.title, message, nType)
	}

	return n.writeToLogFile(n.title, message, nType)
}

// Info shows an informational notification, logging on failure.
func (n *NotifyService) Info(message string) {
	if err := n.Show(message, Info); err != nil {
		n.log.Warn("Failed to show notification", "message", message, "error", err)
	}
}

// Alert shows an error notification, logging on failure.
func (n *NotifyService) Alert(message string) {
	if err := n.Show(message, Error); err != nil {
		n.log.Warn("Failed to show notification", "message", message, "error", err)
	}
}
