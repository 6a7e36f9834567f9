// Package app contains the alert router and the notifier port.
package app

import "context"

// Notifier delivers one text message to one chat.
//
// Implementations own their retry policy and return an apperror with the
// notifier fault kind once it is exhausted.
type Notifier interface {
	Send(ctx context.Context, chatID, text string) error
}
