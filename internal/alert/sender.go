package alert

import "context"

// Sender is the outbound messaging capability the pipeline depends on.
// It is agnostic to the transport behind it.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
