package ports

import "context"

// Notifier surfaces a message to the shopper. Fire-and-forget.
type Notifier interface {
	Error(ctx context.Context, message string)
}
