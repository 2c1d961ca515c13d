package notify

import (
	"context"

	"rocketcart/internal/ports"
)

// Multi fans a notice out to every notifier, in order.
type Multi []ports.Notifier

func (m Multi) Error(ctx context.Context, message string) {
	for _, n := range m {
		if n != nil {
			n.Error(ctx, message)
		}
	}
}
