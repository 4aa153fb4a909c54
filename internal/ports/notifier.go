package ports

import (
	"banco/internal/types"
	"context"
)

// Notifier delivers write events to a side channel. Callers treat it as fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, ev types.Event) error
}
