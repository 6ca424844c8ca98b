package middleware

import (
	"context"

	"gearbook/internal/app/commands"
	"gearbook/internal/app/outbox"
)

// OutboxFlush pushes staged event records to durable storage after the
// command (and its transaction, when nested inside Transaction) succeeds.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
