package middleware

import (
	"context"
	"errors"

	"rentdesk/internal/app/commands"
	"rentdesk/internal/app/outbox"
)

type discarder interface {
	Discard(ctx context.Context) error
}

// OutboxFlush flushes events buffered by a successful command. Buffers of
// a failed command are dropped when the outbox supports it.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				if d, ok := box.(discarder); ok {
					return nil, errors.Join(err, d.Discard(ctx))
				}
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
