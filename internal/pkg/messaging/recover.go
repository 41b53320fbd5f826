package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/shandysiswandi/gomarket/internal/pkg/stacktrace"
)

func callHandlerWithRecover(ctx context.Context, driver, subject string, fn func() error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "subject", subject, "panic", rvr, "stack", paths)
			} else {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "subject", subject, "panic", rvr, "stack", string(stack))
			}
			err = fmt.Errorf("messaging: panic in %s handler: %v", driver, rvr)
		}
	}()

	return fn()
}

func settle(ctx context.Context, msg Message, handlerErr error) error {
	if handlerErr == nil {
		return msg.Ack(ctx)
	}

	return msg.Nack(ctx)
}
