package common

import (
	"context"
	"log"
	"time"
)

// LoggingMiddleware logs every dispatched request with its outcome and
// duration. Failures are logged with the error; ALREADY_IN_PROGRESS and the
// other admission rejections flow through here like any other result.
func LoggingMiddleware() Middleware {
	return func(ctx context.Context, request Request, next HandlerFunc) (Response, error) {
		start := time.Now()
		response, err := next(ctx, request)
		elapsed := time.Since(start)
		if err != nil {
			log.Printf("[Mediator] %T failed in %s: %v", request, elapsed, err)
		} else {
			log.Printf("[Mediator] %T handled in %s", request, elapsed)
		}
		return response, err
	}
}
