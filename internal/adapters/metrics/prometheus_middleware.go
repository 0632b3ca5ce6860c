package metrics

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/astrokernel/imperium/internal/application/mediator"
)

// PrometheusMiddleware records per-command duration and outcome for every
// request dispatched through the mediator. A nil collector disables it.
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		name := commandName(request)
		start := time.Now()

		response, err := next(ctx, request)

		collector.RecordCommandExecution(name, time.Since(start).Seconds(), err == nil)
		return response, err
	}
}

// commandName reduces the request's reflect type to its bare name, so
// "*admission.StartStructureCommand" labels as "StartStructureCommand".
func commandName(request mediator.Request) string {
	if request == nil {
		return "UnknownCommand"
	}
	full := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if i := strings.LastIndex(full, "."); i >= 0 {
		return full[i+1:]
	}
	return full
}
