package gameloop

import (
	"context"
	"log"
	"time"
)

// Loop is the periodic driver: each pass runs one scheduling sweep then one
// tick. Admission requests never go through the loop - a stuck pass cannot
// block them.
type Loop struct {
	scheduler *ConstructionScheduler
	processor *TickProcessor
	interval  time.Duration
}

// NewLoop creates the periodic driver
func NewLoop(scheduler *ConstructionScheduler, processor *TickProcessor, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Loop{
		scheduler: scheduler,
		processor: processor,
		interval:  interval,
	}
}

// Run blocks until the context is cancelled, executing one pass per interval
func (l *Loop) Run(ctx context.Context) {
	log.Printf("[GameLoop] started, interval=%s", l.interval)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[GameLoop] stopped")
			return
		case <-ticker.C:
			l.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single scheduler+tick pass (also used by the CLI)
func (l *Loop) RunOnce(ctx context.Context) *TickSummary {
	if started, err := l.scheduler.RunOnce(ctx); err != nil {
		log.Printf("[GameLoop] scheduler pass: %v", err)
	} else if started > 0 {
		log.Printf("[GameLoop] scheduler started %d item(s)", started)
	}

	summary := l.processor.ProcessTick(ctx)
	for kind, n := range summary.Completed {
		if n > 0 {
			log.Printf("[GameLoop] completed %d %s item(s)", n, kind)
		}
	}
	for kind, n := range summary.Cancelled {
		if n > 0 {
			log.Printf("[GameLoop] cancelled %d %s item(s)", n, kind)
		}
	}
	return summary
}
