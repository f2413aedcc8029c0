package service

import (
	"context"
	"fmt"
	"smartlinc-bridge/internal/domain/protocol"
	"smartlinc-bridge/internal/ports"
	"time"

	"golang.org/x/time/rate"
)

// ProgressWaiter blocks until the gateway has had a chance to process the
// last command.
type ProgressWaiter interface {
	AwaitProgress(ctx context.Context) error
}

// FetchFunc returns a gateway page, with ok false when the exchange failed.
type FetchFunc func(ctx context.Context, path string) (body string, ok bool)

// StatusPageProgress waits for /status.xml to change. The gateway gives no
// completion signal, but the page carries its internal clock, so a change
// means it has been through at least one processing cycle.
type StatusPageProgress struct {
	fetch     FetchFunc
	interval  time.Duration
	maxPolls  int
	telemetry ports.TelemetryPort
}

func NewStatusPageProgress(fetch FetchFunc, interval time.Duration, maxPolls int, telemetry ports.TelemetryPort) *StatusPageProgress {
	if telemetry == nil {
		telemetry = nopTelemetry{}
	}
	return &StatusPageProgress{
		fetch:     fetch,
		interval:  interval,
		maxPolls:  maxPolls,
		telemetry: telemetry,
	}
}

func (p *StatusPageProgress) AwaitProgress(ctx context.Context) error {
	before, hadBefore := p.fetch(ctx, protocol.ProgressPath)

	limit := rate.Inf
	if p.interval > 0 {
		limit = rate.Every(p.interval)
	}
	limiter := rate.NewLimiter(limit, 1)
	// Spend the initial token so the first re-poll waits a full interval.
	limiter.Allow()

	for polls := 1; ; polls++ {
		if p.maxPolls > 0 && polls > p.maxPolls {
			return fmt.Errorf("%w: %s unchanged after %d polls", ErrRetriesExhausted, protocol.ProgressPath, p.maxPolls)
		}
		if err := limiter.Wait(ctx); err != nil {
			// Wait fails early when the deadline falls before the next
			// token. Hold until the context ends so callers see its error.
			<-ctx.Done()
			return ctx.Err()
		}
		p.telemetry.ProgressPolled()

		after, hasAfter := p.fetch(ctx, protocol.ProgressPath)
		if after != before || hasAfter != hadBefore {
			return nil
		}
	}
}
