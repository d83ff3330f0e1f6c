package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// EventError is the analytics event name used for reported errors.
const EventError = "error"

// DefaultForwardTimeout bounds each analytics forward.
const DefaultForwardTimeout = time.Second

// Reporter logs errors and forwards them to analytics.
type Reporter struct {
	logger    *log.Logger
	analytics Analytics
	timeout   time.Duration
}

// NewReporter creates a [Reporter]. A nil analytics discards events.
func NewReporter(logger *log.Logger, analytics Analytics) *Reporter {
	if analytics == nil {
		analytics = NopAnalytics{}
	}
	return &Reporter{logger: logger, analytics: analytics, timeout: DefaultForwardTimeout}
}

// LogError logs err at error level with kv, then forwards it as an [EventError] event.
//
// A failure while forwarding, including a panic inside the analytics backend, is logged at debug level and dropped.
func (r *Reporter) LogError(ctx context.Context, err error, kv ...any) {
	if err == nil {
		return
	}

	r.logger.Error(err.Error(), kv...)
	r.forward(ctx, NewEvent(EventError, properties(err, kv)))
}

// Track forwards a product event, logging and dropping failures like [Reporter.LogError].
func (r *Reporter) Track(ctx context.Context, name string, props map[string]any) {
	r.forward(ctx, NewEvent(name, props))
}

// forward sends event with the request's values but not its cancellation, bounded by the reporter timeout.
func (r *Reporter) forward(ctx context.Context, event Event) {
	defer func() {
		if v := recover(); v != nil {
			r.logger.Debug("analytics forward panicked", "event", event.Name, "panic", v)
		}
	}()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	if err := r.analytics.Track(ctx, event); err != nil {
		r.logger.Debug("failed to forward event", "event", event.Name, "error", err)
	}
}

// properties turns a key/value list into a map; odd trailing keys get an empty value.
func properties(err error, kv []any) map[string]any {
	props := map[string]any{"message": err.Error()}
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		var value any
		if i+1 < len(kv) {
			value = kv[i+1]
		}
		props[key] = value
	}
	return props
}
