// Package dispatcher routes named commands to their handlers, timing and
// counting every call.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrUnknownCommand is returned for commands without a handler.
var ErrUnknownCommand = errors.New("unknown command")

// Event is one command with its payload.
type Event[P any] struct {
	Command   string
	Payload   P
	Timestamp time.Time
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc[P any] func(context.Context, Event[P]) (any, error)

// Option configures handler registration.
type Option func(*config)

type config struct {
	logged bool
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Dispatcher routes events to registered handlers. Handlers run on the
// caller's goroutine, in dispatch order.
type Dispatcher[P any] struct {
	handlers map[string]HandlerFunc[P]
	log      zerolog.Logger
	now      func() time.Time

	processed metric.Int64Counter
	failed    metric.Int64Counter
	duration  metric.Float64Histogram
}

// New creates a dispatcher. A nil meter uses the global OTel meter, a no-op
// unless an SDK is installed.
func New[P any](log zerolog.Logger, m metric.Meter) (*Dispatcher[P], error) {
	if m == nil {
		m = meter()
	}
	d := &Dispatcher[P]{
		handlers: make(map[string]HandlerFunc[P]),
		log:      log,
		now:      time.Now,
	}

	var err error
	d.processed, err = m.Int64Counter(
		"dispatcher.events.processed",
		metric.WithDescription("Total events processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.failed, err = m.Int64Counter(
		"dispatcher.events.failed",
		metric.WithDescription("Events whose handler returned an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	d.duration, err = m.Float64Histogram(
		"dispatcher.events.duration",
		metric.WithDescription("Handler run time"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return d, nil
}

// Register adds a handler for the given command with optional configuration.
func (d *Dispatcher[P]) Register(command string, h HandlerFunc[P], opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h
	if cfg.logged {
		handler = d.withLogging(command, handler)
	}
	d.handlers[command] = handler
}

// Dispatch routes payload to the handler of command.
func (d *Dispatcher[P]) Dispatch(ctx context.Context, command string, payload P) (any, error) {
	h, ok := d.handlers[command]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}

	e := Event[P]{Command: command, Payload: payload, Timestamp: d.now()}
	attrs := metric.WithAttributes(attribute.String("command", command))

	result, err := h(ctx, e)

	d.processed.Add(ctx, 1, attrs)
	d.duration.Record(ctx, float64(time.Since(e.Timestamp).Microseconds())/1000, attrs)
	if err != nil {
		d.failed.Add(ctx, 1, attrs)
	}
	return result, err
}

// HasHandler returns true if a handler is registered for the command.
func (d *Dispatcher[P]) HasHandler(command string) bool {
	_, ok := d.handlers[command]
	return ok
}

// Commands lists the registered commands in sorted order.
func (d *Dispatcher[P]) Commands() []string {
	out := make([]string, 0, len(d.handlers))
	for cmd := range d.handlers {
		out = append(out, cmd)
	}
	slices.Sort(out)
	return out
}

func (d *Dispatcher[P]) withLogging(command string, h HandlerFunc[P]) HandlerFunc[P] {
	return func(ctx context.Context, e Event[P]) (any, error) {
		start := time.Now()
		d.log.Debug().Str("command", command).Msg("handling event")

		result, err := h(ctx, e)

		if err != nil {
			d.log.Error().Err(err).Str("command", command).Dur("duration", time.Since(start)).Msg("event failed")
		} else {
			d.log.Debug().Str("command", command).Dur("duration", time.Since(start)).Msg("event complete")
		}

		return result, err
	}
}
