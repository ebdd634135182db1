package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/packet"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Event is one inbound packet from the game server.
type Event struct {
	Type     packet.Type
	Payload  json.RawMessage
	Received time.Time
}

// FromEnvelope stamps an envelope with its arrival time.
func FromEnvelope(e packet.Envelope, received time.Time) Event {
	return Event{Type: e.Type, Payload: e.Payload, Received: received}
}

// HandlerFunc processes an event.
type HandlerFunc func(context.Context, Event) error

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	bufferSize int
	blocking   bool
	logged     bool
}

// Buffered makes the handler async with a queue of the given size.
func Buffered(size int) Option {
	return func(c *config) {
		c.bufferSize = size
	}
}

// Blocking makes a buffered handler block when the queue is full instead of dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Dispatcher routes packets to registered handlers by packet type.
type Dispatcher struct {
	handlers map[packet.Type]HandlerFunc
	fallback HandlerFunc
	logger   Logger

	// OTEL metrics
	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter
	failed    metric.Int64Counter

	// Track buffers for gauge callback
	mu      sync.RWMutex
	buffers map[packet.Type]chan queued
	wg      sync.WaitGroup
}

type queued struct {
	ctx context.Context
	e   Event
}

// New creates a new Dispatcher with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[packet.Type]HandlerFunc),
		buffers:  make(map[packet.Type]chan queued),
		logger:   logger,
	}

	m := meter()

	var err error

	d.queueSize, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Current number of packets in queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			d.mu.RLock()
			defer d.mu.RUnlock()
			for t, buf := range d.buffers {
				o.ObserveInt64(d.queueSize, int64(len(buf)),
					metric.WithAttributes(attribute.String("packet", string(t))))
			}
			return nil
		},
		d.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	d.processed, err = m.Int64Counter(
		"dispatcher.packets.processed",
		metric.WithDescription("Total packets processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.dropped, err = m.Int64Counter(
		"dispatcher.packets.dropped",
		metric.WithDescription("Total packets dropped due to full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	d.failed, err = m.Int64Counter(
		"dispatcher.packets.failed",
		metric.WithDescription("Total packets whose handler returned an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	return d, nil
}

// Register adds a handler for the given packet type with optional configuration.
func (d *Dispatcher) Register(t packet.Type, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := d.withMetrics(t, h)

	if cfg.bufferSize > 0 {
		handler = d.withBuffer(t, cfg.bufferSize, cfg.blocking, handler)
	}

	if cfg.logged {
		handler = d.withLogging(t, handler)
	}

	d.handlers[t] = handler
}

// Fallback sets the handler for packet types nobody registered.
func (d *Dispatcher) Fallback(h HandlerFunc) {
	d.fallback = h
}

// Dispatch routes an event to its registered handler.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) error {
	h, ok := d.handlers[e.Type]
	if !ok {
		if d.fallback != nil {
			return d.fallback(ctx, e)
		}
		return fmt.Errorf("unknown packet type: %s", e.Type)
	}
	return h(ctx, e)
}

// HasHandler returns true if a handler is registered for the packet type.
func (d *Dispatcher) HasHandler(t packet.Type) bool {
	_, ok := d.handlers[t]
	return ok
}

// Close stops accepting buffered packets and waits for queued ones to drain.
// Dispatching to a buffered handler after Close panics.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	for t, buf := range d.buffers {
		close(buf)
		delete(d.buffers, t)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) withMetrics(t packet.Type, h HandlerFunc) HandlerFunc {
	attr := metric.WithAttributes(attribute.String("packet", string(t)))
	return func(ctx context.Context, e Event) error {
		err := h(ctx, e)
		d.processed.Add(ctx, 1, attr)
		if err != nil {
			d.failed.Add(ctx, 1, attr)
		}
		return err
	}
}

func (d *Dispatcher) withBuffer(t packet.Type, size int, blocking bool, h HandlerFunc) HandlerFunc {
	buffer := make(chan queued, size)

	d.mu.Lock()
	d.buffers[t] = buffer
	d.mu.Unlock()

	attr := metric.WithAttributes(attribute.String("packet", string(t)))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for q := range buffer {
			if err := h(q.ctx, q.e); err != nil {
				d.logger.Error("buffered handler failed", "packet", t, "error", err)
			}
		}
	}()

	if blocking {
		return func(ctx context.Context, e Event) error {
			select {
			case buffer <- queued{ctx: ctx, e: e}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return func(ctx context.Context, e Event) error {
		select {
		case buffer <- queued{ctx: ctx, e: e}:
			return nil
		default:
			d.dropped.Add(ctx, 1, attr)
			return fmt.Errorf("queue full: %s", t)
		}
	}
}

func (d *Dispatcher) withLogging(t packet.Type, h HandlerFunc) HandlerFunc {
	return func(ctx context.Context, e Event) error {
		start := time.Now()
		d.logger.Debug("handling packet", "packet", t, "bytes", len(e.Payload))

		err := h(ctx, e)

		if err != nil {
			d.logger.Error("packet failed", "packet", t, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("packet complete", "packet", t, "duration", time.Since(start))
		}

		return err
	}
}
