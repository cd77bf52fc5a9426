package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/profile-service/internal/observability"
)

// Sink delivers events to one external system.
type Sink interface {
	Name() string
	Send(ctx context.Context, e Event) error
}

// Dispatcher decouples request handling from event delivery: Publish only
// enqueues, and a single worker started with Start fans events out to sinks.
type Dispatcher struct {
	queue chan Event
	sinks []Sink
	log   *zap.Logger
}

func NewDispatcher(log *zap.Logger, size int, sinks ...Sink) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	return &Dispatcher{
		queue: make(chan Event, size),
		sinks: sinks,
		log:   log,
	}
}

// Publish enqueues e without blocking. Events are dropped when no sink is
// configured or the queue is full.
func (d *Dispatcher) Publish(e Event) {
	if len(d.sinks) == 0 {
		return
	}

	select {
	case d.queue <- e:
	default:
		observability.EventsDropped.Inc()
		d.log.Warn("event queue full, dropping event", zap.String("type", e.Type), zap.String("key", e.Key))
	}
}

// Start delivers queued events until ctx is cancelled, then drains what is
// left in the queue.
func (d *Dispatcher) Start(ctx context.Context) {
	d.log.Info("event dispatcher started", zap.Int("sinks", len(d.sinks)))
	for {
		select {
		case <-ctx.Done():
			d.drain()
			d.log.Info("event dispatcher stopped")
			return
		case e := <-d.queue:
			d.deliver(ctx, e)
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case e := <-d.queue:
			d.deliver(context.Background(), e)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, e Event) {
	for _, s := range d.sinks {
		if err := s.Send(ctx, e); err != nil {
			observability.EventsPublished.WithLabelValues(s.Name(), "error").Inc()
			d.log.Error("event publish failed",
				zap.String("sink", s.Name()),
				zap.String("type", e.Type),
				zap.Error(err),
			)
			continue
		}
		observability.EventsPublished.WithLabelValues(s.Name(), "ok").Inc()
	}
}
