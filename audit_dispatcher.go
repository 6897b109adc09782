package goIdentity

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// auditDispatcher decouples the request path from sink latency: Emit hands
// the event to a single consumer goroutine and returns. A slow sink delays
// audit delivery, never a login, a refresh, or a business request.
type auditDispatcher struct {
	sink       AuditSink
	events     chan AuditEvent
	stop       chan struct{}
	consumer   sync.WaitGroup
	dropIfFull bool
	dropped    atomic.Uint64
	closing    atomic.Bool
	once       sync.Once
}

// newAuditDispatcher returns nil when auditing is disabled; the nil
// dispatcher accepts and discards events, so call sites never branch.
func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 1
	}

	d := &auditDispatcher{
		sink:       sink,
		events:     make(chan AuditEvent, buffer),
		stop:       make(chan struct{}),
		dropIfFull: cfg.DropIfFull,
	}
	d.consumer.Add(1)
	go d.run()
	return d
}

func (d *auditDispatcher) run() {
	defer d.consumer.Done()
	for {
		select {
		case ev := <-d.events:
			d.deliver(ev)
		case <-d.stop:
			d.drain()
			return
		}
	}
}

// drain flushes whatever was buffered at shutdown so a terminating client
// does not lose the trailing logout and termination events.
func (d *auditDispatcher) drain() {
	for {
		select {
		case ev := <-d.events:
			d.deliver(ev)
		default:
			return
		}
	}
}

func (d *auditDispatcher) deliver(ev AuditEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	d.sink.Emit(context.Background(), ev)
}

// Emit enqueues an event. With DropIfFull the call never blocks and a full
// buffer increments the drop counter instead; otherwise it waits until the
// consumer makes room, the context ends, or the dispatcher shuts down.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.closing.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.dropIfFull {
		select {
		case d.events <- event:
		case <-d.stop:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.events <- event:
	case <-ctx.Done():
	case <-d.stop:
	}
}

// Close stops the consumer after flushing buffered events. Safe to call more
// than once and on a nil dispatcher.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		d.closing.Store(true)
		close(d.stop)
		d.consumer.Wait()
	})
}

// Dropped reports how many events were discarded under DropIfFull pressure.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
