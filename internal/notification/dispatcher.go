package notification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const sendTimeout = 30 * time.Second

// Dispatcher delivers events in the background. Delivery is best effort:
// errors are logged and a full queue drops the event.
type Dispatcher struct {
	sender Sender
	log    *zap.Logger
	loc    *time.Location

	queue     chan Event
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

func NewDispatcher(sender Sender, queueSize int, log *zap.Logger) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		sender: sender,
		log:    log,
		loc:    time.UTC,
		queue:  make(chan Event, queueSize),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Notify enqueues e without blocking. It reports whether e was accepted.
func (d *Dispatcher) Notify(e Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn("notification dropped: dispatcher closed", zap.String("booking_id", e.BookingID))
		return false
	}

	select {
	case d.queue <- e:
		return true
	default:
		d.log.Warn("notification dropped: queue full",
			zap.String("booking_id", e.BookingID),
			zap.String("status", e.Status),
		)
		return false
	}
}

// Close stops accepting events and waits until queued ones are delivered
// or ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for e := range d.queue {
		d.deliver(e)
	}
}

func (d *Dispatcher) deliver(e Event) {
	msg, err := Render(e, d.loc)
	if err != nil {
		d.log.Error("notification render failed", zap.String("booking_id", e.BookingID), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, msg); err != nil {
		d.log.Error("notification send failed",
			zap.String("booking_id", e.BookingID),
			zap.String("to", msg.To),
			zap.Error(err),
		)
		return
	}
	d.log.Debug("notification sent", zap.String("booking_id", e.BookingID), zap.String("to", msg.To))
}
