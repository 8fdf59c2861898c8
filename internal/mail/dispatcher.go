package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	dispatchQueueSize = 100
	dispatchTimeout   = 10 * time.Second
)

// Dispatcher sends messages on a background worker. Enqueue never blocks the
// caller on delivery; failures are logged.
type Dispatcher struct {
	sender Sender
	logger *slog.Logger
	queue  chan Message

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewDispatcher starts the worker. A nil sender makes every Enqueue a logged no-op.
func NewDispatcher(sender Sender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		sender: sender,
		logger: logger,
		queue:  make(chan Message, dispatchQueueSize),
		done:   make(chan struct{}),
	}
	go d.worker()
	return d
}

// Enqueue schedules msg for delivery. It reports false when the message was
// dropped because mail is unconfigured, the queue is full or the dispatcher is closed.
func (d *Dispatcher) Enqueue(msg Message) bool {
	if d.sender == nil {
		d.logger.Warn("mail not configured, notification dropped", "subject", msg.Subject)
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("dispatcher closed, notification dropped", "subject", msg.Subject)
		return false
	}

	select {
	case d.queue <- msg:
		return true
	default:
		d.logger.Warn("notification queue full, notification dropped", "subject", msg.Subject)
		return false
	}
}

// Close stops accepting messages and waits for queued ones to be sent or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		if err := d.sender.Send(ctx, msg); err != nil {
			d.logger.Warn("notification delivery failed", "subject", msg.Subject, "err", err)
		} else {
			d.logger.Info("notification sent", "subject", msg.Subject)
		}
		cancel()
	}
}
