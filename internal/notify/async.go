package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Async hands messages to a background worker so slow transports such as SMTP
// stay off the request path. Delivery errors are logged by the worker.
type Async struct {
	next  Notifier
	log   *zap.Logger
	queue chan Message

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func NewAsync(next Notifier, log *zap.Logger, size int) *Async {
	if size < 1 {
		size = 1
	}
	a := &Async{
		next:  next,
		log:   log.Named("notify"),
		queue: make(chan Message, size),
		done:  make(chan struct{}),
	}
	go a.work()
	return a
}

// Notify enqueues msg. A full queue drops the message with a warning rather
// than blocking the caller.
func (a *Async) Notify(_ context.Context, msg Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		a.log.Warn("notification dropped: queue closed", zap.Uint("account_id", msg.AccountID))
		return nil
	}
	select {
	case a.queue <- msg:
	default:
		a.log.Warn("notification dropped: queue full", zap.Uint("account_id", msg.AccountID))
	}
	return nil
}

func (a *Async) work() {
	defer close(a.done)
	for msg := range a.queue {
		if err := a.next.Notify(context.Background(), msg); err != nil {
			a.log.Warn("notification delivery failed", zap.Uint("account_id", msg.AccountID), zap.Error(err))
		}
	}
}

// Close stops accepting messages and waits for queued ones to be delivered.
func (a *Async) Close() {
	if a == nil {
		return
	}
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	<-a.done
}
