package transport

import (
	"context"
	"errors"
	"sync"

	"globewidget/internal/core"
)

// ErrQueueStopped is returned by Send after Stop.
var ErrQueueStopped = errors.New("transport: queue stopped")

// Queue decouples callers from a slow renderer: Send enqueues and a single
// worker delivers to the downstream sender in order. Delivery failures are
// logged, not returned.
type Queue struct {
	next  core.Sender
	queue chan core.Message

	mu      sync.RWMutex
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewQueue returns a queue holding up to size pending messages.
func NewQueue(next core.Sender, size int) *Queue {
	if size <= 0 {
		size = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{next: next, queue: make(chan core.Message, size), ctx: ctx, cancel: cancel}
}

// Start begins delivering queued messages.
func (q *Queue) Start() {
	q.wg.Add(1)
	go q.loop()
}

// Send implements core.Sender. It blocks while the queue is full.
func (q *Queue) Send(ctx context.Context, msg core.Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.stopped {
		return ErrQueueStopped
	}
	select {
	case q.queue <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.ctx.Done():
		return ErrQueueStopped
	}
}

// Stop rejects further sends, delivers what is already queued and waits for
// the worker, or for ctx.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.stopped {
		q.stopped = true
		close(q.queue)
	}
	q.mu.Unlock()
	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		q.cancel()
		return ctx.Err()
	}
}

func (q *Queue) loop() {
	defer q.wg.Done()
	for msg := range q.queue {
		if q.ctx.Err() != nil {
			return
		}
		if err := q.next.Send(q.ctx, msg); err != nil {
			core.Logger().Warn("queued send failed", "type", msg.Type(), "error", err)
		}
	}
}
