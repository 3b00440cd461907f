package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"globewidget/pkg/config"
)

// ErrClosed is returned by every channel operation after Close.
var ErrClosed = errors.New("core: channel closed")

// ErrStarted is returned by Start on a channel that already started.
var ErrStarted = errors.New("core: channel already started")

// State is the lifecycle phase of a channel.
type State int

const (
	// StateUninitialized: no renderer attached; edits only change state.
	StateUninitialized State = iota
	// StateInitializing: the snapshot was sent, readiness not yet signaled.
	StateInitializing
	// StateReady: events flow and edits are pushed as granular messages.
	StateReady
	// StateDisposed is terminal.
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateDisposed:
		return "disposed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Sender delivers outbound messages to the renderer.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

// Option configures a Channel.
type Option func(*Channel)

// WithLogger overrides the package logger for one channel.
func WithLogger(l *slog.Logger) Option {
	return func(c *Channel) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAuditRecorder records every mutation.
func WithAuditRecorder(r AuditRecorder) Option {
	return func(c *Channel) {
		if r != nil {
			c.audit = r
		}
	}
}

// WithMetricsRecorder observes every operation.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(c *Channel) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracer traces every operation.
func WithTracer(t Tracer) Option {
	return func(c *Channel) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithClock overrides the time source used for audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Channel) {
		if now != nil {
			c.store.nowFn = now
			c.nowFn = now
		}
	}
}

// Channel synchronizes one configuration with one renderer.
//
// Edits made before the renderer signals readiness are applied to the store
// but not pushed; the ready signal flushes one full snapshot when anything
// changed since Start. No event handler runs before readiness.
type Channel struct {
	store    *Store
	handlers *handlerRegistry

	// mu orders state transitions and outbound sends.
	mu     sync.Mutex
	state  State
	dirty  bool
	sender Sender

	logger  *slog.Logger
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
	nowFn   func() time.Time
}

// NewChannel returns an unstarted channel holding initial.
func NewChannel(initial config.Globe, opts ...Option) *Channel {
	c := &Channel{
		store:    NewStore(initial),
		handlers: newHandlerRegistry(),
		logger:   Logger(),
		audit:    noopAudit{},
		metrics:  noopMetrics{},
		tracer:   noopTracer{},
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// State returns the lifecycle phase.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Config returns the authoritative configuration.
func (c *Channel) Config() config.Globe { return c.store.Snapshot() }

// Start attaches sender and pushes the full configuration.
func (c *Channel) Start(ctx context.Context, sender Sender) error {
	if sender == nil {
		return fmt.Errorf("core: nil sender")
	}
	return c.observe(ctx, "start", "", func(ctx context.Context) (int, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		switch c.state {
		case StateDisposed:
			return 0, ErrClosed
		case StateInitializing, StateReady:
			return 0, ErrStarted
		}
		c.sender = sender
		if err := c.sendLocked(ctx, c.snapshotMessage()); err != nil {
			c.sender = nil
			return 0, err
		}
		c.state = StateInitializing
		c.dirty = false
		c.logger.Info("channel started")
		return 1, nil
	})
}

// Apply runs fn as one transaction. Once committed, its messages are pushed
// when the renderer is ready; otherwise the change is held for the ready
// flush. A delivery failure is returned but does not roll back the state.
func (c *Channel) Apply(ctx context.Context, operation, section string, fn func(tx *Transaction) error) error {
	return c.observe(ctx, operation, section, func(ctx context.Context) (int, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.state == StateDisposed {
			return 0, ErrClosed
		}
		res, err := c.store.RunInTransaction(ctx, fn)
		if err != nil {
			return 0, err
		}
		changes := len(res.Messages)
		c.logger.Debug("committed", "operation", operation, "section", section, "messages", changes)
		switch c.state {
		case StateReady:
			for _, msg := range res.Messages {
				if err := c.sendLocked(ctx, msg); err != nil {
					return changes, err
				}
			}
		case StateInitializing:
			c.dirty = c.dirty || changes > 0
		}
		return changes, nil
	})
}

// Emit pushes a stateless command. Commands issued before readiness are
// dropped since the snapshot flush does not carry them.
func (c *Channel) Emit(ctx context.Context, operation string, msg Message) error {
	return c.observe(ctx, operation, "", func(ctx context.Context) (int, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		switch c.state {
		case StateDisposed:
			return 0, ErrClosed
		case StateReady:
			return 1, c.sendLocked(ctx, msg)
		}
		c.logger.Debug("command dropped before ready", "type", msg.Type())
		return 0, nil
	})
}

// On registers handler for eventType. Handlers for one event run in
// registration order.
func (c *Channel) On(eventType string, handler Handler) (Registration, error) {
	if handler == nil {
		return Registration{}, fmt.Errorf("core: nil handler for %s", eventType)
	}
	if c.State() == StateDisposed {
		return Registration{}, ErrClosed
	}
	id := c.handlers.add(eventType, handler)
	return Registration{reg: c.handlers, eventType: eventType, id: id}, nil
}

// Handlers reports how many handlers are attached to eventType.
func (c *Channel) Handlers(eventType string) int { return c.handlers.count(eventType) }

// HandleMessage processes one inbound message. Malformed or unknown messages
// are logged and ignored; events before readiness are dropped.
func (c *Channel) HandleMessage(ctx context.Context, msg Message) error {
	ev, err := ParseEvent(msg)
	if err != nil {
		c.mu.Lock()
		closed := c.state == StateDisposed
		c.mu.Unlock()
		if closed {
			return ErrClosed
		}
		c.logger.Warn("ignored inbound message", "type", msg.Type(), "error", err)
		return nil
	}

	c.mu.Lock()
	switch {
	case c.state == StateDisposed:
		c.mu.Unlock()
		return ErrClosed
	case ev.Type == EventGlobeReady:
		if c.state != StateInitializing {
			state := c.state
			c.mu.Unlock()
			c.logger.Warn("ignored ready signal", "state", state.String())
			return nil
		}
		if c.dirty {
			if err := c.sendLocked(ctx, c.snapshotMessage()); err != nil {
				c.mu.Unlock()
				return err
			}
			c.dirty = false
		}
		c.state = StateReady
		c.logger.Info("renderer ready")
	case c.state != StateReady:
		state := c.state
		c.mu.Unlock()
		c.logger.Debug("dropped event before ready", "type", ev.Type, "state", state.String())
		return nil
	}
	handlers := c.handlers.snapshot(ev.Type)
	c.mu.Unlock()

	for _, h := range handlers {
		h.fn(ev)
	}
	return nil
}

// Close disposes the channel. Later operations return ErrClosed and later
// events are dropped. Close is idempotent.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDisposed {
		return nil
	}
	c.state = StateDisposed
	c.sender = nil
	c.logger.Info("channel closed")
	return nil
}

func (c *Channel) snapshotMessage() Message {
	return Message{"type": MsgConfig, "config": c.store.Snapshot().Wire()}
}

func (c *Channel) sendLocked(ctx context.Context, msg Message) error {
	if c.sender == nil {
		return nil
	}
	if err := c.sender.Send(ctx, msg); err != nil {
		c.logger.Warn("send failed", "type", msg.Type(), "error", err)
		return fmt.Errorf("core: send %s: %w", msg.Type(), err)
	}
	c.logger.Debug("sent", "type", msg.Type())
	return nil
}

// observe wraps fn with tracing, metrics and audit. fn reports how many
// messages it produced.
func (c *Channel) observe(ctx context.Context, operation, section string, fn func(context.Context) (int, error)) error {
	ctx, span := c.tracer.Start(ctx, operation)
	started := c.nowFn()
	changes, err := fn(ctx)
	elapsed := c.nowFn().Sub(started)
	span.End(err)
	c.metrics.Observe(ctx, operation, err == nil, elapsed)
	entry := AuditEntry{Operation: operation, Section: section, Changes: changes, Duration: elapsed, At: started}
	if err != nil {
		entry.Error = err.Error()
	}
	c.audit.Record(ctx, entry)
	return err
}
