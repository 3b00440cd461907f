// Package transport moves protocol messages between a channel and the
// external renderer: JSON lines over a byte stream, an asynchronous send
// queue and an HTTP adapter.
package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"globewidget/internal/core"
)

// MessageHandler consumes inbound messages. *core.Channel implements it.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg core.Message) error
}

// maxLine bounds one inbound JSON line.
const maxLine = 16 << 20

// Stream writes outbound messages as JSON lines to w.
type Stream struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewStream returns a sender writing to w.
func NewStream(w io.Writer) *Stream {
	return &Stream{enc: json.NewEncoder(w)}
}

// Send implements core.Sender.
func (s *Stream) Send(ctx context.Context, msg core.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(msg); err != nil {
		return fmt.Errorf("encode %s: %w", msg.Type(), err)
	}
	return nil
}

// Serve reads JSON lines from r and hands each message to h until r is
// exhausted, ctx is done or h reports the channel closed. Lines that do not
// decode to an object are logged and skipped.
func Serve(ctx context.Context, r io.Reader, h MessageHandler) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLine)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var msg core.Message
		if err := json.Unmarshal(line, &msg); err != nil || msg == nil {
			core.Logger().Warn("skipped undecodable line", "error", err)
			continue
		}
		if err := h.HandleMessage(ctx, msg); err != nil {
			if errors.Is(err, core.ErrClosed) {
				return nil
			}
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read messages: %w", err)
	}
	return nil
}

// Recorder is an in-memory sender that keeps every message it receives.
type Recorder struct {
	mu   sync.Mutex
	msgs []core.Message
	err  error
}

// Send implements core.Sender. Messages are round-tripped through JSON so
// recorded values match what a renderer would decode.
func (r *Recorder) Send(_ context.Context, msg core.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	var decoded core.Message
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	r.msgs = append(r.msgs, decoded)
	return nil
}

// FailWith makes later sends return err; nil restores delivery.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Messages returns the recorded messages.
func (r *Recorder) Messages() []core.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Message(nil), r.msgs...)
}

// Types returns the recorded message types in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.msgs))
	for i, m := range r.msgs {
		out[i] = m.Type()
	}
	return out
}

// Last returns the most recent message, or nil.
func (r *Recorder) Last() core.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return nil
	}
	return r.msgs[len(r.msgs)-1]
}

// Reset forgets recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
}
