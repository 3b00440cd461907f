package core

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"globewidget/pkg/config"
	"globewidget/pkg/domain"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []Message
	fail error
}

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recordingSender) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.msgs))
	for i, m := range r.msgs {
		out[i] = m.Type()
	}
	return out
}

func (r *recordingSender) last() Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return nil
	}
	return r.msgs[len(r.msgs)-1]
}

var errSend = errors.New("socket gone")

func pointsGlobe(t *testing.T) config.Globe {
	t.Helper()
	layer, err := config.NewLayer([]domain.Point{
		{ID: "a", Lat: 1, Lng: 2},
		{ID: "b", Lat: 3, Lng: 4},
	})
	if err != nil {
		t.Fatalf("layer: %v", err)
	}
	return config.MustNew(config.WithLayer(layer))
}

func startedChannel(t *testing.T, opts ...Option) (*Channel, *recordingSender) {
	t.Helper()
	ch := NewChannel(pointsGlobe(t), opts...)
	sender := &recordingSender{}
	if err := ch.Start(context.Background(), sender); err != nil {
		t.Fatalf("start: %v", err)
	}
	return ch, sender
}

func readyChannel(t *testing.T, opts ...Option) (*Channel, *recordingSender) {
	t.Helper()
	ch, sender := startedChannel(t, opts...)
	if err := ch.HandleMessage(context.Background(), Message{"type": EventGlobeReady}); err != nil {
		t.Fatalf("ready: %v", err)
	}
	return ch, sender
}

func setAltitude(id domain.ID, alt float64) func(tx *Transaction) error {
	return func(tx *Transaction) error {
		return PatchData[domain.Point](tx, config.DatumPatch{ID: id, Patch: domain.Patch{"altitude": alt}})
	}
}

func newTextLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// normalizeWire round-trips through JSON so numeric types compare equal.
func normalizeWire(t *testing.T, wire map[string]any) map[string]any {
	t.Helper()
	data, err := json.Marshal(wire)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}
