package core

import (
	"context"
	"sync"
	"time"

	"globewidget/pkg/accessor"
	"globewidget/pkg/config"
	"globewidget/pkg/domain"
)

// Store holds the authoritative configuration. Mutations run in transactions
// over a private copy that is committed only when the whole function succeeds.
type Store struct {
	mu    sync.RWMutex
	state config.Globe
	nowFn func() time.Time
}

// NewStore returns a store seeded with initial.
func NewStore(initial config.Globe) *Store {
	return &Store{
		state: initial,
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// Snapshot returns the committed configuration. Globe values are immutable so
// the result can be shared freely.
func (s *Store) Snapshot() config.Globe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Result reports a committed transaction.
type Result struct {
	Messages    []Message
	CommittedAt time.Time
}

// Transaction stages edits against a copy of the store state and collects the
// outbound messages describing them.
type Transaction struct {
	state    config.Globe
	messages []Message
	now      time.Time
}

// Config returns the staged configuration.
func (tx *Transaction) Config() config.Globe { return tx.state }

// Now returns the transaction timestamp.
func (tx *Transaction) Now() time.Time { return tx.now }

// Emit queues a message that does not change state.
func (tx *Transaction) Emit(msg Message) {
	tx.messages = append(tx.messages, msg)
}

// SetAttribute binds attr and queues a layer_prop message.
func (tx *Transaction) SetAttribute(attr config.Attribute, raw any) (accessor.Value, error) {
	next, value, err := tx.state.WithAttribute(attr, raw)
	if err != nil {
		return accessor.Value{}, err
	}
	tx.state = next
	tx.Emit(Message{
		"type":    MsgLayerProp,
		"section": string(attr.Section()),
		"prop":    attr.Name(),
		"value":   attr.Rule().Encode(value),
	})
	return value, nil
}

// Replace swaps the whole configuration and queues a full snapshot.
func (tx *Transaction) Replace(g config.Globe) {
	tx.state = g
	tx.Emit(Message{"type": MsgConfig, "config": g.Wire()})
}

// SetData replaces the collection of D and queues a layer_data message. The
// stored items are returned so callers learn assigned identities.
func SetData[D domain.Datum](tx *Transaction, items []D) ([]D, error) {
	layer, stored, err := config.LayerOf[D](tx.state).WithData(items)
	if err != nil {
		return nil, err
	}
	tx.state = config.ReplaceLayer(tx.state, layer)
	tx.Emit(Message{
		"type":    MsgLayerData,
		"section": string(layer.Name()),
		"key":     config.DataKey(layer.Kind()),
		"data":    layer.DataWire(),
	})
	return stored, nil
}

// PatchData applies patches to the collection of D and queues one
// layer_patch message carrying only identities and changed fields.
func PatchData[D domain.Datum](tx *Transaction, patches ...config.DatumPatch) error {
	layer, deltas, err := config.LayerOf[D](tx.state).WithPatches(patches...)
	if err != nil {
		return err
	}
	if len(deltas) == 0 {
		return nil
	}
	tx.state = config.ReplaceLayer(tx.state, layer)
	wire := make([]any, len(deltas))
	for i, d := range deltas {
		wire[i] = d
	}
	tx.Emit(Message{
		"type":    MsgLayerPatch,
		"section": string(layer.Name()),
		"key":     config.DataKey(layer.Kind()),
		"patches": wire,
	})
	return nil
}

// RunInTransaction executes fn against a staged copy of the state and commits
// it when fn returns nil. Concurrent transactions are serialized.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx *Transaction) error) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Transaction{state: s.state, now: s.nowFn()}
	if err := fn(tx); err != nil {
		return Result{}, err
	}
	s.state = tx.state
	return Result{Messages: tx.messages, CommittedAt: tx.now}, nil
}
