package core

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"globewidget/pkg/config"
)

// SnapshotStore keeps the persisted configuration of widgets, one payload per
// non-empty section.
type SnapshotStore interface {
	Save(ctx context.Context, widgetID string, sections map[string][]byte) error
	Load(ctx context.Context, widgetID string) (map[string][]byte, error)
	Close() error
}

// EncodeSnapshot splits g into per-section JSON payloads. Empty sections are
// left out.
func EncodeSnapshot(g config.Globe) (map[string][]byte, error) {
	wire := g.Wire()
	out := make(map[string][]byte, len(wire))
	for section, body := range wire {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", section, err)
		}
		out[section] = data
	}
	return out, nil
}

// DecodeSnapshot rebuilds a configuration from per-section payloads.
func DecodeSnapshot(sections map[string][]byte) (config.Globe, error) {
	wire := make(map[string]any, len(sections))
	for _, section := range slices.Sorted(maps.Keys(sections)) {
		var body map[string]any
		if err := json.Unmarshal(sections[section], &body); err != nil {
			return config.Globe{}, fmt.Errorf("decode %s: %w", section, err)
		}
		wire[section] = body
	}
	return config.FromWire(wire)
}

// SaveSnapshot persists g under widgetID.
func SaveSnapshot(ctx context.Context, store SnapshotStore, widgetID string, g config.Globe) error {
	sections, err := EncodeSnapshot(g)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, widgetID, sections); err != nil {
		return fmt.Errorf("save snapshot %s: %w", widgetID, err)
	}
	Logger().Debug("snapshot saved", "widget", widgetID, "sections", len(sections))
	return nil
}

// LoadSnapshot reads the configuration saved under widgetID. ok is false
// when nothing was saved.
func LoadSnapshot(ctx context.Context, store SnapshotStore, widgetID string) (g config.Globe, ok bool, err error) {
	sections, err := store.Load(ctx, widgetID)
	if err != nil {
		return config.Globe{}, false, fmt.Errorf("load snapshot %s: %w", widgetID, err)
	}
	if len(sections) == 0 {
		return config.Globe{}, false, nil
	}
	g, err = DecodeSnapshot(sections)
	if err != nil {
		return config.Globe{}, false, fmt.Errorf("load snapshot %s: %w", widgetID, err)
	}
	return g, true, nil
}
