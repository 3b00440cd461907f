// Package memory provides an in-memory snapshot store used for tests and
// ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Store keeps section snapshots keyed by bucket ("<widget>/<section>").
type Store struct {
	mu      sync.RWMutex
	buckets map[string][]byte
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{buckets: make(map[string][]byte)}
}

// BucketKey joins a widget identifier and a section name.
func BucketKey(widgetID, section string) string {
	return widgetID + "/" + section
}

// SplitBucketKey reverses BucketKey for keys owned by widgetID.
func SplitBucketKey(widgetID, key string) (string, bool) {
	section, ok := strings.CutPrefix(key, widgetID+"/")
	if !ok || section == "" {
		return "", false
	}
	return section, true
}

// Save replaces every snapshot bucket of widgetID with sections.
func (s *Store) Save(ctx context.Context, widgetID string, sections map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if widgetID == "" {
		return fmt.Errorf("memory store: empty widget id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ImportState(widgetID, sections)
	return nil
}

// Load returns the snapshot buckets of widgetID keyed by section. A widget
// that was never saved yields an empty map.
func (s *Store) Load(ctx context.Context, widgetID string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ExportState(widgetID), nil
}

// Widgets lists the widget identifiers with at least one bucket.
func (s *Store) Widgets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]struct{}{}
	for key := range s.buckets {
		if i := strings.LastIndex(key, "/"); i > 0 {
			seen[key[:i]] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Hydrate stores one raw bucket, as read back from a durable backend.
func (s *Store) Hydrate(key string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[key] = slices.Clone(payload)
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// ExportState copies the buckets of widgetID. Callers hold the lock.
func (s *Store) ExportState(widgetID string) map[string][]byte {
	out := map[string][]byte{}
	for key, payload := range s.buckets {
		if section, ok := SplitBucketKey(widgetID, key); ok {
			out[section] = slices.Clone(payload)
		}
	}
	return out
}

// ImportState drops the buckets of widgetID and stores sections in their
// place. Callers hold the lock.
func (s *Store) ImportState(widgetID string, sections map[string][]byte) {
	for key := range s.buckets {
		if _, ok := SplitBucketKey(widgetID, key); ok {
			delete(s.buckets, key)
		}
	}
	for section, payload := range sections {
		s.buckets[BucketKey(widgetID, section)] = slices.Clone(payload)
	}
}
