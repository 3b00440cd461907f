// Package extension provides the open attribute bag carried by every datum.
// Fields the datum schema does not declare land here, are preserved verbatim
// through cloning and serialization, and stay addressable by field-name
// accessors on the renderer side.
package extension

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// ErrEmptyKey indicates an empty attribute name was supplied.
var ErrEmptyKey = errors.New("extension: key must not be empty")

// Encoder is implemented by values that carry their own wire representation,
// such as callback specs and accessor values nested in a bag.
type Encoder interface {
	WireValue() any
}

// Bag stores passthrough attributes keyed by name. The zero value is empty and
// ready to use. Values are deep-copied on the way in and out so callers never
// share mutable state with the bag.
type Bag struct {
	values map[string]any
}

// New initialises an empty bag.
func New() Bag {
	return Bag{values: make(map[string]any)}
}

// FromMap builds a bag from raw values, deep-copying each entry.
func FromMap(raw map[string]any) (Bag, error) {
	b := New()
	for key, value := range raw {
		if err := b.Set(key, value); err != nil {
			return Bag{}, err
		}
	}
	return b, nil
}

func (b *Bag) ensure() {
	if b.values == nil {
		b.values = make(map[string]any)
	}
}

// Set stores a deep copy of value under key.
func (b *Bag) Set(key string, value any) error {
	if key == "" {
		return ErrEmptyKey
	}
	b.ensure()
	b.values[key] = cloneValue(value)
	return nil
}

// Remove deletes key from the bag.
func (b *Bag) Remove(key string) {
	if b.values == nil {
		return
	}
	delete(b.values, key)
}

// Get retrieves a deep copy of the value stored under key.
func (b Bag) Get(key string) (any, bool) {
	if b.values == nil {
		return nil, false
	}
	value, ok := b.values[key]
	if !ok {
		return nil, false
	}
	return cloneValue(value), true
}

// Has reports whether key is present.
func (b Bag) Has(key string) bool {
	_, ok := b.values[key]
	return ok
}

// Keys returns the sorted attribute names.
func (b Bag) Keys() []string {
	if len(b.values) == 0 {
		return nil
	}
	keys := slices.Collect(maps.Keys(b.values))
	slices.Sort(keys)
	return keys
}

// Len reports the number of attributes.
func (b Bag) Len() int {
	return len(b.values)
}

// Clone produces an independent deep copy.
func (b Bag) Clone() Bag {
	if b.values == nil {
		return Bag{}
	}
	clone := make(map[string]any, len(b.values))
	for key, value := range b.values {
		clone[key] = cloneValue(value)
	}
	return Bag{values: clone}
}

// Raw exposes a deep copy of the stored values.
func (b Bag) Raw() map[string]any {
	raw := make(map[string]any, len(b.values))
	for key, value := range b.values {
		raw[key] = cloneValue(value)
	}
	return raw
}

// Equal reports whether both bags hold the same wire content.
func (b Bag) Equal(other Bag) bool {
	return reflect.DeepEqual(b.Wire(), other.Wire())
}

// Wire returns the JSON-compatible form of the bag. Nested Encoder values are
// replaced by their wire representation.
func (b Bag) Wire() map[string]any {
	wire := make(map[string]any, len(b.values))
	for key, value := range b.values {
		wire[key] = EncodeValue(value)
	}
	return wire
}

// EncodeValue converts value into its JSON-compatible wire form, recursing
// through maps and slices and expanding Encoder implementations.
func EncodeValue(value any) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case Encoder:
		return typed.WireValue()
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, inner := range typed {
			out[key] = EncodeValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, inner := range typed {
			out[i] = EncodeValue(inner)
		}
		return out
	}
	return cloneValue(value)
}

// MarshalJSON implements json.Marshaler using the wire form.
func (b Bag) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Wire())
}

// UnmarshalJSON populates the bag from a JSON object.
func (b *Bag) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = Bag{}
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("extension: decode bag: %w", err)
	}
	decoded, err := FromMap(raw)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// CloneValue exposes the deep copy used by the bag for callers that hold
// loose JSON-compatible values.
func CloneValue(value any) any {
	return cloneValue(value)
}

// cloneValue deep copies supported JSON-compatible values to prevent shared
// references between callers.
func cloneValue(value any) any {
	if value == nil {
		return nil
	}
	switch typed := value.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64,
		json.Number:
		return typed
	}

	source := reflect.ValueOf(value)

	switch source.Kind() {
	case reflect.Map:
		if source.IsNil() || source.Type().Key().Kind() != reflect.String {
			return value
		}
		clone := reflect.MakeMapWithSize(source.Type(), source.Len())
		iter := source.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), cloneIntoType(iter.Value(), source.Type().Elem()))
		}
		return clone.Interface()
	case reflect.Slice:
		if source.IsNil() {
			return value
		}
		clone := reflect.MakeSlice(source.Type(), source.Len(), source.Len())
		for i := 0; i < source.Len(); i++ {
			clone.Index(i).Set(cloneIntoType(source.Index(i), source.Type().Elem()))
		}
		return clone.Interface()
	case reflect.Array:
		clone := reflect.New(source.Type()).Elem()
		for i := 0; i < source.Len(); i++ {
			clone.Index(i).Set(cloneIntoType(source.Index(i), source.Type().Elem()))
		}
		return clone.Interface()
	default:
		return value
	}
}

// cloneIntoType deep copies the provided value and converts it to the target type.
func cloneIntoType(value reflect.Value, target reflect.Type) reflect.Value {
	if !value.IsValid() || (value.Kind() == reflect.Interface && value.IsNil()) {
		return reflect.Zero(target)
	}

	cloned := cloneValue(value.Interface())
	if cloned == nil {
		return reflect.Zero(target)
	}

	clonedValue := reflect.ValueOf(cloned)
	if !clonedValue.Type().AssignableTo(target) {
		if clonedValue.Type().ConvertibleTo(target) {
			clonedValue = clonedValue.Convert(target)
		} else {
			return value
		}
	}
	return clonedValue
}
