// Package callback marshals pure Go functions into inert, source-carrying
// specs that the external renderer compiles and invokes on its side.
//
// A marked function keeps its local callability: Func.Fn returns the original
// function and Func.Spec returns the wire description, so host-side tests can
// exercise the same code that ships to the renderer.
package callback

import (
	"errors"
	"fmt"
	"strings"
)

// WireType is the discriminator value identifying callback payloads.
const WireType = "callback_function"

// Wire payload keys.
const (
	KeyType   = "type"
	KeyName   = "name"
	KeySource = "source"
)

// ErrUnresolvable is returned by Resolve for values that are neither specs nor
// marked functions.
var ErrUnresolvable = errors.New("callback: value is not a callback spec or marked function")

// Spec describes a function the renderer executes by compiling Source.
type Spec struct {
	Name   string
	Source string
}

// New builds a spec from explicit name and source text.
func New(name, source string) (Spec, error) {
	spec := Spec{Name: strings.TrimSpace(name), Source: strings.TrimSpace(source)}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// Validate reports whether the spec carries both a name and source text.
func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("callback: name must not be empty")
	}
	if strings.TrimSpace(s.Source) == "" {
		return fmt.Errorf("callback %s: source must not be empty", s.Name)
	}
	return nil
}

// Wire returns the discriminated payload for the spec.
func (s Spec) Wire() map[string]any {
	return map[string]any{
		KeyType:   WireType,
		KeyName:   s.Name,
		KeySource: s.Source,
	}
}

// WireValue implements the extension encoder contract so specs stored in
// datum extension bags serialize as callback payloads.
func (s Spec) WireValue() any {
	return s.Wire()
}

// CallbackSpec lets a Spec satisfy Resolvable.
func (s Spec) CallbackSpec() Spec {
	return s
}

// Resolvable is implemented by values that carry a callback spec.
type Resolvable interface {
	CallbackSpec() Spec
}

// Resolve normalizes specs and marked functions into a Spec.
func Resolve(value any) (Spec, error) {
	switch typed := value.(type) {
	case Spec:
		return typed, typed.Validate()
	case *Spec:
		if typed == nil {
			return Spec{}, fmt.Errorf("%w: nil *Spec", ErrUnresolvable)
		}
		return *typed, typed.Validate()
	case Resolvable:
		spec := typed.CallbackSpec()
		return spec, spec.Validate()
	case nil:
		return Spec{}, fmt.Errorf("%w: nil", ErrUnresolvable)
	default:
		return Spec{}, fmt.Errorf("%w: %T", ErrUnresolvable, value)
	}
}

// FromWire parses a callback payload. Values that do not carry the callback
// discriminator return ok=false and no error; a discriminated payload with a
// missing name or source is an error.
func FromWire(payload any) (spec Spec, ok bool, err error) {
	m, isMap := payload.(map[string]any)
	if !isMap {
		return Spec{}, false, nil
	}
	if kind, _ := m[KeyType].(string); kind != WireType {
		return Spec{}, false, nil
	}
	name, _ := m[KeyName].(string)
	source, _ := m[KeySource].(string)
	spec = Spec{Name: name, Source: source}
	if err := spec.Validate(); err != nil {
		return Spec{}, true, err
	}
	return spec, true, nil
}

// IsWire reports whether payload carries the callback discriminator.
func IsWire(payload any) bool {
	m, ok := payload.(map[string]any)
	if !ok {
		return false
	}
	kind, _ := m[KeyType].(string)
	return kind == WireType
}
