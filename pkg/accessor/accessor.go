// Package accessor models per-attribute bindings: a literal value, a datum
// field lookup, or a marshaled callback. Classification of loosely typed input
// is driven by a Rule declared for each attribute.
package accessor

import (
	"fmt"
	"reflect"

	"globewidget/pkg/callback"
	"globewidget/pkg/domain/extension"
)

// Variant identifies the active member of a Value.
type Variant int

const (
	// VariantLiteral is a fixed value applied to every datum.
	VariantLiteral Variant = iota + 1
	// VariantField names a datum field or extension key.
	VariantField
	// VariantCallback references a marshaled function.
	VariantCallback
)

func (v Variant) String() string {
	switch v {
	case VariantLiteral:
		return "literal"
	case VariantField:
		return "field"
	case VariantCallback:
		return "callback"
	}
	return "unset"
}

// Value is an accessor binding. The zero value is unset.
type Value struct {
	variant  Variant
	literal  any
	field    string
	callback callback.Spec
}

// Literal binds a fixed value. Literal(nil) is an explicit null.
func Literal(v any) Value {
	return Value{variant: VariantLiteral, literal: extension.CloneValue(v)}
}

// Null is an explicit null literal, used to clear a renderer-side setting.
func Null() Value {
	return Value{variant: VariantLiteral}
}

// Field binds a datum field name.
func Field(name string) Value {
	return Value{variant: VariantField, field: name}
}

// Callback binds a callback spec.
func Callback(spec callback.Spec) Value {
	return Value{variant: VariantCallback, callback: spec}
}

// Func resolves a spec or marked function into a callback binding.
func Func(fn any) (Value, error) {
	spec, err := callback.Resolve(fn)
	if err != nil {
		return Value{}, err
	}
	return Callback(spec), nil
}

// Variant reports the active variant.
func (v Value) Variant() Variant { return v.variant }

// IsSet reports whether a variant is active.
func (v Value) IsSet() bool { return v.variant != 0 }

// IsNull reports whether v is an explicit null literal.
func (v Value) IsNull() bool { return v.variant == VariantLiteral && v.literal == nil }

// LiteralValue returns a copy of the literal.
func (v Value) LiteralValue() (any, bool) {
	if v.variant != VariantLiteral {
		return nil, false
	}
	return extension.CloneValue(v.literal), true
}

// FieldName returns the bound field name.
func (v Value) FieldName() (string, bool) {
	return v.field, v.variant == VariantField
}

// CallbackSpec returns the bound callback.
func (v Value) CallbackSpec() (callback.Spec, bool) {
	return v.callback, v.variant == VariantCallback
}

// Equal compares variants and payloads by value.
func (v Value) Equal(other Value) bool {
	if v.variant != other.variant {
		return false
	}
	switch v.variant {
	case VariantLiteral:
		return reflect.DeepEqual(extension.EncodeValue(v.literal), extension.EncodeValue(other.literal))
	case VariantField:
		return v.field == other.field
	case VariantCallback:
		return v.callback == other.callback
	}
	return true
}

func (v Value) String() string {
	switch v.variant {
	case VariantLiteral:
		return fmt.Sprintf("literal(%v)", v.literal)
	case VariantField:
		return fmt.Sprintf("field(%s)", v.field)
	case VariantCallback:
		return fmt.Sprintf("callback(%s)", v.callback.Name)
	}
	return "unset"
}

// WireValue returns the fully discriminated wire form, independent of any
// attribute rule. It is used when a Value is nested in an extension bag.
func (v Value) WireValue() any {
	switch v.variant {
	case VariantField:
		return fieldEnvelope(v.field)
	case VariantCallback:
		return v.callback.Wire()
	case VariantLiteral:
		return literalEnvelope(extension.EncodeValue(v.literal))
	}
	return nil
}
