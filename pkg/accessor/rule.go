package accessor

import (
	"fmt"
	"reflect"
	"strings"

	"globewidget/pkg/callback"
	"globewidget/pkg/domain"
	"globewidget/pkg/domain/extension"
)

// Envelope discriminators for bindings whose bare wire form would be ambiguous.
const (
	WireField   = "field"
	WireLiteral = "literal"
)

// StringMode decides how a bare string bound to an attribute is read.
type StringMode int

const (
	// StringsAsLiterals reads bare strings as literal values (colors, text).
	StringsAsLiterals StringMode = iota
	// StringsAsFields reads bare strings as datum field names (lat, weight, label).
	StringsAsFields
)

// Check validates a literal and returns its normalized form. It returns a
// *domain.TypeMismatchError when the Go type is wrong and a
// *domain.ValidationError when the value is outside its domain.
type Check func(path string, value any) (any, error)

// Rule declares how one attribute accepts bindings.
type Rule struct {
	// Name is the attribute's wire name, used in error paths.
	Name string
	// Accessor allows field-name and callback bindings in addition to literals.
	Accessor bool
	Strings  StringMode
	// Literal validates literal values. Nil accepts any JSON-compatible value.
	Literal Check
	// Nullable allows an explicit null, which clears the attribute on the
	// renderer side.
	Nullable bool
}

// Classify converts a loosely typed binding into a Value according to r.
// Explicit Values are validated rather than reclassified.
func (r Rule) Classify(raw any) (Value, error) {
	switch typed := raw.(type) {
	case Value:
		return r.Bind(typed)
	case nil:
		return r.null()
	case *callback.Spec, callback.Resolvable:
		spec, err := callback.Resolve(typed)
		if err != nil {
			return Value{}, r.mismatch("callback spec", raw)
		}
		return r.Bind(Callback(spec))
	case string:
		if r.Accessor && r.Strings == StringsAsFields {
			return r.Bind(Field(typed))
		}
		return r.literal(typed)
	}
	if reflect.TypeOf(raw).Kind() == reflect.Func {
		return Value{}, r.mismatch("literal or callback.Mark-ed function", raw)
	}
	return r.literal(raw)
}

// Bind validates an explicit Value against r.
func (r Rule) Bind(v Value) (Value, error) {
	switch v.variant {
	case VariantLiteral:
		if v.literal == nil {
			return r.null()
		}
		return r.literal(v.literal)
	case VariantField:
		if !r.Accessor {
			return Value{}, r.mismatch("literal", v)
		}
		if strings.TrimSpace(v.field) == "" {
			return Value{}, domain.Invalid(r.Name, "field name must not be empty", v.field)
		}
		return v, nil
	case VariantCallback:
		if !r.Accessor {
			return Value{}, r.mismatch("literal", v)
		}
		if err := v.callback.Validate(); err != nil {
			return Value{}, domain.Invalid(r.Name, err.Error(), nil)
		}
		return v, nil
	}
	return Value{}, r.mismatch("bound value", v)
}

func (r Rule) literal(raw any) (Value, error) {
	if r.Literal == nil {
		return Literal(raw), nil
	}
	normalized, err := r.Literal(r.Name, raw)
	if err != nil {
		return Value{}, err
	}
	return Literal(normalized), nil
}

func (r Rule) null() (Value, error) {
	if !r.Nullable {
		return Value{}, domain.Invalid(r.Name, "must not be null", nil)
	}
	return Null(), nil
}

func (r Rule) mismatch(expected string, got any) error {
	return &domain.TypeMismatchError{Path: r.Name, Expected: expected, Got: describe(got)}
}

// Encode returns the wire form of v for this attribute. Bare forms are used
// whenever the attribute's string mode makes them unambiguous.
func (r Rule) Encode(v Value) any {
	switch v.variant {
	case VariantCallback:
		return v.callback.Wire()
	case VariantField:
		if r.Accessor && r.Strings == StringsAsFields {
			return v.field
		}
		return fieldEnvelope(v.field)
	case VariantLiteral:
		lit := extension.EncodeValue(v.literal)
		if _, isString := lit.(string); isString && r.Accessor && r.Strings == StringsAsFields {
			return literalEnvelope(lit)
		}
		if isEnvelope(lit) {
			return literalEnvelope(lit)
		}
		return lit
	}
	return nil
}

// Decode parses a wire value produced by Encode (or written by hand) back into
// a Value.
func (r Rule) Decode(wire any) (Value, error) {
	if m, ok := wire.(map[string]any); ok {
		switch kind, _ := m["type"].(string); kind {
		case callback.WireType:
			spec, _, err := callback.FromWire(m)
			if err != nil {
				return Value{}, domain.Invalid(r.Name, err.Error(), nil)
			}
			return r.Bind(Callback(spec))
		case WireField:
			name, ok := m["name"].(string)
			if !ok {
				return Value{}, domain.Invalid(r.Name, "field envelope requires a string name", m["name"])
			}
			return r.Bind(Field(name))
		case WireLiteral:
			if m["value"] == nil {
				return r.null()
			}
			return r.literal(m["value"])
		}
	}
	return r.Classify(wire)
}

func fieldEnvelope(name string) map[string]any {
	return map[string]any{"type": WireField, "name": name}
}

func literalEnvelope(value any) map[string]any {
	return map[string]any{"type": WireLiteral, "value": value}
}

func isEnvelope(value any) bool {
	m, ok := value.(map[string]any)
	if !ok {
		return false
	}
	kind, _ := m["type"].(string)
	return kind == WireField || kind == WireLiteral || kind == callback.WireType
}

func describe(value any) string {
	switch typed := value.(type) {
	case nil:
		return "null"
	case Value:
		return typed.variant.String() + " binding"
	}
	return fmt.Sprintf("%T", value)
}
