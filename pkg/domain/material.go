package domain

import (
	"fmt"
	"strings"

	"globewidget/pkg/domain/extension"
)

// Material describes a renderer-side material by constructor type and
// parameters, for example {"type": "MeshLambertMaterial", "params": {...}}.
type Material struct {
	Type   string
	Params map[string]any
}

// DefaultTileMaterial is the material the renderer applies to tiles without one.
func DefaultTileMaterial() Material {
	return Material{
		Type:   "MeshLambertMaterial",
		Params: map[string]any{"color": "#ffbb88", "opacity": 0.4, "transparent": true},
	}
}

// IsZero reports whether no material is set.
func (m Material) IsZero() bool { return m.Type == "" && m.Params == nil }

// Wire returns the material payload.
func (m Material) Wire() map[string]any {
	params := map[string]any{}
	for k, v := range m.Params {
		params[k] = extension.EncodeValue(v)
	}
	return map[string]any{"type": m.Type, "params": params}
}

func (m Material) clone() Material {
	if m.Params == nil {
		return Material{Type: m.Type}
	}
	return Material{Type: m.Type, Params: extension.CloneValue(m.Params).(map[string]any)}
}

func (m Material) validate(path string) error {
	if strings.TrimSpace(m.Type) == "" {
		return Invalid(path+".type", "must not be empty", nil)
	}
	return nil
}

// ParseMaterial converts a material value or payload map.
func ParseMaterial(path string, value any) (Material, error) {
	switch typed := value.(type) {
	case Material:
		return typed.clone(), typed.validate(path)
	case map[string]any:
		for key := range typed {
			if key != "type" && key != "params" {
				return Material{}, Invalid(fmt.Sprintf("%s.%s", path, key), "unknown material key", nil)
			}
		}
		kind, ok := typed["type"].(string)
		if !ok {
			return Material{}, Invalid(path+".type", "must be a string", typed["type"])
		}
		m := Material{Type: kind}
		switch params := typed["params"].(type) {
		case nil:
		case map[string]any:
			m.Params = extension.CloneValue(params).(map[string]any)
		default:
			return Material{}, Invalid(path+".params", "must be an object", params)
		}
		return m, m.validate(path)
	default:
		return Material{}, Invalid(path, "must be a material object", typeName(value))
	}
}

// WireValue implements extension.Encoder.
func (m Material) WireValue() any { return m.Wire() }
