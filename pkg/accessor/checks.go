package accessor

import (
	"fmt"
	"slices"
	"strings"

	"globewidget/pkg/domain"
	"globewidget/pkg/domain/extension"
)

func typeMismatch(path, expected string, value any) error {
	return &domain.TypeMismatchError{Path: path, Expected: expected, Got: describe(value)}
}

// Number accepts numeric literals within rule.
func Number(rule domain.NumberRule) Check {
	return func(path string, value any) (any, error) {
		f, ok := domain.ToFloat(value)
		if !ok {
			return nil, typeMismatch(path, "number", value)
		}
		if err := domain.CheckNumber(path, f, rule); err != nil {
			return nil, err
		}
		return f, nil
	}
}

// Int accepts integral literals within [lo, hi].
func Int(lo, hi int) Check {
	return func(path string, value any) (any, error) {
		if _, ok := domain.ToFloat(value); !ok {
			return nil, typeMismatch(path, "integer", value)
		}
		return domain.ParseInt(path, value, lo, hi)
	}
}

// Bool accepts boolean literals.
func Bool() Check {
	return func(path string, value any) (any, error) {
		b, ok := value.(bool)
		if !ok {
			return nil, typeMismatch(path, "boolean", value)
		}
		return b, nil
	}
}

// Text accepts string literals.
func Text() Check {
	return func(path string, value any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, typeMismatch(path, "string", value)
		}
		return s, nil
	}
}

// URL accepts non-blank string literals.
func URL() Check {
	return func(path string, value any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, typeMismatch(path, "URL string", value)
		}
		if strings.TrimSpace(s) == "" {
			return nil, domain.Invalid(path, "URL must not be blank", s)
		}
		return s, nil
	}
}

// Color accepts CSS colors, optionally as gradient lists.
func Color(allowGradient bool) Check {
	return func(path string, value any) (any, error) {
		switch value.(type) {
		case string, []string, []any, domain.Color:
		default:
			return nil, typeMismatch(path, "color string", value)
		}
		c, err := domain.ParseColor(path, value, allowGradient)
		if err != nil {
			return nil, err
		}
		return c.Wire(), nil
	}
}

// Material accepts material specs.
func Material() Check {
	return func(path string, value any) (any, error) {
		switch value.(type) {
		case domain.Material, map[string]any:
		default:
			return nil, typeMismatch(path, "material object", value)
		}
		m, err := domain.ParseMaterial(path, value)
		if err != nil {
			return nil, err
		}
		return m.Wire(), nil
	}
}

// Enum accepts one of the listed strings.
func Enum(values ...string) Check {
	return func(path string, value any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, typeMismatch(path, "string", value)
		}
		if !slices.Contains(values, s) {
			return nil, domain.Invalid(path, "must be one of "+strings.Join(values, ", "), s)
		}
		return s, nil
	}
}

// Object accepts JSON objects.
func Object() Check {
	return func(path string, value any) (any, error) {
		m, ok := value.(map[string]any)
		if !ok {
			return nil, typeMismatch(path, "object", value)
		}
		return extension.EncodeValue(m), nil
	}
}

// Vector accepts a list of n finite numbers.
func Vector(n int) Check {
	return func(path string, value any) (any, error) {
		items, ok := toList(value)
		if !ok {
			return nil, typeMismatch(path, fmt.Sprintf("list of %d numbers", n), value)
		}
		if len(items) != n {
			return nil, domain.Invalid(path, fmt.Sprintf("must have %d elements", n), len(items))
		}
		out := make([]any, n)
		for i, item := range items {
			f, err := domain.ParseNumber(fmt.Sprintf("%s[%d]", path, i), item, domain.Finite)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	}
}

// List accepts a list whose elements each pass elem.
func List(elem Check) Check {
	return func(path string, value any) (any, error) {
		items, ok := toList(value)
		if !ok {
			return nil, typeMismatch(path, "list", value)
		}
		out := make([]any, len(items))
		for i, item := range items {
			v, err := elem(fmt.Sprintf("%s[%d]", path, i), item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
}

// Either accepts values passing any of the checks, trying them in order. The
// error of the last check is reported.
func Either(checks ...Check) Check {
	return func(path string, value any) (any, error) {
		var err error
		for _, check := range checks {
			var out any
			if out, err = check(path, value); err == nil {
				return out, nil
			}
		}
		return nil, err
	}
}

func toList(value any) ([]any, bool) {
	switch typed := value.(type) {
	case []any:
		return typed, true
	case []float64:
		out := make([]any, len(typed))
		for i, f := range typed {
			out[i] = f
		}
		return out, true
	case []int:
		out := make([]any, len(typed))
		for i, n := range typed {
			out[i] = n
		}
		return out, true
	case []string:
		out := make([]any, len(typed))
		for i, s := range typed {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}
