package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// NumberRule constrains a numeric field.
type NumberRule int

const (
	// Finite accepts any finite number.
	Finite NumberRule = iota
	// NonNegative accepts finite numbers >= 0.
	NonNegative
	// Positive accepts finite numbers > 0.
	Positive
	// Latitude accepts [-90, 90].
	Latitude
	// Longitude accepts [-180, 180].
	Longitude
)

// CheckNumber validates v against the rule.
func CheckNumber(path string, v float64, rule NumberRule) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalid(path, "must be a finite number", v)
	}
	switch rule {
	case NonNegative:
		if v < 0 {
			return Invalid(path, "must be >= 0", v)
		}
	case Positive:
		if v <= 0 {
			return Invalid(path, "must be > 0", v)
		}
	case Latitude:
		if v < -90 || v > 90 {
			return Invalid(path, "must be within [-90, 90]", v)
		}
	case Longitude:
		if v < -180 || v > 180 {
			return Invalid(path, "must be within [-180, 180]", v)
		}
	}
	return nil
}

// ToFloat converts Go and JSON numeric values into float64. Booleans and
// strings are rejected.
func ToFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int8:
		return float64(typed), true
	case int16:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint8:
		return float64(typed), true
	case uint16:
		return float64(typed), true
	case uint32:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case json.Number:
		f, err := typed.Float64()
		return f, err == nil
	}
	return 0, false
}

// ToInt converts integral numeric values into int.
func ToInt(value any) (int, bool) {
	f, ok := ToFloat(value)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// ParseNumber converts and validates a numeric value.
func ParseNumber(path string, value any, rule NumberRule) (float64, error) {
	f, ok := ToFloat(value)
	if !ok {
		return 0, Invalid(path, "must be a number", value)
	}
	if err := CheckNumber(path, f, rule); err != nil {
		return 0, err
	}
	return f, nil
}

// ParseInt converts and validates an integral value within [lo, hi].
func ParseInt(path string, value any, lo, hi int) (int, error) {
	n, ok := ToInt(value)
	if !ok {
		return 0, Invalid(path, "must be an integer", value)
	}
	if n < lo || n > hi {
		return 0, Invalid(path, fmt.Sprintf("must be within [%d, %d]", lo, hi), n)
	}
	return n, nil
}

// typeName describes a value for error messages.
func typeName(value any) string {
	if value == nil {
		return "null"
	}
	return reflect.TypeOf(value).String()
}

// checker accumulates the first validation failure of a record.
type checker struct {
	err error
}

func (c *checker) fail(err error) {
	if c.err == nil && err != nil {
		c.err = err
	}
}

func (c *checker) number(path string, v float64, rule NumberRule) {
	c.fail(CheckNumber(path, v, rule))
}

func (c *checker) optNumber(path string, v Optional[float64], rule NumberRule) {
	if value, ok := v.Get(); ok {
		c.fail(CheckNumber(path, value, rule))
	}
}

func (c *checker) intRange(path string, v Optional[int], lo, hi int) {
	if value, ok := v.Get(); ok && (value < lo || value > hi) {
		c.fail(Invalid(path, fmt.Sprintf("must be within [%d, %d]", lo, hi), value))
	}
}

func (c *checker) color(path string, v Color, allowGradient bool) {
	if v.IsSet() {
		c.fail(validateColor(path, v, allowGradient))
	}
}

func (c *checker) id(id ID) {
	if id.IsZero() {
		c.fail(Invalid("id", "must not be blank", string(id)))
	}
}
