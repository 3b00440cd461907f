package domain

import (
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Color is a single CSS color or a gradient of color stops. The caller's
// strings are kept verbatim.
type Color struct {
	stops []string
}

// SolidColor wraps one CSS color string.
func SolidColor(c string) Color {
	return Color{stops: []string{c}}
}

// Gradient wraps a list of CSS color stops.
func Gradient(stops ...string) Color {
	return Color{stops: append([]string(nil), stops...)}
}

// IsSet reports whether the color carries at least one value.
func (c Color) IsSet() bool { return len(c.stops) > 0 }

// IsGradient reports whether the color was given as a list.
func (c Color) IsGradient() bool { return len(c.stops) > 1 }

// Values returns a copy of the color stops.
func (c Color) Values() []string { return append([]string(nil), c.stops...) }

// Wire returns a string for solid colors and a list for gradients.
func (c Color) Wire() any {
	if len(c.stops) == 1 {
		return c.stops[0]
	}
	out := make([]any, len(c.stops))
	for i, s := range c.stops {
		out[i] = s
	}
	return out
}

// ParseColor converts a string or list of strings into a Color.
func ParseColor(path string, value any, allowGradient bool) (Color, error) {
	switch typed := value.(type) {
	case Color:
		return typed, validateColor(path, typed, allowGradient)
	case string:
		c := SolidColor(typed)
		return c, validateColor(path, c, allowGradient)
	case []string:
		c := Gradient(typed...)
		return c, validateColor(path, c, allowGradient)
	case []any:
		stops := make([]string, len(typed))
		for i, item := range typed {
			s, ok := item.(string)
			if !ok {
				return Color{}, Invalid(fmt.Sprintf("%s[%d]", path, i), "color must be a string", item)
			}
			stops[i] = s
		}
		c := Gradient(stops...)
		return c, validateColor(path, c, allowGradient)
	default:
		if allowGradient {
			return Color{}, Invalid(path, "color must be a string or list of strings", value)
		}
		return Color{}, Invalid(path, "color must be a string", value)
	}
}

func validateColor(path string, c Color, allowGradient bool) error {
	if !c.IsSet() {
		return Invalid(path, "color must not be empty", nil)
	}
	if len(c.stops) > 1 && !allowGradient {
		return Invalid(path, "color must be a single string", c.stops)
	}
	for i, stop := range c.stops {
		p := path
		if len(c.stops) > 1 {
			p = fmt.Sprintf("%s[%d]", path, i)
		}
		if err := ValidateCSSColor(p, stop); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCSSColor checks hex, named, rgb()/rgba() and hsl()/hsla() colors.
func ValidateCSSColor(path, s string) error {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	switch {
	case trimmed == "":
		return Invalid(path, "color must not be empty", s)
	case strings.HasPrefix(trimmed, "#"):
		if validHex(trimmed) {
			return nil
		}
		return Invalid(path, "invalid hex color", s)
	case trimmed == "transparent" || trimmed == "currentcolor":
		return nil
	case strings.HasPrefix(trimmed, "rgb"):
		if validFunctional(trimmed, "rgb", false) {
			return nil
		}
		return Invalid(path, "invalid rgb() color", s)
	case strings.HasPrefix(trimmed, "hsl"):
		if validFunctional(trimmed, "hsl", true) {
			return nil
		}
		return Invalid(path, "invalid hsl() color", s)
	}
	if _, ok := colornames.Map[trimmed]; ok {
		return nil
	}
	return Invalid(path, "unknown color", s)
}

func validHex(s string) bool {
	switch len(s) {
	case 4, 7:
		_, err := colorful.Hex(s)
		return err == nil
	case 5, 9:
		// #rgba and #rrggbbaa: validate the color part, then the alpha digits.
		cut := len(s) - (len(s)-1)/4
		if _, err := colorful.Hex(s[:cut]); err != nil {
			return false
		}
		_, err := strconv.ParseUint(s[cut:], 16, 8)
		return err == nil
	}
	return false
}

func validFunctional(s, name string, hue bool) bool {
	body := strings.TrimPrefix(s, name)
	body = strings.TrimPrefix(body, "a")
	if !strings.HasPrefix(body, "(") || !strings.HasSuffix(body, ")") {
		return false
	}
	body = body[1 : len(body)-1]
	body = strings.ReplaceAll(body, "/", " ")
	parts := strings.FieldsFunc(body, func(r rune) bool { return r == ',' || r == ' ' })
	if len(parts) != 3 && len(parts) != 4 {
		return false
	}
	for i, part := range parts {
		part = strings.TrimSuffix(part, "%")
		if i == 0 && hue {
			part = strings.TrimSuffix(part, "deg")
		}
		if _, err := strconv.ParseFloat(part, 64); err != nil {
			return false
		}
	}
	return true
}

// WireValue implements extension.Encoder.
func (c Color) WireValue() any { return c.Wire() }
