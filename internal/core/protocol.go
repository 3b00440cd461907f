package core

import (
	"fmt"
	"strings"

	"globewidget/pkg/domain"
)

// Message is one protocol message in either direction. Every message carries
// a "type"; inbound messages put their body under "payload".
type Message map[string]any

// Type returns the message discriminator.
func (m Message) Type() string {
	t, _ := m["type"].(string)
	return t
}

// Outbound message types.
const (
	MsgConfig         = "config"
	MsgLayerData      = "layer_data"
	MsgLayerPatch     = "layer_patch"
	MsgLayerProp      = "layer_prop"
	MsgClearTileCache = "globe_tile_engine_clear_cache"
)

// Inbound event types not tied to a layer. Layer events are named
// "<kind>_click", "<kind>_right_click" and "<kind>_hover".
const (
	EventGlobeReady      = "globe_ready"
	EventGlobeClick      = "globe_click"
	EventGlobeRightClick = "globe_right_click"
)

// Layer event suffixes.
const (
	ActionClick      = "click"
	ActionRightClick = "right_click"
	ActionHover      = "hover"
)

// LayerEvent names the event type for an action on kind.
func LayerEvent(kind domain.Kind, action string) string {
	return string(kind) + "_" + action
}

// Coordinates is a resolved globe position.
type Coordinates struct {
	Lat      float64
	Lng      float64
	Altitude domain.Optional[float64]
}

// Event is a decoded inbound interaction.
type Event struct {
	Type   string
	Kind   domain.Kind
	Action string
	// Datum is the renderer's copy of the target, nil for "nothing".
	Datum map[string]any
	// Previous is the previously hovered datum for hover events.
	Previous map[string]any
	Coords   Coordinates
}

var kindsByPrefix = func() map[string]domain.Kind {
	out := make(map[string]domain.Kind)
	for _, k := range domain.Kinds() {
		out[string(k)] = k
	}
	return out
}()

// ParseEvent decodes an inbound message into an Event.
func ParseEvent(msg Message) (Event, error) {
	typ := msg.Type()
	if typ == "" {
		return Event{}, fmt.Errorf("event without type")
	}
	ev := Event{Type: typ}
	switch typ {
	case EventGlobeReady:
		return ev, nil
	case EventGlobeClick, EventGlobeRightClick:
		coords, err := parseCoords(msg["payload"])
		if err != nil {
			return Event{}, fmt.Errorf("%s: %w", typ, err)
		}
		ev.Action = strings.TrimPrefix(typ, "globe_")
		ev.Coords = coords
		return ev, nil
	}
	kind, action, ok := splitLayerEvent(typ)
	if !ok {
		return Event{}, fmt.Errorf("unknown event type %q", typ)
	}
	ev.Kind, ev.Action = kind, action
	payload, ok := msg["payload"].(map[string]any)
	if !ok {
		return Event{}, fmt.Errorf("%s: payload must be an object", typ)
	}
	var err error
	if ev.Datum, err = optionalObject(payload["datum"]); err != nil {
		return Event{}, fmt.Errorf("%s.datum: %w", typ, err)
	}
	if action == ActionHover {
		if ev.Previous, err = optionalObject(payload["previousDatum"]); err != nil {
			return Event{}, fmt.Errorf("%s.previousDatum: %w", typ, err)
		}
		return ev, nil
	}
	if ev.Datum == nil {
		return Event{}, fmt.Errorf("%s: datum is required", typ)
	}
	if ev.Coords, err = parseCoords(payload["coords"]); err != nil {
		return Event{}, fmt.Errorf("%s: %w", typ, err)
	}
	return ev, nil
}

func splitLayerEvent(typ string) (domain.Kind, string, bool) {
	for _, action := range []string{ActionRightClick, ActionClick, ActionHover} {
		prefix, found := strings.CutSuffix(typ, "_"+action)
		if !found {
			continue
		}
		if kind, ok := kindsByPrefix[prefix]; ok {
			return kind, action, true
		}
	}
	return "", "", false
}

func optionalObject(value any) (map[string]any, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return typed, nil
	}
	return nil, fmt.Errorf("expected object, got %T", value)
}

func parseCoords(value any) (Coordinates, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return Coordinates{}, fmt.Errorf("coords must be an object")
	}
	lat, err := domain.ParseNumber("coords.lat", m["lat"], domain.Latitude)
	if err != nil {
		return Coordinates{}, err
	}
	lng, err := domain.ParseNumber("coords.lng", m["lng"], domain.Longitude)
	if err != nil {
		return Coordinates{}, err
	}
	c := Coordinates{Lat: lat, Lng: lng}
	if raw, ok := m["altitude"]; ok && raw != nil {
		alt, err := domain.ParseNumber("coords.altitude", raw, domain.Finite)
		if err != nil {
			return Coordinates{}, err
		}
		c.Altitude = domain.Some(alt)
	}
	return c, nil
}
