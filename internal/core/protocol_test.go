package core

import (
	"testing"

	"globewidget/pkg/domain"
)

func TestParseEvent(t *testing.T) {
	coords := map[string]any{"lat": 12.5, "lng": -40.0, "altitude": 0.2}
	datum := map[string]any{"id": "a", "lat": 12.5, "lng": -40.0}
	cases := []struct {
		name   string
		msg    Message
		kind   domain.Kind
		action string
		datum  bool
		prev   bool
		alt    bool
	}{
		{"ready", Message{"type": EventGlobeReady}, "", "", false, false, false},
		{"globe click", Message{"type": EventGlobeClick, "payload": coords}, "", ActionClick, false, false, true},
		{"globe right click", Message{"type": EventGlobeRightClick, "payload": map[string]any{"lat": 1.0, "lng": 2.0}}, "", ActionRightClick, false, false, false},
		{"point click", Message{"type": "point_click", "payload": map[string]any{"datum": datum, "coords": coords}}, domain.KindPoint, ActionClick, true, false, true},
		{"hex polygon right click", Message{"type": "hex_polygon_right_click", "payload": map[string]any{"datum": datum, "coords": coords}}, domain.KindHexPolygon, ActionRightClick, true, false, true},
		{"hover enter", Message{"type": "arc_hover", "payload": map[string]any{"datum": datum, "previousDatum": nil}}, domain.KindArc, ActionHover, true, false, false},
		{"hover leave", Message{"type": "hexbin_hover", "payload": map[string]any{"datum": nil, "previousDatum": datum}}, domain.KindHexBin, ActionHover, false, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := ParseEvent(tc.msg)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if ev.Type != tc.msg.Type() || ev.Kind != tc.kind || ev.Action != tc.action {
				t.Fatalf("unexpected event %+v", ev)
			}
			if (ev.Datum != nil) != tc.datum || (ev.Previous != nil) != tc.prev {
				t.Fatalf("unexpected datums %+v", ev)
			}
			if ev.Coords.Altitude.IsSet() != tc.alt {
				t.Fatalf("unexpected altitude %+v", ev.Coords)
			}
		})
	}
}

func TestParseEventRejects(t *testing.T) {
	cases := []struct {
		name string
		msg  Message
	}{
		{"missing type", Message{}},
		{"unknown type", Message{"type": "moon_click"}},
		{"unknown action", Message{"type": "point_dblclick"}},
		{"globe click without payload", Message{"type": EventGlobeClick}},
		{"latitude out of range", Message{"type": EventGlobeClick, "payload": map[string]any{"lat": 91.0, "lng": 0.0}}},
		{"bool longitude", Message{"type": EventGlobeClick, "payload": map[string]any{"lat": 0.0, "lng": true}}},
		{"click without datum", Message{"type": "point_click", "payload": map[string]any{"coords": map[string]any{"lat": 0.0, "lng": 0.0}}}},
		{"click without coords", Message{"type": "point_click", "payload": map[string]any{"datum": map[string]any{}}}},
		{"datum not object", Message{"type": "ring_hover", "payload": map[string]any{"datum": "a"}}},
		{"payload not object", Message{"type": "ring_hover", "payload": []any{}}},
	}
	for _, tc := range cases {
		if _, err := ParseEvent(tc.msg); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestLayerEventNames(t *testing.T) {
	if got := LayerEvent(domain.KindHexPolygon, ActionRightClick); got != "hex_polygon_right_click" {
		t.Fatalf("unexpected name %s", got)
	}
	for _, kind := range domain.Kinds() {
		for _, action := range []string{ActionClick, ActionRightClick, ActionHover} {
			k, a, ok := splitLayerEvent(LayerEvent(kind, action))
			if !ok || k != kind || a != action {
				t.Fatalf("round trip failed for %s/%s: %s %s %v", kind, action, k, a, ok)
			}
		}
	}
}
