package domain

import (
	"errors"
	"reflect"
	"testing"

	"github.com/paulmach/orb"

	"globewidget/pkg/callback"
	"globewidget/pkg/domain/extension"
)

func mustBag(t *testing.T, raw map[string]any) extension.Bag {
	t.Helper()
	bag, err := extension.FromMap(raw)
	if err != nil {
		t.Fatalf("bag: %v", err)
	}
	return bag
}

func TestNewPointAssignsUniqueIdentities(t *testing.T) {
	const n = 10000
	seen := make(map[ID]struct{}, n)
	for i := 0; i < n; i++ {
		p, err := NewPoint(Point{Lat: 1, Lng: 2})
		if err != nil {
			t.Fatalf("new point: %v", err)
		}
		if p.ID.IsZero() {
			t.Fatalf("expected generated identity")
		}
		if _, dup := seen[p.ID]; dup {
			t.Fatalf("identity collision after %d points: %s", i, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
}

func TestNewPointKeepsCallerIdentity(t *testing.T) {
	p, err := NewPoint(Point{ID: "hq", Lat: 10, Lng: 20})
	if err != nil {
		t.Fatalf("new point: %v", err)
	}
	if p.ID != "hq" {
		t.Fatalf("expected caller identity, got %s", p.ID)
	}
}

func TestPointWireRoundTripPreservesIdentityAndExtras(t *testing.T) {
	p, err := NewPoint(Point{
		Lat:      10,
		Lng:      20,
		Altitude: Some(0.2),
		Color:    SolidColor("#ff00cc"),
		Extras:   mustBag(t, map[string]any{"meta": map[string]any{"source": "census"}, "population": 12.0}),
	})
	if err != nil {
		t.Fatalf("new point: %v", err)
	}
	wire := p.Wire()
	if _, ok := wire["radius"]; ok {
		t.Fatalf("expected unset radius omitted, got %v", wire)
	}
	if wire["population"] != 12.0 {
		t.Fatalf("expected extras flattened into wire, got %v", wire)
	}
	back, err := FromWire[Point](wire)
	if err != nil {
		t.Fatalf("from wire: %v", err)
	}
	if back.ID != p.ID {
		t.Fatalf("identity changed across round trip: %s -> %s", p.ID, back.ID)
	}
	if !reflect.DeepEqual(back.Wire(), wire) {
		t.Fatalf("wire mismatch after round trip:\n%v\n%v", wire, back.Wire())
	}
	if !back.Extras.Equal(p.Extras) {
		t.Fatalf("extras not preserved")
	}
}

func TestPointValidation(t *testing.T) {
	cases := []struct {
		name string
		raw  map[string]any
		path string
	}{
		{"lat range", map[string]any{"lat": 95.0, "lng": 0.0}, "lat"},
		{"lng range", map[string]any{"lat": 0.0, "lng": -181.0}, "lng"},
		{"lat type", map[string]any{"lat": "north", "lng": 0.0}, "lat"},
		{"lat bool", map[string]any{"lat": true, "lng": 0.0}, "lat"},
		{"missing lng", map[string]any{"lat": 0.0}, "lng"},
		{"radius", map[string]any{"lat": 0.0, "lng": 0.0, "radius": 0.0}, "radius"},
		{"color type", map[string]any{"lat": 0.0, "lng": 0.0, "color": 12.0}, "color"},
		{"color gradient", map[string]any{"lat": 0.0, "lng": 0.0, "color": []any{"red", "blue"}}, "color"},
		{"color unknown", map[string]any{"lat": 0.0, "lng": 0.0, "color": "notacolor"}, "color"},
		{"label type", map[string]any{"lat": 0.0, "lng": 0.0, "label": 3.0}, "label"},
	}
	for _, tc := range cases {
		_, err := FromWire[Point](tc.raw)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
		if verr.Path != tc.path {
			t.Fatalf("%s: expected path %q, got %q (%v)", tc.name, tc.path, verr.Path, err)
		}
	}
}

func TestExtrasMustNotShadowDeclaredFields(t *testing.T) {
	_, err := NewPoint(Point{Lat: 1, Lng: 1, Extras: mustBag(t, map[string]any{"color": "red"})})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "color" {
		t.Fatalf("expected collision error on color, got %v", err)
	}
}

func TestNormalizeAllRejectsDuplicateIdentities(t *testing.T) {
	_, err := NormalizeAll([]Point{{ID: "a", Lat: 1, Lng: 1}, {ID: "a", Lat: 2, Lng: 2}})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "[1].id" {
		t.Fatalf("expected duplicate identity error, got %v", err)
	}
	_, err = NormalizeAll([]Point{{Lat: 1, Lng: 1}, {Lat: 100, Lng: 1}})
	if !errors.As(err, &verr) || verr.Path != "[1].lat" {
		t.Fatalf("expected indexed path, got %v", err)
	}
}

func TestApplyPatchChangesOnlyPatchedFields(t *testing.T) {
	p, err := NewPoint(Point{
		Lat:    10,
		Lng:    20,
		Radius: Some(0.5),
		Color:  SolidColor("#ff0000"),
		Label:  Some("hq"),
		Extras: mustBag(t, map[string]any{"meta": map[string]any{"k": "v"}}),
	})
	if err != nil {
		t.Fatalf("new point: %v", err)
	}
	before := p.Wire()

	updated, delta, err := ApplyPatch(p, Patch{"color": "#00ff00"})
	if err != nil {
		t.Fatalf("apply patch: %v", err)
	}
	if !reflect.DeepEqual(delta, map[string]any{"id": string(p.ID), "color": "#00ff00"}) {
		t.Fatalf("unexpected delta %v", delta)
	}
	after := updated.Wire()
	for key, value := range before {
		if key == "color" {
			continue
		}
		if !reflect.DeepEqual(after[key], value) {
			t.Fatalf("field %s changed: %v -> %v", key, value, after[key])
		}
	}
	if after["color"] != "#00ff00" {
		t.Fatalf("expected patched color, got %v", after["color"])
	}
	if !reflect.DeepEqual(p.Wire(), before) {
		t.Fatalf("original datum mutated by patch")
	}
}

func TestApplyPatchNullSemantics(t *testing.T) {
	p, err := NewPoint(Point{Lat: 10, Lng: 20, Label: Some("hq")})
	if err != nil {
		t.Fatalf("new point: %v", err)
	}
	cleared, delta, err := ApplyPatch(p, Patch{"label": nil})
	if err != nil {
		t.Fatalf("clear optional: %v", err)
	}
	if cleared.Label.IsSet() {
		t.Fatalf("expected label cleared")
	}
	if v, ok := delta["label"]; !ok || v != nil {
		t.Fatalf("expected explicit null in delta, got %v", delta)
	}

	if _, _, err := ApplyPatch(p, Patch{"lat": nil}); err == nil {
		t.Fatalf("expected null on required field to fail")
	}
	if _, _, err := ApplyPatch(p, Patch{"id": "other"}); err == nil {
		t.Fatalf("expected identity mismatch to fail")
	}
}

func TestApplyPatchIsAllOrNothing(t *testing.T) {
	p, err := NewPoint(Point{Lat: 10, Lng: 20})
	if err != nil {
		t.Fatalf("new point: %v", err)
	}
	_, _, err = ApplyPatch(p, Patch{"color": "#00ff00", "lat": 123.0})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "lat" {
		t.Fatalf("expected lat validation error, got %v", err)
	}
	if p.Color.IsSet() {
		t.Fatalf("partial patch leaked into original")
	}
}

func TestApplyPatchAcceptsExtensionFields(t *testing.T) {
	p, err := NewPoint(Point{Lat: 10, Lng: 20})
	if err != nil {
		t.Fatalf("new point: %v", err)
	}
	updated, _, err := ApplyPatch(p, Patch{"population": 42.0})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if v, ok := updated.Extras.Get("population"); !ok || v != 42.0 {
		t.Fatalf("expected extension field stored, got %v", v)
	}
}

func TestApplyPatchKeepsTypedExtensionValues(t *testing.T) {
	spec, err := callback.New("tint", "func tint(d map[string]any) string { return \"red\" }")
	if err != nil {
		t.Fatalf("spec: %v", err)
	}
	bag := extension.New()
	if err := bag.Set("cb", spec); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := bag.Set("tags", []string{"a", "b"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	p, err := NewPoint(Point{Lat: 10, Lng: 20, Color: SolidColor("red"), Extras: bag})
	if err != nil {
		t.Fatalf("new point: %v", err)
	}
	updated, _, err := ApplyPatch(p, Patch{"lat": 5.0})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if updated.Lat != 5 {
		t.Fatalf("expected patched lat, got %v", updated.Lat)
	}
	cb, _ := updated.Extras.Get("cb")
	if got, ok := cb.(callback.Spec); !ok || got != spec {
		t.Fatalf("expected callback.Spec kept, got %T", cb)
	}
	tags, _ := updated.Extras.Get("tags")
	if _, ok := tags.([]string); !ok {
		t.Fatalf("expected []string kept, got %T", tags)
	}
	if !updated.Extras.Equal(p.Extras) {
		t.Fatalf("extras changed by unrelated patch")
	}

	other, err := callback.New("shade", "func shade(d map[string]any) string { return \"blue\" }")
	if err != nil {
		t.Fatalf("spec: %v", err)
	}
	replaced, delta, err := ApplyPatch(updated, Patch{"cb": other, "tags": nil})
	if err != nil {
		t.Fatalf("apply extension patch: %v", err)
	}
	if cb, _ := replaced.Extras.Get("cb"); cb != any(other) {
		t.Fatalf("expected replaced callback.Spec, got %v", cb)
	}
	if replaced.Extras.Has("tags") {
		t.Fatalf("expected tags removed")
	}
	if !reflect.DeepEqual(delta["cb"], other.Wire()) {
		t.Fatalf("expected callback wire form in delta, got %v", delta["cb"])
	}
}

func TestApplyPatchKeepsNestedExtras(t *testing.T) {
	spec, err := callback.New("w", "func w(p map[string]any) float64 { return 1 }")
	if err != nil {
		t.Fatalf("spec: %v", err)
	}
	pointBag := extension.New()
	if err := pointBag.Set("cb", spec); err != nil {
		t.Fatalf("set: %v", err)
	}
	h, err := NewHeatmap(Heatmap{Points: []HeatmapPoint{{Lat: 1, Lng: 1, Extras: pointBag}}})
	if err != nil {
		t.Fatalf("new heatmap: %v", err)
	}
	updated, _, err := ApplyPatch(h, Patch{"bandwidth": 2.0})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cb, _ := updated.Points[0].Extras.Get("cb"); cb != any(spec) {
		t.Fatalf("expected nested callback.Spec kept, got %T", cb)
	}
}

func TestDeclaredFieldsHaveStructFields(t *testing.T) {
	for _, d := range []Datum{
		Point{}, Arc{}, Polygon{}, Path{}, Heatmap{}, HexBinPoint{},
		HexPolygon{}, Tile{}, Particle{}, Ring{}, Label{},
	} {
		rv := reflect.ValueOf(d)
		for _, name := range d.declared().Names() {
			if name == "id" {
				continue
			}
			if !rv.FieldByName(structField(name)).IsValid() {
				t.Fatalf("%s: declared field %s has no struct field", d.Kind(), name)
			}
		}
		if !rv.FieldByName("Extras").IsValid() {
			t.Fatalf("%s: missing Extras", d.Kind())
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	h, err := NewHeatmap(Heatmap{Points: []HeatmapPoint{{Lat: 1, Lng: 1, Extras: mustBag(t, map[string]any{"tag": "a"})}}})
	if err != nil {
		t.Fatalf("new heatmap: %v", err)
	}
	clone := Clone(h)
	clone.Points[0].Lat = 50
	_ = clone.Points[0].Extras.Set("tag", "b")
	if h.Points[0].Lat != 1 {
		t.Fatalf("clone aliased points slice")
	}
	if v, _ := h.Points[0].Extras.Get("tag"); v != "a" {
		t.Fatalf("clone aliased nested extras")
	}
}

func square(lng, lat, size float64) orb.Ring {
	return orb.Ring{{lng, lat}, {lng + size, lat}, {lng + size, lat + size}, {lng, lat + size}, {lng, lat}}
}

func reversed(r orb.Ring) orb.Ring {
	out := make(orb.Ring, len(r))
	for i := range r {
		out[i] = r[len(r)-1-i]
	}
	return out
}

func TestGeometryValidation(t *testing.T) {
	if _, err := NewPolygon(square(0, 0, 10), reversed(square(2, 2, 2))); err != nil {
		t.Fatalf("valid polygon with hole rejected: %v", err)
	}
	if _, err := NewMultiPolygon(orb.Polygon{square(0, 0, 1)}, orb.Polygon{square(5, 5, 1)}); err != nil {
		t.Fatalf("valid multipolygon rejected: %v", err)
	}

	bad := []struct {
		name  string
		rings []orb.Ring
	}{
		{"clockwise exterior", []orb.Ring{reversed(square(0, 0, 1))}},
		{"counter-clockwise hole", []orb.Ring{square(0, 0, 10), square(2, 2, 2)}},
		{"open ring", []orb.Ring{square(0, 0, 1)[:4]}},
		{"too short", []orb.Ring{{{0, 0}, {1, 1}, {0, 0}}}},
		{"out of range", []orb.Ring{square(179, 0, 5)}},
	}
	for _, tc := range bad {
		_, err := NewPolygon(tc.rings...)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
	}
}

func TestPolygonFromWireRejectsUnsupportedGeometry(t *testing.T) {
	_, err := FromWire[Polygon](map[string]any{
		"geometry": map[string]any{"type": "Point", "coordinates": []any{1.0, 2.0}},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "geometry" {
		t.Fatalf("expected geometry validation error, got %v", err)
	}
}

func TestPolygonWireIsGeoJSON(t *testing.T) {
	g, err := NewPolygon(square(0, 0, 1))
	if err != nil {
		t.Fatalf("polygon: %v", err)
	}
	p, err := NewPolygonDatum(Polygon{Geometry: g, CapColor: SolidColor("steelblue")})
	if err != nil {
		t.Fatalf("datum: %v", err)
	}
	wire := p.Wire()
	geometry := wire["geometry"].(map[string]any)
	if geometry["type"] != "Polygon" {
		t.Fatalf("expected GeoJSON type, got %v", geometry)
	}
	back, err := FromWire[Polygon](wire)
	if err != nil {
		t.Fatalf("from wire: %v", err)
	}
	if !reflect.DeepEqual(back.Wire(), wire) {
		t.Fatalf("polygon wire changed across round trip")
	}
}

func TestPathAcceptsTypedCoordinates(t *testing.T) {
	p, err := FromWire[Path](map[string]any{
		"path":  [][]float64{{10, 20}, {11, 21, 0.5}},
		"color": []string{"red", "blue"},
	})
	if err != nil {
		t.Fatalf("from wire: %v", err)
	}
	if len(p.Path) != 2 || !p.Path[1].Alt.IsSet() {
		t.Fatalf("unexpected path %+v", p.Path)
	}
	if !p.Color.IsGradient() {
		t.Fatalf("expected gradient color")
	}
	if _, err := FromWire[Path](map[string]any{"path": []any{[]any{1.0}}}); err == nil {
		t.Fatalf("expected malformed coordinate to fail")
	}
}

func TestHeatmapRequiresPoints(t *testing.T) {
	if _, err := NewHeatmap(Heatmap{}); err == nil {
		t.Fatalf("expected empty heatmap to fail")
	}
	h, err := FromWire[Heatmap](map[string]any{
		"points": []any{map[string]any{"lat": 1.0, "lng": 2.0, "weight": 3.0, "city": "x"}},
	})
	if err != nil {
		t.Fatalf("from wire: %v", err)
	}
	if v, _ := h.Points[0].Extras.Get("city"); v != "x" {
		t.Fatalf("expected nested extras preserved")
	}
	_, err = FromWire[Heatmap](map[string]any{"points": []any{map[string]any{"lat": 100.0, "lng": 2.0}}})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "points[0].lat" {
		t.Fatalf("expected nested path, got %v", err)
	}
}

func TestLabelAndHexPolygonDomains(t *testing.T) {
	if _, err := NewLabel(Label{Lat: 1, Lng: 1}); err == nil {
		t.Fatalf("expected missing text to fail")
	}
	if _, err := NewLabel(Label{Lat: 1, Lng: 1, Text: "x", DotOrientation: Some("left")}); err == nil {
		t.Fatalf("expected invalid dot orientation to fail")
	}
	g, _ := NewPolygon(square(0, 0, 1))
	if _, err := NewHexPolygon(HexPolygon{Geometry: g, Resolution: Some(16)}); err == nil {
		t.Fatalf("expected resolution outside [0, 15] to fail")
	}
}

func TestTileMaterial(t *testing.T) {
	tile, err := NewTile(Tile{Lat: 1, Lng: 1, Material: Some(DefaultTileMaterial())})
	if err != nil {
		t.Fatalf("new tile: %v", err)
	}
	material := tile.Wire()["material"].(map[string]any)
	if material["type"] != "MeshLambertMaterial" {
		t.Fatalf("unexpected material %v", material)
	}
	if _, err := FromWire[Tile](map[string]any{"lat": 1.0, "lng": 1.0, "material": map[string]any{"type": "X", "extra": 1.0}}); err == nil {
		t.Fatalf("expected unknown material key to fail")
	}
}

func TestColorFormats(t *testing.T) {
	valid := []string{"#fff", "#ffffff", "#ffff", "#ffffff80", "red", "Steelblue", "transparent", "rgb(1, 2, 3)", "rgba(1,2,3,0.5)", "hsl(120deg 50% 50%)"}
	for _, c := range valid {
		if err := ValidateCSSColor("color", c); err != nil {
			t.Fatalf("expected %q valid: %v", c, err)
		}
	}
	invalid := []string{"", "#ff", "#gggggg", "rgb(1,2)", "blurple"}
	for _, c := range invalid {
		if err := ValidateCSSColor("color", c); err == nil {
			t.Fatalf("expected %q invalid", c)
		}
	}
}
