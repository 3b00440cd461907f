package config

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"globewidget/pkg/accessor"
	"globewidget/pkg/callback"
	"globewidget/pkg/domain"
)

func threePoints(t *testing.T) []domain.Point {
	t.Helper()
	return []domain.Point{
		{ID: "a", Lat: 10, Lng: 20, Color: domain.SolidColor("red")},
		{ID: "b", Lat: -5, Lng: 40, Color: domain.SolidColor("#00ff00")},
		{ID: "c", Lat: 0, Lng: 0, Color: domain.SolidColor("rgb(0, 0, 255)")},
	}
}

func TestPointsLayerEndToEnd(t *testing.T) {
	layer, err := NewLayer(threePoints(t))
	if err != nil {
		t.Fatalf("layer: %v", err)
	}
	globe, err := New(WithLayer(layer))
	if err != nil {
		t.Fatalf("globe: %v", err)
	}
	wire := globe.Wire()
	points, ok := wire["points"].(map[string]any)
	if !ok {
		t.Fatalf("expected points section, got %v", wire)
	}
	data, ok := points["pointsData"].([]any)
	if !ok || len(data) != 3 {
		t.Fatalf("expected 3 points on the wire, got %v", points["pointsData"])
	}
	if _, bound := points["pointColor"]; bound {
		t.Fatalf("pointColor must not be emitted unless bound")
	}
	if data[0].(map[string]any)["color"] != "red" {
		t.Fatalf("expected datum color on the wire, got %v", data[0])
	}
	for _, name := range []string{"init", "layout", "globe", "arcs", "view"} {
		if _, present := wire[name]; present {
			t.Fatalf("expected untouched section %s to be omitted", name)
		}
	}
}

func TestSettingsAcrossSections(t *testing.T) {
	globe, err := New(With(
		Set(PointColor, accessor.Field("tier")),
		Set(PointLabel, "name"),
		Set(PointAltitude, "elevation"),
		Set(PointsTransitionDuration, 500),
		Set(BackgroundColor, "#000011"),
		Set(ShowGraticules, true),
	))
	if err != nil {
		t.Fatalf("globe: %v", err)
	}
	wire := globe.Wire()
	points := wire["points"].(map[string]any)
	if !reflect.DeepEqual(points["pointColor"], map[string]any{"type": accessor.WireField, "name": "tier"}) {
		t.Fatalf("field on a color attribute needs an envelope, got %v", points["pointColor"])
	}
	if points["pointLabel"] != "name" {
		t.Fatalf("label strings are field names, got %v", points["pointLabel"])
	}
	if points["pointAltitude"] != "elevation" {
		t.Fatalf("numeric strings are field names, got %v", points["pointAltitude"])
	}
	if points["pointsTransitionDuration"] != 500 {
		t.Fatalf("unexpected duration %v", points["pointsTransitionDuration"])
	}
	v, ok := globe.Section(SectionPoints).Get(PointAltitude)
	if !ok || v.Variant() != accessor.VariantField {
		t.Fatalf("expected field binding, got %v", v)
	}
	if wire["layout"].(map[string]any)["backgroundColor"] != "#000011" {
		t.Fatalf("unexpected layout %v", wire["layout"])
	}
}

func TestInvalidColorLiteralIsRejected(t *testing.T) {
	_, err := New(With(Set(PointColor, "population")))
	var invalid *domain.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if invalid.Path != "points.pointColor" {
		t.Fatalf("expected attribute path, got %q", invalid.Path)
	}
}

func TestBindingRejections(t *testing.T) {
	cases := []struct {
		name     string
		setting  Setting
		mismatch bool
	}{
		{"field on scalar", Set(PointsTransitionDuration, accessor.Field("ms")), true},
		{"negative duration", Set(PointsTransitionDuration, -1), false},
		{"fractional duration", Set(ArcsTransitionDuration, 1.5), false},
		{"bool latitude", Set(PointLat, true), true},
		{"gradient on solid color", Set(PointColor, []string{"red", "blue"}), false},
		{"h3 resolution", Set(HexBinResolution, 16), false},
		{"dot orientation", Set(LabelDotOrientation, "left"), false},
		{"unknown point of view key", Set(PointOfView, map[string]any{"zoom": 1.0}), false},
		{"null point resolution", Set(PointResolution, nil), false},
		{"null show globe", Set(ShowGlobe, nil), false},
		{"null width", Set(Width, nil), false},
		{"null points transition", Set(PointsTransitionDuration, nil), false},
		{"null arcs transition", Set(ArcsTransitionDuration, accessor.Null()), false},
		{"null point color", Set(PointColor, nil), false},
	}
	for _, tc := range cases {
		_, err := New(With(tc.setting))
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		var mismatch *domain.TypeMismatchError
		var invalid *domain.ValidationError
		if tc.mismatch && !errors.As(err, &mismatch) {
			t.Fatalf("%s: expected type mismatch, got %v", tc.name, err)
		}
		if !tc.mismatch && !errors.As(err, &invalid) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestGradientAllowedOnArcs(t *testing.T) {
	layer, err := NewLayer[domain.Arc](nil, Set(ArcColor, []string{"red", "blue"}))
	if err != nil {
		t.Fatalf("layer: %v", err)
	}
	if got := layer.Wire()["arcColor"]; !reflect.DeepEqual(got, []any{"red", "blue"}) {
		t.Fatalf("unexpected gradient wire %v", got)
	}
	if _, present := layer.Wire()["arcsData"]; present {
		t.Fatalf("unset collection must be omitted")
	}
}

func TestSectionRejectsForeignAttribute(t *testing.T) {
	if _, err := NewSection(SectionArcs, Set(PointColor, "red")); err == nil {
		t.Fatalf("expected points attribute rejected on arcs")
	}
}

func TestNullIsDistinctFromUnset(t *testing.T) {
	globe := MustNew(With(Set(GlobeImageURL, nil)))
	section := globe.Wire()["globe"].(map[string]any)
	value, present := section["globeImageUrl"]
	if !present || value != nil {
		t.Fatalf("expected explicit null, got %v present=%v", value, present)
	}
	for _, attr := range []Attribute{BackgroundImageURL, BumpImageURL, GlobeTileEngineURL, ParticlesTexture} {
		if _, err := New(With(Set(attr, nil))); err != nil {
			t.Fatalf("%s: expected null accepted, got %v", attr, err)
		}
	}
	decoded, err := FromWire(map[string]any{"globe": map[string]any{"globeImageUrl": nil}})
	if err != nil {
		t.Fatalf("decode null url: %v", err)
	}
	if bound, ok := decoded.Section(SectionGlobe).Get(GlobeImageURL); !ok || !bound.IsNull() {
		t.Fatalf("expected decoded null, got %v ok=%v", bound, ok)
	}
	cleared := globe.WithoutAttribute(GlobeImageURL)
	if _, present := cleared.Wire()["globe"]; present {
		t.Fatalf("expected section omitted after unset")
	}
	if _, present := globe.Wire()["globe"]; !present {
		t.Fatalf("original value must not change")
	}
}

func TestWireIsMemoizedAndIsolated(t *testing.T) {
	layer, err := NewLayer(threePoints(t))
	if err != nil {
		t.Fatalf("layer: %v", err)
	}
	globe := MustNew(WithLayer(layer))
	first := globe.Wire()
	first["points"].(map[string]any)["pointsData"] = nil
	second := globe.Wire()
	if data, _ := second["points"].(map[string]any)["pointsData"].([]any); len(data) != 3 {
		t.Fatalf("caller mutation leaked into memoized wire form")
	}
}

func TestLayerPatches(t *testing.T) {
	layer, err := NewLayer(threePoints(t))
	if err != nil {
		t.Fatalf("layer: %v", err)
	}
	before := layer.DataWire()

	patched, deltas, err := layer.WithPatches(DatumPatch{ID: "b", Patch: domain.Patch{"altitude": 0.3}})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	want := map[string]any{"id": "b", "altitude": 0.3}
	if len(deltas) != 1 || !reflect.DeepEqual(deltas[0], want) {
		t.Fatalf("unexpected delta %v", deltas)
	}
	after := patched.DataWire()
	if !reflect.DeepEqual(after[0], before[0]) || !reflect.DeepEqual(after[2], before[2]) {
		t.Fatalf("untouched datums changed")
	}
	b := after[1].(map[string]any)
	if b["altitude"] != 0.3 || b["lat"] != -5.0 || b["color"] != "#00ff00" {
		t.Fatalf("unexpected patched datum %v", b)
	}
	if !reflect.DeepEqual(layer.DataWire(), before) {
		t.Fatalf("original layer mutated")
	}
}

func TestLayerPatchMissAndAllOrNothing(t *testing.T) {
	layer, err := NewLayer(threePoints(t))
	if err != nil {
		t.Fatalf("layer: %v", err)
	}
	before := layer.DataWire()

	_, _, err = layer.WithPatches(DatumPatch{ID: "missing", Patch: domain.Patch{"lat": 1.0}})
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) || notFound.ID != "missing" || notFound.Kind != domain.KindPoint {
		t.Fatalf("expected not found, got %v", err)
	}

	same, _, err := layer.WithPatches(
		DatumPatch{ID: "a", Patch: domain.Patch{"lat": 1.0}},
		DatumPatch{ID: "c", Patch: domain.Patch{"lat": 100.0}},
	)
	var invalid *domain.ValidationError
	if !errors.As(err, &invalid) || invalid.Path != "pointsData[1].lat" {
		t.Fatalf("expected second patch rejected with path, got %v", err)
	}
	if !reflect.DeepEqual(same.DataWire(), before) {
		t.Fatalf("failed batch partially applied")
	}
}

func TestDuplicateIdentitiesCarryDataPath(t *testing.T) {
	_, err := NewLayer([]domain.Point{{ID: "x", Lat: 1, Lng: 1}, {ID: "x", Lat: 2, Lng: 2}})
	var invalid *domain.ValidationError
	if !errors.As(err, &invalid) || invalid.Path != "pointsData[1].id" {
		t.Fatalf("expected duplicate identity error, got %v", err)
	}
}

func TestFromWireRoundTrip(t *testing.T) {
	altitude := DefaultHexAltitude
	layer, err := NewLayer(threePoints(t), Set(PointLabel, accessor.Literal("HQ")), Set(PointRadius, "size"))
	if err != nil {
		t.Fatalf("layer: %v", err)
	}
	hex, err := NewLayer[domain.HexBinPoint](nil, Set(HexAltitude, altitude), Set(HexBinResolution, 4))
	if err != nil {
		t.Fatalf("hex layer: %v", err)
	}
	globe := MustNew(
		WithLayer(layer),
		WithLayer(hex),
		With(Set(PointOfView, map[string]any{"lat": 10.0, "lng": 20.0, "altitude": 2.0})),
	)

	payload, err := json.Marshal(globe)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Globe
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(normalizeJSON(t, decoded.Wire()), normalizeJSON(t, globe.Wire())) {
		t.Fatalf("round trip mismatch:\n%v\n%v", decoded.Wire(), globe.Wire())
	}
	label, _ := decoded.Section(SectionPoints).Get(PointLabel)
	if label.Variant() != accessor.VariantLiteral {
		t.Fatalf("label literal must survive round trip, got %v", label)
	}
	bound, _ := decoded.Section(SectionHexBin).Get(HexAltitude)
	if spec, ok := bound.CallbackSpec(); !ok || spec != altitude {
		t.Fatalf("callback must survive round trip, got %v", bound)
	}
	if got := LayerOf[domain.Point](decoded).Len(); got != 3 {
		t.Fatalf("expected 3 points after decode, got %d", got)
	}
}

func normalizeJSON(t *testing.T, value any) any {
	t.Helper()
	payload, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(payload, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestFromWireRejectsUnknownKeys(t *testing.T) {
	cases := []map[string]any{
		{"pointz": map[string]any{}},
		{"points": map[string]any{"pointColour": "red"}},
		{"points": "nope"},
		{"points": map[string]any{"pointsData": []any{map[string]any{"lat": 200.0, "lng": 0.0}}}},
		{"points": map[string]any{"pointResolution": nil}},
		{"globe": map[string]any{"showGlobe": map[string]any{"type": "literal", "value": nil}}},
	}
	for i, raw := range cases {
		if _, err := FromWire(raw); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestDefaultHexAltitude(t *testing.T) {
	spec, err := callback.New(DefaultHexAltitude.Name, DefaultHexAltitude.Source)
	if err != nil {
		t.Fatalf("default hex altitude: %v", err)
	}
	if spec != DefaultHexAltitude {
		t.Fatalf("default hex altitude must already be normalized, got %+v", spec)
	}
	if !callback.IsWire(spec.Wire()) {
		t.Fatalf("expected callback payload")
	}
}

func TestAttributeTable(t *testing.T) {
	for _, name := range SectionNames() {
		if len(Attributes(name)) == 0 {
			t.Fatalf("section %s has no attributes", name)
		}
	}
	attr, ok := Lookup(SectionPoints, "pointLat")
	if !ok || attr.Name() != PointLat.Name() || attr.Section() != SectionPoints || !attr.IsAccessor() {
		t.Fatalf("unexpected lookup result %v", attr)
	}
	if PointsMerge.IsAccessor() {
		t.Fatalf("pointsMerge is a layer-wide scalar")
	}
	for _, kind := range domain.Kinds() {
		if DataKey(kind) == "" || SectionOf(kind) == "" {
			t.Fatalf("kind %s has no layer", kind)
		}
	}
}
