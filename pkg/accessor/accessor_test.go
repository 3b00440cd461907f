package accessor

import (
	"errors"
	"reflect"
	"testing"

	"globewidget/pkg/callback"
	"globewidget/pkg/domain"
)

var (
	colorRule = Rule{Name: "pointColor", Accessor: true, Strings: StringsAsLiterals, Literal: Color(false)}
	latRule   = Rule{Name: "pointLat", Accessor: true, Strings: StringsAsFields, Literal: Number(domain.Latitude)}
	labelRule = Rule{Name: "pointLabel", Accessor: true, Strings: StringsAsFields, Literal: Text()}
	resRule   = Rule{Name: "pointResolution", Literal: Int(1, 1<<20)}
	objRule   = Rule{Name: "rendererConfig", Literal: Object()}
	urlRule   = Rule{Name: "globeImageUrl", Literal: URL(), Nullable: true}
)

func pickColor(d map[string]any) string {
	if d["population"].(float64) > 1e6 {
		return "red"
	}
	return "white"
}

func TestRoundTripOnSameAttribute(t *testing.T) {
	marked, err := callback.Mark(pickColor)
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	cb, err := Func(marked)
	if err != nil {
		t.Fatalf("func: %v", err)
	}

	cases := []struct {
		name    string
		value   Value
		wire    any
		variant Variant
	}{
		{"literal", Literal("#ff0000"), "#ff0000", VariantLiteral},
		{"field", Field("color"), map[string]any{"type": WireField, "name": "color"}, VariantField},
		{"callback", cb, marked.Spec().Wire(), VariantCallback},
	}
	for _, tc := range cases {
		bound, err := colorRule.Bind(tc.value)
		if err != nil {
			t.Fatalf("%s: bind: %v", tc.name, err)
		}
		wire := colorRule.Encode(bound)
		if !reflect.DeepEqual(wire, tc.wire) {
			t.Fatalf("%s: expected wire %v, got %v", tc.name, tc.wire, wire)
		}
		back, err := colorRule.Decode(wire)
		if err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if back.Variant() != tc.variant || !back.Equal(bound) {
			t.Fatalf("%s: expected %v, got %v", tc.name, bound, back)
		}
	}
}

func TestStringModeDecidesBareStrings(t *testing.T) {
	v, err := colorRule.Classify("red")
	if err != nil || v.Variant() != VariantLiteral {
		t.Fatalf("expected color string literal, got %v err=%v", v, err)
	}
	v, err = latRule.Classify("latitude")
	if err != nil || v.Variant() != VariantField {
		t.Fatalf("expected lat string field, got %v err=%v", v, err)
	}
	if name, _ := v.FieldName(); name != "latitude" {
		t.Fatalf("unexpected field name %q", name)
	}
	if wire := latRule.Encode(v); wire != "latitude" {
		t.Fatalf("expected bare field name on wire, got %v", wire)
	}
}

func TestLiteralStringOnFieldAttributeUsesEnvelope(t *testing.T) {
	v, err := labelRule.Bind(Literal("Headquarters"))
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	wire := labelRule.Encode(v)
	if !reflect.DeepEqual(wire, map[string]any{"type": WireLiteral, "value": "Headquarters"}) {
		t.Fatalf("expected literal envelope, got %v", wire)
	}
	back, err := labelRule.Decode(wire)
	if err != nil || !back.Equal(v) {
		t.Fatalf("expected literal back, got %v err=%v", back, err)
	}
}

func TestLiteralObjectThatLooksLikeEnvelope(t *testing.T) {
	v, err := objRule.Classify(map[string]any{"type": "field", "name": "x"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	wire := objRule.Encode(v)
	back, err := objRule.Decode(wire)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Variant() != VariantLiteral || !back.Equal(v) {
		t.Fatalf("expected literal object preserved, got %v", back)
	}
}

func TestClassifyRejections(t *testing.T) {
	var mismatch *domain.TypeMismatchError
	if _, err := colorRule.Classify(pickColor); !errors.As(err, &mismatch) {
		t.Fatalf("expected unmarked function rejected, got %v", err)
	}
	if _, err := latRule.Classify(true); !errors.As(err, &mismatch) {
		t.Fatalf("expected bool on numeric attribute rejected, got %v", err)
	}
	if _, err := resRule.Classify(Field("res")); !errors.As(err, &mismatch) {
		t.Fatalf("expected field binding on scalar rejected, got %v", err)
	}
	if _, err := resRule.Classify(callback.Spec{Name: "f", Source: "func f() int { return 1 }"}); !errors.As(err, &mismatch) {
		t.Fatalf("expected callback on scalar rejected, got %v", err)
	}

	var invalid *domain.ValidationError
	if _, err := resRule.Classify(0); !errors.As(err, &invalid) {
		t.Fatalf("expected out-of-range resolution rejected, got %v", err)
	}
	if _, err := latRule.Classify(91.0); !errors.As(err, &invalid) {
		t.Fatalf("expected latitude out of range rejected, got %v", err)
	}
	if _, err := colorRule.Classify("notacolor"); !errors.As(err, &invalid) {
		t.Fatalf("expected invalid color rejected, got %v", err)
	}
}

func TestClassifyNullAndExplicitValues(t *testing.T) {
	v, err := urlRule.Classify(nil)
	if err != nil || !v.IsNull() {
		t.Fatalf("expected explicit null, got %v err=%v", v, err)
	}
	if urlRule.Encode(v) != nil {
		t.Fatalf("expected null wire value")
	}
	if v, err := urlRule.Decode(map[string]any{"type": WireLiteral, "value": nil}); err != nil || !v.IsNull() {
		t.Fatalf("expected null literal envelope accepted, got %v err=%v", v, err)
	}

	var invalid *domain.ValidationError
	rejections := []struct {
		name string
		bind func() (Value, error)
	}{
		{"classify", func() (Value, error) { return colorRule.Classify(nil) }},
		{"bind", func() (Value, error) { return resRule.Bind(Null()) }},
		{"classify value", func() (Value, error) { return latRule.Classify(Null()) }},
		{"decode bare", func() (Value, error) { return objRule.Decode(nil) }},
		{"decode envelope", func() (Value, error) {
			return labelRule.Decode(map[string]any{"type": WireLiteral, "value": nil})
		}},
	}
	for _, tc := range rejections {
		_, err := tc.bind()
		if !errors.As(err, &invalid) || invalid.Constraint != "must not be null" {
			t.Fatalf("%s: expected null rejected, got %v", tc.name, err)
		}
	}

	spec := callback.Spec{Name: "f", Source: "func f() string { return \"red\" }"}
	v, err = colorRule.Classify(spec)
	if err != nil || v.Variant() != VariantCallback {
		t.Fatalf("expected callback from spec, got %v err=%v", v, err)
	}
	v, err = colorRule.Classify(&spec)
	if err != nil || v.Variant() != VariantCallback {
		t.Fatalf("expected callback from spec pointer, got %v err=%v", v, err)
	}
}

func TestSwitchingVariantsIsIndependentOfData(t *testing.T) {
	literal := Literal(map[string]any{"nested": []any{1.0}})
	got, _ := literal.LiteralValue()
	got.(map[string]any)["nested"].([]any)[0] = 2.0
	again, _ := literal.LiteralValue()
	if again.(map[string]any)["nested"].([]any)[0] != 1.0 {
		t.Fatalf("literal value aliased by caller")
	}
}

func TestWireValueIsFullyDiscriminated(t *testing.T) {
	if !reflect.DeepEqual(Field("x").WireValue(), map[string]any{"type": WireField, "name": "x"}) {
		t.Fatalf("unexpected field wire value")
	}
	if !reflect.DeepEqual(Literal(1.0).WireValue(), map[string]any{"type": WireLiteral, "value": 1.0}) {
		t.Fatalf("unexpected literal wire value")
	}
}

func TestChecks(t *testing.T) {
	if out, err := Vector(2)("globeOffset", []int{10, -5}); err != nil || !reflect.DeepEqual(out, []any{10.0, -5.0}) {
		t.Fatalf("vector: %v %v", out, err)
	}
	if _, err := Enum("right", "top")("labelDotOrientation", "left"); err == nil {
		t.Fatalf("expected enum rejection")
	}
	either := Either(URL(), Bool())
	if _, err := either("x", true); err != nil {
		t.Fatalf("either bool: %v", err)
	}
	if _, err := either("x", 1.0); err == nil {
		t.Fatalf("expected either rejection")
	}
	if out, err := Material()("tileMaterial", domain.DefaultTileMaterial()); err != nil || out.(map[string]any)["type"] != "MeshLambertMaterial" {
		t.Fatalf("material: %v %v", out, err)
	}
}
