package extension

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

type wireStub struct{ name string }

func (w wireStub) WireValue() any { return map[string]any{"type": "stub", "name": w.name} }

func TestBagIsolatesNestedValues(t *testing.T) {
	meta := map[string]any{"tags": []any{"a", "b"}, "score": 1.5}
	bag, err := FromMap(map[string]any{"meta": meta})
	if err != nil {
		t.Fatalf("from map: %v", err)
	}
	meta["score"] = 99.0
	meta["tags"].([]any)[0] = "mutated"

	got, ok := bag.Get("meta")
	if !ok {
		t.Fatalf("expected meta entry")
	}
	stored := got.(map[string]any)
	if stored["score"] != 1.5 || stored["tags"].([]any)[0] != "a" {
		t.Fatalf("bag aliased caller input: %v", stored)
	}

	stored["score"] = 7.0
	again, _ := bag.Get("meta")
	if again.(map[string]any)["score"] != 1.5 {
		t.Fatalf("bag aliased returned value")
	}
}

func TestBagCloneIsIndependent(t *testing.T) {
	bag := New()
	if err := bag.Set("meta", map[string]any{"k": "v"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	clone := bag.Clone()
	if err := clone.Set("meta", "replaced"); err != nil {
		t.Fatalf("set clone: %v", err)
	}
	original, _ := bag.Get("meta")
	if !reflect.DeepEqual(original, map[string]any{"k": "v"}) {
		t.Fatalf("clone write leaked into original: %v", original)
	}
	if bag.Equal(clone) {
		t.Fatalf("expected bags to differ after clone write")
	}
}

func TestBagRejectsEmptyKey(t *testing.T) {
	var bag Bag
	if err := bag.Set("", 1); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestBagWireExpandsEncoders(t *testing.T) {
	bag := New()
	_ = bag.Set("fn", wireStub{name: "f"})
	_ = bag.Set("nested", map[string]any{"inner": wireStub{name: "g"}})

	wire := bag.Wire()
	if wire["fn"].(map[string]any)["name"] != "f" {
		t.Fatalf("expected encoder expanded, got %v", wire["fn"])
	}
	inner := wire["nested"].(map[string]any)["inner"].(map[string]any)
	if inner["type"] != "stub" {
		t.Fatalf("expected nested encoder expanded, got %v", inner)
	}
}

func TestBagJSON(t *testing.T) {
	var bag Bag
	if err := json.Unmarshal([]byte(`{"population": 12, "meta": {"source": "census"}}`), &bag); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := bag.Keys(); !reflect.DeepEqual(got, []string{"meta", "population"}) {
		t.Fatalf("unexpected keys %v", got)
	}
	data, err := json.Marshal(bag)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var round Bag
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("round unmarshal: %v", err)
	}
	if !bag.Equal(round) {
		t.Fatalf("expected equal bags after JSON round trip")
	}

	if err := json.Unmarshal([]byte("null"), &round); err != nil || round.Len() != 0 {
		t.Fatalf("expected null to reset bag, len=%d err=%v", round.Len(), err)
	}
}
