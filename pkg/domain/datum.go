// Package domain defines the renderable records carried by globe layers.
// Every datum is a closed set of typed fields plus an open extension bag, with
// a stable identity used to address patches.
package domain

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"globewidget/pkg/domain/extension"
)

// Kind identifies a datum type. The value doubles as the event prefix used by
// the renderer (point_click, hexbin_hover, ...).
type Kind string

// Datum kinds.
const (
	KindPoint      Kind = "point"
	KindArc        Kind = "arc"
	KindPolygon    Kind = "polygon"
	KindPath       Kind = "path"
	KindHeatmap    Kind = "heatmap"
	KindHexBin     Kind = "hexbin"
	KindHexPolygon Kind = "hex_polygon"
	KindTile       Kind = "tile"
	KindParticle   Kind = "particle"
	KindRing       Kind = "ring"
	KindLabel      Kind = "label"
)

// Kinds lists every datum kind in layer order.
func Kinds() []Kind {
	return []Kind{
		KindPoint, KindArc, KindPolygon, KindPath, KindHeatmap, KindHexBin,
		KindHexPolygon, KindTile, KindParticle, KindRing, KindLabel,
	}
}

// Datum is implemented by every layer record in this package.
type Datum interface {
	DatumID() ID
	Kind() Kind
	// Wire returns the JSON-compatible form using renderer field names.
	Wire() map[string]any
	// Validate checks every populated field against its value domain.
	Validate() error

	withID(ID) Datum
	clone() Datum
	decode(raw map[string]any) (Datum, error)
	declared() fieldSet
}

// Patch maps renderer field names to new values. A nil value clears an
// optional field.
type Patch map[string]any

// Keys returns the patched field names in sorted order.
func (p Patch) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Normalize assigns an identity when absent, validates the datum and returns an
// independent copy.
func Normalize[T Datum](d T) (T, error) {
	var zero T
	if d.DatumID().IsZero() {
		d = d.withID(NewID()).(T)
	}
	if err := d.Validate(); err != nil {
		return zero, err
	}
	return d.clone().(T), nil
}

// NormalizeAll normalizes a collection and rejects duplicate identities.
func NormalizeAll[T Datum](items []T) ([]T, error) {
	out := make([]T, len(items))
	seen := make(map[ID]int, len(items))
	for i, item := range items {
		normalized, err := Normalize(item)
		if err != nil {
			return nil, WithPathPrefix(err, fmt.Sprintf("[%d]", i))
		}
		id := normalized.DatumID()
		if prev, dup := seen[id]; dup {
			return nil, Invalid(fmt.Sprintf("[%d].id", i), fmt.Sprintf("duplicates identity of item %d", prev), string(id))
		}
		seen[id] = i
		out[i] = normalized
	}
	return out, nil
}

// Clone returns an independent deep copy of d.
func Clone[T Datum](d T) T {
	return d.clone().(T)
}

// CloneAll deep-copies a collection.
func CloneAll[T Datum](items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = Clone(item)
	}
	return out
}

// FromWire decodes a wire object into a validated datum of type T. Unknown keys
// land in the extension bag.
func FromWire[T Datum](raw map[string]any) (T, error) {
	var zero T
	decoded, err := zero.decode(raw)
	if err != nil {
		return zero, err
	}
	return Normalize(decoded.(T))
}

// ApplyPatch merges patch into d and validates the result as a whole. It
// returns the updated datum together with the wire delta: the identity plus the
// normalized value of every patched field, nil for cleared fields. Fields and
// extension values the patch does not name are carried over from d unchanged.
func ApplyPatch[T Datum](d T, patch Patch) (T, map[string]any, error) {
	var zero T
	id := d.DatumID()
	merged := d.Wire()
	for key, value := range patch {
		if key == "id" {
			if pid, err := parseID(value); err != nil || pid != id {
				return zero, nil, Invalid("id", "patch identity must match target", value)
			}
			continue
		}
		if value == nil {
			delete(merged, key)
			continue
		}
		merged[key] = extension.EncodeValue(value)
	}
	decoded, err := FromWire[T](merged)
	if err != nil {
		return zero, nil, err
	}
	updated, err := mergePatched(d, decoded, patch)
	if err != nil {
		return zero, nil, err
	}
	if err := updated.Validate(); err != nil {
		return zero, nil, err
	}
	after := updated.Wire()
	delta := map[string]any{"id": string(id)}
	for key := range patch {
		if key == "id" {
			continue
		}
		delta[key] = after[key]
	}
	return updated, delta, nil
}

// mergePatched copies base and takes only the patched declared fields from
// decoded. Patched extension keys are set from the caller's values so typed
// extension entries keep their Go type.
func mergePatched[T Datum](base, decoded T, patch Patch) (T, error) {
	var zero T
	out := Clone(base)
	dst := reflect.ValueOf(&out).Elem()
	src := reflect.ValueOf(decoded)
	bag := dst.FieldByName("Extras").Addr().Interface().(*extension.Bag)
	declared := base.declared()
	for _, key := range patch.Keys() {
		if key == "id" {
			continue
		}
		if _, ok := declared[key]; ok {
			name := structField(key)
			dst.FieldByName(name).Set(src.FieldByName(name))
			continue
		}
		value := patch[key]
		if value == nil {
			bag.Remove(key)
			continue
		}
		if err := bag.Set(key, value); err != nil {
			return zero, Invalid(key, err.Error(), nil)
		}
	}
	return out, nil
}

// structField maps a declared wire name to its Go field: "startLat" is
// StartLat.
func structField(wireName string) string {
	return strings.ToUpper(wireName[:1]) + wireName[1:]
}

// fieldSet lists the declared wire names of a datum type.
type fieldSet map[string]struct{}

func fields(names ...string) fieldSet {
	set := make(fieldSet, len(names)+1)
	set["id"] = struct{}{}
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// nestedFields declares the names of an identity-less nested record.
func nestedFields(names ...string) fieldSet {
	set := make(fieldSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Names returns the declared names in sorted order.
func (f fieldSet) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (c *checker) extras(bag extension.Bag, declared fieldSet) {
	for _, key := range bag.Keys() {
		if _, clash := declared[key]; clash {
			c.fail(Invalid(key, "extension key collides with a declared field", nil))
			return
		}
	}
}

// wire builds the renderer object of a datum, omitting unset fields.
type wire map[string]any

func newWire(id ID) wire {
	return wire{"id": string(id)}
}

func (w wire) num(key string, v Optional[float64]) {
	if value, ok := v.Get(); ok {
		w[key] = value
	}
}

func (w wire) integer(key string, v Optional[int]) {
	if value, ok := v.Get(); ok {
		w[key] = value
	}
}

func (w wire) boolean(key string, v Optional[bool]) {
	if value, ok := v.Get(); ok {
		w[key] = value
	}
}

func (w wire) str(key string, v Optional[string]) {
	if value, ok := v.Get(); ok {
		w[key] = value
	}
}

func (w wire) color(key string, c Color) {
	if c.IsSet() {
		w[key] = c.Wire()
	}
}

func (w wire) extras(bag extension.Bag) map[string]any {
	for key, value := range bag.Wire() {
		if _, taken := w[key]; !taken {
			w[key] = value
		}
	}
	return w
}

// decoder converts a loosely typed wire object into typed fields, recording
// the first conversion failure. Range checks are left to Validate.
type decoder struct {
	raw      map[string]any
	declared fieldSet
	err      error
}

func newDecoder(raw map[string]any, declared fieldSet) *decoder {
	return &decoder{raw: raw, declared: declared}
}

func (d *decoder) fail(err error) {
	if d.err == nil && err != nil {
		d.err = err
	}
}

func (d *decoder) value(key string) (any, bool) {
	v, ok := d.raw[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (d *decoder) id() ID {
	v, _ := d.value("id")
	id, err := parseID(v)
	d.fail(err)
	return id
}

func (d *decoder) number(key string) float64 {
	v, ok := d.value(key)
	if !ok {
		d.fail(Invalid(key, "is required", nil))
		return 0
	}
	f, isNum := ToFloat(v)
	if !isNum {
		d.fail(Invalid(key, "must be a number", v))
	}
	return f
}

func (d *decoder) optNumber(key string) Optional[float64] {
	v, ok := d.value(key)
	if !ok {
		return Optional[float64]{}
	}
	f, isNum := ToFloat(v)
	if !isNum {
		d.fail(Invalid(key, "must be a number", v))
		return Optional[float64]{}
	}
	return Some(f)
}

func (d *decoder) optInt(key string) Optional[int] {
	v, ok := d.value(key)
	if !ok {
		return Optional[int]{}
	}
	n, isInt := ToInt(v)
	if !isInt {
		d.fail(Invalid(key, "must be an integer", v))
		return Optional[int]{}
	}
	return Some(n)
}

func (d *decoder) optBool(key string) Optional[bool] {
	v, ok := d.value(key)
	if !ok {
		return Optional[bool]{}
	}
	b, isBool := v.(bool)
	if !isBool {
		d.fail(Invalid(key, "must be a boolean", v))
		return Optional[bool]{}
	}
	return Some(b)
}

func (d *decoder) str(key string) string {
	v, ok := d.value(key)
	if !ok {
		d.fail(Invalid(key, "is required", nil))
		return ""
	}
	s, isStr := v.(string)
	if !isStr {
		d.fail(Invalid(key, "must be a string", v))
	}
	return s
}

func (d *decoder) optString(key string) Optional[string] {
	v, ok := d.value(key)
	if !ok {
		return Optional[string]{}
	}
	s, isStr := v.(string)
	if !isStr {
		d.fail(Invalid(key, "must be a string", v))
		return Optional[string]{}
	}
	return Some(s)
}

func (d *decoder) color(key string, allowGradient bool) Color {
	v, ok := d.value(key)
	if !ok {
		return Color{}
	}
	c, err := ParseColor(key, v, allowGradient)
	d.fail(err)
	return c
}

func (d *decoder) geometry(key string) Geometry {
	v, ok := d.value(key)
	if !ok {
		d.fail(Invalid(key, "is required", nil))
		return Geometry{}
	}
	g, err := parseGeometry(key, v)
	d.fail(err)
	return g
}

func (d *decoder) material(key string) Optional[Material] {
	v, ok := d.value(key)
	if !ok {
		return Optional[Material]{}
	}
	m, err := ParseMaterial(key, v)
	d.fail(err)
	return Some(m)
}

func (d *decoder) list(key string) []any {
	v, ok := d.value(key)
	if !ok {
		d.fail(Invalid(key, "is required", nil))
		return nil
	}
	items, isList := asList(v)
	if !isList {
		d.fail(Invalid(key, "must be a list", typeName(v)))
	}
	return items
}

// asList converts any slice or array into []any with wire-encoded elements.
func asList(value any) ([]any, bool) {
	if items, ok := value.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = extension.EncodeValue(rv.Index(i).Interface())
	}
	return out, true
}

func (d *decoder) extras() extension.Bag {
	bag := extension.New()
	for key, value := range d.raw {
		if _, known := d.declared[key]; known {
			continue
		}
		d.fail(bag.Set(key, value))
	}
	return bag
}

// object asserts that a nested list item is a wire object.
func object(path string, value any) (map[string]any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, Invalid(path, "must be an object", typeName(value))
	}
	return m, nil
}
