// Package config holds the frozen widget configuration: one Section per
// renderer concern and one Layer per datum kind, assembled into a Globe whose
// wire form is the renderer's initial state.
package config

import (
	"fmt"
	"maps"
	"slices"

	"globewidget/pkg/accessor"
	"globewidget/pkg/domain"
)

// SectionName is the wire key of a configuration section.
type SectionName string

// Sections in wire order.
const (
	SectionInit        SectionName = "init"
	SectionLayout      SectionName = "layout"
	SectionGlobe       SectionName = "globe"
	SectionPoints      SectionName = "points"
	SectionArcs        SectionName = "arcs"
	SectionPolygons    SectionName = "polygons"
	SectionPaths       SectionName = "paths"
	SectionHeatmaps    SectionName = "heatmaps"
	SectionHexBin      SectionName = "hexBin"
	SectionHexPolygons SectionName = "hexPolygons"
	SectionTiles       SectionName = "tiles"
	SectionParticles   SectionName = "particles"
	SectionRings       SectionName = "rings"
	SectionLabels      SectionName = "labels"
	SectionView        SectionName = "view"
)

// SectionNames lists every section in wire order.
func SectionNames() []SectionName {
	return []SectionName{
		SectionInit, SectionLayout, SectionGlobe, SectionPoints, SectionArcs,
		SectionPolygons, SectionPaths, SectionHeatmaps, SectionHexBin,
		SectionHexPolygons, SectionTiles, SectionParticles, SectionRings,
		SectionLabels, SectionView,
	}
}

// Setting pairs an attribute with a loosely typed binding.
type Setting struct {
	Attribute Attribute
	Value     any
}

// Set builds a Setting. The value may be a literal, nil, an accessor.Value, a
// callback.Spec or a marked function; it is classified by the attribute's rule.
func Set(attr Attribute, value any) Setting {
	return Setting{Attribute: attr, Value: value}
}

// Section is an immutable set of attribute bindings. Unset attributes are
// omitted from the wire form; explicit nulls are emitted.
type Section struct {
	name  SectionName
	props map[string]accessor.Value
}

// NewSection validates settings and builds a section.
func NewSection(name SectionName, settings ...Setting) (Section, error) {
	if _, ok := registry[name]; !ok {
		return Section{}, domain.Invalid("section", "unknown section", string(name))
	}
	s := Section{name: name}
	for _, setting := range settings {
		next, _, err := s.With(setting.Attribute, setting.Value)
		if err != nil {
			return Section{}, err
		}
		s = next
	}
	return s, nil
}

// Name returns the section's wire key.
func (s Section) Name() SectionName { return s.name }

// With returns a copy of s with attr bound to raw, plus the classified value.
func (s Section) With(attr Attribute, raw any) (Section, accessor.Value, error) {
	if attr.section != s.name {
		return Section{}, accessor.Value{}, domain.Invalid(string(s.name), fmt.Sprintf("attribute %s belongs to section %s", attr.Name(), attr.section), nil)
	}
	value, err := attr.rule.Classify(raw)
	if err != nil {
		return Section{}, accessor.Value{}, domain.WithPathPrefix(err, string(s.name))
	}
	props := maps.Clone(s.props)
	if props == nil {
		props = map[string]accessor.Value{}
	}
	props[attr.Name()] = value
	return Section{name: s.name, props: props}, value, nil
}

// Without returns a copy of s with attr unset.
func (s Section) Without(attr Attribute) Section {
	if _, ok := s.props[attr.Name()]; !ok {
		return s
	}
	props := maps.Clone(s.props)
	delete(props, attr.Name())
	return Section{name: s.name, props: props}
}

// Get returns the binding of attr, if set.
func (s Section) Get(attr Attribute) (accessor.Value, bool) {
	if attr.section != s.name {
		return accessor.Value{}, false
	}
	v, ok := s.props[attr.Name()]
	return v, ok
}

// Len returns the number of set attributes.
func (s Section) Len() int { return len(s.props) }

// Wire returns the renderer form of the set attributes.
func (s Section) Wire() map[string]any {
	out := make(map[string]any, len(s.props))
	for _, name := range slices.Sorted(maps.Keys(s.props)) {
		attr := registry[s.name][name]
		out[name] = attr.rule.Encode(s.props[name])
	}
	return out
}

// decodeProps reads attribute bindings from a wire object. Keys listed in
// reserved are skipped; any other unknown key is rejected.
func decodeProps(name SectionName, raw map[string]any, reserved ...string) (Section, error) {
	s := Section{name: name, props: map[string]accessor.Value{}}
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		if slices.Contains(reserved, key) {
			continue
		}
		attr, ok := Lookup(name, key)
		if !ok {
			return Section{}, domain.Invalid(string(name)+"."+key, "unknown attribute", nil)
		}
		value, err := attr.rule.Decode(raw[key])
		if err != nil {
			return Section{}, domain.WithPathPrefix(err, string(name))
		}
		s.props[key] = value
	}
	return s, nil
}

// pointOfView accepts {lat, lng, altitude} camera positions. Altitude is
// optional.
func pointOfView(path string, value any) (any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, &domain.TypeMismatchError{Path: path, Expected: "point of view object", Got: fmt.Sprintf("%T", value)}
	}
	out := make(map[string]any, len(m))
	rules := map[string]domain.NumberRule{"lat": domain.Latitude, "lng": domain.Longitude, "altitude": domain.NonNegative}
	for key, v := range m {
		rule, known := rules[key]
		if !known {
			return nil, domain.Invalid(path+"."+key, "unknown point of view key", nil)
		}
		f, err := domain.ParseNumber(path+"."+key, v, rule)
		if err != nil {
			return nil, err
		}
		out[key] = f
	}
	return out, nil
}
