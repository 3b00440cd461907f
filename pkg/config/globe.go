package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"globewidget/pkg/accessor"
	"globewidget/pkg/callback"
	"globewidget/pkg/domain"
	"globewidget/pkg/domain/extension"
)

// part is implemented by Section and every Layer instantiation.
type part interface {
	Name() SectionName
	Settings() Section
	Wire() map[string]any
	empty() bool
	withSettings(Section) part
	decodeWire(raw map[string]any) (part, error)
}

// Settings returns s; it lets sections and layers share one contract.
func (s Section) Settings() Section { return s }

func (s Section) empty() bool { return len(s.props) == 0 }

func (s Section) withSettings(next Section) part { return next }

func (s Section) decodeWire(raw map[string]any) (part, error) {
	return decodeProps(s.name, raw)
}

func emptyLayer[D domain.Datum]() part {
	return Layer[D]{settings: Section{name: infoFor[D]().section}}
}

var emptyParts = map[SectionName]func() part{
	SectionInit:        func() part { return Section{name: SectionInit} },
	SectionLayout:      func() part { return Section{name: SectionLayout} },
	SectionGlobe:       func() part { return Section{name: SectionGlobe} },
	SectionView:        func() part { return Section{name: SectionView} },
	SectionPoints:      emptyLayer[domain.Point],
	SectionArcs:        emptyLayer[domain.Arc],
	SectionPolygons:    emptyLayer[domain.Polygon],
	SectionPaths:       emptyLayer[domain.Path],
	SectionHeatmaps:    emptyLayer[domain.Heatmap],
	SectionHexBin:      emptyLayer[domain.HexBinPoint],
	SectionHexPolygons: emptyLayer[domain.HexPolygon],
	SectionTiles:       emptyLayer[domain.Tile],
	SectionParticles:   emptyLayer[domain.Particle],
	SectionRings:       emptyLayer[domain.Ring],
	SectionLabels:      emptyLayer[domain.Label],
}

// Globe is the complete, immutable widget configuration. Edits return new
// values; the wire form is computed once per value.
type Globe struct {
	parts map[SectionName]part
	memo  *wireMemo
}

type wireMemo struct {
	once sync.Once
	wire map[string]any
}

// Option configures a Globe under construction.
type Option func(*Globe) error

// New assembles a configuration.
func New(opts ...Option) (Globe, error) {
	g := Globe{parts: map[SectionName]part{}}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&g); err != nil {
			return Globe{}, err
		}
	}
	g.memo = &wireMemo{}
	return g, nil
}

// MustNew is New for statically known configurations.
func MustNew(opts ...Option) Globe {
	g, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return g
}

// WithSection installs the settings of a section. For layer sections the
// collection is kept.
func WithSection(s Section) Option {
	return func(g *Globe) error {
		if _, ok := emptyParts[s.name]; !ok {
			return domain.Invalid("section", "unknown section", string(s.name))
		}
		g.parts[s.name] = g.part(s.name).withSettings(s)
		return nil
	}
}

// WithLayer installs a layer.
func WithLayer[D domain.Datum](l Layer[D]) Option {
	return func(g *Globe) error {
		g.parts[l.Name()] = l
		return nil
	}
}

// With binds loose settings across any sections.
func With(settings ...Setting) Option {
	return func(g *Globe) error {
		for _, setting := range settings {
			next, _, err := g.WithAttribute(setting.Attribute, setting.Value)
			if err != nil {
				return err
			}
			g.parts = next.parts
		}
		return nil
	}
}

func (g Globe) part(name SectionName) part {
	if p, ok := g.parts[name]; ok {
		return p
	}
	return emptyParts[name]()
}

func (g Globe) derive(name SectionName, p part) Globe {
	parts := maps.Clone(g.parts)
	if parts == nil {
		parts = map[SectionName]part{}
	}
	parts[name] = p
	return Globe{parts: parts, memo: &wireMemo{}}
}

// Section returns the settings of a section.
func (g Globe) Section(name SectionName) Section {
	if _, ok := emptyParts[name]; !ok {
		return Section{name: name}
	}
	return g.part(name).Settings()
}

// LayerOf returns the layer holding datums of type D.
func LayerOf[D domain.Datum](g Globe) Layer[D] {
	l, _ := g.part(infoFor[D]().section).(Layer[D])
	return l
}

// WithAttribute returns a copy of g with attr bound to raw.
func (g Globe) WithAttribute(attr Attribute, raw any) (Globe, accessor.Value, error) {
	if _, ok := emptyParts[attr.section]; !ok {
		return Globe{}, accessor.Value{}, domain.Invalid("section", "unknown section", string(attr.section))
	}
	p := g.part(attr.section)
	section, value, err := p.Settings().With(attr, raw)
	if err != nil {
		return Globe{}, accessor.Value{}, err
	}
	return g.derive(attr.section, p.withSettings(section)), value, nil
}

// WithoutAttribute returns a copy of g with attr unset.
func (g Globe) WithoutAttribute(attr Attribute) Globe {
	if _, ok := emptyParts[attr.section]; !ok {
		return g
	}
	p := g.part(attr.section)
	return g.derive(attr.section, p.withSettings(p.Settings().Without(attr)))
}

// ReplaceLayer returns a copy of g holding l.
func ReplaceLayer[D domain.Datum](g Globe, l Layer[D]) Globe {
	return g.derive(l.Name(), l)
}

// Wire returns the renderer's initial state. Sections with nothing set are
// omitted. The result is a copy the caller may modify.
func (g Globe) Wire() map[string]any {
	if g.memo == nil {
		return g.buildWire()
	}
	g.memo.once.Do(func() { g.memo.wire = g.buildWire() })
	return extension.CloneValue(g.memo.wire).(map[string]any)
}

func (g Globe) buildWire() map[string]any {
	out := map[string]any{}
	for _, name := range SectionNames() {
		p := g.part(name)
		if p.empty() {
			continue
		}
		out[string(name)] = p.Wire()
	}
	return out
}

// SectionWire returns the wire form of one section, empty when nothing is set.
func (g Globe) SectionWire(name SectionName) map[string]any {
	if _, ok := emptyParts[name]; !ok {
		return map[string]any{}
	}
	return g.part(name).Wire()
}

// FromWire rebuilds a configuration from its wire form. Unknown sections and
// attributes are rejected.
func FromWire(raw map[string]any) (Globe, error) {
	g := Globe{parts: map[SectionName]part{}}
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		name := SectionName(key)
		factory, ok := emptyParts[name]
		if !ok {
			return Globe{}, domain.Invalid(key, "unknown section", nil)
		}
		obj, ok := raw[key].(map[string]any)
		if !ok {
			return Globe{}, &domain.TypeMismatchError{Path: key, Expected: "object", Got: fmt.Sprintf("%T", raw[key])}
		}
		p, err := factory().decodeWire(obj)
		if err != nil {
			return Globe{}, err
		}
		g.parts[name] = p
	}
	g.memo = &wireMemo{}
	return g, nil
}

// MarshalJSON encodes the wire form.
func (g Globe) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Wire())
}

// UnmarshalJSON decodes a wire form produced by MarshalJSON.
func (g *Globe) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := FromWire(raw)
	if err != nil {
		return err
	}
	*g = decoded
	return nil
}

// DefaultHexAltitude is the altitude callback hex bins use unless another is
// bound: one hundredth of the bin's summed weight.
var DefaultHexAltitude = callback.Spec{
	Name:   "hexAltitude",
	Source: `func hexAltitude(hexbin map[string]any) float64 { return hexbin["sumWeight"].(float64) * 0.01 }`,
}
