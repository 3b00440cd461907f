package config

import (
	"fmt"

	"globewidget/pkg/accessor"
	"globewidget/pkg/domain"
)

// layerInfo ties a datum kind to its section and data key.
type layerInfo struct {
	section SectionName
	dataKey string
}

var layers = map[domain.Kind]layerInfo{
	domain.KindPoint:      {SectionPoints, "pointsData"},
	domain.KindArc:        {SectionArcs, "arcsData"},
	domain.KindPolygon:    {SectionPolygons, "polygonsData"},
	domain.KindPath:       {SectionPaths, "pathsData"},
	domain.KindHeatmap:    {SectionHeatmaps, "heatmapsData"},
	domain.KindHexBin:     {SectionHexBin, "hexBinPointsData"},
	domain.KindHexPolygon: {SectionHexPolygons, "hexPolygonsData"},
	domain.KindTile:       {SectionTiles, "tilesData"},
	domain.KindParticle:   {SectionParticles, "particlesData"},
	domain.KindRing:       {SectionRings, "ringsData"},
	domain.KindLabel:      {SectionLabels, "labelsData"},
}

// DataKey returns the wire key of the collection carried by kind's layer.
func DataKey(kind domain.Kind) string { return layers[kind].dataKey }

// SectionOf returns the section holding kind's layer.
func SectionOf(kind domain.Kind) SectionName { return layers[kind].section }

func infoFor[D domain.Datum]() layerInfo {
	var zero D
	return layers[zero.Kind()]
}

// DatumPatch addresses a partial update to one datum.
type DatumPatch struct {
	ID    domain.ID
	Patch domain.Patch
}

// Layer is an immutable layer configuration: section settings plus an ordered
// collection of datums. A nil collection is unset and omitted from the wire.
type Layer[D domain.Datum] struct {
	settings Section
	data     []D
	hasData  bool
}

// NewLayer normalizes data and applies settings. Pass nil data to leave the
// collection unset.
func NewLayer[D domain.Datum](data []D, settings ...Setting) (Layer[D], error) {
	info := infoFor[D]()
	section, err := NewSection(info.section, settings...)
	if err != nil {
		return Layer[D]{}, err
	}
	l := Layer[D]{settings: section}
	if data == nil {
		return l, nil
	}
	l, _, err = l.WithData(data)
	return l, err
}

// Name returns the layer's section name.
func (l Layer[D]) Name() SectionName { return infoFor[D]().section }

// Kind returns the datum kind of the collection.
func (l Layer[D]) Kind() domain.Kind {
	var zero D
	return zero.Kind()
}

// Settings returns the attribute bindings of the layer.
func (l Layer[D]) Settings() Section {
	if l.settings.name == "" {
		return Section{name: l.Name()}
	}
	return l.settings
}

// HasData reports whether a collection has been set.
func (l Layer[D]) HasData() bool { return l.hasData }

// Len returns the collection size.
func (l Layer[D]) Len() int { return len(l.data) }

// Data returns a deep copy of the collection.
func (l Layer[D]) Data() []D { return domain.CloneAll(l.data) }

// Find returns a copy of the datum with the given identity.
func (l Layer[D]) Find(id domain.ID) (D, bool) {
	for _, d := range l.data {
		if d.DatumID() == id {
			return domain.Clone(d), true
		}
	}
	var zero D
	return zero, false
}

// With returns a copy of l with attr bound to raw.
func (l Layer[D]) With(attr Attribute, raw any) (Layer[D], accessor.Value, error) {
	section, value, err := l.Settings().With(attr, raw)
	if err != nil {
		return Layer[D]{}, accessor.Value{}, err
	}
	l.settings = section
	return l, value, nil
}

// Without returns a copy of l with attr unset.
func (l Layer[D]) Without(attr Attribute) Layer[D] {
	l.settings = l.Settings().Without(attr)
	return l
}

// WithData replaces the collection. The normalized items are returned so the
// caller can learn assigned identities.
func (l Layer[D]) WithData(items []D) (Layer[D], []D, error) {
	if items == nil {
		items = []D{}
	}
	normalized, err := domain.NormalizeAll(items)
	if err != nil {
		return Layer[D]{}, nil, domain.WithPathPrefix(err, infoFor[D]().dataKey)
	}
	l.data = normalized
	l.hasData = true
	return l, domain.CloneAll(normalized), nil
}

// WithPatches applies patches in order and returns the updated layer plus one
// wire delta per patch. Either every patch applies or the layer is unchanged.
func (l Layer[D]) WithPatches(patches ...DatumPatch) (Layer[D], []map[string]any, error) {
	if len(patches) == 0 {
		return l, nil, nil
	}
	index := make(map[domain.ID]int, len(l.data))
	for i, d := range l.data {
		index[d.DatumID()] = i
	}
	data := make([]D, len(l.data))
	copy(data, l.data)
	deltas := make([]map[string]any, 0, len(patches))
	key := infoFor[D]().dataKey
	for n, p := range patches {
		i, ok := index[p.ID]
		if !ok {
			return l, nil, &domain.NotFoundError{Kind: l.Kind(), ID: p.ID}
		}
		updated, delta, err := domain.ApplyPatch(data[i], p.Patch)
		if err != nil {
			return l, nil, domain.WithPathPrefix(err, fmt.Sprintf("%s[%d]", key, n))
		}
		data[i] = updated
		deltas = append(deltas, delta)
	}
	l.data = data
	l.hasData = true
	return l, deltas, nil
}

// DataWire returns the wire form of the collection.
func (l Layer[D]) DataWire() []any {
	out := make([]any, len(l.data))
	for i, d := range l.data {
		out[i] = d.Wire()
	}
	return out
}

// Wire returns the layer's settings plus its data key, when set.
func (l Layer[D]) Wire() map[string]any {
	out := l.Settings().Wire()
	if l.hasData {
		out[infoFor[D]().dataKey] = l.DataWire()
	}
	return out
}

func (l Layer[D]) empty() bool { return !l.hasData && l.settings.Len() == 0 }

func (l Layer[D]) withSettings(s Section) part {
	l.settings = s
	return l
}

func (l Layer[D]) decodeWire(raw map[string]any) (part, error) {
	key := infoFor[D]().dataKey
	section, err := decodeProps(l.Name(), raw, key)
	if err != nil {
		return nil, err
	}
	l.settings = section
	payload, ok := raw[key]
	if !ok || payload == nil {
		return l, nil
	}
	items, ok := payload.([]any)
	if !ok {
		return nil, &domain.TypeMismatchError{Path: string(l.Name()) + "." + key, Expected: "list", Got: fmt.Sprintf("%T", payload)}
	}
	data := make([]D, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &domain.TypeMismatchError{Path: fmt.Sprintf("%s.%s[%d]", l.Name(), key, i), Expected: "object", Got: fmt.Sprintf("%T", item)}
		}
		d, err := domain.FromWire[D](obj)
		if err != nil {
			return nil, domain.WithPathPrefix(err, fmt.Sprintf("%s.%s[%d]", l.Name(), key, i))
		}
		data[i] = d
	}
	l, _, err = l.WithData(data)
	return l, err
}
