package domain

import (
	"fmt"

	"globewidget/pkg/domain/extension"
)

var heatmapPointFields = nestedFields("lat", "lng", "weight")

// HeatmapPoint is one weighted sample of a heatmap. It has no identity of its
// own.
type HeatmapPoint struct {
	Lat    float64
	Lng    float64
	Weight Optional[float64]
	Extras extension.Bag
}

func (p HeatmapPoint) validate(path string) error {
	var c checker
	c.number(path+".lat", p.Lat, Latitude)
	c.number(path+".lng", p.Lng, Longitude)
	c.optNumber(path+".weight", p.Weight, Finite)
	for _, key := range p.Extras.Keys() {
		if _, clash := heatmapPointFields[key]; clash {
			c.fail(Invalid(path+"."+key, "extension key collides with a declared field", nil))
		}
	}
	return c.err
}

func (p HeatmapPoint) wire() map[string]any {
	w := wire{"lat": p.Lat, "lng": p.Lng}
	w.num("weight", p.Weight)
	return w.extras(p.Extras)
}

func parseHeatmapPoint(path string, value any) (HeatmapPoint, error) {
	if pt, ok := value.(HeatmapPoint); ok {
		pt.Extras = pt.Extras.Clone()
		return pt, nil
	}
	raw, err := object(path, value)
	if err != nil {
		return HeatmapPoint{}, err
	}
	d := newDecoder(raw, heatmapPointFields)
	pt := HeatmapPoint{
		Lat:    d.number("lat"),
		Lng:    d.number("lng"),
		Weight: d.optNumber("weight"),
		Extras: d.extras(),
	}
	return pt, WithPathPrefix(d.err, path)
}

var heatmapFields = fields("points", "bandwidth", "colorSaturation", "baseAltitude", "topAltitude")

// Heatmap is a density surface built from weighted points.
type Heatmap struct {
	ID              ID
	Points          []HeatmapPoint
	Bandwidth       Optional[float64]
	ColorSaturation Optional[float64]
	BaseAltitude    Optional[float64]
	TopAltitude     Optional[float64]
	Extras          extension.Bag
}

// NewHeatmap validates h and assigns an identity when absent.
func NewHeatmap(h Heatmap) (Heatmap, error) { return Normalize(h) }

func (h Heatmap) DatumID() ID { return h.ID }
func (Heatmap) Kind() Kind    { return KindHeatmap }

func (Heatmap) declared() fieldSet { return heatmapFields }

func (h Heatmap) Validate() error {
	var c checker
	c.id(h.ID)
	if len(h.Points) == 0 {
		c.fail(Invalid("points", "must contain at least one point", nil))
	}
	for i, pt := range h.Points {
		c.fail(pt.validate(fmt.Sprintf("points[%d]", i)))
	}
	c.optNumber("bandwidth", h.Bandwidth, Positive)
	c.optNumber("colorSaturation", h.ColorSaturation, Positive)
	c.optNumber("baseAltitude", h.BaseAltitude, NonNegative)
	c.optNumber("topAltitude", h.TopAltitude, NonNegative)
	c.extras(h.Extras, heatmapFields)
	return c.err
}

func (h Heatmap) Wire() map[string]any {
	w := newWire(h.ID)
	points := make([]any, len(h.Points))
	for i, pt := range h.Points {
		points[i] = pt.wire()
	}
	w["points"] = points
	w.num("bandwidth", h.Bandwidth)
	w.num("colorSaturation", h.ColorSaturation)
	w.num("baseAltitude", h.BaseAltitude)
	w.num("topAltitude", h.TopAltitude)
	return w.extras(h.Extras)
}

func (h Heatmap) withID(id ID) Datum { h.ID = id; return h }

func (h Heatmap) clone() Datum {
	if h.Points != nil {
		points := make([]HeatmapPoint, len(h.Points))
		for i, pt := range h.Points {
			pt.Extras = pt.Extras.Clone()
			points[i] = pt
		}
		h.Points = points
	}
	h.Extras = h.Extras.Clone()
	return h
}

func (Heatmap) decode(raw map[string]any) (Datum, error) {
	d := newDecoder(raw, heatmapFields)
	h := Heatmap{
		ID:              d.id(),
		Bandwidth:       d.optNumber("bandwidth"),
		ColorSaturation: d.optNumber("colorSaturation"),
		BaseAltitude:    d.optNumber("baseAltitude"),
		TopAltitude:     d.optNumber("topAltitude"),
		Extras:          d.extras(),
	}
	for i, item := range d.list("points") {
		pt, err := parseHeatmapPoint(fmt.Sprintf("points[%d]", i), item)
		if err != nil {
			d.fail(err)
			break
		}
		h.Points = append(h.Points, pt)
	}
	return h, d.err
}

var hexBinPointFields = fields("lat", "lng", "weight")

// HexBinPoint is a sample aggregated into hexagonal bins by the renderer.
type HexBinPoint struct {
	ID     ID
	Lat    float64
	Lng    float64
	Weight Optional[float64]
	Extras extension.Bag
}

// NewHexBinPoint validates p and assigns an identity when absent.
func NewHexBinPoint(p HexBinPoint) (HexBinPoint, error) { return Normalize(p) }

func (p HexBinPoint) DatumID() ID { return p.ID }
func (HexBinPoint) Kind() Kind    { return KindHexBin }

func (HexBinPoint) declared() fieldSet { return hexBinPointFields }

func (p HexBinPoint) Validate() error {
	var c checker
	c.id(p.ID)
	c.number("lat", p.Lat, Latitude)
	c.number("lng", p.Lng, Longitude)
	c.optNumber("weight", p.Weight, Finite)
	c.extras(p.Extras, hexBinPointFields)
	return c.err
}

func (p HexBinPoint) Wire() map[string]any {
	w := newWire(p.ID)
	w["lat"] = p.Lat
	w["lng"] = p.Lng
	w.num("weight", p.Weight)
	return w.extras(p.Extras)
}

func (p HexBinPoint) withID(id ID) Datum { p.ID = id; return p }

func (p HexBinPoint) clone() Datum {
	p.Extras = p.Extras.Clone()
	return p
}

func (HexBinPoint) decode(raw map[string]any) (Datum, error) {
	d := newDecoder(raw, hexBinPointFields)
	p := HexBinPoint{
		ID:     d.id(),
		Lat:    d.number("lat"),
		Lng:    d.number("lng"),
		Weight: d.optNumber("weight"),
		Extras: d.extras(),
	}
	return p, d.err
}
