package domain

import "globewidget/pkg/domain/extension"

var polygonFields = fields(
	"geometry", "name", "label", "capColor", "sideColor", "strokeColor",
	"altitude", "capCurvatureResolution",
)

// Polygon is an extruded GeoJSON polygon or multipolygon.
type Polygon struct {
	ID                     ID
	Geometry               Geometry
	Name                   Optional[string]
	Label                  Optional[string]
	CapColor               Color
	SideColor              Color
	StrokeColor            Color
	Altitude               Optional[float64]
	CapCurvatureResolution Optional[float64]
	Extras                 extension.Bag
}

// NewPolygonDatum validates p and assigns an identity when absent.
func NewPolygonDatum(p Polygon) (Polygon, error) { return Normalize(p) }

func (p Polygon) DatumID() ID { return p.ID }
func (Polygon) Kind() Kind    { return KindPolygon }

func (Polygon) declared() fieldSet { return polygonFields }

func (p Polygon) Validate() error {
	var c checker
	c.id(p.ID)
	c.fail(p.Geometry.validate("geometry"))
	c.color("capColor", p.CapColor, false)
	c.color("sideColor", p.SideColor, false)
	c.color("strokeColor", p.StrokeColor, false)
	c.optNumber("altitude", p.Altitude, NonNegative)
	c.optNumber("capCurvatureResolution", p.CapCurvatureResolution, Positive)
	c.extras(p.Extras, polygonFields)
	return c.err
}

func (p Polygon) Wire() map[string]any {
	w := newWire(p.ID)
	w["geometry"] = p.Geometry.Wire()
	w.str("name", p.Name)
	w.str("label", p.Label)
	w.color("capColor", p.CapColor)
	w.color("sideColor", p.SideColor)
	w.color("strokeColor", p.StrokeColor)
	w.num("altitude", p.Altitude)
	w.num("capCurvatureResolution", p.CapCurvatureResolution)
	return w.extras(p.Extras)
}

func (p Polygon) withID(id ID) Datum { p.ID = id; return p }

func (p Polygon) clone() Datum {
	p.Geometry = p.Geometry.clone()
	p.Extras = p.Extras.Clone()
	return p
}

func (Polygon) decode(raw map[string]any) (Datum, error) {
	d := newDecoder(raw, polygonFields)
	p := Polygon{
		ID:                     d.id(),
		Geometry:               d.geometry("geometry"),
		Name:                   d.optString("name"),
		Label:                  d.optString("label"),
		CapColor:               d.color("capColor", false),
		SideColor:              d.color("sideColor", false),
		StrokeColor:            d.color("strokeColor", false),
		Altitude:               d.optNumber("altitude"),
		CapCurvatureResolution: d.optNumber("capCurvatureResolution"),
		Extras:                 d.extras(),
	}
	return p, d.err
}

var hexPolygonFields = fields(
	"geometry", "label", "color", "altitude", "resolution", "margin", "useDots",
	"curvatureResolution", "dotResolution",
)

// HexPolygon is a polygon rendered as a field of hexagons.
type HexPolygon struct {
	ID       ID
	Geometry Geometry
	Label    Optional[string]
	Color    Color
	Altitude Optional[float64]
	// Resolution is the H3 resolution in [0, 15].
	Resolution          Optional[int]
	Margin              Optional[float64]
	UseDots             Optional[bool]
	CurvatureResolution Optional[float64]
	DotResolution       Optional[float64]
	Extras              extension.Bag
}

// NewHexPolygon validates h and assigns an identity when absent.
func NewHexPolygon(h HexPolygon) (HexPolygon, error) { return Normalize(h) }

func (h HexPolygon) DatumID() ID { return h.ID }
func (HexPolygon) Kind() Kind    { return KindHexPolygon }

func (HexPolygon) declared() fieldSet { return hexPolygonFields }

func (h HexPolygon) Validate() error {
	var c checker
	c.id(h.ID)
	c.fail(h.Geometry.validate("geometry"))
	c.color("color", h.Color, false)
	c.optNumber("altitude", h.Altitude, NonNegative)
	c.intRange("resolution", h.Resolution, 0, 15)
	c.optNumber("margin", h.Margin, NonNegative)
	c.optNumber("curvatureResolution", h.CurvatureResolution, Positive)
	c.optNumber("dotResolution", h.DotResolution, Positive)
	c.extras(h.Extras, hexPolygonFields)
	return c.err
}

func (h HexPolygon) Wire() map[string]any {
	w := newWire(h.ID)
	w["geometry"] = h.Geometry.Wire()
	w.str("label", h.Label)
	w.color("color", h.Color)
	w.num("altitude", h.Altitude)
	w.integer("resolution", h.Resolution)
	w.num("margin", h.Margin)
	w.boolean("useDots", h.UseDots)
	w.num("curvatureResolution", h.CurvatureResolution)
	w.num("dotResolution", h.DotResolution)
	return w.extras(h.Extras)
}

func (h HexPolygon) withID(id ID) Datum { h.ID = id; return h }

func (h HexPolygon) clone() Datum {
	h.Geometry = h.Geometry.clone()
	h.Extras = h.Extras.Clone()
	return h
}

func (HexPolygon) decode(raw map[string]any) (Datum, error) {
	d := newDecoder(raw, hexPolygonFields)
	h := HexPolygon{
		ID:                  d.id(),
		Geometry:            d.geometry("geometry"),
		Label:               d.optString("label"),
		Color:               d.color("color", false),
		Altitude:            d.optNumber("altitude"),
		Resolution:          d.optInt("resolution"),
		Margin:              d.optNumber("margin"),
		UseDots:             d.optBool("useDots"),
		CurvatureResolution: d.optNumber("curvatureResolution"),
		DotResolution:       d.optNumber("dotResolution"),
		Extras:              d.extras(),
	}
	return h, d.err
}
