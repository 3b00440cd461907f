package domain

import "globewidget/pkg/domain/extension"

var pointFields = fields("lat", "lng", "altitude", "radius", "color", "label")

// Point is a single marker on the globe surface.
type Point struct {
	ID       ID
	Lat      float64
	Lng      float64
	Altitude Optional[float64]
	Radius   Optional[float64]
	Color    Color
	Label    Optional[string]
	Extras   extension.Bag
}

// NewPoint validates p and assigns an identity when absent.
func NewPoint(p Point) (Point, error) { return Normalize(p) }

func (p Point) DatumID() ID { return p.ID }
func (Point) Kind() Kind    { return KindPoint }

func (Point) declared() fieldSet { return pointFields }

func (p Point) Validate() error {
	var c checker
	c.id(p.ID)
	c.number("lat", p.Lat, Latitude)
	c.number("lng", p.Lng, Longitude)
	c.optNumber("altitude", p.Altitude, NonNegative)
	c.optNumber("radius", p.Radius, Positive)
	c.color("color", p.Color, false)
	c.extras(p.Extras, pointFields)
	return c.err
}

func (p Point) Wire() map[string]any {
	w := newWire(p.ID)
	w["lat"] = p.Lat
	w["lng"] = p.Lng
	w.num("altitude", p.Altitude)
	w.num("radius", p.Radius)
	w.color("color", p.Color)
	w.str("label", p.Label)
	return w.extras(p.Extras)
}

func (p Point) withID(id ID) Datum { p.ID = id; return p }

func (p Point) clone() Datum {
	p.Extras = p.Extras.Clone()
	return p
}

func (Point) decode(raw map[string]any) (Datum, error) {
	d := newDecoder(raw, pointFields)
	p := Point{
		ID:       d.id(),
		Lat:      d.number("lat"),
		Lng:      d.number("lng"),
		Altitude: d.optNumber("altitude"),
		Radius:   d.optNumber("radius"),
		Color:    d.color("color", false),
		Label:    d.optString("label"),
		Extras:   d.extras(),
	}
	return p, d.err
}
