package domain

import "globewidget/pkg/domain/extension"

var ringFields = fields(
	"lat", "lng", "altitude", "color", "maxRadius", "propagationSpeed", "repeatPeriod",
)

// Ring is a pulsing circle that propagates outward from a position.
type Ring struct {
	ID               ID
	Lat              float64
	Lng              float64
	Altitude         Optional[float64]
	Color            Color
	MaxRadius        Optional[float64]
	PropagationSpeed Optional[float64]
	RepeatPeriod     Optional[float64]
	Extras           extension.Bag
}

// NewRing validates r and assigns an identity when absent.
func NewRing(r Ring) (Ring, error) { return Normalize(r) }

func (r Ring) DatumID() ID { return r.ID }
func (Ring) Kind() Kind    { return KindRing }

func (Ring) declared() fieldSet { return ringFields }

func (r Ring) Validate() error {
	var c checker
	c.id(r.ID)
	c.number("lat", r.Lat, Latitude)
	c.number("lng", r.Lng, Longitude)
	c.optNumber("altitude", r.Altitude, NonNegative)
	c.color("color", r.Color, true)
	c.optNumber("maxRadius", r.MaxRadius, NonNegative)
	c.optNumber("propagationSpeed", r.PropagationSpeed, Finite)
	c.optNumber("repeatPeriod", r.RepeatPeriod, NonNegative)
	c.extras(r.Extras, ringFields)
	return c.err
}

func (r Ring) Wire() map[string]any {
	w := newWire(r.ID)
	w["lat"] = r.Lat
	w["lng"] = r.Lng
	w.num("altitude", r.Altitude)
	w.color("color", r.Color)
	w.num("maxRadius", r.MaxRadius)
	w.num("propagationSpeed", r.PropagationSpeed)
	w.num("repeatPeriod", r.RepeatPeriod)
	return w.extras(r.Extras)
}

func (r Ring) withID(id ID) Datum { r.ID = id; return r }

func (r Ring) clone() Datum {
	r.Extras = r.Extras.Clone()
	return r
}

func (Ring) decode(raw map[string]any) (Datum, error) {
	d := newDecoder(raw, ringFields)
	r := Ring{
		ID:               d.id(),
		Lat:              d.number("lat"),
		Lng:              d.number("lng"),
		Altitude:         d.optNumber("altitude"),
		Color:            d.color("color", true),
		MaxRadius:        d.optNumber("maxRadius"),
		PropagationSpeed: d.optNumber("propagationSpeed"),
		RepeatPeriod:     d.optNumber("repeatPeriod"),
		Extras:           d.extras(),
	}
	return r, d.err
}
