package domain

import "globewidget/pkg/domain/extension"

var arcFields = fields(
	"startLat", "startLng", "endLat", "endLng", "startAltitude", "endAltitude",
	"altitude", "altitudeAutoScale", "stroke", "dashLength", "dashGap",
	"dashInitialGap", "dashAnimateTime", "color", "label",
)

// Arc connects two surface positions with a curved line.
type Arc struct {
	ID                ID
	StartLat          float64
	StartLng          float64
	EndLat            float64
	EndLng            float64
	StartAltitude     Optional[float64]
	EndAltitude       Optional[float64]
	Altitude          Optional[float64]
	AltitudeAutoScale Optional[float64]
	Stroke            Optional[float64]
	DashLength        Optional[float64]
	DashGap           Optional[float64]
	DashInitialGap    Optional[float64]
	DashAnimateTime   Optional[float64]
	// Color is a single color or a gradient along the arc.
	Color  Color
	Label  Optional[string]
	Extras extension.Bag
}

// NewArc validates a and assigns an identity when absent.
func NewArc(a Arc) (Arc, error) { return Normalize(a) }

func (a Arc) DatumID() ID { return a.ID }
func (Arc) Kind() Kind    { return KindArc }

func (Arc) declared() fieldSet { return arcFields }

func (a Arc) Validate() error {
	var c checker
	c.id(a.ID)
	c.number("startLat", a.StartLat, Latitude)
	c.number("startLng", a.StartLng, Longitude)
	c.number("endLat", a.EndLat, Latitude)
	c.number("endLng", a.EndLng, Longitude)
	c.optNumber("startAltitude", a.StartAltitude, NonNegative)
	c.optNumber("endAltitude", a.EndAltitude, NonNegative)
	c.optNumber("altitude", a.Altitude, NonNegative)
	c.optNumber("altitudeAutoScale", a.AltitudeAutoScale, NonNegative)
	c.optNumber("stroke", a.Stroke, Positive)
	c.optNumber("dashLength", a.DashLength, Positive)
	c.optNumber("dashGap", a.DashGap, NonNegative)
	c.optNumber("dashInitialGap", a.DashInitialGap, NonNegative)
	c.optNumber("dashAnimateTime", a.DashAnimateTime, NonNegative)
	c.color("color", a.Color, true)
	c.extras(a.Extras, arcFields)
	return c.err
}

func (a Arc) Wire() map[string]any {
	w := newWire(a.ID)
	w["startLat"] = a.StartLat
	w["startLng"] = a.StartLng
	w["endLat"] = a.EndLat
	w["endLng"] = a.EndLng
	w.num("startAltitude", a.StartAltitude)
	w.num("endAltitude", a.EndAltitude)
	w.num("altitude", a.Altitude)
	w.num("altitudeAutoScale", a.AltitudeAutoScale)
	w.num("stroke", a.Stroke)
	w.num("dashLength", a.DashLength)
	w.num("dashGap", a.DashGap)
	w.num("dashInitialGap", a.DashInitialGap)
	w.num("dashAnimateTime", a.DashAnimateTime)
	w.color("color", a.Color)
	w.str("label", a.Label)
	return w.extras(a.Extras)
}

func (a Arc) withID(id ID) Datum { a.ID = id; return a }

func (a Arc) clone() Datum {
	a.Extras = a.Extras.Clone()
	return a
}

func (Arc) decode(raw map[string]any) (Datum, error) {
	d := newDecoder(raw, arcFields)
	a := Arc{
		ID:                d.id(),
		StartLat:          d.number("startLat"),
		StartLng:          d.number("startLng"),
		EndLat:            d.number("endLat"),
		EndLng:            d.number("endLng"),
		StartAltitude:     d.optNumber("startAltitude"),
		EndAltitude:       d.optNumber("endAltitude"),
		Altitude:          d.optNumber("altitude"),
		AltitudeAutoScale: d.optNumber("altitudeAutoScale"),
		Stroke:            d.optNumber("stroke"),
		DashLength:        d.optNumber("dashLength"),
		DashGap:           d.optNumber("dashGap"),
		DashInitialGap:    d.optNumber("dashInitialGap"),
		DashAnimateTime:   d.optNumber("dashAnimateTime"),
		Color:             d.color("color", true),
		Label:             d.optString("label"),
		Extras:            d.extras(),
	}
	return a, d.err
}
