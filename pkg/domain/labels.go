package domain

import (
	"slices"

	"globewidget/pkg/domain/extension"
)

// Dot orientations accepted by Label.DotOrientation.
const (
	DotRight  = "right"
	DotTop    = "top"
	DotBottom = "bottom"
)

var dotOrientations = []string{DotRight, DotTop, DotBottom}

var labelFields = fields(
	"lat", "lng", "altitude", "text", "size", "rotation", "color", "includeDot",
	"dotRadius", "dotOrientation", "label",
)

// Label is a text annotation anchored to a position.
type Label struct {
	ID             ID
	Lat            float64
	Lng            float64
	Text           string
	Altitude       Optional[float64]
	Size           Optional[float64]
	Rotation       Optional[float64]
	Color          Color
	IncludeDot     Optional[bool]
	DotRadius      Optional[float64]
	DotOrientation Optional[string]
	Label          Optional[string]
	Extras         extension.Bag
}

// NewLabel validates l and assigns an identity when absent.
func NewLabel(l Label) (Label, error) { return Normalize(l) }

func (l Label) DatumID() ID { return l.ID }
func (Label) Kind() Kind    { return KindLabel }

func (Label) declared() fieldSet { return labelFields }

func (l Label) Validate() error {
	var c checker
	c.id(l.ID)
	c.number("lat", l.Lat, Latitude)
	c.number("lng", l.Lng, Longitude)
	if l.Text == "" {
		c.fail(Invalid("text", "is required", nil))
	}
	c.optNumber("altitude", l.Altitude, NonNegative)
	c.optNumber("size", l.Size, NonNegative)
	c.optNumber("rotation", l.Rotation, Finite)
	c.color("color", l.Color, false)
	c.optNumber("dotRadius", l.DotRadius, NonNegative)
	if o, ok := l.DotOrientation.Get(); ok && !slices.Contains(dotOrientations, o) {
		c.fail(Invalid("dotOrientation", "must be one of right, top, bottom", o))
	}
	c.extras(l.Extras, labelFields)
	return c.err
}

func (l Label) Wire() map[string]any {
	w := newWire(l.ID)
	w["lat"] = l.Lat
	w["lng"] = l.Lng
	w["text"] = l.Text
	w.num("altitude", l.Altitude)
	w.num("size", l.Size)
	w.num("rotation", l.Rotation)
	w.color("color", l.Color)
	w.boolean("includeDot", l.IncludeDot)
	w.num("dotRadius", l.DotRadius)
	w.str("dotOrientation", l.DotOrientation)
	w.str("label", l.Label)
	return w.extras(l.Extras)
}

func (l Label) withID(id ID) Datum { l.ID = id; return l }

func (l Label) clone() Datum {
	l.Extras = l.Extras.Clone()
	return l
}

func (Label) decode(raw map[string]any) (Datum, error) {
	d := newDecoder(raw, labelFields)
	l := Label{
		ID:             d.id(),
		Lat:            d.number("lat"),
		Lng:            d.number("lng"),
		Text:           d.str("text"),
		Altitude:       d.optNumber("altitude"),
		Size:           d.optNumber("size"),
		Rotation:       d.optNumber("rotation"),
		Color:          d.color("color", false),
		IncludeDot:     d.optBool("includeDot"),
		DotRadius:      d.optNumber("dotRadius"),
		DotOrientation: d.optString("dotOrientation"),
		Label:          d.optString("label"),
		Extras:         d.extras(),
	}
	return l, d.err
}
