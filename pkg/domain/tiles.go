package domain

import "globewidget/pkg/domain/extension"

var tileFields = fields(
	"lat", "lng", "altitude", "width", "height", "useGlobeProjection", "material",
	"curvatureResolution", "label",
)

// Tile is a rectangular patch laid over the globe surface.
type Tile struct {
	ID                  ID
	Lat                 float64
	Lng                 float64
	Altitude            Optional[float64]
	Width               Optional[float64]
	Height              Optional[float64]
	UseGlobeProjection  Optional[bool]
	Material            Optional[Material]
	CurvatureResolution Optional[float64]
	Label               Optional[string]
	Extras              extension.Bag
}

// NewTile validates t and assigns an identity when absent.
func NewTile(t Tile) (Tile, error) { return Normalize(t) }

func (t Tile) DatumID() ID { return t.ID }
func (Tile) Kind() Kind    { return KindTile }

func (Tile) declared() fieldSet { return tileFields }

func (t Tile) Validate() error {
	var c checker
	c.id(t.ID)
	c.number("lat", t.Lat, Latitude)
	c.number("lng", t.Lng, Longitude)
	c.optNumber("altitude", t.Altitude, NonNegative)
	c.optNumber("width", t.Width, Positive)
	c.optNumber("height", t.Height, Positive)
	if m, ok := t.Material.Get(); ok {
		c.fail(m.validate("material"))
	}
	c.optNumber("curvatureResolution", t.CurvatureResolution, Positive)
	c.extras(t.Extras, tileFields)
	return c.err
}

func (t Tile) Wire() map[string]any {
	w := newWire(t.ID)
	w["lat"] = t.Lat
	w["lng"] = t.Lng
	w.num("altitude", t.Altitude)
	w.num("width", t.Width)
	w.num("height", t.Height)
	w.boolean("useGlobeProjection", t.UseGlobeProjection)
	if m, ok := t.Material.Get(); ok {
		w["material"] = m.Wire()
	}
	w.num("curvatureResolution", t.CurvatureResolution)
	w.str("label", t.Label)
	return w.extras(t.Extras)
}

func (t Tile) withID(id ID) Datum { t.ID = id; return t }

func (t Tile) clone() Datum {
	if m, ok := t.Material.Get(); ok {
		t.Material = Some(m.clone())
	}
	t.Extras = t.Extras.Clone()
	return t
}

func (Tile) decode(raw map[string]any) (Datum, error) {
	d := newDecoder(raw, tileFields)
	t := Tile{
		ID:                  d.id(),
		Lat:                 d.number("lat"),
		Lng:                 d.number("lng"),
		Altitude:            d.optNumber("altitude"),
		Width:               d.optNumber("width"),
		Height:              d.optNumber("height"),
		UseGlobeProjection:  d.optBool("useGlobeProjection"),
		Material:            d.material("material"),
		CurvatureResolution: d.optNumber("curvatureResolution"),
		Label:               d.optString("label"),
		Extras:              d.extras(),
	}
	return t, d.err
}
