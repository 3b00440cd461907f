package domain

import (
	"fmt"

	"globewidget/pkg/domain/extension"
)

var pathFields = fields(
	"path", "name", "label", "color", "dashLength", "dashGap", "dashInitialGap",
	"dashAnimateTime",
)

// PathPoint is one vertex of a path. Alt is optional.
type PathPoint struct {
	Lat float64
	Lng float64
	Alt Optional[float64]
}

func (p PathPoint) wire() []any {
	if alt, ok := p.Alt.Get(); ok {
		return []any{p.Lat, p.Lng, alt}
	}
	return []any{p.Lat, p.Lng}
}

// Path is a polyline across the globe.
type Path struct {
	ID              ID
	Path            []PathPoint
	Name            Optional[string]
	Label           Optional[string]
	Color           Color
	DashLength      Optional[float64]
	DashGap         Optional[float64]
	DashInitialGap  Optional[float64]
	DashAnimateTime Optional[float64]
	Extras          extension.Bag
}

// NewPath validates p and assigns an identity when absent.
func NewPath(p Path) (Path, error) { return Normalize(p) }

func (p Path) DatumID() ID { return p.ID }
func (Path) Kind() Kind    { return KindPath }

func (Path) declared() fieldSet { return pathFields }

func (p Path) Validate() error {
	var c checker
	c.id(p.ID)
	if p.Path == nil {
		c.fail(Invalid("path", "is required", nil))
	}
	for i, pt := range p.Path {
		c.number(fmt.Sprintf("path[%d][0]", i), pt.Lat, Finite)
		c.number(fmt.Sprintf("path[%d][1]", i), pt.Lng, Finite)
		c.optNumber(fmt.Sprintf("path[%d][2]", i), pt.Alt, Finite)
	}
	c.color("color", p.Color, true)
	c.optNumber("dashLength", p.DashLength, Positive)
	c.optNumber("dashGap", p.DashGap, NonNegative)
	c.optNumber("dashInitialGap", p.DashInitialGap, NonNegative)
	c.optNumber("dashAnimateTime", p.DashAnimateTime, NonNegative)
	c.extras(p.Extras, pathFields)
	return c.err
}

func (p Path) Wire() map[string]any {
	w := newWire(p.ID)
	coords := make([]any, len(p.Path))
	for i, pt := range p.Path {
		coords[i] = pt.wire()
	}
	w["path"] = coords
	w.str("name", p.Name)
	w.str("label", p.Label)
	w.color("color", p.Color)
	w.num("dashLength", p.DashLength)
	w.num("dashGap", p.DashGap)
	w.num("dashInitialGap", p.DashInitialGap)
	w.num("dashAnimateTime", p.DashAnimateTime)
	return w.extras(p.Extras)
}

func (p Path) withID(id ID) Datum { p.ID = id; return p }

func (p Path) clone() Datum {
	if p.Path != nil {
		p.Path = append([]PathPoint(nil), p.Path...)
	}
	p.Extras = p.Extras.Clone()
	return p
}

func (Path) decode(raw map[string]any) (Datum, error) {
	d := newDecoder(raw, pathFields)
	p := Path{
		ID:              d.id(),
		Name:            d.optString("name"),
		Label:           d.optString("label"),
		Color:           d.color("color", true),
		DashLength:      d.optNumber("dashLength"),
		DashGap:         d.optNumber("dashGap"),
		DashInitialGap:  d.optNumber("dashInitialGap"),
		DashAnimateTime: d.optNumber("dashAnimateTime"),
		Extras:          d.extras(),
	}
	items := d.list("path")
	if items != nil {
		p.Path = make([]PathPoint, 0, len(items))
	}
	for i, item := range items {
		pt, err := parsePathPoint(fmt.Sprintf("path[%d]", i), item)
		if err != nil {
			d.fail(err)
			break
		}
		p.Path = append(p.Path, pt)
	}
	return p, d.err
}

func parsePathPoint(path string, value any) (PathPoint, error) {
	if pt, ok := value.(PathPoint); ok {
		return pt, nil
	}
	coords, ok := asList(value)
	if !ok || (len(coords) != 2 && len(coords) != 3) {
		return PathPoint{}, Invalid(path, "must be [lat, lng] or [lat, lng, alt]", value)
	}
	nums := make([]float64, len(coords))
	for i, c := range coords {
		f, isNum := ToFloat(c)
		if !isNum {
			return PathPoint{}, Invalid(fmt.Sprintf("%s[%d]", path, i), "must be a number", c)
		}
		nums[i] = f
	}
	pt := PathPoint{Lat: nums[0], Lng: nums[1]}
	if len(nums) == 3 {
		pt.Alt = Some(nums[2])
	}
	return pt, nil
}
