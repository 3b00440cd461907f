package domain

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Geometry is a validated Polygon or MultiPolygon in GeoJSON orientation:
// exterior rings counter-clockwise, holes clockwise, every ring closed.
type Geometry struct {
	geom orb.Geometry
}

// NewPolygon validates rings (exterior first) as a Polygon.
func NewPolygon(rings ...orb.Ring) (Geometry, error) {
	return GeometryFromOrb(orb.Polygon(rings))
}

// NewMultiPolygon validates polygons as a MultiPolygon.
func NewMultiPolygon(polygons ...orb.Polygon) (Geometry, error) {
	return GeometryFromOrb(orb.MultiPolygon(polygons))
}

// GeometryFromOrb validates an orb geometry. Only Polygon and MultiPolygon are
// supported.
func GeometryFromOrb(g orb.Geometry) (Geometry, error) {
	geometry := Geometry{geom: orb.Clone(g)}
	if err := geometry.validate("geometry"); err != nil {
		return Geometry{}, err
	}
	return geometry, nil
}

// ParseGeoJSON decodes a GeoJSON geometry object.
func ParseGeoJSON(data []byte) (Geometry, error) {
	decoded, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return Geometry{}, Invalid("geometry", "must be a GeoJSON geometry object", err.Error())
	}
	return GeometryFromOrb(decoded.Geometry())
}

// IsZero reports whether no geometry is set.
func (g Geometry) IsZero() bool { return g.geom == nil }

// Orb returns a copy of the underlying orb geometry.
func (g Geometry) Orb() orb.Geometry {
	if g.geom == nil {
		return nil
	}
	return orb.Clone(g.geom)
}

// Type returns the GeoJSON type name.
func (g Geometry) Type() string {
	if g.geom == nil {
		return ""
	}
	return g.geom.GeoJSONType()
}

// Wire returns the GeoJSON object form.
func (g Geometry) Wire() map[string]any {
	if g.geom == nil {
		return nil
	}
	data, err := geojson.NewGeometry(g.geom).MarshalJSON()
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

func (g Geometry) clone() Geometry {
	return Geometry{geom: g.Orb()}
}

func (g Geometry) validate(path string) error {
	switch typed := g.geom.(type) {
	case nil:
		return Invalid(path, "is required", nil)
	case orb.Polygon:
		return validatePolygon(path, typed)
	case orb.MultiPolygon:
		if len(typed) == 0 {
			return Invalid(path, "multipolygon must contain at least one polygon", nil)
		}
		for i, poly := range typed {
			if err := validatePolygon(fmt.Sprintf("%s.coordinates[%d]", path, i), poly); err != nil {
				return err
			}
		}
		return nil
	default:
		return Invalid(path, "unsupported geometry type, expected Polygon or MultiPolygon", g.geom.GeoJSONType())
	}
}

func validatePolygon(path string, poly orb.Polygon) error {
	if len(poly) == 0 {
		return Invalid(path, "polygon must contain an exterior ring", nil)
	}
	for i, ring := range poly {
		ringPath := fmt.Sprintf("%s[%d]", path, i)
		if len(ring) < 4 {
			return Invalid(ringPath, "ring must contain at least four positions", len(ring))
		}
		if !ring.Closed() {
			return Invalid(ringPath, "ring must be closed", nil)
		}
		for j, pt := range ring {
			ptPath := fmt.Sprintf("%s[%d]", ringPath, j)
			if err := CheckNumber(ptPath+".lng", pt.Lon(), Longitude); err != nil {
				return err
			}
			if err := CheckNumber(ptPath+".lat", pt.Lat(), Latitude); err != nil {
				return err
			}
		}
		want := orb.CCW
		if i > 0 {
			want = orb.CW
		}
		if got := ring.Orientation(); got != want {
			role := "exterior ring must be counter-clockwise"
			if i > 0 {
				role = "hole must be clockwise"
			}
			return Invalid(ringPath, role, nil)
		}
	}
	return nil
}

func parseGeometry(path string, value any) (Geometry, error) {
	switch typed := value.(type) {
	case Geometry:
		if err := typed.validate(path); err != nil {
			return Geometry{}, err
		}
		return typed.clone(), nil
	case orb.Polygon, orb.MultiPolygon:
		g := Geometry{geom: orb.Clone(typed.(orb.Geometry))}
		return g, g.validate(path)
	case map[string]any:
		data, err := json.Marshal(typed)
		if err != nil {
			return Geometry{}, Invalid(path, "must be a GeoJSON geometry object", err.Error())
		}
		decoded, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return Geometry{}, Invalid(path, "must be a GeoJSON geometry object", err.Error())
		}
		g := Geometry{geom: decoded.Geometry()}
		return g, g.validate(path)
	default:
		return Geometry{}, Invalid(path, "must be a GeoJSON geometry object", typeName(value))
	}
}

// WireValue implements extension.Encoder.
func (g Geometry) WireValue() any { return g.Wire() }
