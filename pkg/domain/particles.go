package domain

import (
	"fmt"

	"globewidget/pkg/domain/extension"
)

var particlePointFields = nestedFields("lat", "lng", "altitude", "label")

// ParticlePoint is one particle within a particle group.
type ParticlePoint struct {
	Lat      float64
	Lng      float64
	Altitude Optional[float64]
	Label    Optional[string]
	Extras   extension.Bag
}

func (p ParticlePoint) validate(path string) error {
	var c checker
	c.number(path+".lat", p.Lat, Latitude)
	c.number(path+".lng", p.Lng, Longitude)
	c.optNumber(path+".altitude", p.Altitude, NonNegative)
	for _, key := range p.Extras.Keys() {
		if _, clash := particlePointFields[key]; clash {
			c.fail(Invalid(path+"."+key, "extension key collides with a declared field", nil))
		}
	}
	return c.err
}

func (p ParticlePoint) wire() map[string]any {
	w := wire{"lat": p.Lat, "lng": p.Lng}
	w.num("altitude", p.Altitude)
	w.str("label", p.Label)
	return w.extras(p.Extras)
}

func parseParticlePoint(path string, value any) (ParticlePoint, error) {
	if pt, ok := value.(ParticlePoint); ok {
		pt.Extras = pt.Extras.Clone()
		return pt, nil
	}
	raw, err := object(path, value)
	if err != nil {
		return ParticlePoint{}, err
	}
	d := newDecoder(raw, particlePointFields)
	pt := ParticlePoint{
		Lat:      d.number("lat"),
		Lng:      d.number("lng"),
		Altitude: d.optNumber("altitude"),
		Label:    d.optString("label"),
		Extras:   d.extras(),
	}
	return pt, WithPathPrefix(d.err, path)
}

var particleFields = fields("particles", "size", "sizeAttenuation", "color", "texture", "label")

// Particle is a group of particles sharing size, color and texture.
type Particle struct {
	ID              ID
	Particles       []ParticlePoint
	Size            Optional[float64]
	SizeAttenuation Optional[bool]
	Color           Color
	Texture         Optional[string]
	Label           Optional[string]
	Extras          extension.Bag
}

// NewParticle validates p and assigns an identity when absent.
func NewParticle(p Particle) (Particle, error) { return Normalize(p) }

func (p Particle) DatumID() ID { return p.ID }
func (Particle) Kind() Kind    { return KindParticle }

func (Particle) declared() fieldSet { return particleFields }

func (p Particle) Validate() error {
	var c checker
	c.id(p.ID)
	if len(p.Particles) == 0 {
		c.fail(Invalid("particles", "must contain at least one particle", nil))
	}
	for i, pt := range p.Particles {
		c.fail(pt.validate(fmt.Sprintf("particles[%d]", i)))
	}
	c.optNumber("size", p.Size, Positive)
	c.color("color", p.Color, false)
	c.extras(p.Extras, particleFields)
	return c.err
}

func (p Particle) Wire() map[string]any {
	w := newWire(p.ID)
	particles := make([]any, len(p.Particles))
	for i, pt := range p.Particles {
		particles[i] = pt.wire()
	}
	w["particles"] = particles
	w.num("size", p.Size)
	w.boolean("sizeAttenuation", p.SizeAttenuation)
	w.color("color", p.Color)
	w.str("texture", p.Texture)
	w.str("label", p.Label)
	return w.extras(p.Extras)
}

func (p Particle) withID(id ID) Datum { p.ID = id; return p }

func (p Particle) clone() Datum {
	if p.Particles != nil {
		particles := make([]ParticlePoint, len(p.Particles))
		for i, pt := range p.Particles {
			pt.Extras = pt.Extras.Clone()
			particles[i] = pt
		}
		p.Particles = particles
	}
	p.Extras = p.Extras.Clone()
	return p
}

func (Particle) decode(raw map[string]any) (Datum, error) {
	d := newDecoder(raw, particleFields)
	p := Particle{
		ID:              d.id(),
		Size:            d.optNumber("size"),
		SizeAttenuation: d.optBool("sizeAttenuation"),
		Color:           d.color("color", false),
		Texture:         d.optString("texture"),
		Label:           d.optString("label"),
		Extras:          d.extras(),
	}
	for i, item := range d.list("particles") {
		pt, err := parseParticlePoint(fmt.Sprintf("particles[%d]", i), item)
		if err != nil {
			d.fail(err)
			break
		}
		p.Particles = append(p.Particles, pt)
	}
	return p, d.err
}
