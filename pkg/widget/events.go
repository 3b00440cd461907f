package widget

import (
	"fmt"

	"globewidget/internal/core"
	"globewidget/pkg/config"
	"globewidget/pkg/domain"
)

// On registers fn for a raw event type. Handlers for one event run in
// registration order and never before the renderer is ready.
func (w *Widget) On(eventType string, fn func(Event)) (Registration, error) {
	return w.ch.On(eventType, core.Handler(fn))
}

// OnGlobeReady registers fn for the renderer's ready signal.
func (w *Widget) OnGlobeReady(fn func()) (Registration, error) {
	if fn == nil {
		return Registration{}, fmt.Errorf("widget: nil globe ready handler")
	}
	return w.On(core.EventGlobeReady, func(Event) { fn() })
}

// OnGlobeClick registers fn for clicks on the globe surface.
func (w *Widget) OnGlobeClick(fn func(Coordinates)) (Registration, error) {
	return w.onGlobe(core.EventGlobeClick, fn)
}

// OnGlobeRightClick registers fn for right clicks on the globe surface.
func (w *Widget) OnGlobeRightClick(fn func(Coordinates)) (Registration, error) {
	return w.onGlobe(core.EventGlobeRightClick, fn)
}

func (w *Widget) onGlobe(eventType string, fn func(Coordinates)) (Registration, error) {
	if fn == nil {
		return Registration{}, fmt.Errorf("widget: nil %s handler", eventType)
	}
	return w.On(eventType, func(ev Event) { fn(ev.Coords) })
}

// OnClick registers fn for clicks on datums of type D. The datum handed to fn
// is the widget's current copy when its identity is known, otherwise the
// renderer's copy decoded as D.
func OnClick[D domain.Datum](w *Widget, fn func(D, Coordinates)) (Registration, error) {
	return onPointer(w, core.ActionClick, fn)
}

// OnRightClick registers fn for right clicks on datums of type D.
func OnRightClick[D domain.Datum](w *Widget, fn func(D, Coordinates)) (Registration, error) {
	return onPointer(w, core.ActionRightClick, fn)
}

// OnHover registers fn for hover changes over datums of type D. current and
// previous are nil when the pointer is over nothing.
func OnHover[D domain.Datum](w *Widget, fn func(current, previous *D)) (Registration, error) {
	kind := kindOf[D]()
	if err := typedKind(kind, fn == nil); err != nil {
		return Registration{}, err
	}
	return w.On(core.LayerEvent(kind, core.ActionHover), func(ev Event) {
		current, ok := resolveOptional[D](w, ev.Datum)
		if !ok {
			return
		}
		previous, ok := resolveOptional[D](w, ev.Previous)
		if !ok {
			return
		}
		fn(current, previous)
	})
}

func onPointer[D domain.Datum](w *Widget, action string, fn func(D, Coordinates)) (Registration, error) {
	kind := kindOf[D]()
	if err := typedKind(kind, fn == nil); err != nil {
		return Registration{}, err
	}
	return w.On(core.LayerEvent(kind, action), func(ev Event) {
		d, ok := resolveDatum[D](w, ev.Datum)
		if !ok {
			return
		}
		fn(d, ev.Coords)
	})
}

func typedKind(kind domain.Kind, nilHandler bool) error {
	if nilHandler {
		return fmt.Errorf("widget: nil %s handler", kind)
	}
	if kind == domain.KindHexBin {
		return fmt.Errorf("widget: hex bin events carry aggregated bins; use the OnHexBin handlers")
	}
	return nil
}

// resolveDatum prefers the widget's own copy of the target so handlers see
// typed fields and extension values exactly as the host set them.
func resolveDatum[D domain.Datum](w *Widget, raw map[string]any) (D, bool) {
	var zero D
	if raw == nil {
		w.logger.Warn("dropped event without datum", "kind", string(zero.Kind()))
		return zero, false
	}
	if id, ok := raw["id"].(string); ok {
		if d, found := config.LayerOf[D](w.ch.Config()).Find(domain.ID(id)); found {
			return d, true
		}
	}
	d, err := domain.FromWire[D](raw)
	if err != nil {
		w.logger.Warn("dropped event with undecodable datum", "kind", string(zero.Kind()), "error", err)
		return zero, false
	}
	return d, true
}

func resolveOptional[D domain.Datum](w *Widget, raw map[string]any) (*D, bool) {
	if raw == nil {
		return nil, true
	}
	d, ok := resolveDatum[D](w, raw)
	if !ok {
		return nil, false
	}
	return &d, true
}

// OnHexBinClick registers fn for clicks on hex bins. Bins are aggregates
// computed by the renderer and arrive as raw objects with points, sumWeight
// and center.
func (w *Widget) OnHexBinClick(fn func(bin map[string]any, coords Coordinates)) (Registration, error) {
	return w.onHexBin(core.ActionClick, fn)
}

// OnHexBinRightClick registers fn for right clicks on hex bins.
func (w *Widget) OnHexBinRightClick(fn func(bin map[string]any, coords Coordinates)) (Registration, error) {
	return w.onHexBin(core.ActionRightClick, fn)
}

// OnHexBinHover registers fn for hover changes over hex bins.
func (w *Widget) OnHexBinHover(fn func(current, previous map[string]any)) (Registration, error) {
	if fn == nil {
		return Registration{}, fmt.Errorf("widget: nil hexbin hover handler")
	}
	return w.On(core.LayerEvent(domain.KindHexBin, core.ActionHover), func(ev Event) {
		fn(ev.Datum, ev.Previous)
	})
}

func (w *Widget) onHexBin(action string, fn func(map[string]any, Coordinates)) (Registration, error) {
	if fn == nil {
		return Registration{}, fmt.Errorf("widget: nil hexbin %s handler", action)
	}
	return w.On(core.LayerEvent(domain.KindHexBin, action), func(ev Event) {
		fn(ev.Datum, ev.Coords)
	})
}

// OnPointClick registers fn for point clicks.
func (w *Widget) OnPointClick(fn func(domain.Point, Coordinates)) (Registration, error) {
	return OnClick(w, fn)
}

// OnPointRightClick registers fn for point right clicks.
func (w *Widget) OnPointRightClick(fn func(domain.Point, Coordinates)) (Registration, error) {
	return OnRightClick(w, fn)
}

// OnPointHover registers fn for point hover changes.
func (w *Widget) OnPointHover(fn func(current, previous *domain.Point)) (Registration, error) {
	return OnHover(w, fn)
}

// OnArcClick registers fn for arc clicks.
func (w *Widget) OnArcClick(fn func(domain.Arc, Coordinates)) (Registration, error) {
	return OnClick(w, fn)
}

// OnArcRightClick registers fn for arc right clicks.
func (w *Widget) OnArcRightClick(fn func(domain.Arc, Coordinates)) (Registration, error) {
	return OnRightClick(w, fn)
}

// OnArcHover registers fn for arc hover changes.
func (w *Widget) OnArcHover(fn func(current, previous *domain.Arc)) (Registration, error) {
	return OnHover(w, fn)
}

// OnPolygonClick registers fn for polygon clicks.
func (w *Widget) OnPolygonClick(fn func(domain.Polygon, Coordinates)) (Registration, error) {
	return OnClick(w, fn)
}

// OnPolygonRightClick registers fn for polygon right clicks.
func (w *Widget) OnPolygonRightClick(fn func(domain.Polygon, Coordinates)) (Registration, error) {
	return OnRightClick(w, fn)
}

// OnPolygonHover registers fn for polygon hover changes.
func (w *Widget) OnPolygonHover(fn func(current, previous *domain.Polygon)) (Registration, error) {
	return OnHover(w, fn)
}

// OnPathClick registers fn for path clicks.
func (w *Widget) OnPathClick(fn func(domain.Path, Coordinates)) (Registration, error) {
	return OnClick(w, fn)
}

// OnPathRightClick registers fn for path right clicks.
func (w *Widget) OnPathRightClick(fn func(domain.Path, Coordinates)) (Registration, error) {
	return OnRightClick(w, fn)
}

// OnPathHover registers fn for path hover changes.
func (w *Widget) OnPathHover(fn func(current, previous *domain.Path)) (Registration, error) {
	return OnHover(w, fn)
}

// OnHeatmapClick registers fn for heatmap clicks.
func (w *Widget) OnHeatmapClick(fn func(domain.Heatmap, Coordinates)) (Registration, error) {
	return OnClick(w, fn)
}

// OnHeatmapRightClick registers fn for heatmap right clicks.
func (w *Widget) OnHeatmapRightClick(fn func(domain.Heatmap, Coordinates)) (Registration, error) {
	return OnRightClick(w, fn)
}

// OnHeatmapHover registers fn for heatmap hover changes.
func (w *Widget) OnHeatmapHover(fn func(current, previous *domain.Heatmap)) (Registration, error) {
	return OnHover(w, fn)
}

// OnHexPolygonClick registers fn for hex polygon clicks.
func (w *Widget) OnHexPolygonClick(fn func(domain.HexPolygon, Coordinates)) (Registration, error) {
	return OnClick(w, fn)
}

// OnHexPolygonRightClick registers fn for hex polygon right clicks.
func (w *Widget) OnHexPolygonRightClick(fn func(domain.HexPolygon, Coordinates)) (Registration, error) {
	return OnRightClick(w, fn)
}

// OnHexPolygonHover registers fn for hex polygon hover changes.
func (w *Widget) OnHexPolygonHover(fn func(current, previous *domain.HexPolygon)) (Registration, error) {
	return OnHover(w, fn)
}

// OnTileClick registers fn for tile clicks.
func (w *Widget) OnTileClick(fn func(domain.Tile, Coordinates)) (Registration, error) {
	return OnClick(w, fn)
}

// OnTileRightClick registers fn for tile right clicks.
func (w *Widget) OnTileRightClick(fn func(domain.Tile, Coordinates)) (Registration, error) {
	return OnRightClick(w, fn)
}

// OnTileHover registers fn for tile hover changes.
func (w *Widget) OnTileHover(fn func(current, previous *domain.Tile)) (Registration, error) {
	return OnHover(w, fn)
}

// OnParticleClick registers fn for particle clicks.
func (w *Widget) OnParticleClick(fn func(domain.Particle, Coordinates)) (Registration, error) {
	return OnClick(w, fn)
}

// OnParticleRightClick registers fn for particle right clicks.
func (w *Widget) OnParticleRightClick(fn func(domain.Particle, Coordinates)) (Registration, error) {
	return OnRightClick(w, fn)
}

// OnParticleHover registers fn for particle hover changes.
func (w *Widget) OnParticleHover(fn func(current, previous *domain.Particle)) (Registration, error) {
	return OnHover(w, fn)
}

// OnRingClick registers fn for ring clicks.
func (w *Widget) OnRingClick(fn func(domain.Ring, Coordinates)) (Registration, error) {
	return OnClick(w, fn)
}

// OnRingRightClick registers fn for ring right clicks.
func (w *Widget) OnRingRightClick(fn func(domain.Ring, Coordinates)) (Registration, error) {
	return OnRightClick(w, fn)
}

// OnRingHover registers fn for ring hover changes.
func (w *Widget) OnRingHover(fn func(current, previous *domain.Ring)) (Registration, error) {
	return OnHover(w, fn)
}

// OnLabelClick registers fn for label clicks.
func (w *Widget) OnLabelClick(fn func(domain.Label, Coordinates)) (Registration, error) {
	return OnClick(w, fn)
}

// OnLabelRightClick registers fn for label right clicks.
func (w *Widget) OnLabelRightClick(fn func(domain.Label, Coordinates)) (Registration, error) {
	return OnRightClick(w, fn)
}

// OnLabelHover registers fn for label hover changes.
func (w *Widget) OnLabelHover(fn func(current, previous *domain.Label)) (Registration, error) {
	return OnHover(w, fn)
}
