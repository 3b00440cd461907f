package widget

import (
	"context"

	"globewidget/internal/core"
	"globewidget/pkg/config"
	"globewidget/pkg/domain"
)

func kindOf[D domain.Datum]() domain.Kind {
	var zero D
	return zero.Kind()
}

// SetData replaces the collection of D and pushes it whole. Datums without
// an identity are assigned one; the stored datums are returned.
func SetData[D domain.Datum](ctx context.Context, w *Widget, items []D) ([]D, error) {
	var stored []D
	section := config.SectionOf(kindOf[D]())
	err := w.ch.Apply(ctx, "set_data", string(section), func(tx *core.Transaction) error {
		var err error
		stored, err = core.SetData(tx, items)
		return err
	})
	if err != nil {
		return nil, err
	}
	w.logger.Debug("collection replaced", "section", string(section), "items", len(stored))
	return stored, nil
}

// Update merges patch into the datum with identity id and pushes a patch
// carrying only the identity and the changed fields. It fails with a
// *domain.NotFoundError when no such datum exists.
func Update[D domain.Datum](ctx context.Context, w *Widget, id domain.ID, patch domain.Patch) error {
	return UpdateMany[D](ctx, w, config.DatumPatch{ID: id, Patch: patch})
}

// UpdateMany applies several patches as one change: either all apply and one
// patch message is pushed, or none does.
func UpdateMany[D domain.Datum](ctx context.Context, w *Widget, patches ...config.DatumPatch) error {
	section := config.SectionOf(kindOf[D]())
	return w.ch.Apply(ctx, "update", string(section), func(tx *core.Transaction) error {
		return core.PatchData[D](tx, patches...)
	})
}

// Data returns an independent copy of the collection of D.
func Data[D domain.Datum](w *Widget) []D {
	return config.LayerOf[D](w.ch.Config()).Data()
}

// Find returns a copy of the datum with identity id.
func Find[D domain.Datum](w *Widget, id domain.ID) (D, bool) {
	return config.LayerOf[D](w.ch.Config()).Find(id)
}

// SetPointsData replaces the points collection.
func (w *Widget) SetPointsData(ctx context.Context, items []domain.Point) ([]domain.Point, error) {
	return SetData(ctx, w, items)
}

// UpdatePoint patches one point.
func (w *Widget) UpdatePoint(ctx context.Context, id domain.ID, patch domain.Patch) error {
	return Update[domain.Point](ctx, w, id, patch)
}

// PointsData returns a copy of the points collection.
func (w *Widget) PointsData() []domain.Point { return Data[domain.Point](w) }

// SetArcsData replaces the arcs collection.
func (w *Widget) SetArcsData(ctx context.Context, items []domain.Arc) ([]domain.Arc, error) {
	return SetData(ctx, w, items)
}

// UpdateArc patches one arc.
func (w *Widget) UpdateArc(ctx context.Context, id domain.ID, patch domain.Patch) error {
	return Update[domain.Arc](ctx, w, id, patch)
}

// ArcsData returns a copy of the arcs collection.
func (w *Widget) ArcsData() []domain.Arc { return Data[domain.Arc](w) }

// SetPolygonsData replaces the polygons collection.
func (w *Widget) SetPolygonsData(ctx context.Context, items []domain.Polygon) ([]domain.Polygon, error) {
	return SetData(ctx, w, items)
}

// UpdatePolygon patches one polygon.
func (w *Widget) UpdatePolygon(ctx context.Context, id domain.ID, patch domain.Patch) error {
	return Update[domain.Polygon](ctx, w, id, patch)
}

// PolygonsData returns a copy of the polygons collection.
func (w *Widget) PolygonsData() []domain.Polygon { return Data[domain.Polygon](w) }

// SetPathsData replaces the paths collection.
func (w *Widget) SetPathsData(ctx context.Context, items []domain.Path) ([]domain.Path, error) {
	return SetData(ctx, w, items)
}

// UpdatePath patches one path.
func (w *Widget) UpdatePath(ctx context.Context, id domain.ID, patch domain.Patch) error {
	return Update[domain.Path](ctx, w, id, patch)
}

// PathsData returns a copy of the paths collection.
func (w *Widget) PathsData() []domain.Path { return Data[domain.Path](w) }

// SetHeatmapsData replaces the heatmaps collection.
func (w *Widget) SetHeatmapsData(ctx context.Context, items []domain.Heatmap) ([]domain.Heatmap, error) {
	return SetData(ctx, w, items)
}

// UpdateHeatmap patches one heatmap.
func (w *Widget) UpdateHeatmap(ctx context.Context, id domain.ID, patch domain.Patch) error {
	return Update[domain.Heatmap](ctx, w, id, patch)
}

// HeatmapsData returns a copy of the heatmaps collection.
func (w *Widget) HeatmapsData() []domain.Heatmap { return Data[domain.Heatmap](w) }

// SetHexBinPointsData replaces the hex bin collection.
func (w *Widget) SetHexBinPointsData(ctx context.Context, items []domain.HexBinPoint) ([]domain.HexBinPoint, error) {
	return SetData(ctx, w, items)
}

// UpdateHexBinPoint patches one hex bin point.
func (w *Widget) UpdateHexBinPoint(ctx context.Context, id domain.ID, patch domain.Patch) error {
	return Update[domain.HexBinPoint](ctx, w, id, patch)
}

// HexBinPointsData returns a copy of the hex bin collection.
func (w *Widget) HexBinPointsData() []domain.HexBinPoint { return Data[domain.HexBinPoint](w) }

// SetHexPolygonsData replaces the hex polygon collection.
func (w *Widget) SetHexPolygonsData(ctx context.Context, items []domain.HexPolygon) ([]domain.HexPolygon, error) {
	return SetData(ctx, w, items)
}

// UpdateHexPolygon patches one hex polygon.
func (w *Widget) UpdateHexPolygon(ctx context.Context, id domain.ID, patch domain.Patch) error {
	return Update[domain.HexPolygon](ctx, w, id, patch)
}

// HexPolygonsData returns a copy of the hex polygon collection.
func (w *Widget) HexPolygonsData() []domain.HexPolygon { return Data[domain.HexPolygon](w) }

// SetTilesData replaces the tiles collection.
func (w *Widget) SetTilesData(ctx context.Context, items []domain.Tile) ([]domain.Tile, error) {
	return SetData(ctx, w, items)
}

// UpdateTile patches one tile.
func (w *Widget) UpdateTile(ctx context.Context, id domain.ID, patch domain.Patch) error {
	return Update[domain.Tile](ctx, w, id, patch)
}

// TilesData returns a copy of the tiles collection.
func (w *Widget) TilesData() []domain.Tile { return Data[domain.Tile](w) }

// SetParticlesData replaces the particles collection.
func (w *Widget) SetParticlesData(ctx context.Context, items []domain.Particle) ([]domain.Particle, error) {
	return SetData(ctx, w, items)
}

// UpdateParticle patches one particle.
func (w *Widget) UpdateParticle(ctx context.Context, id domain.ID, patch domain.Patch) error {
	return Update[domain.Particle](ctx, w, id, patch)
}

// ParticlesData returns a copy of the particles collection.
func (w *Widget) ParticlesData() []domain.Particle { return Data[domain.Particle](w) }

// SetRingsData replaces the rings collection.
func (w *Widget) SetRingsData(ctx context.Context, items []domain.Ring) ([]domain.Ring, error) {
	return SetData(ctx, w, items)
}

// UpdateRing patches one ring.
func (w *Widget) UpdateRing(ctx context.Context, id domain.ID, patch domain.Patch) error {
	return Update[domain.Ring](ctx, w, id, patch)
}

// RingsData returns a copy of the rings collection.
func (w *Widget) RingsData() []domain.Ring { return Data[domain.Ring](w) }

// SetLabelsData replaces the labels collection.
func (w *Widget) SetLabelsData(ctx context.Context, items []domain.Label) ([]domain.Label, error) {
	return SetData(ctx, w, items)
}

// UpdateLabel patches one label.
func (w *Widget) UpdateLabel(ctx context.Context, id domain.ID, patch domain.Patch) error {
	return Update[domain.Label](ctx, w, id, patch)
}

// LabelsData returns a copy of the labels collection.
func (w *Widget) LabelsData() []domain.Label { return Data[domain.Label](w) }
