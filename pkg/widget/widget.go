// Package widget is the host-side handle on one globe: it owns the
// authoritative configuration, pushes every change to the renderer and
// dispatches the renderer's interaction events to registered handlers.
package widget

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"globewidget/internal/core"
	"globewidget/pkg/accessor"
	"globewidget/pkg/config"
	"globewidget/pkg/domain"
)

// Widget synchronizes one globe configuration with one renderer. It is safe
// for concurrent use.
type Widget struct {
	id     string
	ch     *core.Channel
	logger *slog.Logger
}

type options struct {
	id      string
	logger  *slog.Logger
	channel []core.Option
}

// Option configures a Widget.
type Option func(*options)

// WithID names the widget; the name keys persisted snapshots. A random
// identity is used when unset.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithLogger routes the widget's logs to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
		o.channel = append(o.channel, core.WithLogger(l))
	}
}

// WithAuditRecorder records every mutation.
func WithAuditRecorder(r AuditRecorder) Option {
	return func(o *options) { o.channel = append(o.channel, core.WithAuditRecorder(r)) }
}

// WithMetricsRecorder observes every operation.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(o *options) { o.channel = append(o.channel, core.WithMetricsRecorder(m)) }
}

// WithTracer traces every operation.
func WithTracer(t Tracer) Option {
	return func(o *options) { o.channel = append(o.channel, core.WithTracer(t)) }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.channel = append(o.channel, core.WithClock(now)) }
}

// New returns an unstarted widget holding initial.
func New(initial config.Globe, opts ...Option) *Widget {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.id == "" {
		o.id = string(domain.NewID())
	}
	logger := o.logger
	if logger == nil {
		logger = core.Logger()
	}
	return &Widget{
		id:     o.id,
		ch:     core.NewChannel(initial, o.channel...),
		logger: logger.With("widget", o.id),
	}
}

// Restore rebuilds the widget saved under id. It fails with a
// SnapshotNotFoundError when nothing was saved.
func Restore(ctx context.Context, store SnapshotStore, id string, opts ...Option) (*Widget, error) {
	g, ok, err := core.LoadSnapshot(ctx, store, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("restore: %w", &SnapshotNotFoundError{WidgetID: id})
	}
	return New(g, append([]Option{WithID(id)}, opts...)...), nil
}

// SnapshotNotFoundError is returned by Restore for an unknown widget.
type SnapshotNotFoundError struct {
	WidgetID string
}

func (e *SnapshotNotFoundError) Error() string {
	return fmt.Sprintf("no snapshot for widget %s", e.WidgetID)
}

// ID returns the widget identity.
func (w *Widget) ID() string { return w.id }

// State returns the lifecycle phase.
func (w *Widget) State() State { return w.ch.State() }

// Config returns the current configuration.
func (w *Widget) Config() config.Globe { return w.ch.Config() }

// Channel exposes the underlying channel for transports.
func (w *Widget) Channel() *core.Channel { return w.ch }

// Start attaches the renderer and sends the full configuration.
func (w *Widget) Start(ctx context.Context, sender Sender) error {
	return w.ch.Start(ctx, sender)
}

// HandleMessage processes one inbound renderer message.
func (w *Widget) HandleMessage(ctx context.Context, msg Message) error {
	return w.ch.HandleMessage(ctx, msg)
}

// Close disposes the widget.
func (w *Widget) Close() error { return w.ch.Close() }

// Persist saves the current configuration under the widget identity.
func (w *Widget) Persist(ctx context.Context, store SnapshotStore) error {
	if w.ch.State() == StateDisposed {
		return ErrClosed
	}
	return core.SaveSnapshot(ctx, store, w.id, w.ch.Config())
}

// SetAttribute binds attr to value and pushes only that change. value may be
// a literal, a field name, a callback.Spec or marked function, or an
// accessor.Value; nil sets an explicit null.
func (w *Widget) SetAttribute(ctx context.Context, attr config.Attribute, value any) (accessor.Value, error) {
	var bound accessor.Value
	err := w.ch.Apply(ctx, "set_attribute", string(attr.Section()), func(tx *core.Transaction) error {
		v, err := tx.SetAttribute(attr, value)
		bound = v
		return err
	})
	if err != nil {
		return accessor.Value{}, err
	}
	w.logger.Debug("attribute set", "attribute", attr.String(), "variant", bound.Variant().String())
	return bound, nil
}

// Attribute returns the current binding of attr.
func (w *Widget) Attribute(attr config.Attribute) (accessor.Value, bool) {
	return w.ch.Config().Section(attr.Section()).Get(attr)
}

// Replace swaps the whole configuration and pushes a full snapshot.
func (w *Widget) Replace(ctx context.Context, g config.Globe) error {
	return w.ch.Apply(ctx, "replace", "", func(tx *core.Transaction) error {
		tx.Replace(g)
		return nil
	})
}

// ClearTileEngineCache asks the renderer to drop cached globe tiles.
func (w *Widget) ClearTileEngineCache(ctx context.Context) error {
	return w.ch.Emit(ctx, "clear_tile_cache", Message{"type": core.MsgClearTileCache})
}

// PointOfView is a camera position.
type PointOfView struct {
	Lat      float64
	Lng      float64
	Altitude domain.Optional[float64]
}

// SetPointOfView moves the camera, animating over transition when positive.
func (w *Widget) SetPointOfView(ctx context.Context, pov PointOfView, transition time.Duration) error {
	raw := map[string]any{"lat": pov.Lat, "lng": pov.Lng}
	if alt, ok := pov.Altitude.Get(); ok {
		raw["altitude"] = alt
	}
	return w.ch.Apply(ctx, "set_point_of_view", string(config.SectionView), func(tx *core.Transaction) error {
		if transition > 0 {
			if _, err := tx.SetAttribute(config.TransitionMs, int(transition/time.Millisecond)); err != nil {
				return err
			}
		}
		_, err := tx.SetAttribute(config.PointOfView, raw)
		return err
	})
}

// SetGlobeImageURL sets the globe texture; nil removes it.
func (w *Widget) SetGlobeImageURL(ctx context.Context, url *string) error {
	return w.setOptionalString(ctx, config.GlobeImageURL, url)
}

// SetBumpImageURL sets the globe bump map; nil removes it.
func (w *Widget) SetBumpImageURL(ctx context.Context, url *string) error {
	return w.setOptionalString(ctx, config.BumpImageURL, url)
}

// SetGlobeTileEngineURL sets the slippy tile URL template; nil disables the
// tile engine.
func (w *Widget) SetGlobeTileEngineURL(ctx context.Context, url *string) error {
	return w.setOptionalString(ctx, config.GlobeTileEngineURL, url)
}

// SetBackgroundImageURL sets the scene background; nil removes it.
func (w *Widget) SetBackgroundImageURL(ctx context.Context, url *string) error {
	return w.setOptionalString(ctx, config.BackgroundImageURL, url)
}

// SetBackgroundColor sets the scene background color.
func (w *Widget) SetBackgroundColor(ctx context.Context, color string) error {
	_, err := w.SetAttribute(ctx, config.BackgroundColor, color)
	return err
}

// SetAtmosphere toggles the atmosphere and sets its color and altitude.
func (w *Widget) SetAtmosphere(ctx context.Context, show bool, color string, altitude float64) error {
	return w.ch.Apply(ctx, "set_atmosphere", string(config.SectionGlobe), func(tx *core.Transaction) error {
		if _, err := tx.SetAttribute(config.ShowAtmosphere, show); err != nil {
			return err
		}
		if _, err := tx.SetAttribute(config.AtmosphereColor, color); err != nil {
			return err
		}
		_, err := tx.SetAttribute(config.AtmosphereAltitude, altitude)
		return err
	})
}

// SetAutoRotate toggles camera auto rotation.
func (w *Widget) SetAutoRotate(ctx context.Context, enabled bool, speed float64) error {
	return w.ch.Apply(ctx, "set_auto_rotate", string(config.SectionView), func(tx *core.Transaction) error {
		if _, err := tx.SetAttribute(config.ControlsAutoRotate, enabled); err != nil {
			return err
		}
		_, err := tx.SetAttribute(config.ControlsAutoRotateSpeed, speed)
		return err
	})
}

func (w *Widget) setOptionalString(ctx context.Context, attr config.Attribute, value *string) error {
	var raw any
	if value != nil {
		raw = *value
	}
	_, err := w.SetAttribute(ctx, attr, raw)
	return err
}
