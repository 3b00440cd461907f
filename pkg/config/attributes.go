package config

import (
	"math"
	"slices"

	"globewidget/pkg/accessor"
	"globewidget/pkg/domain"
)

// Attribute is one configurable renderer property of a section.
type Attribute struct {
	section SectionName
	rule    accessor.Rule
}

// Name returns the renderer (wire) name.
func (a Attribute) Name() string { return a.rule.Name }

// Section returns the owning section.
func (a Attribute) Section() SectionName { return a.section }

// Rule returns the binding rule of the attribute.
func (a Attribute) Rule() accessor.Rule { return a.rule }

// IsAccessor reports whether field and callback bindings are accepted.
func (a Attribute) IsAccessor() bool { return a.rule.Accessor }

func (a Attribute) String() string { return string(a.section) + "." + a.rule.Name }

var registry = map[SectionName]map[string]Attribute{}

func define(section SectionName, rule accessor.Rule) Attribute {
	attrs, ok := registry[section]
	if !ok {
		attrs = map[string]Attribute{}
		registry[section] = attrs
	}
	if _, dup := attrs[rule.Name]; dup {
		panic("config: duplicate attribute " + rule.Name)
	}
	attr := Attribute{section: section, rule: rule}
	attrs[rule.Name] = attr
	return attr
}

// field defines an accessor that reads bare strings as datum field names.
func field(section SectionName, name string, check accessor.Check) Attribute {
	return define(section, accessor.Rule{Name: name, Accessor: true, Strings: accessor.StringsAsFields, Literal: check})
}

// literal defines an accessor that reads bare strings as literal values.
func literal(section SectionName, name string, check accessor.Check) Attribute {
	return define(section, accessor.Rule{Name: name, Accessor: true, Strings: accessor.StringsAsLiterals, Literal: check})
}

// scalar defines a layer-wide setting that only accepts literals.
func scalar(section SectionName, name string, check accessor.Check) Attribute {
	return define(section, accessor.Rule{Name: name, Literal: check})
}

// nullable lets attr take an explicit null, which clears it on the renderer.
func nullable(attr Attribute) Attribute {
	attr.rule.Nullable = true
	registry[attr.section][attr.rule.Name] = attr
	return attr
}

// Lookup finds an attribute by section and wire name.
func Lookup(section SectionName, name string) (Attribute, bool) {
	attr, ok := registry[section][name]
	return attr, ok
}

// Attributes lists a section's attributes sorted by wire name.
func Attributes(section SectionName) []Attribute {
	attrs := make([]Attribute, 0, len(registry[section]))
	for _, attr := range registry[section] {
		attrs = append(attrs, attr)
	}
	slices.SortFunc(attrs, func(a, b Attribute) int {
		switch {
		case a.rule.Name < b.rule.Name:
			return -1
		case a.rule.Name > b.rule.Name:
			return 1
		}
		return 0
	})
	return attrs
}

const maxInt = math.MaxInt32

var (
	lat         = accessor.Number(domain.Latitude)
	lng         = accessor.Number(domain.Longitude)
	finite      = accessor.Number(domain.Finite)
	nonNegative = accessor.Number(domain.NonNegative)
	positive    = accessor.Number(domain.Positive)
	duration    = accessor.Int(0, maxInt)
	resolution  = accessor.Int(1, maxInt)
	h3          = accessor.Int(0, 15)
	text        = accessor.Text()
	flag        = accessor.Bool()
	solid       = accessor.Color(false)
	gradient    = accessor.Color(true)
	material    = accessor.Material()
	object      = accessor.Object()
	url         = accessor.URL()
	coordinates = accessor.List(accessor.Either(accessor.Vector(2), accessor.Vector(3)))
	objects     = accessor.List(object)
)

// Init settings.
var (
	RendererConfig    = scalar(SectionInit, "rendererConfig", object)
	WaitForGlobeReady = scalar(SectionInit, "waitForGlobeReady", flag)
	AnimateIn         = scalar(SectionInit, "animateIn", flag)
)

// Layout settings.
var (
	Width              = scalar(SectionLayout, "width", positive)
	Height             = scalar(SectionLayout, "height", positive)
	GlobeOffset        = scalar(SectionLayout, "globeOffset", accessor.Vector(2))
	BackgroundColor    = scalar(SectionLayout, "backgroundColor", solid)
	BackgroundImageURL = nullable(scalar(SectionLayout, "backgroundImageUrl", url))
)

// Globe layer settings.
var (
	GlobeImageURL            = nullable(scalar(SectionGlobe, "globeImageUrl", url))
	BumpImageURL             = nullable(scalar(SectionGlobe, "bumpImageUrl", url))
	GlobeTileEngineURL       = nullable(scalar(SectionGlobe, "globeTileEngineUrl", url))
	ShowGlobe                = scalar(SectionGlobe, "showGlobe", flag)
	ShowGraticules           = scalar(SectionGlobe, "showGraticules", flag)
	ShowAtmosphere           = scalar(SectionGlobe, "showAtmosphere", flag)
	AtmosphereColor          = scalar(SectionGlobe, "atmosphereColor", solid)
	AtmosphereAltitude       = scalar(SectionGlobe, "atmosphereAltitude", nonNegative)
	GlobeCurvatureResolution = scalar(SectionGlobe, "globeCurvatureResolution", positive)
	GlobeMaterial            = scalar(SectionGlobe, "globeMaterial", material)
)

// Points layer.
var (
	PointLat                 = field(SectionPoints, "pointLat", lat)
	PointLng                 = field(SectionPoints, "pointLng", lng)
	PointAltitude            = field(SectionPoints, "pointAltitude", nonNegative)
	PointRadius              = field(SectionPoints, "pointRadius", positive)
	PointColor               = literal(SectionPoints, "pointColor", solid)
	PointLabel               = field(SectionPoints, "pointLabel", text)
	PointResolution          = scalar(SectionPoints, "pointResolution", resolution)
	PointsMerge              = scalar(SectionPoints, "pointsMerge", flag)
	PointsTransitionDuration = scalar(SectionPoints, "pointsTransitionDuration", duration)
)

// Arcs layer.
var (
	ArcStartLat            = field(SectionArcs, "arcStartLat", lat)
	ArcStartLng            = field(SectionArcs, "arcStartLng", lng)
	ArcEndLat              = field(SectionArcs, "arcEndLat", lat)
	ArcEndLng              = field(SectionArcs, "arcEndLng", lng)
	ArcStartAltitude       = field(SectionArcs, "arcStartAltitude", nonNegative)
	ArcEndAltitude         = field(SectionArcs, "arcEndAltitude", nonNegative)
	ArcAltitude            = field(SectionArcs, "arcAltitude", nonNegative)
	ArcAltitudeAutoScale   = field(SectionArcs, "arcAltitudeAutoScale", nonNegative)
	ArcStroke              = field(SectionArcs, "arcStroke", positive)
	ArcColor               = literal(SectionArcs, "arcColor", gradient)
	ArcDashLength          = field(SectionArcs, "arcDashLength", positive)
	ArcDashGap             = field(SectionArcs, "arcDashGap", nonNegative)
	ArcDashInitialGap      = field(SectionArcs, "arcDashInitialGap", nonNegative)
	ArcDashAnimateTime     = field(SectionArcs, "arcDashAnimateTime", nonNegative)
	ArcLabel               = field(SectionArcs, "arcLabel", text)
	ArcCurveResolution     = scalar(SectionArcs, "arcCurveResolution", resolution)
	ArcCircularResolution  = scalar(SectionArcs, "arcCircularResolution", resolution)
	ArcsTransitionDuration = scalar(SectionArcs, "arcsTransitionDuration", duration)
)

// Polygons layer.
var (
	PolygonGeoJSONGeometry        = field(SectionPolygons, "polygonGeoJsonGeometry", object)
	PolygonCapColor               = literal(SectionPolygons, "polygonCapColor", solid)
	PolygonSideColor              = literal(SectionPolygons, "polygonSideColor", solid)
	PolygonStrokeColor            = literal(SectionPolygons, "polygonStrokeColor", solid)
	PolygonAltitude               = field(SectionPolygons, "polygonAltitude", nonNegative)
	PolygonCapCurvatureResolution = field(SectionPolygons, "polygonCapCurvatureResolution", positive)
	PolygonLabel                  = field(SectionPolygons, "polygonLabel", text)
	PolygonCapMaterial            = scalar(SectionPolygons, "polygonCapMaterial", material)
	PolygonSideMaterial           = scalar(SectionPolygons, "polygonSideMaterial", material)
	PolygonsTransitionDuration    = scalar(SectionPolygons, "polygonsTransitionDuration", duration)
)

// Paths layer.
var (
	PathPoints             = field(SectionPaths, "pathPoints", coordinates)
	PathPointLat           = field(SectionPaths, "pathPointLat", lat)
	PathPointLng           = field(SectionPaths, "pathPointLng", lng)
	PathPointAlt           = field(SectionPaths, "pathPointAlt", nonNegative)
	PathColor              = literal(SectionPaths, "pathColor", gradient)
	PathStroke             = field(SectionPaths, "pathStroke", positive)
	PathDashLength         = field(SectionPaths, "pathDashLength", positive)
	PathDashGap            = field(SectionPaths, "pathDashGap", nonNegative)
	PathDashInitialGap     = field(SectionPaths, "pathDashInitialGap", nonNegative)
	PathDashAnimateTime    = field(SectionPaths, "pathDashAnimateTime", nonNegative)
	PathLabel              = field(SectionPaths, "pathLabel", text)
	PathResolution         = scalar(SectionPaths, "pathResolution", resolution)
	PathTransitionDuration = scalar(SectionPaths, "pathTransitionDuration", duration)
)

// Heatmaps layer.
var (
	HeatmapPoints              = field(SectionHeatmaps, "heatmapPoints", objects)
	HeatmapPointLat            = field(SectionHeatmaps, "heatmapPointLat", lat)
	HeatmapPointLng            = field(SectionHeatmaps, "heatmapPointLng", lng)
	HeatmapPointWeight         = field(SectionHeatmaps, "heatmapPointWeight", finite)
	HeatmapBandwidth           = field(SectionHeatmaps, "heatmapBandwidth", positive)
	HeatmapColorSaturation     = field(SectionHeatmaps, "heatmapColorSaturation", positive)
	HeatmapBaseAltitude        = field(SectionHeatmaps, "heatmapBaseAltitude", nonNegative)
	HeatmapTopAltitude         = field(SectionHeatmaps, "heatmapTopAltitude", nonNegative)
	HeatmapsTransitionDuration = scalar(SectionHeatmaps, "heatmapsTransitionDuration", duration)
)

// Hex bin layer.
var (
	HexBinPointLat            = field(SectionHexBin, "hexBinPointLat", lat)
	HexBinPointLng            = field(SectionHexBin, "hexBinPointLng", lng)
	HexBinPointWeight         = field(SectionHexBin, "hexBinPointWeight", finite)
	HexAltitude               = field(SectionHexBin, "hexAltitude", nonNegative)
	HexTopColor               = literal(SectionHexBin, "hexTopColor", solid)
	HexSideColor              = literal(SectionHexBin, "hexSideColor", solid)
	HexLabel                  = field(SectionHexBin, "hexLabel", text)
	HexMargin                 = field(SectionHexBin, "hexMargin", nonNegative)
	HexBinResolution          = scalar(SectionHexBin, "hexBinResolution", h3)
	HexTopCurvatureResolution = scalar(SectionHexBin, "hexTopCurvatureResolution", positive)
	HexBinMerge               = scalar(SectionHexBin, "hexBinMerge", flag)
	HexTransitionDuration     = scalar(SectionHexBin, "hexTransitionDuration", duration)
)

// Hexed polygons layer.
var (
	HexPolygonGeoJSONGeometry     = field(SectionHexPolygons, "hexPolygonGeoJsonGeometry", object)
	HexPolygonColor               = literal(SectionHexPolygons, "hexPolygonColor", solid)
	HexPolygonAltitude            = field(SectionHexPolygons, "hexPolygonAltitude", nonNegative)
	HexPolygonResolution          = field(SectionHexPolygons, "hexPolygonResolution", h3)
	HexPolygonMargin              = field(SectionHexPolygons, "hexPolygonMargin", nonNegative)
	HexPolygonUseDots             = field(SectionHexPolygons, "hexPolygonUseDots", flag)
	HexPolygonCurvatureResolution = field(SectionHexPolygons, "hexPolygonCurvatureResolution", positive)
	HexPolygonDotResolution       = field(SectionHexPolygons, "hexPolygonDotResolution", positive)
	HexPolygonLabel               = field(SectionHexPolygons, "hexPolygonLabel", text)
	HexPolygonsTransitionDuration = scalar(SectionHexPolygons, "hexPolygonsTransitionDuration", duration)
)

// Tiles layer.
var (
	TileLat                 = field(SectionTiles, "tileLat", lat)
	TileLng                 = field(SectionTiles, "tileLng", lng)
	TileAltitude            = field(SectionTiles, "tileAltitude", nonNegative)
	TileWidth               = field(SectionTiles, "tileWidth", positive)
	TileHeight              = field(SectionTiles, "tileHeight", positive)
	TileUseGlobeProjection  = field(SectionTiles, "tileUseGlobeProjection", flag)
	TileMaterial            = literal(SectionTiles, "tileMaterial", material)
	TileCurvatureResolution = field(SectionTiles, "tileCurvatureResolution", positive)
	TileLabel               = field(SectionTiles, "tileLabel", text)
	TilesTransitionDuration = scalar(SectionTiles, "tilesTransitionDuration", duration)
)

// Particles layer.
var (
	ParticlesList            = field(SectionParticles, "particlesList", objects)
	ParticleLat              = field(SectionParticles, "particleLat", lat)
	ParticleLng              = field(SectionParticles, "particleLng", lng)
	ParticleAltitude         = field(SectionParticles, "particleAltitude", nonNegative)
	ParticlesSize            = field(SectionParticles, "particlesSize", positive)
	ParticlesSizeAttenuation = field(SectionParticles, "particlesSizeAttenuation", flag)
	ParticlesColor           = literal(SectionParticles, "particlesColor", solid)
	ParticlesTexture         = nullable(literal(SectionParticles, "particlesTexture", url))
	ParticleLabel            = field(SectionParticles, "particleLabel", text)
)

// Rings layer.
var (
	RingLat              = field(SectionRings, "ringLat", lat)
	RingLng              = field(SectionRings, "ringLng", lng)
	RingAltitude         = field(SectionRings, "ringAltitude", nonNegative)
	RingColor            = literal(SectionRings, "ringColor", gradient)
	RingMaxRadius        = field(SectionRings, "ringMaxRadius", nonNegative)
	RingPropagationSpeed = field(SectionRings, "ringPropagationSpeed", finite)
	RingRepeatPeriod     = field(SectionRings, "ringRepeatPeriod", nonNegative)
	RingResolution       = scalar(SectionRings, "ringResolution", resolution)
)

// Labels layer.
var (
	LabelLat                 = field(SectionLabels, "labelLat", lat)
	LabelLng                 = field(SectionLabels, "labelLng", lng)
	LabelAltitude            = field(SectionLabels, "labelAltitude", nonNegative)
	LabelText                = field(SectionLabels, "labelText", text)
	LabelSize                = field(SectionLabels, "labelSize", nonNegative)
	LabelRotation            = field(SectionLabels, "labelRotation", finite)
	LabelColor               = literal(SectionLabels, "labelColor", solid)
	LabelIncludeDot          = field(SectionLabels, "labelIncludeDot", flag)
	LabelDotRadius           = field(SectionLabels, "labelDotRadius", nonNegative)
	LabelDotOrientation      = literal(SectionLabels, "labelDotOrientation", accessor.Enum(domain.DotRight, domain.DotTop, domain.DotBottom))
	LabelLabel               = field(SectionLabels, "labelLabel", text)
	LabelTypeFace            = scalar(SectionLabels, "labelTypeFace", object)
	LabelResolution          = scalar(SectionLabels, "labelResolution", resolution)
	LabelsTransitionDuration = scalar(SectionLabels, "labelsTransitionDuration", duration)
)

// View settings.
var (
	PointOfView             = scalar(SectionView, "pointOfView", pointOfView)
	TransitionMs            = scalar(SectionView, "transitionMs", duration)
	ControlsAutoRotate      = scalar(SectionView, "controlsAutoRotate", flag)
	ControlsAutoRotateSpeed = scalar(SectionView, "controlsAutoRotateSpeed", finite)
)
