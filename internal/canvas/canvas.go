// Package canvas holds the route planning map state: up to two placed points,
// the walking path between them and its distance and duration.
package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/walkroutes/internal/directions"
	"github.com/ukydev/walkroutes/internal/models"
)

// State is the canvas position in the click sequence.
type State int

const (
	StateEmpty State = iota
	StateOnePoint
	StateTwoPoints
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateOnePoint:
		return "one-point-placed"
	case StateTwoPoints:
		return "two-points-placed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarkerColor distinguishes the start and end markers.
type MarkerColor string

const (
	StartMarker MarkerColor = "green"
	EndMarker   MarkerColor = "red"
)

// LoadZoom is the zoom level used when recentering on a loaded route.
const LoadZoom = 13

const (
	msgNeedPoints      = "Place both start and end markers before saving!"
	msgMissingGeometry = "Route geometry is missing."
	msgNamePrompt      = "Enter a name for this route:"
	msgSaved           = "Route saved successfully!"
	msgSaveFailed      = "Failed to save route."
)

var (
	ErrTooFewPoints    = errors.New("two points are required")
	ErrMissingGeometry = errors.New("route geometry is missing")
	ErrCancelled       = errors.New("cancelled")
	ErrNotReplayable   = errors.New("route has no geometry or endpoints")
)

// Info is the displayed route summary.
type Info struct {
	Distance float64 // kilometers
	Duration float64 // minutes
}

func (i Info) String() string {
	return fmt.Sprintf("Distance: %s km | Duration: %s min",
		directions.FormatDistance(i.Distance), directions.FormatDuration(i.Duration))
}

// Renderer draws canvas state.
type Renderer interface {
	AddMarker(color MarkerColor, p orb.Point)
	ClearMarkers()
	DrawPath(g orb.Geometry)
	ClearPath()
	ShowInfo(info *Info)
	FlyTo(center orb.Point, zoom float64)
}

// Dialog provides blocking user interaction.
type Dialog interface {
	Alert(msg string)
	// Prompt returns false when the user cancels.
	Prompt(msg, def string) (string, bool)
	Confirm(msg string) bool
}

// RouteCreator persists a route.
type RouteCreator interface {
	CreateRoute(ctx context.Context, in models.RouteInput) (*models.Route, error)
}

// Canvas owns the point, path and info state. It is not safe for concurrent use.
type Canvas struct {
	renderer   Renderer
	dialog     Dialog
	directions directions.Client
	routes     RouteCreator
	now        func() time.Time

	points   []orb.Point
	geometry interface{} // saved as-is
	path     orb.Geometry
	info     *Info
}

// New creates an empty canvas.
func New(r Renderer, d Dialog, dir directions.Client, routes RouteCreator) *Canvas {
	return &Canvas{
		renderer:   r,
		dialog:     d,
		directions: dir,
		routes:     routes,
		now:        time.Now,
	}
}

// State reports how many points have been placed.
func (c *Canvas) State() State {
	switch len(c.points) {
	case 0:
		return StateEmpty
	case 1:
		return StateOnePoint
	default:
		return StateTwoPoints
	}
}

// Points returns a copy of the placed points.
func (c *Canvas) Points() []orb.Point {
	return append([]orb.Point(nil), c.points...)
}

// Path returns the drawn route geometry, nil when none could be drawn.
func (c *Canvas) Path() orb.Geometry { return c.path }

// Geometry returns the route geometry that Save would send.
func (c *Canvas) Geometry() interface{} { return c.geometry }

// Info returns the route summary, nil when none.
func (c *Canvas) Info() *Info { return c.info }

// Routed reports whether the canvas holds a route geometry.
func (c *Canvas) Routed() bool { return c.geometry != nil }

// Click places a marker at p. Clicks after the second point are ignored until
// Reset. Placing the second point fetches directions; a failed fetch is logged
// and leaves the canvas without a path.
func (c *Canvas) Click(ctx context.Context, p orb.Point) bool {
	if len(c.points) >= 2 {
		return false
	}

	color := StartMarker
	if len(c.points) == 1 {
		color = EndMarker
	}
	c.renderer.AddMarker(color, p)
	c.points = append(c.points, p)

	if len(c.points) == 2 {
		c.route(ctx)
	}
	return true
}

func (c *Canvas) route(ctx context.Context) {
	start, end := c.points[0], c.points[1]
	res, err := c.directions.Route(ctx, start, end)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"start": start,
			"end":   end,
		}).Error("Failed to fetch directions")
		return
	}
	geometry, err := encodeGeometry(res.Geometry)
	if err != nil {
		log.WithError(err).Error("Failed to encode route geometry")
		return
	}
	c.geometry = geometry
	c.path = res.Geometry
	c.renderer.DrawPath(res.Geometry)
	c.info = &Info{Distance: res.Distance, Duration: res.Duration}
	c.renderer.ShowInfo(c.info)
}

// Reset clears markers, points, path and info.
func (c *Canvas) Reset() {
	c.renderer.ClearMarkers()
	c.points = nil
	c.info = nil
	c.renderer.ShowInfo(nil)
	c.geometry = nil
	c.path = nil
	c.renderer.ClearPath()
}

// DefaultName is the name offered when saving at t.
func DefaultName(t time.Time) string {
	return "Route " + t.Format("1/2/2006, 3:04:05 PM")
}

// Save asks for a name and persists the current route. Missing points or
// geometry are reported with an alert and never reach the network.
func (c *Canvas) Save(ctx context.Context) (*models.Route, error) {
	if len(c.points) != 2 {
		c.dialog.Alert(msgNeedPoints)
		return nil, ErrTooFewPoints
	}
	if c.geometry == nil {
		c.dialog.Alert(msgMissingGeometry)
		return nil, ErrMissingGeometry
	}

	def := DefaultName(c.now())
	name, ok := c.dialog.Prompt(msgNamePrompt, def)
	if !ok {
		return nil, ErrCancelled
	}
	if name == "" {
		name = def
	}

	start := models.LatLngFromPoint(c.points[0])
	end := models.LatLngFromPoint(c.points[1])
	in := models.RouteInput{
		Name:     name,
		Geometry: c.geometry,
		Start:    &start,
		End:      &end,
	}
	if c.info != nil {
		in.Distance = c.info.Distance
		in.Duration = c.info.Duration
	}

	saved, err := c.routes.CreateRoute(ctx, in)
	if err != nil {
		log.WithError(err).Error("Error saving route")
		c.dialog.Alert(msgSaveFailed)
		return nil, err
	}
	c.dialog.Alert(msgSaved)
	return saved, nil
}

// Load replaces the canvas with a stored route without asking for directions
// and recenters on its start point. The stored geometry is kept verbatim; when
// it cannot be drawn the markers and info are still shown.
func (c *Canvas) Load(route models.Route) error {
	if !route.Replayable() {
		return ErrNotReplayable
	}

	c.Reset()

	start, end := route.Start.Point(), route.End.Point()
	c.renderer.AddMarker(StartMarker, start)
	c.renderer.AddMarker(EndMarker, end)
	c.points = []orb.Point{start, end}

	c.geometry = route.Geometry
	if path, err := decodeGeometry(route.Geometry); err != nil {
		log.WithError(err).WithField("route_id", route.ID.Hex()).Warn("Stored route geometry cannot be drawn")
	} else {
		c.path = path
		c.renderer.DrawPath(path)
	}

	c.info = &Info{Distance: route.Distance, Duration: route.Duration}
	c.renderer.ShowInfo(c.info)

	c.renderer.FlyTo(start, LoadZoom)
	return nil
}

// encodeGeometry renders g as the GeoJSON object the route API stores.
func encodeGeometry(g orb.Geometry) (interface{}, error) {
	data, err := json.Marshal(geojson.NewGeometry(g))
	if err != nil {
		return nil, fmt.Errorf("failed to encode geometry: %w", err)
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeGeometry(v interface{}) (orb.Geometry, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode geometry: %w", err)
	}
	if g.Geometry() == nil {
		return nil, ErrMissingGeometry
	}
	return g.Geometry(), nil
}
