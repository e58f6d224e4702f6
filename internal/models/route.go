package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidNumber is returned when a numeric field cannot be read as a number.
var ErrInvalidNumber = errors.New("cast to number failed")

// Route is a saved two-point walking route.
type Route struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Geometry  interface{}        `bson:"geometry,omitempty" json:"geometry,omitempty"` // usually a GeoJSON LineString, stored as sent
	Start     *LatLng            `bson:"start,omitempty" json:"start,omitempty"`
	End       *LatLng            `bson:"end,omitempty" json:"end,omitempty"`
	Distance  float64            `bson:"distance" json:"distance"` // in kilometers
	Duration  float64            `bson:"duration" json:"duration"` // in minutes
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// RouteInput is the payload accepted when creating a route. Identifier and
// creation time are always assigned by the server.
type RouteInput struct {
	Name     string      `json:"name"`
	Geometry interface{} `json:"geometry,omitempty"`
	Start    *LatLng     `json:"start,omitempty"`
	End      *LatLng     `json:"end,omitempty"`
	Distance float64     `json:"distance"`
	Duration float64     `json:"duration"`
}

// RoutePayload is a create request as clients send it. Browser clients send
// distance and duration as formatted strings such as "1.50".
type RoutePayload struct {
	Name     string      `json:"name"`
	Geometry interface{} `json:"geometry,omitempty"`
	Start    *LatLng     `json:"start,omitempty"`
	End      *LatLng     `json:"end,omitempty"`
	Distance interface{} `json:"distance"`
	Duration interface{} `json:"duration"`
}

// Input converts the payload, casting numeric fields. Absent numbers are zero.
func (p RoutePayload) Input() (RouteInput, error) {
	distance, err := castNumber("distance", p.Distance)
	if err != nil {
		return RouteInput{}, err
	}
	duration, err := castNumber("duration", p.Duration)
	if err != nil {
		return RouteInput{}, err
	}
	return RouteInput{
		Name:     p.Name,
		Geometry: p.Geometry,
		Start:    p.Start,
		End:      p.End,
		Distance: distance,
		Duration: duration,
	}, nil
}

func castNumber(field string, v interface{}) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w for %s: %q", ErrInvalidNumber, field, n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w for %s: %v", ErrInvalidNumber, field, v)
	}
}

// NewRoute builds a storable route from a create payload.
func NewRoute(in RouteInput, now time.Time) Route {
	return Route{
		ID:        primitive.NewObjectID(),
		Name:      in.Name,
		Geometry:  in.Geometry,
		Start:     in.Start,
		End:       in.End,
		Distance:  in.Distance,
		Duration:  in.Duration,
		CreatedAt: now.UTC().Truncate(time.Millisecond),
	}
}

// Input returns the create payload that reproduces r.
func (r Route) Input() RouteInput {
	return RouteInput{
		Name:     r.Name,
		Geometry: r.Geometry,
		Start:    r.Start,
		End:      r.End,
		Distance: r.Distance,
		Duration: r.Duration,
	}
}

// Replayable reports whether the route carries enough to be redrawn without
// asking the directions service again.
func (r Route) Replayable() bool {
	if r.Start == nil || r.End == nil {
		return false
	}
	switch g := r.Geometry.(type) {
	case nil:
		return false
	case string:
		return g != ""
	default:
		return true
	}
}
