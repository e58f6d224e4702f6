// Package directions fetches walking routes between two points from an
// external directions service.
package directions

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// ErrNoRoute is returned when the service answers without any route.
var ErrNoRoute = errors.New("no route")

// Client resolves a walking path between two points.
type Client interface {
	Route(ctx context.Context, from, to orb.Point) (*Result, error)
}

// Result is the first route returned by the service, normalized for display.
type Result struct {
	Geometry orb.LineString
	Distance float64 // kilometers, two decimals
	Duration float64 // whole minutes, rounded up
}

// KilometersFromMeters converts meters to kilometers rounded to two decimals.
func KilometersFromMeters(m float64) float64 {
	return math.Round(m/10) / 100
}

// MinutesFromSeconds converts seconds to minutes, rounding up.
func MinutesFromSeconds(s float64) float64 {
	return math.Ceil(s / 60)
}

// FormatDistance renders a kilometer distance the way it is displayed.
func FormatDistance(km float64) string {
	return fmt.Sprintf("%.2f", km)
}

// FormatDuration renders a minute duration the way it is displayed.
func FormatDuration(min float64) string {
	return fmt.Sprintf("%.0f", min)
}

func newResult(geometry orb.LineString, meters, seconds float64) *Result {
	return &Result{
		Geometry: geometry,
		Distance: KilometersFromMeters(meters),
		Duration: MinutesFromSeconds(seconds),
	}
}
