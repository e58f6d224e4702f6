package directions

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"googlemaps.github.io/maps"
)

// GoogleClient resolves walking routes with the Google Directions API.
type GoogleClient struct {
	client *maps.Client
}

// NewGoogleClient creates a client authenticated with apiKey. baseURL may be
// empty to use Google's endpoint.
func NewGoogleClient(apiKey, baseURL string) (*GoogleClient, error) {
	opts := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(baseURL))
	}
	c, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("maps client: %w", err)
	}
	return &GoogleClient{client: c}, nil
}

// Route fetches the first walking route. Distance and duration are summed over
// its legs; the geometry is the decoded overview polyline.
func (g *GoogleClient) Route(ctx context.Context, from, to orb.Point) (*Result, error) {
	req := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", from.Lat(), from.Lon()),
		Destination: fmt.Sprintf("%f,%f", to.Lat(), to.Lon()),
		Mode:        maps.TravelModeWalking,
	}
	routes, _, err := g.client.Directions(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	if len(routes) == 0 {
		return nil, ErrNoRoute
	}

	first := routes[0]
	latlngs, err := first.OverviewPolyline.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode route polyline: %w", err)
	}
	ls := make(orb.LineString, 0, len(latlngs))
	for _, ll := range latlngs {
		ls = append(ls, orb.Point{ll.Lng, ll.Lat})
	}

	var meters, seconds float64
	for _, leg := range first.Legs {
		meters += float64(leg.Distance.Meters)
		seconds += leg.Duration.Seconds()
	}
	return newResult(ls, meters, seconds), nil
}
