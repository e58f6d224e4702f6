package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	DefaultMapboxURL = "https://api.mapbox.com"
	DefaultOSRMURL   = "https://router.project-osrm.org"
)

// Flavor selects the URL layout of an OSRM-compatible service.
type Flavor int

const (
	FlavorMapbox Flavor = iota
	FlavorOSRM
)

// MapboxClient queries the Mapbox Directions API, or any OSRM server, for a
// walking route with full GeoJSON geometry.
type MapboxClient struct {
	BaseURL     string
	AccessToken string
	Flavor      Flavor
	HTTPClient  *http.Client
}

// NewMapboxClient returns a client for the Mapbox walking profile.
func NewMapboxClient(baseURL, token string) *MapboxClient {
	if baseURL == "" {
		baseURL = DefaultMapboxURL
	}
	return &MapboxClient{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		AccessToken: token,
		Flavor:      FlavorMapbox,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// NewOSRMClient returns a client for an OSRM server's foot profile.
func NewOSRMClient(baseURL string) *MapboxClient {
	if baseURL == "" {
		baseURL = DefaultOSRMURL
	}
	return &MapboxClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Flavor:     FlavorOSRM,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry json.RawMessage `json:"geometry"`
		Distance float64         `json:"distance"` // meters
		Duration float64         `json:"duration"` // seconds
	} `json:"routes"`
}

// RequestURL builds the directions request for two points.
func (c *MapboxClient) RequestURL(from, to orb.Point) string {
	coords := fmt.Sprintf("%f,%f;%f,%f", from.Lon(), from.Lat(), to.Lon(), to.Lat())
	q := url.Values{}
	q.Set("geometries", "geojson")
	q.Set("overview", "full")

	var path string
	switch c.Flavor {
	case FlavorOSRM:
		path = "/route/v1/foot/" + coords
	default:
		path = "/directions/v5/mapbox/walking/" + coords
		q.Set("access_token", c.AccessToken)
	}
	return c.BaseURL + path + "?" + q.Encode()
}

// Route fetches the first walking route between from and to. There is no retry.
func (c *MapboxClient) Route(ctx context.Context, from, to orb.Point) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RequestURL(from, to), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var obj osrmResponse
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("failed to decode directions response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := obj.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("directions status %d: %s", resp.StatusCode, msg)
	}
	if len(obj.Routes) == 0 {
		return nil, ErrNoRoute
	}

	first := obj.Routes[0]
	g, err := geojson.UnmarshalGeometry(first.Geometry)
	if err != nil {
		return nil, fmt.Errorf("failed to decode route geometry: %w", err)
	}
	ls, ok := g.Geometry().(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("unexpected route geometry %s", g.Type)
	}
	return newResult(ls, first.Distance, first.Duration), nil
}
