package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestNewRoute_AssignsIdentityAndTimestamp(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.FixedZone("EAT", 3*3600))
	in := RouteInput{
		Name:     "Morning walk",
		Geometry: bson.M{"type": "LineString"},
		Start:    &LatLng{Lat: -1.29, Lng: 36.82},
		End:      &LatLng{Lat: -1.30, Lng: 36.80},
		Distance: 1.5,
		Duration: 3,
	}

	r := NewRoute(in, now)
	assert.False(t, r.ID.IsZero())
	assert.Equal(t, time.UTC, r.CreatedAt.Location())
	assert.Equal(t, 123*time.Millisecond, time.Duration(r.CreatedAt.Nanosecond()))
	assert.Equal(t, in, r.Input())
}

func TestRoute_IgnoresClientCreatedAt(t *testing.T) {
	body := []byte(`{"name":"x","createdAt":"2001-01-01T00:00:00Z","distance":2}`)
	var p RoutePayload
	require.NoError(t, json.Unmarshal(body, &p))
	in, err := p.Input()
	require.NoError(t, err)

	r := NewRoute(in, time.Now())
	assert.NotEqual(t, 2001, r.CreatedAt.Year())
	assert.Equal(t, 2.0, r.Distance)
}

func TestRoutePayload_Input(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		distance float64
		duration float64
		wantErr  bool
	}{
		{"numbers", `{"distance":1.5,"duration":3}`, 1.5, 3, false},
		{"numeric strings", `{"distance":"1.50","duration":" 3 "}`, 1.5, 3, false},
		{"absent", `{}`, 0, 0, false},
		{"null and empty", `{"distance":null,"duration":""}`, 0, 0, false},
		{"booleans", `{"distance":true,"duration":false}`, 1, 0, false},
		{"not a number", `{"distance":"oops"}`, 0, 0, true},
		{"NaN", `{"duration":"NaN"}`, 0, 0, true},
		{"object", `{"distance":{"km":1}}`, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p RoutePayload
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))
			in, err := p.Input()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidNumber)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.distance, in.Distance)
			assert.Equal(t, tt.duration, in.Duration)
		})
	}
}

func TestRoutePayload_GeometryPassesThrough(t *testing.T) {
	for _, body := range []string{
		`{"geometry":[[36.8,-1.2],[36.7,-1.3]]}`,
		`{"geometry":"garbage"}`,
		`{"geometry":{"type":"LineString","coordinates":[[36.8219,-1.2921,1650]],"bbox":[1,2,3,4]}}`,
	} {
		var p RoutePayload
		require.NoError(t, json.Unmarshal([]byte(body), &p), body)
		in, err := p.Input()
		require.NoError(t, err)

		out, err := json.Marshal(struct {
			Geometry interface{} `json:"geometry"`
		}{in.Geometry})
		require.NoError(t, err)
		assert.JSONEq(t, body, string(out))
	}
}

func TestRoute_Replayable(t *testing.T) {
	tests := []struct {
		name  string
		route Route
		want  bool
	}{
		{"complete", Route{Geometry: bson.M{"type": "LineString"}, Start: &LatLng{}, End: &LatLng{}}, true},
		{"non-object geometry", Route{Geometry: []interface{}{1.0}, Start: &LatLng{}, End: &LatLng{}}, true},
		{"empty string geometry", Route{Geometry: "", Start: &LatLng{}, End: &LatLng{}}, false},
		{"missing geometry", Route{Start: &LatLng{}, End: &LatLng{}}, false},
		{"missing start", Route{Geometry: bson.M{"type": "LineString"}, End: &LatLng{}}, false},
		{"missing end", Route{Geometry: bson.M{"type": "LineString"}, Start: &LatLng{}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.route.Replayable())
		})
	}
}

func TestRoute_JSONUsesStoreID(t *testing.T) {
	r := NewRoute(RouteInput{Name: "a"}, time.Now())
	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, r.ID.Hex(), raw["_id"])
	assert.Contains(t, raw, "createdAt")
}

func TestLatLng_PointOrder(t *testing.T) {
	l := LatLngFromPoint(orb.Point{36.82, -1.29})
	assert.Equal(t, -1.29, l.Lat)
	assert.Equal(t, 36.82, l.Lng)
	assert.Equal(t, orb.Point{36.82, -1.29}, l.Point())
}
