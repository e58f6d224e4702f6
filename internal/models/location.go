package models

import "github.com/paulmach/orb"

// LatLng represents a geographical location with latitude and longitude coordinates.
type LatLng struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// LatLngFromPoint converts an orb point (lng, lat order) into a LatLng.
func LatLngFromPoint(p orb.Point) LatLng {
	return LatLng{Lat: p.Lat(), Lng: p.Lon()}
}

// Point returns the location as an orb point.
func (l LatLng) Point() orb.Point {
	return orb.Point{l.Lng, l.Lat}
}
