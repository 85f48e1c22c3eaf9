// Package geocode resolves coordinates to country names for grid vertices.
package geocode

import (
	"fmt"

	"github.com/sams96/rgeo"
	"github.com/twpayne/go-geom"
)

// UnknownCountry is the placeholder used when a lookup fails.
const UnknownCountry = "Unknown"

// Resolver maps a coordinate to a country name.
type Resolver interface {
	Country(lat, lon float64) (string, error)
}

// offlineResolver answers lookups from an embedded country-boundary
// dataset, so the GridKit pipeline makes no per-vertex network calls.
type offlineResolver struct {
	r *rgeo.Rgeo
}

// NewResolver creates an offline resolver. The boundary dataset is decoded
// once up front; construction is the expensive step.
func NewResolver() (Resolver, error) {
	r, err := rgeo.New(rgeo.Countries110)
	if err != nil {
		return nil, fmt.Errorf("failed to load country boundaries: %w", err)
	}

	return &offlineResolver{r: r}, nil
}

// Country returns the country name containing the coordinate.
func (o *offlineResolver) Country(lat, lon float64) (string, error) {
	loc, err := o.r.ReverseGeocode(geom.Coord{lon, lat})
	if err != nil {
		return "", fmt.Errorf("reverse geocode failed for (%f, %f): %w", lat, lon, err)
	}

	return loc.Country, nil
}
