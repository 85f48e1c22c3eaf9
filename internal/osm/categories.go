// Package osm retrieves energy-infrastructure features from OpenStreetMap
// via the Overpass API and prepares them as graph tables.
package osm

import (
	"fmt"
	"strings"
)

// Category is one energy feature class queried per country.
type Category struct {
	// Name keys the raw GeoJSON files, e.g. "power_plants".
	Name string
	// Filter is the Overpass tag filter appended to each element selector.
	Filter string
	// Label is the node label of the resulting table, e.g. "PowerPlant".
	Label string
	// Extras are the tag-derived columns beyond the base field set,
	// in output order.
	Extras []string
}

// Base columns present in every category table.
var baseColumns = []string{"osm_id", "latitude", "longitude", "country"}

var categories = []Category{
	{
		Name:   "power_plants",
		Filter: `["power"="plant"]`,
		Label:  "PowerPlant",
		Extras: []string{"name", "operator", "source", "method", "capacity"},
	},
	{
		Name:   "wind_turbines",
		Filter: `["power"="generator"]["generator:source"="wind"]`,
		Label:  "WindTurbine",
		Extras: []string{"operator", "manufacturer", "model", "source", "method", "capacity", "rotor_diameter"},
	},
	{
		Name:   "solar_farms",
		Filter: `["power"="generator"]["generator:source"="solar"]`,
		Label:  "SolarFarm",
		Extras: []string{"operator", "source", "method", "capacity"},
	},
	{
		Name:   "substations",
		Filter: `["power"="substation"]`,
		Label:  "Substation",
		Extras: nil,
	},
	{
		Name:   "transmission_lines",
		Filter: `["power"="line"]`,
		Label:  "TransmissionLine",
		Extras: []string{"name", "operator", "voltage", "circuits", "cables", "wires", "start_date"},
	},
	{
		Name:   "ev_charging_stations",
		Filter: `["amenity"="charging_station"]`,
		Label:  "ChargingStation",
		Extras: []string{"name", "operator", "capacity", "opening_hours", "phone", "website", "socket_types"},
	},
}

// Categories returns all energy feature categories.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)

	return out
}

// Columns returns the full ordered column set of the category's node table.
func (c Category) Columns() []string {
	return append(append([]string{}, baseColumns...), c.Extras...)
}

// NodesFilename returns the node CSV filename, e.g. "powerplants_nodes.csv".
func (c Category) NodesFilename() string {
	return strings.ToLower(c.Label) + "s_nodes.csv"
}

// RelationshipsFilename returns the LOCATED_IN CSV filename.
func (c Category) RelationshipsFilename() string {
	return strings.ToLower(c.Label) + "s_located_in_relationships.csv"
}

// GeoJSONFilename returns the raw file name for a country, matching the
// fetch stage's output, e.g. "czech_republic_substations.geojson".
func (c Category) GeoJSONFilename(country string) string {
	return strings.ReplaceAll(strings.ToLower(country), " ", "_") + "_" + c.Name + ".geojson"
}

// buildQuery assembles the Overpass query for one country/category pair.
// Ways and relations are reduced to their centroid by "out center".
func buildQuery(iso2, filter string) string {
	return fmt.Sprintf(`[out:json][timeout:300];
area["ISO3166-1"=%q][admin_level=2]->.searchArea;
(
  node(area.searchArea)%s;
  way(area.searchArea)%s;
  relation(area.searchArea)%s;
);
out center;`, iso2, filter, filter, filter)
}
