package osm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/kosmylo/geospatial-retrieval/internal/graph"
)

// Prepare reads the per-(country, category) GeoJSON files from geoDir and
// writes one combined node table per category, one LOCATED_IN relationship
// table per category, a country node table and the metadata descriptor into
// outputDir. Missing GeoJSON files are warned about and skipped.
func (p *Pipeline) Prepare(geoDir, outputDir string) error {
	desc := graph.NewDescriptor(
		"OpenStreetMap EU Energy Infrastructure",
		"OpenStreetMap via Overpass API",
		"ODbL (Open Database License)",
		"Energy-infrastructure features (plants, generators, substations, lines, charging stations) for EU countries, prepared for Neo4j graph import.",
	)

	var tables []*graph.Table

	for _, cat := range p.categories {
		nodes, rels := p.prepareCategory(geoDir, cat)

		dropped := nodes.DedupeByKey()
		if dropped > 0 {
			p.log.Info("duplicate osm ids dropped", "category", cat.Name, "dropped", dropped)
		}

		tables = append(tables, nodes, rels)
	}

	countryTable := graph.NewNodeTable(
		"countries_nodes", "countries_nodes.csv", "Country", "country_name",
		[]string{"country_name"},
	)

	for _, country := range p.countries {
		countryTable.Append(graph.Row{"country_name": country.Name})
	}

	countryTable.DedupeByKey()

	tables = append(tables, countryTable)

	return p.emitter.Emit(outputDir, desc, tables...)
}

// prepareCategory builds the node and relationship tables of one category
// across all requested countries.
func (p *Pipeline) prepareCategory(geoDir string, cat Category) (*graph.Table, *graph.Table) {
	nodes := graph.NewNodeTable(
		strings.ToLower(cat.Label)+"s_nodes", cat.NodesFilename(),
		cat.Label, "osm_id", cat.Columns(),
	)
	rels := graph.NewRelationshipTable(
		strings.ToLower(cat.Label)+"s_located_in", cat.RelationshipsFilename(),
		"LOCATED_IN", []string{"source_id", "target_country", "type"},
	)

	for _, country := range p.countries {
		path := filepath.Join(geoDir, cat.GeoJSONFilename(country.Name))

		data, err := os.ReadFile(path)
		if err != nil {
			p.log.Warn("geojson file missing, skipping", "file", path)

			continue
		}

		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			p.log.Warn("geojson file unreadable, skipping", "file", path, "error", err)

			continue
		}

		p.log.Info("processing geojson", "file", filepath.Base(path), "features", len(fc.Features))

		for _, f := range fc.Features {
			row, ok := featureRow(f, cat, country.Name)
			if !ok {
				continue
			}

			nodes.Append(row)
			rels.Append(graph.Row{
				"source_id":      row["osm_id"],
				"target_country": country.Name,
				"type":           "LOCATED_IN",
			})
		}
	}

	return nodes, rels
}

// featureRow maps one point feature to a table row for the category.
func featureRow(f *geojson.Feature, cat Category, country string) (graph.Row, bool) {
	point, ok := f.Geometry.(orb.Point)
	if !ok {
		return nil, false
	}

	props := f.Properties

	row := graph.Row{
		"osm_id":    propString(props, "osm_id"),
		"latitude":  strconv.FormatFloat(point.Lat(), 'f', -1, 64),
		"longitude": strconv.FormatFloat(point.Lon(), 'f', -1, 64),
		"country":   country,
	}

	if row["osm_id"] == "" {
		return nil, false
	}

	switch cat.Label {
	case "ChargingStation":
		row["name"] = propString(props, "name")
		row["operator"] = propString(props, "operator")
		row["capacity"] = propString(props, "capacity")
		row["opening_hours"] = propString(props, "opening_hours")
		row["phone"] = propString(props, "phone")
		row["website"] = propString(props, "website")
		row["socket_types"] = socketTypes(props)
	case "PowerPlant":
		row["name"] = propString(props, "name")
		row["operator"] = propString(props, "operator")
		row["source"] = propString(props, "plant:source")
		row["method"] = propString(props, "plant:method")
		row["capacity"] = propString(props, "plant:output:electricity")
	case "SolarFarm":
		row["operator"] = propString(props, "operator")
		row["source"] = propString(props, "generator:source")
		row["method"] = propString(props, "generator:method")
		row["capacity"] = propString(props, "generator:output:electricity")
	case "WindTurbine":
		row["operator"] = propString(props, "operator")
		row["manufacturer"] = propString(props, "manufacturer")
		row["model"] = propString(props, "model")
		row["source"] = propString(props, "generator:source")
		row["method"] = propString(props, "generator:method")
		row["capacity"] = propString(props, "generator:output:electricity")
		row["rotor_diameter"] = propString(props, "rotor:diameter")
	case "TransmissionLine":
		row["name"] = propString(props, "name")
		row["operator"] = propString(props, "operator")
		row["voltage"] = propString(props, "voltage")
		row["circuits"] = propString(props, "circuits")
		row["cables"] = propString(props, "cables")
		row["wires"] = propString(props, "wires")
		row["start_date"] = propString(props, "start_date")
	}

	return row, true
}

// socketTypes joins the keys of all "socket:" tags with ";".
func socketTypes(props geojson.Properties) string {
	var keys []string

	for k := range props {
		if strings.HasPrefix(k, "socket:") {
			keys = append(keys, k)
		}
	}

	// Map iteration order is random; fix the output.
	sort.Strings(keys)

	return strings.Join(keys, ";")
}

// propString renders a property value as a string. Numeric values come back
// from JSON as float64; osm ids must not be printed in exponent form.
func propString(props geojson.Properties, key string) string {
	switch v := props[key].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}

		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
