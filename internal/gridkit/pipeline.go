// Package gridkit retrieves the GridKit European high-voltage transmission
// grid and prepares it as graph tables.
package gridkit

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kosmylo/geospatial-retrieval/internal/fetch"
	"github.com/kosmylo/geospatial-retrieval/internal/geocode"
	"github.com/kosmylo/geospatial-retrieval/internal/graph"
	"github.com/kosmylo/geospatial-retrieval/internal/logger"
	"github.com/kosmylo/geospatial-retrieval/internal/tabular"
)

// DataURL is the GridKit archive location on Zenodo.
const DataURL = "https://zenodo.org/records/47317/files/gridkit_euorpe.zip?download=1"

const (
	archiveName  = "gridkit_data.zip"
	verticesName = "gridkit_europe-highvoltage-vertices.csv"
	linksName    = "gridkit_europe-highvoltage-links.csv"
)

// Pipeline retrieves and prepares the GridKit transmission grid.
type Pipeline struct {
	client  *fetch.Client
	geo     geocode.Resolver
	emitter *graph.Emitter
	log     *logger.Logger
	dataURL string
}

// New creates the GridKit pipeline.
func New(client *fetch.Client, geo geocode.Resolver, log *logger.Logger) *Pipeline {
	return &Pipeline{
		client:  client,
		geo:     geo,
		emitter: graph.NewEmitter(log),
		log:     log,
		dataURL: DataURL,
	}
}

// NewWithURL creates the GridKit pipeline against a custom archive URL.
// Used by tests.
func NewWithURL(client *fetch.Client, geo geocode.Resolver, log *logger.Logger, dataURL string) *Pipeline {
	p := New(client, geo, log)
	p.dataURL = dataURL

	return p
}

// Name returns the dataset name.
func (p *Pipeline) Name() string {
	return "gridkit"
}

// RetrieveAndPrepare downloads the archive, extracts the vertex and link
// CSVs, normalizes them and emits the graph tables. The staging area is
// removed on every exit path.
func (p *Pipeline) RetrieveAndPrepare(ctx context.Context, outputDir string) error {
	staging, err := fetch.NewStaging(outputDir, p.log)
	if err != nil {
		return err
	}
	defer staging.Remove()

	zipPath := staging.Path(archiveName)

	p.log.Info("downloading gridkit archive", "url", p.dataURL)

	if err := p.client.DownloadFile(ctx, p.dataURL, zipPath); err != nil {
		return fmt.Errorf("gridkit download failed: %w", err)
	}

	extractDir := staging.Path("extracted")
	if err := fetch.Unzip(zipPath, extractDir); err != nil {
		return fmt.Errorf("gridkit extraction failed: %w", err)
	}

	nodes, err := p.prepareVertices(staging.Path("extracted", verticesName))
	if err != nil {
		return err
	}

	rels, err := p.prepareLinks(staging.Path("extracted", linksName))
	if err != nil {
		return err
	}

	desc := graph.NewDescriptor(
		"GridKit European Transmission Grid",
		DataURL,
		"ODbL",
		"European high-voltage electricity transmission grid data including substations (nodes) and transmission lines (edges).",
	)

	return p.emitter.Emit(outputDir, desc, nodes, rels)
}

// prepareVertices renames the raw vertex columns, classifies each vertex
// into a node label, sanitizes names and resolves countries.
func (p *Pipeline) prepareVertices(path string) (*graph.Table, error) {
	file, err := tabular.Read(path, tabular.Options{})
	if err != nil {
		return nil, err
	}

	if err := file.RequireColumns([]string{"v_id", "lon", "lat", "typ"}); err != nil {
		return nil, fmt.Errorf("gridkit vertices: %w", err)
	}

	nodes := graph.NewNodeTable(
		"nodes", "grid_nodes.csv", "Substation", "id",
		[]string{"id", "longitude", "latitude", "type", "frequency", "voltage", "operator", "name", "label", "country"},
	)

	geocodeFailures := 0

	for _, row := range file.Rows {
		nodes.Append(graph.Row{
			"id":        row["v_id"],
			"longitude": row["lon"],
			"latitude":  row["lat"],
			"type":      row["typ"],
			"frequency": row["frequency"],
			"voltage":   row["voltage"],
			"operator":  row["operator"],
			"name":      SanitizeName(row["name"]),
			"label":     ClassifyVertex(row["typ"]),
			"country":   p.resolveCountry(row["lat"], row["lon"], &geocodeFailures),
		})
	}

	if geocodeFailures > 0 {
		p.log.Warn("country lookups failed for some vertices", "count", geocodeFailures)
	}

	nodes.DedupeByKey()

	return nodes, nil
}

// prepareLinks renames the raw edge columns into the relationship table.
func (p *Pipeline) prepareLinks(path string) (*graph.Table, error) {
	file, err := tabular.Read(path, tabular.Options{})
	if err != nil {
		return nil, err
	}

	if err := file.RequireColumns([]string{"v_id_1", "v_id_2"}); err != nil {
		return nil, fmt.Errorf("gridkit links: %w", err)
	}

	rels := graph.NewRelationshipTable(
		"relationships", "connected_to_relationships.csv", "CONNECTED_TO",
		[]string{"source", "target", "cables", "voltage", "wires", "type"},
	)

	for _, row := range file.Rows {
		rels.Append(graph.Row{
			"source":  row["v_id_1"],
			"target":  row["v_id_2"],
			"cables":  row["cables"],
			"voltage": row["voltage"],
			"wires":   row["wires"],
			"type":    "CONNECTED_TO",
		})
	}

	return rels, nil
}

// resolveCountry reverse-geocodes a vertex. Failures are counted and yield
// the Unknown marker, never an error.
func (p *Pipeline) resolveCountry(lat, lon string, failures *int) string {
	latF, errLat := strconv.ParseFloat(lat, 64)
	lonF, errLon := strconv.ParseFloat(lon, 64)

	if errLat != nil || errLon != nil {
		*failures++

		return geocode.UnknownCountry
	}

	country, err := p.geo.Country(latF, lonF)
	if err != nil || country == "" {
		p.log.Debug("reverse geocode failed", "lat", lat, "lon", lon, "error", err)

		*failures++

		return geocode.UnknownCountry
	}

	return country
}
