package osm

import (
	"context"
	"path/filepath"

	"github.com/kosmylo/geospatial-retrieval/internal/countries"
	"github.com/kosmylo/geospatial-retrieval/internal/fetch"
	"github.com/kosmylo/geospatial-retrieval/internal/graph"
	"github.com/kosmylo/geospatial-retrieval/internal/logger"
)

// DefaultOverpassURL is the public Overpass API endpoint.
const DefaultOverpassURL = "http://overpass-api.de/api/interpreter"

// GeoJSONDirName is the subdirectory holding the raw per-pair GeoJSON files.
const GeoJSONDirName = "geojson"

// Pipeline retrieves OSM energy features per EU country and prepares the
// combined node/relationship tables.
type Pipeline struct {
	client      *fetch.Client
	emitter     *graph.Emitter
	log         *logger.Logger
	overpassURL string
	countries   []countries.Country
	categories  []Category
}

// New creates the OSM pipeline over all EU countries and categories.
func New(client *fetch.Client, log *logger.Logger) *Pipeline {
	return &Pipeline{
		client:      client,
		emitter:     graph.NewEmitter(log),
		log:         log,
		overpassURL: DefaultOverpassURL,
		countries:   countries.All(),
		categories:  Categories(),
	}
}

// NewWithOptions creates the OSM pipeline against a custom endpoint and
// country subset. Used by tests.
func NewWithOptions(client *fetch.Client, log *logger.Logger, overpassURL string, ctries []countries.Country) *Pipeline {
	p := New(client, log)
	p.overpassURL = overpassURL
	p.countries = ctries

	return p
}

// Name returns the dataset name.
func (p *Pipeline) Name() string {
	return "osm"
}

// RetrieveAndPrepare fetches raw GeoJSON for every (country, category) pair
// and normalizes it into graph tables. The raw GeoJSON files are part of
// the output contract and are kept under outputDir/geojson.
func (p *Pipeline) RetrieveAndPrepare(ctx context.Context, outputDir string) error {
	geoDir := filepath.Join(outputDir, GeoJSONDirName)

	fetched, err := p.FetchRaw(ctx, geoDir)
	if err != nil {
		return err
	}

	p.log.Info("overpass fetch stage complete",
		"pairs_fetched", fetched,
		"pairs_total", len(p.countries)*len(p.categories))

	return p.Prepare(geoDir, outputDir)
}
