// Package powerplants retrieves the Global Power Plant Database and
// prepares its EU extract as graph tables.
package powerplants

import (
	"context"
	"fmt"

	"github.com/kosmylo/geospatial-retrieval/internal/countries"
	"github.com/kosmylo/geospatial-retrieval/internal/fetch"
	"github.com/kosmylo/geospatial-retrieval/internal/graph"
	"github.com/kosmylo/geospatial-retrieval/internal/logger"
	"github.com/kosmylo/geospatial-retrieval/internal/tabular"
)

// DataURL is the Global Power Plant Database archive location.
const DataURL = "https://datasets.wri.org/private-admin/dataset/53623dfd-3df6-4f15-a091-67457cdb571f/resource/66bcdacc-3d0e-46ad-9271-a5a76b1853d2/download/globalpowerplantdatabasev130.zip"

// SourcePage is the dataset's landing page, recorded in the descriptor.
const SourcePage = "https://datasets.wri.org/dataset/globalpowerplantdatabase"

const (
	archiveName = "global_power_plants.zip"
	csvName     = "global_power_plant_database.csv"
)

var requiredColumns = []string{
	"country", "name", "capacity_mw", "primary_fuel",
	"latitude", "longitude", "owner", "commissioning_year", "source",
}

// Pipeline retrieves and prepares the EU power plant extract.
type Pipeline struct {
	client  *fetch.Client
	emitter *graph.Emitter
	log     *logger.Logger
	dataURL string
}

// New creates the power plants pipeline.
func New(client *fetch.Client, log *logger.Logger) *Pipeline {
	return &Pipeline{
		client:  client,
		emitter: graph.NewEmitter(log),
		log:     log,
		dataURL: DataURL,
	}
}

// NewWithURL creates the pipeline against a custom archive URL. Used by tests.
func NewWithURL(client *fetch.Client, log *logger.Logger, dataURL string) *Pipeline {
	p := New(client, log)
	p.dataURL = dataURL

	return p
}

// Name returns the dataset name.
func (p *Pipeline) Name() string {
	return "powerplants"
}

// RetrieveAndPrepare downloads the global archive, extracts the bulk CSV,
// filters it to EU countries and emits the node and relationship tables.
func (p *Pipeline) RetrieveAndPrepare(ctx context.Context, outputDir string) error {
	staging, err := fetch.NewStaging(outputDir, p.log)
	if err != nil {
		return err
	}
	defer staging.Remove()

	zipPath := staging.Path(archiveName)

	p.log.Info("downloading global power plant database", "url", p.dataURL)

	if err := p.client.DownloadFile(ctx, p.dataURL, zipPath); err != nil {
		return fmt.Errorf("power plant download failed: %w", err)
	}

	extractDir := staging.Path("extracted")
	if err := fetch.Unzip(zipPath, extractDir); err != nil {
		return fmt.Errorf("power plant extraction failed: %w", err)
	}

	tables, err := p.prepare(staging.Path("extracted", csvName))
	if err != nil {
		return err
	}

	desc := graph.NewDescriptor(
		"Global Power Plant Database (EU Extract)",
		SourcePage,
		"CC BY 4.0",
		"Nodes and relationships for power plants in EU countries for Neo4j graph import.",
	)
	desc.Nodes = map[string]map[string]string{
		"PowerPlant": {
			"plant_name":         "Name of the power plant",
			"capacity_mw":        "Installed capacity in megawatts",
			"latitude":           "Latitude coordinate",
			"longitude":          "Longitude coordinate",
			"commissioning_year": "Year the plant was commissioned",
			"source":             "Data source or reference",
		},
		"Country": {
			"country_iso": "ISO3 country code",
		},
		"Owner": {
			"name": "Owner/operator name",
		},
		"FuelType": {
			"type": "Type of primary fuel",
		},
	}
	desc.Relationships = map[string][]string{
		"LOCATED_IN": {"PowerPlant", "Country"},
		"OWNED_BY":   {"PowerPlant", "Owner"},
		"USES_FUEL":  {"PowerPlant", "FuelType"},
	}

	return p.emitter.Emit(outputDir, desc, tables...)
}

// prepare filters the bulk CSV to EU rows and projects the node and
// relationship tables out of it.
func (p *Pipeline) prepare(path string) ([]*graph.Table, error) {
	file, err := tabular.Read(path, tabular.Options{SkipBadRows: true})
	if err != nil {
		return nil, err
	}

	if err := file.RequireColumns(requiredColumns); err != nil {
		return nil, fmt.Errorf("power plant csv: %w", err)
	}

	euISO3 := countries.ISO3Set()

	plants := graph.NewNodeTable(
		"powerplants_nodes", "powerplants_nodes.csv", "PowerPlant", "plant_name",
		[]string{"plant_name", "capacity_mw", "latitude", "longitude", "commissioning_year", "source"},
	)
	ctries := graph.NewNodeTable(
		"countries_nodes", "countries_nodes.csv", "Country", "country_iso",
		[]string{"country_iso"},
	)
	owners := graph.NewNodeTable(
		"owners_nodes", "owners_nodes.csv", "Owner", "name",
		[]string{"name"},
	)
	fuels := graph.NewNodeTable(
		"fuel_types_nodes", "fuel_types_nodes.csv", "FuelType", "type",
		[]string{"type"},
	)

	locatedIn := graph.NewRelationshipTable(
		"located_in_relationships", "located_in_relationships.csv", "LOCATED_IN",
		[]string{"plant_name", "country_iso"},
	)
	ownedBy := graph.NewRelationshipTable(
		"owned_by_relationships", "owned_by_relationships.csv", "OWNED_BY",
		[]string{"plant_name", "owner"},
	)
	usesFuel := graph.NewRelationshipTable(
		"uses_fuel_relationships", "uses_fuel_relationships.csv", "USES_FUEL",
		[]string{"plant_name", "fuel_type"},
	)

	euRows := 0

	for _, row := range file.Rows {
		if !euISO3[row["country"]] {
			continue
		}

		euRows++

		plantName := row["name"]

		plants.Append(graph.Row{
			"plant_name":         plantName,
			"capacity_mw":        row["capacity_mw"],
			"latitude":           row["latitude"],
			"longitude":          row["longitude"],
			"commissioning_year": row["commissioning_year"],
			"source":             row["source"],
		})

		ctries.Append(graph.Row{"country_iso": row["country"]})

		if owner := row["owner"]; owner != "" {
			owners.Append(graph.Row{"name": owner})
		}

		if fuel := row["primary_fuel"]; fuel != "" {
			fuels.Append(graph.Row{"type": fuel})
		}

		// Relationship rows require both sides present.
		if plantName != "" && row["country"] != "" {
			locatedIn.Append(graph.Row{"plant_name": plantName, "country_iso": row["country"]})
		}

		if plantName != "" && row["owner"] != "" {
			ownedBy.Append(graph.Row{"plant_name": plantName, "owner": row["owner"]})
		}

		if plantName != "" && row["primary_fuel"] != "" {
			usesFuel.Append(graph.Row{"plant_name": plantName, "fuel_type": row["primary_fuel"]})
		}
	}

	p.log.Info("eu power plant rows selected", "rows", euRows, "total", len(file.Rows), "skipped", file.Skipped)

	for _, t := range []*graph.Table{plants, ctries, owners, fuels} {
		t.DedupeByKey()
	}

	return []*graph.Table{plants, ctries, owners, fuels, locatedIn, ownedBy, usesFuel}, nil
}
