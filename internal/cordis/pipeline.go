// Package cordis retrieves the CORDIS Horizon 2020 project archive and
// prepares projects, organizations, topics and legal bases as graph tables.
package cordis

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/kosmylo/geospatial-retrieval/internal/fetch"
	"github.com/kosmylo/geospatial-retrieval/internal/graph"
	"github.com/kosmylo/geospatial-retrieval/internal/logger"
	"github.com/kosmylo/geospatial-retrieval/internal/tabular"
)

// DataURL is the H2020 projects archive location.
const DataURL = "https://cordis.europa.eu/data/cordis-h2020projects-csv.zip"

const archiveName = "cordis_h2020_projects.zip"

// Source CSVs inside the archive, all semicolon-delimited.
const (
	projectsName   = "project.csv"
	orgsName       = "organization.csv"
	topicsName     = "topics.csv"
	legalBasisName = "legalBasis.csv"
)

var (
	projectColumns = []string{"id", "acronym", "title", "startDate", "endDate", "ecMaxContribution", "totalCost", "topics"}
	orgColumns     = []string{"organisationID", "name", "shortName", "country", "vatNumber", "city", "activityType", "projectID", "role", "ecContribution"}
	topicColumns   = []string{"projectID", "topic", "title"}
	legalColumns   = []string{"projectID", "legalBasis"}
)

// readOptions tolerate the archive's quirks: semicolon delimiters, quote
// characters embedded in headers and the occasional malformed row.
var readOptions = tabular.Options{Comma: ';', SkipBadRows: true, TrimQuotes: true}

// Pipeline retrieves and prepares the CORDIS H2020 dataset.
type Pipeline struct {
	client  *fetch.Client
	emitter *graph.Emitter
	log     *logger.Logger
	dataURL string
}

// New creates the CORDIS pipeline.
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
	return "cordis"
}

// RetrieveAndPrepare downloads the archive, parses the project,
// organization, topic and legal-basis CSVs and emits the graph tables.
func (p *Pipeline) RetrieveAndPrepare(ctx context.Context, outputDir string) error {
	staging, err := fetch.NewStaging(outputDir, p.log)
	if err != nil {
		return err
	}
	defer staging.Remove()

	zipPath := staging.Path(archiveName)

	p.log.Info("downloading cordis archive", "url", p.dataURL)

	if err := p.client.DownloadFile(ctx, p.dataURL, zipPath); err != nil {
		return fmt.Errorf("cordis download failed: %w", err)
	}

	extractDir := staging.Path("extracted")
	if err := fetch.Unzip(zipPath, extractDir); err != nil {
		return fmt.Errorf("cordis extraction failed: %w", err)
	}

	tables, err := p.prepare(extractDir)
	if err != nil {
		return err
	}

	desc := graph.NewDescriptor(
		"CORDIS Horizon 2020 Projects Database",
		DataURL,
		"European Union Open Data License",
		"Graph-ready dataset of EU-funded R&D projects and organizations from Horizon 2020.",
	)

	return p.emitter.Emit(outputDir, desc, tables...)
}

func (p *Pipeline) prepare(extractDir string) ([]*graph.Table, error) {
	projects, err := p.readRequired(extractDir, projectsName, projectColumns)
	if err != nil {
		return nil, err
	}

	orgs, err := p.readRequired(extractDir, orgsName, orgColumns)
	if err != nil {
		return nil, err
	}

	topics, err := p.readRequired(extractDir, topicsName, topicColumns)
	if err != nil {
		return nil, err
	}

	legal, err := p.readRequired(extractDir, legalBasisName, legalColumns)
	if err != nil {
		return nil, err
	}

	var tables []*graph.Table

	tables = append(tables, p.projectTable(projects))
	tables = append(tables, p.organizationTables(orgs)...)
	tables = append(tables, p.topicTables(topics)...)
	tables = append(tables, p.legalBasisTables(legal)...)

	return tables, nil
}

func (p *Pipeline) readRequired(dir, name string, required []string) (*tabular.File, error) {
	file, err := tabular.Read(filepath.Join(dir, name), readOptions)
	if err != nil {
		return nil, fmt.Errorf("cordis %s: %w", name, err)
	}

	if file.Skipped > 0 {
		p.log.Warn("malformed rows skipped", "file", name, "rows", file.Skipped)
	}

	if err := file.RequireColumns(required); err != nil {
		return nil, fmt.Errorf("cordis %s: %w", name, err)
	}

	return file, nil
}

// projectTable builds the Project node table. Contribution and cost fields
// are coerced to numbers; rows whose start or end date fails the strict
// calendar format are dropped.
func (p *Pipeline) projectTable(file *tabular.File) *graph.Table {
	nodes := graph.NewNodeTable(
		"projects_nodes", "projects_nodes.csv", "Project", "projectId",
		[]string{"projectId", "acronym", "title", "startDate", "endDate", "ecMaxContribution", "totalCost", "label"},
	)

	droppedDates := 0

	for _, row := range file.Rows {
		start, okStart := ParseDate(row["startDate"])
		end, okEnd := ParseDate(row["endDate"])

		if !okStart || !okEnd {
			droppedDates++

			continue
		}

		nodes.Append(graph.Row{
			"projectId":         row["id"],
			"acronym":           row["acronym"],
			"title":             row["title"],
			"startDate":         start,
			"endDate":           end,
			"ecMaxContribution": FormatAmount(ParseAmount(row["ecMaxContribution"])),
			"totalCost":         FormatAmount(ParseAmount(row["totalCost"])),
			"label":             "Project",
		})
	}

	if droppedDates > 0 {
		p.log.Warn("project rows dropped for invalid dates", "rows", droppedDates)
	}

	nodes.DedupeByKey()

	return nodes
}

// organizationTables builds the Organization node table and the
// PARTICIPATED_IN relationship table from the same source file.
func (p *Pipeline) organizationTables(file *tabular.File) []*graph.Table {
	nodes := graph.NewNodeTable(
		"organizations_nodes", "organizations_nodes.csv", "Organization", "organizationId",
		[]string{"organizationId", "name", "shortName", "country", "vatNumber", "city", "activityType", "label"},
	)
	rels := graph.NewRelationshipTable(
		"participated_in_relationships", "participated_in_relationships.csv", "PARTICIPATED_IN",
		[]string{"organizationId", "projectId", "role", "ecContribution", "type"},
	)

	for _, row := range file.Rows {
		nodes.Append(graph.Row{
			"organizationId": row["organisationID"],
			"name":           row["name"],
			"shortName":      row["shortName"],
			"country":        row["country"],
			"vatNumber":      row["vatNumber"],
			"city":           row["city"],
			"activityType":   row["activityType"],
			"label":          "Organization",
		})

		rels.Append(graph.Row{
			"organizationId": row["organisationID"],
			"projectId":      row["projectID"],
			"role":           row["role"],
			"ecContribution": FormatAmount(ParseAmount(row["ecContribution"])),
			"type":           "PARTICIPATED_IN",
		})
	}

	nodes.DedupeByKey()

	return []*graph.Table{nodes, rels}
}

func (p *Pipeline) topicTables(file *tabular.File) []*graph.Table {
	nodes := graph.NewNodeTable(
		"topics_nodes", "topics_nodes.csv", "Topic", "topic",
		[]string{"topic", "title", "label"},
	)
	rels := graph.NewRelationshipTable(
		"has_topic_relationships", "has_topic_relationships.csv", "HAS_TOPIC",
		[]string{"projectId", "topic", "type"},
	)

	for _, row := range file.Rows {
		nodes.Append(graph.Row{
			"topic": row["topic"],
			"title": row["title"],
			"label": "Topic",
		})

		if row["projectID"] != "" && row["topic"] != "" {
			rels.Append(graph.Row{
				"projectId": row["projectID"],
				"topic":     row["topic"],
				"type":      "HAS_TOPIC",
			})
		}
	}

	nodes.DedupeByKey()

	return []*graph.Table{nodes, rels}
}

func (p *Pipeline) legalBasisTables(file *tabular.File) []*graph.Table {
	nodes := graph.NewNodeTable(
		"legal_basis_nodes", "legal_basis_nodes.csv", "LegalBasis", "legalBasis",
		[]string{"legalBasis", "label"},
	)
	rels := graph.NewRelationshipTable(
		"has_legal_basis_relationships", "has_legal_basis_relationships.csv", "HAS_LEGAL_BASIS",
		[]string{"projectId", "legalBasis", "type"},
	)

	for _, row := range file.Rows {
		nodes.Append(graph.Row{
			"legalBasis": row["legalBasis"],
			"label":      "LegalBasis",
		})

		if row["projectID"] != "" && row["legalBasis"] != "" {
			rels.Append(graph.Row{
				"projectId":  row["projectID"],
				"legalBasis": row["legalBasis"],
				"type":       "HAS_LEGAL_BASIS",
			})
		}
	}

	nodes.DedupeByKey()

	return []*graph.Table{nodes, rels}
}
