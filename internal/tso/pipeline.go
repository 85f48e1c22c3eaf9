// Package tso discovers interconnections between European transmission
// system operators via the ENTSO-E transparency platform.
package tso

import (
	"context"
	"net/url"
	"time"

	"github.com/kosmylo/geospatial-retrieval/internal/countries"
	"github.com/kosmylo/geospatial-retrieval/internal/fetch"
	"github.com/kosmylo/geospatial-retrieval/internal/graph"
	"github.com/kosmylo/geospatial-retrieval/internal/logger"
)

// DefaultBaseURL is the ENTSO-E transparency platform API endpoint.
const DefaultBaseURL = "https://web-api.tp.entsoe.eu/api"

// documentTypePhysicalFlow selects same-day physical flow data.
const documentTypePhysicalFlow = "A11"

// minConnectedBytes is the response size above which a pair counts as
// connected. A payload this small carries no time series, only an
// acknowledgement or error document. Known approximation, kept as is.
const minConnectedBytes = 500

// Interconnection is one directed connected pair of TSO areas.
type Interconnection struct {
	FromCountry  string
	ToCountry    string
	FromAreaCode string
	ToAreaCode   string
	Status       string
}

// Pipeline sweeps every ordered pair of TSO areas for physical flow data.
type Pipeline struct {
	client  *fetch.Client
	emitter *graph.Emitter
	log     *logger.Logger
	baseURL string
	token   string
	areas   []countries.Country
	now     func() time.Time
}

// New creates the TSO pipeline with the given API token.
func New(client *fetch.Client, token string, log *logger.Logger) *Pipeline {
	return &Pipeline{
		client:  client,
		emitter: graph.NewEmitter(log),
		log:     log,
		baseURL: DefaultBaseURL,
		token:   token,
		areas:   countries.TSOAreas(),
		now:     time.Now,
	}
}

// NewWithOptions creates the pipeline against a custom endpoint, area
// subset and clock. Used by tests.
func NewWithOptions(client *fetch.Client, token string, log *logger.Logger, baseURL string, areas []countries.Country, now func() time.Time) *Pipeline {
	p := New(client, token, log)
	p.baseURL = baseURL
	p.areas = areas
	p.now = now

	return p
}

// Name returns the dataset name.
func (p *Pipeline) Name() string {
	return "tso"
}

// RetrieveAndPrepare sweeps all ordered area pairs, unions the connected
// sides into a TSO node table and emits the interconnection edges.
func (p *Pipeline) RetrieveAndPrepare(ctx context.Context, outputDir string) error {
	conns, err := p.fetchInterconnections(ctx)
	if err != nil {
		return err
	}

	p.log.Info("interconnection sweep complete", "connected_pairs", len(conns))

	nodes := graph.NewNodeTable(
		"tso_nodes", "tso_nodes.csv", "TSO", "area_code",
		[]string{"country", "area_code"},
	)
	rels := graph.NewRelationshipTable(
		"interconnection_relationships", "interconnection_relationships.csv", "INTERCONNECTED_WITH",
		[]string{"tso_from", "tso_to", "from_area_code", "to_area_code", "status", "type"},
	)

	for _, c := range conns {
		nodes.Append(graph.Row{"country": c.FromCountry, "area_code": c.FromAreaCode})
		nodes.Append(graph.Row{"country": c.ToCountry, "area_code": c.ToAreaCode})

		rels.Append(graph.Row{
			"tso_from":       c.FromCountry,
			"tso_to":         c.ToCountry,
			"from_area_code": c.FromAreaCode,
			"to_area_code":   c.ToAreaCode,
			"status":         c.Status,
			"type":           "INTERCONNECTED_WITH",
		})
	}

	nodes.DedupeByKey()

	desc := graph.NewDescriptor(
		"ENTSO-E TSO Network Interconnections",
		"ENTSO-E Transparency Platform API",
		"",
		"Interconnections between TSOs in Europe, retrieved via ENTSO-E API, suitable for Neo4j graph import.",
	)
	desc.Columns = map[string]string{
		"tso_from":       "Originating TSO country",
		"tso_to":         "Destination TSO country",
		"from_area_code": "ENTSO-E EIC area code of origin",
		"to_area_code":   "ENTSO-E EIC area code of destination",
		"status":         "Connection status (e.g., Connected)",
	}

	return p.emitter.Emit(outputDir, desc, nodes, rels)
}

// fetchInterconnections queries same-day physical flow for every ordered
// pair of distinct areas. Failed or empty pairs are omitted, never fatal.
func (p *Pipeline) fetchInterconnections(ctx context.Context) ([]Interconnection, error) {
	day := p.now().UTC().Format("20060102")
	headers := map[string]string{"Accept": "application/json"}

	var conns []Interconnection

	for _, from := range p.areas {
		for _, to := range p.areas {
			if from.EIC == to.EIC {
				continue
			}

			if err := ctx.Err(); err != nil {
				return conns, err
			}

			params := url.Values{
				"securityToken": {p.token},
				"documentType":  {documentTypePhysicalFlow},
				"in_Domain":     {from.EIC},
				"out_Domain":    {to.EIC},
				"periodStart":   {day + "0000"},
				"periodEnd":     {day + "2300"},
			}

			body, err := p.client.Get(ctx, p.baseURL, params, headers)
			if err != nil {
				p.log.Debug("no connection", "from", from.Name, "to", to.Name, "error", err)

				continue
			}

			if len(body) <= minConnectedBytes {
				p.log.Debug("empty flow response", "from", from.Name, "to", to.Name, "bytes", len(body))

				continue
			}

			p.log.Info("connection found", "from", from.Name, "to", to.Name)

			conns = append(conns, Interconnection{
				FromCountry:  from.Name,
				ToCountry:    to.Name,
				FromAreaCode: from.EIC,
				ToAreaCode:   to.EIC,
				Status:       "Connected",
			})
		}
	}

	return conns, nil
}
