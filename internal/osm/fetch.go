package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/kosmylo/geospatial-retrieval/internal/countries"
)

// overpassElement is the subset of an Overpass element the pipeline uses.
// Lat/Lon are pointers so absent coordinates are distinguishable from zero.
type overpassElement struct {
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// rawMetadata is the sidecar descriptor written next to each GeoJSON file.
type rawMetadata struct {
	Country          string `json:"country"`
	Dataset          string `json:"dataset"`
	NumberOfFeatures int    `json:"number_of_features"`
	RetrievalTime    string `json:"retrieval_timestamp"`
	Source           string `json:"source"`
	License          string `json:"license"`
	OSMQuery         string `json:"osm_query"`
	GeoJSONFile      string `json:"geojson_file"`
}

// FetchRaw queries Overpass for every (country, category) pair and writes a
// GeoJSON FeatureCollection plus a sidecar metadata file per pair into
// geoDir. A failed pair is logged and skipped; the remaining pairs continue.
// Returns the number of pairs fetched successfully.
func (p *Pipeline) FetchRaw(ctx context.Context, geoDir string) (int, error) {
	if err := os.MkdirAll(geoDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create geojson dir: %w", err)
	}

	fetched := 0

	for _, country := range p.countries {
		for _, cat := range p.categories {
			if err := ctx.Err(); err != nil {
				return fetched, err
			}

			if err := p.fetchPair(ctx, geoDir, country, cat); err != nil {
				p.log.Error("overpass fetch failed",
					"country", country.Name, "category", cat.Name, "error", err)

				continue
			}

			fetched++
		}
	}

	return fetched, nil
}

func (p *Pipeline) fetchPair(ctx context.Context, geoDir string, country countries.Country, cat Category) error {
	p.log.Info("fetching overpass data", "country", country.Name, "category", cat.Name)

	query := buildQuery(country.ISO2, cat.Filter)

	body, err := p.client.PostForm(ctx, p.overpassURL, url.Values{"data": {query}})
	if err != nil {
		return err
	}

	var resp overpassResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to decode overpass response: %w", err)
	}

	fc := featureCollection(resp.Elements)

	p.log.Info("overpass elements retrieved",
		"country", country.Name, "category", cat.Name,
		"elements", len(resp.Elements), "features", len(fc.Features))

	geoPath := filepath.Join(geoDir, cat.GeoJSONFilename(country.Name))

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal feature collection: %w", err)
	}

	if err := os.WriteFile(geoPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write geojson: %w", err)
	}

	meta := rawMetadata{
		Country:          country.Name,
		Dataset:          cat.Name,
		NumberOfFeatures: len(fc.Features),
		RetrievalTime:    time.Now().UTC().Format(time.RFC3339),
		Source:           "OpenStreetMap via Overpass API",
		License:          "ODbL (Open Database License)",
		OSMQuery:         query,
		GeoJSONFile:      geoPath,
	}

	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sidecar metadata: %w", err)
	}

	metaPath := strings.TrimSuffix(geoPath, ".geojson") + "_metadata.json"
	if err := os.WriteFile(metaPath, metaData, 0644); err != nil {
		return fmt.Errorf("failed to write sidecar metadata: %w", err)
	}

	return nil
}

// featureCollection converts Overpass elements to point features. Ways and
// relations carry their centroid in "center"; elements with no coordinate
// at all are skipped.
func featureCollection(elements []overpassElement) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, elem := range elements {
		var point orb.Point

		switch {
		case elem.Lat != nil && elem.Lon != nil:
			point = orb.Point{*elem.Lon, *elem.Lat}
		case elem.Center != nil:
			point = orb.Point{elem.Center.Lon, elem.Center.Lat}
		default:
			continue
		}

		f := geojson.NewFeature(point)

		for k, v := range elem.Tags {
			f.Properties[k] = v
		}

		f.Properties["osm_id"] = elem.ID

		fc.Append(f)
	}

	return fc
}
