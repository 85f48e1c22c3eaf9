package osm

import (
	"strings"
	"testing"
)

func TestCategories(t *testing.T) {
	cats := Categories()

	if len(cats) != 6 {
		t.Fatalf("categories = %d, want 6", len(cats))
	}

	names := map[string]bool{}
	for _, c := range cats {
		names[c.Name] = true
	}

	for _, want := range []string{"power_plants", "wind_turbines", "solar_farms", "substations", "transmission_lines", "ev_charging_stations"} {
		if !names[want] {
			t.Errorf("category %q missing", want)
		}
	}
}

func TestCategory_Columns(t *testing.T) {
	for _, c := range Categories() {
		cols := c.Columns()

		for i, base := range []string{"osm_id", "latitude", "longitude", "country"} {
			if cols[i] != base {
				t.Errorf("%s columns[%d] = %q, want %q", c.Name, i, cols[i], base)
			}
		}

		if len(cols) != 4+len(c.Extras) {
			t.Errorf("%s has %d columns, want %d", c.Name, len(cols), 4+len(c.Extras))
		}
	}
}

func TestCategory_Filenames(t *testing.T) {
	cats := Categories()

	var substation Category

	for _, c := range cats {
		if c.Name == "substations" {
			substation = c
		}
	}

	if got := substation.NodesFilename(); got != "substations_nodes.csv" {
		t.Errorf("NodesFilename = %q", got)
	}

	if got := substation.RelationshipsFilename(); got != "substations_located_in_relationships.csv" {
		t.Errorf("RelationshipsFilename = %q", got)
	}

	if got := substation.GeoJSONFilename("Czech Republic"); got != "czech_republic_substations.geojson" {
		t.Errorf("GeoJSONFilename = %q", got)
	}
}

func TestBuildQuery(t *testing.T) {
	q := buildQuery("DE", `["power"="plant"]`)

	for _, want := range []string{
		`area["ISO3166-1"="DE"][admin_level=2]`,
		`node(area.searchArea)["power"="plant"];`,
		`way(area.searchArea)["power"="plant"];`,
		`relation(area.searchArea)["power"="plant"];`,
		"out center;",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("query missing %q:\n%s", want, q)
		}
	}
}
