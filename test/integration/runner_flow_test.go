package integration

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kosmylo/geospatial-retrieval/internal/config"
	"github.com/kosmylo/geospatial-retrieval/internal/countries"
	"github.com/kosmylo/geospatial-retrieval/internal/fetch"
	"github.com/kosmylo/geospatial-retrieval/internal/gridkit"
	"github.com/kosmylo/geospatial-retrieval/internal/logger"
	"github.com/kosmylo/geospatial-retrieval/internal/osm"
	"github.com/kosmylo/geospatial-retrieval/internal/pipeline"
	"github.com/kosmylo/geospatial-retrieval/internal/tso"
)

func testClient() *fetch.Client {
	return fetch.NewClientWithConfig(&config.RetryPolicy{
		MaxAttempts:       1,
		InitialDelayMs:    1,
		MaxDelayMs:        1,
		BackoffMultiplier: 1.0,
		TimeoutSec:        5,
	}, logger.NewNop())
}

type staticResolver struct{}

func (staticResolver) Country(lat, lon float64) (string, error) {
	return "Austria", nil
}

func zipArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer

	w := zip.NewWriter(&buf)

	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}

		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	return buf.Bytes()
}

// TestRunner_EndToEnd wires three pipelines against fake upstreams and
// verifies that each dataset lands in its own output directory with a
// metadata descriptor, and that one failing dataset leaves the others
// untouched.
func TestRunner_EndToEnd(t *testing.T) {
	austria, ok := countries.ByName("Austria")
	if !ok {
		t.Fatal("Austria missing from country table")
	}

	germany, ok := countries.ByName("Germany")
	if !ok {
		t.Fatal("Germany missing from country table")
	}

	overpassSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elements": [{"id": 1, "lat": 48.2, "lon": 16.3, "tags": {"name": "Wien"}}]}`))
	}))
	defer overpassSrv.Close()

	gridkitArchive := zipArchive(t, map[string]string{
		"gridkit_europe-highvoltage-vertices.csv": "v_id,lon,lat,typ,frequency,voltage,operator,name\n1,16.4,48.2,substation,50,380000,APG,Wien\n",
		"gridkit_europe-highvoltage-links.csv":    "l_id,v_id_1,v_id_2,cables,voltage,wires\n10,1,1,3,380000,2\n",
	})

	gridkitSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(gridkitArchive)
	}))
	defer gridkitSrv.Close()

	// The TSO upstream is down entirely.
	tsoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer tsoSrv.Close()

	client := testClient()
	log := logger.NewNop()

	pipelines := []pipeline.Pipeline{
		osm.NewWithOptions(client, log, overpassSrv.URL, []countries.Country{austria}),
		gridkit.NewWithURL(client, staticResolver{}, log, gridkitSrv.URL),
		tso.NewWithOptions(client, "token", log, tsoSrv.URL, []countries.Country{austria, germany},
			func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) }),
	}

	baseDir := t.TempDir()
	results := pipeline.NewRunner(log).Run(context.Background(), baseDir, pipelines)

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}

	for _, res := range results {
		if res.Err != nil {
			t.Errorf("%s failed: %v", res.Name, res.Err)
		}
	}

	// Every dataset owns its directory with a descriptor.
	for _, name := range []string{"osm", "gridkit", "tso"} {
		if _, err := os.Stat(filepath.Join(baseDir, name, "metadata.json")); err != nil {
			t.Errorf("%s descriptor missing: %v", name, err)
		}
	}

	if _, err := os.Stat(filepath.Join(baseDir, "osm", "geojson", "austria_substations.geojson")); err != nil {
		t.Errorf("osm raw geojson missing: %v", err)
	}

	if _, err := os.Stat(filepath.Join(baseDir, "gridkit", "grid_nodes.csv")); err != nil {
		t.Errorf("gridkit nodes missing: %v", err)
	}

	// No staging dirs survive in any dataset directory.
	for _, name := range []string{"osm", "gridkit", "tso"} {
		entries, err := os.ReadDir(filepath.Join(baseDir, name))
		if err != nil {
			t.Fatalf("read %s dir: %v", name, err)
		}

		for _, e := range entries {
			if strings.HasPrefix(e.Name(), "staging-") {
				t.Errorf("staging dir left in %s output", name)
			}
		}
	}
}

// TestRunner_FailureIsolation points one pipeline at an unreachable source
// and verifies the remaining pipelines still produce their outputs.
func TestRunner_FailureIsolation(t *testing.T) {
	austria, ok := countries.ByName("Austria")
	if !ok {
		t.Fatal("Austria missing from country table")
	}

	overpassSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elements": []}`))
	}))
	defer overpassSrv.Close()

	client := testClient()
	log := logger.NewNop()

	pipelines := []pipeline.Pipeline{
		// Archive source returns no usable zip.
		gridkit.NewWithURL(client, staticResolver{}, log, overpassSrv.URL),
		osm.NewWithOptions(client, log, overpassSrv.URL, []countries.Country{austria}),
	}

	baseDir := t.TempDir()
	results := pipeline.NewRunner(log).Run(context.Background(), baseDir, pipelines)

	if results[0].Err == nil {
		t.Error("gridkit run against a non-zip source should fail")
	}

	if results[1].Err != nil {
		t.Errorf("osm run failed: %v", results[1].Err)
	}

	if _, err := os.Stat(filepath.Join(baseDir, "osm", "metadata.json")); err != nil {
		t.Errorf("osm output missing after sibling failure: %v", err)
	}
}
