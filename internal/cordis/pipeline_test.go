package cordis

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/kosmylo/geospatial-retrieval/internal/config"
	"github.com/kosmylo/geospatial-retrieval/internal/fetch"
	"github.com/kosmylo/geospatial-retrieval/internal/logger"
	"github.com/kosmylo/geospatial-retrieval/internal/tabular"
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

const testProjects = `"id";"acronym";"title";"startDate";"endDate";"ecMaxContribution";"totalCost";"topics"
101;DEMO;Demo project;2020-01-01;2022-12-31;1.500.000,00;2.000.000,00;LC-SC3-ES-1
102;BROKEN;Bad dates;2020-13-01;2022-12-31;100;200;LC-SC3-ES-2
103;OTHER;Other project;2019-06-01;2021-05-31;500000;750000;LC-SC3-ES-1
`

const testOrgs = `"organisationID";"name";"shortName";"country";"vatNumber";"city";"activityType";"projectID";"role";"ecContribution"
901;ACME Research;ACME;DE;DE123;Berlin;REC;101;coordinator;750.000,50
902;Beta Labs;BETA;FR;FR456;Paris;PRC;101;participant;250000
901;ACME Research;ACME;DE;DE123;Berlin;REC;103;participant;100000
`

const testTopics = `"projectID";"topic";"title"
101;LC-SC3-ES-1;Energy systems
103;LC-SC3-ES-1;Energy systems
102;LC-SC3-ES-2;Other topic
`

const testLegal = `"projectID";"legalBasis"
101;H2020-EU.3.3.
103;H2020-EU.3.3.
`

func serveArchive(t *testing.T, files map[string]string) *httptest.Server {
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

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	t.Cleanup(srv.Close)

	return srv
}

func testArchiveFiles() map[string]string {
	return map[string]string{
		projectsName:   testProjects,
		orgsName:       testOrgs,
		topicsName:     testTopics,
		legalBasisName: testLegal,
	}
}

func readCSV(t *testing.T, path string) []map[string]string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}

	header := records[0]

	var rows []map[string]string

	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			row[col] = rec[i]
		}

		rows = append(rows, row)
	}

	return rows
}

func TestRetrieveAndPrepare(t *testing.T) {
	srv := serveArchive(t, testArchiveFiles())
	outputDir := t.TempDir()

	p := NewWithURL(testClient(), logger.NewNop(), srv.URL)

	if err := p.RetrieveAndPrepare(context.Background(), outputDir); err != nil {
		t.Fatalf("RetrieveAndPrepare returned error: %v", err)
	}

	projects := readCSV(t, filepath.Join(outputDir, "projects_nodes.csv"))

	// Project 102 has an impossible start date and is dropped.
	if len(projects) != 2 {
		t.Fatalf("project rows = %d, want 2", len(projects))
	}

	byID := map[string]map[string]string{}
	for _, row := range projects {
		byID[row["projectId"]] = row
	}

	if byID["102"] != nil {
		t.Errorf("invalid-date project survived")
	}

	demo := byID["101"]
	if demo == nil {
		t.Fatal("project 101 missing")
	}

	if demo["ecMaxContribution"] != "1500000" {
		t.Errorf("ecMaxContribution = %q, want coerced 1500000", demo["ecMaxContribution"])
	}

	if demo["startDate"] != "2020-01-01" || demo["endDate"] != "2022-12-31" {
		t.Errorf("dates = %s..%s", demo["startDate"], demo["endDate"])
	}

	orgs := readCSV(t, filepath.Join(outputDir, "organizations_nodes.csv"))

	// Organization 901 participates twice but is one node.
	if len(orgs) != 2 {
		t.Fatalf("organization rows = %d, want 2 after dedupe", len(orgs))
	}

	rels := readCSV(t, filepath.Join(outputDir, "participated_in_relationships.csv"))
	if len(rels) != 3 {
		t.Fatalf("participation rows = %d, want 3", len(rels))
	}

	for _, row := range rels {
		if row["organizationId"] == "901" && row["projectId"] == "101" {
			if row["ecContribution"] != "750000.5" {
				t.Errorf("ecContribution = %q, want coerced 750000.5", row["ecContribution"])
			}

			if row["role"] != "coordinator" {
				t.Errorf("role = %q", row["role"])
			}
		}
	}

	topics := readCSV(t, filepath.Join(outputDir, "topics_nodes.csv"))
	if len(topics) != 2 {
		t.Errorf("topic rows = %d, want 2 after dedupe", len(topics))
	}

	topicRels := readCSV(t, filepath.Join(outputDir, "has_topic_relationships.csv"))
	if len(topicRels) != 3 {
		t.Errorf("HAS_TOPIC rows = %d, want 3", len(topicRels))
	}

	legal := readCSV(t, filepath.Join(outputDir, "legal_basis_nodes.csv"))
	if len(legal) != 1 {
		t.Errorf("legal basis rows = %d, want 1 after dedupe", len(legal))
	}

	if _, err := os.Stat(filepath.Join(outputDir, "metadata.json")); err != nil {
		t.Errorf("metadata descriptor missing: %v", err)
	}
}

func TestRetrieveAndPrepare_MalformedRowsAreSkipped(t *testing.T) {
	files := testArchiveFiles()
	files[projectsName] = `"id";"acronym";"title";"startDate";"endDate";"ecMaxContribution";"totalCost";"topics"
101;DEMO;Demo project;2020-01-01;2022-12-31;100;200;LC-SC3-ES-1
only-two;fields
103;OTHER;Other project;2019-06-01;2021-05-31;300;400;LC-SC3-ES-1
`

	srv := serveArchive(t, files)
	outputDir := t.TempDir()

	p := NewWithURL(testClient(), logger.NewNop(), srv.URL)

	if err := p.RetrieveAndPrepare(context.Background(), outputDir); err != nil {
		t.Fatalf("RetrieveAndPrepare returned error: %v", err)
	}

	projects := readCSV(t, filepath.Join(outputDir, "projects_nodes.csv"))
	if len(projects) != 2 {
		t.Errorf("project rows = %d, want 2 (malformed row skipped)", len(projects))
	}
}

func TestRetrieveAndPrepare_MissingColumnAborts(t *testing.T) {
	files := testArchiveFiles()
	files[orgsName] = `"name";"projectID"
ACME;101
`

	srv := serveArchive(t, files)
	outputDir := t.TempDir()

	p := NewWithURL(testClient(), logger.NewNop(), srv.URL)

	err := p.RetrieveAndPrepare(context.Background(), outputDir)
	if !errors.Is(err, tabular.ErrMissingColumn) {
		t.Fatalf("error = %v, want ErrMissingColumn", err)
	}

	if _, statErr := os.Stat(filepath.Join(outputDir, "metadata.json")); !os.IsNotExist(statErr) {
		t.Errorf("descriptor written despite aborted preparation")
	}
}
