package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// PreparedFor identifies the downstream consumer of every dataset.
const PreparedFor = "Neo4j graph import"

// Descriptor documents one dataset run: provenance, license, schema notes
// and the CSV files written. It is created once per successful run and
// never mutated after write.
type Descriptor struct {
	Dataset       string                       `json:"dataset"`
	RunID         string                       `json:"run_id"`
	RetrievalDate string                       `json:"retrieval_date"`
	Source        string                       `json:"source"`
	License       string                       `json:"license,omitempty"`
	Description   string                       `json:"description"`
	Columns       map[string]string            `json:"columns,omitempty"`
	Nodes         map[string]map[string]string `json:"nodes,omitempty"`
	Relationships map[string][]string          `json:"relationships,omitempty"`
	Files         map[string]string            `json:"files"`
	PreparedFor   string                       `json:"prepared_for"`
}

// NewDescriptor creates a descriptor stamped with a fresh run id and the
// current UTC time.
func NewDescriptor(dataset, source, license, description string) *Descriptor {
	return &Descriptor{
		Dataset:       dataset,
		RunID:         uuid.NewString(),
		RetrievalDate: time.Now().UTC().Format(time.RFC3339),
		Source:        source,
		License:       license,
		Description:   description,
		Files:         make(map[string]string),
		PreparedFor:   PreparedFor,
	}
}

// Write serializes the descriptor as indented JSON.
func (d *Descriptor) Write(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	return nil
}
