package graph

import (
	"fmt"
	"path/filepath"

	"github.com/kosmylo/geospatial-retrieval/internal/logger"
)

// MetadataFilename is the name of the per-dataset metadata descriptor.
const MetadataFilename = "metadata.json"

// Emitter writes node/relationship tables and the metadata descriptor to a
// dataset's output directory.
type Emitter struct {
	log *logger.Logger
}

// NewEmitter creates a new emitter.
func NewEmitter(log *logger.Logger) *Emitter {
	return &Emitter{log: log}
}

// Emit writes every table as CSV, records each filename in the descriptor's
// files mapping and finally writes the descriptor itself. The files mapping
// lists exactly the CSVs written, nothing else.
func (e *Emitter) Emit(outputDir string, desc *Descriptor, tables ...*Table) error {
	for _, t := range tables {
		path := filepath.Join(outputDir, t.Filename)

		if err := t.WriteCSV(path); err != nil {
			return fmt.Errorf("failed to emit table %s: %w", t.Name, err)
		}

		desc.Files[t.Name] = t.Filename

		e.log.Info("table written", "table", t.Name, "file", t.Filename, "rows", t.Len())
	}

	metaPath := filepath.Join(outputDir, MetadataFilename)
	if err := desc.Write(metaPath); err != nil {
		return err
	}

	e.log.Info("metadata written", "dataset", desc.Dataset, "file", MetadataFilename)

	return nil
}
