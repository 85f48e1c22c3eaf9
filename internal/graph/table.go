// Package graph models the node and relationship tables the pipelines emit
// for bulk import into a graph database.
package graph

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Row maps column names to scalar values already rendered as strings.
type Row map[string]string

// Table is one node or relationship table with a fixed column order.
type Table struct {
	// Name is the logical name recorded in the metadata descriptor.
	Name string
	// Filename is the exact CSV filename; it is part of the contract
	// consumed by the downstream import tool.
	Filename string
	// Label is the node label, or the relationship type for edge tables.
	Label string
	// Key is the natural-key column for node tables; empty for
	// relationship tables.
	Key string
	// Columns fixes the CSV column order.
	Columns []string

	rows []Row
}

// NewNodeTable creates a node table with the given natural-key column.
func NewNodeTable(name, filename, label, key string, columns []string) *Table {
	return &Table{
		Name:     name,
		Filename: filename,
		Label:    label,
		Key:      key,
		Columns:  columns,
	}
}

// NewRelationshipTable creates a relationship table of the given type.
func NewRelationshipTable(name, filename, relType string, columns []string) *Table {
	return &Table{
		Name:     name,
		Filename: filename,
		Label:    relType,
		Columns:  columns,
	}
}

// Append adds a row to the table.
func (t *Table) Append(r Row) {
	t.rows = append(t.rows, r)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns the table rows in insertion order.
func (t *Table) Rows() []Row {
	return t.rows
}

// DedupeByKey keeps the first-seen row per natural key and returns the
// number of rows dropped. Rows with an empty key are dropped as well.
func (t *Table) DedupeByKey() int {
	if t.Key == "" {
		return 0
	}

	return t.DedupeBy(t.Key)
}

// DedupeBy keeps the first-seen row per value of the given column.
func (t *Table) DedupeBy(column string) int {
	seen := make(map[string]bool, len(t.rows))
	kept := t.rows[:0]

	for _, r := range t.rows {
		key := r[column]
		if key == "" || seen[key] {
			continue
		}

		seen[key] = true

		kept = append(kept, r)
	}

	dropped := len(t.rows) - len(kept)
	t.rows = kept

	return dropped
}

// WriteCSV writes the table as a UTF-8 CSV file with a header row.
func (t *Table) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(t.Columns))

	for _, row := range t.rows {
		for i, col := range t.Columns {
			record[i] = row[col]
		}

		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}

	return nil
}
