package fetch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kosmylo/geospatial-retrieval/internal/logger"
)

// Staging is a scratch directory holding downloaded archives and extracted
// files for the duration of one pipeline run. Callers defer Remove so the
// directory is released on every exit path.
type Staging struct {
	dir string
	log *logger.Logger
}

// NewStaging creates a uniquely named staging directory under parent.
func NewStaging(parent string, log *logger.Logger) (*Staging, error) {
	dir := filepath.Join(parent, "staging-"+uuid.NewString())

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging dir: %w", err)
	}

	return &Staging{dir: dir, log: log}, nil
}

// Dir returns the staging directory path.
func (s *Staging) Dir() string {
	return s.dir
}

// Path joins elements onto the staging directory.
func (s *Staging) Path(elem ...string) string {
	return filepath.Join(append([]string{s.dir}, elem...)...)
}

// Remove deletes the staging directory and everything in it. Failures are
// logged, not returned; cleanup must never mask the run's own error.
func (s *Staging) Remove() {
	if err := os.RemoveAll(s.dir); err != nil {
		s.log.Warn("failed to remove staging dir", "dir", s.dir, "error", err)

		return
	}

	s.log.Debug("staging dir removed", "dir", s.dir)
}
