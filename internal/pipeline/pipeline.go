// Package pipeline defines the dataset pipeline contract and the sequential
// runner that orchestrates the individual adapters.
package pipeline

import "context"

// Pipeline is one dataset adapter. RetrieveAndPrepare fetches the remote
// source, normalizes it into node/relationship tables and writes CSVs plus
// a metadata descriptor into outputDir. Staging artifacts are removed on
// every exit path.
type Pipeline interface {
	Name() string
	RetrieveAndPrepare(ctx context.Context, outputDir string) error
}
