// Package semantic provides the semantic-search collaborator: product
// embeddings stored in SQLite (sqlite-vec when the extension is available,
// JSON fallback otherwise) queried by vector similarity.
package semantic

import (
	"context"

	"pagesmith/internal/types"
)

// Request identifies one semantic search.
type Request struct {
	Topic       string
	ComponentID string
}

// Result is the collaborator's response.
type Result struct {
	Products []types.Product
	Header   string
}

// Searcher answers semantic product searches.
type Searcher interface {
	SemanticSearch(ctx context.Context, req Request) (*Result, error)
}

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
