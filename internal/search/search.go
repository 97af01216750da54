// Package search normalizes editor-facing facet selections into the canonical
// query shape the product search backend expects, parses natural-language
// queries into facets, and provides a bleve-backed product search service.
package search

import (
	"context"

	"pagesmith/internal/types"
)

// Query is the canonical, flat query consumed by the search backend. All
// facet display labels are stripped; only identifiers remain.
type Query struct {
	SearchType         string   `json:"searchType"`
	Concepts           []string `json:"concepts"`
	Categories         []string `json:"categories"`
	ExcludedCategories []string `json:"excludedCategories"`
	Keywords           string   `json:"keywords"`
	ExcludedKeywords   string   `json:"excludedKeywords"`
	IncludedFilters    []string `json:"includedFilters"`
	ExcludedFilters    []string `json:"excludedFilters"`
	PinnedSKUs         []string `json:"pinnedSkus"`
	ExcludedSKUs       []string `json:"excludedSkus"`
	MaxResults         int      `json:"maxResults"`
	CollapseBrands     bool     `json:"collapseBrands"`
}

// Result is a product search outcome.
type Result struct {
	Products       []types.Product
	QualityMetrics types.QualityMetrics
	ResultKey      string
	SuggestedPath  string
}

// Searcher executes canonical queries against the product backend.
type Searcher interface {
	Search(ctx context.Context, q Query, locationID string) (*Result, error)
}

// ParsedQuery is the facet decomposition of a natural-language query, used to
// seed SearchParameters from a page title or keyword.
type ParsedQuery struct {
	Concepts         []types.Facet
	IncludedFilters  []types.Facet
	ExcludedFilters  []types.Facet
	Keywords         string
	ExcludedKeywords string
}

// Parser turns a natural-language query into structured facets.
type Parser interface {
	Parse(ctx context.Context, query string) (*ParsedQuery, error)
}
