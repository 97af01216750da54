package search

import (
	"pagesmith/internal/types"
)

// GetSearchQuery maps an assortment block's settings to the canonical query
// shape. Pure and deterministic: identical input yields identical output, no
// side effects.
//
// Review and semantic search modes ignore facet narrowing, so concepts and
// keywords are suppressed for them regardless of what the editor selected.
func GetSearchQuery(settings types.AssortmentSettings) Query {
	p := settings.SearchParameters

	q := Query{
		SearchType:         settings.SearchType,
		Concepts:           facetValues(p.Concepts),
		Categories:         facetValues(p.Categories),
		ExcludedCategories: facetValues(p.ExcludedCategories),
		Keywords:           p.Keywords,
		ExcludedKeywords:   p.ExcludedKeywords,
		IncludedFilters:    facetValues(p.IncludedFilters),
		ExcludedFilters:    facetValues(p.ExcludedFilters),
		PinnedSKUs:         append([]string{}, p.PinnedSKUs...),
		ExcludedSKUs:       append([]string{}, p.ExcludedSKUs...),
		MaxResults:         p.MaxResults,
		CollapseBrands:     p.CollapseBrands,
	}

	if settings.SearchType == types.SearchTypeReview || settings.SearchType == types.SearchTypeSemantic {
		q.Concepts = []string{}
		q.Keywords = ""
	}

	return q
}

// facetValues strips display labels, keeping only canonical identifiers.
// Always returns a non-nil slice so the output shape is stable.
func facetValues(facets []types.Facet) []string {
	out := make([]string, 0, len(facets))
	for _, f := range facets {
		out = append(out, f.Value)
	}
	return out
}
