package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"pagesmith/internal/types"
)

func sampleSettings(searchType string) types.AssortmentSettings {
	return types.AssortmentSettings{
		SearchType: searchType,
		SearchParameters: types.SearchParameters{
			Concepts:           []types.Facet{{Value: "c1", Label: "Shoes"}, {Value: "c2", Label: "Trail"}},
			Categories:         []types.Facet{{Value: "cat-7", Label: "Footwear"}},
			ExcludedCategories: []types.Facet{{Value: "cat-9", Label: "Kids"}},
			Keywords:           "waterproof hiking",
			ExcludedKeywords:   "sandals",
			IncludedFilters:    []types.Facet{{Value: "color:brown", Label: "Brown"}},
			ExcludedFilters:    []types.Facet{{Value: "width:narrow", Label: "Narrow"}},
			PinnedSKUs:         []string{"sku-1"},
			ExcludedSKUs:       []string{"sku-2"},
			MaxResults:         12,
			CollapseBrands:     true,
			SearchLocation:     "store-5",
		},
	}
}

func TestGetSearchQueryStripsLabels(t *testing.T) {
	q := GetSearchQuery(sampleSettings(types.SearchTypeStandard))

	want := Query{
		SearchType:         types.SearchTypeStandard,
		Concepts:           []string{"c1", "c2"},
		Categories:         []string{"cat-7"},
		ExcludedCategories: []string{"cat-9"},
		Keywords:           "waterproof hiking",
		ExcludedKeywords:   "sandals",
		IncludedFilters:    []string{"color:brown"},
		ExcludedFilters:    []string{"width:narrow"},
		PinnedSKUs:         []string{"sku-1"},
		ExcludedSKUs:       []string{"sku-2"},
		MaxResults:         12,
		CollapseBrands:     true,
	}
	if diff := cmp.Diff(want, q); diff != "" {
		t.Errorf("GetSearchQuery mismatch (-want +got):\n%s", diff)
	}
}

func TestGetSearchQuerySuppressesFacetsForReviewAndSemantic(t *testing.T) {
	for _, searchType := range []string{types.SearchTypeReview, types.SearchTypeSemantic} {
		t.Run(searchType, func(t *testing.T) {
			q := GetSearchQuery(sampleSettings(searchType))
			if len(q.Concepts) != 0 {
				t.Errorf("Concepts = %v, want empty", q.Concepts)
			}
			if q.Concepts == nil {
				t.Error("Concepts must be empty, not nil")
			}
			if q.Keywords != "" {
				t.Errorf("Keywords = %q, want empty", q.Keywords)
			}
			// Other facets pass through untouched.
			if len(q.Categories) != 1 || q.SearchType != searchType {
				t.Errorf("unexpected query %+v", q)
			}
		})
	}
}

func TestGetSearchQueryIsPure(t *testing.T) {
	settings := sampleSettings(types.SearchTypeStandard)
	first := GetSearchQuery(settings)
	second := GetSearchQuery(settings)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("two calls with identical input differ:\n%s", diff)
	}

	// Mutating an output must not leak back into the settings.
	first.PinnedSKUs[0] = "mutated"
	if settings.SearchParameters.PinnedSKUs[0] != "sku-1" {
		t.Error("output shares PinnedSKUs backing array with input")
	}
}

func TestGetSearchQueryEmptyInput(t *testing.T) {
	q := GetSearchQuery(types.AssortmentSettings{SearchType: types.SearchTypeStandard})
	if q.Concepts == nil || q.PinnedSKUs == nil {
		t.Error("slices must be empty, not nil, for a zero-value input")
	}
	if len(q.Concepts) != 0 {
		t.Errorf("Concepts = %v", q.Concepts)
	}
}
