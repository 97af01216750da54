package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocs() []ProductDoc {
	return []ProductDoc{
		{
			ID: "sku-1", Name: "Ridge Hiking Boot", Description: "Waterproof leather hiking boot",
			Brand: "Summit", Categories: []string{"footwear"}, Concepts: []string{"c-hiking"},
			Attributes: []string{"color:brown"}, Locations: []string{"store-5"},
		},
		{
			ID: "sku-2", Name: "Peak Trail Runner", Description: "Light trail running shoe",
			Brand: "Summit", Categories: []string{"footwear"}, Concepts: []string{"c-trail-runner"},
			Attributes: []string{"color:blue"},
		},
		{
			ID: "sku-3", Name: "River Sandal", Description: "Open sandal for water crossings",
			Brand: "Delta", Categories: []string{"sandals"},
			Attributes: []string{"color:brown"},
		},
	}
}

func newTestSearcher(t *testing.T) *BleveSearcher {
	t.Helper()
	s, err := NewMemorySearcher(testDocs(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSearchByKeywords(t *testing.T) {
	s := newTestSearcher(t)

	res, err := s.Search(context.Background(), Query{Keywords: "hiking boot"}, "")
	require.NoError(t, err)
	require.NotEmpty(t, res.Products)
	assert.Equal(t, "sku-1", res.Products[0].ID)
	assert.Equal(t, "Ridge Hiking Boot", res.Products[0].Name)
	assert.NotEmpty(t, res.ResultKey)
	assert.Greater(t, res.QualityMetrics.TopScore, 0.0)
}

func TestSearchByCategoryExcludesOthers(t *testing.T) {
	s := newTestSearcher(t)

	res, err := s.Search(context.Background(), Query{Categories: []string{"sandals"}}, "")
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "sku-3", res.Products[0].ID)
}

func TestSearchFilterFacet(t *testing.T) {
	s := newTestSearcher(t)

	res, err := s.Search(context.Background(), Query{IncludedFilters: []string{"color:brown"}}, "")
	require.NoError(t, err)

	ids := productIDs(res)
	assert.ElementsMatch(t, []string{"sku-1", "sku-3"}, ids)
}

func TestSearchExcludedSKU(t *testing.T) {
	s := newTestSearcher(t)

	res, err := s.Search(context.Background(), Query{
		Categories:   []string{"footwear"},
		ExcludedSKUs: []string{"sku-2"},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"sku-1"}, productIDs(res))
}

func TestSearchPinnedSKUsComeFirst(t *testing.T) {
	s := newTestSearcher(t)

	// sku-3 does not match the category but is pinned.
	res, err := s.Search(context.Background(), Query{
		Categories: []string{"footwear"},
		PinnedSKUs: []string{"sku-3"},
	}, "")
	require.NoError(t, err)

	ids := productIDs(res)
	require.NotEmpty(t, ids)
	assert.Equal(t, "sku-3", ids[0])
	assert.Contains(t, ids, "sku-1")
}

func TestSearchCollapseBrands(t *testing.T) {
	s := newTestSearcher(t)

	res, err := s.Search(context.Background(), Query{
		Categories:     []string{"footwear"},
		CollapseBrands: true,
	}, "")
	require.NoError(t, err)

	// Both footwear products share the Summit brand; only one survives.
	require.Len(t, res.Products, 1)
}

func TestSearchLocationScoping(t *testing.T) {
	s := newTestSearcher(t)

	// sku-1 is restricted to store-5; the others carry the implicit
	// any-location marker.
	res, err := s.Search(context.Background(), Query{}, "store-9")
	require.NoError(t, err)
	assert.NotContains(t, productIDs(res), "sku-1")

	res, err = s.Search(context.Background(), Query{}, "store-5")
	require.NoError(t, err)
	assert.Contains(t, productIDs(res), "sku-1")
}

func TestSearchMaxResults(t *testing.T) {
	s := newTestSearcher(t)

	res, err := s.Search(context.Background(), Query{MaxResults: 1}, "")
	require.NoError(t, err)
	assert.Len(t, res.Products, 1)
	assert.Equal(t, 3, res.QualityMetrics.TotalResults)
}

func TestBuildIndexRejectsMissingID(t *testing.T) {
	err := BuildIndex(t.TempDir()+"/idx", []ProductDoc{{Name: "anonymous"}})
	assert.Error(t, err)
}

func productIDs(res *Result) []string {
	ids := make([]string, 0, len(res.Products))
	for _, p := range res.Products {
		ids = append(ids, p.ID)
	}
	return ids
}
