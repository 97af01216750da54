package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagesmith/internal/types"
)

func testParser() *KeywordParser {
	return NewKeywordParser(map[string]types.Facet{
		"hiking":       {Value: "c-hiking", Label: "Hiking"},
		"trail runner": {Value: "c-trail-runner", Label: "Trail Runner"},
	})
}

func TestParsePlainKeywords(t *testing.T) {
	parsed, err := testParser().Parse(context.Background(), "Waterproof Boots")
	require.NoError(t, err)

	assert.Equal(t, "waterproof boots", parsed.Keywords)
	assert.Empty(t, parsed.Concepts)
	assert.Empty(t, parsed.ExcludedKeywords)
}

func TestParseConceptLexicon(t *testing.T) {
	parsed, err := testParser().Parse(context.Background(), "hiking boots")
	require.NoError(t, err)

	require.Len(t, parsed.Concepts, 1)
	assert.Equal(t, "c-hiking", parsed.Concepts[0].Value)
	assert.Equal(t, "boots", parsed.Keywords)
}

func TestParseMultiWordConceptGreedy(t *testing.T) {
	parsed, err := testParser().Parse(context.Background(), "trail runner shoes")
	require.NoError(t, err)

	require.Len(t, parsed.Concepts, 1)
	assert.Equal(t, "c-trail-runner", parsed.Concepts[0].Value)
	assert.Equal(t, "shoes", parsed.Keywords)
}

func TestParseFilters(t *testing.T) {
	parsed, err := testParser().Parse(context.Background(), "boots color:brown -width:narrow")
	require.NoError(t, err)

	require.Len(t, parsed.IncludedFilters, 1)
	assert.Equal(t, "color:brown", parsed.IncludedFilters[0].Value)
	assert.Equal(t, "Brown", parsed.IncludedFilters[0].Label)

	require.Len(t, parsed.ExcludedFilters, 1)
	assert.Equal(t, "width:narrow", parsed.ExcludedFilters[0].Value)
}

func TestParseExcludedKeywords(t *testing.T) {
	parsed, err := testParser().Parse(context.Background(), "boots -sandals -slippers")
	require.NoError(t, err)

	assert.Equal(t, "boots", parsed.Keywords)
	assert.Equal(t, "sandals slippers", parsed.ExcludedKeywords)
}

func TestParseEmptyQuery(t *testing.T) {
	parsed, err := testParser().Parse(context.Background(), "   ")
	require.NoError(t, err)

	assert.Empty(t, parsed.Keywords)
	assert.Empty(t, parsed.Concepts)
	assert.NotNil(t, parsed.Concepts)
}

func TestParseLoneDashIsKeyword(t *testing.T) {
	parsed, err := testParser().Parse(context.Background(), "-")
	require.NoError(t, err)
	assert.Equal(t, "-", parsed.Keywords)
}
